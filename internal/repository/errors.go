package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "marketplace-api/pkg/errors"
)

const pgUniqueViolation = "23505"

// conflictMessages maps unique constraints to client-facing messages
var conflictMessages = map[string]string{
	"users_email_key":     "Email is already registered",
	"users_username_key":  "Username is already taken",
	"categories_name_key": "Category already exists",
}

// mapError translates driver errors into the application taxonomy.
// Timeouts become Unavailable and unique violations become Conflict.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return apperrors.NewUnavailableError("Data store is unavailable, please retry", fmt.Errorf("%s: %w", op, err))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		msg, ok := conflictMessages[pgErr.ConstraintName]
		if !ok {
			msg = "Resource already exists"
		}
		return apperrors.NewConflictError(msg, err)
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}
