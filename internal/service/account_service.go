package service

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.uber.org/zap"

	"marketplace-api/internal/authz"
	"marketplace-api/internal/domain"
	"marketplace-api/internal/metrics"
	"marketplace-api/internal/repository"
	apperrors "marketplace-api/pkg/errors"
	"marketplace-api/pkg/logger"
)

type accountService struct {
	store   repository.CredentialStore
	metrics metrics.AuthRecorder
	logger  *logger.Logger
}

// NewAccountService creates an AccountService backed by store
func NewAccountService(store repository.CredentialStore, recorder metrics.AuthRecorder, log *logger.Logger) AccountService {
	return &accountService{
		store:   store,
		metrics: recorderOrNop(recorder),
		logger:  log.Named("account"),
	}
}

func (s *accountService) Get(ctx context.Context, id int64) (*domain.Identity, error) {
	identity, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, StoreFailed("Failed to get user", err)
	}
	if identity == nil {
		return nil, apperrors.NewNotFoundError("User not found")
	}
	return identity, nil
}

// Update changes the caller's own email, username or profile image.
// Only fields present in req are touched.
func (s *accountService) Update(ctx context.Context, caller domain.CallerIdentity, id int64, req domain.UpdateAccountRequest) (*domain.Identity, error) {
	if err := requireOwner(s.metrics, caller, id, authz.ResourceAccount); err != nil {
		return nil, err
	}

	var patch domain.IdentityPatch
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
		patch.Email = &email
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		req.Username = &username
		patch.Username = &username
	}
	if req.ProfileImageRef != nil {
		ref := strings.TrimSpace(*req.ProfileImageRef)
		req.ProfileImageRef = &ref
		patch.ProfileImageRef = &ref
	}

	err := validation.ValidateStruct(&req,
		validation.Field(&req.Email, validation.NilOrNotEmpty, is.Email, validation.Length(0, 254)),
		validation.Field(&req.Username, validation.NilOrNotEmpty, NotBlank, validation.Length(1, 64)),
		validation.Field(&req.ProfileImageRef, validation.Length(0, 2048)),
	)
	if err != nil {
		return nil, ValidationFailed(err)
	}
	if patch.IsEmpty() {
		return nil, apperrors.NewValidationError("No fields to update", nil)
	}

	identity, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, StoreFailed("Failed to update user", err)
	}

	s.logger.Info("account updated", zap.Int64("user_id", id))
	return identity, nil
}

// Delete removes the caller's own account
func (s *accountService) Delete(ctx context.Context, caller domain.CallerIdentity, id int64) error {
	if err := requireOwner(s.metrics, caller, id, authz.ResourceAccount); err != nil {
		return err
	}

	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return StoreFailed("Failed to delete user", err)
	}
	if removed == nil {
		return apperrors.NewNotFoundError("User not found")
	}

	s.logger.Info("account deleted", zap.Int64("user_id", id))
	return nil
}
