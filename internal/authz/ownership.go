// Package authz holds the single ownership rule applied to every mutable resource.
package authz

import (
	"fmt"

	"marketplace-api/internal/domain"
	apperrors "marketplace-api/pkg/errors"
)

// Resource kinds subject to ownership checks
const (
	ResourceProduct = "product"
	ResourceReview  = "review"
	ResourceAccount = "account"
)

// RequireOwner rejects with Forbidden unless caller owns the resource.
// For accounts, ownerID is the account's own id.
func RequireOwner(caller domain.CallerIdentity, ownerID int64, resource string) error {
	if caller.ID <= 0 {
		return apperrors.NewAuthenticationError("Authentication required")
	}
	if caller.ID != ownerID {
		appErr := apperrors.NewAuthorizationError(fmt.Sprintf("You do not own this %s", resource))
		appErr.Details = map[string]interface{}{"resource": resource}
		return appErr
	}
	return nil
}
