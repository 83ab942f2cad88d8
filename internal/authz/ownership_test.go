package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace-api/internal/domain"
	apperrors "marketplace-api/pkg/errors"
)

func TestRequireOwner(t *testing.T) {
	tests := []struct {
		name     string
		caller   domain.CallerIdentity
		ownerID  int64
		resource string
		wantType apperrors.ErrorType
	}{
		{name: "owner of product", caller: domain.CallerIdentity{ID: 7}, ownerID: 7, resource: ResourceProduct},
		{name: "owner of own account", caller: domain.CallerIdentity{ID: 9}, ownerID: 9, resource: ResourceAccount},
		{name: "someone else's product", caller: domain.CallerIdentity{ID: 7}, ownerID: 9, resource: ResourceProduct, wantType: apperrors.ErrorTypeAuthorization},
		{name: "someone else's review", caller: domain.CallerIdentity{ID: 7}, ownerID: 9, resource: ResourceReview, wantType: apperrors.ErrorTypeAuthorization},
		{name: "someone else's account", caller: domain.CallerIdentity{ID: 7}, ownerID: 9, resource: ResourceAccount, wantType: apperrors.ErrorTypeAuthorization},
		{name: "zero caller", caller: domain.CallerIdentity{}, ownerID: 0, resource: ResourceProduct, wantType: apperrors.ErrorTypeAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireOwner(tt.caller, tt.ownerID, tt.resource)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestRequireOwner_Message(t *testing.T) {
	err := RequireOwner(domain.CallerIdentity{ID: 7}, 9, ResourceReview)
	appErr, ok := apperrors.As(err)
	if assert.True(t, ok) {
		assert.Equal(t, "You do not own this review", appErr.Message)
		assert.Equal(t, 403, appErr.StatusCode)
	}
}
