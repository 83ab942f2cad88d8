package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		typ    ErrorType
		status int
	}{
		{"validation", NewValidationError("bad", nil), ErrorTypeValidation, http.StatusBadRequest},
		{"conflict", NewConflictError("taken", nil), ErrorTypeConflict, http.StatusConflict},
		{"not found", NewNotFoundError("missing"), ErrorTypeNotFound, http.StatusNotFound},
		{"invalid credentials", NewInvalidCredentialsError("nope"), ErrorTypeInvalidCredentials, http.StatusUnauthorized},
		{"unauthenticated", NewAuthenticationError("who"), ErrorTypeAuthentication, http.StatusUnauthorized},
		{"forbidden", NewAuthorizationError("not yours"), ErrorTypeAuthorization, http.StatusForbidden},
		{"unavailable", NewUnavailableError("slow", context.DeadlineExceeded), ErrorTypeUnavailable, http.StatusServiceUnavailable},
		{"internal", NewInternalError("boom", nil), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.StatusCode)
		})
	}
}

func TestAsAndIsType(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewConflictError("email taken", nil))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeConflict, appErr.Type)
	assert.True(t, IsType(wrapped, ErrorTypeConflict))
	assert.False(t, IsType(wrapped, ErrorTypeNotFound))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeConflict))
}

func TestUnwrapReachesInternal(t *testing.T) {
	err := NewUnavailableError("store timeout", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFromErrorHidesUnknownErrors(t *testing.T) {
	appErr := FromError(fmt.Errorf("pq: relation users does not exist"))
	assert.Equal(t, ErrorTypeInternal, appErr.Type)
	assert.Equal(t, "Internal server error", appErr.Message)
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteJSON(rec, NewAuthorizationError("You do not own this product"), "req-1")
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, ErrorTypeAuthorization, body.Error.Type)
	assert.Equal(t, "You do not own this product", body.Error.Message)
	assert.Equal(t, "req-1", body.Error.RequestID)
	assert.NotEmpty(t, body.Error.Timestamp)
}
