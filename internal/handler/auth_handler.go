package handler

import (
	"net/http"

	"marketplace-api/internal/container"
	"marketplace-api/internal/domain"
	"marketplace-api/internal/middleware"
	"marketplace-api/internal/service/auth"
	apperrors "marketplace-api/pkg/errors"
)

// AuthHandler handles account and session requests
type AuthHandler struct {
	container *container.Container
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(container *container.Container) *AuthHandler {
	return &AuthHandler{container: container}
}

// SignUp handles POST /api/v1/user/sign-up
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req domain.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	identity, err := h.container.Services.Auth.SignUp(r.Context(), req)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusCreated, "Account created successfully", identity, h.container.Logger)
}

// SignIn handles POST /api/v1/user/sign-in. An unknown email and a wrong
// password produce the same 401.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req domain.SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	result, err := h.container.Services.Auth.SignIn(r.Context(), req)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) || apperrors.IsType(err, apperrors.ErrorTypeInvalidCredentials) {
			err = apperrors.NewInvalidCredentialsError(auth.MsgInvalidLogin)
		}
		respondError(w, r, err, h.container.Logger)
		return
	}

	h.container.Transport.Attach(w, result.Token)
	respondJSON(w, r, http.StatusOK, "Signed in successfully", result, h.container.Logger)
}

// SignOut handles POST /api/v1/user/sign-out
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	if err := h.container.Services.Auth.SignOut(r.Context(), c); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	h.container.Transport.Clear(w)
	respondJSON(w, r, http.StatusOK, "Signed out successfully", nil, h.container.Logger)
}

// Me handles GET /api/v1/user/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, r, apperrors.NewAuthenticationError("Authentication required"), h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusOK, "", identity, h.container.Logger)
}

// UpdateAccount handles PATCH /api/v1/user/{id}
func (h *AuthHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	var req domain.UpdateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	identity, err := h.container.Services.Accounts.Update(r.Context(), c, id, req)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusOK, "Account updated successfully", identity, h.container.Logger)
}

// DeleteAccount handles DELETE /api/v1/user/{id}
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	if err := h.container.Services.Accounts.Delete(r.Context(), c, id); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	h.container.Transport.Clear(w)
	respondJSON(w, r, http.StatusOK, "Account deleted successfully", nil, h.container.Logger)
}
