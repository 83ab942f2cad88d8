package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/middleware"
	apperrors "marketplace-api/pkg/errors"
	"marketplace-api/pkg/logger"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// Response is the success envelope
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}, fallback *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(Response{Success: true, Message: message, Data: data}); err != nil {
		logger.FromContext(r.Context(), fallback).WithError(err).Error("Failed to encode response")
	}
}

// respondError writes err as the error envelope. Unclassified errors become a
// generic 500 and are logged with their cause.
func respondError(w http.ResponseWriter, r *http.Request, err error, fallback *logger.Logger) {
	log := logger.FromContext(r.Context(), fallback)
	appErr := apperrors.FromError(err)

	if appErr.StatusCode >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	} else {
		log.WithError(err).Debug("Request rejected")
	}

	if encErr := apperrors.WriteJSON(w, appErr, middleware.RequestIDFromContext(r.Context())); encErr != nil {
		log.WithError(encErr).Error("Failed to encode error response")
	}
}

// decodeJSON reads a JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("Request body is required", nil)
		}
		return apperrors.NewValidationError("Invalid request body", nil)
	}
	return nil
}

// pathID parses a positive integer URL parameter
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("Invalid "+name, map[string]interface{}{name: "must be a positive integer"})
	}
	return id, nil
}

// caller returns the guarded caller. Routes using it must sit behind middleware.Auth.
func caller(r *http.Request) (domain.CallerIdentity, error) {
	c, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		return domain.CallerIdentity{}, apperrors.NewAuthenticationError("Authentication required")
	}
	return c, nil
}
