package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/metrics"
	"marketplace-api/internal/service"
	"marketplace-api/internal/service/auth"
	"marketplace-api/internal/session"
	apperrors "marketplace-api/pkg/errors"
	"marketplace-api/pkg/logger"
	"marketplace-api/pkg/token"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// CallerContextKey holds the domain.CallerIdentity of a guarded request
	CallerContextKey ContextKey = "caller"
	// IdentityContextKey holds the full *domain.Identity resolved by the guard
	IdentityContextKey ContextKey = "identity"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// Guard rejection reasons
const (
	ReasonMissing         = "missing"
	ReasonSubjectNotFound = "subject_not_found"
	ReasonStoreError      = "store_error"
)

// Auth guards a route. It extracts the token from the transport, verifies it
// and confirms the subject still exists before attaching the caller to the
// request context. Any failure ends the request with 401, except store
// outages which surface as 503.
func Auth(authService service.AuthService, transport *session.Transport, recorder metrics.AuthRecorder, log *logger.Logger) func(http.Handler) http.Handler {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	log = log.Named("guard")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := logger.FromContext(r.Context(), log)

			raw, ok := transport.Extract(r)
			if !ok {
				recorder.RecordGuardRejection(ReasonMissing)
				writeErrorResponse(w, r, apperrors.NewAuthenticationError("Authentication required"), reqLog)
				return
			}

			identity, err := authService.Authenticate(r.Context(), raw)
			if err != nil {
				reason := rejectionReason(err)
				recorder.RecordGuardRejection(reason)
				reqLog.Debug("request rejected by guard", zap.String("reason", reason))
				writeErrorResponse(w, r, apperrors.FromError(err), reqLog)
				return
			}

			ctx := ContextWithIdentity(r.Context(), identity)
			ctx = logger.IntoContext(ctx, reqLog.WithField("user_id", identity.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrSubjectGone):
		return ReasonSubjectNotFound
	case errors.Is(err, token.ErrInvalidToken):
		return token.Reason(err)
	default:
		return ReasonStoreError
	}
}

// ContextWithIdentity attaches identity and its CallerIdentity to ctx
func ContextWithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	ctx = context.WithValue(ctx, IdentityContextKey, identity)
	return context.WithValue(ctx, CallerContextKey, domain.CallerIdentity{ID: identity.ID})
}

// CallerFromContext returns the caller attached by Auth
func CallerFromContext(ctx context.Context) (domain.CallerIdentity, bool) {
	caller, ok := ctx.Value(CallerContextKey).(domain.CallerIdentity)
	return caller, ok
}

// IdentityFromContext returns the identity attached by Auth
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*domain.Identity)
	return identity, ok && identity != nil
}

// RequestID tags each request with an id, reusing an inbound X-Request-ID
// when present, and scopes a logger to it.
func RequestID(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" || len(requestID) > 128 {
				requestID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			ctx = logger.IntoContext(ctx, log.WithField("request_id", requestID))
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext returns the id set by RequestID, or ""
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, r *http.Request, appErr *apperrors.AppError, log *logger.Logger) {
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.WithError(appErr).Error("Request error")
	} else {
		log.WithError(appErr).Debug("Request rejected")
	}
	if err := apperrors.WriteJSON(w, appErr, RequestIDFromContext(r.Context())); err != nil {
		log.WithError(err).Error("Failed to encode error response")
	}
}
