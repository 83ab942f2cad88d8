package auth

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.uber.org/zap"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/metrics"
	"marketplace-api/internal/repository"
	"marketplace-api/internal/service"
	apperrors "marketplace-api/pkg/errors"
	"marketplace-api/pkg/logger"
	"marketplace-api/pkg/password"
	"marketplace-api/pkg/token"
)

// MsgInvalidLogin is the only message a client sees for a failed sign-in,
// whether the email is unknown or the password is wrong.
const MsgInvalidLogin = "Invalid email or password"

// ErrSubjectGone marks a well-formed token whose identity no longer exists.
var ErrSubjectGone = errors.New("token subject no longer exists")

// Service implements service.AuthService
type Service struct {
	store   repository.CredentialStore
	hasher  *password.Hasher
	codec   *token.Codec
	metrics metrics.AuthRecorder
	logger  *logger.Logger
}

// NewService creates a new auth service
func NewService(store repository.CredentialStore, hasher *password.Hasher, codec *token.Codec, recorder metrics.AuthRecorder, log *logger.Logger) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Service{
		store:   store,
		hasher:  hasher,
		codec:   codec,
		metrics: recorder,
		logger:  log.Named("auth"),
	}
}

var _ service.AuthService = (*Service)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignUp(req *domain.SignUpRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.Email, validation.Length(0, 254)),
		validation.Field(&req.Username, validation.Required, service.NotBlank, validation.Length(1, 64)),
		validation.Field(&req.Password, validation.Required, service.NotBlank, validation.Length(1, 72)),
		validation.Field(&req.ProfileImageRef, validation.Length(0, 2048)),
	)
}

// SignUp registers a new identity. Both email and username must be unused.
func (s *Service) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.Identity, error) {
	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.ProfileImageRef = strings.TrimSpace(req.ProfileImageRef)

	if err := validateSignUp(&req); err != nil {
		s.metrics.RecordSignUp(metrics.ResultValidation)
		return nil, service.ValidationFailed(err)
	}

	existing, err := s.store.FindByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		s.metrics.RecordSignUp(metrics.ResultError)
		return nil, service.StoreFailed("Failed to check existing accounts", err)
	}
	if existing != nil {
		s.metrics.RecordSignUp(metrics.ResultConflict)
		if strings.EqualFold(existing.Email, req.Email) {
			return nil, apperrors.NewConflictError("Email is already registered", nil)
		}
		return nil, apperrors.NewConflictError("Username is already taken", nil)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, password.ErrInvalidInput) {
			s.metrics.RecordSignUp(metrics.ResultValidation)
			return nil, apperrors.NewValidationError("Invalid input", map[string]interface{}{"password": "is not a usable password"})
		}
		s.metrics.RecordSignUp(metrics.ResultError)
		return nil, apperrors.NewInternalError("Failed to hash password", err)
	}

	identity, err := s.store.Create(ctx, domain.NewIdentity{
		Email:           req.Email,
		Username:        req.Username,
		PasswordHash:    hashed,
		ProfileImageRef: req.ProfileImageRef,
	})
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			s.metrics.RecordSignUp(metrics.ResultConflict)
		} else {
			s.metrics.RecordSignUp(metrics.ResultError)
		}
		return nil, service.StoreFailed("Failed to create account", err)
	}

	s.metrics.RecordSignUp(metrics.ResultSuccess)
	s.logger.Info("account registered", zap.Int64("user_id", identity.ID))
	return identity, nil
}

// SignIn verifies credentials and issues a token. An unknown email yields
// NotFound and a wrong password InvalidCredentials; both carry MsgInvalidLogin.
func (s *Service) SignIn(ctx context.Context, req domain.SignInRequest) (*domain.SignInResult, error) {
	req.Email = normalizeEmail(req.Email)

	err := validation.ValidateStruct(&req,
		validation.Field(&req.Email, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
	if err != nil {
		s.metrics.RecordSignIn(metrics.ResultValidation)
		return nil, service.ValidationFailed(err)
	}

	identity, err := s.store.FindByEmailOrUsername(ctx, req.Email, "")
	if err != nil {
		s.metrics.RecordSignIn(metrics.ResultError)
		return nil, service.StoreFailed("Failed to look up account", err)
	}
	if identity == nil {
		s.hasher.VerifyDummy(req.Password)
		s.metrics.RecordSignIn(metrics.ResultNotFound)
		s.logger.Debug("sign-in for unknown email")
		return nil, apperrors.NewNotFoundError(MsgInvalidLogin)
	}

	if !s.hasher.Verify(req.Password, identity.PasswordHash) {
		s.metrics.RecordSignIn(metrics.ResultInvalidCredentials)
		s.logger.Debug("sign-in with wrong password", zap.Int64("user_id", identity.ID))
		return nil, apperrors.NewInvalidCredentialsError(MsgInvalidLogin)
	}

	signed, err := s.codec.Issue(token.ClaimSet{
		SubjectID:       identity.ID,
		Username:        identity.Username,
		Email:           identity.Email,
		ProfileImageRef: identity.ProfileImageRef,
	})
	if err != nil {
		s.metrics.RecordSignIn(metrics.ResultError)
		return nil, apperrors.NewInternalError("Failed to issue token", err)
	}

	s.metrics.RecordSignIn(metrics.ResultSuccess)
	s.logger.Info("signed in", zap.Int64("user_id", identity.ID))
	return &domain.SignInResult{Identity: identity, Token: signed}, nil
}

// SignOut only acknowledges. Issued tokens remain valid until expiry; revoking
// them would need a denylist keyed by token id.
func (s *Service) SignOut(ctx context.Context, caller domain.CallerIdentity) error {
	s.logger.Info("signed out", zap.Int64("user_id", caller.ID))
	return nil
}

// Authenticate verifies rawToken and resolves its subject to a live identity.
// Token failures and vanished subjects are both Unauthenticated; the cause is
// kept in the error chain for logs. Store failures pass through.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Identity, error) {
	verified, err := s.codec.Verify(rawToken)
	if err != nil {
		s.logger.Debug("token rejected", zap.String("reason", token.Reason(err)))
		appErr := apperrors.NewAuthenticationError("Invalid or expired token")
		appErr.Internal = err
		return nil, appErr
	}

	identity, err := s.store.FindByID(ctx, verified.SubjectID())
	if err != nil {
		return nil, service.StoreFailed("Failed to resolve caller", err)
	}
	if identity == nil {
		s.logger.Info("token subject no longer exists", zap.Int64("user_id", verified.SubjectID()))
		appErr := apperrors.NewAuthenticationError("Invalid or expired token")
		appErr.Internal = ErrSubjectGone
		return nil, appErr
	}
	return identity, nil
}
