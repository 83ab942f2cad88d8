package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/metrics"
	"marketplace-api/internal/repository/memstore"
	apperrors "marketplace-api/pkg/errors"
	"marketplace-api/pkg/logger"
	"marketplace-api/pkg/password"
	"marketplace-api/pkg/token"
)

const testSecret = "auth-service-test-secret"

type testEnv struct {
	svc     *Service
	store   *memstore.CredentialStore
	codec   *token.Codec
	reg     *prometheus.Registry
	metrics *metrics.Collector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	codec, err := token.NewCodec(testSecret, time.Hour)
	require.NoError(t, err)

	store := memstore.NewCredentialStore()
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	log := logger.NewNop()

	return &testEnv{
		svc:     NewService(store, password.NewHasher(bcrypt.MinCost, log), codec, collector, log),
		store:   store,
		codec:   codec,
		reg:     reg,
		metrics: collector,
	}
}

func (e *testEnv) signUp(t *testing.T, email, username, pw string) *domain.Identity {
	t.Helper()
	identity, err := e.svc.SignUp(context.Background(), domain.SignUpRequest{Email: email, Username: username, Password: pw})
	require.NoError(t, err)
	return identity
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestSignUp_Succeeds(t *testing.T) {
	env := newTestEnv(t)

	identity, err := env.svc.SignUp(context.Background(), domain.SignUpRequest{
		Email:           "a@x.com",
		Username:        "a",
		Password:        "pw",
		ProfileImageRef: "https://img.example.com/a.png",
	})
	require.NoError(t, err)
	require.NotNil(t, identity)

	assert.NotZero(t, identity.ID)
	assert.Equal(t, "a@x.com", identity.Email)
	assert.Equal(t, "a", identity.Username)
	assert.Equal(t, "https://img.example.com/a.png", identity.ProfileImageRef)
	assert.NotEqual(t, "pw", identity.PasswordHash)
	assert.Equal(t, 1.0, counterValue(t, env.reg, "marketplace_auth_signups_total", "result", metrics.ResultSuccess))
}

func TestSignUp_NormalizesEmail(t *testing.T) {
	env := newTestEnv(t)

	identity := env.signUp(t, "  A@X.com ", " a ", "pw")
	assert.Equal(t, "a@x.com", identity.Email)
	assert.Equal(t, "a", identity.Username)
}

func TestSignUp_Conflict(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		username string
		wantMsg  string
	}{
		{name: "same email", email: "a@x.com", username: "b", wantMsg: "Email is already registered"},
		{name: "same email different case", email: "A@X.COM", username: "b", wantMsg: "Email is already registered"},
		{name: "same username", email: "b@x.com", username: "a", wantMsg: "Username is already taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.signUp(t, "a@x.com", "a", "pw")

			_, err := env.svc.SignUp(context.Background(), domain.SignUpRequest{Email: tt.email, Username: tt.username, Password: "pw"})
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Equal(t, 1, env.store.Len())
		})
	}
}

func TestSignUp_ValidationError(t *testing.T) {
	tests := []struct {
		name      string
		req       domain.SignUpRequest
		wantField string
	}{
		{name: "blank email", req: domain.SignUpRequest{Email: "", Username: "a", Password: "pw"}, wantField: "email"},
		{name: "whitespace email", req: domain.SignUpRequest{Email: "   ", Username: "a", Password: "pw"}, wantField: "email"},
		{name: "malformed email", req: domain.SignUpRequest{Email: "not-an-email", Username: "a", Password: "pw"}, wantField: "email"},
		{name: "blank username", req: domain.SignUpRequest{Email: "a@x.com", Username: "  ", Password: "pw"}, wantField: "username"},
		{name: "blank password", req: domain.SignUpRequest{Email: "a@x.com", Username: "a", Password: ""}, wantField: "password"},
		{name: "whitespace password", req: domain.SignUpRequest{Email: "a@x.com", Username: "a", Password: "   "}, wantField: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			identity, err := env.svc.SignUp(context.Background(), tt.req)
			assert.Nil(t, identity)

			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
			assert.Contains(t, appErr.Details, tt.wantField)
			assert.Equal(t, 0, env.store.Len())
		})
	}
}

func TestSignUp_StoreUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.store.Err = apperrors.NewUnavailableError("Data store is unavailable, please retry", context.DeadlineExceeded)

	_, err := env.svc.SignUp(context.Background(), domain.SignUpRequest{Email: "a@x.com", Username: "a", Password: "pw"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
}

func TestSignUp_UnclassifiedStoreErrorIsInternal(t *testing.T) {
	env := newTestEnv(t)
	env.store.Err = errors.New("connection reset by peer")

	_, err := env.svc.SignUp(context.Background(), domain.SignUpRequest{Email: "a@x.com", Username: "a", Password: "pw"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeInternal, appErr.Type)
	assert.NotContains(t, appErr.Message, "connection reset")
}

func TestSignIn_Succeeds(t *testing.T) {
	env := newTestEnv(t)
	registered := env.signUp(t, "a@x.com", "a", "pw")

	result, err := env.svc.SignIn(context.Background(), domain.SignInRequest{Email: "A@x.com", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, registered.ID, result.Identity.ID)
	require.NotEmpty(t, result.Token)

	verified, err := env.codec.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, verified.SubjectID())
	assert.Equal(t, "a", verified.Claims().Username)
	assert.Equal(t, "a@x.com", verified.Claims().Email)

	exp, hasExp := verified.ExpiresAt()
	assert.True(t, hasExp)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)
}

func TestSignIn_FailuresShareOneMessage(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "a@x.com", "a", "pw")

	_, wrongPassword := env.svc.SignIn(context.Background(), domain.SignInRequest{Email: "a@x.com", Password: "nope"})
	_, unknownEmail := env.svc.SignIn(context.Background(), domain.SignInRequest{Email: "ghost@x.com", Password: "pw"})

	wrongErr, ok := apperrors.As(wrongPassword)
	require.True(t, ok)
	unknownErr, ok := apperrors.As(unknownEmail)
	require.True(t, ok)

	assert.Equal(t, apperrors.ErrorTypeInvalidCredentials, wrongErr.Type)
	assert.Equal(t, apperrors.ErrorTypeNotFound, unknownErr.Type)
	assert.Equal(t, MsgInvalidLogin, wrongErr.Message)
	assert.Equal(t, wrongErr.Message, unknownErr.Message)

	assert.Equal(t, 1.0, counterValue(t, env.reg, "marketplace_auth_signins_total", "result", metrics.ResultInvalidCredentials))
	assert.Equal(t, 1.0, counterValue(t, env.reg, "marketplace_auth_signins_total", "result", metrics.ResultNotFound))
}

func TestSignIn_LongerPasswordWithStoredPrefixIsRejected(t *testing.T) {
	env := newTestEnv(t)
	stored := strings.Repeat("a", 72)
	env.signUp(t, "a@x.com", "a", stored)

	_, err := env.svc.SignIn(context.Background(), domain.SignInRequest{Email: "a@x.com", Password: stored + "x"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidCredentials))

	result, err := env.svc.SignIn(context.Background(), domain.SignInRequest{Email: "a@x.com", Password: stored})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestSignIn_ByUsernameIsNotAccepted(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "a@x.com", "alice", "pw")

	_, err := env.svc.SignIn(context.Background(), domain.SignInRequest{Email: "alice", Password: "pw"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestSignIn_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.SignIn(context.Background(), domain.SignInRequest{Email: " ", Password: "pw"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = env.svc.SignIn(context.Background(), domain.SignInRequest{Email: "a@x.com"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestSignOut_Acknowledges(t *testing.T) {
	env := newTestEnv(t)
	assert.NoError(t, env.svc.SignOut(context.Background(), domain.CallerIdentity{ID: 1}))
}

func TestSignOut_TokenRemainsValidUntilExpiry(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "a@x.com", "a", "pw")

	result, err := env.svc.SignIn(context.Background(), domain.SignInRequest{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, env.svc.SignOut(context.Background(), domain.CallerIdentity{ID: result.Identity.ID}))

	identity, err := env.svc.Authenticate(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Identity.ID, identity.ID)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	registered := env.signUp(t, "a@x.com", "a", "pw")

	valid, err := env.codec.Issue(token.ClaimSet{SubjectID: registered.ID})
	require.NoError(t, err)

	forged, err := token.Issue(token.ClaimSet{SubjectID: registered.ID}, "other-secret", time.Hour)
	require.NoError(t, err)

	orphan, err := env.codec.Issue(token.ClaimSet{SubjectID: 999})
	require.NoError(t, err)

	tests := []struct {
		name      string
		raw       string
		wantID    int64
		wantCause error
	}{
		{name: "valid token", raw: valid, wantID: registered.ID},
		{name: "forged token", raw: forged, wantCause: token.ErrInvalidToken},
		{name: "garbage", raw: "garbage", wantCause: token.ErrInvalidToken},
		{name: "subject does not exist", raw: orphan, wantCause: ErrSubjectGone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := env.svc.Authenticate(context.Background(), tt.raw)
			if tt.wantCause == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, identity.ID)
				return
			}
			assert.Nil(t, identity)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAuthentication))
			assert.ErrorIs(t, err, tt.wantCause)
		})
	}
}

func TestAuthenticate_DeletedAccount(t *testing.T) {
	env := newTestEnv(t)
	env.store.Put(domain.Identity{ID: 7, Email: "seven@x.com", Username: "seven"})

	raw, err := env.codec.Issue(token.ClaimSet{SubjectID: 7, Username: "seven"})
	require.NoError(t, err)

	_, err = env.svc.Authenticate(context.Background(), raw)
	require.NoError(t, err)

	_, err = env.store.Delete(context.Background(), 7)
	require.NoError(t, err)

	_, err = env.svc.Authenticate(context.Background(), raw)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAuthentication))
	assert.ErrorIs(t, err, ErrSubjectGone)
}

func TestAuthenticate_StoreTimeoutIsUnavailable(t *testing.T) {
	env := newTestEnv(t)
	raw, err := env.codec.Issue(token.ClaimSet{SubjectID: 1})
	require.NoError(t, err)

	env.store.Err = apperrors.NewUnavailableError("Data store is unavailable, please retry", fmt.Errorf("find user: %w", context.DeadlineExceeded))

	_, err = env.svc.Authenticate(context.Background(), raw)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewService_NilRecorder(t *testing.T) {
	codec, err := token.NewCodec(testSecret, 0)
	require.NoError(t, err)
	svc := NewService(memstore.NewCredentialStore(), password.NewHasher(bcrypt.MinCost, nil), codec, nil, logger.NewNop())

	_, err = svc.SignUp(context.Background(), domain.SignUpRequest{Email: "a@x.com", Username: "a", Password: "pw"})
	assert.NoError(t, err)
}
