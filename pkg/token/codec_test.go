package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestIssueVerify_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cs   ClaimSet
		ttl  time.Duration
	}{
		{name: "subject only", cs: ClaimSet{SubjectID: 7}, ttl: time.Hour},
		{
			name: "with display fields",
			cs:   ClaimSet{SubjectID: 42, Username: "a", Email: "a@x.com", ProfileImageRef: "https://img/a.png"},
			ttl:  15 * time.Minute,
		},
		{name: "no expiry", cs: ClaimSet{SubjectID: 9}, ttl: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := Issue(tt.cs, testSecret, tt.ttl)
			require.NoError(t, err)
			require.NotEmpty(t, signed)

			v, err := Verify(signed, testSecret)
			require.NoError(t, err)
			assert.Equal(t, tt.cs, v.Claims())
			assert.Equal(t, tt.cs.SubjectID, v.SubjectID())
			assert.NotEmpty(t, v.TokenID())
			assert.False(t, v.IssuedAt().IsZero())

			exp, hasExp := v.ExpiresAt()
			assert.Equal(t, tt.ttl > 0, hasExp)
			if hasExp {
				assert.WithinDuration(t, v.IssuedAt().Add(tt.ttl), exp, time.Second)
			}
		})
	}
}

func TestVerify_ExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec, err := NewCodec(testSecret, time.Hour, WithClock(clock.Now))
	require.NoError(t, err)

	signed, err := codec.Issue(ClaimSet{SubjectID: 7})
	require.NoError(t, err)

	clock.t = clock.t.Add(59 * time.Minute)
	_, err = codec.Verify(signed)
	require.NoError(t, err, "still valid before the TTL elapses")

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, "expired", Reason(err))
}

func TestVerify_WrongSecret(t *testing.T) {
	signed, err := Issue(ClaimSet{SubjectID: 7}, "secret-one", time.Hour)
	require.NoError(t, err)

	_, err = Verify(signed, "secret-two")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, "signature", Reason(err))
}

func TestVerify_RejectsMalformedAndForeignTokens(t *testing.T) {
	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "7"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "7"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"username": "a"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	textSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	valid, err := Issue(ClaimSet{SubjectID: 7}, testSecret, time.Hour)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	tamperedPayload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"9"}`))
	tampered := parts[0] + "." + tamperedPayload + "." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"alg none", noneToken},
		{"other hmac alg", hs512},
		{"missing subject", noSubject},
		{"non numeric subject", textSubject},
		{"tampered payload", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Verify(tt.token, testSecret)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Equal(t, Verified{}, v)
		})
	}
}

func TestIssue_Errors(t *testing.T) {
	_, err := Issue(ClaimSet{SubjectID: 0}, testSecret, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, err = Issue(ClaimSet{SubjectID: 1}, "", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = NewCodec("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestCodec_Issuer(t *testing.T) {
	issuing, err := NewCodec(testSecret, time.Hour, WithIssuer("marketplace-api"))
	require.NoError(t, err)
	other, err := NewCodec(testSecret, time.Hour, WithIssuer("someone-else"))
	require.NoError(t, err)

	signed, err := issuing.Issue(ClaimSet{SubjectID: 3})
	require.NoError(t, err)

	_, err = issuing.Verify(signed)
	assert.NoError(t, err)

	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, "claims", Reason(err))
}

func TestReason(t *testing.T) {
	assert.Equal(t, "", Reason(nil))

	_, err := Verify("not.a.jwt", testSecret)
	assert.Equal(t, "malformed", Reason(err))
}
