// Package token issues and verifies signed identity tokens (HS256 JWTs).
//
// Verification is pure: it touches no store, and every failure is reported as
// ErrInvalidToken. The underlying cause stays in the error chain for logging.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is the single outcome of a failed verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSecret is returned when no signing secret is configured.
	ErrMissingSecret = errors.New("token signing secret is empty")
	// ErrInvalidClaims is returned by Issue for a claim set without a subject.
	ErrInvalidClaims = errors.New("claim set requires a positive subject id")

	errMissingSubject = errors.New("subject is missing or not an id")
)

// ClaimSet is the payload embedded in a token. Everything but SubjectID is
// denormalised display data and may be stale.
type ClaimSet struct {
	SubjectID       int64
	Username        string
	Email           string
	ProfileImageRef string
}

type claims struct {
	Username        string `json:"username,omitempty"`
	Email           string `json:"email,omitempty"`
	ProfileImageRef string `json:"profileImageRef,omitempty"`
	jwt.RegisteredClaims
}

// Verified is a claim set that passed signature, expiry and structure checks.
// It can only be produced by Verify.
type Verified struct {
	claims    ClaimSet
	tokenID   string
	issuedAt  time.Time
	expiresAt time.Time
}

// Claims returns the verified claim set
func (v Verified) Claims() ClaimSet { return v.claims }

// SubjectID returns the identity the token was issued for
func (v Verified) SubjectID() int64 { return v.claims.SubjectID }

// TokenID returns the jti, usable as a denylist key
func (v Verified) TokenID() string { return v.tokenID }

// IssuedAt returns the issue instant
func (v Verified) IssuedAt() time.Time { return v.issuedAt }

// ExpiresAt returns the expiry and whether the token has one
func (v Verified) ExpiresAt() (time.Time, bool) {
	return v.expiresAt, !v.expiresAt.IsZero()
}

// Codec signs and verifies tokens with a shared secret
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option configures a Codec
type Option func(*Codec)

// WithIssuer stamps and requires the iss claim
func WithIssuer(issuer string) Option {
	return func(c *Codec) { c.issuer = issuer }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec builds a Codec. A zero ttl issues tokens that never expire, which
// leaves stolen tokens valid indefinitely.
func NewCodec(secret string, ttl time.Duration, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	c := &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the configured lifetime, zero meaning none
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs cs with the codec's secret and TTL
func (c *Codec) Issue(cs ClaimSet) (string, error) {
	if cs.SubjectID <= 0 {
		return "", ErrInvalidClaims
	}

	now := c.now()
	registered := jwt.RegisteredClaims{
		Subject:  strconv.FormatInt(cs.SubjectID, 10),
		IssuedAt: jwt.NewNumericDate(now),
		ID:       uuid.NewString(),
		Issuer:   c.issuer,
	}
	if c.ttl > 0 {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username:         cs.Username,
		Email:            cs.Email,
		ProfileImageRef:  cs.ProfileImageRef,
		RegisteredClaims: registered,
	}).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry and structure. Any failure wraps ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (Verified, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(tokenString, &parsed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, parserOpts...)
	if err != nil {
		return Verified{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	subjectID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil || subjectID <= 0 {
		return Verified{}, fmt.Errorf("%w: %w", ErrInvalidToken, errMissingSubject)
	}

	v := Verified{
		claims: ClaimSet{
			SubjectID:       subjectID,
			Username:        parsed.Username,
			Email:           parsed.Email,
			ProfileImageRef: parsed.ProfileImageRef,
		},
		tokenID: parsed.ID,
	}
	if parsed.IssuedAt != nil {
		v.issuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		v.expiresAt = parsed.ExpiresAt.Time
	}
	return v, nil
}

// Issue signs cs with secret. A zero ttl means no expiry.
func Issue(cs ClaimSet, secret string, ttl time.Duration) (string, error) {
	c, err := NewCodec(secret, ttl)
	if err != nil {
		return "", err
	}
	return c.Issue(cs)
}

// Verify checks tokenString against secret
func Verify(tokenString, secret string) (Verified, error) {
	c, err := NewCodec(secret, 0)
	if err != nil {
		return Verified{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return c.Verify(tokenString)
}

// Reason classifies a verification failure for internal logs and metrics.
// It must not be echoed to clients.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, errMissingSubject), errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "claims"
	default:
		return "invalid"
	}
}
