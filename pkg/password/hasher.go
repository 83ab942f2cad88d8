// Package password hashes and verifies account passwords with bcrypt.
package password

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"

	"marketplace-api/pkg/logger"
)

// ErrInvalidInput is returned by Hash for empty or oversized passwords.
var ErrInvalidInput = errors.New("password: invalid input")

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// Hasher hashes passwords with a tunable bcrypt work factor
type Hasher struct {
	cost int
	log  *logger.Logger

	dummyOnce sync.Once
	dummy     []byte
}

// NewHasher returns a Hasher. Costs outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewHasher(cost int, log *logger.Logger) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Hasher{cost: cost, log: log.Named("password")}
}

// Cost returns the configured work factor
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt hash of plaintext
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" || len(plaintext) > maxPasswordBytes {
		return "", ErrInvalidInput
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrInvalidInput
		}
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hashed. A malformed stored hash is
// logged and reported as a plain mismatch. Input longer than bcrypt's limit
// never matches, since bcrypt would compare only its first 72 bytes.
func (h *Hasher) Verify(plaintext, hashed string) bool {
	if plaintext == "" || len(plaintext) > maxPasswordBytes {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		h.log.Error("stored password hash is malformed", zap.Error(err))
	}
	return false
}

// VerifyDummy burns one comparison against a throwaway hash so that sign-in
// for an unknown account costs about the same as a wrong password.
func (h *Hasher) VerifyDummy(plaintext string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
}
