package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"marketplace-api/pkg/logger"
)

func newTestHasher() *Hasher {
	return NewHasher(bcrypt.MinCost, logger.NewNop())
}

func TestHash_RoundTrip(t *testing.T) {
	h := newTestHasher()

	passwords := []string{"pw", "correct horse battery staple", "pässwörd", strings.Repeat("x", 72)}
	for _, p := range passwords {
		hashed, err := h.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hashed)
		assert.True(t, h.Verify(p, hashed), "password %q should verify", p)
	}
}

func TestHash_IsSalted(t *testing.T) {
	h := newTestHasher()

	first, err := h.Hash("pw")
	require.NoError(t, err)
	second, err := h.Hash("pw")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "$2a$"))
}

func TestHash_InvalidInput(t *testing.T) {
	h := newTestHasher()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("a", 73)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed, err := h.Hash(tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, hashed)
		})
	}
}

func TestVerify_Mismatch(t *testing.T) {
	h := newTestHasher()

	hashed, err := h.Hash("pw1")
	require.NoError(t, err)

	assert.False(t, h.Verify("pw2", hashed))
	assert.False(t, h.Verify("", hashed))
}

func TestVerify_RejectsInputPastBcryptLimit(t *testing.T) {
	h := newTestHasher()

	stored := strings.Repeat("a", 72)
	hashed, err := h.Hash(stored)
	require.NoError(t, err)

	assert.True(t, h.Verify(stored, hashed))
	assert.False(t, h.Verify(stored+"x", hashed))
	assert.False(t, h.Verify(stored+"-different-suffix", hashed))
}

func TestVerify_MalformedHashIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := NewHasher(bcrypt.MinCost, &logger.Logger{Logger: zap.New(core)})

	tests := []string{"", "not-a-hash", "$2a$99$abcdefghijklmnopqrstuvwxyz0123456789ABCDEFGHIJKLMNOPQ"}
	for _, stored := range tests {
		assert.False(t, h.Verify("pw", stored))
	}

	assert.Equal(t, len(tests), logs.FilterMessage("stored password hash is malformed").Len())
}

func TestNewHasher_CostBounds(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0, nil).Cost())
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(bcrypt.MaxCost+1, nil).Cost())
	assert.Equal(t, 12, NewHasher(12, nil).Cost())
}

func TestVerifyDummy(t *testing.T) {
	h := newTestHasher()
	assert.NotPanics(t, func() {
		h.VerifyDummy("anything")
		h.VerifyDummy("again")
	})
}
