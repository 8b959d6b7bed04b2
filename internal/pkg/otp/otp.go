package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/learnhub-api/internal/domain"
	"github.com/learnhub-api/internal/infrastructure/cache"
)

// Scopes namespace the cache keys so a verification code can never be
// replayed as a password-reset credential or vice versa.
const (
	ScopeVerify = "verify"
	ScopeReset  = "reset"
)

// Manager issues and checks one-time codes stored in the shared cache.
// Codes are single-use: a successful Verify deletes the entry. Issuing a
// new code overwrites any live one, so at most one code per identity is
// valid at a time.
type Manager struct {
	store cache.Store
	scope string
}

func NewManager(store cache.Store, scope string) *Manager {
	return &Manager{store: store, scope: scope}
}

// GenerateCode draws a 6-digit numeric code from crypto/rand. Leading
// zeros are preserved, so the result is always exactly six characters.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Store writes the code for identity with the given TTL, replacing any
// previous code. Last writer wins when a resend races a verify.
func (m *Manager) Store(ctx context.Context, identity, code string, ttl time.Duration) error {
	return m.store.Set(ctx, m.key(identity), code, ttl)
}

// Verify checks the submitted code against the stored one. A missing or
// expired entry is domain.ErrOTPExpired, a live but unequal code is
// domain.ErrOTPMismatch. On success the entry is deleted so the code
// cannot be used twice.
func (m *Manager) Verify(ctx context.Context, identity, submitted string) error {
	key := m.key(identity)

	var stored string
	ok, err := m.store.Get(ctx, key, &stored)
	if err != nil {
		return fmt.Errorf("read otp: %w", err)
	}
	if !ok {
		return domain.ErrOTPExpired
	}
	if stored != submitted {
		return domain.ErrOTPMismatch
	}

	if err := m.store.Delete(ctx, key); err != nil {
		slog.Warn("failed to delete used otp", "key", key, "err", err)
	}
	return nil
}

func (m *Manager) key(identity string) string {
	return fmt.Sprintf("otp:%s:%s", m.scope, strings.ToLower(identity))
}
