package otp

import (
	"context"
	"testing"
	"time"

	"github.com/learnhub-api/internal/domain"
	"github.com/learnhub-api/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode_SixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9')
		}
	}
}

func TestVerify_HappyPath_SingleUse(t *testing.T) {
	m := NewManager(cache.NewMemory(), ScopeVerify)
	ctx := context.Background()

	require.NoError(t, m.Store(ctx, "a@x.com", "042137", 10*time.Minute))
	require.NoError(t, m.Verify(ctx, "a@x.com", "042137"))

	// The code was consumed; a second attempt finds nothing.
	err := m.Verify(ctx, "a@x.com", "042137")
	assert.ErrorIs(t, err, domain.ErrOTPExpired)
}

func TestVerify_Mismatch(t *testing.T) {
	m := NewManager(cache.NewMemory(), ScopeVerify)
	ctx := context.Background()

	require.NoError(t, m.Store(ctx, "a@x.com", "111111", 10*time.Minute))

	err := m.Verify(ctx, "a@x.com", "222222")
	assert.ErrorIs(t, err, domain.ErrOTPMismatch)

	// A mismatch does not consume the code.
	require.NoError(t, m.Verify(ctx, "a@x.com", "111111"))
}

func TestVerify_Expired(t *testing.T) {
	m := NewManager(cache.NewMemory(), ScopeVerify)
	ctx := context.Background()

	require.NoError(t, m.Store(ctx, "a@x.com", "333333", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	err := m.Verify(ctx, "a@x.com", "333333")
	assert.ErrorIs(t, err, domain.ErrOTPExpired)
}

func TestStore_OverwritesPriorCode(t *testing.T) {
	m := NewManager(cache.NewMemory(), ScopeVerify)
	ctx := context.Background()

	require.NoError(t, m.Store(ctx, "a@x.com", "111111", 10*time.Minute))
	require.NoError(t, m.Store(ctx, "a@x.com", "222222", 10*time.Minute))

	// The superseded code no longer matches.
	err := m.Verify(ctx, "a@x.com", "111111")
	assert.ErrorIs(t, err, domain.ErrOTPMismatch)

	require.NoError(t, m.Verify(ctx, "a@x.com", "222222"))
}

func TestKey_ScopedAndCaseInsensitive(t *testing.T) {
	store := cache.NewMemory()
	verify := NewManager(store, ScopeVerify)
	reset := NewManager(store, ScopeReset)
	ctx := context.Background()

	require.NoError(t, verify.Store(ctx, "A@X.com", "123456", 10*time.Minute))

	// A verification code is invisible to the reset scope.
	err := reset.Verify(ctx, "a@x.com", "123456")
	assert.ErrorIs(t, err, domain.ErrOTPExpired)

	// Identity matching ignores case.
	require.NoError(t, verify.Verify(ctx, "a@X.COM", "123456"))
}
