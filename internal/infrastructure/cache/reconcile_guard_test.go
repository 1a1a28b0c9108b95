package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryReconcileGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("serializes runs per user", func(t *testing.T) {
		guard := NewInMemoryReconcileGuard(time.Minute)
		userID := uuid.New()

		ok, err := guard.Begin(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = guard.Begin(ctx, userID)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, guard.End(ctx, userID))

		ok, err = guard.Begin(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("different users do not contend", func(t *testing.T) {
		guard := NewInMemoryReconcileGuard(time.Minute)

		ok, err := guard.Begin(ctx, uuid.New())
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = guard.Begin(ctx, uuid.New())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired slot is reclaimed", func(t *testing.T) {
		guard := NewInMemoryReconcileGuard(time.Minute)
		userID := uuid.New()

		now := time.Now()
		guard.nowFunc = func() time.Time { return now }

		ok, err := guard.Begin(ctx, userID)
		require.NoError(t, err)
		require.True(t, ok)

		// a crashed run never called End; the TTL reclaims the slot
		guard.nowFunc = func() time.Time { return now.Add(2 * time.Minute) }

		ok, err = guard.Begin(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
