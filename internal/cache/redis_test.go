package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
)

func TestRedisStoreRejectsEmptyKeysWithoutDialing(t *testing.T) {
	cfg := config.Cache{Driver: "redis", DefaultTTL: time.Minute, Redis: config.Redis{Addr: "127.0.0.1:0"}}
	store := newRedisStore(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	t.Cleanup(func() { _ = store.client.Close() })

	ctx := context.Background()
	_, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, store.Set(ctx, "", []byte("v"), 0))
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestNewStoreRedisDefersConnection(t *testing.T) {
	cfg := config.Config{Cache: config.Cache{Driver: "redis", Redis: config.Redis{Addr: "127.0.0.1:0"}}}
	store, err := NewStore(fxtest.NewLifecycle(t), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &redisStore{}, store)
}
