// Package testutil holds shared fixtures for package tests: a migrated
// SQLite database and in-memory stand-ins for the cache and message bus.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	"github.com/Additional-Code/orderdesk/internal/migration"
)

// Logger returns a zap logger that writes through t.Log.
func Logger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
}

// Config returns a configuration pointing at a fresh SQLite file under t.TempDir.
func Config(t *testing.T) config.Config {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "orderdesk.db")
	return config.Config{
		Cache: config.Cache{Enabled: true, Driver: "noop", DefaultTTL: time.Minute},
		Messaging: config.Messaging{
			Driver:  "noop",
			Enabled: true,
			Kafka:   config.Kafka{Topic: "orders.events"},
		},
		Database: config.Database{
			Driver:    "sqlite",
			WriterDSN: dsn,
			ReaderDSN: dsn,
		},
		Observability: config.Observability{ServiceName: "orderdesk-test"},
	}
}

// NewConnections opens the SQLite database from cfg and applies all migrations.
func NewConnections(t *testing.T, cfg config.Config) *database.Connections {
	t.Helper()

	conns, err := database.Open(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conns.Close() })

	mig, err := migration.New(cfg, conns, Logger(t))
	require.NoError(t, err)
	require.NoError(t, mig.Up(context.Background()))

	return conns
}

// MemoryCache is a cache.Store kept in a map.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string][]byte)}
}

var _ cache.Store = (*MemoryCache)(nil)

// Get implements cache.Store.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

// Set implements cache.Store.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements cache.Store.
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Has reports whether key is cached.
func (m *MemoryCache) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

// Publisher is a messaging.Client that records published messages.
type Publisher struct {
	mu       sync.Mutex
	topic    string
	messages []messaging.Message
}

// NewPublisher returns a Publisher bound to topic.
func NewPublisher(topic string) *Publisher {
	return &Publisher{topic: topic}
}

var _ messaging.Client = (*Publisher)(nil)

// Publish implements messaging.Client.
func (p *Publisher) Publish(_ context.Context, key []byte, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, messaging.Message{
		Topic: p.topic,
		Key:   append([]byte(nil), key...),
		Value: append([]byte(nil), value...),
		Time:  time.Now().UTC(),
	})
	return nil
}

// Consume implements messaging.Client by replaying recorded messages.
func (p *Publisher) Consume(ctx context.Context, handler messaging.Handler) error {
	for _, msg := range p.Messages() {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Topic implements messaging.Client.
func (p *Publisher) Topic() string { return p.topic }

// Messages returns a copy of everything published so far.
func (p *Publisher) Messages() []messaging.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]messaging.Message(nil), p.messages...)
}
