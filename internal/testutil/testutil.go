// Package testutil provides in-memory stand-ins for the service's
// external dependencies so tests can run without postgres, redis, or a
// message broker.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/freightline/services/settlement/internal/auth"
	"example.com/freightline/services/settlement/internal/cache"
	"example.com/freightline/services/settlement/internal/database"
	"example.com/freightline/services/settlement/internal/repository"
	"example.com/freightline/services/settlement/internal/service"
)

// NewDB opens an in-memory sqlite database with the full schema
func NewDB(t *testing.T) database.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A single connection keeps every session on the same in-memory db
	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := database.Wrap(gormDB)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}

// NewRepo builds a repository over a fresh in-memory database
func NewRepo(t *testing.T) repository.Repository {
	t.Helper()
	return repository.NewRepository(NewDB(t))
}

// NewLogger returns a quiet logger for tests
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

// FakeCache is an in-memory cache.RedisClient
type FakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

// NewFakeCache creates an empty in-memory cache
func NewFakeCache() *FakeCache {
	return &FakeCache{data: make(map[string]string)}
}

func (f *FakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	if !ok {
		return "", cache.Nil
	}
	return value, nil
}

func (f *FakeCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *FakeCache) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *FakeCache) Close() error {
	return nil
}

// FakeBus records published messages instead of sending them
type FakeBus struct {
	mu       sync.Mutex
	Messages []interface{}
}

// NewFakeBus creates an empty recording bus
func NewFakeBus() *FakeBus {
	return &FakeBus{}
}

func (f *FakeBus) SendMessage(ctx context.Context, body interface{}, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, body)
	return nil
}

func (f *FakeBus) Close() error {
	return nil
}

// NewService wires a full service over in-memory dependencies
func NewService(t *testing.T) (service.Service, repository.Repository) {
	t.Helper()

	repo := NewRepo(t)
	svc, err := service.NewService(service.ServiceConfig{
		Repository:      repo,
		Cache:           NewFakeCache(),
		MessagingClient: NewFakeBus(),
		Tokens:          auth.NewManager("test-secret", time.Hour),
		Logger:          NewLogger(),
	})
	if err != nil {
		t.Fatalf("failed to build test service: %v", err)
	}

	return svc, repo
}
