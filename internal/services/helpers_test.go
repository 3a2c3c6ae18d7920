// internal/services/helpers_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ermimobile/emobile-backend/internal/database"
	"github.com/ermimobile/emobile-backend/internal/models"
)

// newTestDB opens a private in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

func createProduct(t *testing.T, db *gorm.DB, name string, price int64, categoryID *uuid.UUID) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:       name,
		Price:      decimal.NewFromInt(price),
		Icon:       "fa-mobile-alt",
		Stock:      100,
		CategoryID: categoryID,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Name:          "Test User",
		Email:         email,
		Role:          role,
		EmailVerified: true,
	}
	require.NoError(t, user.SetPassword("Password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func guest(device string) models.Identity {
	return models.GuestIdentity(device)
}

func userIdentity(user *models.User, device string) models.Identity {
	return models.UserIdentity(user, device)
}

var errStoreDown = errors.New("store unavailable")

// flakyCartStore wraps a store and fails saves while down is set.
type flakyCartStore struct {
	CartStore
	mu   sync.Mutex
	down bool
}

func (s *flakyCartStore) setDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func (s *flakyCartStore) Save(ctx context.Context, key string, cart *models.Cart) error {
	s.mu.Lock()
	down := s.down
	s.mu.Unlock()
	if down {
		return errStoreDown
	}
	return s.CartStore.Save(ctx, key, cart)
}

// memoryFileStorage records uploads and can be told to fail.
type memoryFileStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
	failErr error
}

func newMemoryFileStorage() *memoryFileStorage {
	return &memoryFileStorage{files: make(map[string][]byte)}
}

func (s *memoryFileStorage) Upload(ctx context.Context, r io.Reader, options UploadOptions) (*UploadResult, error) {
	if s.failErr != nil {
		return nil, s.failErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s/%s.png", options.Folder, uuid.NewString())
	s.files[key] = data
	return &UploadResult{URL: "/uploads/" + key, Key: key, Size: int64(len(data)), MimeType: "image/png"}, nil
}

func (s *memoryFileStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	s.deleted = append(s.deleted, key)
	return nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event OrderEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}
	return types
}

// fakeWriter captures kafka messages instead of sending them.
type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}
