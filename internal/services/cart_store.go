// internal/services/cart_store.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ermimobile/emobile-backend/internal/models"
)

// CartStore persists whole carts under an identity key. An absent key loads as an empty cart.
type CartStore interface {
	Load(ctx context.Context, key string) (*models.Cart, error)
	Save(ctx context.Context, key string, cart *models.Cart) error
}

func decodeCart(data []byte) (*models.Cart, error) {
	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return models.NewCart(lines...), nil
}

func encodeCart(cart *models.Cart) ([]byte, error) {
	lines := cart.Lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	return json.Marshal(lines)
}

// DatabaseCartStore keeps carts in the cart_snapshots table.
type DatabaseCartStore struct {
	db *gorm.DB
}

func NewDatabaseCartStore(db *gorm.DB) *DatabaseCartStore {
	return &DatabaseCartStore{db: db}
}

func (s *DatabaseCartStore) Load(ctx context.Context, key string) (*models.Cart, error) {
	var snapshot models.CartSnapshot
	err := s.db.WithContext(ctx).Where("cart_key = ?", key).First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewCart(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return decodeCart([]byte(snapshot.Lines))
}

func (s *DatabaseCartStore) Save(ctx context.Context, key string, cart *models.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}

	snapshot := models.CartSnapshot{
		CartKey:   key,
		Lines:     string(data),
		UpdatedAt: time.Now(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"lines", "updated_at"}),
	}).Create(&snapshot).Error
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// RedisCartStore keeps carts as JSON values that expire after ttl of inactivity.
type RedisCartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCartStore(rdb *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{rdb: rdb, ttl: ttl}
}

func (s *RedisCartStore) redisKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}

func (s *RedisCartStore) Load(ctx context.Context, key string) (*models.Cart, error) {
	val, err := s.rdb.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewCart(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return decodeCart(val)
}

func (s *RedisCartStore) Save(ctx context.Context, key string, cart *models.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.redisKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
