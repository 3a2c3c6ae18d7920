// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CART_STORE", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CART_MERGE_ON_LOGIN", "")
	t.Setenv("ORDER_TOTAL_TOLERANCE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("RATE_LIMIT_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "database", cfg.Cart.Store)
	assert.False(t, cfg.Cart.MergeOnLogin)
	assert.Equal(t, 0.01, cfg.Order.TotalTolerance)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("CART_MERGE_ON_LOGIN", "true")
	t.Setenv("ORDER_TOTAL_TOLERANCE", "0.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ermimobile.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Cart.MergeOnLogin)
	assert.Equal(t, 0.5, cfg.Order.TotalTolerance)
	assert.Equal(t, []string{"https://ermimobile.com"}, cfg.Server.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment: "production",
			JWT:         JWTConfig{SecretKey: "real-secret"},
			Seed:        SeedConfig{AdminPassword: "real-password"},
			Database:    DatabaseConfig{Driver: "sqlite"},
			Cart:        CartConfig{Store: "database"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"default jwt secret", func(c *Config) { c.JWT.SecretKey = defaultJWTSecret }},
		{"default admin password", func(c *Config) { c.Seed.AdminPassword = defaultAdminPassword }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"postgres without password", func(c *Config) { c.Database.Driver = "postgres" }},
		{"redis carts without redis", func(c *Config) { c.Cart.Store = "redis" }},
		{"unknown cart store", func(c *Config) { c.Cart.Store = "memcached" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDSN(t *testing.T) {
	sqlite := DatabaseConfig{Driver: "sqlite", Path: "./shop.db"}
	assert.Equal(t, "./shop.db?_foreign_keys=on&_busy_timeout=5000", sqlite.DSN())

	mysql := DatabaseConfig{Driver: "mysql", User: "u", Password: "p", Host: "db", Port: "3306", Database: "shop"}
	assert.Contains(t, mysql.DSN(), "u:p@tcp(db:3306)/shop")

	redis := RedisConfig{Host: "cache", Port: "6379"}
	assert.Equal(t, "cache:6379", redis.Addr())
}
