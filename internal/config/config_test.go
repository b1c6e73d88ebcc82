package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "DB_PORT", "REDIS_ADDR", "AVAILABILITY_CACHE_TTL", "PRIORITY_STOCK_REFERENCE_UNITS", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.AvailabilityTTL)
	assert.Equal(t, 10, cfg.Scoring.StockReferenceUnits)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PORT", "")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("AVAILABILITY_CACHE_TTL", "1m")
	t.Setenv("PRIORITY_STOCK_REFERENCE_UNITS", "25")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := LoadConfig()

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, time.Minute, cfg.Redis.AvailabilityTTL)
	assert.Equal(t, 25, cfg.Scoring.StockReferenceUnits)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	t.Setenv("AVAILABILITY_CACHE_TTL", "soon")

	cfg := LoadConfig()

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.Redis.AvailabilityTTL)
}
