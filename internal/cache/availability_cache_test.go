package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"blood-request-routing/internal/config"
	"blood-request-routing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityKey(t *testing.T) {
	assert.Equal(t, "blood-availability:AB-", availabilityKey(models.BloodGroupABNeg))
	assert.NotEqual(t, availabilityKey(models.BloodGroupAPos), availabilityKey(models.BloodGroupANeg))
}

// Runs against a live Redis when TEST_REDIS_ADDR is set
func TestRedisAvailabilityCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	c := NewRedisAvailabilityCache(client, time.Minute)
	require.NoError(t, c.Invalidate(ctx, models.BloodGroupONeg))

	miss, err := c.Get(ctx, models.BloodGroupONeg)
	require.NoError(t, err)
	assert.Nil(t, miss)

	snapshot := &models.BloodAvailability{
		BloodGroup:     models.BloodGroupONeg,
		TotalUnits:     12,
		BanksWithStock: 3,
		CheckedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, c.Set(ctx, snapshot))

	hit, err := c.Get(ctx, models.BloodGroupONeg)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, 12, hit.TotalUnits)
	assert.Equal(t, 3, hit.BanksWithStock)
	assert.True(t, snapshot.CheckedAt.Equal(hit.CheckedAt))

	require.NoError(t, c.Invalidate(ctx, models.BloodGroupONeg))
	gone, err := c.Get(ctx, models.BloodGroupONeg)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
