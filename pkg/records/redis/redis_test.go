package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getTestRedisAddress returns REDIS_TEST_ADDRESS or localhost:6379
func getTestRedisAddress() string {
	if addr := os.Getenv("REDIS_TEST_ADDRESS"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

// requireRedis skips the test when no Redis server is reachable. Each test
// gets its own key prefix on DB 15.
func requireRedis(t *testing.T) *RedisRecordStore {
	t.Helper()

	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	cfg := &RedisConfig{
		Address:   getTestRedisAddress(),
		DB:        15,
		KeyPrefix: fmt.Sprintf("test:%s:%d:", t.Name(), time.Now().UnixNano()),
	}

	rs, err := NewRedisRecordStore(cfg, testLogger)
	if err != nil {
		t.Skipf("Redis not available at %s: %v", cfg.Address, err)
		return nil
	}

	t.Cleanup(func() {
		ctx := context.Background()
		_ = rs.client.Del(ctx, rs.prefixKey(keyRecords), rs.prefixKey(keySchemaVersion)).Err()
		_ = rs.Close()
	})
	return rs
}

func TestNewRedisRecordStore_InvalidConfig(t *testing.T) {
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	_, err := NewRedisRecordStore(nil, testLogger)
	assert.Error(t, err)

	_, err = NewRedisRecordStore(&RedisConfig{}, testLogger)
	assert.Error(t, err)
}

func TestRedisRecordStore_SaveAndLoad(t *testing.T) {
	rs := requireRedis(t)
	ctx := context.Background()

	empty, err := rs.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	in := make([]reserves.Record, 2500)
	for i := range in {
		in[i] = reserves.Record{ID: uint64(len(in) - i), Balance: uint64(i)}
	}
	require.NoError(t, rs.SaveRecords(ctx, in))

	out, err := rs.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	smaller := []reserves.Record{{ID: 1, Balance: 1}}
	require.NoError(t, rs.SaveRecords(ctx, smaller))
	out, err = rs.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, smaller, out)
}

func TestRedisRecordStore_CorruptRecord(t *testing.T) {
	rs := requireRedis(t)
	ctx := context.Background()

	require.NoError(t, rs.client.RPush(ctx, rs.prefixKey(keyRecords), "garbage").Err())

	_, err := rs.LoadRecords(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt record")
}

func TestRedisRecordStore_Close(t *testing.T) {
	rs := requireRedis(t)

	require.NoError(t, rs.HealthCheck())
	require.NoError(t, rs.Close())
	require.NoError(t, rs.Close())

	_, err := rs.LoadRecords(context.Background())
	assert.ErrorIs(t, err, records.ErrClosed)
	assert.ErrorIs(t, rs.HealthCheck(), records.ErrClosed)
}
