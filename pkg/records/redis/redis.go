package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyRecords           = "reserves:records"
	keySchemaVersion     = "reserves:metadata:schema_version"
	currentSchemaVersion = "v1"

	connectTimeout = 5 * time.Second
	saveChunkSize  = 1000
)

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address string
	// Password is the optional Redis password
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is prepended to every key, e.g. "tenant1:" stores the list
	// under "tenant1:reserves:records".
	KeyPrefix string
}

// RedisRecordStore keeps the ordered record list in a single Redis list.
type RedisRecordStore struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

var _ records.IRecordStore = (*RedisRecordStore)(nil)

// NewRedisRecordStore connects to Redis and validates the schema version.
func NewRedisRecordStore(cfg *RedisConfig, logger *zap.Logger) (*RedisRecordStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "failed to connect to Redis at %s", cfg.Address)
	}

	rs := &RedisRecordStore{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rs.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	logger.Sugar().Infow("Redis record store initialized", "address", cfg.Address, "db", cfg.DB, "key_prefix", cfg.KeyPrefix)
	return rs, nil
}

func (r *RedisRecordStore) prefixKey(key string) string {
	return r.keyPrefix + key
}

func (r *RedisRecordStore) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if err == redis.Nil {
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}

	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}
	return nil
}

// SaveRecords replaces the stored list atomically with a MULTI/EXEC pipeline.
func (r *RedisRecordStore) SaveRecords(ctx context.Context, recs []reserves.Record) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return records.ErrClosed
	}

	listKey := r.prefixKey(keyRecords)
	values := make([]interface{}, 0, len(recs))
	for i := range recs {
		data, err := records.MarshalRecord(&recs[i])
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, listKey)
		for start := 0; start < len(values); start += saveChunkSize {
			end := min(start+saveChunkSize, len(values))
			pipe.RPush(ctx, listKey, values[start:end]...)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to save records")
	}

	r.logger.Sugar().Infow("Saved records to redis", "key", listKey, "count", len(recs))
	return nil
}

// LoadRecords returns the stored list in order.
func (r *RedisRecordStore) LoadRecords(ctx context.Context) ([]reserves.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, records.ErrClosed
	}

	listKey := r.prefixKey(keyRecords)
	values, err := r.client.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load records")
	}

	recs := make([]reserves.Record, 0, len(values))
	for i, v := range values {
		rec, err := records.UnmarshalRecord([]byte(v))
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt record at %s[%d]", listKey, i)
		}
		recs = append(recs, *rec)
	}
	return recs, nil
}

// Close closes the client. Idempotent.
func (r *RedisRecordStore) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.client.Close(); err != nil {
		return errors.Wrap(err, "failed to close Redis client")
	}

	r.logger.Sugar().Info("Redis record store closed")
	return nil
}

// HealthCheck pings Redis and verifies the schema key exists
func (r *RedisRecordStore) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return records.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "redis health check failed")
	}

	_, err := r.client.Get(ctx, r.prefixKey(keySchemaVersion)).Result()
	if err == redis.Nil {
		return fmt.Errorf("schema version not found - database may not be properly initialized")
	}
	if err != nil {
		return errors.Wrap(err, "failed to verify schema version")
	}
	return nil
}
