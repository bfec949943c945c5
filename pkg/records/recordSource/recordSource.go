// Package recordSource builds the record source selected by configuration.
package recordSource

import (
	"fmt"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/config"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records/badger"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records/file"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records/memory"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records/redis"
	"go.uber.org/zap"
)

// Open returns the source described by cfg. The caller owns Close.
func Open(cfg *config.SourceConfig, l *zap.Logger) (records.IRecordSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("source config cannot be nil")
	}

	switch cfg.Type {
	case config.SourceType_Demo, "":
		l.Sugar().Infow("Using demo records")
		return memory.NewDemoRecordStore(), nil
	case config.SourceType_File:
		src, err := file.NewFileRecordSource(cfg.RecordsFile, l)
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.SourceType_Badger, config.SourceType_Redis:
		return OpenStore(cfg, l)
	default:
		return nil, fmt.Errorf("unsupported record source %q, supported: %s", cfg.Type, config.GetSupportedSourceTypesString())
	}
}

// OpenStore returns a writable store for the badger and redis source types.
func OpenStore(cfg *config.SourceConfig, l *zap.Logger) (records.IRecordStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("source config cannot be nil")
	}

	switch cfg.Type {
	case config.SourceType_Badger:
		store, err := badger.NewBadgerRecordStore(cfg.BadgerPath, l)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.SourceType_Redis:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("redis config cannot be nil")
		}
		store, err := redis.NewRedisRecordStore(&redis.RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, l)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("record source %q is not writable, use badger or redis", cfg.Type)
	}
}
