package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/config"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/hashing"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records/file"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records/memory"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records/recordSource"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "import-records",
		Usage: "Load account records from a file into badger or redis",
		Description: `Reads a .json or .csv records file, checks that it builds a valid
reserves tree and replaces the record list held by the target store.
Record order is preserved; it determines the committed root.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "records-file",
				Usage:   "Path to a .json or .csv records file",
				EnvVars: []string{config.EnvReservesRecordsFile},
			},
			&cli.BoolFlag{
				Name:  "demo",
				Usage: "Import the eight demo accounts instead of a file",
			},
			&cli.StringFlag{
				Name:     "target",
				Usage:    "Store to write: badger or redis",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "badger-path",
				Usage:   "Badger data directory",
				EnvVars: []string{config.EnvReservesBadgerPath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis host:port",
				EnvVars: []string{config.EnvReservesRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{config.EnvReservesRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number",
				EnvVars: []string{config.EnvReservesRedisDB},
			},
			&cli.StringFlag{
				Name:    "redis-key-prefix",
				Usage:   "Prefix for all Redis keys",
				EnvVars: []string{config.EnvReservesRedisKeyPrefix},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvReservesVerbose},
			},
		},
		Action: runImport,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runImport(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	var recs []reserves.Record
	switch {
	case c.Bool("demo"):
		recs = memory.DemoRecords()
	case c.String("records-file") != "":
		src, err := file.NewFileRecordSource(c.String("records-file"), l)
		if err != nil {
			return err
		}
		recs, err = src.LoadRecords(c.Context)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("either --records-file or --demo is required")
	}

	// reject input the server would refuse to start with
	db, err := reserves.New(recs, reserves.Options{
		LeafTag:   []byte(config.DefaultLeafTag),
		BranchTag: []byte(config.DefaultBranchTag),
		Algorithm: hashing.MustLookup(hashing.DefaultAlgorithm),
		Logger:    l,
	})
	if err != nil {
		return fmt.Errorf("records do not form a valid reserves tree: %w", err)
	}

	sourceCfg := &config.SourceConfig{
		Type:       config.SourceType(c.String("target")),
		BadgerPath: c.String("badger-path"),
	}
	if sourceCfg.Type == config.SourceType_Redis {
		sourceCfg.Redis = &config.RedisConfig{
			Address:   c.String("redis-address"),
			Password:  c.String("redis-password"),
			DB:        c.Int("redis-db"),
			KeyPrefix: c.String("redis-key-prefix"),
		}
	}
	if errs := sourceCfg.Validate(nil); len(errs) > 0 {
		return fmt.Errorf("invalid target: %w", errs.ToAggregate())
	}

	store, err := recordSource.OpenStore(sourceCfg, l)
	if err != nil {
		return fmt.Errorf("failed to open target store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := importInto(c.Context, store, recs); err != nil {
		return err
	}

	l.Sugar().Infow("Imported records",
		"target", sourceCfg.Type,
		"count", len(recs),
		"total_balance", db.TotalBalance().String(),
		"default_root", db.Root().Hex())
	return nil
}

// importInto replaces the records held by store after checking it is usable
func importInto(ctx context.Context, store records.IRecordStore, recs []reserves.Record) error {
	if err := store.HealthCheck(); err != nil {
		return fmt.Errorf("target store is not healthy: %w", err)
	}
	if err := store.SaveRecords(ctx, recs); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}
	return nil
}
