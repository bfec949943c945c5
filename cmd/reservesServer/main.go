package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/attestation"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/config"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/hashing"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records/recordSource"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/server"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "reserves-server",
		Usage: "Proof of reserves server",
		Description: `Serves a tagged-hash Merkle commitment over account balances.

Clients fetch the published root once, then request an inclusion proof for
their own account and check that their balance is part of the committed
liabilities.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   config.DefaultPort,
				Usage:   "HTTP server port",
				EnvVars: []string{config.EnvReservesPort},
			},
			&cli.StringFlag{
				Name:    "hash-algorithm",
				Value:   hashing.DefaultAlgorithm,
				Usage:   fmt.Sprintf("Hash algorithm for leaves and branches: %v", hashing.Names()),
				EnvVars: []string{config.EnvReservesHashAlgorithm},
			},
			&cli.StringFlag{
				Name:    "leaf-tag",
				Value:   config.DefaultLeafTag,
				Usage:   "Domain separation tag for leaf hashes",
				EnvVars: []string{config.EnvReservesLeafTag},
			},
			&cli.StringFlag{
				Name:    "branch-tag",
				Value:   config.DefaultBranchTag,
				Usage:   "Domain separation tag for branch hashes",
				EnvVars: []string{config.EnvReservesBranchTag},
			},
			&cli.StringFlag{
				Name:    "leaf-encoding",
				Value:   string(reserves.DefaultLeafEncoding),
				Usage:   `Leaf serialization: "open" for "(id,balance" or "closed" for "(id,balance)"`,
				EnvVars: []string{config.EnvReservesLeafEncoding},
			},
			&cli.StringFlag{
				Name:    "source",
				Value:   config.SourceType_Demo.String(),
				Usage:   fmt.Sprintf("Record source: %s", config.GetSupportedSourceTypesString()),
				EnvVars: []string{config.EnvReservesSource},
			},
			&cli.StringFlag{
				Name:    "records-file",
				Usage:   "Path to a .json or .csv records file (file source)",
				EnvVars: []string{config.EnvReservesRecordsFile},
			},
			&cli.StringFlag{
				Name:    "badger-path",
				Usage:   "Badger data directory (badger source)",
				EnvVars: []string{config.EnvReservesBadgerPath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis host:port (redis source)",
				EnvVars: []string{config.EnvReservesRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password (redis source)",
				EnvVars: []string{config.EnvReservesRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number (redis source)",
				EnvVars: []string{config.EnvReservesRedisDB},
			},
			&cli.StringFlag{
				Name:    "redis-key-prefix",
				Usage:   "Prefix for all Redis keys (redis source)",
				EnvVars: []string{config.EnvReservesRedisKeyPrefix},
			},
			&cli.BoolFlag{
				Name:    "signed-root",
				Usage:   "Serve an ES256 signed root and its JWKS",
				EnvVars: []string{config.EnvReservesSignedRoot},
			},
			&cli.StringFlag{
				Name:    "signing-key",
				Usage:   "PEM encoded P-256 key for signed roots (ephemeral when empty)",
				EnvVars: []string{config.EnvReservesSigningKey},
			},
			&cli.StringFlag{
				Name:    "issuer",
				Value:   config.DefaultIssuer,
				Usage:   "Issuer claim for signed roots",
				EnvVars: []string{config.EnvReservesIssuer},
			},
			&cli.Float64Flag{
				Name:    "rate-limit",
				Usage:   "Requests per second across all clients (0 disables)",
				EnvVars: []string{config.EnvReservesRateLimit},
			},
			&cli.IntFlag{
				Name:    "rate-burst",
				Value:   config.DefaultRateBurst,
				Usage:   "Burst size for the rate limiter",
				EnvVars: []string{config.EnvReservesRateBurst},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvReservesVerbose},
			},
		},
		Action: runReservesServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runReservesServer(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	cfg := parseReservesConfig(c)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.TagsEqual() {
		l.Sugar().Warnw("Leaf and branch tags are equal, leaves and branches share a hash domain", "tag", cfg.LeafTag)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := recordSource.Open(&cfg.Source, l)
	if err != nil {
		return fmt.Errorf("failed to open record source: %w", err)
	}
	recs, err := src.LoadRecords(ctx)
	_ = src.Close()
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	alg, err := hashing.Lookup(cfg.HashAlgorithm)
	if err != nil {
		return err
	}
	encoding, err := reserves.ParseLeafEncoding(cfg.LeafEncoding)
	if err != nil {
		return err
	}

	db, err := reserves.New(recs, reserves.Options{
		LeafTag:      []byte(cfg.LeafTag),
		BranchTag:    []byte(cfg.BranchTag),
		Algorithm:    alg,
		LeafEncoding: encoding,
		Logger:       l,
	})
	if err != nil {
		return fmt.Errorf("failed to build reserves database: %w", err)
	}

	var signer *attestation.RootSigner
	if cfg.SignedRoot {
		signer, err = attestation.LoadRootSigner(cfg.SigningKeyPath, cfg.Issuer, l)
		if err != nil {
			return fmt.Errorf("failed to create root signer: %w", err)
		}
	}

	srv, err := server.NewServer(server.Config{
		Port:      cfg.Port,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	}, db, signer, l)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if c.Bool("verbose") {
		l.Sugar().Infow("Reserves Server Configuration",
			"port", cfg.Port,
			"hash_algorithm", cfg.HashAlgorithm,
			"leaf_tag", cfg.LeafTag,
			"branch_tag", cfg.BranchTag,
			"leaf_encoding", cfg.LeafEncoding,
			"source", cfg.Source.Type,
			"signed_root", cfg.SignedRoot,
			"rate_limit", cfg.RateLimit)
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	l.Sugar().Infow("Reserves Server running",
		"port", cfg.Port,
		"root", db.Root().Hex(),
		"accounts", db.LeafCount(),
		"total_balance", db.TotalBalance().String())
	l.Sugar().Infow("Available endpoints",
		"root", "GET /root",
		"proof", "GET /proof/{id}",
		"summary", "GET /summary",
		"signed_root", "GET /root/signed",
		"health", "GET /health")
	l.Sugar().Info("Press Ctrl+C to stop")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	l.Sugar().Info("Reserves Server stopped")
	return nil
}

func parseReservesConfig(c *cli.Context) *config.ReservesServerConfig {
	cfg := &config.ReservesServerConfig{
		Port:          c.Int("port"),
		HashAlgorithm: c.String("hash-algorithm"),
		LeafTag:       c.String("leaf-tag"),
		BranchTag:     c.String("branch-tag"),
		LeafEncoding:  c.String("leaf-encoding"),
		Source: config.SourceConfig{
			Type:        config.SourceType(c.String("source")),
			RecordsFile: c.String("records-file"),
			BadgerPath:  c.String("badger-path"),
		},
		SignedRoot:     c.Bool("signed-root"),
		SigningKeyPath: c.String("signing-key"),
		Issuer:         c.String("issuer"),
		RateLimit:      c.Float64("rate-limit"),
		RateBurst:      c.Int("rate-burst"),
		Debug:          c.Bool("verbose"),
		Verbose:        c.Bool("verbose"),
	}
	if cfg.Source.Type == config.SourceType_Redis {
		cfg.Source.Redis = &config.RedisConfig{
			Address:   c.String("redis-address"),
			Password:  c.String("redis-password"),
			DB:        c.Int("redis-db"),
			KeyPrefix: c.String("redis-key-prefix"),
		}
	}
	return cfg
}
