package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/client"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/config"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/hashing"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "reserves-client",
		Usage: "Proof of reserves client for checking account inclusion",
		Description: `A client for a proof of reserves server.

Fetches the published root and per-account inclusion proofs, and replays
the proofs locally so an account holder does not have to trust the server's
word that their balance is included.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server-url",
				Usage:   "Base URL of the reserves server",
				Value:   fmt.Sprintf("http://localhost:%d", config.DefaultPort),
				EnvVars: []string{config.EnvReservesServerURL},
			},
			&cli.StringFlag{
				Name:    "hash-algorithm",
				Value:   hashing.DefaultAlgorithm,
				Usage:   fmt.Sprintf("Hash algorithm the server commits with: %v", hashing.Names()),
				EnvVars: []string{config.EnvReservesHashAlgorithm},
			},
			&cli.StringFlag{
				Name:    "leaf-tag",
				Value:   config.DefaultLeafTag,
				Usage:   "Leaf tag the server commits with",
				EnvVars: []string{config.EnvReservesLeafTag},
			},
			&cli.StringFlag{
				Name:    "branch-tag",
				Value:   config.DefaultBranchTag,
				Usage:   "Branch tag the server commits with",
				EnvVars: []string{config.EnvReservesBranchTag},
			},
			&cli.StringFlag{
				Name:    "leaf-encoding",
				Value:   string(reserves.DefaultLeafEncoding),
				Usage:   "Leaf serialization the server commits with (open or closed)",
				EnvVars: []string{config.EnvReservesLeafEncoding},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvReservesVerbose},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "root",
				Usage:  "Print the published root",
				Action: rootCommand,
			},
			{
				Name:   "summary",
				Usage:  "Print the root together with tree parameters and total liabilities",
				Action: summaryCommand,
			},
			{
				Name:  "proof",
				Usage: "Print the balance and inclusion proof for an account",
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "id",
						Usage:    "Account ID",
						Required: true,
					},
				},
				Action: proofCommand,
			},
			{
				Name:  "verify",
				Usage: "Fetch root and proof for an account and verify inclusion locally",
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "id",
						Usage:    "Account ID",
						Required: true,
					},
				},
				Action: verifyCommand,
			},
			{
				Name:   "verify-signed-root",
				Usage:  "Verify the signed root against the server's JWKS and the served root",
				Action: verifySignedRootCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func parseClientConfig(c *cli.Context) (*config.ReservesClientConfig, error) {
	cfg := &config.ReservesClientConfig{
		ServerURL:     c.String("server-url"),
		HashAlgorithm: c.String("hash-algorithm"),
		LeafTag:       c.String("leaf-tag"),
		BranchTag:     c.String("branch-tag"),
		LeafEncoding:  c.String("leaf-encoding"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// createClient creates a reserves client from CLI context
func createClient(c *cli.Context) (*client.Client, *config.ReservesClientConfig, error) {
	cfg, err := parseClientConfig(c)
	if err != nil {
		return nil, nil, err
	}

	zapLogger, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	rc, err := client.NewClient(&client.ClientConfig{
		ServerURL: cfg.ServerURL,
		Logger:    zapLogger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create reserves client: %w", err)
	}
	return rc, cfg, nil
}

func rootCommand(c *cli.Context) error {
	rc, _, err := createClient(c)
	if err != nil {
		return err
	}
	defer rc.Close()

	root, err := rc.GetRoot(c.Context)
	if err != nil {
		return fmt.Errorf("failed to get root: %w", err)
	}
	fmt.Println(root)
	return nil
}

func summaryCommand(c *cli.Context) error {
	rc, _, err := createClient(c)
	if err != nil {
		return err
	}
	defer rc.Close()

	summary, err := rc.GetSummary(c.Context)
	if err != nil {
		return fmt.Errorf("failed to get summary: %w", err)
	}
	fmt.Printf("Root:           %s\n", summary.Root)
	fmt.Printf("Accounts:       %d\n", summary.LeafCount)
	fmt.Printf("Total balance:  %s\n", summary.TotalBalance)
	fmt.Printf("Hash algorithm: %s\n", summary.HashAlgorithm)
	fmt.Printf("Leaf encoding:  %s\n", summary.LeafEncoding)
	fmt.Printf("Leaf tag:       %s\n", summary.LeafTag)
	fmt.Printf("Branch tag:     %s\n", summary.BranchTag)
	return nil
}

func proofCommand(c *cli.Context) error {
	id := c.Uint64("id")

	rc, _, err := createClient(c)
	if err != nil {
		return err
	}
	defer rc.Close()

	resp, err := rc.GetProof(c.Context, id)
	if err != nil {
		return fmt.Errorf("failed to get proof: %w", err)
	}

	fmt.Printf("Account %d balance: %d\n", id, resp.Balance)
	fmt.Printf("Leaf %d of %d\n", resp.LeafIndex, resp.LeafCount)
	for i, item := range resp.Proof {
		side := "left"
		if item.Side == 1 {
			side = "right"
		}
		fmt.Printf("  %2d %-5s %s\n", i, side, item.Sibling)
	}
	return nil
}

func verifyCommand(c *cli.Context) error {
	id := c.Uint64("id")

	rc, cfg, err := createClient(c)
	if err != nil {
		return err
	}
	defer rc.Close()

	alg, err := hashing.Lookup(cfg.HashAlgorithm)
	if err != nil {
		return err
	}
	encoding, err := reserves.ParseLeafEncoding(cfg.LeafEncoding)
	if err != nil {
		return err
	}

	result, err := rc.VerifyAccount(c.Context, id, &client.VerifyParams{
		Algorithm:    alg,
		LeafTag:      []byte(cfg.LeafTag),
		BranchTag:    []byte(cfg.BranchTag),
		LeafEncoding: encoding,
	})
	if err != nil {
		return fmt.Errorf("failed to verify account: %w", err)
	}

	if !result.Valid {
		return fmt.Errorf("account %d with balance %d is NOT included in root %s", id, result.Balance, result.Root)
	}
	fmt.Printf("✅ Account %d with balance %d is included in root %s\n", id, result.Balance, result.Root)
	return nil
}

func verifySignedRootCommand(c *cli.Context) error {
	rc, _, err := createClient(c)
	if err != nil {
		return err
	}
	defer rc.Close()

	claims, err := rc.VerifySignedRoot(c.Context)
	if err != nil {
		return fmt.Errorf("failed to verify signed root: %w", err)
	}
	fmt.Printf("✅ Root %s signed by %s\n", claims.Root, claims.Issuer)
	fmt.Printf("  Accounts:      %d\n", claims.LeafCount)
	fmt.Printf("  Total balance: %s\n", claims.TotalBalance)
	return nil
}
