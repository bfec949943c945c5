package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/attestation"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/codec"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

/*
Server exposes a reserves database over HTTP.

Endpoints:
  GET /root
    - The committed root as a JSON string "0x<hex>"

  GET /proof/{id}
    - { balance, proof: [[side, "0x<sibling>"], ...], leaf_index, leaf_count }
    - 404 "User with ID <id> not found." for unknown accounts
    - 400 for ids that are not unsigned decimal integers
    - 500 when the store and the tree disagree

  GET /summary
    - Root, leaf count, total liabilities and tree parameters

  GET /root/signed
    - { token } where token is an ES256 JWT over the root (404 when signing is disabled)

  GET /.well-known/jwks.json
    - Key set verifying signed roots

  GET /health
    - { status: "ok" }

Every endpoint answers with CBOR instead of JSON when the request carries
"Accept: application/cbor". Each response carries an X-Request-Id header.
*/

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Config controls the listener and request limiting
type Config struct {
	Port int
	// RateLimit is the sustained requests per second across all clients; 0 disables limiting
	RateLimit float64
	RateBurst int
}

// Server handles HTTP requests for the proof service
type Server struct {
	db         *reserves.Database
	signer     *attestation.RootSigner
	cbor       *codec.CBORCodec
	limiter    *rate.Limiter
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates a server for db. signer may be nil, which disables the
// signed root endpoints.
func NewServer(cfg Config, db *reserves.Database, signer *attestation.RootSigner, logger *zap.Logger) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cborCodec, err := codec.NewCBORCodec()
	if err != nil {
		return nil, err
	}

	s := &Server{
		db:     db,
		signer: signer,
		cbor:   cborCodec,
		logger: logger,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /root", s.handleRoot)
	mux.HandleFunc("GET /proof/{id}", s.handleProof)
	mux.HandleFunc("GET /summary", s.handleSummary)

	// Attestation endpoints
	mux.HandleFunc("GET /root/signed", s.handleSignedRoot)
	mux.HandleFunc("GET /.well-known/jwks.json", s.handleJWKS)

	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.withMiddleware(mux),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s, nil
}

// Start listens on the configured port and serves in the background.
// Listen errors are returned synchronously.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln in the background
func (s *Server) Serve(ln net.Listener) error {
	go func() {
		s.logger.Sugar().Infow("Starting HTTP server", "address", ln.Addr().String(), "root", s.db.Root().Hex())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Sugar().Errorw("HTTP server error", "error", err)
		}
	}()
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
	}
	s.logger.Sugar().Infow("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Stop closes the HTTP server immediately
func (s *Server) Stop() error {
	return s.httpServer.Close()
}

// GetHandler returns the HTTP handler (for testing)
func (s *Server) GetHandler() http.Handler {
	return s.httpServer.Handler
}
