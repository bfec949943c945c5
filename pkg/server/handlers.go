package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/codec"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/types"
)

// handleRoot serves the root as a bare JSON (or CBOR) string
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, r, codec.EncodeRoot(s.db.Root()))
}

// handleProof serves the balance and inclusion proof for one account
func (s *Server) handleProof(w http.ResponseWriter, r *http.Request) {
	rawID := r.PathValue("id")
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid user ID %q", rawID), http.StatusBadRequest)
		return
	}

	proof, balance, err := s.db.Proof(id)
	switch {
	case errors.Is(err, reserves.ErrAccountNotFound):
		http.Error(w, fmt.Sprintf("User with ID %d not found.", id), http.StatusNotFound)
		return
	case err != nil:
		s.logger.Sugar().Errorw("Failed to build proof", "id", id, "request_id", requestIDFrom(r.Context()), "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	s.writeResponse(w, r, codec.EncodeProof(balance, proof))
}

// handleSummary serves the root together with the parameters needed to verify proofs
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, r, &types.SummaryResponse{
		Root:          codec.EncodeRoot(s.db.Root()),
		LeafCount:     s.db.LeafCount(),
		TotalBalance:  s.db.TotalBalance().String(),
		HashAlgorithm: s.db.Algorithm().Name(),
		LeafEncoding:  string(s.db.LeafEncoding()),
		LeafTag:       string(s.db.LeafTag()),
		BranchTag:     string(s.db.BranchTag()),
	})
}

// handleSignedRoot serves a freshly signed token over the root
func (s *Server) handleSignedRoot(w http.ResponseWriter, r *http.Request) {
	if s.signer == nil {
		http.Error(w, "Root signing is not enabled", http.StatusNotFound)
		return
	}

	token, err := s.signer.SignRoot(s.db)
	if err != nil {
		s.logger.Sugar().Errorw("Failed to sign root", "request_id", requestIDFrom(r.Context()), "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	s.writeResponse(w, r, &types.SignedRootResponse{Token: token})
}

// handleJWKS serves the public key set for signed roots. Always JSON.
func (s *Server) handleJWKS(w http.ResponseWriter, r *http.Request) {
	if s.signer == nil {
		http.Error(w, "Root signing is not enabled", http.StatusNotFound)
		return
	}

	data, err := json.Marshal(s.signer.PublicJWKS())
	if err != nil {
		s.logger.Sugar().Errorw("Failed to encode key set", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, r, &types.HealthResponse{Status: "ok"})
}

// wantsCBOR reports whether the Accept header asks for CBOR
func wantsCBOR(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == codec.ContentTypeCBOR {
			return true
		}
	}
	return false
}

// writeResponse encodes v as CBOR or JSON depending on the Accept header
func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, v any) {
	if wantsCBOR(r) {
		data, err := s.cbor.Marshal(v)
		if err != nil {
			s.logger.Sugar().Errorw("Failed to encode CBOR response", "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", codec.ContentTypeCBOR)
		_, _ = w.Write(data)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Sugar().Errorw("Failed to encode response", "error", err)
	}
}
