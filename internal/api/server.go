package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Server implements ServerInterface on top of a Resolver.
type Server struct {
	resolver *Resolver
	maxBatch int
	logger   *slog.Logger
}

// NewServer creates a new server. A maxBatch of zero or less accepts batches of any size.
func NewServer(resolver *Resolver, maxBatch int, logger *slog.Logger) ServerInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		resolver: resolver,
		maxBatch: maxBatch,
		logger:   logger,
	}
}

// Resolve handles POST /
func (s *Server) Resolve(w http.ResponseWriter, r *http.Request) {
	var digests ResolveJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&digests); err != nil {
		ResolveRequests.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if s.maxBatch > 0 && len(digests) > s.maxBatch {
		ResolveRequests.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Batch of %d digests exceeds the limit of %d", len(digests), s.maxBatch))
		return
	}

	records, err := s.resolver.Resolve(r.Context(), digests)
	if err != nil {
		ResolveRequests.WithLabelValues("error").Inc()
		s.logger.Error("failed to resolve batch", "digests", len(digests), "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to resolve digests")
		return
	}

	resp := make([]Record, 0, len(records))
	for _, rec := range records {
		resp = append(resp, Record{Hash: rec.Digest, Value: rec.Value})
	}

	ResolveRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, resp)
}

// GetDigest handles GET /digests/{digest}
func (s *Server) GetDigest(w http.ResponseWriter, r *http.Request, digest string) {
	rec, ok, err := s.resolver.ResolveOne(r.Context(), digest)
	if err != nil {
		s.logger.Error("failed to resolve digest", "digest", digest, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to resolve digest")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "digest not found")
		return
	}

	writeJSON(w, http.StatusOK, Record{Hash: rec.Digest, Value: rec.Value})
}

// Healthz handles GET /healthz
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.resolver.Ping(r.Context()); err != nil {
		s.logger.Warn("store unreachable", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, Health{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, Health{Status: "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Error{Error: msg})
}
