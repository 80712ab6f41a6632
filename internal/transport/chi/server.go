// Package chi exposes the search pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragsearch/internal/domain"
	"github.com/kailas-cloud/ragsearch/internal/metrics"
	healthuc "github.com/kailas-cloud/ragsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/ragsearch/internal/usecase/search"
)

// Embedder turns a text query into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ErrorResponse is the JSON error body for every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       = "bad_request"
	CodeConfiguration    = "configuration_error"
	CodeRetrieval        = "retrieval_error"
	CodeLLM              = "llm_error"
	CodeStoreUnavailable = "store_unavailable"
	CodeInternal         = "internal_error"
)

// SearchRequest is the POST /v1/search body. Either Query or Embedding is
// required; the selection strategies additionally require Query.
type SearchRequest struct {
	Query      string    `json:"query,omitempty"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Partitions []string  `json:"partitions,omitempty"`
	Filter     string    `json:"filter,omitempty"`
}

// SearchResultItem is one hit in the SearchResponse.
type SearchResultItem struct {
	ID       int64   `json:"id"`
	Score    float32 `json:"score"`
	Text     string  `json:"text"`
	FileID   string  `json:"file_id"`
	FileName string  `json:"file_name,omitempty"`
	SourceID string  `json:"source_id,omitempty"`
	Pages    string  `json:"pages,omitempty"`
	Chapters string  `json:"chapters,omitempty"`
	TypeFile string  `json:"type_file,omitempty"`
}

// SearchResponse is the POST /v1/search reply.
type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
	Count   int                `json:"count"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the search pipeline.
type Server struct {
	strategy      searchuc.Strategy
	strategyName  string
	embedder      Embedder
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. embedder may be nil when clients
// always supply precomputed embeddings.
func NewServer(
	strategy searchuc.Strategy,
	strategyName string,
	embedder Embedder,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		strategy:     strategy,
		strategyName: strategyName,
		embedder:     embedder,
		health:       health,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrConfiguration, http.StatusBadRequest, CodeConfiguration),
		sentinelHandler(domain.ErrNotConnected, http.StatusServiceUnavailable, CodeStoreUnavailable),
		sentinelHandler(domain.ErrRetrieval, http.StatusBadGateway, CodeRetrieval),
		sentinelHandler(domain.ErrLLMCall, http.StatusBadGateway, CodeLLM),
	}
	return s
}

// Routes mounts the API endpoints on a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.SearchDocuments)
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)
}

// SearchDocuments handles POST /v1/search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Query == "" && len(req.Embedding) == 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Either query or embedding is required")
		return
	}

	embedding := req.Embedding
	if len(embedding) == 0 {
		if s.embedder == nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest,
				"No embedding provider configured; supply a precomputed embedding")
			return
		}
		var err error
		embedding, err = s.embedder.Embed(r.Context(), req.Query)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
	}

	start := time.Now()
	results, err := s.strategy.Search(r.Context(), searchuc.Request{
		Embedding:  embedding,
		UserQuery:  req.Query,
		Partitions: req.Partitions,
		FilterExpr: req.Filter,
	})
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(s.strategyName, "error").Inc()
		s.handleDomainError(w, err)
		return
	}
	metrics.SearchRequestsTotal.WithLabelValues(s.strategyName, "success").Inc()
	metrics.SearchRequestDuration.WithLabelValues(s.strategyName).Observe(time.Since(start).Seconds())
	metrics.SearchResultsReturned.WithLabelValues(s.strategyName).Observe(float64(len(results)))

	items := make([]SearchResultItem, len(results))
	for i, res := range results {
		items[i] = resultToItem(res)
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: items, Count: len(items)})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func resultToItem(r domain.SearchResult) SearchResultItem {
	return SearchResultItem{
		ID:       r.ID,
		Score:    r.Score,
		Text:     r.Text,
		FileID:   r.FileID,
		FileName: r.FileName,
		SourceID: r.SourceID,
		Pages:    r.Pages,
		Chapters: r.Chapters,
		TypeFile: r.TypeFile,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrConfiguration,
		domain.ErrRetrieval,
		domain.ErrLLMCall,
		domain.ErrMetadataParse,
		domain.ErrNotConnected,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
