package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragsearch/internal/config"
	"github.com/kailas-cloud/ragsearch/internal/domain"
	logpkg "github.com/kailas-cloud/ragsearch/internal/logger"
	"github.com/kailas-cloud/ragsearch/internal/metrics"
	"github.com/kailas-cloud/ragsearch/internal/repository/milvus"
	chiTransport "github.com/kailas-cloud/ragsearch/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/ragsearch/internal/transport/openai"
	healthuc "github.com/kailas-cloud/ragsearch/internal/usecase/health"
	metadatauc "github.com/kailas-cloud/ragsearch/internal/usecase/metadata"
	searchuc "github.com/kailas-cloud/ragsearch/internal/usecase/search"
	selectionuc "github.com/kailas-cloud/ragsearch/internal/usecase/selection"
	"github.com/kailas-cloud/ragsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ragsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("search_type", cfg.Search.Type),
		zap.Int("search_limit", cfg.Search.Limit),
	)

	searchType, err := domain.ParseSearchType(cfg.Search.Type)
	if err != nil {
		logger.Fatal("Invalid search type", zap.Error(err))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterLLMMetrics()

	// Connect to the vector store
	store := milvus.NewStore(milvus.Config{
		URI:                 cfg.Milvus.URI,
		Host:                cfg.Milvus.Host,
		Port:                cfg.Milvus.Port,
		Token:               cfg.Milvus.Token,
		Username:            cfg.Milvus.Username,
		Password:            cfg.Milvus.Password,
		DBName:              cfg.Milvus.DBName,
		DocumentsCollection: cfg.Milvus.DocumentsCollection,
		SummariesCollection: cfg.Milvus.SummariesCollection,
	}, logger)

	ctx := context.Background()
	if err := store.Connect(ctx); err != nil {
		logger.Fatal("Failed to connect to vector store", zap.Error(err))
	}
	defer func() { _ = store.Close(context.Background()) }()
	logger.Info("Connected to vector store",
		zap.String("documents", cfg.Milvus.DocumentsCollection),
		zap.String("summaries", cfg.Milvus.SummariesCollection),
	)

	// Build strategy collaborators — composition root
	deps := searchuc.Deps{
		Searcher: store,
		Limit:    cfg.Search.Limit,
		Logger:   logger,
	}

	var llmChecker healthuc.LLMChecker
	if searchType.NeedsSelection() {
		chooserModel := openaiTransport.NewTextModel(&openaiTransport.TextModelConfig{
			APIKey:    cfg.LLM.APIKey,
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			Operation: "chooser",
			Logger:    logger,
		})
		llmChecker = chooserModel

		chooser := selectionuc.NewChooser(chooserModel,
			cfg.LLM.Chooser.MaxTokens, cfg.LLM.Chooser.Temperature, logger)
		deps.Selector = selectionuc.New(store, chooser, logger)
	}
	if searchType == domain.SearchWithSelectionAndMetadata {
		extractorModel := openaiTransport.NewTextModel(&openaiTransport.TextModelConfig{
			APIKey:    cfg.LLM.APIKey,
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			Operation: "extractor",
			Logger:    logger,
		})
		extractor := metadatauc.NewExtractor(extractorModel,
			cfg.LLM.Extractor.MaxTokens, cfg.LLM.Extractor.Temperature, logger)
		deps.Filters = metadatauc.New(store, extractor, logger)
	}

	strategy, err := searchuc.NewStrategy(searchType, deps)
	if err != nil {
		logger.Fatal("Failed to build search strategy", zap.Error(err))
	}

	// Query embedder — optional, clients may send precomputed embeddings
	var embedder chiTransport.Embedder
	if cfg.Embedding.APIKey != "" {
		embedder = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
		logger.Info("Query embedder created",
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	}

	healthSvc := healthuc.New(store, llmChecker)

	server := chiTransport.NewServer(strategy, cfg.Search.Type, embedder, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
