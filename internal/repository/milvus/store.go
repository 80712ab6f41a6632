// Package milvus wraps the Milvus Go SDK behind the narrow surface the
// search pipeline needs: a scoped connection, similarity search over the
// documents collection, and summary queries over the summaries collection.
package milvus

import (
	"context"
	"fmt"
	"net"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragsearch/internal/domain"
)

const (
	vectorField = "text_embedding"
	searchNProbe = 10

	// summaryQueryLimit bounds the full-catalogue query; summary records are
	// document-level, so the catalogue is small by construction.
	summaryQueryLimit = 10000
)

// documentOutputFields are the chunk-level fields returned by every search.
var documentOutputFields = []string{
	"text", "file_id", "file_name", "source_id", "pages", "chapters", "type_file",
}

// summaryOutputFields are the document-level fields of a summary record.
var summaryOutputFields = []string{
	"file_id", "file_name", "type_file", "total_pages", "total_chapters", "total_num_image", "text",
}

// api is the consumer interface over the Milvus SDK client (ISP).
type api interface {
	Search(
		ctx context.Context, collName string, partitions []string, expr string,
		outputFields []string, vectors []entity.Vector, vectorField string,
		metricType entity.MetricType, topK int, sp entity.SearchParam,
		opts ...client.SearchQueryOptionFunc,
	) ([]client.SearchResult, error)
	Query(
		ctx context.Context, collectionName string, partitionNames []string,
		expr string, outputFields []string, opts ...client.SearchQueryOptionFunc,
	) (client.ResultSet, error)
	LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error
	ReleaseCollection(ctx context.Context, collName string, opts ...client.ReleaseCollectionOption) error
	Close() error
}

// Config holds vector store connection settings.
type Config struct {
	URI                 string
	Host                string
	Port                string
	Token               string
	Username            string
	Password            string
	DBName              string
	DocumentsCollection string
	SummariesCollection string
}

// address resolves the dial target: URI wins over host/port.
func (c Config) address() string {
	if c.URI != "" {
		return c.URI
	}
	return net.JoinHostPort(c.Host, c.Port)
}

// Store owns one Milvus connection. It is a scoped resource: Connect on
// enter, Close on every exit path. A Store is exclusively owned by one
// pipeline instance for the duration of its scope.
type Store struct {
	cfg    Config
	conn   api
	logger *zap.Logger
}

// NewStore creates an unconnected store.
func NewStore(cfg Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{cfg: cfg, logger: logger}
}

// newStoreWithConn injects a pre-built client, used by tests.
func newStoreWithConn(cfg Config, conn api) *Store {
	return &Store{cfg: cfg, conn: conn, logger: zap.NewNop()}
}

// Connect dials Milvus and loads both collections into memory.
func (s *Store) Connect(ctx context.Context) error {
	if s.conn != nil {
		return nil
	}

	conn, err := client.NewClient(ctx, client.Config{
		Address:  s.cfg.address(),
		Username: s.cfg.Username,
		Password: s.cfg.Password,
		APIKey:   s.cfg.Token,
		DBName:   s.cfg.DBName,
	})
	if err != nil {
		return fmt.Errorf("connect milvus %s: %w: %w", s.cfg.address(), domain.ErrRetrieval, err)
	}

	for _, coll := range []string{s.cfg.DocumentsCollection, s.cfg.SummariesCollection} {
		if err := conn.LoadCollection(ctx, coll, false); err != nil {
			_ = conn.Close()
			return fmt.Errorf("load collection %s: %w: %w", coll, domain.ErrRetrieval, err)
		}
	}

	s.conn = conn
	s.logger.Info("connected to milvus",
		zap.String("address", s.cfg.address()),
		zap.String("dbname", s.cfg.DBName),
		zap.String("documents_collection", s.cfg.DocumentsCollection),
		zap.String("summaries_collection", s.cfg.SummariesCollection),
	)
	return nil
}

// Close releases both collections and closes the connection. Safe to call on
// an unconnected store.
func (s *Store) Close(ctx context.Context) error {
	if s.conn == nil {
		return nil
	}

	for _, coll := range []string{s.cfg.DocumentsCollection, s.cfg.SummariesCollection} {
		if err := s.conn.ReleaseCollection(ctx, coll); err != nil {
			s.logger.Warn("release collection failed", zap.String("collection", coll), zap.Error(err))
		}
	}

	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return fmt.Errorf("close milvus connection: %w", err)
	}
	s.logger.Info("milvus connection closed")
	return nil
}

// Ping verifies the summaries collection is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.conn == nil {
		return domain.ErrNotConnected
	}
	if _, err := s.conn.Query(
		ctx, s.cfg.SummariesCollection, nil, "id >= 0",
		[]string{"file_id"}, client.WithLimit(1),
	); err != nil {
		return fmt.Errorf("ping summaries collection: %w: %w", domain.ErrRetrieval, err)
	}
	return nil
}
