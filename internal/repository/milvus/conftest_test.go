package milvus

import (
	"context"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// mockAPI implements the consumer interface over the SDK client for tests.
type mockAPI struct {
	searchFn func(ctx context.Context, collName string, partitions []string, expr string) ([]client.SearchResult, error)
	queryFn  func(ctx context.Context, collName string, expr string) (client.ResultSet, error)

	searchCalls   int
	queryCalls    int
	loadedColls   []string
	releasedColls []string
	closed        bool
}

func (m *mockAPI) Search(
	ctx context.Context, collName string, partitions []string, expr string,
	_ []string, _ []entity.Vector, _ string, _ entity.MetricType, _ int,
	_ entity.SearchParam, _ ...client.SearchQueryOptionFunc,
) ([]client.SearchResult, error) {
	m.searchCalls++
	if m.searchFn != nil {
		return m.searchFn(ctx, collName, partitions, expr)
	}
	return nil, nil
}

func (m *mockAPI) Query(
	ctx context.Context, collName string, _ []string, expr string,
	_ []string, _ ...client.SearchQueryOptionFunc,
) (client.ResultSet, error) {
	m.queryCalls++
	if m.queryFn != nil {
		return m.queryFn(ctx, collName, expr)
	}
	return nil, nil
}

func (m *mockAPI) LoadCollection(_ context.Context, collName string, _ bool, _ ...client.LoadCollectionOption) error {
	m.loadedColls = append(m.loadedColls, collName)
	return nil
}

func (m *mockAPI) ReleaseCollection(_ context.Context, collName string, _ ...client.ReleaseCollectionOption) error {
	m.releasedColls = append(m.releasedColls, collName)
	return nil
}

func (m *mockAPI) Close() error {
	m.closed = true
	return nil
}

func testConfig() Config {
	return Config{
		Host:                "localhost",
		Port:                "19530",
		DBName:              "default",
		DocumentsCollection: "documents",
		SummariesCollection: "summaries",
	}
}

// chunkResult builds one SDK search result with the documents schema.
func chunkResult(ids []int64, scores []float32, fileIDs, texts []string) client.SearchResult {
	return client.SearchResult{
		ResultCount: len(ids),
		IDs:         entity.NewColumnInt64("id", ids),
		Scores:      scores,
		Fields: client.ResultSet{
			entity.NewColumnVarChar("text", texts),
			entity.NewColumnVarChar("file_id", fileIDs),
			entity.NewColumnVarChar("file_name", make([]string, len(ids))),
			entity.NewColumnVarChar("source_id", make([]string, len(ids))),
			entity.NewColumnVarChar("pages", make([]string, len(ids))),
			entity.NewColumnVarChar("chapters", make([]string, len(ids))),
			entity.NewColumnVarChar("type_file", make([]string, len(ids))),
		},
	}
}

// summaryResultSet builds a summaries query result.
func summaryResultSet(fileIDs, names, types []string, pages []int64, texts []string) client.ResultSet {
	n := len(fileIDs)
	return client.ResultSet{
		entity.NewColumnVarChar("file_id", fileIDs),
		entity.NewColumnVarChar("file_name", names),
		entity.NewColumnVarChar("type_file", types),
		entity.NewColumnInt64("total_pages", pages),
		entity.NewColumnInt64("total_chapters", make([]int64, n)),
		entity.NewColumnInt64("total_num_image", make([]int64, n)),
		entity.NewColumnVarChar("text", texts),
	}
}
