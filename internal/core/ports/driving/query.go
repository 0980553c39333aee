package driving

import (
	"context"

	"github.com/notera-io/notera-cli/internal/core/domain"
)

// QueryService answers natural-language queries against the note index.
type QueryService interface {
	// Query embeds the query text, searches the vector index and returns
	// results ranked by blended similarity and freshness.
	Query(ctx context.Context, query string, opts domain.QueryOptions) ([]domain.QueryResult, error)
}
