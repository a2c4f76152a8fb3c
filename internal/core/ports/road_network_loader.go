package ports

import (
	"context"

	"routing/internal/core/domain/model/roadnet"
)

// RoadNetworkLoader retrieves the read-only road network from the
// relational store.
//
// Roads and nodes are loaded whole — those tables are orders of magnitude
// smaller than segments. Segments stream in fixed-size batches to bound
// peak memory; each batch arrives with its feedback samples and traffic
// conditions already attached.
//
// Implementations must report store-connectivity failures as
// DataAccessError, distinct from empty results: "no data" and "database
// unreachable" are different operator problems.
type RoadNetworkLoader interface {
	LoadRoads(ctx context.Context) ([]roadnet.Road, error)

	LoadNodes(ctx context.Context) ([]roadnet.RoadNode, error)

	// LoadSegments invokes handle once per batch, in ascending segment-id
	// order, until the table is exhausted or handle returns an error.
	LoadSegments(ctx context.Context, handle func(batch []roadnet.RoadSegment) error) error
}
