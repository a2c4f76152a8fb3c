package commands

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"routing/internal/core/domain/model/exportgraph"
	"routing/internal/core/domain/model/roadnet"
	"routing/internal/core/domain/services"
	"routing/internal/core/ports"
)

// networkSnapshot is the fully loaded road network for one pipeline run.
type networkSnapshot struct {
	roads    map[int64]roadnet.Road
	nodes    []roadnet.RoadNode
	segments []roadnet.RoadSegment
}

// loadNetworkSnapshot pulls the complete network through the batched
// loader. Segment batches are accumulated: the exporter needs the whole set
// for cross-segment node deduplication; batching only bounds query-layer
// memory spikes.
func loadNetworkSnapshot(ctx context.Context, loader ports.RoadNetworkLoader) (networkSnapshot, error) {
	roads, err := loader.LoadRoads(ctx)
	if err != nil {
		return networkSnapshot{}, err
	}
	roadsByID := make(map[int64]roadnet.Road, len(roads))
	for _, road := range roads {
		roadsByID[road.ID] = road
	}

	nodes, err := loader.LoadNodes(ctx)
	if err != nil {
		return networkSnapshot{}, err
	}

	var segments []roadnet.RoadSegment
	err = loader.LoadSegments(ctx, func(batch []roadnet.RoadSegment) error {
		segments = append(segments, batch...)
		return nil
	})
	if err != nil {
		return networkSnapshot{}, err
	}

	return networkSnapshot{roads: roadsByID, nodes: nodes, segments: segments}, nil
}

// exportSharedGraph resolves weights, builds the interchange document, and
// writes it to graphPath. Returns the built graph and the mean traffic
// factor used as the build's average-weight summary.
func exportSharedGraph(
	snapshot networkSnapshot,
	resolver services.WeightResolver,
	graphPath string,
	now time.Time,
) (*exportgraph.Graph, float64, error) {
	weights := resolver.ResolveAll(snapshot.segments, now)

	graph, err := exportgraph.Build(exportgraph.Input{
		Segments: snapshot.segments,
		Roads:    snapshot.roads,
		Nodes:    snapshot.nodes,
		Weights:  weights,
	})
	if err != nil {
		return nil, 0, err
	}

	if err := os.MkdirAll(filepath.Dir(graphPath), 0o755); err != nil {
		return nil, 0, err
	}
	file, err := os.Create(graphPath)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	if _, err := graph.WriteTo(file); err != nil {
		return nil, 0, err
	}
	return graph, averageTrafficFactor(weights), nil
}

func averageTrafficFactor(weights map[int64]roadnet.DerivedWeight) float64 {
	if len(weights) == 0 {
		return 0
	}
	sum := 0.0
	for _, w := range weights {
		sum += w.TrafficFactor
	}
	return sum / float64(len(weights))
}
