package exportgraph

import (
	"fmt"
	"sort"
	"strconv"

	"routing/internal/core/domain/model/roadnet"
	"routing/internal/pkg/errs"
)

const (
	// coordinatePrecision quantizes coordinates to 7 decimal digits
	// (≈1 cm) before node deduplication.
	coordinatePrecision = 7

	// syntheticIDBase is the start of the private id space for nodes that
	// carry no externally-known identifier. The offset keeps synthetic ids
	// clear of real-world map ids.
	syntheticIDBase = 10_000_000

	// maxSkippedRatio is the fraction of skippable segments (unparsable or
	// degenerate geometry) above which the input is considered broken
	// rather than merely noisy.
	maxSkippedRatio = 0.5
)

// Node is one deduplicated graph vertex. Coordinates are stored already
// quantized and formatted so the writer cannot reintroduce nondeterminism.
type Node struct {
	ID  int64
	Lat string
	Lon string
}

// Tag is one key/value attribute of a way. Tag order within a way is fixed
// by construction.
type Tag struct {
	Key   string
	Value string
}

// Way is an ordered node-id sequence plus its tag set.
type Way struct {
	ID    int64
	Nodes []int64
	Tags  []Tag
}

// Graph is the assembled interchange document: a node table and a way list,
// ready to be written in one pass.
type Graph struct {
	nodes   []Node
	ways    []Way
	skipped int
}

// Input bundles everything the builder needs for one export run.
type Input struct {
	Segments []roadnet.RoadSegment
	// Roads indexes parent roads by id for name, class, and one-way data.
	Roads map[int64]roadnet.Road
	// Nodes supplies externally-known node identifiers for coordinate reuse.
	Nodes []roadnet.RoadNode
	// Weights holds the derived weight per segment id.
	Weights map[int64]roadnet.DerivedWeight
}

// Build assembles the graph. Segments are processed in id order regardless
// of input order, which fixes node-id assignment and way order across runs.
//
// Segments whose geometry cannot be parsed, or which resolve to fewer than
// two distinct quantized points, are counted and skipped. Build fails with a
// ValidationError when the segment set is empty or when skipped segments
// exceed maxSkippedRatio of the input.
func Build(in Input) (*Graph, error) {
	if len(in.Segments) == 0 {
		return nil, errs.NewValidationError("segment set is empty, nothing to export")
	}

	segments := make([]roadnet.RoadSegment, len(in.Segments))
	copy(segments, in.Segments)
	sort.Slice(segments, func(i, j int) bool { return segments[i].ID < segments[j].ID })

	b := &builder{
		graph:        &Graph{},
		nodeIDByKey:  make(map[string]int64),
		knownIDByKey: make(map[string]int64),
		nextSynthID:  syntheticIDBase,
	}
	for _, node := range in.Nodes {
		if node.KnownID != nil {
			b.knownIDByKey[coordKey(node.Lat, node.Lon)] = *node.KnownID
		}
	}

	for _, segment := range segments {
		b.addSegment(segment, in.Roads[segment.RoadID], in.Weights[segment.ID])
	}

	if float64(b.graph.skipped) > maxSkippedRatio*float64(len(segments)) {
		return nil, errs.NewValidationError(fmt.Sprintf(
			"%d of %d segments have unusable geometry", b.graph.skipped, len(segments)))
	}
	return b.graph, nil
}

// Nodes returns the node table in id-assignment order.
func (g *Graph) Nodes() []Node { return g.nodes }

// Ways returns the way list in construction order.
func (g *Graph) Ways() []Way { return g.ways }

// SkippedSegments returns how many input segments were dropped for
// unusable geometry.
func (g *Graph) SkippedSegments() int { return g.skipped }

type builder struct {
	graph        *Graph
	nodeIDByKey  map[string]int64
	knownIDByKey map[string]int64
	nextSynthID  int64
	nextWayID    int64
}

func (b *builder) addSegment(segment roadnet.RoadSegment, road roadnet.Road, weight roadnet.DerivedWeight) {
	points, err := ParseGeometry(segment.Geometry)
	if err != nil {
		b.graph.skipped++
		return
	}

	refs := make([]int64, 0, len(points))
	distinct := make(map[int64]struct{}, len(points))
	for _, point := range points {
		id := b.nodeID(point.Lat(), point.Lon())
		// Quantization can collapse adjacent polyline points.
		if n := len(refs); n > 0 && refs[n-1] == id {
			continue
		}
		refs = append(refs, id)
		distinct[id] = struct{}{}
	}
	if len(distinct) < 2 {
		b.graph.skipped++
		return
	}

	tags := segmentTags(segment, road, weight)

	oneWay := segment.OneWay || road.OneWay
	b.appendWay(refs, tags)
	if !oneWay {
		reversed := make([]int64, len(refs))
		for i, ref := range refs {
			reversed[len(refs)-1-i] = ref
		}
		b.appendWay(reversed, tags)
	}
}

func (b *builder) appendWay(refs []int64, tags []Tag) {
	b.nextWayID++
	b.graph.ways = append(b.graph.ways, Way{ID: b.nextWayID, Nodes: refs, Tags: tags})
}

// nodeID resolves a quantized coordinate to its node id, reusing an
// externally-known identifier when present and otherwise assigning the next
// synthetic id.
func (b *builder) nodeID(lat, lon float64) int64 {
	key := coordKey(lat, lon)
	if id, ok := b.nodeIDByKey[key]; ok {
		return id
	}

	id, ok := b.knownIDByKey[key]
	if !ok {
		id = b.nextSynthID
		b.nextSynthID++
	}
	b.nodeIDByKey[key] = id
	b.graph.nodes = append(b.graph.nodes, Node{
		ID:  id,
		Lat: formatCoord(lat),
		Lon: formatCoord(lon),
	})
	return id
}

func segmentTags(segment roadnet.RoadSegment, road roadnet.Road, weight roadnet.DerivedWeight) []Tag {
	tags := []Tag{{Key: "highway", Value: roadnet.HighwayTag(road.Type)}}
	if road.Name != "" {
		tags = append(tags, Tag{Key: "name", Value: road.Name})
	}
	if weight.RatingFactor != nil {
		tags = append(tags, Tag{Key: "user_rating", Value: strconv.FormatFloat(*weight.RatingFactor, 'f', 3, 64)})
	}
	tags = append(tags, Tag{Key: "traffic_value", Value: strconv.FormatFloat(weight.TrafficFactor, 'f', 1, 64)})
	if segment.SpeedLimit != nil {
		tags = append(tags, Tag{Key: "maxspeed", Value: strconv.Itoa(*segment.SpeedLimit)})
	}
	if segment.OneWay || road.OneWay {
		tags = append(tags, Tag{Key: "oneway", Value: "yes"})
	}
	return tags
}

func coordKey(lat, lon float64) string {
	return formatCoord(lat) + ":" + formatCoord(lon)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', coordinatePrecision, 64)
}
