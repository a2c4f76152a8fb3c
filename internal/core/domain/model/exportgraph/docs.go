// Package exportgraph builds the textual node/way interchange document
// consumed by the external graph compiler's first stage.
//
// The build is deterministic by construction: segments are sorted by ID
// before node-id assignment, node coordinates are quantized to 7 decimal
// digits before deduplication, and the writer emits pre-formatted values in
// a single fixed-order pass. Two runs over the same logical input produce
// byte-identical documents regardless of store iteration order.
//
// The graph is ephemeral: it exists only as the artifact handed to the
// compiler and is never persisted.
package exportgraph
