// Package roadnet models the read-only road-network input to the graph
// pipeline: roads, nodes, and segments with their attached feedback samples
// and traffic conditions.
//
// These types are loaded from the relational store and never written back.
// Optional data is modeled as optional — a segment without feedback has an
// empty slice, a segment without an active traffic condition has a nil
// pointer — so that missing-vs-present distinctions are enforced by the type
// system rather than by runtime checks downstream.
package roadnet
