// Package kernel contains shared value objects used across the routing
// domain: UUID identifiers and WGS84 geographic points.
//
// All types here are immutable value objects constructed through factory
// functions that enforce their invariants.
package kernel
