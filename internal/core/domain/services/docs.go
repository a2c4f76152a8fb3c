// Package services contains stateless domain services of the routing
// pipeline: logic that operates across model types without belonging to any
// single aggregate.
package services
