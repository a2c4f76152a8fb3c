// Package graphbuild contains the BuildRecord aggregate: the durable row
// tracking one routing-graph build attempt from creation through deployment
// or failure.
//
// The package enforces the registry's central invariant at the type level:
// status values form a closed set with an explicit forward-only transition
// table, error messages are truncated before they reach persistence, and a
// record can only be mutated through its transition methods.
//
// Records are never deleted, only superseded; history is retained for audit
// and rollback.
package graphbuild
