// Package namedlock provides a process-local cooperative lock keyed by name.
//
// It backs the build registry's per-instance serialization guarantee: at most
// one build per instance name is in flight within this process. The lock is
// held only in process memory — it gives no protection against a second
// process racing on the same name, and it is lost on crash.
package namedlock

import (
	"context"
	"sync"
)

// NamedLock is a set of independent locks addressed by string key. Locks for
// different keys never contend with each other. The zero value is not usable;
// construct with New.
type NamedLock struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// New creates an empty NamedLock.
func New() *NamedLock {
	return &NamedLock{slots: make(map[string]chan struct{})}
}

// Acquire blocks until the lock for key is free or ctx is done. Waiting is
// not an error condition: a caller that waited simply proceeds once the
// holder releases, with no queued work implied.
func (l *NamedLock) Acquire(ctx context.Context, key string) error {
	slot := l.slot(key)

	select {
	case slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire acquires the lock for key without blocking. Returns false when
// the lock is already held.
func (l *NamedLock) TryAcquire(key string) bool {
	slot := l.slot(key)

	select {
	case slot <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees the lock for key. Releasing a lock that is not held panics;
// that is always a programming error.
func (l *NamedLock) Release(key string) {
	slot := l.slot(key)

	select {
	case <-slot:
	default:
		panic("namedlock: release of unheld lock: " + key)
	}
}

// slot returns the capacity-1 channel for key, creating it on first use.
// Slots are never removed: the key space (instance names) is small and fixed
// by configuration.
func (l *NamedLock) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	return slot
}
