package video

import (
	"sync/atomic"
)

type latestEntry[T any] struct {
	value T
	seq   uint64
}

// Latest is a single-slot handoff between a producer and a consumer running
// at different rates. Store replaces the held value and Load always returns
// the newest completed one. Older values are discarded, never queued.
//
// The zero value is ready to use and safe for concurrent use.
type Latest[T any] struct {
	entry atomic.Pointer[latestEntry[T]]
	seq   atomic.Uint64
}

// Store publishes v and returns its sequence number. When concurrent stores
// race, the one with the highest sequence number wins.
func (l *Latest[T]) Store(v T) uint64 {
	next := &latestEntry[T]{value: v, seq: l.seq.Add(1)}
	for {
		cur := l.entry.Load()
		if cur != nil && cur.seq > next.seq {
			return next.seq
		}
		if l.entry.CompareAndSwap(cur, next) {
			return next.seq
		}
	}
}

// Load returns the newest value and its sequence number. ok is false if
// nothing was stored yet.
func (l *Latest[T]) Load() (v T, seq uint64, ok bool) {
	cur := l.entry.Load()
	if cur == nil {
		return v, 0, false
	}
	return cur.value, cur.seq, true
}
