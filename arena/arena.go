// Package arena implements the per-request bump allocator: a region reset
// in O(1) at request end, with an escape list that promotes objects which
// must outlive the request to a caller-supplied global allocator.
package arena

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EscapeReason enumerates why an allocation must outlive its request. The
// current implementation treats every reason uniformly; a future policy
// layer could treat them differently (spec §4.4 notes this explicitly).
type EscapeReason byte

const (
	EscapeStoredToSession EscapeReason = iota
	EscapeStoredToCache
	EscapeStoredToGlobal
	EscapeReturnedToCaller
	EscapeCapturedByClosure
	EscapeExplicitMark
)

func (r EscapeReason) String() string {
	switch r {
	case EscapeStoredToSession:
		return "stored-to-session"
	case EscapeStoredToCache:
		return "stored-to-cache"
	case EscapeStoredToGlobal:
		return "stored-to-global"
	case EscapeReturnedToCaller:
		return "returned-to-caller"
	case EscapeCapturedByClosure:
		return "captured-by-closure"
	case EscapeExplicitMark:
		return "explicit-mark"
	default:
		return "unknown"
	}
}

// CopyFunc deep-copies ptr into dst, the global (long-lived) allocator.
// Per-item failures are swallowed by design (spec §4.4, §9 open question);
// the arena only logs an aggregate count.
type CopyFunc func(ptr interface{}, dst GlobalAllocator) error

// GlobalAllocator is the longer-lived allocator escaped objects are
// promoted into. Implementations must be safe for concurrent use since it
// is shared across every request's arena (spec §5).
type GlobalAllocator interface {
	Store(key string, value interface{})
}

type escapeEntry struct {
	ptr      interface{}
	size     int
	reason   EscapeReason
	copyFn   CopyFunc
}

// Stats reports per-request allocation bookkeeping.
type Stats struct {
	Allocations int
	Bytes       int
	Escapes     int
	PromoteErrs int
}

// RequestArena is a bump-allocating region dedicated to one in-flight
// request. Capacity (the backing buffer) is retained and reused across
// requests via begin_request/end_request; only the cursor and escape list
// reset.
type RequestArena struct {
	mu sync.Mutex

	requestID  string
	startedAt  time.Time
	endedAt    time.Time
	cursor     int
	capacity   int
	stats      Stats
	escapes    []escapeEntry
	nextReqNum uint64
}

// NewRequestArena allocates a fresh arena with the given logical byte
// capacity (informational; Go's own allocator backs every slice).
func NewRequestArena(capacity int) *RequestArena {
	return &RequestArena{capacity: capacity}
}

// BeginRequest resets the bump cursor, stamps a new request id and start
// timestamp, and clears the escape list. The id pairs a monotonically
// increasing sequence number (unique per arena, stable under reuse) with
// a uuid (unique across the arena pool and any distributed trace that
// correlates against it).
func (a *RequestArena) BeginRequest() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextReqNum++
	a.requestID = fmt.Sprintf("%d-%s", a.nextReqNum, uuid.NewString())
	a.startedAt = time.Now()
	a.endedAt = time.Time{}
	a.cursor = 0
	a.stats = Stats{}
	a.escapes = a.escapes[:0]
	return a.requestID
}

// RequestID reports the id stamped by the most recent BeginRequest.
func (a *RequestArena) RequestID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requestID
}

// RequestSeq reports the monotonically increasing sequence number
// stamped by the most recent BeginRequest, counting from 1.
func (a *RequestArena) RequestSeq() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nextReqNum
}

// Alloc accounts for n units of allocation (logical bump) and returns a
// freshly made slice of T-shaped capacity; the value.Retain/Release
// discipline, not this bump pointer, governs actual Go-heap lifetime.
func Alloc[T any](a *RequestArena, n int) []T {
	a.mu.Lock()
	defer a.mu.Unlock()
	var zero T
	size := n * sizeOf(zero)
	a.cursor += size
	a.stats.Allocations++
	a.stats.Bytes += size
	return make([]T, n)
}

func sizeOf(v interface{}) int {
	switch v.(type) {
	case int64, float64:
		return 8
	case bool:
		return 1
	default:
		return 16 // pointer-sized payload, approximate
	}
}

// MarkEscape records ptr as an object that must outlive the request. At
// EndRequest, copyFn(ptr, globalAllocator) runs for every entry; failures
// are counted but never abort the sweep.
func (a *RequestArena) MarkEscape(ptr interface{}, size int, reason EscapeReason, copyFn CopyFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.escapes = append(a.escapes, escapeEntry{ptr: ptr, size: size, reason: reason, copyFn: copyFn})
	a.stats.Escapes++
}

// EndRequest promotes every escaped object into dst, stamps the end
// timestamp, and resets the bump cursor. It returns the final stats
// snapshot for the request that just ended.
func (a *RequestArena) EndRequest(dst GlobalAllocator) Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.endedAt = time.Now()
	for _, e := range a.escapes {
		if e.copyFn == nil {
			continue
		}
		if err := e.copyFn(e.ptr, dst); err != nil {
			a.stats.PromoteErrs++
		}
	}
	stats := a.stats
	a.cursor = 0
	a.escapes = a.escapes[:0]
	return stats
}

// Stats reports the current request's allocation counters.
func (a *RequestArena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Elapsed reports the duration between BeginRequest and EndRequest; zero
// if the request has not ended yet.
func (a *RequestArena) Elapsed() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.endedAt.IsZero() {
		return 0
	}
	return a.endedAt.Sub(a.startedAt)
}
