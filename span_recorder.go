package spankit

import (
	"sync"

	"github.com/spankit/spankit-go/internal/metrics"
)

// A SpanRecorder is the bounded ledger shared by reference between a
// transaction span and all of its descendants. Safe for concurrent use;
// children may register and finish from multiple goroutines.
//
// Capping is applied at registration time, not at finish time, so the
// first-opened spans of a long-lived transaction are always the ones retained.
// That keeps the policy deterministic and O(1), with no sorting or LRU
// machinery.
type SpanRecorder struct {
	mu            sync.Mutex
	maxSpans      int
	openSpanCount int
	finishedSpans []*Span
	overflowOnce  sync.Once
}

// NewSpanRecorder returns a recorder with the given capacity. Non-positive
// capacities fall back to DefaultMaxSpans.
func NewSpanRecorder(maxSpans int) *SpanRecorder {
	if maxSpans <= 0 {
		maxSpans = DefaultMaxSpans
	}
	return &SpanRecorder{maxSpans: maxSpans}
}

// registerOpen counts a span against the recorder's capacity. Spans arriving
// past the cap get their recorder reference cleared and are never tracked from
// then on; eviction by refusal, not removal, so already-registered spans stay
// retained. The transaction root occupies the first slot, so a recorder of
// capacity N tracks the root plus its first N descendants.
func (r *SpanRecorder) registerOpen(s *Span) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openSpanCount++
	if r.openSpanCount > r.maxSpans+1 {
		s.spanRecorder = nil
		metrics.SpansDropped.Inc()
		r.overflowOnce.Do(func() {
			emitEvent(newEventSpanCapacity(r.maxSpans))
		})
	}
}

// recordFinished appends a finished span. There is no dedup check; the finish
// guard on Span guarantees at-most-once.
func (r *SpanRecorder) recordFinished(s *Span) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishedSpans = append(r.finishedSpans, s)
}

// finished returns a snapshot of the finished spans in record order.
func (r *SpanRecorder) finished() []*Span {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make([]*Span, len(r.finishedSpans))
	copy(snapshot, r.finishedSpans)
	return snapshot
}

// OpenSpanCount returns how many spans were ever registered. The counter only
// grows; finishing a span does not decrement it.
func (r *SpanRecorder) OpenSpanCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openSpanCount
}

// MaxSpans returns the capacity fixed at construction.
func (r *SpanRecorder) MaxSpans() int {
	return r.maxSpans
}
