// Package ocexport bridges OpenCensus instrumentation into transaction
// events: register the Exporter with OpenCensus and every sampled trace is
// regrouped into one transaction delivered to an EventSink.
package ocexport

import (
	"sync"

	"go.opencensus.io/trace"

	spankit "github.com/spankit/spankit-go"
)

// Exporter implements trace.Exporter. OpenCensus exports spans one at a time
// as they finish, descendants before their root, so the exporter buffers
// descendants per trace until the root arrives, then rebuilds the tree and
// finishes the root so the assembled transaction flows to the sink.
type Exporter struct {
	sink     spankit.EventSink
	maxSpans int

	mu      sync.Mutex
	pending map[trace.TraceID][]*trace.SpanData
}

var _ trace.Exporter = (*Exporter)(nil)

// Option configures an Exporter.
type Option func(*Exporter)

// WithSink routes assembled transactions to the given sink.
func WithSink(sink spankit.EventSink) Option {
	return func(e *Exporter) { e.sink = sink }
}

// WithMaxSpans caps how many spans each rebuilt transaction may track.
func WithMaxSpans(maxSpans int) Option {
	return func(e *Exporter) { e.maxSpans = maxSpans }
}

// NewExporter creates an Exporter. Without options it tracks up to
// DefaultMaxSpans spans per trace and discards the assembled transactions.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		sink:     spankit.NoopSink{},
		maxSpans: spankit.DefaultMaxSpans,
		pending:  make(map[trace.TraceID][]*trace.SpanData),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportSpan queues the span until its trace root arrives, then reports the
// whole trace as one transaction. Traces whose root was not sampled are
// dropped wholesale.
func (e *Exporter) ExportSpan(sd *trace.SpanData) {
	if sd.ParentSpanID != (trace.SpanID{}) {
		e.mu.Lock()
		e.pending[sd.SpanContext.TraceID] = append(e.pending[sd.SpanContext.TraceID], sd)
		e.mu.Unlock()
		return
	}

	e.mu.Lock()
	descendants := e.pending[sd.SpanContext.TraceID]
	delete(e.pending, sd.SpanContext.TraceID)
	e.mu.Unlock()

	root := spankit.StartSpan(
		spankit.WithTraceID(convertTraceID(sd.SpanContext.TraceID)),
		spankit.WithSpanID(convertSpanID(sd.SpanContext.SpanID)),
		spankit.WithTransaction(sd.Name),
		spankit.WithSampled(sd.SpanContext.TraceOptions.IsSampled()),
		spankit.WithStartTime(sd.StartTime),
		spankit.WithDescription(sd.Status.Message),
		spankit.WithData(convertAttributes(sd.Attributes)),
		spankit.WithSink(e.sink),
	)
	root.SetStatus(convertStatus(sd.Status))
	root.StartTracking(e.maxSpans)

	for _, descendant := range descendants {
		span := root.Child(
			spankit.WithOp(descendant.Name),
			spankit.WithStartTime(descendant.StartTime),
			spankit.WithDescription(descendant.Status.Message),
			spankit.WithData(convertAttributes(descendant.Attributes)),
		)
		// Descendants keep the identifiers OpenCensus assigned to them; only
		// the root's child/parent wiring is ours.
		span.SpanID = convertSpanID(descendant.SpanContext.SpanID)
		span.ParentSpanID = convertSpanID(descendant.ParentSpanID)
		span.SetStatus(convertStatus(descendant.Status))
		span.FinishWithTime(descendant.EndTime)
	}

	root.FinishWithTime(sd.EndTime)
}
