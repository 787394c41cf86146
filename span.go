package spankit

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/spankit/spankit-go/internal/metrics"
	"github.com/spankit/spankit-go/internal/timex"
)

// DefaultMaxSpans bounds how many spans a single transaction may track.
const DefaultMaxSpans = 1000

// Sampled is the tri-state sampling decision attached to a trace. The zero
// value means no decision has been made yet. The decision is fixed on the root
// span and inherited verbatim by every descendant; it is never recomputed.
type Sampled int

const (
	SampledFalse     Sampled = -1
	SampledUndefined Sampled = 0
	SampledTrue      Sampled = 1
)

// Bool reports whether the trace was positively sampled.
func (s Sampled) Bool() bool {
	return s == SampledTrue
}

func (s Sampled) String() string {
	switch s {
	case SampledFalse:
		return "SampledFalse"
	case SampledUndefined:
		return "SampledUndefined"
	case SampledTrue:
		return "SampledTrue"
	}
	return "SampledInvalid"
}

// Span encapsulates all state associated with one timed unit of work inside a
// trace: identity, hierarchy, timing, tags and data, and the recorder shared
// with the rest of its span tree.
//
// A span is owned by the goroutine that created it. The recorder it shares
// with its descendants is safe for concurrent use, so children may be created
// and finished on other goroutines; the fields of one Span value must not be
// mutated concurrently.
type Span struct {
	// TraceID is a 32-hex identifier shared by every span in one trace.
	TraceID string

	// SpanID is a 16-hex identifier unique to this span.
	SpanID string

	// ParentSpanID is the SpanID of the span that produced this one, or empty
	// for roots.
	ParentSpanID string

	// Sampled is inherited from the root and never recomputed.
	Sampled Sampled

	StartTime time.Time

	// EndTime is stamped exactly once, by Finish. A non-zero EndTime means the
	// span is terminal.
	EndTime time.Time

	// Transaction, when set, makes this span the aggregation root for its
	// recorder: finishing it assembles and reports the whole tree.
	Transaction string

	// Op and Description classify the work the span represents.
	Op          string
	Description string

	// Tags and Data are merge-updated with copy-on-write semantics: SetTag and
	// SetData replace the whole map instead of mutating it in place, so a span
	// handed to concurrent readers is never observed half-updated.
	Tags map[string]string
	Data map[string]interface{}

	// spanRecorder is shared by reference across the whole span tree once
	// tracking is initialized on the root. nil means the span is not tracked,
	// either because tracking was never initialized or because the recorder
	// refused it at capacity.
	spanRecorder *SpanRecorder

	sink        EventSink
	idGenerator IDGenerator
	clock       timex.Clock

	// finishOnce keeps racing finish call sites harmless.
	finishOnce sync.Once
}

// SpanOption configures a span at construction time.
type SpanOption func(*Span)

func WithTraceID(id string) SpanOption {
	return func(s *Span) { s.TraceID = id }
}

func WithSpanID(id string) SpanOption {
	return func(s *Span) { s.SpanID = id }
}

func WithParentSpanID(id string) SpanOption {
	return func(s *Span) { s.ParentSpanID = id }
}

// WithSampled records an explicit sampling decision, so that an explicit false
// stays distinguishable from "no decision yet".
func WithSampled(sampled bool) SpanOption {
	return func(s *Span) {
		if sampled {
			s.Sampled = SampledTrue
		} else {
			s.Sampled = SampledFalse
		}
	}
}

// WithTransaction names the span as the aggregation root for its recorder.
func WithTransaction(name string) SpanOption {
	return func(s *Span) { s.Transaction = name }
}

func WithOp(op string) SpanOption {
	return func(s *Span) { s.Op = op }
}

func WithDescription(description string) SpanOption {
	return func(s *Span) { s.Description = description }
}

// WithTags seeds the span's tags. The map is copied.
func WithTags(tags map[string]string) SpanOption {
	return func(s *Span) {
		copied := make(map[string]string, len(tags))
		for k, v := range tags {
			copied[k] = v
		}
		s.Tags = copied
	}
}

// WithData seeds the span's data. The map is copied.
func WithData(data map[string]interface{}) SpanOption {
	return func(s *Span) {
		copied := make(map[string]interface{}, len(data))
		for k, v := range data {
			copied[k] = v
		}
		s.Data = copied
	}
}

func WithStartTime(t time.Time) SpanOption {
	return func(s *Span) { s.StartTime = t }
}

// WithSink routes the transaction event assembled at finish time to the given
// sink. Children inherit the sink from their parent.
func WithSink(sink EventSink) SpanOption {
	return func(s *Span) { s.sink = sink }
}

// WithIDGenerator replaces the identifier source for this span and every
// descendant created from it.
func WithIDGenerator(generator IDGenerator) SpanOption {
	return func(s *Span) { s.idGenerator = generator }
}

// WithClock replaces the time source for this span and every descendant
// created from it.
func WithClock(clock timex.Clock) SpanOption {
	return func(s *Span) { s.clock = clock }
}

// StartSpan builds a span. Identity fields not supplied through options are
// generated: a random trace ID, a random span ID, no parent, no sampling
// decision, start time now. The new span is not tracked until StartTracking is
// called on it or it is created from a tracked parent.
func StartSpan(opts ...SpanOption) *Span {
	s := &Span{}
	for _, opt := range opts {
		opt(s)
	}
	if s.TraceID == "" {
		s.TraceID = s.ids().NewTraceID()
	}
	if s.SpanID == "" {
		s.SpanID = s.ids().NewSpanID()
	}
	if s.StartTime.IsZero() {
		s.StartTime = s.now()
	}
	metrics.SpansStarted.Inc()
	return s
}

// Child returns a new span below s. The child lives in the parent's trace,
// inherits its sampling decision verbatim and shares its recorder reference;
// the caller cannot override any of those. A fresh span ID is generated
// regardless of options. If the shared recorder is at capacity the child is
// created untracked.
func (s *Span) Child(opts ...SpanOption) *Span {
	child := &Span{
		sink:        s.sink,
		idGenerator: s.idGenerator,
		clock:       s.clock,
	}
	for _, opt := range opts {
		opt(child)
	}
	child.TraceID = s.TraceID
	child.SpanID = child.ids().NewSpanID()
	child.ParentSpanID = s.SpanID
	child.Sampled = s.Sampled
	child.spanRecorder = s.spanRecorder
	if child.StartTime.IsZero() {
		child.StartTime = child.now()
	}
	if child.spanRecorder != nil {
		child.spanRecorder.registerOpen(child)
	}
	metrics.SpansStarted.Inc()
	return child
}

// StartTracking attaches a fresh recorder of the given capacity to the span
// and registers the span with it. It is idempotent: a span that already has a
// recorder keeps it. Roots carrying an explicit negative sampling decision are
// left untracked, so none of their tree is ever recorded or reported.
// Non-positive capacities fall back to DefaultMaxSpans.
func (s *Span) StartTracking(maxSpans int) {
	if s.spanRecorder != nil {
		return
	}
	if s.Sampled == SampledFalse {
		return
	}
	if maxSpans <= 0 {
		maxSpans = DefaultMaxSpans
	}
	s.spanRecorder = NewSpanRecorder(maxSpans)
	s.spanRecorder.registerOpen(s)
}

// Tracked reports whether the span still holds a recorder reference.
func (s *Span) Tracked() bool {
	return s.spanRecorder != nil
}

// SetTag merge-updates the span's tags. The backing map is replaced, never
// mutated in place. Returns the span to permit chaining.
func (s *Span) SetTag(key, value string) *Span {
	tags := make(map[string]string, len(s.Tags)+1)
	for k, v := range s.Tags {
		tags[k] = v
	}
	tags[key] = value
	s.Tags = tags
	return s
}

// SetData merge-updates the span's data. The backing map is replaced, never
// mutated in place. Returns the span to permit chaining.
func (s *Span) SetData(key string, value interface{}) *Span {
	data := make(map[string]interface{}, len(s.Data)+1)
	for k, v := range s.Data {
		data[k] = v
	}
	data[key] = value
	s.Data = data
	return s
}

// Finish terminates the span at the current time. See FinishWithTime.
func (s *Span) Finish() {
	s.finish(s.now())
}

// FinishWithTime terminates the span at the given time. Finishing is
// permanent and idempotent: later calls are no-ops, so multiple finish call
// sites may race harmlessly.
//
// An untracked span only stamps its end time. A tracked span records itself
// into the shared recorder; if it also carries a transaction name it assembles
// the finished descendants into a transaction event and hands it synchronously
// to the configured sink. A transaction finishing without a resolved sampling
// decision is a usage error upstream: a diagnostic event is emitted and the
// report is dropped.
func (s *Span) FinishWithTime(end time.Time) {
	if end.IsZero() {
		end = s.now()
	}
	s.finish(end)
}

func (s *Span) finish(end time.Time) {
	s.finishOnce.Do(func() { s.doFinish(end) })
}

func (s *Span) doFinish(end time.Time) {
	if !s.EndTime.IsZero() {
		return
	}
	s.EndTime = end
	metrics.SpansFinished.Inc()
	if s.spanRecorder == nil {
		return
	}
	s.spanRecorder.recordFinished(s)
	if s.Transaction == "" {
		// Intermediate span; the transaction root reads it out of the shared
		// recorder later.
		return
	}
	if s.Sampled == SampledUndefined {
		metrics.TransactionsDropped.Inc()
		emitEvent(newEventMissingSampling(s.Transaction, s.TraceID))
		return
	}
	sink := s.sink
	if sink == nil {
		sink = NoopSink{}
	}
	if err := sink.Capture(s.assembleEvent()); err != nil {
		metrics.CaptureErrors.Inc()
		emitEvent(newEventCaptureError(err))
		return
	}
	metrics.TransactionsCaptured.Inc()
}

// assembleEvent collects every finished span the recorder retained, except the
// transaction root itself.
func (s *Span) assembleEvent() *TransactionEvent {
	finished := s.spanRecorder.finished()
	spans := make([]*Span, 0, len(finished))
	for _, span := range finished {
		if span == s {
			continue
		}
		spans = append(spans, span)
	}
	return &TransactionEvent{
		Type:           "transaction",
		Transaction:    s.Transaction,
		StartTimestamp: Timestamp(s.StartTime),
		Timestamp:      Timestamp(s.EndTime),
		Contexts:       Contexts{Trace: s.TraceContext()},
		Spans:          spans,
	}
}

// TraceContext holds the trace-scoped subset of a span used in the contexts
// section of a transaction event. Unset fields are omitted from the serialized
// form entirely, never emitted as null.
type TraceContext struct {
	TraceID      string                 `json:"trace_id"`
	SpanID       string                 `json:"span_id"`
	ParentSpanID string                 `json:"parent_span_id,omitempty"`
	Op           string                 `json:"op,omitempty"`
	Description  string                 `json:"description,omitempty"`
	Status       string                 `json:"status,omitempty"`
	Tags         map[string]string      `json:"tags,omitempty"`
	Data         map[string]interface{} `json:"data,omitempty"`
}

// TraceContext produces the trace context of the span. The status field is
// present only when the span carries a status tag, mirroring it.
func (s *Span) TraceContext() TraceContext {
	return TraceContext{
		TraceID:      s.TraceID,
		SpanID:       s.SpanID,
		ParentSpanID: s.ParentSpanID,
		Op:           s.Op,
		Description:  s.Description,
		Status:       s.Tags["status"],
		Tags:         s.Tags,
		Data:         s.Data,
	}
}

// Timestamp encodes a point in time as seconds since the Unix epoch with
// subsecond precision.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	seconds := float64(time.Time(t).UnixNano()) / float64(time.Second)
	return []byte(strconv.FormatFloat(seconds, 'f', -1, 64)), nil
}

// Time returns the underlying time value.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// MarshalJSON serializes the span. Fields holding no value are omitted from
// the output, not emitted as null.
func (s *Span) MarshalJSON() ([]byte, error) {
	serialized := struct {
		TraceID        string                 `json:"trace_id,omitempty"`
		SpanID         string                 `json:"span_id,omitempty"`
		ParentSpanID   string                 `json:"parent_span_id,omitempty"`
		Sampled        *bool                  `json:"sampled,omitempty"`
		StartTimestamp *Timestamp             `json:"start_timestamp,omitempty"`
		Timestamp      *Timestamp             `json:"timestamp,omitempty"`
		Transaction    string                 `json:"transaction,omitempty"`
		Op             string                 `json:"op,omitempty"`
		Description    string                 `json:"description,omitempty"`
		Tags           map[string]string      `json:"tags,omitempty"`
		Data           map[string]interface{} `json:"data,omitempty"`
	}{
		TraceID:      s.TraceID,
		SpanID:       s.SpanID,
		ParentSpanID: s.ParentSpanID,
		Transaction:  s.Transaction,
		Op:           s.Op,
		Description:  s.Description,
		Tags:         s.Tags,
		Data:         s.Data,
	}
	if s.Sampled != SampledUndefined {
		sampled := s.Sampled.Bool()
		serialized.Sampled = &sampled
	}
	if !s.StartTime.IsZero() {
		start := Timestamp(s.StartTime)
		serialized.StartTimestamp = &start
	}
	if !s.EndTime.IsZero() {
		end := Timestamp(s.EndTime)
		serialized.Timestamp = &end
	}
	return json.Marshal(serialized)
}

func (s *Span) ids() IDGenerator {
	if s.idGenerator != nil {
		return s.idGenerator
	}
	return defaultIDGenerator
}

func (s *Span) now() time.Time {
	if s.clock != nil {
		return s.clock.Now()
	}
	return defaultClock.Now()
}

var defaultClock = timex.NewClock()
