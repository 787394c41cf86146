package spankit

import (
	"regexp"
	"sync"
)

var (
	traceparentRegexp     *regexp.Regexp
	traceparentRegexpOnce sync.Once
)

func compileTraceparentRegexp() {
	traceparentRegexp = regexp.MustCompile(`^[ \t]*([0-9a-f]{32})?-?([0-9a-f]{16})?-?([01])?[ \t]*$`)
}

// traceparentData carries the fields recovered from a traceparent header.
// Every field is individually optional in the grammar.
type traceparentData struct {
	traceID string
	spanID  string
	sampled Sampled
}

// parseTraceparent matches the whole header against the traceparent grammar:
// optional surrounding whitespace, an optional 32-hex trace ID, an optional
// dash-prefixed 16-hex span ID and an optional dash-prefixed 0/1 sampling
// flag. Any other trailing character fails the parse as a whole; there are no
// partial results.
func parseTraceparent(header string) (traceparentData, bool) {
	traceparentRegexpOnce.Do(compileTraceparentRegexp)
	matches := traceparentRegexp.FindStringSubmatch(header)
	if matches == nil {
		return traceparentData{}, false
	}
	data := traceparentData{traceID: matches[1], spanID: matches[2]}
	switch matches[3] {
	case "1":
		data.sampled = SampledTrue
	case "0":
		data.sampled = SampledFalse
	}
	return data, true
}

// ToTraceparent encodes the span for outbound propagation:
// "{traceId}-{spanId}", with a "-1" or "-0" suffix once a sampling decision
// exists and no suffix while it is unset.
func (s *Span) ToTraceparent() string {
	header := s.TraceID + "-" + s.SpanID
	switch s.Sampled {
	case SampledTrue:
		header += "-1"
	case SampledFalse:
		header += "-0"
	}
	return header
}

// FromTraceparent builds a span continuing the trace described by the header,
// merged with the given options. The header's span ID becomes the new span's
// parent; the new span's own ID is always freshly generated, never taken from
// the header. A header that does not match the grammar yields no span at all.
func FromTraceparent(header string, opts ...SpanOption) (*Span, bool) {
	data, ok := parseTraceparent(header)
	if !ok {
		return nil, false
	}
	s := StartSpan(opts...)
	if data.traceID != "" {
		s.TraceID = data.traceID
	}
	if data.spanID != "" {
		s.ParentSpanID = data.spanID
	}
	s.Sampled = data.sampled
	return s, true
}
