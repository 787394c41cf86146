package spankit

import (
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
)

const traceparentHeaderKey = "traceparent"

// InjectTraceparent writes the span's traceparent header into a text-map
// carrier, typically outbound HTTP headers wrapped in an
// opentracing.HTTPHeadersCarrier or TextMapCarrier.
func InjectTraceparent(s *Span, opaqueCarrier interface{}) error {
	carrier, ok := opaqueCarrier.(opentracing.TextMapWriter)
	if !ok {
		return opentracing.ErrInvalidCarrier
	}
	carrier.Set(traceparentHeaderKey, s.ToTraceparent())
	return nil
}

// ExtractTraceparent continues a trace from the traceparent header found in a
// text-map carrier. It returns ErrSpanContextNotFound when the carrier holds
// no traceparent key and ErrSpanContextCorrupted when the header fails the
// grammar.
func ExtractTraceparent(opaqueCarrier interface{}, opts ...SpanOption) (*Span, error) {
	carrier, ok := opaqueCarrier.(opentracing.TextMapReader)
	if !ok {
		return nil, opentracing.ErrInvalidCarrier
	}
	var header string
	found := false
	err := carrier.ForeachKey(func(k, v string) error {
		if strings.ToLower(k) == traceparentHeaderKey {
			header = v
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, opentracing.ErrSpanContextNotFound
	}
	span, ok := FromTraceparent(header, opts...)
	if !ok {
		return nil, opentracing.ErrSpanContextCorrupted
	}
	return span, nil
}
