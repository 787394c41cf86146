package spankit_test

import (
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	opentracing "github.com/opentracing/opentracing-go"

	spankit "github.com/spankit/spankit-go"
)

var _ = Describe("Traceparent", func() {
	traceID := strings.Repeat("a", 32)
	parentID := strings.Repeat("b", 16)

	Describe("ToTraceparent", func() {
		It("omits the flag while no sampling decision exists", func() {
			span := spankit.StartSpan(
				spankit.WithTraceID(traceID),
				spankit.WithSpanID(parentID),
			)
			Expect(span.ToTraceparent()).To(Equal(traceID + "-" + parentID))
		})

		It("appends -1 for a sampled trace", func() {
			span := spankit.StartSpan(
				spankit.WithTraceID(traceID),
				spankit.WithSpanID(parentID),
				spankit.WithSampled(true),
			)
			Expect(span.ToTraceparent()).To(Equal(traceID + "-" + parentID + "-1"))
		})

		It("appends -0 for an explicitly unsampled trace", func() {
			span := spankit.StartSpan(
				spankit.WithTraceID(traceID),
				spankit.WithSpanID(parentID),
				spankit.WithSampled(false),
			)
			Expect(span.ToTraceparent()).To(Equal(traceID + "-" + parentID + "-0"))
		})
	})

	Describe("FromTraceparent", func() {
		Context("with a full header", func() {
			It("continues the trace below the remote caller", func() {
				span, ok := spankit.FromTraceparent(traceID + "-" + parentID + "-1")

				Expect(ok).To(BeTrue())
				Expect(span.TraceID).To(Equal(traceID))
				Expect(span.ParentSpanID).To(Equal(parentID))
				Expect(span.Sampled).To(Equal(spankit.SampledTrue))
			})

			It("never adopts the remote span ID as its own", func() {
				span, ok := spankit.FromTraceparent(traceID + "-" + parentID + "-1")

				Expect(ok).To(BeTrue())
				Expect(span.SpanID).To(MatchRegexp(`^[0-9a-f]{16}$`))
				Expect(span.SpanID).NotTo(Equal(parentID))
			})

			It("tolerates surrounding whitespace", func() {
				span, ok := spankit.FromTraceparent(" \t" + traceID + "-" + parentID + "-0 ")

				Expect(ok).To(BeTrue())
				Expect(span.TraceID).To(Equal(traceID))
				Expect(span.Sampled).To(Equal(spankit.SampledFalse))
			})
		})

		Context("with partial headers", func() {
			It("accepts a bare sampling flag", func() {
				span, ok := spankit.FromTraceparent("0")

				Expect(ok).To(BeTrue())
				Expect(span.Sampled).To(Equal(spankit.SampledFalse))
				Expect(span.TraceID).To(MatchRegexp(`^[0-9a-f]{32}$`))
				Expect(span.ParentSpanID).To(BeEmpty())
			})

			It("accepts a trace ID without the rest", func() {
				span, ok := spankit.FromTraceparent(traceID)

				Expect(ok).To(BeTrue())
				Expect(span.TraceID).To(Equal(traceID))
				Expect(span.ParentSpanID).To(BeEmpty())
				Expect(span.Sampled).To(Equal(spankit.SampledUndefined))
			})

			It("accepts an empty header as an undecided trace", func() {
				span, ok := spankit.FromTraceparent("")

				Expect(ok).To(BeTrue())
				Expect(span.Sampled).To(Equal(spankit.SampledUndefined))
			})
		})

		Context("with malformed headers", func() {
			It("rejects an unknown sampling flag", func() {
				_, ok := spankit.FromTraceparent(traceID + "-" + parentID + "-x")
				Expect(ok).To(BeFalse())
			})

			It("rejects uppercase identifiers", func() {
				_, ok := spankit.FromTraceparent(strings.ToUpper(traceID) + "-" + parentID + "-1")
				Expect(ok).To(BeFalse())
			})

			It("rejects trailing garbage", func() {
				_, ok := spankit.FromTraceparent(traceID + "-" + parentID + "-1-extra")
				Expect(ok).To(BeFalse())
			})
		})

		It("applies the caller's options before the header fields", func() {
			span, ok := spankit.FromTraceparent(
				traceID+"-"+parentID+"-1",
				spankit.WithOp("http.server"),
				spankit.WithTraceID(strings.Repeat("c", 32)),
			)

			Expect(ok).To(BeTrue())
			Expect(span.Op).To(Equal("http.server"))
			Expect(span.TraceID).To(Equal(traceID))
		})
	})

	Describe("round trips", func() {
		It("survives encode and decode with the decision intact", func() {
			origin := spankit.StartSpan(spankit.WithSampled(true))

			continued, ok := spankit.FromTraceparent(origin.ToTraceparent())

			Expect(ok).To(BeTrue())
			Expect(continued.TraceID).To(Equal(origin.TraceID))
			Expect(continued.ParentSpanID).To(Equal(origin.SpanID))
			Expect(continued.Sampled).To(Equal(spankit.SampledTrue))
		})
	})

	Describe("carriers", func() {
		Describe("InjectTraceparent", func() {
			It("writes the header into a text map", func() {
				span := spankit.StartSpan(
					spankit.WithTraceID(traceID),
					spankit.WithSpanID(parentID),
					spankit.WithSampled(true),
				)
				carrier := opentracing.TextMapCarrier{}

				Expect(spankit.InjectTraceparent(span, carrier)).To(Succeed())
				Expect(carrier).To(HaveKeyWithValue("traceparent", traceID+"-"+parentID+"-1"))
			})

			It("rejects carriers that cannot hold text", func() {
				err := spankit.InjectTraceparent(spankit.StartSpan(), struct{}{})
				Expect(err).To(Equal(opentracing.ErrInvalidCarrier))
			})
		})

		Describe("ExtractTraceparent", func() {
			It("continues the trace from HTTP headers", func() {
				header := http.Header{}
				header.Set("Traceparent", traceID+"-"+parentID+"-1")

				span, err := spankit.ExtractTraceparent(opentracing.HTTPHeadersCarrier(header))

				Expect(err).NotTo(HaveOccurred())
				Expect(span.TraceID).To(Equal(traceID))
				Expect(span.ParentSpanID).To(Equal(parentID))
				Expect(span.Sampled).To(Equal(spankit.SampledTrue))
			})

			It("reports a missing header", func() {
				_, err := spankit.ExtractTraceparent(opentracing.TextMapCarrier{})
				Expect(err).To(Equal(opentracing.ErrSpanContextNotFound))
			})

			It("reports a corrupted header", func() {
				carrier := opentracing.TextMapCarrier{"traceparent": "not-a-traceparent"}

				_, err := spankit.ExtractTraceparent(carrier)
				Expect(err).To(Equal(opentracing.ErrSpanContextCorrupted))
			})

			It("rejects carriers that cannot be read", func() {
				_, err := spankit.ExtractTraceparent(42)
				Expect(err).To(Equal(opentracing.ErrInvalidCarrier))
			})
		})
	})
})
