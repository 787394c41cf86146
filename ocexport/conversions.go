package ocexport

import (
	"encoding/hex"

	"go.opencensus.io/trace"

	spankit "github.com/spankit/spankit-go"
)

func convertTraceID(id trace.TraceID) string {
	return hex.EncodeToString(id[:])
}

func convertSpanID(id trace.SpanID) string {
	return hex.EncodeToString(id[:])
}

func convertAttributes(attributes map[string]interface{}) map[string]interface{} {
	if len(attributes) == 0 {
		return nil
	}
	data := make(map[string]interface{}, len(attributes))
	for k, v := range attributes {
		data[k] = v
	}
	return data
}

// convertStatus maps an OpenCensus status, which follows the gRPC code space,
// onto the canonical span status table.
func convertStatus(status trace.Status) spankit.SpanStatus {
	switch status.Code {
	case trace.StatusCodeOK:
		return spankit.StatusOK
	case trace.StatusCodeCancelled:
		return spankit.StatusCancelled
	case trace.StatusCodeUnknown:
		return spankit.StatusUnknown
	case trace.StatusCodeInvalidArgument:
		return spankit.StatusInvalidArgument
	case trace.StatusCodeDeadlineExceeded:
		return spankit.StatusDeadlineExceeded
	case trace.StatusCodeNotFound:
		return spankit.StatusNotFound
	case trace.StatusCodeAlreadyExists:
		return spankit.StatusAlreadyExists
	case trace.StatusCodePermissionDenied:
		return spankit.StatusPermissionDenied
	case trace.StatusCodeResourceExhausted:
		return spankit.StatusResourceExhausted
	case trace.StatusCodeFailedPrecondition:
		return spankit.StatusFailedPrecondition
	case trace.StatusCodeAborted:
		return spankit.StatusAborted
	case trace.StatusCodeOutOfRange:
		return spankit.StatusOutOfRange
	case trace.StatusCodeUnimplemented:
		return spankit.StatusUnimplemented
	case trace.StatusCodeInternal:
		return spankit.StatusInternalError
	case trace.StatusCodeUnavailable:
		return spankit.StatusUnavailable
	case trace.StatusCodeDataLoss:
		return spankit.StatusDataLoss
	case trace.StatusCodeUnauthenticated:
		return spankit.StatusUnauthenticated
	}
	return spankit.StatusUnknown
}
