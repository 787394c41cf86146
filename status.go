package spankit

import "strconv"

// SpanStatus classifies how a span's unit of work ended. Statuses are stored
// on the span as a string tag under the key "status", keeping the serialized
// form backward compatible; statusText below is the only translation point
// between the two representations.
type SpanStatus int

const (
	StatusOK SpanStatus = iota
	StatusCancelled
	StatusUnknown
	StatusInvalidArgument
	StatusDeadlineExceeded
	StatusNotFound
	StatusAlreadyExists
	StatusPermissionDenied
	StatusResourceExhausted
	StatusFailedPrecondition
	StatusAborted
	StatusOutOfRange
	StatusUnimplemented
	StatusInternalError
	StatusUnavailable
	StatusDataLoss
	StatusUnauthenticated
)

var statusText = [...]string{
	StatusOK:                 "ok",
	StatusCancelled:          "cancelled",
	StatusUnknown:            "unknown_error",
	StatusInvalidArgument:    "invalid_argument",
	StatusDeadlineExceeded:   "deadline_exceeded",
	StatusNotFound:           "not_found",
	StatusAlreadyExists:      "already_exists",
	StatusPermissionDenied:   "permission_denied",
	StatusResourceExhausted:  "resource_exhausted",
	StatusFailedPrecondition: "failed_precondition",
	StatusAborted:            "aborted",
	StatusOutOfRange:         "out_of_range",
	StatusUnimplemented:      "unimplemented",
	StatusInternalError:      "internal_error",
	StatusUnavailable:        "unavailable",
	StatusDataLoss:           "data_loss",
	StatusUnauthenticated:    "unauthenticated",
}

func (s SpanStatus) String() string {
	if s < StatusOK || int(s) >= len(statusText) {
		return statusText[StatusUnknown]
	}
	return statusText[s]
}

// HTTPStatus maps an HTTP response code to the nearest SpanStatus. Exact codes
// match first, then the class of the code.
func HTTPStatus(code int) SpanStatus {
	switch code {
	case 400:
		return StatusInvalidArgument
	case 401:
		return StatusUnauthenticated
	case 403:
		return StatusPermissionDenied
	case 404:
		return StatusNotFound
	case 409:
		return StatusAlreadyExists
	case 429:
		return StatusResourceExhausted
	case 499:
		return StatusCancelled
	case 500:
		return StatusInternalError
	case 501:
		return StatusUnimplemented
	case 503:
		return StatusUnavailable
	case 504:
		return StatusDeadlineExceeded
	}
	switch {
	case code >= 100 && code < 400:
		return StatusOK
	case code >= 400 && code < 500:
		return StatusInvalidArgument
	case code >= 500 && code < 600:
		return StatusInternalError
	}
	return StatusUnknown
}

// SetStatus records the canonical string for the status under the "status"
// tag. Returns the span to permit chaining.
func (s *Span) SetStatus(status SpanStatus) *Span {
	return s.SetTag("status", status.String())
}

// SetHTTPStatus records the status nearest to the given HTTP code, plus the
// raw code as a string under the "http.status_code" tag. Returns the span to
// permit chaining.
func (s *Span) SetHTTPStatus(code int) *Span {
	s.SetStatus(HTTPStatus(code))
	return s.SetTag("http.status_code", strconv.Itoa(code))
}

// IsSuccess reports whether the span carries anything other than an explicit
// failure status.
func (s *Span) IsSuccess() bool {
	return s.Tags["status"] != "failure"
}
