package spankit

// EventSink receives fully assembled transaction events for delivery.
// Delivery, batching and retry policy belong to the sink, not to the span
// core; Finish performs a synchronous handoff and moves on.
type EventSink interface {
	Capture(event *TransactionEvent) error
}

// TransactionEvent is the reportable aggregate of one finished transaction:
// its trace context, timestamps, and the finished descendants its recorder
// retained.
type TransactionEvent struct {
	Type           string    `json:"type"`
	Transaction    string    `json:"transaction"`
	StartTimestamp Timestamp `json:"start_timestamp"`
	Timestamp      Timestamp `json:"timestamp"`
	Contexts       Contexts  `json:"contexts"`
	Spans          []*Span   `json:"spans"`
}

// Contexts carries the contextual records attached to a transaction event.
type Contexts struct {
	Trace TraceContext `json:"trace"`
}

// NoopSink discards every event. It is the default when no sink is
// configured.
type NoopSink struct{}

func (NoopSink) Capture(*TransactionEvent) error {
	return nil
}

// NewChannelSink returns a sink and the channel it delivers to. When the
// channel buffer is full, subsequent events will be dropped. A buffer size of
// less than one is incorrect, and will be adjusted to a buffer size of one.
func NewChannelSink(buffer int) (EventSink, <-chan *TransactionEvent) {
	if buffer < 1 {
		buffer = 1
	}

	eventChan := make(chan *TransactionEvent, buffer)

	return channelSink{events: eventChan}, eventChan
}

type channelSink struct {
	events chan *TransactionEvent
}

func (s channelSink) Capture(event *TransactionEvent) error {
	select {
	case s.events <- event:
	default:
	}
	return nil
}
