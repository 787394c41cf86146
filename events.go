package spankit

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Events are emitted by the library as a diagnostics mechanism. They are
// handled by the handler registered with SetGlobalEventHandler. Events may be
// cast to specific event types in order to access additional information.
//
// NOTE: To ensure that events can be accurately identified, each event type
// contains a sentinel method matching the name of the type. This method is a
// no-op, it is only used for type coercion.
type Event interface {
	Event()
	String() string
}

// The ErrorEvent type can be used to filter events for errors. The `Err`
// method returns the underlying error.
type ErrorEvent interface {
	Event
	error
	Err() error
}

// EventCaptureError occurs when a sink fails to deliver a transaction event.
type EventCaptureError interface {
	ErrorEvent
	EventCaptureError()
}

type eventCaptureError struct {
	err error
}

func newEventCaptureError(err error) *eventCaptureError {
	return &eventCaptureError{err: err}
}

func (*eventCaptureError) Event()             {}
func (*eventCaptureError) EventCaptureError() {}

func (e *eventCaptureError) String() string {
	return e.err.Error()
}

func (e *eventCaptureError) Error() string {
	return e.err.Error()
}

func (e *eventCaptureError) Err() error {
	return e.err
}

// EventMissingSampling occurs when a transaction finishes without a resolved
// sampling decision. The transaction event is dropped, never delivered; the
// sampling decision must be made upstream before the root finishes.
type EventMissingSampling interface {
	ErrorEvent
	EventMissingSampling()
	Transaction() string
	TraceID() string
}

type eventMissingSampling struct {
	transaction string
	traceID     string
	err         error
}

func newEventMissingSampling(transaction, traceID string) *eventMissingSampling {
	return &eventMissingSampling{
		transaction: transaction,
		traceID:     traceID,
		err:         fmt.Errorf("transaction %q in trace %s has no sampling decision, discarding", transaction, traceID),
	}
}

func (*eventMissingSampling) Event()                {}
func (*eventMissingSampling) EventMissingSampling() {}

func (e *eventMissingSampling) Transaction() string {
	return e.transaction
}

func (e *eventMissingSampling) TraceID() string {
	return e.traceID
}

func (e *eventMissingSampling) String() string {
	return e.err.Error()
}

func (e *eventMissingSampling) Error() string {
	return e.err.Error()
}

func (e *eventMissingSampling) Err() error {
	return e.err
}

// EventSpanCapacity occurs at most once per recorder, when its capacity is
// first exceeded. Spans past the cap stop being tracked; this is a
// degrade-gracefully policy, not an error.
type EventSpanCapacity interface {
	Event
	EventSpanCapacity()
	MaxSpans() int
}

type eventSpanCapacity struct {
	maxSpans int
}

func newEventSpanCapacity(maxSpans int) *eventSpanCapacity {
	return &eventSpanCapacity{maxSpans: maxSpans}
}

func (*eventSpanCapacity) Event()             {}
func (*eventSpanCapacity) EventSpanCapacity() {}

func (e *eventSpanCapacity) MaxSpans() int {
	return e.maxSpans
}

func (e *eventSpanCapacity) String() string {
	return fmt.Sprintf("span capacity %d exceeded, later spans in this transaction will not be recorded", e.maxSpans)
}

/*
	Event Handlers
*/

var (
	eventHandlerLock   sync.RWMutex
	globalEventHandler = defaultEventHandler()
)

// SetGlobalEventHandler installs the handler diagnostic events are dispatched
// to. A nil handler silences diagnostics entirely.
func SetGlobalEventHandler(handler func(Event)) {
	eventHandlerLock.Lock()
	defer eventHandlerLock.Unlock()
	globalEventHandler = handler
}

func emitEvent(event Event) {
	eventHandlerLock.RLock()
	handler := globalEventHandler
	eventHandlerLock.RUnlock()

	if handler != nil {
		handler(event)
	}
}

// NewEventLogger returns an event handler that logs every event through the
// given logger.
func NewEventLogger(logger *zap.Logger) func(Event) {
	return func(event Event) {
		switch event := event.(type) {
		case ErrorEvent:
			logger.Error("spankit error", zap.Error(event.Err()))
		default:
			logger.Info("spankit event", zap.String("event", event.String()))
		}
	}
}

// NewEventChannel returns an event handler, and a channel that produces the
// events. When the channel buffer is full, subsequent events will be dropped.
// A buffer size of less than one is incorrect, and will be adjusted to a
// buffer size of one.
func NewEventChannel(buffer int) (func(Event), <-chan Event) {
	if buffer < 1 {
		buffer = 1
	}

	eventChan := make(chan Event, buffer)

	handler := func(event Event) {
		select {
		case eventChan <- event:
		default:
		}
	}

	return handler, eventChan
}

// defaultEventHandler logs at most one error so that misconfigured programs
// are not silent, without flooding their logs.
func defaultEventHandler() func(Event) {
	logger := logOneError{}
	return logger.OnEvent
}

type logOneError struct {
	sync.Once
}

func (l *logOneError) OnEvent(event Event) {
	if event, ok := event.(ErrorEvent); ok {
		l.Once.Do(func() {
			baseLogger().Error("spankit error, set an event handler to receive further diagnostics", zap.Error(event.Err()))
		})
	}
}

var (
	defaultLogger     *zap.Logger
	defaultLoggerOnce sync.Once
)

func baseLogger() *zap.Logger {
	defaultLoggerOnce.Do(func() {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		defaultLogger = logger
	})
	return defaultLogger
}
