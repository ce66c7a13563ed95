package control

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the core. The payload keys are part of the
// outward contract consumed by the presentation shell.
const (
	EventProgramLoaded = "program-loaded"
	EventCaptureReady  = "capture-ready"
	EventScenesCreated = "scenes-created"
	EventStarted       = "started"
	EventStopped       = "stopped"
	EventSlideChanged  = "slide-changed"
	EventSceneChanged  = "scene-changed"
	EventKeySent       = "key-sent"
	EventConnected     = "connected"
	EventDisconnected  = "disconnected"
	EventSceneSwitched = "active-container-changed"
)

// Event is one normalized navigation or lifecycle notification.
type Event struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload,omitempty"`
}

// NewEvent stamps a payload with a fresh ID and UTC timestamp.
func NewEvent(eventType string, payload map[string]any) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		At:      time.Now().UTC(),
		Payload: payload,
	}
}

// EventSink receives events from the components it is injected into. Both
// mode controller variants and the coordinator emit through the same sink;
// there is no shared emitter base.
type EventSink interface {
	Emit(Event)
}

// LogSink writes every event to a structured logger.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink returns a sink logging events at info level.
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Emit implements EventSink.
func (s *LogSink) Emit(e Event) {
	s.log.Info("event",
		slog.String("event_id", e.ID),
		slog.String("type", e.Type),
		slog.Any("payload", e.Payload),
	)
}

// RecordingSink buffers events in memory. It backs the GET /events
// inspection endpoint and the test assertions on emitted sequences. With a
// positive limit the oldest events are discarded once the buffer is full;
// the zero value buffers without bound.
type RecordingSink struct {
	mu     sync.Mutex
	limit  int
	events []Event
}

// NewRecordingSink returns a sink retaining at most limit events.
func NewRecordingSink(limit int) *RecordingSink {
	return &RecordingSink{limit: limit}
}

// Emit implements EventSink.
func (s *RecordingSink) Emit(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	if s.limit > 0 && len(s.events) > s.limit {
		s.events = s.events[len(s.events)-s.limit:]
	}
	s.mu.Unlock()
}

// Events returns a copy of everything emitted so far.
func (s *RecordingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Types returns the emitted event types in order.
func (s *RecordingSink) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

// MultiSink fans an event out to several sinks in order. The service shell
// uses it to feed the log sink and the recording sink from one emission.
type MultiSink []EventSink

// Emit implements EventSink.
func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}
