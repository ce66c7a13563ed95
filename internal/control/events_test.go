package control_test

import (
	. "deckcontrol/internal/control"

	"testing"
)

func TestRecordingSinkBounded(t *testing.T) {
	s := NewRecordingSink(3)
	for i := 0; i < 5; i++ {
		s.Emit(NewEvent(EventSlideChanged, map[string]any{"slide": i}))
	}

	events := s.Events()
	if len(events) != 3 {
		t.Fatalf("retained %d events, want 3", len(events))
	}
	// Oldest are discarded first.
	if events[0].Payload["slide"] != 2 || events[2].Payload["slide"] != 4 {
		t.Errorf("retained window: %v", events)
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &RecordingSink{}, &RecordingSink{}
	m := MultiSink{a, b}

	m.Emit(NewEvent(EventStarted, nil))

	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Errorf("fan-out: %d and %d events", len(a.Events()), len(b.Events()))
	}
}
