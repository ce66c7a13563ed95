package control_test

import (
	. "deckcontrol/internal/control"

	"testing"
)

func TestProgramIDFromFilename(t *testing.T) {
	tests := []struct {
		in   string
		want ProgramID
	}{
		{"My Deck (v2).pptx", "my-deck-v2"},
		{"/imports/Sunday Service.key", "sunday-service"},
		{"simple.pdf", "simple"},
		{"UPPER_case-Mix.odp", "upper-case-mix"},
		{"--weird--.pptx", "weird"},
		{"....", "program"},
		{"no-extension", "no-extension"},
		{"trailing!!!.pptx", "trailing"},
	}
	for _, tt := range tests {
		if got := ProgramIDFromFilename(tt.in); got != tt.want {
			t.Errorf("ProgramIDFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProgramIDDeterministic(t *testing.T) {
	a := ProgramIDFromFilename("Deck A.pptx")
	b := ProgramIDFromFilename("Deck A.pptx")
	if a != b {
		t.Errorf("same filename must derive the same ID: %q vs %q", a, b)
	}
}

func TestSceneNames(t *testing.T) {
	cfg := DefaultConfig()

	if got := SceneName(cfg, "demo", 0); got != "deck/demo-act-1" {
		t.Errorf("SceneName index 0 = %q", got)
	}
	if got := SceneName(cfg, "demo", 11); got != "deck/demo-act-12" {
		t.Errorf("SceneName index 11 = %q", got)
	}
	if got := LiveSceneName(cfg, "demo"); got != "deck/demo-live" {
		t.Errorf("LiveSceneName = %q", got)
	}
	if got := VideoSceneName(cfg, "deck/demo-act-3", 1); got != "deck/demo-act-3-video-1" {
		t.Errorf("VideoSceneName = %q", got)
	}
}
