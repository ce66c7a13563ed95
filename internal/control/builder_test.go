package control_test

import (
	. "deckcontrol/internal/control"

	"context"
	"testing"

	"deckcontrol/internal/production"
)

func newBuilder(t *testing.T, client production.Client) *TopologyBuilder {
	t.Helper()
	return NewTopologyBuilder(client, DefaultConfig(), testLogger())
}

func TestBuildSceneImageTransformRoundTrip(t *testing.T) {
	svc := connectedService(t)
	b := newBuilder(t, svc)
	ctx := context.Background()

	p := imageProgram("demo", 1)
	rec, err := b.BuildScene(ctx, p, p.Acts[0])
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if rec.Name != "deck/demo-act-1" {
		t.Errorf("scene name: %q", rec.Name)
	}

	bindings, err := svc.ListSourceBindings(ctx, rec.Name)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bindings) != 1 {
		t.Fatalf("expected exactly one binding, got %d", len(bindings))
	}
	tr := bindings[0].Transform
	if tr == nil {
		t.Fatal("transform not applied")
	}
	want := production.Transform{BoundsMode: "scale-inner", Width: 1920, Height: 1080, Alignment: "center"}
	if *tr != want {
		t.Errorf("transform = %+v, want %+v", *tr, want)
	}
}

func TestBuildSceneNestedVideo(t *testing.T) {
	svc := connectedService(t)
	b := newBuilder(t, svc)
	ctx := context.Background()

	act := Act{
		Index:     2,
		Name:      "Video Slide",
		ImagePath: "/slides/demo/3.png",
		VideoPath: "/slides/demo/3.mp4",
		HasVideo:  true,
	}
	p := &Program{ID: "demo", Mode: ModeSceneGraph, Acts: []Act{act}}

	rec, err := b.BuildScene(ctx, p, act)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !rec.HasVideo || rec.VideoScene != "deck/demo-act-3-video-1" {
		t.Fatalf("video scene record: %+v", rec)
	}

	bindings, err := svc.ListSourceBindings(ctx, rec.VideoScene)
	if err != nil {
		t.Fatalf("list nested: %v", err)
	}
	if len(bindings) != 1 || bindings[0].Kind != production.SourceMedia {
		t.Fatalf("nested bindings: %+v", bindings)
	}
	m := bindings[0].Media
	if m == nil || m.Loop || !m.RestartOnActivate || m.ClearOnEnd {
		t.Errorf("media settings: %+v", m)
	}
}

func TestBuildSceneReplaceCreateIdempotent(t *testing.T) {
	svc := connectedService(t)
	b := newBuilder(t, svc)
	ctx := context.Background()

	p := imageProgram("demo", 1)
	if _, err := b.BuildScene(ctx, p, p.Acts[0]); err != nil {
		t.Fatalf("first build: %v", err)
	}
	// Re-importing the same program must not surface a duplicate-name
	// error; the pre-removal absorbs the conflict.
	if _, err := b.BuildScene(ctx, p, p.Acts[0]); err != nil {
		t.Fatalf("second build: %v", err)
	}

	bindings, err := svc.ListSourceBindings(ctx, "deck/demo-act-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bindings) != 1 {
		t.Errorf("stale bindings survived replace: %d", len(bindings))
	}
}

func TestBuildLiveScene(t *testing.T) {
	svc := connectedService(t)
	b := newBuilder(t, svc)
	ctx := context.Background()

	name, err := b.BuildLiveScene(ctx, liveProgram("talk", 10))
	if err != nil {
		t.Fatalf("build live: %v", err)
	}
	if name != "deck/talk-live" {
		t.Errorf("live scene name: %q", name)
	}

	bindings, err := svc.ListSourceBindings(ctx, name)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bindings) != 1 || bindings[0].Kind != production.SourceWindowCapture {
		t.Errorf("bindings: %+v", bindings)
	}
}

func TestEnsureBlackoutCreateIfAbsent(t *testing.T) {
	svc := connectedService(t)
	b := newBuilder(t, svc)
	ctx := context.Background()

	if err := b.EnsureBlackout(ctx); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	// Reconnecting must never duplicate or disturb the blackout container.
	if err := b.EnsureBlackout(ctx); err != nil {
		t.Fatalf("second ensure: %v", err)
	}

	bindings, err := svc.ListSourceBindings(ctx, "deck/blackout")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bindings) != 1 || bindings[0].Kind != production.SourceColor {
		t.Fatalf("blackout bindings: %+v", bindings)
	}
	if bindings[0].Source != "#ff000000" {
		t.Errorf("blackout color: %q", bindings[0].Source)
	}
}
