package control_test

import (
	. "deckcontrol/internal/control"

	"context"
	"errors"
	"testing"

	"deckcontrol/internal/production"
	"deckcontrol/internal/programstore"
)

type coordEnv struct {
	coord *Coordinator
	store *programstore.InMemory
	svc   *production.MemoryService
	sup   *stubSupervisor
	sink  *RecordingSink
}

func newCoordEnv(t *testing.T) *coordEnv {
	t.Helper()
	cfg := DefaultConfig()
	svc := production.NewMemoryService("")
	sup := &stubSupervisor{available: true}
	sink := &RecordingSink{}
	builder := NewTopologyBuilder(svc, cfg, testLogger())
	store := programstore.NewInMemory()
	coord := NewCoordinator(cfg, store, svc, builder, sup, sink, testLogger())
	return &coordEnv{coord: coord, store: store, svc: svc, sup: sup, sink: sink}
}

func (e *coordEnv) connect(t *testing.T) {
	t.Helper()
	if err := e.coord.Connect(context.Background(), "127.0.0.1:4455", ""); err != nil {
		t.Fatalf("connect: %v", err)
	}
}

func TestCoordinatorLoadUnknownProgram(t *testing.T) {
	e := newCoordEnv(t)
	err := e.coord.Load(context.Background(), "missing")
	if !errors.Is(err, ErrProgramNotFound) {
		t.Fatalf("expected ErrProgramNotFound, got %v", err)
	}
}

func TestCoordinatorResolvesModeOnce(t *testing.T) {
	e := newCoordEnv(t)
	e.connect(t)
	ctx := context.Background()

	_ = e.store.Put(imageProgram("scenes", 3))
	_ = e.store.Put(liveProgram("talk", 10))

	if err := e.coord.Load(ctx, "scenes"); err != nil {
		t.Fatalf("load scene program: %v", err)
	}
	if e.coord.Status().Mode != ModeSceneGraph {
		t.Errorf("mode: %v", e.coord.Status().Mode)
	}
	if _, err := e.coord.Jump(ctx, 1); err != nil {
		t.Errorf("jump on scene mode: %v", err)
	}

	if err := e.coord.Load(ctx, "talk"); err != nil {
		t.Fatalf("load live program: %v", err)
	}
	if e.coord.Status().Mode != ModeLiveRender {
		t.Errorf("mode: %v", e.coord.Status().Mode)
	}
	// Live-render has no addressable scenes; jump resolves from the
	// capability detected at load time.
	if _, err := e.coord.Jump(ctx, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("jump on live mode: %v", err)
	}
}

func TestCoordinatorCommandsWithoutLoad(t *testing.T) {
	e := newCoordEnv(t)
	ctx := context.Background()

	if err := e.coord.Next(ctx); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("next: %v", err)
	}
	if err := e.coord.Start(ctx); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("start: %v", err)
	}
	// Stop must be callable unconditionally for shutdown paths.
	if err := e.coord.Stop(ctx); err != nil {
		t.Errorf("stop: %v", err)
	}
	st := e.coord.Status()
	if st.ProgramLoaded || st.CurrentScene != PositionNone {
		t.Errorf("status: %+v", st)
	}
}

func TestCoordinatorConnectSynthesizesBlackout(t *testing.T) {
	e := newCoordEnv(t)
	e.connect(t)
	ctx := context.Background()

	exists, err := e.svc.ContainerExists(ctx, "deck/blackout")
	if err != nil || !exists {
		t.Fatalf("blackout container after connect: exists=%v err=%v", exists, err)
	}

	if err := e.coord.Blackout(ctx); err != nil {
		t.Fatalf("blackout: %v", err)
	}
	active, _ := e.svc.QueryActiveContainer(ctx)
	if active != "deck/blackout" {
		t.Errorf("active container: %q", active)
	}
}

func TestCoordinatorBlackoutRequiresSession(t *testing.T) {
	e := newCoordEnv(t)
	if err := e.coord.Blackout(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestCoordinatorReEmitsConnectionEvents(t *testing.T) {
	e := newCoordEnv(t)
	e.connect(t)
	if err := e.coord.Disconnect(context.Background()); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	var got []string
	for _, typ := range e.sink.Types() {
		if typ == EventConnected || typ == EventDisconnected {
			got = append(got, typ)
		}
	}
	if len(got) != 2 || got[0] != EventConnected || got[1] != EventDisconnected {
		t.Errorf("connection events: %v", got)
	}
}

func TestCoordinatorSetDisplay(t *testing.T) {
	e := newCoordEnv(t)
	if err := e.coord.SetDisplay(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative display: %v", err)
	}
	if err := e.coord.SetDisplay(1); err != nil {
		t.Errorf("set display: %v", err)
	}
}

func TestCoordinatorRendererAvailability(t *testing.T) {
	e := newCoordEnv(t)
	if !e.coord.RendererAvailable(context.Background()) {
		t.Error("expected available from stub")
	}
	e.sup.available = false
	if e.coord.RendererAvailable(context.Background()) {
		t.Error("expected unavailable")
	}
}

func TestCoordinatorLiveSessionScenario(t *testing.T) {
	// Live-render, no active session: load succeeds with capture setup
	// skipped, start launches the renderer, status reports running.
	e := newCoordEnv(t)
	ctx := context.Background()

	_ = e.store.Put(liveProgram("talk", 10))
	if err := e.coord.Load(ctx, "talk"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := e.coord.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !e.coord.Status().Running {
		t.Error("expected running")
	}
	if len(e.sup.launched) != 1 {
		t.Errorf("launches: %v", e.sup.launched)
	}
}

func TestCoordinatorRendererDeathEmitsStopped(t *testing.T) {
	// An unexpected renderer exit must reach the sink; the shell must not
	// have to poll status to learn the process died.
	e := newCoordEnv(t)
	ctx := context.Background()

	_ = e.store.Put(liveProgram("talk", 10))
	if err := e.coord.Load(ctx, "talk"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := e.coord.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	e.sup.exit(3)

	var stopped *Event
	for _, ev := range e.sink.Events() {
		if ev.Type == EventStopped {
			ev := ev
			stopped = &ev
		}
	}
	if stopped == nil {
		t.Fatal("renderer death emitted no stopped event")
	}
	if stopped.Payload["exitCode"] != 3 {
		t.Errorf("exit code payload: %v", stopped.Payload)
	}
	if e.coord.Status().Running {
		t.Error("status should report not running after renderer death")
	}
}

func TestCoordinatorReEmitsContainerSwitches(t *testing.T) {
	e := newCoordEnv(t)
	e.connect(t)
	ctx := context.Background()

	if err := e.coord.Blackout(ctx); err != nil {
		t.Fatalf("blackout: %v", err)
	}

	var switched *Event
	for _, ev := range e.sink.Events() {
		if ev.Type == EventSceneSwitched {
			ev := ev
			switched = &ev
		}
	}
	if switched == nil {
		t.Fatal("container switch emitted no event")
	}
	if switched.Payload["container"] != "deck/blackout" {
		t.Errorf("switch payload: %v", switched.Payload)
	}
}

func TestCoordinatorShutdownStopsEverything(t *testing.T) {
	e := newCoordEnv(t)
	e.connect(t)
	ctx := context.Background()

	_ = e.store.Put(liveProgram("talk", 10))
	if err := e.coord.Load(ctx, "talk"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := e.coord.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	e.coord.Shutdown(ctx)
	if e.sup.IsRunning() {
		t.Error("renderer should be stopped")
	}
	if e.svc.Connected() {
		t.Error("session should be disconnected")
	}
}
