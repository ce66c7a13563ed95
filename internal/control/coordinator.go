package control

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"deckcontrol/internal/production"
)

// Coordinator owns the single currently-active program and its mode
// controller. A program's declared mode is resolved into a concrete
// controller once, at load time; every subsequent navigation command is
// forwarded verbatim without re-checking the mode. Commands are serialized
// by an internal mutex — each one runs to completion before the next is
// accepted.
type Coordinator struct {
	cfg     Config
	store   ProgramStore
	client  production.Client
	builder *TopologyBuilder
	sup     RendererSupervisor
	sink    EventSink
	log     *slog.Logger

	mu      sync.Mutex
	active  ModeController
	jumper  SceneJumper // non-nil only when the active controller supports direct jumps
	program *Program
	display int
}

// NewCoordinator wires a coordinator over the shared client, supervisor,
// and program store. It registers itself for production notifications and
// re-emits them outward through the sink.
func NewCoordinator(cfg Config, store ProgramStore, client production.Client, builder *TopologyBuilder, sup RendererSupervisor, sink EventSink, log *slog.Logger) *Coordinator {
	c := &Coordinator{
		cfg:     cfg,
		store:   store,
		client:  client,
		builder: builder,
		sup:     sup,
		sink:    sink,
		log:     log,
	}
	client.SetNotify(func(n production.Notification) {
		payload := map[string]any{}
		if n.Name != "" {
			payload["container"] = n.Name
		}
		switch n.Type {
		case production.NotifyConnected:
			sink.Emit(NewEvent(EventConnected, payload))
		case production.NotifyDisconnected:
			sink.Emit(NewEvent(EventDisconnected, payload))
		case production.NotifyActiveContainer:
			sink.Emit(NewEvent(EventSceneSwitched, payload))
		default:
			sink.Emit(NewEvent(n.Type, payload))
		}
	})
	// A renderer exit, expected or not, must surface through the sink; the
	// shell must not have to poll status to learn the process died.
	sup.SetOnExit(func(code int) {
		sink.Emit(NewEvent(EventStopped, map[string]any{"exitCode": code}))
	})
	return c
}

// Connect establishes the production session and synthesizes the blackout
// container. A blackout synthesis failure is logged and swallowed; it must
// not prevent the connection from succeeding.
func (c *Coordinator) Connect(ctx context.Context, address, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.Connect(ctx, address, password); err != nil {
		return fmt.Errorf("connect production service: %w", err)
	}
	if err := c.builder.EnsureBlackout(ctx); err != nil {
		c.log.Warn("blackout container setup failed",
			slog.String("error", err.Error()))
	}
	return nil
}

// Disconnect tears the production session down.
func (c *Coordinator) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Disconnect(ctx)
}

// Load fetches the program by ID and resolves its declared mode into a
// fresh mode controller. The previously active controller's in-memory
// state is abandoned; its remote-side resources are cleaned up only if
// Stop was called first.
func (c *Coordinator) Load(ctx context.Context, id ProgramID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	program, err := c.store.Get(id)
	if err != nil {
		return err
	}

	var ctrl ModeController
	switch program.Mode {
	case ModeLiveRender:
		ctrl = NewLiveRenderController(c.cfg, c.client, c.builder, c.sup, c.sink, c.log)
	case ModeSceneGraph:
		ctrl = NewSceneGraphController(c.cfg, c.client, c.builder, c.sink, c.log)
	default:
		return fmt.Errorf("%w: program %s has unknown mode %q", ErrInvalidArgument, id, program.Mode)
	}

	if err := ctrl.LoadProgram(ctx, program); err != nil {
		return err
	}

	c.active = ctrl
	c.jumper, _ = ctrl.(SceneJumper)
	c.program = program

	c.log.Info("program loaded",
		slog.String("program", string(id)),
		slog.String("mode", string(program.Mode)),
	)
	return nil
}

// Start forwards to the active controller with the configured display.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return ErrNotLoaded
	}
	return c.active.Start(ctx, StartOptions{Display: c.display})
}

// Stop forwards to the active controller. Without one it is a no-op so
// shutdown paths can call it unconditionally.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return nil
	}
	return c.active.Stop(ctx)
}

// Next forwards to the active controller.
func (c *Coordinator) Next(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return ErrNotLoaded
	}
	return c.active.Next(ctx)
}

// Prev forwards to the active controller.
func (c *Coordinator) Prev(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return ErrNotLoaded
	}
	return c.active.Prev(ctx)
}

// First forwards to the active controller.
func (c *Coordinator) First(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return ErrNotLoaded
	}
	return c.active.First(ctx)
}

// Last forwards to the active controller.
func (c *Coordinator) Last(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return ErrNotLoaded
	}
	return c.active.Last(ctx)
}

// Jump forwards to the active controller's direct-jump capability. The
// live-render backend has no addressable scenes; jumping there is an
// invalid argument, detected from the capability resolved at load time.
func (c *Coordinator) Jump(ctx context.Context, index int) (SceneRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return SceneRecord{}, ErrNotLoaded
	}
	if c.jumper == nil {
		return SceneRecord{}, fmt.Errorf("%w: jump is not available in %s mode", ErrInvalidArgument, c.program.Mode)
	}
	return c.jumper.JumpToScene(ctx, index)
}

// Blackout switches program output to the always-available blackout
// container, independent of loaded-program state.
func (c *Coordinator) Blackout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.client.Connected() {
		return ErrNotConnected
	}
	return c.client.SwitchActiveContainer(ctx, c.cfg.BlackoutScene)
}

// SetDisplay records the target display index for subsequent live-render
// starts.
func (c *Coordinator) SetDisplay(index int) error {
	if index < 0 {
		return fmt.Errorf("%w: display index %d", ErrInvalidArgument, index)
	}
	c.mu.Lock()
	c.display = index
	c.mu.Unlock()
	return nil
}

// RendererAvailable probes the renderer executable. Never errors.
func (c *Coordinator) RendererAvailable(ctx context.Context) bool {
	return c.sup.CheckAvailability(ctx)
}

// Status returns the active controller's snapshot, or an empty unloaded
// status when no program has been loaded yet.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return Status{CurrentScene: PositionNone}
	}
	return c.active.Status()
}

// SceneCount returns the number of containers synthesized for the loaded
// program. Used to refresh the metrics gauge on scrape.
func (c *Coordinator) SceneCount() int {
	return c.Status().TotalScenes
}

// Shutdown quiesces everything for process exit: stops the active
// controller (which tears down any live renderer) and disconnects the
// production session.
func (c *Coordinator) Shutdown(ctx context.Context) {
	if err := c.Stop(ctx); err != nil {
		c.log.Warn("stop during shutdown failed", slog.String("error", err.Error()))
	}
	if err := c.Disconnect(ctx); err != nil {
		c.log.Warn("disconnect during shutdown failed", slog.String("error", err.Error()))
	}
}
