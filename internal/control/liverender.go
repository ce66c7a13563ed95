package control

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"deckcontrol/internal/production"
	"deckcontrol/internal/renderer"
)

// LiveRenderController presents a program by launching an external
// rendering process and framing its output window through a single capture
// container. Navigation is delivered as keystrokes; the local position is
// updated optimistically since the renderer reports no slide index back.
type LiveRenderController struct {
	cfg     Config
	client  production.Client
	builder *TopologyBuilder
	sup     RendererSupervisor
	sink    EventSink
	log     *slog.Logger

	mu        sync.Mutex
	program   *Program
	position  int
	running   bool
	liveScene string
}

// NewLiveRenderController wires a live-render controller. The supervisor
// and production client are shared process-wide; the controller only
// borrows them for the lifetime of a loaded program.
func NewLiveRenderController(cfg Config, client production.Client, builder *TopologyBuilder, sup RendererSupervisor, sink EventSink, log *slog.Logger) *LiveRenderController {
	return &LiveRenderController{
		cfg:     cfg,
		client:  client,
		builder: builder,
		sup:     sup,
		sink:    sink,
		log:     log,
	}
}

// LoadProgram implements ModeController. When a production session is
// active it replace-creates the derived capture container and binds a
// window capture into it; capture-setup failures abort the load. Without a
// session the load still succeeds and capture setup is skipped.
func (c *LiveRenderController) LoadProgram(ctx context.Context, program *Program) error {
	if program == nil {
		return fmt.Errorf("%w: program is required", ErrInvalidArgument)
	}

	c.mu.Lock()
	c.program = program
	c.position = 0
	c.liveScene = ""
	c.mu.Unlock()

	if c.client.Connected() {
		name, err := c.builder.BuildLiveScene(ctx, program)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSetup, err)
		}
		c.mu.Lock()
		c.liveScene = name
		c.mu.Unlock()

		c.sink.Emit(NewEvent(EventProgramLoaded, map[string]any{"programId": program.ID, "mode": ModeLiveRender}))
		c.sink.Emit(NewEvent(EventCaptureReady, map[string]any{"scene": name}))
		return nil
	}

	c.sink.Emit(NewEvent(EventProgramLoaded, map[string]any{"programId": program.ID, "mode": ModeLiveRender}))
	return nil
}

// Start implements ModeController. It launches the renderer against the
// program source and, when a session is active, switches program output to
// the derived capture container. A switch failure is logged and swallowed;
// playback continues even if capture framing fails.
func (c *LiveRenderController) Start(ctx context.Context, opts StartOptions) error {
	c.mu.Lock()
	program := c.program
	scene := c.liveScene
	c.mu.Unlock()

	if program == nil {
		return ErrNotLoaded
	}

	if err := c.sup.Launch(ctx, program.SourcePath, opts.Display); err != nil {
		return err
	}

	if c.client.Connected() && scene != "" {
		if err := c.client.SwitchActiveContainer(ctx, scene); err != nil {
			c.log.Warn("capture container switch failed, playback continues",
				slog.String("scene", scene),
				slog.String("error", err.Error()),
			)
		}
	}

	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	c.sink.Emit(NewEvent(EventStarted, map[string]any{"programId": program.ID}))
	return nil
}

// Stop implements ModeController. It unconditionally requests renderer
// shutdown and resets position. Idempotent: with nothing running only the
// reset happens.
func (c *LiveRenderController) Stop(ctx context.Context) error {
	c.sup.Stop(ctx)

	c.mu.Lock()
	c.position = 0
	c.running = false
	c.mu.Unlock()

	c.sink.Emit(NewEvent(EventStopped, nil))
	return nil
}

// dispatch delivers one navigation keystroke and announces it. Every key
// that actually reaches the renderer is mirrored as a key-sent event.
func (c *LiveRenderController) dispatch(ctx context.Context, cmd renderer.Command) error {
	if err := c.sup.SendCommand(ctx, cmd); err != nil {
		return err
	}
	c.sink.Emit(NewEvent(EventKeySent, map[string]any{"command": string(cmd)}))
	return nil
}

// Next implements ModeController. The upper bound is the renderer's own
// responsibility; the local position advances unbounded.
func (c *LiveRenderController) Next(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.program != nil
	c.mu.Unlock()
	if !loaded {
		return ErrNotLoaded
	}

	if err := c.dispatch(ctx, renderer.CmdNext); err != nil {
		return err
	}

	c.mu.Lock()
	c.position++
	pos := c.position
	c.mu.Unlock()

	c.sink.Emit(NewEvent(EventSlideChanged, map[string]any{"slide": pos}))
	return nil
}

// Prev implements ModeController. At position 0 it performs no remote
// action and emits nothing: silently clamp, do not error.
func (c *LiveRenderController) Prev(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.program != nil
	atStart := c.position == 0
	c.mu.Unlock()
	if !loaded {
		return ErrNotLoaded
	}
	if atStart {
		return nil
	}

	if err := c.dispatch(ctx, renderer.CmdPrev); err != nil {
		return err
	}

	c.mu.Lock()
	c.position--
	pos := c.position
	c.mu.Unlock()

	c.sink.Emit(NewEvent(EventSlideChanged, map[string]any{"slide": pos}))
	return nil
}

// First implements ModeController.
func (c *LiveRenderController) First(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.program != nil
	c.mu.Unlock()
	if !loaded {
		return ErrNotLoaded
	}

	if err := c.dispatch(ctx, renderer.CmdFirst); err != nil {
		return err
	}

	c.mu.Lock()
	c.position = 0
	c.mu.Unlock()

	c.sink.Emit(NewEvent(EventSlideChanged, map[string]any{"slide": 0}))
	return nil
}

// Last implements ModeController.
func (c *LiveRenderController) Last(ctx context.Context) error {
	c.mu.Lock()
	program := c.program
	c.mu.Unlock()
	if program == nil {
		return ErrNotLoaded
	}

	if err := c.dispatch(ctx, renderer.CmdLast); err != nil {
		return err
	}

	pos := program.TotalSlides() - 1
	if pos < 0 {
		pos = 0
	}
	c.mu.Lock()
	c.position = pos
	c.mu.Unlock()

	c.sink.Emit(NewEvent(EventSlideChanged, map[string]any{"slide": pos}))
	return nil
}

// Status implements ModeController. Read directly from session state,
// never triggers I/O. Running consults the supervisor's in-memory flag so
// an asynchronous renderer exit is reflected without polling.
func (c *LiveRenderController) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		Mode:          ModeLiveRender,
		ProgramLoaded: c.program != nil,
		Running:       c.running && c.sup.IsRunning(),
		CurrentSlide:  c.position,
	}
	if c.program != nil {
		st.TotalSlides = c.program.TotalSlides()
	}
	return st
}
