package control

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"deckcontrol/internal/production"
)

// SceneGraphController presents a program by pre-materializing each act as
// its own capture container and switching between them directly. The
// containers persist across Stop for instant resume; only the next load's
// replace-create step removes them.
type SceneGraphController struct {
	cfg     Config
	client  production.Client
	builder *TopologyBuilder
	sink    EventSink
	log     *slog.Logger

	mu       sync.Mutex
	program  *Program
	scenes   []SceneRecord
	position int // PositionNone before first navigation and after stop
}

// NewSceneGraphController wires a scene-graph controller.
func NewSceneGraphController(cfg Config, client production.Client, builder *TopologyBuilder, sink EventSink, log *slog.Logger) *SceneGraphController {
	return &SceneGraphController{
		cfg:      cfg,
		client:   client,
		builder:  builder,
		sink:     sink,
		log:      log,
		position: PositionNone,
	}
}

// LoadProgram implements ModeController. With an active session it drives
// the topology builder once per act, collecting container records in act
// order and failing fast on the first creation failure; already-created
// containers are left in place (no rollback) and absorbed by the next
// successful load. Without a session the load still succeeds and container
// synthesis is deferred until the program is reloaded under a session.
func (c *SceneGraphController) LoadProgram(ctx context.Context, program *Program) error {
	if program == nil {
		return fmt.Errorf("%w: program is required", ErrInvalidArgument)
	}

	c.mu.Lock()
	c.program = program
	c.scenes = nil
	c.position = PositionNone
	c.mu.Unlock()

	c.sink.Emit(NewEvent(EventProgramLoaded, map[string]any{"programId": program.ID, "mode": ModeSceneGraph}))

	if !c.client.Connected() {
		c.log.Info("no production session, deferring container synthesis",
			slog.String("program", string(program.ID)))
		return nil
	}

	scenes := make([]SceneRecord, 0, len(program.Acts))
	for _, act := range program.Acts {
		rec, err := c.builder.BuildScene(ctx, program, act)
		if err != nil {
			return fmt.Errorf("%w: act %d: %v", ErrSetup, act.Index, err)
		}
		scenes = append(scenes, rec)
	}

	c.mu.Lock()
	c.scenes = scenes
	c.mu.Unlock()

	c.sink.Emit(NewEvent(EventScenesCreated, map[string]any{
		"programId": program.ID,
		"count":     len(scenes),
	}))
	return nil
}

// Start implements ModeController. With containers present it jumps to
// index 0; otherwise it is a no-op.
func (c *SceneGraphController) Start(ctx context.Context, opts StartOptions) error {
	c.mu.Lock()
	empty := len(c.scenes) == 0
	c.mu.Unlock()
	if empty {
		return nil
	}

	if _, err := c.JumpToScene(ctx, 0); err != nil {
		return err
	}
	c.sink.Emit(NewEvent(EventStarted, nil))
	return nil
}

// Stop implements ModeController. It resets the position sentinel only;
// remote containers persist for instant resume.
func (c *SceneGraphController) Stop(ctx context.Context) error {
	c.mu.Lock()
	c.position = PositionNone
	c.mu.Unlock()

	c.sink.Emit(NewEvent(EventStopped, nil))
	return nil
}

// Next implements ModeController: clamp at the last container, never wrap
// or error past the end.
func (c *SceneGraphController) Next(ctx context.Context) error {
	c.mu.Lock()
	count := len(c.scenes)
	pos := c.position
	c.mu.Unlock()
	if count == 0 {
		return ErrNotLoaded
	}

	target := pos + 1
	if target > count-1 {
		target = count - 1
	}
	if target == pos {
		return nil
	}
	_, err := c.JumpToScene(ctx, target)
	return err
}

// Prev implements ModeController: clamp at zero. At position 0 no remote
// call is issued.
func (c *SceneGraphController) Prev(ctx context.Context) error {
	c.mu.Lock()
	count := len(c.scenes)
	pos := c.position
	c.mu.Unlock()
	if count == 0 {
		return ErrNotLoaded
	}

	target := pos - 1
	if target < 0 {
		target = 0
	}
	if target == pos {
		return nil
	}
	_, err := c.JumpToScene(ctx, target)
	return err
}

// First implements ModeController as JumpToScene(0).
func (c *SceneGraphController) First(ctx context.Context) error {
	_, err := c.JumpToScene(ctx, 0)
	return err
}

// Last implements ModeController as JumpToScene(count-1); a no-op with
// zero containers.
func (c *SceneGraphController) Last(ctx context.Context) error {
	c.mu.Lock()
	count := len(c.scenes)
	c.mu.Unlock()
	if count == 0 {
		return nil
	}
	_, err := c.JumpToScene(ctx, count-1)
	return err
}

// JumpToScene implements SceneJumper. It switches program output to the
// container at index, updates the position, and returns the record.
func (c *SceneGraphController) JumpToScene(ctx context.Context, index int) (SceneRecord, error) {
	if !c.client.Connected() {
		return SceneRecord{}, ErrNotConnected
	}

	c.mu.Lock()
	count := len(c.scenes)
	if index < 0 || index >= count {
		c.mu.Unlock()
		return SceneRecord{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, count)
	}
	rec := c.scenes[index]
	c.mu.Unlock()

	if err := c.client.SwitchActiveContainer(ctx, rec.Name); err != nil {
		return SceneRecord{}, fmt.Errorf("switch to %s: %w", rec.Name, err)
	}

	c.mu.Lock()
	c.position = index
	c.mu.Unlock()

	c.sink.Emit(NewEvent(EventSceneChanged, map[string]any{
		"scene": rec.Name,
		"index": index,
	}))
	return rec, nil
}

// Status implements ModeController. It includes the full container list
// for UI consumption and never triggers I/O.
func (c *SceneGraphController) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	scenes := make([]SceneRecord, len(c.scenes))
	copy(scenes, c.scenes)

	return Status{
		Mode:          ModeSceneGraph,
		ProgramLoaded: c.program != nil,
		CurrentScene:  c.position,
		TotalScenes:   len(c.scenes),
		Scenes:        scenes,
	}
}
