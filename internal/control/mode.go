package control

import (
	"context"

	"deckcontrol/internal/renderer"
)

// StartOptions carries per-start parameters. Display selects the target
// monitor for live-render playback (0 = primary).
type StartOptions struct {
	Display int
}

// ModeController is the polymorphic navigation contract both playback
// backends implement. The coordinator resolves a program's declared mode
// into one concrete controller at load time and forwards every subsequent
// command to it unchanged.
//
// Commands against the same controller are serialized by the caller; the
// coordinator awaits each command to completion before accepting the next.
// Controllers build in no reentrancy protection of their own.
type ModeController interface {
	// LoadProgram resets session state and prepares the backend for the
	// given program. Fails with ErrInvalidArgument when program is nil.
	LoadProgram(ctx context.Context, program *Program) error

	// Start begins playback. Fails with ErrNotLoaded when no program is
	// loaded (live-render); a scene-graph start with zero containers is a
	// no-op.
	Start(ctx context.Context, opts StartOptions) error

	// Stop quiesces playback and resets position. Idempotent.
	Stop(ctx context.Context) error

	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	First(ctx context.Context) error
	Last(ctx context.Context) error

	// Status returns the session snapshot. Never triggers I/O.
	Status() Status
}

// SceneJumper is the extra capability of backends with directly
// addressable containers. The coordinator detects it once at load time.
type SceneJumper interface {
	JumpToScene(ctx context.Context, index int) (SceneRecord, error)
}

// RendererSupervisor is the slice of the process supervisor live-render
// mode depends on. renderer.Supervisor implements it.
type RendererSupervisor interface {
	Launch(ctx context.Context, assetPath string, display int) error
	SendCommand(ctx context.Context, cmd renderer.Command) error
	Stop(ctx context.Context)
	IsRunning() bool
	CheckAvailability(ctx context.Context) bool

	// SetOnExit registers a callback invoked whenever the renderer process
	// exits, expectedly or not. The coordinator routes it into the event
	// sink so an asynchronous renderer death is observable without polling.
	SetOnExit(fn func(exitCode int))
}
