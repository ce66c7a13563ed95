package renderer

import (
	"context"
	"fmt"
	"os/exec"
)

// Command is a logical navigation key understood by the external renderer.
type Command string

const (
	CmdNext             Command = "next"
	CmdPrev             Command = "prev"
	CmdFirst            Command = "first"
	CmdLast             Command = "last"
	CmdExit             Command = "exit"
	CmdFullscreenToggle Command = "fullscreen-toggle"
)

// KeyMap translates logical commands to platform input-event key names.
type KeyMap map[Command]string

// DefaultKeyMap returns the key bindings the stock renderer responds to.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		CmdNext:             "Right",
		CmdPrev:             "Left",
		CmdFirst:            "Home",
		CmdLast:             "End",
		CmdExit:             "Escape",
		CmdFullscreenToggle: "F5",
	}
}

// Injector dispatches a translated key to the renderer's window. The
// injection mechanism itself is an external collaborator; the supervisor's
// contract is only to translate and attempt dispatch.
type Injector interface {
	Press(ctx context.Context, key string) error
}

// ExecInjector injects keys by shelling out to a system input tool
// (xdotool on X11 setups). The tool targets the focused window, which is
// the full-screen renderer while a presentation is live.
type ExecInjector struct {
	tool string
}

// NewExecInjector returns an Injector that invokes the given tool binary.
func NewExecInjector(tool string) *ExecInjector {
	return &ExecInjector{tool: tool}
}

// Press implements Injector.
func (e *ExecInjector) Press(ctx context.Context, key string) error {
	if err := exec.CommandContext(ctx, e.tool, "key", key).Run(); err != nil {
		return fmt.Errorf("inject key %s: %w", key, err)
	}
	return nil
}
