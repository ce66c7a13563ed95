package control_test

import (
	. "deckcontrol/internal/control"

	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"deckcontrol/internal/production"
	"deckcontrol/internal/renderer"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubSupervisor implements RendererSupervisor without spawning processes.
type stubSupervisor struct {
	mu        sync.Mutex
	launched  []string
	commands  []renderer.Command
	running   bool
	launchErr error
	cmdErr    error
	available bool
	onExit    func(int)
}

func (s *stubSupervisor) Launch(ctx context.Context, assetPath string, display int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.launchErr != nil {
		return s.launchErr
	}
	s.launched = append(s.launched, assetPath)
	s.running = true
	return nil
}

func (s *stubSupervisor) SendCommand(ctx context.Context, cmd renderer.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmdErr != nil {
		return s.cmdErr
	}
	if !s.running {
		return renderer.ErrNotRunning
	}
	s.commands = append(s.commands, cmd)
	return nil
}

func (s *stubSupervisor) Stop(ctx context.Context) {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *stubSupervisor) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *stubSupervisor) CheckAvailability(ctx context.Context) bool {
	return s.available
}

func (s *stubSupervisor) SetOnExit(fn func(int)) {
	s.mu.Lock()
	s.onExit = fn
	s.mu.Unlock()
}

// exit simulates the tracked process dying on its own with the given code.
func (s *stubSupervisor) exit(code int) {
	s.mu.Lock()
	s.running = false
	fn := s.onExit
	s.mu.Unlock()
	if fn != nil {
		fn(code)
	}
}

func (s *stubSupervisor) sent() []renderer.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]renderer.Command, len(s.commands))
	copy(out, s.commands)
	return out
}

// countingClient wraps the in-memory service to count container switches.
type countingClient struct {
	*production.MemoryService
	mu        sync.Mutex
	switches  int
	switchErr error
}

func (c *countingClient) SwitchActiveContainer(ctx context.Context, name string) error {
	c.mu.Lock()
	if c.switchErr != nil {
		err := c.switchErr
		c.mu.Unlock()
		return err
	}
	c.switches++
	c.mu.Unlock()
	return c.MemoryService.SwitchActiveContainer(ctx, name)
}

func (c *countingClient) switchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.switches
}

// failingClient fails container creation for one specific name.
type failingClient struct {
	*production.MemoryService
	failName string
}

func (c *failingClient) CreateContainer(ctx context.Context, name string) error {
	if name == c.failName {
		return fmt.Errorf("service rejected container %s", name)
	}
	return c.MemoryService.CreateContainer(ctx, name)
}

func connectedService(t *testing.T) *production.MemoryService {
	t.Helper()
	svc := production.NewMemoryService("")
	if err := svc.Connect(context.Background(), "127.0.0.1:4455", ""); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return svc
}

// imageProgram builds a scene-graph program with n image-only acts.
func imageProgram(id ProgramID, n int) *Program {
	acts := make([]Act, n)
	for i := range acts {
		acts[i] = Act{
			Index:     i,
			Name:      fmt.Sprintf("Slide %d", i+1),
			ImagePath: fmt.Sprintf("/slides/%s/%d.png", id, i+1),
		}
	}
	return &Program{
		ID:         id,
		Name:       string(id),
		SourcePath: fmt.Sprintf("/decks/%s.pptx", id),
		Mode:       ModeSceneGraph,
		SlideCount: n,
		Acts:       acts,
	}
}

func liveProgram(id ProgramID, slides int) *Program {
	return &Program{
		ID:         id,
		Name:       string(id),
		SourcePath: fmt.Sprintf("/decks/%s.pptx", id),
		Mode:       ModeLiveRender,
		SlideCount: slides,
	}
}
