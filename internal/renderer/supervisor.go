// Package renderer supervises the external slide-rendering process used for
// live playback: launch, health, command delivery, and graceful or forced
// termination. At most one renderer process is alive at any time.
package renderer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

var (
	// ErrUnavailable is returned by Launch when no renderer executable can
	// be resolved from the configured locations.
	ErrUnavailable = errors.New("renderer executable not found")

	// ErrNotRunning is returned by SendCommand when no renderer process is
	// alive.
	ErrNotRunning = errors.New("renderer not running")
)

// Config holds the supervisor's tunables. Zero durations fall back to the
// defaults below.
type Config struct {
	// Executable overrides resolution entirely when set. A bare name is
	// looked up on PATH.
	Executable string

	// BundledPath is the portable install location probed first.
	BundledPath string

	// SystemPath is the well-known system install probed second.
	SystemPath string

	// Args is the fixed argument set selecting full-screen live playback.
	// The asset path is appended after these.
	Args []string

	// DisplayEnv names the environment variable the renderer reads to pick
	// a target display. Set before spawn when a non-primary display is
	// requested.
	DisplayEnv string

	// StartupGrace is how long Launch waits before treating a still-alive
	// process as successfully started. The renderer has no reliable ready
	// signal over the channel used.
	StartupGrace time.Duration

	// ShutdownGrace is how long Stop waits after the graceful exit
	// keystroke before sending SIGTERM.
	ShutdownGrace time.Duration

	// KillGrace is how long Stop waits after SIGTERM before SIGKILL.
	KillGrace time.Duration

	// Keys maps logical commands to platform key names.
	Keys KeyMap
}

// DefaultConfig returns the stock supervisor configuration.
func DefaultConfig() Config {
	return Config{
		BundledPath:   "./renderer/deck-renderer",
		SystemPath:    "/usr/local/bin/deck-renderer",
		Args:          []string{"--fullscreen", "--autoplay"},
		DisplayEnv:    "DECK_RENDERER_DISPLAY",
		StartupGrace:  3 * time.Second,
		ShutdownGrace: 2 * time.Second,
		KillGrace:     2 * time.Second,
		Keys:          DefaultKeyMap(),
	}
}

func (c *Config) setDefaults() {
	if c.StartupGrace == 0 {
		c.StartupGrace = 3 * time.Second
	}
	if c.ShutdownGrace == 0 {
		c.ShutdownGrace = 2 * time.Second
	}
	if c.KillGrace == 0 {
		c.KillGrace = 2 * time.Second
	}
	if c.Keys == nil {
		c.Keys = DefaultKeyMap()
	}
}

// process is one tracked renderer process. done is closed by the watcher
// once the process has exited and its exit code recorded. The escalation
// timers live here so a timer armed for one process can never fire against
// its successor.
type process struct {
	cmd       *exec.Cmd
	done      chan struct{}
	exitCode  int
	killTimer *time.Timer
}

// Supervisor owns exactly one external renderer process at a time.
type Supervisor struct {
	cfg    Config
	inject Injector
	log    *slog.Logger

	mu       sync.Mutex
	proc     *process
	resolved string // last confirmed executable path
	onExit   func(exitCode int)
}

// New returns a Supervisor using the given injector for key dispatch.
func New(cfg Config, inject Injector, log *slog.Logger) *Supervisor {
	cfg.setDefaults()
	return &Supervisor{cfg: cfg, inject: inject, log: log}
}

// SetOnExit registers a callback invoked whenever the tracked process
// exits, expectedly or not. The callback may fire long after Launch
// returned; callers must not assume the process remains alive.
func (s *Supervisor) SetOnExit(fn func(exitCode int)) {
	s.mu.Lock()
	s.onExit = fn
	s.mu.Unlock()
}

// IsRunning reports whether a renderer process is currently tracked alive.
func (s *Supervisor) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc != nil
}

// Launch starts the renderer against assetPath. Any already-tracked process
// is fully stopped first. display selects the target monitor (0 = primary);
// non-primary targeting goes through the DisplayEnv selector. Launch
// resolves only after StartupGrace has elapsed with the process still
// alive; an earlier exit fails the launch.
func (s *Supervisor) Launch(ctx context.Context, assetPath string, display int) error {
	if s.IsRunning() {
		s.Stop(ctx)
	}

	path, err := s.resolveExecutable()
	if err != nil {
		return err
	}

	args := make([]string, 0, len(s.cfg.Args)+1)
	args = append(args, s.cfg.Args...)
	args = append(args, assetPath)

	cmd := exec.Command(path, args...)
	if display > 0 && s.cfg.DisplayEnv != "" {
		cmd.Env = append(os.Environ(), fmt.Sprintf("%s=%d", s.cfg.DisplayEnv, display))
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("renderer stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("renderer stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn renderer: %w", err)
	}

	p := &process{cmd: cmd, done: make(chan struct{})}
	s.mu.Lock()
	s.proc = p
	s.mu.Unlock()

	go s.drain("renderer stdout", stdout)
	go s.drain("renderer stderr", stderr)
	go s.watch(p)

	s.log.Info("renderer launched",
		slog.String("path", path),
		slog.String("asset", assetPath),
		slog.Int("display", display),
	)

	select {
	case <-time.After(s.cfg.StartupGrace):
		// Still alive after the grace delay counts as started.
		return nil
	case <-p.done:
		return fmt.Errorf("renderer exited during startup (code %d)", p.exitCode)
	case <-ctx.Done():
		s.Stop(context.Background())
		return ctx.Err()
	}
}

// SendCommand translates a logical navigation key through the key map and
// dispatches it to the live renderer. A dispatch failure is surfaced, not
// swallowed.
func (s *Supervisor) SendCommand(ctx context.Context, cmd Command) error {
	s.mu.Lock()
	p := s.proc
	s.mu.Unlock()
	if p == nil {
		return ErrNotRunning
	}

	key, ok := s.cfg.Keys[cmd]
	if !ok {
		return fmt.Errorf("no key mapping for command %q", cmd)
	}
	if err := s.inject.Press(ctx, key); err != nil {
		return err
	}

	s.log.Debug("key sent", slog.String("command", string(cmd)), slog.String("key", key))
	return nil
}

// Stop terminates the tracked process: graceful exit keystroke, SIGTERM
// after ShutdownGrace, SIGKILL after a further KillGrace. A successful
// earlier exit cancels the still-pending kill timer. Stop never returns an
// error; every failure escalates straight to SIGKILL. No-op when nothing
// is running.
func (s *Supervisor) Stop(ctx context.Context) {
	s.mu.Lock()
	p := s.proc
	s.mu.Unlock()
	if p == nil {
		return
	}

	if err := s.SendCommand(ctx, CmdExit); err != nil {
		s.log.Debug("graceful exit keystroke failed", slog.String("error", err.Error()))
	}

	select {
	case <-p.done:
		return
	case <-time.After(s.cfg.ShutdownGrace):
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		s.log.Warn("terminate signal failed, killing", slog.String("error", err.Error()))
		_ = p.cmd.Process.Kill()
	} else {
		s.mu.Lock()
		p.killTimer = time.AfterFunc(s.cfg.KillGrace, func() {
			s.log.Warn("renderer ignored terminate signal, killing")
			_ = p.cmd.Process.Kill()
		})
		s.mu.Unlock()
	}

	// SIGKILL is not ignorable, so the watcher closes done shortly after
	// the kill timer fires at the latest.
	select {
	case <-p.done:
	case <-time.After(s.cfg.KillGrace + s.cfg.ShutdownGrace):
		s.log.Error("renderer did not exit after kill")
	}
}

// CheckAvailability probes the configured executable locations and caches
// whichever path is confirmed. Returns false rather than an error when
// nothing resolves.
func (s *Supervisor) CheckAvailability(ctx context.Context) bool {
	_, err := s.resolveExecutable()
	return err == nil
}

// ResolvedPath returns the last confirmed executable path, or "" if none
// has been resolved yet.
func (s *Supervisor) ResolvedPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// watch waits for the process to exit, records the exit code, cancels any
// pending kill timer, and clears the tracked slot if it still points at
// this process.
func (s *Supervisor) watch(p *process) {
	err := p.cmd.Wait()

	code := 0
	if p.cmd.ProcessState != nil {
		code = p.cmd.ProcessState.ExitCode()
	} else if err != nil {
		code = -1
	}

	s.mu.Lock()
	p.exitCode = code
	if p.killTimer != nil {
		p.killTimer.Stop()
	}
	if s.proc == p {
		s.proc = nil
	}
	onExit := s.onExit
	s.mu.Unlock()

	close(p.done)

	s.log.Info("renderer exited", slog.Int("code", code))
	if onExit != nil {
		onExit(code)
	}
}

// drain logs process output line by line at debug level.
func (s *Supervisor) drain(label string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			s.log.Debug(label, slog.String("line", line))
		}
	}
}

// resolveExecutable picks the first usable executable location: explicit
// override, previously confirmed path, bundled path, then system path.
func (s *Supervisor) resolveExecutable() (string, error) {
	s.mu.Lock()
	cached := s.resolved
	s.mu.Unlock()

	candidates := make([]string, 0, 4)
	if s.cfg.Executable != "" {
		candidates = append(candidates, s.cfg.Executable)
	}
	if cached != "" {
		candidates = append(candidates, cached)
	}
	if s.cfg.BundledPath != "" {
		candidates = append(candidates, s.cfg.BundledPath)
	}
	if s.cfg.SystemPath != "" {
		candidates = append(candidates, s.cfg.SystemPath)
	}

	for _, c := range candidates {
		path := c
		if !strings.ContainsRune(c, os.PathSeparator) {
			found, err := exec.LookPath(c)
			if err != nil {
				continue
			}
			path = found
		} else if info, err := os.Stat(c); err != nil || info.IsDir() {
			continue
		}
		s.mu.Lock()
		s.resolved = path
		s.mu.Unlock()
		return path, nil
	}
	return "", ErrUnavailable
}
