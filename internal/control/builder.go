package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"deckcontrol/internal/production"
)

// TopologyBuilder turns an ordered act sequence into remote capture
// containers with deterministic, collision-free naming and idempotent
// creation. It issues every container operation through the production
// client and owns no state of its own.
type TopologyBuilder struct {
	client production.Client
	cfg    Config
	log    *slog.Logger
}

// NewTopologyBuilder returns a builder driving the given client.
func NewTopologyBuilder(client production.Client, cfg Config, log *slog.Logger) *TopologyBuilder {
	return &TopologyBuilder{client: client, cfg: cfg, log: log}
}

// replaceCreate removes any pre-existing container with the given name
// (tolerating absence, which is expected on first creation) and then
// creates a new, empty one. Remove-then-create guarantees no stale
// bindings survive a re-import of the same program.
func (b *TopologyBuilder) replaceCreate(ctx context.Context, name string) error {
	if err := b.client.RemoveContainer(ctx, name); err != nil && !errors.Is(err, production.ErrNotFound) {
		return fmt.Errorf("remove container %s: %w", name, err)
	}
	if err := b.client.CreateContainer(ctx, name); err != nil {
		return fmt.Errorf("create container %s: %w", name, err)
	}
	return nil
}

// BuildScene materializes the container for one act of program p: the
// container itself, an image binding with the configured fixed-aspect
// transform when the act has a still image, and a nested video container
// when the act declares video. Video is isolated in the nested container
// so the parent's image persists as a poster frame until the operator
// explicitly switches into it; playback is never auto-triggered.
func (b *TopologyBuilder) BuildScene(ctx context.Context, p *Program, act Act) (SceneRecord, error) {
	name := SceneName(b.cfg, p.ID, act.Index)

	if err := b.replaceCreate(ctx, name); err != nil {
		return SceneRecord{}, err
	}

	if act.ImagePath != "" {
		id, err := b.client.BindImageSource(ctx, name, act.ImagePath)
		if err != nil {
			return SceneRecord{}, fmt.Errorf("bind image for %s: %w", name, err)
		}
		bindings, err := b.client.ListSourceBindings(ctx, name)
		if err != nil {
			return SceneRecord{}, fmt.Errorf("list bindings for %s: %w", name, err)
		}
		if len(bindings) > 0 {
			id = bindings[0].ID
		}
		if err := b.client.SetBindingTransform(ctx, name, id, b.cfg.ImageTransform()); err != nil {
			return SceneRecord{}, fmt.Errorf("set transform for %s: %w", name, err)
		}
	}

	rec := SceneRecord{
		Name:     name,
		ActIndex: act.Index,
		ActName:  act.Name,
	}

	if act.HasVideo && act.VideoPath != "" {
		sub := VideoSceneName(b.cfg, name, 1)
		if err := b.replaceCreate(ctx, sub); err != nil {
			return SceneRecord{}, err
		}
		settings := production.MediaSettings{
			Loop:              false,
			RestartOnActivate: true,
			ClearOnEnd:        false,
		}
		if _, err := b.client.BindMediaSource(ctx, sub, act.VideoPath, settings); err != nil {
			return SceneRecord{}, fmt.Errorf("bind media for %s: %w", sub, err)
		}
		rec.VideoScene = sub
		rec.HasVideo = true
	}

	b.log.Debug("scene built",
		slog.String("scene", name),
		slog.Int("act", act.Index),
		slog.Bool("video", rec.HasVideo),
	)
	return rec, nil
}

// BuildLiveScene materializes the single capture container live-render
// mode frames its renderer window into, and returns its name.
func (b *TopologyBuilder) BuildLiveScene(ctx context.Context, p *Program) (string, error) {
	name := LiveSceneName(b.cfg, p.ID)

	if err := b.replaceCreate(ctx, name); err != nil {
		return "", err
	}
	if _, err := b.client.BindWindowCapture(ctx, name); err != nil {
		return "", fmt.Errorf("bind window capture for %s: %w", name, err)
	}
	return name, nil
}

// EnsureBlackout creates the always-available solid color container once
// per session. Existence is checked first (create-if-absent, not replace)
// so reconnecting never duplicates or disturbs it.
func (b *TopologyBuilder) EnsureBlackout(ctx context.Context) error {
	exists, err := b.client.ContainerExists(ctx, b.cfg.BlackoutScene)
	if err != nil {
		return fmt.Errorf("probe blackout container: %w", err)
	}
	if exists {
		return nil
	}
	if err := b.client.CreateContainer(ctx, b.cfg.BlackoutScene); err != nil {
		return fmt.Errorf("create blackout container: %w", err)
	}
	if _, err := b.client.BindColorSource(ctx, b.cfg.BlackoutScene, b.cfg.BlackoutColor); err != nil {
		return fmt.Errorf("bind blackout color: %w", err)
	}
	return nil
}
