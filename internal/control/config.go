package control

import "deckcontrol/internal/production"

// Config gathers the capture defaults and naming constants the core
// consults. It is constructed once at process start and passed by
// reference into every component constructor; nothing reads it ambiently.
type Config struct {
	// ScenePrefix namespaces every container this controller creates so
	// operator-made scenes in the same service are never touched.
	ScenePrefix string

	// ActInfix joins the program ID and the 1-based act number in a
	// synthesized scene name.
	ActInfix string

	// LiveSuffix marks the single capture container used by live-render
	// mode.
	LiveSuffix string

	// VideoInfix joins a parent scene name and the 1-based sub-index of a
	// nested video container.
	VideoInfix string

	// BlackoutScene is the name of the always-available solid color
	// container.
	BlackoutScene string

	// BlackoutColor is the blackout fill, packed 0xAARRGGBB.
	BlackoutColor uint32

	// CaptureWidth and CaptureHeight are the target dimensions of the
	// fixed-aspect transform applied to image bindings.
	CaptureWidth  int
	CaptureHeight int

	// BoundsMode and Alignment complete the image transform policy.
	BoundsMode string
	Alignment  string
}

// DefaultConfig returns the stock capture policy: a deck/ namespace and a
// 1920x1080 scale-to-inner-bounds, center-aligned image fit.
func DefaultConfig() Config {
	return Config{
		ScenePrefix:   "deck/",
		ActInfix:      "-act-",
		LiveSuffix:    "-live",
		VideoInfix:    "-video-",
		BlackoutScene: "deck/blackout",
		BlackoutColor: 0xff000000,
		CaptureWidth:  1920,
		CaptureHeight: 1080,
		BoundsMode:    "scale-inner",
		Alignment:     "center",
	}
}

// ImageTransform returns the transform applied to the first binding of
// every image-bearing container.
func (c Config) ImageTransform() production.Transform {
	return production.Transform{
		BoundsMode: c.BoundsMode,
		Width:      c.CaptureWidth,
		Height:     c.CaptureHeight,
		Alignment:  c.Alignment,
	}
}
