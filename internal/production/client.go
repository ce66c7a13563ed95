package production

import (
	"context"
	"errors"
)

// SourceKind identifies the kind of visual input bound into a container.
type SourceKind string

const (
	SourceImage         SourceKind = "image"
	SourceWindowCapture SourceKind = "window-capture"
	SourceColor         SourceKind = "color"
	SourceMedia         SourceKind = "media"
)

// Transform describes how a binding is fitted inside its container.
type Transform struct {
	BoundsMode string `json:"boundsMode"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Alignment  string `json:"alignment"`
}

// MediaSettings control playback behaviour of a media binding.
type MediaSettings struct {
	Loop              bool `json:"loop"`
	RestartOnActivate bool `json:"restartOnActivate"`
	ClearOnEnd        bool `json:"clearOnEnd"`
}

// Binding is a single source attached to a container. Transform and Media
// are nil unless they have been applied.
type Binding struct {
	ID        string         `json:"id"`
	Kind      SourceKind     `json:"kind"`
	Source    string         `json:"source"`
	Transform *Transform     `json:"transform,omitempty"`
	Media     *MediaSettings `json:"media,omitempty"`
}

// Notification types surfaced through Client.SetNotify.
const (
	NotifyConnected       = "connected"
	NotifyDisconnected    = "disconnected"
	NotifyActiveContainer = "active-container-changed"
)

// Notification is a connection-state or output-state change surfaced by the
// production service. The coordinator re-emits these outward.
type Notification struct {
	Type string // one of the Notify* constants
	Name string // container name for NotifyActiveContainer
}

var (
	// ErrNotConnected is returned by container operations attempted without
	// an established session.
	ErrNotConnected = errors.New("production session not connected")

	// ErrNotFound is returned when a named container does not exist.
	// Callers performing replace-create must tolerate it on remove.
	ErrNotFound = errors.New("container not found")

	// ErrExists is returned by CreateContainer when the name is already
	// taken. Container names are globally unique within a session.
	ErrExists = errors.New("container already exists")

	// ErrAuth is returned by Connect when the credential is rejected.
	ErrAuth = errors.New("authentication failed")
)

// Client is the session wrapper around the remote capture/production
// service. All operations other than Connect require an established
// session and return ErrNotConnected otherwise. Implementations must be
// safe for use by a single caller at a time; the coordinator serializes
// access.
type Client interface {
	// Connect establishes a session against the service at address.
	Connect(ctx context.Context, address, password string) error

	// Disconnect tears the session down. Disconnecting an already
	// disconnected client is a no-op.
	Disconnect(ctx context.Context) error

	// Connected reports whether a session is currently established.
	Connected() bool

	// CreateContainer creates a new, empty container. Returns ErrExists
	// if the name is already taken.
	CreateContainer(ctx context.Context, name string) error

	// RemoveContainer removes a container and all its bindings. Returns
	// ErrNotFound if absent.
	RemoveContainer(ctx context.Context, name string) error

	// ContainerExists reports whether a container with the given name exists.
	ContainerExists(ctx context.Context, name string) (bool, error)

	// ListSourceBindings returns the container's bindings in bind order.
	ListSourceBindings(ctx context.Context, container string) ([]Binding, error)

	// BindImageSource attaches a still-image source and returns its binding ID.
	BindImageSource(ctx context.Context, container, path string) (string, error)

	// BindWindowCapture attaches a live window/region capture source.
	BindWindowCapture(ctx context.Context, container string) (string, error)

	// BindColorSource attaches a full-viewport solid color source.
	// color is packed 0xAARRGGBB.
	BindColorSource(ctx context.Context, container string, color uint32) (string, error)

	// BindMediaSource attaches a media-playback source with the given settings.
	BindMediaSource(ctx context.Context, container, path string, settings MediaSettings) (string, error)

	// SetBindingTransform applies a transform to an existing binding.
	SetBindingTransform(ctx context.Context, container, bindingID string, t Transform) error

	// SwitchActiveContainer routes the named container to program output.
	SwitchActiveContainer(ctx context.Context, name string) error

	// QueryActiveContainer returns the name of the container currently on
	// program output, or "" if none has been switched to yet.
	QueryActiveContainer(ctx context.Context) (string, error)

	// SetNotify registers a callback for service notifications. Pass nil
	// to clear. Must be called before Connect.
	SetNotify(fn func(Notification))
}
