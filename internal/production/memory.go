package production

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// containerState holds a container's bindings in bind order.
type containerState struct {
	name     string
	bindings []Binding
}

// MemoryService is an in-process implementation of Client. It models the
// remote service's container namespace, bindings, and program output and is
// the default backend when no networked production service is configured.
// A networked implementation slots in behind the same Client interface.
type MemoryService struct {
	mu         sync.RWMutex
	connected  bool
	address    string
	password   string // required credential; empty means accept any
	containers map[string]*containerState
	order      []string
	active     string
	notify     func(Notification)
}

// NewMemoryService returns a disconnected MemoryService. If password is
// non-empty, Connect must present the same credential.
func NewMemoryService(password string) *MemoryService {
	return &MemoryService{
		password:   password,
		containers: make(map[string]*containerState),
	}
}

// SetNotify implements Client.SetNotify.
func (s *MemoryService) SetNotify(fn func(Notification)) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// Connect implements Client.Connect. Containers survive reconnects, matching
// the remote service keeping its scene collection across control sessions.
func (s *MemoryService) Connect(ctx context.Context, address, password string) error {
	s.mu.Lock()
	if s.password != "" && password != s.password {
		s.mu.Unlock()
		return ErrAuth
	}
	s.connected = true
	s.address = address
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(Notification{Type: NotifyConnected})
	}
	return nil
}

// Disconnect implements Client.Disconnect.
func (s *MemoryService) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	wasConnected := s.connected
	s.connected = false
	notify := s.notify
	s.mu.Unlock()

	if wasConnected && notify != nil {
		notify(Notification{Type: NotifyDisconnected})
	}
	return nil
}

// Connected implements Client.Connected.
func (s *MemoryService) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// CreateContainer implements Client.CreateContainer.
func (s *MemoryService) CreateContainer(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return ErrNotConnected
	}
	if _, ok := s.containers[name]; ok {
		return ErrExists
	}
	s.containers[name] = &containerState{name: name}
	s.order = append(s.order, name)
	return nil
}

// RemoveContainer implements Client.RemoveContainer.
func (s *MemoryService) RemoveContainer(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return ErrNotConnected
	}
	if _, ok := s.containers[name]; !ok {
		return ErrNotFound
	}
	delete(s.containers, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.active == name {
		s.active = ""
	}
	return nil
}

// ContainerExists implements Client.ContainerExists.
func (s *MemoryService) ContainerExists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected {
		return false, ErrNotConnected
	}
	_, ok := s.containers[name]
	return ok, nil
}

// ListSourceBindings implements Client.ListSourceBindings.
func (s *MemoryService) ListSourceBindings(ctx context.Context, container string) ([]Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected {
		return nil, ErrNotConnected
	}
	c, ok := s.containers[container]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Binding, len(c.bindings))
	copy(out, c.bindings)
	return out, nil
}

// BindImageSource implements Client.BindImageSource.
func (s *MemoryService) BindImageSource(ctx context.Context, container, path string) (string, error) {
	return s.bind(container, Binding{Kind: SourceImage, Source: path})
}

// BindWindowCapture implements Client.BindWindowCapture.
func (s *MemoryService) BindWindowCapture(ctx context.Context, container string) (string, error) {
	return s.bind(container, Binding{Kind: SourceWindowCapture})
}

// BindColorSource implements Client.BindColorSource.
func (s *MemoryService) BindColorSource(ctx context.Context, container string, color uint32) (string, error) {
	return s.bind(container, Binding{Kind: SourceColor, Source: colorHex(color)})
}

// BindMediaSource implements Client.BindMediaSource.
func (s *MemoryService) BindMediaSource(ctx context.Context, container, path string, settings MediaSettings) (string, error) {
	m := settings
	return s.bind(container, Binding{Kind: SourceMedia, Source: path, Media: &m})
}

func (s *MemoryService) bind(container string, b Binding) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return "", ErrNotConnected
	}
	c, ok := s.containers[container]
	if !ok {
		return "", ErrNotFound
	}
	b.ID = uuid.NewString()
	c.bindings = append(c.bindings, b)
	return b.ID, nil
}

// SetBindingTransform implements Client.SetBindingTransform.
func (s *MemoryService) SetBindingTransform(ctx context.Context, container, bindingID string, t Transform) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return ErrNotConnected
	}
	c, ok := s.containers[container]
	if !ok {
		return ErrNotFound
	}
	for i := range c.bindings {
		if c.bindings[i].ID == bindingID {
			tc := t
			c.bindings[i].Transform = &tc
			return nil
		}
	}
	return ErrNotFound
}

// SwitchActiveContainer implements Client.SwitchActiveContainer.
func (s *MemoryService) SwitchActiveContainer(ctx context.Context, name string) error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return ErrNotConnected
	}
	if _, ok := s.containers[name]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.active = name
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(Notification{Type: NotifyActiveContainer, Name: name})
	}
	return nil
}

// QueryActiveContainer implements Client.QueryActiveContainer.
func (s *MemoryService) QueryActiveContainer(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected {
		return "", ErrNotConnected
	}
	return s.active, nil
}

// ContainerNames returns all container names in creation order. Used for
// metrics and diagnostics.
func (s *MemoryService) ContainerNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

const hexDigits = "0123456789abcdef"

// colorHex renders a packed 0xAARRGGBB color as "#aarrggbb".
func colorHex(c uint32) string {
	b := make([]byte, 9)
	b[0] = '#'
	for i := 8; i >= 1; i-- {
		b[i] = hexDigits[c&0xf]
		c >>= 4
	}
	return string(b)
}
