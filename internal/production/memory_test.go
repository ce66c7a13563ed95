package production

import (
	"context"
	"errors"
	"testing"
)

func connected(t *testing.T) *MemoryService {
	t.Helper()
	s := NewMemoryService("")
	if err := s.Connect(context.Background(), "127.0.0.1:4455", ""); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return s
}

func TestConnectRejectsBadCredential(t *testing.T) {
	s := NewMemoryService("secret")
	err := s.Connect(context.Background(), "127.0.0.1:4455", "wrong")
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if s.Connected() {
		t.Error("client should not be connected after auth failure")
	}
}

func TestOperationsRequireSession(t *testing.T) {
	s := NewMemoryService("")
	ctx := context.Background()

	if err := s.CreateContainer(ctx, "a"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("CreateContainer disconnected: got %v", err)
	}
	if err := s.SwitchActiveContainer(ctx, "a"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SwitchActiveContainer disconnected: got %v", err)
	}
	if _, err := s.ListSourceBindings(ctx, "a"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("ListSourceBindings disconnected: got %v", err)
	}
}

func TestCreateRemoveContainer(t *testing.T) {
	s := connected(t)
	ctx := context.Background()

	if err := s.CreateContainer(ctx, "deck-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateContainer(ctx, "deck-1"); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate create: got %v", err)
	}
	if err := s.RemoveContainer(ctx, "deck-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.RemoveContainer(ctx, "deck-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove absent: got %v", err)
	}
}

func TestBindingsAndTransform(t *testing.T) {
	s := connected(t)
	ctx := context.Background()

	if err := s.CreateContainer(ctx, "deck-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	id, err := s.BindImageSource(ctx, "deck-1", "/slides/1.png")
	if err != nil {
		t.Fatalf("bind image: %v", err)
	}
	tr := Transform{BoundsMode: "scale-inner", Width: 1920, Height: 1080, Alignment: "center"}
	if err := s.SetBindingTransform(ctx, "deck-1", id, tr); err != nil {
		t.Fatalf("set transform: %v", err)
	}

	bindings, err := s.ListSourceBindings(ctx, "deck-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(bindings))
	}
	got := bindings[0]
	if got.Kind != SourceImage || got.Source != "/slides/1.png" {
		t.Errorf("binding mismatch: %+v", got)
	}
	if got.Transform == nil || *got.Transform != tr {
		t.Errorf("transform mismatch: %+v", got.Transform)
	}
}

func TestSwitchAndQueryActive(t *testing.T) {
	s := connected(t)
	ctx := context.Background()

	if err := s.SwitchActiveContainer(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("switch to missing: got %v", err)
	}

	if err := s.CreateContainer(ctx, "deck-2"); err != nil {
		t.Fatalf("create: %v", err)
	}
	var gotNotif []Notification
	s.SetNotify(func(n Notification) { gotNotif = append(gotNotif, n) })
	if err := s.SwitchActiveContainer(ctx, "deck-2"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	active, err := s.QueryActiveContainer(ctx)
	if err != nil || active != "deck-2" {
		t.Errorf("active = %q, err = %v", active, err)
	}
	if len(gotNotif) != 1 || gotNotif[0].Type != "active-container-changed" || gotNotif[0].Name != "deck-2" {
		t.Errorf("notifications: %+v", gotNotif)
	}
}

func TestContainersSurviveReconnect(t *testing.T) {
	s := connected(t)
	ctx := context.Background()

	if err := s.CreateContainer(ctx, "deck-3"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Disconnect(ctx); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if err := s.Connect(ctx, "127.0.0.1:4455", ""); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	exists, err := s.ContainerExists(ctx, "deck-3")
	if err != nil || !exists {
		t.Errorf("container should survive reconnect: exists=%v err=%v", exists, err)
	}
}

func TestColorHex(t *testing.T) {
	if got := colorHex(0xff000000); got != "#ff000000" {
		t.Errorf("colorHex black: %q", got)
	}
	if got := colorHex(0xff102030); got != "#ff102030" {
		t.Errorf("colorHex rgb: %q", got)
	}
}
