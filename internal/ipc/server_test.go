package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/1broseidon/stacktile/internal/platform"
	"github.com/1broseidon/stacktile/internal/tiling"
)

type fakeHandler struct {
	mu        sync.Mutex
	actions   []ActionPayload
	desks     []SetDeskPayload
	reloads   int
	actionErr error
	status    StatusData
}

func (h *fakeHandler) Status(context.Context) (StatusData, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status, nil
}

func (h *fakeHandler) RunAction(_ context.Context, name, param string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions = append(h.actions, ActionPayload{Name: name, Param: param})
	return h.actionErr
}

func (h *fakeHandler) SetDesk(_ context.Context, desk SetDeskPayload) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.desks = append(h.desks, desk)
	return nil
}

func (h *fakeHandler) Reload(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads++
	return nil
}

func (h *fakeHandler) snapshot() ([]ActionPayload, []SetDeskPayload, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ActionPayload(nil), h.actions...), append([]SetDeskPayload(nil), h.desks...), h.reloads
}

func startServer(t *testing.T, h Handler) *Client {
	t.Helper()
	// Unix socket paths are length limited; keep the directory short.
	dir, err := os.MkdirTemp("", "stk")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "s.sock")
	srv := NewServer(socket, h, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientWithSocket(socket)
}

func TestPingAndReload(t *testing.T) {
	h := &fakeHandler{}
	c := startServer(t, h)

	if err := c.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := c.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, _, reloads := h.snapshot(); reloads != 1 {
		t.Fatalf("expected 1 reload, got %d", reloads)
	}
}

func TestRunAction(t *testing.T) {
	h := &fakeHandler{}
	c := startServer(t, h)

	if err := c.RunAction("move_direct", "left"); err != nil {
		t.Fatalf("action: %v", err)
	}
	if actions, _, _ := h.snapshot(); len(actions) != 1 || actions[0] != (ActionPayload{Name: "move_direct", Param: "left"}) {
		t.Fatalf("unexpected actions %+v", actions)
	}

	h.mu.Lock()
	h.actionErr = errors.New("no focused window")
	h.mu.Unlock()
	err := c.RunAction("swap", "")
	if err == nil || !strings.Contains(err.Error(), "no focused window") {
		t.Fatalf("expected handler error surfaced, got %v", err)
	}
}

func TestSetDeskValidates(t *testing.T) {
	h := &fakeHandler{}
	c := startServer(t, h)

	if err := c.SetDesk(SetDeskPayload{X: 1, NbStacks: tiling.MaxStacks + 1}); err == nil {
		t.Fatalf("expected nb_stacks validation error")
	}
	if err := c.SetDesk(SetDeskPayload{X: 1, NbStacks: 2, Layout: "spiral"}); err == nil {
		t.Fatalf("expected layout validation error")
	}
	if _, desks, _ := h.snapshot(); len(desks) != 0 {
		t.Fatalf("expected invalid records not forwarded, got %+v", desks)
	}

	want := SetDeskPayload{X: 1, Y: 0, Zone: 0, NbStacks: 3, UseRows: true}
	if err := c.SetDesk(want); err != nil {
		t.Fatalf("set desk: %v", err)
	}
	_, desks, _ := h.snapshot()
	if len(desks) != 1 || desks[0] != want {
		t.Fatalf("unexpected desks %+v", desks)
	}
	if got := desks[0].Conf(); got.Layout != tiling.LayoutStacks || got.NbStacks != 3 {
		t.Fatalf("unexpected conf %+v", got)
	}
}

func TestStatus(t *testing.T) {
	desk := platform.Desk{Zone: 0, X: 1}
	h := &fakeHandler{status: StatusData{
		Mode:    "moving",
		Current: &desk,
		Desks: []tiling.DeskState{{
			Desk:     desk,
			NbStacks: 2,
			Layout:   tiling.LayoutStacks,
			Stacks:   []tiling.StackState{{Pos: 0, Size: 600, Windows: []platform.WindowID{7}}},
		}},
	}}
	c := startServer(t, h)

	st, err := c.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Mode != "moving" || st.Current == nil || *st.Current != desk {
		t.Fatalf("unexpected status %+v", st)
	}
	if len(st.Desks) != 1 || len(st.Desks[0].Stacks) != 1 || st.Desks[0].Stacks[0].Windows[0] != 7 {
		t.Fatalf("unexpected desks %+v", st.Desks)
	}
}

func TestUnknownCommand(t *testing.T) {
	c := startServer(t, &fakeHandler{})
	_, err := c.sendRequest("frobnicate", nil)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestClientWithoutDaemon(t *testing.T) {
	c := NewClientWithSocket(filepath.Join(t.TempDir(), "missing.sock"))
	if err := c.Ping(); err == nil {
		t.Fatalf("expected connection error")
	}
}
