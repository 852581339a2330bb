package daemon

import (
	"errors"
	"testing"

	"github.com/1broseidon/stacktile/internal/hooks"
	"github.com/1broseidon/stacktile/internal/platform"
	"github.com/1broseidon/stacktile/internal/platform/platformtest"
)

type fakeSource struct {
	*platformtest.Compositor
	ids     []platform.WindowID
	zones   int
	current int
	listErr error
}

func (s *fakeSource) Clients() ([]platform.WindowID, error) { return s.ids, s.listErr }

func (s *fakeSource) ZoneCount() (int, error) { return s.zones, nil }

func (s *fakeSource) ZoneDesk(zone int) (platform.Desk, error) {
	return platform.Desk{Zone: zone, X: s.current}, nil
}

func TestSnapshotFromSource(t *testing.T) {
	comp := platformtest.New(area0)
	comp.AddWindow(1, desk0, geom)
	comp.AddWindow(2, desk1, geom)
	comp.Update(2, func(w *platform.Window) { w.Iconic = true })
	src := &fakeSource{Compositor: comp, ids: []platform.WindowID{1, 2, 3}, zones: 1, current: 1}

	snap, err := SnapshotFromSource(src, testLogger())()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snap.Windows) != 2 {
		t.Fatalf("expected the vanished window skipped, got %d windows", len(snap.Windows))
	}
	if st := snap.Windows[1]; st.Desk != desk0 || st.Bounds != geom || st.Iconic {
		t.Fatalf("unexpected state for window 1: %+v", st)
	}
	if !snap.Windows[2].Iconic {
		t.Fatalf("expected window 2 iconic")
	}
	if snap.Current[0] != desk1 {
		t.Fatalf("expected zone 0 showing %v, got %v", desk1, snap.Current[0])
	}
	if snap.Areas[0] != area0 {
		t.Fatalf("expected area %v, got %v", area0, snap.Areas[0])
	}
}

func TestSnapshotFromSourcePropagatesListErrors(t *testing.T) {
	src := &fakeSource{Compositor: platformtest.New(area0), zones: 1, listErr: errors.New("no client list")}

	if _, err := SnapshotFromSource(src, testLogger())(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSnapshotFollowsZoneCountChanges(t *testing.T) {
	comp := platformtest.New(area0)
	right := platform.Rect{X: 1200, Width: 1280, Height: 1024}
	comp.SetArea(1, right)
	src := &fakeSource{Compositor: comp, zones: 2}
	snap := SnapshotFromSource(src, testLogger())
	w, _ := newTestWatcher(nil)

	first, err := snap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Areas) != 2 || first.Areas[1] != right {
		t.Fatalf("expected both zones, got %v", first.Areas)
	}
	w.Diff(first)

	src.zones = 1
	comp.RemoveZone(1)
	second, err := snap()
	if err != nil {
		t.Fatalf("expected snapshot to succeed after a monitor was removed: %v", err)
	}
	if len(second.Areas) != 1 {
		t.Fatalf("expected one zone, got %v", second.Areas)
	}
	expectKinds(t, w.Diff(second), hooks.CompositorResize)
}
