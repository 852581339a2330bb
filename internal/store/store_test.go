package store

import (
	"path/filepath"
	"testing"

	"github.com/1broseidon/stacktile/internal/tiling"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "state.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveVDeskUpserts(t *testing.T) {
	s := openTestStore(t)

	first := tiling.VDeskConf{X: 1, Y: 0, Zone: 0, NbStacks: 2, Layout: tiling.LayoutStacks}
	if err := s.SaveVDesk(first); err != nil {
		t.Fatalf("save: %v", err)
	}
	raised := first
	raised.NbStacks = 3
	raised.UseRows = true
	if err := s.SaveVDesk(raised); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, ok, err := s.VDesk(0, 1, 0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("expected record to exist")
	}
	if got != raised {
		t.Fatalf("expected %+v, got %+v", raised, got)
	}

	all, err := s.VDesks()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected a single record after upsert, got %d", len(all))
	}
}

func TestVDesksOrderedByDesk(t *testing.T) {
	s := openTestStore(t)
	for _, c := range []tiling.VDeskConf{
		{X: 0, Y: 0, Zone: 1, NbStacks: 1},
		{X: 1, Y: 1, Zone: 0, NbStacks: 2},
		{X: 2, Y: 0, Zone: 0, NbStacks: 3, Layout: tiling.LayoutTree},
	} {
		if err := s.SaveVDesk(c); err != nil {
			t.Fatalf("save %+v: %v", c, err)
		}
	}

	all, err := s.VDesks()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []tiling.VDeskConf{
		{X: 2, Y: 0, Zone: 0, NbStacks: 3, Layout: tiling.LayoutTree},
		{X: 1, Y: 1, Zone: 0, NbStacks: 2, Layout: tiling.LayoutStacks},
		{X: 0, Y: 0, Zone: 1, NbStacks: 1, Layout: tiling.LayoutStacks},
	}
	if len(all) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(all))
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("record %d: expected %+v, got %+v", i, want[i], all[i])
		}
	}
}

func TestVDeskMissingAndDelete(t *testing.T) {
	s := openTestStore(t)

	if _, ok, err := s.VDesk(0, 5, 5); err != nil || ok {
		t.Fatalf("expected no record, got ok=%v err=%v", ok, err)
	}

	if err := s.SaveVDesk(tiling.VDeskConf{X: 5, Y: 5, NbStacks: 2}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.DeleteVDesk(0, 5, 5); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.VDesk(0, 5, 5); ok {
		t.Fatalf("expected record deleted")
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
