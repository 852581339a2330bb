package actions

import (
	"errors"
	"testing"

	"github.com/1broseidon/stacktile/internal/platform"
	"github.com/1broseidon/stacktile/internal/platform/platformtest"
	"github.com/1broseidon/stacktile/internal/tiling"
)

var (
	tiled   = platform.Desk{Zone: 0, X: 0, Y: 0}
	untiled = platform.Desk{Zone: 0, X: 1, Y: 0}
	area    = platform.Rect{X: 0, Y: 0, Width: 1200, Height: 800}
	orig    = platform.Rect{X: 10, Y: 10, Width: 300, Height: 200}
)

type entry struct {
	mode    string
	desk    platform.Desk
	focused platform.WindowID
}

type fakeModes struct {
	entered []entry
	refuse  bool
}

func (m *fakeModes) record(mode string, desk platform.Desk, focused platform.WindowID) bool {
	m.entered = append(m.entered, entry{mode, desk, focused})
	return !m.refuse
}

func (m *fakeModes) EnterSwap(d platform.Desk, f platform.WindowID) bool {
	return m.record("swap", d, f)
}

func (m *fakeModes) EnterMove(d platform.Desk, f platform.WindowID) bool {
	return m.record("move", d, f)
}

func (m *fakeModes) EnterGo(d platform.Desk, f platform.WindowID) bool {
	return m.record("go", d, f)
}

func (m *fakeModes) EnterTransition(d platform.Desk, f platform.WindowID) bool {
	return m.record("transition", d, f)
}

type fixture struct {
	reg    *Registry
	engine *tiling.Engine
	comp   *platformtest.Compositor
	modes  *fakeModes
}

// newFixture tiles windows 1 and 2 side by side on the tiled desk and
// focuses window 2.
func newFixture(t *testing.T) fixture {
	t.Helper()
	comp := platformtest.New(area)
	settings := tiling.DefaultSettings()
	settings.VDesks = []tiling.VDeskConf{{X: 0, Y: 0, NbStacks: 2}}
	engine := tiling.NewEngine(comp, settings)

	for _, id := range []platform.WindowID{1, 2} {
		comp.AddWindow(id, tiled, orig)
		engine.AddClient(id)
		comp.Focus(id)
	}
	comp.SetCurrentDesk(tiled)

	modes := &fakeModes{}
	return fixture{
		reg:    New(engine, modes, comp, nil),
		engine: engine,
		comp:   comp,
		modes:  modes,
	}
}

func TestModeActionsEnterWithFocusedWindow(t *testing.T) {
	tests := map[string]string{
		Swap:              "swap",
		Move:              "move",
		Go:                "go",
		AdjustTransitions: "transition",
	}
	for action, mode := range tests {
		t.Run(action, func(t *testing.T) {
			f := newFixture(t)
			if err := f.reg.Run(action, ""); err != nil {
				t.Fatalf("run: %v", err)
			}
			want := entry{mode, tiled, 2}
			if len(f.modes.entered) != 1 || f.modes.entered[0] != want {
				t.Fatalf("expected %+v, got %+v", want, f.modes.entered)
			}
		})
	}
}

func TestModeRefusalIsReported(t *testing.T) {
	f := newFixture(t)
	f.modes.refuse = true

	if err := f.reg.Run(Swap, ""); !errors.Is(err, ErrModeNotEntered) {
		t.Fatalf("expected ErrModeNotEntered, got %v", err)
	}
}

func TestToggleFloating(t *testing.T) {
	f := newFixture(t)

	if err := f.reg.Run(ToggleFloating, ""); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.engine.IsTiled(2) || !f.engine.IsFloating(tiled, 2) {
		t.Fatalf("expected window 2 floating")
	}
	if got := f.comp.Bounds(2); got != orig {
		t.Fatalf("expected window 2 restored to %v, got %v", orig, got)
	}

	if err := f.reg.Run(ToggleFloating, ""); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !f.engine.IsTiled(2) {
		t.Fatalf("expected window 2 tiled again")
	}
}

func TestDirectionalMoves(t *testing.T) {
	tests := []struct {
		name   string
		action string
		param  string
		stacks int
	}{
		// Columns: left merges window 2 into the first stack.
		{"move_left", MoveLeft, "", 1},
		{"move_direct left", MoveDirect, "left", 1},
		// Up/down swap inside the stack; window 2 is alone there.
		{"move_up", MoveUp, "", 2},
		// Right from the last stack while alone is a no-op.
		{"move_right", MoveRight, "", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if err := f.reg.Run(tt.action, tt.param); err != nil {
				t.Fatalf("run: %v", err)
			}
			if got := f.engine.StackCount(tiled); got != tt.stacks {
				t.Fatalf("expected %d stacks, got %d", tt.stacks, got)
			}
		})
	}
}

func TestMoveDirectRejectsBadParam(t *testing.T) {
	f := newFixture(t)
	if err := f.reg.Run(MoveDirect, "sideways"); err == nil {
		t.Fatalf("expected error for bad direction")
	}
	if got := f.engine.StackCount(tiled); got != 2 {
		t.Fatalf("expected layout untouched, got %d stacks", got)
	}
}

func TestToggleSplitMode(t *testing.T) {
	f := newFixture(t)
	before := f.engine.State(tiled).Split

	if err := f.reg.Run(ToggleSplitMode, ""); err != nil {
		t.Fatalf("run: %v", err)
	}
	if after := f.engine.State(tiled).Split; after == before {
		t.Fatalf("expected split mode to change from %s", before)
	}
}

func TestPreconditions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f fixture)
		want  error
	}{
		{
			name:  "no focus",
			setup: func(f fixture) { f.comp.Focus(0) },
			want:  ErrNoFocus,
		},
		{
			name: "focused window on another desk",
			setup: func(f fixture) {
				f.comp.AddWindow(9, untiled, orig)
				f.comp.Focus(9)
			},
			want: ErrOffDesk,
		},
		{
			name: "desk without tiling",
			setup: func(f fixture) {
				f.comp.AddWindow(9, untiled, orig)
				f.comp.Focus(9)
				f.comp.SetCurrentDesk(untiled)
			},
			want: ErrNotTiling,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			if err := f.reg.Run(Swap, ""); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(f.modes.entered) != 0 {
				t.Fatalf("expected no mode entered, got %+v", f.modes.entered)
			}
		})
	}
}

func TestUnknownAction(t *testing.T) {
	f := newFixture(t)
	if err := f.reg.Run("explode", ""); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}
