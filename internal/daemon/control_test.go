package daemon

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/stacktile/internal/ipc"
	"github.com/1broseidon/stacktile/internal/movemode"
	"github.com/1broseidon/stacktile/internal/platform"
	"github.com/1broseidon/stacktile/internal/platform/platformtest"
	"github.com/1broseidon/stacktile/internal/tiling"
)

type staticInventory map[platform.Desk][]platform.WindowID

func (s staticInventory) Desks() []platform.Desk {
	out := make([]platform.Desk, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	return out
}

func (s staticInventory) Windows(desk platform.Desk) []platform.WindowID { return s[desk] }

type fakeModes struct {
	mode    movemode.Mode
	session string
}

func (m fakeModes) Mode() movemode.Mode { return m.mode }
func (m fakeModes) SessionID() string   { return m.session }

type runnerFunc func(name, param string) error

func (f runnerFunc) Run(name, param string) error { return f(name, param) }

type savedConfs struct {
	confs []tiling.VDeskConf
}

func (s *savedConfs) SaveVDesk(c tiling.VDeskConf) error {
	s.confs = append(s.confs, c)
	return nil
}

type controlFixture struct {
	control *Control
	engine  *tiling.Engine
	comp    *platformtest.Compositor
	saver   *savedConfs
	cfg     *ControlConfig
}

func newControlFixture(t *testing.T, settings tiling.Settings) *controlFixture {
	t.Helper()
	d, _ := startDispatcher(t)
	comp := platformtest.New(area0)
	comp.SetCurrentDesk(desk0)
	comp.AddWindow(1, desk0, geom)
	comp.AddWindow(2, desk0, geom)
	comp.Focus(2)

	saver := &savedConfs{}
	engine := tiling.NewEngine(comp, settings, tiling.WithSaver(saver), tiling.WithLogger(testLogger()))
	cfg := ControlConfig{
		Dispatcher: d,
		Layout:     engine,
		Modes:      fakeModes{mode: movemode.ModeNone},
		Focus:      comp,
		Inventory:  staticInventory{desk0: {1, 2}},
		Actions:    runnerFunc(func(string, string) error { return nil }),
		Logger:     testLogger(),
	}
	f := &controlFixture{engine: engine, comp: comp, saver: saver, cfg: &cfg}
	f.control = NewControl(cfg)
	return f
}

func (f *controlFixture) rebuild() {
	f.control = NewControl(*f.cfg)
}

func TestControlSetDeskAdoptsExistingWindows(t *testing.T) {
	f := newControlFixture(t, tiling.DefaultSettings())
	ctx := context.Background()

	if err := f.control.SetDesk(ctx, ipc.SetDeskPayload{NbStacks: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st, err := f.control.Desk(ctx, desk0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.NbStacks != 2 || len(st.Stacks) != 2 {
		t.Fatalf("expected both windows tiled in 2 stacks, got %+v", st)
	}
	if len(f.saver.confs) == 0 || f.saver.confs[len(f.saver.confs)-1].NbStacks != 2 {
		t.Fatalf("expected the record persisted, got %+v", f.saver.confs)
	}
}

func TestControlSetDeskRejectsInvalidRecords(t *testing.T) {
	f := newControlFixture(t, tiling.DefaultSettings())

	err := f.control.SetDesk(context.Background(), ipc.SetDeskPayload{NbStacks: tiling.MaxStacks + 1})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(f.saver.confs) != 0 {
		t.Fatalf("expected nothing persisted, got %+v", f.saver.confs)
	}
}

func TestControlStatus(t *testing.T) {
	settings := tiling.DefaultSettings()
	settings.VDesks = []tiling.VDeskConf{{NbStacks: 1, Layout: tiling.LayoutStacks}}
	f := newControlFixture(t, settings)
	f.cfg.Modes = fakeModes{mode: movemode.ModeSwapping, session: "abc"}
	f.rebuild()
	ctx := context.Background()

	// Tile the windows first so the snapshot has something to report.
	if err := f.control.SetDesk(ctx, ipc.SetDeskPayload{NbStacks: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st, err := f.control.Status(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Mode != "swapping" || st.Session != "abc" {
		t.Fatalf("unexpected mode %q session %q", st.Mode, st.Session)
	}
	if st.Current == nil || *st.Current != desk0 {
		t.Fatalf("expected current desk %v, got %v", desk0, st.Current)
	}
	if st.Focused != 2 {
		t.Fatalf("expected focused window 2, got %d", st.Focused)
	}
	if len(st.Desks) != 1 || len(st.Desks[0].Stacks) != 1 || len(st.Desks[0].Stacks[0].Windows) != 2 {
		t.Fatalf("unexpected desks %+v", st.Desks)
	}
}

func TestControlRunActionForwardsErrors(t *testing.T) {
	f := newControlFixture(t, tiling.DefaultSettings())
	boom := errors.New("boom")
	var got []string
	f.cfg.Actions = runnerFunc(func(name, param string) error {
		got = append(got, name+":"+param)
		return boom
	})
	f.rebuild()

	if err := f.control.RunAction(context.Background(), "move_direct", "up"); !errors.Is(err, boom) {
		t.Fatalf("expected runner error, got %v", err)
	}
	if len(got) != 1 || got[0] != "move_direct:up" {
		t.Fatalf("unexpected calls %v", got)
	}
}

func TestControlReload(t *testing.T) {
	f := newControlFixture(t, tiling.DefaultSettings())
	next := tiling.DefaultSettings()
	next.VDesks = []tiling.VDeskConf{{NbStacks: 2, Layout: tiling.LayoutStacks}}
	f.cfg.Reload = func() (tiling.Settings, error) { return next, nil }
	f.rebuild()
	ctx := context.Background()

	if err := f.control.Reload(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st, err := f.control.Desk(ctx, desk0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Stacks) != 2 {
		t.Fatalf("expected windows adopted after reload, got %+v", st)
	}

	f.cfg.Reload = func() (tiling.Settings, error) { return tiling.Settings{}, errors.New("bad yaml") }
	f.rebuild()
	if err := f.control.Reload(ctx); err == nil {
		t.Fatalf("expected reload error")
	}
}

func TestControlReloadUnsupported(t *testing.T) {
	f := newControlFixture(t, tiling.DefaultSettings())
	if err := f.control.Reload(context.Background()); err == nil {
		t.Fatalf("expected error without a reload func")
	}
}
