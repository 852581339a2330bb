package tiling

import (
	"io"
	"log/slog"
	"sort"

	"github.com/1broseidon/stacktile/internal/events"
	"github.com/1broseidon/stacktile/internal/platform"
)

// Engine owns every desk's tiling state. It is not safe for concurrent use;
// callers serialize access through a single dispatcher.
type Engine struct {
	comp     platform.Compositor
	log      *slog.Logger
	settings Settings
	confs    map[platform.Desk]*VDeskConf
	infos    map[platform.Desk]*Info
	extras   *extraStore
	owner    map[platform.WindowID]platform.Desk
	saver    ConfSaver
	pub      Publisher
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSaver persists stack counts raised by moves.
func WithSaver(s ConfSaver) Option {
	return func(e *Engine) { e.saver = s }
}

// WithPublisher receives layout change events.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.pub = p }
}

// NewEngine creates an engine driving comp.
func NewEngine(comp platform.Compositor, settings Settings, opts ...Option) *Engine {
	e := &Engine{
		comp:   comp,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		confs:  make(map[platform.Desk]*VDeskConf),
		infos:  make(map[platform.Desk]*Info),
		extras: newExtraStore(),
		owner:  make(map[platform.WindowID]platform.Desk),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.UpdateSettings(settings)
	return e
}

// Settings returns the active settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// KeyHints returns the label alphabet.
func (e *Engine) KeyHints() string {
	if e.settings.KeyHints == "" {
		return DefaultKeyHints
	}
	return e.settings.KeyHints
}

// UpdateSettings adopts new settings and re-resolves every desk's conf.
// Desks whose tiling got disabled have their windows restored.
func (e *Engine) UpdateSettings(s Settings) {
	if s.KeyHints == "" {
		s.KeyHints = DefaultKeyHints
	}
	e.settings = s

	confs := make(map[platform.Desk]*VDeskConf, len(s.VDesks))
	for _, vd := range s.VDesks {
		c := clampConf(vd)
		confs[c.Desk()] = &c
	}
	e.confs = confs

	for desk, ti := range e.infos {
		next := confs[desk]
		if ti.conf != nil && ti.conf.NbStacks > 0 && (next == nil || next.NbStacks == 0) {
			e.disableDesk(ti)
		}
		prev := ti.conf
		ti.conf = next
		if prev != nil && next != nil && (prev.UseRows != next.UseRows || prev.Layout != next.Layout) {
			e.relayout(ti)
		}
	}
	e.log.Debug("settings updated", "vdesks", len(confs), "tile_dialogs", s.TileDialogs, "show_titles", s.ShowTitles)
}

// info returns the desk's state, creating it on first use.
func (e *Engine) info(desk platform.Desk) *Info {
	ti, ok := e.infos[desk]
	if !ok {
		ti = newInfo(desk)
		e.infos[desk] = ti
	}
	if ti.conf == nil {
		ti.conf = e.confs[desk]
	}
	return ti
}

func (e *Engine) publish(ev events.Event) {
	if e.pub != nil {
		e.pub.Publish(ev)
	}
}

func (e *Engine) area(ti *Info) (platform.Rect, bool) {
	r, err := e.comp.UsableArea(ti.desk.Zone)
	if err != nil {
		e.log.Error("usable area unavailable", "desk", ti.desk, "err", err)
		return platform.Rect{}, false
	}
	return r, true
}

func (e *Engine) moveResize(id platform.WindowID, r platform.Rect) {
	if err := e.comp.MoveResize(id, r); err != nil {
		e.log.Warn("move/resize failed", "window", id, "geom", r, "err", err)
	}
}

func (e *Engine) move(id platform.WindowID, x, y int) {
	if err := e.comp.Move(id, x, y); err != nil {
		e.log.Warn("move failed", "window", id, "err", err)
	}
}

func (e *Engine) maximizeState(id platform.WindowID) platform.Maximize {
	m, err := e.comp.MaximizeState(id)
	if err != nil {
		e.log.Warn("maximize state unavailable", "window", id, "err", err)
		return platform.MaximizeNone
	}
	return m
}

func (e *Engine) maximize(id platform.WindowID, m platform.Maximize) {
	e.log.Debug("maximize", "window", id, "dir", m)
	if err := e.comp.Maximize(id, m); err != nil {
		e.log.Warn("maximize failed", "window", id, "err", err)
	}
}

func (e *Engine) unmaximize(id platform.WindowID, m platform.Maximize) {
	e.log.Debug("unmaximize", "window", id, "dir", m)
	if err := e.comp.Unmaximize(id, m); err != nil {
		e.log.Warn("unmaximize failed", "window", id, "err", err)
	}
}

func (e *Engine) warpTo(r platform.Rect) {
	x, y := r.Center()
	if err := e.comp.WarpPointer(x, y); err != nil {
		e.log.Debug("pointer warp failed", "err", err)
	}
}

// AddClient starts tiling a window. It is ignored when the window is floating,
// not tilable, fullscreen, already tiled, or its desk has tiling disabled.
func (e *Engine) AddClient(id platform.WindowID) {
	win, err := e.comp.Window(id)
	if err != nil {
		e.log.Warn("add: window lookup failed", "window", id, "err", err)
		return
	}
	ti := e.info(win.Desk)
	if ti.isFloating(id) || !e.IsTilable(win) || win.Fullscreen {
		return
	}
	if ti.conf == nil || ti.conf.NbStacks == 0 {
		return
	}
	if ti.stackOf(id) >= 0 {
		return
	}

	e.extras.getOrCreate(win)

	// Tiled windows live below so the window list keeps its stacking order.
	if err := e.comp.SetLayer(id, platform.LayerBelow); err != nil {
		e.log.Warn("set layer failed", "window", id, "err", err)
	}
	if win.Maximized&platform.MaximizeDirection != 0 {
		e.unmaximize(id, platform.MaximizeBoth)
	}

	focused, _ := e.comp.FocusedWindow()
	if ti.tree.Len() > 0 && !ti.tree.Contains(focused) {
		e.log.Error("no tree node for focused window, using root", "focused", focused)
	}
	ti.tree.Insert(focused, id, ti.split)
	e.owner[id] = ti.desk

	e.log.Debug("adding window", "window", id, "desk", ti.desk)
	e.place(ti, id)
	e.publish(events.Event{Kind: events.WindowTiled, Desk: ti.desk.String(), Window: uint32(id), Stack: events.Index(ti.stackOf(id)), Stacks: ti.stackCount()})
}

// place puts a freshly added window into the layout. Membership is updated
// even when the usable area is unknown; geometry then waits for the next
// relayout.
func (e *Engine) place(ti *Info, id platform.WindowID) {
	if ti.treeLayout() {
		ti.stacks[0] = append(ti.stacks[0], id)
		e.reapplyTree(ti)
		return
	}

	n := ti.stackCount()
	limit := min(ti.conf.NbStacks, MaxStacks)
	stack, opened := n-1, true
	switch {
	case n == 0:
		stack = 0
		ti.stacks[0] = []platform.WindowID{id}
	case n < limit:
		stack = n
		ti.insertStack(n, id)
	default:
		opened = false
		ti.stacks[stack] = append(ti.stacks[stack], id)
	}

	area, ok := e.area(ti)
	if !ok {
		return
	}
	if opened {
		e.redistribute(ti, area)
	}
	e.reorganizeStack(ti, area, stack)
}

// RemoveClient stops tiling a window and closes the gap it leaves.
func (e *Engine) RemoveClient(id platform.WindowID) {
	desk, ok := e.owner[id]
	if !ok {
		return
	}
	ti := e.info(desk)
	e.log.Debug("removing window", "window", id, "desk", desk)

	e.extras.delete(id)
	delete(e.owner, id)

	if !ti.tree.Remove(id) {
		e.log.Error("no tree node for window", "window", id)
	}

	stack := ti.stackOf(id)
	if stack < 0 {
		e.log.Error("window missing from stacks", "window", id)
		return
	}
	ti.removeFromStack(stack, id)
	emptied := len(ti.stacks[stack]) == 0
	if emptied {
		ti.deleteStack(stack)
	}

	switch {
	case ti.treeLayout():
		e.reapplyTree(ti)
	default:
		if area, ok := e.area(ti); ok {
			if emptied {
				e.redistribute(ti, area)
			} else {
				e.reorganizeStack(ti, area, stack)
			}
		}
		if emptied {
			e.publish(events.Event{Kind: events.StackRemoved, Desk: desk.String(), Stack: events.Index(stack), Stacks: ti.stackCount()})
		}
	}
	e.publish(events.Event{Kind: events.WindowReleased, Desk: desk.String(), Window: uint32(id)})
}

// RestoreClient puts a window back the way it was before tiling took it over.
func (e *Engine) RestoreClient(id platform.WindowID) {
	extra, ok := e.extras.get(id)
	if !ok {
		e.log.Error("restore: no extra for window", "window", id)
		return
	}
	e.unmaximize(id, platform.MaximizeBoth)
	e.moveResize(id, extra.Orig.Geom)
	if err := e.comp.SetLayer(id, extra.Orig.Layer); err != nil {
		e.log.Warn("set layer failed", "window", id, "err", err)
	}
	if extra.Orig.Maximized&platform.MaximizeDirection != 0 {
		e.maximize(id, extra.Orig.Maximized)
	}
	border := extra.Orig.Border
	if border == "" {
		border = "default"
	}
	e.log.Debug("restoring border", "window", id, "border", border)
	if err := e.comp.SetBorder(id, border); err != nil {
		e.log.Warn("set border failed", "window", id, "err", err)
	}
}

// Release restores a tiled window and removes it from the layout.
func (e *Engine) Release(id platform.WindowID) {
	if _, ok := e.owner[id]; !ok {
		return
	}
	e.RestoreClient(id)
	e.RemoveClient(id)
}

// ToggleFloating moves a window between its desk's stacks and floating set.
func (e *Engine) ToggleFloating(id platform.WindowID) {
	win, err := e.comp.Window(id)
	if err != nil {
		e.log.Warn("toggle floating: window lookup failed", "window", id, "err", err)
		return
	}
	if !e.DeskShouldTile(win.Desk) {
		return
	}
	ti := e.info(win.Desk)
	if ti.isFloating(id) {
		delete(ti.floating, id)
		e.AddClient(id)
		return
	}
	e.Release(id)
	ti.floating[id] = struct{}{}
}

// ForgetFloating drops id from a desk's floating set. It reports whether the
// window was floating there.
func (e *Engine) ForgetFloating(desk platform.Desk, id platform.WindowID) bool {
	ti := e.info(desk)
	if !ti.isFloating(id) {
		return false
	}
	delete(ti.floating, id)
	return true
}

// IsTiled reports whether id currently sits in a stack.
func (e *Engine) IsTiled(id platform.WindowID) bool {
	_, ok := e.owner[id]
	return ok
}

// DeskOf returns the desk a tiled window belongs to.
func (e *Engine) DeskOf(id platform.WindowID) (platform.Desk, bool) {
	d, ok := e.owner[id]
	return d, ok
}

// PreFrameAssign strips decorations from windows about to be tiled when
// titles are hidden.
func (e *Engine) PreFrameAssign(id platform.WindowID) {
	if e.settings.ShowTitles {
		return
	}
	win, err := e.comp.Window(id)
	if err != nil {
		return
	}
	if !e.DeskShouldTile(win.Desk) {
		return
	}
	ti := e.info(win.Desk)
	if ti.isFloating(id) || !e.IsTilable(win) || win.Fullscreen {
		return
	}
	e.extras.getOrCreate(win)
	if win.Border != "pixel" {
		if err := e.comp.SetBorder(id, "pixel"); err != nil {
			e.log.Warn("set border failed", "window", id, "err", err)
		}
	}
}

// Reapply pins a tiled window back to its computed geometry after the user
// or the window itself moved it.
func (e *Engine) Reapply(id platform.WindowID) {
	desk, ok := e.owner[id]
	if !ok || !e.DeskShouldTile(desk) {
		return
	}
	ti := e.info(desk)
	if ti.treeLayout() {
		e.reapplyTree(ti)
		return
	}
	extra, ok := e.extras.get(id)
	if !ok {
		e.log.Error("reapply: no extra for window", "window", id)
		return
	}
	win, err := e.comp.Window(id)
	if err != nil {
		return
	}
	if win.Bounds != extra.Expected {
		e.log.Debug("window drifted from layout", "window", id, "got", win.Bounds, "want", extra.Expected)
		e.moveResize(id, extra.Expected)
	}
}

func (e *Engine) reapplyTree(ti *Info) {
	area, ok := e.area(ti)
	if !ok {
		return
	}
	for id, r := range ti.tree.Layout(area) {
		extra, ok := e.extras.get(id)
		if !ok {
			e.log.Error("tree: no extra for window", "window", id)
			continue
		}
		extra.Expected = r
		e.moveResize(id, r)
	}
}

// relayout rebuilds a desk's geometry from scratch, keeping window order.
func (e *Engine) relayout(ti *Info) {
	wins := ti.clearStacks()
	if len(wins) == 0 {
		return
	}
	for _, id := range wins {
		e.place(ti, id)
	}
}

// ChangeDeskConf applies an edited vdesk record. Dropping the stack count to
// zero restores every window on the desk.
func (e *Engine) ChangeDeskConf(conf VDeskConf) {
	conf = clampConf(conf)
	desk := conf.Desk()
	ti := e.info(desk)

	prev := ti.conf
	c := conf
	e.confs[desk] = &c
	e.replaceSettingsVDesk(c)
	ti.conf = &c

	switch {
	case prev != nil && prev.NbStacks > 0 && c.NbStacks == 0:
		e.disableDesk(ti)
	case prev != nil && (prev.UseRows != c.UseRows || prev.Layout != c.Layout):
		e.relayout(ti)
	}

	e.saveConf(c)
	e.publish(events.Event{Kind: events.DeskConfChanged, Desk: desk.String(), Stacks: c.NbStacks})
}

func (e *Engine) replaceSettingsVDesk(c VDeskConf) {
	for i := range e.settings.VDesks {
		if e.settings.VDesks[i].Desk() == c.Desk() {
			e.settings.VDesks[i] = c
			return
		}
	}
	e.settings.VDesks = append(e.settings.VDesks, c)
}

func (e *Engine) saveConf(c VDeskConf) {
	if e.saver == nil {
		return
	}
	if err := e.saver.SaveVDesk(c); err != nil {
		e.log.Warn("persisting desk conf failed", "desk", c.Desk(), "err", err)
	}
}

// raiseStackCount bumps the configured stack count after a move opened a
// stack beyond it.
func (e *Engine) raiseStackCount(ti *Info) {
	n := ti.stackCount()
	if ti.conf == nil || n <= ti.conf.NbStacks {
		return
	}
	ti.conf.NbStacks = n
	e.replaceSettingsVDesk(*ti.conf)
	e.saveConf(*ti.conf)
}

func (e *Engine) disableDesk(ti *Info) {
	for _, id := range ti.windows() {
		e.RestoreClient(id)
		e.extras.delete(id)
		delete(e.owner, id)
	}
	ti.clearStacks()
	ti.tree.Reset()
}

// DisableAll restores every tiled window on every desk.
func (e *Engine) DisableAll() {
	for _, ti := range e.infos {
		e.disableDesk(ti)
	}
}

// ResetDesks rebuilds tiling on every desk from scratch, typically after the
// usable area changed. Windows are restored first, then re-added.
func (e *Engine) ResetDesks() {
	desks := make([]platform.Desk, 0, len(e.infos))
	for d := range e.infos {
		desks = append(desks, d)
	}
	sortDesks(desks)
	for _, d := range desks {
		if !e.DeskShouldTile(d) {
			continue
		}
		ti := e.infos[d]
		wins := ti.windows()
		for _, id := range wins {
			e.RestoreClient(id)
			delete(e.owner, id)
		}
		ti.clearStacks()
		ti.tree.Reset()
		for _, id := range wins {
			e.AddClient(id)
		}
	}
}

// ToggleSplitMode flips the direction used for the next tree insertion.
func (e *Engine) ToggleSplitMode(desk platform.Desk) SplitDir {
	ti := e.info(desk)
	ti.split = ti.split.Toggle()
	e.log.Debug("split mode toggled", "desk", desk, "split", ti.split)
	return ti.split
}

func sortDesks(desks []platform.Desk) {
	sort.Slice(desks, func(i, j int) bool {
		a, b := desks[i], desks[j]
		if a.Zone != b.Zone {
			return a.Zone < b.Zone
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}
