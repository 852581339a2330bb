package tiling

import (
	"slices"

	"github.com/1broseidon/stacktile/internal/platform"
)

// Target is a tiled window with its computed geometry.
type Target struct {
	ID   platform.WindowID
	Rect platform.Rect
}

// Targets returns the tiled windows of a desk in stack order.
func (e *Engine) Targets(desk platform.Desk) []Target {
	ti, ok := e.infos[desk]
	if !ok {
		return nil
	}
	wins := ti.windows()
	out := make([]Target, 0, len(wins))
	for _, id := range wins {
		extra, ok := e.extras.get(id)
		if !ok {
			e.log.Error("no extra for window", "window", id)
			continue
		}
		out = append(out, Target{ID: id, Rect: extra.Expected})
	}
	return out
}

// Expected returns the last geometry commanded for a tiled window.
func (e *Engine) Expected(id platform.WindowID) (platform.Rect, bool) {
	extra, ok := e.extras.get(id)
	if !ok {
		return platform.Rect{}, false
	}
	return extra.Expected, true
}

// Extra returns a copy of a window's bookkeeping record.
func (e *Engine) Extra(id platform.WindowID) (ClientExtra, bool) {
	extra, ok := e.extras.get(id)
	if !ok {
		return ClientExtra{}, false
	}
	return *extra, true
}

// UseRows reports the desk orientation.
func (e *Engine) UseRows(desk platform.Desk) bool {
	return e.info(desk).useRows()
}

// StackOf returns the stack index of a tiled window, or -1.
func (e *Engine) StackOf(id platform.WindowID) int {
	desk, ok := e.owner[id]
	if !ok {
		return -1
	}
	return e.info(desk).stackOf(id)
}

// StackCount returns the populated stack count of a desk.
func (e *Engine) StackCount(desk platform.Desk) int {
	return e.info(desk).stackCount()
}

// WindowCount returns the number of tiled windows on a desk.
func (e *Engine) WindowCount(desk platform.Desk) int {
	return e.info(desk).windowCount()
}

// UsableArea returns the usable area of the desk's zone.
func (e *Engine) UsableArea(desk platform.Desk) (platform.Rect, bool) {
	return e.area(e.info(desk))
}

// Conf returns a copy of the desk's resolved conf.
func (e *Engine) Conf(desk platform.Desk) (VDeskConf, bool) {
	ti := e.info(desk)
	if ti.conf == nil {
		return VDeskConf{}, false
	}
	return *ti.conf, true
}

// StackState describes one stack.
type StackState struct {
	Pos     int                 `json:"pos"`
	Size    int                 `json:"size"`
	Windows []platform.WindowID `json:"windows"`
}

// DeskState describes the tiling state of a desk.
type DeskState struct {
	Desk     platform.Desk       `json:"desk"`
	NbStacks int                 `json:"nb_stacks"`
	UseRows  bool                `json:"use_rows"`
	Layout   LayoutKind          `json:"layout"`
	Split    string              `json:"split"`
	Stacks   []StackState        `json:"stacks"`
	Floating []platform.WindowID `json:"floating,omitempty"`
	Tree     []platform.WindowID `json:"tree,omitempty"`
}

// State returns the state of one desk.
func (e *Engine) State(desk platform.Desk) DeskState {
	ti := e.info(desk)
	st := DeskState{
		Desk:   desk,
		Layout: LayoutStacks,
		Split:  ti.split.String(),
		Tree:   ti.tree.Leaves(),
	}
	if ti.conf != nil {
		st.NbStacks = ti.conf.NbStacks
		st.UseRows = ti.conf.UseRows
		st.Layout = ti.conf.Layout
	}
	for i := 0; i < ti.stackCount(); i++ {
		st.Stacks = append(st.Stacks, StackState{
			Pos:     ti.pos[i],
			Size:    ti.size[i],
			Windows: slices.Clone(ti.stacks[i]),
		})
	}
	for id := range ti.floating {
		st.Floating = append(st.Floating, id)
	}
	slices.Sort(st.Floating)
	return st
}

// Snapshot returns the state of every known desk, ordered by zone then
// position.
func (e *Engine) Snapshot() []DeskState {
	desks := make([]platform.Desk, 0, len(e.infos))
	for d := range e.infos {
		desks = append(desks, d)
	}
	sortDesks(desks)
	out := make([]DeskState, 0, len(desks))
	for _, d := range desks {
		out = append(out, e.State(d))
	}
	return out
}
