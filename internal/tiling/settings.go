package tiling

import (
	"github.com/1broseidon/stacktile/internal/events"
	"github.com/1broseidon/stacktile/internal/platform"
)

// MaxStacks bounds the number of stacks per desk.
const MaxStacks = 8

// ResizeStep is the distance one key press moves a stack transition.
const ResizeStep = 5

// minStackSize keeps adjusted transitions from collapsing a stack.
const minStackSize = 32

// LayoutKind selects what drives window geometry on a desk.
type LayoutKind string

const (
	LayoutStacks LayoutKind = "stacks"
	LayoutTree   LayoutKind = "tree"
)

// VDeskConf is the per-virtual-desktop tiling configuration.
type VDeskConf struct {
	X        int
	Y        int
	Zone     int
	NbStacks int
	UseRows  bool
	Layout   LayoutKind
}

// Desk returns the desk this record applies to.
func (c VDeskConf) Desk() platform.Desk {
	return platform.Desk{Zone: c.Zone, X: c.X, Y: c.Y}
}

// Settings is the module-wide configuration the engine consumes.
type Settings struct {
	TileDialogs bool
	ShowTitles  bool
	KeyHints    string
	VDesks      []VDeskConf
}

// DefaultKeyHints is the label alphabet used when none is configured.
const DefaultKeyHints = "asdfg;lkjh"

// DefaultSettings mirrors an empty configuration.
func DefaultSettings() Settings {
	return Settings{
		TileDialogs: true,
		ShowTitles:  true,
		KeyHints:    DefaultKeyHints,
	}
}

// ConfSaver persists vdesk records changed at runtime.
type ConfSaver interface {
	SaveVDesk(conf VDeskConf) error
}

// Publisher receives layout change notifications.
type Publisher interface {
	Publish(ev events.Event)
}

// clampConf bounds persisted values into their valid ranges.
func clampConf(c VDeskConf) VDeskConf {
	if c.NbStacks < 0 {
		c.NbStacks = 0
	}
	if c.NbStacks > MaxStacks {
		c.NbStacks = MaxStacks
	}
	if c.Layout != LayoutTree {
		c.Layout = LayoutStacks
	}
	return c
}
