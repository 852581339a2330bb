// Package hooks translates window lifecycle events into tiling engine calls.
package hooks

import (
	"io"
	"log/slog"

	"github.com/1broseidon/stacktile/internal/movemode"
	"github.com/1broseidon/stacktile/internal/platform"
)

// Kind is a window lifecycle event type.
type Kind int

const (
	Add Kind = iota
	Remove
	Iconify
	Uniconify
	Move
	Resize
	Stick
	Unstick
	// DeskSet means a window changed desk. From holds the previous desk.
	DeskSet
	DeskBeforeShow
	DeskShow
	// CompositorResize means the usable area of one or more zones changed.
	CompositorResize
	// PreFrameAssign fires before a new window gets its decorations.
	PreFrameAssign
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Iconify:
		return "iconify"
	case Uniconify:
		return "uniconify"
	case Move:
		return "move"
	case Resize:
		return "resize"
	case Stick:
		return "stick"
	case Unstick:
		return "unstick"
	case DeskSet:
		return "desk_set"
	case DeskBeforeShow:
		return "desk_before_show"
	case DeskShow:
		return "desk_show"
	case CompositorResize:
		return "compositor_resize"
	case PreFrameAssign:
		return "pre_frame_assign"
	default:
		return "unknown"
	}
}

// Event is one lifecycle notification.
type Event struct {
	Kind   Kind
	Window platform.WindowID
	// Desk is the window's desk, or the shown desk for desk events.
	Desk platform.Desk
	// From is the previous desk of a DeskSet event.
	From platform.Desk
}

// Engine is the part of the tiling engine the hooks drive.
type Engine interface {
	AddClient(id platform.WindowID)
	RemoveClient(id platform.WindowID)
	Release(id platform.WindowID)
	Reapply(id platform.WindowID)
	ResetDesks()
	PreFrameAssign(id platform.WindowID)

	IsTiled(id platform.WindowID) bool
	IsFloating(desk platform.Desk, id platform.WindowID) bool
	ForgetFloating(desk platform.Desk, id platform.WindowID) bool
	DeskShouldTile(desk platform.Desk) bool
}

// Modes is the interactive mode owner.
type Modes interface {
	Mode() movemode.Mode
	End()
}

// Adapter applies lifecycle events to the engine. Like the engine it must only
// be used from the goroutine that owns the layout.
type Adapter struct {
	engine Engine
	modes  Modes
	log    *slog.Logger
}

// NewAdapter creates an adapter. modes may be nil when no interactive
// controller runs.
func NewAdapter(engine Engine, modes Modes, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapter{engine: engine, modes: modes, log: log}
}

// Handle applies one event.
func (a *Adapter) Handle(ev Event) {
	switch ev.Kind {
	case Add:
		a.endUnlessMoving()
		a.engine.AddClient(ev.Window)
	case Remove:
		a.remove(ev)
	case Iconify:
		a.iconify(ev)
	case Uniconify:
		a.endUnlessMoving()
		if a.engine.DeskShouldTile(ev.Desk) {
			a.engine.AddClient(ev.Window)
		}
	case Move, Resize:
		a.engine.Reapply(ev.Window)
	case Stick, Unstick:
		a.log.Debug("sticky state changed", "event", ev.Kind, "window", ev.Window)
	case DeskSet:
		a.deskSet(ev)
	case DeskBeforeShow, DeskShow:
		a.endMode()
	case CompositorResize:
		a.log.Info("usable area changed, rebuilding desks")
		a.engine.ResetDesks()
	case PreFrameAssign:
		a.engine.PreFrameAssign(ev.Window)
	default:
		a.log.Warn("unknown hook event", "kind", int(ev.Kind))
	}
}

func (a *Adapter) remove(ev Event) {
	a.endMode()
	if !a.engine.DeskShouldTile(ev.Desk) {
		return
	}
	if a.engine.ForgetFloating(ev.Desk, ev.Window) {
		return
	}
	a.engine.RemoveClient(ev.Window)
}

func (a *Adapter) iconify(ev Event) {
	a.endMode()
	if !a.engine.DeskShouldTile(ev.Desk) {
		return
	}
	// Floating windows keep their membership while iconified.
	if a.engine.IsFloating(ev.Desk, ev.Window) {
		return
	}
	a.engine.RemoveClient(ev.Window)
}

func (a *Adapter) deskSet(ev Event) {
	a.endMode()
	a.log.Debug("window changed desk", "window", ev.Window, "from", ev.From, "to", ev.Desk)

	if a.engine.DeskShouldTile(ev.From) {
		if !a.engine.ForgetFloating(ev.From, ev.Window) && a.engine.IsTiled(ev.Window) {
			a.engine.Release(ev.Window)
		}
	}
	if !a.engine.DeskShouldTile(ev.Desk) {
		return
	}
	if !a.engine.IsTiled(ev.Window) {
		a.engine.AddClient(ev.Window)
	}
}

// endUnlessMoving ends picking modes; moving and transition modes survive
// topology changes.
func (a *Adapter) endUnlessMoving() {
	if a.modes == nil {
		return
	}
	switch a.modes.Mode() {
	case movemode.ModeNone, movemode.ModeMoving, movemode.ModeTransition:
		return
	}
	a.modes.End()
}

func (a *Adapter) endMode() {
	if a.modes != nil {
		a.modes.End()
	}
}
