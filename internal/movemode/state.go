package movemode

import (
	"time"

	"github.com/1broseidon/stacktile/internal/platform"
)

// Mode is the interactive input mode currently holding the keyboard.
type Mode int

const (
	// ModeNone means no interactive mode is active
	ModeNone Mode = iota
	// ModeSwapping means the user picks a window to swap with by label
	ModeSwapping
	// ModeMoving means arrow keys move the focused window between stacks
	ModeMoving
	// ModeGoing means the user picks a window to focus by label
	ModeGoing
	// ModeTransition means arrow keys shift a stack boundary
	ModeTransition
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeSwapping:
		return "swapping"
	case ModeMoving:
		return "moving"
	case ModeGoing:
		return "going"
	case ModeTransition:
		return "transition"
	default:
		return "unknown"
	}
}

// picking reports whether the mode selects a target by typed label.
func (m Mode) picking() bool {
	return m == ModeSwapping || m == ModeGoing
}

// Purpose is what a picked target is used for.
type Purpose string

const (
	PurposeFocus Purpose = "focus"
)

// PendingOp is the operation an active mode will carry out.
type PendingOp interface {
	pendingOp()
}

// SwapOp swaps Focused with the picked window.
type SwapOp struct {
	Focused platform.WindowID
}

// MoveOp moves Focused with the direction keys.
type MoveOp struct {
	Focused platform.WindowID
}

// PickOp hands the picked window to Purpose.
type PickOp struct {
	Focused platform.WindowID
	Purpose Purpose
}

// TransitionOp shifts the boundary after stack Index.
type TransitionOp struct {
	Index int
}

func (SwapOp) pendingOp()       {}
func (MoveOp) pendingOp()       {}
func (PickOp) pendingOp()       {}
func (TransitionOp) pendingOp() {}

// Label is a key label attached to a candidate target window.
type Label struct {
	Text   string            `json:"text"`
	Window platform.WindowID `json:"window"`
	Rect   platform.Rect     `json:"rect"`
}

// session holds the transient state of one interactive mode.
type session struct {
	id       string
	mode     Mode
	op       PendingOp
	desk     platform.Desk
	labels   []Label
	buffer   string
	deadline time.Time
	timer    Timer
	entered  bool
}

func (s *session) match(buffer string) (Label, bool) {
	for _, l := range s.labels {
		if l.Text == buffer {
			return l, true
		}
	}
	return Label{}, false
}
