package platform

import "fmt"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Desk identifies a virtual desktop on one zone (monitor).
type Desk struct {
	Zone int `json:"zone"`
	X    int `json:"x"`
	Y    int `json:"y"`
}

func (d Desk) String() string {
	return fmt.Sprintf("zone%d:%d,%d", d.Zone, d.X, d.Y)
}

// Maximize is a directional maximize bitmask.
type Maximize uint8

const (
	MaximizeNone       Maximize = 0
	MaximizeVertical   Maximize = 1 << 0
	MaximizeHorizontal Maximize = 1 << 1
	MaximizeBoth                = MaximizeVertical | MaximizeHorizontal
	// MaximizeExpand fills the free space instead of the whole zone.
	MaximizeExpand Maximize = 1 << 2

	MaximizeDirection = MaximizeBoth
)

func (m Maximize) String() string {
	switch m & MaximizeDirection {
	case MaximizeVertical:
		return "vertical"
	case MaximizeHorizontal:
		return "horizontal"
	case MaximizeBoth:
		return "both"
	default:
		return "none"
	}
}

// Layer is a coarse stacking layer.
type Layer int

const (
	LayerBelow Layer = iota - 1
	LayerNormal
	LayerAbove
)

// Window contains the properties the tiling core classifies windows by.
type Window struct {
	ID     WindowID
	Desk   Desk
	Title  string
	Bounds Rect

	MinHeight     int
	MaxHeight     int
	StaticGravity bool
	TransientFor  WindowID
	Dialog        bool
	Fullscreen    bool
	Iconic        bool
	Sticky        bool

	Maximized Maximize
	Layer     Layer
	Border    string
}

// Compositor abstracts the window manager operations the tiling core consumes.
type Compositor interface {
	Window(id WindowID) (Window, error)
	FocusedWindow() (WindowID, error)
	CurrentDesk() (Desk, error)
	UsableArea(zone int) (Rect, error)

	MoveResize(id WindowID, bounds Rect) error
	Move(id WindowID, x, y int) error
	SetLayer(id WindowID, layer Layer) error
	MaximizeState(id WindowID) (Maximize, error)
	Maximize(id WindowID, m Maximize) error
	Unmaximize(id WindowID, m Maximize) error
	SetBorder(id WindowID, name string) error
	Activate(id WindowID) error
	WarpPointer(x, y int) error
}
