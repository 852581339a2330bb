package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
)

const (
	stateMaxVert    = "_NET_WM_STATE_MAXIMIZED_VERT"
	stateMaxHorz    = "_NET_WM_STATE_MAXIMIZED_HORZ"
	stateBelow      = "_NET_WM_STATE_BELOW"
	stateAbove      = "_NET_WM_STATE_ABOVE"
	stateHidden     = "_NET_WM_STATE_HIDDEN"
	stateFullscreen = "_NET_WM_STATE_FULLSCREEN"
	stateSticky     = "_NET_WM_STATE_STICKY"

	typeDialog = "_NET_WM_WINDOW_TYPE_DIALOG"
	typeNormal = "_NET_WM_WINDOW_TYPE_NORMAL"

	// allDesktops is the _NET_WM_DESKTOP value of sticky windows.
	allDesktops = 0xFFFFFFFF
)

// Geometry is a window rectangle including its decorations.
type Geometry struct {
	X, Y          int
	Width, Height int
}

// Extents are the decoration sizes the window manager reports for a window.
type Extents struct {
	Left, Right, Top, Bottom int
}

// WindowProps holds the properties the tiler classifies windows by.
type WindowProps struct {
	Title         string
	Desktop       int
	MinHeight     int
	MaxHeight     int
	StaticGravity bool
	TransientFor  xproto.Window
	Dialog        bool
	States        []string
	Decorated     bool
}

// HasState reports whether the _NET_WM_STATE list contains name.
func (p WindowProps) HasState(name string) bool {
	return slices.Contains(p.States, name)
}

// Fullscreen reports _NET_WM_STATE_FULLSCREEN.
func (p WindowProps) Fullscreen() bool { return p.HasState(stateFullscreen) }

// Hidden reports _NET_WM_STATE_HIDDEN.
func (p WindowProps) Hidden() bool { return p.HasState(stateHidden) }

// Sticky reports a window shown on every desktop.
func (p WindowProps) Sticky() bool { return p.Desktop < 0 || p.HasState(stateSticky) }

// MaximizedVert reports _NET_WM_STATE_MAXIMIZED_VERT.
func (p WindowProps) MaximizedVert() bool { return p.HasState(stateMaxVert) }

// MaximizedHorz reports _NET_WM_STATE_MAXIMIZED_HORZ.
func (p WindowProps) MaximizedHorz() bool { return p.HasState(stateMaxHorz) }

// Below reports _NET_WM_STATE_BELOW.
func (p WindowProps) Below() bool { return p.HasState(stateBelow) }

// Above reports _NET_WM_STATE_ABOVE.
func (p WindowProps) Above() bool { return p.HasState(stateAbove) }

// Props reads the classification properties of a window.
func (c *Connection) Props(windowID xproto.Window) (WindowProps, error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		// Windows without the property simply have no state.
		states = nil
	}
	props := WindowProps{
		Title:     c.windowTitle(windowID),
		States:    states,
		Decorated: true,
	}

	desktop, err := c.GetWindowDesktop(windowID)
	if err != nil {
		return WindowProps{}, err
	}
	props.Desktop = desktop

	if nh, err := icccm.WmNormalHintsGet(c.XUtil, windowID); err == nil {
		if nh.Flags&icccm.SizeHintPMinSize > 0 {
			props.MinHeight = int(nh.MinHeight)
		}
		if nh.Flags&icccm.SizeHintPMaxSize > 0 {
			props.MaxHeight = int(nh.MaxHeight)
		}
		if nh.Flags&icccm.SizeHintPWinGravity > 0 && nh.WinGravity == xproto.GravityStatic {
			props.StaticGravity = true
		}
	}

	if parent, err := icccm.WmTransientForGet(c.XUtil, windowID); err == nil {
		props.TransientFor = parent
	}

	if types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID); err == nil {
		props.Dialog = slices.Contains(types, typeDialog)
	}

	if mh, err := motif.WmHintsGet(c.XUtil, windowID); err == nil {
		props.Decorated = motif.Decor(mh)
	}
	return props, nil
}

// IsManageable reports whether a client list entry is an application window
// rather than a dock, desktop or notification.
func (c *Connection) IsManageable(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil || len(types) == 0 {
		return true
	}
	for _, t := range types {
		switch t {
		case typeNormal, typeDialog:
			return true
		}
	}
	return false
}

// FrameExtents returns the decoration sizes, or zero extents when the window
// manager does not publish them.
func (c *Connection) FrameExtents(windowID xproto.Window) Extents {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return Extents{}
	}
	return Extents{Left: extents.Left, Right: extents.Right, Top: extents.Top, Bottom: extents.Bottom}
}

// Geometry returns the outer geometry of a client including its frame.
func (c *Connection) Geometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("get geometry of 0x%x: %w", windowID, err)
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("translate coordinates of 0x%x: %w", windowID, err)
	}
	ext := c.FrameExtents(windowID)
	return Geometry{
		X:      int(translate.DstX) - ext.Left,
		Y:      int(translate.DstY) - ext.Top,
		Width:  int(geom.Width) + ext.Left + ext.Right,
		Height: int(geom.Height) + ext.Top + ext.Bottom,
	}, nil
}

// MoveResize places the outer frame of a window at g.
func (c *Connection) MoveResize(windowID xproto.Window, g Geometry) error {
	ext := c.FrameExtents(windowID)
	w := max(g.Width-ext.Left-ext.Right, 1)
	h := max(g.Height-ext.Top-ext.Bottom, 1)

	err := ewmh.MoveresizeWindowExtra(c.XUtil, windowID, g.X, g.Y, w, h,
		xproto.GravityNorthWest, 2, true, true)
	if err != nil {
		return fmt.Errorf("moveresize 0x%x: %w", windowID, err)
	}
	return nil
}

// Move places the outer frame of a window at x, y without resizing it.
func (c *Connection) Move(windowID xproto.Window, x, y int) error {
	g, err := c.Geometry(windowID)
	if err != nil {
		return err
	}
	g.X, g.Y = x, y
	return c.MoveResize(windowID, g)
}

// SetState adds or removes up to two _NET_WM_STATE atoms in one request.
func (c *Connection) SetState(windowID xproto.Window, add bool, first, second string) error {
	action := ewmh.StateRemove
	if add {
		action = ewmh.StateAdd
	}
	if err := ewmh.WmStateReqExtra(c.XUtil, windowID, action, first, second, 2); err != nil {
		return fmt.Errorf("change state %s of 0x%x: %w", first, windowID, err)
	}
	return nil
}

// SetMaximized adds or removes the maximize states for the given axes.
func (c *Connection) SetMaximized(windowID xproto.Window, add, vert, horz bool) error {
	switch {
	case vert && horz:
		return c.SetState(windowID, add, stateMaxVert, stateMaxHorz)
	case vert:
		return c.SetState(windowID, add, stateMaxVert, "")
	case horz:
		return c.SetState(windowID, add, stateMaxHorz, "")
	}
	return nil
}

// SetLayer moves a window between the below, normal and above layers.
func (c *Connection) SetLayer(windowID xproto.Window, layer int) error {
	switch {
	case layer < 0:
		if err := c.SetState(windowID, false, stateAbove, ""); err != nil {
			return err
		}
		return c.SetState(windowID, true, stateBelow, "")
	case layer > 0:
		if err := c.SetState(windowID, false, stateBelow, ""); err != nil {
			return err
		}
		return c.SetState(windowID, true, stateAbove, "")
	default:
		return c.SetState(windowID, false, stateBelow, stateAbove)
	}
}

// SetDecorated toggles window manager decorations through _MOTIF_WM_HINTS.
func (c *Connection) SetDecorated(windowID xproto.Window, decorated bool) error {
	hints, err := motif.WmHintsGet(c.XUtil, windowID)
	if err != nil {
		hints = &motif.Hints{}
	}
	hints.Flags |= motif.HintDecorations
	if decorated {
		hints.Decoration = motif.DecorationAll
	} else {
		hints.Decoration = motif.DecorationBorder
	}
	if err := motif.WmHintsSet(c.XUtil, windowID, hints); err != nil {
		return fmt.Errorf("set motif hints of 0x%x: %w", windowID, err)
	}
	return nil
}

// WarpPointer moves the pointer to absolute root coordinates.
func (c *Connection) WarpPointer(x, y int) error {
	return xproto.WarpPointerChecked(c.XUtil.Conn(), 0, c.Root, 0, 0, 0, 0, int16(x), int16(y)).Check()
}

// GetActiveWindow returns the focused client.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// ClientList returns the managed clients in mapping order.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("get client list: %w", err)
	}
	return clients, nil
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil && title != "" {
		return title
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return title
	}
	return ""
}
