//go:build linux

package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/stacktile/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxCompositor drives an EWMH window manager over an X11 connection.
// Desks map to (monitor index, EWMH desktop number, 0).
type LinuxCompositor struct {
	conn         *x11.Connection
	readMonitors func() ([]x11.Monitor, error)

	mu       sync.Mutex
	monitors []x11.Monitor
}

var _ Compositor = (*LinuxCompositor)(nil)

// NewLinuxCompositor wraps an existing X11 connection.
func NewLinuxCompositor(conn *x11.Connection) *LinuxCompositor {
	return &LinuxCompositor{conn: conn, readMonitors: conn.GetMonitors}
}

// NewLinuxCompositorFromDisplay opens a fresh X11 connection.
func NewLinuxCompositorFromDisplay() (*LinuxCompositor, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxCompositor(conn), nil
}

// Connection returns the underlying X11 connection.
func (b *LinuxCompositor) Connection() *x11.Connection {
	return b.conn
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxCompositor) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxCompositor) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxCompositor) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// RefreshZones re-reads the monitor layout.
func (b *LinuxCompositor) RefreshZones() ([]x11.Monitor, error) {
	monitors, err := b.readMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}
	b.mu.Lock()
	b.monitors = monitors
	b.mu.Unlock()
	return monitors, nil
}

func (b *LinuxCompositor) zones() ([]x11.Monitor, error) {
	b.mu.Lock()
	monitors := b.monitors
	b.mu.Unlock()
	if len(monitors) > 0 {
		return monitors, nil
	}
	return b.RefreshZones()
}

// ZoneCount re-reads the monitor layout and returns the number of monitors.
// Snapshots start with it, so hotplugged or rearranged monitors are picked up
// on the next poll.
func (b *LinuxCompositor) ZoneCount() (int, error) {
	monitors, err := b.RefreshZones()
	if err != nil {
		return 0, err
	}
	return len(monitors), nil
}

// ZoneDesk returns the desk visible on a zone.
func (b *LinuxCompositor) ZoneDesk(zone int) (Desk, error) {
	current, err := b.conn.GetCurrentDesktop()
	if err != nil {
		return Desk{}, err
	}
	return Desk{Zone: zone, X: current}, nil
}

// Clients lists the managed application windows.
func (b *LinuxCompositor) Clients() ([]WindowID, error) {
	clients, err := b.conn.ClientList()
	if err != nil {
		return nil, err
	}
	out := make([]WindowID, 0, len(clients))
	for _, c := range clients {
		if b.conn.IsManageable(c) {
			out = append(out, WindowID(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (b *LinuxCompositor) Window(id WindowID) (Window, error) {
	xid := xproto.Window(id)
	props, err := b.conn.Props(xid)
	if err != nil {
		return Window{}, err
	}
	geom, err := b.conn.Geometry(xid)
	if err != nil {
		return Window{}, err
	}
	monitors, err := b.zones()
	if err != nil {
		return Window{}, err
	}

	desktop := props.Desktop
	if desktop < 0 {
		if desktop, err = b.conn.GetCurrentDesktop(); err != nil {
			return Window{}, err
		}
	}
	bounds := Rect{X: geom.X, Y: geom.Y, Width: geom.Width, Height: geom.Height}
	cx, cy := bounds.Center()

	w := Window{
		ID:            id,
		Desk:          Desk{Zone: x11.ZoneAt(monitors, cx, cy), X: desktop},
		Title:         props.Title,
		Bounds:        bounds,
		MinHeight:     props.MinHeight,
		MaxHeight:     props.MaxHeight,
		StaticGravity: props.StaticGravity,
		TransientFor:  WindowID(props.TransientFor),
		Dialog:        props.Dialog,
		Fullscreen:    props.Fullscreen(),
		Iconic:        props.Hidden(),
		Sticky:        props.Sticky(),
		Maximized:     maximizeFromProps(props),
		Layer:         layerFromProps(props),
		Border:        "default",
	}
	if !props.Decorated {
		w.Border = "pixel"
	}
	return w, nil
}

func maximizeFromProps(p x11.WindowProps) Maximize {
	var m Maximize
	if p.MaximizedVert() {
		m |= MaximizeVertical
	}
	if p.MaximizedHorz() {
		m |= MaximizeHorizontal
	}
	return m
}

func layerFromProps(p x11.WindowProps) Layer {
	switch {
	case p.Below():
		return LayerBelow
	case p.Above():
		return LayerAbove
	default:
		return LayerNormal
	}
}

func (b *LinuxCompositor) FocusedWindow() (WindowID, error) {
	wid, err := b.conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// CurrentDesk returns the visible desk of the zone holding the focused
// window, or the zone under the pointer.
func (b *LinuxCompositor) CurrentDesk() (Desk, error) {
	monitors, err := b.zones()
	if err != nil {
		return Desk{}, err
	}
	zone := -1
	if focused, err := b.FocusedWindow(); err == nil && focused != 0 {
		if g, err := b.conn.Geometry(xproto.Window(focused)); err == nil {
			zone = x11.ZoneAt(monitors, g.X+g.Width/2, g.Y+g.Height/2)
		}
	}
	if zone < 0 {
		zone = b.conn.PointerZone(monitors)
	}
	return b.ZoneDesk(zone)
}

func (b *LinuxCompositor) UsableArea(zone int) (Rect, error) {
	mon, err := b.conn.Zone(zone)
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: mon.X, Y: mon.Y, Width: mon.Width, Height: mon.Height}, nil
}

func (b *LinuxCompositor) MoveResize(id WindowID, bounds Rect) error {
	return b.conn.MoveResize(xproto.Window(id), x11.Geometry{
		X: bounds.X, Y: bounds.Y, Width: bounds.Width, Height: bounds.Height,
	})
}

func (b *LinuxCompositor) Move(id WindowID, x, y int) error {
	return b.conn.Move(xproto.Window(id), x, y)
}

func (b *LinuxCompositor) SetLayer(id WindowID, layer Layer) error {
	return b.conn.SetLayer(xproto.Window(id), int(layer))
}

func (b *LinuxCompositor) MaximizeState(id WindowID) (Maximize, error) {
	props, err := b.conn.Props(xproto.Window(id))
	if err != nil {
		return MaximizeNone, err
	}
	return maximizeFromProps(props), nil
}

// Maximize adds the directional maximize states of m. EWMH has no notion of
// expanding into free space, so MaximizeExpand is treated as a plain
// maximize along the same axes.
func (b *LinuxCompositor) Maximize(id WindowID, m Maximize) error {
	return b.conn.SetMaximized(xproto.Window(id), true, m&MaximizeVertical != 0, m&MaximizeHorizontal != 0)
}

func (b *LinuxCompositor) Unmaximize(id WindowID, m Maximize) error {
	return b.conn.SetMaximized(xproto.Window(id), false, m&MaximizeVertical != 0, m&MaximizeHorizontal != 0)
}

// SetBorder maps the "pixel" border style to undecorated windows and every
// other style to full decorations.
func (b *LinuxCompositor) SetBorder(id WindowID, name string) error {
	return b.conn.SetDecorated(xproto.Window(id), name != "pixel")
}

func (b *LinuxCompositor) Activate(id WindowID) error {
	return b.conn.FocusWindow(xproto.Window(id))
}

func (b *LinuxCompositor) WarpPointer(x, y int) error {
	return b.conn.WarpPointer(x, y)
}
