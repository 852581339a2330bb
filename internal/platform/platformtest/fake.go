// Package platformtest provides an in-memory Compositor for tests.
package platformtest

import (
	"fmt"
	"sync"

	"github.com/1broseidon/stacktile/internal/platform"
)

// Call records one mutating request made against the fake.
type Call struct {
	Op     string
	Window platform.WindowID
	Rect   platform.Rect
	Max    platform.Maximize
	Layer  platform.Layer
	Border string
}

// Compositor is a fake window manager that applies every request to its own
// window table.
type Compositor struct {
	mu      sync.Mutex
	windows map[platform.WindowID]*platform.Window
	areas   map[int]platform.Rect
	focused platform.WindowID
	desk    platform.Desk
	calls   []Call

	Pointer [2]int
}

var _ platform.Compositor = (*Compositor)(nil)

// New returns a fake with a single zone covering area.
func New(area platform.Rect) *Compositor {
	return &Compositor{
		windows: make(map[platform.WindowID]*platform.Window),
		areas:   map[int]platform.Rect{0: area},
	}
}

// AddWindow registers a normal window on desk with the given bounds.
func (c *Compositor) AddWindow(id platform.WindowID, desk platform.Desk, bounds platform.Rect) *platform.Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &platform.Window{ID: id, Desk: desk, Bounds: bounds, Border: "default"}
	c.windows[id] = w
	return w
}

// Update mutates a registered window in place.
func (c *Compositor) Update(id platform.WindowID, fn func(w *platform.Window)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok := c.windows[id]; ok {
		fn(w)
	}
}

// SetArea sets the usable area of a zone.
func (c *Compositor) SetArea(zone int, area platform.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.areas[zone] = area
}

// RemoveZone drops a zone; UsableArea fails for it afterwards.
func (c *Compositor) RemoveZone(zone int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.areas, zone)
}

// Focus marks id as the focused window.
func (c *Compositor) Focus(id platform.WindowID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focused = id
}

// SetCurrentDesk sets the desk returned by CurrentDesk.
func (c *Compositor) SetCurrentDesk(d platform.Desk) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.desk = d
}

// Bounds returns the current bounds of a window.
func (c *Compositor) Bounds(id platform.WindowID) platform.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok := c.windows[id]; ok {
		return w.Bounds
	}
	return platform.Rect{}
}

// Calls returns a copy of the recorded requests.
func (c *Compositor) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// ResetCalls drops the recorded requests.
func (c *Compositor) ResetCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

func (c *Compositor) record(call Call) {
	c.calls = append(c.calls, call)
}

func (c *Compositor) lookup(id platform.WindowID) (*platform.Window, error) {
	w, ok := c.windows[id]
	if !ok {
		return nil, fmt.Errorf("window %d not found", id)
	}
	return w, nil
}

func (c *Compositor) Window(id platform.WindowID) (platform.Window, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, err := c.lookup(id)
	if err != nil {
		return platform.Window{}, err
	}
	return *w, nil
}

func (c *Compositor) FocusedWindow() (platform.WindowID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused, nil
}

func (c *Compositor) CurrentDesk() (platform.Desk, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desk, nil
}

func (c *Compositor) UsableArea(zone int) (platform.Rect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	area, ok := c.areas[zone]
	if !ok {
		return platform.Rect{}, fmt.Errorf("zone %d not found", zone)
	}
	return area, nil
}

func (c *Compositor) MoveResize(id platform.WindowID, bounds platform.Rect) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, err := c.lookup(id)
	if err != nil {
		return err
	}
	w.Bounds = bounds
	c.record(Call{Op: "move_resize", Window: id, Rect: bounds})
	return nil
}

func (c *Compositor) Move(id platform.WindowID, x, y int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, err := c.lookup(id)
	if err != nil {
		return err
	}
	w.Bounds.X, w.Bounds.Y = x, y
	c.record(Call{Op: "move", Window: id, Rect: w.Bounds})
	return nil
}

func (c *Compositor) SetLayer(id platform.WindowID, layer platform.Layer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, err := c.lookup(id)
	if err != nil {
		return err
	}
	w.Layer = layer
	c.record(Call{Op: "layer", Window: id, Layer: layer})
	return nil
}

func (c *Compositor) MaximizeState(id platform.WindowID) (platform.Maximize, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, err := c.lookup(id)
	if err != nil {
		return 0, err
	}
	return w.Maximized, nil
}

func (c *Compositor) Maximize(id platform.WindowID, m platform.Maximize) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, err := c.lookup(id)
	if err != nil {
		return err
	}
	w.Maximized |= m & platform.MaximizeDirection
	c.record(Call{Op: "maximize", Window: id, Max: m})
	return nil
}

func (c *Compositor) Unmaximize(id platform.WindowID, m platform.Maximize) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, err := c.lookup(id)
	if err != nil {
		return err
	}
	w.Maximized &^= m & platform.MaximizeDirection
	c.record(Call{Op: "unmaximize", Window: id, Max: m})
	return nil
}

func (c *Compositor) SetBorder(id platform.WindowID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, err := c.lookup(id)
	if err != nil {
		return err
	}
	w.Border = name
	c.record(Call{Op: "border", Window: id, Border: name})
	return nil
}

func (c *Compositor) Activate(id platform.WindowID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.lookup(id); err != nil {
		return err
	}
	c.focused = id
	c.record(Call{Op: "activate", Window: id})
	return nil
}

func (c *Compositor) WarpPointer(x, y int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Pointer = [2]int{x, y}
	c.record(Call{Op: "warp", Rect: platform.Rect{X: x, Y: y}})
	return nil
}
