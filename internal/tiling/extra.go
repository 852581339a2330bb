package tiling

import "github.com/1broseidon/stacktile/internal/platform"

// OrigState is what a window looked like before tiling took it over.
type OrigState struct {
	Geom      platform.Rect
	Layer     platform.Layer
	Maximized platform.Maximize
	Border    string
}

// ClientExtra is the per-window bookkeeping record.
type ClientExtra struct {
	Window   platform.WindowID
	Expected platform.Rect
	Orig     OrigState
}

// extraStore is the desk-independent lookup table of ClientExtra records.
type extraStore struct {
	byWindow map[platform.WindowID]*ClientExtra
}

func newExtraStore() *extraStore {
	return &extraStore{byWindow: make(map[platform.WindowID]*ClientExtra)}
}

func (s *extraStore) get(id platform.WindowID) (*ClientExtra, bool) {
	extra, ok := s.byWindow[id]
	return extra, ok
}

// getOrCreate captures the original state on first sight. Later calls only
// refresh the expected geometry from the window's current bounds.
func (s *extraStore) getOrCreate(win platform.Window) *ClientExtra {
	if extra, ok := s.byWindow[win.ID]; ok {
		extra.Expected = win.Bounds
		return extra
	}
	extra := &ClientExtra{
		Window:   win.ID,
		Expected: win.Bounds,
		Orig: OrigState{
			Geom:      win.Bounds,
			Layer:     win.Layer,
			Maximized: win.Maximized,
			Border:    win.Border,
		},
	}
	s.byWindow[win.ID] = extra
	return extra
}

func (s *extraStore) delete(id platform.WindowID) {
	delete(s.byWindow, id)
}

func (s *extraStore) len() int {
	return len(s.byWindow)
}
