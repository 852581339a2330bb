package tiling

import "github.com/1broseidon/stacktile/internal/platform"

// IsTilable reports whether a window may ever be placed in a stack.
// Fullscreen windows are filtered separately since that state is transient.
func IsTilable(win platform.Window, tileDialogs bool) bool {
	if win.MinHeight == win.MaxHeight && win.MaxHeight > 0 {
		return false
	}
	if win.StaticGravity {
		return false
	}
	if !tileDialogs && (win.TransientFor != 0 || win.Dialog) {
		return false
	}
	return true
}

// IsTilable applies the classification rules with the engine's settings.
func (e *Engine) IsTilable(win platform.Window) bool {
	return IsTilable(win, e.settings.TileDialogs)
}

// IsFloating reports whether id is in its desk's floating set.
func (e *Engine) IsFloating(desk platform.Desk, id platform.WindowID) bool {
	return e.info(desk).isFloating(id)
}

// DeskShouldTile is the desk-level gate: a vdesk record exists and its stack
// count is non-zero.
func (e *Engine) DeskShouldTile(desk platform.Desk) bool {
	ti := e.info(desk)
	return ti.conf != nil && ti.conf.NbStacks > 0
}
