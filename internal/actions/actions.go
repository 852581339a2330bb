// Package actions maps action names to engine and controller operations.
package actions

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/stacktile/internal/platform"
	"github.com/1broseidon/stacktile/internal/tiling"
)

const (
	ToggleFloating    = "toggle_floating"
	Swap              = "swap"
	Move              = "move"
	MoveLeft          = "move_left"
	MoveRight         = "move_right"
	MoveUp            = "move_up"
	MoveDown          = "move_down"
	MoveDirect        = "move_direct"
	Go                = "go"
	AdjustTransitions = "adjust_transitions"
	ToggleSplitMode   = "toggle_split_mode"
)

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrNoFocus        = errors.New("no focused window")
	ErrOffDesk        = errors.New("focused window is not on the current desk")
	ErrNotTiling      = errors.New("tiling is disabled on the current desk")
	ErrModeNotEntered = errors.New("interactive mode not entered")
)

// Engine is the subset of the tiling engine the actions drive.
type Engine interface {
	DeskShouldTile(desk platform.Desk) bool
	ToggleFloating(id platform.WindowID)
	Move(id platform.WindowID, dir tiling.Direction) bool
	ToggleSplitMode(desk platform.Desk) tiling.SplitDir
}

// Modes enters the interactive controller's modes.
type Modes interface {
	EnterSwap(desk platform.Desk, focused platform.WindowID) bool
	EnterMove(desk platform.Desk, focused platform.WindowID) bool
	EnterGo(desk platform.Desk, focused platform.WindowID) bool
	EnterTransition(desk platform.Desk, focused platform.WindowID) bool
}

// Focus resolves the current desk and focused window.
type Focus interface {
	CurrentDesk() (platform.Desk, error)
	FocusedWindow() (platform.WindowID, error)
	Window(id platform.WindowID) (platform.Window, error)
}

// Registry runs named actions.
type Registry struct {
	engine Engine
	modes  Modes
	focus  Focus
	log    *slog.Logger
}

// New creates a registry.
func New(engine Engine, modes Modes, focus Focus, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{engine: engine, modes: modes, focus: focus, log: logger}
}

// Names lists every action name.
func Names() []string {
	return []string{
		ToggleFloating, Swap, Move,
		MoveLeft, MoveRight, MoveUp, MoveDown, MoveDirect,
		Go, AdjustTransitions, ToggleSplitMode,
	}
}

// Known reports whether name is an action.
func Known(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}

// target is what every action operates on.
type target struct {
	desk    platform.Desk
	focused platform.WindowID
}

// resolve finds the focused window and checks that it sits on the current
// desk and that the desk tiles.
func (r *Registry) resolve() (target, error) {
	desk, err := r.focus.CurrentDesk()
	if err != nil {
		return target{}, fmt.Errorf("current desk: %w", err)
	}
	focused, err := r.focus.FocusedWindow()
	if err != nil {
		return target{}, fmt.Errorf("focused window: %w", err)
	}
	if focused == 0 {
		return target{}, ErrNoFocus
	}
	win, err := r.focus.Window(focused)
	if err != nil {
		return target{}, fmt.Errorf("focused window %d: %w", focused, err)
	}
	if win.Desk != desk {
		return target{}, ErrOffDesk
	}
	if !r.engine.DeskShouldTile(desk) {
		return target{}, ErrNotTiling
	}
	return target{desk: desk, focused: focused}, nil
}

// Run executes an action. param is only used by move_direct.
func (r *Registry) Run(name, param string) error {
	if !Known(name) {
		return fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}

	var dir tiling.Direction
	switch name {
	case MoveLeft:
		dir = tiling.DirLeft
	case MoveRight:
		dir = tiling.DirRight
	case MoveUp:
		dir = tiling.DirUp
	case MoveDown:
		dir = tiling.DirDown
	case MoveDirect:
		d, err := tiling.ParseDirection(param)
		if err != nil {
			return fmt.Errorf("move_direct: %w", err)
		}
		dir = d
	}

	t, err := r.resolve()
	if err != nil {
		r.log.Debug("action skipped", "action", name, "reason", err)
		return err
	}
	r.log.Debug("running action", "action", name, "param", param, "desk", t.desk, "window", t.focused)

	switch name {
	case ToggleFloating:
		r.engine.ToggleFloating(t.focused)
	case Swap:
		return r.enter(name, r.modes.EnterSwap(t.desk, t.focused))
	case Move:
		return r.enter(name, r.modes.EnterMove(t.desk, t.focused))
	case Go:
		return r.enter(name, r.modes.EnterGo(t.desk, t.focused))
	case AdjustTransitions:
		return r.enter(name, r.modes.EnterTransition(t.desk, t.focused))
	case ToggleSplitMode:
		split := r.engine.ToggleSplitMode(t.desk)
		r.log.Info("split mode", "desk", t.desk, "split", split)
	default:
		if !r.engine.Move(t.focused, dir) {
			r.log.Debug("move had no effect", "window", t.focused, "dir", dir)
		}
	}
	return nil
}

func (r *Registry) enter(name string, ok bool) error {
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrModeNotEntered)
	}
	return nil
}
