package config

import (
	"fmt"

	"github.com/1broseidon/stacktile/internal/tiling"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw on top of the defaults. nb_stacks is
// clamped into [0, tiling.MaxStacks].
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.TileDialogs != nil {
		cfg.TileDialogs = *raw.TileDialogs
	}
	if raw.ShowTitles != nil {
		cfg.ShowTitles = *raw.ShowTitles
	}
	if raw.KeyHints != nil {
		cfg.KeyHints = *raw.KeyHints
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.IPC != nil && raw.IPC.Socket != nil {
		cfg.IPC.Socket = *raw.IPC.Socket
	}
	if raw.HTTP != nil && raw.HTTP.Listen != nil {
		cfg.HTTP.Listen = *raw.HTTP.Listen
	}
	if raw.Store != nil && raw.Store.Path != nil {
		cfg.Store.Path = *raw.Store.Path
	}
	if raw.Hotkeys != nil {
		cfg.Hotkeys = append([]Hotkey(nil), raw.Hotkeys...)
	}

	for i, rv := range raw.VDesks {
		if rv.X == nil || rv.Y == nil {
			return nil, &ValidationError{Path: "vdesks", Err: fmt.Errorf("vdesks[%d]: x and y are required", i)}
		}
		vd := VDesk{
			X:        *rv.X,
			Y:        *rv.Y,
			Zone:     deref(rv.Zone),
			NbStacks: clampStacks(deref(rv.NbStacks)),
			UseRows:  bool(deref(rv.UseRows)),
			Layout:   string(tiling.LayoutStacks),
		}
		if rv.Layout != nil && *rv.Layout != "" {
			vd.Layout = *rv.Layout
		}
		cfg.VDesks = append(cfg.VDesks, vd)
	}
	return cfg, nil
}

func clampStacks(n int) int {
	return max(0, min(n, tiling.MaxStacks))
}
