package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/stacktile/internal/tiling"
)

// VDesk is a per-virtual-desktop tiling record.
type VDesk struct {
	X        int    `yaml:"x" toml:"x"`
	Y        int    `yaml:"y" toml:"y"`
	Zone     int    `yaml:"zone" toml:"zone"`
	NbStacks int    `yaml:"nb_stacks" toml:"nb_stacks"`
	UseRows  bool   `yaml:"use_rows" toml:"use_rows"`
	Layout   string `yaml:"layout,omitempty" toml:"layout,omitempty"`
}

// Key identifies the desk the record applies to.
func (v VDesk) Key() string {
	return fmt.Sprintf("%d:%d:%d", v.Zone, v.X, v.Y)
}

// Hotkey binds a key sequence to a named action.
type Hotkey struct {
	Keys   string `yaml:"keys" toml:"keys"`
	Action string `yaml:"action" toml:"action"`
	Param  string `yaml:"param,omitempty" toml:"param,omitempty"`
}

type IPCConfig struct {
	// Socket overrides the default unix socket path.
	Socket string `yaml:"socket" toml:"socket"`
}

type HTTPConfig struct {
	// Listen is the status API address; empty disables the API.
	Listen string `yaml:"listen" toml:"listen"`
}

type StoreConfig struct {
	// Path of the sqlite file holding runtime vdesk changes; empty uses
	// $XDG_DATA_HOME/stacktile/state.db.
	Path string `yaml:"path" toml:"path"`
}

// Config is the effective configuration.
type Config struct {
	TileDialogs bool        `yaml:"tile_dialogs" toml:"tile_dialogs"`
	ShowTitles  bool        `yaml:"show_titles" toml:"show_titles"`
	KeyHints    string      `yaml:"keyhints" toml:"keyhints"`
	VDesks      []VDesk     `yaml:"vdesks" toml:"vdesks"`
	Hotkeys     []Hotkey    `yaml:"hotkeys" toml:"hotkeys"`
	IPC         IPCConfig   `yaml:"ipc" toml:"ipc"`
	HTTP        HTTPConfig  `yaml:"http" toml:"http"`
	Store       StoreConfig `yaml:"store" toml:"store"`
	LogLevel    string      `yaml:"log_level" toml:"log_level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		TileDialogs: true,
		ShowTitles:  true,
		KeyHints:    tiling.DefaultKeyHints,
		Hotkeys:     defaultHotkeys(),
		LogLevel:    "info",
	}
}

func defaultHotkeys() []Hotkey {
	return []Hotkey{
		{Keys: "Mod4-Shift-space", Action: "toggle_floating"},
		{Keys: "Mod4-Mod1-s", Action: "swap"},
		{Keys: "Mod4-Mod1-m", Action: "move"},
		{Keys: "Mod4-Mod1-Left", Action: "move_left"},
		{Keys: "Mod4-Mod1-Right", Action: "move_right"},
		{Keys: "Mod4-Mod1-Up", Action: "move_up"},
		{Keys: "Mod4-Mod1-Down", Action: "move_down"},
		{Keys: "Mod4-Mod1-g", Action: "go"},
		{Keys: "Mod4-Mod1-r", Action: "adjust_transitions"},
		{Keys: "Mod4-Mod1-t", Action: "toggle_split_mode"},
	}
}

// Validate checks the effective configuration for values the daemon cannot use.
func (c *Config) Validate() error {
	if err := validateKeyHints(c.KeyHints); err != nil {
		return &ValidationError{Path: "keyhints", Err: err}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}

	seen := make(map[string]int, len(c.VDesks))
	for i, vd := range c.VDesks {
		if vd.X < 0 || vd.Y < 0 || vd.Zone < 0 {
			return &ValidationError{Path: "vdesks", Err: fmt.Errorf("vdesks[%d]: x, y and zone must be >= 0", i)}
		}
		switch tiling.LayoutKind(vd.Layout) {
		case tiling.LayoutStacks, tiling.LayoutTree:
		default:
			return &ValidationError{Path: "vdesks", Err: fmt.Errorf("vdesks[%d]: layout must be one of: stacks, tree", i)}
		}
		if j, dup := seen[vd.Key()]; dup {
			return &ValidationError{Path: "vdesks", Err: fmt.Errorf("vdesks[%d] duplicates vdesks[%d] (zone %d, x %d, y %d)", i, j, vd.Zone, vd.X, vd.Y)}
		}
		seen[vd.Key()] = i
	}

	for i, hk := range c.Hotkeys {
		if strings.TrimSpace(hk.Keys) == "" {
			return &ValidationError{Path: "hotkeys", Err: fmt.Errorf("hotkeys[%d]: keys is required", i)}
		}
		if strings.TrimSpace(hk.Action) == "" {
			return &ValidationError{Path: "hotkeys", Err: fmt.Errorf("hotkeys[%d]: action is required", i)}
		}
	}
	return nil
}

func validateKeyHints(hints string) error {
	if len(hints) < 2 {
		return fmt.Errorf("keyhints needs at least two characters")
	}
	seen := make(map[rune]bool, len(hints))
	for _, r := range hints {
		if r > 0x7f {
			return fmt.Errorf("keyhints must be ASCII, got %q", r)
		}
		if seen[r] {
			return fmt.Errorf("keyhints contains %q twice", r)
		}
		seen[r] = true
	}
	return nil
}

// Level returns the slog level for log_level.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ToSettings converts the configuration into engine settings.
func (c *Config) ToSettings() tiling.Settings {
	s := tiling.Settings{
		TileDialogs: c.TileDialogs,
		ShowTitles:  c.ShowTitles,
		KeyHints:    c.KeyHints,
		VDesks:      make([]tiling.VDeskConf, 0, len(c.VDesks)),
	}
	for _, vd := range c.VDesks {
		s.VDesks = append(s.VDesks, vd.ToConf())
	}
	return s
}

// ToConf converts a record into the engine's form.
func (v VDesk) ToConf() tiling.VDeskConf {
	layout := tiling.LayoutKind(v.Layout)
	if layout == "" {
		layout = tiling.LayoutStacks
	}
	return tiling.VDeskConf{
		X:        v.X,
		Y:        v.Y,
		Zone:     v.Zone,
		NbStacks: v.NbStacks,
		UseRows:  v.UseRows,
		Layout:   layout,
	}
}

// VDeskFromConf is the inverse of VDesk.ToConf.
func VDeskFromConf(c tiling.VDeskConf) VDesk {
	return VDesk{
		X:        c.X,
		Y:        c.Y,
		Zone:     c.Zone,
		NbStacks: c.NbStacks,
		UseRows:  c.UseRows,
		Layout:   string(c.Layout),
	}
}

// OverlayVDesks replaces or appends records keyed by desk. Records later in
// overrides win.
func (c *Config) OverlayVDesks(overrides []VDesk) {
	index := make(map[string]int, len(c.VDesks))
	for i, vd := range c.VDesks {
		index[vd.Key()] = i
	}
	for _, vd := range overrides {
		if i, ok := index[vd.Key()]; ok {
			c.VDesks[i] = vd
			continue
		}
		index[vd.Key()] = len(c.VDesks)
		c.VDesks = append(c.VDesks, vd)
	}
}
