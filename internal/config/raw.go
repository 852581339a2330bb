package config

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// FlexBool accepts a YAML boolean or an integer; any non-zero integer is true.
type FlexBool bool

func (b *FlexBool) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected a boolean or integer")
	}
	switch value.Tag {
	case "!!bool":
		v, err := strconv.ParseBool(value.Value)
		if err != nil {
			return err
		}
		*b = FlexBool(v)
		return nil
	case "!!int":
		v, err := strconv.ParseInt(value.Value, 0, 64)
		if err != nil {
			return err
		}
		*b = v != 0
		return nil
	default:
		return fmt.Errorf("expected a boolean or integer, got %q", value.Value)
	}
}

type RawVDesk struct {
	X        *int      `yaml:"x" toml:"x"`
	Y        *int      `yaml:"y" toml:"y"`
	Zone     *int      `yaml:"zone" toml:"zone"`
	NbStacks *int      `yaml:"nb_stacks" toml:"nb_stacks"`
	UseRows  *FlexBool `yaml:"use_rows" toml:"use_rows"`
	Layout   *string   `yaml:"layout" toml:"layout"`
}

func (r RawVDesk) key() string {
	return fmt.Sprintf("%d:%d:%d", deref(r.Zone), deref(r.X), deref(r.Y))
}

type RawIPC struct {
	Socket *string `yaml:"socket" toml:"socket"`
}

type RawHTTP struct {
	Listen *string `yaml:"listen" toml:"listen"`
}

type RawStore struct {
	Path *string `yaml:"path" toml:"path"`
}

// RawConfig is one file's view of the configuration. Unset fields are nil so
// includes can be layered.
type RawConfig struct {
	Include     IncludeList `yaml:"include" toml:"include"`
	TileDialogs *bool       `yaml:"tile_dialogs" toml:"tile_dialogs"`
	ShowTitles  *bool       `yaml:"show_titles" toml:"show_titles"`
	KeyHints    *string     `yaml:"keyhints" toml:"keyhints"`
	VDesks      []RawVDesk  `yaml:"vdesks" toml:"vdesks"`
	Hotkeys     []Hotkey    `yaml:"hotkeys" toml:"hotkeys"`
	IPC         *RawIPC     `yaml:"ipc" toml:"ipc"`
	HTTP        *RawHTTP    `yaml:"http" toml:"http"`
	Store       *RawStore   `yaml:"store" toml:"store"`
	LogLevel    *string     `yaml:"log_level" toml:"log_level"`
}

// merge layers other on top of r. Scalars in other win; vdesk records are
// merged by desk; a hotkey list in other replaces the whole list.
func (r RawConfig) merge(other RawConfig) RawConfig {
	out := r
	out.Include = nil
	if other.TileDialogs != nil {
		out.TileDialogs = other.TileDialogs
	}
	if other.ShowTitles != nil {
		out.ShowTitles = other.ShowTitles
	}
	if other.KeyHints != nil {
		out.KeyHints = other.KeyHints
	}
	if other.VDesks != nil {
		out.VDesks = mergeVDesks(r.VDesks, other.VDesks)
	}
	if other.Hotkeys != nil {
		out.Hotkeys = append([]Hotkey(nil), other.Hotkeys...)
	}
	if other.IPC != nil {
		ipc := RawIPC{}
		if r.IPC != nil {
			ipc = *r.IPC
		}
		if other.IPC.Socket != nil {
			ipc.Socket = other.IPC.Socket
		}
		out.IPC = &ipc
	}
	if other.HTTP != nil {
		http := RawHTTP{}
		if r.HTTP != nil {
			http = *r.HTTP
		}
		if other.HTTP.Listen != nil {
			http.Listen = other.HTTP.Listen
		}
		out.HTTP = &http
	}
	if other.Store != nil {
		store := RawStore{}
		if r.Store != nil {
			store = *r.Store
		}
		if other.Store.Path != nil {
			store.Path = other.Store.Path
		}
		out.Store = &store
	}
	if other.LogLevel != nil {
		out.LogLevel = other.LogLevel
	}
	return out
}

// mergeVDesks drops base records overridden by a record in top and appends
// top as-is, so duplicates within a single file still reach Validate.
func mergeVDesks(base, top []RawVDesk) []RawVDesk {
	overridden := make(map[string]bool, len(top))
	for _, vd := range top {
		overridden[vd.key()] = true
	}
	out := make([]RawVDesk, 0, len(base)+len(top))
	for _, vd := range base {
		if !overridden[vd.key()] {
			out = append(out, vd)
		}
	}
	return append(out, top...)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
