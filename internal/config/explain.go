package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	tile_dialogs
//	show_titles
//	keyhints
//	log_level
//	ipc.socket
//	http.listen
//	store.path
//	vdesks
//	vdesks.<index>
//	hotkeys
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	// Sequence entries are attributed to the sequence.
	if head, _, found := strings.Cut(path, "."); found {
		if src, ok := res.Sources[head]; ok {
			return value, src, nil
		}
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	scalar := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}

	switch parts[0] {
	case "tile_dialogs":
		return scalar(cfg.TileDialogs)
	case "show_titles":
		return scalar(cfg.ShowTitles)
	case "keyhints":
		return scalar(cfg.KeyHints)
	case "log_level":
		return scalar(cfg.LogLevel)
	case "hotkeys":
		return scalar(cfg.Hotkeys)
	case "ipc":
		if len(parts) == 2 && parts[1] == "socket" {
			return cfg.IPC.Socket, nil
		}
	case "http":
		if len(parts) == 2 && parts[1] == "listen" {
			return cfg.HTTP.Listen, nil
		}
	case "store":
		if len(parts) == 2 && parts[1] == "path" {
			return cfg.Store.Path, nil
		}
	case "vdesks":
		if len(parts) == 1 {
			return cfg.VDesks, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		i, err := strconv.Atoi(parts[1])
		if err != nil || i < 0 || i >= len(cfg.VDesks) {
			return nil, fmt.Errorf("vdesks index %q out of range", parts[1])
		}
		return cfg.VDesks[i], nil
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
