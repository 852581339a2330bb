package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/stacktile/internal/config"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// RunFunc runs a named action. It is called on the X event loop and must not
// block.
type RunFunc func(action, param string)

// Handler manages global keyboard shortcuts
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	log  *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler on the root window.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	return &Handler{xu: xu, root: root, log: logger}
}

// Bind grabs every binding. Bindings that fail (unknown action, unparsable
// keys, key already grabbed by another client) are skipped and reported
// together.
func (h *Handler) Bind(bindings []config.Hotkey, known func(string) bool, run RunFunc) error {
	plan, errs := planBindings(bindings, known)
	for _, b := range plan {
		err := h.RegisterFunc(b.Keys, func() {
			h.log.Debug("hotkey triggered", "keys", b.Keys, "action", b.Action)
			run(b.Action, b.Param)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("hotkey %s (%s): %w", b.Keys, b.Action, err))
			continue
		}
		h.log.Info("hotkey registered", "keys", b.Keys, "action", b.Action, "param", b.Param)
	}
	return errors.Join(errs...)
}

// Unbind releases every root window grab, before re-binding on reload.
func (h *Handler) Unbind() {
	keybind.DetachPress(h.xu, h.root)
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// planBindings drops bindings naming unknown actions and, when a key sequence
// is bound twice, keeps the later binding.
func planBindings(bindings []config.Hotkey, known func(string) bool) ([]config.Hotkey, []error) {
	var errs []error
	index := make(map[string]int, len(bindings))
	var out []config.Hotkey
	for _, b := range bindings {
		if known != nil && !known(b.Action) {
			errs = append(errs, fmt.Errorf("hotkey %s: unknown action %q", b.Keys, b.Action))
			continue
		}
		if i, dup := index[b.Keys]; dup {
			out[i] = b
			continue
		}
		index[b.Keys] = len(out)
		out = append(out, b)
	}
	return out, errs
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
