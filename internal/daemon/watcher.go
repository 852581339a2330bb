package daemon

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/1broseidon/stacktile/internal/hooks"
	"github.com/1broseidon/stacktile/internal/platform"
)

// WindowState is what the watcher tracks per managed window.
type WindowState struct {
	Desk   platform.Desk
	Bounds platform.Rect
	Iconic bool
	Sticky bool
}

// Snapshot is the observed window manager state at one instant.
type Snapshot struct {
	Windows map[platform.WindowID]WindowState
	// Current maps each zone to its visible desk.
	Current map[int]platform.Desk
	// Areas maps each zone to its usable area.
	Areas map[int]platform.Rect
}

// SnapshotFunc captures the current window manager state.
type SnapshotFunc func() (Snapshot, error)

// WatcherConfig holds configuration for the watcher.
type WatcherConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Watcher turns successive snapshots into lifecycle events. The X server only
// tells us that the client list or a property changed; diffing full snapshots
// recovers which hook applies.
type Watcher struct {
	interval time.Duration
	snapshot SnapshotFunc
	emit     func(hooks.Event)
	logger   *slog.Logger

	prev    Snapshot
	primed  bool
	trigger chan struct{}
}

// NewWatcher creates a watcher. emit receives events in the order they must
// be applied.
func NewWatcher(cfg WatcherConfig, snapshot SnapshotFunc, emit func(hooks.Event)) *Watcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Watcher{
		interval: interval,
		snapshot: snapshot,
		emit:     emit,
		logger:   cfg.Logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests a poll soon. Safe from any goroutine.
func (w *Watcher) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run polls on every trigger and on a fallback interval until ctx is
// cancelled. poll is invoked through post so the diff runs on the layout
// goroutine.
func (w *Watcher) Run(ctx context.Context, post func(func())) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("watcher started", "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return
		case <-ticker.C:
			post(w.Poll)
		case <-w.trigger:
			post(w.Poll)
		}
	}
}

// Poll captures a snapshot and emits the events it implies.
func (w *Watcher) Poll() {
	next, err := w.snapshot()
	if err != nil {
		w.logger.Error("watcher: snapshot failed", "error", err)
		return
	}
	for _, ev := range w.Diff(next) {
		w.emit(ev)
	}
}

// Diff records next as the current state and returns the events leading to
// it from the previous snapshot. The first snapshot adds every window that
// is not iconified.
func (w *Watcher) Diff(next Snapshot) []hooks.Event {
	prev := w.prev
	primed := w.primed
	w.prev = next
	w.primed = true

	var out []hooks.Event

	if primed && areasChanged(prev.Areas, next.Areas) {
		out = append(out, hooks.Event{Kind: hooks.CompositorResize})
	}

	var shown []platform.Desk
	for _, zone := range slices.Sorted(maps.Keys(next.Current)) {
		desk := next.Current[zone]
		if old, ok := prev.Current[zone]; primed && ok && old != desk {
			out = append(out, hooks.Event{Kind: hooks.DeskBeforeShow, Desk: desk})
			shown = append(shown, desk)
		}
	}

	for _, id := range slices.Sorted(maps.Keys(prev.Windows)) {
		if _, ok := next.Windows[id]; !ok {
			out = append(out, hooks.Event{Kind: hooks.Remove, Window: id, Desk: prev.Windows[id].Desk})
		}
	}

	for _, id := range slices.Sorted(maps.Keys(next.Windows)) {
		cur := next.Windows[id]
		old, known := prev.Windows[id]
		if !known {
			if !cur.Iconic {
				out = append(out,
					hooks.Event{Kind: hooks.PreFrameAssign, Window: id, Desk: cur.Desk},
					hooks.Event{Kind: hooks.Add, Window: id, Desk: cur.Desk},
				)
			}
			continue
		}
		out = append(out, windowChanges(id, old, cur)...)
	}

	for _, desk := range shown {
		out = append(out, hooks.Event{Kind: hooks.DeskShow, Desk: desk})
	}
	return out
}

func windowChanges(id platform.WindowID, old, cur WindowState) []hooks.Event {
	var out []hooks.Event
	if old.Desk != cur.Desk {
		out = append(out, hooks.Event{Kind: hooks.DeskSet, Window: id, Desk: cur.Desk, From: old.Desk})
	}
	switch {
	case !old.Iconic && cur.Iconic:
		out = append(out, hooks.Event{Kind: hooks.Iconify, Window: id, Desk: cur.Desk})
	case old.Iconic && !cur.Iconic:
		out = append(out, hooks.Event{Kind: hooks.Uniconify, Window: id, Desk: cur.Desk})
	}
	switch {
	case !old.Sticky && cur.Sticky:
		out = append(out, hooks.Event{Kind: hooks.Stick, Window: id, Desk: cur.Desk})
	case old.Sticky && !cur.Sticky:
		out = append(out, hooks.Event{Kind: hooks.Unstick, Window: id, Desk: cur.Desk})
	}
	if cur.Iconic || old.Desk != cur.Desk || old.Bounds == cur.Bounds {
		return out
	}
	kind := hooks.Move
	if old.Bounds.Width != cur.Bounds.Width || old.Bounds.Height != cur.Bounds.Height {
		kind = hooks.Resize
	}
	return append(out, hooks.Event{Kind: kind, Window: id, Desk: cur.Desk})
}

func areasChanged(a, b map[int]platform.Rect) bool {
	return !maps.Equal(a, b)
}

// Windows returns the non-iconified windows of desk from the last snapshot.
func (w *Watcher) Windows(desk platform.Desk) []platform.WindowID {
	var out []platform.WindowID
	for _, id := range slices.Sorted(maps.Keys(w.prev.Windows)) {
		st := w.prev.Windows[id]
		if st.Desk == desk && !st.Iconic {
			out = append(out, id)
		}
	}
	return out
}

// Desks returns every desk holding a window in the last snapshot.
func (w *Watcher) Desks() []platform.Desk {
	seen := make(map[platform.Desk]struct{})
	for _, st := range w.prev.Windows {
		seen[st.Desk] = struct{}{}
	}
	out := make([]platform.Desk, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b platform.Desk) int {
		if a.Zone != b.Zone {
			return a.Zone - b.Zone
		}
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return out
}
