package daemon

import (
	"log/slog"

	"github.com/1broseidon/stacktile/internal/platform"
)

// Source is the compositor view the watcher snapshots.
type Source interface {
	Clients() ([]platform.WindowID, error)
	Window(id platform.WindowID) (platform.Window, error)
	ZoneCount() (int, error)
	ZoneDesk(zone int) (platform.Desk, error)
	UsableArea(zone int) (platform.Rect, error)
}

// SnapshotFromSource builds a SnapshotFunc over src. Windows that vanish
// between listing and querying are skipped; they show up as removed on the
// next poll.
func SnapshotFromSource(src Source, logger *slog.Logger) SnapshotFunc {
	return func() (Snapshot, error) {
		zones, err := src.ZoneCount()
		if err != nil {
			return Snapshot{}, err
		}
		snap := Snapshot{
			Windows: make(map[platform.WindowID]WindowState),
			Current: make(map[int]platform.Desk, zones),
			Areas:   make(map[int]platform.Rect, zones),
		}
		for zone := 0; zone < zones; zone++ {
			desk, err := src.ZoneDesk(zone)
			if err != nil {
				return Snapshot{}, err
			}
			area, err := src.UsableArea(zone)
			if err != nil {
				return Snapshot{}, err
			}
			snap.Current[zone] = desk
			snap.Areas[zone] = area
		}

		ids, err := src.Clients()
		if err != nil {
			return Snapshot{}, err
		}
		for _, id := range ids {
			w, err := src.Window(id)
			if err != nil {
				logger.Debug("snapshot: skipping window", "window", id, "error", err)
				continue
			}
			snap.Windows[id] = WindowState{
				Desk:   w.Desk,
				Bounds: w.Bounds,
				Iconic: w.Iconic,
				Sticky: w.Sticky,
			}
		}
		return snap, nil
	}
}
