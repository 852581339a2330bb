package daemon

import (
	"github.com/1broseidon/stacktile/internal/config"
	"github.com/1broseidon/stacktile/internal/store"
)

// LoadSettings loads the config at path and overlays the desk records saved
// at runtime.
func LoadSettings(path string, st *store.Store) (*config.LoadResult, error) {
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return res, nil
	}
	saved, err := st.VDesks()
	if err != nil {
		return nil, err
	}
	overrides := make([]config.VDesk, 0, len(saved))
	for _, c := range saved {
		overrides = append(overrides, config.VDeskFromConf(c))
	}
	res.Config.OverlayVDesks(overrides)
	return res, nil
}
