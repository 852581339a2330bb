package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/stacktile/internal/ipc"
	"github.com/1broseidon/stacktile/internal/movemode"
	"github.com/1broseidon/stacktile/internal/platform"
	"github.com/1broseidon/stacktile/internal/tiling"
)

// Layout is the engine surface the control plane touches.
type Layout interface {
	Snapshot() []tiling.DeskState
	State(desk platform.Desk) tiling.DeskState
	ChangeDeskConf(conf tiling.VDeskConf)
	UpdateSettings(s tiling.Settings)
	DeskShouldTile(desk platform.Desk) bool
	IsTiled(id platform.WindowID) bool
	AddClient(id platform.WindowID)
}

// ModeView reports the interactive mode for status output.
type ModeView interface {
	Mode() movemode.Mode
	SessionID() string
}

// Focus reports what the user is looking at.
type Focus interface {
	CurrentDesk() (platform.Desk, error)
	FocusedWindow() (platform.WindowID, error)
}

// Inventory lists the windows last observed on each desk.
type Inventory interface {
	Desks() []platform.Desk
	Windows(desk platform.Desk) []platform.WindowID
}

// ActionRunner runs a named action against the focused window.
type ActionRunner interface {
	Run(name, param string) error
}

// ReloadFunc re-reads configuration and returns the settings to apply. It
// runs off the dispatcher goroutine.
type ReloadFunc func() (tiling.Settings, error)

// ControlConfig bundles the collaborators of a Control.
type ControlConfig struct {
	Dispatcher *Dispatcher
	Layout     Layout
	Modes      ModeView
	Focus      Focus
	Inventory  Inventory
	Actions    ActionRunner
	Reload     ReloadFunc
	Logger     *slog.Logger
}

// Control serves IPC and HTTP requests by running them on the dispatcher.
// It implements ipc.Handler and httpapi.Backend.
type Control struct {
	cfg     ControlConfig
	log     *slog.Logger
	started time.Time
	now     func() time.Time
}

var _ ipc.Handler = (*Control)(nil)

// NewControl creates a control plane over cfg.
func NewControl(cfg ControlConfig) *Control {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Control{cfg: cfg, log: logger, started: time.Now(), now: time.Now}
}

// Status snapshots every desk the engine knows.
func (c *Control) Status(ctx context.Context) (ipc.StatusData, error) {
	var st ipc.StatusData
	err := c.cfg.Dispatcher.Do(ctx, func() error {
		st.UptimeSeconds = int64(c.now().Sub(c.started).Seconds())
		st.Mode = movemode.ModeNone.String()
		if c.cfg.Modes != nil {
			st.Mode = c.cfg.Modes.Mode().String()
			st.Session = c.cfg.Modes.SessionID()
		}
		if c.cfg.Focus != nil {
			if desk, err := c.cfg.Focus.CurrentDesk(); err == nil {
				st.Current = &desk
			}
			if id, err := c.cfg.Focus.FocusedWindow(); err == nil {
				st.Focused = uint32(id)
			}
		}
		st.Desks = c.cfg.Layout.Snapshot()
		return nil
	})
	return st, err
}

// Desk returns the state of one desk.
func (c *Control) Desk(ctx context.Context, desk platform.Desk) (tiling.DeskState, error) {
	var st tiling.DeskState
	err := c.cfg.Dispatcher.Do(ctx, func() error {
		st = c.cfg.Layout.State(desk)
		return nil
	})
	return st, err
}

// RunAction runs a named action as if its hotkey was pressed.
func (c *Control) RunAction(ctx context.Context, name, param string) error {
	return c.cfg.Dispatcher.Do(ctx, func() error {
		return c.cfg.Actions.Run(name, param)
	})
}

// SetDesk applies and persists a desk record, then adopts windows already
// present on the desk when tiling got enabled.
func (c *Control) SetDesk(ctx context.Context, desk ipc.SetDeskPayload) error {
	if err := desk.Validate(); err != nil {
		return err
	}
	conf := desk.Conf()
	return c.cfg.Dispatcher.Do(ctx, func() error {
		c.cfg.Layout.ChangeDeskConf(conf)
		c.adopt(conf.Desk())
		c.log.Info("desk conf changed", "desk", conf.Desk(), "nb_stacks", conf.NbStacks, "use_rows", conf.UseRows, "layout", conf.Layout)
		return nil
	})
}

// Reload re-reads configuration and applies it to the engine.
func (c *Control) Reload(ctx context.Context) error {
	if c.cfg.Reload == nil {
		return errors.New("reload not supported")
	}
	settings, err := c.cfg.Reload()
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	return c.cfg.Dispatcher.Do(ctx, func() error {
		c.cfg.Layout.UpdateSettings(settings)
		c.AdoptAll()
		c.log.Info("config reloaded", "vdesks", len(settings.VDesks))
		return nil
	})
}

// AdoptAll tiles the known windows of every desk that should tile. It must
// run on the dispatcher goroutine.
func (c *Control) AdoptAll() {
	if c.cfg.Inventory == nil {
		return
	}
	for _, desk := range c.cfg.Inventory.Desks() {
		c.adopt(desk)
	}
}

func (c *Control) adopt(desk platform.Desk) {
	if c.cfg.Inventory == nil || !c.cfg.Layout.DeskShouldTile(desk) {
		return
	}
	for _, id := range c.cfg.Inventory.Windows(desk) {
		if !c.cfg.Layout.IsTiled(id) {
			c.cfg.Layout.AddClient(id)
		}
	}
}
