//go:build linux

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/stacktile/internal/actions"
	"github.com/1broseidon/stacktile/internal/config"
	"github.com/1broseidon/stacktile/internal/events"
	"github.com/1broseidon/stacktile/internal/hooks"
	"github.com/1broseidon/stacktile/internal/hotkeys"
	"github.com/1broseidon/stacktile/internal/httpapi"
	"github.com/1broseidon/stacktile/internal/ipc"
	"github.com/1broseidon/stacktile/internal/movemode"
	"github.com/1broseidon/stacktile/internal/platform"
	"github.com/1broseidon/stacktile/internal/runtimepath"
	"github.com/1broseidon/stacktile/internal/store"
	"github.com/1broseidon/stacktile/internal/tiling"
)

// Options configures Run.
type Options struct {
	// ConfigPath overrides the default config location.
	ConfigPath string
	Logger     *slog.Logger
	// Reload triggers a config reload on every receive.
	Reload <-chan struct{}
}

// Run starts the daemon and blocks until ctx is cancelled or the X
// connection fails.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	path := opts.ConfigPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	first, err := config.LoadFromPath(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	storePath := first.Config.Store.Path
	if storePath == "" {
		if storePath, err = config.DefaultStorePath(); err != nil {
			return err
		}
	}
	st, err := store.Open(storePath)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := LoadSettings(path, st)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := res.Config
	logger.Info("configuration loaded", "path", path, "vdesks", len(cfg.VDesks), "hotkeys", len(cfg.Hotkeys), "store", storePath)

	comp, err := platform.NewLinuxCompositorFromDisplay()
	if err != nil {
		return err
	}
	defer comp.Disconnect()
	conn := comp.Connection()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dispatcher := NewDispatcher(256, logger)
	post := dispatcher.Poster()
	bus := events.NewBus()

	engine := tiling.NewEngine(comp, cfg.ToSettings(),
		tiling.WithLogger(logger.With("component", "tiling")),
		tiling.WithSaver(st),
		tiling.WithPublisher(bus),
	)

	var ctrl *movemode.Controller
	grabber := movemode.NewXGrabber(comp.XUtil(), comp.RootWindow(), func(key string) {
		post(func() { ctrl.HandleKey(key) })
	}, logger.With("component", "grab"))
	overlay := movemode.NewOverlayManager(comp.XUtil(), comp.RootWindow())
	defer overlay.Cleanup()
	ctrl = movemode.NewController(engine, comp, grabber, overlay,
		movemode.WithLogger(logger.With("component", "movemode")),
		movemode.WithClock(movemode.PostingClock(post)),
		movemode.WithPublisher(bus),
	)

	adapter := hooks.NewAdapter(engine, ctrl, logger.With("component", "hooks"))
	watcher := NewWatcher(WatcherConfig{Logger: logger.With("component", "watcher")},
		SnapshotFromSource(comp, logger), adapter.Handle)
	registry := actions.New(engine, ctrl, comp, logger.With("component", "actions"))

	keys := hotkeys.NewHandler(comp.XUtil(), comp.RootWindow(), logger.With("component", "hotkeys"))
	runHotkey := func(action, param string) {
		post(func() {
			if err := registry.Run(action, param); err != nil {
				logger.Info("action not run", "action", action, "err", err)
			}
		})
	}
	if err := keys.Bind(cfg.Hotkeys, actions.Known, runHotkey); err != nil {
		logger.Warn("some hotkeys were not bound", "err", err)
	}

	// Reloads arrive from IPC and the file watcher concurrently.
	var reloadMu sync.Mutex
	reload := func() (tiling.Settings, error) {
		reloadMu.Lock()
		defer reloadMu.Unlock()
		next, err := LoadSettings(path, st)
		if err != nil {
			return tiling.Settings{}, err
		}
		keys.Unbind()
		if err := keys.Bind(next.Config.Hotkeys, actions.Known, runHotkey); err != nil {
			logger.Warn("some hotkeys were not bound", "err", err)
		}
		return next.Config.ToSettings(), nil
	}

	control := NewControl(ControlConfig{
		Dispatcher: dispatcher,
		Layout:     engine,
		Modes:      ctrl,
		Focus:      comp,
		Inventory:  watcher,
		Actions:    registry,
		Reload:     reload,
		Logger:     logger.With("component", "control"),
	})

	socket := cfg.IPC.Socket
	if socket == "" {
		if socket, err = runtimepath.SocketPath(); err != nil {
			return err
		}
	}
	ipcServer := ipc.NewServer(socket, control, logger.With("component", "ipc"))
	if err := ipcServer.Start(); err != nil {
		return err
	}
	defer ipcServer.Stop()

	if cfg.HTTP.Listen != "" {
		api := httpapi.NewServer(cfg.HTTP.Listen, control, bus, logger.With("component", "http"))
		if err := api.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			if err := api.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown", "err", err)
			}
		}()
	}

	// The dispatcher outlives ctx so windows can be restored on shutdown.
	dispatchCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	go dispatcher.Run(dispatchCtx)
	go watcher.Run(ctx, post)

	if err := conn.WatchRoot(watcher.Trigger); err != nil {
		return err
	}
	watcher.Trigger()

	reloadNow := func() {
		reloadCtx, done := context.WithTimeout(ctx, 5*time.Second)
		defer done()
		if err := control.Reload(reloadCtx); err != nil {
			logger.Error("config reload failed", "err", err)
		}
	}
	if opts.Reload != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-opts.Reload:
					reloadNow()
				}
			}
		}()
	}
	go func() {
		err := config.Watch(ctx, append([]string{path}, res.Files...), logger.With("component", "config"), reloadNow)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("config watch stopped", "err", err)
		}
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		logger.Info("entering X event loop")
		conn.EventLoop()
	}()

	select {
	case <-ctx.Done():
		conn.Quit()
	case <-loopDone:
		logger.Warn("X event loop exited")
	}

	// Put every window back where it came from before the connection closes.
	shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()
	err = dispatcher.Do(shutdownCtx, func() error {
		ctrl.End()
		engine.DisableAll()
		return nil
	})
	if err != nil && !errors.Is(err, ErrStopped) {
		logger.Warn("restoring windows failed", "err", err)
	}
	stopDispatcher()
	keys.Unbind()
	cancel()
	logger.Info("daemon stopped")
	return nil
}
