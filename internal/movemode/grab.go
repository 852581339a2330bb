package movemode

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// XGrabber grabs the keyboard through an InputOnly window and reports key
// presses as strings.
type XGrabber struct {
	xu    *xgbutil.XUtil
	root  xproto.Window
	onKey func(key string)
	log   *slog.Logger

	grabWindow         xproto.Window
	keyHandlerAttached bool
	grabbed            bool
}

var _ Grabber = (*XGrabber)(nil)

// NewXGrabber creates a grabber. onKey is called from the X event loop.
func NewXGrabber(xu *xgbutil.XUtil, root xproto.Window, onKey func(key string), log *slog.Logger) *XGrabber {
	if log == nil {
		log = slog.Default()
	}
	return &XGrabber{xu: xu, root: root, onKey: onKey, log: log}
}

// CreateInputWindow creates and maps the InputOnly window key events are
// delivered to.
func (g *XGrabber) CreateInputWindow() error {
	if g.grabWindow != 0 {
		return nil
	}
	if g.xu == nil {
		return fmt.Errorf("no X connection")
	}
	conn := g.xu.Conn()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return fmt.Errorf("allocate input window: %w", err)
	}

	err = xproto.CreateWindowChecked(
		conn,
		0, // depth (must be 0 for InputOnly)
		wid,
		g.root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOnly,
		xproto.Visualid(0),
		xproto.CwEventMask,
		[]uint32{uint32(xproto.EventMaskKeyPress)},
	).Check()
	if err != nil {
		return fmt.Errorf("create input window: %w", err)
	}

	xproto.MapWindow(conn, wid)
	g.grabWindow = wid
	return nil
}

// GrabKeyboard takes the keyboard for the input window.
func (g *XGrabber) GrabKeyboard() error {
	if g.grabWindow == 0 {
		return fmt.Errorf("no input window")
	}
	conn := g.xu.Conn()

	grab := func() (*xproto.GrabKeyboardReply, error) {
		return xproto.GrabKeyboard(
			conn,
			false,
			g.root,
			xproto.TimeCurrentTime,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Reply()
	}

	reply, err := grab()
	if err != nil {
		return fmt.Errorf("grab keyboard: %w", err)
	}

	// The action hotkey that entered the mode may still hold a passive grab
	// owned by this client.
	if reply.Status == xproto.GrabStatusAlreadyGrabbed {
		xproto.UngrabKeyboard(conn, xproto.TimeCurrentTime)
		reply, err = grab()
		if err != nil {
			return fmt.Errorf("grab keyboard: %w", err)
		}
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("keyboard grab failed with status %d", reply.Status)
	}
	g.grabbed = true

	xevent.RedirectKeyEvents(g.xu, g.grabWindow)
	if !g.keyHandlerAttached {
		xevent.KeyPressFun(g.handleKeyPress).Connect(g.xu, g.grabWindow)
		g.keyHandlerAttached = true
	}
	g.log.Debug("keyboard grabbed", "window", g.grabWindow)
	return nil
}

// Release ungrabs the keyboard and destroys the input window.
func (g *XGrabber) Release() {
	if g.xu == nil {
		return
	}
	conn := g.xu.Conn()

	if g.grabbed {
		xproto.UngrabKeyboard(conn, xproto.TimeCurrentTime)
		xevent.RedirectKeyEvents(g.xu, 0)
		g.grabbed = false
		g.log.Debug("keyboard released")
	}
	if g.grabWindow != 0 {
		if g.keyHandlerAttached {
			xevent.Detach(g.xu, g.grabWindow)
			g.keyHandlerAttached = false
		}
		xproto.DestroyWindow(conn, g.grabWindow)
		g.grabWindow = 0
	}
}

func (g *XGrabber) handleKeyPress(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
	key := keybind.LookupString(xu, ev.State, ev.Detail)
	if key == "" {
		key = keybind.KeysymToStr(keybind.KeysymGet(xu, ev.Detail, 0))
	}
	if key == "" || g.onKey == nil {
		return
	}
	g.onKey(key)
}
