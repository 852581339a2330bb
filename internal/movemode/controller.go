package movemode

import (
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/1broseidon/stacktile/internal/events"
	"github.com/1broseidon/stacktile/internal/platform"
	"github.com/1broseidon/stacktile/internal/tiling"
)

// DefaultTimeout ends an idle mode.
const DefaultTimeout = 5 * time.Second

// Layout is the part of the tiling engine the controller drives.
type Layout interface {
	Targets(desk platform.Desk) []tiling.Target
	Expected(id platform.WindowID) (platform.Rect, bool)
	UsableArea(desk platform.Desk) (platform.Rect, bool)
	UseRows(desk platform.Desk) bool
	StackOf(id platform.WindowID) int
	KeyHints() string

	Move(id platform.WindowID, dir tiling.Direction) bool
	AvailableMoves(id platform.WindowID) tiling.DirectionSet
	Swap(a, b platform.WindowID) bool
	Transitions(desk platform.Desk) []tiling.Transition
	AdjustTransition(desk platform.Desk, index, delta int) bool
}

// Grabber acquires exclusive keyboard input.
type Grabber interface {
	CreateInputWindow() error
	GrabKeyboard() error
	// Release ungrabs the keyboard and destroys the input window. It must be
	// safe to call whatever was acquired.
	Release()
}

// Overlay draws the on-screen feedback of a mode.
type Overlay interface {
	ShowLabels(area platform.Rect, labels []Label, typed string) error
	ShowMoveHints(area, win platform.Rect, moves tiling.DirectionSet) error
	ShowTransition(area, line platform.Rect) error
	Hide()
}

// Controller runs the interactive modes. Only one mode is active at a time.
// It is not safe for concurrent use; key presses and timer callbacks must be
// delivered on the goroutine that owns the engine.
type Controller struct {
	layout  Layout
	comp    platform.Compositor
	grab    Grabber
	overlay Overlay
	clock   Clock
	pub     tiling.Publisher
	log     *slog.Logger
	timeout time.Duration

	sess *session
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock replaces the timer source.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithPublisher receives mode entered/ended events.
func WithPublisher(p tiling.Publisher) Option {
	return func(c *Controller) { c.pub = p }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewController creates an idle controller.
func NewController(layout Layout, comp platform.Compositor, grab Grabber, overlay Overlay, opts ...Option) *Controller {
	c := &Controller{
		layout:  layout,
		comp:    comp,
		grab:    grab,
		overlay: overlay,
		clock:   systemClock{},
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	if c.sess == nil {
		return ModeNone
	}
	return c.sess.mode
}

// Active reports whether a mode holds the keyboard.
func (c *Controller) Active() bool {
	return c.sess != nil
}

// SessionID returns the id of the active session, or "".
func (c *Controller) SessionID() string {
	if c.sess == nil {
		return ""
	}
	return c.sess.id
}

// Buffer returns the label characters typed so far.
func (c *Controller) Buffer() string {
	if c.sess == nil {
		return ""
	}
	return c.sess.buffer
}

// Labels returns the labels of the active picking mode.
func (c *Controller) Labels() []Label {
	if c.sess == nil {
		return nil
	}
	return append([]Label(nil), c.sess.labels...)
}

// EnterSwap lets the user pick a window to swap focused with.
func (c *Controller) EnterSwap(desk platform.Desk, focused platform.WindowID) bool {
	return c.enterPicking(ModeSwapping, SwapOp{Focused: focused}, desk, focused)
}

// EnterGo lets the user pick a window to focus.
func (c *Controller) EnterGo(desk platform.Desk, focused platform.WindowID) bool {
	return c.enterPicking(ModeGoing, PickOp{Focused: focused, Purpose: PurposeFocus}, desk, focused)
}

func (c *Controller) enterPicking(mode Mode, op PendingOp, desk platform.Desk, focused platform.WindowID) bool {
	c.End()

	all := c.layout.Targets(desk)
	if len(all) < 2 {
		return false
	}
	targets := make([]tiling.Target, 0, len(all))
	for _, t := range all {
		if t.ID != focused {
			targets = append(targets, t)
		}
	}

	texts := GenerateLabels(c.alphabet(), len(targets))
	if texts == nil {
		c.log.Warn("key hints cannot label targets", "keyhints", c.alphabet(), "targets", len(targets))
		return false
	}
	labels := make([]Label, len(targets))
	for i, t := range targets {
		labels[i] = Label{Text: texts[i], Window: t.ID, Rect: t.Rect}
	}

	sess := c.begin(mode, op, desk)
	sess.labels = labels
	area, _ := c.layout.UsableArea(desk)
	if err := c.overlay.ShowLabels(area, labels, ""); err != nil {
		c.log.Warn("label overlay failed", "session", sess.id, "err", err)
	}
	return c.acquire(sess)
}

// EnterMove binds the direction keys to moves of focused.
func (c *Controller) EnterMove(desk platform.Desk, focused platform.WindowID) bool {
	c.End()

	if _, ok := c.layout.Expected(focused); !ok {
		return false
	}
	sess := c.begin(ModeMoving, MoveOp{Focused: focused}, desk)
	c.showMoveHints(sess, focused)
	return c.acquire(sess)
}

// EnterTransition binds the direction keys to the stack boundary next to the
// focused window's stack.
func (c *Controller) EnterTransition(desk platform.Desk, focused platform.WindowID) bool {
	c.End()

	trs := c.layout.Transitions(desk)
	stack := c.layout.StackOf(focused)
	if len(trs) == 0 || stack < 0 {
		return false
	}
	index := min(stack, len(trs)-1)

	sess := c.begin(ModeTransition, TransitionOp{Index: index}, desk)
	c.showTransition(sess)
	return c.acquire(sess)
}

func (c *Controller) begin(mode Mode, op PendingOp, desk platform.Desk) *session {
	sess := &session{
		id:   uuid.NewString(),
		mode: mode,
		op:   op,
		desk: desk,
	}
	c.sess = sess
	c.log.Debug("entering mode", "mode", mode, "session", sess.id, "desk", desk)
	return sess
}

// acquire takes the keyboard and arms the timer. On failure the mode is torn
// down through End.
func (c *Controller) acquire(sess *session) bool {
	if err := c.grab.CreateInputWindow(); err != nil {
		c.log.Warn("input window unavailable", "session", sess.id, "err", err)
		c.End()
		return false
	}
	if err := c.grab.GrabKeyboard(); err != nil {
		c.log.Warn("keyboard grab failed", "session", sess.id, "err", err)
		c.End()
		return false
	}
	sess.deadline = c.clock.Now().Add(c.timeout)
	sess.timer = c.clock.AfterFunc(c.timeout, c.expire(sess.id))
	sess.entered = true
	c.publish(events.Event{Kind: events.ModeEntered, Desk: sess.desk.String(), Mode: sess.mode.String(), Session: sess.id})
	return true
}

func (c *Controller) expire(id string) func() {
	return func() {
		if c.sess == nil || c.sess.id != id {
			return
		}
		c.log.Debug("mode timed out", "session", id)
		c.End()
	}
}

// rearm points the timer at the session's fixed deadline.
func (c *Controller) rearm(sess *session) {
	remaining := sess.deadline.Sub(c.clock.Now())
	if remaining <= 0 {
		c.End()
		return
	}
	if sess.timer != nil {
		sess.timer.Stop()
	}
	sess.timer = c.clock.AfterFunc(remaining, c.expire(sess.id))
}

// End tears the active mode down. It is a no-op when no mode is active.
func (c *Controller) End() {
	sess := c.sess
	if sess == nil {
		return
	}
	c.sess = nil
	if sess.timer != nil {
		sess.timer.Stop()
	}
	c.grab.Release()
	c.overlay.Hide()
	c.log.Debug("mode ended", "mode", sess.mode, "session", sess.id)
	if sess.entered {
		c.publish(events.Event{Kind: events.ModeEnded, Desk: sess.desk.String(), Mode: sess.mode.String(), Session: sess.id})
	}
}

// HandleKey processes one key press. key is a keysym name such as "Return"
// or "Up", or the typed character for printable keys.
func (c *Controller) HandleKey(key string) {
	sess := c.sess
	if sess == nil {
		return
	}

	switch key {
	case "Return", "KP_Enter", "Escape":
		c.End()
		return
	}

	switch sess.mode {
	case ModeMoving:
		c.handleMoveKey(sess, key)
		return
	case ModeTransition:
		c.handleTransitionKey(sess, key)
		return
	}

	if key == "BackSpace" {
		if sess.buffer != "" {
			_, size := utf8.DecodeLastRuneInString(sess.buffer)
			sess.buffer = sess.buffer[:len(sess.buffer)-size]
			c.refreshLabels(sess)
		}
		return
	}
	if utf8.RuneCountInString(key) != 1 || !strings.Contains(c.alphabet(), key) {
		return
	}
	next := sess.buffer + key
	if !hasLabelPrefix(sess.labels, next) {
		return
	}
	sess.buffer = next

	target, ok := sess.match(next)
	if !ok {
		c.refreshLabels(sess)
		return
	}
	c.dispatch(sess.op, target)
	if c.sess == sess {
		c.End()
	}
}

func (c *Controller) dispatch(op PendingOp, target Label) {
	switch op := op.(type) {
	case SwapOp:
		if !c.layout.Swap(op.Focused, target.Window) {
			c.log.Warn("swap refused", "window", op.Focused, "target", target.Window)
		}
	case PickOp:
		switch op.Purpose {
		case PurposeFocus:
			if err := c.comp.Activate(target.Window); err != nil {
				c.log.Warn("activate failed", "window", target.Window, "err", err)
				return
			}
			x, y := target.Rect.Center()
			if err := c.comp.WarpPointer(x, y); err != nil {
				c.log.Debug("pointer warp failed", "err", err)
			}
		default:
			c.log.Error("unknown pick purpose", "purpose", op.Purpose)
		}
	default:
		c.log.Error("operation does not take a picked target", "op", op)
	}
}

func keyDirection(key string) (tiling.Direction, bool) {
	switch key {
	case "Up", "k":
		return tiling.DirUp, true
	case "Down", "j":
		return tiling.DirDown, true
	case "Left", "h":
		return tiling.DirLeft, true
	case "Right", "l":
		return tiling.DirRight, true
	}
	return 0, false
}

func (c *Controller) handleMoveKey(sess *session, key string) {
	dir, ok := keyDirection(key)
	if !ok {
		return
	}
	op, ok := sess.op.(MoveOp)
	if !ok {
		c.log.Error("moving mode without a move operation", "session", sess.id)
		c.End()
		return
	}
	if c.layout.Move(op.Focused, dir) {
		c.showMoveHints(sess, op.Focused)
	}
	c.rearm(sess)
}

func (c *Controller) handleTransitionKey(sess *session, key string) {
	dir, ok := keyDirection(key)
	if !ok {
		return
	}
	op, ok := sess.op.(TransitionOp)
	if !ok {
		c.log.Error("transition mode without a transition operation", "session", sess.id)
		c.End()
		return
	}

	var delta int
	if c.layout.UseRows(sess.desk) {
		switch dir {
		case tiling.DirUp:
			delta = -tiling.ResizeStep
		case tiling.DirDown:
			delta = tiling.ResizeStep
		}
	} else {
		switch dir {
		case tiling.DirLeft:
			delta = -tiling.ResizeStep
		case tiling.DirRight:
			delta = tiling.ResizeStep
		}
	}
	if delta != 0 && c.layout.AdjustTransition(sess.desk, op.Index, delta) {
		c.showTransition(sess)
	}
	c.rearm(sess)
}

func (c *Controller) refreshLabels(sess *session) {
	area, _ := c.layout.UsableArea(sess.desk)
	if err := c.overlay.ShowLabels(area, sess.labels, sess.buffer); err != nil {
		c.log.Warn("label overlay failed", "session", sess.id, "err", err)
	}
}

func (c *Controller) showMoveHints(sess *session, id platform.WindowID) {
	win, ok := c.layout.Expected(id)
	if !ok {
		return
	}
	area, _ := c.layout.UsableArea(sess.desk)
	if err := c.overlay.ShowMoveHints(area, win, c.layout.AvailableMoves(id)); err != nil {
		c.log.Warn("move overlay failed", "session", sess.id, "err", err)
	}
}

func (c *Controller) showTransition(sess *session) {
	op, ok := sess.op.(TransitionOp)
	if !ok {
		return
	}
	area, ok := c.layout.UsableArea(sess.desk)
	if !ok {
		return
	}
	for _, tr := range c.layout.Transitions(sess.desk) {
		if tr.Index != op.Index {
			continue
		}
		line := platform.Rect{X: tr.Pos - transitionWidth/2, Y: area.Y, Width: transitionWidth, Height: area.Height}
		if c.layout.UseRows(sess.desk) {
			line = platform.Rect{X: area.X, Y: tr.Pos - transitionWidth/2, Width: area.Width, Height: transitionWidth}
		}
		if err := c.overlay.ShowTransition(area, line); err != nil {
			c.log.Warn("transition overlay failed", "session", sess.id, "err", err)
		}
		return
	}
}

func (c *Controller) alphabet() string {
	return uniqueRunes(c.layout.KeyHints())
}

func (c *Controller) publish(ev events.Event) {
	if c.pub != nil {
		c.pub.Publish(ev)
	}
}
