package movemode

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/stacktile/internal/platform"
	"github.com/1broseidon/stacktile/internal/tiling"
)

// Overlay colors
const (
	ColorSelection = 0x3498db // Blue - focused window, transition bar
	ColorLabelBg   = 0x27ae60 // Green - label boxes
	ColorArrowBg   = 0x7f8c8d // Gray - move direction boxes
	ColorHintText  = 0xf5f7fa // Light text
	ColorHintBg    = 0x1f2933 // Dark legend background
)

// BorderThickness is the width of the focused window border in pixels.
const BorderThickness = 4

const transitionWidth = 4

const (
	hintMargin     = 12
	hintPaddingX   = 10
	hintPaddingY   = 8
	hintLineHeight = 16
	hintCharWidth  = 7
	hintMinWidth   = 220

	labelPaddingX = 8
	labelPaddingY = 4
)

// textBox is an override-redirect window showing a few lines of text.
type textBox struct {
	Window xproto.Window
	mapped bool
}

// BorderOverlay represents a rectangular border made of 4 thin windows
type BorderOverlay struct {
	Top     xproto.Window
	Bottom  xproto.Window
	Left    xproto.Window
	Right   xproto.Window
	created bool
	mapped  bool
}

// OverlayManager draws mode feedback with override-redirect windows.
type OverlayManager struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	gc           xproto.Gcontext
	font         xproto.Font
	fontReady    bool
	fontDisabled bool

	labels    []*textBox
	arrows    []*textBox
	legend    *textBox
	focus     *BorderOverlay
	bar       xproto.Window
	barMapped bool
}

var _ Overlay = (*OverlayManager)(nil)

// NewOverlayManager creates a new overlay manager
func NewOverlayManager(xu *xgbutil.XUtil, root xproto.Window) *OverlayManager {
	return &OverlayManager{
		xu:     xu,
		root:   root,
		legend: &textBox{},
		focus:  &BorderOverlay{},
	}
}

// ShowLabels draws a label box centered on every target. Labels that no
// longer match typed are hidden.
func (m *OverlayManager) ShowLabels(area platform.Rect, labels []Label, typed string) error {
	if m.xu == nil {
		return fmt.Errorf("no X connection")
	}
	if err := m.ensureBoxes(&m.labels, len(labels)); err != nil {
		return err
	}

	var shown []platform.Rect
	for i, l := range labels {
		box := m.labels[i]
		if !strings.HasPrefix(l.Text, typed) {
			m.hideBox(box)
			continue
		}
		w, h := textDimensions([]string{l.Text}, labelPaddingX, labelPaddingY, 0)
		r := platform.Rect{
			X:      l.Rect.X + (l.Rect.Width-w)/2,
			Y:      l.Rect.Y + (l.Rect.Height-h)/2,
			Width:  w,
			Height: h,
		}
		m.drawBox(box, r, []string{l.Text}, ColorLabelBg, labelPaddingX, labelPaddingY)
		shown = append(shown, r)
	}

	lines := []string{
		"Type a label to pick a window",
		"BackSpace  erase",
		"Esc        cancel",
	}
	if typed != "" {
		lines[0] = "Typed: " + typed
	}
	m.renderLegend(area, lines, shown)
	return nil
}

// ShowMoveHints outlines the window being moved and shows one box per
// available direction.
func (m *OverlayManager) ShowMoveHints(area, win platform.Rect, moves tiling.DirectionSet) error {
	if m.xu == nil {
		return fmt.Errorf("no X connection")
	}
	if err := m.showBorder(m.focus, win, ColorSelection); err != nil {
		return err
	}

	type arrow struct {
		dir  tiling.Direction
		text string
	}
	arrows := []arrow{
		{tiling.DirUp, "^ k"},
		{tiling.DirDown, "v j"},
		{tiling.DirLeft, "< h"},
		{tiling.DirRight, "> l"},
	}
	if err := m.ensureBoxes(&m.arrows, len(arrows)); err != nil {
		return err
	}
	for i, a := range arrows {
		box := m.arrows[i]
		if !moves.Has(a.dir) {
			m.hideBox(box)
			continue
		}
		w, h := textDimensions([]string{a.text}, labelPaddingX, labelPaddingY, 0)
		m.drawBox(box, arrowRect(win, a.dir, w, h), []string{a.text}, ColorArrowBg, labelPaddingX, labelPaddingY)
	}

	m.renderLegend(area, []string{
		"Move: arrows or h j k l",
		"Enter/Esc  done",
	}, []platform.Rect{win})
	return nil
}

// ShowTransition draws the selected stack boundary.
func (m *OverlayManager) ShowTransition(area, line platform.Rect) error {
	if m.xu == nil {
		return fmt.Errorf("no X connection")
	}
	if m.bar == 0 {
		wid, err := m.createOverrideRedirectWindow()
		if err != nil {
			return err
		}
		m.bar = wid
	}
	m.updateWindow(m.bar, line.X, line.Y, line.Width, line.Height, ColorSelection)
	xproto.MapWindow(m.xu.Conn(), m.bar)
	m.barMapped = true

	m.renderLegend(area, []string{
		"Resize: arrows or h j k l",
		"Enter/Esc  done",
	}, []platform.Rect{line})
	return nil
}

// Hide hides all overlays without destroying them.
func (m *OverlayManager) Hide() {
	if m.xu == nil {
		return
	}
	for _, box := range m.labels {
		m.hideBox(box)
	}
	for _, box := range m.arrows {
		m.hideBox(box)
	}
	m.hideBox(m.legend)
	m.hideBorder(m.focus)
	if m.barMapped {
		xproto.UnmapWindow(m.xu.Conn(), m.bar)
		m.barMapped = false
	}
}

// Cleanup destroys all overlay windows
func (m *OverlayManager) Cleanup() {
	if m.xu == nil {
		return
	}
	conn := m.xu.Conn()
	for _, box := range append(append([]*textBox{m.legend}, m.labels...), m.arrows...) {
		if box.Window != 0 {
			xproto.DestroyWindow(conn, box.Window)
		}
	}
	m.labels, m.arrows = nil, nil
	m.legend = &textBox{}
	m.destroyBorder(m.focus)
	if m.bar != 0 {
		xproto.DestroyWindow(conn, m.bar)
		m.bar, m.barMapped = 0, false
	}
	if m.fontReady {
		xproto.FreeGC(conn, m.gc)
		xproto.CloseFont(conn, m.font)
		m.fontReady = false
	}
}

func arrowRect(win platform.Rect, dir tiling.Direction, w, h int) platform.Rect {
	cx, cy := win.Center()
	r := platform.Rect{X: cx - w/2, Y: cy - h/2, Width: w, Height: h}
	switch dir {
	case tiling.DirUp:
		r.Y = win.Y + hintMargin
	case tiling.DirDown:
		r.Y = win.Y + win.Height - hintMargin - h
	case tiling.DirLeft:
		r.X = win.X + hintMargin
	case tiling.DirRight:
		r.X = win.X + win.Width - hintMargin - w
	}
	return r
}

func (m *OverlayManager) ensureBoxes(boxes *[]*textBox, count int) error {
	for i := count; i < len(*boxes); i++ {
		m.hideBox((*boxes)[i])
	}
	for len(*boxes) < count {
		wid, err := m.createOverrideRedirectWindow()
		if err != nil {
			return err
		}
		*boxes = append(*boxes, &textBox{Window: wid})
	}
	return nil
}

func (m *OverlayManager) hideBox(box *textBox) {
	if box == nil || !box.mapped {
		return
	}
	xproto.UnmapWindow(m.xu.Conn(), box.Window)
	box.mapped = false
}

// drawBox places box at r, fills it with bg and writes lines into it.
func (m *OverlayManager) drawBox(box *textBox, r platform.Rect, lines []string, bg uint32, padX, padY int) {
	conn := m.xu.Conn()
	m.updateWindow(box.Window, r.X, r.Y, r.Width, r.Height, bg)
	xproto.MapWindow(conn, box.Window)
	box.mapped = true

	if !m.ensureFont() {
		return
	}
	xproto.ChangeGC(conn, m.gc, xproto.GcForeground|xproto.GcBackground, []uint32{ColorHintText, bg})

	baseline := padY + hintLineHeight - 4
	for i, line := range lines {
		if line == "" {
			continue
		}
		if len(line) > 255 {
			line = line[:255]
		}
		xproto.ImageText8(
			conn,
			byte(len(line)),
			xproto.Drawable(box.Window),
			m.gc,
			int16(padX),
			int16(baseline+i*hintLineHeight),
			line,
		)
	}
}

func (m *OverlayManager) renderLegend(area platform.Rect, lines []string, avoid []platform.Rect) {
	if area.Width <= 0 || area.Height <= 0 {
		m.hideBox(m.legend)
		return
	}
	if m.legend.Window == 0 {
		wid, err := m.createOverrideRedirectWindow()
		if err != nil {
			return
		}
		m.legend.Window = wid
	}
	width, height := textDimensions(lines, hintPaddingX, hintPaddingY, hintMinWidth)
	width = min(width, max(area.Width-2*hintMargin, 1))
	height = min(height, max(area.Height-2*hintMargin, 1))
	x, y := chooseHintPosition(area, avoid, width, height)
	m.drawBox(m.legend, platform.Rect{X: x, Y: y, Width: width, Height: height}, lines, ColorHintBg, hintPaddingX, hintPaddingY)
}

// ensureFont opens the core font and GC used for all text. Failure disables
// text but keeps the boxes.
func (m *OverlayManager) ensureFont() bool {
	if m.fontReady {
		return true
	}
	if m.fontDisabled {
		return false
	}
	conn := m.xu.Conn()

	font, err := xproto.NewFontId(conn)
	if err != nil {
		m.fontDisabled = true
		return false
	}
	opened := false
	for _, name := range []string{"fixed", "9x15", "8x13", "6x13"} {
		if xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check() == nil {
			opened = true
			break
		}
	}
	if !opened {
		m.fontDisabled = true
		return false
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.CloseFont(conn, font)
		m.fontDisabled = true
		return false
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(m.root),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{ColorHintText, ColorHintBg, uint32(font), 0},
	).Check()
	if err != nil {
		xproto.CloseFont(conn, font)
		m.fontDisabled = true
		return false
	}

	m.gc, m.font, m.fontReady = gc, font, true
	return true
}

// showBorder creates or updates a border around the given rectangle
func (m *OverlayManager) showBorder(border *BorderOverlay, rect platform.Rect, color uint32) error {
	if !border.created {
		if err := m.createBorderWindows(border); err != nil {
			return err
		}
	}

	x, y := rect.X, rect.Y
	w, h := rect.Width, rect.Height
	t := BorderThickness

	m.updateWindow(border.Top, x, y, w, t, color)
	m.updateWindow(border.Bottom, x, y+h-t, w, t, color)
	m.updateWindow(border.Left, x, y+t, t, h-2*t, color)
	m.updateWindow(border.Right, x+w-t, y+t, t, h-2*t, color)

	conn := m.xu.Conn()
	xproto.MapWindow(conn, border.Top)
	xproto.MapWindow(conn, border.Bottom)
	xproto.MapWindow(conn, border.Left)
	xproto.MapWindow(conn, border.Right)

	border.mapped = true
	return nil
}

func (m *OverlayManager) hideBorder(border *BorderOverlay) {
	if !border.mapped {
		return
	}
	conn := m.xu.Conn()
	xproto.UnmapWindow(conn, border.Top)
	xproto.UnmapWindow(conn, border.Bottom)
	xproto.UnmapWindow(conn, border.Left)
	xproto.UnmapWindow(conn, border.Right)
	border.mapped = false
}

func (m *OverlayManager) destroyBorder(border *BorderOverlay) {
	conn := m.xu.Conn()
	for _, w := range []xproto.Window{border.Top, border.Bottom, border.Left, border.Right} {
		if w != 0 {
			xproto.DestroyWindow(conn, w)
		}
	}
	*border = BorderOverlay{}
}

func (m *OverlayManager) createBorderWindows(border *BorderOverlay) error {
	for _, w := range []*xproto.Window{&border.Top, &border.Bottom, &border.Left, &border.Right} {
		wid, err := m.createOverrideRedirectWindow()
		if err != nil {
			return err
		}
		*w = wid
	}
	border.created = true
	return nil
}

// createOverrideRedirectWindow creates a single override-redirect window
func (m *OverlayManager) createOverrideRedirectWindow() (xproto.Window, error) {
	conn := m.xu.Conn()
	screen := m.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		m.root,
		0, 0,
		1, 1,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwOverrideRedirect|xproto.CwBackPixel,
		// Values follow mask bit order: back_pixel before override_redirect.
		[]uint32{0, 1},
	).Check()
	if err != nil {
		return 0, fmt.Errorf("create overlay window: %w", err)
	}
	return wid, nil
}

// updateWindow moves, resizes, and recolors a window
func (m *OverlayManager) updateWindow(wid xproto.Window, x, y, width, height int, color uint32) {
	conn := m.xu.Conn()
	width = max(width, 1)
	height = max(height, 1)

	xproto.ConfigureWindow(
		conn,
		wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(x),
			uint32(y),
			uint32(width),
			uint32(height),
			xproto.StackModeAbove,
		},
	)
	xproto.ChangeWindowAttributes(conn, wid, xproto.CwBackPixel, []uint32{color})
	xproto.ClearArea(conn, false, wid, 0, 0, 0, 0)
}

// textDimensions sizes a box for lines of the fixed core font.
func textDimensions(lines []string, padX, padY, minWidth int) (width, height int) {
	maxChars := 0
	for _, line := range lines {
		maxChars = max(maxChars, len(line))
	}
	width = max(maxChars*hintCharWidth+2*padX, minWidth)
	height = len(lines)*hintLineHeight + 2*padY
	return width, height
}

// chooseHintPosition picks the first area corner whose box does not cover
// any of avoidRects.
func chooseHintPosition(bounds platform.Rect, avoidRects []platform.Rect, width, height int) (int, int) {
	width = max(width, 1)
	height = max(height, 1)

	left := bounds.X + hintMargin
	right := max(bounds.X+bounds.Width-hintMargin-width, left)
	top := bounds.Y + hintMargin
	bottom := max(bounds.Y+bounds.Height-hintMargin-height, top)

	candidates := []platform.Rect{
		{X: right, Y: top, Width: width, Height: height},
		{X: left, Y: top, Width: width, Height: height},
		{X: right, Y: bottom, Width: width, Height: height},
		{X: left, Y: bottom, Width: width, Height: height},
	}

	for _, candidate := range candidates {
		covers := false
		for _, avoid := range avoidRects {
			if rectsIntersect(candidate, avoid) {
				covers = true
				break
			}
		}
		if !covers {
			return clampHintOrigin(candidate.X, candidate.Y, bounds, width, height)
		}
	}
	return clampHintOrigin(candidates[0].X, candidates[0].Y, bounds, width, height)
}

func clampHintOrigin(x, y int, bounds platform.Rect, width, height int) (int, int) {
	left := bounds.X + hintMargin
	right := bounds.X + bounds.Width - hintMargin - width
	if right < left {
		left = bounds.X
		right = bounds.X + bounds.Width - width
	}
	right = max(right, left)

	top := bounds.Y + hintMargin
	bottom := bounds.Y + bounds.Height - hintMargin - height
	if bottom < top {
		top = bounds.Y
		bottom = bounds.Y + bounds.Height - height
	}
	bottom = max(bottom, top)

	return min(max(x, left), right), min(max(y, top), bottom)
}

func rectsIntersect(a, b platform.Rect) bool {
	return a.X < b.X+b.Width &&
		a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height &&
		a.Y+a.Height > b.Y
}
