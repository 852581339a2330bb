package tiling

import (
	"math/rand"
	"testing"

	"github.com/1broseidon/stacktile/internal/platform"
	"github.com/1broseidon/stacktile/internal/platform/platformtest"
)

var (
	testDesk = platform.Desk{Zone: 0, X: 0, Y: 0}
	testArea = platform.Rect{X: 0, Y: 0, Width: 1200, Height: 800}
)

type recordingSaver struct {
	saved []VDeskConf
}

func (s *recordingSaver) SaveVDesk(c VDeskConf) error {
	s.saved = append(s.saved, c)
	return nil
}

func newTestEngine(t *testing.T, nbStacks int, rows bool) (*Engine, *platformtest.Compositor, *recordingSaver) {
	t.Helper()
	comp := platformtest.New(testArea)
	comp.SetCurrentDesk(testDesk)
	saver := &recordingSaver{}
	settings := DefaultSettings()
	settings.VDesks = []VDeskConf{{Zone: 0, X: 0, Y: 0, NbStacks: nbStacks, UseRows: rows}}
	return NewEngine(comp, settings, WithSaver(saver)), comp, saver
}

func addWindows(t *testing.T, e *Engine, comp *platformtest.Compositor, ids ...platform.WindowID) {
	t.Helper()
	for _, id := range ids {
		comp.AddWindow(id, testDesk, platform.Rect{X: 10, Y: 10, Width: 300, Height: 200})
		e.AddClient(id)
		if !e.IsTiled(id) {
			t.Fatalf("window %d was not tiled", id)
		}
	}
}

func expectRect(t *testing.T, e *Engine, id platform.WindowID, want platform.Rect) {
	t.Helper()
	got, ok := e.Expected(id)
	if !ok {
		t.Fatalf("window %d has no expected geometry", id)
	}
	if got != want {
		t.Fatalf("window %d: expected %v, got %v", id, want, got)
	}
}

// checkLayout verifies stack contiguity, exact coverage and fair splitting.
func checkLayout(t *testing.T, e *Engine, comp *platformtest.Compositor, area platform.Rect) {
	t.Helper()
	st := e.State(testDesk)
	if len(st.Stacks) == 0 {
		return
	}
	start, length := splitAxis(area, st.UseRows)
	crossStart, crossLength := area.Y, area.Height
	if st.UseRows {
		crossStart, crossLength = area.X, area.Width
	}

	if st.Stacks[0].Pos != start {
		t.Fatalf("first stack starts at %d, want %d", st.Stacks[0].Pos, start)
	}
	total := 0
	for i, s := range st.Stacks {
		total += s.Size
		if i+1 < len(st.Stacks) && s.Pos+s.Size != st.Stacks[i+1].Pos {
			t.Fatalf("stack %d ends at %d but stack %d starts at %d", i, s.Pos+s.Size, i+1, st.Stacks[i+1].Pos)
		}
		if len(s.Windows) == 0 {
			t.Fatalf("stack %d is empty but populated stacks follow", i)
		}

		offset := crossStart
		for _, id := range s.Windows {
			r, ok := e.Expected(id)
			if !ok {
				t.Fatalf("window %d has no extra", id)
			}
			if got := comp.Bounds(id); got != r {
				t.Fatalf("window %d: compositor has %v, engine expects %v", id, got, r)
			}
			pos, size, cpos, csize := r.X, r.Width, r.Y, r.Height
			if st.UseRows {
				pos, size, cpos, csize = r.Y, r.Height, r.X, r.Width
			}
			if pos != s.Pos || size != s.Size {
				t.Fatalf("window %d spans %d+%d, stack %d is %d+%d", id, pos, size, i, s.Pos, s.Size)
			}
			if cpos != offset {
				t.Fatalf("window %d starts at %d, want %d", id, cpos, offset)
			}
			fair := crossLength / len(s.Windows)
			if csize < fair || csize > fair+1 {
				t.Fatalf("window %d length %d not within 1 of %d", id, csize, fair)
			}
			offset += csize
		}
		if offset != crossStart+crossLength {
			t.Fatalf("stack %d windows cover %d, want %d", i, offset-crossStart, crossLength)
		}
	}
	if total != length {
		t.Fatalf("stack sizes sum to %d, want %d", total, length)
	}
}

func TestFairSplit(t *testing.T) {
	tests := []struct {
		length, n int
		want      []int
	}{
		{800, 3, []int{267, 267, 266}},
		{1200, 3, []int{400, 400, 400}},
		{10, 4, []int{3, 3, 2, 2}},
		{5, 1, []int{5}},
	}
	for _, tt := range tests {
		got := FairSplit(tt.length, tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("FairSplit(%d,%d) = %v, want %v", tt.length, tt.n, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("FairSplit(%d,%d) = %v, want %v", tt.length, tt.n, got, tt.want)
			}
		}
	}
	if FairSplit(100, 0) != nil {
		t.Fatalf("expected nil for zero parts")
	}
}

func TestGreedySplitCoversLength(t *testing.T) {
	for length := 1; length < 50; length++ {
		for n := 1; n <= MaxStacks; n++ {
			sum := 0
			for _, p := range GreedySplit(length, n) {
				sum += p
			}
			if sum != length {
				t.Fatalf("GreedySplit(%d,%d) sums to %d", length, n, sum)
			}
		}
	}
}

func TestAddThreeWindowsSingleColumnStack(t *testing.T) {
	e, comp, _ := newTestEngine(t, 1, false)
	addWindows(t, e, comp, 1, 2, 3)

	st := e.State(testDesk)
	if len(st.Stacks) != 1 || len(st.Stacks[0].Windows) != 3 {
		t.Fatalf("expected one stack with 3 windows, got %+v", st.Stacks)
	}
	expectRect(t, e, 1, platform.Rect{X: 0, Y: 0, Width: 1200, Height: 267})
	expectRect(t, e, 2, platform.Rect{X: 0, Y: 267, Width: 1200, Height: 267})
	expectRect(t, e, 3, platform.Rect{X: 0, Y: 534, Width: 1200, Height: 266})
	checkLayout(t, e, comp, testArea)
}

func TestAddThreeWindowsSingleRowStack(t *testing.T) {
	e, comp, _ := newTestEngine(t, 1, true)
	addWindows(t, e, comp, 1, 2, 3)

	expectRect(t, e, 1, platform.Rect{X: 0, Y: 0, Width: 400, Height: 800})
	expectRect(t, e, 2, platform.Rect{X: 400, Y: 0, Width: 400, Height: 800})
	expectRect(t, e, 3, platform.Rect{X: 800, Y: 0, Width: 400, Height: 800})
	checkLayout(t, e, comp, testArea)
}

func TestSingleWindowStackIsMaximizedAlongStack(t *testing.T) {
	e, comp, _ := newTestEngine(t, 1, true)
	addWindows(t, e, comp, 1)

	expectRect(t, e, 1, testArea)
	win, _ := comp.Window(1)
	if win.Maximized != platform.MaximizeHorizontal {
		t.Fatalf("expected horizontal maximize, got %v", win.Maximized)
	}

	addWindows(t, e, comp, 2)
	win, _ = comp.Window(1)
	if win.Maximized != platform.MaximizeNone {
		t.Fatalf("expected maximize cleared once the stack is shared, got %v", win.Maximized)
	}
}

func TestAddOpensStacksUpToConfiguredCount(t *testing.T) {
	e, comp, _ := newTestEngine(t, 2, false)
	addWindows(t, e, comp, 1, 2, 3)

	st := e.State(testDesk)
	if len(st.Stacks) != 2 {
		t.Fatalf("expected 2 stacks, got %d", len(st.Stacks))
	}
	if got := st.Stacks[1].Windows; len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("expected second stack [2 3], got %v", got)
	}
	expectRect(t, e, 1, platform.Rect{X: 0, Y: 0, Width: 600, Height: 800})
	checkLayout(t, e, comp, testArea)
}

func TestMoveDownCreatesLowerStackInRowMode(t *testing.T) {
	e, comp, saver := newTestEngine(t, 1, true)
	addWindows(t, e, comp, 1, 2, 3)

	if !e.Move(1, DirDown) {
		t.Fatalf("expected move to succeed")
	}

	st := e.State(testDesk)
	if len(st.Stacks) != 2 {
		t.Fatalf("expected 2 stacks, got %d", len(st.Stacks))
	}
	if got := st.Stacks[1].Windows; len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected stack 1 to hold only window 1, got %v", got)
	}
	expectRect(t, e, 1, platform.Rect{X: 0, Y: 400, Width: 1200, Height: 400})
	expectRect(t, e, 2, platform.Rect{X: 0, Y: 0, Width: 600, Height: 400})
	expectRect(t, e, 3, platform.Rect{X: 600, Y: 0, Width: 600, Height: 400})
	checkLayout(t, e, comp, testArea)

	if comp.Pointer != [2]int{600, 600} {
		t.Fatalf("expected pointer warped to 600,600, got %v", comp.Pointer)
	}
	if conf, _ := e.Conf(testDesk); conf.NbStacks != 2 {
		t.Fatalf("expected stack count raised to 2, got %d", conf.NbStacks)
	}
	if len(saver.saved) != 1 || saver.saved[0].NbStacks != 2 {
		t.Fatalf("expected raised count persisted once, got %+v", saver.saved)
	}
}

func TestMoveOffEdgeAndBackRoundTrip(t *testing.T) {
	for _, rows := range []bool{true, false} {
		e, comp, _ := newTestEngine(t, 1, rows)
		addWindows(t, e, comp, 1, 2, 3)

		out, back := DirUp, DirDown
		if !rows {
			out, back = DirLeft, DirRight
		}
		if !e.Move(1, out) {
			t.Fatalf("rows=%v: expected move %v to succeed", rows, out)
		}
		if n := e.StackCount(testDesk); n != 2 {
			t.Fatalf("rows=%v: expected 2 stacks after moving out, got %d", rows, n)
		}
		if e.StackOf(1) != 0 || e.StackOf(2) != 1 {
			t.Fatalf("rows=%v: expected window 1 alone in the new first stack", rows)
		}
		checkLayout(t, e, comp, testArea)

		if !e.Move(1, back) {
			t.Fatalf("rows=%v: expected move %v to succeed", rows, back)
		}
		if n := e.StackCount(testDesk); n != 1 {
			t.Fatalf("rows=%v: expected 1 stack after moving back, got %d", rows, n)
		}
		for _, id := range []platform.WindowID{1, 2, 3} {
			if e.StackOf(id) != 0 {
				t.Fatalf("rows=%v: window %d not back in stack 0", rows, id)
			}
		}
		checkLayout(t, e, comp, testArea)
	}
}

func TestMoveRefusesToLeaveLoneWindowOnEdge(t *testing.T) {
	e, comp, _ := newTestEngine(t, 1, true)
	addWindows(t, e, comp, 1)

	for _, dir := range []Direction{DirUp, DirDown, DirLeft, DirRight} {
		if e.Move(1, dir) {
			t.Fatalf("expected move %v of a lone window to be refused", dir)
		}
	}
	if moves := e.AvailableMoves(1); moves != 0 {
		t.Fatalf("expected no available moves, got %b", moves)
	}
}

func TestMoveWithinStackSwapsNeighbours(t *testing.T) {
	e, comp, _ := newTestEngine(t, 1, false)
	addWindows(t, e, comp, 1, 2, 3)

	if !e.Move(1, DirDown) {
		t.Fatalf("expected move down within the column to succeed")
	}
	st := e.State(testDesk)
	if got := st.Stacks[0].Windows; got[0] != 2 || got[1] != 1 || got[2] != 3 {
		t.Fatalf("expected order [2 1 3], got %v", got)
	}
	expectRect(t, e, 2, platform.Rect{X: 0, Y: 0, Width: 1200, Height: 267})
	expectRect(t, e, 1, platform.Rect{X: 0, Y: 267, Width: 1200, Height: 267})
	checkLayout(t, e, comp, testArea)

	if !e.Move(1, DirUp) {
		t.Fatalf("expected move up within the column to succeed")
	}
	if got := e.State(testDesk).Stacks[0].Windows; got[0] != 1 {
		t.Fatalf("expected window 1 back on top, got %v", got)
	}
}

func TestAvailableMovesFollowOrientation(t *testing.T) {
	tests := []struct {
		name string
		rows bool
		want []Direction
	}{
		{"rows", true, []Direction{DirUp, DirDown, DirRight}},
		{"columns", false, []Direction{DirLeft, DirRight, DirDown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, comp, _ := newTestEngine(t, 1, tt.rows)
			addWindows(t, e, comp, 1, 2)

			moves := e.AvailableMoves(1)
			for _, d := range tt.want {
				if !moves.Has(d) {
					t.Fatalf("expected %v to be available", d)
				}
			}
			count := 0
			for _, d := range []Direction{DirUp, DirDown, DirLeft, DirRight} {
				if moves.Has(d) {
					count++
				}
			}
			if count != len(tt.want) {
				t.Fatalf("expected exactly %d moves, got %b", len(tt.want), moves)
			}
		})
	}
}

func TestPrimitiveTruthTable(t *testing.T) {
	tests := []struct {
		dir  Direction
		rows bool
		want primitive
	}{
		{DirUp, true, primUpRowsOrLeftCols},
		{DirDown, true, primDownRowsOrRightCols},
		{DirLeft, true, primLeftRowsOrUpCols},
		{DirRight, true, primRightRowsOrDownCols},
		{DirUp, false, primLeftRowsOrUpCols},
		{DirDown, false, primRightRowsOrDownCols},
		{DirLeft, false, primUpRowsOrLeftCols},
		{DirRight, false, primDownRowsOrRightCols},
	}
	for _, tt := range tests {
		if got := primitiveFor(tt.dir, tt.rows); got != tt.want {
			t.Errorf("primitiveFor(%v, rows=%v) = %d, want %d", tt.dir, tt.rows, got, tt.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := map[string]Direction{"left": DirLeft, "Right": DirRight, "up": DirUp, " down ": DirDown, "l": DirLeft}
	for in, want := range tests {
		got, err := ParseDirection(in)
		if err != nil {
			t.Fatalf("ParseDirection(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseDirection(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
	if _, err := ParseDirection(""); err == nil {
		t.Fatalf("expected error for empty direction")
	}
}

func TestSwapTwiceIsIdentity(t *testing.T) {
	e, comp, _ := newTestEngine(t, 2, false)
	addWindows(t, e, comp, 1, 2, 3)

	before1, _ := e.Expected(1)
	before3, _ := e.Expected(3)
	stack1, stack3 := e.StackOf(1), e.StackOf(3)
	max1, _ := comp.MaximizeState(1)

	if !e.Swap(1, 3) {
		t.Fatalf("expected swap to succeed")
	}
	if got, _ := e.Expected(1); got != before3 {
		t.Fatalf("expected window 1 to take %v, got %v", before3, got)
	}
	if e.StackOf(1) != stack3 || e.StackOf(3) != stack1 {
		t.Fatalf("expected stack membership exchanged")
	}
	if got, _ := comp.MaximizeState(3); got != max1 {
		t.Fatalf("expected maximize state carried to window 3, got %v", got)
	}
	checkLayout(t, e, comp, testArea)

	if !e.Swap(1, 3) {
		t.Fatalf("expected second swap to succeed")
	}
	if got, _ := e.Expected(1); got != before1 {
		t.Fatalf("expected window 1 back at %v, got %v", before1, got)
	}
	if got, _ := e.Expected(3); got != before3 {
		t.Fatalf("expected window 3 back at %v, got %v", before3, got)
	}
	if e.StackOf(1) != stack1 || e.StackOf(3) != stack3 {
		t.Fatalf("expected original stacks restored")
	}
	if got, _ := comp.MaximizeState(1); got != max1 {
		t.Fatalf("expected window 1 maximize state restored, got %v", got)
	}
}

func TestSwapRejectsUntiledWindows(t *testing.T) {
	e, comp, _ := newTestEngine(t, 1, false)
	addWindows(t, e, comp, 1)
	if e.Swap(1, 99) {
		t.Fatalf("expected swap with unknown window to fail")
	}
	if e.Swap(1, 1) {
		t.Fatalf("expected swap with itself to fail")
	}
}

func TestToggleFloatingRestoresOriginalState(t *testing.T) {
	e, comp, _ := newTestEngine(t, 1, false)
	orig := platform.Rect{X: 5, Y: 6, Width: 700, Height: 500}
	comp.AddWindow(1, testDesk, orig)
	comp.Update(1, func(w *platform.Window) {
		w.Maximized = platform.MaximizeVertical
		w.Layer = platform.LayerAbove
		w.Border = "fancy"
	})
	e.AddClient(1)
	addWindows(t, e, comp, 2)

	e.ToggleFloating(1)

	win, _ := comp.Window(1)
	if win.Bounds != orig {
		t.Fatalf("expected original geometry %v, got %v", orig, win.Bounds)
	}
	if win.Maximized != platform.MaximizeVertical {
		t.Fatalf("expected original maximize state, got %v", win.Maximized)
	}
	if win.Layer != platform.LayerAbove {
		t.Fatalf("expected original layer, got %v", win.Layer)
	}
	if win.Border != "fancy" {
		t.Fatalf("expected original border, got %q", win.Border)
	}
	if !e.IsFloating(testDesk, 1) || e.IsTiled(1) {
		t.Fatalf("expected window 1 floating and untiled")
	}
	if _, ok := e.Extra(1); ok {
		t.Fatalf("expected extra dropped once the window stopped being tiled")
	}
	expectRect(t, e, 2, testArea)
	checkLayout(t, e, comp, testArea)

	e.ToggleFloating(1)
	if e.IsFloating(testDesk, 1) || !e.IsTiled(1) {
		t.Fatalf("expected window 1 tiled again")
	}
	checkLayout(t, e, comp, testArea)
}

func TestAddIgnoresFloatingFullscreenAndUntilable(t *testing.T) {
	e, comp, _ := newTestEngine(t, 1, false)

	comp.AddWindow(1, testDesk, testArea)
	comp.Update(1, func(w *platform.Window) { w.Fullscreen = true })
	comp.AddWindow(2, testDesk, testArea)
	comp.Update(2, func(w *platform.Window) { w.MinHeight, w.MaxHeight = 100, 100 })
	comp.AddWindow(3, testDesk, testArea)
	e.ToggleFloating(3)

	for _, id := range []platform.WindowID{1, 2, 3} {
		e.AddClient(id)
		if e.IsTiled(id) {
			t.Fatalf("window %d should not be tiled", id)
		}
	}
}

func TestDeskWithoutConfIsNotTiled(t *testing.T) {
	comp := platformtest.New(testArea)
	e := NewEngine(comp, DefaultSettings())
	comp.AddWindow(1, testDesk, testArea)
	e.AddClient(1)
	if e.IsTiled(1) {
		t.Fatalf("expected no tiling without a vdesk record")
	}
	if e.DeskShouldTile(testDesk) {
		t.Fatalf("expected desk gate closed")
	}
}

func TestIsTilable(t *testing.T) {
	tests := []struct {
		name        string
		win         platform.Window
		tileDialogs bool
		want        bool
	}{
		{"normal", platform.Window{}, false, true},
		{"fixed height", platform.Window{MinHeight: 50, MaxHeight: 50}, true, false},
		{"zero hints", platform.Window{MinHeight: 0, MaxHeight: 0}, true, true},
		{"static gravity", platform.Window{StaticGravity: true}, true, false},
		{"dialog untiled", platform.Window{Dialog: true}, false, false},
		{"dialog tiled", platform.Window{Dialog: true}, true, true},
		{"transient untiled", platform.Window{TransientFor: 9}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTilable(tt.win, tt.tileDialogs); got != tt.want {
				t.Fatalf("IsTilable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemoveDeletesEmptiedStack(t *testing.T) {
	e, comp, _ := newTestEngine(t, 3, false)
	addWindows(t, e, comp, 1, 2, 3)
	if n := e.StackCount(testDesk); n != 3 {
		t.Fatalf("expected 3 stacks, got %d", n)
	}

	e.RemoveClient(2)

	if n := e.StackCount(testDesk); n != 2 {
		t.Fatalf("expected 2 stacks, got %d", n)
	}
	if e.StackOf(3) != 1 {
		t.Fatalf("expected window 3 compacted into stack 1")
	}
	expectRect(t, e, 1, platform.Rect{X: 0, Y: 0, Width: 600, Height: 800})
	expectRect(t, e, 3, platform.Rect{X: 600, Y: 0, Width: 600, Height: 800})
	checkLayout(t, e, comp, testArea)

	// Unknown windows are ignored.
	e.RemoveClient(42)
}

func TestStacksStayContiguousWithoutUsableArea(t *testing.T) {
	e, comp, _ := newTestEngine(t, 3, false)
	addWindows(t, e, comp, 1, 2, 3)
	comp.RemoveZone(0)

	e.RemoveClient(2)

	st := e.State(testDesk)
	if len(st.Stacks) != 2 {
		t.Fatalf("expected 2 stacks, got %+v", st.Stacks)
	}
	if e.StackOf(3) != 1 || !e.IsTiled(3) {
		t.Fatalf("expected window 3 compacted into stack 1, got stack %d", e.StackOf(3))
	}
	if ids := st.Stacks[1].Windows; len(ids) != 1 || ids[0] != 3 {
		t.Fatalf("expected stack 1 to hold window 3, got %v", ids)
	}

	addWindows(t, e, comp, 4)
	if n := e.StackCount(testDesk); n != 3 {
		t.Fatalf("expected window 4 to open stack 2, got %d stacks", n)
	}
	if e.StackOf(4) != 2 {
		t.Fatalf("expected window 4 in stack 2, got %d", e.StackOf(4))
	}

	comp.SetArea(0, testArea)
	e.ResetDesks()
	if n := e.StackCount(testDesk); n != 3 {
		t.Fatalf("expected 3 stacks after reset, got %d", n)
	}
	checkLayout(t, e, comp, testArea)
}

func TestChangeDeskConfToZeroRestoresWindows(t *testing.T) {
	e, comp, saver := newTestEngine(t, 2, false)
	addWindows(t, e, comp, 1, 2)

	e.ChangeDeskConf(VDeskConf{Zone: 0, NbStacks: 0})

	if e.DeskShouldTile(testDesk) {
		t.Fatalf("expected tiling disabled")
	}
	for _, id := range []platform.WindowID{1, 2} {
		if e.IsTiled(id) {
			t.Fatalf("window %d still tiled", id)
		}
		if got := comp.Bounds(id); got != (platform.Rect{X: 10, Y: 10, Width: 300, Height: 200}) {
			t.Fatalf("window %d not restored, got %v", id, got)
		}
	}
	if len(saver.saved) != 1 || saver.saved[0].NbStacks != 0 {
		t.Fatalf("expected the new record persisted, got %+v", saver.saved)
	}
}

func TestChangeDeskConfOrientationRelayouts(t *testing.T) {
	e, comp, _ := newTestEngine(t, 2, false)
	addWindows(t, e, comp, 1, 2)

	e.ChangeDeskConf(VDeskConf{Zone: 0, NbStacks: 2, UseRows: true})

	expectRect(t, e, 1, platform.Rect{X: 0, Y: 0, Width: 1200, Height: 400})
	expectRect(t, e, 2, platform.Rect{X: 0, Y: 400, Width: 1200, Height: 400})
	checkLayout(t, e, comp, testArea)
}

func TestChangeDeskConfClampsStackCount(t *testing.T) {
	e, _, _ := newTestEngine(t, 1, false)
	e.ChangeDeskConf(VDeskConf{Zone: 0, NbStacks: 99})
	if conf, _ := e.Conf(testDesk); conf.NbStacks != MaxStacks {
		t.Fatalf("expected clamp to %d, got %d", MaxStacks, conf.NbStacks)
	}
}

func TestUpdateSettingsDisablingDeskRestores(t *testing.T) {
	e, comp, _ := newTestEngine(t, 1, false)
	addWindows(t, e, comp, 1)

	e.UpdateSettings(DefaultSettings())

	if e.IsTiled(1) {
		t.Fatalf("expected window released when its vdesk record disappeared")
	}
	if got := comp.Bounds(1); got != (platform.Rect{X: 10, Y: 10, Width: 300, Height: 200}) {
		t.Fatalf("expected restore, got %v", got)
	}
}

func TestResetDesksRebuildsAgainstNewArea(t *testing.T) {
	e, comp, _ := newTestEngine(t, 2, true)
	addWindows(t, e, comp, 1, 2, 3)
	orig, _ := e.Extra(1)

	area := platform.Rect{X: 0, Y: 30, Width: 1000, Height: 570}
	comp.SetArea(0, area)
	e.ResetDesks()

	checkLayout(t, e, comp, area)
	after, ok := e.Extra(1)
	if !ok {
		t.Fatalf("expected window 1 tiled again")
	}
	if after.Orig != orig.Orig {
		t.Fatalf("expected original state preserved, got %+v want %+v", after.Orig, orig.Orig)
	}
}

func TestReapplyPinsDriftedWindow(t *testing.T) {
	e, comp, _ := newTestEngine(t, 1, false)
	addWindows(t, e, comp, 1, 2)
	want, _ := e.Expected(1)

	comp.Update(1, func(w *platform.Window) { w.Bounds = platform.Rect{X: 50, Y: 50, Width: 100, Height: 100} })
	e.Reapply(1)

	if got := comp.Bounds(1); got != want {
		t.Fatalf("expected window pinned back to %v, got %v", want, got)
	}
}

func TestPreFrameAssignSetsPixelBorder(t *testing.T) {
	e, comp, _ := newTestEngine(t, 1, false)
	s := e.Settings()
	s.ShowTitles = false
	e.UpdateSettings(s)

	comp.AddWindow(1, testDesk, testArea)
	e.PreFrameAssign(1)
	win, _ := comp.Window(1)
	if win.Border != "pixel" {
		t.Fatalf("expected pixel border, got %q", win.Border)
	}
	extra, ok := e.Extra(1)
	if !ok || extra.Orig.Border != "default" {
		t.Fatalf("expected original border captured before the change, got %+v", extra)
	}
}

func TestAdjustTransitionKeepsStacksContiguous(t *testing.T) {
	e, comp, _ := newTestEngine(t, 2, false)
	addWindows(t, e, comp, 1, 2, 3)

	trs := e.Transitions(testDesk)
	if len(trs) != 1 || trs[0].Pos != 600 {
		t.Fatalf("expected one transition at 600, got %+v", trs)
	}
	if !e.AdjustTransition(testDesk, 0, ResizeStep) {
		t.Fatalf("expected adjustment to succeed")
	}
	st := e.State(testDesk)
	if st.Stacks[0].Size != 605 || st.Stacks[1].Pos != 605 || st.Stacks[1].Size != 595 {
		t.Fatalf("unexpected stacks after adjustment: %+v", st.Stacks)
	}
	checkLayout(t, e, comp, testArea)

	if e.AdjustTransition(testDesk, 0, 2000) {
		t.Fatalf("expected oversize adjustment to be refused")
	}
	if e.AdjustTransition(testDesk, 1, ResizeStep) {
		t.Fatalf("expected adjustment past the last stack to be refused")
	}
}

func TestTreeLayoutDrivesGeometry(t *testing.T) {
	comp := platformtest.New(testArea)
	settings := DefaultSettings()
	settings.VDesks = []VDeskConf{{NbStacks: 1, Layout: LayoutTree}}
	e := NewEngine(comp, settings)

	comp.AddWindow(1, testDesk, testArea)
	comp.Focus(0)
	e.AddClient(1)
	comp.Focus(1)
	comp.AddWindow(2, testDesk, testArea)
	e.AddClient(2)

	expectRect(t, e, 1, platform.Rect{X: 0, Y: 0, Width: 600, Height: 800})
	expectRect(t, e, 2, platform.Rect{X: 600, Y: 0, Width: 600, Height: 800})
	if e.Move(1, DirRight) {
		t.Fatalf("expected stack moves disabled in tree layout")
	}

	e.ToggleSplitMode(testDesk)
	comp.Focus(2)
	comp.AddWindow(3, testDesk, testArea)
	e.AddClient(3)
	expectRect(t, e, 2, platform.Rect{X: 600, Y: 0, Width: 600, Height: 400})
	expectRect(t, e, 3, platform.Rect{X: 600, Y: 400, Width: 600, Height: 400})

	e.RemoveClient(2)
	expectRect(t, e, 3, platform.Rect{X: 600, Y: 0, Width: 600, Height: 800})
}

func TestStackIndexOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for out-of-range stack index")
		}
	}()
	checkStack(MaxStacks)
}

func TestRandomOperationsPreserveLayoutInvariants(t *testing.T) {
	for _, rows := range []bool{true, false} {
		e, comp, _ := newTestEngine(t, 3, rows)
		rng := rand.New(rand.NewSource(42))
		next := platform.WindowID(1)
		var tiled []platform.WindowID

		for step := 0; step < 400; step++ {
			switch op := rng.Intn(10); {
			case op < 3 || len(tiled) < 2:
				comp.AddWindow(next, testDesk, platform.Rect{X: 1, Y: 1, Width: 100, Height: 100})
				e.AddClient(next)
				tiled = append(tiled, next)
				next++
			case op < 4:
				i := rng.Intn(len(tiled))
				e.RemoveClient(tiled[i])
				tiled = append(tiled[:i], tiled[i+1:]...)
			case op < 8:
				id := tiled[rng.Intn(len(tiled))]
				e.Move(id, Direction(rng.Intn(4)))
			default:
				a := tiled[rng.Intn(len(tiled))]
				b := tiled[rng.Intn(len(tiled))]
				e.Swap(a, b)
			}
			checkLayout(t, e, comp, testArea)
			if got := e.WindowCount(testDesk); got != len(tiled) {
				t.Fatalf("rows=%v step %d: engine tracks %d windows, want %d", rows, step, got, len(tiled))
			}
		}
	}
}
