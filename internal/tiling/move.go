package tiling

import (
	"fmt"
	"slices"
	"strings"

	"github.com/1broseidon/stacktile/internal/events"
	"github.com/1broseidon/stacktile/internal/platform"
)

// Direction is a screen direction requested by the user.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

var directionNames = [...]string{"up", "down", "left", "right"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection accepts left/right/up/down. Only the first letter matters.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty direction")
	}
	switch s[0] {
	case 'l':
		return DirLeft, nil
	case 'r':
		return DirRight, nil
	case 'u':
		return DirUp, nil
	case 'd':
		return DirDown, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// DirectionSet is a bitmask of directions.
type DirectionSet uint8

func (s DirectionSet) Has(d Direction) bool {
	return s&(1<<d) != 0
}

func (s *DirectionSet) add(d Direction) {
	*s |= 1 << d
}

// primitive is one of the four orientation-relative move operations.
type primitive int

const (
	// primUpRowsOrLeftCols moves towards the previous stack.
	primUpRowsOrLeftCols primitive = iota
	// primDownRowsOrRightCols moves towards the next stack.
	primDownRowsOrRightCols
	// primLeftRowsOrUpCols swaps with the previous window of the stack.
	primLeftRowsOrUpCols
	// primRightRowsOrDownCols swaps with the next window of the stack.
	primRightRowsOrDownCols
)

// primitiveFor maps a screen direction onto a move primitive. Rows stack
// vertically, so up/down cross stacks; columns stack horizontally, so
// left/right do.
func primitiveFor(dir Direction, rows bool) primitive {
	switch dir {
	case DirUp:
		if rows {
			return primUpRowsOrLeftCols
		}
		return primLeftRowsOrUpCols
	case DirDown:
		if rows {
			return primDownRowsOrRightCols
		}
		return primRightRowsOrDownCols
	case DirLeft:
		if rows {
			return primLeftRowsOrUpCols
		}
		return primUpRowsOrLeftCols
	default:
		if rows {
			return primRightRowsOrDownCols
		}
		return primDownRowsOrRightCols
	}
}

func (e *Engine) stackLayoutFor(id platform.WindowID) (*Info, bool) {
	desk, ok := e.owner[id]
	if !ok || !e.DeskShouldTile(desk) {
		return nil, false
	}
	ti := e.info(desk)
	if ti.treeLayout() {
		return nil, false
	}
	return ti, true
}

// Move moves a tiled window one step in dir. It reports whether the layout
// changed.
func (e *Engine) Move(id platform.WindowID, dir Direction) bool {
	ti, ok := e.stackLayoutFor(id)
	if !ok {
		return false
	}
	area, ok := e.area(ti)
	if !ok {
		return false
	}

	var moved bool
	switch primitiveFor(dir, ti.useRows()) {
	case primUpRowsOrLeftCols:
		moved = e.moveUpRowsOrLeftCols(ti, area, id)
	case primDownRowsOrRightCols:
		moved = e.moveDownRowsOrRightCols(ti, area, id)
	case primLeftRowsOrUpCols:
		moved = e.moveLeftRowsOrUpCols(ti, id)
	case primRightRowsOrDownCols:
		moved = e.moveRightRowsOrDownCols(ti, id)
	}
	if !moved {
		return false
	}

	e.raiseStackCount(ti)
	if extra, ok := e.extras.get(id); ok {
		e.warpTo(extra.Expected)
	}
	e.publish(events.Event{Kind: events.WindowMoved, Desk: ti.desk.String(), Window: uint32(id), Stack: events.Index(ti.stackOf(id)), Stacks: ti.stackCount()})
	return true
}

// AvailableMoves reports which directions Move would act on for id.
func (e *Engine) AvailableMoves(id platform.WindowID) DirectionSet {
	var set DirectionSet
	ti, ok := e.stackLayoutFor(id)
	if !ok {
		return set
	}
	rows := ti.useRows()
	for _, dir := range []Direction{DirUp, DirDown, DirLeft, DirRight} {
		if e.canApply(ti, id, primitiveFor(dir, rows)) {
			set.add(dir)
		}
	}
	return set
}

func (e *Engine) canApply(ti *Info, id platform.WindowID, p primitive) bool {
	stack := ti.stackOf(id)
	if stack < 0 {
		return false
	}
	n := ti.stackCount()
	idx := slices.Index(ti.stacks[stack], id)
	alone := len(ti.stacks[stack]) == 1

	switch p {
	case primUpRowsOrLeftCols:
		if stack > 0 {
			return true
		}
		return n < MaxStacks && !alone
	case primDownRowsOrRightCols:
		if stack == MaxStacks-1 {
			return false
		}
		return !(stack == n-1 && alone)
	case primLeftRowsOrUpCols:
		return idx > 0
	default:
		return idx < len(ti.stacks[stack])-1
	}
}

func (e *Engine) moveUpRowsOrLeftCols(ti *Info, area platform.Rect, id platform.WindowID) bool {
	stack := ti.stackOf(id)
	checkStack(stack)
	n := ti.stackCount()

	if _, ok := e.extras.get(id); !ok {
		e.log.Error("no extra for window", "window", id)
		return false
	}

	if stack == 0 {
		if n >= MaxStacks || len(ti.stacks[0]) == 1 {
			return false
		}
		ti.removeFromStack(0, id)
		ti.insertStack(0, id)
		e.redistribute(ti, area)
		e.reorganizeStack(ti, area, 1)
		e.reorganizeStack(ti, area, 0)
		e.publish(events.Event{Kind: events.StackAdded, Desk: ti.desk.String(), Stack: events.Index(0), Stacks: n + 1})
		return true
	}

	ti.removeFromStack(stack, id)
	ti.stacks[stack-1] = append(ti.stacks[stack-1], id)

	if len(ti.stacks[stack]) == 0 {
		ti.deleteStack(stack)
		e.redistribute(ti, area)
		e.reorganizeStack(ti, area, stack-1)
		e.publish(events.Event{Kind: events.StackRemoved, Desk: ti.desk.String(), Stack: events.Index(stack), Stacks: n - 1})
	} else {
		e.reorganizeStack(ti, area, stack)
		e.reorganizeStack(ti, area, stack-1)
	}
	return true
}

func (e *Engine) moveDownRowsOrRightCols(ti *Info, area platform.Rect, id platform.WindowID) bool {
	stack := ti.stackOf(id)
	checkStack(stack)
	if stack == MaxStacks-1 {
		return false
	}
	n := ti.stackCount()
	if stack == n-1 && len(ti.stacks[stack]) == 1 {
		return false
	}
	if _, ok := e.extras.get(id); !ok {
		e.log.Error("no extra for window", "window", id)
		return false
	}

	ti.removeFromStack(stack, id)
	ti.stacks[stack+1] = append(ti.stacks[stack+1], id)

	switch {
	case len(ti.stacks[stack]) > 0 && len(ti.stacks[stack+1]) > 1:
		e.reorganizeStack(ti, area, stack)
		e.reorganizeStack(ti, area, stack+1)
	case len(ti.stacks[stack]) > 0:
		// The window opened a new last stack.
		e.redistribute(ti, area)
		e.reorganizeStack(ti, area, stack)
		e.reorganizeStack(ti, area, stack+1)
		e.publish(events.Event{Kind: events.StackAdded, Desk: ti.desk.String(), Stack: events.Index(stack + 1), Stacks: n + 1})
	default:
		ti.deleteStack(stack)
		e.redistribute(ti, area)
		e.reorganizeStack(ti, area, stack)
		e.publish(events.Event{Kind: events.StackRemoved, Desk: ti.desk.String(), Stack: events.Index(stack), Stacks: n - 1})
	}
	return true
}

func (e *Engine) moveLeftRowsOrUpCols(ti *Info, id platform.WindowID) bool {
	stack := ti.stackOf(id)
	checkStack(stack)
	idx := slices.Index(ti.stacks[stack], id)
	if idx <= 0 {
		return false
	}
	prev := ti.stacks[stack][idx-1]
	return e.exchangeNeighbours(ti, stack, idx-1, idx, prev, id)
}

func (e *Engine) moveRightRowsOrDownCols(ti *Info, id platform.WindowID) bool {
	stack := ti.stackOf(id)
	checkStack(stack)
	idx := slices.Index(ti.stacks[stack], id)
	if idx < 0 || idx >= len(ti.stacks[stack])-1 {
		return false
	}
	next := ti.stacks[stack][idx+1]
	return e.exchangeNeighbours(ti, stack, idx, idx+1, id, next)
}

// exchangeNeighbours swaps two adjacent windows of a stack. first sits before
// second; each keeps its own size.
func (e *Engine) exchangeNeighbours(ti *Info, stack, i, j int, first, second platform.WindowID) bool {
	a, ok := e.extras.get(first)
	if !ok {
		e.log.Error("no extra for window", "window", first)
		return false
	}
	b, ok := e.extras.get(second)
	if !ok {
		e.log.Error("no extra for window", "window", second)
		return false
	}

	ti.stacks[stack][i], ti.stacks[stack][j] = second, first

	if ti.useRows() {
		b.Expected.X = a.Expected.X
		a.Expected.X = b.Expected.X + b.Expected.Width
	} else {
		b.Expected.Y = a.Expected.Y
		a.Expected.Y = b.Expected.Y + b.Expected.Height
	}
	e.move(first, a.Expected.X, a.Expected.Y)
	e.move(second, b.Expected.X, b.Expected.Y)
	return true
}

// Swap exchanges two tiled windows of the same desk, including their
// geometry and maximize state.
func (e *Engine) Swap(a, b platform.WindowID) bool {
	if a == b {
		return false
	}
	deskA, okA := e.owner[a]
	deskB, okB := e.owner[b]
	if !okA || !okB || deskA != deskB {
		return false
	}
	extraA, ok := e.extras.get(a)
	if !ok {
		e.log.Error("no extra for window", "window", a)
		return false
	}
	extraB, ok := e.extras.get(b)
	if !ok {
		e.log.Error("no extra for window", "window", b)
		return false
	}

	ti := e.info(deskA)
	sa, sb := ti.stackOf(a), ti.stackOf(b)
	if sa < 0 || sb < 0 {
		return false
	}
	ia := slices.Index(ti.stacks[sa], a)
	ib := slices.Index(ti.stacks[sb], b)
	ti.stacks[sa][ia], ti.stacks[sb][ib] = b, a
	ti.tree.Swap(a, b)

	extraA.Expected, extraB.Expected = extraB.Expected, extraA.Expected

	maxA, maxB := e.maximizeState(a), e.maximizeState(b)
	if maxB != platform.MaximizeNone {
		e.unmaximize(b, platform.MaximizeBoth)
	}
	if maxA != platform.MaximizeNone {
		e.unmaximize(a, platform.MaximizeBoth)
		e.maximize(b, maxA)
	}
	if maxB != platform.MaximizeNone {
		e.maximize(a, maxB)
	}

	e.moveResize(a, extraA.Expected)
	e.moveResize(b, extraB.Expected)
	e.publish(events.Event{Kind: events.WindowsSwapped, Desk: deskA.String(), Window: uint32(a), Target: uint32(b)})
	return true
}

// Transition is the boundary between stack Index and Index+1.
type Transition struct {
	Index int
	Pos   int
}

// Transitions lists the stack boundaries of a desk.
func (e *Engine) Transitions(desk platform.Desk) []Transition {
	ti := e.info(desk)
	if ti.treeLayout() {
		return nil
	}
	n := ti.stackCount()
	out := make([]Transition, 0, max(n-1, 0))
	for i := 0; i+1 < n; i++ {
		out = append(out, Transition{Index: i, Pos: ti.pos[i+1]})
	}
	return out
}

// AdjustTransition shifts the boundary after stack index by delta pixels.
// Neither neighbour may shrink below a minimum size.
func (e *Engine) AdjustTransition(desk platform.Desk, index, delta int) bool {
	if !e.DeskShouldTile(desk) {
		return false
	}
	ti := e.info(desk)
	if ti.treeLayout() || index < 0 || index+1 >= ti.stackCount() {
		return false
	}
	a := ti.size[index] + delta
	b := ti.size[index+1] - delta
	if a < minStackSize || b < minStackSize {
		return false
	}
	e.setStackGeometry(ti, index, ti.pos[index], a)
	e.setStackGeometry(ti, index+1, ti.pos[index]+a, b)
	return true
}
