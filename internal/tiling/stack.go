package tiling

import "github.com/1broseidon/stacktile/internal/platform"

// splitAxis returns the start and length of the axis stacks are laid along.
// Rows stack top to bottom, columns left to right.
func splitAxis(area platform.Rect, rows bool) (int, int) {
	if rows {
		return area.Y, area.Height
	}
	return area.X, area.Width
}

// FairSplit divides length into n integer parts that differ by at most one
// and sum exactly to length. The remainder goes to the first parts.
func FairSplit(length, n int) []int {
	if n <= 0 {
		return nil
	}
	base, rem := length/n, length%n
	parts := make([]int, n)
	for i := range parts {
		parts[i] = base
		if i < rem {
			parts[i]++
		}
	}
	return parts
}

// GreedySplit divides length into n parts left to right, each taking
// remaining/(n-i). This is how stacks share the split axis.
func GreedySplit(length, n int) []int {
	if n <= 0 {
		return nil
	}
	parts := make([]int, n)
	for i := range parts {
		parts[i] = length / (n - i)
		length -= parts[i]
	}
	return parts
}

// redistribute gives every populated stack its share of the split axis and
// zeroes the unused slots.
func (e *Engine) redistribute(ti *Info, area platform.Rect) {
	pos, length := splitAxis(area, ti.useRows())
	n := ti.stackCount()
	for i, size := range GreedySplit(length, n) {
		e.setStackGeometry(ti, i, pos, size)
		pos += size
	}
	for i := n; i < MaxStacks; i++ {
		ti.pos[i] = 0
		ti.size[i] = 0
	}
}

// setStackGeometry moves a stack along the split axis and re-applies geometry
// to its windows. Maximize flags the new shape invalidates are cleared.
func (e *Engine) setStackGeometry(ti *Info, stack, pos, size int) {
	checkStack(stack)
	rows := ti.useRows()
	wins := ti.stacks[stack]
	multiStack := len(ti.stacks[1]) > 0

	inStack, across := platform.MaximizeVertical, platform.MaximizeHorizontal
	if rows {
		inStack, across = platform.MaximizeHorizontal, platform.MaximizeVertical
	}

	for _, id := range wins {
		extra, ok := e.extras.get(id)
		if !ok {
			e.log.Error("no extra for window", "window", id)
			continue
		}
		if rows {
			extra.Expected.Y = pos
			extra.Expected.Height = size
		} else {
			extra.Expected.X = pos
			extra.Expected.Width = size
		}

		if m := e.maximizeState(id); m != platform.MaximizeNone {
			if len(wins) > 1 && m&inStack != 0 {
				e.unmaximize(id, inStack)
			}
			if multiStack && m&across != 0 {
				e.unmaximize(id, across)
			}
		}
		e.moveResize(id, extra.Expected)
	}
	ti.pos[stack] = pos
	ti.size[stack] = size
}

// reorganizeStack lays out the windows of one stack along the cross axis.
// A lone window fills the stack and is maximized along the cross axis.
func (e *Engine) reorganizeStack(ti *Info, area platform.Rect, stack int) {
	if stack < 0 || stack >= MaxStacks || len(ti.stacks[stack]) == 0 {
		return
	}
	rows := ti.useRows()
	wins := ti.stacks[stack]

	if len(wins) == 1 {
		id := wins[0]
		extra, ok := e.extras.get(id)
		if !ok {
			e.log.Error("no extra for window", "window", id)
			return
		}
		var expand platform.Maximize
		if rows {
			extra.Expected = platform.Rect{X: area.X, Y: ti.pos[stack], Width: area.Width, Height: ti.size[stack]}
			expand = platform.MaximizeExpand | platform.MaximizeHorizontal
		} else {
			extra.Expected = platform.Rect{X: ti.pos[stack], Y: area.Y, Width: ti.size[stack], Height: area.Height}
			expand = platform.MaximizeExpand | platform.MaximizeVertical
		}
		e.moveResize(id, extra.Expected)
		e.maximize(id, expand)
		return
	}

	start, length := area.Y, area.Height
	cross := platform.MaximizeVertical
	if rows {
		start, length = area.X, area.Width
		cross = platform.MaximizeHorizontal
	}

	offset := start
	for i, part := range FairSplit(length, len(wins)) {
		id := wins[i]
		extra, ok := e.extras.get(id)
		if !ok {
			e.log.Error("no extra for window", "window", id)
			offset += part
			continue
		}
		if e.maximizeState(id)&cross != 0 {
			e.unmaximize(id, cross)
		}
		if rows {
			extra.Expected = platform.Rect{X: offset, Y: ti.pos[stack], Width: part, Height: ti.size[stack]}
		} else {
			extra.Expected = platform.Rect{X: ti.pos[stack], Y: offset, Width: ti.size[stack], Height: part}
		}
		offset += part
		e.moveResize(id, extra.Expected)
	}
}
