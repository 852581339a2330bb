package tiling

import (
	"fmt"
	"slices"

	"github.com/1broseidon/stacktile/internal/platform"
)

// Info is the tiling state of one virtual desktop.
//
// Stacks are contiguous from index 0: an empty stack is never followed by a
// populated one. For populated stacks pos[i]+size[i] == pos[i+1].
type Info struct {
	desk     platform.Desk
	stacks   [MaxStacks][]platform.WindowID
	pos      [MaxStacks]int
	size     [MaxStacks]int
	floating map[platform.WindowID]struct{}
	conf     *VDeskConf
	tree     *Tree
	split    SplitDir
}

func newInfo(desk platform.Desk) *Info {
	return &Info{
		desk:     desk,
		floating: make(map[platform.WindowID]struct{}),
		tree:     NewTree(),
		split:    SplitHorizontal,
	}
}

func checkStack(stack int) {
	if stack < 0 || stack >= MaxStacks {
		panic(fmt.Sprintf("tiling: stack index %d out of range [0,%d)", stack, MaxStacks))
	}
}

func (ti *Info) useRows() bool {
	return ti.conf != nil && ti.conf.UseRows
}

func (ti *Info) treeLayout() bool {
	return ti.conf != nil && ti.conf.Layout == LayoutTree
}

// stackCount is the number of populated stacks.
func (ti *Info) stackCount() int {
	for i := 0; i < MaxStacks; i++ {
		if len(ti.stacks[i]) == 0 {
			return i
		}
	}
	return MaxStacks
}

func (ti *Info) windowCount() int {
	n := 0
	for i := 0; i < MaxStacks && len(ti.stacks[i]) > 0; i++ {
		n += len(ti.stacks[i])
	}
	return n
}

// stackOf returns the stack holding id, or -1.
func (ti *Info) stackOf(id platform.WindowID) int {
	for i := 0; i < MaxStacks; i++ {
		if slices.Contains(ti.stacks[i], id) {
			return i
		}
	}
	return -1
}

// windows returns every tiled window in stack order.
func (ti *Info) windows() []platform.WindowID {
	var out []platform.WindowID
	for i := 0; i < MaxStacks && len(ti.stacks[i]) > 0; i++ {
		out = append(out, ti.stacks[i]...)
	}
	return out
}

func (ti *Info) isFloating(id platform.WindowID) bool {
	_, ok := ti.floating[id]
	return ok
}

func (ti *Info) removeFromStack(stack int, id platform.WindowID) bool {
	checkStack(stack)
	idx := slices.Index(ti.stacks[stack], id)
	if idx < 0 {
		return false
	}
	ti.stacks[stack] = slices.Delete(ti.stacks[stack], idx, idx+1)
	return true
}

// insertStack opens a new stack at index holding only id.
func (ti *Info) insertStack(index int, id platform.WindowID) {
	checkStack(index)
	for i := MaxStacks - 1; i > index; i-- {
		ti.stacks[i] = ti.stacks[i-1]
	}
	ti.stacks[index] = []platform.WindowID{id}
}

// deleteStack drops an emptied stack and compacts the ones after it.
func (ti *Info) deleteStack(index int) {
	checkStack(index)
	for i := index; i < MaxStacks-1; i++ {
		ti.stacks[i] = ti.stacks[i+1]
	}
	ti.stacks[MaxStacks-1] = nil
}

// clearStacks empties every stack and returns their windows in order.
func (ti *Info) clearStacks() []platform.WindowID {
	wins := ti.windows()
	for i := range ti.stacks {
		ti.stacks[i] = nil
		ti.pos[i] = 0
		ti.size[i] = 0
	}
	return wins
}
