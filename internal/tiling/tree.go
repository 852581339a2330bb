package tiling

import "github.com/1broseidon/stacktile/internal/platform"

// SplitDir is the direction a split node divides its area in.
type SplitDir int

const (
	// SplitHorizontal places the two children side by side.
	SplitHorizontal SplitDir = iota
	// SplitVertical places the first child above the second.
	SplitVertical
)

func (d SplitDir) String() string {
	if d == SplitVertical {
		return "vertical"
	}
	return "horizontal"
}

// Toggle returns the other direction.
func (d SplitDir) Toggle() SplitDir {
	if d == SplitVertical {
		return SplitHorizontal
	}
	return SplitVertical
}

const noNode = -1

type treeNode struct {
	parent int
	left   int
	right  int
	win    platform.WindowID
	split  SplitDir
	// ratio is the share of the area given to the left child.
	ratio float64
	used  bool
}

func (n *treeNode) leaf() bool {
	return n.left == noNode && n.right == noNode
}

// Tree is a binary split tree stored in an index arena. Leaves hold windows,
// inner nodes hold a split direction and exactly two children.
type Tree struct {
	nodes []treeNode
	free  []int
	root  int
	index map[platform.WindowID]int
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{root: noNode, index: make(map[platform.WindowID]int)}
}

// Len is the number of windows in the tree.
func (t *Tree) Len() int {
	return len(t.index)
}

// Contains reports whether id has a leaf.
func (t *Tree) Contains(id platform.WindowID) bool {
	_, ok := t.index[id]
	return ok
}

// Reset drops every node.
func (t *Tree) Reset() {
	t.nodes = t.nodes[:0]
	t.free = t.free[:0]
	t.root = noNode
	clear(t.index)
}

func (t *Tree) alloc(n treeNode) int {
	n.used = true
	if k := len(t.free); k > 0 {
		idx := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[idx] = n
		return idx
	}
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

func (t *Tree) release(idx int) {
	t.nodes[idx] = treeNode{parent: noNode, left: noNode, right: noNode}
	t.free = append(t.free, idx)
}

// Insert adds id next to the leaf of at, splitting it in dir. When at has no
// leaf the root is split instead.
func (t *Tree) Insert(at, id platform.WindowID, dir SplitDir) {
	if t.Contains(id) {
		return
	}
	leaf := t.alloc(treeNode{parent: noNode, left: noNode, right: noNode, win: id})
	t.index[id] = leaf

	if t.root == noNode {
		t.root = leaf
		return
	}

	target, ok := t.index[at]
	if !ok || at == id {
		target = t.root
	}

	parent := t.nodes[target].parent
	split := t.alloc(treeNode{
		parent: parent,
		left:   target,
		right:  leaf,
		split:  dir,
		ratio:  0.5,
	})
	t.nodes[target].parent = split
	t.nodes[leaf].parent = split

	switch {
	case parent == noNode:
		t.root = split
	case t.nodes[parent].left == target:
		t.nodes[parent].left = split
	default:
		t.nodes[parent].right = split
	}
}

// Remove deletes the leaf of id. Its sibling takes the parent's place.
func (t *Tree) Remove(id platform.WindowID) bool {
	leaf, ok := t.index[id]
	if !ok {
		return false
	}
	delete(t.index, id)

	parent := t.nodes[leaf].parent
	t.release(leaf)
	if parent == noNode {
		t.root = noNode
		return true
	}

	sibling := t.nodes[parent].left
	if sibling == leaf {
		sibling = t.nodes[parent].right
	}
	grand := t.nodes[parent].parent
	t.nodes[sibling].parent = grand
	switch {
	case grand == noNode:
		t.root = sibling
	case t.nodes[grand].left == parent:
		t.nodes[grand].left = sibling
	default:
		t.nodes[grand].right = sibling
	}
	t.release(parent)
	return true
}

// Swap exchanges the leaves of a and b.
func (t *Tree) Swap(a, b platform.WindowID) bool {
	la, okA := t.index[a]
	lb, okB := t.index[b]
	if !okA || !okB {
		return false
	}
	t.nodes[la].win, t.nodes[lb].win = b, a
	t.index[a], t.index[b] = lb, la
	return true
}

// Leaves returns the windows in left-to-right order.
func (t *Tree) Leaves() []platform.WindowID {
	var out []platform.WindowID
	var walk func(int)
	walk = func(idx int) {
		if idx == noNode {
			return
		}
		n := &t.nodes[idx]
		if n.leaf() {
			out = append(out, n.win)
			return
		}
		walk(n.left)
		walk(n.right)
	}
	walk(t.root)
	return out
}

// Layout computes the rectangle of every leaf inside area.
func (t *Tree) Layout(area platform.Rect) map[platform.WindowID]platform.Rect {
	out := make(map[platform.WindowID]platform.Rect, t.Len())
	var walk func(int, platform.Rect)
	walk = func(idx int, r platform.Rect) {
		if idx == noNode {
			return
		}
		n := &t.nodes[idx]
		if n.leaf() {
			out[n.win] = r
			return
		}
		a, b := splitRect(r, n.split, n.ratio)
		walk(n.left, a)
		walk(n.right, b)
	}
	walk(t.root, area)
	return out
}

func splitRect(r platform.Rect, dir SplitDir, ratio float64) (platform.Rect, platform.Rect) {
	a, b := r, r
	if dir == SplitHorizontal {
		a.Width = int(float64(r.Width) * ratio)
		b.X = r.X + a.Width
		b.Width = r.Width - a.Width
	} else {
		a.Height = int(float64(r.Height) * ratio)
		b.Y = r.Y + a.Height
		b.Height = r.Height - a.Height
	}
	return a, b
}
