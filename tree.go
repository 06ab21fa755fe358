// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

// Grouping tree for reordering: a forest of nested half-open level intervals.
// Variables inside a group move only within it; a group moves as a unit.

package godd

// TreeType selects the behavior of a group during reordering.
type TreeType int

const (
	// TreeDefault groups may be reordered internally.
	TreeDefault TreeType = iota
	// TreeFixed groups keep their internal order.
	TreeFixed
)

// TreeNode is a group in the variable tree: the contiguous range of levels
// [Low, Low+Size). Children partition (part of) their parent.
type TreeNode struct {
	Low   int32
	Size  int32
	Typ   TreeType
	Child *TreeNode
	Next  *TreeNode
}

func (t *TreeNode) contains(low, size int32) bool {
	return low >= t.Low && low+size <= t.Low+t.Size
}

func (t *TreeNode) disjoint(low, size int32) bool {
	return low+size <= t.Low || low >= t.Low+t.Size
}

// MakeTreeNode declares that the size variables at levels [low, low+size)
// form a group. Groups must be disjoint from or nested in the existing ones;
// a straddling interval fails with InvalidInput. The new group is inserted at
// its place in the forest and returned.
func (b *DD) MakeTreeNode(low, size int, typ TreeType) (*TreeNode, error) {
	l, s := int32(low), int32(size)
	if low < 0 || size < 1 || l+s > b.varnum {
		b.seterrcode(InvalidInput, "bad group [%d, %d) in MakeTreeNode", low, low+size)
		return nil, b.error
	}
	if b.tree == nil {
		b.tree = &TreeNode{Low: 0, Size: b.varnum, Typ: TreeDefault}
	}
	nn := &TreeNode{Low: l, Size: s, Typ: typ}
	if err := b.treeinsert(b.tree, nn); err != nil {
		b.seterrcode(InvalidInput, "group [%d, %d) straddles an existing group", low, low+size)
		return nil, b.error
	}
	return nn, nil
}

func (b *DD) treeinsert(parent, nn *TreeNode) error {
	// descend into a child that contains the new group
	for c := parent.Child; c != nil; c = c.Next {
		if c.contains(nn.Low, nn.Size) {
			return b.treeinsert(c, nn)
		}
		if !c.disjoint(nn.Low, nn.Size) {
			if nn.contains(c.Low, c.Size) {
				break // nn becomes an ancestor of c; handled below
			}
			return errMemory
		}
	}
	// collect the children covered by nn, keep the others
	var kept, covered *TreeNode
	c := parent.Child
	for c != nil {
		next := c.Next
		if nn.contains(c.Low, c.Size) {
			c.Next = covered
			covered = c
		} else {
			c.Next = kept
			kept = c
		}
		c = next
	}
	nn.Child = covered
	nn.Next = kept
	parent.Child = nn
	return nil
}

// FreeTree removes every group declaration.
func (b *DD) FreeTree() {
	b.tree = nil
}

// ReadTree returns the root of the variable tree, or nil if no group was
// declared.
func (b *DD) ReadTree() *TreeNode {
	return b.tree
}

// groupbounds returns the half-open level interval within which the variable
// currently at level lev may move: its innermost enclosing group, truncated
// by the nested sibling groups it may not enter (a group is crossed only by
// moving it as a whole).
func (b *DD) groupbounds(lev int32) (int32, int32) {
	lo, hi := int32(0), b.varnum
	t := b.tree
	for t != nil {
		var inner *TreeNode
		for c := t.Child; c != nil; c = c.Next {
			if lev >= c.Low && lev < c.Low+c.Size {
				inner = c
				break
			}
		}
		if inner == nil {
			// lev sits between the children of t: stay out of them
			for c := t.Child; c != nil; c = c.Next {
				if c.Low+c.Size <= lev && c.Low+c.Size > lo {
					lo = c.Low + c.Size
				}
				if c.Low > lev && c.Low < hi {
					hi = c.Low
				}
			}
			return lo, hi
		}
		lo, hi = inner.Low, inner.Low+inner.Size
		t = inner
	}
	return lo, hi
}

// fixedat reports whether the variable at level lev sits inside a fixed
// group.
func (b *DD) fixedat(lev int32) bool {
	t := b.tree
	for t != nil {
		if t.Typ == TreeFixed {
			return true
		}
		var inner *TreeNode
		for c := t.Child; c != nil; c = c.Next {
			if lev >= c.Low && lev < c.Low+c.Size {
				inner = c
				break
			}
		}
		t = inner
	}
	return false
}

// topgroups returns the level intervals of the top-level groups, covering
// every level (ungrouped levels become singleton blocks).
func (b *DD) topgroups() [][2]int32 {
	res := [][2]int32{}
	covered := make([]bool, b.varnum)
	if b.tree != nil {
		for c := b.tree.Child; c != nil; c = c.Next {
			res = append(res, [2]int32{c.Low, c.Low + c.Size})
			for k := c.Low; k < c.Low+c.Size; k++ {
				covered[k] = true
			}
		}
	}
	for k := int32(0); k < b.varnum; k++ {
		if !covered[k] {
			res = append(res, [2]int32{k, k + 1})
		}
	}
	// sort blocks by their starting level
	for i := 1; i < len(res); i++ {
		for j := i; j > 0 && res[j][0] < res[j-1][0]; j-- {
			res[j], res[j-1] = res[j-1], res[j]
		}
	}
	return res
}
