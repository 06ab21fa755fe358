// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

// ddnode is the shape shared by every node in a DD: terminals carry a value,
// internal nodes a variable index and two child edges. A slot is free when its
// low field is -1; free slots are threaded through the next field.
type ddnode struct {
	index  int32   // Variable index; _CONSTINDEX for terminals. Bits 21 and 22 hold the mark and dead flags
	refcou int32   // Saturating count of the references held on this node
	low    int     // Else edge (possibly complemented), or -1 when the slot is free
	high   int     // Then edge; never complemented on a live BDD node
	next   int     // Next node in the unique subtable chain, 0 if last
	value  float64 // Terminal value, meaningful only when index is _CONSTINDEX
}

// An edge packs a node position and the complement flag in a single int. Edge
// 0 denotes the constant true function and edge 1 its complement.
const bddone int = 0
const bddzero int = 1

func enode(e int) int { return e >> 1 }

func etag(e int) int { return e & 1 }

func mkedge(n, tag int) int { return n<<1 | tag }

// ************************************************************

func (b *DD) varof(e int) int32 {
	return b.nodes[enode(e)].index & _MAXVAR
}

func (b *DD) isconst(e int) bool {
	return b.nodes[enode(e)].index&_MAXVAR == _CONSTINDEX
}

// value returns the terminal value denoted by an (untagged) edge.
func (b *DD) value(e int) float64 {
	return b.nodes[enode(e)].value
}

// level returns the position, in the current order, of the variable at the top
// of the function denoted by e. Terminals report _CONSTLEVEL, above all the
// variables.
func (b *DD) level(e int) int32 {
	index := b.nodes[enode(e)].index & _MAXVAR
	if index == _CONSTINDEX {
		return _CONSTLEVEL
	}
	return b.var2level[index]
}

// zlevel is the equivalent of level for the ZDD variable order.
func (b *DD) zlevel(e int) int32 {
	index := b.nodes[enode(e)].index & _MAXVAR
	if index == _CONSTINDEX {
		return _CONSTLEVEL
	}
	return b.zvar2level[index]
}

// low returns the else cofactor of the function denoted by edge e. The
// complement flag of e is pushed onto the child, which is what makes the
// then-uncomplemented canonical form work in every traversal. ADD and ZDD
// edges are never tagged, so the xor is the identity for them.
func (b *DD) low(e int) int {
	return b.nodes[enode(e)].low ^ etag(e)
}

// high returns the then cofactor of the function denoted by edge e.
func (b *DD) high(e int) int {
	return b.nodes[enode(e)].high ^ etag(e)
}

// ************************************************************

func (b *DD) ismarked(n int) bool {
	return (b.nodes[n].index & _MARKBIT) != 0
}

func (b *DD) marknode(n int) {
	b.nodes[n].index |= _MARKBIT
}

func (b *DD) unmarknode(n int) {
	b.nodes[n].index &^= _MARKBIT
}

func (b *DD) isdead(n int) bool {
	return (b.nodes[n].index & _DEADBIT) != 0
}

// avalue returns the terminal value of an ADD edge, treating the Boolean
// constant false as the arithmetic zero for tolerance with mixed operands.
func (b *DD) avalue(e int) float64 {
	if e == bddzero {
		return 0
	}
	return b.value(e)
}
