// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

// Approximation and subsetting heuristics: bounded-depth (clipping)
// conjunction, shortest-path subsetting, and heavy-branch subsetting. Every
// under-approximation is included in its argument, and dually for the
// over-approximations.

package godd

const _PATHINF = int(1) << 40

// ClippingAnd computes a bounded-depth conjunction of f and g: below maxdepth
// the recursion is clipped and replaced by a constant, zero for an
// under-approximation (over false) and one for an over-approximation. The
// result is, respectively, included in or includes the exact conjunction.
func (b *DD) ClippingAnd(f, g Node, maxdepth int, over bool) Node {
	b.prologue()
	if b.checkptr(f) != nil || b.checkptr(g) != nil {
		return b.seterror("wrong operand in call to ClippingAnd")
	}
	if maxdepth < 0 {
		return b.seterrcode(InvalidInput, "negative depth (%d) in ClippingAnd", maxdepth)
	}
	if maxdepth > 4095 {
		maxdepth = 4095
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	res := b.clipand(*f, *g, maxdepth, over)
	b.popref(2)
	return b.retnode(res)
}

func (b *DD) clipand(left, right, depth int, over bool) int {
	if left == right {
		return left
	}
	if left == (right^1) || left == bddzero || right == bddzero {
		return bddzero
	}
	if left == bddone {
		return right
	}
	if right == bddone {
		return left
	}
	if left < 0 || right < 0 {
		return -1
	}
	if depth <= 0 {
		// at the clipping depth we settle the result with implication tests
		if b.leq(left, right) {
			return left
		}
		if b.leq(right, left) {
			return right
		}
		if b.leq(left, right^1) {
			return bddzero
		}
		if over {
			return bddone
		}
		return bddzero
	}
	if left > right {
		left, right = right, left
	}
	tag := cacheCLIPAND | depth<<9
	if over {
		tag |= 1 << 8
	}
	if res := b.matchmisc(left, right, tag); res >= 0 {
		return res
	}
	if b.timedout() {
		return -1
	}
	leftlvl := b.level(left)
	rightlvl := b.level(right)
	var res int
	switch {
	case leftlvl == rightlvl:
		low := b.pushref(b.clipand(b.low(left), b.low(right), depth-1, over))
		high := b.pushref(b.clipand(b.high(left), b.high(right), depth-1, over))
		res = b.makenode(b.varof(left), low, high)
	case leftlvl < rightlvl:
		low := b.pushref(b.clipand(b.low(left), right, depth-1, over))
		high := b.pushref(b.clipand(b.high(left), right, depth-1, over))
		res = b.makenode(b.varof(left), low, high)
	default:
		low := b.pushref(b.clipand(left, b.low(right), depth-1, over))
		high := b.pushref(b.clipand(left, b.high(right), depth-1, over))
		res = b.makenode(b.varof(right), low, high)
	}
	b.popref(2)
	return b.setmisc(left, right, tag, res)
}

// ClippingAndAbstract combines a bounded-depth conjunction with an
// existential quantification over the variables of cube, with the same
// containment guarantees as ClippingAnd.
func (b *DD) ClippingAndAbstract(f, g, cube Node, maxdepth int, over bool) Node {
	b.prologue()
	if b.checkptr(f) != nil || b.checkptr(g) != nil {
		return b.seterror("wrong operand in call to ClippingAndAbstract")
	}
	if b.checkptr(cube) != nil {
		return b.seterror("wrong cube in call to ClippingAndAbstract")
	}
	if maxdepth < 0 {
		return b.seterrcode(InvalidInput, "negative depth (%d) in ClippingAndAbstract", maxdepth)
	}
	if maxdepth > 4095 {
		maxdepth = 4095 // deep enough to be exact; keeps the cache key compact
	}
	if err := b.quantset2cache(*cube); err != nil {
		return nil
	}
	b.quantcache.id = (*cube << 3) | cacheidEXIST
	b.quantop = OPor
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	b.pushref(*cube)
	res := b.clipandabs(*f, *g, *cube, maxdepth, over)
	b.popref(3)
	return b.retnode(res)
}

func (b *DD) clipandabs(left, right, cube, depth int, over bool) int {
	if left == bddzero || right == bddzero || left == (right^1) {
		return bddzero
	}
	if left == bddone && right == bddone {
		return bddone
	}
	if left < 0 || right < 0 {
		return -1
	}
	if (b.level(left) > b.quantlast) && (b.level(right) > b.quantlast) {
		return b.clipand(left, right, depth, over)
	}
	if depth <= 0 {
		clipped := b.clipand(left, right, 0, over)
		if clipped < 0 {
			return -1
		}
		b.pushref(clipped)
		res := b.quant(clipped, cube)
		b.popref(1)
		return res
	}
	if left > right {
		left, right = right, left
	}
	// the cube is part of the key: entries survive across calls
	tag := cacheCLIPABS | depth<<9 | cube<<21
	if over {
		tag |= 1 << 8
	}
	if res := b.matchmisc(left, right, tag); res >= 0 {
		return res
	}
	if b.timedout() {
		return -1
	}
	leftlvl := b.level(left)
	rightlvl := b.level(right)
	var lvl int32
	var low, high int
	switch {
	case leftlvl == rightlvl:
		lvl = leftlvl
		low = b.pushref(b.clipandabs(b.low(left), b.low(right), cube, depth-1, over))
		high = b.pushref(b.clipandabs(b.high(left), b.high(right), cube, depth-1, over))
	case leftlvl < rightlvl:
		lvl = leftlvl
		low = b.pushref(b.clipandabs(b.low(left), right, cube, depth-1, over))
		high = b.pushref(b.clipandabs(b.high(left), right, cube, depth-1, over))
	default:
		lvl = rightlvl
		low = b.pushref(b.clipandabs(left, b.low(right), cube, depth-1, over))
		high = b.pushref(b.clipandabs(left, b.high(right), cube, depth-1, over))
	}
	var res int
	if b.quantset[lvl] == b.quantsetID {
		res = b.orr(low, high)
	} else {
		res = b.makenode(b.level2var[lvl], low, high)
	}
	b.popref(2)
	return b.setmisc(left, right, tag, res)
}

// ************************************************************

// shortpaths computes, for every edge reachable from e, the length (in
// decisions) of its shortest path to the one terminal.
func (b *DD) shortpaths(e int, dist map[int]int) int {
	if e == bddone {
		return 0
	}
	if e == bddzero {
		return _PATHINF
	}
	if d, ok := dist[e]; ok {
		return d
	}
	dl := b.shortpaths(b.low(e), dist)
	dh := b.shortpaths(b.high(e), dist)
	d := dl
	if dh < d {
		d = dh
	}
	if d < _PATHINF {
		d++
	}
	dist[e] = d
	return d
}

// SubsetShortPaths extracts the subset of f holding only its satisfying paths
// of length at most pathbound (in number of decisions). With a bound of zero
// only the shortest paths are kept.
func (b *DD) SubsetShortPaths(f Node, pathbound int) Node {
	b.prologue()
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to SubsetShortPaths")
	}
	dist := make(map[int]int)
	droot := b.shortpaths(*f, dist)
	if droot >= _PATHINF {
		return bddfalse
	}
	if pathbound < droot {
		pathbound = droot
	}
	memo := make(map[[2]int]int)
	b.initref()
	b.pushref(*f)
	res := b.subsetsp(*f, pathbound, dist, memo)
	out := b.retnode(res)
	b.popref(len(b.refstack))
	return out
}

func (b *DD) subsetsp(e, budget int, dist map[int]int, memo map[[2]int]int) int {
	if e == bddone || e == bddzero {
		return e
	}
	if b.shortpaths(e, dist) > budget {
		return bddzero
	}
	if res, ok := memo[[2]int{e, budget}]; ok {
		return res
	}
	low := b.pushref(b.subsetsp(b.low(e), budget-1, dist, memo))
	high := b.pushref(b.subsetsp(b.high(e), budget-1, dist, memo))
	res := b.makenode(b.varof(e), low, high)
	b.popref(2)
	// memoized results stay on the refstack until the wrapper returns
	b.pushref(res)
	memo[[2]int{e, budget}] = res
	return res
}

// SupersetShortPaths is the dual of SubsetShortPaths: it computes a superset
// of f by subsetting the complemented view.
func (b *DD) SupersetShortPaths(f Node, pathbound int) Node {
	nf := b.Not(f)
	if nf == nil {
		return nil
	}
	sub := b.SubsetShortPaths(nf, pathbound)
	b.RecursiveDeref(nf)
	if sub == nil {
		return nil
	}
	res := b.Not(sub)
	b.RecursiveDeref(sub)
	return res
}

// ************************************************************

// SubsetHeavyBranch extracts a subset of f with roughly at most threshold
// nodes, by keeping the branches carrying the most minterms and replacing the
// lightest ones with zero.
func (b *DD) SubsetHeavyBranch(f Node, threshold int) Node {
	b.prologue()
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to SubsetHeavyBranch")
	}
	if threshold < 1 {
		return b.seterrcode(InvalidInput, "bad threshold (%d) in SubsetHeavyBranch", threshold)
	}
	if b.countrec(*f) <= threshold {
		return b.retnode(*f)
	}
	weights := make(map[int]float64)
	b.initref()
	b.pushref(*f)
	res := b.heavybranch(*f, threshold, weights)
	b.popref(1)
	return b.retnode(res)
}

// minterms computes the fraction of assignments satisfying each edge.
func (b *DD) minterms(e int, weights map[int]float64) float64 {
	if e == bddone {
		return 1
	}
	if e == bddzero {
		return 0
	}
	if w, ok := weights[e]; ok {
		return w
	}
	w := (b.minterms(b.low(e), weights) + b.minterms(b.high(e), weights)) / 2
	weights[e] = w
	return w
}

func (b *DD) heavybranch(e, budget int, weights map[int]float64) int {
	if b.isconst(e) {
		return e
	}
	if budget <= 1 {
		// out of budget: keep only the heaviest path
		if b.minterms(b.high(e), weights) >= b.minterms(b.low(e), weights) {
			high := b.pushref(b.heavybranch(b.high(e), budget, weights))
			res := b.makenode(b.varof(e), bddzero, high)
			b.popref(1)
			return res
		}
		low := b.pushref(b.heavybranch(b.low(e), budget, weights))
		res := b.makenode(b.varof(e), low, bddzero)
		b.popref(1)
		return res
	}
	// split the remaining budget, favoring the heavier branch
	heavyfirst := b.minterms(b.high(e), weights) >= b.minterms(b.low(e), weights)
	bh := (2 * (budget - 1)) / 3
	bl := budget - 1 - bh
	if !heavyfirst {
		bh, bl = bl, bh
	}
	low := b.pushref(b.heavybranch(b.low(e), bl, weights))
	high := b.pushref(b.heavybranch(b.high(e), bh, weights))
	res := b.makenode(b.varof(e), low, high)
	b.popref(2)
	return res
}

// SupersetHeavyBranch is the dual of SubsetHeavyBranch.
func (b *DD) SupersetHeavyBranch(f Node, threshold int) Node {
	nf := b.Not(f)
	if nf == nil {
		return nil
	}
	sub := b.SubsetHeavyBranch(nf, threshold)
	b.RecursiveDeref(nf)
	if sub == nil {
		return nil
	}
	res := b.Not(sub)
	b.RecursiveDeref(sub)
	return res
}

// SubsetCompress chains the two subsetting heuristics: short paths first,
// then heavy branch, like the compress method of the original implementation.
func (b *DD) SubsetCompress(f Node, pathbound, threshold int) Node {
	sp := b.SubsetShortPaths(f, pathbound)
	if sp == nil {
		return nil
	}
	res := b.SubsetHeavyBranch(sp, threshold)
	b.RecursiveDeref(sp)
	return res
}
