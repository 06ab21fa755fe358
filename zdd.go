// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

// Zero-suppressed decision diagrams. ZDD nodes live in the same arena as the
// other families but have their own unique subtables and their own (fixed)
// variable order. The empty family is the arithmetic zero terminal and the
// unit family (the set holding only the empty combination) is the constant
// one.

package godd

import (
	"math/big"
)

// ZddEmpty returns the ZDD of the empty family.
func (b *DD) ZddEmpty() Node {
	x := b.azero
	return &x
}

// ZddBase returns the ZDD of the family holding only the empty combination.
func (b *DD) ZddBase() Node {
	return bddtrue
}

func (b *DD) zddcheck(name string, ns ...Node) bool {
	for _, n := range ns {
		if b.checkptr(n) != nil {
			b.seterror("wrong operand in call to %s", name)
			return false
		}
	}
	return true
}

// ZddUnion returns the union of the two families f and g.
func (b *DD) ZddUnion(f, g Node) Node {
	b.prologue()
	if !b.zddcheck("ZddUnion", f, g) {
		return nil
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	res := b.zunion(*f, *g)
	b.popref(2)
	return b.retnode(res)
}

func (b *DD) zunion(left, right int) int {
	if left < 0 || right < 0 {
		return -1
	}
	if left == b.azero || left == right {
		return right
	}
	if right == b.azero {
		return left
	}
	if left > right {
		left, right = right, left
	}
	if res := b.matchapply(int(opzunion), left, right); res >= 0 {
		return res
	}
	if b.timedout() {
		return -1
	}
	leftlvl := b.zlevel(left)
	rightlvl := b.zlevel(right)
	var res int
	switch {
	case leftlvl == rightlvl:
		low := b.pushref(b.zunion(b.low(left), b.low(right)))
		high := b.pushref(b.zunion(b.high(left), b.high(right)))
		res = b.zmakenode(b.varof(left), low, high)
		b.popref(2)
	case leftlvl < rightlvl:
		low := b.pushref(b.zunion(b.low(left), right))
		res = b.zmakenode(b.varof(left), low, b.high(left))
		b.popref(1)
	default:
		low := b.pushref(b.zunion(left, b.low(right)))
		res = b.zmakenode(b.varof(right), low, b.high(right))
		b.popref(1)
	}
	return b.setapply(int(opzunion), left, right, res)
}

// ZddIntersect returns the intersection of the two families f and g.
func (b *DD) ZddIntersect(f, g Node) Node {
	b.prologue()
	if !b.zddcheck("ZddIntersect", f, g) {
		return nil
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	res := b.zinter(*f, *g)
	b.popref(2)
	return b.retnode(res)
}

func (b *DD) zinter(left, right int) int {
	if left < 0 || right < 0 {
		return -1
	}
	if left == b.azero || right == b.azero {
		return b.azero
	}
	if left == right {
		return left
	}
	if left > right {
		left, right = right, left
	}
	if res := b.matchapply(int(opzinter), left, right); res >= 0 {
		return res
	}
	if b.timedout() {
		return -1
	}
	leftlvl := b.zlevel(left)
	rightlvl := b.zlevel(right)
	var res int
	switch {
	case leftlvl == rightlvl:
		low := b.pushref(b.zinter(b.low(left), b.low(right)))
		high := b.pushref(b.zinter(b.high(left), b.high(right)))
		res = b.zmakenode(b.varof(left), low, high)
		b.popref(2)
	case leftlvl < rightlvl:
		res = b.zinter(b.low(left), right)
	default:
		res = b.zinter(left, b.low(right))
	}
	return b.setapply(int(opzinter), left, right, res)
}

// ZddDiff returns the family of the combinations of f that are not in g.
func (b *DD) ZddDiff(f, g Node) Node {
	b.prologue()
	if !b.zddcheck("ZddDiff", f, g) {
		return nil
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	res := b.zdiff(*f, *g)
	b.popref(2)
	return b.retnode(res)
}

func (b *DD) zdiff(left, right int) int {
	if left < 0 || right < 0 {
		return -1
	}
	if left == b.azero || left == right {
		return b.azero
	}
	if right == b.azero {
		return left
	}
	if res := b.matchapply(int(opzdiff), left, right); res >= 0 {
		return res
	}
	if b.timedout() {
		return -1
	}
	leftlvl := b.zlevel(left)
	rightlvl := b.zlevel(right)
	var res int
	switch {
	case leftlvl == rightlvl:
		low := b.pushref(b.zdiff(b.low(left), b.low(right)))
		high := b.pushref(b.zdiff(b.high(left), b.high(right)))
		res = b.zmakenode(b.varof(left), low, high)
		b.popref(2)
	case leftlvl < rightlvl:
		low := b.pushref(b.zdiff(b.low(left), right))
		res = b.zmakenode(b.varof(left), low, b.high(left))
		b.popref(1)
	default:
		res = b.zdiff(left, b.low(right))
	}
	return b.setapply(int(opzdiff), left, right, res)
}

// ZddIte computes the if-then-else of three families, seen as characteristic
// functions: a combination is in the result when it is in g if it is in f, and
// when it is in h otherwise.
func (b *DD) ZddIte(f, g, h Node) Node {
	b.prologue()
	if !b.zddcheck("ZddIte", f, g, h) {
		return nil
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	b.pushref(*h)
	res := b.zite(*f, *g, *h)
	b.popref(3)
	return b.retnode(res)
}

func (b *DD) zite(f, g, h int) int {
	if f < 0 || g < 0 || h < 0 {
		return -1
	}
	if res := b.matchite(b.zitecache, f, g, h); res >= 0 {
		return res
	}
	fg := b.pushref(b.zinter(f, g))
	hf := b.pushref(b.zdiff(h, f))
	res := b.zunion(fg, hf)
	b.popref(2)
	return b.setite(b.zitecache, f, g, h, res)
}

// ************************************************************

// ZddChange returns the family obtained by flipping the presence of variable
// v in every combination of f.
func (b *DD) ZddChange(f Node, v int) Node {
	b.prologue()
	if !b.zddcheck("ZddChange", f) {
		return nil
	}
	if v < 0 || int32(v) >= b.zvarnum {
		return b.seterrcode(InvalidInput, "unknown ZDD variable (%d) in ZddChange", v)
	}
	b.initref()
	b.pushref(*f)
	res := b.zchange(*f, int32(v))
	b.popref(1)
	return b.retnode(res)
}

func (b *DD) zchange(f int, v int32) int {
	if f < 0 {
		return -1
	}
	if f == b.azero {
		return b.azero
	}
	vlvl := b.zvar2level[v]
	if b.zlevel(f) > vlvl {
		// v appears in no combination: add it to all of them
		return b.zmakenode(v, b.azero, f)
	}
	if res := b.matchmisc(f, int(v), cacheZCHANGE); res >= 0 {
		return res
	}
	var res int
	if b.zlevel(f) == vlvl {
		res = b.zmakenode(v, b.high(f), b.low(f))
	} else {
		low := b.pushref(b.zchange(b.low(f), v))
		high := b.pushref(b.zchange(b.high(f), v))
		res = b.zmakenode(b.varof(f), low, high)
		b.popref(2)
	}
	return b.setmisc(f, int(v), cacheZCHANGE, res)
}

// ZddSubset1 returns the combinations of f containing variable v, with v
// removed.
func (b *DD) ZddSubset1(f Node, v int) Node {
	b.prologue()
	if !b.zddcheck("ZddSubset1", f) {
		return nil
	}
	if v < 0 || int32(v) >= b.zvarnum {
		return b.seterrcode(InvalidInput, "unknown ZDD variable (%d) in ZddSubset1", v)
	}
	b.initref()
	b.pushref(*f)
	res := b.zsubset1(*f, int32(v))
	b.popref(1)
	return b.retnode(res)
}

func (b *DD) zsubset1(f int, v int32) int {
	if f < 0 {
		return -1
	}
	vlvl := b.zvar2level[v]
	if b.zlevel(f) > vlvl {
		return b.azero
	}
	if b.zlevel(f) == vlvl {
		return b.high(f)
	}
	if res := b.matchmisc(f, int(v), cacheZSUB1); res >= 0 {
		return res
	}
	low := b.pushref(b.zsubset1(b.low(f), v))
	high := b.pushref(b.zsubset1(b.high(f), v))
	res := b.zmakenode(b.varof(f), low, high)
	b.popref(2)
	return b.setmisc(f, int(v), cacheZSUB1, res)
}

// ZddSubset0 returns the combinations of f not containing variable v.
func (b *DD) ZddSubset0(f Node, v int) Node {
	b.prologue()
	if !b.zddcheck("ZddSubset0", f) {
		return nil
	}
	if v < 0 || int32(v) >= b.zvarnum {
		return b.seterrcode(InvalidInput, "unknown ZDD variable (%d) in ZddSubset0", v)
	}
	b.initref()
	b.pushref(*f)
	res := b.zsubset0(*f, int32(v))
	b.popref(1)
	return b.retnode(res)
}

func (b *DD) zsubset0(f int, v int32) int {
	if f < 0 {
		return -1
	}
	vlvl := b.zvar2level[v]
	if b.zlevel(f) > vlvl {
		return f
	}
	if b.zlevel(f) == vlvl {
		return b.low(f)
	}
	if res := b.matchmisc(f, int(v), cacheZSUB0); res >= 0 {
		return res
	}
	low := b.pushref(b.zsubset0(b.low(f), v))
	high := b.pushref(b.zsubset0(b.high(f), v))
	res := b.zmakenode(b.varof(f), low, high)
	b.popref(2)
	return b.setmisc(f, int(v), cacheZSUB0, res)
}

// ************************************************************

// ZddCount returns the number of combinations in the family f, using
// arbitrary-precision arithmetic.
func (b *DD) ZddCount(f Node) *big.Int {
	if !b.zddcheck("ZddCount", f) {
		return big.NewInt(0)
	}
	memo := make(map[int]*big.Int)
	return b.zcount(*f, memo)
}

func (b *DD) zcount(f int, memo map[int]*big.Int) *big.Int {
	if f == b.azero {
		return big.NewInt(0)
	}
	if b.isconst(f) {
		return big.NewInt(1)
	}
	if res, ok := memo[f]; ok {
		return res
	}
	res := big.NewInt(0)
	res.Add(b.zcount(b.low(f), memo), b.zcount(b.high(f), memo))
	memo[f] = res
	return res
}

// ************************************************************

// ZddProduct computes the product of two covers represented as ZDDs over
// paired literal variables (see ZddVarsFromBddVars with multiplicity 2): the
// family of the concatenations of one cube of f and one cube of g, with the
// contradictory cubes (holding both literals of a variable) dropped.
func (b *DD) ZddProduct(f, g Node) Node {
	b.prologue()
	if !b.zddcheck("ZddProduct", f, g) {
		return nil
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	res := b.zproduct(*f, *g)
	b.popref(2)
	return b.retnode(res)
}

func (b *DD) zproduct(f, g int) int {
	if f < 0 || g < 0 {
		return -1
	}
	if f == b.azero || g == b.azero {
		return b.azero
	}
	if f == bddone {
		return g
	}
	if g == bddone {
		return f
	}
	if f > g {
		f, g = g, f
	}
	if res := b.matchmisc(f, g, cacheZPRODUCT); res >= 0 {
		return res
	}
	// decompose both covers on the positive/negative literal pair of the
	// topmost variable
	top := b.zlevel(f)
	if l := b.zlevel(g); l < top {
		top = l
	}
	vp := b.zlevel2var[top] &^ 1 // positive literal
	vn := vp | 1                 // negative literal
	fp := b.pushref(b.zsubset1(f, vp))
	fn := b.pushref(b.zsubset1(f, vn))
	fd := b.pushref(b.zsubset0zz(f, vp, vn))
	gp := b.pushref(b.zsubset1(g, vp))
	gn := b.pushref(b.zsubset1(g, vn))
	gd := b.pushref(b.zsubset0zz(g, vp, vn))
	// positive part: fp*gp + fp*gd + fd*gp ; the fp*gn terms vanish
	t1 := b.pushref(b.zproduct(fp, gp))
	t2 := b.pushref(b.zproduct(fp, gd))
	t3 := b.pushref(b.zproduct(fd, gp))
	pos := b.pushref(b.zunion(t1, b.pushref(b.zunion(t2, t3))))
	pos = b.pushref(b.zchange(pos, vp))
	// negative part
	u1 := b.pushref(b.zproduct(fn, gn))
	u2 := b.pushref(b.zproduct(fn, gd))
	u3 := b.pushref(b.zproduct(fd, gn))
	negp := b.pushref(b.zunion(u1, b.pushref(b.zunion(u2, u3))))
	negp = b.pushref(b.zchange(negp, vn))
	// don't-care part
	dd := b.pushref(b.zproduct(fd, gd))
	res := b.zunion(dd, b.pushref(b.zunion(pos, negp)))
	b.popref(20)
	return b.setmisc(f, g, cacheZPRODUCT, res)
}

// zsubset0zz removes the combinations holding either literal.
func (b *DD) zsubset0zz(f int, vp, vn int32) int {
	r := b.zsubset0(f, vp)
	if r < 0 {
		return -1
	}
	b.pushref(r)
	res := b.zsubset0(r, vn)
	b.popref(1)
	return res
}

// ZddWeakDiv computes the weak division of the cover f by the cover g, the
// largest family q such that the product of g and q stays included in f.
func (b *DD) ZddWeakDiv(f, g Node) Node {
	b.prologue()
	if !b.zddcheck("ZddWeakDiv", f, g) {
		return nil
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	res := b.zweakdiv(*f, *g)
	b.popref(2)
	return b.retnode(res)
}

func (b *DD) zweakdiv(f, g int) int {
	if f < 0 || g < 0 {
		return -1
	}
	if g == bddone {
		return f
	}
	if f == b.azero || g == b.azero {
		return b.azero
	}
	if res := b.matchmisc(f, g, cacheZWEAKDIV); res >= 0 {
		return res
	}
	v := b.varof(g) // top variable of the divisor
	g1 := b.pushref(b.zsubset1(g, v))
	g0 := b.pushref(b.zsubset0(g, v))
	f1 := b.pushref(b.zsubset1(f, v))
	f0 := b.pushref(b.zsubset0(f, v))
	res := -1
	set := false
	if g1 != b.azero {
		res = b.zweakdiv(f1, g1)
		set = true
	}
	if res != b.azero && g0 != b.azero {
		q0 := b.zweakdiv(f0, g0)
		if !set {
			res = q0
		} else {
			b.pushref(res)
			b.pushref(q0)
			res = b.zinter(res, q0)
			b.popref(2)
		}
	}
	b.popref(4)
	return b.setmisc(f, g, cacheZWEAKDIV, res)
}
