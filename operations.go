// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"fmt"
	"math/big"
)

// True returns the Node for the constant true.
func (b *DD) True() Node {
	return bddtrue
}

// False returns the Node for the constant false.
func (b *DD) False() Node {
	return bddfalse
}

// From returns a (constant) Node from a boolean value.
func (b *DD) From(v bool) Node {
	if v {
		return bddtrue
	}
	return bddfalse
}

// Not returns the negation (!n) of expression n. With complement edges a
// negation is a constant-time operation: we only flip the tag of the edge.
func (b *DD) Not(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("wrong operand in call to Not (%v)", n)
	}
	return b.retnode(*n ^ 1)
}

// Equal tests equivalence between nodes. By canonicity, two functions are
// equal exactly when their edges are.
func (b *DD) Equal(low, high Node) bool {
	if low == high {
		return true
	}
	if low == nil || high == nil {
		return false
	}
	return *low == *high
}

// ************************************************************

// neg complements an edge, letting the failure sentinel through.
func neg(e int) int {
	if e < 0 {
		return e
	}
	return e ^ 1
}

// Apply performs all of the basic bdd operations with two operands, such as
// AND, OR etc. Thanks to complement edges every operator reduces to the and
// and xor kernels. Operator opr must be one of the following:
//
//	Identifier    Description             Truth table
//
//	OPand         logical and              [0,0,0,1]
//	OPxor         logical xor              [0,1,1,0]
//	OPor          logical or               [0,1,1,1]
//	OPnand        logical not-and          [1,1,1,0]
//	OPnor         logical not-or           [1,0,0,0]
//	OPimp         implication              [1,1,0,1]
//	OPbiimp       equivalence              [1,0,0,1]
//	OPdiff        set difference           [0,0,1,0]
//	OPless        less than                [0,1,0,0]
//	OPinvimp      reverse implication      [1,0,1,1]
func (b *DD) Apply(n1, n2 Node, op Operator) Node {
	b.prologue()
	if b.checkptr(n1) != nil {
		return b.seterror("wrong operand in call to Apply %s(n1: ...)", op)
	}
	if b.checkptr(n2) != nil {
		return b.seterror("wrong operand in call to Apply %s(n2: ...)", op)
	}
	b.initref()
	b.pushref(*n1)
	b.pushref(*n2)
	res := b.apply(*n1, *n2, op)
	b.popref(2)
	return b.retnode(res)
}

func (b *DD) apply(left, right int, op Operator) int {
	switch op {
	case OPand:
		return b.and(left, right)
	case OPxor:
		return b.xor(left, right)
	case OPor:
		return neg(b.and(left^1, right^1))
	case OPnand:
		return neg(b.and(left, right))
	case OPnor:
		return b.and(left^1, right^1)
	case OPimp:
		return neg(b.and(left, right^1))
	case OPbiimp:
		return neg(b.xor(left, right))
	case OPdiff:
		return b.and(left, right^1)
	case OPless:
		return b.and(left^1, right)
	case OPinvimp:
		return neg(b.and(left^1, right))
	default:
		b.seterror("unauthorized operation (%s) in apply", op)
		return -1
	}
}

// and is the conjunction kernel: Shannon expansion on the topmost variable,
// with the computed cache probed before the recursion and the result
// canonicalized through the unique table.
func (b *DD) and(left, right int) int {
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
	// conjunction is commutative: normalize the argument order
	if left > right {
		left, right = right, left
	}
	if res := b.matchapply(int(OPand), left, right); res >= 0 {
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
		low := b.pushref(b.and(b.low(left), b.low(right)))
		high := b.pushref(b.and(b.high(left), b.high(right)))
		res = b.makenode(b.varof(left), low, high)
	case leftlvl < rightlvl:
		low := b.pushref(b.and(b.low(left), right))
		high := b.pushref(b.and(b.high(left), right))
		res = b.makenode(b.varof(left), low, high)
	default:
		low := b.pushref(b.and(left, b.low(right)))
		high := b.pushref(b.and(left, b.high(right)))
		res = b.makenode(b.varof(right), low, high)
	}
	b.popref(2)
	return b.setapply(int(OPand), left, right, res)
}

// xor is the exclusive-or kernel, the only other recursion needed to express
// the ten binary operators with complement edges.
func (b *DD) xor(left, right int) int {
	if left == right {
		return bddzero
	}
	if left == (right ^ 1) {
		return bddone
	}
	if left == bddone {
		return right ^ 1
	}
	if left == bddzero {
		return right
	}
	if right == bddone {
		return left ^ 1
	}
	if right == bddzero {
		return left
	}
	if left < 0 || right < 0 {
		return -1
	}
	// xor ignores complements: xor(f,g) = xor(!f,g) ^ 1. Stripping the tags
	// maps the four polarities of a pair to a single cache entry.
	restag := etag(left) ^ etag(right)
	left ^= etag(left)
	right ^= etag(right)
	if left > right {
		left, right = right, left
	}
	if res := b.matchapply(int(OPxor), left, right); res >= 0 {
		return neg2(res, restag)
	}
	if b.timedout() {
		return -1
	}
	leftlvl := b.level(left)
	rightlvl := b.level(right)
	var res int
	switch {
	case leftlvl == rightlvl:
		low := b.pushref(b.xor(b.low(left), b.low(right)))
		high := b.pushref(b.xor(b.high(left), b.high(right)))
		res = b.makenode(b.varof(left), low, high)
	case leftlvl < rightlvl:
		low := b.pushref(b.xor(b.low(left), right))
		high := b.pushref(b.xor(b.high(left), right))
		res = b.makenode(b.varof(left), low, high)
	default:
		low := b.pushref(b.xor(left, b.low(right)))
		high := b.pushref(b.xor(left, b.high(right)))
		res = b.makenode(b.varof(right), low, high)
	}
	b.popref(2)
	return neg2(b.setapply(int(OPxor), left, right, res), restag)
}

func neg2(e, tag int) int {
	if e < 0 {
		return e
	}
	return e ^ tag
}

// orr is the disjunction, derived from the and kernel by De Morgan.
func (b *DD) orr(left, right int) int {
	return neg(b.and(left^1, right^1))
}

// ************************************************************

// Ite (short for if-then-else operator) computes the BDD for the expression
// [(f & g) | (!f & h)] more efficiently than doing the three operations
// separately.
func (b *DD) Ite(f, g, h Node) Node {
	b.prologue()
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to Ite (f)")
	}
	if b.checkptr(g) != nil {
		return b.seterror("wrong operand in call to Ite (g)")
	}
	if b.checkptr(h) != nil {
		return b.seterror("wrong operand in call to Ite (h)")
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	b.pushref(*h)
	res := b.ite(*f, *g, *h)
	b.popref(3)
	return b.retnode(res)
}

// min3 returns the smallest value between p, q and r. This is used in function
// ite to compute the smallest level.
func min3(p, q, r int32) int32 {
	if p <= q {
		if p <= r { // p <= q && p <= r
			return p
		}
		return r // r < p <= q
	}
	if q <= r { // q < p && q <= r
		return q
	}
	return r // r < q < p
}

// iteLow returns n itself if its level p is strictly higher than q or r,
// otherwise its else cofactor. This is used in function ite to know which node
// to follow: we always follow the smallest(s) nodes.
func (b *DD) iteLow(p, q, r int32, n int) int {
	if (p > q) || (p > r) {
		return n
	}
	return b.low(n)
}

func (b *DD) iteHigh(p, q, r int32, n int) int {
	if (p > q) || (p > r) {
		return n
	}
	return b.high(n)
}

func (b *DD) ite(f, g, h int) int {
	switch {
	case f == bddone:
		return g
	case f == bddzero:
		return h
	case g == h:
		return g
	case (g == bddone) && (h == bddzero):
		return f
	case (g == bddzero) && (h == bddone):
		return f ^ 1
	case f == g:
		return b.orr(f, h)
	case f == (g ^ 1):
		return b.and(f^1, h)
	case f == h:
		return b.and(f, g)
	case f == (h ^ 1):
		return b.orr(f^1, g)
	}
	if f < 0 || g < 0 || h < 0 {
		return -1
	}
	// Normalization of the triple: the selector is uncomplemented, and so is
	// the then branch (a complement there is pushed onto the result). With
	// these two rules equivalent triples share a single cache entry.
	if etag(f) == 1 {
		f ^= 1
		g, h = h, g
	}
	restag := etag(g)
	if restag == 1 {
		g ^= 1
		h ^= 1
	}
	if res := b.matchite(b.itecache, f, g, h); res >= 0 {
		return res ^ restag
	}
	if b.timedout() {
		return -1
	}
	p := b.level(f)
	q := b.level(g)
	r := b.level(h)
	low := b.pushref(b.ite(b.iteLow(p, q, r, f), b.iteLow(q, p, r, g), b.iteLow(r, p, q, h)))
	high := b.pushref(b.ite(b.iteHigh(p, q, r, f), b.iteHigh(q, p, r, g), b.iteHigh(r, p, q, h)))
	res := b.makenode(b.level2var[min3(p, q, r)], low, high)
	b.popref(2)
	return neg2(b.setite(b.itecache, f, g, h, res), restag)
}

// ************************************************************

// Exist returns the existential quantification of n for the variables in
// varset, where varset is a node built with a method such as Makeset. We
// return nil and set the error flag in b if varset is not a positive cube.
func (b *DD) Exist(n, varset Node) Node {
	return b.quantify(n, varset, OPor, cacheidEXIST)
}

// Forall returns the universal quantification of n for the variables in
// varset.
func (b *DD) Forall(n, varset Node) Node {
	return b.quantify(n, varset, OPand, cacheidFORALL)
}

func (b *DD) quantify(n, varset Node, op Operator, id int) Node {
	b.prologue()
	if b.checkptr(n) != nil {
		return b.seterror("wrong node in call to Exist/Forall")
	}
	if b.checkptr(varset) != nil {
		return b.seterror("wrong varset in call to Exist/Forall")
	}
	if *varset == bddone { // empty set
		return b.retnode(*n)
	}
	if err := b.quantset2cache(*varset); err != nil {
		return nil
	}
	b.quantcache.id = (*varset << 3) | id
	b.quantop = op
	b.initref()
	b.pushref(*n)
	b.pushref(*varset)
	res := b.quant(*n, *varset)
	b.popref(2)
	return b.retnode(res)
}

func (b *DD) quant(n, varset int) int {
	if n < 0 {
		return -1
	}
	if b.isconst(n) || b.level(n) > b.quantlast {
		return n
	}
	if res := b.matchquant(n, varset); res >= 0 {
		return res
	}
	if b.timedout() {
		return -1
	}
	low := b.pushref(b.quant(b.low(n), varset))
	high := b.pushref(b.quant(b.high(n), varset))
	var res int
	if b.quantset[b.level(n)] == b.quantsetID {
		if b.quantop == OPand {
			res = b.and(low, high)
		} else {
			res = b.orr(low, high)
		}
	} else {
		res = b.makenode(b.varof(n), low, high)
	}
	b.popref(2)
	return b.setquant(n, varset, res)
}

// ************************************************************

// AppEx applies the binary operator *op* on the two operands, n1 and n2, then
// performs an existential quantification over the variables in varset; meaning
// it computes the value of (∃ varset . n1 op n2). This is done in a bottom-up
// manner such that both the apply and the quantification are done on the lower
// nodes before stepping up to the higher nodes. This makes AppEx much more
// efficient than an apply operation followed by a quantification. Note that,
// when *op* is a conjunction, this operation returns the relational product of
// two BDDs. Operators are restricted to OPand, OPor and OPxor.
func (b *DD) AppEx(n1, n2 Node, op Operator, varset Node) Node {
	b.prologue()
	if op != OPand && op != OPor && op != OPxor {
		return b.seterror("operator %s not supported in call to AppEx", op)
	}
	if b.checkptr(varset) != nil {
		return b.seterror("wrong varset in call to AppEx")
	}
	if *varset == bddone { // empty set
		return b.Apply(n1, n2, op)
	}
	if b.checkptr(n1) != nil {
		return b.seterror("wrong operand in call to AppEx %s(left)", op)
	}
	if b.checkptr(n2) != nil {
		return b.seterror("wrong operand in call to AppEx %s(right)", op)
	}
	if err := b.quantset2cache(*varset); err != nil {
		return nil
	}
	b.appexcache.op = int(op)
	b.appexcache.id = (*varset << 2) | b.appexcache.op
	b.quantcache.id = (b.appexcache.id << 3) | cacheidAPPEX
	b.quantop = OPor
	b.initref()
	b.pushref(*n1)
	b.pushref(*n2)
	b.pushref(*varset)
	res := b.appquant(*n1, *n2, *varset)
	b.popref(3)
	return b.retnode(res)
}

// AndAbstract is the relational product: AppEx with a conjunction.
func (b *DD) AndAbstract(n1, n2, varset Node) Node {
	return b.AppEx(n1, n2, OPand, varset)
}

// XorExistAbstract computes (∃ varset . n1 xor n2).
func (b *DD) XorExistAbstract(n1, n2, varset Node) Node {
	return b.AppEx(n1, n2, OPxor, varset)
}

func (b *DD) appquant(left, right, varset int) int {
	switch Operator(b.appexcache.op) {
	case OPand:
		if left == bddzero || right == bddzero || left == (right^1) {
			return bddzero
		}
		if left == right {
			return b.quant(left, varset)
		}
		if left == bddone {
			return b.quant(right, varset)
		}
		if right == bddone {
			return b.quant(left, varset)
		}
	case OPor:
		if left == bddone || right == bddone || left == (right^1) {
			return bddone
		}
		if left == right {
			return b.quant(left, varset)
		}
		if left == bddzero {
			return b.quant(right, varset)
		}
		if right == bddzero {
			return b.quant(left, varset)
		}
	case OPxor:
		if left == right {
			return bddzero
		}
		if left == bddzero {
			return b.quant(right, varset)
		}
		if right == bddzero {
			return b.quant(left, varset)
		}
	}
	if left < 0 || right < 0 {
		return -1
	}
	if (b.isconst(left)) && (b.isconst(right)) {
		return constapply(Operator(b.appexcache.op), left, right)
	}
	// the case where we have no more variables to quantify resolves to a
	// plain apply
	if (b.level(left) > b.quantlast) && (b.level(right) > b.quantlast) {
		return b.apply(left, right, Operator(b.appexcache.op))
	}
	if res := b.matchappex(left, right); res >= 0 {
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
		low = b.pushref(b.appquant(b.low(left), b.low(right), varset))
		high = b.pushref(b.appquant(b.high(left), b.high(right), varset))
	case leftlvl < rightlvl:
		lvl = leftlvl
		low = b.pushref(b.appquant(b.low(left), right, varset))
		high = b.pushref(b.appquant(b.high(left), right, varset))
	default:
		lvl = rightlvl
		low = b.pushref(b.appquant(left, b.low(right), varset))
		high = b.pushref(b.appquant(left, b.high(right), varset))
	}
	var res int
	if b.quantset[lvl] == b.quantsetID {
		res = b.orr(low, high)
	} else {
		res = b.makenode(b.level2var[lvl], low, high)
	}
	b.popref(2)
	return b.setappex(left, right, res)
}

// ************************************************************

// Compose substitutes the function g for variable v in f; it computes the
// result of f[v <- g].
func (b *DD) Compose(f Node, v int, g Node) Node {
	b.prologue()
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to Compose (f)")
	}
	if b.checkptr(g) != nil {
		return b.seterror("wrong operand in call to Compose (g)")
	}
	if v < 0 || int32(v) >= b.varnum {
		return b.seterrcode(InvalidInput, "unknown variable (%d) in Compose", v)
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	res := b.compose(*f, *g, int32(v))
	b.popref(2)
	return b.retnode(res)
}

func (b *DD) compose(f, g int, v int32) int {
	if f < 0 || g < 0 {
		return -1
	}
	vlvl := b.var2level[v]
	if b.level(f) > vlvl {
		return f
	}
	if res := b.matchmisc(f, g, cacheCOMPOSE|int(v)<<8); res >= 0 {
		return res
	}
	var res int
	if b.level(f) == vlvl {
		res = b.ite(g, b.high(f), b.low(f))
	} else {
		// the top variable of f stays; we rebuild with an ite because g may
		// contain variables ordered above it
		low := b.pushref(b.compose(b.low(f), g, v))
		high := b.pushref(b.compose(b.high(f), g, v))
		res = b.ite(b.varset[b.varof(f)][0], high, low)
		b.popref(2)
	}
	return b.setmisc(f, g, cacheCOMPOSE|int(v)<<8, res)
}

// ************************************************************

// Constrain computes the generalized cofactor of f with respect to c. The
// result agrees with f on c; outside of c it takes the value of f on the
// nearest point of c in the current variable order.
func (b *DD) Constrain(f, c Node) Node {
	b.prologue()
	if b.checkptr(f) != nil || b.checkptr(c) != nil {
		return b.seterror("wrong operand in call to Constrain")
	}
	if *c == bddzero {
		return b.seterrcode(InvalidInput, "constraining with the zero function")
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*c)
	res := b.constrain(*f, *c)
	b.popref(2)
	return b.retnode(res)
}

func (b *DD) constrain(f, c int) int {
	if f < 0 || c < 0 {
		return -1
	}
	if c == bddone || b.isconst(f) {
		return f
	}
	if f == c {
		return bddone
	}
	if f == (c ^ 1) {
		return bddzero
	}
	if res := b.matchmisc(f, c, cacheCONSTRAIN); res >= 0 {
		return res
	}
	flvl, clvl := b.level(f), b.level(c)
	var res int
	if clvl < flvl {
		c0, c1 := b.low(c), b.high(c)
		if c1 == bddzero {
			res = b.constrain(f, c0)
		} else if c0 == bddzero {
			res = b.constrain(f, c1)
		} else {
			low := b.pushref(b.constrain(f, c0))
			high := b.pushref(b.constrain(f, c1))
			res = b.makenode(b.varof(c), low, high)
			b.popref(2)
		}
	} else {
		var c0, c1 int
		if clvl == flvl {
			c0, c1 = b.low(c), b.high(c)
		} else {
			c0, c1 = c, c
		}
		if c1 == bddzero {
			res = b.constrain(b.low(f), c0)
		} else if c0 == bddzero {
			res = b.constrain(b.high(f), c1)
		} else {
			low := b.pushref(b.constrain(b.low(f), c0))
			high := b.pushref(b.constrain(b.high(f), c1))
			res = b.makenode(b.varof(f), low, high)
			b.popref(2)
		}
	}
	return b.setmisc(f, c, cacheCONSTRAIN, res)
}

// Restrict simplifies f using the care set c, with the sibling-substitution
// rule of Coudert and Madre. The result agrees with f on c and is usually
// smaller than f.
func (b *DD) Restrict(f, c Node) Node {
	b.prologue()
	if b.checkptr(f) != nil || b.checkptr(c) != nil {
		return b.seterror("wrong operand in call to Restrict")
	}
	if *c == bddzero {
		return b.seterrcode(InvalidInput, "restricting with the zero function")
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*c)
	res := b.restrict(*f, *c)
	b.popref(2)
	return b.retnode(res)
}

func (b *DD) restrict(f, c int) int {
	if f < 0 || c < 0 {
		return -1
	}
	if c == bddone || b.isconst(f) {
		return f
	}
	if f == c {
		return bddone
	}
	if f == (c ^ 1) {
		return bddzero
	}
	if res := b.matchmisc(f, c, cacheRESTRICT); res >= 0 {
		return res
	}
	flvl, clvl := b.level(f), b.level(c)
	var res int
	switch {
	case clvl < flvl:
		// the top variable of c does not appear in f: abstract it away
		cq := b.pushref(b.orr(b.low(c), b.high(c)))
		res = b.restrict(f, cq)
		b.popref(1)
	case clvl == flvl:
		c0, c1 := b.low(c), b.high(c)
		if c1 == bddzero {
			res = b.restrict(b.low(f), c0)
		} else if c0 == bddzero {
			res = b.restrict(b.high(f), c1)
		} else {
			low := b.pushref(b.restrict(b.low(f), c0))
			high := b.pushref(b.restrict(b.high(f), c1))
			res = b.makenode(b.varof(f), low, high)
			b.popref(2)
		}
	default:
		low := b.pushref(b.restrict(b.low(f), c))
		high := b.pushref(b.restrict(b.high(f), c))
		res = b.makenode(b.varof(f), low, high)
		b.popref(2)
	}
	return b.setmisc(f, c, cacheRESTRICT, res)
}

// Minimize returns the smallest, in DAG size, of f, Constrain(f, c) and
// Restrict(f, c). Any of the three is a valid simplification of f under the
// care set c.
func (b *DD) Minimize(f, c Node) Node {
	b.prologue()
	if b.checkptr(f) != nil || b.checkptr(c) != nil {
		return b.seterror("wrong operand in call to Minimize")
	}
	if *c == bddzero {
		return b.seterrcode(InvalidInput, "minimizing with the zero function")
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*c)
	rcon := b.pushref(b.constrain(*f, *c))
	rres := b.pushref(b.restrict(*f, *c))
	best := *f
	bestsize := b.countrec(*f)
	if rcon >= 0 && b.countrec(rcon) < bestsize {
		best = rcon
		bestsize = b.countrec(rcon)
	}
	if rres >= 0 && b.countrec(rres) < bestsize {
		best = rres
	}
	if rcon < 0 || rres < 0 {
		best = -1
	}
	b.popref(4)
	return b.retnode(best)
}

// ************************************************************

// Leq returns true when the implication (f -> g) is valid. The test does not
// build any new node.
func (b *DD) Leq(f, g Node) bool {
	if b.checkptr(f) != nil || b.checkptr(g) != nil {
		b.seterror("wrong operand in call to Leq")
		return false
	}
	return b.leq(*f, *g)
}

func (b *DD) leq(f, g int) bool {
	if f == g || f == bddzero || g == bddone {
		return true
	}
	if f == bddone || g == bddzero || f == (g^1) {
		return false
	}
	if res := b.matchmisc(f, g, cacheLEQ); res >= 0 {
		return res == bddone
	}
	flvl, glvl := b.level(f), b.level(g)
	var f0, f1, g0, g1 int
	f0, f1, g0, g1 = f, f, g, g
	if flvl <= glvl {
		f0, f1 = b.low(f), b.high(f)
	}
	if glvl <= flvl {
		g0, g1 = b.low(g), b.high(g)
	}
	res := b.leq(f0, g0) && b.leq(f1, g1)
	e := bddzero
	if res {
		e = bddone
	}
	b.setmisc(f, g, cacheLEQ, e)
	return res
}

// Intersect returns a function included in the conjunction of f and g, and
// different from zero exactly when f and g intersect. It is a cheap witness of
// the intersection, computed without building the conjunction.
func (b *DD) Intersect(f, g Node) Node {
	b.prologue()
	if b.checkptr(f) != nil || b.checkptr(g) != nil {
		return b.seterror("wrong operand in call to Intersect")
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	res := b.intersect(*f, *g)
	b.popref(2)
	return b.retnode(res)
}

func (b *DD) intersect(f, g int) int {
	if f < 0 || g < 0 {
		return -1
	}
	if f == bddzero || g == bddzero || f == (g^1) {
		return bddzero
	}
	if f == bddone || f == g {
		return g
	}
	if g == bddone {
		return f
	}
	if res := b.matchmisc(f, g, cacheINTERSECT); res >= 0 {
		return res
	}
	flvl, glvl := b.level(f), b.level(g)
	var f0, f1, g0, g1 int
	f0, f1, g0, g1 = f, f, g, g
	var v int32
	if flvl <= glvl {
		f0, f1 = b.low(f), b.high(f)
		v = b.varof(f)
	}
	if glvl <= flvl {
		g0, g1 = b.low(g), b.high(g)
		v = b.varof(g)
	}
	var res int
	high := b.pushref(b.intersect(f1, g1))
	if high != bddzero {
		res = b.makenode(v, bddzero, high)
	} else {
		low := b.pushref(b.intersect(f0, g0))
		res = b.makenode(v, low, bddzero)
		b.popref(1)
	}
	b.popref(1)
	return b.setmisc(f, g, cacheINTERSECT, res)
}

// ************************************************************

// Makeset returns a node corresponding to the conjunction (the cube) of all
// the variables in varset, in their positive form. Scanset(Makeset(a)) returns
// the variables of a, without duplicates and sorted by their current level. It
// returns nil if one of the variables is outside
// the scope of the DD.
func (b *DD) Makeset(varset []int) Node {
	res := bddone
	b.initref()
	b.pushref(res)
	for _, v := range varset {
		if v < 0 || int32(v) >= b.varnum {
			b.popref(1)
			return b.seterrcode(InvalidInput, "unknown variable (%d) in Makeset", v)
		}
		tmp := b.and(res, b.varset[v][0])
		if tmp < 0 {
			b.popref(1)
			return nil
		}
		b.popref(1)
		res = b.pushref(tmp)
	}
	b.popref(1)
	return b.retnode(res)
}

// Scanset returns the set of variable indexes found when following the high
// branch of node n. This is the dual of function Makeset. The result may be
// nil if there is an error and it is an empty slice if the set is empty.
func (b *DD) Scanset(n Node) []int {
	if b.checkptr(n) != nil {
		return nil
	}
	res := []int{}
	for i := *n; !b.isconst(i); i = b.high(i) {
		res = append(res, int(b.varof(i)))
	}
	return res
}

// Ithvar returns a BDD representing the i'th variable on success. Variables
// are created on demand: asking for a variable outside the current range
// extends the DD.
func (b *DD) Ithvar(i int) Node {
	if i < 0 || int32(i) >= _MAXVAR {
		return b.seterrcode(InvalidInput, "invalid variable (%d) in Ithvar", i)
	}
	if int32(i) >= b.varnum {
		if err := b.SetVarnum(i + 1); err != nil {
			return nil
		}
	}
	x := b.varset[i][0]
	return &x
}

// NIthvar returns a node representing the negation of the i'th variable. See
// Ithvar for further info.
func (b *DD) NIthvar(i int) Node {
	if n := b.Ithvar(i); n != nil {
		x := *n ^ 1
		return &x
	}
	return nil
}

// Low returns the else branch of a BDD, or nil if there is an error. The
// complement flag of n, if any, is propagated to the child.
func (b *DD) Low(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("wrong operand in call to Low")
	}
	if b.isconst(*n) {
		return b.seterror("constant operand in call to Low")
	}
	return b.retnode(b.low(*n))
}

// High returns the then branch of a BDD.
func (b *DD) High(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("wrong operand in call to High")
	}
	if b.isconst(*n) {
		return b.seterror("constant operand in call to High")
	}
	return b.retnode(b.high(*n))
}

// ************************************************************

// Support returns the cube of the variables that the function denoted by n
// depends on.
func (b *DD) Support(n Node) Node {
	return b.Makeset(b.SupportIndices(n))
}

// SupportIndices returns the indexes of the variables in the support of n,
// sorted by their current level.
func (b *DD) SupportIndices(n Node) []int {
	if b.checkptr(n) != nil {
		return nil
	}
	seen := make(map[int]bool)
	insupp := make([]bool, b.varnum)
	b.supportrec(enode(*n), seen, insupp)
	res := []int{}
	for lvl := int32(0); lvl < b.varnum; lvl++ {
		if insupp[b.level2var[lvl]] {
			res = append(res, int(b.level2var[lvl]))
		}
	}
	return res
}

func (b *DD) supportrec(n int, seen map[int]bool, insupp []bool) {
	if b.nodes[n].index&_MAXVAR == _CONSTINDEX || seen[n] {
		return
	}
	seen[n] = true
	insupp[b.nodes[n].index&_MAXVAR] = true
	b.supportrec(enode(b.nodes[n].low), seen, insupp)
	b.supportrec(enode(b.nodes[n].high), seen, insupp)
}

// NodeCount returns the number of distinct nodes in the DAG rooted at n,
// terminals excluded.
func (b *DD) NodeCount(n Node) int {
	if b.checkptr(n) != nil {
		return 0
	}
	return b.countrec(*n)
}

func (b *DD) countrec(e int) int {
	if e < 0 {
		return 0
	}
	seen := make(map[int]bool)
	var walk func(int) int
	walk = func(e int) int {
		n := enode(e)
		if b.nodes[n].index&_MAXVAR == _CONSTINDEX || seen[n] {
			return 0
		}
		seen[n] = true
		return 1 + walk(b.nodes[n].low) + walk(b.nodes[n].high)
	}
	return walk(e)
}

// ************************************************************

// satlevel caps the synthetic level of terminals at varnum for assignment
// counting.
func (b *DD) satlevel(e int) int32 {
	if lvl := b.level(e); lvl < b.varnum {
		return lvl
	}
	return b.varnum
}

// Satcount computes the number of satisfying variable assignments for the
// function denoted by n. We return a result using arbitrary-precision
// arithmetic to avoid possible overflows. The result is zero (and we set the
// error flag of b) if there is an error.
func (b *DD) Satcount(n Node) *big.Int {
	res := big.NewInt(0)
	if b.checkptr(n) != nil {
		b.seterror("wrong operand in call to Satcount")
		return res
	}
	// We compute 2^level with a bit shift 1 << level
	res.SetBit(res, int(b.satlevel(*n)), 1)
	satc := make(map[int]*big.Int)
	return res.Mul(res, b.satcount(*n, satc))
}

func (b *DD) satcount(e int, satc map[int]*big.Int) *big.Int {
	if e == bddone {
		return big.NewInt(1)
	}
	if e == bddzero {
		return big.NewInt(0)
	}
	// we use satc to memoize the value of satcount for each edge; the
	// complement flag is part of the key
	res, ok := satc[e]
	if ok {
		return res
	}
	level := b.level(e)
	low := b.low(e)
	high := b.high(e)
	res = big.NewInt(0)
	two := big.NewInt(0)
	two.SetBit(two, int(b.satlevel(low)-level-1), 1)
	res.Add(res, two.Mul(two, b.satcount(low, satc)))
	two = big.NewInt(0)
	two.SetBit(two, int(b.satlevel(high)-level-1), 1)
	res.Add(res, two.Mul(two, b.satcount(high, satc)))
	satc[e] = res
	return res
}

// Allsat iterates through all legal variable assignments for n and calls the
// function f on each of them. We pass an int slice of length varnum to f where
// each entry is either 0 if the variable is false, 1 if it is true, and -1 if
// it is a don't care. The entries are indexed by level. We stop and return an
// error if f returns an error at some point.
func (b *DD) Allsat(f func([]int) error, n Node) error {
	if b.checkptr(n) != nil {
		return fmt.Errorf("wrong node in call to Allsat")
	}
	prof := make([]int, b.varnum)
	for k := range prof {
		prof[k] = -1
	}
	// the function does not create new nodes, so we do not need to take care
	// of possible resizing
	return b.allsat(*n, prof, f)
}

func (b *DD) allsat(e int, prof []int, f func([]int) error) error {
	if e == bddone {
		return f(prof)
	}
	if e == bddzero {
		return nil
	}
	if low := b.low(e); low != bddzero {
		prof[b.level(e)] = 0
		for v := b.satlevel(low) - 1; v > b.level(e); v-- {
			prof[v] = -1
		}
		if err := b.allsat(low, prof, f); err != nil {
			return err
		}
	}
	if high := b.high(e); high != bddzero {
		prof[b.level(e)] = 1
		for v := b.satlevel(high) - 1; v > b.level(e); v-- {
			prof[v] = -1
		}
		if err := b.allsat(high, prof, f); err != nil {
			return err
		}
	}
	return nil
}

// PickOneCube returns one satisfying assignment of n, indexed by variable,
// with -1 denoting a don't care. The result is nil when n is the zero
// function.
func (b *DD) PickOneCube(n Node) []int {
	if b.checkptr(n) != nil || *n == bddzero {
		return nil
	}
	prof := make([]int, b.varnum)
	for k := range prof {
		prof[k] = -1
	}
	for e := *n; !b.isconst(e); {
		if low := b.low(e); low != bddzero {
			prof[b.varof(e)] = 0
			e = low
		} else {
			prof[b.varof(e)] = 1
			e = b.high(e)
		}
	}
	return prof
}

// Allnodes applies function f over all the nodes accessible from the nodes in
// the sequence n..., or all the active nodes if n is absent (len(n) == 0). The
// parameters to function f are the position, level, and the else and then
// edges of each node; an odd edge value denotes a complemented reference to
// the node at position edge/2. We stop the computation and return an error if
// f returns an error at some point.
func (b *DD) Allnodes(f func(id, level, low, high int) error, n ...Node) error {
	for _, v := range n {
		if err := b.checkptr(v); err != nil {
			return fmt.Errorf("wrong node in call to Allnodes")
		}
	}
	if len(n) == 0 {
		for k, v := range b.nodes {
			if v.low != -1 && v.index&_MAXVAR != _CONSTINDEX && !b.isdead(k) {
				if err := f(k, b.displaylevel(v.index&_MAXVAR), v.low, v.high); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, v := range n {
		b.markrec(enode(*v))
	}
	for k := range b.nodes {
		if b.ismarked(k) {
			b.unmarknode(k)
			nd := &b.nodes[k]
			if err := f(k, b.displaylevel(nd.index&_MAXVAR), nd.low, nd.high); err != nil {
				b.unmarkall()
				return err
			}
		}
	}
	return nil
}

// displaylevel reports the level of a variable index for traversal callbacks.
// Indexes outside the BDD universe belong to ZDD-only variables, whose order
// is fixed.
func (b *DD) displaylevel(idx int32) int {
	if idx < b.varnum {
		return int(b.var2level[idx])
	}
	return int(idx)
}
