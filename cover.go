// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

// Conversions between the BDD and ZDD universes, and the computation of
// irredundant sum-of-products covers (Minato-Morreale ISOP).

package godd

// PortFromBdd converts a BDD into the ZDD of its satisfying assignments, over
// a ZDD universe mirroring the BDD variables one for one (see
// ZddVarsFromBddVars with multiplicity 1).
func (b *DD) PortFromBdd(f Node) Node {
	b.prologue()
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to PortFromBdd")
	}
	if b.zvarnum < b.varnum {
		if err := b.zddvarnum(int(b.varnum)); err != nil {
			return nil
		}
	}
	memo := make(map[[2]int]int)
	b.initref()
	b.pushref(*f)
	res := b.portfrombdd(*f, 0, memo)
	out := b.retnode(res)
	b.popref(len(b.refstack))
	return out
}

func (b *DD) portfrombdd(e int, level int32, memo map[[2]int]int) int {
	if e < 0 {
		return -1
	}
	if level == b.varnum {
		if e == bddone {
			return bddone
		}
		return b.azero
	}
	if res, ok := memo[[2]int{e, int(level)}]; ok {
		return res
	}
	v := b.level2var[level]
	var low, high int
	if b.isconst(e) || b.level(e) > level {
		// the variable is a don't care: keep both branches
		sub := b.pushref(b.portfrombdd(e, level+1, memo))
		low, high = sub, sub
		b.popref(1)
	} else {
		low = b.pushref(b.portfrombdd(b.low(e), level+1, memo))
		high = b.portfrombdd(b.high(e), level+1, memo)
		b.popref(1)
	}
	b.pushref(low)
	b.pushref(high)
	res := b.zmakenode(v, low, high)
	b.popref(2)
	b.pushref(res)
	memo[[2]int{e, int(level)}] = res
	return res
}

// PortToBdd converts the ZDD of a set of assignments back into a BDD. It is
// the inverse of PortFromBdd.
func (b *DD) PortToBdd(f Node) Node {
	b.prologue()
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to PortToBdd")
	}
	memo := make(map[[2]int]int)
	b.initref()
	b.pushref(*f)
	res := b.porttobdd(*f, 0, memo)
	out := b.retnode(res)
	b.popref(len(b.refstack))
	return out
}

func (b *DD) porttobdd(e int, level int32, memo map[[2]int]int) int {
	if e < 0 {
		return -1
	}
	if level == b.varnum {
		if e == b.azero {
			return bddzero
		}
		return bddone
	}
	if res, ok := memo[[2]int{e, int(level)}]; ok {
		return res
	}
	v := b.level2var[level]
	var low, high int
	if e == b.azero || b.isconst(e) || b.zvar2level[b.varof(e)] > b.zvar2level[v] {
		// a missing level means the variable must be false
		low = b.pushref(b.porttobdd(e, level+1, memo))
		high = bddzero
		b.popref(1)
	} else {
		low = b.pushref(b.porttobdd(b.low(e), level+1, memo))
		high = b.porttobdd(b.high(e), level+1, memo)
		b.popref(1)
	}
	b.pushref(low)
	b.pushref(high)
	res := b.makenode(v, low, high)
	b.popref(2)
	b.pushref(res)
	memo[[2]int{e, int(level)}] = res
	return res
}

// ************************************************************

// ZddIsop computes an irredundant sum-of-products cover sitting between the
// two Boolean bounds l and u (l must imply u). It returns the BDD of the cover
// and its ZDD representation over paired literal variables (see
// ZddVarsFromBddVars with multiplicity 2).
func (b *DD) ZddIsop(l, u Node) (Node, Node) {
	b.prologue()
	if b.checkptr(l) != nil || b.checkptr(u) != nil {
		b.seterror("wrong operand in call to ZddIsop")
		return nil, nil
	}
	if !b.leq(*l, *u) {
		b.seterrcode(InvalidInput, "lower bound does not imply upper bound in ZddIsop")
		return nil, nil
	}
	if b.zvarnum < 2*b.varnum {
		if err := b.zddvarnum(2 * int(b.varnum)); err != nil {
			return nil, nil
		}
	}
	b.initref()
	b.pushref(*l)
	b.pushref(*u)
	rbdd, rzdd := b.isop(*l, *u)
	nb := b.retnode(rbdd)
	nz := b.retnode(rzdd)
	b.popref(2)
	return nb, nz
}

// IrrCover computes an irredundant sum-of-products cover of f, as a ZDD over
// paired literal variables.
func (b *DD) IrrCover(f Node) Node {
	_, z := b.ZddIsop(f, f)
	return z
}

func (b *DD) isop(l, u int) (int, int) {
	if l < 0 || u < 0 {
		return -1, -1
	}
	if l == bddzero {
		return bddzero, b.azero
	}
	if u == bddone {
		return bddone, bddone
	}
	if rb := b.matchmisc(l, u, cacheISOPBDD); rb >= 0 {
		if rz := b.matchmisc(l, u, cacheISOPZDD); rz >= 0 {
			return rb, rz
		}
	}
	// decompose on the topmost variable of the two bounds
	top := b.level(l)
	if lv := b.level(u); lv < top {
		top = lv
	}
	v := b.level2var[top]
	zv := 2 * v // positive literal; 2v+1 is the negative one
	var l0, l1, u0, u1 int
	l0, l1, u0, u1 = l, l, u, u
	if b.level(l) == top {
		l0, l1 = b.low(l), b.high(l)
	}
	if b.level(u) == top {
		u0, u1 = b.low(u), b.high(u)
	}
	// the part of each cofactor that must be covered with the opposite
	// literal excluded
	lsub0 := b.pushref(b.and(l0, neg(u1)))
	lsub1 := b.pushref(b.and(l1, neg(u0)))
	isop0, zdd0 := b.isop(lsub0, u0)
	b.pushref(isop0)
	b.pushref(zdd0)
	isop1, zdd1 := b.isop(lsub1, u1)
	b.pushref(isop1)
	b.pushref(zdd1)
	// what remains must be covered by cubes without the variable
	lsuper0 := b.pushref(b.and(l0, neg(isop0)))
	lsuper1 := b.pushref(b.and(l1, neg(isop1)))
	ld := b.pushref(b.orr(lsuper0, lsuper1))
	ud := b.pushref(b.and(u0, u1))
	isopd, zddd := b.isop(ld, ud)
	b.pushref(isopd)
	b.pushref(zddd)
	// assemble the BDD of the cover
	t0 := b.pushref(b.and(b.varset[v][1], isop0))
	t1 := b.pushref(b.and(b.varset[v][0], isop1))
	rb := b.pushref(b.orr(isopd, b.pushref(b.orr(t0, t1))))
	// assemble the ZDD of the cover
	z1 := b.pushref(b.zchange(zdd1, zv))
	z0 := b.pushref(b.zchange(zdd0, zv+1))
	rz := b.zunion(zddd, b.pushref(b.zunion(z1, z0)))
	b.popref(19)
	if rb < 0 || rz < 0 {
		return -1, -1
	}
	b.setmisc(l, u, cacheISOPBDD, rb)
	b.setmisc(l, u, cacheISOPZDD, rz)
	return rb, rz
}
