// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

// Bridges between the three function families, and between managers.

package godd

// BddToAdd converts a BDD into a 0-1 ADD.
func (b *DD) BddToAdd(f Node) Node {
	b.prologue()
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to BddToAdd")
	}
	b.initref()
	b.pushref(*f)
	res := b.bddtoadd(*f)
	b.popref(1)
	return b.retnode(res)
}

func (b *DD) bddtoadd(f int) int {
	if f < 0 {
		return -1
	}
	if f == bddone {
		return bddone
	}
	if f == bddzero {
		return b.azero
	}
	if res := b.matchmisc(f, 0, cacheBDDTOADD); res >= 0 {
		return res
	}
	low := b.pushref(b.bddtoadd(b.low(f)))
	high := b.pushref(b.bddtoadd(b.high(f)))
	res := b.addmakenode(b.varof(f), low, high)
	b.popref(2)
	return b.setmisc(f, 0, cacheBDDTOADD, res)
}

// AddBddPattern converts an ADD into a BDD, mapping every non-zero terminal
// to true. It is a left inverse of BddToAdd on 0-1 ADDs.
func (b *DD) AddBddPattern(f Node) Node {
	b.prologue()
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to AddBddPattern")
	}
	b.initref()
	b.pushref(*f)
	res := b.addtobdd(*f, 0, 0, cacheADDPATTERN, func(v float64) bool { return v != 0 })
	b.popref(1)
	return b.retnode(res)
}

// AddBddThreshold converts an ADD into the BDD of the terminals with value at
// least threshold.
func (b *DD) AddBddThreshold(f Node, threshold float64) Node {
	b.prologue()
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to AddBddThreshold")
	}
	t := b.maketerminal(threshold)
	if t < 0 {
		return nil
	}
	b.initref()
	b.pushref(*f)
	res := b.addtobdd(*f, t, 0, cacheTHRESHOLD, func(v float64) bool { return v >= threshold })
	b.popref(1)
	return b.retnode(res)
}

// AddBddStrictThreshold converts an ADD into the BDD of the terminals with
// value strictly greater than threshold.
func (b *DD) AddBddStrictThreshold(f Node, threshold float64) Node {
	b.prologue()
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to AddBddStrictThreshold")
	}
	t := b.maketerminal(threshold)
	if t < 0 {
		return nil
	}
	b.initref()
	b.pushref(*f)
	res := b.addtobdd(*f, t, 0, cacheSTRICTTHR, func(v float64) bool { return v > threshold })
	b.popref(1)
	return b.retnode(res)
}

// AddBddInterval converts an ADD into the BDD of the terminals with value in
// the closed interval [lower, upper].
func (b *DD) AddBddInterval(f Node, lower, upper float64) Node {
	b.prologue()
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to AddBddInterval")
	}
	if lower > upper {
		return b.seterrcode(InvalidInput, "empty interval [%g, %g] in AddBddInterval", lower, upper)
	}
	lo := b.maketerminal(lower)
	hi := b.maketerminal(upper)
	if lo < 0 || hi < 0 {
		return nil
	}
	b.initref()
	b.pushref(*f)
	res := b.addtobdd(*f, lo, hi, cacheINTERVAL, func(v float64) bool { return v >= lower && v <= upper })
	b.popref(1)
	return b.retnode(res)
}

// AddBddIthBit converts an ADD into the BDD of the terminals whose value,
// seen as a non-negative integer, has bit set. AddIthBit is the same
// conversion kept in the ADD world.
func (b *DD) AddBddIthBit(f Node, bit int) Node {
	b.prologue()
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to AddBddIthBit")
	}
	if bit < 0 || bit > 62 {
		return b.seterrcode(InvalidInput, "bad bit position (%d) in AddBddIthBit", bit)
	}
	b.initref()
	b.pushref(*f)
	res := b.addtobdd(*f, 0, 0, cacheITHBIT|bit<<12, func(v float64) bool {
		return (int64(v)>>bit)&1 == 1
	})
	b.popref(1)
	return b.retnode(res)
}

// AddIthBit extracts bit from every terminal of f, producing a 0-1 ADD.
func (b *DD) AddIthBit(f Node, bit int) Node {
	n := b.AddBddIthBit(f, bit)
	if n == nil {
		return nil
	}
	res := b.BddToAdd(n)
	b.RecursiveDeref(n)
	return res
}

// addtobdd converts an ADD into a BDD, keeping the terminals accepted by the
// predicate. The edges t1 and t2 carry the terminals of the predicate
// parameters so that distinct thresholds key distinct cache entries.
func (b *DD) addtobdd(f, t1, t2, tag int, keep func(float64) bool) int {
	if f < 0 {
		return -1
	}
	if b.isconst(f) {
		if keep(b.avalue(f)) {
			return bddone
		}
		return bddzero
	}
	// the second threshold is folded in the tag, above the tag bits, so that
	// every parameter combination keys its own entries
	key := tag | t2<<12
	if res := b.matchmisc(f, t1, key); res >= 0 {
		return res
	}
	low := b.pushref(b.addtobdd(b.low(f), t1, t2, tag, keep))
	high := b.pushref(b.addtobdd(b.high(f), t1, t2, tag, keep))
	res := b.makenode(b.varof(f), low, high)
	b.popref(2)
	return b.setmisc(f, t1, key, res)
}

// ************************************************************

// Transfer rebuilds the function denoted by f, a node of manager b, inside
// manager dst. Variables keep their indexes; the variable orders of the two
// managers may differ. The function and, when the orders agree, the DAG size
// are preserved.
func (b *DD) Transfer(dst *DD, f Node) Node {
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to Transfer")
	}
	if dst == b {
		return b.retnode(*f)
	}
	memo := make(map[int]int)
	dst.initref()
	res := b.transfer(dst, *f, memo)
	out := dst.retnode(res)
	dst.popref(len(dst.refstack))
	return out
}

func (b *DD) transfer(dst *DD, e int, memo map[int]int) int {
	if etag(e) == 1 {
		res := b.transfer(dst, e^1, memo)
		return neg(res)
	}
	if e == bddone {
		return bddone
	}
	if res, ok := memo[e]; ok {
		return res
	}
	v := int(b.varof(e))
	if int32(v) >= dst.varnum {
		if err := dst.SetVarnum(v + 1); err != nil {
			return -1
		}
	}
	low := b.transfer(dst, b.nodes[enode(e)].low, memo)
	high := b.transfer(dst, b.nodes[enode(e)].high, memo)
	if low < 0 || high < 0 {
		return -1
	}
	// we rebuild with an ite in dst, which stays correct when the orders of
	// the two managers differ
	res := dst.ite(dst.varset[v][0], high, low)
	if res < 0 {
		return -1
	}
	dst.pushref(res)
	memo[e] = res
	return res
}
