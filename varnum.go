// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

// SetVarnum sets the number of BDD variables. It may be called more than one
// time, but only to increase the number of variables. New variables enter the
// order at the bottom.
func (b *DD) SetVarnum(num int) error {
	inum := int32(num)
	if (inum < 1) || (inum >= _MAXVAR) {
		b.seterrcode(InvalidInput, "bad number of variables (%d) in SetVarnum", inum)
		return b.error
	}
	if inum < b.varnum {
		b.seterrcode(InvalidInput, "trying to decrease the number of variables in SetVarnum (from %d to %d)", b.varnum, inum)
		return b.error
	}
	if inum == b.varnum {
		return nil
	}
	for k := b.varnum; k < inum; k++ {
		b.var2level = append(b.var2level, k)
		b.level2var = append(b.level2var, k)
		b.subtables = append(b.subtables, subtable{hash: make([]int, primeGte(b.uniquesize))})
		v := b.makenode(k, bddzero, bddone)
		if v < 0 {
			b.var2level = b.var2level[:k]
			b.level2var = b.level2var[:k]
			b.subtables = b.subtables[:k]
			b.seterror("cannot allocate new variable %d in SetVarnum", k)
			return b.error
		}
		b.nodes[enode(v)].refcou = _MAXREFCOUNT
		b.varset = append(b.varset, [2]int{v, v ^ 1})
		b.varnum++
	}
	// We also need to resize the quantification cache
	b.quantset = make([]int32, b.varnum)
	b.quantsetID = 0
	return nil
}

// ExtVarnum extends the current number of allocated BDD variables with num
// extra variables.
func (b *DD) ExtVarnum(num int) error {
	if (num < 0) || (num > 0x3FFFFFFF) {
		b.seterrcode(InvalidInput, "bad choice of value (%d) when extending varnum in ExtVarnum", num)
		return b.error
	}
	return b.SetVarnum(int(b.varnum) + num)
}

// NewVar creates a fresh BDD variable at the bottom of the order and returns
// its node.
func (b *DD) NewVar() Node {
	if err := b.SetVarnum(int(b.varnum) + 1); err != nil {
		return nil
	}
	x := b.varset[b.varnum-1][0]
	return &x
}

// Varnum returns the number of defined BDD variables.
func (b *DD) Varnum() int {
	return int(b.varnum)
}

// ZddVarnum returns the number of defined ZDD variables.
func (b *DD) ZddVarnum() int {
	return int(b.zvarnum)
}

// Var2Level returns the current level of variable v.
func (b *DD) Var2Level(v int) int {
	if v < 0 || int32(v) >= b.varnum {
		return -1
	}
	return int(b.var2level[v])
}

// Level2Var returns the variable sitting at the given level.
func (b *DD) Level2Var(level int) int {
	if level < 0 || int32(level) >= b.varnum {
		return -1
	}
	return int(b.level2var[level])
}

// ************************************************************

// ZddVarsFromBddVars mirrors the BDD variables into the ZDD universe, with
// multiplicity ZDD variables per BDD variable. A multiplicity of 2 is the
// layout used by the cover operations (Isop, ZddProduct, ZddWeakDiv), where
// the two ZDD variables of BDD variable v encode its positive and negative
// literals. The ZDD order mirrors the creation order and is fixed.
func (b *DD) ZddVarsFromBddVars(multiplicity int) error {
	if multiplicity < 1 || multiplicity > 2 {
		b.seterrcode(InvalidInput, "bad multiplicity (%d) in ZddVarsFromBddVars", multiplicity)
		return b.error
	}
	return b.zddvarnum(int(b.varnum) * multiplicity)
}

// zddvarnum extends the ZDD universe to num variables.
func (b *DD) zddvarnum(num int) error {
	inum := int32(num)
	if inum < 1 || inum >= _MAXVAR {
		b.seterrcode(InvalidInput, "bad number of ZDD variables (%d)", num)
		return b.error
	}
	if inum <= b.zvarnum {
		return nil
	}
	for k := b.zvarnum; k < inum; k++ {
		b.zvar2level = append(b.zvar2level, k)
		b.zlevel2var = append(b.zlevel2var, k)
		b.zsubtables = append(b.zsubtables, subtable{hash: make([]int, primeGte(b.uniquesize))})
		v := b.zmakenode(k, b.azero, bddone)
		if v < 0 {
			b.seterror("cannot allocate new ZDD variable %d", k)
			return b.error
		}
		b.nodes[enode(v)].refcou = _MAXREFCOUNT
		b.zvarset = append(b.zvarset, v)
		b.zvarnum++
	}
	return nil
}

// ZddIthvar returns the singleton ZDD {{i}} for the i'th ZDD variable,
// creating the variable on demand.
func (b *DD) ZddIthvar(i int) Node {
	if i < 0 || int32(i) >= _MAXVAR {
		return b.seterrcode(InvalidInput, "invalid ZDD variable (%d)", i)
	}
	if int32(i) >= b.zvarnum {
		if err := b.zddvarnum(i + 1); err != nil {
			return nil
		}
	}
	x := b.zvarset[i]
	return &x
}
