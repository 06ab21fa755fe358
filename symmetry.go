// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

// Symmetry detection and symmetric sifting. Two adjacent variables are
// symmetric when exchanging them leaves every represented function invariant;
// symmetric variables are merged into contiguous classes that sift as blocks.

package godd

// symmcheck tests whether the variables at levels lev and lev+1 are
// symmetric, with the structural condition: for every node n at the upper
// level, the (upper=1, lower=0) and (upper=0, lower=1) cofactors coincide,
// and no node above or beside the upper level reaches a lower-level node
// directly (otherwise the exchange could alter a function that skips the
// upper variable).
func (b *DD) symmcheck(lev int32) bool {
	x := b.level2var[lev]
	y := b.level2var[lev+1]
	stx := &b.subtables[x]
	for _, n := range stx.hash {
		for n != 0 {
			nd := &b.nodes[n]
			if !b.isdead(n) {
				f1, f0 := nd.high, nd.low
				var f10, f01 int
				if b.edgevar(f1) == y {
					f10 = b.low(f1)
				} else {
					f10 = f1
				}
				if b.edgevar(f0) == y {
					f01 = b.high(f0)
				} else {
					f01 = f0
				}
				if f10 != f01 {
					return false
				}
			}
			n = nd.next
		}
	}
	// every y node must be reachable only through x nodes: scan the nodes of
	// every other variable for a direct reference into level lev+1
	for v := int32(0); v < b.varnum; v++ {
		if v == x || v == y {
			continue
		}
		st := &b.subtables[v]
		for _, n := range st.hash {
			for n != 0 {
				nd := &b.nodes[n]
				if !b.isdead(n) {
					if b.edgevar(nd.low) == y || b.edgevar(nd.high) == y {
						return false
					}
				}
				n = nd.next
			}
		}
	}
	return true
}

// symmclasses partitions the levels into maximal runs of pairwise-symmetric
// adjacent variables.
func (b *DD) symmclasses() [][2]int32 {
	res := [][2]int32{}
	lo := int32(0)
	for lev := int32(0); lev < b.varnum-1; lev++ {
		glo, ghi := b.groupbounds(lev)
		if lev+1 >= ghi || lev < glo || !b.symmcheck(lev) {
			res = append(res, [2]int32{lo, lev + 1})
			lo = lev + 1
		}
	}
	res = append(res, [2]int32{lo, b.varnum})
	return res
}

// reordersymmsift detects the symmetry classes and sifts each class as a
// block; variables found symmetric keep moving together.
func (b *DD) reordersymmsift() error {
	classes := b.symmclasses()
	// track classes by their member variables, largest class tables first
	blocks := [][]int32{}
	for _, cl := range classes {
		vars := []int32{}
		for lev := cl[0]; lev < cl[1]; lev++ {
			vars = append(vars, b.level2var[lev])
		}
		blocks = append(blocks, vars)
	}
	sizeof := func(vars []int32) int {
		s := 0
		for _, v := range vars {
			s += b.subtables[v].keys
		}
		return s
	}
	for i := 1; i < len(blocks); i++ {
		for j := i; j > 0 && sizeof(blocks[j]) > sizeof(blocks[j-1]); j-- {
			blocks[j], blocks[j-1] = blocks[j-1], blocks[j]
		}
	}
	for _, vars := range blocks {
		lo := b.var2level[vars[0]]
		hi := lo + int32(len(vars))
		boundlo, boundhi := b.groupbounds(lo)
		if err := b.blocksift(lo, hi, boundlo, boundhi, b.maxgrowth); err != nil {
			return err
		}
	}
	return nil
}
