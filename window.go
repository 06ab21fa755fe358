// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

// Window reordering: exhaustive permutation of k adjacent levels, k in
// {2, 3, 4}, scanned left to right. The k! permutations are visited with a
// Steinhaus-Johnson-Trotter sequence of adjacent transpositions, and the
// window is rewound to the best permutation seen by undoing the tail of the
// sequence (adjacent swaps are involutions).

package godd

// sjtsequence returns the sequence of adjacent-transposition offsets visiting
// every permutation of k elements.
func sjtsequence(k int) []int {
	if k < 2 {
		return nil
	}
	if k == 2 {
		return []int{0}
	}
	sub := sjtsequence(k - 1)
	res := []int{}
	// weave the largest element through each permutation of the rest
	down := true
	for i := 0; ; i++ {
		if down {
			for j := k - 2; j >= 0; j-- {
				res = append(res, j)
			}
		} else {
			for j := 0; j < k-1; j++ {
				res = append(res, j)
			}
		}
		if i >= len(sub) {
			break
		}
		// the sub-transposition applies while the big element is parked at
		// one end: shift the offset when it sits at position 0
		if down {
			res = append(res, sub[i]+1)
		} else {
			res = append(res, sub[i])
		}
		down = !down
	}
	return res
}

// window exhaustively permutes the levels [lev, lev+k), keeping the best
// permutation.
func (b *DD) window(lev int32, k int) error {
	seq := sjtsequence(k)
	bestsize := b.livenodes()
	bestat := -1
	for i, off := range seq {
		if err := b.swap(lev + int32(off)); err != nil {
			if err == errSwap {
				// rewind what was done and give up on this window
				for j := i - 1; j >= 0; j-- {
					if err := b.swap(lev + int32(seq[j])); err != nil {
						return err
					}
				}
				return nil
			}
			return err
		}
		if size := b.livenodes(); size < bestsize {
			bestsize = size
			bestat = i
		}
	}
	// rewind to the best permutation by undoing the tail
	for j := len(seq) - 1; j > bestat; j-- {
		if err := b.swap(lev + int32(seq[j])); err != nil {
			return err
		}
	}
	return nil
}

// reorderwindow slides a window of k adjacent levels across the order,
// skipping the windows that straddle a group boundary or touch a fixed
// group.
func (b *DD) reorderwindow(k int) error {
	if int(b.varnum) < k {
		return nil
	}
	for lev := int32(0); lev <= b.varnum-int32(k); lev++ {
		lo, hi := b.groupbounds(lev)
		if lev < lo || lev+int32(k) > hi || b.fixedat(lev) {
			continue
		}
		if err := b.window(lev, k); err != nil {
			return err
		}
	}
	return nil
}
