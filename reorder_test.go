// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// xorchain builds the parity function over the first n variables.
func xorchain(bdd *DD, s Set, n int) Node {
	f := bdd.False()
	for i := 0; i < n; i++ {
		f = s.Xor(f, bdd.Ithvar(i))
	}
	return f
}

// interleaved builds a function whose size is very sensitive to the variable
// order: (x0 and x(n/2)) or (x1 and x(n/2+1)) or ...
func interleaved(bdd *DD, s Set, n int) Node {
	f := bdd.False()
	for i := 0; i < n/2; i++ {
		f = s.Or(f, s.And(bdd.Ithvar(i), bdd.Ithvar(n/2+i)))
	}
	return f
}

func checkorder(t *testing.T, bdd *DD) {
	t.Helper()
	// var2level and level2var stay inverse bijections
	seen := make(map[int]bool)
	for v := 0; v < bdd.Varnum(); v++ {
		lev := bdd.Var2Level(v)
		require.True(t, lev >= 0 && lev < bdd.Varnum())
		require.False(t, seen[lev])
		seen[lev] = true
		require.Equal(t, v, bdd.Level2Var(lev))
	}
	// ordering invariant: children sit strictly below their parent
	err := bdd.Allnodes(func(id, level, low, high int) error {
		for _, e := range []int{low, high} {
			if bdd.isconst(e) {
				continue
			}
			if int(bdd.level(e)) <= level {
				return fmt.Errorf("node %d at level %d has a child at level %d", id, level, bdd.level(e))
			}
		}
		return nil
	})
	require.NoError(t, err)
}

// TestReorderPreservesFunction is the reordering scenario of the original
// test suite: sifting an xor chain preserves the function and does not grow
// the DAG.
func TestReorderPreservesFunction(t *testing.T) {
	for _, method := range []ReorderMethod{
		ReorderSift, ReorderSiftConv, ReorderSymmSift, ReorderSymmSiftConv,
		ReorderWindow2, ReorderWindow3, ReorderWindow4,
		ReorderWindow2Conv, ReorderWindow3Conv, ReorderWindow4Conv,
		ReorderRandom, ReorderRandomPivot, ReorderAnnealing, ReorderGenetic,
		ReorderGroupSift,
	} {
		t.Run(method.String(), func(t *testing.T) {
			bdd, err := New(10)
			require.NoError(t, err)
			s := NewSet(bdd)
			f := xorchain(bdd, s, 10)
			g := interleaved(bdd, s, 10)
			countf := bdd.Satcount(f).String()
			countg := bdd.Satcount(g).String()
			sizef := bdd.NodeCount(f)

			require.NoError(t, bdd.ReduceHeap(method, 0))
			checkorder(t, bdd)

			assert.Equal(t, countf, bdd.Satcount(f).String(), "satcount of f changed")
			assert.Equal(t, countg, bdd.Satcount(g).String(), "satcount of g changed")
			// the xor chain is order-insensitive: its size cannot degrade
			// after a converging sift
			if method == ReorderSiftConv {
				assert.LessOrEqual(t, bdd.NodeCount(f), sizef)
			}
			// the semantics is preserved pointwise
			forallenv(10, func(env []bool) {
				expected := false
				for i := 0; i < 10; i++ {
					expected = expected != env[i]
				}
				assert.Equal(t, expected, bdd.evaltest(*f, env))
			})
		})
	}
}

// TestReorderShrinks checks that sifting actually improves an
// order-sensitive function.
func TestReorderShrinks(t *testing.T) {
	bdd, err := New(12)
	require.NoError(t, err)
	s := NewSet(bdd)
	f := interleaved(bdd, s, 12)
	before := bdd.NodeCount(f)
	require.NoError(t, bdd.ReduceHeap(ReorderSiftConv, 0))
	checkorder(t, bdd)
	assert.Less(t, bdd.NodeCount(f), before)
	forallenv(12, func(env []bool) {
		expected := false
		for i := 0; i < 6; i++ {
			expected = expected || (env[i] && env[6+i])
		}
		assert.Equal(t, expected, bdd.evaltest(*f, env))
	})
}

func TestReorderExactSmall(t *testing.T) {
	bdd, err := New(6)
	require.NoError(t, err)
	s := NewSet(bdd)
	f := interleaved(bdd, s, 6)
	count := bdd.Satcount(f).String()
	require.NoError(t, bdd.ReduceHeap(ReorderExact, 0))
	checkorder(t, bdd)
	assert.Equal(t, count, bdd.Satcount(f).String())
	// the exact order for the interleaved function pairs the variables:
	// 3 variables of each half alternate, giving the linear-size form
	assert.LessOrEqual(t, bdd.NodeCount(f), 3*2+1)

	big, err := New(12)
	require.NoError(t, err)
	assert.Error(t, big.ReduceHeap(ReorderExact, 0))
	assert.Equal(t, InvalidInput, big.LastError())
}

func TestReorderGroups(t *testing.T) {
	bdd, err := New(8)
	require.NoError(t, err)
	s := NewSet(bdd)
	f := interleaved(bdd, s, 8)
	_, err = bdd.MakeTreeNode(0, 4, TreeDefault)
	require.NoError(t, err)
	_, err = bdd.MakeTreeNode(4, 4, TreeDefault)
	require.NoError(t, err)
	// nested and straddling declarations
	_, err = bdd.MakeTreeNode(0, 2, TreeFixed)
	require.NoError(t, err)
	_, err = bdd.MakeTreeNode(3, 3, TreeDefault)
	require.Error(t, err)
	bdd.ClearError()

	count := bdd.Satcount(f).String()
	require.NoError(t, bdd.ReduceHeap(ReorderGroupSift, 0))
	checkorder(t, bdd)
	assert.Equal(t, count, bdd.Satcount(f).String())
	// groups stay contiguous: the variables of each declared half occupy
	// consecutive levels
	for _, group := range [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}} {
		min, max := bdd.Varnum(), -1
		for _, v := range group {
			lev := bdd.Var2Level(v)
			if lev < min {
				min = lev
			}
			if lev > max {
				max = lev
			}
		}
		assert.Equal(t, len(group)-1, max-min, "group %v not contiguous", group)
	}
	// the fixed subgroup kept its internal order
	assert.Less(t, bdd.Var2Level(0), bdd.Var2Level(1))
	bdd.FreeTree()
}

func TestAutodyn(t *testing.T) {
	bdd, err := New(10, Nodesize(128))
	require.NoError(t, err)
	s := NewSet(bdd)
	bdd.SetNextReordering(64)
	bdd.AutodynEnable(ReorderSift)
	pre, post := 0, 0
	bdd.AddHook(func(d *DD, w HookWhere) error {
		pre++
		return nil
	}, PreReorder)
	bdd.AddHook(func(d *DD, w HookWhere) error {
		post++
		return nil
	}, PostReorder)
	f := interleaved(bdd, s, 10)
	g := xorchain(bdd, s, 10)
	_ = s.And(f, g)
	assert.True(t, pre >= 1, "automatic reordering never fired")
	assert.Equal(t, pre, post)
	bdd.AutodynDisable()
	checkorder(t, bdd)
	require.False(t, bdd.Errored(), bdd.Error())
}
