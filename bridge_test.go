// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"bytes"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestThresholds follows the conversion semantics of the original
// implementation: threshold keeps the terminals >= t, the strict variant the
// terminals > t.
func TestThresholds(t *testing.T) {
	bdd, err := New(2)
	require.NoError(t, err)
	c5 := bdd.AddConst(5)
	assert.True(t, bdd.Equal(bdd.AddBddThreshold(c5, 3), bdd.True()))
	assert.True(t, bdd.Equal(bdd.AddBddThreshold(c5, 5), bdd.True()))
	assert.True(t, bdd.Equal(bdd.AddBddThreshold(c5, 7), bdd.False()))
	assert.True(t, bdd.Equal(bdd.AddBddStrictThreshold(c5, 5), bdd.False()))
	assert.True(t, bdd.Equal(bdd.AddBddStrictThreshold(c5, 3), bdd.True()))
	assert.True(t, bdd.Equal(bdd.AddBddInterval(c5, 3, 7), bdd.True()))
	assert.True(t, bdd.Equal(bdd.AddBddInterval(c5, 5, 5), bdd.True()))
	assert.True(t, bdd.Equal(bdd.AddBddInterval(c5, 6, 8), bdd.False()))
	assert.True(t, bdd.Equal(bdd.AddBddInterval(c5, 0, 4), bdd.False()))

	f := bdd.AddIte(bdd.AddIthvar(0), bdd.AddConst(4), bdd.AddConst(2))
	assert.True(t, bdd.Equal(bdd.AddBddThreshold(f, 3), bdd.Ithvar(0)))
	assert.True(t, bdd.Equal(bdd.AddBddStrictThreshold(f, 2), bdd.Ithvar(0)))
}

// TestIthBit checks bit extraction: 5 is 101 in binary, and on
// ite(x0, 6, 5) bit 0 is the negation of x0.
func TestIthBit(t *testing.T) {
	bdd, err := New(2)
	require.NoError(t, err)
	c5 := bdd.AddConst(5)
	assert.True(t, bdd.Equal(bdd.AddBddIthBit(c5, 0), bdd.True()))
	assert.True(t, bdd.Equal(bdd.AddBddIthBit(c5, 1), bdd.False()))
	assert.True(t, bdd.Equal(bdd.AddBddIthBit(c5, 2), bdd.True()))
	assert.True(t, bdd.Equal(bdd.AddBddIthBit(bdd.AddZero(), 0), bdd.False()))

	f := bdd.AddIte(bdd.AddIthvar(0), bdd.AddConst(6), bdd.AddConst(5))
	assert.True(t, bdd.Equal(bdd.AddBddIthBit(f, 0), bdd.NIthvar(0)))
	assert.True(t, bdd.Equal(bdd.AddBddIthBit(f, 1), bdd.Ithvar(0)))
	assert.True(t, bdd.Equal(bdd.AddBddIthBit(f, 2), bdd.True()))
}

// TestBddAddRoundTrip checks that AddBddPattern is a left inverse of BddToAdd
// on 0-1 ADDs.
func TestBddAddRoundTrip(t *testing.T) {
	bdd, err := New(4)
	require.NoError(t, err)
	s := NewSet(bdd)
	f := s.Or(s.And(bdd.Ithvar(0), bdd.Ithvar(1)), bdd.NIthvar(3))
	a := bdd.BddToAdd(f)
	require.NotNil(t, a)
	back := bdd.AddBddPattern(a)
	assert.True(t, bdd.Equal(back, f))
	// the conversion preserves the function values
	forallenv(4, func(env []bool) {
		expected := 0.0
		if bdd.evaltest(*f, env) {
			expected = 1.0
		}
		assert.Equal(t, expected, bdd.addevaltest(*a, env))
	})
	assert.True(t, bdd.Equal(bdd.BddToAdd(bdd.True()), bdd.AddOne()))
	assert.True(t, bdd.Equal(bdd.BddToAdd(bdd.False()), bdd.AddZero()))
}

// TestTransfer builds (x and y) or z in one manager and rebuilds it in
// another: the function values and the DAG sizes must match.
func TestTransfer(t *testing.T) {
	src, err := New(3)
	require.NoError(t, err)
	dst, err := New(3)
	require.NoError(t, err)
	s := NewSet(src)
	f := s.Or(s.And(src.Ithvar(0), src.Ithvar(1)), src.Ithvar(2))
	g := src.Transfer(dst, f)
	require.NotNil(t, g)
	assert.Equal(t, src.NodeCount(f), dst.NodeCount(g))
	forallenv(3, func(env []bool) {
		assert.Equal(t, src.evaltest(*f, env), dst.evaltest(*g, env))
	})
	// transfer of the constants
	assert.True(t, dst.Equal(src.Transfer(dst, src.True()), dst.True()))
	assert.True(t, dst.Equal(src.Transfer(dst, src.False()), dst.False()))
}

// TestDumpLoad round-trips a pair of complementary functions through the
// binary format.
func TestDumpLoad(t *testing.T) {
	src, err := New(3)
	require.NoError(t, err)
	s := NewSet(src)
	f := s.Or(s.And(src.Ithvar(0), src.Ithvar(1)), src.Ithvar(2))
	g := src.Not(f)
	var buf bytes.Buffer
	require.NoError(t, src.Dump(&buf, f, g))

	dst, err := New(3)
	require.NoError(t, err)
	roots, err := dst.Load(&buf)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	// the two roots share their DAG and stay complementary
	assert.True(t, dst.Equal(roots[1], dst.Not(roots[0])))
	forallenv(3, func(env []bool) {
		assert.Equal(t, src.evaltest(*f, env), dst.evaltest(*roots[0], env))
	})
}

// levelprofile summarizes the shape of a DAG: how many nodes sit at each
// level.
func levelprofile(b *DD, n Node) []int {
	counts := map[int]int{}
	_ = b.Allnodes(func(id, level, low, high int) error {
		counts[level]++
		return nil
	}, n)
	levels := []int{}
	for l := range counts {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	res := []int{}
	for _, l := range levels {
		res = append(res, l, counts[l])
	}
	return res
}

func TestDumpLoadCmp(t *testing.T) {
	src, err := New(4)
	require.NoError(t, err)
	s := NewSet(src)
	f := s.Xor(s.And(src.Ithvar(0), src.Ithvar(3)), s.Or(src.Ithvar(1), src.NIthvar(2)))
	var buf bytes.Buffer
	require.NoError(t, src.Dump(&buf, f))

	dst, err := New(4)
	require.NoError(t, err)
	roots, err := dst.Load(&buf)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	forallenv(4, func(env []bool) {
		assert.Equal(t, src.evaltest(*f, env), dst.evaltest(*roots[0], env))
	})
	// with identical orders the reloaded DAG has the same shape
	if diff := cmp.Diff(levelprofile(src, f), levelprofile(dst, roots[0])); diff != "" {
		t.Errorf("reloaded DAG differs (-src +dst):\n%s", diff)
	}
}
