// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClippingMonotone checks the containment chain
// clip(f,g,d,under) <= and(f,g) <= clip(f,g,d,over).
func TestClippingMonotone(t *testing.T) {
	bdd, err := New(2)
	require.NoError(t, err)
	x := bdd.Ithvar(0)
	y := bdd.Ithvar(1)
	exact := bdd.Apply(x, y, OPand)
	under := bdd.ClippingAnd(x, y, 1, false)
	over := bdd.ClippingAnd(x, y, 1, true)
	require.NotNil(t, under)
	require.NotNil(t, over)
	assert.True(t, bdd.Leq(under, exact))
	assert.True(t, bdd.Leq(exact, over))
}

func TestClippingRandom(t *testing.T) {
	bdd, err := New(8)
	require.NoError(t, err)
	s := NewSet(bdd)
	rng := rand.New(rand.NewSource(7))
	randfn := func() Node {
		f := bdd.False()
		for i := 0; i < 6; i++ {
			c := bdd.True()
			for j := 0; j < 3; j++ {
				v := bdd.Ithvar(rng.Intn(8))
				if rng.Intn(2) == 0 {
					v = bdd.Not(v)
				}
				c = s.And(c, v)
			}
			f = s.Or(f, c)
		}
		return f
	}
	for i := 0; i < 5; i++ {
		f, g := randfn(), randfn()
		exact := bdd.Apply(f, g, OPand)
		for depth := 0; depth < 6; depth += 2 {
			under := bdd.ClippingAnd(f, g, depth, false)
			over := bdd.ClippingAnd(f, g, depth, true)
			require.NotNil(t, under)
			require.NotNil(t, over)
			assert.True(t, bdd.Leq(under, exact), "under-approx not included at depth %d", depth)
			assert.True(t, bdd.Leq(exact, over), "over-approx too small at depth %d", depth)
		}
		// with a deep enough bound the clipped product is exact
		full := bdd.ClippingAnd(f, g, 20, false)
		assert.True(t, bdd.Equal(full, exact))
	}
}

func TestClippingAndAbstract(t *testing.T) {
	bdd, err := New(6)
	require.NoError(t, err)
	s := NewSet(bdd)
	f := s.Or(s.And(bdd.Ithvar(0), bdd.Ithvar(2)), bdd.Ithvar(4))
	g := s.Or(s.And(bdd.Ithvar(1), bdd.Ithvar(2)), bdd.NIthvar(5))
	cube := bdd.Makeset([]int{2, 5})
	exact := bdd.AndAbstract(f, g, cube)
	under := bdd.ClippingAndAbstract(f, g, cube, 1, false)
	over := bdd.ClippingAndAbstract(f, g, cube, 1, true)
	require.NotNil(t, under)
	require.NotNil(t, over)
	assert.True(t, bdd.Leq(under, exact))
	assert.True(t, bdd.Leq(exact, over))
	deep := bdd.ClippingAndAbstract(f, g, cube, 20, true)
	assert.True(t, bdd.Equal(deep, exact))
}

// TestShortPaths checks the containment of the shortest-path subset and its
// dual superset.
func TestShortPaths(t *testing.T) {
	bdd, err := New(6)
	require.NoError(t, err)
	s := NewSet(bdd)
	// two satisfying paths: a short one (x5) and a long one (x0..x4)
	long := s.And(bdd.Ithvar(0), bdd.Ithvar(1), bdd.Ithvar(2), bdd.Ithvar(3), bdd.Ithvar(4))
	f := s.Or(long, bdd.Ithvar(5))
	sub := bdd.SubsetShortPaths(f, 0)
	require.NotNil(t, sub)
	assert.True(t, bdd.Leq(sub, f))
	assert.False(t, bdd.Equal(sub, bdd.False()))
	// with the minimal bound, the long path is cut away
	assert.False(t, bdd.Leq(long, sub))
	// a generous bound keeps everything
	all := bdd.SubsetShortPaths(f, 10)
	assert.True(t, bdd.Equal(all, f))

	sup := bdd.SupersetShortPaths(f, 0)
	require.NotNil(t, sup)
	assert.True(t, bdd.Leq(f, sup))
	assert.True(t, bdd.Equal(bdd.SubsetShortPaths(bdd.False(), 3), bdd.False()))
}

func TestHeavyBranch(t *testing.T) {
	bdd, err := New(8)
	require.NoError(t, err)
	s := NewSet(bdd)
	f := bdd.False()
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 8; i++ {
		c := bdd.True()
		for j := 0; j < 4; j++ {
			v := bdd.Ithvar(rng.Intn(8))
			if rng.Intn(2) == 0 {
				v = bdd.Not(v)
			}
			c = s.And(c, v)
		}
		f = s.Or(f, c)
	}
	size := bdd.NodeCount(f)
	sub := bdd.SubsetHeavyBranch(f, size/2)
	require.NotNil(t, sub)
	assert.True(t, bdd.Leq(sub, f))
	sup := bdd.SupersetHeavyBranch(f, size/2)
	require.NotNil(t, sup)
	assert.True(t, bdd.Leq(f, sup))
	// a threshold above the size returns f itself
	assert.True(t, bdd.Equal(bdd.SubsetHeavyBranch(f, size+1), f))

	comp := bdd.SubsetCompress(f, 10, size/2)
	require.NotNil(t, comp)
	assert.True(t, bdd.Leq(comp, f))
}
