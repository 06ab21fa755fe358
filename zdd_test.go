// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZddBasics(t *testing.T) {
	bdd, err := New(3, Zddvarnum(3))
	require.NoError(t, err)
	z0 := bdd.ZddIthvar(0) // {{0}}
	z1 := bdd.ZddIthvar(1) // {{1}}
	u := bdd.ZddUnion(z0, z1)
	require.NotNil(t, u)
	assert.Equal(t, big.NewInt(2).String(), bdd.ZddCount(u).String())
	assert.Equal(t, big.NewInt(1).String(), bdd.ZddCount(z0).String())
	assert.Equal(t, big.NewInt(0).String(), bdd.ZddCount(bdd.ZddEmpty()).String())
	assert.Equal(t, big.NewInt(1).String(), bdd.ZddCount(bdd.ZddBase()).String())

	// union laws
	assert.True(t, bdd.Equal(bdd.ZddUnion(u, z0), u))
	assert.True(t, bdd.Equal(bdd.ZddUnion(u, bdd.ZddEmpty()), u))
	assert.True(t, bdd.Equal(bdd.ZddIntersect(u, z0), z0))
	assert.True(t, bdd.Equal(bdd.ZddIntersect(z0, z1), bdd.ZddEmpty()))
	assert.True(t, bdd.Equal(bdd.ZddDiff(u, z0), z1))
	assert.True(t, bdd.Equal(bdd.ZddDiff(u, u), bdd.ZddEmpty()))

	// ite over families
	assert.True(t, bdd.Equal(bdd.ZddIte(z0, u, bdd.ZddEmpty()), z0))
	assert.True(t, bdd.Equal(
		bdd.ZddIte(u, z0, z1),
		bdd.ZddUnion(bdd.ZddIntersect(u, z0), bdd.ZddDiff(z1, u))))

	// change flips the presence of a variable
	c := bdd.ZddChange(z0, 1) // {{0,1}}
	require.NotNil(t, c)
	assert.Equal(t, big.NewInt(1).String(), bdd.ZddCount(c).String())
	assert.True(t, bdd.Equal(bdd.ZddChange(c, 1), z0))
	assert.True(t, bdd.Equal(bdd.ZddSubset1(c, 1), z0))
	assert.True(t, bdd.Equal(bdd.ZddSubset0(c, 1), bdd.ZddEmpty()))
	assert.True(t, bdd.Equal(bdd.ZddSubset0(z0, 1), z0))

	// zero-suppression invariant: no live node has the empty family as its
	// then child
	for k, nd := range bdd.nodes {
		if nd.low == -1 || bdd.isdead(k) {
			continue
		}
		if nd.index&_MAXVAR != _CONSTINDEX && int32(len(bdd.zsubtables)) > nd.index&_MAXVAR {
			// only check nodes that live in a ZDD subtable
			if inzsubtable(bdd, k) {
				assert.NotEqual(t, bdd.azero, nd.high, "zero-suppressed node %d", k)
			}
		}
	}
}

func inzsubtable(b *DD, n int) bool {
	idx := b.nodes[n].index & _MAXVAR
	if idx == _CONSTINDEX || int(idx) >= len(b.zsubtables) {
		return false
	}
	st := &b.zsubtables[idx]
	for _, h := range st.hash {
		for h != 0 {
			if h == n {
				return true
			}
			h = b.nodes[h].next
		}
	}
	return false
}

// TestZddPort round-trips a Boolean function through the ZDD universe.
func TestZddPort(t *testing.T) {
	bdd, err := New(3)
	require.NoError(t, err)
	require.NoError(t, bdd.ZddVarsFromBddVars(1))
	s := NewSet(bdd)
	f := s.Or(bdd.Ithvar(0), s.And(bdd.Ithvar(1), bdd.NIthvar(2)))
	z := bdd.PortFromBdd(f)
	require.NotNil(t, z)
	// the ZDD holds one combination per satisfying assignment
	assert.Equal(t, bdd.Satcount(f).String(), bdd.ZddCount(z).String())
	back := bdd.PortToBdd(z)
	require.NotNil(t, back)
	assert.True(t, bdd.Equal(back, f))

	// constants
	zt := bdd.PortFromBdd(bdd.True())
	assert.Equal(t, big.NewInt(8).String(), bdd.ZddCount(zt).String())
	assert.True(t, bdd.Equal(bdd.PortFromBdd(bdd.False()), bdd.ZddEmpty()))
}

// TestZddCovers exercises the cover algebra over paired literal variables.
func TestZddCovers(t *testing.T) {
	bdd, err := New(3)
	require.NoError(t, err)
	require.NoError(t, bdd.ZddVarsFromBddVars(2))
	// the cover {x0} is the base family with the positive literal of x0
	p0 := bdd.ZddChange(bdd.ZddBase(), 0)
	n0 := bdd.ZddChange(bdd.ZddBase(), 1)
	p1 := bdd.ZddChange(bdd.ZddBase(), 2)
	require.NotNil(t, p0)
	require.NotNil(t, n0)
	require.NotNil(t, p1)

	// {x0} * {x1} = {x0 x1}
	prod := bdd.ZddProduct(p0, p1)
	require.NotNil(t, prod)
	assert.Equal(t, big.NewInt(1).String(), bdd.ZddCount(prod).String())
	expected := bdd.ZddChange(p0, 2)
	assert.True(t, bdd.Equal(prod, expected))

	// {x0} * {!x0} drops the contradictory cube
	contra := bdd.ZddProduct(p0, n0)
	require.NotNil(t, contra)
	assert.True(t, bdd.Equal(contra, bdd.ZddEmpty()))

	// the product has identity and annihilator
	assert.True(t, bdd.Equal(bdd.ZddProduct(p0, bdd.ZddBase()), p0))
	assert.True(t, bdd.Equal(bdd.ZddProduct(p0, bdd.ZddEmpty()), bdd.ZddEmpty()))

	// weak division recovers a factor: {x0 x1} / {x0} = {x1}
	q := bdd.ZddWeakDiv(prod, p0)
	require.NotNil(t, q)
	assert.True(t, bdd.Equal(q, p1))
	assert.True(t, bdd.Equal(bdd.ZddWeakDiv(prod, bdd.ZddBase()), prod))
}

// TestZddIsop computes irredundant covers and checks them against the
// function they cover.
func TestZddIsop(t *testing.T) {
	bdd, err := New(4)
	require.NoError(t, err)
	require.NoError(t, bdd.ZddVarsFromBddVars(2))
	s := NewSet(bdd)

	f := s.And(bdd.Ithvar(0), bdd.Ithvar(1))
	cb, cz := bdd.ZddIsop(f, f)
	require.NotNil(t, cb)
	require.NotNil(t, cz)
	assert.True(t, bdd.Equal(cb, f))
	assert.Equal(t, big.NewInt(1).String(), bdd.ZddCount(cz).String())

	g := s.Xor(bdd.Ithvar(0), bdd.Ithvar(1))
	gb, gz := bdd.ZddIsop(g, g)
	require.NotNil(t, gb)
	assert.True(t, bdd.Equal(gb, g))
	assert.Equal(t, big.NewInt(2).String(), bdd.ZddCount(gz).String())

	// the cover of an interval [l, u] sits between the bounds
	l := s.And(bdd.Ithvar(0), bdd.Ithvar(1))
	u := s.Or(bdd.Ithvar(0), bdd.Ithvar(1))
	ib, iz := bdd.ZddIsop(l, u)
	require.NotNil(t, ib)
	require.NotNil(t, iz)
	assert.True(t, bdd.Leq(l, ib))
	assert.True(t, bdd.Leq(ib, u))

	// IrrCover is the cover of f itself
	ic := bdd.IrrCover(f)
	require.NotNil(t, ic)
	assert.True(t, bdd.Equal(ic, cz))

	// the bounds must be ordered
	bad, _ := bdd.ZddIsop(u, l)
	assert.Nil(t, bad)
	assert.Equal(t, InvalidInput, bdd.LastError())
	bdd.ClearError()
}
