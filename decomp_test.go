// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompositions(t *testing.T) {
	bdd, err := New(6)
	require.NoError(t, err)
	s := NewSet(bdd)
	f := s.Or(
		s.And(bdd.Ithvar(0), bdd.Ithvar(1)),
		s.And(bdd.Ithvar(2), bdd.Ithvar(3)),
		s.And(bdd.NIthvar(1), bdd.Ithvar(4), bdd.NIthvar(5)))

	conj := map[string]func(Node) []Node{
		"approx": bdd.ApproxConjDecomp,
		"iter":   bdd.IterConjDecomp,
		"gen":    bdd.GenConjDecomp,
		"var":    bdd.VarConjDecomp,
	}
	for name, decomp := range conj {
		factors := decomp(f)
		require.NotNil(t, factors, name)
		require.NotEmpty(t, factors, name)
		prod := bdd.True()
		for _, g := range factors {
			require.NotNil(t, g, name)
			prod = s.And(prod, g)
		}
		assert.True(t, bdd.Equal(prod, f), "conjunction of %s factors differs from f", name)
	}

	disj := map[string]func(Node) []Node{
		"approx": bdd.ApproxDisjDecomp,
		"iter":   bdd.IterDisjDecomp,
		"gen":    bdd.GenDisjDecomp,
		"var":    bdd.VarDisjDecomp,
	}
	for name, decomp := range disj {
		factors := decomp(f)
		require.NotNil(t, factors, name)
		require.NotEmpty(t, factors, name)
		sum := bdd.False()
		for _, g := range factors {
			require.NotNil(t, g, name)
			sum = s.Or(sum, g)
		}
		assert.True(t, bdd.Equal(sum, f), "disjunction of %s factors differs from f", name)
	}

	// decomposing a constant returns the constant itself
	fs := bdd.ApproxConjDecomp(bdd.True())
	require.Len(t, fs, 1)
	assert.True(t, bdd.Equal(fs[0], bdd.True()))
}
