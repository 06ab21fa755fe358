// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"fmt"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evaltest evaluates the function denoted by an edge under an assignment
// indexed by variable.
func (b *DD) evaltest(e int, env []bool) bool {
	for !b.isconst(e) {
		if env[b.varof(e)] {
			e = b.high(e)
		} else {
			e = b.low(e)
		}
	}
	return e == bddone
}

// forallenv runs a check on every assignment of the first n variables.
func forallenv(n int, f func(env []bool)) {
	env := make([]bool, n)
	for m := 0; m < 1<<uint(n); m++ {
		for k := range env {
			env[k] = (m>>uint(k))&1 == 1
		}
		f(env)
	}
}

//********************************************************************************************

func TestMinus(t *testing.T) {
	var minusTests = []struct {
		p, q, r  int32
		expected int32
	}{
		{3, 2, 3, 2},
		{4, 4, 4, 4},
		{2, 3, 3, 2},
		{3, 2, 2, 2},
		{3, 3, 2, 2},
		{1, 2, 3, 1},
	}
	for _, tt := range minusTests {
		actual := min3(tt.p, tt.q, tt.r)
		if actual != tt.expected {
			t.Errorf("min3(%d, %d, %d): expected %d, actual %d", tt.p, tt.q, tt.r, tt.expected, actual)
		}
	}
}

//********************************************************************************************

func TestIte_1(t *testing.T) {
	bdd, err := New(4)
	require.NoError(t, err)
	s := NewSet(bdd)
	n1 := bdd.Makeset([]int{0, 2, 3})
	n2 := bdd.Makeset([]int{0, 3})
	actual := s.Equiv(bdd.Ite(n1, n2, bdd.Not(n2)), s.Or(s.And(n1, n2), s.And(bdd.Not(n1), bdd.Not(n2))))
	if !bdd.Equal(actual, bdd.True()) {
		t.Errorf("ite(f,g,h) <=> (f and g) or (-f and -g): expected true, actual false")
	}
}

func TestIteLaws(t *testing.T) {
	bdd, err := New(4)
	require.NoError(t, err)
	v := bdd.Ithvar(0)
	g := bdd.Makeset([]int{1, 2})
	h := bdd.Makeset([]int{2, 3})
	// ite(v, one, zero) = v ; ite(v, zero, one) = !v ; ite(f, g, g) = g
	assert.True(t, bdd.Equal(bdd.Ite(v, bdd.True(), bdd.False()), v))
	assert.True(t, bdd.Equal(bdd.Ite(v, bdd.False(), bdd.True()), bdd.Not(v)))
	assert.True(t, bdd.Equal(bdd.Ite(v, g, g), g))
	assert.True(t, bdd.Equal(bdd.Ite(bdd.True(), g, h), g))
	assert.True(t, bdd.Equal(bdd.Ite(bdd.False(), g, h), h))
}

func TestBooleanLaws(t *testing.T) {
	bdd, err := New(5)
	require.NoError(t, err)
	s := NewSet(bdd)
	f := s.Or(bdd.Ithvar(0), s.And(bdd.Ithvar(1), bdd.NIthvar(3)))
	g := s.And(bdd.Ithvar(2), bdd.NIthvar(0))
	// commutativity
	assert.True(t, bdd.Equal(bdd.Apply(f, g, OPand), bdd.Apply(g, f, OPand)))
	assert.True(t, bdd.Equal(bdd.Apply(f, g, OPor), bdd.Apply(g, f, OPor)))
	// or(f, not f) = one ; xor(f, f) = zero
	assert.True(t, bdd.Equal(bdd.Apply(f, bdd.Not(f), OPor), bdd.True()))
	assert.True(t, bdd.Equal(bdd.Apply(f, f, OPxor), bdd.False()))
	// nand(f,g) = not(and(f,g))
	assert.True(t, bdd.Equal(bdd.Apply(f, g, OPnand), bdd.Not(bdd.Apply(f, g, OPand))))
	// leq(f,g) iff or(not f, g) = one
	assert.Equal(t, bdd.Leq(f, g), bdd.Equal(bdd.Apply(bdd.Not(f), g, OPor), bdd.True()))
	assert.True(t, bdd.Leq(f, f))
	assert.True(t, bdd.Leq(bdd.False(), f))
	assert.True(t, bdd.Leq(f, bdd.True()))
	// canonicality: equal functions share one edge
	h1 := bdd.Apply(f, g, OPand)
	h2 := bdd.Not(bdd.Apply(bdd.Not(f), bdd.Not(g), OPor))
	assert.True(t, bdd.Equal(h1, h2))
	assert.Equal(t, *h1, *h2)
}

// TestThenUncomplemented checks the canonical form: the then edge of every
// live node has its complement bit clear.
func TestThenUncomplemented(t *testing.T) {
	bdd, err := New(6)
	require.NoError(t, err)
	s := NewSet(bdd)
	rng := rand.New(rand.NewSource(42))
	f := bdd.True()
	for i := 0; i < 40; i++ {
		v := bdd.Ithvar(rng.Intn(6))
		if rng.Intn(2) == 0 {
			v = bdd.Not(v)
		}
		if rng.Intn(2) == 0 {
			f = s.Or(f, v)
		} else {
			f = s.And(f, v)
		}
	}
	err = bdd.Allnodes(func(id, level, low, high int) error {
		if etag(high) != 0 {
			return fmt.Errorf("complemented then edge on node %d", id)
		}
		return nil
	})
	assert.NoError(t, err)
}

//********************************************************************************************

// TestOperations implements the same tests as the bddtest program in the
// BuDDy distribution. It uses function Allsat for checking that all
// assignments are detected.
func TestOperations(t *testing.T) {
	bdd, err := New(4)
	require.NoError(t, err)
	s := NewSet(bdd)
	varnum := 4

	test1Check := func(x Node) {
		allsatBDD := x
		allsatSumBDD := bdd.False()
		// Calculate whole set of assignments and remove all assignments
		// from original set
		err := bdd.Allsat(func(varset []int) error {
			y := bdd.True()
			for k, v := range varset {
				switch v {
				case 0:
					y = s.And(y, bdd.NIthvar(bdd.Level2Var(k)))
				case 1:
					y = s.And(y, bdd.Ithvar(bdd.Level2Var(k)))
				}
			}
			// Sum up all assignments
			allsatSumBDD = s.Or(allsatSumBDD, y)
			// Remove assignment from initial set
			allsatBDD = bdd.Apply(allsatBDD, y, OPdiff)
			return nil
		}, x)
		require.NoError(t, err)

		// Now the summed set should be equal to the original set and the
		// subtracted set should be empty
		if !bdd.Equal(allsatSumBDD, x) {
			t.Errorf("Allsat sum is not the initial BDD")
		}
		if !bdd.Equal(allsatBDD, bdd.False()) {
			t.Errorf("Allsat remainder is not False")
		}
	}

	a := bdd.Ithvar(0)
	bb := bdd.Ithvar(1)
	c := bdd.Ithvar(2)
	d := bdd.Ithvar(3)
	na := bdd.NIthvar(0)
	nb := bdd.NIthvar(1)
	nc := bdd.NIthvar(2)
	nd := bdd.NIthvar(3)

	test1Check(bdd.True())
	test1Check(bdd.False())

	// a & b | !a & !b
	test1Check(s.Or(s.And(a, bb), s.And(na, nb)))

	// a & b | c & d
	test1Check(s.Or(s.And(a, bb), s.And(c, d)))

	// a & !b | a & !d | a & b & !c
	test1Check(s.Or(s.And(a, nb), s.And(a, nd), s.And(a, bb, nc)))

	for i := 0; i < varnum; i++ {
		test1Check(bdd.Ithvar(i))
		test1Check(bdd.NIthvar(i))
	}

	set := bdd.True()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		v := rng.Intn(varnum)
		if rng.Intn(2) == 0 {
			set = s.And(set, bdd.Ithvar(v))
		} else {
			set = s.And(set, bdd.NIthvar(v))
		}
		test1Check(set)
	}
}

//********************************************************************************************

func TestQuantification(t *testing.T) {
	bdd, err := New(5)
	require.NoError(t, err)
	s := NewSet(bdd)
	f := s.And(bdd.Ithvar(0), bdd.Ithvar(2))
	g := s.Or(bdd.Ithvar(1), bdd.NIthvar(3))
	v0 := bdd.Makeset([]int{0})

	// exist(and(f,g), v) = and(exist(f,v), g) when v not in support(g)
	lhs := bdd.Exist(s.And(f, g), v0)
	rhs := s.And(bdd.Exist(f, v0), g)
	assert.True(t, bdd.Equal(lhs, rhs))

	// forall(f, v) = not exist(not f, v)
	assert.True(t, bdd.Equal(bdd.Forall(f, v0), bdd.Not(bdd.Exist(bdd.Not(f), v0))))

	// AppEx equals apply then exist
	cube := bdd.Makeset([]int{0, 2})
	assert.True(t, bdd.Equal(
		bdd.AppEx(f, g, OPand, cube),
		bdd.Exist(s.And(f, g), cube)))
	assert.True(t, bdd.Equal(
		bdd.XorExistAbstract(f, g, cube),
		bdd.Exist(s.Xor(f, g), cube)))

	// rejecting a varset that is not a positive cube
	bad := s.Or(bdd.Ithvar(0), bdd.Ithvar(1))
	assert.Nil(t, bdd.Exist(f, bad))
	assert.Equal(t, InvalidCube, bdd.LastError())
	bdd.ClearError()
}

func TestComposeRestrict(t *testing.T) {
	bdd, err := New(6)
	require.NoError(t, err)
	s := NewSet(bdd)
	f := s.Or(s.And(bdd.Ithvar(0), bdd.Ithvar(2)), bdd.Ithvar(4))
	g := s.Xor(bdd.Ithvar(1), bdd.Ithvar(3))

	// compose(f, v, g) = ite(g, f[v=1], f[v=0])
	comp := bdd.Compose(f, 2, g)
	f1 := bdd.Compose(f, 2, bdd.True())
	f0 := bdd.Compose(f, 2, bdd.False())
	assert.True(t, bdd.Equal(comp, bdd.Ite(g, f1, f0)))

	// vector compose with the identity leaves f unchanged
	id := make([]Node, 6)
	assert.True(t, bdd.Equal(bdd.VecCompose(f, id), f))
	// vector compose on one entry matches compose
	vec := make([]Node, 6)
	vec[2] = g
	assert.True(t, bdd.Equal(bdd.VecCompose(f, vec), comp))

	// restrict and constrain agree with f on the care set
	c := s.And(bdd.Ithvar(0), bdd.Ithvar(4))
	for _, m := range []Node{bdd.Restrict(f, c), bdd.Constrain(f, c), bdd.Minimize(f, c)} {
		require.NotNil(t, m)
		assert.True(t, bdd.Equal(s.And(m, c), s.And(f, c)))
	}

	// replace renames variables
	rep, err := bdd.NewReplacer([]int{0, 2}, []int{1, 3})
	require.NoError(t, err)
	h := s.And(bdd.Ithvar(0), bdd.Ithvar(2))
	assert.True(t, bdd.Equal(bdd.Replace(h, rep), s.And(bdd.Ithvar(1), bdd.Ithvar(3))))
}

func TestIntersectWitness(t *testing.T) {
	bdd, err := New(4)
	require.NoError(t, err)
	s := NewSet(bdd)
	f := s.Or(bdd.Ithvar(0), bdd.Ithvar(1))
	g := s.Or(bdd.NIthvar(0), bdd.Ithvar(2))
	w := bdd.Intersect(f, g)
	require.NotNil(t, w)
	assert.False(t, bdd.Equal(w, bdd.False()))
	assert.True(t, bdd.Leq(w, s.And(f, g)))
	// disjoint functions yield the empty witness
	w2 := bdd.Intersect(bdd.Ithvar(3), bdd.NIthvar(3))
	assert.True(t, bdd.Equal(w2, bdd.False()))
}

//********************************************************************************************

func TestSatcount(t *testing.T) {
	bdd, err := New(4)
	require.NoError(t, err)
	s := NewSet(bdd)
	assert.Equal(t, big.NewInt(8).String(), bdd.Satcount(bdd.Ithvar(0)).String())
	assert.Equal(t, big.NewInt(16).String(), bdd.Satcount(bdd.True()).String())
	assert.Equal(t, big.NewInt(0).String(), bdd.Satcount(bdd.False()).String())
	f := s.Or(bdd.Ithvar(1), bdd.Ithvar(3))
	assert.Equal(t, big.NewInt(12).String(), bdd.Satcount(f).String())
}

func TestSupport(t *testing.T) {
	bdd, err := New(5)
	require.NoError(t, err)
	s := NewSet(bdd)
	f := s.Or(s.And(bdd.Ithvar(0), bdd.Ithvar(3)), bdd.Ithvar(4))
	assert.Equal(t, []int{0, 3, 4}, bdd.SupportIndices(f))
	assert.Equal(t, []int{0, 3, 4}, bdd.Scanset(bdd.Support(f)))
	assert.Equal(t, []int{1, 2}, bdd.Scanset(bdd.Makeset([]int{2, 1})))
}

func TestPickOneCube(t *testing.T) {
	bdd, err := New(4)
	require.NoError(t, err)
	s := NewSet(bdd)
	f := s.And(bdd.Ithvar(1), bdd.NIthvar(2))
	prof := bdd.PickOneCube(f)
	require.NotNil(t, prof)
	env := make([]bool, 4)
	for v, val := range prof {
		env[v] = val == 1
	}
	assert.True(t, bdd.evaltest(*f, env))
	assert.Nil(t, bdd.PickOneCube(bdd.False()))
}

//********************************************************************************************

func TestGarbageCollection(t *testing.T) {
	bdd, err := New(6, Nodesize(256))
	require.NoError(t, err)
	s := NewSet(bdd)
	f := s.And(bdd.Ithvar(0), bdd.Ithvar(1), bdd.Ithvar(2))
	// build and drop a lot of garbage to exercise GC and revival
	for i := 0; i < 200; i++ {
		g := s.Or(f, s.And(bdd.Ithvar(i%6), bdd.NIthvar((i+1)%6)))
		h := s.Xor(g, bdd.Ithvar((i+2)%6))
		bdd.RecursiveDeref(h)
		bdd.RecursiveDeref(g)
	}
	bdd.GC()
	// f must have survived every collection
	assert.True(t, bdd.Equal(f, s.And(bdd.Ithvar(2), bdd.Ithvar(1), bdd.Ithvar(0))))
	require.False(t, bdd.Errored(), bdd.Error())
	// reference counts of pledged nodes stay positive
	assert.True(t, bdd.nodes[enode(*f)].refcou > 0)
}

func TestHooksAndTimeout(t *testing.T) {
	bdd, err := New(4)
	require.NoError(t, err)
	count := 0
	id := bdd.AddHook(func(d *DD, w HookWhere) error {
		count++
		return nil
	}, PreGC)
	bdd.GC()
	assert.Equal(t, 1, count)
	assert.True(t, bdd.RemoveHook(id))
	bdd.GC()
	assert.Equal(t, 1, count)

	// a hook error aborts with TerminationRequested
	bdd.AddHook(func(d *DD, w HookWhere) error {
		return fmt.Errorf("stop")
	}, PreReorder)
	err = bdd.ReduceHeap(ReorderSift, 0)
	assert.Error(t, err)
	assert.Equal(t, TerminationRequested, bdd.LastError())
	bdd.ClearError()

	// an expired deadline unwinds with the nil sentinel
	fired := false
	bdd.SetTimeoutHandler(func(d *DD) { fired = true })
	bdd.SetTimeLimit(1)
	res := bdd.Apply(bdd.Ithvar(0), bdd.Ithvar(1), OPand)
	assert.Nil(t, res)
	assert.Equal(t, TimeoutExpired, bdd.LastError())
	assert.True(t, fired)
	bdd.ClearTimeLimit()
	bdd.ClearError()
	res = bdd.Apply(bdd.Ithvar(0), bdd.Ithvar(1), OPand)
	assert.NotNil(t, res)
}

func TestInvalidInputs(t *testing.T) {
	bdd, err := New(3)
	require.NoError(t, err)
	x := []Node{bdd.Ithvar(0)}
	y := []Node{bdd.Ithvar(1)}
	assert.Nil(t, bdd.Inequality(0, 1, x, y))
	assert.Equal(t, InvalidInput, bdd.LastError())
	bdd.ClearError()
	assert.Nil(t, bdd.Disequality(-1, 1, x, y))
	assert.Equal(t, InvalidInput, bdd.LastError())
	bdd.ClearError()
	_, err = New(0)
	assert.Error(t, err)
}
