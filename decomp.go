// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

// Conjunctive and disjunctive decompositions. Every decomposition returns a
// small slice of factors such that the conjunction (respectively disjunction)
// of the factors equals the input. The conjunctive constructions pair a
// superset approximation g of f with the simplification Restrict(f, g): since
// f implies g, the product of the two factors gives back f. The disjunctive
// variants are obtained by duality.

package godd

func (b *DD) conjdecomp(f Node, super func(Node) Node, name string) []Node {
	b.prologue()
	if b.checkptr(f) != nil {
		b.seterror("wrong operand in call to %s", name)
		return nil
	}
	if b.isconst(*f) {
		return []Node{b.retnode(*f)}
	}
	g := super(f)
	if g == nil {
		return nil
	}
	if *g == bddone || *g == *f {
		b.RecursiveDeref(g)
		return []Node{b.retnode(*f)}
	}
	h := b.Restrict(f, g)
	if h == nil {
		b.RecursiveDeref(g)
		return nil
	}
	return []Node{g, h}
}

// ApproxConjDecomp splits f into two factors whose conjunction equals f,
// using the heavy-branch superset as the first factor.
func (b *DD) ApproxConjDecomp(f Node) []Node {
	return b.conjdecomp(f, func(n Node) Node {
		return b.SupersetHeavyBranch(n, b.NodeCount(n)/2+1)
	}, "ApproxConjDecomp")
}

// IterConjDecomp splits f into two factors using the short-paths superset,
// iterating on the path bound until the first factor is a proper
// approximation.
func (b *DD) IterConjDecomp(f Node) []Node {
	return b.conjdecomp(f, func(n Node) Node {
		nf := b.Not(n)
		if nf == nil {
			return nil
		}
		dist := make(map[int]int)
		droot := b.shortpaths(*nf, dist)
		var res Node
		for bound := droot; ; bound++ {
			res = b.SupersetShortPaths(n, bound)
			if res == nil || *res != bddone || bound > droot+int(b.varnum) {
				break
			}
			b.RecursiveDeref(res)
		}
		b.RecursiveDeref(nf)
		return res
	}, "IterConjDecomp")
}

// GenConjDecomp splits f into two factors using a tighter heavy-branch
// superset than ApproxConjDecomp.
func (b *DD) GenConjDecomp(f Node) []Node {
	return b.conjdecomp(f, func(n Node) Node {
		return b.SupersetHeavyBranch(n, 3*b.NodeCount(n)/4+1)
	}, "GenConjDecomp")
}

// VarConjDecomp splits f on its top variable v: f is the conjunction of
// (v or f0) and (not v or f1).
func (b *DD) VarConjDecomp(f Node) []Node {
	b.prologue()
	if b.checkptr(f) != nil {
		b.seterror("wrong operand in call to VarConjDecomp")
		return nil
	}
	if b.isconst(*f) {
		return []Node{b.retnode(*f)}
	}
	v := b.varof(*f)
	b.initref()
	b.pushref(*f)
	g1 := b.ite(b.varset[v][0], b.high(*f), bddone)
	b.pushref(g1)
	g2 := b.ite(b.varset[v][0], bddone, b.low(*f))
	n1 := b.retnode(g1)
	n2 := b.retnode(g2)
	b.popref(2)
	if n1 == nil || n2 == nil {
		return nil
	}
	return []Node{n1, n2}
}

// ************************************************************

func (b *DD) disjdual(f Node, conj func(Node) []Node) []Node {
	nf := b.Not(f)
	if nf == nil {
		return nil
	}
	factors := conj(nf)
	b.RecursiveDeref(nf)
	if factors == nil {
		return nil
	}
	for k, g := range factors {
		factors[k] = b.Not(g)
		b.RecursiveDeref(g)
		if factors[k] == nil {
			return nil
		}
	}
	return factors
}

// ApproxDisjDecomp splits f into two factors whose disjunction equals f.
func (b *DD) ApproxDisjDecomp(f Node) []Node {
	return b.disjdual(f, b.ApproxConjDecomp)
}

// IterDisjDecomp is the disjunctive dual of IterConjDecomp.
func (b *DD) IterDisjDecomp(f Node) []Node {
	return b.disjdual(f, b.IterConjDecomp)
}

// GenDisjDecomp is the disjunctive dual of GenConjDecomp.
func (b *DD) GenDisjDecomp(f Node) []Node {
	return b.disjdual(f, b.GenConjDecomp)
}

// VarDisjDecomp splits f on its top variable v: f is the disjunction of
// (v and f1) and (not v and f0).
func (b *DD) VarDisjDecomp(f Node) []Node {
	b.prologue()
	if b.checkptr(f) != nil {
		b.seterror("wrong operand in call to VarDisjDecomp")
		return nil
	}
	if b.isconst(*f) {
		return []Node{b.retnode(*f)}
	}
	v := b.varof(*f)
	b.initref()
	b.pushref(*f)
	g1 := b.and(b.varset[v][0], b.high(*f))
	b.pushref(g1)
	g2 := b.and(b.varset[v][1], b.low(*f))
	n1 := b.retnode(g1)
	n2 := b.retnode(g2)
	b.popref(2)
	if n1 == nil || n2 == nil {
		return nil
	}
	return []Node{n1, n2}
}
