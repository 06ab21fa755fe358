// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

// Dynamic variable reordering. The engine runs in quiescent intervals only:
// it flushes the caches, collects dead nodes, then permutes levels through
// the adjacent-swap primitive. The function denoted by every externally
// referenced edge is invariant across reordering.

package godd

import (
	"math"
	"time"

	"go.uber.org/zap"
)

// ReorderMethod selects the reordering heuristic used by ReduceHeap and by
// automatic reordering.
type ReorderMethod int

const (
	// ReorderSame keeps the current method (or does nothing in ReduceHeap).
	ReorderSame ReorderMethod = iota
	// ReorderNone disables automatic reordering.
	ReorderNone
	// ReorderRandom installs a random permutation.
	ReorderRandom
	// ReorderRandomPivot tries random transpositions around the largest
	// level, keeping the best order.
	ReorderRandomPivot
	// ReorderSift moves each variable in turn to its locally best level.
	ReorderSift
	// ReorderSiftConv repeats sifting until no improvement.
	ReorderSiftConv
	// ReorderSymmSift detects symmetric variables and sifts the symmetry
	// classes as blocks.
	ReorderSymmSift
	// ReorderSymmSiftConv repeats symmetric sifting until no improvement.
	ReorderSymmSiftConv
	// ReorderWindow2, 3, 4: exhaustive permutation of sliding windows of
	// adjacent levels.
	ReorderWindow2
	ReorderWindow3
	ReorderWindow4
	// ReorderWindow2Conv, 3, 4: windowing repeated until no improvement.
	ReorderWindow2Conv
	ReorderWindow3Conv
	ReorderWindow4Conv
	// ReorderGroupSift sifts the top-level groups of the variable tree as
	// blocks, then the variables inside each non-fixed group.
	ReorderGroupSift
	// ReorderGroupSiftConv repeats group sifting until no improvement.
	ReorderGroupSiftConv
	// ReorderAnnealing runs simulated annealing on the variable order.
	ReorderAnnealing
	// ReorderGenetic runs a small genetic search on the variable order.
	ReorderGenetic
	// ReorderExact searches every order; accepted for at most 9 unfixed
	// variables.
	ReorderExact
	// ReorderLazySift runs the same pass as ReorderGroupSift; it does not
	// use symmetry classes.
	ReorderLazySift
)

var reordernames = map[ReorderMethod]string{
	ReorderSame:          "same",
	ReorderNone:          "none",
	ReorderRandom:        "random",
	ReorderRandomPivot:   "random-pivot",
	ReorderSift:          "sift",
	ReorderSiftConv:      "sift-converge",
	ReorderSymmSift:      "symm-sift",
	ReorderSymmSiftConv:  "symm-sift-converge",
	ReorderWindow2:       "window2",
	ReorderWindow3:       "window3",
	ReorderWindow4:       "window4",
	ReorderWindow2Conv:   "window2-converge",
	ReorderWindow3Conv:   "window3-converge",
	ReorderWindow4Conv:   "window4-converge",
	ReorderGroupSift:     "group-sift",
	ReorderGroupSiftConv: "group-sift-converge",
	ReorderAnnealing:     "annealing",
	ReorderGenetic:       "genetic",
	ReorderExact:         "exact",
	ReorderLazySift:      "lazy-sift",
}

func (m ReorderMethod) String() string {
	if s, ok := reordernames[m]; ok {
		return s
	}
	return "unknown"
}

// ************************************************************

// ReduceHeap reorders the variables with the given method. The reordering is
// skipped when the DD holds fewer than minsize live nodes. A swap that cannot
// fit in memory is refused atomically: the best order found so far stays
// installed and the manager remains valid.
func (b *DD) ReduceHeap(method ReorderMethod, minsize int) error {
	if b.reordering {
		return nil
	}
	if method == ReorderSame || method == ReorderNone {
		return nil
	}
	if b.livenodes() < minsize || b.varnum < 2 {
		return nil
	}
	start := time.Now()
	b.reordering = true
	defer func() {
		b.reordering = false
		b.reordertime += time.Since(start)
	}()
	// quiescence: invalidate every memoized result and collect dead nodes
	b.cachereset()
	if err := b.gbcreorder(); err != nil {
		return err
	}
	if err := b.firehooks(PreReorder); err != nil {
		return err
	}
	before := b.livenodes()
	var err error
	switch method {
	case ReorderRandom:
		err = b.reorderrandom()
	case ReorderRandomPivot:
		err = b.reorderrandompivot()
	case ReorderSift:
		err = b.reordersift(false)
	case ReorderSiftConv:
		err = b.converge(func() error { return b.reordersift(true) })
	case ReorderSymmSift:
		err = b.reordersymmsift()
	case ReorderSymmSiftConv:
		err = b.converge(b.reordersymmsift)
	case ReorderWindow2:
		err = b.reorderwindow(2)
	case ReorderWindow3:
		err = b.reorderwindow(3)
	case ReorderWindow4:
		err = b.reorderwindow(4)
	case ReorderWindow2Conv:
		err = b.converge(func() error { return b.reorderwindow(2) })
	case ReorderWindow3Conv:
		err = b.converge(func() error { return b.reorderwindow(3) })
	case ReorderWindow4Conv:
		err = b.converge(func() error { return b.reorderwindow(4) })
	case ReorderGroupSift, ReorderLazySift:
		err = b.reordergroupsift()
	case ReorderGroupSiftConv:
		err = b.converge(b.reordergroupsift)
	case ReorderAnnealing:
		err = b.reorderannealing()
	case ReorderGenetic:
		err = b.reordergenetic()
	case ReorderExact:
		err = b.reorderexact()
	default:
		b.seterrcode(InvalidInput, "unknown reordering method (%d)", method)
		err = b.error
	}
	b.logger.Info("reordering done",
		zap.String("method", method.String()),
		zap.Int("before", before),
		zap.Int("after", b.livenodes()),
		logerr(err))
	if herr := b.firehooks(PostReorder); herr != nil && err == nil {
		err = herr
	}
	return err
}

// AutodynEnable allows reordering to fire automatically, with the given
// method, when the number of live nodes exceeds the threshold set with
// SetNextReordering. The reordering runs at the next quiescent point.
func (b *DD) AutodynEnable(method ReorderMethod) {
	if method != ReorderSame {
		b.autodynmethod = method
	}
	if b.autodynmethod == ReorderSame || b.autodynmethod == ReorderNone {
		b.autodynmethod = ReorderSift
	}
	b.autodyn = true
}

// AutodynDisable turns automatic reordering off.
func (b *DD) AutodynDisable() {
	b.autodyn = false
}

// ReorderTime returns the total wall-clock time spent reordering.
func (b *DD) ReorderTime() time.Duration {
	return b.reordertime
}

// converge repeats a reordering pass until it stops shrinking the DD.
func (b *DD) converge(pass func() error) error {
	for {
		before := b.livenodes()
		if err := pass(); err != nil {
			return err
		}
		if b.livenodes() >= before {
			return nil
		}
	}
}

// gbcreorder collects dead nodes without firing the GC hooks (the reordering
// hooks frame the whole operation).
func (b *DD) gbcreorder() error {
	for k := range b.subtables {
		b.sweep(&b.subtables[k])
	}
	for k := range b.zsubtables {
		b.sweep(&b.zsubtables[k])
	}
	b.deadnum = 0
	b.cachereset()
	return nil
}

// ************************************************************

// swap exchanges the variables at levels lev and lev+1. Only the nodes of the
// two affected subtables are touched: an upper node that does not interact
// with the lower variable just changes level, which is free since nodes store
// indexes. Interacting nodes are rewritten in place, so references from
// parents (and from external Nodes) stay valid. The swap refuses to start,
// returning errSwap, when the free list cannot absorb the worst-case growth;
// this makes the failure atomic.
func (b *DD) swap(lev int32) error {
	x := b.level2var[lev]
	y := b.level2var[lev+1]
	stx := &b.subtables[x]
	sty := &b.subtables[y]
	// reserve the worst case: two fresh nodes per rewritten node
	if b.freenum < 2*stx.keys+_SWAPSLACK {
		if err := b.noderesize(); err != nil && b.freenum < 2*stx.keys+_SWAPSLACK {
			return errSwap
		}
		if b.freenum < 2*stx.keys+_SWAPSLACK {
			return errSwap
		}
	}
	// detach the chains of the upper subtable; the buckets are rebuilt as we
	// classify the nodes
	detached := []int{}
	for i := range stx.hash {
		n := stx.hash[i]
		for n != 0 {
			detached = append(detached, n)
			n = b.nodes[n].next
		}
		stx.hash[i] = 0
	}
	stx.keys = 0
	// first pass: dead nodes are dropped, non-interacting nodes are put back
	interacting := detached[:0]
	for _, n := range detached {
		nd := &b.nodes[n]
		if b.isdead(n) {
			// freeing now avoids rebuilding a node that nobody references
			nd.index = 0
			nd.low = -1
			nd.next = b.freepos
			b.freepos = n
			b.freenum++
			b.deadnum--
			continue
		}
		if b.edgevar(nd.low) != y && b.edgevar(nd.high) != y {
			b.relink(stx, n)
			continue
		}
		interacting = append(interacting, n)
	}
	// second pass: rewrite the interacting nodes as y-nodes
	for _, n := range interacting {
		nd := &b.nodes[n]
		f1, f0 := nd.high, nd.low
		var f11, f10 int
		if b.edgevar(f1) == y {
			f11, f10 = b.high(f1), b.low(f1)
		} else {
			f11, f10 = f1, f1
		}
		var f01, f00 int
		if b.edgevar(f0) == y {
			f01, f00 = b.high(f0), b.low(f0)
		} else {
			f01, f00 = f0, f0
		}
		// the then edge of a then cofactor is never complemented, so newT
		// comes out uncomplemented and can sit on the then side of n
		newT := b.makenode(x, f01, f11)
		newE := b.makenode(x, f00, f10)
		if newT < 0 || newE < 0 {
			// cannot happen: the headroom was reserved above
			b.seterrcode(InternalError, "allocation failed inside a reserved swap")
			return b.error
		}
		b.rcinc(newT)
		b.rcinc(newE)
		b.rcdec(f1)
		b.rcdec(f0)
		nd.index = y
		nd.high = newT
		nd.low = newE
		b.relink(sty, n)
	}
	b.var2level[x] = lev + 1
	b.var2level[y] = lev
	b.level2var[lev] = y
	b.level2var[lev+1] = x
	return nil
}

// edgevar returns the variable index of the node an edge points to.
func (b *DD) edgevar(e int) int32 {
	return b.nodes[enode(e)].index & _MAXVAR
}

// relink inserts node n in the bucket of subtable st matching its children.
func (b *DD) relink(st *subtable, n int) {
	st.keys++
	if st.keys > _CHAINQUALITY*len(st.hash) {
		b.subtableresize(st)
	}
	pos := _PAIR(b.nodes[n].low, b.nodes[n].high, len(st.hash))
	b.nodes[n].next = st.hash[pos]
	st.hash[pos] = n
}

// ************************************************************

// siftvar moves the variable x up then down within its group bounds, tracking
// the best size, and leaves it at the best level seen.
func (b *DD) siftvar(x int32, growth float64) error {
	lev := b.var2level[x]
	lo, hi := b.groupbounds(lev)
	if b.fixedat(lev) {
		return nil
	}
	best := lev
	bestsize := b.livenodes()
	startsize := bestsize
	ceiling := int(growth * float64(startsize))
	// up
	for cur := lev; cur > lo; cur-- {
		if err := b.swap(cur - 1); err != nil {
			if err == errSwap {
				break
			}
			return err
		}
		if size := b.livenodes(); size < bestsize {
			bestsize = size
			best = cur - 1
		} else if size > ceiling {
			break
		}
	}
	// down, through the starting level
	for cur := b.var2level[x]; cur < hi-1; cur++ {
		if err := b.swap(cur); err != nil {
			if err == errSwap {
				break
			}
			return err
		}
		if size := b.livenodes(); size < bestsize {
			bestsize = size
			best = cur + 1
		} else if size > ceiling {
			break
		}
	}
	// park x at the best level seen
	for b.var2level[x] > best {
		if err := b.swap(b.var2level[x] - 1); err != nil {
			return nil
		}
	}
	for b.var2level[x] < best {
		if err := b.swap(b.var2level[x]); err != nil {
			return nil
		}
	}
	return nil
}

// reordersift sifts each variable in turn, starting from the largest
// subtables.
func (b *DD) reordersift(converging bool) error {
	growth := b.maxgrowth
	if converging {
		growth = b.maxgrowthalt
	}
	order := make([]int32, 0, b.varnum)
	for v := int32(0); v < b.varnum; v++ {
		order = append(order, v)
	}
	// largest subtables first
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && b.subtables[order[j]].keys > b.subtables[order[j-1]].keys; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	for _, x := range order {
		if err := b.siftvar(x, growth); err != nil {
			return err
		}
	}
	return nil
}

// ************************************************************

// setorder installs a target order, given as the slice of variables from the
// top level down, through adjacent swaps. Whole-order methods require an
// ungrouped manager.
func (b *DD) setorder(target []int32) error {
	for lev := int32(0); lev < b.varnum-1; lev++ {
		v := target[lev]
		for b.var2level[v] > lev {
			if err := b.swap(b.var2level[v] - 1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *DD) currentorder() []int32 {
	res := make([]int32, b.varnum)
	copy(res, b.level2var)
	return res
}

func (b *DD) wholeorderok(name string) error {
	if b.tree != nil {
		b.seterrcode(InvalidInput, "%s reordering does not support variable groups", name)
		return b.error
	}
	return nil
}

// reorderrandom installs a random permutation of the variables.
func (b *DD) reorderrandom() error {
	if err := b.wholeorderok("random"); err != nil {
		return err
	}
	target := b.currentorder()
	b.rng.Shuffle(len(target), func(i, j int) {
		target[i], target[j] = target[j], target[i]
	})
	return b.setorder(target)
}

// reorderrandompivot tries varnum random transpositions across the largest
// level and keeps the best order seen.
func (b *DD) reorderrandompivot() error {
	if err := b.wholeorderok("random-pivot"); err != nil {
		return err
	}
	pivot := int32(0)
	for v := int32(1); v < b.varnum; v++ {
		if b.subtables[v].keys > b.subtables[pivot].keys {
			pivot = v
		}
	}
	pivlev := b.var2level[pivot]
	if pivlev == 0 {
		pivlev = b.varnum / 2
	}
	best := b.currentorder()
	bestsize := b.livenodes()
	for it := int32(0); it < b.varnum; it++ {
		i := int32(b.rng.Intn(int(pivlev)))
		j := pivlev + int32(b.rng.Intn(int(b.varnum-pivlev)))
		target := b.currentorder()
		target[i], target[j] = target[j], target[i]
		if err := b.setorder(target); err != nil {
			return err
		}
		if size := b.livenodes(); size < bestsize {
			bestsize = size
			best = b.currentorder()
		}
	}
	return b.setorder(best)
}

// reorderannealing runs simulated annealing over adjacent transpositions,
// with a deterministic seeded PRNG, and installs the best order seen.
func (b *DD) reorderannealing() error {
	if err := b.wholeorderok("annealing"); err != nil {
		return err
	}
	size := b.livenodes()
	best := b.currentorder()
	bestsize := size
	temp := float64(size)
	iterations := int(b.varnum) * 8
	for it := 0; it < iterations && temp > 0.1; it++ {
		lev := int32(b.rng.Intn(int(b.varnum - 1)))
		if err := b.swap(lev); err != nil {
			if err == errSwap {
				break
			}
			return err
		}
		newsize := b.livenodes()
		delta := float64(newsize - size)
		if delta <= 0 || b.rng.Float64() < math.Exp(-delta/temp) {
			size = newsize
			if newsize < bestsize {
				bestsize = newsize
				best = b.currentorder()
			}
		} else {
			// reject: swap back
			if err := b.swap(lev); err != nil {
				return err
			}
		}
		temp *= 0.95
	}
	return b.setorder(best)
}

// reordergenetic runs a small genetic search: a population of orders bred
// with order crossover, evaluated by installing each order.
func (b *DD) reordergenetic() error {
	if err := b.wholeorderok("genetic"); err != nil {
		return err
	}
	const popsize = 8
	const generations = 4
	type individual struct {
		order []int32
		size  int
	}
	eval := func(order []int32) (int, error) {
		if err := b.setorder(order); err != nil {
			return 0, err
		}
		return b.livenodes(), nil
	}
	pop := make([]individual, 0, popsize)
	cur := b.currentorder()
	sz := b.livenodes()
	pop = append(pop, individual{cur, sz})
	for len(pop) < popsize {
		order := b.currentorder()
		b.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		size, err := eval(order)
		if err != nil {
			return err
		}
		pop = append(pop, individual{order, size})
	}
	bestof := func() individual {
		best := pop[0]
		for _, ind := range pop[1:] {
			if ind.size < best.size {
				best = ind
			}
		}
		return best
	}
	for g := 0; g < generations; g++ {
		p1 := pop[b.rng.Intn(len(pop))]
		p2 := pop[b.rng.Intn(len(pop))]
		child := ordercrossover(b.rng.Intn, p1.order, p2.order)
		// mutation: one random transposition
		if len(child) > 1 {
			i, j := b.rng.Intn(len(child)), b.rng.Intn(len(child))
			child[i], child[j] = child[j], child[i]
		}
		size, err := eval(child)
		if err != nil {
			return err
		}
		// replace the worst individual
		worst := 0
		for k := range pop {
			if pop[k].size > pop[worst].size {
				worst = k
			}
		}
		if size < pop[worst].size {
			pop[worst] = individual{child, size}
		}
	}
	return b.setorder(bestof().order)
}

// ordercrossover builds a child order keeping a slice of p1 and filling the
// rest in the order of p2.
func ordercrossover(intn func(int) int, p1, p2 []int32) []int32 {
	n := len(p1)
	lo := intn(n)
	hi := lo + intn(n-lo)
	child := make([]int32, 0, n)
	used := make(map[int32]bool, n)
	for k := lo; k <= hi; k++ {
		child = append(child, p1[k])
		used[p1[k]] = true
	}
	for _, v := range p2 {
		if !used[v] {
			child = append(child, v)
		}
	}
	return child
}

// reorderexact enumerates every order and installs the best one. The
// factorial search is accepted for at most 9 variables.
func (b *DD) reorderexact() error {
	if err := b.wholeorderok("exact"); err != nil {
		return err
	}
	if b.varnum > 9 {
		b.seterrcode(InvalidInput, "exact reordering limited to 9 variables (have %d)", b.varnum)
		return b.error
	}
	best := b.currentorder()
	bestsize := b.livenodes()
	perm := b.currentorder()
	var visit func(k int) error
	visit = func(k int) error {
		if k == len(perm) {
			if err := b.setorder(perm); err != nil {
				return err
			}
			if size := b.livenodes(); size < bestsize {
				bestsize = size
				best = append([]int32{}, perm...)
			}
			return nil
		}
		for i := k; i < len(perm); i++ {
			perm[k], perm[i] = perm[i], perm[k]
			if err := visit(k + 1); err != nil {
				return err
			}
			perm[k], perm[i] = perm[i], perm[k]
		}
		return nil
	}
	if err := visit(0); err != nil {
		return err
	}
	return b.setorder(best)
}

// ************************************************************

// blockup moves the block of levels [lo, hi) one level up: the variable at
// lo-1 descends below the block, one swap per block member.
func (b *DD) blockup(lo, hi int32) error {
	for k := lo - 1; k < hi-1; k++ {
		if err := b.swap(k); err != nil {
			return err
		}
	}
	return nil
}

// blockdown moves the block of levels [lo, hi) one level down.
func (b *DD) blockdown(lo, hi int32) error {
	for k := hi; k > lo; k-- {
		if err := b.swap(k - 1); err != nil {
			return err
		}
	}
	return nil
}

// treeshift slides every group fully inside [lo, hi) by delta levels.
func treeshift(t *TreeNode, lo, hi, delta int32) {
	if t == nil {
		return
	}
	for c := t.Child; c != nil; c = c.Next {
		if c.Low >= lo && c.Low+c.Size <= hi {
			treeshift(c, lo, hi, delta)
			c.Low += delta
		} else {
			treeshift(c, lo, hi, delta)
		}
	}
}

// blocksift sifts one block of levels within [boundlo, boundhi), keeping the
// best position. The variable tree intervals follow the block.
func (b *DD) blocksift(lo, hi, boundlo, boundhi int32, growth float64) error {
	size := hi - lo
	best := lo
	bestsize := b.livenodes()
	ceiling := int(growth * float64(bestsize))
	cur := lo
	// up
	for cur > boundlo {
		if err := b.blockup(cur, cur+size); err != nil {
			if err == errSwap {
				break
			}
			return err
		}
		treeshift(b.tree, cur, cur+size, -1)
		cur--
		if s := b.livenodes(); s < bestsize {
			bestsize = s
			best = cur
		} else if s > ceiling {
			break
		}
	}
	// down
	for cur+size < boundhi {
		if err := b.blockdown(cur, cur+size); err != nil {
			if err == errSwap {
				break
			}
			return err
		}
		treeshift(b.tree, cur, cur+size, 1)
		cur++
		if s := b.livenodes(); s < bestsize {
			bestsize = s
			best = cur
		} else if s > ceiling {
			break
		}
	}
	// park at the best position
	for cur > best {
		if err := b.blockup(cur, cur+size); err != nil {
			return nil
		}
		treeshift(b.tree, cur, cur+size, -1)
		cur--
	}
	for cur < best {
		if err := b.blockdown(cur, cur+size); err != nil {
			return nil
		}
		treeshift(b.tree, cur, cur+size, 1)
		cur++
	}
	return nil
}

// reordergroupsift sifts the top-level groups as blocks, then the variables
// inside every non-fixed group.
func (b *DD) reordergroupsift() error {
	// record the blocks by their member variables: blocks move during the
	// pass, but they stay contiguous and keep their internal order
	blocks := [][]int32{}
	for _, blk := range b.topgroups() {
		vars := []int32{}
		for lev := blk[0]; lev < blk[1]; lev++ {
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
	// sift blocks, largest first
	for i := 1; i < len(blocks); i++ {
		for j := i; j > 0 && sizeof(blocks[j]) > sizeof(blocks[j-1]); j-- {
			blocks[j], blocks[j-1] = blocks[j-1], blocks[j]
		}
	}
	for _, vars := range blocks {
		lo := b.var2level[vars[0]]
		if err := b.blocksift(lo, lo+int32(len(vars)), 0, b.varnum, b.maxgrowth); err != nil {
			return err
		}
	}
	// then sift inside the groups
	return b.reordersift(false)
}
