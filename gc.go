// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"go.uber.org/zap"
)

// gcstat stores status information about garbage collections. We use a stack
// (slice) of objects to record the sequence of GC during a computation.
type gcstat struct {
	history []gcpoint // Snapshot of GC stats at each occurrence
}

type gcpoint struct {
	nodes     int // Total number of allocated nodes in the arena
	freenodes int // Number of free nodes in the arena
	deadnodes int // Number of dead nodes collected
}

// *************************************************************************

// rcinc takes one more counted reference on the node denoted by edge e. A dead
// node is revived: the references it used to hold on its children, dropped
// when it died, are restored first. Terminals and projection variables are
// pinned at the maximal count and never move.
func (b *DD) rcinc(e int) {
	if e < 0 {
		return
	}
	nd := &b.nodes[enode(e)]
	if nd.refcou >= _MAXREFCOUNT {
		return
	}
	if nd.index&_DEADBIT != 0 {
		nd.index &^= _DEADBIT
		b.deadnum--
		b.rcinc(nd.low)
		b.rcinc(nd.high)
	}
	nd.refcou++
}

// rcdec drops one counted reference on the node denoted by edge e. A count
// falling to zero marks the node dead and recursively drops the references it
// holds on its children; the node stays addressable, and revivable, until the
// next collection.
func (b *DD) rcdec(e int) {
	if e < 0 {
		return
	}
	nd := &b.nodes[enode(e)]
	if nd.refcou >= _MAXREFCOUNT || nd.refcou == 0 {
		return
	}
	nd.refcou--
	if nd.refcou == 0 {
		nd.index |= _DEADBIT
		b.deadnum++
		b.rcdec(nd.low)
		b.rcdec(nd.high)
	}
}

// reclaim revives the dead node at position n without changing its own count:
// the child references dropped at its death are restored. Used on unique-table
// and cache hits.
func (b *DD) reclaim(n int) {
	nd := &b.nodes[n]
	if nd.index&_DEADBIT != 0 {
		nd.index &^= _DEADBIT
		b.deadnum--
		b.rcinc(nd.low)
		b.rcinc(nd.high)
	}
}

// *************************************************************************

// Ref increases the reference count on node n and returns n so that calls can
// be easily chained together. Operations already return referenced Nodes; use
// Ref only to take an extra pledge on a node.
func (b *DD) Ref(n Node) Node {
	if b.checkptr(n) != nil {
		return n
	}
	b.rcinc(*n)
	return n
}

// Deref decreases the reference count on a node without touching its
// descendants. It is meant to balance an extra Ref on a node that is known to
// stay referenced elsewhere; use RecursiveDeref to release a result.
func (b *DD) Deref(n Node) Node {
	if b.checkptr(n) != nil {
		return n
	}
	nd := &b.nodes[enode(*n)]
	if nd.refcou > 0 && nd.refcou < _MAXREFCOUNT {
		nd.refcou--
	}
	return n
}

// RecursiveDeref releases one pledge on a node. If the count reaches zero the
// node becomes dead and the references it holds on its children are dropped,
// transitively. Dead nodes stay addressable until the next garbage collection
// and are revived if their triple is requested again.
func (b *DD) RecursiveDeref(n Node) Node {
	if b.checkptr(n) != nil {
		return n
	}
	b.rcdec(*n)
	return n
}

// *************************************************************************
// private functions to manipulate the refstack; used to prevent nodes that are
// currently being built (e.g. transient nodes built during an apply) to be
// reclaimed during GC.

func (b *DD) initref() {
	b.refstack = b.refstack[:0]
}

func (b *DD) pushref(e int) int {
	b.refstack = append(b.refstack, e)
	b.rcinc(e)
	return e
}

func (b *DD) popref(a int) {
	for i := 0; i < a; i++ {
		b.rcdec(b.refstack[len(b.refstack)-1-i])
	}
	b.refstack = b.refstack[:len(b.refstack)-a]
}

// *************************************************************************

// GC explicitly starts a garbage collection of dead nodes.
func (b *DD) GC() {
	_ = b.gbc()
}

// gbc is the garbage collector. It runs from allocnode when the free list is
// empty and more than mindead nodes are dead (with GC disabled, only when the
// arena cannot grow), and from an explicit call to GC. No collection is
// triggered by the ratio of dead to live nodes. Allocated nodes that are not
// reclaimed do not move. The operation caches are invalidated wholesale, so a
// cache entry can never resolve to a freed node.
func (b *DD) gbc() error {
	if err := b.firehooks(PreGC); err != nil {
		return err
	}
	collected := b.deadnum
	b.logger.Debug("starting GC", zap.Int("dead", b.deadnum), zap.Int("free", b.freenum))
	for k := range b.subtables {
		b.sweep(&b.subtables[k])
	}
	for k := range b.zsubtables {
		b.sweep(&b.zsubtables[k])
	}
	b.deadnum = 0
	b.gcstat.history = append(b.gcstat.history, gcpoint{
		nodes:     len(b.nodes),
		freenodes: b.freenum,
		deadnodes: collected,
	})
	// we also invalidate the caches
	b.cachereset()
	b.logger.Debug("end GC", zap.Int("collected", collected), zap.Int("free", b.freenum))
	return b.firehooks(PostGC)
}

// sweep unlinks the dead nodes of one subtable and returns their slots to the
// free list. Dead nodes hold no references on their children, so freeing them
// requires no further bookkeeping.
func (b *DD) sweep(st *subtable) {
	for i, n := range st.hash {
		last := 0
		for n != 0 {
			next := b.nodes[n].next
			if b.isdead(n) {
				if last == 0 {
					st.hash[i] = next
				} else {
					b.nodes[last].next = next
				}
				b.nodes[n].index = 0
				b.nodes[n].low = -1
				b.nodes[n].next = b.freepos
				b.freepos = n
				b.freenum++
				st.keys--
			} else {
				last = n
			}
			n = next
		}
	}
}

// *************************************************************************
// RECURSIVE MARK / UNMARK

func (b *DD) markrec(n int) {
	if n <= 0 || b.ismarked(n) || (b.nodes[n].low == -1) {
		return
	}
	if b.nodes[n].index&_MAXVAR == _CONSTINDEX {
		return
	}
	b.marknode(n)
	b.markrec(enode(b.nodes[n].low))
	b.markrec(enode(b.nodes[n].high))
}

func (b *DD) unmarkall() {
	for k, v := range b.nodes {
		if k < 1 || !b.ismarked(k) || (v.low == -1) {
			continue
		}
		b.unmarknode(k)
	}
}
