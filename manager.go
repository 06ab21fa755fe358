// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"math"
	"math/rand"
	"time"
	"unsafe"

	"go.uber.org/zap"
)

// Node is a reference to an element of a DD. It represents the atomic unit of
// interactions and computations within a DD. Operations return Nodes that are
// already referenced; release them with RecursiveDeref when they are no longer
// needed.
type Node *int

var oneedge int = bddone
var zeroedge int = bddzero

// bddtrue and bddfalse are the (shared) Nodes for the two Boolean constants.
// The edges they hold are the same in every manager.
var bddtrue Node = &oneedge
var bddfalse Node = &zeroedge

// DD is the manager for a set of decision diagrams over a common universe of
// variables. BDDs, ADDs and ZDDs created by the same manager share one node
// arena, one set of operation caches and one garbage collector. A DD is not
// safe for concurrent use; every call on the same manager must be serialized
// externally. Distinct managers are fully isolated.
type DD struct {
	nodes      []ddnode        // all the nodes; the terminals one and zero are always at positions 0 and 1
	subtables  []subtable      // unique tables for the BDD/ADD universe, one per variable index
	zsubtables []subtable      // unique tables for the ZDD universe
	constants  map[float64]int // interning table for the terminal nodes, keyed by value
	varnum     int32           // number of BDD variables
	zvarnum    int32           // number of ZDD variables
	varset     [][2]int        // edges of the positive and negative literals of each BDD variable
	zvarset    []int           // edges of the singleton ZDD of each ZDD variable
	var2level  []int32         // current position of each BDD variable
	level2var  []int32         // inverse of var2level
	zvar2level []int32         // same maps for the ZDD universe (fixed order)
	zlevel2var []int32
	freepos    int // first free slot in the arena, 0 if none
	freenum    int // number of free slots
	deadnum    int // number of dead nodes awaiting collection
	produced   int // total number of nodes ever produced
	refstack   []int
	error      error
	errcode    ErrorCode

	azero     int // edge of the arithmetic zero terminal
	aplusinf  int // edge of the plus-infinity terminal
	aminusinf int // edge of the minus-infinity terminal
	backgrnd  int // edge of the background value, arithmetic zero by default

	applycache   *applycache
	itecache     *itecache
	additecache  *itecache
	zitecache    *itecache
	quantcache   *quantcache
	appexcache   *appexcache
	replacecache *replacecache
	misccache    *misccache

	quantset   []int32 // current variable set for quantifications, by level
	quantsetID int32
	quantlast  int32
	quantop    Operator

	logger *zap.Logger
	rng    *rand.Rand

	hooks   [4][]registeredHook
	hookids int

	reordering     bool // true while the reordering engine is running
	reorderpending bool // set by the allocator, consumed at the next quiescent point
	autodyn        bool
	autodynmethod  ReorderMethod
	reordertime    time.Duration
	tree           *TreeNode

	timelimit  time.Duration
	starttime  time.Time
	timedoutf  bool
	timecheck  int32
	timeouthdl func(*DD)

	uniqueAccess int // accesses to the unique node table
	uniqueChain  int // iterations through the chains of the unique node table
	uniqueHit    int // entries actually found in the unique node table
	uniqueMiss   int // entries not found in the unique node table

	gcstat
	configs
}

// subtable is the unique table for one variable: a bucket array over the
// intrusive next chains of the arena. Bucket value 0 marks an empty chain;
// node 0 is a terminal and never appears in a chain.
type subtable struct {
	hash []int
	keys int
}

// New returns a new DD manager with varnum Boolean variables. The initial
// number of nodes is not critical since the arena is resized whenever there
// are too few nodes left after a garbage collection, but it does have some
// impact on the efficiency of the operations. It is possible to set optional
// (configuration) parameters, such as the size of the initial node arena
// (Nodesize) or the size of the caches (Cachesize), using configs functions.
// We return a nil value if there is an error while creating the DD.
func New(varnum int, options ...func(*configs)) (*DD, error) {
	b := &DD{}
	b.logger = zap.NewNop()
	if (varnum < 1) || (int32(varnum) >= _MAXVAR) {
		b.seterrcode(InvalidInput, "bad number of variable (%d)", varnum)
		return nil, b.error
	}
	config := makeconfigs(varnum)
	for _, f := range options {
		f(config)
	}
	b.configs = *config
	b.varnum = int32(varnum)
	b.rng = rand.New(rand.NewSource(config.randseed))
	b.refstack = make([]int, 0, 2*varnum+4)
	b.initref()

	nodesize := primeGte(config.nodesize)
	b.nodes = make([]ddnode, nodesize)
	for k := range b.nodes {
		b.nodes[k] = ddnode{refcou: 0, index: 0, low: -1, high: 0, next: k + 1}
	}
	b.nodes[nodesize-1].next = 0
	// The terminal one is hand-built at position 0 so that the edges 0 and 1
	// denote the two Boolean constants in every manager.
	b.nodes[0] = ddnode{
		index:  _CONSTINDEX,
		refcou: _MAXREFCOUNT,
		low:    bddone,
		high:   bddone,
		value:  1.0,
	}
	b.freepos = 1
	b.freenum = nodesize - 1
	b.constants = map[float64]int{1.0: 0}
	b.gcstat.history = []gcpoint{}

	b.azero = b.maketerminal(0.0)
	b.aplusinf = b.maketerminal(math.Inf(1))
	b.aminusinf = b.maketerminal(math.Inf(-1))
	b.backgrnd = b.azero

	b.var2level = make([]int32, varnum)
	b.level2var = make([]int32, varnum)
	b.subtables = make([]subtable, varnum)
	b.varset = make([][2]int, varnum)
	for k := 0; k < varnum; k++ {
		b.var2level[k] = int32(k)
		b.level2var[k] = int32(k)
		b.subtables[k].hash = make([]int, primeGte(config.uniquesize))
		v := b.makenode(int32(k), bddzero, bddone)
		if v < 0 {
			b.seterror("cannot allocate variable %d in New", k)
			return nil, b.error
		}
		b.nodes[enode(v)].refcou = _MAXREFCOUNT
		b.varset[k] = [2]int{v, v ^ 1}
	}
	b.cacheinit(config)
	b.quantset = make([]int32, varnum)
	b.quantsetID = 0
	if config.zvarnum > 0 {
		if err := b.zddvarnum(config.zvarnum); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Close releases the memory held by the manager. The manager must not be used
// afterwards. Outstanding Nodes become invalid.
func (b *DD) Close() {
	b.nodes = nil
	b.subtables = nil
	b.zsubtables = nil
	b.constants = nil
	b.applycache = nil
	b.itecache = nil
	b.additecache = nil
	b.zitecache = nil
	b.quantcache = nil
	b.appexcache = nil
	b.replacecache = nil
	b.misccache = nil
}

// ************************************************************

// maketerminal returns the edge of the unique terminal node carrying value v,
// creating and pinning it on the first request. Terminals are never collected.
func (b *DD) maketerminal(v float64) int {
	if v == 0 {
		v = 0 // normalize -0.0
	}
	if n, ok := b.constants[v]; ok {
		return mkedge(n, 0)
	}
	res := b.allocnode()
	if res < 0 {
		return -1
	}
	b.nodes[res] = ddnode{
		index:  _CONSTINDEX,
		refcou: _MAXREFCOUNT,
		low:    mkedge(res, 0),
		high:   mkedge(res, 0),
		value:  v,
	}
	b.constants[v] = res
	return mkedge(res, 0)
}

// uniquenode searches subtable st for an (index, low, high) triple, allocating
// and chaining a new node on a miss. It returns a node position, or -1 on
// failure. A found node that was dead is revived.
func (b *DD) uniquenode(st *subtable, index int32, low, high int) int {
	if _DEBUG {
		b.uniqueAccess++
	}
	res := st.hash[_PAIR(low, high, len(st.hash))]
	for res != 0 {
		nd := &b.nodes[res]
		if nd.low == low && nd.high == high {
			if _DEBUG {
				b.uniqueHit++
			}
			b.reclaim(res)
			return res
		}
		res = nd.next
		if _DEBUG {
			b.uniqueChain++
		}
	}
	if _DEBUG {
		b.uniqueMiss++
	}
	res = b.allocnode()
	if res < 0 {
		return -1
	}
	nd := &b.nodes[res]
	nd.index = index
	nd.refcou = 0
	nd.low = low
	nd.high = high
	nd.value = 0
	b.rcinc(low)
	b.rcinc(high)
	st.keys++
	if st.keys > _CHAINQUALITY*len(st.hash) {
		b.subtableresize(st)
	}
	pos := _PAIR(low, high, len(st.hash))
	nd.next = st.hash[pos]
	st.hash[pos] = res
	return res
}

// makenode is the canonicalization request for the BDD universe: it returns
// the unique edge denoting (if index then high else low), enforcing the three
// reduction rules: equal children collapse, hash-consing, and an
// uncomplemented then edge (a complement on the then child is pushed onto the
// returned edge).
func (b *DD) makenode(index int32, low, high int) int {
	if low < 0 || high < 0 {
		return -1
	}
	if low == high {
		return low
	}
	neg := etag(high)
	if neg != 0 {
		low ^= 1
		high ^= 1
	}
	res := b.uniquenode(&b.subtables[index], index, low, high)
	if res < 0 {
		return -1
	}
	return mkedge(res, neg)
}

// addmakenode is the canonicalization request for the ADD universe. ADD edges
// are never complemented, so only the equal-children rule applies.
func (b *DD) addmakenode(index int32, low, high int) int {
	if low < 0 || high < 0 {
		return -1
	}
	if low == high {
		return low
	}
	res := b.uniquenode(&b.subtables[index], index, low, high)
	if res < 0 {
		return -1
	}
	return mkedge(res, 0)
}

// zmakenode is the canonicalization request for the ZDD universe, with the
// zero-suppression rule: a node whose then child is the empty set reduces to
// its else child.
func (b *DD) zmakenode(index int32, low, high int) int {
	if low < 0 || high < 0 {
		return -1
	}
	if high == b.azero {
		return low
	}
	res := b.uniquenode(&b.zsubtables[index], index, low, high)
	if res < 0 {
		return -1
	}
	return mkedge(res, 0)
}

// ************************************************************

// allocnode draws a slot from the free list. When the free list is empty it
// garbage collects and, as a last resort, resizes the arena. It returns -1,
// with the manager error set, when every recourse is exhausted; the failure
// unwinds through every recursive operator.
func (b *DD) allocnode() int {
	if b.timedout() {
		return -1
	}
	if b.freepos == 0 {
		// We garbage collect unused nodes to try and find spare space, unless
		// the reordering engine is running (it pre-reserves its allocations).
		if b.gcenabled && !b.reordering && b.deadnum > b.mindead {
			if err := b.gbc(); err != nil {
				return -1
			}
		}
		// We also test if we are under the threshold for resizing.
		if b.freepos == 0 || (b.freenum*100)/len(b.nodes) <= b.minfreenodes {
			if err := b.noderesize(); err != nil && b.freepos == 0 {
				// with GC disabled, collecting is the last resort
				if !b.gcenabled && !b.reordering && b.deadnum > 0 {
					if gerr := b.gbc(); gerr != nil {
						return -1
					}
				}
				if b.freepos == 0 {
					b.seterrcode(MemoryOut, "cannot resize DD (%d nodes): %s", len(b.nodes), err)
					return -1
				}
			}
		}
		if b.freepos == 0 {
			b.seterrcode(MemoryOut, "no free node after GC and resize")
			return -1
		}
	}
	if b.maxlive > 0 && !b.reordering && b.livenodes() >= b.maxlive {
		b.seterrcode(TooManyNodes, "live node ceiling reached (%d)", b.maxlive)
		return -1
	}
	res := b.freepos
	b.freepos = b.nodes[res].next
	b.freenum--
	b.produced++
	if b.autodyn && !b.reordering && b.livenodes() > b.nextreorder {
		b.reorderpending = true
	}
	return res
}

// livenodes returns the number of nodes that are allocated and not dead.
func (b *DD) livenodes() int {
	return len(b.nodes) - b.freenum - b.deadnum
}

// Size returns the total number of slots allocated in the arena.
func (b *DD) Size() int {
	return len(b.nodes)
}

// noderesize grows the node arena, doubling its size within the limits set by
// Maxnodeincrease, Maxnodesize and the memory budget. The unique subtables are
// unaffected: their chains are intrusive and their buckets are sized
// independently.
func (b *DD) noderesize() error {
	oldsize := len(b.nodes)
	if (b.maxnodesize > 0) && (oldsize >= b.maxnodesize) {
		return errMemory
	}
	nodesize := oldsize
	if oldsize > (math.MaxInt32 >> 1) {
		nodesize = math.MaxInt32 - 1
	} else {
		nodesize = nodesize << 1
	}
	if b.maxnodeincrease > 0 && nodesize > (oldsize+b.maxnodeincrease) {
		nodesize = oldsize + b.maxnodeincrease
	}
	if (b.maxnodesize > 0) && (nodesize > b.maxnodesize) {
		nodesize = b.maxnodesize
	}
	if b.maxmemory > 0 {
		budget := int(b.maxmemory / int64(unsafe.Sizeof(ddnode{})))
		if nodesize > budget {
			nodesize = budget
		}
	}
	nodesize = primeLte(nodesize)
	if nodesize <= oldsize {
		return errMemory
	}
	b.logger.Debug("resizing node arena", zap.Int("from", oldsize), zap.Int("to", nodesize))
	tmp := b.nodes
	b.nodes = make([]ddnode, nodesize)
	copy(b.nodes, tmp)
	for n := oldsize; n < nodesize; n++ {
		b.nodes[n].refcou = 0
		b.nodes[n].index = 0
		b.nodes[n].low = -1
		b.nodes[n].next = n + 1
	}
	b.nodes[nodesize-1].next = b.freepos
	b.freepos = oldsize
	b.freenum += nodesize - oldsize
	b.cacheresize(nodesize)
	return nil
}

// subtableresize doubles the bucket array of one unique subtable and rehashes
// its chains. Dead entries are kept: they may still be revived.
func (b *DD) subtableresize(st *subtable) {
	old := st.hash
	st.hash = make([]int, primeGte(2*len(old)))
	for _, n := range old {
		for n != 0 {
			next := b.nodes[n].next
			pos := _PAIR(b.nodes[n].low, b.nodes[n].high, len(st.hash))
			b.nodes[n].next = st.hash[pos]
			st.hash[pos] = n
			n = next
		}
	}
}

// ************************************************************

// retnode references a result edge and wraps it for external use. A negative
// edge (the failure sentinel) becomes a nil Node.
func (b *DD) retnode(e int) Node {
	if e < 0 {
		return nil
	}
	if e == bddone {
		return bddtrue
	}
	if e == bddzero {
		return bddfalse
	}
	x := e
	b.rcinc(e)
	return &x
}

// checkptr checks that a Node is a valid reference into this manager.
func (b *DD) checkptr(n Node) error {
	if n == nil {
		return errMemory
	}
	e := *n
	if e < 0 || enode(e) >= len(b.nodes) {
		return errMemory
	}
	if b.nodes[enode(e)].low == -1 {
		return errMemory
	}
	return nil
}

// prologue runs the deferred automatic reordering, if one is pending, before a
// new operation starts. Operators never run while the reordering engine does.
func (b *DD) prologue() {
	if b.reorderpending && !b.reordering {
		b.reorderpending = false
		b.nextreorder *= b.reordercycle
		_ = b.ReduceHeap(b.autodynmethod, 0)
	}
}

// timedout polls the monotonic clock against the configured deadline. The
// clock is only read once every _TIMEPOLL calls to keep the overhead low.
func (b *DD) timedout() bool {
	if b.timelimit == 0 {
		return false
	}
	if b.timedoutf {
		return true
	}
	b.timecheck--
	if b.timecheck > 0 {
		return false
	}
	b.timecheck = _TIMEPOLL
	if time.Since(b.starttime) > b.timelimit {
		b.timedoutf = true
		if b.timeouthdl != nil {
			b.timeouthdl(b)
		}
		b.seterrcode(TimeoutExpired, "time limit of %s expired", b.timelimit)
		return true
	}
	return false
}
