// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"fmt"
	"math"
	"unsafe"
)

// The computed caches memoize (operation, arguments) -> result. Entries are
// soft: a cache does not keep its result alive, any entry may be dropped at
// any time (collisions simply overwrite), and the caches are flushed wholesale
// on garbage collection and reordering. A hit on a dead result revives it
// before it is returned, so a dead or stale node is never handed back.

// Hash value modifiers for quantification
const cacheidEXIST int = 0x0
const cacheidFORALL int = 0x1
const cacheidAPPEX int = 0x3

// Hash value modifier for replace/veccompose
const cacheidREPLACE int = 0x0
const cacheidVECCOMPOSE int = 0x1

type data4n struct {
	res int
	a   int
	b   int
	c   int
}

type data4ncache struct {
	ratio  int
	hard   int // hard ceiling on the table size, 0 if none
	opHit  int // entries found in the cache
	opMiss int // entries not found in the cache
	table  []data4n
}

func (bc *data4ncache) init(size, ratio, hard int) {
	size = primeGte(size)
	bc.table = make([]data4n, size)
	bc.ratio = ratio
	bc.hard = hard
	bc.reset()
}

func (bc *data4ncache) resize(size int) {
	if bc.ratio > 0 {
		size = primeGte((size * bc.ratio) / 100)
		// the hard ceiling wins over the growth ratio
		if bc.hard > 0 && size > bc.hard {
			size = primeLte(bc.hard)
		}
		if size > len(bc.table) {
			bc.table = make([]data4n, size)
		}
	}
	bc.reset()
}

func (bc *data4ncache) reset() {
	for k := range bc.table {
		bc.table[k].a = -1
	}
}

type data3n struct {
	res int
	a   int
	c   int
}

type data3ncache struct {
	ratio  int
	hard   int
	opHit  int
	opMiss int
	table  []data3n
}

func (bc *data3ncache) init(size, ratio, hard int) {
	size = primeGte(size)
	bc.table = make([]data3n, size)
	bc.ratio = ratio
	bc.hard = hard
	bc.reset()
}

func (bc *data3ncache) resize(size int) {
	if bc.ratio > 0 {
		size = primeGte((size * bc.ratio) / 100)
		if bc.hard > 0 && size > bc.hard {
			size = primeLte(bc.hard)
		}
		if size > len(bc.table) {
			bc.table = make([]data3n, size)
		}
	}
	bc.reset()
}

func (bc *data3ncache) reset() {
	for k := range bc.table {
		bc.table[k].a = -1
	}
}

// applycache memoizes the binary operations of the three families; the op
// symbol is part of the key, and the three op spaces are disjoint.
type applycache struct {
	data4ncache
}

// itecache memoizes if-then-else triples; we keep one instance per family so
// that a BDD triple can never alias an ADD or ZDD triple.
type itecache struct {
	data4ncache
}

// quantcache memoizes quantifications; the key mixes the operand, the varset
// and the current quantification id.
type quantcache struct {
	data4ncache
	id int
}

// appexcache memoizes combined apply+quantification operations.
type appexcache struct {
	data4ncache
	op int
	id int
}

// replacecache memoizes variable replacements and vector compositions, keyed
// by the operand and the id of the replacer.
type replacecache struct {
	data3ncache
	id int
}

// misccache serves every remaining recursive operator (compose, generalized
// cofactors, clipping, bridges, ZDD unary operations...), with the operation
// tag packed in the third key.
type misccache struct {
	data4ncache
}

// Setup and shutdown

func (b *DD) cacheinit(c *configs) {
	size := 10000
	if c.cachesize != 0 {
		size = c.cachesize
	}
	if c.maxcachehard > 0 && size > c.maxcachehard {
		size = c.maxcachehard
	}
	b.applycache = &applycache{}
	b.applycache.init(size, c.cacheratio, c.maxcachehard)
	b.itecache = &itecache{}
	b.itecache.init(size, c.cacheratio, c.maxcachehard)
	b.additecache = &itecache{}
	b.additecache.init(size, c.cacheratio, c.maxcachehard)
	b.zitecache = &itecache{}
	b.zitecache.init(size, c.cacheratio, c.maxcachehard)
	b.quantcache = &quantcache{}
	b.quantcache.init(size, c.cacheratio, c.maxcachehard)
	b.appexcache = &appexcache{}
	b.appexcache.init(size, c.cacheratio, c.maxcachehard)
	b.replacecache = &replacecache{}
	b.replacecache.init(size, c.cacheratio, c.maxcachehard)
	b.misccache = &misccache{}
	b.misccache.init(size, c.cacheratio, c.maxcachehard)
}

func (b *DD) cachereset() {
	b.applycache.reset()
	b.itecache.reset()
	b.additecache.reset()
	b.zitecache.reset()
	b.quantcache.reset()
	b.appexcache.reset()
	b.replacecache.reset()
	b.misccache.reset()
}

func (b *DD) cacheresize(nodesize int) {
	b.applycache.resize(nodesize)
	b.itecache.resize(nodesize)
	b.additecache.resize(nodesize)
	b.zitecache.resize(nodesize)
	b.quantcache.resize(nodesize)
	b.appexcache.resize(nodesize)
	b.replacecache.resize(nodesize)
	b.misccache.resize(nodesize)
}

// ************************************************************

// revive makes sure a cache hit never returns a dead node.
func (b *DD) revive(res int) int {
	b.reclaim(enode(res))
	return res
}

// The hash function for the apply cache is #(left, right, op).

func (b *DD) matchapply(op, left, right int) int {
	bc := b.applycache
	entry := bc.table[_TRIPLE(left, right, op, len(bc.table))]
	if entry.a == left && entry.b == right && entry.c == op {
		if _DEBUG {
			bc.opHit++
		}
		return b.revive(entry.res)
	}
	if _DEBUG {
		bc.opMiss++
	}
	return -1
}

func (b *DD) setapply(op, left, right, res int) int {
	if res < 0 {
		return res
	}
	bc := b.applycache
	bc.table[_TRIPLE(left, right, op, len(bc.table))] = data4n{a: left, b: right, c: op, res: res}
	return res
}

// The hash function for ITE is #(f,g,h), so we need to cache 4 node positions
// per entry.

func (b *DD) matchite(bc *itecache, f, g, h int) int {
	entry := bc.table[_TRIPLE(f, g, h, len(bc.table))]
	if entry.a == f && entry.b == g && entry.c == h {
		if _DEBUG {
			bc.opHit++
		}
		return b.revive(entry.res)
	}
	if _DEBUG {
		bc.opMiss++
	}
	return -1
}

func (b *DD) setite(bc *itecache, f, g, h, res int) int {
	if res < 0 {
		return res
	}
	bc.table[_TRIPLE(f, g, h, len(bc.table))] = data4n{a: f, b: g, c: h, res: res}
	return res
}

// The hash function for quantification is #(n, varset, quantid).

func (b *DD) matchquant(n, varset int) int {
	bc := b.quantcache
	entry := bc.table[_PAIR(n, varset, len(bc.table))]
	if entry.a == n && entry.b == varset && entry.c == bc.id {
		if _DEBUG {
			bc.opHit++
		}
		return b.revive(entry.res)
	}
	if _DEBUG {
		bc.opMiss++
	}
	return -1
}

func (b *DD) setquant(n, varset, res int) int {
	if res < 0 {
		return res
	}
	bc := b.quantcache
	bc.table[_PAIR(n, varset, len(bc.table))] = data4n{a: n, b: varset, c: bc.id, res: res}
	return res
}

// The hash function for AppEx is #(left, right, id) where the id mixes the
// varset and the operator, so we can use the same cache for several operators.

func (b *DD) matchappex(left, right int) int {
	bc := b.appexcache
	entry := bc.table[_TRIPLE(left, right, bc.id, len(bc.table))]
	if entry.a == left && entry.b == right && entry.c == bc.id {
		if _DEBUG {
			bc.opHit++
		}
		return b.revive(entry.res)
	}
	if _DEBUG {
		bc.opMiss++
	}
	return -1
}

func (b *DD) setappex(left, right, res int) int {
	if res < 0 {
		return res
	}
	bc := b.appexcache
	bc.table[_TRIPLE(left, right, bc.id, len(bc.table))] = data4n{a: left, b: right, c: bc.id, res: res}
	return res
}

// The hash function for operation Replace(n) is simply n.

func (b *DD) matchreplace(n int) int {
	bc := b.replacecache
	entry := bc.table[n%len(bc.table)]
	if entry.a == n && entry.c == bc.id {
		if _DEBUG {
			bc.opHit++
		}
		return b.revive(entry.res)
	}
	if _DEBUG {
		bc.opMiss++
	}
	return -1
}

func (b *DD) setreplace(n, res int) int {
	if res < 0 {
		return res
	}
	bc := b.replacecache
	bc.table[n%len(bc.table)] = data3n{a: n, c: bc.id, res: res}
	return res
}

// The misc cache is keyed like the apply cache, with an operation tag
// (possibly packing a small parameter) in place of the operator.

func (b *DD) matchmisc(a, c, tag int) int {
	bc := b.misccache
	entry := bc.table[_TRIPLE(a, c, tag, len(bc.table))]
	if entry.a == a && entry.b == c && entry.c == tag {
		if _DEBUG {
			bc.opHit++
		}
		return b.revive(entry.res)
	}
	if _DEBUG {
		bc.opMiss++
	}
	return -1
}

func (b *DD) setmisc(a, c, tag, res int) int {
	if res < 0 {
		return res
	}
	bc := b.misccache
	bc.table[_TRIPLE(a, c, tag, len(bc.table))] = data4n{a: a, b: c, c: tag, res: res}
	return res
}

// ************************************************************

// quantset2cache takes a variable set, similar to the ones generated with
// Makeset, and sets the variables in the quantification cache. We reject, with
// InvalidCube, any varset that is not a conjunction of positive literals.
func (b *DD) quantset2cache(n int) error {
	if n < 2 {
		b.seterrcode(InvalidCube, "illegal variable (%d) in varset to cache", n)
		return b.error
	}
	b.quantsetID++
	if b.quantsetID == math.MaxInt32 {
		b.quantset = make([]int32, b.varnum)
		b.quantsetID = 1
	}
	b.quantlast = 0
	for i := n; i != bddone; i = b.high(i) {
		if b.isconst(i) || b.low(i) != bddzero {
			b.seterrcode(InvalidCube, "varset is not a positive cube")
			return b.error
		}
		b.quantset[b.level(i)] = b.quantsetID
		if b.level(i) > b.quantlast {
			b.quantlast = b.level(i)
		}
	}
	return nil
}

func cachestats(name string, hit, miss, size int, entry uintptr) string {
	total := hit + miss
	if total == 0 {
		total = 1
	}
	return fmt.Sprintf("== %-8s cache %d (%s)\n Operator Hits: %d (%.1f%%)\n Operator Miss: %d\n",
		name, size, humanSize(size, entry), hit, (float64(hit)*100)/float64(total), miss)
}

func (b *DD) cacheStats() string {
	res := cachestats("Apply", b.applycache.opHit, b.applycache.opMiss, len(b.applycache.table), unsafe.Sizeof(data4n{}))
	res += cachestats("Ite", b.itecache.opHit, b.itecache.opMiss, len(b.itecache.table), unsafe.Sizeof(data4n{}))
	res += cachestats("Quant", b.quantcache.opHit, b.quantcache.opMiss, len(b.quantcache.table), unsafe.Sizeof(data4n{}))
	res += cachestats("AppEx", b.appexcache.opHit, b.appexcache.opMiss, len(b.appexcache.table), unsafe.Sizeof(data4n{}))
	res += cachestats("Replace", b.replacecache.opHit, b.replacecache.opMiss, len(b.replacecache.table), unsafe.Sizeof(data3n{}))
	res += cachestats("Misc", b.misccache.opHit, b.misccache.opMiss, len(b.misccache.table), unsafe.Sizeof(data4n{}))
	return res
}
