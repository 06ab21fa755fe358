// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"fmt"
	"math"
)

var _REPLACEID = 1

// Replacer is the type of association lists used to replace variables in a DD
// node. It maps variable indexes to variable indexes.
type Replacer interface {
	Replace(int32) (int32, bool)
	Id() int
}

type replacer struct {
	id    int     // unique identifier used for caching intermediate results
	image []int32 // map the index of old variables to the index of new variables
	last  int32   // last level occupied by a replaced variable, to speed up computations
}

func (r *replacer) String() string {
	res := fmt.Sprintf("replacer(last: %d)[", r.last)
	first := true
	for k, v := range r.image {
		if k != int(v) {
			if !first {
				res += ", "
			}
			first = false
			res += fmt.Sprintf("%d<-%d", k, v)
		}
	}
	return res + "]"
}

func (r *replacer) Replace(v int32) (int32, bool) {
	if int(v) >= len(r.image) {
		return v, false
	}
	return r.image[v], r.image[v] != v
}

func (r *replacer) Id() int {
	return r.id
}

// NewReplacer returns a Replacer for substituting variable oldvars[k] with
// newvars[k]. We return an error if the two slices do not have the same length
// or if we find the same index twice in either of them. All values must be in
// [0..Varnum).
func (b *DD) NewReplacer(oldvars []int, newvars []int) (Replacer, error) {
	res := &replacer{}
	if len(oldvars) != len(newvars) {
		return nil, fmt.Errorf("unmatched length of slices")
	}
	if _REPLACEID == (math.MaxInt32 >> 2) {
		return nil, fmt.Errorf("too many replacers created")
	}
	res.id = (_REPLACEID << 2) | cacheidREPLACE
	_REPLACEID++
	varnum := b.Varnum()
	support := make([]bool, varnum)
	res.image = make([]int32, varnum)
	for k := range res.image {
		res.image[k] = int32(k)
	}
	for k, v := range oldvars {
		if v < 0 || v >= varnum {
			return nil, fmt.Errorf("invalid variable in oldvars (%d)", v)
		}
		if support[v] {
			return nil, fmt.Errorf("duplicate variable (%d) in oldvars", v)
		}
		if newvars[k] < 0 || newvars[k] >= varnum {
			return nil, fmt.Errorf("invalid variable in newvars (%d)", newvars[k])
		}
		support[v] = true
		res.image[v] = int32(newvars[k])
		if b.var2level[v] > res.last {
			res.last = b.var2level[v]
		}
	}
	seen := make([]bool, varnum)
	for _, v := range newvars {
		if int(res.image[v]) != v {
			return nil, fmt.Errorf("variable in newvars (%d) also occurs in oldvars", v)
		}
		if seen[v] {
			return nil, fmt.Errorf("duplicate variable (%d) in newvars", v)
		}
		seen[v] = true
	}
	return res, nil
}

// Replace takes a Replacer and computes the result of n after replacing old
// variables with new ones. See type Replacer.
func (b *DD) Replace(n Node, r Replacer) Node {
	b.prologue()
	if b.checkptr(n) != nil {
		return b.seterror("wrong operand in call to Replace")
	}
	b.initref()
	b.pushref(*n)
	b.replacecache.id = r.Id()
	res := b.replace(*n, r)
	b.popref(1)
	return b.retnode(res)
}

func (b *DD) replace(n int, r Replacer) int {
	if n < 0 {
		return -1
	}
	if b.isconst(n) || b.level(n) > replacerlast(r) {
		return n
	}
	if res := b.matchreplace(n); res >= 0 {
		return res
	}
	low := b.pushref(b.replace(b.low(n), r))
	high := b.pushref(b.replace(b.high(n), r))
	image, _ := r.Replace(b.varof(n))
	res := b.correctify(b.var2level[image], image, low, high)
	b.popref(2)
	return b.setreplace(n, res)
}

func replacerlast(r Replacer) int32 {
	if rr, ok := r.(*replacer); ok {
		return rr.last
	}
	return _MAXVAR
}

// correctify rebuilds the node (v, low, high) when the level of v may sit
// below the top levels of low or high after a replacement.
func (b *DD) correctify(level int32, v int32, low, high int) int {
	if low < 0 || high < 0 {
		return -1
	}
	if (level < b.level(low)) && (level < b.level(high)) {
		return b.makenode(v, low, high)
	}
	if (level == b.level(low)) || (level == b.level(high)) {
		b.seterror("replacing to variable %d would break the variable order", v)
		return -1
	}
	if b.level(low) == b.level(high) {
		left := b.pushref(b.correctify(level, v, b.low(low), b.low(high)))
		right := b.pushref(b.correctify(level, v, b.high(low), b.high(high)))
		res := b.makenode(b.varof(low), left, right)
		b.popref(2)
		return res
	}
	if b.level(low) < b.level(high) {
		left := b.pushref(b.correctify(level, v, b.low(low), high))
		right := b.pushref(b.correctify(level, v, b.high(low), high))
		res := b.makenode(b.varof(low), left, right)
		b.popref(2)
		return res
	}
	left := b.pushref(b.correctify(level, v, low, b.low(high)))
	right := b.pushref(b.correctify(level, v, low, b.high(high)))
	res := b.makenode(b.varof(high), left, right)
	b.popref(2)
	return res
}

// ************************************************************

// VecCompose simultaneously substitutes vector[i] for the i'th variable in f,
// for every entry of vector. A nil entry leaves the variable unchanged. Unlike
// a sequence of Compose calls, the substitution is simultaneous: the functions
// in vector are not themselves rewritten.
func (b *DD) VecCompose(f Node, vector []Node) Node {
	b.prologue()
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to VecCompose")
	}
	if len(vector) > int(b.varnum) {
		return b.seterrcode(InvalidInput, "vector too long (%d) in VecCompose", len(vector))
	}
	vec := make([]int, b.varnum)
	last := int32(-1)
	for k := range vec {
		vec[k] = b.varset[k][0]
		if k < len(vector) && vector[k] != nil {
			if b.checkptr(vector[k]) != nil {
				return b.seterror("wrong vector entry (%d) in VecCompose", k)
			}
			vec[k] = *vector[k]
			if vec[k] != b.varset[k][0] && b.var2level[k] > last {
				last = b.var2level[k]
			}
		}
	}
	if _REPLACEID == (math.MaxInt32 >> 2) {
		return b.seterror("too many compositions")
	}
	id := (_REPLACEID << 2) | cacheidVECCOMPOSE
	_REPLACEID++
	b.replacecache.id = id
	b.initref()
	b.pushref(*f)
	for _, e := range vec {
		b.pushref(e)
	}
	res := b.veccompose(*f, vec, last)
	b.popref(1 + len(vec))
	return b.retnode(res)
}

func (b *DD) veccompose(f int, vec []int, last int32) int {
	if f < 0 {
		return -1
	}
	if b.isconst(f) || b.level(f) > last {
		return f
	}
	if res := b.matchreplace(f); res >= 0 {
		return res
	}
	low := b.pushref(b.veccompose(b.low(f), vec, last))
	high := b.pushref(b.veccompose(b.high(f), vec, last))
	res := b.ite(vec[b.varof(f)], high, low)
	b.popref(2)
	return b.setreplace(f, res)
}
