// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

// Binary dump and reload of BDDs. The format is the one used by the
// cross-manager bridges: an 8-byte magic, a version, the variable count, the
// root edges, then the internal nodes in topological order (children first).
// Edges are encoded as signed varints whose low bit is the complement flag;
// value terminals emit their concrete value before their first use.

package godd

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

var dumpmagic = [8]byte{'g', 'o', 'd', 'd', 'b', 'd', 'd', '1'}

const dumpversion = 1

const (
	recTerminal = 0
	recInternal = 1
)

// Dump writes the DAGs rooted at the given nodes to w in the binary exchange
// format. Shared subgraphs are written once.
func (b *DD) Dump(w io.Writer, roots ...Node) error {
	for _, n := range roots {
		if err := b.checkptr(n); err != nil {
			return errors.Wrap(err, "invalid root in Dump")
		}
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(dumpmagic[:]); err != nil {
		return errors.Wrap(err, "writing magic")
	}
	buf := make([]byte, binary.MaxVarintLen64)
	putuv := func(v uint64) error {
		n := binary.PutUvarint(buf, v)
		_, err := bw.Write(buf[:n])
		return err
	}
	putv := func(v int64) error {
		n := binary.PutVarint(buf, v)
		_, err := bw.Write(buf[:n])
		return err
	}
	// assign ids in topological (children first) order; the one terminal has
	// the predefined id 1
	ids := map[int]uint64{bddone: 1}
	order := []int{}
	var visit func(e int)
	visit = func(e int) {
		e &^= 1
		if _, ok := ids[e]; ok {
			return
		}
		if !b.isconst(e) {
			visit(b.nodes[enode(e)].low)
			visit(b.nodes[enode(e)].high)
		}
		ids[e] = uint64(len(ids) + 1)
		order = append(order, e)
	}
	for _, n := range roots {
		visit(*n)
	}
	if err := putuv(dumpversion); err != nil {
		return errors.Wrap(err, "writing version")
	}
	if err := putuv(uint64(b.varnum)); err != nil {
		return errors.Wrap(err, "writing varnum")
	}
	if err := putuv(uint64(len(roots))); err != nil {
		return errors.Wrap(err, "writing root count")
	}
	enc := func(e int) int64 {
		return int64(ids[e&^1]<<1 | uint64(etag(e)))
	}
	for _, n := range roots {
		if err := putv(enc(*n)); err != nil {
			return errors.Wrap(err, "writing root")
		}
	}
	if err := putuv(uint64(len(order))); err != nil {
		return errors.Wrap(err, "writing node count")
	}
	for _, e := range order {
		if b.isconst(e) {
			if err := putuv(recTerminal); err != nil {
				return errors.Wrap(err, "writing record kind")
			}
			if err := binary.Write(bw, binary.LittleEndian, math.Float64bits(b.value(e))); err != nil {
				return errors.Wrap(err, "writing terminal value")
			}
			continue
		}
		if err := putuv(recInternal); err != nil {
			return errors.Wrap(err, "writing record kind")
		}
		if err := putuv(uint64(b.varof(e))); err != nil {
			return errors.Wrap(err, "writing node index")
		}
		if err := putv(enc(b.nodes[enode(e)].high)); err != nil {
			return errors.Wrap(err, "writing then edge")
		}
		if err := putv(enc(b.nodes[enode(e)].low)); err != nil {
			return errors.Wrap(err, "writing else edge")
		}
	}
	return errors.Wrap(bw.Flush(), "flushing dump")
}

// Load reads back a dump into the manager and returns the root nodes, in the
// order they were passed to Dump. Missing variables are created; the manager
// may use a different variable order than the writer.
func (b *DD) Load(r io.Reader) ([]Node, error) {
	br := bufio.NewReader(r)
	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, errors.Wrap(err, "reading magic")
	}
	if magic != dumpmagic {
		return nil, errors.New("bad magic in dump")
	}
	version, err := binary.ReadUvarint(br)
	if err != nil || version != dumpversion {
		return nil, errors.Errorf("unsupported dump version (%d)", version)
	}
	varnum, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, errors.Wrap(err, "reading varnum")
	}
	if varnum > uint64(_MAXVAR) {
		return nil, errors.Errorf("bad variable count (%d)", varnum)
	}
	if uint64(b.varnum) < varnum {
		if err := b.SetVarnum(int(varnum)); err != nil {
			return nil, errors.Wrap(b.error, "growing the manager")
		}
	}
	rootcount, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, errors.Wrap(err, "reading root count")
	}
	rootids := make([]int64, rootcount)
	for k := range rootids {
		if rootids[k], err = binary.ReadVarint(br); err != nil {
			return nil, errors.Wrap(err, "reading root")
		}
	}
	nodecount, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, errors.Wrap(err, "reading node count")
	}
	edges := map[uint64]int{1: bddone}
	b.initref()
	fail := func(err error, msg string) ([]Node, error) {
		b.popref(len(b.refstack))
		return nil, errors.Wrap(err, msg)
	}
	dec := func(v int64) (int, error) {
		id := uint64(v) >> 1
		e, ok := edges[id]
		if !ok {
			return -1, errors.Errorf("dangling edge reference (%d)", id)
		}
		return e ^ int(v&1), nil
	}
	for k := uint64(0); k < nodecount; k++ {
		kind, err := binary.ReadUvarint(br)
		if err != nil {
			return fail(err, "reading record kind")
		}
		switch kind {
		case recTerminal:
			var bits uint64
			if err := binary.Read(br, binary.LittleEndian, &bits); err != nil {
				return fail(err, "reading terminal value")
			}
			e := b.maketerminal(math.Float64frombits(bits))
			if e < 0 {
				return fail(b.error, "creating terminal")
			}
			edges[uint64(len(edges)+1)] = e
		case recInternal:
			index, err := binary.ReadUvarint(br)
			if err != nil || index >= varnum {
				return fail(err, "reading node index")
			}
			thenv, err := binary.ReadVarint(br)
			if err != nil {
				return fail(err, "reading then edge")
			}
			elsev, err := binary.ReadVarint(br)
			if err != nil {
				return fail(err, "reading else edge")
			}
			high, err := dec(thenv)
			if err != nil {
				return fail(err, "resolving then edge")
			}
			low, err := dec(elsev)
			if err != nil {
				return fail(err, "resolving else edge")
			}
			// rebuild with an ite so that a different variable order in this
			// manager stays canonical
			e := b.ite(b.varset[index][0], high, low)
			if e < 0 {
				return fail(b.error, "rebuilding node")
			}
			b.pushref(e)
			edges[uint64(len(edges)+1)] = e
		default:
			return fail(errors.Errorf("unknown record kind (%d)", kind), "reading record")
		}
	}
	res := make([]Node, rootcount)
	for k, rv := range rootids {
		e, err := dec(rv)
		if err != nil {
			return fail(err, "resolving root")
		}
		res[k] = b.retnode(e)
	}
	b.popref(len(b.refstack))
	return res, nil
}
