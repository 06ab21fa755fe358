// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"unsafe"
)

func humanSize(count int, size uintptr) string {
	bytes := float64(count) * float64(size)
	switch {
	case bytes > 1<<30:
		return fmt.Sprintf("%.2f GB", bytes/(1<<30))
	case bytes > 1<<20:
		return fmt.Sprintf("%.2f MB", bytes/(1<<20))
	case bytes > 1<<10:
		return fmt.Sprintf("%.2f KB", bytes/(1<<10))
	}
	return fmt.Sprintf("%.0f B", bytes)
}

// Stats returns information about the DD: the size of the arena, the number
// of live, dead and free nodes, and the garbage-collection history. With the
// debug build tag it also reports the unique-table and cache statistics.
func (b *DD) Stats() string {
	res := fmt.Sprintf("Varnum:     %d\n", b.varnum)
	if b.zvarnum > 0 {
		res += fmt.Sprintf("ZDD vars:   %d\n", b.zvarnum)
	}
	res += fmt.Sprintf("Allocated:  %d  (%s)\n", len(b.nodes), humanSize(len(b.nodes), unsafe.Sizeof(ddnode{})))
	res += fmt.Sprintf("Produced:   %d\n", b.produced)
	r := (float64(b.freenum) / float64(len(b.nodes))) * 100
	res += fmt.Sprintf("Free:       %d  (%.3g %%)\n", b.freenum, r)
	res += fmt.Sprintf("Used:       %d  (%.3g %%)\n", len(b.nodes)-b.freenum, (100.0 - r))
	res += fmt.Sprintf("Dead:       %d\n", b.deadnum)
	res += "==============\n"
	res += fmt.Sprintf("# of GC:    %d\n", len(b.gcstat.history))
	for k, g := range b.gcstat.history {
		res += fmt.Sprintf("  #%-3d      nodes: %d, free: %d, collected: %d\n", k, g.nodes, g.freenodes, g.deadnodes)
	}
	if _DEBUG {
		res += "==============\n"
		res += fmt.Sprintf("Unique Access:  %d\n", b.uniqueAccess)
		res += fmt.Sprintf("Unique Chain:   %d\n", b.uniqueChain)
		res += fmt.Sprintf("Unique Hit:     %d\n", b.uniqueHit)
		res += fmt.Sprintf("Unique Miss:    %d\n", b.uniqueMiss)
		res += "==============\n"
		res += b.cacheStats()
	}
	return res
}

// ******************************************************************************************************

// Print outputs a textual representation of the DAGs rooted at the nodes in
// n, or of the whole manager if n is absent, to the standard output.
func (b *DD) Print(n ...Node) {
	b.print(os.Stdout, n...)
}

// Fprint outputs a textual representation of the DAGs rooted at the nodes in
// n to w.
func (b *DD) Fprint(w io.Writer, n ...Node) {
	b.print(w, n...)
}

func (b *DD) print(w io.Writer, n ...Node) {
	if mesg := b.Error(); mesg != "" {
		fmt.Fprintf(w, "Error: %s\n", mesg)
		return
	}
	if len(n) == 1 && n[0] != nil {
		if *n[0] == bddzero {
			fmt.Fprintln(w, "False")
			return
		}
		if *n[0] == bddone {
			fmt.Fprintln(w, "True")
			return
		}
	}
	// we build a slice of nodes sorted by ids
	nodes := make([][4]int, 0)
	err := b.Allnodes(func(id, level, low, high int) error {
		i := sort.Search(len(nodes), func(i int) bool {
			return nodes[i][0] >= id
		})
		nodes = append(nodes, [4]int{})
		copy(nodes[i+1:], nodes[i:])
		nodes[i] = [4]int{id, level, low, high}
		return nil
	}, n...)
	if err != nil {
		fmt.Fprintln(w, err.Error())
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 0, ' ', 0)
	for _, nd := range nodes {
		fmt.Fprintf(tw, "%d\t[%d\t] ? \t%s\t : %s\n", nd[0], nd[1], edgestring(nd[3]), edgestring(nd[2]))
	}
	tw.Flush()
}

func edgestring(e int) string {
	if e == bddone {
		return "True"
	}
	if e == bddzero {
		return "False"
	}
	if etag(e) == 1 {
		return fmt.Sprintf("!%d", enode(e))
	}
	return fmt.Sprintf("%d", enode(e))
}

// ******************************************************************************************************

// PrintDot prints a graph-like description of the DAGs rooted at the nodes
// in n using the DOT format; or the whole manager if n is missing. Dotted
// arcs are else branches; a dot on the arc marks a complemented edge.
func (b *DD) PrintDot(filename string, n ...Node) error {
	var out *os.File
	var err error
	if filename == "-" {
		out = os.Stdout
	} else {
		out, err = os.Create(filename)
		if err != nil {
			return err
		}
		defer out.Close()
	}
	w := bufio.NewWriter(out)
	if mesg := b.Error(); mesg != "" {
		fmt.Fprintf(w, "Error: %s\n", mesg)
		w.Flush()
		return fmt.Errorf(mesg)
	}
	fmt.Fprintln(w, "digraph G {")
	fmt.Fprintln(w, "0 [shape=box, label=\"1\", style=filled, height=0.3, width=0.3];")
	_ = b.Allnodes(func(id, level, low, high int) error {
		fmt.Fprintf(w, "%d %s\n", id, dotlabel(id, level))
		fmt.Fprintf(w, "%d -> %d [style=dotted%s];\n", id, enode(low), dotdecor(low))
		fmt.Fprintf(w, "%d -> %d [style=filled%s];\n", id, enode(high), dotdecor(high))
		return nil
	}, n...)
	fmt.Fprintln(w, "}")
	w.Flush()
	return nil
}

func dotdecor(e int) string {
	if etag(e) == 1 {
		return ", arrowhead=dot"
	}
	return ""
}

func dotlabel(a int, b int) string {
	return fmt.Sprintf(`[label=<
	<FONT POINT-SIZE="20">%d</FONT>
	<FONT POINT-SIZE="10">[%d]</FONT>
>];`, b, a)
}
