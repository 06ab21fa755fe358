// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

/*
Package godd implements decision diagrams, a family of data structures used to
efficiently represent and manipulate pseudo-Boolean functions. Three related
function classes share one engine:

  - BDD: Boolean functions, stored with complement edges (the low bit of an
    edge negates the function it denotes), so that negation is a constant-time
    operation;
  - ADD: arithmetic (algebraic) decision diagrams, mapping Boolean vectors to
    real values carried by terminal nodes;
  - ZDD: zero-suppressed diagrams, tuned for families of sparse sets.

# Basics

A manager (type DD) holds a fixed, growable universe of variables declared
when it is initialized with New. Each variable has an immutable index and a
level, its current position in the global order; dynamic reordering
(ReduceHeap) changes levels but never indexes. Most operations return a Node,
a reference to a vertex of the shared DAG; the nil Node is the failure
sentinel, and the manager records the reason of the last failure (LastError).

Nodes returned by operations are referenced: release them with RecursiveDeref
when no longer needed, or keep them alive for as long as required. Dead nodes
are reclaimed by a garbage collector that runs when allocation pressure or
the dead-node count demands it; a dead node whose triple is requested again
is revived in place.

# Data structures

For the most part, the data structures and algorithms implemented in this
library are a direct adaptation of those found in the classic decision
diagram libraries: a node arena indexed by integers, one hash-consing
subtable per variable, lossy operation caches keyed by operator fingerprints,
and a recursive Shannon-expansion kernel shared by every operator. The
library is written in pure Go, with no CGo dependency.

To get access to more detailed statistics about caches and the unique table,
compile with the build tag `debug`.

# Concurrency

A manager is not safe for concurrent use: calls on the same DD must be
serialized by the caller. Distinct managers are fully isolated and can be
used from different goroutines.
*/
package godd
