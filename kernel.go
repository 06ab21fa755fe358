// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"errors"
)

// _MINFREENODES is the minimal number of nodes (%) that has to be left after a
// garbage collect unless a resize should be done.
const _MINFREENODES int = 20

// _MAXVAR is the maximal number of variables in a DD. We use only the first 21
// bits of the index field for encoding variable indexes; the value _MAXVAR
// itself is reserved for terminal nodes. The other bits are used for markings,
// so we make sure to always use int32 to avoid problems when we change
// architecture.
const _MAXVAR int32 = 0x1FFFFF

// _CONSTINDEX is the variable index stored in terminal nodes.
const _CONSTINDEX int32 = _MAXVAR

// _CONSTLEVEL is the level reported for terminal nodes; it compares above
// every variable level.
const _CONSTLEVEL int32 = _MAXVAR

// _MARKBIT and _DEADBIT are the bits of the index field used, respectively,
// for marking nodes during traversals and for flagging dead nodes between
// garbage collections.
const _MARKBIT int32 = 0x200000
const _DEADBIT int32 = 0x400000

// _MAXREFCOUNT is the maximal value of the reference counter (refcou), also
// used to stick nodes (like constants and variables) in the node list. It is
// equal to 1023 (10 bits).
const _MAXREFCOUNT int32 = 0x3FF

// _DEFAULTMAXNODEINC is the default value for the maximal increase in the
// number of nodes during a resize. It is approx. one million nodes (1 048 576).
const _DEFAULTMAXNODEINC int = 1 << 20

// _CHAINQUALITY is the mean bucket-chain length above which a subtable of the
// unique table is resized.
const _CHAINQUALITY int = 4

// _TIMEPOLL is the number of cache probes or allocations between two reads of
// the monotonic clock when a time limit is set.
const _TIMEPOLL int32 = 1024

// _SWAPSLACK is the number of free slots, on top of the worst-case demand,
// required before an adjacent-variable swap is attempted.
const _SWAPSLACK int = 8

var errMemory = errors.New("unable to free memory or resize DD")
var errSwap = errors.New("not enough memory for a safe variable swap")
var errTimeout = errors.New("time limit expired")
var errTerminate = errors.New("termination requested by hook")
