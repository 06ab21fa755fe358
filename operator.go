// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

// Operator describes the potential operations available on an Apply (for the
// Boolean operators) and on an AddApply (for the arithmetic ones). Only OPand,
// OPor and OPxor can be used in AppEx.
type Operator int

const (
	OPand Operator = iota
	OPxor
	OPor
	OPnand
	OPnor
	OPimp
	OPbiimp
	OPdiff
	OPless
	OPinvimp
	// opnot, for negation, is the only unary Boolean operation. With
	// complement edges a negation never recurses, so it cannot appear in a
	// cache entry; we keep the symbol for error reporting.
	opnot
)

// Arithmetic operators, usable in AddApply. OPaddor implements Boolean
// disjunction over 0-1 ADDs.
const (
	OPplus Operator = iota + 16
	OPtimes
	OPminus
	OPdivide
	OPmin
	OPmax
	OPaddor
)

// ZDD operators; they share the apply cache with the Boolean and arithmetic
// operators, so the three op spaces must stay disjoint.
const (
	opzunion Operator = iota + 32
	opzinter
	opzdiff
)

var opnames = map[Operator]string{
	OPand:    "and",
	OPxor:    "xor",
	OPor:     "or",
	OPnand:   "nand",
	OPnor:    "nor",
	OPimp:    "imp",
	OPbiimp:  "biimp",
	OPdiff:   "diff",
	OPless:   "less",
	OPinvimp: "invimp",
	opnot:    "not",
	OPplus:   "plus",
	OPtimes:  "times",
	OPminus:  "minus",
	OPdivide: "divide",
	OPmin:    "min",
	OPmax:    "max",
	OPaddor:  "add-or",
	opzunion: "zdd-union",
	opzinter: "zdd-intersect",
	opzdiff:  "zdd-diff",
}

func (op Operator) String() string {
	if s, ok := opnames[op]; ok {
		return s
	}
	return "unknown"
}

// opres gives the result of the Boolean operators on a pair of constants,
// indexed by truth values (0 is false).
var opres = [10][2][2]int{
	//                      00    01               10    11
	OPand:    {0: [2]int{0: 0, 1: 0}, 1: [2]int{0: 0, 1: 1}}, // 0001
	OPxor:    {0: [2]int{0: 0, 1: 1}, 1: [2]int{0: 1, 1: 0}}, // 0110
	OPor:     {0: [2]int{0: 0, 1: 1}, 1: [2]int{0: 1, 1: 1}}, // 0111
	OPnand:   {0: [2]int{0: 1, 1: 1}, 1: [2]int{0: 1, 1: 0}}, // 1110
	OPnor:    {0: [2]int{0: 1, 1: 0}, 1: [2]int{0: 0, 1: 0}}, // 1000
	OPimp:    {0: [2]int{0: 1, 1: 1}, 1: [2]int{0: 0, 1: 1}}, // 1101
	OPbiimp:  {0: [2]int{0: 1, 1: 0}, 1: [2]int{0: 0, 1: 1}}, // 1001
	OPdiff:   {0: [2]int{0: 0, 1: 0}, 1: [2]int{0: 1, 1: 0}}, // 0010
	OPless:   {0: [2]int{0: 0, 1: 1}, 1: [2]int{0: 0, 1: 0}}, // 0100
	OPinvimp: {0: [2]int{0: 1, 1: 0}, 1: [2]int{0: 1, 1: 1}}, // 1011
}

// constapply evaluates a Boolean operator on two constant edges.
func constapply(op Operator, l, r int) int {
	a, c := 0, 0
	if l == bddone {
		a = 1
	}
	if r == bddone {
		c = 1
	}
	if opres[op][a][c] == 1 {
		return bddone
	}
	return bddzero
}

// Cache tags for the operations that do not go through the apply cache. They
// are packed in the third key of the misc cache, possibly shifted to leave
// room for a small parameter.
const (
	cacheCOMPOSE int = iota + 0x40
	cacheRESTRICT
	cacheCONSTRAIN
	cacheLEQ
	cacheINTERSECT
	cacheCLIPAND
	cacheCLIPABS
	cacheBDDTOADD
	cacheADDPATTERN
	cacheTHRESHOLD
	cacheSTRICTTHR
	cacheINTERVAL
	cacheITHBIT
	cacheADDNEGATE
	cacheADDINVERSE
	cacheADDROUND
	cacheADDEXIST
	cacheADDUNIV
	cacheADDORABS
	cacheADDCOMPOSE
	cacheZCHANGE
	cacheZSUB0
	cacheZSUB1
	cacheZPRODUCT
	cacheZWEAKDIV
	cacheISOPBDD
	cacheISOPZDD
	cacheCPROJ
	cacheADDMONADIC
)
