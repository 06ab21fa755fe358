// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd_test

import (
	"fmt"
	"log"

	"github.com/dalzilio/godd"
)

// This example shows the basic usage of the package: create a BDD, compute
// some expressions and output the result.
func Example_basic() {
	// Create a new manager with 6 variables, 10 000 nodes and a cache size of
	// 3 000 (initially).
	dd, _ := godd.New(6, godd.Nodesize(10000), godd.Cachesize(3000))
	bdd := godd.NewSet(dd)
	// n1 is a set comprising the three variables {x2, x3, x5}. It can also be
	// interpreted as the Boolean expression: x2 & x3 & x5
	n1 := bdd.Makeset([]int{2, 3, 5})
	// n2 == x1 | !x3 | x4
	n2 := bdd.Or(bdd.Ithvar(1), bdd.NIthvar(3), bdd.Ithvar(4))
	// n3 == ∃ x2,x3,x5 . (n2 & x3)
	n3 := bdd.AndExist(n1, n2, bdd.Ithvar(3))
	// You can print the result or export a BDD in Graphviz's DOT format
	log.Print("\n" + bdd.Stats())
	fmt.Printf("Number of sat. assignments is %s\n", bdd.Satcount(n3))
	// Output:
	// Number of sat. assignments is 48
}

// The following is an example of a callback handler, used in a call to
// Allsat, that counts the number of possible assignments (such that we do not
// count don't care twice).
func Example_allsat() {
	dd, _ := godd.New(5)
	bdd := godd.NewSet(dd)
	// n == ∃ x2,x3 . (x1 | !x3 | x4) & x3
	n := bdd.AndExist(bdd.Makeset([]int{2, 3}),
		bdd.Or(bdd.Ithvar(1), bdd.NIthvar(3), bdd.Ithvar(4)),
		bdd.Ithvar(3))
	acc := new(int)
	bdd.Allsat(func(varset []int) error {
		*acc++
		return nil
	}, n)
	fmt.Printf("Number of sat. assignments (without don't care) is %d", *acc)
	// Output:
	// Number of sat. assignments (without don't care) is 2
}

// This example shows how to abstract variables from an ADD by summation, the
// operation used to accumulate terminal values.
func Example_addabstract() {
	dd, _ := godd.New(2)
	// f == if x0 then 3.0 else 5.0
	f := dd.AddIte(dd.AddIthvar(0), dd.AddConst(3), dd.AddConst(5))
	sum := dd.AddExist(f, dd.Makeset([]int{0}))
	if ok, v := dd.IsConstant(sum); ok {
		fmt.Printf("Sum over x0 is %g\n", v)
	}
	// Output:
	// Sum over x0 is 8
}

// This example builds a family of sets with ZDD operations.
func Example_zdd() {
	dd, _ := godd.New(3, godd.Zddvarnum(3))
	// the family {{0}, {1}}
	family := dd.ZddUnion(dd.ZddIthvar(0), dd.ZddIthvar(1))
	// add variable 2 to every set: {{0,2}, {1,2}}
	family = dd.ZddChange(family, 2)
	fmt.Printf("The family holds %s sets\n", dd.ZddCount(family))
	// Output:
	// The family holds 2 sets
}
