// Package grouptest provides small groups and deterministic randomness for
// tests. None of it is suitable for an election.
package grouptest

import (
	"crypto/cipher"
	"math/big"

	"go.dedis.ch/kyber/v3/xof/blake2xb"
	"go.dedis.ch/returncodes/group"
)

// 256-bit safe prime, 2 is a quadratic residue modulo p.
const (
	testP = "e27f4c79fc5aac128490e9d83bb72f987d141ca9eab8e647db3d169553cf3407"
	testQ = "713fa63cfe2d5609424874ec1ddb97cc3e8a0e54f55c7323ed9e8b4aa9e79a03"
)

func mustGroup(p, q *big.Int, g int64) *group.GqGroup {
	grp, err := group.NewGqGroup(p, q, big.NewInt(g))
	if err != nil {
		panic(err)
	}
	return grp
}

func testParameters() (*big.Int, *big.Int) {
	p, _ := new(big.Int).SetString(testP, 16)
	q, _ := new(big.Int).SetString(testQ, 16)
	return p, q
}

// Group returns a 256-bit group with generator 2.
func Group() *group.GqGroup {
	p, q := testParameters()
	return mustGroup(p, q, 2)
}

// SameOrderGroup returns a group with the same p and q as Group but the
// generator 4, so it is order-compatible without being identical.
func SameOrderGroup() *group.GqGroup {
	p, q := testParameters()
	return mustGroup(p, q, 4)
}

// SmallGroup returns the group of order 11 modulo 23.
func SmallGroup() *group.GqGroup {
	return mustGroup(big.NewInt(23), big.NewInt(11), 2)
}

// Stream returns a deterministic stream seeded with seed.
func Stream(seed string) cipher.Stream {
	return blake2xb.New([]byte(seed))
}

// PrimeMembers returns the n smallest primes that are members of grp and
// panics if there are not enough.
func PrimeMembers(grp *group.GqGroup, n int) group.GqVector {
	v, err := grp.SmallPrimeMembers(n)
	if err != nil {
		panic(err)
	}
	return v
}

// RandomMembers returns n random members of grp.
func RandomMembers(rand cipher.Stream, grp *group.GqGroup, n int) group.GqVector {
	exponents, err := grp.Exponents().RandomVector(rand, n)
	if err != nil {
		panic(err)
	}
	elements := make([]group.GqElement, n)
	for i := range elements {
		elements[i] = grp.Generator().Exponentiate(exponents.Get(i))
	}
	v, err := group.NewVector(elements...)
	if err != nil {
		panic(err)
	}
	return v
}
