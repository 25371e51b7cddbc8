// Package group implements the prime-order groups the protocol computes in:
// the subgroup Gq of quadratic residues modulo a safe prime p = 2q + 1, and
// the exponent group Zq of integers modulo q.
//
// Elements carry their group. Arithmetic between elements of different
// groups is a programming error and panics; the protocol packages validate
// every input with the checks of this package before computing, and report
// a mismatch as a returncodes.ErrValidation.
package group

import (
	"fmt"
	"math/big"

	"go.dedis.ch/returncodes"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// primalityRounds is the number of Miller-Rabin rounds used when a group is
// created.
const primalityRounds = 32

// GqGroup is the subgroup of order q of the multiplicative group modulo the
// safe prime p = 2q + 1, generated by g.
type GqGroup struct {
	p *big.Int
	q *big.Int
	g *big.Int

	exponents *ZqGroup
}

// NewGqGroup validates the parameters and returns the group. p must be a
// safe prime p = 2q + 1 and g a non-trivial member of the order-q subgroup.
func NewGqGroup(p, q, g *big.Int) (*GqGroup, error) {
	if p == nil || q == nil || g == nil {
		return nil, returncodes.Validationf("group parameters must not be nil")
	}
	if new(big.Int).Add(new(big.Int).Lsh(q, 1), one).Cmp(p) != 0 {
		return nil, returncodes.Validationf("p must be equal to 2q + 1")
	}
	if !q.ProbablyPrime(primalityRounds) || !p.ProbablyPrime(primalityRounds) {
		return nil, returncodes.Validationf("p and q must be prime")
	}
	if g.Cmp(one) <= 0 || g.Cmp(p) >= 0 {
		return nil, returncodes.Validationf("generator must be in ]1, p[")
	}
	if new(big.Int).Exp(g, q, p).Cmp(one) != 0 {
		return nil, returncodes.Validationf("generator must be a member of the order-q subgroup")
	}
	grp := &GqGroup{
		p: new(big.Int).Set(p),
		q: new(big.Int).Set(q),
		g: new(big.Int).Set(g),
	}
	grp.exponents = &ZqGroup{q: grp.q}
	return grp, nil
}

// P returns the modulus.
func (grp *GqGroup) P() *big.Int {
	return new(big.Int).Set(grp.p)
}

// Q returns the order of the group.
func (grp *GqGroup) Q() *big.Int {
	return new(big.Int).Set(grp.q)
}

// Generator returns g as an element.
func (grp *GqGroup) Generator() GqElement {
	return GqElement{value: grp.g, group: grp}
}

// Identity returns the neutral element 1.
func (grp *GqGroup) Identity() GqElement {
	return GqElement{value: one, group: grp}
}

// Exponents returns the group Zq of the exponents of this group.
func (grp *GqGroup) Exponents() *ZqGroup {
	return grp.exponents
}

// Equals returns true if both groups have the same p, q and g.
func (grp *GqGroup) Equals(other *GqGroup) bool {
	if grp == other {
		return true
	}
	if grp == nil || other == nil {
		return false
	}
	return grp.p.Cmp(other.p) == 0 && grp.q.Cmp(other.q) == 0 && grp.g.Cmp(other.g) == 0
}

// HasSameOrderAs returns true if the exponent group zq has order q.
func (grp *GqGroup) HasSameOrderAs(zq *ZqGroup) bool {
	return grp != nil && zq != nil && grp.q.Cmp(zq.q) == 0
}

// IsMember returns true if v is in [1, p-1] and v^q = 1 mod p.
func (grp *GqGroup) IsMember(v *big.Int) bool {
	if v == nil || v.Sign() <= 0 || v.Cmp(grp.p) >= 0 {
		return false
	}
	return new(big.Int).Exp(v, grp.q, grp.p).Cmp(one) == 0
}

// Element returns v as an element of the group, or an error if v is not a
// member.
func (grp *GqGroup) Element(v *big.Int) (GqElement, error) {
	if !grp.IsMember(v) {
		return GqElement{}, returncodes.Validationf("value is not a member of the group")
	}
	return GqElement{value: new(big.Int).Set(v), group: grp}, nil
}

// ElementFromBytes reads a big-endian encoded element.
func (grp *GqGroup) ElementFromBytes(b []byte) (GqElement, error) {
	return grp.Element(new(big.Int).SetBytes(b))
}

// ElementsFromBytes reads a list of big-endian encoded elements into a
// vector.
func (grp *GqGroup) ElementsFromBytes(bs [][]byte) (GqVector, error) {
	elements := make([]GqElement, len(bs))
	for i, b := range bs {
		e, err := grp.ElementFromBytes(b)
		if err != nil {
			return GqVector{}, err
		}
		elements[i] = e
	}
	return NewVector(elements...)
}

// SmallPrimeMembers returns the n smallest odd primes that are members of
// the group. They encode the voting options.
func (grp *GqGroup) SmallPrimeMembers(n int) (GqVector, error) {
	if n <= 0 {
		return GqVector{}, returncodes.Validationf("number of primes must be positive, got %d", n)
	}
	elements := make([]GqElement, 0, n)
	for c := big.NewInt(3); len(elements) < n; c = new(big.Int).Add(c, two) {
		if c.Cmp(grp.p) >= 0 {
			return GqVector{}, returncodes.Validationf("group has fewer than %d small prime members", n)
		}
		if !c.ProbablyPrime(20) || !grp.IsMember(c) {
			continue
		}
		elements = append(elements, GqElement{value: c, group: grp})
	}
	return NewVector(elements...)
}

func (grp *GqGroup) String() string {
	return fmt.Sprintf("Gq(p=%x, q=%x, g=%x)", grp.p, grp.q, grp.g)
}

// GqElement is a member of a GqGroup. Its value is in [1, p-1] and
// value^q = 1 mod p.
type GqElement struct {
	value *big.Int
	group *GqGroup
}

// Value returns a copy of the value.
func (e GqElement) Value() *big.Int {
	return new(big.Int).Set(e.value)
}

// Group returns the group of the element.
func (e GqElement) Group() *GqGroup {
	return e.group
}

// IsNil returns true for the zero value, which is not an element.
func (e GqElement) IsNil() bool {
	return e.group == nil || e.value == nil
}

// Multiply returns e * other mod p.
func (e GqElement) Multiply(other GqElement) GqElement {
	e.mustBeCompatible(other)
	v := new(big.Int).Mul(e.value, other.value)
	return GqElement{value: v.Mod(v, e.group.p), group: e.group}
}

// Invert returns the inverse of e.
func (e GqElement) Invert() GqElement {
	return GqElement{value: new(big.Int).ModInverse(e.value, e.group.p), group: e.group}
}

// Divide returns e / other mod p.
func (e GqElement) Divide(other GqElement) GqElement {
	return e.Multiply(other.Invert())
}

// Exponentiate returns e^z mod p. The exponent only needs to come from a
// group of the same order.
func (e GqElement) Exponentiate(z ZqElement) GqElement {
	if !e.group.HasSameOrderAs(z.group) {
		panic("group: exponent of a different order")
	}
	return GqElement{value: new(big.Int).Exp(e.value, z.value, e.group.p), group: e.group}
}

// Equals returns true if both elements are in the same group and have the
// same value.
func (e GqElement) Equals(other GqElement) bool {
	if e.IsNil() || other.IsNil() {
		return e.IsNil() && other.IsNil()
	}
	return e.group.Equals(other.group) && e.value.Cmp(other.value) == 0
}

// IsCompatible returns true if both elements are in the same group.
func (e GqElement) IsCompatible(other GqElement) bool {
	return !e.IsNil() && !other.IsNil() && e.group.Equals(other.group)
}

// Bytes returns the minimal big-endian encoding of the value.
func (e GqElement) Bytes() []byte {
	return e.value.Bytes()
}

func (e GqElement) String() string {
	if e.IsNil() {
		return "GqElement(nil)"
	}
	return fmt.Sprintf("GqElement(%x)", e.value)
}

func (e GqElement) mustBeCompatible(other GqElement) {
	if !e.IsCompatible(other) {
		panic("group: elements of different groups")
	}
}
