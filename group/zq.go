package group

import (
	"crypto/cipher"
	"fmt"
	"math/big"

	"go.dedis.ch/kyber/v3/util/random"
	"go.dedis.ch/returncodes"
)

// ZqGroup is the additive group of integers modulo q.
type ZqGroup struct {
	q *big.Int
}

// NewZqGroup returns the group of integers modulo q.
func NewZqGroup(q *big.Int) (*ZqGroup, error) {
	if q == nil || q.Cmp(two) < 0 {
		return nil, returncodes.Validationf("q must be at least 2")
	}
	return &ZqGroup{q: new(big.Int).Set(q)}, nil
}

// Q returns the order of the group.
func (zq *ZqGroup) Q() *big.Int {
	return new(big.Int).Set(zq.q)
}

// Equals returns true if both groups have the same order.
func (zq *ZqGroup) Equals(other *ZqGroup) bool {
	if zq == other {
		return true
	}
	if zq == nil || other == nil {
		return false
	}
	return zq.q.Cmp(other.q) == 0
}

// Element returns v as an element of the group, or an error if v is not in
// [0, q-1].
func (zq *ZqGroup) Element(v *big.Int) (ZqElement, error) {
	if v == nil || v.Sign() < 0 || v.Cmp(zq.q) >= 0 {
		return ZqElement{}, returncodes.Validationf("value is not in [0, q-1]")
	}
	return ZqElement{value: new(big.Int).Set(v), group: zq}, nil
}

// Reduce returns v mod q as an element.
func (zq *ZqGroup) Reduce(v *big.Int) ZqElement {
	return ZqElement{value: new(big.Int).Mod(v, zq.q), group: zq}
}

// ElementFromBytes reads a big-endian encoded element.
func (zq *ZqGroup) ElementFromBytes(b []byte) (ZqElement, error) {
	return zq.Element(new(big.Int).SetBytes(b))
}

// ElementsFromBytes reads a list of big-endian encoded elements into a
// vector.
func (zq *ZqGroup) ElementsFromBytes(bs [][]byte) (ZqVector, error) {
	elements := make([]ZqElement, len(bs))
	for i, b := range bs {
		e, err := zq.ElementFromBytes(b)
		if err != nil {
			return ZqVector{}, err
		}
		elements[i] = e
	}
	return NewVector(elements...)
}

// Zero returns the neutral element 0.
func (zq *ZqGroup) Zero() ZqElement {
	return ZqElement{value: new(big.Int), group: zq}
}

// One returns 1.
func (zq *ZqGroup) One() ZqElement {
	return ZqElement{value: one, group: zq}
}

// Random returns a uniformly distributed element.
func (zq *ZqGroup) Random(rand cipher.Stream) ZqElement {
	return ZqElement{value: RandomInt(zq.q, rand), group: zq}
}

// RandomInt returns a uniformly distributed integer in [0, bound-1].
// random.Int never returns 0, so it draws from [1, bound] and shifts.
func RandomInt(bound *big.Int, rand cipher.Stream) *big.Int {
	v := random.Int(new(big.Int).Add(bound, one), rand)
	return v.Sub(v, one)
}

// RandomVector returns n independent uniformly distributed elements.
func (zq *ZqGroup) RandomVector(rand cipher.Stream, n int) (ZqVector, error) {
	if n <= 0 {
		return ZqVector{}, returncodes.Validationf("vector size must be positive, got %d", n)
	}
	elements := make([]ZqElement, n)
	for i := range elements {
		elements[i] = zq.Random(rand)
	}
	return NewVector(elements...)
}

func (zq *ZqGroup) String() string {
	return fmt.Sprintf("Zq(q=%x)", zq.q)
}

// ZqElement is an integer in [0, q-1].
type ZqElement struct {
	value *big.Int
	group *ZqGroup
}

// Value returns a copy of the value.
func (e ZqElement) Value() *big.Int {
	return new(big.Int).Set(e.value)
}

// Group returns the group of the element.
func (e ZqElement) Group() *ZqGroup {
	return e.group
}

// IsNil returns true for the zero value, which is not an element.
func (e ZqElement) IsNil() bool {
	return e.group == nil || e.value == nil
}

// Add returns e + other mod q.
func (e ZqElement) Add(other ZqElement) ZqElement {
	e.mustBeCompatible(other)
	return e.group.Reduce(new(big.Int).Add(e.value, other.value))
}

// Subtract returns e - other mod q.
func (e ZqElement) Subtract(other ZqElement) ZqElement {
	e.mustBeCompatible(other)
	return e.group.Reduce(new(big.Int).Sub(e.value, other.value))
}

// Multiply returns e * other mod q.
func (e ZqElement) Multiply(other ZqElement) ZqElement {
	e.mustBeCompatible(other)
	return e.group.Reduce(new(big.Int).Mul(e.value, other.value))
}

// Negate returns -e mod q.
func (e ZqElement) Negate() ZqElement {
	return e.group.Reduce(new(big.Int).Neg(e.value))
}

// Equals returns true if both elements have the same order and value.
func (e ZqElement) Equals(other ZqElement) bool {
	if e.IsNil() || other.IsNil() {
		return e.IsNil() && other.IsNil()
	}
	return e.group.Equals(other.group) && e.value.Cmp(other.value) == 0
}

// IsCompatible returns true if both elements are in groups of the same
// order.
func (e ZqElement) IsCompatible(other ZqElement) bool {
	return !e.IsNil() && !other.IsNil() && e.group.Equals(other.group)
}

// Bytes returns the minimal big-endian encoding of the value.
func (e ZqElement) Bytes() []byte {
	return e.value.Bytes()
}

func (e ZqElement) String() string {
	if e.IsNil() {
		return "ZqElement(nil)"
	}
	return fmt.Sprintf("ZqElement(%x)", e.value)
}

func (e ZqElement) mustBeCompatible(other ZqElement) {
	if !e.IsCompatible(other) {
		panic("group: exponents of different orders")
	}
}
