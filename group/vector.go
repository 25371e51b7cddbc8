package group

import (
	"go.dedis.ch/returncodes"
)

// Element is the constraint of the values held by vectors and matrices.
// IsCompatible reports whether two values may live in the same collection:
// same group, and for composite values the same shape.
type Element[E any] interface {
	Equals(E) bool
	IsCompatible(E) bool
}

// Vector is an ordered, non-empty, immutable list of compatible elements.
// The zero value is the empty vector and only means "missing".
type Vector[E Element[E]] struct {
	elements []E
}

// GqVector is a vector of group elements.
type GqVector = Vector[GqElement]

// ZqVector is a vector of exponents.
type ZqVector = Vector[ZqElement]

// NewVector checks that the elements are compatible and returns them as a
// vector.
func NewVector[E Element[E]](elements ...E) (Vector[E], error) {
	if len(elements) == 0 {
		return Vector[E]{}, returncodes.Validationf("vector must not be empty")
	}
	for _, e := range elements[1:] {
		if !elements[0].IsCompatible(e) {
			return Vector[E]{}, returncodes.Validationf("all elements of a vector must belong to the same group")
		}
	}
	return Vector[E]{elements: append([]E(nil), elements...)}, nil
}

// Size returns the number of elements.
func (v Vector[E]) Size() int {
	return len(v.elements)
}

// IsEmpty returns true for the zero value.
func (v Vector[E]) IsEmpty() bool {
	return len(v.elements) == 0
}

// Get returns the i-th element.
func (v Vector[E]) Get(i int) E {
	return v.elements[i]
}

// Elements returns a copy of the elements.
func (v Vector[E]) Elements() []E {
	return append([]E(nil), v.elements...)
}

// Equals returns true if both vectors hold equal elements in the same
// order.
func (v Vector[E]) Equals(other Vector[E]) bool {
	if len(v.elements) != len(other.elements) {
		return false
	}
	for i := range v.elements {
		if !v.elements[i].Equals(other.elements[i]) {
			return false
		}
	}
	return true
}

// Append returns a new vector with e added at the end.
func (v Vector[E]) Append(e E) (Vector[E], error) {
	return NewVector(append(v.Elements(), e)...)
}

// Prepend returns a new vector with e added at the front.
func (v Vector[E]) Prepend(e E) (Vector[E], error) {
	return NewVector(append([]E{e}, v.elements...)...)
}

// Sub returns the elements in [from, to) as a new vector.
func (v Vector[E]) Sub(from, to int) (Vector[E], error) {
	if from < 0 || to > len(v.elements) || from >= to {
		return Vector[E]{}, returncodes.Validationf("invalid range [%d, %d) for a vector of size %d",
			from, to, len(v.elements))
	}
	return Vector[E]{elements: v.elements[from:to:to]}, nil
}

// CheckSize returns a validation error naming the vector if its size is not
// the expected one.
func CheckSize[E Element[E]](name string, v Vector[E], expected int) error {
	if v.Size() != expected {
		return returncodes.Validationf("%s must have size %d, got %d", name, expected, v.Size())
	}
	return nil
}

// Product returns the product of all elements of v.
func Product(v GqVector) GqElement {
	acc := v.Get(0)
	for _, e := range v.elements[1:] {
		acc = acc.Multiply(e)
	}
	return acc
}

// MultiplyVectors returns the element-wise product of a and b.
func MultiplyVectors(a, b GqVector) (GqVector, error) {
	if a.Size() != b.Size() {
		return GqVector{}, returncodes.Validationf("vectors must have the same size, got %d and %d",
			a.Size(), b.Size())
	}
	if !a.Get(0).IsCompatible(b.Get(0)) {
		return GqVector{}, returncodes.Validationf("vectors must belong to the same group")
	}
	elements := make([]GqElement, a.Size())
	for i := range elements {
		elements[i] = a.Get(i).Multiply(b.Get(i))
	}
	return NewVector(elements...)
}

// ExponentiateVector returns every element of v raised to z.
func ExponentiateVector(v GqVector, z ZqElement) (GqVector, error) {
	if !v.Get(0).Group().HasSameOrderAs(z.Group()) {
		return GqVector{}, returncodes.Validationf("exponent and vector must have the same order")
	}
	elements := make([]GqElement, v.Size())
	for i := range elements {
		elements[i] = v.Get(i).Exponentiate(z)
	}
	return NewVector(elements...)
}

// AreDistinct returns true if no two elements of v are equal.
func AreDistinct(v GqVector) bool {
	seen := make(map[string]struct{}, v.Size())
	for _, e := range v.elements {
		k := string(e.Bytes())
		if _, ok := seen[k]; ok {
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}

// GqValues returns the values of v as byte slices.
func GqValues(v GqVector) [][]byte {
	out := make([][]byte, v.Size())
	for i, e := range v.elements {
		out[i] = e.Bytes()
	}
	return out
}

// ZqValues returns the values of v as byte slices.
func ZqValues(v ZqVector) [][]byte {
	out := make([][]byte, v.Size())
	for i, e := range v.elements {
		out[i] = e.Bytes()
	}
	return out
}
