package elgamal

import (
	"fmt"

	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
)

// Ciphertext is a multi-recipient ElGamal ciphertext (gamma, phi_0..phi_l-1).
type Ciphertext struct {
	gamma group.GqElement
	phis  group.GqVector
}

// CiphertextVector is a vector of ciphertexts of the same size and group.
type CiphertextVector = group.Vector[Ciphertext]

// CiphertextMatrix is a matrix of ciphertexts of the same size and group.
type CiphertextMatrix = group.Matrix[Ciphertext]

// NewCiphertext checks that gamma and phis belong to the same group.
func NewCiphertext(gamma group.GqElement, phis group.GqVector) (Ciphertext, error) {
	if gamma.IsNil() || phis.IsEmpty() {
		return Ciphertext{}, returncodes.Validationf("ciphertext needs a gamma and at least one phi")
	}
	if !gamma.IsCompatible(phis.Get(0)) {
		return Ciphertext{}, returncodes.Validationf("gamma and phis must belong to the same group")
	}
	return Ciphertext{gamma: gamma, phis: phis}, nil
}

// NeutralElement returns (1, [1, ..., 1]) of size n.
func NeutralElement(grp *group.GqGroup, n int) (Ciphertext, error) {
	if n <= 0 {
		return Ciphertext{}, returncodes.Validationf("ciphertext size must be positive, got %d", n)
	}
	ones := make([]group.GqElement, n)
	for i := range ones {
		ones[i] = grp.Identity()
	}
	phis, err := group.NewVector(ones...)
	if err != nil {
		return Ciphertext{}, err
	}
	return Ciphertext{gamma: grp.Identity(), phis: phis}, nil
}

// CiphertextFromBytes reads the encoding of Bytes.
func CiphertextFromBytes(grp *group.GqGroup, b [][]byte) (Ciphertext, error) {
	if len(b) < 2 {
		return Ciphertext{}, returncodes.Validationf("ciphertext encoding needs at least 2 elements, got %d", len(b))
	}
	gamma, err := grp.ElementFromBytes(b[0])
	if err != nil {
		return Ciphertext{}, err
	}
	phis, err := grp.ElementsFromBytes(b[1:])
	if err != nil {
		return Ciphertext{}, err
	}
	return NewCiphertext(gamma, phis)
}

// Gamma returns the randomness component.
func (c Ciphertext) Gamma() group.GqElement {
	return c.gamma
}

// Phis returns the message components.
func (c Ciphertext) Phis() group.GqVector {
	return c.phis
}

// Phi returns the i-th message component.
func (c Ciphertext) Phi(i int) group.GqElement {
	return c.phis.Get(i)
}

// Size returns the number of message components.
func (c Ciphertext) Size() int {
	return c.phis.Size()
}

// Group returns the group of the ciphertext.
func (c Ciphertext) Group() *group.GqGroup {
	return c.gamma.Group()
}

// IsNil returns true for the zero value.
func (c Ciphertext) IsNil() bool {
	return c.gamma.IsNil()
}

// Equals returns true if both ciphertexts have equal components.
func (c Ciphertext) Equals(other Ciphertext) bool {
	return c.gamma.Equals(other.gamma) && c.phis.Equals(other.phis)
}

// IsCompatible returns true if both ciphertexts have the same size and
// group.
func (c Ciphertext) IsCompatible(other Ciphertext) bool {
	return c.gamma.IsCompatible(other.gamma) && c.Size() == other.Size()
}

// Exponentiate returns (gamma^k, phi_0^k, ..., phi_l-1^k).
func (c Ciphertext) Exponentiate(k group.ZqElement) (Ciphertext, error) {
	if !c.Group().HasSameOrderAs(k.Group()) {
		return Ciphertext{}, returncodes.Validationf("exponent and ciphertext must have the same order")
	}
	phis, err := group.ExponentiateVector(c.phis, k)
	if err != nil {
		return Ciphertext{}, err
	}
	return Ciphertext{gamma: c.gamma.Exponentiate(k), phis: phis}, nil
}

// Multiply returns the component-wise product of c and other, which
// encrypts the product of the messages.
func (c Ciphertext) Multiply(other Ciphertext) (Ciphertext, error) {
	if !c.IsCompatible(other) {
		return Ciphertext{}, returncodes.Validationf("ciphertexts must have the same size and group")
	}
	phis, err := group.MultiplyVectors(c.phis, other.phis)
	if err != nil {
		return Ciphertext{}, err
	}
	return Ciphertext{gamma: c.gamma.Multiply(other.gamma), phis: phis}, nil
}

// Product multiplies all ciphertexts of v.
func Product(v CiphertextVector) (Ciphertext, error) {
	if v.IsEmpty() {
		return Ciphertext{}, returncodes.Validationf("no ciphertexts to multiply")
	}
	acc := v.Get(0)
	for i := 1; i < v.Size(); i++ {
		var err error
		if acc, err = acc.Multiply(v.Get(i)); err != nil {
			return Ciphertext{}, err
		}
	}
	return acc, nil
}

// Bytes returns gamma followed by the phis, each big-endian encoded.
func (c Ciphertext) Bytes() [][]byte {
	return append([][]byte{c.gamma.Bytes()}, group.GqValues(c.phis)...)
}

// ToHashable presents the ciphertext as the list (gamma, phi_0, ...).
func (c Ciphertext) ToHashable() interface{} {
	out := make([]interface{}, 0, c.Size()+1)
	out = append(out, c.gamma)
	for _, phi := range c.phis.Elements() {
		out = append(out, phi)
	}
	return out
}

func (c Ciphertext) String() string {
	return fmt.Sprintf("Ciphertext(%v, %v)", c.gamma, c.phis.Elements())
}
