package zkp

import (
	"crypto/cipher"

	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
)

const exponentiationLabel = "ExponentiationProof"

// ExponentiationStatement claims that Exponentiations[i] = Bases[i]^k for
// one secret k and every i.
type ExponentiationStatement struct {
	Bases           group.GqVector
	Exponentiations group.GqVector
}

// NewExponentiationStatement checks that bases and exponentiations have the
// same size and group.
func NewExponentiationStatement(bases, exponentiations group.GqVector) (ExponentiationStatement, error) {
	st := ExponentiationStatement{Bases: bases, Exponentiations: exponentiations}
	return st, st.validate()
}

func (st ExponentiationStatement) validate() error {
	if st.Bases.IsEmpty() || st.Exponentiations.IsEmpty() {
		return returncodes.Validationf("exponentiation statement needs bases and exponentiations")
	}
	if st.Bases.Size() != st.Exponentiations.Size() {
		return returncodes.Validationf("exponentiation statement has %d bases and %d exponentiations",
			st.Bases.Size(), st.Exponentiations.Size())
	}
	if !st.Bases.Get(0).IsCompatible(st.Exponentiations.Get(0)) {
		return returncodes.Validationf("bases and exponentiations must belong to the same group")
	}
	return nil
}

func (st ExponentiationStatement) group() *group.GqGroup {
	return st.Bases.Get(0).Group()
}

// ExponentiationProof is the transcript (e, z) of an exponentiation proof.
type ExponentiationProof struct {
	E group.ZqElement
	Z group.ZqElement
}

// Bytes returns e and z, big-endian encoded.
func (p ExponentiationProof) Bytes() [][]byte {
	return [][]byte{p.E.Bytes(), p.Z.Bytes()}
}

// ExponentiationProofFromBytes reads the encoding of Bytes.
func ExponentiationProofFromBytes(zq *group.ZqGroup, b [][]byte) (ExponentiationProof, error) {
	if len(b) != 2 {
		return ExponentiationProof{}, returncodes.Validationf("exponentiation proof must have 2 elements, got %d", len(b))
	}
	v, err := zq.ElementsFromBytes(b)
	if err != nil {
		return ExponentiationProof{}, err
	}
	return ExponentiationProof{E: v.Get(0), Z: v.Get(1)}, nil
}

type exponentiationSystem struct{}

// Exponentiation is the exponentiation proof system.
var Exponentiation System[ExponentiationStatement, group.ZqElement, ExponentiationProof] = exponentiationSystem{}

func (exponentiationSystem) challenge(st ExponentiationStatement, commitment group.GqVector,
	aux []string) (group.ZqElement, error) {
	grp := st.group()
	return challenge(grp.Exponents(), exponentiationLabel,
		[]interface{}{groupParameters(grp), st.Bases, st.Exponentiations, commitment}, aux)
}

// Prove draws a random b, commits to c_i = base_i^b and answers
// z = b - e*k.
func (s exponentiationSystem) Prove(rand cipher.Stream, st ExponentiationStatement, k group.ZqElement,
	aux ...string) (ExponentiationProof, error) {
	if err := st.validate(); err != nil {
		return ExponentiationProof{}, err
	}
	grp := st.group()
	if k.IsNil() || !grp.HasSameOrderAs(k.Group()) {
		return ExponentiationProof{}, returncodes.Validationf("witness and statement must have the same order")
	}
	b := grp.Exponents().Random(rand)
	commitment, err := group.ExponentiateVector(st.Bases, b)
	if err != nil {
		return ExponentiationProof{}, err
	}
	e, err := s.challenge(st, commitment, aux)
	if err != nil {
		return ExponentiationProof{}, err
	}
	return ExponentiationProof{E: e, Z: b.Subtract(e.Multiply(grp.Exponents().Reduce(k.Value())))}, nil
}

// Verify recomputes the commitment c_i = base_i^z * y_i^e and checks that
// it hashes to e.
func (s exponentiationSystem) Verify(st ExponentiationStatement, proof ExponentiationProof,
	aux ...string) (bool, error) {
	if err := st.validate(); err != nil {
		return false, err
	}
	grp := st.group()
	if proof.E.IsNil() || proof.Z.IsNil() {
		return false, returncodes.Validationf("exponentiation proof is incomplete")
	}
	if !grp.HasSameOrderAs(proof.E.Group()) || !grp.HasSameOrderAs(proof.Z.Group()) {
		return false, returncodes.Validationf("proof and statement must have the same order")
	}
	commitment := make([]group.GqElement, st.Bases.Size())
	for i := range commitment {
		commitment[i] = st.Bases.Get(i).Exponentiate(proof.Z).
			Multiply(st.Exponentiations.Get(i).Exponentiate(proof.E))
	}
	c, err := group.NewVector(commitment...)
	if err != nil {
		return false, err
	}
	e, err := s.challenge(st, c, aux)
	if err != nil {
		return false, err
	}
	return e.Value().Cmp(proof.E.Value()) == 0, nil
}

// GenExponentiationProof proves that exponentiations[i] = bases[i]^k.
func GenExponentiationProof(rand cipher.Stream, bases, exponentiations group.GqVector, k group.ZqElement,
	aux ...string) (ExponentiationProof, error) {
	st, err := NewExponentiationStatement(bases, exponentiations)
	if err != nil {
		return ExponentiationProof{}, err
	}
	return Exponentiation.Prove(rand, st, k, aux...)
}

// VerifyExponentiation verifies a proof made by GenExponentiationProof.
func VerifyExponentiation(bases, exponentiations group.GqVector, proof ExponentiationProof,
	aux ...string) (bool, error) {
	st, err := NewExponentiationStatement(bases, exponentiations)
	if err != nil {
		return false, err
	}
	return Exponentiation.Verify(st, proof, aux...)
}
