package zkp

import (
	"crypto/cipher"

	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
)

const plaintextEqualityLabel = "PlaintextEqualityProof"

// PlaintextEqualityStatement claims that the single-message ciphertexts C,
// encrypted under H, and CPrime, encrypted under HPrime, hold the same
// message.
type PlaintextEqualityStatement struct {
	C      elgamal.Ciphertext
	CPrime elgamal.Ciphertext
	H      group.GqElement
	HPrime group.GqElement
}

// PlaintextEqualityWitness is the randomness of both encryptions.
type PlaintextEqualityWitness struct {
	R      group.ZqElement
	RPrime group.ZqElement
}

// PlaintextEqualityProof is the transcript (e, (z_0, z_1)).
type PlaintextEqualityProof struct {
	E group.ZqElement
	Z group.ZqVector
}

// Bytes returns e followed by z_0 and z_1.
func (p PlaintextEqualityProof) Bytes() [][]byte {
	return append([][]byte{p.E.Bytes()}, group.ZqValues(p.Z)...)
}

// PlaintextEqualityProofFromBytes reads the encoding of Bytes.
func PlaintextEqualityProofFromBytes(zq *group.ZqGroup, b [][]byte) (PlaintextEqualityProof, error) {
	if len(b) != 3 {
		return PlaintextEqualityProof{}, returncodes.Validationf("plaintext equality proof must have 3 elements, got %d", len(b))
	}
	e, err := zq.ElementFromBytes(b[0])
	if err != nil {
		return PlaintextEqualityProof{}, err
	}
	z, err := zq.ElementsFromBytes(b[1:])
	if err != nil {
		return PlaintextEqualityProof{}, err
	}
	return PlaintextEqualityProof{E: e, Z: z}, nil
}

func (st PlaintextEqualityStatement) validate() error {
	if st.C.IsNil() || st.CPrime.IsNil() || st.H.IsNil() || st.HPrime.IsNil() {
		return returncodes.Validationf("plaintext equality statement is incomplete")
	}
	if st.C.Size() != 1 || st.CPrime.Size() != 1 {
		return returncodes.Validationf("plaintext equality needs ciphertexts of size 1, got %d and %d",
			st.C.Size(), st.CPrime.Size())
	}
	grp := st.C.Group()
	for _, e := range []group.GqElement{st.CPrime.Gamma(), st.H, st.HPrime} {
		if !e.Group().Equals(grp) {
			return returncodes.Validationf("plaintext equality statement must be in one group")
		}
	}
	return nil
}

// image returns y = (c_0, c'_0, c_1 / c'_1).
func (st PlaintextEqualityStatement) image() (group.GqVector, error) {
	return group.NewVector(st.C.Gamma(), st.CPrime.Gamma(), st.C.Phi(0).Divide(st.CPrime.Phi(0)))
}

// phi computes the homomorphism (g^x, g^x', h^x / h'^x').
func (st PlaintextEqualityStatement) phi(x, xPrime group.ZqElement) (group.GqVector, error) {
	g := st.C.Group().Generator()
	return group.NewVector(
		g.Exponentiate(x),
		g.Exponentiate(xPrime),
		st.H.Exponentiate(x).Divide(st.HPrime.Exponentiate(xPrime)),
	)
}

type plaintextEqualitySystem struct{}

// PlaintextEquality is the plaintext-equality proof system.
var PlaintextEquality System[PlaintextEqualityStatement, PlaintextEqualityWitness, PlaintextEqualityProof] = plaintextEqualitySystem{}

func (plaintextEqualitySystem) challenge(st PlaintextEqualityStatement, y, commitment group.GqVector,
	aux []string) (group.ZqElement, error) {
	grp := st.C.Group()
	f := append(groupParameters(grp), st.H, st.HPrime)
	return challenge(grp.Exponents(), plaintextEqualityLabel, []interface{}{f, y, commitment}, aux)
}

// Prove commits to phi(b_0, b_1) and answers z = (b_0 - e*r, b_1 - e*r').
func (s plaintextEqualitySystem) Prove(rand cipher.Stream, st PlaintextEqualityStatement,
	w PlaintextEqualityWitness, aux ...string) (PlaintextEqualityProof, error) {
	if err := st.validate(); err != nil {
		return PlaintextEqualityProof{}, err
	}
	grp := st.C.Group()
	zq := grp.Exponents()
	if w.R.IsNil() || w.RPrime.IsNil() || !grp.HasSameOrderAs(w.R.Group()) || !grp.HasSameOrderAs(w.RPrime.Group()) {
		return PlaintextEqualityProof{}, returncodes.Validationf("witness and statement must have the same order")
	}
	y, err := st.image()
	if err != nil {
		return PlaintextEqualityProof{}, err
	}
	b0, b1 := zq.Random(rand), zq.Random(rand)
	commitment, err := st.phi(b0, b1)
	if err != nil {
		return PlaintextEqualityProof{}, err
	}
	e, err := s.challenge(st, y, commitment, aux)
	if err != nil {
		return PlaintextEqualityProof{}, err
	}
	z, err := group.NewVector(
		b0.Subtract(e.Multiply(zq.Reduce(w.R.Value()))),
		b1.Subtract(e.Multiply(zq.Reduce(w.RPrime.Value()))),
	)
	if err != nil {
		return PlaintextEqualityProof{}, err
	}
	return PlaintextEqualityProof{E: e, Z: z}, nil
}

// Verify recomputes the commitment phi(z) * y^e and checks that it hashes
// to e.
func (s plaintextEqualitySystem) Verify(st PlaintextEqualityStatement, proof PlaintextEqualityProof,
	aux ...string) (bool, error) {
	if err := st.validate(); err != nil {
		return false, err
	}
	grp := st.C.Group()
	if proof.E.IsNil() || proof.Z.Size() != 2 {
		return false, returncodes.Validationf("plaintext equality proof is incomplete")
	}
	if !grp.HasSameOrderAs(proof.E.Group()) || !grp.HasSameOrderAs(proof.Z.Get(0).Group()) {
		return false, returncodes.Validationf("proof and statement must have the same order")
	}
	y, err := st.image()
	if err != nil {
		return false, err
	}
	phiZ, err := st.phi(proof.Z.Get(0), proof.Z.Get(1))
	if err != nil {
		return false, err
	}
	yE, err := group.ExponentiateVector(y, proof.E)
	if err != nil {
		return false, err
	}
	commitment, err := group.MultiplyVectors(phiZ, yE)
	if err != nil {
		return false, err
	}
	e, err := s.challenge(st, y, commitment, aux)
	if err != nil {
		return false, err
	}
	return e.Value().Cmp(proof.E.Value()) == 0, nil
}

// GenPlaintextEqualityProof proves that c under h and cPrime under hPrime
// encrypt the same message, given the randomness of both.
func GenPlaintextEqualityProof(rand cipher.Stream, c, cPrime elgamal.Ciphertext, h, hPrime group.GqElement,
	r, rPrime group.ZqElement, aux ...string) (PlaintextEqualityProof, error) {
	st := PlaintextEqualityStatement{C: c, CPrime: cPrime, H: h, HPrime: hPrime}
	return PlaintextEquality.Prove(rand, st, PlaintextEqualityWitness{R: r, RPrime: rPrime}, aux...)
}

// VerifyPlaintextEquality verifies a proof made by
// GenPlaintextEqualityProof.
func VerifyPlaintextEquality(c, cPrime elgamal.Ciphertext, h, hPrime group.GqElement,
	proof PlaintextEqualityProof, aux ...string) (bool, error) {
	st := PlaintextEqualityStatement{C: c, CPrime: cPrime, H: h, HPrime: hPrime}
	return PlaintextEquality.Verify(st, proof, aux...)
}
