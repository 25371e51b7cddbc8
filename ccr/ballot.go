package ccr

import (
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/zkp"
)

// Ballot is the encrypted vote a voting client sends for one card.
type Ballot struct {
	VerificationCardID string
	// EncryptedVote is E1, of size delta, under the election public key.
	EncryptedVote elgamal.Ciphertext
	// ExponentiatedEncryptedVote is (gamma_1^k, phi_1,0^k) with k the
	// verification card secret key.
	ExponentiatedEncryptedVote elgamal.Ciphertext
	// EncryptedPCC is E2, the psi partial Choice Return Codes under the
	// combined CCR key.
	EncryptedPCC           elgamal.Ciphertext
	ExponentiationProof    zkp.ExponentiationProof
	PlaintextEqualityProof zkp.PlaintextEqualityProof
}

// BallotAux returns the auxiliary strings of the proofs of a ballot.
func BallotAux(ctx lib.SetupContext, vcID string) []string {
	return []string{ctx.ElectionEventID, vcID, lib.LabelCreateVote}
}

// BallotKeys are the public keys a ballot is checked against.
type BallotKeys struct {
	// CardKey is the verification card public key K_id.
	CardKey group.GqElement
	// ElectionKey is the election public key, of size at least delta.
	ElectionKey group.GqVector
	// CCRKey is the combined CCR Choice Return Codes encryption public key,
	// of size phi.
	CCRKey group.GqVector
}

func validateBallot(ctx lib.NodeContext, params lib.ElectionParameters, psi int, b *Ballot) error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if psi <= 0 || psi > params.Phi {
		return returncodes.Validationf("psi must be in [1, phi=%d], got %d", params.Phi, psi)
	}
	if b == nil {
		return returncodes.Validationf("ballot is required")
	}
	if err := lib.ValidateID("verification card id", b.VerificationCardID); err != nil {
		return err
	}
	if b.EncryptedVote.IsNil() || b.ExponentiatedEncryptedVote.IsNil() || b.EncryptedPCC.IsNil() {
		return returncodes.Validationf("ballot of card %s is missing a ciphertext", b.VerificationCardID)
	}
	if b.EncryptedVote.Size() != params.Delta {
		return returncodes.Validationf("encrypted vote must have size delta=%d, got %d", params.Delta, b.EncryptedVote.Size())
	}
	if b.ExponentiatedEncryptedVote.Size() != 1 {
		return returncodes.Validationf("exponentiated encrypted vote must have size 1, got %d",
			b.ExponentiatedEncryptedVote.Size())
	}
	if b.EncryptedPCC.Size() != psi {
		return returncodes.Validationf("encrypted partial Choice Return Codes must have size %d, got %d",
			psi, b.EncryptedPCC.Size())
	}
	for _, c := range []elgamal.Ciphertext{b.EncryptedVote, b.ExponentiatedEncryptedVote, b.EncryptedPCC} {
		if err := ctx.CheckGroup("ballot", c.Group()); err != nil {
			return err
		}
	}
	return nil
}

func (k BallotKeys) validate(ctx lib.NodeContext, params lib.ElectionParameters) error {
	if k.CardKey.IsNil() {
		return returncodes.Validationf("verification card public key is required")
	}
	if k.ElectionKey.Size() < params.Delta {
		return returncodes.Validationf("election public key must have at least delta=%d elements, got %d",
			params.Delta, k.ElectionKey.Size())
	}
	if err := group.CheckSize("CCR Choice Return Codes encryption public key", k.CCRKey, params.Phi); err != nil {
		return err
	}
	for _, c := range []struct {
		name string
		grp  *group.GqGroup
	}{
		{"verification card public key", k.CardKey.Group()},
		{"election public key", k.ElectionKey.Get(0).Group()},
		{"CCR public key", k.CCRKey.Get(0).Group()},
	} {
		if err := ctx.CheckGroup(c.name, c.grp); err != nil {
			return err
		}
	}
	return nil
}

// VerifyBallotCCR checks the exponentiation proof and the plaintext-equality
// proof of a ballot. A proof that does not verify returns false; malformed
// inputs and psi > phi return an ErrValidation.
func VerifyBallotCCR(ctx lib.NodeContext, params lib.ElectionParameters, psi int, b *Ballot,
	keys BallotKeys) (bool, error) {
	if err := validateBallot(ctx, params, psi, b); err != nil {
		return false, err
	}
	if err := keys.validate(ctx, params); err != nil {
		return false, err
	}
	grp := ctx.Group
	aux := BallotAux(ctx.SetupContext, b.VerificationCardID)

	e1, e1Tilde := b.EncryptedVote, b.ExponentiatedEncryptedVote
	bases, err := group.NewVector(grp.Generator(), e1.Gamma(), e1.Phi(0))
	if err != nil {
		return false, err
	}
	results, err := group.NewVector(keys.CardKey, e1Tilde.Gamma(), e1Tilde.Phi(0))
	if err != nil {
		return false, err
	}
	ok, err := zkp.VerifyExponentiation(bases, results, b.ExponentiationProof, aux...)
	if err != nil || !ok {
		return false, err
	}

	e2Tilde, hPrime, err := CompressedPCC(b.EncryptedPCC, keys.CCRKey, psi)
	if err != nil {
		return false, err
	}
	return zkp.VerifyPlaintextEquality(e1Tilde, e2Tilde, keys.ElectionKey.Get(0), hPrime,
		b.PlaintextEqualityProof, aux...)
}

// CompressedPCC returns (gamma_2, prod phi_2,i) and the product of the
// first psi elements of the CCR key it is encrypted under. Voting clients
// prove the plaintext equality against the same values.
func CompressedPCC(e2 elgamal.Ciphertext, ccrKey group.GqVector, psi int) (elgamal.Ciphertext, group.GqElement, error) {
	phi, err := group.NewVector(group.Product(e2.Phis()))
	if err != nil {
		return elgamal.Ciphertext{}, group.GqElement{}, err
	}
	c, err := elgamal.NewCiphertext(e2.Gamma(), phi)
	if err != nil {
		return elgamal.Ciphertext{}, group.GqElement{}, err
	}
	keys, err := ccrKey.Sub(0, psi)
	if err != nil {
		return elgamal.Ciphertext{}, group.GqElement{}, err
	}
	return c, group.Product(keys), nil
}
