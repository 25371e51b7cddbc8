package lib

import (
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/zkp"
)

// CardSetupData is what the setup authority sends to every node for one
// verification card at configuration time.
type CardSetupData struct {
	VerificationCardID string
	// VerificationCardPublicKey is K_id, of size 1.
	VerificationCardPublicKey group.GqVector
	// EncryptedHashedPCC encrypts the hashed partial Choice Return Codes
	// under the setup public key.
	EncryptedHashedPCC elgamal.Ciphertext
	// EncryptedHashedCK encrypts the hashed confirmation key under the
	// setup public key.
	EncryptedHashedCK elgamal.Ciphertext
}

// Validate checks the card against the context.
func (c CardSetupData) Validate(ctx SetupContext) error {
	if err := ValidateID("verification card id", c.VerificationCardID); err != nil {
		return err
	}
	if c.VerificationCardPublicKey.Size() != 1 {
		return returncodes.Validationf("verification card public key must have size 1, got %d",
			c.VerificationCardPublicKey.Size())
	}
	if c.EncryptedHashedPCC.IsNil() || c.EncryptedHashedCK.IsNil() {
		return returncodes.Validationf("card %s is missing a ciphertext", c.VerificationCardID)
	}
	if c.EncryptedHashedCK.Size() != 1 {
		return returncodes.Validationf("encrypted hashed confirmation key must have size 1, got %d",
			c.EncryptedHashedCK.Size())
	}
	for _, g := range []struct {
		name string
		grp  *group.GqGroup
	}{
		{"verification card public key", c.VerificationCardPublicKey.Get(0).Group()},
		{"encrypted hashed partial codes", c.EncryptedHashedPCC.Group()},
		{"encrypted hashed confirmation key", c.EncryptedHashedCK.Group()},
	} {
		if err := ctx.CheckGroup(g.name, g.grp); err != nil {
			return err
		}
	}
	return nil
}

// EncLongCodeShare is the contribution of one node for one verification
// card at configuration time.
type EncLongCodeShare struct {
	VerificationCardID string
	NodeID             int
	// ExpPCC is EncryptedHashedPCC raised to k_j,id.
	ExpPCC elgamal.Ciphertext
	// ExpCK is EncryptedHashedCK raised to kc_j,id.
	ExpCK elgamal.Ciphertext
	// ChoiceKey is K_j,id = g^k_j,id.
	ChoiceKey group.GqElement
	// VoteCastKey is Kc_j,id = g^kc_j,id.
	VoteCastKey group.GqElement
	PCCProof    zkp.ExponentiationProof
	CKProof     zkp.ExponentiationProof
}

// ExponentiationBases returns (g, gamma, phi_0, ..., phi_l-1) for c, the
// bases of the proofs of an EncLongCodeShare.
func ExponentiationBases(c elgamal.Ciphertext) (group.GqVector, error) {
	return group.NewVector(append([]group.GqElement{c.Group().Generator(), c.Gamma()}, c.Phis().Elements()...)...)
}

// ExponentiationResults returns (key, gamma', phi'_0, ..., phi'_l-1), the
// results matching ExponentiationBases.
func ExponentiationResults(key group.GqElement, c elgamal.Ciphertext) (group.GqVector, error) {
	return group.NewVector(append([]group.GqElement{key, c.Gamma()}, c.Phis().Elements()...)...)
}

// EncLongCodeShareAux returns the auxiliary strings of the proofs of an
// EncLongCodeShare.
func EncLongCodeShareAux(ctx SetupContext, vcID, label string) []string {
	return []string{label, ctx.ElectionEventID, ctx.VerificationCardSetID, vcID}
}
