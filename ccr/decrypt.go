package ccr

import (
	"crypto/cipher"
	"sort"

	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/zkp"
	"golang.org/x/xerrors"
)

// PartialDecryption is the contribution of one node to the decryption of
// the partial Choice Return Codes of a ballot.
type PartialDecryption struct {
	NodeID             int
	VerificationCardID string
	// ExponentiatedGammas are d_j,i = gamma_2^sk_j,i for i < psi.
	ExponentiatedGammas group.GqVector
	// PublicKey is the first psi elements of the node's CCR encryption
	// public key.
	PublicKey group.GqVector
	// Proofs[i] proves that ExponentiatedGammas[i] and PublicKey[i] share
	// the exponent sk_j,i.
	Proofs []zkp.ExponentiationProof
}

func partialDecryptionAux(ctx lib.SetupContext, vcID string) []string {
	return []string{lib.LabelPartialDecryptPCC, ctx.ElectionEventID, vcID}
}

// PartialDecryptPCC raises gamma_2 of the ballot to the first psi secret
// keys of the node and proves each exponentiation. The ballot must have
// been verified by VerifyBallotCCR before.
func PartialDecryptPCC(rand cipher.Stream, ctx lib.NodeContext, params lib.ElectionParameters, ccrKey *elgamal.KeyPair,
	psi int, b *Ballot) (*PartialDecryption, error) {
	if err := validateBallot(ctx, params, psi, b); err != nil {
		return nil, err
	}
	if ccrKey == nil || ccrKey.Size() != params.Phi {
		return nil, returncodes.Validationf("CCR encryption key pair must have size phi=%d", params.Phi)
	}
	if err := ctx.CheckGroup("CCR encryption key", ccrKey.Group()); err != nil {
		return nil, err
	}
	grp := ctx.Group
	gamma := b.EncryptedPCC.Gamma()
	aux := partialDecryptionAux(ctx.SetupContext, b.VerificationCardID)
	d := make([]group.GqElement, psi)
	proofs := make([]zkp.ExponentiationProof, psi)
	for i := 0; i < psi; i++ {
		sk := ccrKey.Secret().Get(i)
		d[i] = gamma.Exponentiate(sk)
		bases, err := group.NewVector(grp.Generator(), gamma)
		if err != nil {
			return nil, err
		}
		results, err := group.NewVector(ccrKey.Public().Get(i), d[i])
		if err != nil {
			return nil, err
		}
		if proofs[i], err = zkp.GenExponentiationProof(rand, bases, results, sk, aux...); err != nil {
			return nil, err
		}
	}
	dVector, err := group.NewVector(d...)
	if err != nil {
		return nil, err
	}
	pk, err := ccrKey.Public().Sub(0, psi)
	if err != nil {
		return nil, err
	}
	return &PartialDecryption{
		NodeID:              ctx.NodeID,
		VerificationCardID:  b.VerificationCardID,
		ExponentiatedGammas: dVector,
		PublicKey:           pk,
		Proofs:              proofs,
	}, nil
}

// verifyPartialDecryption checks the proofs of a partial decryption.
func verifyPartialDecryption(ctx lib.NodeContext, psi int, b *Ballot, pd *PartialDecryption) error {
	if pd.VerificationCardID != b.VerificationCardID {
		return returncodes.Validationf("partial decryption of node %d is for card %s instead of %s",
			pd.NodeID, pd.VerificationCardID, b.VerificationCardID)
	}
	if pd.ExponentiatedGammas.Size() != psi || pd.PublicKey.Size() != psi || len(pd.Proofs) != psi {
		return returncodes.Validationf("partial decryption of node %d must have %d elements", pd.NodeID, psi)
	}
	if err := ctx.CheckGroup("partial decryption", pd.ExponentiatedGammas.Get(0).Group()); err != nil {
		return err
	}
	if err := ctx.CheckGroup("partial decryption public key", pd.PublicKey.Get(0).Group()); err != nil {
		return err
	}
	gamma := b.EncryptedPCC.Gamma()
	aux := partialDecryptionAux(ctx.SetupContext, b.VerificationCardID)
	for i := 0; i < psi; i++ {
		bases, err := group.NewVector(ctx.Group.Generator(), gamma)
		if err != nil {
			return err
		}
		results, err := group.NewVector(pd.PublicKey.Get(i), pd.ExponentiatedGammas.Get(i))
		if err != nil {
			return err
		}
		ok, err := zkp.VerifyExponentiation(bases, results, pd.Proofs[i], aux...)
		if err != nil {
			return xerrors.Errorf("node %d: %w", pd.NodeID, err)
		}
		if !ok {
			return returncodes.ProofFailuref("invalid partial decryption proof %d of node %d for card %s",
				i, pd.NodeID, b.VerificationCardID)
		}
	}
	return nil
}

// DecryptPCC verifies the partial decryptions of the four nodes and removes
// them from the encrypted partial Choice Return Codes. partials must hold
// one contribution of every node, including this one, which must use
// ownKey, the node's CCR encryption public key. The public keys of the
// contributions must combine into ccrKey, the combined key stored for the
// card set.
func DecryptPCC(ctx lib.NodeContext, params lib.ElectionParameters, psi int, ownKey, ccrKey group.GqVector, b *Ballot,
	partials []*PartialDecryption) (group.GqVector, error) {
	if err := validateBallot(ctx, params, psi, b); err != nil {
		return group.GqVector{}, err
	}
	if err := group.CheckSize("CCR Choice Return Codes encryption public key", ccrKey, params.Phi); err != nil {
		return group.GqVector{}, err
	}
	if err := group.CheckSize("own CCR Choice Return Codes encryption public key", ownKey, params.Phi); err != nil {
		return group.GqVector{}, err
	}
	own, err := ownKey.Sub(0, psi)
	if err != nil {
		return group.GqVector{}, err
	}
	if len(partials) != returncodes.NumberOfNodes {
		return group.GqVector{}, returncodes.Validationf("expected %d partial decryptions, got %d",
			returncodes.NumberOfNodes, len(partials))
	}
	sorted := append([]*PartialDecryption(nil), partials...)
	for _, pd := range sorted {
		if pd == nil {
			return group.GqVector{}, returncodes.Validationf("missing partial decryption")
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].NodeID < sorted[j].NodeID })
	for i, pd := range sorted {
		if pd.NodeID != i+1 {
			return group.GqVector{}, returncodes.Validationf("expected one partial decryption of each node, got node %d twice or out of range",
				pd.NodeID)
		}
		if err := verifyPartialDecryption(ctx, psi, b, pd); err != nil {
			return group.GqVector{}, err
		}
		if pd.NodeID == ctx.NodeID && !pd.PublicKey.Equals(own) {
			return group.GqVector{}, returncodes.ProofFailuref("partial decryption of node %d for card %s does not use its own key",
				pd.NodeID, b.VerificationCardID)
		}
	}

	keys := make([]group.GqVector, len(sorted))
	for i, pd := range sorted {
		keys[i] = pd.PublicKey
	}
	combined, err := elgamal.CombinePublicKeys(keys...)
	if err != nil {
		return group.GqVector{}, err
	}
	expected, err := ccrKey.Sub(0, psi)
	if err != nil {
		return group.GqVector{}, err
	}
	if !combined.Equals(expected) {
		return group.GqVector{}, returncodes.ProofFailuref("public keys of the partial decryptions for card %s do not combine into the card set key",
			b.VerificationCardID)
	}

	pCC := make([]group.GqElement, psi)
	for i := range pCC {
		acc := sorted[0].ExponentiatedGammas.Get(i)
		for _, pd := range sorted[1:] {
			acc = acc.Multiply(pd.ExponentiatedGammas.Get(i))
		}
		pCC[i] = b.EncryptedPCC.Phi(i).Divide(acc)
	}
	return group.NewVector(pCC...)
}

