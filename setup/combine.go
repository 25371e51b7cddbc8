package setup

import (
	"runtime"

	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/zkp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// VerifyEncLongCodeShares checks the proofs of the contributions of node
// nodeID for the given cards. shares[i] must be the contribution for
// cards[i]. A proof that does not verify is reported as ErrProofFailure
// naming the node and the card.
func VerifyEncLongCodeShares(ctx lib.SetupContext, nodeID int, cards []lib.CardSetupData,
	shares []lib.EncLongCodeShare) error {
	if len(cards) != len(shares) {
		return returncodes.Validationf("node %d sent %d contributions for %d cards", nodeID, len(shares), len(cards))
	}
	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i := range cards {
		card, share := cards[i], shares[i]
		eg.Go(func() error {
			return verifyEncLongCodeShare(ctx, nodeID, card, share)
		})
	}
	return eg.Wait()
}

func verifyEncLongCodeShare(ctx lib.SetupContext, nodeID int, card lib.CardSetupData, share lib.EncLongCodeShare) error {
	if share.NodeID != nodeID {
		return returncodes.Validationf("contribution of node %d claims to be from node %d", nodeID, share.NodeID)
	}
	if share.VerificationCardID != card.VerificationCardID {
		return returncodes.Validationf("node %d sent a contribution for card %s instead of %s",
			nodeID, share.VerificationCardID, card.VerificationCardID)
	}
	if share.ExpPCC.IsNil() || share.ExpCK.IsNil() || share.ChoiceKey.IsNil() || share.VoteCastKey.IsNil() {
		return returncodes.Validationf("contribution of node %d for card %s is incomplete", nodeID, card.VerificationCardID)
	}
	if !share.ExpPCC.IsCompatible(card.EncryptedHashedPCC) || !share.ExpCK.IsCompatible(card.EncryptedHashedCK) {
		return returncodes.Validationf("contribution of node %d for card %s does not match the card", nodeID,
			card.VerificationCardID)
	}
	for _, check := range []struct {
		label     string
		key       group.GqElement
		encrypted elgamal.Ciphertext
		exp       elgamal.Ciphertext
		proof     zkp.ExponentiationProof
	}{
		{lib.LabelGenEncLongCodeShares, share.ChoiceKey, card.EncryptedHashedPCC, share.ExpPCC, share.PCCProof},
		{lib.LabelEncryptedHashedConfirmKey, share.VoteCastKey, card.EncryptedHashedCK, share.ExpCK, share.CKProof},
	} {
		bases, err := lib.ExponentiationBases(check.encrypted)
		if err != nil {
			return err
		}
		results, err := lib.ExponentiationResults(check.key, check.exp)
		if err != nil {
			return err
		}
		ok, err := zkp.VerifyExponentiation(bases, results, check.proof,
			lib.EncLongCodeShareAux(ctx, card.VerificationCardID, check.label)...)
		if err != nil {
			return xerrors.Errorf("node %d, card %s: %w", nodeID, card.VerificationCardID, err)
		}
		if !ok {
			return returncodes.ProofFailuref("node %d: invalid %s proof for card %s", nodeID, check.label,
				card.VerificationCardID)
		}
	}
	return nil
}

// CombinedCodes is the output of CombineEncLongCodeShares.
type CombinedCodes struct {
	// EncryptedPreChoiceReturnCodes[i] encrypts the pre-Choice Return Codes
	// of voter i.
	EncryptedPreChoiceReturnCodes []elgamal.Ciphertext
	// PreVoteCastReturnCodes[i] is the pre-Vote Cast Return Code of voter i.
	PreVoteCastReturnCodes []group.GqElement
	// LVCCAllowList holds the digests of the hashed long Vote Cast Return
	// Code shares of every voter.
	LVCCAllowList *lib.AllowList
}

// CombineEncLongCodeShares combines the contributions of the four nodes.
// Row i of expPCC and expCK holds the contributions of nodes 1 to 4 for
// the voter vcIDs[i].
func CombineEncLongCodeShares(ctx lib.SetupContext, setupKey *elgamal.KeyPair, expPCC, expCK elgamal.CiphertextMatrix,
	vcIDs []string) (*CombinedCodes, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	if setupKey == nil {
		return nil, returncodes.Validationf("setup key pair is required")
	}
	if err := ctx.CheckGroup("setup key", setupKey.Group()); err != nil {
		return nil, err
	}
	n := len(vcIDs)
	if n == 0 {
		return nil, returncodes.Validationf("no verification cards to combine")
	}
	if err := group.CheckDimensions("exponentiated encrypted partial codes", expPCC, n, returncodes.NumberOfNodes); err != nil {
		return nil, err
	}
	if err := group.CheckDimensions("exponentiated encrypted confirmation keys", expCK, n, returncodes.NumberOfNodes); err != nil {
		return nil, err
	}
	if expCK.Get(0, 0).Size() != 1 {
		return nil, returncodes.Validationf("exponentiated encrypted confirmation keys must have size 1, got %d",
			expCK.Get(0, 0).Size())
	}
	if err := ctx.CheckGroup("exponentiated encrypted partial codes", expPCC.Get(0, 0).Group()); err != nil {
		return nil, err
	}
	if err := ctx.CheckGroup("exponentiated encrypted confirmation keys", expCK.Get(0, 0).Group()); err != nil {
		return nil, err
	}
	for _, id := range vcIDs {
		if err := lib.ValidateID("verification card id", id); err != nil {
			return nil, err
		}
	}

	out := &CombinedCodes{
		EncryptedPreChoiceReturnCodes: make([]elgamal.Ciphertext, n),
		PreVoteCastReturnCodes:        make([]group.GqElement, n),
	}
	entries := make([]string, n)
	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			var err error
			out.EncryptedPreChoiceReturnCodes[i], err = elgamal.Product(expPCC.Row(i))
			if err != nil {
				return err
			}
			out.PreVoteCastReturnCodes[i], entries[i], err = combineConfirmationKey(ctx, setupKey, expCK.Row(i), vcIDs[i])
			if err != nil {
				return xerrors.Errorf("card %s: %w", vcIDs[i], err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	var err error
	if out.LVCCAllowList, err = lib.NewAllowList(entries); err != nil {
		return nil, err
	}
	log.Lvlf2("Combined the contributions for %d cards of card set %s", n, ctx.VerificationCardSetID)
	return out, nil
}

func combineConfirmationKey(ctx lib.SetupContext, setupKey *elgamal.KeyPair, row elgamal.CiphertextVector,
	vcID string) (group.GqElement, string, error) {
	pVCC := ctx.Group.Identity()
	hashed := make([]string, row.Size())
	for j := 0; j < row.Size(); j++ {
		lVCC, err := elgamal.Decrypt(row.Get(j), setupKey.Secret())
		if err != nil {
			return group.GqElement{}, "", err
		}
		pVCC = pVCC.Multiply(lVCC.Get(0))
		if hashed[j], err = lib.HashedLVCCShare(ctx, vcID, j+1, lVCC.Get(0)); err != nil {
			return group.GqElement{}, "", err
		}
	}
	entry, err := lib.LVCCAllowListEntry(ctx, vcID, hashed)
	if err != nil {
		return group.GqElement{}, "", err
	}
	return pVCC, entry, nil
}
