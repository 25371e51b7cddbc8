package ccr

import (
	"crypto/cipher"

	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/hash"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/zkp"
)

// LCCShareInput is the input of CreateLCCShare for one card.
type LCCShareInput struct {
	VerificationCardID string
	// PartialChoiceReturnCodes are the psi decrypted partial Choice Return
	// Codes of the ballot.
	PartialChoiceReturnCodes group.GqVector
	Correctness              *lib.CombinedCorrectnessInformation
	AllowList                *lib.AllowList
	GenerationSecret         group.ZqElement
	// IsLCCShareCreated is the one-shot flag of the card.
	IsLCCShareCreated bool
}

// LCCShare is the long Choice Return Code share of one node for one card.
type LCCShare struct {
	NodeID                         int
	VerificationCardID             string
	HashedPartialChoiceReturnCodes group.GqVector
	// LongChoiceReturnCodeShare is lCC_j,i = hpCC_i^k_j,id.
	LongChoiceReturnCodeShare group.GqVector
	// ChoiceKey is K_j,id.
	ChoiceKey group.GqElement
	Proof     zkp.ExponentiationProof
}

func lccShareAux(ctx lib.SetupContext, vcID string) []string {
	return []string{lib.LabelCreateLCCShare, ctx.ElectionEventID, ctx.VerificationCardSetID, vcID}
}

func (in *LCCShareInput) validate(ctx lib.NodeContext) error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	if in == nil {
		return returncodes.Validationf("input is required")
	}
	if err := lib.ValidateID("verification card id", in.VerificationCardID); err != nil {
		return err
	}
	if in.Correctness == nil {
		return returncodes.Validationf("correctness information is required")
	}
	if in.GenerationSecret.IsNil() || !ctx.Group.HasSameOrderAs(in.GenerationSecret.Group()) {
		return returncodes.Validationf("generation secret must have the order of the context group")
	}
	codes := in.PartialChoiceReturnCodes
	if codes.IsEmpty() {
		return returncodes.Validationf("partial Choice Return Codes are required")
	}
	psi := in.Correctness.TotalNumberOfSelections()
	if codes.Size() != psi {
		return returncodes.Validationf("expected %d partial Choice Return Codes, got %d", psi, codes.Size())
	}
	if err := ctx.CheckGroup("partial Choice Return Codes", codes.Get(0).Group()); err != nil {
		return err
	}
	if !group.AreDistinct(codes) {
		return returncodes.Validationf("partial Choice Return Codes of card %s must be distinct", in.VerificationCardID)
	}
	if in.IsLCCShareCreated {
		return returncodes.ProtocolStatef("long Choice Return Code share already created for verification card %s",
			in.VerificationCardID)
	}
	if in.AllowList == nil {
		return returncodes.ProtocolStatef("no allow list for verification card set %s", ctx.VerificationCardSetID)
	}
	return nil
}

// CreateLCCShare computes the node's share of the long Choice Return Codes
// of a card. Every hashed partial code must be in the allow list.
func CreateLCCShare(rand cipher.Stream, ctx lib.NodeContext, in *LCCShareInput) (*LCCShare, error) {
	if err := in.validate(ctx); err != nil {
		return nil, err
	}
	grp := ctx.Group
	vcID := in.VerificationCardID
	k, err := VoterChoiceReturnCodeKey(ctx.SetupContext, in.GenerationSecret, vcID)
	if err != nil {
		return nil, err
	}

	correctnessIDs := in.Correctness.CorrectnessIDsBySelection()
	psi := in.PartialChoiceReturnCodes.Size()
	hpCC := make([]group.GqElement, psi)
	lCC := make([]group.GqElement, psi)
	for i := 0; i < psi; i++ {
		hpCC[i], err = hash.HashAndSquare(in.PartialChoiceReturnCodes.Get(i).Value(), grp)
		if err != nil {
			return nil, err
		}
		entry, err := lib.AllowListEntry(ctx.SetupContext, vcID, correctnessIDs[i], hpCC[i])
		if err != nil {
			return nil, err
		}
		if !in.AllowList.Contains(entry) {
			return nil, returncodes.Validationf("partial Choice Return Code %d of verification card %s is not in the allow list",
				i, vcID)
		}
		lCC[i] = hpCC[i].Exponentiate(k)
	}

	hashed, err := group.NewVector(hpCC...)
	if err != nil {
		return nil, err
	}
	shares, err := group.NewVector(lCC...)
	if err != nil {
		return nil, err
	}
	key := grp.Generator().Exponentiate(k)
	bases, err := hashed.Prepend(grp.Generator())
	if err != nil {
		return nil, err
	}
	results, err := shares.Prepend(key)
	if err != nil {
		return nil, err
	}
	proof, err := zkp.GenExponentiationProof(rand, bases, results, k, lccShareAux(ctx.SetupContext, vcID)...)
	if err != nil {
		return nil, err
	}
	return &LCCShare{
		NodeID:                         ctx.NodeID,
		VerificationCardID:             vcID,
		HashedPartialChoiceReturnCodes: hashed,
		LongChoiceReturnCodeShare:      shares,
		ChoiceKey:                      key,
		Proof:                          proof,
	}, nil
}

// VerifyLCCShare checks the proof of a long Choice Return Code share.
func VerifyLCCShare(ctx lib.SetupContext, share *LCCShare) (bool, error) {
	if share == nil || share.HashedPartialChoiceReturnCodes.IsEmpty() || share.ChoiceKey.IsNil() {
		return false, returncodes.Validationf("long Choice Return Code share is incomplete")
	}
	grp := share.ChoiceKey.Group()
	bases, err := share.HashedPartialChoiceReturnCodes.Prepend(grp.Generator())
	if err != nil {
		return false, err
	}
	results, err := share.LongChoiceReturnCodeShare.Prepend(share.ChoiceKey)
	if err != nil {
		return false, err
	}
	return zkp.VerifyExponentiation(bases, results, share.Proof, lccShareAux(ctx, share.VerificationCardID)...)
}
