package ccr

import (
	"crypto/cipher"

	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/hash"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/zkp"
)

// LVCCShareInput is the input of CreateLVCCShare for one card.
type LVCCShareInput struct {
	VerificationCardID string
	// ConfirmationKey is CK = HashAndSquare(BCK)^k_id, sent by the voting
	// client.
	ConfirmationKey    group.GqElement
	GenerationSecret   group.ZqElement
	IsLVCCShareCreated bool
}

// LVCCShare is the long Vote Cast Return Code share of one node for one
// card.
type LVCCShare struct {
	NodeID                int
	VerificationCardID    string
	HashedConfirmationKey group.GqElement
	// LongVoteCastReturnCodeShare is lVCC_j = hCK^kc_j,id.
	LongVoteCastReturnCodeShare group.GqElement
	// VoteCastKey is Kc_j,id.
	VoteCastKey group.GqElement
	Proof       zkp.ExponentiationProof
	// HashedShare is hlVCC_j.
	HashedShare string
}

func lvccShareAux(ctx lib.SetupContext, vcID string) []string {
	return []string{lib.LabelCreateLVCCShare, ctx.ElectionEventID, ctx.VerificationCardSetID, vcID}
}

// CreateLVCCShare computes the node's share of the long Vote Cast Return
// Code of a card and its hash.
func CreateLVCCShare(rand cipher.Stream, ctx lib.NodeContext, in *LVCCShareInput) (*LVCCShare, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, returncodes.Validationf("input is required")
	}
	vcID := in.VerificationCardID
	if err := lib.ValidateID("verification card id", vcID); err != nil {
		return nil, err
	}
	if in.ConfirmationKey.IsNil() {
		return nil, returncodes.Validationf("confirmation key is required")
	}
	if err := ctx.CheckGroup("confirmation key", in.ConfirmationKey.Group()); err != nil {
		return nil, err
	}
	if in.GenerationSecret.IsNil() || !ctx.Group.HasSameOrderAs(in.GenerationSecret.Group()) {
		return nil, returncodes.Validationf("generation secret must have the order of the context group")
	}
	if in.IsLVCCShareCreated {
		return nil, returncodes.ProtocolStatef("long Vote Cast Return Code share already created for verification card %s", vcID)
	}

	grp := ctx.Group
	kc, err := VoterVoteCastReturnCodeKey(ctx.SetupContext, in.GenerationSecret, vcID)
	if err != nil {
		return nil, err
	}
	hCK, err := hash.HashAndSquare(in.ConfirmationKey.Value(), grp)
	if err != nil {
		return nil, err
	}
	lVCC := hCK.Exponentiate(kc)
	key := grp.Generator().Exponentiate(kc)

	bases, err := group.NewVector(grp.Generator(), hCK)
	if err != nil {
		return nil, err
	}
	results, err := group.NewVector(key, lVCC)
	if err != nil {
		return nil, err
	}
	proof, err := zkp.GenExponentiationProof(rand, bases, results, kc, lvccShareAux(ctx.SetupContext, vcID)...)
	if err != nil {
		return nil, err
	}
	hashed, err := lib.HashedLVCCShare(ctx.SetupContext, vcID, ctx.NodeID, lVCC)
	if err != nil {
		return nil, err
	}
	return &LVCCShare{
		NodeID:                      ctx.NodeID,
		VerificationCardID:          vcID,
		HashedConfirmationKey:       hCK,
		LongVoteCastReturnCodeShare: lVCC,
		VoteCastKey:                 key,
		Proof:                       proof,
		HashedShare:                 hashed,
	}, nil
}

// VerifyLVCCShare checks the proof of a long Vote Cast Return Code share.
func VerifyLVCCShare(ctx lib.SetupContext, share *LVCCShare) (bool, error) {
	if share == nil || share.HashedConfirmationKey.IsNil() || share.VoteCastKey.IsNil() ||
		share.LongVoteCastReturnCodeShare.IsNil() {
		return false, returncodes.Validationf("long Vote Cast Return Code share is incomplete")
	}
	grp := share.VoteCastKey.Group()
	bases, err := group.NewVector(grp.Generator(), share.HashedConfirmationKey)
	if err != nil {
		return false, err
	}
	results, err := group.NewVector(share.VoteCastKey, share.LongVoteCastReturnCodeShare)
	if err != nil {
		return false, err
	}
	return zkp.VerifyExponentiation(bases, results, share.Proof, lvccShareAux(ctx, share.VerificationCardID)...)
}

// VerifyLVCCHash checks that the hashed long Vote Cast Return Code shares
// of the four nodes, in node order, combine into an entry of the allow
// list.
func VerifyLVCCHash(ctx lib.NodeContext, vcID string, hashedShares []string, allowList *lib.AllowList) (bool, error) {
	if err := ctx.Validate(); err != nil {
		return false, err
	}
	if err := lib.ValidateID("verification card id", vcID); err != nil {
		return false, err
	}
	if allowList == nil {
		return false, returncodes.ProtocolStatef("no long Vote Cast Return Code allow list for verification card set %s",
			ctx.VerificationCardSetID)
	}
	entry, err := lib.LVCCAllowListEntry(ctx.SetupContext, vcID, hashedShares)
	if err != nil {
		return false, err
	}
	return allowList.Contains(entry), nil
}
