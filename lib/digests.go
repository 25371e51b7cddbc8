package lib

import (
	"encoding/base64"

	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/hash"
)

// AllowListEntry returns the allow list digest of a hashed partial Choice
// Return Code.
func AllowListEntry(ctx SetupContext, vcID, correctnessID string, hpCC group.GqElement) (string, error) {
	return hash.RecursiveHashBase64(LabelGenVerDat, ctx.ElectionEventID, vcID, correctnessID, hpCC)
}

// HashedLVCCShare returns hlVCC_j, the hash of the long Vote Cast Return
// Code share of node j.
func HashedLVCCShare(ctx SetupContext, vcID string, nodeID int, lVCC group.GqElement) (string, error) {
	return hash.RecursiveHashBase64(LabelCreateLVCCShare, ctx.ElectionEventID, ctx.VerificationCardSetID,
		vcID, nodeID, lVCC)
}

// LVCCAllowListEntry returns the allow list digest of the four hashed long
// Vote Cast Return Code shares of a voter, in node order.
func LVCCAllowListEntry(ctx SetupContext, vcID string, hashedShares []string) (string, error) {
	if len(hashedShares) != returncodes.NumberOfNodes {
		return "", returncodes.Validationf("expected %d hashed shares, got %d", returncodes.NumberOfNodes, len(hashedShares))
	}
	return hash.RecursiveHashBase64(LabelVerifyLVCCHash, ctx.ElectionEventID, ctx.VerificationCardSetID,
		vcID, hashedShares)
}

// LongChoiceReturnCode returns lCC, the long Choice Return Code of a
// pre-Choice Return Code.
func LongChoiceReturnCode(ctx SetupContext, vcID, correctnessID string, pC group.GqElement) ([]byte, error) {
	return hash.RecursiveHash(LabelLongChoiceReturnCode, ctx.ElectionEventID, vcID, correctnessID, pC)
}

// LongVoteCastReturnCode returns lVCC, the long Vote Cast Return Code of a
// pre-Vote Cast Return Code.
func LongVoteCastReturnCode(ctx SetupContext, vcID string, pVCC group.GqElement) ([]byte, error) {
	return hash.RecursiveHash(LabelLongVoteCastReturnCode, ctx.ElectionEventID, vcID, pVCC)
}

// TableKey returns the mapping table key of a long return code.
func TableKey(longCode []byte) (string, error) {
	return hash.RecursiveHashBase64(longCode)
}

// DecodeBase64 decodes a table value or digest.
func DecodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, returncodes.Validationf("invalid base64: %v", err)
	}
	return b, nil
}
