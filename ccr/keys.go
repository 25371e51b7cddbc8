// Package ccr implements the algorithms of a control-component node (CCR)
// and the Node that runs them against its persisted state.
//
// Every algorithm is a pure function of its inputs. The one-shot flags,
// the allow lists and the key material are read from and written to a
// Store by the Node only.
package ccr

import (
	"crypto/cipher"

	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/symmetric"
	"golang.org/x/xerrors"
)

// KeySet is the key material of one node for one election event.
type KeySet struct {
	// CCREncryption is the CCR Choice Return Codes encryption key pair of
	// size phi. The public keys of the four nodes combine into the key the
	// voters encrypt their partial codes with.
	CCREncryption *elgamal.KeyPair
	// GenerationSecret is k'_j, from which the per-voter exponents are
	// derived.
	GenerationSecret group.ZqElement
}

// GenKeysCCR generates the key material of a node.
func GenKeysCCR(rand cipher.Stream, grp *group.GqGroup, params lib.ElectionParameters) (*KeySet, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	kp, err := elgamal.GenKeyPair(rand, grp, params.Phi)
	if err != nil {
		return nil, xerrors.Errorf("generating CCR encryption keys: %w", err)
	}
	log.Lvlf3("Generated CCR keys of size %d", params.Phi)
	return &KeySet{CCREncryption: kp, GenerationSecret: grp.Exponents().Random(rand)}, nil
}

func (ks *KeySet) validate(ctx lib.NodeContext) error {
	if ks == nil || ks.CCREncryption == nil || ks.GenerationSecret.IsNil() {
		return returncodes.Validationf("node %d has incomplete key material", ctx.NodeID)
	}
	if !ctx.Group.HasSameOrderAs(ks.GenerationSecret.Group()) {
		return returncodes.Validationf("generation secret must have the order of the context group")
	}
	return ctx.CheckGroup("CCR encryption key", ks.CCREncryption.Group())
}

// secretBytes is the fixed-length big-endian encoding of k.
func secretBytes(k group.ZqElement) []byte {
	return k.Value().FillBytes(make([]byte, (k.Group().Q().BitLen()+7)/8))
}

// VoterChoiceReturnCodeKey derives k_j,id, the exponent node j applies to
// the partial Choice Return Codes of card vcID.
func VoterChoiceReturnCodeKey(ctx lib.SetupContext, secret group.ZqElement, vcID string) (group.ZqElement, error) {
	return symmetric.KDFToZq(secretBytes(secret),
		[]string{lib.LabelVoterChoiceGeneration, ctx.ElectionEventID, ctx.VerificationCardSetID, vcID},
		ctx.Group.Exponents())
}

// VoterVoteCastReturnCodeKey derives kc_j,id, the exponent node j applies
// to the confirmation key of card vcID.
func VoterVoteCastReturnCodeKey(ctx lib.SetupContext, secret group.ZqElement, vcID string) (group.ZqElement, error) {
	return symmetric.KDFToZq(secretBytes(secret),
		[]string{lib.LabelVoterVoteCastGeneration, ctx.ElectionEventID, ctx.VerificationCardSetID, vcID},
		ctx.Group.Exponents())
}
