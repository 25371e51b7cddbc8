package ccr

import (
	"crypto/cipher"

	"go.dedis.ch/kyber/v3/util/random"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"golang.org/x/xerrors"
)

// Node runs the algorithms of one control component against its Store. It
// reads the one-shot flags before an operation and sets them after it.
type Node struct {
	ID    int
	Group *group.GqGroup
	Store Store
	// Rand is the randomness of the proofs. A nil Rand uses a fresh
	// random stream.
	Rand cipher.Stream
}

// NewNode returns a node with the given id in [1, NumberOfNodes].
func NewNode(id int, grp *group.GqGroup, store Store) (*Node, error) {
	if id < 1 || id > returncodes.NumberOfNodes {
		return nil, returncodes.Validationf("node id must be in [1, %d], got %d", returncodes.NumberOfNodes, id)
	}
	if grp == nil || store == nil {
		return nil, returncodes.Validationf("group and store are required")
	}
	return &Node{ID: id, Group: grp, Store: store}, nil
}

func (n *Node) rand() cipher.Stream {
	if n.Rand != nil {
		return n.Rand
	}
	return random.New()
}

func (n *Node) context(ee, vcs string) (lib.NodeContext, error) {
	return lib.NewNodeContext(n.ID, ee, vcs, n.Group)
}

// GenKeys generates and stores the key material of an election event and
// returns the CCR Choice Return Codes encryption public key.
func (n *Node) GenKeys(ee string, params lib.ElectionParameters) (group.GqVector, error) {
	if err := lib.ValidateID("election event id", ee); err != nil {
		return group.GqVector{}, err
	}
	keys, err := GenKeysCCR(n.rand(), n.Group, params)
	if err != nil {
		return group.GqVector{}, err
	}
	if err := n.Store.SaveKeys(ee, keys); err != nil {
		return group.GqVector{}, err
	}
	log.Lvlf2("Node %d: generated keys for election event %s", n.ID, ee)
	return keys.CCREncryption.Public(), nil
}

// PublicKey returns the stored CCR Choice Return Codes encryption public
// key of an election event.
func (n *Node) PublicKey(ee string) (group.GqVector, error) {
	keys, err := n.Store.Keys(ee)
	if err != nil {
		return group.GqVector{}, err
	}
	return keys.CCREncryption.Public(), nil
}

// GenEncLongCodeShares computes the node's encrypted long code shares of a
// chunk of cards and remembers their public keys.
func (n *Node) GenEncLongCodeShares(ee, vcs string, cards []lib.CardSetupData) ([]lib.EncLongCodeShare, error) {
	ctx, err := n.context(ee, vcs)
	if err != nil {
		return nil, err
	}
	keys, err := n.Store.Keys(ee)
	if err != nil {
		return nil, err
	}
	shares, err := GenEncLongCodeShares(n.rand(), ctx, keys, cards)
	if err != nil {
		return nil, err
	}
	cardKeys := make(map[string]group.GqElement, len(cards))
	for _, c := range cards {
		cardKeys[c.VerificationCardID] = c.VerificationCardPublicKey.Get(0)
	}
	if err := n.Store.SaveCardPublicKeys(ee, vcs, cardKeys); err != nil {
		return nil, err
	}
	return shares, nil
}

// UploadCardSet stores the configuration of a card set.
func (n *Node) UploadCardSet(cs *CardSet) error {
	if cs == nil {
		return returncodes.Validationf("card set is required")
	}
	ctx, err := n.context(cs.ElectionEventID, cs.VerificationCardSetID)
	if err != nil {
		return err
	}
	if err := cs.Validate(ctx.SetupContext); err != nil {
		return err
	}
	log.Lvlf2("Node %d: card set %s has %d allow list entries", n.ID, cs.VerificationCardSetID, cs.AllowList.Len())
	return n.Store.SaveCardSet(cs)
}

func (n *Node) load(ee, vcs string) (lib.NodeContext, *CardSet, error) {
	ctx, err := n.context(ee, vcs)
	if err != nil {
		return lib.NodeContext{}, nil, err
	}
	cs, err := n.Store.CardSet(ee, vcs)
	if err != nil {
		return lib.NodeContext{}, nil, err
	}
	return ctx, cs, nil
}

// VerifyBallot checks the proofs of a ballot against the stored keys.
func (n *Node) VerifyBallot(ee, vcs string, b *Ballot) (bool, error) {
	ctx, cs, err := n.load(ee, vcs)
	if err != nil {
		return false, err
	}
	return n.verifyBallot(ctx, cs, b)
}

func (n *Node) verifyBallot(ctx lib.NodeContext, cs *CardSet, b *Ballot) (bool, error) {
	if b == nil {
		return false, returncodes.Validationf("ballot is required")
	}
	cardKey, err := n.Store.CardPublicKey(ctx.ElectionEventID, ctx.VerificationCardSetID, b.VerificationCardID)
	if err != nil {
		return false, err
	}
	return VerifyBallotCCR(ctx, cs.Params, cs.Correctness.TotalNumberOfSelections(), b, BallotKeys{
		CardKey:     cardKey,
		ElectionKey: cs.ElectionPublicKey,
		CCRKey:      cs.CCRKey,
	})
}

// PartialDecrypt verifies a ballot and computes the node's partial
// decryption of its encrypted partial Choice Return Codes. It succeeds only
// once per card.
func (n *Node) PartialDecrypt(ee, vcs string, b *Ballot) (*PartialDecryption, error) {
	ctx, cs, err := n.load(ee, vcs)
	if err != nil {
		return nil, err
	}
	ok, err := n.verifyBallot(ctx, cs, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, returncodes.ProofFailuref("invalid ballot proofs for verification card %s", b.VerificationCardID)
	}
	if err := n.checkFlag(FlagPartialDecrypted, ee, vcs, b.VerificationCardID); err != nil {
		return nil, err
	}
	keys, err := n.Store.Keys(ee)
	if err != nil {
		return nil, err
	}
	pd, err := PartialDecryptPCC(n.rand(), ctx, cs.Params, keys.CCREncryption,
		cs.Correctness.TotalNumberOfSelections(), b)
	if err != nil {
		return nil, err
	}
	if err := n.setFlag(FlagPartialDecrypted, ee, vcs, b.VerificationCardID); err != nil {
		return nil, err
	}
	return pd, nil
}

// DecryptPCC combines the partial decryptions of the four nodes.
func (n *Node) DecryptPCC(ee, vcs string, b *Ballot, partials []*PartialDecryption) (group.GqVector, error) {
	ctx, cs, err := n.load(ee, vcs)
	if err != nil {
		return group.GqVector{}, err
	}
	keys, err := n.Store.Keys(ee)
	if err != nil {
		return group.GqVector{}, err
	}
	return DecryptPCC(ctx, cs.Params, cs.Correctness.TotalNumberOfSelections(), keys.CCREncryption.Public(),
		cs.CCRKey, b, partials)
}

// CreateLCCShare computes the node's long Choice Return Code share of a
// card. It succeeds only once per card.
func (n *Node) CreateLCCShare(ee, vcs, vcID string, pCC group.GqVector) (*LCCShare, error) {
	ctx, cs, err := n.load(ee, vcs)
	if err != nil {
		return nil, err
	}
	keys, err := n.Store.Keys(ee)
	if err != nil {
		return nil, err
	}
	created, err := n.Store.IsSet(FlagLCCShareCreated, ee, vcs, vcID)
	if err != nil {
		return nil, err
	}
	share, err := CreateLCCShare(n.rand(), ctx, &LCCShareInput{
		VerificationCardID:       vcID,
		PartialChoiceReturnCodes: pCC,
		Correctness:              cs.Correctness,
		AllowList:                cs.AllowList,
		GenerationSecret:         keys.GenerationSecret,
		IsLCCShareCreated:        created,
	})
	if err != nil {
		return nil, err
	}
	if err := n.setFlag(FlagLCCShareCreated, ee, vcs, vcID); err != nil {
		return nil, err
	}
	return share, nil
}

// CreateLVCCShare computes the node's long Vote Cast Return Code share of a
// card from the confirmation key. It succeeds only once per card.
func (n *Node) CreateLVCCShare(ee, vcs, vcID string, ck group.GqElement) (*LVCCShare, error) {
	ctx, err := n.context(ee, vcs)
	if err != nil {
		return nil, err
	}
	keys, err := n.Store.Keys(ee)
	if err != nil {
		return nil, err
	}
	created, err := n.Store.IsSet(FlagLVCCShareCreated, ee, vcs, vcID)
	if err != nil {
		return nil, err
	}
	share, err := CreateLVCCShare(n.rand(), ctx, &LVCCShareInput{
		VerificationCardID: vcID,
		ConfirmationKey:    ck,
		GenerationSecret:   keys.GenerationSecret,
		IsLVCCShareCreated: created,
	})
	if err != nil {
		return nil, err
	}
	if err := n.setFlag(FlagLVCCShareCreated, ee, vcs, vcID); err != nil {
		return nil, err
	}
	return share, nil
}

// VerifyLVCCHash checks the hashed long Vote Cast Return Code shares of the
// four nodes against the stored allow list.
func (n *Node) VerifyLVCCHash(ee, vcs, vcID string, hashedShares []string) (bool, error) {
	ctx, cs, err := n.load(ee, vcs)
	if err != nil {
		return false, err
	}
	return VerifyLVCCHash(ctx, vcID, hashedShares, cs.LVCCAllowList)
}

func (n *Node) checkFlag(flag Flag, ee, vcs, vcID string) error {
	set, err := n.Store.IsSet(flag, ee, vcs, vcID)
	if err != nil {
		return err
	}
	if set {
		return returncodes.ProtocolStatef("%s already done for verification card %s", flag, vcID)
	}
	return nil
}

// setFlag sets a one-shot flag. Losing a race to a concurrent call of the
// same operation discards the result.
func (n *Node) setFlag(flag Flag, ee, vcs, vcID string) error {
	ok, err := n.Store.CheckAndSet(flag, ee, vcs, vcID)
	if err != nil {
		return xerrors.Errorf("setting %s: %w", flag, err)
	}
	if !ok {
		return returncodes.ProtocolStatef("%s already done for verification card %s", flag, vcID)
	}
	return nil
}
