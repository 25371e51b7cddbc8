package service

import (
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/network"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/ccr"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"golang.org/x/xerrors"
)

// Client is a structure to communicate with the ReturnCodes service.
type Client struct {
	*onet.Client
}

// NewClient instantiates a new client.
func NewClient() *Client {
	return &Client{Client: onet.NewClient(returncodes.Suite, ServiceName)}
}

// RemoteNode is the node with id ID run by a conode. It checks the
// signature of every reply against the public key of the conode.
type RemoteNode struct {
	Client         *Client
	ServerIdentity *network.ServerIdentity
	ID             int
	Group          *group.GqGroup
}

// NewRemoteNodes returns the nodes of a roster of four conodes. The
// conode at index j is node j+1.
func NewRemoteNodes(roster *onet.Roster, grp *group.GqGroup) ([]*RemoteNode, error) {
	if roster == nil || len(roster.List) != returncodes.NumberOfNodes {
		return nil, returncodes.Validationf("roster must have %d conodes", returncodes.NumberOfNodes)
	}
	c := NewClient()
	nodes := make([]*RemoteNode, len(roster.List))
	for j, si := range roster.List {
		nodes[j] = &RemoteNode{Client: c, ServerIdentity: si, ID: j + 1, Group: grp}
	}
	return nodes, nil
}

func (n *RemoteNode) send(req, reply interface{}, sig *[]byte) error {
	if err := n.Client.SendProtobuf(n.ServerIdentity, req, reply); err != nil {
		return xerrors.Errorf("%s: %w", n.ServerIdentity.Address, returncodes.FromWire(err))
	}
	return verify(n.ServerIdentity.Public, reply, sig)
}

func (n *RemoteNode) publicKey(reply *PublicKeyReply) (group.GqVector, error) {
	if reply.NodeID != n.ID {
		return group.GqVector{}, returncodes.ProtocolStatef("conode %s is node %d, not node %d",
			n.ServerIdentity.Address, reply.NodeID, n.ID)
	}
	return n.Group.ElementsFromBytes(reply.PublicKey)
}

// GenKeys implements setup.Node.
func (n *RemoteNode) GenKeys(ee string, params lib.ElectionParameters) (group.GqVector, error) {
	reply := &PublicKeyReply{}
	err := n.send(&GenKeys{ElectionEventID: ee, NodeID: n.ID, Group: NewGroup(n.Group), Params: params},
		reply, &reply.Signature)
	if err != nil {
		return group.GqVector{}, err
	}
	return n.publicKey(reply)
}

// PublicKey implements setup.NodeKeys.
func (n *RemoteNode) PublicKey(ee string) (group.GqVector, error) {
	reply := &PublicKeyReply{}
	if err := n.send(&GetPublicKey{ElectionEventID: ee}, reply, &reply.Signature); err != nil {
		return group.GqVector{}, err
	}
	return n.publicKey(reply)
}

// GenEncLongCodeShares implements setup.Node.
func (n *RemoteNode) GenEncLongCodeShares(ee, vcs string, cards []lib.CardSetupData) ([]lib.EncLongCodeShare, error) {
	reply := &GenEncLongCodeSharesReply{}
	err := n.send(&GenEncLongCodeShares{ElectionEventID: ee, VerificationCardSetID: vcs, Cards: cardsToWire(cards)},
		reply, &reply.Signature)
	if err != nil {
		return nil, err
	}
	return sharesFromWire(n.Group, reply.Shares)
}

// UploadCardSet implements setup.Node.
func (n *RemoteNode) UploadCardSet(cs *ccr.CardSet) error {
	reply := &UploadCardSetReply{}
	if err := n.send(NewUploadCardSet(cs), reply, &reply.Signature); err != nil {
		return err
	}
	if reply.Entries != cs.AllowList.Len() {
		return returncodes.ProtocolStatef("node %d stored %d allow list entries, sent %d", n.ID, reply.Entries,
			cs.AllowList.Len())
	}
	return nil
}

// PartialDecrypt sends a ballot to the node and returns its partial
// decryption.
func (n *RemoteNode) PartialDecrypt(ee, vcs string, b *ccr.Ballot) (*ccr.PartialDecryption, error) {
	reply := &PartialDecryptReply{}
	err := n.send(&PartialDecrypt{ElectionEventID: ee, VerificationCardSetID: vcs, Ballot: NewBallot(b)},
		reply, &reply.Signature)
	if err != nil {
		return nil, err
	}
	return reply.Partial.partial(n.Group)
}

// DecryptPCC returns the partial Choice Return Codes the node decrypts from
// the partial decryptions of the four nodes.
func (n *RemoteNode) DecryptPCC(ee, vcs string, b *ccr.Ballot, partials []*ccr.PartialDecryption) (group.GqVector,
	error) {
	req := &DecryptPCC{
		ElectionEventID:       ee,
		VerificationCardSetID: vcs,
		Ballot:                NewBallot(b),
		Partials:              make([]PartialDecryption, len(partials)),
	}
	for i, pd := range partials {
		req.Partials[i] = partialToWire(pd)
	}
	reply := &DecryptPCCReply{}
	if err := n.send(req, reply, &reply.Signature); err != nil {
		return group.GqVector{}, err
	}
	return n.Group.ElementsFromBytes(reply.PartialChoiceReturnCodes)
}

// CreateLCCShare returns the node's long Choice Return Code share.
func (n *RemoteNode) CreateLCCShare(ee, vcs, vcID string, pCC group.GqVector) (*ccr.LCCShare, error) {
	reply := &CreateLCCShareReply{}
	err := n.send(&CreateLCCShare{
		ElectionEventID:          ee,
		VerificationCardSetID:    vcs,
		VerificationCardID:       vcID,
		PartialChoiceReturnCodes: group.GqValues(pCC),
	}, reply, &reply.Signature)
	if err != nil {
		return nil, err
	}
	return reply.Share.share(n.Group)
}

// CreateLVCCShare returns the node's long Vote Cast Return Code share.
func (n *RemoteNode) CreateLVCCShare(ee, vcs, vcID string, ck group.GqElement) (*ccr.LVCCShare, error) {
	reply := &CreateLVCCShareReply{}
	err := n.send(&CreateLVCCShare{
		ElectionEventID:       ee,
		VerificationCardSetID: vcs,
		VerificationCardID:    vcID,
		ConfirmationKey:       ck.Bytes(),
	}, reply, &reply.Signature)
	if err != nil {
		return nil, err
	}
	return reply.Share.share(n.Group)
}

// VerifyLVCCHash asks the node to check the hashed long Vote Cast Return
// Code shares.
func (n *RemoteNode) VerifyLVCCHash(ee, vcs, vcID string, hashedShares []string) (bool, error) {
	reply := &VerifyLVCCHashReply{}
	err := n.send(&VerifyLVCCHash{
		ElectionEventID:       ee,
		VerificationCardSetID: vcs,
		VerificationCardID:    vcID,
		HashedShares:          hashedShares,
	}, reply, &reply.Signature)
	if err != nil {
		return false, err
	}
	return reply.OK, nil
}
