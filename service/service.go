// Package service runs one control-component node of the Return Codes
// protocol in a conode, and lets a setup authority and a voting server
// drive the four nodes of a roster.
//
// Every reply is signed by the conode with the private key of its server
// identity, over the protobuf encoding of the reply with an empty
// signature.
package service

import (
	"sync"

	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/sign/schnorr"
	"go.dedis.ch/kyber/v3/util/random"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/protobuf"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/ccr"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	bbolt "go.etcd.io/bbolt"
	"golang.org/x/xerrors"
)

// ServiceName is the name used to register the service.
const ServiceName = "ReturnCodes"

var serviceID onet.ServiceID

func init() {
	var err error
	serviceID, err = onet.RegisterNewService(ServiceName, newService)
	log.ErrFatal(err)
}

// Service is one node of every election event the conode takes part in.
type Service struct {
	*onet.ServiceProcessor

	db     *bbolt.DB
	bucket []byte

	// groups caches the parsed group of each election event.
	groups     map[string]*group.GqGroup
	groupsLock sync.Mutex
}

// GenKeys generates the keys of the node this conode is for a new election
// event. The keys, the node id and the group of the event are stored
// together.
func (s *Service) GenKeys(req *GenKeys) (*PublicKeyReply, error) {
	if req.NodeID < 1 || req.NodeID > returncodes.NumberOfNodes {
		return nil, s.failed("GenKeys", returncodes.Validationf("node id must be in [1, %d], got %d",
			returncodes.NumberOfNodes, req.NodeID))
	}
	if err := req.Params.Validate(); err != nil {
		return nil, s.failed("GenKeys", err)
	}
	grp, err := req.Group.GqGroup()
	if err != nil {
		return nil, s.failed("GenKeys", err)
	}
	if err := lib.ValidateID("election event id", req.ElectionEventID); err != nil {
		return nil, s.failed("GenKeys", err)
	}
	ks, err := ccr.GenKeysCCR(random.New(), grp, req.Params)
	if err != nil {
		return nil, s.failed("GenKeys", err)
	}
	err = putEvent(s.db, s.bucket, req.ElectionEventID, &event{NodeID: req.NodeID, Group: req.Group}, ks)
	if err != nil {
		return nil, s.failed("GenKeys", err)
	}
	log.Lvlf1("%s: node %d of election event %s", s.ServerIdentity(), req.NodeID, req.ElectionEventID)
	reply := &PublicKeyReply{NodeID: req.NodeID, PublicKey: group.GqValues(ks.CCREncryption.Public())}
	return reply, s.sign(reply, &reply.Signature)
}

// GetPublicKey returns the public key generated by GenKeys.
func (s *Service) GetPublicKey(req *GetPublicKey) (*PublicKeyReply, error) {
	n, err := s.node(req.ElectionEventID)
	if err != nil {
		return nil, s.failed("GetPublicKey", err)
	}
	pk, err := n.PublicKey(req.ElectionEventID)
	if err != nil {
		return nil, s.failed("GetPublicKey", err)
	}
	reply := &PublicKeyReply{NodeID: n.ID, PublicKey: group.GqValues(pk)}
	return reply, s.sign(reply, &reply.Signature)
}

// GenEncLongCodeShares computes the node's contributions to a chunk of
// cards.
func (s *Service) GenEncLongCodeShares(req *GenEncLongCodeShares) (*GenEncLongCodeSharesReply, error) {
	n, err := s.node(req.ElectionEventID)
	if err != nil {
		return nil, s.failed("GenEncLongCodeShares", err)
	}
	cards, err := cardsFromWire(n.Group, req.Cards)
	if err != nil {
		return nil, s.failed("GenEncLongCodeShares", err)
	}
	shares, err := n.GenEncLongCodeShares(req.ElectionEventID, req.VerificationCardSetID, cards)
	if err != nil {
		return nil, s.failed("GenEncLongCodeShares", err)
	}
	reply := &GenEncLongCodeSharesReply{Shares: sharesToWire(shares)}
	return reply, s.sign(reply, &reply.Signature)
}

// UploadCardSet stores the configuration of a card set.
func (s *Service) UploadCardSet(req *UploadCardSet) (*UploadCardSetReply, error) {
	n, err := s.node(req.ElectionEventID)
	if err != nil {
		return nil, s.failed("UploadCardSet", err)
	}
	cs, err := req.cardSet(n.Group)
	if err != nil {
		return nil, s.failed("UploadCardSet", err)
	}
	if err := n.UploadCardSet(cs); err != nil {
		return nil, s.failed("UploadCardSet", err)
	}
	reply := &UploadCardSetReply{Entries: cs.AllowList.Len()}
	return reply, s.sign(reply, &reply.Signature)
}

// PartialDecrypt verifies a ballot and returns the node's partial
// decryption of its partial Choice Return Codes.
func (s *Service) PartialDecrypt(req *PartialDecrypt) (*PartialDecryptReply, error) {
	n, err := s.node(req.ElectionEventID)
	if err != nil {
		return nil, s.failed("PartialDecrypt", err)
	}
	b, err := req.Ballot.ballot(n.Group)
	if err != nil {
		return nil, s.failed("PartialDecrypt", err)
	}
	pd, err := n.PartialDecrypt(req.ElectionEventID, req.VerificationCardSetID, b)
	if err != nil {
		return nil, s.failed("PartialDecrypt", err)
	}
	reply := &PartialDecryptReply{Partial: partialToWire(pd)}
	return reply, s.sign(reply, &reply.Signature)
}

// DecryptPCC combines the partial decryptions of the four nodes.
func (s *Service) DecryptPCC(req *DecryptPCC) (*DecryptPCCReply, error) {
	n, err := s.node(req.ElectionEventID)
	if err != nil {
		return nil, s.failed("DecryptPCC", err)
	}
	b, err := req.Ballot.ballot(n.Group)
	if err != nil {
		return nil, s.failed("DecryptPCC", err)
	}
	partials, err := partialsFromWire(n.Group, req.Partials)
	if err != nil {
		return nil, s.failed("DecryptPCC", err)
	}
	pCC, err := n.DecryptPCC(req.ElectionEventID, req.VerificationCardSetID, b, partials)
	if err != nil {
		return nil, s.failed("DecryptPCC", err)
	}
	reply := &DecryptPCCReply{PartialChoiceReturnCodes: group.GqValues(pCC)}
	return reply, s.sign(reply, &reply.Signature)
}

// CreateLCCShare returns the node's long Choice Return Code share.
func (s *Service) CreateLCCShare(req *CreateLCCShare) (*CreateLCCShareReply, error) {
	n, err := s.node(req.ElectionEventID)
	if err != nil {
		return nil, s.failed("CreateLCCShare", err)
	}
	pCC, err := n.Group.ElementsFromBytes(req.PartialChoiceReturnCodes)
	if err != nil {
		return nil, s.failed("CreateLCCShare", err)
	}
	share, err := n.CreateLCCShare(req.ElectionEventID, req.VerificationCardSetID, req.VerificationCardID, pCC)
	if err != nil {
		return nil, s.failed("CreateLCCShare", err)
	}
	reply := &CreateLCCShareReply{Share: lccToWire(share)}
	return reply, s.sign(reply, &reply.Signature)
}

// CreateLVCCShare returns the node's long Vote Cast Return Code share.
func (s *Service) CreateLVCCShare(req *CreateLVCCShare) (*CreateLVCCShareReply, error) {
	n, err := s.node(req.ElectionEventID)
	if err != nil {
		return nil, s.failed("CreateLVCCShare", err)
	}
	ck, err := n.Group.ElementFromBytes(req.ConfirmationKey)
	if err != nil {
		return nil, s.failed("CreateLVCCShare", err)
	}
	share, err := n.CreateLVCCShare(req.ElectionEventID, req.VerificationCardSetID, req.VerificationCardID, ck)
	if err != nil {
		return nil, s.failed("CreateLVCCShare", err)
	}
	reply := &CreateLVCCShareReply{Share: lvccToWire(share)}
	return reply, s.sign(reply, &reply.Signature)
}

// VerifyLVCCHash checks the hashed long Vote Cast Return Code shares.
func (s *Service) VerifyLVCCHash(req *VerifyLVCCHash) (*VerifyLVCCHashReply, error) {
	n, err := s.node(req.ElectionEventID)
	if err != nil {
		return nil, s.failed("VerifyLVCCHash", err)
	}
	ok, err := n.VerifyLVCCHash(req.ElectionEventID, req.VerificationCardSetID, req.VerificationCardID,
		req.HashedShares)
	if err != nil {
		return nil, s.failed("VerifyLVCCHash", err)
	}
	reply := &VerifyLVCCHashReply{OK: ok}
	return reply, s.sign(reply, &reply.Signature)
}

// failed logs the full error of a request and returns the short form the
// client receives.
func (s *Service) failed(request string, err error) error {
	log.Errorf("%s: %s: %+v", s.ServerIdentity(), request, err)
	return returncodes.WireError(err)
}

// node returns the node this conode is for an election event.
func (s *Service) node(ee string) (*ccr.Node, error) {
	buf, err := get(s.db, s.bucket, eventKey(ee))
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, returncodes.ProtocolStatef("unknown election event %s", ee)
	}
	var ev event
	if err := protobuf.Decode(buf, &ev); err != nil {
		return nil, xerrors.Errorf("decoding election event: %w", err)
	}
	grp, err := s.group(ee, ev.Group)
	if err != nil {
		return nil, err
	}
	return ccr.NewNode(ev.NodeID, grp, &store{db: s.db, bucket: s.bucket, group: grp})
}

func (s *Service) group(ee string, g Group) (*group.GqGroup, error) {
	s.groupsLock.Lock()
	defer s.groupsLock.Unlock()
	if grp, ok := s.groups[ee]; ok {
		return grp, nil
	}
	grp, err := g.GqGroup()
	if err != nil {
		return nil, err
	}
	s.groups[ee] = grp
	return grp, nil
}

// sign sets *sig to the signature of reply.
func (s *Service) sign(reply interface{}, sig *[]byte) error {
	*sig = nil
	buf, err := protobuf.Encode(reply)
	if err != nil {
		return xerrors.Errorf("encoding reply: %w", err)
	}
	*sig, err = schnorr.Sign(returncodes.Suite, s.ServerIdentity().GetPrivate(), buf)
	return err
}

// verify checks the signature of reply against the public key of the
// conode. *sig is left unchanged.
func verify(public kyber.Point, reply interface{}, sig *[]byte) error {
	signature := *sig
	*sig = nil
	buf, err := protobuf.Encode(reply)
	*sig = signature
	if err != nil {
		return xerrors.Errorf("encoding reply: %w", err)
	}
	if err := schnorr.Verify(returncodes.Suite, public, buf, signature); err != nil {
		return returncodes.ProofFailuref("invalid signature on reply: %v", err)
	}
	return nil
}

func newService(c *onet.Context) (onet.Service, error) {
	db, bucket := c.GetAdditionalBucket([]byte("returncodes-ccr"))
	s := &Service{
		ServiceProcessor: onet.NewServiceProcessor(c),
		db:               db,
		bucket:           bucket,
		groups:           make(map[string]*group.GqGroup),
	}
	if err := s.RegisterHandlers(s.GenKeys, s.GetPublicKey, s.GenEncLongCodeShares, s.UploadCardSet,
		s.PartialDecrypt, s.DecryptPCC, s.CreateLCCShare, s.CreateLVCCShare, s.VerifyLVCCHash); err != nil {
		return nil, xerrors.Errorf("registering handlers: %w", err)
	}
	return s, nil
}
