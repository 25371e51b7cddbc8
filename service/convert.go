package service

import (
	"math/big"

	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/ccr"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/zkp"
)

// NewGroup returns the wire form of a group.
func NewGroup(grp *group.GqGroup) Group {
	return Group{P: grp.P().Bytes(), Q: grp.Q().Bytes(), G: grp.Generator().Bytes()}
}

// GqGroup checks and returns the group.
func (g Group) GqGroup() (*group.GqGroup, error) {
	if len(g.P) == 0 || len(g.Q) == 0 || len(g.G) == 0 {
		return nil, returncodes.Validationf("group parameters are missing")
	}
	return group.NewGqGroup(new(big.Int).SetBytes(g.P), new(big.Int).SetBytes(g.Q), new(big.Int).SetBytes(g.G))
}

// decoder reads wire values into a group and keeps the first error.
type decoder struct {
	grp *group.GqGroup
	err error
}

func (d *decoder) element(b []byte) group.GqElement {
	if d.err != nil {
		return group.GqElement{}
	}
	e, err := d.grp.ElementFromBytes(b)
	d.err = err
	return e
}

func (d *decoder) vector(bs [][]byte) group.GqVector {
	if d.err != nil {
		return group.GqVector{}
	}
	v, err := d.grp.ElementsFromBytes(bs)
	d.err = err
	return v
}

func (d *decoder) ciphertext(bs [][]byte) elgamal.Ciphertext {
	if d.err != nil {
		return elgamal.Ciphertext{}
	}
	c, err := elgamal.CiphertextFromBytes(d.grp, bs)
	d.err = err
	return c
}

func (d *decoder) proof(bs [][]byte) zkp.ExponentiationProof {
	if d.err != nil {
		return zkp.ExponentiationProof{}
	}
	p, err := zkp.ExponentiationProofFromBytes(d.grp.Exponents(), bs)
	d.err = err
	return p
}

func (d *decoder) plaintextProof(bs [][]byte) zkp.PlaintextEqualityProof {
	if d.err != nil {
		return zkp.PlaintextEqualityProof{}
	}
	p, err := zkp.PlaintextEqualityProofFromBytes(d.grp.Exponents(), bs)
	d.err = err
	return p
}

func (d *decoder) exponent(b []byte) group.ZqElement {
	if d.err != nil {
		return group.ZqElement{}
	}
	e, err := d.grp.Exponents().ElementFromBytes(b)
	d.err = err
	return e
}

func cardsToWire(cards []lib.CardSetupData) []CardSetupData {
	out := make([]CardSetupData, len(cards))
	for i, c := range cards {
		out[i] = CardSetupData{
			VerificationCardID: c.VerificationCardID,
			PublicKey:          group.GqValues(c.VerificationCardPublicKey),
			EncryptedHashedPCC: c.EncryptedHashedPCC.Bytes(),
			EncryptedHashedCK:  c.EncryptedHashedCK.Bytes(),
		}
	}
	return out
}

func cardsFromWire(grp *group.GqGroup, cards []CardSetupData) ([]lib.CardSetupData, error) {
	d := &decoder{grp: grp}
	out := make([]lib.CardSetupData, len(cards))
	for i, c := range cards {
		out[i] = lib.CardSetupData{
			VerificationCardID:        c.VerificationCardID,
			VerificationCardPublicKey: d.vector(c.PublicKey),
			EncryptedHashedPCC:        d.ciphertext(c.EncryptedHashedPCC),
			EncryptedHashedCK:         d.ciphertext(c.EncryptedHashedCK),
		}
	}
	return out, d.err
}

func sharesToWire(shares []lib.EncLongCodeShare) []EncLongCodeShare {
	out := make([]EncLongCodeShare, len(shares))
	for i, s := range shares {
		out[i] = EncLongCodeShare{
			VerificationCardID: s.VerificationCardID,
			NodeID:             s.NodeID,
			ExpPCC:             s.ExpPCC.Bytes(),
			ExpCK:              s.ExpCK.Bytes(),
			ChoiceKey:          s.ChoiceKey.Bytes(),
			VoteCastKey:        s.VoteCastKey.Bytes(),
			PCCProof:           s.PCCProof.Bytes(),
			CKProof:            s.CKProof.Bytes(),
		}
	}
	return out
}

func sharesFromWire(grp *group.GqGroup, shares []EncLongCodeShare) ([]lib.EncLongCodeShare, error) {
	d := &decoder{grp: grp}
	out := make([]lib.EncLongCodeShare, len(shares))
	for i, s := range shares {
		out[i] = lib.EncLongCodeShare{
			VerificationCardID: s.VerificationCardID,
			NodeID:             s.NodeID,
			ExpPCC:             d.ciphertext(s.ExpPCC),
			ExpCK:              d.ciphertext(s.ExpCK),
			ChoiceKey:          d.element(s.ChoiceKey),
			VoteCastKey:        d.element(s.VoteCastKey),
			PCCProof:           d.proof(s.PCCProof),
			CKProof:            d.proof(s.CKProof),
		}
	}
	return out, d.err
}

// NewBallot returns the wire form of a ballot.
func NewBallot(b *ccr.Ballot) Ballot {
	return Ballot{
		VerificationCardID:         b.VerificationCardID,
		EncryptedVote:              b.EncryptedVote.Bytes(),
		ExponentiatedEncryptedVote: b.ExponentiatedEncryptedVote.Bytes(),
		EncryptedPCC:               b.EncryptedPCC.Bytes(),
		ExponentiationProof:        b.ExponentiationProof.Bytes(),
		PlaintextEqualityProof:     b.PlaintextEqualityProof.Bytes(),
	}
}

func (b Ballot) ballot(grp *group.GqGroup) (*ccr.Ballot, error) {
	d := &decoder{grp: grp}
	out := &ccr.Ballot{
		VerificationCardID:         b.VerificationCardID,
		EncryptedVote:              d.ciphertext(b.EncryptedVote),
		ExponentiatedEncryptedVote: d.ciphertext(b.ExponentiatedEncryptedVote),
		EncryptedPCC:               d.ciphertext(b.EncryptedPCC),
		ExponentiationProof:        d.proof(b.ExponentiationProof),
		PlaintextEqualityProof:     d.plaintextProof(b.PlaintextEqualityProof),
	}
	if d.err != nil {
		return nil, d.err
	}
	return out, nil
}

func partialToWire(pd *ccr.PartialDecryption) PartialDecryption {
	proofs := make([]Proof, len(pd.Proofs))
	for i, p := range pd.Proofs {
		proofs[i] = Proof{Values: p.Bytes()}
	}
	return PartialDecryption{
		NodeID:              pd.NodeID,
		VerificationCardID:  pd.VerificationCardID,
		ExponentiatedGammas: group.GqValues(pd.ExponentiatedGammas),
		PublicKey:           group.GqValues(pd.PublicKey),
		Proofs:              proofs,
	}
}

func (pd PartialDecryption) partial(grp *group.GqGroup) (*ccr.PartialDecryption, error) {
	d := &decoder{grp: grp}
	proofs := make([]zkp.ExponentiationProof, len(pd.Proofs))
	for i, p := range pd.Proofs {
		proofs[i] = d.proof(p.Values)
	}
	out := &ccr.PartialDecryption{
		NodeID:              pd.NodeID,
		VerificationCardID:  pd.VerificationCardID,
		ExponentiatedGammas: d.vector(pd.ExponentiatedGammas),
		PublicKey:           d.vector(pd.PublicKey),
		Proofs:              proofs,
	}
	if d.err != nil {
		return nil, d.err
	}
	return out, nil
}

func partialsFromWire(grp *group.GqGroup, pds []PartialDecryption) ([]*ccr.PartialDecryption, error) {
	out := make([]*ccr.PartialDecryption, len(pds))
	for i, pd := range pds {
		var err error
		if out[i], err = pd.partial(grp); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func lccToWire(s *ccr.LCCShare) LCCShare {
	return LCCShare{
		NodeID:                         s.NodeID,
		VerificationCardID:             s.VerificationCardID,
		HashedPartialChoiceReturnCodes: group.GqValues(s.HashedPartialChoiceReturnCodes),
		LongChoiceReturnCodeShare:      group.GqValues(s.LongChoiceReturnCodeShare),
		ChoiceKey:                      s.ChoiceKey.Bytes(),
		Proof:                          s.Proof.Bytes(),
	}
}

func (s LCCShare) share(grp *group.GqGroup) (*ccr.LCCShare, error) {
	d := &decoder{grp: grp}
	out := &ccr.LCCShare{
		NodeID:                         s.NodeID,
		VerificationCardID:             s.VerificationCardID,
		HashedPartialChoiceReturnCodes: d.vector(s.HashedPartialChoiceReturnCodes),
		LongChoiceReturnCodeShare:      d.vector(s.LongChoiceReturnCodeShare),
		ChoiceKey:                      d.element(s.ChoiceKey),
		Proof:                          d.proof(s.Proof),
	}
	if d.err != nil {
		return nil, d.err
	}
	return out, nil
}

func lvccToWire(s *ccr.LVCCShare) LVCCShare {
	return LVCCShare{
		NodeID:                      s.NodeID,
		VerificationCardID:          s.VerificationCardID,
		HashedConfirmationKey:       s.HashedConfirmationKey.Bytes(),
		LongVoteCastReturnCodeShare: s.LongVoteCastReturnCodeShare.Bytes(),
		VoteCastKey:                 s.VoteCastKey.Bytes(),
		Proof:                       s.Proof.Bytes(),
		HashedShare:                 s.HashedShare,
	}
}

func (s LVCCShare) share(grp *group.GqGroup) (*ccr.LVCCShare, error) {
	d := &decoder{grp: grp}
	out := &ccr.LVCCShare{
		NodeID:                      s.NodeID,
		VerificationCardID:          s.VerificationCardID,
		HashedConfirmationKey:       d.element(s.HashedConfirmationKey),
		LongVoteCastReturnCodeShare: d.element(s.LongVoteCastReturnCodeShare),
		VoteCastKey:                 d.element(s.VoteCastKey),
		Proof:                       d.proof(s.Proof),
		HashedShare:                 s.HashedShare,
	}
	if d.err != nil {
		return nil, d.err
	}
	return out, nil
}

// NewUploadCardSet returns the wire form of a card set.
func NewUploadCardSet(cs *ccr.CardSet) *UploadCardSet {
	return &UploadCardSet{
		ElectionEventID:       cs.ElectionEventID,
		VerificationCardSetID: cs.VerificationCardSetID,
		Params:                cs.Params,
		Questions:             cs.Correctness.Questions(),
		AllowList:             cs.AllowList.Entries(),
		LVCCAllowList:         cs.LVCCAllowList.Entries(),
		ElectionPublicKey:     group.GqValues(cs.ElectionPublicKey),
		CCRKey:                group.GqValues(cs.CCRKey),
	}
}

func (req *UploadCardSet) cardSet(grp *group.GqGroup) (*ccr.CardSet, error) {
	correctness, err := lib.NewCombinedCorrectnessInformation(req.Questions...)
	if err != nil {
		return nil, err
	}
	allowList, err := lib.NewAllowList(req.AllowList)
	if err != nil {
		return nil, err
	}
	lvccAllowList, err := lib.NewAllowList(req.LVCCAllowList)
	if err != nil {
		return nil, err
	}
	d := &decoder{grp: grp}
	cs := &ccr.CardSet{
		ElectionEventID:       req.ElectionEventID,
		VerificationCardSetID: req.VerificationCardSetID,
		Params:                req.Params,
		Correctness:           correctness,
		AllowList:             allowList,
		LVCCAllowList:         lvccAllowList,
		ElectionPublicKey:     d.vector(req.ElectionPublicKey),
		CCRKey:                d.vector(req.CCRKey),
	}
	if d.err != nil {
		return nil, d.err
	}
	return cs, nil
}

func keysToRecord(ks *ccr.KeySet) *keys {
	return &keys{
		Secret:           group.ZqValues(ks.CCREncryption.Secret()),
		GenerationSecret: ks.GenerationSecret.Bytes(),
	}
}

func (k *keys) keySet(grp *group.GqGroup) (*ccr.KeySet, error) {
	secret, err := grp.Exponents().ElementsFromBytes(k.Secret)
	if err != nil {
		return nil, err
	}
	kp, err := elgamal.NewKeyPair(grp, secret)
	if err != nil {
		return nil, err
	}
	d := &decoder{grp: grp}
	gs := d.exponent(k.GenerationSecret)
	if d.err != nil {
		return nil, d.err
	}
	return &ccr.KeySet{CCREncryption: kp, GenerationSecret: gs}, nil
}
