package service

import (
	"go.dedis.ch/returncodes/lib"
)

// Group holds the big-endian parameters of a Gq group.
type Group struct {
	P []byte
	Q []byte
	G []byte
}

// CardSetupData is the wire form of lib.CardSetupData.
type CardSetupData struct {
	VerificationCardID string
	PublicKey          [][]byte
	EncryptedHashedPCC [][]byte
	EncryptedHashedCK  [][]byte
}

// EncLongCodeShare is the wire form of lib.EncLongCodeShare.
type EncLongCodeShare struct {
	VerificationCardID string
	NodeID             int
	ExpPCC             [][]byte
	ExpCK              [][]byte
	ChoiceKey          []byte
	VoteCastKey        []byte
	PCCProof           [][]byte
	CKProof            [][]byte
}

// Ballot is the wire form of ccr.Ballot.
type Ballot struct {
	VerificationCardID         string
	EncryptedVote              [][]byte
	ExponentiatedEncryptedVote [][]byte
	EncryptedPCC               [][]byte
	ExponentiationProof        [][]byte
	PlaintextEqualityProof     [][]byte
}

// Proof is an exponentiation proof (e, z).
type Proof struct {
	Values [][]byte
}

// PartialDecryption is the wire form of ccr.PartialDecryption.
type PartialDecryption struct {
	NodeID              int
	VerificationCardID  string
	ExponentiatedGammas [][]byte
	PublicKey           [][]byte
	Proofs              []Proof
}

// LCCShare is the wire form of ccr.LCCShare.
type LCCShare struct {
	NodeID                         int
	VerificationCardID             string
	HashedPartialChoiceReturnCodes [][]byte
	LongChoiceReturnCodeShare      [][]byte
	ChoiceKey                      []byte
	Proof                          [][]byte
}

// LVCCShare is the wire form of ccr.LVCCShare.
type LVCCShare struct {
	NodeID                      int
	VerificationCardID          string
	HashedConfirmationKey       []byte
	LongVoteCastReturnCodeShare []byte
	VoteCastKey                 []byte
	Proof                       [][]byte
	HashedShare                 string
}

// GenKeys asks a conode to act as node NodeID of an election event and to
// generate its keys.
type GenKeys struct {
	ElectionEventID string
	NodeID          int
	Group           Group
	Params          lib.ElectionParameters
}

// GetPublicKey asks a conode for the CCR public key it generated for an
// election event.
type GetPublicKey struct {
	ElectionEventID string
}

// PublicKeyReply returns the CCR Choice Return Codes encryption public key
// of a node.
type PublicKeyReply struct {
	NodeID    int
	PublicKey [][]byte
	Signature []byte
}

// GenEncLongCodeShares sends a chunk of cards to a node.
type GenEncLongCodeShares struct {
	ElectionEventID       string
	VerificationCardSetID string
	Cards                 []CardSetupData
}

// GenEncLongCodeSharesReply returns the contributions of a node, in the
// order of the cards.
type GenEncLongCodeSharesReply struct {
	Shares    []EncLongCodeShare
	Signature []byte
}

// UploadCardSet sends the configuration of a card set to a node.
type UploadCardSet struct {
	ElectionEventID       string
	VerificationCardSetID string
	Params                lib.ElectionParameters
	Questions             []lib.Question
	AllowList             []string
	LVCCAllowList         []string
	ElectionPublicKey     [][]byte
	CCRKey                [][]byte
}

// UploadCardSetReply acknowledges a card set.
type UploadCardSetReply struct {
	Entries   int
	Signature []byte
}

// PartialDecrypt asks a node to verify a ballot and to partially decrypt
// its partial Choice Return Codes.
type PartialDecrypt struct {
	ElectionEventID       string
	VerificationCardSetID string
	Ballot                Ballot
}

// PartialDecryptReply returns the partial decryption of a node.
type PartialDecryptReply struct {
	Partial   PartialDecryption
	Signature []byte
}

// DecryptPCC sends the partial decryptions of the four nodes to a node.
type DecryptPCC struct {
	ElectionEventID       string
	VerificationCardSetID string
	Ballot                Ballot
	Partials              []PartialDecryption
}

// DecryptPCCReply returns the partial Choice Return Codes.
type DecryptPCCReply struct {
	PartialChoiceReturnCodes [][]byte
	Signature                []byte
}

// CreateLCCShare asks a node for its long Choice Return Code share.
type CreateLCCShare struct {
	ElectionEventID          string
	VerificationCardSetID    string
	VerificationCardID       string
	PartialChoiceReturnCodes [][]byte
}

// CreateLCCShareReply returns the long Choice Return Code share of a node.
type CreateLCCShareReply struct {
	Share     LCCShare
	Signature []byte
}

// CreateLVCCShare asks a node for its long Vote Cast Return Code share.
type CreateLVCCShare struct {
	ElectionEventID       string
	VerificationCardSetID string
	VerificationCardID    string
	ConfirmationKey       []byte
}

// CreateLVCCShareReply returns the long Vote Cast Return Code share of a
// node.
type CreateLVCCShareReply struct {
	Share     LVCCShare
	Signature []byte
}

// VerifyLVCCHash asks a node to check the hashed long Vote Cast Return
// Code shares of the four nodes.
type VerifyLVCCHash struct {
	ElectionEventID       string
	VerificationCardSetID string
	VerificationCardID    string
	HashedShares          []string
}

// VerifyLVCCHashReply returns whether the shares are allowed.
type VerifyLVCCHashReply struct {
	OK        bool
	Signature []byte
}

// event is the record of an election event a conode takes part in.
type event struct {
	NodeID int
	Group  Group
}

// keys is the record of the key material of an election event.
type keys struct {
	Secret           [][]byte
	GenerationSecret []byte
}
