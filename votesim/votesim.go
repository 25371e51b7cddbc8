// Package votesim simulates the voting client: it encrypts a selection of
// voting options into a ballot the control components accept, and derives
// the confirmation key from a Ballot Casting Key.
package votesim

import (
	"crypto/cipher"

	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/ccr"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/hash"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/zkp"
	"golang.org/x/xerrors"
)

// Voter holds what a voting client knows about one verification card.
type Voter struct {
	VerificationCardID string
	KeyPair            *elgamal.KeyPair
	BallotCastingKey   string
}

// Election holds the public values a voting client votes with.
type Election struct {
	Context           lib.SetupContext
	Params            lib.ElectionParameters
	Correctness       *lib.CombinedCorrectnessInformation
	ElectionPublicKey group.GqVector
	CCRKey            group.GqVector
	// EncodedVotingOptions are the prime encodings of the voting options, in
	// the order of the correctness information.
	EncodedVotingOptions group.GqVector
}

// Select returns the encoded voting options at the given indices. The
// selections must follow the order of the questions.
func (e *Election) Select(indices ...int) (group.GqVector, error) {
	selected := make([]group.GqElement, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= e.EncodedVotingOptions.Size() {
			return group.GqVector{}, returncodes.Validationf("voting option %d out of range", idx)
		}
		selected[i] = e.EncodedVotingOptions.Get(idx)
	}
	return group.NewVector(selected...)
}

// CreateBallot encrypts the selected voting options of a voter and proves
// that the encrypted vote and the encrypted partial Choice Return Codes
// hold the same selection.
func CreateBallot(rand cipher.Stream, e *Election, v *Voter, selected group.GqVector) (*ccr.Ballot, error) {
	if e == nil || v == nil || v.KeyPair == nil {
		return nil, returncodes.Validationf("election and voter are required")
	}
	psi := e.Correctness.TotalNumberOfSelections()
	if err := group.CheckSize("selected voting options", selected, psi); err != nil {
		return nil, err
	}
	grp := e.Context.Group
	zq := grp.Exponents()
	k := v.KeyPair.Secret().Get(0)

	msg := make([]group.GqElement, e.Params.Delta)
	msg[0] = group.Product(selected)
	for i := 1; i < len(msg); i++ {
		msg[i] = grp.Identity()
	}
	msgVector, err := group.NewVector(msg...)
	if err != nil {
		return nil, err
	}
	r := zq.Random(rand)
	e1, err := elgamal.Encrypt(msgVector, r, e.ElectionPublicKey)
	if err != nil {
		return nil, xerrors.Errorf("encrypting the vote: %w", err)
	}
	phiTilde, err := group.NewVector(e1.Phi(0).Exponentiate(k))
	if err != nil {
		return nil, err
	}
	e1Tilde, err := elgamal.NewCiphertext(e1.Gamma().Exponentiate(k), phiTilde)
	if err != nil {
		return nil, err
	}

	pCC, err := group.ExponentiateVector(selected, k)
	if err != nil {
		return nil, err
	}
	r2 := zq.Random(rand)
	e2, err := elgamal.Encrypt(pCC, r2, e.CCRKey)
	if err != nil {
		return nil, xerrors.Errorf("encrypting the partial Choice Return Codes: %w", err)
	}

	aux := ccr.BallotAux(e.Context, v.VerificationCardID)
	bases, err := group.NewVector(grp.Generator(), e1.Gamma(), e1.Phi(0))
	if err != nil {
		return nil, err
	}
	results, err := group.NewVector(v.KeyPair.Public().Get(0), e1Tilde.Gamma(), e1Tilde.Phi(0))
	if err != nil {
		return nil, err
	}
	expProof, err := zkp.GenExponentiationProof(rand, bases, results, k, aux...)
	if err != nil {
		return nil, err
	}

	e2Tilde, hPrime, err := ccr.CompressedPCC(e2, e.CCRKey, psi)
	if err != nil {
		return nil, err
	}
	petProof, err := zkp.GenPlaintextEqualityProof(rand, e1Tilde, e2Tilde, e.ElectionPublicKey.Get(0), hPrime,
		r.Multiply(k), r2, aux...)
	if err != nil {
		return nil, err
	}
	log.Lvlf3("Created ballot for card %s with %d selections", v.VerificationCardID, psi)
	return &ccr.Ballot{
		VerificationCardID:         v.VerificationCardID,
		EncryptedVote:              e1,
		ExponentiatedEncryptedVote: e1Tilde,
		EncryptedPCC:               e2,
		ExponentiationProof:        expProof,
		PlaintextEqualityProof:     petProof,
	}, nil
}

// ConfirmationKey returns CK = HashAndSquare(BCK)^k of a voter.
func ConfirmationKey(grp *group.GqGroup, v *Voter) (group.GqElement, error) {
	bck, err := lib.ParseDecimal(v.BallotCastingKey)
	if err != nil {
		return group.GqElement{}, err
	}
	hBCK, err := hash.HashAndSquare(bck, grp)
	if err != nil {
		return group.GqElement{}, err
	}
	return hBCK.Exponentiate(v.KeyPair.Secret().Get(0)), nil
}
