package ccr

import (
	"crypto/cipher"
	"runtime"

	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/zkp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// GenEncLongCodeShares exponentiates the encrypted hashed partial Choice
// Return Codes and the encrypted hashed confirmation key of every card with
// the node's per-voter exponents, and proves it. The cards are computed in
// parallel; the output is in the order of cards.
func GenEncLongCodeShares(rand cipher.Stream, ctx lib.NodeContext, keys *KeySet,
	cards []lib.CardSetupData) ([]lib.EncLongCodeShare, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	if err := keys.validate(ctx); err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, returncodes.Validationf("no cards to compute")
	}
	for _, c := range cards {
		if err := c.Validate(ctx.SetupContext); err != nil {
			return nil, err
		}
	}
	rand = lib.LockedStream(rand)
	shares := make([]lib.EncLongCodeShare, len(cards))
	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i := range cards {
		i := i
		eg.Go(func() error {
			var err error
			shares[i], err = genEncLongCodeShare(rand, ctx, keys.GenerationSecret, cards[i])
			if err != nil {
				return xerrors.Errorf("card %s: %w", cards[i].VerificationCardID, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	log.Lvlf3("Node %d computed %d encrypted long code shares", ctx.NodeID, len(shares))
	return shares, nil
}

func genEncLongCodeShare(rand cipher.Stream, ctx lib.NodeContext, secret group.ZqElement,
	card lib.CardSetupData) (lib.EncLongCodeShare, error) {
	vcID := card.VerificationCardID
	k, err := VoterChoiceReturnCodeKey(ctx.SetupContext, secret, vcID)
	if err != nil {
		return lib.EncLongCodeShare{}, err
	}
	kc, err := VoterVoteCastReturnCodeKey(ctx.SetupContext, secret, vcID)
	if err != nil {
		return lib.EncLongCodeShare{}, err
	}
	share := lib.EncLongCodeShare{
		VerificationCardID: vcID,
		NodeID:             ctx.NodeID,
		ChoiceKey:          ctx.Group.Generator().Exponentiate(k),
		VoteCastKey:        ctx.Group.Generator().Exponentiate(kc),
	}
	share.ExpPCC, share.PCCProof, err = exponentiateAndProve(rand, ctx.SetupContext, vcID, lib.LabelGenEncLongCodeShares,
		card.EncryptedHashedPCC, k, share.ChoiceKey)
	if err != nil {
		return lib.EncLongCodeShare{}, err
	}
	share.ExpCK, share.CKProof, err = exponentiateAndProve(rand, ctx.SetupContext, vcID, lib.LabelEncryptedHashedConfirmKey,
		card.EncryptedHashedCK, kc, share.VoteCastKey)
	if err != nil {
		return lib.EncLongCodeShare{}, err
	}
	return share, nil
}

func exponentiateAndProve(rand cipher.Stream, ctx lib.SetupContext, vcID, label string, c elgamal.Ciphertext,
	k group.ZqElement, key group.GqElement) (elgamal.Ciphertext, zkp.ExponentiationProof, error) {
	exp, err := c.Exponentiate(k)
	if err != nil {
		return elgamal.Ciphertext{}, zkp.ExponentiationProof{}, err
	}
	bases, err := lib.ExponentiationBases(c)
	if err != nil {
		return elgamal.Ciphertext{}, zkp.ExponentiationProof{}, err
	}
	results, err := lib.ExponentiationResults(key, exp)
	if err != nil {
		return elgamal.Ciphertext{}, zkp.ExponentiationProof{}, err
	}
	proof, err := zkp.GenExponentiationProof(rand, bases, results, k, lib.EncLongCodeShareAux(ctx, vcID, label)...)
	if err != nil {
		return elgamal.Ciphertext{}, zkp.ExponentiationProof{}, err
	}
	return exp, proof, nil
}
