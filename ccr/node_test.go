package ccr_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/ccr"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/group/grouptest"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/votesim"
	"go.dedis.ch/returncodes/zkp"
	"golang.org/x/xerrors"
)

func newSimulation(t *testing.T, seed string) *votesim.Simulation {
	sim, err := votesim.NewSimulation(grouptest.Stream(seed), grouptest.Group(), votesim.Options{
		Params: lib.ElectionParameters{Omega: 10, Phi: 5, Delta: 1},
		Questions: []lib.Question{
			{CorrectnessID: "q1", NumberOfSelections: 2, NumberOfVotingOptions: 4},
			{CorrectnessID: "q2", NumberOfSelections: 1, NumberOfVotingOptions: 3},
		},
		EligibleVoters: 4,
		ChunkSize:      3,
	})
	require.NoError(t, err)
	return sim
}

func ballot(t *testing.T, sim *votesim.Simulation, seed string, voter int, options ...int) *ccr.Ballot {
	selected, err := sim.Election.Select(options...)
	require.NoError(t, err)
	b, err := votesim.CreateBallot(grouptest.Stream(seed), sim.Election, sim.Voter(voter), selected)
	require.NoError(t, err)
	return b
}

func ids(sim *votesim.Simulation) (string, string) {
	return sim.Election.Context.ElectionEventID, sim.Election.Context.VerificationCardSetID
}

func TestNode_VoteAndConfirm(t *testing.T) {
	sim := newSimulation(t, "vote")
	codes, err := sim.Vote(grouptest.Stream("ballot"), 0, 1, 3, 5)
	require.NoError(t, err)
	require.Equal(t, sim.ExpectedChoiceReturnCodes(0, 1, 3, 5), codes)

	vcc, err := sim.Confirm(0)
	require.NoError(t, err)
	require.Equal(t, sim.Config.Table.ShortVoteCastReturnCodes[0], vcc)

	// Both operations are one-shot.
	_, err = sim.Vote(grouptest.Stream("again"), 0, 1, 3, 5)
	require.True(t, xerrors.Is(err, returncodes.ErrProtocolState))
	require.Contains(t, err.Error(), sim.Voter(0).VerificationCardID)
	_, err = sim.Confirm(0)
	require.True(t, xerrors.Is(err, returncodes.ErrProtocolState))
}

func TestNode_VerifyBallot(t *testing.T) {
	sim := newSimulation(t, "verify")
	ee, vcs := ids(sim)
	b := ballot(t, sim, "b1", 1, 0, 1, 4)
	for _, n := range sim.Nodes {
		ok, err := n.VerifyBallot(ee, vcs, b)
		require.NoError(t, err)
		require.True(t, ok)
	}

	// Partial codes of another selection.
	other := ballot(t, sim, "b2", 1, 0, 2, 4)
	mixed := *b
	mixed.EncryptedPCC = other.EncryptedPCC
	ok, err := sim.Nodes[0].VerifyBallot(ee, vcs, &mixed)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = sim.Nodes[0].PartialDecrypt(ee, vcs, &mixed)
	require.True(t, xerrors.Is(err, returncodes.ErrProofFailure))

	// Ballot of one card sent for another.
	stolen := *b
	stolen.VerificationCardID = sim.Voter(2).VerificationCardID
	ok, err = sim.Nodes[0].VerifyBallot(ee, vcs, &stolen)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = sim.Nodes[0].VerifyBallot(ee, vcs, &ccr.Ballot{VerificationCardID: lib.GenerateID()})
	require.True(t, xerrors.Is(err, returncodes.ErrProtocolState))
}

func TestVerifyBallotCCR_PsiAbovePhi(t *testing.T) {
	sim := newSimulation(t, "psi")
	b := ballot(t, sim, "b", 0, 0, 1, 4)
	ctx, err := lib.NewNodeContext(1, sim.Election.Context.ElectionEventID,
		sim.Election.Context.VerificationCardSetID, sim.Election.Context.Group)
	require.NoError(t, err)
	cardKey := sim.Voter(0).KeyPair.Public().Get(0)
	keys := ccr.BallotKeys{CardKey: cardKey, ElectionKey: sim.Election.ElectionPublicKey, CCRKey: sim.Election.CCRKey}

	ok, err := ccr.VerifyBallotCCR(ctx, sim.Election.Params, 3, b, keys)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = ccr.VerifyBallotCCR(ctx, sim.Election.Params, sim.Election.Params.Phi+1, b, keys)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
}

func TestVerifyBallotCCR_ForeignKeys(t *testing.T) {
	sim := newSimulation(t, "foreign")
	b := ballot(t, sim, "b", 0, 0, 1, 4)
	ctx, err := lib.NewNodeContext(1, sim.Election.Context.ElectionEventID,
		sim.Election.Context.VerificationCardSetID, sim.Election.Context.Group)
	require.NoError(t, err)
	other := grouptest.SameOrderGroup()
	keys := ccr.BallotKeys{
		CardKey:     grouptest.RandomMembers(grouptest.Stream("card"), other, 1).Get(0),
		ElectionKey: grouptest.RandomMembers(grouptest.Stream("el"), other, sim.Election.ElectionPublicKey.Size()),
		CCRKey:      grouptest.RandomMembers(grouptest.Stream("ccr"), other, sim.Election.CCRKey.Size()),
	}
	// The first key in a foreign group is always the one reported.
	for i := 0; i < 20; i++ {
		_, err = ccr.VerifyBallotCCR(ctx, sim.Election.Params, 3, b, keys)
		require.True(t, xerrors.Is(err, returncodes.ErrValidation))
		require.Contains(t, err.Error(), "verification card public key")
	}
	keys.CardKey = sim.Voter(0).KeyPair.Public().Get(0)
	for i := 0; i < 20; i++ {
		_, err = ccr.VerifyBallotCCR(ctx, sim.Election.Params, 3, b, keys)
		require.Contains(t, err.Error(), "election public key")
	}
}

func TestNode_NotInAllowList(t *testing.T) {
	sim := newSimulation(t, "allow")
	primes, err := sim.Election.Context.Group.SmallPrimeMembers(8)
	require.NoError(t, err)
	// The eighth prime is not a voting option of the card set.
	selected, err := group.NewVector(primes.Get(0), primes.Get(1), primes.Get(7))
	require.NoError(t, err)
	b, err := votesim.CreateBallot(grouptest.Stream("b"), sim.Election, sim.Voter(1), selected)
	require.NoError(t, err)

	_, err = sim.SendVote(b)
	require.Error(t, err)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
	require.Contains(t, err.Error(), "allow list")
}

func TestNode_PartialDecryptOnce(t *testing.T) {
	sim := newSimulation(t, "once")
	ee, vcs := ids(sim)
	b := ballot(t, sim, "b", 3, 2, 3, 6)
	n := sim.Nodes[2]

	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded int
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := n.PartialDecrypt(ee, vcs, b)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.True(t, xerrors.Is(err, returncodes.ErrProtocolState))
		}()
	}
	wg.Wait()
	require.Equal(t, 1, succeeded)
}

func TestNode_DecryptPCC(t *testing.T) {
	sim := newSimulation(t, "decrypt")
	ee, vcs := ids(sim)
	b := ballot(t, sim, "b", 2, 0, 3, 6)
	partials := make([]*ccr.PartialDecryption, len(sim.Nodes))
	for j, n := range sim.Nodes {
		var err error
		partials[j], err = n.PartialDecrypt(ee, vcs, b)
		require.NoError(t, err)
	}

	pCC, err := sim.Nodes[0].DecryptPCC(ee, vcs, b, partials)
	require.NoError(t, err)
	for _, n := range sim.Nodes[1:] {
		other, err := n.DecryptPCC(ee, vcs, b, partials)
		require.NoError(t, err)
		require.True(t, pCC.Equals(other))
	}
	// The order of the contributions does not matter.
	reversed := []*ccr.PartialDecryption{partials[3], partials[2], partials[1], partials[0]}
	other, err := sim.Nodes[0].DecryptPCC(ee, vcs, b, reversed)
	require.NoError(t, err)
	require.True(t, pCC.Equals(other))

	// A peer with a wrong proof is named.
	bad := *partials[1]
	bad.Proofs = append([]zkp.ExponentiationProof(nil), partials[1].Proofs...)
	bad.Proofs[0] = bad.Proofs[1]
	tampered := []*ccr.PartialDecryption{partials[0], &bad, partials[2], partials[3]}
	_, err = sim.Nodes[0].DecryptPCC(ee, vcs, b, tampered)
	require.True(t, xerrors.Is(err, returncodes.ErrProofFailure))
	require.Contains(t, err.Error(), "node 2")

	// Missing and duplicated contributions.
	_, err = sim.Nodes[0].DecryptPCC(ee, vcs, b, partials[:3])
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
	_, err = sim.Nodes[0].DecryptPCC(ee, vcs, b,
		[]*ccr.PartialDecryption{partials[0], partials[1], partials[1], partials[3]})
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))

	// A peer that decrypts with a key it did not contribute.
	keys, err := ccr.GenKeysCCR(grouptest.Stream("rogue"), sim.Election.Context.Group, sim.Election.Params)
	require.NoError(t, err)
	ctx, err := lib.NewNodeContext(4, ee, vcs, sim.Election.Context.Group)
	require.NoError(t, err)
	rogue, err := ccr.PartialDecryptPCC(grouptest.Stream("p"), ctx, sim.Election.Params, keys.CCREncryption, 3, b)
	require.NoError(t, err)
	_, err = sim.Nodes[0].DecryptPCC(ee, vcs, b,
		[]*ccr.PartialDecryption{partials[0], partials[1], partials[2], rogue})
	require.True(t, xerrors.Is(err, returncodes.ErrProofFailure))

	// The node checks its own contribution like the others.
	ownBad := *partials[0]
	ownBad.Proofs = append([]zkp.ExponentiationProof(nil), partials[0].Proofs...)
	ownBad.Proofs[0] = ownBad.Proofs[1]
	_, err = sim.Nodes[0].DecryptPCC(ee, vcs, b,
		[]*ccr.PartialDecryption{&ownBad, partials[1], partials[2], partials[3]})
	require.True(t, xerrors.Is(err, returncodes.ErrProofFailure))
	require.Contains(t, err.Error(), "node 1")

	// A valid contribution in the name of the node that does not use its
	// stored key.
	ctx, err = lib.NewNodeContext(1, ee, vcs, sim.Election.Context.Group)
	require.NoError(t, err)
	impostor, err := ccr.PartialDecryptPCC(grouptest.Stream("i"), ctx, sim.Election.Params, keys.CCREncryption, 3, b)
	require.NoError(t, err)
	_, err = sim.Nodes[0].DecryptPCC(ee, vcs, b,
		[]*ccr.PartialDecryption{impostor, partials[1], partials[2], partials[3]})
	require.True(t, xerrors.Is(err, returncodes.ErrProofFailure))
	require.Contains(t, err.Error(), "own key")
}

func TestNode_GenKeysOnce(t *testing.T) {
	n, err := ccr.NewNode(1, grouptest.Group(), ccr.NewMemoryStore())
	require.NoError(t, err)
	params := lib.ElectionParameters{Omega: 4, Phi: 2, Delta: 1}
	ee := lib.GenerateID()
	pk, err := n.GenKeys(ee, params)
	require.NoError(t, err)
	require.Equal(t, 2, pk.Size())
	stored, err := n.PublicKey(ee)
	require.NoError(t, err)
	require.True(t, pk.Equals(stored))

	_, err = n.GenKeys(ee, params)
	require.True(t, xerrors.Is(err, returncodes.ErrProtocolState))

	_, err = ccr.NewNode(5, grouptest.Group(), ccr.NewMemoryStore())
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
}

func TestNode_WrongConfirmationKey(t *testing.T) {
	sim := newSimulation(t, "confirm")
	_, err := sim.Vote(grouptest.Stream("ballot"), 1, 0, 1, 4)
	require.NoError(t, err)
	v := sim.Voter(1)
	v.BallotCastingKey = "000000001"
	ck, err := votesim.ConfirmationKey(sim.Election.Context.Group, v)
	require.NoError(t, err)
	_, err = sim.ConfirmWith(v.VerificationCardID, ck)
	require.True(t, xerrors.Is(err, returncodes.ErrProofFailure))
}
