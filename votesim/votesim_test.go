package votesim_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group/grouptest"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/votesim"
	"golang.org/x/xerrors"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

func newSimulation(t *testing.T) *votesim.Simulation {
	sim, err := votesim.NewSimulation(grouptest.Stream("votesim"), grouptest.Group(), votesim.Options{
		Params:         lib.ElectionParameters{Omega: 6, Phi: 3, Delta: 1},
		Questions:      []lib.Question{{CorrectnessID: "q", NumberOfSelections: 2, NumberOfVotingOptions: 3}},
		EligibleVoters: 2,
		ChunkSize:      1,
	})
	require.NoError(t, err)
	return sim
}

func TestSimulation(t *testing.T) {
	sim := newSimulation(t)
	codes, err := sim.Vote(grouptest.Stream("ballot"), 1, 0, 2)
	require.NoError(t, err)
	require.Equal(t, sim.ExpectedChoiceReturnCodes(1, 0, 2), codes)
	vcc, err := sim.Confirm(1)
	require.NoError(t, err)
	require.Equal(t, sim.Config.Table.ShortVoteCastReturnCodes[1], vcc)
}

func TestElection_Select(t *testing.T) {
	sim := newSimulation(t)
	selected, err := sim.Election.Select(2, 0)
	require.NoError(t, err)
	require.Equal(t, 2, selected.Size())
	require.True(t, selected.Get(0).Equals(sim.Election.EncodedVotingOptions.Get(2)))

	_, err = sim.Election.Select(3)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
	_, err = sim.Election.Select(-1)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))

	// A ballot holds exactly psi selections.
	selected, err = sim.Election.Select(1)
	require.NoError(t, err)
	_, err = votesim.CreateBallot(grouptest.Stream("short"), sim.Election, sim.Voter(0), selected)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
}

func TestConfirmVote(t *testing.T) {
	sim := newSimulation(t)
	v := sim.Voter(0)
	// The confirmation key of another voter yields hashes the nodes do not
	// know.
	ck, err := votesim.ConfirmationKey(sim.Election.Context.Group, sim.Voter(1))
	require.NoError(t, err)
	_, err = sim.ConfirmWith(v.VerificationCardID, ck)
	require.True(t, xerrors.Is(err, returncodes.ErrProofFailure))

	var nodes []votesim.Node
	for _, n := range sim.Nodes[:3] {
		nodes = append(nodes, n)
	}
	_, err = votesim.ConfirmVote(sim.Election.Context, nodes, v.VerificationCardID, ck)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
}
