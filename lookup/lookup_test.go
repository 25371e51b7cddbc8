package lookup_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/ccr"
	"go.dedis.ch/returncodes/group/grouptest"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/lookup"
	"go.dedis.ch/returncodes/votesim"
	"golang.org/x/xerrors"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

func newSimulation(t *testing.T, seed string) *votesim.Simulation {
	sim, err := votesim.NewSimulation(grouptest.Stream(seed), grouptest.Group(), votesim.Options{
		Params: lib.ElectionParameters{Omega: 12, Phi: 6, Delta: 2},
		Questions: []lib.Question{
			{CorrectnessID: "mayor", NumberOfSelections: 1, NumberOfVotingOptions: 4},
			{CorrectnessID: "council", NumberOfSelections: 3, NumberOfVotingOptions: 5},
			{CorrectnessID: "referendum", NumberOfSelections: 1, NumberOfVotingOptions: 3},
		},
		EligibleVoters: 5,
		ChunkSize:      2,
	})
	require.NoError(t, err)
	return sim
}

func TestExtract_EndToEnd(t *testing.T) {
	sim := newSimulation(t, "e2e")
	rand := grouptest.Stream("voters")
	for i, options := range [][]int{
		{0, 4, 5, 8, 9},
		{3, 6, 7, 8, 11},
		{1, 4, 6, 8, 10},
	} {
		codes, err := sim.Vote(rand, i, options...)
		require.NoError(t, err)
		require.Equal(t, sim.ExpectedChoiceReturnCodes(i, options...), codes)
		for _, c := range codes {
			require.Len(t, c, lib.ChoiceReturnCodeLength)
		}

		vcc, err := sim.Confirm(i)
		require.NoError(t, err)
		require.Equal(t, sim.Config.Table.ShortVoteCastReturnCodes[i], vcc)
		require.Len(t, vcc, lib.VoteCastReturnCodeLength)
	}
}

func TestExtractCRC_Errors(t *testing.T) {
	sim := newSimulation(t, "errors")
	selected, err := sim.Election.Select(0, 4, 5, 6, 9)
	require.NoError(t, err)
	v := sim.Voter(0)
	b, err := votesim.CreateBallot(grouptest.Stream("b"), sim.Election, v, selected)
	require.NoError(t, err)
	shares, err := sim.SendVote(b)
	require.NoError(t, err)
	ctx, cci, table := sim.Election.Context, sim.Election.Correctness, sim.Config.Table.Table

	codes, err := lookup.ExtractCRC(ctx, v.VerificationCardID, shares, cci, table)
	require.NoError(t, err)
	require.Equal(t, sim.ExpectedChoiceReturnCodes(0, 0, 4, 5, 6, 9), codes)

	_, err = lookup.ExtractCRC(ctx, v.VerificationCardID, shares[:3], cci, table)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))

	_, err = lookup.ExtractCRC(ctx, v.VerificationCardID, shares, cci, nil)
	require.True(t, xerrors.Is(err, returncodes.ErrProtocolState))

	_, err = lookup.ExtractCRC(ctx, sim.Voter(1).VerificationCardID, shares, cci, table)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))

	dup := []*ccr.LCCShare{shares[0], shares[0], shares[2], shares[3]}
	_, err = lookup.ExtractCRC(ctx, v.VerificationCardID, dup, cci, table)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))

	// A share of a dishonest node does not combine into a registered code.
	bad := *shares[1]
	bad.LongChoiceReturnCodeShare = shares[0].LongChoiceReturnCodeShare
	_, err = lookup.ExtractCRC(ctx, v.VerificationCardID, []*ccr.LCCShare{shares[0], &bad, shares[2], shares[3]},
		cci, table)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
	require.Contains(t, err.Error(), "mapping table")
}

func TestExtractVCC_Errors(t *testing.T) {
	sim := newSimulation(t, "vcc")
	_, err := sim.Vote(grouptest.Stream("b"), 2, 0, 4, 5, 6, 9)
	require.NoError(t, err)
	v := sim.Voter(2)
	ck, err := votesim.ConfirmationKey(sim.Election.Context.Group, v)
	require.NoError(t, err)
	ee, vcs := sim.Election.Context.ElectionEventID, sim.Election.Context.VerificationCardSetID
	shares := make([]*ccr.LVCCShare, len(sim.Nodes))
	for j, n := range sim.Nodes {
		shares[j], err = n.CreateLVCCShare(ee, vcs, v.VerificationCardID, ck)
		require.NoError(t, err)
	}
	ctx, table := sim.Election.Context, sim.Config.Table.Table

	vcc, err := lookup.ExtractVCC(ctx, v.VerificationCardID, shares, table)
	require.NoError(t, err)
	require.Equal(t, sim.Config.Table.ShortVoteCastReturnCodes[2], vcc)

	_, err = lookup.ExtractVCC(ctx, v.VerificationCardID, shares[1:], table)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
	_, err = lookup.ExtractVCC(ctx, "not an id", shares, table)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))

	reordered := []*ccr.LVCCShare{shares[3], shares[1], shares[2], shares[0]}
	vcc, err = lookup.ExtractVCC(ctx, v.VerificationCardID, reordered, table)
	require.NoError(t, err)
	require.Equal(t, sim.Config.Table.ShortVoteCastReturnCodes[2], vcc)
}
