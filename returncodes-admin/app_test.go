package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/group/grouptest"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/votesim"
	"golang.org/x/xerrors"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

const electionTOML = `
Omega = 10
Phi = 5
Delta = 1
EligibleVoters = 3

[[Questions]]
CorrectnessID = "mayor"
NumberOfSelections = 1
NumberOfVotingOptions = 3

[[Questions]]
CorrectnessID = "council"
NumberOfSelections = 2
NumberOfVotingOptions = 4
`

func TestReadElectionConfig(t *testing.T) {
	cfg, err := readElectionConfig(strings.NewReader(electionTOML))
	require.NoError(t, err)
	require.NoError(t, lib.ValidateID("election event id", cfg.ElectionEventID))
	require.NoError(t, lib.ValidateID("card set id", cfg.VerificationCardSetID))
	require.Equal(t, lib.DefaultChunkSize, cfg.ChunkSize)
	require.Equal(t, lib.ElectionParameters{Omega: 10, Phi: 5, Delta: 1}, cfg.params())
	require.Len(t, cfg.Questions, 2)
	require.Equal(t, "council", cfg.Questions[1].CorrectnessID)

	grp, err := cfg.group()
	require.NoError(t, err)
	require.True(t, grp.Equals(group.FFDHE2048()))

	small := grouptest.SmallGroup()
	cfg.P, cfg.Q, cfg.G = small.P().Text(16), small.Q().Text(16), small.Generator().Value().Text(16)
	grp, err = cfg.group()
	require.NoError(t, err)
	require.True(t, grp.Equals(small))
	cfg.G = "not hex"
	_, err = cfg.group()
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))

	_, err = readElectionConfig(strings.NewReader("Omega = 2\nPhi = 5\nDelta = 1\nEligibleVoters = 1\n"))
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
	_, err = readElectionConfig(strings.NewReader("Omega = 10\nPhi = 5\nDelta = 1\n"))
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
}

func TestFirstOptions(t *testing.T) {
	cfg, err := readElectionConfig(strings.NewReader(electionTOML))
	require.NoError(t, err)
	require.Equal(t, []int{0, 3, 4}, firstOptions(cfg.Questions))
}

func TestElectionKey(t *testing.T) {
	grp := grouptest.Group()
	path := filepath.Join(t.TempDir(), "key.toml")
	ee := lib.GenerateID()
	kp, err := loadOrCreateElectionKey(path, ee, grp, 2)
	require.NoError(t, err)
	require.Equal(t, 2, kp.Size())

	again, err := loadOrCreateElectionKey(path, ee, grp, 2)
	require.NoError(t, err)
	require.True(t, kp.Public().Equals(again.Public()))

	_, err = loadOrCreateElectionKey(path, lib.GenerateID(), grp, 2)
	require.Error(t, err)
}

func TestCardSetOutput(t *testing.T) {
	cfg, err := readElectionConfig(strings.NewReader(electionTOML))
	require.NoError(t, err)
	grp := grouptest.Group()
	sim, err := votesim.NewSimulation(grouptest.Stream("admin"), grp, votesim.Options{
		Params:         cfg.params(),
		Questions:      cfg.Questions,
		EligibleVoters: cfg.EligibleVoters,
		ChunkSize:      2,
	})
	require.NoError(t, err)
	e, err := cfg.election(grp, sim.Election.ElectionPublicKey)
	require.NoError(t, err)
	require.True(t, e.EncodedVotingOptions.Equals(sim.Election.EncodedVotingOptions))

	out := newCardSetOutput(e, sim.Config)
	require.Len(t, out.Voters, 3)
	require.Equal(t, sim.Config.Table.Table.Len(), len(out.Table))
	for i, v := range out.Voters {
		require.Equal(t, sim.Voter(i).VerificationCardID, v.VerificationCardID)
		require.Len(t, v.ChoiceReturnCodes, 7)
		require.Equal(t, sim.Config.Table.ShortVoteCastReturnCodes[i], v.VoteCastReturnCode)
	}
	require.NoError(t, writeTOML(filepath.Join(t.TempDir(), "cardset.toml"), 0600, out))
}
