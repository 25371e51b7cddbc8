package main

import (
	"encoding/hex"
	"io"
	"math/big"
	"os"

	"github.com/BurntSushi/toml"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/app"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/setup"
	"golang.org/x/xerrors"
)

// electionConfig is the election configuration file. The group is ffdhe2048
// unless P, Q and G are given in hexadecimal.
type electionConfig struct {
	ElectionEventID       string
	VerificationCardSetID string
	P                     string
	Q                     string
	G                     string
	Omega                 int
	Phi                   int
	Delta                 int
	EligibleVoters        int
	ChunkSize             int
	SkipKeyGeneration     bool
	Questions             []lib.Question
}

func readElectionConfig(r io.Reader) (*electionConfig, error) {
	cfg := &electionConfig{}
	if _, err := toml.DecodeReader(r, cfg); err != nil {
		return nil, xerrors.Errorf("decoding election configuration: %w", err)
	}
	if cfg.ElectionEventID == "" {
		cfg.ElectionEventID = lib.GenerateID()
	}
	if cfg.VerificationCardSetID == "" {
		cfg.VerificationCardSetID = lib.GenerateID()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = lib.DefaultChunkSize
	}
	if err := cfg.params().Validate(); err != nil {
		return nil, err
	}
	if cfg.EligibleVoters < 1 {
		return nil, returncodes.Validationf("at least one eligible voter is required")
	}
	return cfg, nil
}

func (cfg *electionConfig) params() lib.ElectionParameters {
	return lib.ElectionParameters{Omega: cfg.Omega, Phi: cfg.Phi, Delta: cfg.Delta}
}

func (cfg *electionConfig) group() (*group.GqGroup, error) {
	if cfg.P == "" && cfg.Q == "" && cfg.G == "" {
		return group.FFDHE2048(), nil
	}
	values := make([]*big.Int, 3)
	for i, s := range []string{cfg.P, cfg.Q, cfg.G} {
		v, ok := new(big.Int).SetString(s, 16)
		if !ok {
			return nil, returncodes.Validationf("group parameter %q is not hexadecimal", s)
		}
		values[i] = v
	}
	return group.NewGqGroup(values[0], values[1], values[2])
}

// election returns the card set to configure. The voting options are
// encoded as the smallest prime members of the group.
func (cfg *electionConfig) election(grp *group.GqGroup, electionKey group.GqVector) (*setup.Election, error) {
	correctness, err := lib.NewCombinedCorrectnessInformation(cfg.Questions...)
	if err != nil {
		return nil, err
	}
	options, err := grp.SmallPrimeMembers(correctness.TotalNumberOfVotingOptions())
	if err != nil {
		return nil, err
	}
	return &setup.Election{
		ElectionEventID:       cfg.ElectionEventID,
		VerificationCardSetID: cfg.VerificationCardSetID,
		Params:                cfg.params(),
		Correctness:           correctness,
		EncodedVotingOptions:  options,
		ElectionPublicKey:     electionKey,
		EligibleVoters:        cfg.EligibleVoters,
		SkipKeyGeneration:     cfg.SkipKeyGeneration,
	}, nil
}

// readRoster reads an onet group description.
func readRoster(path string) (*onet.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	desc, err := app.ReadGroupDescToml(f)
	if err != nil {
		return nil, xerrors.Errorf("reading roster: %w", err)
	}
	return desc.Roster, nil
}

// cardSetOutput is what the voting server and the printing office need of a
// configured card set.
type cardSetOutput struct {
	ElectionEventID       string
	VerificationCardSetID string
	P                     string
	Q                     string
	G                     string
	Omega                 int
	Phi                   int
	Delta                 int
	Questions             []lib.Question
	EncodedVotingOptions  []string
	ElectionPublicKey     []string
	CCRKey                []string
	Voters                []voterOutput
	Table                 []lib.TableEntry
}

type voterOutput struct {
	VerificationCardID string
	SecretKey          string
	BallotCastingKey   string
	ChoiceReturnCodes  []string
	VoteCastReturnCode string
}

// electionKeyOutput holds the election key pair generated with a card set.
type electionKeyOutput struct {
	ElectionEventID string
	PublicKey       []string
	SecretKey       []string
}

func hexValues(bs [][]byte) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = hex.EncodeToString(b)
	}
	return out
}

func newCardSetOutput(e *setup.Election, cfg *setup.Configuration) *cardSetOutput {
	grp := cfg.Context.Group
	out := &cardSetOutput{
		ElectionEventID:       e.ElectionEventID,
		VerificationCardSetID: e.VerificationCardSetID,
		P:                     grp.P().Text(16),
		Q:                     grp.Q().Text(16),
		G:                     grp.Generator().Value().Text(16),
		Omega:                 e.Params.Omega,
		Phi:                   e.Params.Phi,
		Delta:                 e.Params.Delta,
		Questions:             e.Correctness.Questions(),
		EncodedVotingOptions:  hexValues(group.GqValues(e.EncodedVotingOptions)),
		ElectionPublicKey:     hexValues(group.GqValues(e.ElectionPublicKey)),
		CCRKey:                hexValues(group.GqValues(cfg.CCRKey)),
		Table:                 cfg.Table.Table.Entries(),
	}
	for i, v := range cfg.Data.Voters {
		out.Voters = append(out.Voters, voterOutput{
			VerificationCardID: v.VerificationCardID,
			SecretKey:          hexValues(group.ZqValues(v.KeyPair.Secret()))[0],
			BallotCastingKey:   v.BallotCastingKey,
			ChoiceReturnCodes:  cfg.Table.ShortChoiceReturnCodes[i],
			VoteCastReturnCode: cfg.Table.ShortVoteCastReturnCodes[i],
		})
	}
	return out
}

func newElectionKeyOutput(ee string, kp *elgamal.KeyPair) *electionKeyOutput {
	return &electionKeyOutput{
		ElectionEventID: ee,
		PublicKey:       hexValues(group.GqValues(kp.Public())),
		SecretKey:       hexValues(group.ZqValues(kp.Secret())),
	}
}

func writeTOML(path string, perm os.FileMode, v interface{}) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return xerrors.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
