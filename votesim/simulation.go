package votesim

import (
	"crypto/cipher"

	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/ccr"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/lookup"
	"go.dedis.ch/returncodes/setup"
)

// Simulation is a configured card set with four in-process nodes. It
// plays the voting client and the voting server against them.
type Simulation struct {
	Election *Election
	Nodes    []*ccr.Node
	Config   *setup.Configuration
	// ElectionKey is the election key pair. Its secret key is never used by
	// the Return Codes protocol.
	ElectionKey *elgamal.KeyPair
}

// Options configure a simulation.
type Options struct {
	Params         lib.ElectionParameters
	Questions      []lib.Question
	EligibleVoters int
	ChunkSize      int
	Codes          lib.CodeSource
}

// NewSimulation generates the keys of the four nodes and configures one
// card set with them.
func NewSimulation(rand cipher.Stream, grp *group.GqGroup, opts Options) (*Simulation, error) {
	rand = lib.LockedStream(rand)
	correctness, err := lib.NewCombinedCorrectnessInformation(opts.Questions...)
	if err != nil {
		return nil, err
	}
	options, err := grp.SmallPrimeMembers(correctness.TotalNumberOfVotingOptions())
	if err != nil {
		return nil, err
	}
	electionKey, err := elgamal.GenKeyPair(rand, grp, opts.Params.Delta)
	if err != nil {
		return nil, err
	}
	nodes := make([]*ccr.Node, returncodes.NumberOfNodes)
	setupNodes := make([]setup.Node, len(nodes))
	for j := range nodes {
		if nodes[j], err = ccr.NewNode(j+1, grp, ccr.NewMemoryStore()); err != nil {
			return nil, err
		}
		nodes[j].Rand = rand
		setupNodes[j] = nodes[j]
	}
	authority := &setup.Authority{
		Group:     grp,
		Nodes:     setupNodes,
		ChunkSize: opts.ChunkSize,
		Rand:      rand,
		Codes:     opts.Codes,
	}
	ee, vcs := lib.GenerateID(), lib.GenerateID()
	cfg, err := authority.Configure(&setup.Election{
		ElectionEventID:       ee,
		VerificationCardSetID: vcs,
		Params:                opts.Params,
		Correctness:           correctness,
		EncodedVotingOptions:  options,
		ElectionPublicKey:     electionKey.Public(),
		EligibleVoters:        opts.EligibleVoters,
	})
	if err != nil {
		return nil, err
	}
	return &Simulation{
		Election: &Election{
			Context:              cfg.Context,
			Params:               opts.Params,
			Correctness:          correctness,
			ElectionPublicKey:    electionKey.Public(),
			CCRKey:               cfg.CCRKey,
			EncodedVotingOptions: options,
		},
		Nodes:       nodes,
		Config:      cfg,
		ElectionKey: electionKey,
	}, nil
}

// Voter returns the voting client data of voter i.
func (s *Simulation) Voter(i int) *Voter {
	v := s.Config.Data.Voters[i]
	return &Voter{
		VerificationCardID: v.VerificationCardID,
		KeyPair:            v.KeyPair,
		BallotCastingKey:   v.BallotCastingKey,
	}
}

// ExpectedChoiceReturnCodes returns the short codes printed for the
// options of voter i at the given indices.
func (s *Simulation) ExpectedChoiceReturnCodes(i int, options ...int) []string {
	codes := make([]string, len(options))
	for k, o := range options {
		codes[k] = s.Config.Table.ShortChoiceReturnCodes[i][o]
	}
	return codes
}

// SendVote runs a ballot through the four nodes and returns their long
// Choice Return Code shares.
func (s *Simulation) SendVote(b *ccr.Ballot) ([]*ccr.LCCShare, error) {
	return SendVote(s.Election.Context, s.nodes(), b)
}

func (s *Simulation) nodes() []Node {
	nodes := make([]Node, len(s.Nodes))
	for j, n := range s.Nodes {
		nodes[j] = n
	}
	return nodes
}

// Vote casts a vote for the given option indices of voter i and returns the
// short Choice Return Codes the voting server extracts for it.
func (s *Simulation) Vote(rand cipher.Stream, i int, options ...int) ([]string, error) {
	v := s.Voter(i)
	selected, err := s.Election.Select(options...)
	if err != nil {
		return nil, err
	}
	b, err := CreateBallot(rand, s.Election, v, selected)
	if err != nil {
		return nil, err
	}
	shares, err := s.SendVote(b)
	if err != nil {
		return nil, err
	}
	codes, err := lookup.ExtractCRC(s.Election.Context, v.VerificationCardID, shares, s.Election.Correctness,
		s.Config.Table.Table)
	if err != nil {
		return nil, err
	}
	log.Lvlf2("Voter %d received Choice Return Codes %v", i, codes)
	return codes, nil
}

// Confirm confirms the vote of voter i with its Ballot Casting Key and
// returns the short Vote Cast Return Code.
func (s *Simulation) Confirm(i int) (string, error) {
	v := s.Voter(i)
	ck, err := ConfirmationKey(s.Election.Context.Group, v)
	if err != nil {
		return "", err
	}
	return s.ConfirmWith(v.VerificationCardID, ck)
}

// ConfirmWith sends a confirmation key for a card through the four nodes.
// Every node checks the hashed shares against its allow list before the
// code is extracted.
func (s *Simulation) ConfirmWith(vcID string, ck group.GqElement) (string, error) {
	shares, err := ConfirmVote(s.Election.Context, s.nodes(), vcID, ck)
	if err != nil {
		return "", err
	}
	return lookup.ExtractVCC(s.Election.Context, vcID, shares, s.Config.Table.Table)
}
