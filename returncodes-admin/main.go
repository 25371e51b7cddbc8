// This is a command line interface for the setup authority of the Return
// Codes protocol. It configures verification card sets on the four conodes
// of a roster.
package main

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.dedis.ch/kyber/v3/util/random"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/service"
	"go.dedis.ch/returncodes/votesim"
	"golang.org/x/xerrors"
	cli "gopkg.in/urfave/cli.v1"
)

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "returncodes-admin"
	cliApp.Usage = "configure verification card sets on the control components"
	cliApp.Version = "1.0"
	cliApp.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "debug, d",
			Value: 0,
			Usage: "debug-level: 1 for terse, 5 for maximal",
		},
	}
	cliApp.Commands = []cli.Command{
		{
			Name:      "configure",
			Aliases:   []string{"c"},
			Usage:     "configure a verification card set on the conodes of a roster",
			ArgsUsage: "election.toml",
			Action:    configure,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "roster, r",
					Usage: "onet group definition file of the four conodes",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: ".",
					Usage: "directory the card set is written to",
				},
				cli.StringFlag{
					Name:  "key, k",
					Usage: "election key file, created if it does not exist",
				},
			},
		},
		{
			Name:      "check",
			Usage:     "configure a card set on in-process nodes and cast one vote",
			ArgsUsage: "election.toml",
			Action:    check,
		},
		{
			Name:   "group",
			Usage:  "print the parameters of the default group",
			Action: printGroup,
		},
	}
	cliApp.Before = func(c *cli.Context) error {
		log.SetDebugVisible(c.Int("debug"))
		return nil
	}
	log.ErrFatal(cliApp.Run(os.Args))
}

func readConfig(c *cli.Context) (*electionConfig, *group.GqGroup, error) {
	if c.NArg() != 1 {
		return nil, nil, xerrors.New("please give the election configuration file")
	}
	f, err := os.Open(c.Args().First())
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	cfg, err := readElectionConfig(f)
	if err != nil {
		return nil, nil, err
	}
	grp, err := cfg.group()
	if err != nil {
		return nil, nil, err
	}
	return cfg, grp, nil
}

func configure(c *cli.Context) error {
	cfg, grp, err := readConfig(c)
	if err != nil {
		return err
	}
	if c.String("roster") == "" {
		return xerrors.New("please give the roster with --roster")
	}
	roster, err := readRoster(c.String("roster"))
	if err != nil {
		return err
	}
	keyFile := c.String("key")
	if keyFile == "" {
		keyFile = filepath.Join(c.String("out"), "election-key-"+cfg.ElectionEventID+".toml")
	}
	electionKey, err := loadOrCreateElectionKey(keyFile, cfg.ElectionEventID, grp, cfg.Delta)
	if err != nil {
		return err
	}
	e, err := cfg.election(grp, electionKey.Public())
	if err != nil {
		return err
	}

	authority, err := service.NewAuthority(roster, grp)
	if err != nil {
		return err
	}
	authority.ChunkSize = cfg.ChunkSize
	config, err := authority.Configure(e)
	if err != nil {
		return xerrors.Errorf("configuring card set: %w", err)
	}
	out := filepath.Join(c.String("out"), "cardset-"+e.VerificationCardSetID+".toml")
	if err := writeTOML(out, 0600, newCardSetOutput(e, config)); err != nil {
		return err
	}
	log.Infof("Wrote card set %s of election event %s with %d voters to %s", e.VerificationCardSetID,
		e.ElectionEventID, e.EligibleVoters, out)
	return nil
}

// loadOrCreateElectionKey reads the election key of an election event, or
// generates and writes it.
func loadOrCreateElectionKey(path, ee string, grp *group.GqGroup, delta int) (*elgamal.KeyPair, error) {
	var stored electionKeyOutput
	_, err := toml.DecodeFile(path, &stored)
	if os.IsNotExist(err) {
		kp, err := elgamal.GenKeyPair(random.New(), grp, delta)
		if err != nil {
			return nil, err
		}
		if err := writeTOML(path, 0600, newElectionKeyOutput(ee, kp)); err != nil {
			return nil, err
		}
		log.Lvl1("Generated the election key in", path)
		return kp, nil
	}
	if err != nil {
		return nil, xerrors.Errorf("reading election key: %w", err)
	}
	if stored.ElectionEventID != ee {
		return nil, xerrors.Errorf("election key %s belongs to election event %s", path, stored.ElectionEventID)
	}
	secret := make([][]byte, len(stored.SecretKey))
	for i, s := range stored.SecretKey {
		if secret[i], err = hex.DecodeString(s); err != nil {
			return nil, err
		}
	}
	sk, err := grp.Exponents().ElementsFromBytes(secret)
	if err != nil {
		return nil, err
	}
	return elgamal.NewKeyPair(grp, sk)
}

func check(c *cli.Context) error {
	cfg, grp, err := readConfig(c)
	if err != nil {
		return err
	}
	sim, err := votesim.NewSimulation(random.New(), grp, votesim.Options{
		Params:         cfg.params(),
		Questions:      cfg.Questions,
		EligibleVoters: cfg.EligibleVoters,
		ChunkSize:      cfg.ChunkSize,
	})
	if err != nil {
		return xerrors.Errorf("configuring card set: %w", err)
	}
	options := firstOptions(cfg.Questions)
	codes, err := sim.Vote(random.New(), 0, options...)
	if err != nil {
		return xerrors.Errorf("voting: %w", err)
	}
	if printed := sim.ExpectedChoiceReturnCodes(0, options...); !equal(codes, printed) {
		return xerrors.Errorf("got Choice Return Codes %v, printed %v", codes, printed)
	}
	vcc, err := sim.Confirm(0)
	if err != nil {
		return xerrors.Errorf("confirming: %w", err)
	}
	if vcc != sim.Config.Table.ShortVoteCastReturnCodes[0] {
		return xerrors.Errorf("got Vote Cast Return Code %s, printed %s", vcc, sim.Config.Table.ShortVoteCastReturnCodes[0])
	}
	log.Infof("Choice Return Codes %v and Vote Cast Return Code %s match the voting card", codes, vcc)
	return nil
}

// firstOptions selects the first options of every question.
func firstOptions(questions []lib.Question) []int {
	var indices []int
	offset := 0
	for _, q := range questions {
		for i := 0; i < q.NumberOfSelections; i++ {
			indices = append(indices, offset+i)
		}
		offset += q.NumberOfVotingOptions
	}
	return indices
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func printGroup(c *cli.Context) error {
	grp := group.FFDHE2048()
	return toml.NewEncoder(os.Stdout).Encode(struct{ P, Q, G string }{
		P: grp.P().Text(16),
		Q: grp.Q().Text(16),
		G: grp.Generator().Value().Text(16),
	})
}
