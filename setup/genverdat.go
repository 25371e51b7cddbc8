package setup

import (
	"crypto/cipher"
	"runtime"

	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/hash"
	"go.dedis.ch/returncodes/lib"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// GenVerDatInput is the input of GenVerDat for one verification card set.
type GenVerDatInput struct {
	Context        lib.SetupContext
	Params         lib.ElectionParameters
	EligibleVoters int
	// EncodedVotingOptions are the n prime encodings of the voting options,
	// in the order of the correctness information.
	EncodedVotingOptions group.GqVector
	Correctness          *lib.CombinedCorrectnessInformation
	SetupPublicKey       group.GqVector
}

func (in *GenVerDatInput) validate() error {
	if err := in.Context.Validate(); err != nil {
		return err
	}
	if err := in.Params.Validate(); err != nil {
		return err
	}
	if in.EligibleVoters <= 0 {
		return returncodes.Validationf("number of eligible voters must be positive, got %d", in.EligibleVoters)
	}
	if in.Correctness == nil {
		return returncodes.Validationf("correctness information is required")
	}
	if err := in.Correctness.Validate(in.Params); err != nil {
		return err
	}
	n := in.EncodedVotingOptions.Size()
	if n == 0 || n > in.Params.Omega {
		return returncodes.Validationf("number of voting options must be in [1, omega=%d], got %d", in.Params.Omega, n)
	}
	if err := group.CheckSize("encoded voting options", in.EncodedVotingOptions,
		in.Correctness.TotalNumberOfVotingOptions()); err != nil {
		return err
	}
	if !group.AreDistinct(in.EncodedVotingOptions) {
		return returncodes.Validationf("encoded voting options must be distinct")
	}
	if err := group.CheckSize("setup public key", in.SetupPublicKey, in.Params.Omega); err != nil {
		return err
	}
	if err := in.Context.CheckGroup("encoded voting options", in.EncodedVotingOptions.Get(0).Group()); err != nil {
		return err
	}
	return in.Context.CheckGroup("setup public key", in.SetupPublicKey.Get(0).Group())
}

// VoterData is the verification data of one voter.
type VoterData struct {
	lib.CardSetupData
	KeyPair          *elgamal.KeyPair
	BallotCastingKey string
}

// VerificationData is the output of GenVerDat.
type VerificationData struct {
	Voters []VoterData
	// AllowList holds the digests of the hashed partial Choice Return Codes
	// of every voter and voting option.
	AllowList *lib.AllowList
}

// Cards returns the part of the verification data sent to the nodes.
func (vd *VerificationData) Cards() []lib.CardSetupData {
	cards := make([]lib.CardSetupData, len(vd.Voters))
	for i, v := range vd.Voters {
		cards[i] = v.CardSetupData
	}
	return cards
}

// GenVerDat generates the verification cards of a verification card set:
// for every voter a key pair, the encrypted hashed partial Choice Return
// Codes, a Ballot Casting Key and the encrypted hashed confirmation key.
// The voters are computed in parallel.
func GenVerDat(rand cipher.Stream, in *GenVerDatInput) (*VerificationData, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	rand = lib.LockedStream(rand)
	voters := make([]VoterData, in.EligibleVoters)
	entries := make([][]string, in.EligibleVoters)
	correctnessIDs := in.Correctness.CorrectnessIDsByOption()

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i := range voters {
		i := i
		eg.Go(func() error {
			v, e, err := genVoterData(rand, in, correctnessIDs)
			if err != nil {
				return xerrors.Errorf("voter %d: %w", i, err)
			}
			voters[i], entries[i] = v, e
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []string
	for _, e := range entries {
		all = append(all, e...)
	}
	allowList, err := lib.NewAllowList(all)
	if err != nil {
		return nil, xerrors.Errorf("building allow list: %w", err)
	}
	log.Lvlf2("Generated verification data for %d voters of card set %s",
		len(voters), in.Context.VerificationCardSetID)
	return &VerificationData{Voters: voters, AllowList: allowList}, nil
}

func genVoterData(rand cipher.Stream, in *GenVerDatInput, correctnessIDs []string) (VoterData, []string, error) {
	ctx := in.Context
	grp := ctx.Group
	zq := grp.Exponents()
	vcID := lib.GenerateID()

	kp, err := elgamal.GenKeyPair(rand, grp, 1)
	if err != nil {
		return VoterData{}, nil, err
	}
	k := kp.Secret().Get(0)

	n := in.EncodedVotingOptions.Size()
	hpCC := make([]group.GqElement, n)
	entries := make([]string, n)
	for i := range hpCC {
		pCC := in.EncodedVotingOptions.Get(i).Exponentiate(k)
		if hpCC[i], err = hash.HashAndSquare(pCC.Value(), grp); err != nil {
			return VoterData{}, nil, err
		}
		if entries[i], err = lib.AllowListEntry(ctx, vcID, correctnessIDs[i], hpCC[i]); err != nil {
			return VoterData{}, nil, err
		}
	}
	hpCCVector, err := group.NewVector(hpCC...)
	if err != nil {
		return VoterData{}, nil, err
	}
	encryptedPCC, err := elgamal.Encrypt(hpCCVector, zq.Random(rand), in.SetupPublicKey)
	if err != nil {
		return VoterData{}, nil, err
	}

	bck := lib.GenBallotCastingKey(rand)
	bckValue, err := lib.ParseDecimal(bck)
	if err != nil {
		return VoterData{}, nil, err
	}
	hBCK, err := hash.HashAndSquare(bckValue, grp)
	if err != nil {
		return VoterData{}, nil, err
	}
	hCK, err := hash.HashAndSquare(hBCK.Exponentiate(k).Value(), grp)
	if err != nil {
		return VoterData{}, nil, err
	}
	hCKVector, err := group.NewVector(hCK)
	if err != nil {
		return VoterData{}, nil, err
	}
	encryptedCK, err := elgamal.Encrypt(hCKVector, zq.Random(rand), in.SetupPublicKey)
	if err != nil {
		return VoterData{}, nil, err
	}

	return VoterData{
		CardSetupData: lib.CardSetupData{
			VerificationCardID:        vcID,
			VerificationCardPublicKey: kp.Public(),
			EncryptedHashedPCC:        encryptedPCC,
			EncryptedHashedCK:         encryptedCK,
		},
		KeyPair:          kp,
		BallotCastingKey: bck,
	}, entries, nil
}
