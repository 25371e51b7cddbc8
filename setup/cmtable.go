package setup

import (
	"encoding/base64"
	"runtime"

	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/symmetric"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// GenCMTableInput is the input of GenCMTable. The slices are indexed by
// voter and must all have the same length.
type GenCMTableInput struct {
	SetupKey                      *elgamal.KeyPair
	VerificationCardIDs           []string
	EncryptedPreChoiceReturnCodes []elgamal.Ciphertext
	PreVoteCastReturnCodes        []group.GqElement
	Correctness                   *lib.CombinedCorrectnessInformation
	// Codes draws the short codes. A nil source draws them from a fresh
	// random stream.
	Codes lib.CodeSource
}

func (in *GenCMTableInput) validate(ctx lib.SetupContext) error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	if in.SetupKey == nil || in.Correctness == nil {
		return returncodes.Validationf("setup key and correctness information are required")
	}
	if err := ctx.CheckGroup("setup key", in.SetupKey.Group()); err != nil {
		return err
	}
	n := len(in.VerificationCardIDs)
	if n == 0 {
		return returncodes.Validationf("no verification cards")
	}
	if len(in.EncryptedPreChoiceReturnCodes) != n || len(in.PreVoteCastReturnCodes) != n {
		return returncodes.Validationf("expected %d encrypted pre-Choice and pre-Vote Cast Return Codes, got %d and %d",
			n, len(in.EncryptedPreChoiceReturnCodes), len(in.PreVoteCastReturnCodes))
	}
	options := in.Correctness.TotalNumberOfVotingOptions()
	for i, id := range in.VerificationCardIDs {
		if err := lib.ValidateID("verification card id", id); err != nil {
			return err
		}
		c := in.EncryptedPreChoiceReturnCodes[i]
		if c.IsNil() || c.Size() != options {
			return returncodes.Validationf("encrypted pre-Choice Return Codes of card %s must have size %d", id, options)
		}
		if err := ctx.CheckGroup("encrypted pre-Choice Return Codes", c.Group()); err != nil {
			return err
		}
		if in.PreVoteCastReturnCodes[i].IsNil() {
			return returncodes.Validationf("pre-Vote Cast Return Code of card %s is missing", id)
		}
		if err := ctx.CheckGroup("pre-Vote Cast Return Code", in.PreVoteCastReturnCodes[i].Group()); err != nil {
			return err
		}
	}
	return nil
}

// CMTable is the output of GenCMTable.
type CMTable struct {
	// Table is the Return Codes Mapping Table, sorted by key.
	Table *lib.MappingTable
	// ShortChoiceReturnCodes[i] are the codes printed for voter i, in the
	// order of the voting options.
	ShortChoiceReturnCodes [][]string
	// ShortVoteCastReturnCodes[i] is the code printed for voter i.
	ShortVoteCastReturnCodes []string
}

// GenCMTable derives the long return codes of every voter, draws the short
// codes and encrypts each short code under its long code. The table is
// sorted by key so that it does not reveal the order of the voters.
func GenCMTable(ctx lib.SetupContext, in *GenCMTableInput) (*CMTable, error) {
	if err := in.validate(ctx); err != nil {
		return nil, err
	}
	codes := in.Codes
	if codes == nil {
		codes = lib.RandomCodeSource{Stream: lib.LockedStream(returncodes.Suite.RandomStream())}
	}
	correctnessIDs := in.Correctness.CorrectnessIDsByOption()
	n := len(in.VerificationCardIDs)
	out := &CMTable{
		ShortChoiceReturnCodes:   make([][]string, n),
		ShortVoteCastReturnCodes: make([]string, n),
	}
	entries := make([][]lib.TableEntry, n)

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			var err error
			entries[i], out.ShortChoiceReturnCodes[i], out.ShortVoteCastReturnCodes[i], err =
				genVoterTableEntries(ctx, in, codes, correctnessIDs, i)
			if err != nil {
				return xerrors.Errorf("card %s: %w", in.VerificationCardIDs[i], err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []lib.TableEntry
	for _, e := range entries {
		all = append(all, e...)
	}
	var err error
	if out.Table, err = lib.NewMappingTable(all); err != nil {
		return nil, err
	}
	log.Lvlf2("Generated a mapping table of %d entries for card set %s", out.Table.Len(), ctx.VerificationCardSetID)
	return out, nil
}

func genVoterTableEntries(ctx lib.SetupContext, in *GenCMTableInput, codes lib.CodeSource, correctnessIDs []string,
	i int) ([]lib.TableEntry, []string, string, error) {
	vcID := in.VerificationCardIDs[i]
	pC, err := elgamal.Decrypt(in.EncryptedPreChoiceReturnCodes[i], in.SetupKey.Secret())
	if err != nil {
		return nil, nil, "", err
	}
	shortCCs, err := codes.ChoiceReturnCodes(vcID, pC.Size())
	if err != nil {
		return nil, nil, "", err
	}
	if len(shortCCs) != pC.Size() {
		return nil, nil, "", returncodes.Validationf("code source returned %d codes instead of %d", len(shortCCs), pC.Size())
	}
	entries := make([]lib.TableEntry, 0, pC.Size()+1)
	for k := 0; k < pC.Size(); k++ {
		lCC, err := lib.LongChoiceReturnCode(ctx, vcID, correctnessIDs[k], pC.Get(k))
		if err != nil {
			return nil, nil, "", err
		}
		entry, err := tableEntry(lCC, shortCCs[k])
		if err != nil {
			return nil, nil, "", err
		}
		entries = append(entries, entry)
	}

	shortVCC, err := codes.VoteCastReturnCode(vcID)
	if err != nil {
		return nil, nil, "", err
	}
	lVCC, err := lib.LongVoteCastReturnCode(ctx, vcID, in.PreVoteCastReturnCodes[i])
	if err != nil {
		return nil, nil, "", err
	}
	entry, err := tableEntry(lVCC, shortVCC)
	if err != nil {
		return nil, nil, "", err
	}
	return append(entries, entry), shortCCs, shortVCC, nil
}

func tableEntry(longCode []byte, shortCode string) (lib.TableEntry, error) {
	key, err := lib.TableKey(longCode)
	if err != nil {
		return lib.TableEntry{}, err
	}
	sealed, err := symmetric.Seal(longCode, []byte(shortCode))
	if err != nil {
		return lib.TableEntry{}, err
	}
	return lib.TableEntry{Key: key, Value: base64.StdEncoding.EncodeToString(sealed)}, nil
}
