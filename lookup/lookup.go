// Package lookup retrieves the short return codes on the voting server. It
// combines the long code shares of the four control components into the
// long return codes and decrypts the matching entries of the Return Codes
// Mapping Table.
package lookup

import (
	"sort"

	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/ccr"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"go.dedis.ch/returncodes/symmetric"
	"golang.org/x/xerrors"
)

// ExtractCRC returns the short Choice Return Codes of a ballot, in the
// order of its selections. shares must hold the long Choice Return Code
// share of every node.
func ExtractCRC(ctx lib.SetupContext, vcID string, shares []*ccr.LCCShare,
	correctness *lib.CombinedCorrectnessInformation, table *lib.MappingTable) ([]string, error) {
	if err := validate(ctx, vcID, table); err != nil {
		return nil, err
	}
	if correctness == nil {
		return nil, returncodes.Validationf("correctness information is required")
	}
	if len(shares) != returncodes.NumberOfNodes {
		return nil, returncodes.Validationf("expected %d long Choice Return Code shares, got %d",
			returncodes.NumberOfNodes, len(shares))
	}
	psi := correctness.TotalNumberOfSelections()
	vectors := make([]group.GqVector, len(shares))
	for i, s := range shares {
		if s == nil || s.VerificationCardID != vcID {
			return nil, returncodes.Validationf("long Choice Return Code share %d is not for card %s", i, vcID)
		}
		if err := group.CheckSize("long Choice Return Code share", s.LongChoiceReturnCodeShare, psi); err != nil {
			return nil, err
		}
		if err := ctx.CheckGroup("long Choice Return Code share", s.LongChoiceReturnCodeShare.Get(0).Group()); err != nil {
			return nil, err
		}
		vectors[i] = s.LongChoiceReturnCodeShare
	}
	if !distinctNodes(len(shares), func(i int) int { return shares[i].NodeID }) {
		return nil, returncodes.Validationf("expected one long Choice Return Code share of each node")
	}

	correctnessIDs := correctness.CorrectnessIDsBySelection()
	codes := make([]string, psi)
	for i := range codes {
		pC := vectors[0].Get(i)
		for _, v := range vectors[1:] {
			pC = pC.Multiply(v.Get(i))
		}
		lCC, err := lib.LongChoiceReturnCode(ctx, vcID, correctnessIDs[i], pC)
		if err != nil {
			return nil, err
		}
		if codes[i], err = retrieve(table, lCC); err != nil {
			return nil, xerrors.Errorf("Choice Return Code %d of card %s: %w", i, vcID, err)
		}
	}
	log.Lvlf3("Extracted %d Choice Return Codes for card %s", psi, vcID)
	return codes, nil
}

// ExtractVCC returns the short Vote Cast Return Code of a confirmed card.
// shares must hold the long Vote Cast Return Code share of every node.
func ExtractVCC(ctx lib.SetupContext, vcID string, shares []*ccr.LVCCShare, table *lib.MappingTable) (string, error) {
	if err := validate(ctx, vcID, table); err != nil {
		return "", err
	}
	if len(shares) != returncodes.NumberOfNodes {
		return "", returncodes.Validationf("expected %d long Vote Cast Return Code shares, got %d",
			returncodes.NumberOfNodes, len(shares))
	}
	pVCC := ctx.Group.Identity()
	for i, s := range shares {
		if s == nil || s.VerificationCardID != vcID || s.LongVoteCastReturnCodeShare.IsNil() {
			return "", returncodes.Validationf("long Vote Cast Return Code share %d is not for card %s", i, vcID)
		}
		if err := ctx.CheckGroup("long Vote Cast Return Code share", s.LongVoteCastReturnCodeShare.Group()); err != nil {
			return "", err
		}
		pVCC = pVCC.Multiply(s.LongVoteCastReturnCodeShare)
	}
	if !distinctNodes(len(shares), func(i int) int { return shares[i].NodeID }) {
		return "", returncodes.Validationf("expected one long Vote Cast Return Code share of each node")
	}
	lVCC, err := lib.LongVoteCastReturnCode(ctx, vcID, pVCC)
	if err != nil {
		return "", err
	}
	code, err := retrieve(table, lVCC)
	if err != nil {
		return "", xerrors.Errorf("Vote Cast Return Code of card %s: %w", vcID, err)
	}
	return code, nil
}

func validate(ctx lib.SetupContext, vcID string, table *lib.MappingTable) error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	if err := lib.ValidateID("verification card id", vcID); err != nil {
		return err
	}
	if table == nil {
		return returncodes.ProtocolStatef("no mapping table for verification card set %s", ctx.VerificationCardSetID)
	}
	return nil
}

func distinctNodes(n int, id func(int) int) bool {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = id(i)
	}
	sort.Ints(ids)
	for i, v := range ids {
		if v != i+1 {
			return false
		}
	}
	return true
}

// retrieve looks a long return code up in the table and decrypts its short
// code. A missing entry means the shares do not come from a registered
// selection.
func retrieve(table *lib.MappingTable, longCode []byte) (string, error) {
	key, err := lib.TableKey(longCode)
	if err != nil {
		return "", err
	}
	value, ok := table.Lookup(key)
	if !ok {
		return "", returncodes.Validationf("long return code not in the mapping table")
	}
	sealed, err := lib.DecodeBase64(value)
	if err != nil {
		return "", err
	}
	short, err := symmetric.Open(longCode, sealed)
	if err != nil {
		return "", err
	}
	return string(short), nil
}
