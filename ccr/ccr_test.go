package ccr

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/group/grouptest"
	"go.dedis.ch/returncodes/hash"
	"go.dedis.ch/returncodes/lib"
	"golang.org/x/xerrors"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

var testParams = lib.ElectionParameters{Omega: 20, Phi: 10, Delta: 1}

func newNodeContext(t *testing.T, nodeID int) lib.NodeContext {
	ctx, err := lib.NewNodeContext(nodeID, lib.GenerateID(), lib.GenerateID(), grouptest.Group())
	require.NoError(t, err)
	return ctx
}

type lccFixture struct {
	ctx   lib.NodeContext
	vcID  string
	input *LCCShareInput
}

// newLCCFixture returns psi distinct partial codes whose digests are in
// the allow list.
func newLCCFixture(t *testing.T, psi int) lccFixture {
	ctx := newNodeContext(t, 2)
	grp := ctx.Group
	rand := grouptest.Stream("lcc")
	correctness, err := lib.NewCombinedCorrectnessInformation(
		lib.Question{CorrectnessID: "q1", NumberOfSelections: psi, NumberOfVotingOptions: psi + 3})
	require.NoError(t, err)
	vcID := lib.GenerateID()
	pCC := grouptest.RandomMembers(rand, grp, psi)
	ids := correctness.CorrectnessIDsBySelection()
	entries := make([]string, psi)
	for i := range entries {
		hpCC, err := hash.HashAndSquare(pCC.Get(i).Value(), grp)
		require.NoError(t, err)
		entries[i], err = lib.AllowListEntry(ctx.SetupContext, vcID, ids[i], hpCC)
		require.NoError(t, err)
	}
	allowList, err := lib.NewAllowList(entries)
	require.NoError(t, err)
	return lccFixture{
		ctx:  ctx,
		vcID: vcID,
		input: &LCCShareInput{
			VerificationCardID:       vcID,
			PartialChoiceReturnCodes: pCC,
			Correctness:              correctness,
			AllowList:                allowList,
			GenerationSecret:         grp.Exponents().Random(rand),
		},
	}
}

func TestCreateLCCShare(t *testing.T) {
	f := newLCCFixture(t, 5)
	rand := grouptest.Stream("share")
	share, err := CreateLCCShare(rand, f.ctx, f.input)
	require.NoError(t, err)
	require.Equal(t, 5, share.HashedPartialChoiceReturnCodes.Size())
	require.Equal(t, 5, share.LongChoiceReturnCodeShare.Size())
	require.Equal(t, 2, share.NodeID)
	require.True(t, share.Proof.E.Group().Equals(f.ctx.Group.Exponents()))
	require.True(t, share.Proof.Z.Group().Equals(f.ctx.Group.Exponents()))

	ok, err := VerifyLCCShare(f.ctx.SetupContext, share)
	require.NoError(t, err)
	require.True(t, ok)

	// The share is bound to its card.
	other := *share
	other.VerificationCardID = lib.GenerateID()
	ok, err = VerifyLCCShare(f.ctx.SetupContext, &other)
	require.NoError(t, err)
	require.False(t, ok)

	// Second call for the same card.
	f.input.IsLCCShareCreated = true
	_, err = CreateLCCShare(rand, f.ctx, f.input)
	require.Error(t, err)
	require.True(t, xerrors.Is(err, returncodes.ErrProtocolState))
	require.Contains(t, err.Error(), f.vcID)
}

func TestCreateLCCShare_Deterministic(t *testing.T) {
	f := newLCCFixture(t, 3)
	s1, err := CreateLCCShare(grouptest.Stream("a"), f.ctx, f.input)
	require.NoError(t, err)
	s2, err := CreateLCCShare(grouptest.Stream("b"), f.ctx, f.input)
	require.NoError(t, err)
	require.True(t, s1.LongChoiceReturnCodeShare.Equals(s2.LongChoiceReturnCodeShare))
	require.True(t, s1.ChoiceKey.Equals(s2.ChoiceKey))
}

func TestCreateLCCShare_WrongSize(t *testing.T) {
	f := newLCCFixture(t, 5)
	extra, err := f.input.PartialChoiceReturnCodes.Append(f.ctx.Group.Generator())
	require.NoError(t, err)
	f.input.PartialChoiceReturnCodes = extra
	_, err = CreateLCCShare(grouptest.Stream("share"), f.ctx, f.input)
	require.Error(t, err)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
	require.Contains(t, err.Error(), "expected 5 partial Choice Return Codes, got 6")
}

func TestCreateLCCShare_Validation(t *testing.T) {
	rand := grouptest.Stream("share")

	f := newLCCFixture(t, 3)
	codes := f.input.PartialChoiceReturnCodes
	dup, err := group.NewVector(codes.Get(0), codes.Get(1), codes.Get(0))
	require.NoError(t, err)
	f.input.PartialChoiceReturnCodes = dup
	_, err = CreateLCCShare(rand, f.ctx, f.input)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
	require.Contains(t, err.Error(), "distinct")

	f = newLCCFixture(t, 3)
	f.input.AllowList = nil
	_, err = CreateLCCShare(rand, f.ctx, f.input)
	require.True(t, xerrors.Is(err, returncodes.ErrProtocolState))

	f = newLCCFixture(t, 3)
	f.input.VerificationCardID = lib.GenerateID()
	_, err = CreateLCCShare(rand, f.ctx, f.input)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
	require.Contains(t, err.Error(), "allow list")

	f = newLCCFixture(t, 3)
	f.input.PartialChoiceReturnCodes = grouptest.RandomMembers(rand, grouptest.SmallGroup(), 3)
	_, err = CreateLCCShare(rand, f.ctx, f.input)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))

	f = newLCCFixture(t, 3)
	f.input.GenerationSecret = grouptest.SmallGroup().Exponents().One()
	_, err = CreateLCCShare(rand, f.ctx, f.input)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))

	f = newLCCFixture(t, 3)
	_, err = CreateLCCShare(rand, lib.NodeContext{SetupContext: f.ctx.SetupContext, NodeID: 5}, f.input)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
}

func TestVoterKeys(t *testing.T) {
	ctx := newNodeContext(t, 1)
	secret := ctx.Group.Exponents().Random(grouptest.Stream("secret"))
	vcID := lib.GenerateID()

	k1, err := VoterChoiceReturnCodeKey(ctx.SetupContext, secret, vcID)
	require.NoError(t, err)
	k2, err := VoterChoiceReturnCodeKey(ctx.SetupContext, secret, vcID)
	require.NoError(t, err)
	require.True(t, k1.Equals(k2))

	kc, err := VoterVoteCastReturnCodeKey(ctx.SetupContext, secret, vcID)
	require.NoError(t, err)
	require.False(t, k1.Equals(kc))

	other, err := VoterChoiceReturnCodeKey(ctx.SetupContext, secret, lib.GenerateID())
	require.NoError(t, err)
	require.False(t, k1.Equals(other))
}

func TestGenKeysCCR(t *testing.T) {
	grp := grouptest.Group()
	keys, err := GenKeysCCR(grouptest.Stream("keys"), grp, testParams)
	require.NoError(t, err)
	require.Equal(t, testParams.Phi, keys.CCREncryption.Size())
	require.NoError(t, keys.validate(newNodeContext(t, 1)))

	_, err = GenKeysCCR(grouptest.Stream("keys"), grp, lib.ElectionParameters{Omega: 1, Phi: 2, Delta: 1})
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
}

func TestLVCCShare(t *testing.T) {
	ctx := newNodeContext(t, 3)
	rand := grouptest.Stream("lvcc")
	in := &LVCCShareInput{
		VerificationCardID: lib.GenerateID(),
		ConfirmationKey:    grouptest.RandomMembers(rand, ctx.Group, 1).Get(0),
		GenerationSecret:   ctx.Group.Exponents().Random(rand),
	}
	share, err := CreateLVCCShare(rand, ctx, in)
	require.NoError(t, err)
	require.Equal(t, 3, share.NodeID)
	hashed, err := lib.HashedLVCCShare(ctx.SetupContext, in.VerificationCardID, 3, share.LongVoteCastReturnCodeShare)
	require.NoError(t, err)
	require.Equal(t, hashed, share.HashedShare)

	ok, err := VerifyLVCCShare(ctx.SetupContext, share)
	require.NoError(t, err)
	require.True(t, ok)

	share.LongVoteCastReturnCodeShare = share.LongVoteCastReturnCodeShare.Multiply(ctx.Group.Generator())
	ok, err = VerifyLVCCShare(ctx.SetupContext, share)
	require.NoError(t, err)
	require.False(t, ok)

	in.IsLVCCShareCreated = true
	_, err = CreateLVCCShare(rand, ctx, in)
	require.True(t, xerrors.Is(err, returncodes.ErrProtocolState))
	require.Contains(t, err.Error(), in.VerificationCardID)
}

func TestVerifyLVCCHash(t *testing.T) {
	ctx := newNodeContext(t, 1)
	vcID := lib.GenerateID()
	hashes := []string{"a", "b", "c", "d"}
	entry, err := lib.LVCCAllowListEntry(ctx.SetupContext, vcID, hashes)
	require.NoError(t, err)
	allowList, err := lib.NewAllowList([]string{entry})
	require.NoError(t, err)

	ok, err := VerifyLVCCHash(ctx, vcID, hashes, allowList)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyLVCCHash(ctx, vcID, []string{"b", "a", "c", "d"}, allowList)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = VerifyLVCCHash(ctx, vcID, hashes[:3], allowList)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
	_, err = VerifyLVCCHash(ctx, vcID, hashes, nil)
	require.True(t, xerrors.Is(err, returncodes.ErrProtocolState))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ok, err := s.IsSet(FlagPartialDecrypted, "ee", "vcs", "card")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.CheckAndSet(FlagPartialDecrypted, "ee", "vcs", "card")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.CheckAndSet(FlagPartialDecrypted, "ee", "vcs", "card")
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = s.IsSet(FlagLCCShareCreated, "ee", "vcs", "card")
	require.NoError(t, err)
	require.False(t, ok)
	// Flags of the same card id in another card set are independent.
	ok, err = s.IsSet(FlagPartialDecrypted, "ee", "other", "card")
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = s.CheckAndSet(FlagPartialDecrypted, "other", "vcs", "card")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = s.Keys("ee")
	require.True(t, xerrors.Is(err, returncodes.ErrProtocolState))
	keys, err := GenKeysCCR(grouptest.Stream("keys"), grouptest.Group(), testParams)
	require.NoError(t, err)
	require.NoError(t, s.SaveKeys("ee", keys))
	require.True(t, xerrors.Is(s.SaveKeys("ee", keys), returncodes.ErrProtocolState))

	_, err = s.CardSet("ee", "vcs")
	require.True(t, xerrors.Is(err, returncodes.ErrProtocolState))
	_, err = s.CardPublicKey("ee", "vcs", "card")
	require.True(t, xerrors.Is(err, returncodes.ErrProtocolState))
}
