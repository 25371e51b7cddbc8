package lib

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/group/grouptest"
	"golang.org/x/xerrors"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

func TestIDs(t *testing.T) {
	id := GenerateID()
	require.Len(t, id, 32)
	require.NoError(t, ValidateID("id", id))
	require.NotEqual(t, id, GenerateID())

	require.Error(t, ValidateID("id", "abc"))
	require.Error(t, ValidateID("id", "0123456789abcdef0123456789abcdef"))
	err := ValidateID("election event id", "")
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
	require.Contains(t, err.Error(), "election event id")
}

func TestContexts(t *testing.T) {
	grp := grouptest.Group()
	ee, vcs := GenerateID(), GenerateID()
	ctx, err := NewSetupContext(ee, vcs, grp)
	require.NoError(t, err)
	require.NoError(t, ctx.CheckGroup("key", grp))
	require.Error(t, ctx.CheckGroup("key", grouptest.SameOrderGroup()))

	_, err = NewSetupContext(ee, vcs, nil)
	require.Error(t, err)

	for _, id := range []int{1, 4} {
		_, err = NewNodeContext(id, ee, vcs, grp)
		require.NoError(t, err)
	}
	for _, id := range []int{0, 5} {
		_, err = NewNodeContext(id, ee, vcs, grp)
		require.True(t, xerrors.Is(err, returncodes.ErrValidation))
	}
}

func TestCardSetupData_Validate(t *testing.T) {
	grp, other := grouptest.Group(), grouptest.SameOrderGroup()
	ctx, err := NewSetupContext(GenerateID(), GenerateID(), grp)
	require.NoError(t, err)
	neutral := func(g *group.GqGroup, n int) elgamal.Ciphertext {
		c, err := elgamal.NeutralElement(g, n)
		require.NoError(t, err)
		return c
	}
	card := CardSetupData{
		VerificationCardID:        GenerateID(),
		VerificationCardPublicKey: grouptest.RandomMembers(grouptest.Stream("pk"), grp, 1),
		EncryptedHashedPCC:        neutral(grp, 2),
		EncryptedHashedCK:         neutral(grp, 1),
	}
	require.NoError(t, card.Validate(ctx))

	// With several members in a foreign group, the first one is always
	// reported.
	card.VerificationCardPublicKey = grouptest.RandomMembers(grouptest.Stream("pk"), other, 1)
	card.EncryptedHashedPCC = neutral(other, 2)
	card.EncryptedHashedCK = neutral(other, 1)
	for i := 0; i < 20; i++ {
		err = card.Validate(ctx)
		require.True(t, xerrors.Is(err, returncodes.ErrValidation))
		require.Contains(t, err.Error(), "verification card public key")
	}
	card.VerificationCardPublicKey = grouptest.RandomMembers(grouptest.Stream("pk"), grp, 1)
	for i := 0; i < 20; i++ {
		require.Contains(t, card.Validate(ctx).Error(), "encrypted hashed partial codes")
	}
}

func TestElectionParameters(t *testing.T) {
	require.NoError(t, ElectionParameters{Omega: 10, Phi: 5, Delta: 1}.Validate())
	require.Error(t, ElectionParameters{Omega: 4, Phi: 5, Delta: 1}.Validate())
	require.Error(t, ElectionParameters{Omega: 4, Phi: 2, Delta: 0}.Validate())
}

func TestCombinedCorrectnessInformation(t *testing.T) {
	cci, err := NewCombinedCorrectnessInformation(
		Question{CorrectnessID: "q1", NumberOfSelections: 1, NumberOfVotingOptions: 3},
		Question{CorrectnessID: "q2", NumberOfSelections: 2, NumberOfVotingOptions: 4},
	)
	require.NoError(t, err)
	require.Equal(t, 3, cci.TotalNumberOfSelections())
	require.Equal(t, 7, cci.TotalNumberOfVotingOptions())
	require.Equal(t, []string{"q1", "q1", "q1", "q2", "q2", "q2", "q2"}, cci.CorrectnessIDsByOption())
	require.Equal(t, []string{"q1", "q2", "q2"}, cci.CorrectnessIDsBySelection())

	require.NoError(t, cci.Validate(ElectionParameters{Omega: 7, Phi: 3, Delta: 1}))
	require.Error(t, cci.Validate(ElectionParameters{Omega: 6, Phi: 3, Delta: 1}))
	require.Error(t, cci.Validate(ElectionParameters{Omega: 7, Phi: 2, Delta: 1}))

	_, err = NewCombinedCorrectnessInformation()
	require.Error(t, err)
	_, err = NewCombinedCorrectnessInformation(
		Question{CorrectnessID: "q1", NumberOfSelections: 1, NumberOfVotingOptions: 3},
		Question{CorrectnessID: "q1", NumberOfSelections: 1, NumberOfVotingOptions: 3})
	require.Error(t, err)
	_, err = NewCombinedCorrectnessInformation(
		Question{CorrectnessID: "q1", NumberOfSelections: 4, NumberOfVotingOptions: 3})
	require.Error(t, err)
}

func TestAllowList(t *testing.T) {
	al, err := NewAllowList([]string{"c", "a", "b"})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, al.Entries())
	require.True(t, al.Contains("b"))
	require.False(t, al.Contains("d"))
	require.False(t, al.Contains(""))

	other, err := NewAllowList([]string{"e", "d"})
	require.NoError(t, err)
	merged, err := MergeAllowLists(al, other)
	require.NoError(t, err)
	require.Equal(t, 5, merged.Len())

	_, err = NewAllowList([]string{"a", "a"})
	require.Error(t, err)
	_, err = MergeAllowLists(al, al)
	require.Error(t, err)
}

func TestMappingTable(t *testing.T) {
	table, err := NewMappingTable([]TableEntry{{"k2", "v2"}, {"k1", "v1"}, {"k3", "v3"}})
	require.NoError(t, err)
	require.Equal(t, "k1", table.Entries()[0].Key)
	v, ok := table.Lookup("k2")
	require.True(t, ok)
	require.Equal(t, "v2", v)
	_, ok = table.Lookup("k0")
	require.False(t, ok)

	_, err = NewMappingTable([]TableEntry{{"k", "v1"}, {"k", "v2"}})
	require.Error(t, err)
}

func TestCodes(t *testing.T) {
	rand := grouptest.Stream("codes")
	codes, err := GenUniqueDecimalStrings(rand, ChoiceReturnCodeLength, 50)
	require.NoError(t, err)
	require.Len(t, codes, 50)
	seen := make(map[string]bool)
	for _, c := range codes {
		require.Len(t, c, ChoiceReturnCodeLength)
		_, err := ParseDecimal(c)
		require.NoError(t, err)
		require.False(t, seen[c])
		seen[c] = true
	}

	all, err := GenUniqueDecimalStrings(rand, 1, 10)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}, all)
	digits := make(map[string]int)
	for i := 0; i < 500; i++ {
		digits[GenDecimalString(rand, 1)]++
	}
	require.Len(t, digits, 10)
	require.NotZero(t, digits["0"])
	_, err = GenUniqueDecimalStrings(rand, 1, 11)
	require.Error(t, err)

	for i := 0; i < 20; i++ {
		bck := GenBallotCastingKey(rand)
		require.Len(t, bck, BallotCastingKeyLength)
		v, err := ParseDecimal(bck)
		require.NoError(t, err)
		require.NotZero(t, v.Sign())
	}

	_, err = ParseDecimal("12a4")
	require.Error(t, err)

	src := RandomCodeSource{Stream: rand}
	vcc, err := src.VoteCastReturnCode("id")
	require.NoError(t, err)
	require.Len(t, vcc, VoteCastReturnCodeLength)
}

func TestChunks(t *testing.T) {
	require.Empty(t, Chunks(0, 10))
	chunks := Chunks(25, 10)
	require.Equal(t, []Chunk{{0, 0, 10}, {1, 10, 20}, {2, 20, 25}}, chunks)
	require.Len(t, Chunks(250, 0), 3)
}

func TestLockedStream(t *testing.T) {
	s := LockedStream(grouptest.Stream("locked"))
	require.Equal(t, s, LockedStream(s))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, 64)
			s.XORKeyStream(buf, buf)
		}()
	}
	wg.Wait()
}
