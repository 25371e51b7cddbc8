package elgamal

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/group/grouptest"
	"golang.org/x/xerrors"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

func TestGenKeyPair(t *testing.T) {
	grp := grouptest.Group()
	kp, err := GenKeyPair(grouptest.Stream("keys"), grp, 5)
	require.NoError(t, err)
	require.Equal(t, 5, kp.Size())
	for i := 0; i < 5; i++ {
		require.True(t, grp.Generator().Exponentiate(kp.Secret().Get(i)).Equals(kp.Public().Get(i)))
	}
	_, err = GenKeyPair(grouptest.Stream("keys"), grp, 0)
	require.Error(t, err)
}

func TestEncryptDecrypt(t *testing.T) {
	grp := grouptest.Group()
	rand := grouptest.Stream("round trip")
	kp, err := GenKeyPair(rand, grp, 4)
	require.NoError(t, err)

	for size := 1; size <= 4; size++ {
		message := grouptest.RandomMembers(rand, grp, size)
		c, err := Encrypt(message, grp.Exponents().Random(rand), kp.Public())
		require.NoError(t, err)
		require.Equal(t, size, c.Size())
		decrypted, err := Decrypt(c, kp.Secret())
		require.NoError(t, err)
		require.True(t, decrypted.Equals(message))
	}

	message := grouptest.RandomMembers(rand, grp, 5)
	_, err = Encrypt(message, grp.Exponents().Random(rand), kp.Public())
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))

	c, err := Encrypt(grouptest.RandomMembers(rand, grp, 4), grp.Exponents().One(), kp.Public())
	require.NoError(t, err)
	short, err := kp.Secret().Sub(0, 3)
	require.NoError(t, err)
	_, err = Decrypt(c, short)
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
}

func TestEncrypt_GroupMismatch(t *testing.T) {
	grp := grouptest.Group()
	other := grouptest.SameOrderGroup()
	rand := grouptest.Stream("mismatch")
	kp, err := GenKeyPair(rand, grp, 2)
	require.NoError(t, err)

	message := grouptest.RandomMembers(rand, other, 2)
	_, err = Encrypt(message, grp.Exponents().Random(rand), kp.Public())
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))

	small := grouptest.SmallGroup()
	_, err = Encrypt(grouptest.RandomMembers(rand, grp, 2), small.Exponents().One(), kp.Public())
	require.True(t, xerrors.Is(err, returncodes.ErrValidation))
}

func TestCiphertext_Homomorphism(t *testing.T) {
	grp := grouptest.Group()
	rand := grouptest.Stream("homomorphism")
	kp, err := GenKeyPair(rand, grp, 3)
	require.NoError(t, err)
	m1 := grouptest.RandomMembers(rand, grp, 3)
	m2 := grouptest.RandomMembers(rand, grp, 3)
	c1, err := Encrypt(m1, grp.Exponents().Random(rand), kp.Public())
	require.NoError(t, err)
	c2, err := Encrypt(m2, grp.Exponents().Random(rand), kp.Public())
	require.NoError(t, err)

	product, err := c1.Multiply(c2)
	require.NoError(t, err)
	decrypted, err := Decrypt(product, kp.Secret())
	require.NoError(t, err)
	expected, err := group.MultiplyVectors(m1, m2)
	require.NoError(t, err)
	require.True(t, decrypted.Equals(expected))

	k := grp.Exponents().Random(rand)
	exponentiated, err := c1.Exponentiate(k)
	require.NoError(t, err)
	decrypted, err = Decrypt(exponentiated, kp.Secret())
	require.NoError(t, err)
	expected, err = group.ExponentiateVector(m1, k)
	require.NoError(t, err)
	require.True(t, decrypted.Equals(expected))

	neutral, err := NeutralElement(grp, 3)
	require.NoError(t, err)
	same, err := c1.Multiply(neutral)
	require.NoError(t, err)
	require.True(t, same.Equals(c1))

	v, err := group.NewVector(c1, c2, neutral)
	require.NoError(t, err)
	all, err := Product(v)
	require.NoError(t, err)
	require.True(t, all.Equals(product))

	shorter, err := Encrypt(grouptest.RandomMembers(rand, grp, 2), grp.Exponents().Random(rand), kp.Public())
	require.NoError(t, err)
	_, err = c1.Multiply(shorter)
	require.Error(t, err)
	_, err = group.NewVector(c1, shorter)
	require.Error(t, err)
}

func TestCombinePublicKeys(t *testing.T) {
	grp := grouptest.Group()
	rand := grouptest.Stream("combine")
	var keys []group.GqVector
	var secrets []group.ZqElement
	for i := 0; i < returncodes.NumberOfNodes; i++ {
		kp, err := GenKeyPair(rand, grp, 2)
		require.NoError(t, err)
		keys = append(keys, kp.Public())
		secrets = append(secrets, kp.Secret().Get(0))
	}
	combined, err := CombinePublicKeys(keys...)
	require.NoError(t, err)
	sum := secrets[0]
	for _, s := range secrets[1:] {
		sum = sum.Add(s)
	}
	require.True(t, combined.Get(0).Equals(grp.Generator().Exponentiate(sum)))

	short, err := keys[1].Sub(0, 1)
	require.NoError(t, err)
	_, err = CombinePublicKeys(keys[0], short)
	require.Error(t, err)
	_, err = CombinePublicKeys()
	require.Error(t, err)
}

func TestCiphertext_Bytes(t *testing.T) {
	grp := grouptest.Group()
	rand := grouptest.Stream("bytes")
	kp, err := GenKeyPair(rand, grp, 2)
	require.NoError(t, err)
	c, err := Encrypt(grouptest.RandomMembers(rand, grp, 2), grp.Exponents().Random(rand), kp.Public())
	require.NoError(t, err)
	back, err := CiphertextFromBytes(grp, c.Bytes())
	require.NoError(t, err)
	require.True(t, back.Equals(c))
	_, err = CiphertextFromBytes(grp, c.Bytes()[:1])
	require.Error(t, err)
}
