package symmetric

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes/group/grouptest"
)

func TestMain(m *testing.M) {
	log.MainTest(m)
}

func TestKDF(t *testing.T) {
	k1, err := KDF([]byte("secret"), nil, 32)
	require.NoError(t, err)
	require.Len(t, k1, 32)
	k2, err := KDF([]byte("secret"), []string{"info"}, 32)
	require.NoError(t, err)
	require.NotEqual(t, k1, k2)
	k3, err := KDF([]byte("secret"), []string{"info"}, 32)
	require.NoError(t, err)
	require.Equal(t, k2, k3)

	_, err = KDF(nil, nil, 32)
	require.Error(t, err)
	_, err = KDF([]byte("secret"), nil, 0)
	require.Error(t, err)
}

func TestKDFToZq(t *testing.T) {
	zq := grouptest.Group().Exponents()
	a, err := KDFToZq([]byte{1, 2, 3}, []string{"label", "id"}, zq)
	require.NoError(t, err)
	b, err := KDFToZq([]byte{1, 2, 3}, []string{"label", "id2"}, zq)
	require.NoError(t, err)
	require.False(t, a.Equals(b))
	require.True(t, a.Value().Cmp(zq.Q()) < 0)

	_, err = KDFToZq([]byte{1, 2, 3}, nil, zq)
	require.Error(t, err)
}

func TestSealOpen(t *testing.T) {
	secret := []byte("long choice return code")
	sealed, err := Seal(secret, []byte("1234"))
	require.NoError(t, err)
	require.Len(t, sealed, 4+16+NonceLength)

	again, err := Seal(secret, []byte("1234"))
	require.NoError(t, err)
	require.Equal(t, sealed, again)

	plain, err := Open(secret, sealed)
	require.NoError(t, err)
	require.Equal(t, []byte("1234"), plain)

	_, err = Open([]byte("other"), sealed)
	require.Error(t, err)

	sealed[0] ^= 1
	_, err = Open(secret, sealed)
	require.Error(t, err)

	_, err = Open(secret, []byte{1, 2})
	require.Error(t, err)
}
