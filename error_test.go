package returncodes

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestError_Kinds(t *testing.T) {
	err := Validationf("expected %d codes, got %d", 5, 6)
	require.Equal(t, "validation error: expected 5 codes, got 6", err.Error())
	require.True(t, xerrors.Is(err, ErrValidation))
	require.False(t, xerrors.Is(err, ErrProtocolState))
	require.Equal(t, ErrValidation, Kind(err))

	wrapped := xerrors.Errorf("create share: %w", ProtocolStatef("card %s already used", "abc"))
	require.True(t, xerrors.Is(wrapped, ErrProtocolState))
	require.Contains(t, wrapped.Error(), "card abc already used")
	require.Equal(t, ErrProtocolState, Kind(wrapped))
	require.Nil(t, Kind(xerrors.New("plain")))

	require.Contains(t, fmt.Sprintf("%+v", Validationf("x")), "TestError_Kinds")
}

func TestWireError(t *testing.T) {
	require.Nil(t, WireError(nil))

	err := WireError(ProtocolStatef("PartialDecryptPCC already done for verification card %s", strings.Repeat("a", 36)))
	require.Len(t, err.Error(), MaxWireErrorLength)
	require.True(t, strings.HasPrefix(err.Error(), "protocol state error: PartialDecryptPCC already done"))
	// onet prefixes the text before sending it as a close reason.
	require.LessOrEqual(t, len("unexpected error: processing error: "+err.Error()), 123)

	// The kind moves to the front of wrapped errors, and lines are joined.
	err = WireError(xerrors.Errorf("node 2:\n%w", ProofFailuref("bad proof")))
	require.Equal(t, "proof failure: node 2: proof failure: bad proof", err.Error())

	// Truncation keeps whole runes.
	err = WireError(xerrors.New(strings.Repeat("é", MaxWireErrorLength)))
	require.LessOrEqual(t, len(err.Error()), MaxWireErrorLength)
	require.True(t, strings.HasSuffix(err.Error(), "é"))
}

func TestFromWire(t *testing.T) {
	require.Nil(t, FromWire(nil))
	for _, kind := range []error{ErrValidation, ErrProtocolState, ErrProofFailure} {
		sent := WireError(xerrors.Errorf("card x: %w", newKindError(kind, "failed", nil)))
		received := FromWire(xerrors.Errorf("tcp://127.0.0.1:2000: %v", sent))
		require.True(t, xerrors.Is(received, kind), kind.Error())
		require.Equal(t, kind, Kind(received))
		require.Contains(t, received.Error(), "card x: ")
	}

	err := FromWire(xerrors.New("connection refused"))
	require.Nil(t, Kind(err))
	require.Contains(t, fmt.Sprintf("%+v", err), "TestFromWire")
}
