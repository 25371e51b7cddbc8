package lib

import (
	"crypto/cipher"
	"fmt"
	"math/big"

	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
)

// Number of decimal digits of the codes printed on the voting material.
const (
	ChoiceReturnCodeLength   = 4
	VoteCastReturnCodeLength = 8
	BallotCastingKeyLength   = 9
)

// GenDecimalString returns a uniformly random string of the given number of
// decimal digits, zero-padded.
func GenDecimalString(rand cipher.Stream, digits int) string {
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	return fmt.Sprintf("%0*d", digits, group.RandomInt(bound, rand))
}

// GenUniqueDecimalStrings returns n distinct random strings of the given
// number of digits.
func GenUniqueDecimalStrings(rand cipher.Stream, digits, n int) ([]string, error) {
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	if n < 0 || big.NewInt(int64(n)).Cmp(bound) > 0 {
		return nil, returncodes.Validationf("cannot draw %d distinct codes of %d digits", n, digits)
	}
	seen := make(map[string]bool, n)
	codes := make([]string, 0, n)
	for len(codes) < n {
		c := GenDecimalString(rand, digits)
		if seen[c] {
			continue
		}
		seen[c] = true
		codes = append(codes, c)
	}
	return codes, nil
}

// GenBallotCastingKey returns a 9-digit Ballot Casting Key, redrawn until
// it is not zero.
func GenBallotCastingKey(rand cipher.Stream) string {
	for {
		bck := GenDecimalString(rand, BallotCastingKeyLength)
		if decimal(bck).Sign() != 0 {
			return bck
		}
	}
}

// ParseDecimal returns the integer value of a decimal code.
func ParseDecimal(code string) (*big.Int, error) {
	if code == "" {
		return nil, returncodes.Validationf("code must not be empty")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return nil, returncodes.Validationf("code %q must only contain decimal digits", code)
		}
	}
	return decimal(code), nil
}

func decimal(code string) *big.Int {
	v, _ := new(big.Int).SetString(code, 10)
	return v
}

// CodeSource draws the short codes printed on the voting material.
type CodeSource interface {
	// ChoiceReturnCodes returns n distinct short Choice Return Codes for a
	// verification card.
	ChoiceReturnCodes(vcID string, n int) ([]string, error)
	// VoteCastReturnCode returns the short Vote Cast Return Code of a
	// verification card.
	VoteCastReturnCode(vcID string) (string, error)
}

// RandomCodeSource draws the codes from a random stream. The stream must be
// safe for concurrent use if the source is shared by workers.
type RandomCodeSource struct {
	Stream cipher.Stream
}

// ChoiceReturnCodes implements CodeSource.
func (s RandomCodeSource) ChoiceReturnCodes(vcID string, n int) ([]string, error) {
	return GenUniqueDecimalStrings(s.Stream, ChoiceReturnCodeLength, n)
}

// VoteCastReturnCode implements CodeSource.
func (s RandomCodeSource) VoteCastReturnCode(vcID string) (string, error) {
	return GenDecimalString(s.Stream, VoteCastReturnCodeLength), nil
}
