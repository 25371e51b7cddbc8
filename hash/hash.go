// Package hash implements the recursive hash every protocol step uses to
// bind its outputs to a domain-separation label and to the election
// context.
//
// A value is hashed according to its type. Byte slices, non-negative
// integers and strings are hashed after a one-byte type tag; lists are
// hashed over the concatenation of the hashes of their elements, so that
// ["ab", "c"] and ["a", "bc"] never collide. Group elements hash as their
// integer value and vectors as lists.
package hash

import (
	"encoding/base64"
	"math/big"

	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
	"golang.org/x/crypto/sha3"
	"golang.org/x/xerrors"
)

const (
	tagBytes   byte = 0x00
	tagInteger byte = 0x01
	tagString  byte = 0x02
	tagList    byte = 0x03
)

// Size is the length in bytes of RecursiveHash's output.
const Size = 32

// Hashable is implemented by composite protocol values, such as ciphertexts,
// that know how to present themselves to the hash as one of the supported
// types.
type Hashable interface {
	ToHashable() interface{}
}

// hasher turns tagged leaves and lists of child hashes into digests.
type hasher interface {
	leaf(tag byte, b []byte) []byte
	list(children [][]byte) []byte
}

type sha3Hasher struct{}

func (sha3Hasher) leaf(tag byte, b []byte) []byte {
	h := sha3.New256()
	h.Write([]byte{tag})
	h.Write(b)
	return h.Sum(nil)
}

func (sha3Hasher) list(children [][]byte) []byte {
	h := sha3.New256()
	h.Write([]byte{tagList})
	for _, c := range children {
		h.Write(c)
	}
	return h.Sum(nil)
}

// shakeHasher produces outputs of bits bits with SHAKE256. Leading bits
// beyond the requested length are cleared.
type shakeHasher struct {
	bits int
}

func (s shakeHasher) sum(tag byte, parts ...[]byte) []byte {
	h := sha3.NewShake256()
	h.Write([]byte{tag})
	for _, p := range parts {
		h.Write(p)
	}
	out := make([]byte, (s.bits+7)/8)
	h.Read(out)
	if extra := len(out)*8 - s.bits; extra > 0 {
		out[0] &= 0xff >> uint(extra)
	}
	return out
}

func (s shakeHasher) leaf(tag byte, b []byte) []byte {
	return s.sum(tag, b)
}

func (s shakeHasher) list(children [][]byte) []byte {
	return s.sum(tagList, children...)
}

// RecursiveHash hashes the values with SHA3-256. A single value is hashed
// on its own, several values are hashed as a list.
func RecursiveHash(values ...interface{}) ([]byte, error) {
	return recursiveHash(sha3Hasher{}, values)
}

// RecursiveHashOfLength hashes the values like RecursiveHash but with
// SHAKE256 and an output of bits bits.
func RecursiveHashOfLength(bits int, values ...interface{}) ([]byte, error) {
	if bits < 8 {
		return nil, returncodes.Validationf("requested hash length must be at least 8 bits, got %d", bits)
	}
	return recursiveHash(shakeHasher{bits: bits}, values)
}

// RecursiveHashToZq hashes the values into the exponent group zq. The hash
// is 256 bits longer than q so that the reduction is close to uniform.
func RecursiveHashToZq(zq *group.ZqGroup, values ...interface{}) (group.ZqElement, error) {
	if len(values) == 0 {
		return group.ZqElement{}, returncodes.Validationf("nothing to hash")
	}
	q := zq.Q()
	input := append([]interface{}{q, "RecursiveHash"}, values...)
	h, err := RecursiveHashOfLength(q.BitLen()+256, input...)
	if err != nil {
		return group.ZqElement{}, err
	}
	return zq.Reduce(new(big.Int).SetBytes(h)), nil
}

// HashAndSquare maps x into grp by hashing it into the exponents and
// squaring the result plus one. The output is always a quadratic residue.
func HashAndSquare(x *big.Int, grp *group.GqGroup) (group.GqElement, error) {
	if x == nil || x.Sign() < 0 {
		return group.GqElement{}, returncodes.Validationf("value to hash must be a non-negative integer")
	}
	e, err := RecursiveHashToZq(grp.Exponents(), x)
	if err != nil {
		return group.GqElement{}, err
	}
	v := e.Value().Add(e.Value(), big.NewInt(1))
	v.Exp(v, big.NewInt(2), grp.P())
	return grp.Element(v)
}

// RecursiveHashBase64 returns the standard base64 encoding of the
// RecursiveHash of the values. It is the form stored in allow lists and
// mapping tables.
func RecursiveHashBase64(values ...interface{}) (string, error) {
	h, err := RecursiveHash(values...)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(h), nil
}

func recursiveHash(h hasher, values []interface{}) ([]byte, error) {
	switch len(values) {
	case 0:
		return nil, returncodes.Validationf("nothing to hash")
	case 1:
		return hashValue(h, values[0])
	default:
		return hashList(h, values)
	}
}

func hashList(h hasher, values []interface{}) ([]byte, error) {
	if len(values) == 0 {
		return nil, returncodes.Validationf("cannot hash an empty list")
	}
	children := make([][]byte, len(values))
	for i, v := range values {
		c, err := hashValue(h, v)
		if err != nil {
			return nil, xerrors.Errorf("element %d: %w", i, err)
		}
		children[i] = c
	}
	return h.list(children), nil
}

func hashValue(h hasher, value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return h.leaf(tagBytes, v), nil
	case string:
		return h.leaf(tagString, []byte(v)), nil
	case *big.Int:
		if v == nil || v.Sign() < 0 {
			return nil, returncodes.Validationf("only non-negative integers can be hashed")
		}
		return h.leaf(tagInteger, integerBytes(v)), nil
	case int:
		if v < 0 {
			return nil, returncodes.Validationf("only non-negative integers can be hashed")
		}
		return h.leaf(tagInteger, integerBytes(big.NewInt(int64(v)))), nil
	case uint32:
		return h.leaf(tagInteger, integerBytes(new(big.Int).SetUint64(uint64(v)))), nil
	case uint64:
		return h.leaf(tagInteger, integerBytes(new(big.Int).SetUint64(v))), nil
	case group.GqElement:
		if v.IsNil() {
			return nil, returncodes.Validationf("cannot hash a nil group element")
		}
		return h.leaf(tagInteger, integerBytes(v.Value())), nil
	case group.ZqElement:
		if v.IsNil() {
			return nil, returncodes.Validationf("cannot hash a nil exponent")
		}
		return h.leaf(tagInteger, integerBytes(v.Value())), nil
	case group.GqVector:
		return hashList(h, toInterfaces(v.Elements()))
	case group.ZqVector:
		return hashList(h, toInterfaces(v.Elements()))
	case []string:
		return hashList(h, toInterfaces(v))
	case [][]byte:
		return hashList(h, toInterfaces(v))
	case []interface{}:
		return hashList(h, v)
	case Hashable:
		return hashValue(h, v.ToHashable())
	default:
		return nil, returncodes.Validationf("cannot hash a value of type %T", value)
	}
}

// integerBytes is the minimal big-endian encoding of v, with zero encoded
// as a single zero byte.
func integerBytes(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{0}
	}
	return v.Bytes()
}

func toInterfaces[T any](values []T) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
