// Package symmetric holds the key derivation function and the authenticated
// encryption used for the short return codes of the mapping table.
package symmetric

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"io"
	"math/big"

	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/hash"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/xerrors"
)

const (
	// KeyLength is the AES-256 key length.
	KeyLength = 32
	// NonceLength is the GCM nonce length.
	NonceLength = 12

	keyMaterialLength = KeyLength + NonceLength
)

// KDF derives length bytes from secret with HKDF-SHA256. The info strings
// are bound through their recursive hash; no info means an empty HKDF info.
func KDF(secret []byte, info []string, length int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, returncodes.Validationf("KDF secret must not be empty")
	}
	if length <= 0 {
		return nil, returncodes.Validationf("KDF output length must be positive, got %d", length)
	}
	var infoBytes []byte
	if len(info) > 0 {
		var err error
		infoBytes, err = hash.RecursiveHash(info)
		if err != nil {
			return nil, xerrors.Errorf("hashing KDF info: %w", err)
		}
	}
	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, infoBytes), out); err != nil {
		return nil, xerrors.Errorf("HKDF: %w", err)
	}
	return out, nil
}

// KDFToZq derives an exponent of zq from secret and info. The derived
// material is 256 bits longer than q before reduction.
func KDFToZq(secret []byte, info []string, zq *group.ZqGroup) (group.ZqElement, error) {
	if len(info) == 0 {
		return group.ZqElement{}, returncodes.Validationf("KDFToZq needs at least one info string")
	}
	length := (zq.Q().BitLen() + 256 + 7) / 8
	b, err := KDF(secret, info, length)
	if err != nil {
		return group.ZqElement{}, err
	}
	return zq.Reduce(new(big.Int).SetBytes(b)), nil
}

// deriveKey returns the AES key and the GCM nonce for secret.
func deriveKey(secret []byte) ([]byte, []byte, error) {
	buf, err := KDF(secret, nil, keyMaterialLength)
	if err != nil {
		return nil, nil, err
	}
	return buf[:KeyLength], buf[KeyLength:keyMaterialLength], nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-256-GCM under a key derived from secret
// and returns the ciphertext followed by the nonce. A secret must only ever
// seal one plaintext, as the nonce is derived from it too.
func Seal(secret, plaintext []byte) ([]byte, error) {
	key, nonce, err := deriveKey(secret)
	if err != nil {
		return nil, err
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, xerrors.Errorf("creating cipher: %w", err)
	}
	return append(aead.Seal(nil, nonce, plaintext, nil), nonce...), nil
}

// Open decrypts the output of Seal.
func Open(secret, sealed []byte) ([]byte, error) {
	if len(sealed) < NonceLength {
		return nil, returncodes.Validationf("ciphertext too short")
	}
	key, _, err := deriveKey(secret)
	if err != nil {
		return nil, err
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, xerrors.Errorf("creating cipher: %w", err)
	}
	split := len(sealed) - NonceLength
	plaintext, err := aead.Open(nil, sealed[split:], sealed[:split], nil)
	if err != nil {
		return nil, xerrors.Errorf("opening ciphertext: %w", err)
	}
	return plaintext, nil
}
