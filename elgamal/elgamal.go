// Package elgamal implements the multi-recipient ElGamal scheme over Gq.
//
// A key pair of length n holds n independent secret exponents. A message of
// length l <= n is encrypted with a single randomness r into a ciphertext
// (g^r, m_0 pk_0^r, ..., m_l-1 pk_l-1^r).
package elgamal

import (
	"crypto/cipher"

	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
)

// KeyPair is a multi-recipient key pair. Public()[i] = g^Secret()[i].
type KeyPair struct {
	secret group.ZqVector
	public group.GqVector
}

// GenKeyPair draws n random secret exponents and returns the key pair.
func GenKeyPair(rand cipher.Stream, grp *group.GqGroup, n int) (*KeyPair, error) {
	secret, err := grp.Exponents().RandomVector(rand, n)
	if err != nil {
		return nil, err
	}
	return NewKeyPair(grp, secret)
}

// NewKeyPair derives the public key of secret in grp.
func NewKeyPair(grp *group.GqGroup, secret group.ZqVector) (*KeyPair, error) {
	if secret.IsEmpty() {
		return nil, returncodes.Validationf("secret key must not be empty")
	}
	if !grp.HasSameOrderAs(secret.Get(0).Group()) {
		return nil, returncodes.Validationf("secret key and group must have the same order")
	}
	public := make([]group.GqElement, secret.Size())
	for i, sk := range secret.Elements() {
		public[i] = grp.Generator().Exponentiate(sk)
	}
	pk, err := group.NewVector(public...)
	if err != nil {
		return nil, err
	}
	return &KeyPair{secret: secret, public: pk}, nil
}

// Secret returns the secret key.
func (kp *KeyPair) Secret() group.ZqVector {
	return kp.secret
}

// Public returns the public key.
func (kp *KeyPair) Public() group.GqVector {
	return kp.public
}

// Size returns the number of keys in the pair.
func (kp *KeyPair) Size() int {
	return kp.secret.Size()
}

// Group returns the group of the public key.
func (kp *KeyPair) Group() *group.GqGroup {
	return kp.public.Get(0).Group()
}

// CombinePublicKeys returns the element-wise product of the keys. All keys
// must have the same size and group.
func CombinePublicKeys(keys ...group.GqVector) (group.GqVector, error) {
	if len(keys) == 0 {
		return group.GqVector{}, returncodes.Validationf("no public keys to combine")
	}
	acc := keys[0]
	if acc.IsEmpty() {
		return group.GqVector{}, returncodes.Validationf("public key 0 is empty")
	}
	for i, k := range keys[1:] {
		if k.Size() != acc.Size() {
			return group.GqVector{}, returncodes.Validationf("public key %d must have size %d, got %d",
				i+1, acc.Size(), k.Size())
		}
		var err error
		acc, err = group.MultiplyVectors(acc, k)
		if err != nil {
			return group.GqVector{}, err
		}
	}
	return acc, nil
}
