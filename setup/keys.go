// Package setup implements the algorithms of the setup authority: key
// generation, the generation of the verification data, the combination of
// the nodes' contributions and the generation of the Return Codes Mapping
// Table.
package setup

import (
	"crypto/cipher"

	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/elgamal"
	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/lib"
	"golang.org/x/xerrors"
)

// GenSetupEncryptionKeys returns the setup key pair of size omega. Its
// secret key is the only way to decrypt the hashed partial codes.
func GenSetupEncryptionKeys(rand cipher.Stream, grp *group.GqGroup, params lib.ElectionParameters) (*elgamal.KeyPair, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	kp, err := elgamal.GenKeyPair(rand, grp, params.Omega)
	if err != nil {
		return nil, xerrors.Errorf("generating setup keys: %w", err)
	}
	log.Lvlf3("Generated setup encryption keys of size %d", params.Omega)
	return kp, nil
}

// GenVerCardSetKeys combines the CCR Choice Return Codes encryption public
// keys of the four nodes into the key voters encrypt their partial codes
// with.
func GenVerCardSetKeys(params lib.ElectionParameters, keys []group.GqVector) (group.GqVector, error) {
	if err := params.Validate(); err != nil {
		return group.GqVector{}, err
	}
	if len(keys) != returncodes.NumberOfNodes {
		return group.GqVector{}, returncodes.Validationf("expected %d CCR public keys, got %d",
			returncodes.NumberOfNodes, len(keys))
	}
	for i, k := range keys {
		if err := group.CheckSize("CCR public key", k, params.Phi); err != nil {
			return group.GqVector{}, xerrors.Errorf("node %d: %w", i+1, err)
		}
	}
	return elgamal.CombinePublicKeys(keys...)
}
