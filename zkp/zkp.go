// Package zkp implements the non-interactive Sigma-protocol proofs of the
// protocol: the exponentiation proof and the plaintext-equality proof.
//
// Both are made non-interactive with the Fiat-Shamir transform over the
// recursive hash. The challenge binds a literal label, the group, the
// statement, the commitment and the auxiliary strings of the caller, so a
// proof made for one protocol step never verifies in another one.
package zkp

import (
	"crypto/cipher"

	"go.dedis.ch/returncodes/group"
	"go.dedis.ch/returncodes/hash"
)

// System is a proof system for statements of type S with witnesses of type
// W and proofs of type P.
//
// Verify returns an error only for statements or proofs that are
// malformed. A well-formed proof that does not verify returns false.
type System[S, W, P any] interface {
	Prove(rand cipher.Stream, statement S, witness W, aux ...string) (P, error)
	Verify(statement S, proof P, aux ...string) (bool, error)
}

// challenge computes the Fiat-Shamir challenge for a statement.
func challenge(zq *group.ZqGroup, label string, values []interface{}, aux []string) (group.ZqElement, error) {
	input := append([]interface{}{label}, values...)
	if len(aux) > 0 {
		input = append(input, aux)
	}
	return hash.RecursiveHashToZq(zq, input...)
}

func groupParameters(grp *group.GqGroup) []interface{} {
	return []interface{}{grp.P(), grp.Q(), grp.Generator().Value()}
}
