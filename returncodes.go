/*
Package returncodes implements the Return Codes protocol of a verifiable
e-voting system.

Four control-component nodes (CCR) and one setup authority jointly compute,
without any of them learning the votes, the codes printed on the voters'
material. At vote-casting time every node contributes a share of the long
Choice Return Codes and of the long Vote Cast Return Code; the shares only
combine into the printed codes if every node behaved honestly.

The packages are layered as follows:

	group      prime-order group Gq, exponent group Zq, vectors and matrices
	hash       domain-separated recursive hash
	symmetric  key derivation and authenticated encryption
	elgamal    multi-recipient ElGamal
	zkp        exponentiation and plaintext-equality proofs
	lib        protocol-wide types, labels and helpers
	setup      setup authority algorithms
	ccr        control-component node algorithms
	lookup     code extraction from the mapping table
	service    onet service running one node, and the setup authority client

This package only holds what every layer needs: the error kinds and the
suite used by the nodes to authenticate themselves.
*/
package returncodes

import (
	"go.dedis.ch/kyber/v3/suites"
)

// Suite is used by the nodes for their server identity and for signing the
// payloads they return. It is unrelated to the group the protocol computes
// in.
var Suite = suites.MustFind("Ed25519")

// NumberOfNodes is the number of control-component nodes taking part in
// the protocol. It is part of the wire format.
const NumberOfNodes = 4
