package group

import (
	"math/big"
	"sync"
)

// ffdhe2048P is the 2048-bit safe prime of the ffdhe2048 group (RFC 7919).
const ffdhe2048P = "" +
	"ffffffffffffffffadf85458a2bb4a9aafdc5620273d3cf1d8b9c583ce2d3695" +
	"a9e13641146433fbcc939dce249b3ef97d2fe363630c75d8f681b202aec4617a" +
	"d3df1ed5d5fd65612433f51f5f066ed0856365553ded1af3b557135e7f57c935" +
	"984f0c70e0e68b77e2a689daf3efe8721df158a136ade73530acca4f483a797a" +
	"bc0ab182b324fb61d108a94bb2c8e3fbb96adab760d7f4681d4f42a3de394df4" +
	"ae56ede76372bb190b07a7c8ee0a6d709e02fce1cdf7e2ecc03404cd28342f61" +
	"9172fe9ce98583ff8e4f1232eef28183c3fe3b1b4c6fad733bb5fcbc2ec22005" +
	"c58ef1837d1683b2c6f34a26c1b2effa886b423861285c97ffffffffffffffff"

var (
	ffdhe2048     *GqGroup
	ffdhe2048Once sync.Once
)

// FFDHE2048 returns the group of quadratic residues modulo the ffdhe2048
// prime, with generator 2. It is the default group of an election event.
func FFDHE2048() *GqGroup {
	ffdhe2048Once.Do(func() {
		p, _ := new(big.Int).SetString(ffdhe2048P, 16)
		q := new(big.Int).Rsh(p, 1)
		grp, err := NewGqGroup(p, q, big.NewInt(2))
		if err != nil {
			panic("group: invalid ffdhe2048 parameters: " + err.Error())
		}
		ffdhe2048 = grp
	})
	return ffdhe2048
}
