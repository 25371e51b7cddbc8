package elgamal

import (
	"go.dedis.ch/returncodes"
	"go.dedis.ch/returncodes/group"
)

// Encrypt encrypts message under the first message.Size() keys of public
// with the randomness r.
func Encrypt(message group.GqVector, r group.ZqElement, public group.GqVector) (Ciphertext, error) {
	if message.IsEmpty() || public.IsEmpty() || r.IsNil() {
		return Ciphertext{}, returncodes.Validationf("message, randomness and public key are required")
	}
	if message.Size() > public.Size() {
		return Ciphertext{}, returncodes.Validationf("message of size %d does not fit a public key of size %d",
			message.Size(), public.Size())
	}
	if !message.Get(0).IsCompatible(public.Get(0)) {
		return Ciphertext{}, returncodes.Validationf("message and public key must belong to the same group")
	}
	grp := public.Get(0).Group()
	if !grp.HasSameOrderAs(r.Group()) {
		return Ciphertext{}, returncodes.Validationf("randomness and public key must have the same order")
	}
	phis := make([]group.GqElement, message.Size())
	for i := range phis {
		phis[i] = message.Get(i).Multiply(public.Get(i).Exponentiate(r))
	}
	phiVector, err := group.NewVector(phis...)
	if err != nil {
		return Ciphertext{}, err
	}
	return Ciphertext{gamma: grp.Generator().Exponentiate(r), phis: phiVector}, nil
}

// Decrypt recovers the message of c with the first c.Size() keys of
// secret.
func Decrypt(c Ciphertext, secret group.ZqVector) (group.GqVector, error) {
	if c.IsNil() || secret.IsEmpty() {
		return group.GqVector{}, returncodes.Validationf("ciphertext and secret key are required")
	}
	if secret.Size() < c.Size() {
		return group.GqVector{}, returncodes.Validationf("ciphertext of size %d needs a secret key of at least that size, got %d",
			c.Size(), secret.Size())
	}
	if !c.Group().HasSameOrderAs(secret.Get(0).Group()) {
		return group.GqVector{}, returncodes.Validationf("secret key and ciphertext must have the same order")
	}
	message := make([]group.GqElement, c.Size())
	for i := range message {
		message[i] = c.Phi(i).Divide(c.gamma.Exponentiate(secret.Get(i)))
	}
	return group.NewVector(message...)
}
