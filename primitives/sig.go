package primitives

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/witflo/fyndo-core/witfloerrors"
)

// Ed25519KeyPair is a device identity keypair used to sign sync
// operations (§4.11).
type Ed25519KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// GenerateEd25519 creates a fresh device identity keypair.
func GenerateEd25519() (Ed25519KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Ed25519KeyPair{}, err
	}

	return Ed25519KeyPair{Public: pub, Private: priv}, nil
}

// Sign signs msg with the device's private key.
func Sign(priv ed25519.PrivateKey, msg []byte) []byte {
	return ed25519.Sign(priv, msg)
}

// Verify reports whether sig is a valid signature of msg under pub.
// Returns [witfloerrors.ErrTagMismatch] rather than a bool so that
// verification failures flow through the same error taxonomy as every
// other authentication check in this façade.
func Verify(pub ed25519.PublicKey, msg, sig []byte) error {
	if ed25519.Verify(pub, msg, sig) {
		return nil
	}

	return witfloerrors.ErrTagMismatch
}
