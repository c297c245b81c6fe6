package primitives

import (
	"github.com/witflo/fyndo-core/witfloerrors"

	"golang.org/x/crypto/curve25519"
)

// X25519KeyPair is a key-exchange keypair, reserved for future
// device-to-device share negotiation (witflo.share.{id}.v1 contexts
// build on an agreed secret derived here).
type X25519KeyPair struct {
	Public  []byte
	Private []byte
}

// GenerateX25519 creates a fresh X25519 keypair.
func GenerateX25519() (X25519KeyPair, error) {
	priv, err := Bytes(32)
	if err != nil {
		return X25519KeyPair{}, err
	}

	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return X25519KeyPair{}, err
	}

	return X25519KeyPair{Public: pub, Private: priv}, nil
}

// Agree computes the shared X25519 secret between a local private key
// and a remote public key.
func Agree(localPrivate, remotePublic []byte) ([]byte, error) {
	if len(localPrivate) != 32 || len(remotePublic) != 32 {
		return nil, witfloerrors.ErrInvalidParams
	}

	return curve25519.X25519(localPrivate, remotePublic)
}
