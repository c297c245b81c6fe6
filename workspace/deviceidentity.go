package workspace

import (
	"crypto/ed25519"
	"encoding/json"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/storage"
	"github.com/witflo/fyndo-core/syncjournal"
	"github.com/witflo/fyndo-core/vaultheader"
	"github.com/witflo/fyndo-core/witfloerrors"
)

func deviceIdentityPath(root string) string { return join(root, vaultheader.DeviceIdentityFilename) }

// deviceIdentity is the on-disk (pre-encryption) shape of a workspace's
// sync signing keypair.
type deviceIdentity struct {
	Public  ed25519.PublicKey  `json:"public"`
	Private ed25519.PrivateKey `json:"private"`
}

// ensureDeviceIdentity loads the workspace's device keypair, generating
// and persisting one on first use. It is only ever called lazily, from
// DeviceID/SigningKey, so a workspace created before this feature
// existed gets its identity minted on first access rather than at
// Initialize time.
func ensureDeviceIdentity(p storage.Provider, root string, muk []byte) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	raw, err := p.Read(deviceIdentityPath(root))
	if err == nil {
		plaintext, err := primitives.Decrypt(raw, muk)
		if err != nil {
			return nil, nil, err
		}

		var id deviceIdentity
		if err := json.Unmarshal(plaintext, &id); err != nil {
			return nil, nil, witfloerrors.ErrIndexCorrupt
		}

		return id.Public, id.Private, nil
	}

	if err != storage.ErrNotFound {
		return nil, nil, err
	}

	kp, err := primitives.GenerateEd25519()
	if err != nil {
		return nil, nil, err
	}

	plaintext, err := json.Marshal(deviceIdentity{Public: kp.Public, Private: kp.Private})
	if err != nil {
		return nil, nil, err
	}

	ciphertext, err := primitives.Encrypt(plaintext, muk)
	if err != nil {
		return nil, nil, err
	}

	if err := p.WriteAtomic(deviceIdentityPath(root), ciphertext); err != nil {
		return nil, nil, err
	}

	return kp.Public, kp.Private, nil
}

// DeviceID returns this workspace's stable sync device identifier.
func (s *Session) DeviceID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return "", witfloerrors.ErrUseAfterDispose
	}

	muk, err := s.muk.Bytes()
	if err != nil {
		return "", err
	}

	pub, _, err := ensureDeviceIdentity(s.p, s.root, muk)
	if err != nil {
		return "", err
	}

	return syncjournal.NewDeviceID(pub), nil
}

// SigningKey returns this workspace's Ed25519 signing key, used to seal
// outgoing sync operations (§4.11).
func (s *Session) SigningKey() (ed25519.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, witfloerrors.ErrUseAfterDispose
	}

	muk, err := s.muk.Bytes()
	if err != nil {
		return nil, err
	}

	_, priv, err := ensureDeviceIdentity(s.p, s.root, muk)

	return priv, err
}
