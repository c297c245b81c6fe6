// Package keyring implements the encrypted registry mapping vaultId to
// VaultKey that lives at the root of every workspace (§4.7). The
// package is concerned only with the registry's shape and its
// encrypt/decrypt/mutate operations; reading and writing the
// ciphertext file is the workspace service's job.
package keyring

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/witfloerrors"
)

const currentVersion = 1

// Entry is one vault's record inside the keyring.
type Entry struct {
	VaultKeyB64 string    `json:"vault_key"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Keyring is the decrypted registry mapping vaultId to [Entry]. Values
// are immutable from a caller's perspective: every mutating method
// returns a new Keyring rather than modifying the receiver in place,
// so a rejected mutation never corrupts the caller's last-known-good
// value.
type Keyring struct {
	Version int              `json:"version"`
	Vaults  map[string]Entry `json:"vaults"`
}

// Empty returns a keyring with no vaults, the starting point for a
// freshly initialized workspace.
func Empty() Keyring {
	return Keyring{Version: currentVersion, Vaults: map[string]Entry{}}
}

// Add returns a copy of k with vaultID inserted, keyed to vaultKey (32
// raw bytes, base64-encoded for storage).
func (k Keyring) Add(vaultID string, vaultKey []byte, displayName string, createdAt time.Time) Keyring {
	out := k.clone()
	out.Vaults[vaultID] = Entry{
		VaultKeyB64: base64.StdEncoding.EncodeToString(vaultKey),
		DisplayName: displayName,
		CreatedAt:   createdAt,
	}

	return out
}

// Remove returns a copy of k with vaultID deleted. It refuses to
// delete the only remaining vault (§4.7, §8 property 9).
func (k Keyring) Remove(vaultID string) (Keyring, error) {
	if _, ok := k.Vaults[vaultID]; !ok {
		return k, witfloerrors.ErrVaultNotFound
	}

	if len(k.Vaults) <= 1 {
		return k, witfloerrors.ErrLastVaultProtected
	}

	out := k.clone()
	delete(out.Vaults, vaultID)

	return out, nil
}

// VaultKey returns the raw 32-byte key for vaultID.
func (k Keyring) VaultKey(vaultID string) ([]byte, error) {
	entry, ok := k.Vaults[vaultID]
	if !ok {
		return nil, witfloerrors.ErrVaultNotFound
	}

	raw, err := base64.StdEncoding.DecodeString(entry.VaultKeyB64)
	if err != nil {
		return nil, witfloerrors.ErrKeyringCorrupt
	}

	if len(raw) != primitives.KeySize {
		return nil, witfloerrors.ErrKeyringCorrupt
	}

	return raw, nil
}

// Has reports whether vaultID is present.
func (k Keyring) Has(vaultID string) bool {
	_, ok := k.Vaults[vaultID]
	return ok
}

// Len returns the number of vaults registered.
func (k Keyring) Len() int { return len(k.Vaults) }

func (k Keyring) clone() Keyring {
	out := Keyring{Version: k.Version, Vaults: make(map[string]Entry, len(k.Vaults))}
	for id, e := range k.Vaults {
		out.Vaults[id] = e
	}

	return out
}

// Encrypt seals the keyring's canonical JSON encoding under key using
// the explicit-nonce AEAD variant; the keyring wire format does not
// prepend its nonce (the nonce lives in workspace metadata instead,
// §6).
func Encrypt(k Keyring, key, nonce []byte) ([]byte, error) {
	if k.Vaults == nil {
		k.Vaults = map[string]Entry{}
	}

	plaintext, err := json.Marshal(k)
	if err != nil {
		return nil, err
	}

	return primitives.EncryptWithNonce(plaintext, key, nonce)
}

// Decrypt opens ciphertext under key and nonce and parses the result
// as a [Keyring]. AEAD failure surfaces as
// [witfloerrors.ErrTagMismatch] unchanged, so callers distinguishing
// "wrong password" from "corrupt file" can do so by checking whether
// decryption or JSON parsing failed.
func Decrypt(ciphertext, key, nonce []byte) (Keyring, error) {
	plaintext, err := primitives.DecryptWithNonce(ciphertext, key, nonce)
	if err != nil {
		return Keyring{}, err
	}

	var k Keyring
	if err := json.Unmarshal(plaintext, &k); err != nil {
		return Keyring{}, witfloerrors.ErrKeyringCorrupt
	}

	if k.Vaults == nil {
		k.Vaults = map[string]Entry{}
	}

	return k, nil
}
