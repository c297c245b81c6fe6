// Package workspace implements the workspace-level service operations
// of §4.8: initializing a fresh workspace, unlocking an existing one,
// adding and deleting vaults, and rotating the master password. It
// owns the [Session] (the data model's UnlockedWorkspace) returned by
// every successful unlock.
package workspace

import (
	"crypto/subtle"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/witflo/fyndo-core/keyring"
	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/securebytes"
	"github.com/witflo/fyndo-core/storage"
	"github.com/witflo/fyndo-core/vault"
	"github.com/witflo/fyndo-core/vaultfs"
	"github.com/witflo/fyndo-core/vaultheader"
	"github.com/witflo/fyndo-core/witfloerrors"
)

// vaultsDir is the directory under a workspace root holding every
// vault subdirectory.
const vaultsDir = "vaults"

func metadataPath(root string) string { return join(root, vaultheader.WorkspaceMetadataFilename) }
func keyringPath(root string) string  { return join(root, vaultheader.KeyringFilename) }
func vaultPath(root, id string) string { return join(join(root, vaultsDir), id) }

func join(a, b string) string {
	if len(a) > 0 && a[len(a)-1] == '/' {
		return a + b
	}

	return a + "/" + b
}

// Session is the live, in-memory handle to an unlocked workspace
// (§3's "Session (UnlockedWorkspace)"). It exclusively owns the MUK
// and the decrypted keyring; callers MUST serialize mutating calls
// (§5).
type Session struct {
	mu sync.Mutex

	p        storage.Provider
	root     string
	muk      securebytes.MUK
	metadata vaultheader.WorkspaceMetadata
	keyring  keyring.Keyring
	disposed bool
}

// RootPath returns the workspace's root directory.
func (s *Session) RootPath() string { return s.root }

// KeyringPath returns the on-disk path of the workspace's encrypted
// keyring file, for watchers that need to detect external rewrites
// (§4.11).
func (s *Session) KeyringPath() string { return keyringPath(s.root) }

// VaultIDs returns every vault id currently registered in the keyring.
func (s *Session) VaultIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, s.keyring.Len())
	for id := range s.keyring.Vaults {
		ids = append(ids, id)
	}

	return ids
}

// Initialize creates a brand-new workspace at root (§4.8). password is
// consumed. Fails with [witfloerrors.ErrAlreadyInitialized] if a
// workspace metadata file already exists at root.
func Initialize(p storage.Provider, root string, password []byte) (_ *Session, retErr error) {
	if exists, err := p.Exists(metadataPath(root)); err != nil {
		return nil, err
	} else if exists {
		primitives.Zero(password)
		return nil, witfloerrors.ErrAlreadyInitialized
	}

	salt, err := primitives.Salt()
	if err != nil {
		return nil, err
	}

	params := primitives.Benchmark(1000, 32*1024, 128*1024)

	muk, err := primitives.DeriveMUK(password, salt, params)
	if err != nil {
		return nil, err
	}

	nonce, err := primitives.Nonce()
	if err != nil {
		primitives.Zero(muk)
		return nil, err
	}

	empty := keyring.Empty()

	ciphertext, err := keyring.Encrypt(empty, muk, nonce)
	if err != nil {
		primitives.Zero(muk)
		return nil, err
	}

	now := time.Now()
	meta := vaultheader.NewWorkspaceMetadata(uuid.NewString(), salt, params, nonce, now)

	rawMeta, err := vaultheader.MarshalMetadata(meta)
	if err != nil {
		primitives.Zero(muk)
		return nil, err
	}

	if err := p.WriteAtomic(metadataPath(root), rawMeta); err != nil {
		primitives.Zero(muk)
		return nil, err
	}

	if err := p.WriteAtomic(keyringPath(root), ciphertext); err != nil {
		primitives.Zero(muk)
		return nil, err
	}

	if err := p.CreateDirectory(join(root, vaultsDir)); err != nil {
		primitives.Zero(muk)
		return nil, err
	}

	return &Session{p: p, root: root, muk: securebytes.NewMUK(muk), metadata: meta, keyring: empty}, nil
}

// Unlock opens an existing workspace at root with password (§4.8).
// AEAD decryption failure (wrong password, or tampering) surfaces as
// [witfloerrors.ErrInvalidMasterPassword] without distinguishing the
// two causes, per §7's propagation policy.
func Unlock(p storage.Provider, root string, password []byte) (*Session, error) {
	rawMeta, err := p.Read(metadataPath(root))
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, witfloerrors.ErrNotAWorkspace
		}

		return nil, err
	}

	meta, err := vaultheader.UnmarshalMetadata(rawMeta)
	if err != nil {
		return nil, err
	}

	muk, err := primitives.DeriveMUK(password, meta.Crypto.MasterKeySalt, meta.Argon2Params())
	if err != nil {
		return nil, err
	}

	ciphertext, err := p.Read(keyringPath(root))
	if err != nil {
		primitives.Zero(muk)
		return nil, err
	}

	kr, err := keyring.Decrypt(ciphertext, muk, meta.Crypto.KeyringNonce)
	if err != nil {
		primitives.Zero(muk)

		if err == witfloerrors.ErrTagMismatch {
			return nil, witfloerrors.ErrInvalidMasterPassword
		}

		return nil, err
	}

	return &Session{p: p, root: root, muk: securebytes.NewMUK(muk), metadata: meta, keyring: kr}, nil
}

// GetVersion returns the workspace metadata version at root without
// unlocking it, per §4.8's `get_workspace_version`: if the marker file
// is not JSON, version is 1 (legacy text header); if it's JSON without
// a `version` field, it defaults to 2; otherwise the declared version
// is returned as-is, unvalidated against what this core actually
// supports (that check belongs to [Unlock], not this introspection
// query).
func GetVersion(p storage.Provider, root string) (int, error) {
	raw, err := p.Read(metadataPath(root))
	if err != nil {
		if err == storage.ErrNotFound {
			return 0, witfloerrors.ErrNotAWorkspace
		}

		return 0, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 1, nil
	}

	versionRaw, ok := fields["version"]
	if !ok {
		return 2, nil
	}

	var version int
	if err := json.Unmarshal(versionRaw, &version); err != nil {
		return 2, nil
	}

	return version, nil
}

// Lock disposes the session: the MUK is zeroized and every field that
// could observe it is cleared. Lock is idempotent.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}

	s.muk.Dispose()
	s.keyring = keyring.Keyring{}
	s.disposed = true
}

// Disposed reports whether Lock has been called.
func (s *Session) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.disposed
}

// SaveKeyring re-encrypts the in-memory keyring with the session's MUK
// and the workspace's stored keyring nonce, and writes it atomically.
// Callers MUST call this after every keyring mutation (§4.8).
//
// The stored nonce is reused across saves under the same MUK by
// design (see SPEC_FULL.md's nonce-reuse decision); [SaveWithFreshNonce]
// is the alternate path that instead rotates the nonce on every save.
func (s *Session) SaveKeyring() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveKeyringLocked(s.metadata.Crypto.KeyringNonce, false)
}

// SaveWithFreshNonce behaves like [Session.SaveKeyring] but generates
// and persists a new keyring nonce on every call. Either this or
// [Session.SaveKeyring] may be used; both are permitted (§4.8 Design
// decision on nonce reuse).
func (s *Session) SaveWithFreshNonce() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce, err := primitives.Nonce()
	if err != nil {
		return err
	}

	return s.saveKeyringLocked(nonce, true)
}

func (s *Session) saveKeyringLocked(nonce []byte, persistNonce bool) error {
	if s.disposed {
		return witfloerrors.ErrUseAfterDispose
	}

	raw, err := s.muk.Bytes()
	if err != nil {
		return err
	}

	ciphertext, err := keyring.Encrypt(s.keyring, raw, nonce)
	if err != nil {
		return err
	}

	if err := s.p.WriteAtomic(keyringPath(s.root), ciphertext); err != nil {
		return err
	}

	if persistNonce {
		meta := s.metadata.WithKeyringNonce(nonce).WithModified(time.Now())

		rawMeta, err := vaultheader.MarshalMetadata(meta)
		if err != nil {
			return err
		}

		if err := s.p.WriteAtomic(metadataPath(s.root), rawMeta); err != nil {
			return err
		}

		s.metadata = meta
	}

	return nil
}

// AddVault generates a random VaultKey and vault id, registers it in
// the keyring, persists the keyring, and creates the vault directory.
// If vault creation fails, the keyring is rolled back to its
// previously persisted value (§4.8: all-or-nothing).
func (s *Session) AddVault(displayName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return "", witfloerrors.ErrUseAfterDispose
	}

	vaultKey, err := primitives.SymmetricKey()
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	previous := s.keyring

	s.keyring = s.keyring.Add(id, vaultKey, displayName, time.Now())

	if err := s.saveKeyringLocked(s.metadata.Crypto.KeyringNonce, false); err != nil {
		s.keyring = previous
		return "", err
	}

	if _, err := vault.Create(s.p, vaultPath(s.root, id), id, vaultKey); err != nil {
		s.keyring = previous
		_ = s.saveKeyringLocked(s.metadata.Crypto.KeyringNonce, false)

		return "", err
	}

	return id, nil
}

// DeleteVault removes vaultID from the keyring, persists the change,
// and then deletes the vault's directory recursively. Refuses to
// remove the last vault (§4.7). If directory deletion fails after the
// keyring was already updated, returns
// [witfloerrors.ErrPartialDeletion] but keeps the keyring change.
func (s *Session) DeleteVault(vaultID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return witfloerrors.ErrUseAfterDispose
	}

	next, err := s.keyring.Remove(vaultID)
	if err != nil {
		return err
	}

	s.keyring = next

	if err := s.saveKeyringLocked(s.metadata.Crypto.KeyringNonce, false); err != nil {
		return err
	}

	if err := s.p.DeleteDirectory(vaultPath(s.root, vaultID)); err != nil {
		return witfloerrors.ErrPartialDeletion
	}

	return nil
}

// VaultKey returns the raw 32-byte key for vaultID from the decrypted
// keyring.
func (s *Session) VaultKey(vaultID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, witfloerrors.ErrUseAfterDispose
	}

	return s.keyring.VaultKey(vaultID)
}

// OpenVault unlocks vaultID using the key recorded in the workspace
// keyring.
func (s *Session) OpenVault(vaultID string) (*vault.Vault, error) {
	key, err := s.VaultKey(vaultID)
	if err != nil {
		return nil, err
	}

	return vault.Unlock(s.p, vaultPath(s.root, vaultID), key)
}

// VaultLayout returns the directory layout for vaultID without
// unlocking it.
func (s *Session) VaultLayout(vaultID string) vaultfs.Layout {
	return vaultfs.NewLayout(vaultPath(s.root, vaultID))
}

// ImportLegacyVault brings a version-1, per-vault-password vault
// already present at `vaults/<vaultID>` under this workspace root into
// the current keyring: it generates a fresh random VaultKey, registers
// it, and calls [vault.MigrateLegacy] to retire the vault's own
// password-derived wrapping in a single rewrite (§9's legacy migration
// surface). legacyPassword is consumed; it is never stored.
func (s *Session) ImportLegacyVault(vaultID, displayName string, legacyPassword []byte) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return witfloerrors.ErrUseAfterDispose
	}

	vaultKey, err := primitives.SymmetricKey()
	if err != nil {
		return err
	}

	previous := s.keyring
	s.keyring = s.keyring.Add(vaultID, vaultKey, displayName, time.Now())

	if err := s.saveKeyringLocked(s.metadata.Crypto.KeyringNonce, false); err != nil {
		s.keyring = previous
		primitives.Zero(legacyPassword)

		return err
	}

	if err := vault.MigrateLegacy(s.p, vaultPath(s.root, vaultID), legacyPassword, vaultKey, time.Now()); err != nil {
		s.keyring = previous
		_ = s.saveKeyringLocked(s.metadata.Crypto.KeyringNonce, false)

		return err
	}

	return nil
}

// ChangeMasterPassword verifies current by attempting a full
// unlock-equivalent derivation, then benchmarks fresh Argon2 params,
// re-encrypts the keyring under a new MUK and fresh nonce, and
// atomically rewrites both metadata and keyring files.
//
// Per SPEC_FULL.md's Open Question decision, this returns a brand new
// [*Session]; the receiver is disposed as part of the rotation and
// must not be used afterward (Open Question 2, semantics (a)).
func (s *Session) ChangeMasterPassword(current, newPassword []byte) (_ *Session, retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, witfloerrors.ErrUseAfterDispose
	}

	verify, err := primitives.DeriveMUK(current, s.metadata.Crypto.MasterKeySalt, s.metadata.Argon2Params())
	if err != nil {
		return nil, err
	}

	existing, err := s.muk.Bytes()
	if err != nil {
		primitives.Zero(verify)
		return nil, err
	}

	if subtle.ConstantTimeCompare(verify, existing) != 1 {
		primitives.Zero(verify)
		return nil, witfloerrors.ErrInvalidMasterPassword
	}

	primitives.Zero(verify)

	newSalt, err := primitives.Salt()
	if err != nil {
		return nil, err
	}

	newParams := primitives.Benchmark(1000, 32*1024, 128*1024)

	newMUK, err := primitives.DeriveMUK(newPassword, newSalt, newParams)
	if err != nil {
		return nil, err
	}

	newNonce, err := primitives.Nonce()
	if err != nil {
		primitives.Zero(newMUK)
		return nil, err
	}

	ciphertext, err := keyring.Encrypt(s.keyring, newMUK, newNonce)
	if err != nil {
		primitives.Zero(newMUK)
		return nil, err
	}

	newMeta := vaultheader.NewWorkspaceMetadata(s.metadata.WorkspaceID, newSalt, newParams, newNonce, s.metadata.CreatedAt).
		WithModified(time.Now())

	rawMeta, err := vaultheader.MarshalMetadata(newMeta)
	if err != nil {
		primitives.Zero(newMUK)
		return nil, err
	}

	// §7: any failure after the new MUK is derived but before both
	// files are renamed must zeroize the new MUK and leave the old
	// files intact. write_atomic already guarantees each individual
	// rename is all-or-nothing; the two calls below are ordered so a
	// crash between them still leaves a fully valid (pre- or
	// post-rotation) pair on disk.
	if err := s.p.WriteAtomic(metadataPath(s.root), rawMeta); err != nil {
		primitives.Zero(newMUK)
		return nil, err
	}

	if err := s.p.WriteAtomic(keyringPath(s.root), ciphertext); err != nil {
		primitives.Zero(newMUK)
		return nil, err
	}

	next := &Session{
		p:        s.p,
		root:     s.root,
		muk:      securebytes.NewMUK(newMUK),
		metadata: newMeta,
		keyring:  s.keyring,
	}

	s.muk.Dispose()
	s.keyring = keyring.Keyring{}
	s.disposed = true

	return next, nil
}
