// Package vault implements the per-vault lifecycle: creating a vault
// directory, unlocking it with its VaultKey, deriving scope keys on
// demand, rekeying, and locking (§4.6). A vault's own state machine is
// Uninitialized -> Locked -> Unlocked -> Locked -> ..., with a
// terminal Error state entered on header corruption.
package vault

import (
	"fmt"
	"sync"
	"time"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/securebytes"
	"github.com/witflo/fyndo-core/storage"
	"github.com/witflo/fyndo-core/vaultfs"
	"github.com/witflo/fyndo-core/vaultheader"
	"github.com/witflo/fyndo-core/witfloerrors"
)

// State is one of the vault lifecycle's named states (§4.6).
type State int

const (
	Uninitialized State = iota
	Locked
	Unlocked
	Error
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// config holds the options accumulated from [Option] values passed to
// [Create].
type config struct {
	createdAt time.Time
}

type Option func(*config)

// WithCreatedAt overrides the creation timestamp normally taken from
// the system clock; primarily useful for tests.
func WithCreatedAt(t time.Time) Option {
	return func(c *config) { c.createdAt = t }
}

func newConfig(opts ...Option) *config {
	c := &config{createdAt: time.Now()}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Vault is a handle to one unlocked (or locked) vault directory. A
// zero-value Vault is not usable; obtain one from [Create] or
// [Unlock].
type Vault struct {
	mu sync.Mutex

	id      string
	layout  vaultfs.Layout
	p       storage.Provider
	store   *vaultfs.ObjectStore
	header  vaultheader.VaultHeader
	state   State
	key     securebytes.VaultKey
	derived map[string]securebytes.ContentKey
}

// ID returns the vault's UUID.
func (v *Vault) ID() string { return v.id }

// State returns the vault's current lifecycle state.
func (v *Vault) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.state
}

// Create initializes a brand-new vault at path, writing its header
// and directory skeleton and storing vaultKey as the vault's session
// key. vaultKey is consumed (the caller's copy of the raw bytes
// should not be reused); ownership transfers to the returned [Vault].
//
// This is the v2 path: vaultKey is always the random key already
// present in the workspace keyring. The legacy v1 path, where the key
// was instead encrypted under a password-derived MUK, is handled by
// [MigrateLegacy] and never by Create.
func Create(p storage.Provider, path string, id string, vaultKey []byte, opts ...Option) (vlt *Vault, retErr error) {
	cfg := newConfig(opts...)

	layout := vaultfs.NewLayout(path)

	if err := vaultfs.Init(p, layout); err != nil {
		return nil, errf("vault.create: %w", err)
	}

	salt, err := primitives.Salt()
	if err != nil {
		return nil, errf("vault.create: %w", err)
	}

	header := vaultheader.NewVaultHeader(id, salt, primitives.DefaultParams, cfg.createdAt)

	raw, err := vaultheader.MarshalHeader(header)
	if err != nil {
		return nil, errf("vault.create: %w", err)
	}

	if err := p.WriteAtomic(layout.Header(), raw); err != nil {
		return nil, errf("vault.create: %w", err)
	}

	wrapKey, err := primitives.Expand(vaultKey, primitives.VaultKeyFileV1, primitives.KeySize)
	if err != nil {
		return nil, errf("vault.create: %w", err)
	}

	wrapped, err := primitives.Encrypt(vaultKey, wrapKey)
	if err != nil {
		return nil, errf("vault.create: %w", err)
	}

	if err := p.WriteAtomic(layout.VaultKeyFile(), wrapped); err != nil {
		return nil, errf("vault.create: %w", err)
	}

	vlt = &Vault{
		id:      id,
		layout:  layout,
		p:       p,
		store:   vaultfs.NewObjectStore(p, layout),
		header:  header,
		state:   Locked,
		derived: map[string]securebytes.ContentKey{},
	}

	if err := vlt.unlockWith(vaultKey); err != nil {
		return vlt, errf("vault.create: %w", err)
	}

	return vlt, nil
}

// Unlock opens an already-created vault at path using vaultKey, the
// raw 32-byte key obtained from the workspace keyring for this
// vault's id.
func Unlock(p storage.Provider, path string, vaultKey []byte) (vlt *Vault, retErr error) {
	layout := vaultfs.NewLayout(path)

	raw, err := p.Read(layout.Header())
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, witfloerrors.ErrVaultNotFound
		}

		return nil, errf("vault.unlock: %w", err)
	}

	header, err := vaultheader.UnmarshalHeader(raw)
	if err != nil {
		return &Vault{state: Error}, errf("vault.unlock: %w", err)
	}

	if !header.IsLegacy() {
		if err := verifyVaultKeyFile(p, layout, vaultKey); err != nil {
			return &Vault{state: Error}, err
		}
	}

	vlt = &Vault{
		id:      header.VaultID,
		layout:  layout,
		p:       p,
		store:   vaultfs.NewObjectStore(p, layout),
		header:  header,
		state:   Locked,
		derived: map[string]securebytes.ContentKey{},
	}

	if err := vlt.unlockWith(vaultKey); err != nil {
		return vlt, errf("vault.unlock: %w", err)
	}

	return vlt, nil
}

// verifyVaultKeyFile checks vaultKey against the `vault.vk` confirmation
// file written by [Create] or [MigrateLegacy]. A vault created before
// this check existed has no such file; that case is not an error,
// since `vault.vk` is a defense-in-depth confirmation, not the source
// of truth (the workspace keyring is).
func verifyVaultKeyFile(p storage.Provider, layout vaultfs.Layout, vaultKey []byte) error {
	wrapped, err := p.Read(layout.VaultKeyFile())
	if err != nil {
		if err == storage.ErrNotFound {
			return nil
		}

		return errf("vault.unlock: %w", err)
	}

	wrapKey, err := primitives.Expand(vaultKey, primitives.VaultKeyFileV1, primitives.KeySize)
	if err != nil {
		return errf("vault.unlock: %w", err)
	}

	plaintext, err := primitives.Decrypt(wrapped, wrapKey)
	if err != nil {
		return witfloerrors.ErrInvalidMasterPassword
	}

	if string(plaintext) != string(vaultKey) {
		return witfloerrors.ErrInvalidMasterPassword
	}

	return nil
}

func (v *Vault) unlockWith(vaultKey []byte) error {
	if len(vaultKey) != primitives.KeySize {
		return witfloerrors.ErrInvalidParams
	}

	v.key = securebytes.NewVaultKey(vaultKey)
	v.state = Unlocked

	return nil
}

// Header returns the vault's plaintext header descriptor.
func (v *Vault) Header() vaultheader.VaultHeader { return v.header }

// Objects returns the vault's content-addressed object store.
func (v *Vault) Objects() *vaultfs.ObjectStore { return v.store }

// Layout returns the vault's directory layout helper.
func (v *Vault) Layout() vaultfs.Layout { return v.layout }

// Provider returns the storage provider the vault was opened with, so
// repositories can read and write the `refs/*` index files directly
// without going through the content-addressed object store.
func (v *Vault) Provider() storage.Provider { return v.p }

// DeriveContentKey derives (and caches) the content key for noteID.
// It fails with [witfloerrors.ErrNotUnlocked] if the vault is not
// currently unlocked.
func (v *Vault) DeriveContentKey(noteID string) (securebytes.ContentKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != Unlocked {
		return securebytes.ContentKey{}, witfloerrors.ErrNotUnlocked
	}

	if cached, ok := v.derived[noteID]; ok {
		return cached, nil
	}

	key, err := v.key.DeriveContentKey(noteID)
	if err != nil {
		return securebytes.ContentKey{}, err
	}

	v.derived[noteID] = key

	return key, nil
}

// DeriveNotebookKey derives the notebook scope key for notebookID.
func (v *Vault) DeriveNotebookKey(notebookID string) (securebytes.NotebookKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != Unlocked {
		return securebytes.NotebookKey{}, witfloerrors.ErrNotUnlocked
	}

	return v.key.DeriveNotebookKey(notebookID)
}

// DeriveSearchKey derives the blind search-index key.
func (v *Vault) DeriveSearchKey() (securebytes.SearchKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != Unlocked {
		return securebytes.SearchKey{}, witfloerrors.ErrNotUnlocked
	}

	return v.key.DeriveSearchKey()
}

// DeriveIndexKey derives the raw key protecting the named
// `refs/*.jsonl.enc` index file.
func (v *Vault) DeriveIndexKey(name string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != Unlocked {
		return nil, witfloerrors.ErrNotUnlocked
	}

	return v.key.DeriveIndexKey(name)
}

// DeriveSyncKey derives the per-vault sync envelope key (§4.11).
func (v *Vault) DeriveSyncKey() ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != Unlocked {
		return nil, witfloerrors.ErrNotUnlocked
	}

	return v.key.DeriveSyncKey()
}

// Rekey rewrites the vault's header atomically under newParams,
// regenerating the salt. The VaultKey itself is unchanged (v2 vault
// keys are random and workspace-keyring-wrapped, not password
// derived); only the header's recorded KDF parameters move, matching
// the teacher's Seal-then-atomic-rename pattern.
func (v *Vault) Rekey(newParams primitives.Argon2Params, at time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != Unlocked {
		return witfloerrors.ErrNotUnlocked
	}

	salt, err := primitives.Salt()
	if err != nil {
		return errf("vault.rekey: %w", err)
	}

	next := v.header
	next.Salt = salt
	next.KDF.MemoryKiB = newParams.MemoryKiB
	next.KDF.Iterations = newParams.Iterations
	next.KDF.Parallelism = newParams.Parallelism
	next.ModifiedAt = at

	raw, err := vaultheader.MarshalHeader(next)
	if err != nil {
		return errf("vault.rekey: %w", err)
	}

	if err := v.p.WriteAtomic(v.layout.Header(), raw); err != nil {
		return errf("vault.rekey: %w", err)
	}

	v.header = next

	return nil
}

// Lock zeroizes the vault key and every cached derived key. Subsequent
// derive calls fail with [witfloerrors.ErrNotUnlocked].
func (v *Vault) Lock() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != Unlocked {
		return nil
	}

	v.key.Dispose()

	for id, ck := range v.derived {
		ck.Dispose()
		delete(v.derived, id)
	}

	v.state = Locked

	return nil
}

func errf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}
