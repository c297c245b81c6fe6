package vault

import (
	"time"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/storage"
	"github.com/witflo/fyndo-core/vaultfs"
	"github.com/witflo/fyndo-core/vaultheader"
	"github.com/witflo/fyndo-core/witfloerrors"
)

// MigrateLegacy converts a version-1 vault, whose VaultKey is
// encrypted under a MUK derived from a vault-specific password, into
// a version-2 vault whose VaultKey is the random, workspace-keyring
// wrapped key the rest of this package assumes (§4.6, §9). It is the
// only code path allowed to read a legacy per-vault password; callers
// MUST discard legacyPassword afterward and MUST NOT build new
// per-vault-password flows on top of it.
//
// newVaultKey is the fresh random key the caller has already inserted
// into the workspace keyring for this vault id; MigrateLegacy rewrites
// vault.header and vault.vk in place (tmp-then-rename) so the vault's
// content objects, which are keyed off the VaultKey via HKDF and are
// never touched by this function, become readable under the new key
// only after the caller separately re-encrypts them. Re-encrypting
// content is out of scope here: MigrateLegacy only retires the legacy
// key-wrapping scheme, matching the "single transactional rewrite"
// the legacy path is scoped to.
func MigrateLegacy(p storage.Provider, path string, legacyPassword, newVaultKey []byte, at time.Time) error {
	layout := vaultfs.NewLayout(path)

	raw, err := p.Read(layout.Header())
	if err != nil {
		return migrationErr("read-header", err)
	}

	header, err := vaultheader.UnmarshalHeader(raw)
	if err != nil {
		return migrationErr("parse-header", err)
	}

	if !header.IsLegacy() {
		return witfloerrors.ErrAlreadyInitialized
	}

	wrapped, err := p.Read(layout.VaultKeyFile())
	if err != nil {
		return migrationErr("read-vault-key", err)
	}

	muk, err := primitives.DeriveMUK(legacyPassword, header.Salt, header.Argon2Params())
	if err != nil {
		return migrationErr("derive-muk", err)
	}

	if _, err := primitives.Decrypt(wrapped, muk); err != nil {
		return witfloerrors.ErrInvalidMasterPassword
	}

	if len(newVaultKey) != primitives.KeySize {
		return witfloerrors.ErrInvalidParams
	}

	next := header
	next.Version = 2
	next.ModifiedAt = at

	nextRaw, err := vaultheader.MarshalHeader(next)
	if err != nil {
		return migrationErr("marshal-header", err)
	}

	if err := p.WriteAtomic(layout.Header(), nextRaw); err != nil {
		return migrationErr("write-header", err)
	}

	wrapKey, err := primitives.Expand(newVaultKey, primitives.VaultKeyFileV1, primitives.KeySize)
	if err != nil {
		return migrationErr("derive-vault-key-file-key", err)
	}

	newWrapped, err := primitives.Encrypt(newVaultKey, wrapKey)
	if err != nil {
		return migrationErr("wrap-vault-key", err)
	}

	if err := p.WriteAtomic(layout.VaultKeyFile(), newWrapped); err != nil {
		return migrationErr("write-vault-key", err)
	}

	return nil
}

func migrationErr(step string, err error) error {
	return &witfloerrors.MigrationFailedError{Step: step, Err: err}
}
