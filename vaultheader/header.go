// Package vaultheader defines the on-disk JSON header formats written
// at the root of a workspace and of each vault (§4.1, §4.2), and the
// version gate that decides whether this core can open a given file.
package vaultheader

import (
	"encoding/json"
	"time"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/witfloerrors"
)

// currentVaultVersion is the only vault.header version this core
// writes. Version 1 (legacy per-vault-password) is still readable
// through the migration path in package vault.
const currentVaultVersion = 2

// KDFParams is the JSON form of [primitives.Argon2Params], persisted
// alongside the salt so a reader can reproduce the exact derivation
// used when the header was written.
type KDFParams struct {
	MemoryKiB   uint32 `json:"memory_kib"`
	Iterations  uint32 `json:"iterations"`
	Parallelism uint8  `json:"parallelism"`
	Version     int    `json:"version"`
}

func (k KDFParams) toArgon2Params() primitives.Argon2Params {
	return primitives.Argon2Params{
		MemoryKiB:   k.MemoryKiB,
		Iterations:  k.Iterations,
		Parallelism: k.Parallelism,
	}
}

func fromArgon2Params(p primitives.Argon2Params) KDFParams {
	return KDFParams{
		MemoryKiB:   p.MemoryKiB,
		Iterations:  p.Iterations,
		Parallelism: p.Parallelism,
		Version:     argon2idVersion,
	}
}

// argon2idVersion is the Argon2 algorithm version this core derives
// with, recorded in every header so a future version bump cannot
// silently reinterpret an older one's parameters.
const argon2idVersion = 19

// VaultHeader is the JSON header stored at vault.header inside every
// vault directory (§4.2).
type VaultHeader struct {
	Version    int       `json:"version"`
	Salt       []byte    `json:"salt"`
	KDF        KDFParams `json:"kdf"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
	VaultID    string    `json:"vault_id"`
	Features   []string  `json:"features,omitempty"`
}

// NewVaultHeader builds a current-version header for a freshly created
// vault.
func NewVaultHeader(vaultID string, salt []byte, params primitives.Argon2Params, createdAt time.Time) VaultHeader {
	return VaultHeader{
		Version:   currentVaultVersion,
		Salt:      salt,
		KDF:       fromArgon2Params(params),
		CreatedAt: createdAt,
		VaultID:   vaultID,
	}
}

// Argon2Params returns the parameters this header's KDF section
// describes, in the form [primitives.DeriveMUK] expects.
func (h VaultHeader) Argon2Params() primitives.Argon2Params {
	return h.KDF.toArgon2Params()
}

// MarshalHeader serializes h as indented JSON for readability when
// inspected outside the application.
func MarshalHeader(h VaultHeader) ([]byte, error) {
	return json.MarshalIndent(h, "", "  ")
}

// UnmarshalHeader parses raw as a [VaultHeader] and checks its version
// is one this core understands, returning
// [witfloerrors.ErrUnsupportedVersion] otherwise (§7).
func UnmarshalHeader(raw []byte) (VaultHeader, error) {
	var h VaultHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return VaultHeader{}, err
	}

	switch h.Version {
	case 1, currentVaultVersion:
		return h, nil
	default:
		return VaultHeader{}, witfloerrors.ErrUnsupportedVersion
	}
}

// IsLegacy reports whether h uses the version 1 per-vault-password
// scheme that the migration path in package vault rewrites in place.
func (h VaultHeader) IsLegacy() bool {
	return h.Version == 1
}
