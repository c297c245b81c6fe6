package vaultheader

import (
	"encoding/json"
	"time"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/witfloerrors"
)

// currentWorkspaceVersion is the only workspace metadata version this
// core writes.
const currentWorkspaceVersion = 2

// WorkspaceMetadataFilename and KeyringFilename are the well-known
// file names at the root of every workspace (§6).
const (
	WorkspaceMetadataFilename = ".witflo-workspace"
	KeyringFilename           = ".witflo-keyring.enc"

	// DeviceIdentityFilename holds the workspace's Ed25519 sync
	// signing keypair, encrypted under the workspace MUK. Not part of
	// spec.md's literal §6 file list; supplements the sync operations
	// §4.11 requires signing for (SPEC_FULL.md "Device identity").
	DeviceIdentityFilename = ".witflo-device.enc"
)

// WorkspaceCrypto is the crypto section of [WorkspaceMetadata]: the
// parameters needed to re-derive the MUK from a master password, and
// the nonce the keyring file is (or will be) sealed under.
type WorkspaceCrypto struct {
	MasterKeySalt []byte    `json:"master_key_salt"`
	Argon2Params  KDFParams `json:"argon2_params"`
	KeyringNonce  []byte    `json:"keyring_nonce"`
}

// WorkspaceMetadata is the JSON document stored at
// [WorkspaceMetadataFilename] at the root of a workspace (§4.1).
type WorkspaceMetadata struct {
	Version     int             `json:"version"`
	WorkspaceID string          `json:"workspace_id"`
	CreatedAt   time.Time       `json:"created_at"`
	ModifiedAt  time.Time       `json:"modified_at,omitempty"`
	Crypto      WorkspaceCrypto `json:"crypto"`
}

// NewWorkspaceMetadata builds current-version workspace metadata for a
// freshly initialized workspace.
func NewWorkspaceMetadata(workspaceID string, salt []byte, params primitives.Argon2Params, keyringNonce []byte, createdAt time.Time) WorkspaceMetadata {
	return WorkspaceMetadata{
		Version:     currentWorkspaceVersion,
		WorkspaceID: workspaceID,
		CreatedAt:   createdAt,
		Crypto: WorkspaceCrypto{
			MasterKeySalt: salt,
			Argon2Params:  fromArgon2Params(params),
			KeyringNonce:  keyringNonce,
		},
	}
}

func (m WorkspaceMetadata) Argon2Params() primitives.Argon2Params {
	return m.Crypto.Argon2Params.toArgon2Params()
}

// MarshalMetadata serializes m as indented JSON.
func MarshalMetadata(m WorkspaceMetadata) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// UnmarshalMetadata parses raw as a [WorkspaceMetadata] and checks its
// version is one this core understands.
func UnmarshalMetadata(raw []byte) (WorkspaceMetadata, error) {
	var m WorkspaceMetadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return WorkspaceMetadata{}, err
	}

	if m.Version != currentWorkspaceVersion {
		return WorkspaceMetadata{}, witfloerrors.ErrUnsupportedVersion
	}

	return m, nil
}

// WithModified returns a copy of m with ModifiedAt set to at.
func (m WorkspaceMetadata) WithModified(at time.Time) WorkspaceMetadata {
	m.ModifiedAt = at
	return m
}

// WithKeyringNonce returns a copy of m with a new keyring nonce, used
// when the keyring is resaved with workspace.Session.SaveWithFreshNonce.
func (m WorkspaceMetadata) WithKeyringNonce(nonce []byte) WorkspaceMetadata {
	m.Crypto.KeyringNonce = nonce
	return m
}
