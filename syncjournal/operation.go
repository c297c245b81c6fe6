// Package syncjournal implements the append-only, signed, encrypted
// operation log each vault uses to exchange edits with other devices
// (§4.11), and the file watcher that keeps the in-memory caches and
// lock state consistent with changes made by another process.
package syncjournal

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/witfloerrors"
)

// OperationType names the kind of mutation a [SyncOperation] records.
type OperationType string

const (
	OpCreateNote   OperationType = "create_note"
	OpUpdateNote   OperationType = "update_note"
	OpDeleteNote   OperationType = "delete_note"
	OpMoveNote     OperationType = "move_note"
	OpCreateNotebook OperationType = "create_notebook"
	OpDeleteNotebook OperationType = "delete_notebook"
)

// SyncOperation is the decrypted, verified form of one change record
// (§4.11).
type SyncOperation struct {
	OpID      string
	Type      OperationType
	TargetID  string
	Payload   map[string]any
	LamportTS uint64
	DeviceID  string
}

// Envelope is the on-disk JSON shape of a sync operation: the payload
// is AEAD-encrypted under the vault's sync key, and the whole envelope
// (everything but the signature itself) is signed with the device's
// Ed25519 identity key.
type Envelope struct {
	OpID             string        `json:"op_id"`
	Type             OperationType `json:"type"`
	TargetID         string        `json:"target_id"`
	EncryptedPayload []byte        `json:"payload"`
	LamportTS        uint64        `json:"lamport_ts"`
	DeviceID         string        `json:"device_id"`
	Signature        []byte        `json:"signature"`
}

// signedFields returns the canonical byte sequence the signature
// covers: every envelope field except the signature itself, in a
// fixed order so signer and verifier never disagree on what was
// signed.
func (e Envelope) signedFields() []byte {
	type signable struct {
		OpID             string        `json:"op_id"`
		Type             OperationType `json:"type"`
		TargetID         string        `json:"target_id"`
		EncryptedPayload []byte        `json:"payload"`
		LamportTS        uint64        `json:"lamport_ts"`
		DeviceID         string        `json:"device_id"`
	}

	raw, _ := json.Marshal(signable{
		OpID: e.OpID, Type: e.Type, TargetID: e.TargetID,
		EncryptedPayload: e.EncryptedPayload, LamportTS: e.LamportTS, DeviceID: e.DeviceID,
	})

	return raw
}

// Seal encrypts op's payload under syncKey and signs the resulting
// envelope with signKey, producing the form persisted to
// `sync/pending/<opId>.op.enc`.
func Seal(op SyncOperation, syncKey []byte, signKey ed25519.PrivateKey) (Envelope, error) {
	plaintext, err := json.Marshal(op.Payload)
	if err != nil {
		return Envelope{}, err
	}

	ciphertext, err := primitives.Encrypt(plaintext, syncKey)
	if err != nil {
		return Envelope{}, err
	}

	env := Envelope{
		OpID: op.OpID, Type: op.Type, TargetID: op.TargetID,
		EncryptedPayload: ciphertext, LamportTS: op.LamportTS, DeviceID: op.DeviceID,
	}

	env.Signature = primitives.Sign(signKey, env.signedFields())

	return env, nil
}

// Open verifies env's signature and decrypts its payload, returning
// the operation it represents.
func Open(env Envelope, syncKey []byte, verifyKey ed25519.PublicKey) (SyncOperation, error) {
	if err := primitives.Verify(verifyKey, env.signedFields(), env.Signature); err != nil {
		return SyncOperation{}, err
	}

	plaintext, err := primitives.Decrypt(env.EncryptedPayload, syncKey)
	if err != nil {
		return SyncOperation{}, err
	}

	var payload map[string]any
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return SyncOperation{}, witfloerrors.ErrIndexCorrupt
	}

	return SyncOperation{
		OpID: env.OpID, Type: env.Type, TargetID: env.TargetID,
		Payload: payload, LamportTS: env.LamportTS, DeviceID: env.DeviceID,
	}, nil
}

// MarshalEnvelope serializes env as JSON for storage.
func MarshalEnvelope(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// UnmarshalEnvelope parses raw as an [Envelope].
func UnmarshalEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, err
	}

	return env, nil
}

// NewDeviceID derives a stable, display-safe device identifier from an
// Ed25519 public key.
func NewDeviceID(pub ed25519.PublicKey) string {
	return base64.RawURLEncoding.EncodeToString(pub)
}
