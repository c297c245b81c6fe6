package syncjournal

import (
	"encoding/json"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/storage"
)

// Cursor marks the highest sync position this device has applied,
// used to decide whether an incoming operation is newer (§4.11).
type Cursor struct {
	LamportTS uint64 `json:"lamport_ts"`
	DeviceID  string `json:"device_id"`
}

// ShouldApply implements the last-writer-wins rule: a candidate
// operation applies if its Lamport timestamp is strictly greater than
// current's, or equal with a lexicographically greater device id
// breaking the tie.
func ShouldApply(candidate, current Cursor) bool {
	if candidate.LamportTS != current.LamportTS {
		return candidate.LamportTS > current.LamportTS
	}

	return candidate.DeviceID > current.DeviceID
}

// LoadCursor reads and decrypts the sync cursor at path, returning the
// zero Cursor if it has never been written.
func LoadCursor(p storage.Provider, path string, key []byte) (Cursor, error) {
	raw, err := p.Read(path)
	if err != nil {
		if err == storage.ErrNotFound {
			return Cursor{}, nil
		}

		return Cursor{}, err
	}

	plaintext, err := primitives.Decrypt(raw, key)
	if err != nil {
		return Cursor{}, err
	}

	var c Cursor
	if err := json.Unmarshal(plaintext, &c); err != nil {
		return Cursor{}, err
	}

	return c, nil
}

// SaveCursor encrypts c under key and atomically writes it to path.
func SaveCursor(p storage.Provider, path string, c Cursor, key []byte) error {
	raw, err := MarshalCursor(c, key)
	if err != nil {
		return err
	}

	return p.WriteAtomic(path, raw)
}

// MarshalCursor encrypts c under key for persistence at
// `sync/cursor.enc`.
func MarshalCursor(c Cursor, key []byte) ([]byte, error) {
	plaintext, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	return primitives.Encrypt(plaintext, key)
}
