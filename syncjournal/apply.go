package syncjournal

import (
	"crypto/ed25519"
	"encoding/json"

	"github.com/witflo/fyndo-core/repository"
	"github.com/witflo/fyndo-core/storage"
	"github.com/witflo/fyndo-core/vault"
)

// Journal ties together a vault's pending-operation log, its sync
// cursor, and the note/notebook repositories that pending operations
// mutate, applying each pending operation in Lamport order exactly
// once (§4.11).
type Journal struct {
	vlt       *vault.Vault
	log       *Log
	notes     *repository.NoteRepository
	notebooks *repository.NotebookRepository
	deviceID  string
}

// NewJournal builds a Journal for vlt, identified on the wire as
// deviceID.
func NewJournal(vlt *vault.Vault, deviceID string) *Journal {
	return &Journal{
		vlt:       vlt,
		log:       NewLog(vlt.Provider(), vlt.Layout()),
		notes:     repository.NewNoteRepository(vlt),
		notebooks: repository.NewNotebookRepository(vlt),
		deviceID:  deviceID,
	}
}

// Record seals a local mutation stamped with the caller-supplied
// lamportTS and appends it to the pending log. It returns only an
// error; the caller keeps and advances its own Lamport clock.
func (j *Journal) Record(opType OperationType, targetID string, payload map[string]any, lamportTS uint64, opID string, signKey ed25519.PrivateKey) error {
	syncKey, err := j.vlt.DeriveSyncKey()
	if err != nil {
		return err
	}

	op := SyncOperation{
		OpID: opID, Type: opType, TargetID: targetID,
		Payload: payload, LamportTS: lamportTS, DeviceID: j.deviceID,
	}

	env, err := Seal(op, syncKey, signKey)
	if err != nil {
		return err
	}

	return j.log.Append(env)
}

// ApplyPending decrypts and verifies every pending operation, applies
// those newer than the current cursor to the note/notebook
// repositories, advances the cursor, and discards applied operations
// from the pending log.
//
// trust resolves the Ed25519 public key for a remote device id; it is
// supplied by the caller (typically backed by a roster synced out of
// band) rather than embedded here.
func (j *Journal) ApplyPending(p storage.Provider, cursorPath string, trust func(deviceID string) (ed25519.PublicKey, bool)) error {
	syncKey, err := j.vlt.DeriveSyncKey()
	if err != nil {
		return err
	}

	cursor, err := LoadCursor(p, cursorPath, syncKey)
	if err != nil {
		return err
	}

	pending, err := j.log.Pending()
	if err != nil {
		return err
	}

	for _, env := range pending {
		pub, ok := trust(env.DeviceID)
		if !ok {
			continue
		}

		op, err := Open(env, syncKey, pub)
		if err != nil {
			continue
		}

		candidate := Cursor{LamportTS: op.LamportTS, DeviceID: op.DeviceID}
		if !ShouldApply(candidate, cursor) {
			if err := j.log.Discard(op.OpID); err != nil {
				return err
			}

			continue
		}

		if err := j.apply(op); err != nil {
			return err
		}

		cursor = candidate

		if err := j.log.Discard(op.OpID); err != nil {
			return err
		}
	}

	return SaveCursor(p, cursorPath, cursor, syncKey)
}

func (j *Journal) apply(op SyncOperation) error {
	switch op.Type {
	case OpCreateNote, OpUpdateNote, OpMoveNote:
		return j.applyNote(op)
	case OpDeleteNote:
		return j.notes.Delete(op.TargetID)
	case OpCreateNotebook:
		return j.applyNotebook(op)
	case OpDeleteNotebook:
		return j.notebooks.Delete(op.TargetID)
	default:
		return nil
	}
}

func (j *Journal) applyNote(op SyncOperation) error {
	raw, err := json.Marshal(op.Payload)
	if err != nil {
		return err
	}

	var n repository.Note
	if err := json.Unmarshal(raw, &n); err != nil {
		return err
	}

	n.ID = op.TargetID

	return j.notes.Save(n)
}

func (j *Journal) applyNotebook(op SyncOperation) error {
	raw, err := json.Marshal(op.Payload)
	if err != nil {
		return err
	}

	var nb repository.Notebook
	if err := json.Unmarshal(raw, &nb); err != nil {
		return err
	}

	nb.ID = op.TargetID

	return j.notebooks.Save(nb)
}
