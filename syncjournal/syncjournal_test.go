package syncjournal_test

import (
	"testing"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/storage"
	"github.com/witflo/fyndo-core/syncjournal"
	"github.com/witflo/fyndo-core/vaultfs"
)

func TestSealOpen_RoundTrip(t *testing.T) {
	syncKey, err := primitives.SymmetricKey()
	if err != nil {
		t.Fatal(err)
	}

	kp, err := primitives.GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}

	op := syncjournal.SyncOperation{
		OpID:      "op-1",
		Type:      syncjournal.OpCreateNote,
		TargetID:  "note-1",
		Payload:   map[string]any{"title": "hi"},
		LamportTS: 42,
		DeviceID:  syncjournal.NewDeviceID(kp.Public),
	}

	env, err := syncjournal.Seal(op, syncKey, kp.Private)
	if err != nil {
		t.Fatal(err)
	}

	got, err := syncjournal.Open(env, syncKey, kp.Public)
	if err != nil {
		t.Fatal(err)
	}

	if got.OpID != op.OpID || got.TargetID != op.TargetID || got.LamportTS != op.LamportTS {
		t.Errorf("got %+v, want %+v", got, op)
	}

	if got.Payload["title"] != "hi" {
		t.Errorf("payload mismatch: %+v", got.Payload)
	}
}

func TestOpen_RejectsTamperedEnvelope(t *testing.T) {
	syncKey, err := primitives.SymmetricKey()
	if err != nil {
		t.Fatal(err)
	}

	kp, err := primitives.GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}

	op := syncjournal.SyncOperation{OpID: "op-1", Type: syncjournal.OpDeleteNote, TargetID: "note-1"}

	env, err := syncjournal.Seal(op, syncKey, kp.Private)
	if err != nil {
		t.Fatal(err)
	}

	env.TargetID = "note-2"

	if _, err := syncjournal.Open(env, syncKey, kp.Public); err == nil {
		t.Error("expected tampered envelope to fail verification")
	}
}

func TestShouldApply_LastWriterWinsByLamportThenDeviceID(t *testing.T) {
	tests := []struct {
		name      string
		candidate syncjournal.Cursor
		current   syncjournal.Cursor
		want      bool
	}{
		{"higher lamport wins", syncjournal.Cursor{LamportTS: 5, DeviceID: "a"}, syncjournal.Cursor{LamportTS: 4, DeviceID: "z"}, true},
		{"lower lamport loses", syncjournal.Cursor{LamportTS: 3, DeviceID: "z"}, syncjournal.Cursor{LamportTS: 4, DeviceID: "a"}, false},
		{"tie broken by device id", syncjournal.Cursor{LamportTS: 4, DeviceID: "b"}, syncjournal.Cursor{LamportTS: 4, DeviceID: "a"}, true},
		{"tie loses on lesser device id", syncjournal.Cursor{LamportTS: 4, DeviceID: "a"}, syncjournal.Cursor{LamportTS: 4, DeviceID: "b"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := syncjournal.ShouldApply(tt.candidate, tt.current); got != tt.want {
				t.Errorf("ShouldApply(%+v, %+v) = %v, want %v", tt.candidate, tt.current, got, tt.want)
			}
		})
	}
}

func TestCursor_SaveThenLoadRoundTrips(t *testing.T) {
	p := storage.NewMemoryProvider()
	key, err := primitives.SymmetricKey()
	if err != nil {
		t.Fatal(err)
	}

	l := vaultfs.NewLayout("/virtual/vault")

	want := syncjournal.Cursor{LamportTS: 9, DeviceID: "device-a"}

	if err := syncjournal.SaveCursor(p, l.SyncCursorFile(), want, key); err != nil {
		t.Fatal(err)
	}

	got, err := syncjournal.LoadCursor(p, l.SyncCursorFile(), key)
	if err != nil {
		t.Fatal(err)
	}

	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCursor_LoadMissingReturnsZeroValue(t *testing.T) {
	p := storage.NewMemoryProvider()
	key, err := primitives.SymmetricKey()
	if err != nil {
		t.Fatal(err)
	}

	l := vaultfs.NewLayout("/virtual/vault")

	got, err := syncjournal.LoadCursor(p, l.SyncCursorFile(), key)
	if err != nil {
		t.Fatal(err)
	}

	if got != (syncjournal.Cursor{}) {
		t.Errorf("got %+v, want zero value", got)
	}
}

func TestLog_AppendPendingDiscard(t *testing.T) {
	p := storage.NewMemoryProvider()
	l := vaultfs.NewLayout("/virtual/vault")

	if err := vaultfs.Init(p, l); err != nil {
		t.Fatal(err)
	}

	syncKey, err := primitives.SymmetricKey()
	if err != nil {
		t.Fatal(err)
	}

	kp, err := primitives.GenerateEd25519()
	if err != nil {
		t.Fatal(err)
	}

	lg := syncjournal.NewLog(p, l)

	mkEnv := func(opID string, ts uint64) syncjournal.Envelope {
		op := syncjournal.SyncOperation{OpID: opID, Type: syncjournal.OpUpdateNote, TargetID: "note-1", LamportTS: ts, DeviceID: "dev-a"}

		env, err := syncjournal.Seal(op, syncKey, kp.Private)
		if err != nil {
			t.Fatal(err)
		}

		return env
	}

	if err := lg.Append(mkEnv("op-2", 2)); err != nil {
		t.Fatal(err)
	}

	if err := lg.Append(mkEnv("op-1", 1)); err != nil {
		t.Fatal(err)
	}

	pending, err := lg.Pending()
	if err != nil {
		t.Fatal(err)
	}

	if len(pending) != 2 || pending[0].OpID != "op-1" || pending[1].OpID != "op-2" {
		t.Errorf("expected pending ops ordered by lamport ts, got %+v", pending)
	}

	if err := lg.Discard("op-1"); err != nil {
		t.Fatal(err)
	}

	pending, err = lg.Pending()
	if err != nil {
		t.Fatal(err)
	}

	if len(pending) != 1 || pending[0].OpID != "op-2" {
		t.Errorf("expected only op-2 left pending, got %+v", pending)
	}
}
