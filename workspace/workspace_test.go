package workspace_test

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/storage"
	"github.com/witflo/fyndo-core/syncjournal"
	"github.com/witflo/fyndo-core/vault"
	"github.com/witflo/fyndo-core/vaultfs"
	"github.com/witflo/fyndo-core/vaultheader"
	"github.com/witflo/fyndo-core/witfloerrors"
	"github.com/witflo/fyndo-core/workspace"
)

func TestInitialize_ThenUnlockWithEmptyKeyring(t *testing.T) {
	p := storage.NewMemoryProvider()

	sess, err := workspace.Initialize(p, "/virtual/w1", []byte("correct horse battery staple"))
	if err != nil {
		t.Fatal(err)
	}

	if len(sess.VaultIDs()) != 0 {
		t.Errorf("got %d vaults, want 0", len(sess.VaultIDs()))
	}

	sess.Lock()

	reopened, err := workspace.Unlock(p, "/virtual/w1", []byte("correct horse battery staple"))
	if err != nil {
		t.Fatal(err)
	}

	if len(reopened.VaultIDs()) != 0 {
		t.Errorf("got %d vaults after reopen, want 0", len(reopened.VaultIDs()))
	}
}

func TestInitialize_RejectsSecondInitAtSameRoot(t *testing.T) {
	p := storage.NewMemoryProvider()

	if _, err := workspace.Initialize(p, "/virtual/w2", []byte("pw1")); err != nil {
		t.Fatal(err)
	}

	if _, err := workspace.Initialize(p, "/virtual/w2", []byte("pw2")); err != witfloerrors.ErrAlreadyInitialized {
		t.Errorf("got %v, want %v", err, witfloerrors.ErrAlreadyInitialized)
	}
}

func TestUnlock_WrongPasswordFails(t *testing.T) {
	p := storage.NewMemoryProvider()

	sess, err := workspace.Initialize(p, "/virtual/w3", []byte("correct horse battery staple"))
	if err != nil {
		t.Fatal(err)
	}

	sess.Lock()

	if _, err := workspace.Unlock(p, "/virtual/w3", []byte("wrong")); err != witfloerrors.ErrInvalidMasterPassword {
		t.Errorf("got %v, want %v", err, witfloerrors.ErrInvalidMasterPassword)
	}
}

func TestAddVault_ThenOpenRoundTrips(t *testing.T) {
	p := storage.NewMemoryProvider()

	sess, err := workspace.Initialize(p, "/virtual/w4", []byte("pw"))
	if err != nil {
		t.Fatal(err)
	}

	id, err := sess.AddVault("Personal")
	if err != nil {
		t.Fatal(err)
	}

	vlt, err := sess.OpenVault(id)
	if err != nil {
		t.Fatal(err)
	}

	if vlt.ID() != id {
		t.Errorf("got vault id %q, want %q", vlt.ID(), id)
	}
}

func TestDeleteVault_RefusesLastVault(t *testing.T) {
	p := storage.NewMemoryProvider()

	sess, err := workspace.Initialize(p, "/virtual/w5", []byte("pw"))
	if err != nil {
		t.Fatal(err)
	}

	id, err := sess.AddVault("Only")
	if err != nil {
		t.Fatal(err)
	}

	if err := sess.DeleteVault(id); err != witfloerrors.ErrLastVaultProtected {
		t.Errorf("got %v, want %v", err, witfloerrors.ErrLastVaultProtected)
	}
}

func TestChangeMasterPassword_RotatesAndOldPasswordFails(t *testing.T) {
	p := storage.NewMemoryProvider()

	sess, err := workspace.Initialize(p, "/virtual/w6", []byte("old-password"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := sess.AddVault("Personal"); err != nil {
		t.Fatal(err)
	}

	next, err := sess.ChangeMasterPassword([]byte("old-password"), []byte("new-password"))
	if err != nil {
		t.Fatal(err)
	}

	if !sess.Disposed() {
		t.Error("expected original session to be disposed after password rotation")
	}

	if _, err := workspace.Unlock(p, "/virtual/w6", []byte("old-password")); err != witfloerrors.ErrInvalidMasterPassword {
		t.Errorf("got %v, want %v using old password after rotation", err, witfloerrors.ErrInvalidMasterPassword)
	}

	reopened, err := workspace.Unlock(p, "/virtual/w6", []byte("new-password"))
	if err != nil {
		t.Fatal(err)
	}

	if len(reopened.VaultIDs()) != 1 {
		t.Errorf("got %d vaults after rotation, want 1", len(reopened.VaultIDs()))
	}

	_ = next
}

func TestGetVersion_UnknownRootFails(t *testing.T) {
	p := storage.NewMemoryProvider()

	if _, err := workspace.GetVersion(p, "/virtual/nope"); err != witfloerrors.ErrNotAWorkspace {
		t.Errorf("got %v, want %v", err, witfloerrors.ErrNotAWorkspace)
	}
}

func TestGetVersion_ThreeWayFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"legacy non-JSON marker", "not-json-at-all", 1},
		{"JSON without version field", `{"workspace_id":"w"}`, 2},
		{"declared version", `{"version":5}`, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := storage.NewMemoryProvider()

			if err := p.WriteAtomic("/virtual/gv/.witflo-workspace", []byte(tt.raw)); err != nil {
				t.Fatal(err)
			}

			got, err := workspace.GetVersion(p, "/virtual/gv")
			if err != nil {
				t.Fatal(err)
			}

			if got != tt.want {
				t.Errorf("got version %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDeviceID_IsStableAcrossReopen(t *testing.T) {
	p := storage.NewMemoryProvider()

	sess, err := workspace.Initialize(p, "/virtual/w7", []byte("pw"))
	if err != nil {
		t.Fatal(err)
	}

	id1, err := sess.DeviceID()
	if err != nil {
		t.Fatal(err)
	}

	sess.Lock()

	reopened, err := workspace.Unlock(p, "/virtual/w7", []byte("pw"))
	if err != nil {
		t.Fatal(err)
	}

	id2, err := reopened.DeviceID()
	if err != nil {
		t.Fatal(err)
	}

	if id1 != id2 {
		t.Errorf("device id changed across reopen: %q != %q", id1, id2)
	}
}

func TestSigningKey_MatchesDeviceID(t *testing.T) {
	p := storage.NewMemoryProvider()

	sess, err := workspace.Initialize(p, "/virtual/w8", []byte("pw"))
	if err != nil {
		t.Fatal(err)
	}

	id, err := sess.DeviceID()
	if err != nil {
		t.Fatal(err)
	}

	priv, err := sess.SigningKey()
	if err != nil {
		t.Fatal(err)
	}

	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		t.Fatal("signing key public half is not an ed25519.PublicKey")
	}

	if got := syncjournal.NewDeviceID(pub); got != id {
		t.Errorf("got device id %q from signing key, want %q", got, id)
	}
}

func TestImportLegacyVault_RegistersInKeyringAndOpens(t *testing.T) {
	p := storage.NewMemoryProvider()

	sess, err := workspace.Initialize(p, "/virtual/w9", []byte("pw"))
	if err != nil {
		t.Fatal(err)
	}

	legacyPassword := []byte("legacy-vault-password")
	legacyPath := sess.VaultLayout("vault-legacy").Root

	layout := vaultfs.NewLayout(legacyPath)
	if err := vaultfs.Init(p, layout); err != nil {
		t.Fatal(err)
	}

	salt, err := primitives.Salt()
	if err != nil {
		t.Fatal(err)
	}

	params := primitives.Argon2Params{MemoryKiB: 8 * 1024, Iterations: 1, Parallelism: 1}

	header := vaultheader.NewVaultHeader("vault-legacy", salt, params, time.Unix(0, 0))
	header.Version = 1

	raw, err := vaultheader.MarshalHeader(header)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.WriteAtomic(layout.Header(), raw); err != nil {
		t.Fatal(err)
	}

	muk, err := primitives.DeriveMUK(legacyPassword, salt, params)
	if err != nil {
		t.Fatal(err)
	}

	legacyKey, err := primitives.SymmetricKey()
	if err != nil {
		t.Fatal(err)
	}

	wrapped, err := primitives.Encrypt(legacyKey, muk)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.WriteAtomic(layout.VaultKeyFile(), wrapped); err != nil {
		t.Fatal(err)
	}

	if err := sess.ImportLegacyVault("vault-legacy", "Imported", legacyPassword); err != nil {
		t.Fatal(err)
	}

	vlt, err := sess.OpenVault("vault-legacy")
	if err != nil {
		t.Fatal(err)
	}

	if vlt.State() != vault.Unlocked {
		t.Errorf("got state %v, want Unlocked", vlt.State())
	}

	found := false

	for _, id := range sess.VaultIDs() {
		if id == "vault-legacy" {
			found = true
		}
	}

	if !found {
		t.Error("imported vault id not present in workspace vault list")
	}
}
