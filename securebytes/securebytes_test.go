package securebytes_test

import (
	"bytes"
	"testing"

	"github.com/witflo/fyndo-core/securebytes"
	"github.com/witflo/fyndo-core/witfloerrors"
)

func TestSecureBytes_DisposeZeroizes(t *testing.T) {
	original := []byte{1, 2, 3, 4}
	buf := append([]byte(nil), original...)
	sb := securebytes.New(buf)

	sb.Dispose()

	if !sb.Disposed() {
		t.Fatal("expected Disposed() == true after Dispose")
	}

	for i, b := range buf {
		if b != 0 {
			t.Errorf("buf[%d] = %d after Dispose, want 0", i, b)
		}
	}

	if _, err := sb.Bytes(); err != witfloerrors.ErrUseAfterDispose {
		t.Errorf("got err = %v, want %v", err, witfloerrors.ErrUseAfterDispose)
	}
}

func TestSecureBytes_DisposeIdempotent(t *testing.T) {
	sb := securebytes.New([]byte{1, 2, 3})

	sb.Dispose()
	sb.Dispose() // must not panic
}

func TestSecureBytes_CloneIsIndependentlyOwned(t *testing.T) {
	sb := securebytes.New([]byte{9, 9, 9})

	clone, err := sb.Clone()
	if err != nil {
		t.Fatal(err)
	}

	sb.Dispose()

	cloneBytes, err := clone.Bytes()
	if err != nil {
		t.Fatalf("clone should survive original dispose: %v", err)
	}

	if !bytes.Equal(cloneBytes, []byte{9, 9, 9}) {
		t.Errorf("got %v, want %v", cloneBytes, []byte{9, 9, 9})
	}
}

func TestVaultKey_DeriveContentKeyIsolation(t *testing.T) {
	vk := securebytes.NewVaultKey(bytes.Repeat([]byte{0x42}, 32))

	a, err := vk.DeriveContentKey("note-a")
	if err != nil {
		t.Fatal(err)
	}

	b, err := vk.DeriveContentKey("note-b")
	if err != nil {
		t.Fatal(err)
	}

	ab, _ := a.Bytes()
	bb, _ := b.Bytes()

	if bytes.Equal(ab, bb) {
		t.Error("expected distinct content keys for distinct note ids")
	}
}
