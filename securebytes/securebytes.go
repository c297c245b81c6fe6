// Package securebytes implements owned, zeroizing byte buffers and the
// typed key wrappers built on top of them (§4.2).
package securebytes

import (
	"sync"

	"github.com/witflo/fyndo-core/primitives"
	"github.com/witflo/fyndo-core/witfloerrors"
)

// SecureBytes is an exclusively owned byte buffer. Once [SecureBytes.Dispose]
// is called, the backing memory is zeroed and every subsequent access
// fails with [witfloerrors.ErrUseAfterDispose].
//
// The zero value is not usable; construct with [New] or [NewCopy].
type SecureBytes struct {
	mu       sync.Mutex
	buf      []byte
	disposed bool
}

// New wraps b directly, taking ownership of it. The caller must not
// retain or mutate b after this call.
func New(b []byte) *SecureBytes {
	return &SecureBytes{buf: b}
}

// NewCopy deep-copies b into a new, independently owned [SecureBytes].
func NewCopy(b []byte) *SecureBytes {
	cp := make([]byte, len(b))
	copy(cp, b)

	return New(cp)
}

// Bytes returns the underlying buffer. This is the "unsafe accessor"
// referenced by §4.2: the returned slice aliases internal state and
// MUST NOT be stored beyond the immediate call — callers that need a
// buffer with independent lifetime should copy it or call [Clone].
func (s *SecureBytes) Bytes() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, witfloerrors.ErrUseAfterDispose
	}

	return s.buf, nil
}

// Clone returns a deep copy that is independently owned; disposing the
// clone has no effect on the original and vice versa.
func (s *SecureBytes) Clone() (*SecureBytes, error) {
	b, err := s.Bytes()
	if err != nil {
		return nil, err
	}

	return NewCopy(b), nil
}

// Len reports the buffer length, or -1 if the buffer has been disposed.
func (s *SecureBytes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return -1
	}

	return len(s.buf)
}

// Disposed reports whether Dispose has already been called.
func (s *SecureBytes) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.disposed
}

// Dispose zeroes the backing buffer and marks it disposed. Safe to call
// more than once; only the first call has an effect.
func (s *SecureBytes) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}

	primitives.Zero(s.buf)

	s.buf = nil
	s.disposed = true
}
