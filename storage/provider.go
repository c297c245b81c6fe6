// Package storage implements the platform-agnostic atomic file I/O
// abstraction the rest of the core is built on (§4.3). Two Providers
// are offered: [NativeProvider] backed by the real filesystem, and
// [MemoryProvider] backed by an in-process map, for tests.
package storage

import "errors"

// ErrNotFound is returned by Read when the path does not exist.
var ErrNotFound = errors.New("storage: path not found")

// Provider is the capability set every vault/workspace component is
// built against; it is never called concurrently on the same path by
// the session (§5: "the session object is NOT safe for concurrent
// mutation; callers MUST serialize writes").
type Provider interface {
	Exists(path string) (bool, error)
	CreateDirectory(path string) error
	Read(path string) ([]byte, error)
	WriteAtomic(path string, data []byte) error
	DeleteFile(path string) error
	DeleteDirectory(path string) error
	List(path string) ([]string, error)
	Copy(src, dst string) error
	Move(src, dst string) error
}
