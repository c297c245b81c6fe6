package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/witflo/fyndo-core/witfloerrors"
)

// filePerm and dirPerm are deliberately restrictive: every file this
// core writes may contain ciphertext that reveals metadata (sizes,
// timestamps) even if not plaintext, so it is kept owner-only.
const (
	filePerm = 0o600
	dirPerm  = 0o700
)

// NativeProvider implements [Provider] against the real filesystem.
type NativeProvider struct{}

// NewNativeProvider returns a [NativeProvider].
func NewNativeProvider() *NativeProvider { return &NativeProvider{} }

var _ Provider = (*NativeProvider)(nil)

func (*NativeProvider) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, witfloerrors.StorageIO("exists", err)
}

func (*NativeProvider) CreateDirectory(path string) error {
	if err := os.MkdirAll(path, dirPerm); err != nil {
		return witfloerrors.StorageIO("create_directory", err)
	}

	return nil
}

func (*NativeProvider) Read(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, witfloerrors.StorageIO("read", err)
	}

	return b, nil
}

// WriteAtomic writes data to a sibling temp file and renames it onto
// path, so that a crash between the two steps always leaves readers
// seeing either the old bytes or the new ones, never a partial write
// (§4.3, §8 property 6).
func (*NativeProvider) WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return witfloerrors.StorageIO("write_atomic", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return witfloerrors.StorageIO("write_atomic", err)
	}

	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return witfloerrors.StorageIO("write_atomic", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return witfloerrors.StorageIO("write_atomic", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return witfloerrors.StorageIO("write_atomic", err)
	}

	if err := os.Chmod(tmpPath, filePerm); err != nil {
		_ = os.Remove(tmpPath)
		return witfloerrors.StorageIO("write_atomic", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return witfloerrors.StorageIO("write_atomic", err)
	}

	return nil
}

func (*NativeProvider) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return witfloerrors.StorageIO("delete_file", err)
	}

	return nil
}

func (*NativeProvider) DeleteDirectory(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return witfloerrors.StorageIO("delete_directory", err)
	}

	return nil
}

func (*NativeProvider) List(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, witfloerrors.StorageIO("list", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, filepath.Join(path, e.Name()))
	}

	return names, nil
}

func (*NativeProvider) Copy(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return witfloerrors.StorageIO("copy", err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return witfloerrors.StorageIO("copy", err)
	}

	if err := os.WriteFile(dst, data, filePerm); err != nil {
		return witfloerrors.StorageIO("copy", err)
	}

	return nil
}

func (*NativeProvider) Move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return witfloerrors.StorageIO("move", err)
	}

	if err := os.Rename(src, dst); err != nil {
		return witfloerrors.StorageIO("move", err)
	}

	return nil
}
