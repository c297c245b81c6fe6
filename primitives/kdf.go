package primitives

import (
	"github.com/witflo/fyndo-core/witfloerrors"

	"golang.org/x/crypto/argon2"
)

// SaltSize is the required length, in bytes, of a KDF salt.
const SaltSize = 16

// KeySize is the length, in bytes, of every symmetric key derived or
// generated by this façade (MUK, VaultKey, ContentKey, ...).
const KeySize = 32

// Argon2Params are the tunable Argon2id cost parameters. Parallelism is
// always 1 for params produced by [Benchmark], matching the spec's
// "parallelism fixed at 1" requirement for benchmarked params; params
// decoded from a stored workspace/vault metadata file may carry any
// parallelism that was in effect when they were written.
type Argon2Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams is the conservative fallback used whenever benchmarking
// fails or cannot run (§7: "Errors during benchmarking fall back to a
// conservative default").
var DefaultParams = Argon2Params{
	MemoryKiB:   64 * 1024,
	Iterations:  3,
	Parallelism: 1,
}

const (
	minMemoryKiB  = 8 * 1024
	maxMemoryKiB  = 1024 * 1024
	minIterations = 1
	maxIterations = 64
	maxParallel   = 64
)

func validParams(p Argon2Params) bool {
	if p.MemoryKiB < minMemoryKiB || p.MemoryKiB > maxMemoryKiB {
		return false
	}

	if p.Iterations < minIterations || p.Iterations > maxIterations {
		return false
	}

	if p.Parallelism == 0 || p.Parallelism > maxParallel {
		return false
	}

	return true
}

// DeriveMUK derives a 32-byte master unlock key from password and salt
// using Argon2id. The password slice is zeroed before returning,
// regardless of outcome, per §4.1 ("the password buffer is consumed").
//
// Fails with [witfloerrors.ErrInvalidParams] if salt is not [SaltSize]
// bytes or params fall outside the accepted range.
func DeriveMUK(password, salt []byte, params Argon2Params) ([]byte, error) {
	defer Zero(password)

	if len(salt) != SaltSize {
		return nil, witfloerrors.ErrInvalidParams
	}

	if !validParams(params) {
		return nil, witfloerrors.ErrInvalidParams
	}

	key := argon2.IDKey(password, salt, params.Iterations, params.MemoryKiB, params.Parallelism, KeySize)

	return key, nil
}

// Zero overwrites b with zeros in place. It is the primitive building
// block that [securebytes.SecureBytes] builds its zeroize guarantee on.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
