package primitives

import "time"

// clock lets tests substitute a deterministic timer; defaults to the
// real wall clock.
var clock = time.Now

// Benchmark step-searches the Argon2id memory cost to approach, but not
// exceed, targetMS on the current host, matching §4.1's benchmark
// contract. Parallelism is fixed at 1. Memory doubles starting from
// minMemKiB until either maxMemKiB is reached or a step would exceed
// targetMS; the last step that stayed within budget is returned.
//
// Deterministic given the same host capacity: the search always walks
// the same sequence of candidate memory sizes, so two runs on hardware
// of equal speed converge on the same params.
func Benchmark(targetMS int, minMemKiB, maxMemKiB uint32) Argon2Params {
	if targetMS <= 0 {
		targetMS = 1000
	}

	if minMemKiB == 0 {
		minMemKiB = DefaultParams.MemoryKiB / 2
	}

	if maxMemKiB == 0 || maxMemKiB < minMemKiB {
		maxMemKiB = DefaultParams.MemoryKiB * 2
	}

	best := DefaultParams
	probe := []byte("witflo-benchmark-probe-password")
	salt := make([]byte, SaltSize)

	for mem := minMemKiB; mem <= maxMemKiB; mem *= 2 {
		params := Argon2Params{MemoryKiB: mem, Iterations: 1, Parallelism: 1}

		start := clock()

		pw := append([]byte(nil), probe...)
		if _, err := DeriveMUK(pw, salt, params); err != nil {
			break
		}

		elapsed := clock().Sub(start)

		if elapsed.Milliseconds() > int64(targetMS) {
			break
		}

		best = params
	}

	return best
}
