package syncjournal

import (
	"sort"
	"strings"

	"github.com/witflo/fyndo-core/storage"
	"github.com/witflo/fyndo-core/vaultfs"
)

// Log manages the pending operation files under `sync/pending/` for
// one vault.
type Log struct {
	p storage.Provider
	l vaultfs.Layout
}

func NewLog(p storage.Provider, l vaultfs.Layout) *Log {
	return &Log{p: p, l: l}
}

// Append persists env as a new pending operation file.
func (lg *Log) Append(env Envelope) error {
	raw, err := MarshalEnvelope(env)
	if err != nil {
		return err
	}

	return lg.p.WriteAtomic(lg.l.PendingOpFile(env.OpID), raw)
}

// Pending returns every envelope currently waiting in `sync/pending/`,
// ordered by Lamport timestamp then device id so callers apply them in
// a deterministic order.
func (lg *Log) Pending() ([]Envelope, error) {
	names, err := lg.p.List(lg.l.SyncPendingDir())
	if err != nil {
		return nil, err
	}

	envs := make([]Envelope, 0, len(names))

	for _, path := range names {
		if !strings.HasSuffix(path, ".op.enc") {
			continue
		}

		raw, err := lg.p.Read(path)
		if err != nil {
			return nil, err
		}

		env, err := UnmarshalEnvelope(raw)
		if err != nil {
			return nil, err
		}

		envs = append(envs, env)
	}

	sort.Slice(envs, func(i, j int) bool { return envelopeLess(envs[i], envs[j]) })

	return envs, nil
}

// Discard removes a pending operation once it has been applied.
func (lg *Log) Discard(opID string) error {
	return lg.p.DeleteFile(lg.l.PendingOpFile(opID))
}

func envelopeLess(a, b Envelope) bool {
	if a.LamportTS != b.LamportTS {
		return a.LamportTS < b.LamportTS
	}

	return a.DeviceID < b.DeviceID
}
