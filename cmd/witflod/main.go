// Command witflod is the background watcher binary: for a single
// unlocked workspace it runs the idle auto-lock timer (§4.9) and a
// file watcher per vault (§4.11), reacting to external changes to the
// refs/pending directories. It is the harness counterpart to the
// teacher's vltd session daemon, adapted from a gRPC session broker to
// an in-process watcher loop since this core has no multi-client IPC
// surface to serve.
package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/witflo/fyndo-core/config"
	"github.com/witflo/fyndo-core/repository"
	"github.com/witflo/fyndo-core/session"
	"github.com/witflo/fyndo-core/storage"
	"github.com/witflo/fyndo-core/syncjournal"
	"github.com/witflo/fyndo-core/workspace"
)

func main() {
	root := flag.String("root", "", "workspace root directory to watch")
	flag.Parse()

	if *root == "" {
		log.Fatal("witflod: --root is required")
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("witflod: load config: %v", err)
	}

	pass, err := passwordFromEnv()
	if err != nil {
		log.Fatalf("witflod: %v", err)
	}

	sess, err := workspace.Unlock(storage.NewNativeProvider(), *root, pass)
	if err != nil {
		log.Fatalf("witflod: unlock workspace: %v", err)
	}

	lockCfg := session.Config{
		Duration:         time.Duration(cfg.AutoLock.DurationSeconds) * time.Second,
		LockOnBackground: cfg.AutoLock.LockOnBackground,
	}

	if !cfg.AutoLock.Enabled {
		lockCfg.Duration = 0
	}

	locker := session.New(sess, lockCfg)

	watchers := startWatchers(sess, locker)
	defer stopWatchers(watchers)

	ctl, err := startLockControl(locker)
	if err != nil {
		log.Printf("witflod: lock-control socket unavailable: %v", err)
	} else {
		defer ctl.Close()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigc
		locker.Lock()
	}()

	log.Printf("witflod: watching workspace %s (%d vaults)", *root, len(sess.VaultIDs()))

	locker.Run()

	log.Print("witflod: workspace locked, exiting")
}

func startWatchers(sess *workspace.Session, locker *session.AutoLocker) []*syncjournal.Watcher {
	watchers := make([]*syncjournal.Watcher, 0, len(sess.VaultIDs()))

	for _, id := range sess.VaultIDs() {
		layout := sess.VaultLayout(id)

		w, err := syncjournal.NewWatcher(layout.SyncPendingDir(), layout.RefsDir(), sess.KeyringPath())
		if err != nil {
			log.Printf("witflod: watch vault %s: %v", id, err)
			continue
		}

		watchers = append(watchers, w)

		vlt, err := sess.OpenVault(id)
		if err != nil {
			log.Printf("witflod: open vault %s for cache invalidation: %v", id, err)
			go reactToEvents(id, w, nil, nil, locker)

			continue
		}

		noteRepo := repository.NewNoteRepository(vlt)
		notebookRepo := repository.NewNotebookRepository(vlt)

		go reactToEvents(id, w, noteRepo, notebookRepo, locker)
	}

	return watchers
}

// reactToEvents logs every watcher event and carries out the two
// reactions §4.11 requires: an index change invalidates the matching
// repository cache so the next read reloads from disk, and a keyring
// change locks the workspace, since an externally modified keyring is
// treated as tampering.
func reactToEvents(
	vaultID string,
	w *syncjournal.Watcher,
	noteRepo *repository.NoteRepository,
	notebookRepo *repository.NotebookRepository,
	locker *session.AutoLocker,
) {
	for {
		select {
		case kind, ok := <-w.Events():
			if !ok {
				return
			}

			log.Printf("witflod: vault %s: %s", vaultID, eventName(kind))

			switch kind {
			case syncjournal.EventIndexChanged:
				if noteRepo != nil {
					noteRepo.Invalidate()
				}

				if notebookRepo != nil {
					notebookRepo.Invalidate()
				}
			case syncjournal.EventKeyringChanged:
				locker.Lock()
			}
		case err, ok := <-w.Errors():
			if !ok {
				return
			}

			log.Printf("witflod: vault %s: watch error: %v", vaultID, err)
		}
	}
}

func eventName(kind syncjournal.EventKind) string {
	switch kind {
	case syncjournal.EventPendingOps:
		return "pending sync operations changed"
	case syncjournal.EventIndexChanged:
		return "note/notebook index changed"
	case syncjournal.EventKeyringChanged:
		return "workspace keyring changed externally"
	default:
		return "unknown event"
	}
}

func stopWatchers(watchers []*syncjournal.Watcher) {
	for _, w := range watchers {
		_ = w.Close()
	}
}

var errNoPassword = errors.New("WITFLO_MASTER_PASSWORD must be set to unlock the workspace non-interactively")

func passwordFromEnv() ([]byte, error) {
	pass := os.Getenv("WITFLO_MASTER_PASSWORD")
	if pass == "" {
		return nil, errNoPassword
	}

	return []byte(pass), nil
}
