//go:build unix

package main

import (
	"fmt"
	"os"

	"github.com/witflo/fyndo-core/session"
)

// lockControlSocketPath is the per-user path for the lock-control
// socket, following the teacher's vaultdaemon convention of scoping
// its socket under the runtime directory for the invoking uid.
func lockControlSocketPath() string {
	return fmt.Sprintf("/run/user/%d/witflod.sock", os.Getuid())
}

func startLockControl(locker *session.AutoLocker) (session.LockController, error) {
	ctl, err := session.ListenLockControl(lockControlSocketPath(), locker)
	if err != nil {
		return nil, err
	}

	go ctl.Serve()

	return ctl, nil
}
