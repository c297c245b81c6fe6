//go:build !unix

package main

import (
	"errors"

	"github.com/witflo/fyndo-core/session"
)

func startLockControl(locker *session.AutoLocker) (session.LockController, error) {
	return nil, errors.New("lock-control socket requires a unix domain socket")
}
