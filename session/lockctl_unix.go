//go:build unix

package session

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// socketPerm is the file permission mode for the lock-control socket.
const socketPerm = 0o600

// LockControlSocket serves a minimal local control channel over a unix
// domain socket: any connection from the same user that writes "lock\n"
// locks the wrapped [AutoLocker] immediately, the explicit edge of
// §4.9's state machine triggered from outside the owning process (a
// companion UI process, a shell script on suspend, etc). Connections
// from any other uid are rejected, mirroring the teacher's
// vaultdaemon peer-credential check, de-networked from gRPC to a
// single-purpose line protocol since no RPC surface is named by the
// spec.
type LockControlSocket struct {
	listener net.Listener
	locker   *AutoLocker
}

// ListenLockControl creates the unix domain socket at path with 0600
// permissions, removing any stale socket left behind by a previous
// run.
func ListenLockControl(path string, locker *AutoLocker) (*LockControlSocket, error) {
	_ = os.Remove(path)

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("lockctl: listen: %w", err)
	}

	if err := os.Chmod(path, socketPerm); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("lockctl: chmod: %w", err)
	}

	return &LockControlSocket{listener: l, locker: locker}, nil
}

// Serve accepts connections until the listener is closed, locking the
// underlying [AutoLocker] on every well-formed "lock" command from a
// peer running as the same uid.
func (s *LockControlSocket) Serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		go s.handle(conn)
	}
}

// Close stops accepting connections and removes the socket file.
func (s *LockControlSocket) Close() error {
	return s.listener.Close()
}

func (s *LockControlSocket) handle(conn net.Conn) {
	defer conn.Close()

	if !sameUID(conn) {
		log.Printf("lockctl: rejected connection from disallowed uid")
		return
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if scanner.Text() == "lock" {
			s.locker.Lock()
		}
	}
}

// sameUID reports whether conn's peer credentials (retrieved via
// SO_PEERCRED) match the current process's uid.
func sameUID(conn net.Conn) bool {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return false
	}

	rawConn, err := unixConn.SyscallConn()
	if err != nil {
		return false
	}

	var (
		ucred   *unix.Ucred
		credErr error
	)

	err = rawConn.Control(func(fd uintptr) {
		ucred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if err != nil || credErr != nil {
		return false
	}

	return int(ucred.Uid) == os.Getuid()
}
