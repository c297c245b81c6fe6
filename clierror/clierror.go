// Package clierror centralizes how both harness binaries turn an
// error from the core into a user-facing message and an exit code,
// adapted from the teacher's clierror package.
package clierror

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/witflo/fyndo-core/witfloerrors"
)

const DefaultErrorExitCode = 1

var (
	errHandler = FatalErrHandler
	errWriter  io.Writer = os.Stderr
	fprintf              = fmt.Fprintf
	debugMode  bool
)

// SetErrorHandler overrides the default [FatalErrHandler].
func SetErrorHandler(f func(string, int)) { errHandler = f }

// ResetErrorHandler restores the default error handler.
func ResetErrorHandler() { errHandler = FatalErrHandler }

// SetErrWriter overrides the default error output writer.
func SetErrWriter(w io.Writer) { errWriter = w }

// ResetErrWriter restores stderr as the error output writer.
func ResetErrWriter() { errWriter = os.Stderr }

// DebugMode enables printing raw error values alongside the friendly
// message.
func DebugMode(enabled bool) { debugMode = enabled }

// FatalErrHandler prints msg and exits with code.
func FatalErrHandler(msg string, code int) {
	printError(msg)
	os.Exit(code)
}

// PrintErrHandler prints msg without exiting; useful in tests and in
// the daemon, which must keep running after a client-facing error.
func PrintErrHandler(msg string, _ int) {
	printError(msg)
}

func printError(msg string) {
	if len(msg) == 0 {
		return
	}

	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}

	_, _ = fprintf(errWriter, "%s", msg)
}

func debugPrint(err error) {
	if !debugMode {
		return
	}

	_, _ = fprintf(errWriter, "DEBUG %+v\n", err)
}

// ErrExit may be passed to Check to exit silently with
// [DefaultErrorExitCode].
var ErrExit = errors.New("exit")

// Check prints a user-friendly message for err and invokes the
// configured handler. With the default [FatalErrHandler] the process
// exits before Check returns.
func Check(err error) error {
	check(err, errHandler)
	return err
}

func check(err error, handle func(string, int)) {
	if err == nil {
		return
	}

	debugPrint(err)

	switch {
	case errors.Is(err, ErrExit):
		handle("", DefaultErrorExitCode)
	case errors.Is(err, witfloerrors.ErrInvalidMasterPassword):
		handle("witflovault: incorrect master password\nPlease check your password and try again.", DefaultErrorExitCode)
	case errors.Is(err, witfloerrors.ErrAlreadyInitialized):
		handle("witflovault: a workspace already exists at this location\nUse 'unlock' to open it instead of 'init'.", DefaultErrorExitCode)
	case errors.Is(err, witfloerrors.ErrNotAWorkspace):
		handle("witflovault: no workspace found at this location\nUse 'init' to create one first.", DefaultErrorExitCode)
	case errors.Is(err, witfloerrors.ErrVaultNotFound):
		handle("witflovault: vault not found", DefaultErrorExitCode)
	case errors.Is(err, witfloerrors.ErrLastVaultProtected):
		handle("witflovault: cannot delete the only remaining vault in a workspace", DefaultErrorExitCode)
	case errors.Is(err, witfloerrors.ErrNotUnlocked):
		handle("witflovault: vault is locked\nUnlock it first.", DefaultErrorExitCode)
	default:
		msg := err.Error()
		if !strings.HasPrefix(msg, "witflovault: ") {
			msg = "witflovault: " + msg
		}

		handle(msg, DefaultErrorExitCode)
	}
}
