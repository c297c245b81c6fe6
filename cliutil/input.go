package cliutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsPipedOrRedirected reports whether fi describes a non-terminal
// input source (a pipe or redirected file), in which case interactive
// prompting must be skipped.
func IsPipedOrRedirected(fi os.FileInfo) bool {
	return (fi.Mode() & os.ModeCharDevice) == 0
}

// PromptRead writes prompt to w and reads a line from r.
func PromptRead(w io.Writer, r io.Reader, prompt string, a ...any) (string, error) {
	fmt.Fprintf(w, prompt, a...)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("prompt read: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// PromptReadSecure writes prompt to w and reads a line from fd without
// echoing it to the terminal.
func PromptReadSecure(w io.Writer, fd int, prompt string, a ...any) ([]byte, error) {
	fmt.Fprintf(w, prompt, a...)
	defer fmt.Fprintln(w)

	b, err := term.ReadPassword(fd)
	if err != nil {
		return nil, fmt.Errorf("term read password: %w", err)
	}

	return b, nil
}

// PromptMasterPassword prompts once for an existing master password.
func PromptMasterPassword(w io.Writer, fd int) ([]byte, error) {
	return PromptReadSecure(w, fd, "Master password: ")
}

// PromptNewMasterPassword prompts for a new master password of at
// least minLength bytes, requiring it to be typed twice to confirm.
func PromptNewMasterPassword(w io.Writer, fd int, minLength int) ([]byte, error) {
	var pass []byte

	for len(pass) < minLength {
		p, err := PromptReadSecure(w, fd, "New master password: ")
		if err != nil {
			return nil, fmt.Errorf("prompt new master password: %w", err)
		}

		pass = p

		if len(pass) < minLength {
			fmt.Fprintf(w, "Password must be at least %d characters. Please try again.\n", minLength)
		}
	}

	confirm, err := PromptReadSecure(w, fd, "Retype master password: ")
	if err != nil {
		return nil, fmt.Errorf("prompt new master password: %w", err)
	}

	if string(confirm) != string(pass) {
		fmt.Fprintln(w, "Passwords do not match. Please try again.")
		return nil, errors.New("prompt new master password: passwords do not match")
	}

	return pass, nil
}
