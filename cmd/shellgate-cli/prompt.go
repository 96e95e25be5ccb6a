package main

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// promptPassword reads a password from the terminal with echo disabled.
// The prompt goes to stderr so piped stdout stays clean.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for interactive password prompt (use --password)")
	}

	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
