package main

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

func promptPassword(confirm bool) (string, error) {
	in := os.Stdin
	if !term.IsTerminal(int(in.Fd())) {
		return "", errors.New("stdin is not a terminal; cannot securely read password")
	}
	fmt.Fprint(os.Stderr, "Enter password: ")
	pw1, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(pw1) == 0 {
		return "", errors.New("empty password is not allowed")
	}
	if confirm {
		fmt.Fprint(os.Stderr, "Confirm password: ")
		pw2, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password confirmation: %w", err)
		}
		if subtle.ConstantTimeCompare(pw1, pw2) != 1 {
			return "", errors.New("passwords do not match")
		}
	}
	return string(pw1), nil
}
