package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/provide-io/numeracrypt/go/numeracrypt/internal/config"
	"golang.org/x/term"
)

// promptKey reads a key without echo from the terminal. When stdin is piped
// it falls back to /dev/tty.
func promptKey(prompt string, stderr io.Writer) (string, error) {
	fmt.Fprint(stderr, prompt)

	var raw []byte
	var err error

	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err = term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(stderr)
	} else {
		tty, ttyErr := os.Open("/dev/tty")
		if ttyErr != nil {
			if runtime.GOOS == "windows" {
				return "", fmt.Errorf("key must be passed with --key or %s when STDIN is piped", config.EnvKey)
			}
			return "", fmt.Errorf("cannot read key: STDIN is piped and /dev/tty is not available. Use --key or %s", config.EnvKey)
		}
		defer tty.Close()

		raw, err = term.ReadPassword(int(tty.Fd()))
		fmt.Fprintln(stderr)
	}

	if err != nil {
		return "", fmt.Errorf("failed to read key: %w", err)
	}

	value := strings.TrimSpace(string(raw))
	if value == "" {
		return "", errors.New("no key entered")
	}
	return value, nil
}
