package main

import (
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// promptCommandLine lets the user edit the command line before booting.
// Interrupt or end of input keeps the current value.
func promptCommandLine(current string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "cmdline> ",
		HistoryLimit: -1,
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = rl.Close() }()

	line, err := rl.ReadlineWithDefault(current)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return current, nil
		}
		return "", err
	}

	return strings.TrimSpace(line), nil
}
