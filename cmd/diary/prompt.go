// ABOUTME: Terminal confirmation prompt for destructive commands.
// ABOUTME: Reads a y/N answer and detects whether stdin is an interactive terminal.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// stdinIsTerminal reports whether the process stdin is attached to a terminal.
func stdinIsTerminal() bool {
	return isTerminal(int(os.Stdin.Fd()))
}

// confirm prints prompt followed by " [y/N] " to w and reads one line from r.
// Only "y" or "yes" (any case) count as agreement; EOF counts as no.
func confirm(r io.Reader, w io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprintf(w, "%s [y/N] ", prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
