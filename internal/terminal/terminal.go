// Package terminal provides interactive prompts that degrade gracefully
// when stdin is not a TTY.
package terminal

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(syscall.Stdin))
}

// Confirm asks a yes/no question and returns the answer. Without a terminal
// the default is returned unchanged.
func Confirm(question string, def bool) bool {
	if !IsTerminal() {
		return def
	}

	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [%s]: ", question, hint)
	input, err := reader.ReadString('\n')
	if err != nil {
		return def
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return def
	case "y", "yes":
		return true
	default:
		return false
	}
}
