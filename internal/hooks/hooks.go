// Package hooks implements allow/block predicates for Claude Code tool
// calls. Each hook reads a JSON payload from stdin, writes a single decision
// to stdout, and exits zero; the decision field carries the verdict.
package hooks

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxInputSize caps how much stdin a hook will parse. Hook payloads are
// small; anything larger is malformed or hostile.
const maxInputSize = 1 << 20

// Input is the hook payload Claude Code writes to stdin.
type Input struct {
	ToolName  string    `json:"tool_name"`
	ToolInput ToolInput `json:"tool_input"`
}

// ToolInput carries the fields hooks inspect. Command is set for Bash
// calls; FilePath, Offset and Limit for Read calls.
type ToolInput struct {
	Command  string `json:"command"`
	FilePath string `json:"file_path"`
	Offset   int    `json:"offset"`
	Limit    int    `json:"limit"`
}

// Decision is the verdict written to stdout.
type Decision struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

func Approve() Decision {
	return Decision{Decision: "approve"}
}

func Block(reason string) Decision {
	return Decision{Decision: "block", Reason: reason}
}

// Blocked reports whether the decision is a block.
func (d Decision) Blocked() bool { return d.Decision == "block" }

// ReadInput parses a hook payload from r, refusing oversized input.
func ReadInput(r io.Reader) (Input, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return Input{}, fmt.Errorf("reading hook input: %w", err)
	}
	if len(data) > maxInputSize {
		return Input{}, fmt.Errorf("hook input exceeds %d bytes", maxInputSize)
	}

	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return Input{}, fmt.Errorf("parsing hook input: %w", err)
	}
	return in, nil
}

// WriteDecision emits the decision as a single JSON line.
func WriteDecision(w io.Writer, d Decision) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding decision: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// CommandCheck is one predicate over a bash command.
type CommandCheck struct {
	Name  string
	Check func(command string) Decision
}

// CheckAll runs every check and combines blocking reasons; a command is
// blocked if any check blocks it.
func CheckAll(command string, checks []CommandCheck) Decision {
	var reasons []string
	for _, c := range checks {
		if d := c.Check(command); d.Blocked() {
			reasons = append(reasons, d.Reason)
		}
	}

	switch len(reasons) {
	case 0:
		return Approve()
	case 1:
		return Block(reasons[0])
	default:
		var b strings.Builder
		b.WriteString("Multiple safety checks failed:\n\n")
		for i, r := range reasons {
			fmt.Fprintf(&b, "%d. %s\n\n", i+1, r)
		}
		return Block(b.String())
	}
}
