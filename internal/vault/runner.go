package vault

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CommandRunner executes external binaries (sops, gpg).
// This allows mocking in tests.
type CommandRunner interface {
	// Output runs a command and returns its trimmed stdout.
	Output(name string, args ...string) (string, error)
	// OutputToFile runs a command and writes its stdout to dest.
	OutputToFile(dest, name string, args ...string) error
}

// ExecCommandRunner implements CommandRunner with os/exec.
type ExecCommandRunner struct{}

func (ExecCommandRunner) Output(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", wrapExecErr(name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// OutputToFile stages the output in a temp file so a failed command never
// clobbers dest.
func (ExecCommandRunner) OutputToFile(dest, name string, args ...string) error {
	cmd := exec.Command(name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return wrapExecErr(name, err)
	}

	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, stdout.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("moving output into place: %w", err)
	}
	return nil
}

func wrapExecErr(name string, err error) error {
	if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return fmt.Errorf("%s: %w", name, err)
}
