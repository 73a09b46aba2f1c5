package hooks

import (
	"fmt"
	"os"
)

// StartSubtask drops the flag file marking sub-agent execution context.
// The read guard switches to the sub-agent limit while it exists.
func StartSubtask(flagFile string) error {
	if err := os.WriteFile(flagFile, []byte("1"), 0644); err != nil {
		return fmt.Errorf("creating subtask flag: %w", err)
	}
	return nil
}

// EndSubtask removes the flag file. A missing flag is not an error; the
// pairing hook may never have fired.
func EndSubtask(flagFile string) error {
	if err := os.Remove(flagFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing subtask flag: %w", err)
	}
	return nil
}
