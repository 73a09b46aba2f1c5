package hooks

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadInput(t *testing.T) {
	payload := `{"tool_name":"Bash","tool_input":{"command":"ls -la"}}`
	in, err := ReadInput(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("ReadInput failed: %v", err)
	}
	if in.ToolName != "Bash" || in.ToolInput.Command != "ls -la" {
		t.Errorf("unexpected input: %+v", in)
	}
}

func TestReadInput_ReadToolFields(t *testing.T) {
	payload := `{"tool_name":"Read","tool_input":{"file_path":"/tmp/big.log","offset":100,"limit":50}}`
	in, err := ReadInput(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("ReadInput failed: %v", err)
	}
	if in.ToolInput.FilePath != "/tmp/big.log" || in.ToolInput.Offset != 100 || in.ToolInput.Limit != 50 {
		t.Errorf("unexpected input: %+v", in)
	}
}

func TestReadInput_RejectsOversized(t *testing.T) {
	huge := `{"tool_name":"` + strings.Repeat("x", maxInputSize) + `"}`
	if _, err := ReadInput(strings.NewReader(huge)); err == nil {
		t.Error("expected error for oversized input")
	}
}

func TestReadInput_RejectsBadJSON(t *testing.T) {
	if _, err := ReadInput(strings.NewReader("not json")); err == nil {
		t.Error("expected error for malformed input")
	}
}

func TestWriteDecision(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDecision(&buf, Block("nope")); err != nil {
		t.Fatalf("WriteDecision failed: %v", err)
	}
	got := strings.TrimSpace(buf.String())
	if got != `{"decision":"block","reason":"nope"}` {
		t.Errorf("unexpected output %q", got)
	}

	buf.Reset()
	if err := WriteDecision(&buf, Approve()); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != `{"decision":"approve"}` {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestSubtaskFlagLifecycle(t *testing.T) {
	flag := filepath.Join(t.TempDir(), ".claude_in_subtask.flag")

	if err := StartSubtask(flag); err != nil {
		t.Fatalf("StartSubtask failed: %v", err)
	}
	if _, err := os.Stat(flag); err != nil {
		t.Errorf("expected flag file to exist: %v", err)
	}

	if err := EndSubtask(flag); err != nil {
		t.Fatalf("EndSubtask failed: %v", err)
	}
	if _, err := os.Stat(flag); !os.IsNotExist(err) {
		t.Error("expected flag file to be removed")
	}

	// Removing an absent flag is fine.
	if err := EndSubtask(flag); err != nil {
		t.Errorf("EndSubtask on missing flag: %v", err)
	}
}
