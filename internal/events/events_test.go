package events

import (
	"path/filepath"
	"testing"
)

func TestLogAndRecent(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "events.jsonl"))

	if err := logger.LogHookDecision("bash", "block", "rm -rf /"); err != nil {
		t.Fatalf("LogHookDecision failed: %v", err)
	}
	if err := logger.LogVault(EventVaultSync, "myproj", "encrypted"); err != nil {
		t.Fatalf("LogVault failed: %v", err)
	}
	if err := logger.LogPane(EventPaneLaunch, "%5", "htop"); err != nil {
		t.Fatalf("LogPane failed: %v", err)
	}

	events, err := logger.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Type != EventHookDecision || events[0].Decision != "block" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[2].Target != "%5" {
		t.Errorf("unexpected pane event: %+v", events[2])
	}
	for _, e := range events {
		if e.Time == "" {
			t.Error("expected timestamps to be filled in")
		}
	}
}

func TestRecent_LimitsAndMissingFile(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "events.jsonl"))

	events, err := logger.Recent(5)
	if err != nil {
		t.Fatalf("Recent on missing file: %v", err)
	}
	if events != nil {
		t.Errorf("expected no events, got %v", events)
	}

	for i := 0; i < 7; i++ {
		if err := logger.LogHookDecision("bash", "approve", "ls"); err != nil {
			t.Fatal(err)
		}
	}
	events, err = logger.Recent(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 5 {
		t.Errorf("expected 5 events, got %d", len(events))
	}
}
