// Package events appends an audit trail of notable actions (hook decisions,
// vault syncs, pane launches) to a JSONL file under the config directory.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventHookDecision EventType = "hook_decision"
	EventVaultSync    EventType = "vault_sync"
	EventVaultEncrypt EventType = "vault_encrypt"
	EventVaultDecrypt EventType = "vault_decrypt"
	EventPaneLaunch   EventType = "pane_launch"
	EventPaneKill     EventType = "pane_kill"
)

// Event represents a logged event
type Event struct {
	Time     string    `json:"time"`
	Type     EventType `json:"type"`
	Hook     string    `json:"hook,omitempty"`
	Decision string    `json:"decision,omitempty"`
	Command  string    `json:"command,omitempty"`
	Project  string    `json:"project,omitempty"`
	Target   string    `json:"target,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// Logger handles event logging
type Logger struct {
	eventsFile string
}

// NewLogger creates a logger writing to the given JSONL file.
func NewLogger(eventsFile string) *Logger {
	return &Logger{eventsFile: eventsFile}
}

// Log writes an event to the events file
func (l *Logger) Log(event *Event) error {
	if event.Time == "" {
		event.Time = time.Now().Format(time.RFC3339)
	}

	f, err := os.OpenFile(l.eventsFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening events file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}

	return nil
}

// LogHookDecision records a hook verdict. Failures are returned but callers
// typically ignore them; logging never changes a decision.
func (l *Logger) LogHookDecision(hook, decision, command string) error {
	return l.Log(&Event{
		Type:     EventHookDecision,
		Hook:     hook,
		Decision: decision,
		Command:  command,
	})
}

// LogVault records a vault action for a project.
func (l *Logger) LogVault(t EventType, project, detail string) error {
	return l.Log(&Event{
		Type:    t,
		Project: project,
		Detail:  detail,
	})
}

// LogPane records a pane or window lifecycle action.
func (l *Logger) LogPane(t EventType, target, command string) error {
	return l.Log(&Event{
		Type:    t,
		Target:  target,
		Command: command,
	})
}

// Recent returns the most recent N events
func (l *Logger) Recent(n int) ([]Event, error) {
	data, err := os.ReadFile(l.eventsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var allEvents []Event
	for _, line := range splitLines(data) {
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip invalid lines
		}
		allEvents = append(allEvents, event)
	}

	// Return last N events
	if len(allEvents) <= n {
		return allEvents, nil
	}
	return allEvents[len(allEvents)-n:], nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, data[start:i])
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
