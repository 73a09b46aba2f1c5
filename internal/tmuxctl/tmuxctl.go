// Package tmuxctl drives CLI applications running under tmux.
//
// It operates in one of two modes. Inside tmux (local mode) it manages
// panes in the caller's current window. Outside tmux (remote mode) it
// manages windows in a separate detached session so the caller's own
// terminal is never touched.
package tmuxctl

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// Mode identifies how the controller targets tmux.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// DetectMode returns ModeLocal when the process runs inside tmux.
func DetectMode() Mode {
	if os.Getenv("TMUX") != "" {
		return ModeLocal
	}
	return ModeRemote
}

// Pane describes a tmux pane (local mode) or the pane of a window (remote mode).
type Pane struct {
	ID     string `json:"id"`
	Index  string `json:"index"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
	Size   string `json:"size"`
}

// Window describes a window in the managed remote session.
type Window struct {
	Index  string `json:"index"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	PaneID string `json:"pane_id"`
}

// LaunchOptions configures Launch.
type LaunchOptions struct {
	Vertical bool   // local: split side by side instead of stacked
	Size     int    // local: new pane size in percent, 0 for tmux default
	Name     string // remote: window name
}

// SendOptions configures Send.
type SendOptions struct {
	Enter bool          // submit with Enter after the text
	Delay time.Duration // pause between text and Enter
}

// WaitOptions configures WaitIdle and WaitFor.
type WaitOptions struct {
	IdleTime time.Duration // no-change window that counts as idle
	Interval time.Duration // poll interval
	Timeout  time.Duration // 0 means wait forever
}

const (
	DefaultIdleTime = 2 * time.Second
	DefaultInterval = 500 * time.Millisecond
	DefaultDelay    = time.Second
)

// Controller is the verb surface shared by local and remote mode.
type Controller interface {
	Mode() Mode
	Launch(command string, opts LaunchOptions) (string, error)
	Send(target, text string, opts SendOptions) error
	Capture(target string, lines int) (string, error)
	WaitIdle(target string, opts WaitOptions) (bool, error)
	WaitFor(target string, pattern *regexp.Regexp, opts WaitOptions) (bool, error)
	Kill(target string) error
	Interrupt(target string) error
	Escape(target string) error
	Clear(target string) error
	Resize(target, direction string, amount int) error
	Focus(target string) error
}

var resizeFlags = map[string]string{
	"up":    "-U",
	"down":  "-D",
	"left":  "-L",
	"right": "-R",
}

func resizeFlag(direction string) (string, error) {
	flag, ok := resizeFlags[direction]
	if !ok {
		return "", fmt.Errorf("invalid resize direction %q (want up, down, left or right)", direction)
	}
	return flag, nil
}

// Runner executes a tmux command and returns its trimmed stdout.
// This allows mocking in tests.
type Runner interface {
	Run(args ...string) (string, error)
}

// ExecRunner implements Runner using the tmux binary.
type ExecRunner struct{}

func (ExecRunner) Run(args ...string) (string, error) {
	out, err := exec.Command("tmux", args...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("tmux %s: %w: %s", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("tmux %s: %w", args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}

// New returns a controller for the detected mode. remoteSession names the
// managed session used when running outside tmux.
func New(runner Runner, remoteSession string) Controller {
	if DetectMode() == ModeLocal {
		return NewLocal(runner)
	}
	return NewRemote(runner, remoteSession)
}

// Attach replaces the caller's terminal with a view of the managed session.
// Interactive, so it bypasses the Runner and inherits stdio.
func Attach(session string) error {
	cmd := exec.Command("tmux", "attach-session", "-t", session)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
