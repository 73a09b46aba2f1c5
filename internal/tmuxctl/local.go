package tmuxctl

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const paneFormat = "#{pane_id}|#{pane_index}|#{pane_title}|#{pane_active}|#{pane_width}x#{pane_height}"

// Local manages panes in the caller's current tmux window.
type Local struct {
	runner Runner
}

func NewLocal(runner Runner) *Local {
	return &Local{runner: runner}
}

func (l *Local) Mode() Mode { return ModeLocal }

// CurrentPane returns the ID of the pane this process runs in.
func (l *Local) CurrentPane() (string, error) {
	out, err := l.runner.Run("display-message", "-p", "#{pane_id}")
	if err != nil {
		return "", fmt.Errorf("getting current pane: %w", err)
	}
	return out, nil
}

// Panes lists the panes of the current window.
func (l *Local) Panes() ([]Pane, error) {
	out, err := l.runner.Run("list-panes", "-F", paneFormat)
	if err != nil {
		return nil, fmt.Errorf("listing panes: %w", err)
	}

	var panes []Pane
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 5)
		if len(parts) != 5 {
			continue
		}
		panes = append(panes, Pane{
			ID:     parts[0],
			Index:  parts[1],
			Title:  parts[2],
			Active: parts[3] == "1",
			Size:   parts[4],
		})
	}
	return panes, nil
}

// resolve maps a user-supplied target (pane ID like %3, or a bare pane
// index) to a pane ID.
func (l *Local) resolve(target string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("no target pane specified")
	}
	if !isDigits(target) {
		return target, nil
	}
	panes, err := l.Panes()
	if err != nil {
		return "", err
	}
	for _, p := range panes {
		if p.Index == target {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("no pane with index %s", target)
}

// Launch splits the current window and runs command in the new pane.
// Returns the new pane's ID.
func (l *Local) Launch(command string, opts LaunchOptions) (string, error) {
	args := []string{"split-window"}
	if opts.Vertical {
		args = append(args, "-h")
	} else {
		args = append(args, "-v")
	}
	if opts.Size > 0 {
		args = append(args, "-p", fmt.Sprintf("%d", opts.Size))
	}
	args = append(args, "-P", "-F", "#{pane_id}")
	if command != "" {
		args = append(args, command)
	}

	out, err := l.runner.Run(args...)
	if err != nil {
		return "", fmt.Errorf("launching pane: %w", err)
	}
	return out, nil
}

// Send delivers text to a pane. Literal mode handles special characters;
// Enter goes as a separate keystroke after the delay so slow CLIs see the
// text land before submission.
func (l *Local) Send(target, text string, opts SendOptions) error {
	id, err := l.resolve(target)
	if err != nil {
		return err
	}
	return sendText(l.runner, id, text, opts)
}

func (l *Local) Capture(target string, lines int) (string, error) {
	id, err := l.resolve(target)
	if err != nil {
		return "", err
	}
	return capturePane(l.runner, id, lines)
}

func (l *Local) WaitIdle(target string, opts WaitOptions) (bool, error) {
	id, err := l.resolve(target)
	if err != nil {
		return false, err
	}
	return waitIdle(func() (string, error) { return capturePane(l.runner, id, 0) }, opts)
}

func (l *Local) WaitFor(target string, pattern *regexp.Regexp, opts WaitOptions) (bool, error) {
	id, err := l.resolve(target)
	if err != nil {
		return false, err
	}
	return waitFor(func() (string, error) { return capturePane(l.runner, id, 50) }, pattern, opts)
}

// Kill destroys a pane. Killing the caller's own pane would terminate the
// session driving this tool, so it is refused.
func (l *Local) Kill(target string) error {
	id, err := l.resolve(target)
	if err != nil {
		return err
	}

	current, err := l.CurrentPane()
	if err == nil && current != "" && id == current {
		return fmt.Errorf("cannot kill own pane %s: this would terminate your session", id)
	}

	if _, err := l.runner.Run("kill-pane", "-t", id); err != nil {
		return fmt.Errorf("killing pane %s: %w", id, err)
	}
	return nil
}

func (l *Local) Interrupt(target string) error {
	return l.sendKey(target, "C-c")
}

func (l *Local) Escape(target string) error {
	return l.sendKey(target, "Escape")
}

func (l *Local) Clear(target string) error {
	return l.sendKey(target, "C-l")
}

// Resize grows or shrinks a pane by amount cells in the given direction.
func (l *Local) Resize(target, direction string, amount int) error {
	id, err := l.resolve(target)
	if err != nil {
		return err
	}
	flag, err := resizeFlag(direction)
	if err != nil {
		return err
	}
	if _, err := l.runner.Run("resize-pane", "-t", id, flag, fmt.Sprintf("%d", amount)); err != nil {
		return fmt.Errorf("resizing pane %s: %w", id, err)
	}
	return nil
}

// Focus moves the cursor to a pane.
func (l *Local) Focus(target string) error {
	id, err := l.resolve(target)
	if err != nil {
		return err
	}
	if _, err := l.runner.Run("select-pane", "-t", id); err != nil {
		return fmt.Errorf("focusing pane %s: %w", id, err)
	}
	return nil
}

func (l *Local) sendKey(target, key string) error {
	id, err := l.resolve(target)
	if err != nil {
		return err
	}
	if _, err := l.runner.Run("send-keys", "-t", id, key); err != nil {
		return fmt.Errorf("sending %s: %w", key, err)
	}
	return nil
}

func sendText(runner Runner, target, text string, opts SendOptions) error {
	if _, err := runner.Run("send-keys", "-t", target, "-l", text); err != nil {
		return fmt.Errorf("sending text: %w", err)
	}
	if !opts.Enter {
		return nil
	}
	if opts.Delay > 0 {
		time.Sleep(opts.Delay)
	}
	// Empty string before Enter is more reliable than Enter alone.
	if _, err := runner.Run("send-keys", "-t", target, "", "Enter"); err != nil {
		return fmt.Errorf("sending Enter: %w", err)
	}
	return nil
}

func capturePane(runner Runner, target string, lines int) (string, error) {
	args := []string{"capture-pane", "-t", target, "-p"}
	if lines > 0 {
		args = append(args, "-S", fmt.Sprintf("-%d", lines))
	}
	out, err := runner.Run(args...)
	if err != nil {
		return "", fmt.Errorf("capturing pane: %w", err)
	}
	return out, nil
}
