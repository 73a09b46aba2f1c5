package tmuxctl

import (
	"fmt"
	"regexp"
	"strings"
)

const windowFormat = "#{window_index}|#{window_name}|#{window_active}|#{pane_id}"

// Remote manages windows in a detached session owned by this tool. Each
// launched command gets its own window for isolation, mirroring what panes
// give you in local mode.
type Remote struct {
	runner  Runner
	session string
}

func NewRemote(runner Runner, session string) *Remote {
	return &Remote{runner: runner, session: session}
}

func (r *Remote) Mode() Mode { return ModeRemote }

// Session returns the managed session name.
func (r *Remote) Session() string { return r.session }

// SessionExists reports whether the managed session is alive.
func (r *Remote) SessionExists() bool {
	_, err := r.runner.Run("has-session", "-t", r.session)
	return err == nil
}

// Windows lists the windows of the managed session.
func (r *Remote) Windows() ([]Window, error) {
	if !r.SessionExists() {
		return nil, nil
	}
	out, err := r.runner.Run("list-windows", "-t", r.session, "-F", windowFormat)
	if err != nil {
		return nil, fmt.Errorf("listing windows: %w", err)
	}

	var windows []Window
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			continue
		}
		windows = append(windows, Window{
			Index:  parts[0],
			Name:   parts[1],
			Active: parts[2] == "1",
			PaneID: parts[3],
		})
	}
	return windows, nil
}

// resolve maps a user-supplied target (window index, window name, or a full
// session:window form) to a tmux target in the managed session.
func (r *Remote) resolve(target string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("no target window specified")
	}
	if strings.Contains(target, ":") {
		return target, nil
	}
	return fmt.Sprintf("%s:%s", r.session, target), nil
}

// Launch runs command in a new window of the managed session, creating the
// session on first use. Returns the window target (session:index).
func (r *Remote) Launch(command string, opts LaunchOptions) (string, error) {
	target := "#{session_name}:#{window_index}"

	if !r.SessionExists() {
		args := []string{"new-session", "-d", "-s", r.session, "-P", "-F", target}
		if opts.Name != "" {
			args = append(args, "-n", opts.Name)
		}
		if command != "" {
			args = append(args, command)
		}
		out, err := r.runner.Run(args...)
		if err != nil {
			return "", fmt.Errorf("creating session %s: %w", r.session, err)
		}
		return out, nil
	}

	args := []string{"new-window", "-t", r.session, "-P", "-F", target}
	if opts.Name != "" {
		args = append(args, "-n", opts.Name)
	}
	if command != "" {
		args = append(args, command)
	}
	out, err := r.runner.Run(args...)
	if err != nil {
		return "", fmt.Errorf("creating window: %w", err)
	}
	return out, nil
}

func (r *Remote) Send(target, text string, opts SendOptions) error {
	t, err := r.resolve(target)
	if err != nil {
		return err
	}
	return sendText(r.runner, t, text, opts)
}

func (r *Remote) Capture(target string, lines int) (string, error) {
	t, err := r.resolve(target)
	if err != nil {
		return "", err
	}
	return capturePane(r.runner, t, lines)
}

func (r *Remote) WaitIdle(target string, opts WaitOptions) (bool, error) {
	t, err := r.resolve(target)
	if err != nil {
		return false, err
	}
	return waitIdle(func() (string, error) { return capturePane(r.runner, t, 0) }, opts)
}

func (r *Remote) WaitFor(target string, pattern *regexp.Regexp, opts WaitOptions) (bool, error) {
	t, err := r.resolve(target)
	if err != nil {
		return false, err
	}
	return waitFor(func() (string, error) { return capturePane(r.runner, t, 50) }, pattern, opts)
}

// Kill destroys one window of the managed session. The whole session goes
// away only through Cleanup.
func (r *Remote) Kill(target string) error {
	t, err := r.resolve(target)
	if err != nil {
		return err
	}
	if _, err := r.runner.Run("kill-window", "-t", t); err != nil {
		return fmt.Errorf("killing window %s: %w", t, err)
	}
	return nil
}

// Cleanup kills the entire managed session and all its windows.
func (r *Remote) Cleanup() error {
	if !r.SessionExists() {
		return nil
	}
	if _, err := r.runner.Run("kill-session", "-t", r.session); err != nil {
		return fmt.Errorf("killing session %s: %w", r.session, err)
	}
	return nil
}

func (r *Remote) Interrupt(target string) error {
	return r.sendKey(target, "C-c")
}

func (r *Remote) Escape(target string) error {
	return r.sendKey(target, "Escape")
}

func (r *Remote) Clear(target string) error {
	return r.sendKey(target, "C-l")
}

// Resize grows or shrinks a window's pane by amount cells.
func (r *Remote) Resize(target, direction string, amount int) error {
	t, err := r.resolve(target)
	if err != nil {
		return err
	}
	flag, err := resizeFlag(direction)
	if err != nil {
		return err
	}
	if _, err := r.runner.Run("resize-pane", "-t", t, flag, fmt.Sprintf("%d", amount)); err != nil {
		return fmt.Errorf("resizing %s: %w", t, err)
	}
	return nil
}

// Focus selects a window so an attached client lands on it.
func (r *Remote) Focus(target string) error {
	t, err := r.resolve(target)
	if err != nil {
		return err
	}
	if _, err := r.runner.Run("select-window", "-t", t); err != nil {
		return fmt.Errorf("selecting window %s: %w", t, err)
	}
	return nil
}

func (r *Remote) sendKey(target, key string) error {
	t, err := r.resolve(target)
	if err != nil {
		return err
	}
	if _, err := r.runner.Run("send-keys", "-t", t, key); err != nil {
		return fmt.Errorf("sending %s: %w", key, err)
	}
	return nil
}
