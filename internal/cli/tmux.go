package cli

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/cobra"

	"github.com/ravik/cct/internal/events"
	"github.com/ravik/cct/internal/logger"
	"github.com/ravik/cct/internal/tmuxctl"
)

var (
	launchVertical bool
	launchSize     int
	launchName     string

	sendNoEnter bool
	sendDelay   time.Duration

	captureLines int

	waitIdleTime time.Duration
	waitInterval time.Duration
	waitTimeout  time.Duration
)

func controller() tmuxctl.Controller {
	return tmuxctl.New(tmuxctl.ExecRunner{}, cfg.RemoteSession)
}

var tmuxCmd = &cobra.Command{
	Use:   "tmux",
	Short: "Drive CLI programs in tmux panes or a managed detached session",
	Long: `Inside tmux, commands operate on panes of the current window.
Outside tmux, commands operate on windows of a managed detached session
(created on first launch) so your own terminal is never touched.`,
}

var launchCmd = &cobra.Command{
	Use:   "launch [command]",
	Short: "Start a command in a new pane (local) or window (remote)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		command := ""
		if len(args) > 0 {
			command = args[0]
		}

		c := controller()
		target, err := c.Launch(command, tmuxctl.LaunchOptions{
			Vertical: launchVertical,
			Size:     launchSize,
			Name:     launchName,
		})
		if err != nil {
			return err
		}

		if err := auditLog.LogPane(events.EventPaneLaunch, target, command); err != nil {
			logger.Warn("audit log write failed", "error", err)
		}
		fmt.Println(target)
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <target> <text>",
	Short: "Type text into a pane, submitting with Enter by default",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return controller().Send(args[0], args[1], tmuxctl.SendOptions{
			Enter: !sendNoEnter,
			Delay: sendDelay,
		})
	},
}

var captureCmd = &cobra.Command{
	Use:   "capture <target>",
	Short: "Print a pane's visible content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := controller().Capture(args[0], captureLines)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var waitIdleCmd = &cobra.Command{
	Use:   "wait-idle <target>",
	Short: "Block until a pane's output stops changing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idle, err := controller().WaitIdle(args[0], tmuxctl.WaitOptions{
			IdleTime: waitIdleTime,
			Interval: waitInterval,
			Timeout:  waitTimeout,
		})
		if err != nil {
			return err
		}
		if !idle {
			return fmt.Errorf("timed out waiting for %s to become idle", args[0])
		}
		successColor.Printf("%s is idle\n", args[0])
		return nil
	},
}

var waitForCmd = &cobra.Command{
	Use:   "wait-for <target> <pattern>",
	Short: "Block until a pane's output matches a regular expression",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern, err := regexp.Compile(args[1])
		if err != nil {
			return fmt.Errorf("bad pattern: %w", err)
		}
		found, err := controller().WaitFor(args[0], pattern, tmuxctl.WaitOptions{
			Interval: waitInterval,
			Timeout:  waitTimeout,
		})
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("timed out waiting for %q in %s", args[1], args[0])
		}
		return nil
	},
}

var killCmd = &cobra.Command{
	Use:   "kill <target>",
	Short: "Destroy a pane (local) or window (remote)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := controller().Kill(args[0]); err != nil {
			return err
		}
		if err := auditLog.LogPane(events.EventPaneKill, args[0], ""); err != nil {
			logger.Warn("audit log write failed", "error", err)
		}
		return nil
	},
}

var interruptCmd = &cobra.Command{
	Use:   "interrupt <target>",
	Short: "Send Ctrl-C to a pane",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return controller().Interrupt(args[0])
	},
}

var escapeCmd = &cobra.Command{
	Use:   "escape <target>",
	Short: "Send Escape to a pane",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return controller().Escape(args[0])
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear <target>",
	Short: "Send Ctrl-L to a pane",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return controller().Clear(args[0])
	},
}

var resizeAmount int

var resizeCmd = &cobra.Command{
	Use:   "resize <target> <up|down|left|right>",
	Short: "Resize a pane in the given direction",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return controller().Resize(args[0], args[1], resizeAmount)
	},
}

var focusCmd = &cobra.Command{
	Use:   "focus <target>",
	Short: "Give a pane (local) or window (remote) the focus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return controller().Focus(args[0])
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List panes of the current window, or windows of the managed session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := controller()
		switch c := c.(type) {
		case *tmuxctl.Local:
			panes, err := c.Panes()
			if err != nil {
				return err
			}
			if len(panes) == 0 {
				fmt.Println("No panes.")
				return nil
			}
			headerColor.Println("ID    INDEX  ACTIVE  SIZE      TITLE")
			for _, p := range panes {
				active := ""
				if p.Active {
					active = "*"
				}
				fmt.Printf("%-5s %-6s %-7s %-9s %s\n", p.ID, p.Index, active, p.Size, p.Title)
			}
		case *tmuxctl.Remote:
			windows, err := c.Windows()
			if err != nil {
				return err
			}
			if len(windows) == 0 {
				fmt.Printf("No managed session '%s'. Launch something first.\n", cfg.RemoteSession)
				return nil
			}
			headerColor.Println("INDEX  ACTIVE  PANE   NAME")
			for _, w := range windows {
				active := ""
				if w.Active {
					active = "*"
				}
				fmt.Printf("%-6s %-7s %-6s %s\n", w.Index, active, w.PaneID, w.Name)
			}
		}
		return nil
	},
}

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Attach your terminal to the managed session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tmuxctl.DetectMode() == tmuxctl.ModeLocal {
			return fmt.Errorf("already inside tmux; use tmux switch-client instead")
		}
		return tmuxctl.Attach(cfg.RemoteSession)
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Kill the managed session and all its windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		remote := tmuxctl.NewRemote(tmuxctl.ExecRunner{}, cfg.RemoteSession)
		if err := remote.Cleanup(); err != nil {
			return err
		}
		successColor.Printf("Session '%s' cleaned up.\n", cfg.RemoteSession)
		return nil
	},
}

func init() {
	launchCmd.Flags().BoolVar(&launchVertical, "vertical", false, "split side by side (local mode)")
	launchCmd.Flags().IntVar(&launchSize, "size", 0, "pane size in percent (local mode)")
	launchCmd.Flags().StringVar(&launchName, "name", "", "window name (remote mode)")

	sendCmd.Flags().BoolVar(&sendNoEnter, "no-enter", false, "do not submit with Enter")
	sendCmd.Flags().DurationVar(&sendDelay, "delay", tmuxctl.DefaultDelay, "pause between text and Enter")

	captureCmd.Flags().IntVar(&captureLines, "lines", 0, "also capture this many lines of scrollback")

	waitIdleCmd.Flags().DurationVar(&waitIdleTime, "idle-time", tmuxctl.DefaultIdleTime, "no-change window that counts as idle")
	waitIdleCmd.Flags().DurationVar(&waitInterval, "interval", tmuxctl.DefaultInterval, "poll interval")
	waitIdleCmd.Flags().DurationVar(&waitTimeout, "timeout", 0, "give up after this long (0 waits forever)")
	waitForCmd.Flags().DurationVar(&waitInterval, "interval", tmuxctl.DefaultInterval, "poll interval")
	waitForCmd.Flags().DurationVar(&waitTimeout, "timeout", 10*time.Second, "give up after this long")

	resizeCmd.Flags().IntVar(&resizeAmount, "amount", 5, "cells to grow or shrink by")

	tmuxCmd.AddCommand(launchCmd, sendCmd, captureCmd, waitIdleCmd, waitForCmd,
		killCmd, interruptCmd, escapeCmd, clearCmd, resizeCmd, focusCmd,
		listCmd, attachCmd, cleanupCmd)
}
