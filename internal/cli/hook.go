package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ravik/cct/internal/hooks"
	"github.com/ravik/cct/internal/logger"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Allow/block predicates for Claude Code tool calls",
	Long: `Hook commands read a JSON payload from stdin and write a decision to
stdout, always exiting zero. Wire them in Claude Code's settings, e.g.:

  "hooks": {
    "PreToolUse": [
      {"matcher": "Bash", "hooks": [{"type": "command", "command": "cct hook bash"}]},
      {"matcher": "Read", "hooks": [{"type": "command", "command": "cct hook read-guard"}]}
    ]
  }`,
}

// runCommandHook is the shared shape of every bash-command hook: non-Bash
// tool input approves, otherwise decide on the command string.
func runCommandHook(name string, decide func(command string) hooks.Decision) error {
	in, err := hooks.ReadInput(os.Stdin)
	if err != nil {
		// A hook that errors out would wedge the agent; approve and log.
		logger.Error("hook input unreadable", "hook", name, "error", err)
		return hooks.WriteDecision(os.Stdout, hooks.Approve())
	}

	d := hooks.Approve()
	if in.ToolName == "Bash" {
		d = decide(in.ToolInput.Command)
	}

	if err := auditLog.LogHookDecision(name, d.Decision, in.ToolInput.Command); err != nil {
		logger.Warn("audit log write failed", "error", err)
	}
	return hooks.WriteDecision(os.Stdout, d)
}

var hookBashCmd = &cobra.Command{
	Use:   "bash",
	Short: "Run all bash command safety checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommandHook("bash", func(command string) hooks.Decision {
			return hooks.CheckAll(command, hooks.BashChecks(nil))
		})
	},
}

var hookRmCmd = &cobra.Command{
	Use:   "rm",
	Short: "Block rm commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommandHook("rm", hooks.CheckRm)
	},
}

var hookGitAddCmd = &cobra.Command{
	Use:   "git-add",
	Short: "Block stage-everything forms of git add",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommandHook("git-add", hooks.CheckGitAdd)
	},
}

var hookGitCheckoutCmd = &cobra.Command{
	Use:   "git-checkout",
	Short: "Guard git checkout against losing uncommitted work",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommandHook("git-checkout", func(command string) hooks.Decision {
			return hooks.CheckGitCheckout(command, hooks.GitStatus)
		})
	},
}

var hookGrepCmd = &cobra.Command{
	Use:   "grep",
	Short: "Redirect grep usage to ripgrep",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommandHook("grep", hooks.CheckGrep)
	},
}

var hookReadGuardCmd = &cobra.Command{
	Use:   "read-guard",
	Short: "Block reads of large text files so the agent delegates instead",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := hooks.ReadInput(os.Stdin)
		if err != nil {
			logger.Error("hook input unreadable", "hook", "read-guard", "error", err)
			return hooks.WriteDecision(os.Stdout, hooks.Approve())
		}

		guard, err := hooks.NewReadGuard(
			cfg.Hooks.MainReadLimit,
			cfg.Hooks.SubagentReadLimit,
			cfg.Hooks.FlagFile,
			cfg.Hooks.ExemptGlobs,
		)
		if err != nil {
			logger.Error("read guard misconfigured", "error", err)
			return hooks.WriteDecision(os.Stdout, hooks.Approve())
		}

		d := guard.Check(in.ToolInput)
		if err := auditLog.LogHookDecision("read-guard", d.Decision, in.ToolInput.FilePath); err != nil {
			logger.Warn("audit log write failed", "error", err)
		}
		return hooks.WriteDecision(os.Stdout, d)
	},
}

var hookSubtaskStartCmd = &cobra.Command{
	Use:   "subtask-start",
	Short: "Mark sub-agent execution context (pre-Task hook)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hooks.StartSubtask(cfg.Hooks.FlagFile); err != nil {
			logger.Error("subtask flag", "error", err)
		}
		return hooks.WriteDecision(os.Stdout, hooks.Approve())
	},
}

var hookSubtaskEndCmd = &cobra.Command{
	Use:   "subtask-end",
	Short: "Clear sub-agent execution context (post-Task hook)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hooks.EndSubtask(cfg.Hooks.FlagFile); err != nil {
			logger.Error("subtask flag", "error", err)
		}
		return hooks.WriteDecision(os.Stdout, hooks.Approve())
	},
}

func init() {
	hookCmd.AddCommand(hookBashCmd, hookRmCmd, hookGitAddCmd, hookGitCheckoutCmd,
		hookGrepCmd, hookReadGuardCmd, hookSubtaskStartCmd, hookSubtaskEndCmd)
}
