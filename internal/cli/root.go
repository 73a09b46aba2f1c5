// Package cli wires the command tree. Commands stay thin: parse flags,
// call into the internal packages, format output.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ravik/cct/internal/config"
	"github.com/ravik/cct/internal/events"
	"github.com/ravik/cct/internal/logger"
)

var (
	cfg      *config.Config
	auditLog *events.Logger

	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.Faint)
)

var rootCmd = &cobra.Command{
	Use:   "cct",
	Short: "Claude Code tooling: tmux orchestration, dotenv vault, session search, hooks",
	Long: `cct bundles the glue tooling around Claude Code agent workflows:

  cct tmux      drive CLI programs in tmux panes or a managed detached session
  cct vault     keep sops/gpg-encrypted backups of per-project .env files
  cct sessions  search and resume Claude Code session transcripts
  cct hook      allow/block predicates for Claude Code tool calls
  cct events    show the recent audit trail
  cct doctor    check external dependencies and configuration`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Hook commands must keep stdout/stderr protocol-clean.
		logger.Init(isHookInvocation(cmd))

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		auditLog = events.NewLogger(cfg.EventsPath())
		return nil
	},
}

func isHookInvocation(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "hook" {
			return true
		}
	}
	return false
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(tmuxCmd)
	rootCmd.AddCommand(vaultCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
}
