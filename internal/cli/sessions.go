package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ravik/cct/internal/logger"
	"github.com/ravik/cct/internal/sessions"
	"github.com/ravik/cct/internal/terminal"
)

var (
	findGlobal  bool
	findLimit   int
	findShell   bool
	recentLimit int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Search and resume Claude Code session transcripts",
}

var findCmd = &cobra.Command{
	Use:   "find <keywords>",
	Short: "Find sessions whose transcript contains all comma-separated keywords",
	Long: `Searches the JSONL transcripts of the current project (or all projects
with --global) for sessions containing ALL the given keywords, newest first,
then offers to resume the selected session with 'claude -r'.

Directory changes cannot outlive the process; to follow the session into its
project directory, add a shell function and use --shell:

    fcs() { eval $(cct sessions find --shell "$@"); }`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keywords := sessions.ParseKeywords(args[0])
		if len(keywords) == 0 {
			return fmt.Errorf("no keywords provided")
		}

		var projects []sessions.Project
		if findGlobal {
			var err error
			projects, err = sessions.AllProjects(cfg.ClaudePath())
			if err != nil {
				return err
			}
		} else {
			p, err := sessions.CurrentProject(cfg.ClaudePath())
			if err != nil {
				return err
			}
			projects = []sessions.Project{p}
		}

		found, err := sessions.Find(projects, keywords)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			scope := "current project"
			if findGlobal {
				scope = "all projects"
			}
			warnColor.Printf("No sessions found containing all keywords in %s.\n", scope)
			return nil
		}

		// Refresh the metadata cache; a failed refresh only degrades
		// `sessions list`.
		if ix, err := sessions.OpenIndex(cfg.IndexPath()); err == nil {
			if err := ix.RecordAll(found); err != nil {
				logger.Warn("index refresh failed", "error", err)
			}
			ix.Close()
		}

		if findLimit > 0 && len(found) > findLimit {
			found = found[:findLimit]
		}

		if !terminal.IsTerminal() && !findShell {
			printSessionTable(found)
			return nil
		}

		out := os.Stdout
		if findShell {
			out = os.Stderr
		}
		chosen, err := pickSession(fmt.Sprintf("Sessions matching: %s", args[0]), found, out)
		if err != nil {
			return err
		}
		if chosen == nil {
			return nil
		}
		return resumeSession(chosen)
	},
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recently seen sessions from the metadata cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := sessions.OpenIndex(cfg.IndexPath())
		if err != nil {
			return err
		}
		defer ix.Close()

		// Fold a fresh directory scan into the index so sessions that were
		// never surfaced by a search still show up.
		if projects, err := sessions.AllProjects(cfg.ClaudePath()); err == nil {
			if scanned, err := sessions.All(projects); err == nil && len(scanned) > 0 {
				if err := ix.RecordAll(scanned); err != nil {
					logger.Warn("index refresh failed", "error", err)
				}
			}
		}

		recent, err := ix.Recent(recentLimit)
		if err != nil {
			return err
		}
		if len(recent) == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		headerColor.Println("SESSION      PROJECT           DATE              LINES  PREVIEW")
		for _, s := range recent {
			fmt.Printf("%-12s %-17s %-17s %-6d %s\n",
				shortID(s.ID),
				truncateStr(s.ProjectName, 17),
				s.ModTime.Format("2006-01-02 15:04"),
				s.Lines,
				truncateStr(s.Preview, 40))
		}
		return nil
	},
}

func printSessionTable(found []sessions.Session) {
	for i, s := range found {
		fmt.Printf("%d. %s | %s | %s | %d lines\n",
			i+1, s.ID, s.ProjectName, s.ModTime.Format("2006-01-02 15:04:05"), s.Lines)
	}
}

// resumeSession hands the terminal over to claude. In shell mode it prints
// eval-able commands instead, so the caller's shell can change directory.
func resumeSession(s *sessions.Session) error {
	cwd, _ := os.Getwd()

	if findShell {
		if s.ProjectPath != cwd {
			fmt.Printf("cd %s\n", shellQuote(s.ProjectPath))
		}
		fmt.Printf("%s -r %s\n", cfg.ClaudeCmd, shellQuote(s.ID))
		return nil
	}

	if s.ProjectPath != cwd {
		fmt.Printf("This session is from a different project:\n")
		fmt.Printf("  Current directory: %s\n", cwd)
		fmt.Printf("  Session directory: %s\n", s.ProjectPath)
		if terminal.Confirm("Change to the session's directory?", true) {
			if err := os.Chdir(s.ProjectPath); err != nil {
				return fmt.Errorf("changing directory: %w", err)
			}
		} else {
			warnColor.Println("Staying in current directory. Session resume may fail.")
		}
	}

	successColor.Printf("Resuming session: %s\n", s.ID)
	cmd := exec.Command(cfg.ClaudeCmd, "-r", s.ID)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// shellQuote single-quotes a string for safe eval in POSIX shells.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func init() {
	findCmd.Flags().BoolVarP(&findGlobal, "global", "g", false, "search all Claude projects")
	findCmd.Flags().IntVarP(&findLimit, "num-matches", "n", 10, "number of matches to display")
	findCmd.Flags().BoolVar(&findShell, "shell", false, "print eval-able shell commands instead of resuming")
	sessionsListCmd.Flags().IntVarP(&recentLimit, "num", "n", 20, "number of sessions to show")

	sessionsCmd.AddCommand(findCmd, sessionsListCmd)
}
