package hooks

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

var (
	// Matches rm at the start of a command or after ; & |, including
	// absolute paths like /bin/rm.
	rmPattern = regexp.MustCompile(`(^|[;&|]\s*)(/\S*/)?rm\b`)

	// git add with flags containing a/A, --all, ".", or "*".
	gitAddPattern = regexp.MustCompile(`(?i)^git\s+add\s+(-[a-z]*a[a-z]*|--all|\.|\*)`)

	gitCommitPattern = regexp.MustCompile(`^git\s+commit\s+`)
	shortAFlag       = regexp.MustCompile(`-[a-zA-Z]*a[a-zA-Z]*`)
	shortMFlag       = regexp.MustCompile(`-[a-zA-Z]*m[a-zA-Z]*`)

	grepPattern = regexp.MustCompile(`(^|[;&|]\s*)(/\S*/)?grep\b`)

	checkoutForce    = regexp.MustCompile(`\bgit\s+checkout\s+(-f|--force)\b`)
	checkoutDot      = regexp.MustCompile(`\bgit\s+checkout\s+\.`)
	checkoutPathsDot = regexp.MustCompile(`\bgit\s+checkout\s+.*\s+--\s+\.`)
	checkoutPaths    = regexp.MustCompile(`\bgit\s+checkout\s+.*\s+--\s+`)
)

const rmReason = "Instead of using 'rm':\n" +
	" - MOVE files using `mv` to the TRASH directory in the CURRENT folder (create it if needed),\n" +
	" - Add an entry in a markdown file called 'TRASH-FILES.md' in the current directory,\n" +
	"   with a one-liner showing the file name, where it moved, and the reason to trash it, e.g.:\n\n" +
	"```\n" +
	"test_script.py - moved to TRASH/ - temporary test script\n" +
	"data/junk.txt - moved to TRASH/ - data file we don't need\n" +
	"```"

const gitAddReason = `DO NOT use 'git add -A', 'git add -a', 'git add --all', 'git add .' or 'git add *' as they add ALL files!

Instead, use one of these commands:
- 'git add -u' to stage all modified and deleted files (but not untracked)
- 'git add <specific-files>' to stage specific files you want
- 'git status -uno' to see modified files only

This restriction prevents accidentally staging unwanted files.`

const gitCommitReason = `Avoid 'git commit -a' without a message flag. Use 'git commit -a -m "message"' instead.`

const grepReason = "Use 'rg' (ripgrep) instead of grep for faster and better search results"

// normalize collapses whitespace so flag patterns match reliably.
func normalize(command string) string {
	return strings.Join(strings.Fields(command), " ")
}

// CheckRm blocks rm invocations, pointing at the TRASH convention instead.
func CheckRm(command string) Decision {
	cmd := normalize(command)
	if cmd == "rm" || strings.HasPrefix(cmd, "rm ") || rmPattern.MatchString(cmd) {
		return Block(rmReason)
	}
	return Approve()
}

// CheckGitAdd blocks stage-everything forms of git add, and git commit -a
// without a message flag (which would open an editor).
func CheckGitAdd(command string) Decision {
	cmd := normalize(command)
	if gitAddPattern.MatchString(cmd) {
		return Block(gitAddReason)
	}
	if gitCommitPattern.MatchString(cmd) {
		if shortAFlag.MatchString(cmd) && !shortMFlag.MatchString(cmd) {
			return Block(gitCommitReason)
		}
	}
	return Approve()
}

// CheckGrep redirects grep usage to ripgrep.
func CheckGrep(command string) Decision {
	if grepPattern.MatchString(normalize(command)) {
		return Block(grepReason)
	}
	return Approve()
}

// GitStatusFunc returns `git status --porcelain` output for the working
// directory. Injectable for tests.
type GitStatusFunc func() (string, error)

// GitStatus runs the real thing.
func GitStatus() (string, error) {
	out, err := exec.Command("git", "status", "--porcelain").Output()
	return string(out), err
}

// CheckGitCheckout guards checkout against destroying uncommitted work.
// Branch creation and help are allowed; force and pathspec forms are always
// blocked; otherwise checkout is blocked while the tree is dirty. If the
// status probe fails, block conservatively.
func CheckGitCheckout(command string, status GitStatusFunc) Decision {
	cmd := strings.TrimSpace(command)
	if !strings.HasPrefix(cmd, "git checkout") {
		return Approve()
	}

	if strings.Contains(cmd, "-b") || strings.Contains(cmd, "--help") || strings.Contains(cmd, "-h") {
		return Approve()
	}

	dangerous := []struct {
		pattern *regexp.Regexp
		message string
	}{
		{checkoutForce, "'git checkout -f' FORCES checkout and DISCARDS all uncommitted changes!"},
		{checkoutDot, "'git checkout .' will DISCARD ALL changes in current directory!"},
		{checkoutPathsDot, "This will DISCARD ALL changes in current directory!"},
		{checkoutPaths, "This will overwrite your local file with the version from another branch/commit!"},
	}
	for _, d := range dangerous {
		if d.pattern.MatchString(cmd) {
			return Block(fmt.Sprintf("DANGEROUS COMMAND DETECTED!\n\n%s\n\n"+
				"This command will destroy uncommitted work without warning.\n\n"+
				"Safer alternatives:\n"+
				"- Use 'git stash' to save changes temporarily\n"+
				"- Use 'git diff' to see what would be lost\n"+
				"- Use 'git restore' for clearer syntax", d.message))
		}
	}

	out, err := status()
	if err != nil {
		return Block(fmt.Sprintf("Could not verify repository status: %v\n"+
			"Please manually check 'git status' before proceeding.", err))
	}

	changed := changedFiles(out)
	if len(changed) == 0 {
		return Approve()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "WARNING: You have %d uncommitted change(s) that may be lost!\n\n", len(changed))
	b.WriteString("Modified files:\n")
	for i, f := range changed {
		if i == 10 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(changed)-10)
			break
		}
		fmt.Fprintf(&b, "  %s\n", f)
	}
	b.WriteString("\nOptions:\n")
	b.WriteString("1. Stash changes: git stash\n")
	b.WriteString("2. Commit changes: git commit -am 'your message'\n")
	b.WriteString("3. Discard changes: git restore <files>\n")
	b.WriteString("4. Use 'git switch' instead for safer branch switching\n")
	return Block(b.String())
}

func changedFiles(porcelain string) []string {
	var files []string
	for _, line := range strings.Split(porcelain, "\n") {
		if strings.TrimSpace(line) != "" {
			files = append(files, line)
		}
	}
	return files
}

// BashChecks is the unified check set for the bash hook.
func BashChecks(status GitStatusFunc) []CommandCheck {
	if status == nil {
		status = GitStatus
	}
	return []CommandCheck{
		{Name: "rm", Check: CheckRm},
		{Name: "git-add", Check: CheckGitAdd},
		{Name: "git-checkout", Check: func(cmd string) Decision {
			return CheckGitCheckout(cmd, status)
		}},
	}
}
