// Package doctor verifies the external binaries, directories and hook
// configuration the tool depends on and reports anything that needs fixing.
package doctor

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/ravik/cct/internal/config"
)

type CheckResult struct {
	Name    string
	Status  string // "ok", "warn", "error"
	Message string
	Details []string
}

func Run(cfg *config.Config) error {
	fmt.Println("┌─ cct doctor ──────────────────────────────────────────────────────────┐")
	fmt.Println("│                                                                       │")

	var results []CheckResult

	results = append(results, checkBinary("tmux", []string{"-V"},
		"Install tmux: brew install tmux (macOS) or apt install tmux (Linux)"))
	results = append(results, checkBinary("sops", []string{"--version"},
		"Install sops: brew install sops or see https://github.com/getsops/sops"))
	results = append(results, checkBinary("gpg", []string{"--version"},
		"Install gnupg: brew install gnupg or apt install gnupg"))
	results = append(results, checkClaude(cfg))
	results = append(results, checkConfig(cfg))
	results = append(results, checkVaultDir(cfg))
	results = append(results, checkClaudeHome(cfg))
	results = append(results, checkGPGKey())
	results = append(results, checkSettings(cfg))
	results = append(results, checkHookLimits(cfg.Hooks))
	results = append(results, checkSubtaskFlag(cfg.Hooks.FlagFile))
	results = append(results, checkMemory(cfg)...)

	var hasErrors, hasWarnings bool
	for _, r := range results {
		icon := "✓"
		if r.Status == "warn" {
			icon = "!"
			hasWarnings = true
		} else if r.Status == "error" {
			icon = "✗"
			hasErrors = true
		}

		fmt.Printf("│  [%s] %-65s │\n", icon, truncate(r.Name+": "+r.Message, 65))
		for _, detail := range r.Details {
			fmt.Printf("│      %-63s │\n", truncate(detail, 63))
		}
	}

	fmt.Println("│                                                                       │")
	fmt.Println("└───────────────────────────────────────────────────────────────────────┘")

	if hasErrors {
		fmt.Println("\nSome checks failed. Please fix the errors above.")
		return fmt.Errorf("doctor found errors")
	} else if hasWarnings {
		fmt.Println("\nSome warnings found. Review the items above.")
	} else {
		fmt.Println("\nAll checks passed!")
	}

	return nil
}

func checkBinary(name string, versionArgs []string, installHint string) CheckResult {
	path, err := exec.LookPath(name)
	if err != nil {
		return CheckResult{
			Name:    name,
			Status:  "error",
			Message: "not installed",
			Details: []string{installHint},
		}
	}

	output, err := exec.Command(name, versionArgs...).Output()
	if err != nil {
		return CheckResult{
			Name:    name,
			Status:  "warn",
			Message: fmt.Sprintf("installed at %s but version unknown", path),
		}
	}

	version := strings.TrimSpace(strings.SplitN(string(output), "\n", 2)[0])
	return CheckResult{
		Name:    name,
		Status:  "ok",
		Message: version,
	}
}

func checkClaude(cfg *config.Config) CheckResult {
	path, err := exec.LookPath(cfg.ClaudeCmd)
	if err != nil {
		return CheckResult{
			Name:    "claude",
			Status:  "warn",
			Message: fmt.Sprintf("'%s' not on PATH", cfg.ClaudeCmd),
			Details: []string{"Session resume (cct sessions find) needs the claude CLI"},
		}
	}
	return CheckResult{
		Name:    "claude",
		Status:  "ok",
		Message: path,
	}
}

func checkConfig(cfg *config.Config) CheckResult {
	configPath := cfg.ConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return CheckResult{
			Name:    "config",
			Status:  "ok",
			Message: "using defaults (no config.json)",
		}
	}
	return CheckResult{
		Name:    "config",
		Status:  "ok",
		Message: fmt.Sprintf("loaded from %s", configPath),
	}
}

func checkVaultDir(cfg *config.Config) CheckResult {
	dir := cfg.VaultPath()

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:    "vault dir",
			Status:  "ok",
			Message: fmt.Sprintf("%s will be created on first encrypt", dir),
		}
	} else if err != nil {
		return CheckResult{
			Name:    "vault dir",
			Status:  "error",
			Message: fmt.Sprintf("cannot access %s", dir),
			Details: []string{fmt.Sprintf("Error: %v", err)},
		}
	}

	if !info.IsDir() {
		return CheckResult{
			Name:    "vault dir",
			Status:  "error",
			Message: fmt.Sprintf("%s exists but is not a directory", dir),
		}
	}

	testFile := filepath.Join(dir, ".cct-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return CheckResult{
			Name:    "vault dir",
			Status:  "error",
			Message: fmt.Sprintf("%s is not writable", dir),
			Details: []string{fmt.Sprintf("Error: %v", err)},
		}
	}
	os.Remove(testFile)

	return CheckResult{
		Name:    "vault dir",
		Status:  "ok",
		Message: fmt.Sprintf("%s exists and is writable", dir),
	}
}

func checkClaudeHome(cfg *config.Config) CheckResult {
	projects := filepath.Join(cfg.ClaudePath(), "projects")
	entries, err := os.ReadDir(projects)
	if err != nil {
		return CheckResult{
			Name:    "claude home",
			Status:  "warn",
			Message: fmt.Sprintf("no projects directory at %s", projects),
			Details: []string{"Session search has nothing to scan until Claude records a session"},
		}
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() {
			count++
		}
	}
	return CheckResult{
		Name:    "claude home",
		Status:  "ok",
		Message: fmt.Sprintf("%d project(s) under %s", count, projects),
	}
}

func checkGPGKey() CheckResult {
	output, err := exec.Command("gpg", "--list-secret-keys", "--keyid-format", "LONG").Output()
	if err != nil {
		return CheckResult{
			Name:    "gpg key",
			Status:  "warn",
			Message: "cannot list secret keys",
		}
	}

	for _, line := range strings.Split(string(output), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "sec") {
			return CheckResult{
				Name:    "gpg key",
				Status:  "ok",
				Message: "secret key available for vault encryption",
			}
		}
	}
	return CheckResult{
		Name:    "gpg key",
		Status:  "warn",
		Message: "no secret key found",
		Details: []string{"Generate one with: gpg --gen-key"},
	}
}

// checkSettings reports whether Claude Code's settings reference any cct hook
// commands. Installed-but-unwired hooks are the most common setup gap.
func checkSettings(cfg *config.Config) CheckResult {
	path := filepath.Join(cfg.ClaudePath(), "settings.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:    "hook wiring",
			Status:  "warn",
			Message: "no settings.json",
			Details: []string{fmt.Sprintf("Add hook entries to %s (see 'cct hook --help')", path)},
		}
	}
	if err != nil {
		return CheckResult{
			Name:    "hook wiring",
			Status:  "warn",
			Message: fmt.Sprintf("cannot read %s", path),
			Details: []string{fmt.Sprintf("Error: %v", err)},
		}
	}

	n := strings.Count(string(data), "cct hook")
	if n == 0 {
		return CheckResult{
			Name:    "hook wiring",
			Status:  "warn",
			Message: "settings.json has no cct hook entries",
			Details: []string{"See 'cct hook --help' for a settings snippet"},
		}
	}
	return CheckResult{
		Name:    "hook wiring",
		Status:  "ok",
		Message: fmt.Sprintf("%d cct hook command(s) in settings.json", n),
	}
}

// checkHookLimits validates the read-guard configuration here, where the user
// sees it, rather than at decision time where a hook silently approves.
func checkHookLimits(hc config.HookConfig) CheckResult {
	for _, pattern := range hc.ExemptGlobs {
		if _, err := glob.Compile(pattern); err != nil {
			return CheckResult{
				Name:    "hook config",
				Status:  "error",
				Message: fmt.Sprintf("exempt pattern %q does not compile", pattern),
				Details: []string{"Fix hooks.exempt_globs in config.json"},
			}
		}
	}
	if hc.SubagentReadLimit <= hc.MainReadLimit {
		return CheckResult{
			Name:   "hook config",
			Status: "warn",
			Message: fmt.Sprintf("sub-agent read limit (%d) is not above the main limit (%d)",
				hc.SubagentReadLimit, hc.MainReadLimit),
		}
	}
	return CheckResult{
		Name:   "hook config",
		Status: "ok",
		Message: fmt.Sprintf("read limits %d/%d, %d exempt pattern(s)",
			hc.MainReadLimit, hc.SubagentReadLimit, len(hc.ExemptGlobs)),
	}
}

// checkSubtaskFlag warns about a leftover sub-agent flag file, which would
// silently raise the read-guard limit for the main agent.
func checkSubtaskFlag(flagFile string) CheckResult {
	if flagFile == "" {
		return CheckResult{Name: "subtask flag", Status: "ok", Message: "not configured"}
	}
	if _, err := os.Stat(flagFile); err == nil {
		return CheckResult{
			Name:    "subtask flag",
			Status:  "warn",
			Message: fmt.Sprintf("%s is present", flagFile),
			Details: []string{"Run 'cct hook subtask-end' or delete the file if no sub-task is running"},
		}
	}
	return CheckResult{Name: "subtask flag", Status: "ok", Message: "no stale flag"}
}

// Claude loads CLAUDE.md files into every session, so their size is a
// standing context cost.
const memoryWarnBytes = 40 * 1024

func checkMemory(cfg *config.Config) []CheckResult {
	results := []CheckResult{
		memoryFile("global CLAUDE.md", filepath.Join(cfg.ClaudePath(), "CLAUDE.md"), true),
	}
	if root := gitTopLevel(); root != "" {
		results = append(results, memoryFile("project CLAUDE.md", filepath.Join(root, "CLAUDE.md"), false))
	}
	return results
}

func memoryFile(name, path string, optional bool) CheckResult {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if optional {
			return CheckResult{Name: name, Status: "ok", Message: "not present (optional)"}
		}
		return CheckResult{
			Name:    name,
			Status:  "warn",
			Message: "not found",
			Details: []string{fmt.Sprintf("Create %s with project guidelines", path)},
		}
	}
	if err != nil {
		return CheckResult{
			Name:    name,
			Status:  "warn",
			Message: "unreadable",
			Details: []string{fmt.Sprintf("Error: %v", err)},
		}
	}

	body := len(bytes.TrimSpace(data))
	switch {
	case body == 0:
		return CheckResult{Name: name, Status: "warn", Message: "empty"}
	case len(data) > memoryWarnBytes:
		return CheckResult{
			Name:    name,
			Status:  "warn",
			Message: fmt.Sprintf("%d KB of standing context", len(data)/1024),
			Details: []string{"Loaded into every session; consider trimming or splitting it"},
		}
	}
	return CheckResult{Name: name, Status: "ok", Message: fmt.Sprintf("%d bytes", body)}
}

func gitTopLevel() string {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
