// Package sessions finds Claude Code session transcripts. Each project gets
// a directory under <claude home>/projects/ whose name is the project's
// working directory with "/" replaced by "-"; sessions are JSONL files named
// by session ID.
package sessions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Project is one Claude project directory and the working directory it
// was derived from.
type Project struct {
	Dir  string // transcript directory under <claude home>/projects
	Path string // reconstructed original working directory
	Name string // last path component, for display
}

// ProjectDir returns the transcript directory for a working directory.
func ProjectDir(claudeHome, workDir string) string {
	encoded := strings.ReplaceAll(workDir, "/", "-")
	return filepath.Join(claudeHome, "projects", encoded)
}

// CurrentProject resolves the project for the current working directory.
// It fails if Claude has never recorded a session there.
func CurrentProject(claudeHome string) (Project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Project{}, fmt.Errorf("getting working directory: %w", err)
	}

	dir := ProjectDir(claudeHome, cwd)
	if _, err := os.Stat(dir); err != nil {
		return Project{}, fmt.Errorf("no session directory for %s (expected %s)", cwd, dir)
	}

	return Project{Dir: dir, Path: cwd, Name: projectName(cwd)}, nil
}

// AllProjects enumerates every project directory under the Claude home.
// Missing projects directory is not an error; there are just no sessions yet.
func AllProjects(claudeHome string) ([]Project, error) {
	projectsDir := filepath.Join(claudeHome, "projects")
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", projectsDir, err)
	}

	var projects []Project
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := decodeProjectDir(e.Name())
		projects = append(projects, Project{
			Dir:  filepath.Join(projectsDir, e.Name()),
			Path: path,
			Name: projectName(path),
		})
	}
	return projects, nil
}

// decodeProjectDir reconstructs a working directory from an encoded name.
// The encoding is lossy (hyphens inside path components are indistinguishable
// from separators), so this is a best-effort guess; "/Users/<name>/Git/<rest>"
// is special-cased because the Git component commonly precedes a hyphenated
// repo name.
func decodeProjectDir(name string) string {
	trimmed := strings.TrimPrefix(name, "-")

	if strings.HasPrefix(name, "-Users-") {
		parts := strings.Split(trimmed, "-")
		if len(parts) >= 2 {
			path := "/" + parts[0] + "/" + parts[1]
			rest := strings.Join(parts[2:], "-")
			switch {
			case strings.HasPrefix(rest, "Git-"):
				return path + "/Git/" + strings.TrimPrefix(rest, "Git-")
			case rest != "":
				return path + "/" + rest
			}
			return path
		}
	}

	return "/" + strings.ReplaceAll(trimmed, "-", "/")
}

func projectName(path string) string {
	if name := filepath.Base(strings.TrimRight(path, "/")); name != "." && name != "/" {
		return name
	}
	return "unknown"
}
