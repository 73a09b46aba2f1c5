package sessions

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Session is one matching transcript.
type Session struct {
	ID          string
	Path        string
	ModTime     time.Time
	Lines       int
	Preview     string
	ProjectName string
	ProjectPath string
}

// Find returns sessions in the given projects whose transcripts contain ALL
// keywords, case-insensitively, newest first. Unreadable files are skipped.
func Find(projects []Project, keywords []string) ([]Session, error) {
	var matches []Session
	for _, p := range projects {
		files, err := filepath.Glob(filepath.Join(p.Dir, "*.jsonl"))
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			ok, lines := scanTranscript(path, keywords)
			if !ok {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			matches = append(matches, Session{
				ID:          strings.TrimSuffix(filepath.Base(path), ".jsonl"),
				Path:        path,
				ModTime:     info.ModTime(),
				Lines:       lines,
				Preview:     Preview(path),
				ProjectName: p.Name,
				ProjectPath: p.Path,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ModTime.After(matches[j].ModTime)
	})
	return matches, nil
}

// All returns every session in the given projects, newest first.
func All(projects []Project) ([]Session, error) {
	return Find(projects, nil)
}

// ParseKeywords splits a comma-separated keyword argument, dropping blanks.
func ParseKeywords(arg string) []string {
	var keywords []string
	for _, k := range strings.Split(arg, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// scanTranscript reports whether every keyword appears somewhere in the file
// and how many lines it has; with no keywords every readable transcript
// matches. Transcript lines can be very long, so it reads with ReadString
// rather than a fixed-buffer scanner.
func scanTranscript(path string, keywords []string) (bool, int) {
	f, err := os.Open(path)
	if err != nil {
		return false, 0
	}
	defer f.Close()

	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	found := make([]bool, len(lowered))

	lines := 0
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			lines++
			lineLower := strings.ToLower(line)
			for i, k := range lowered {
				if !found[i] && strings.Contains(lineLower, k) {
					found[i] = true
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, 0
		}
	}

	for _, f := range found {
		if !f {
			return false, lines
		}
	}
	return true, lines
}
