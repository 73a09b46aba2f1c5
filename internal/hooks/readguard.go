package hooks

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/gobwas/glob"
)

// ReadGuard blocks reads of large text files so the agent delegates the
// analysis instead of pulling the whole file into its context. The limits
// differ by execution context: the main agent should hand big files to a
// sub-agent, and a sub-agent should hand very big files to an external
// analyzer with a larger context window.
type ReadGuard struct {
	MainLimit     int
	SubagentLimit int
	FlagFile      string
	exempt        []glob.Glob
}

// NewReadGuard compiles the exempt patterns; a pattern that does not
// compile is reported rather than silently skipped.
func NewReadGuard(mainLimit, subagentLimit int, flagFile string, exemptGlobs []string) (*ReadGuard, error) {
	g := &ReadGuard{
		MainLimit:     mainLimit,
		SubagentLimit: subagentLimit,
		FlagFile:      flagFile,
	}
	for _, pattern := range exemptGlobs {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad exempt pattern %q: %w", pattern, err)
		}
		g.exempt = append(g.exempt, compiled)
	}
	return g, nil
}

// Check decides whether a Read tool call may proceed.
func (g *ReadGuard) Check(in ToolInput) Decision {
	if in.FilePath == "" {
		return Approve()
	}
	for _, pattern := range g.exempt {
		if pattern.Match(in.FilePath) {
			return Approve()
		}
	}
	if _, err := os.Stat(in.FilePath); err != nil {
		return Approve()
	}

	binary, err := isBinary(in.FilePath)
	if err != nil || binary {
		return Approve()
	}

	total, err := countLines(in.FilePath)
	if err != nil {
		return Approve()
	}
	lines := effectiveLines(total, in.Offset, in.Limit)

	inSubagent := false
	if g.FlagFile != "" {
		if _, err := os.Stat(g.FlagFile); err == nil {
			inSubagent = true
		}
	}

	switch {
	case !inSubagent && lines > g.MainLimit:
		return Block(fmt.Sprintf(
			"This read would pull %d lines of %s into your context.\n"+
				"Please delegate the analysis to a SUB-AGENT using your Task tool,\n"+
				"so you don't bloat your context with the file content!",
			lines, in.FilePath))
	case inSubagent && lines > g.SubagentLimit:
		return Block(fmt.Sprintf(
			"File too large (%d lines). Delegate the analysis to an external\n"+
				"analyzer with a larger context window instead of reading it here,\n"+
				"e.g. an auxiliary CLI that accepts the file as an attachment.",
			lines))
	}
	return Approve()
}

// effectiveLines is how many lines the read would actually return given
// the offset and limit parameters.
func effectiveLines(total, offset, limit int) int {
	remaining := total - offset
	if remaining < 0 {
		remaining = 0
	}
	if limit > 0 && limit < remaining {
		return limit
	}
	return remaining
}

// isBinary sniffs the first 8 KiB for null bytes or invalid UTF-8.
func isBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return true, err
	}
	defer f.Close()

	buf := make([]byte, 8192)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true, err
	}
	chunk := buf[:n]
	if len(chunk) == 0 {
		return false, nil
	}
	if bytes.IndexByte(chunk, 0) >= 0 {
		return true, nil
	}
	// The sniff window may end mid-rune; trim up to one rune's worth of
	// trailing bytes before validating.
	for i := 0; i < utf8.UTFMax && len(chunk) > 0 && !utf8.Valid(chunk); i++ {
		chunk = chunk[:len(chunk)-1]
	}
	return !utf8.Valid(chunk), nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		// A final line without a trailing newline still counts.
		if line != "" {
			count++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	return count, nil
}
