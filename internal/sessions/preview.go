package sessions

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"
)

const previewLen = 60

// transcriptLine is the subset of a transcript record needed for previews.
// Content is either a plain string or a list of typed blocks.
type transcriptLine struct {
	Type    string          `json:"type"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Preview returns the first user message of a transcript, truncated for
// table display.
func Preview(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "No preview available"
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if text, ok := firstUserText(line); ok {
			return truncate(text)
		}
		if err == io.EOF || err != nil {
			return "No preview available"
		}
	}
}

func firstUserText(line string) (string, bool) {
	var rec transcriptLine
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return "", false
	}
	if rec.Type != "message" || rec.Role != "user" || len(rec.Content) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(rec.Content, &s); err == nil {
		return s, true
	}

	var blocks []contentBlock
	if err := json.Unmarshal(rec.Content, &blocks); err == nil {
		for _, b := range blocks {
			if b.Type == "text" && b.Text != "" {
				return b.Text, true
			}
		}
	}
	return "", false
}

func truncate(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen]) + "..."
}
