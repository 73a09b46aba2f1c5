package sessions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTranscript(t *testing.T, dir, id string, lines ...string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, id+".jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProjectDir(t *testing.T) {
	got := ProjectDir("/home/u/.claude", "/home/u/work/myproj")
	want := "/home/u/.claude/projects/-home-u-work-myproj"
	if got != want {
		t.Errorf("ProjectDir = %q, want %q", got, want)
	}
}

func TestDecodeProjectDir(t *testing.T) {
	cases := []struct {
		encoded string
		want    string
	}{
		{"-home-u-work-myproj", "/home/u/work/myproj"},
		{"-Users-alice-Git-my-tool", "/Users/alice/Git/my-tool"},
		{"-Users-alice-notes", "/Users/alice/notes"},
	}
	for _, tc := range cases {
		if got := decodeProjectDir(tc.encoded); got != tc.want {
			t.Errorf("decodeProjectDir(%q) = %q, want %q", tc.encoded, got, tc.want)
		}
	}
}

func TestAllProjects(t *testing.T) {
	home := t.TempDir()
	for _, name := range []string{"-home-u-alpha", "-home-u-beta"} {
		if err := os.MkdirAll(filepath.Join(home, "projects", name), 0755); err != nil {
			t.Fatal(err)
		}
	}

	projects, err := AllProjects(home)
	if err != nil {
		t.Fatalf("AllProjects failed: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	names := []string{projects[0].Name, projects[1].Name}
	if names[0] != "alpha" && names[1] != "alpha" {
		t.Errorf("expected a project named alpha, got %v", names)
	}
}

func TestAllProjects_NoProjectsDir(t *testing.T) {
	projects, err := AllProjects(t.TempDir())
	if err != nil {
		t.Fatalf("AllProjects failed: %v", err)
	}
	if projects != nil {
		t.Errorf("expected nil, got %v", projects)
	}
}

func TestParseKeywords(t *testing.T) {
	got := ParseKeywords(" langroid, MCP ,,bug fix ")
	want := []string{"langroid", "MCP", "bug fix"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAll_ListsEveryTranscript(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "aaa",
		`{"type":"message","role":"user","content":"first topic"}`)
	writeTranscript(t, dir, "bbb",
		`{"type":"message","role":"user","content":"second topic"}`)

	project := Project{Dir: dir, Path: "/w/p", Name: "p"}
	all, err := All([]Project{project})
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both transcripts regardless of keywords, got %d", len(all))
	}
}

func TestFind_RequiresAllKeywords(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "both",
		`{"type":"message","role":"user","content":"debug the langroid MCP bridge"}`)
	writeTranscript(t, dir, "partial",
		`{"type":"message","role":"user","content":"just langroid here"}`)

	project := Project{Dir: dir, Path: "/w/p", Name: "p"}
	found, err := Find([]Project{project}, []string{"langroid", "mcp"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(found) != 1 || found[0].ID != "both" {
		t.Fatalf("expected only session 'both', got %v", found)
	}
	if found[0].Lines != 1 {
		t.Errorf("expected 1 line, got %d", found[0].Lines)
	}
}

func TestFind_CaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "s1",
		`{"type":"message","role":"user","content":"TypeError in Parser"}`)

	found, err := Find([]Project{{Dir: dir, Path: "/w/p", Name: "p"}}, []string{"typeerror"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 match, got %d", len(found))
	}
}

func TestFind_KeywordsSpanLines(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "s1",
		`{"type":"message","role":"user","content":"first the alpha part"}`,
		`{"type":"message","role":"assistant","content":"then the beta part"}`)

	found, err := Find([]Project{{Dir: dir, Path: "/w/p", Name: "p"}}, []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 match, got %d", len(found))
	}
	if found[0].Lines != 2 {
		t.Errorf("expected 2 lines, got %d", found[0].Lines)
	}
}

func TestFind_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeTranscript(t, dir, "old",
		`{"type":"message","role":"user","content":"shared keyword"}`)
	writeTranscript(t, dir, "new",
		`{"type":"message","role":"user","content":"shared keyword"}`)

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatal(err)
	}

	found, err := Find([]Project{{Dir: dir, Path: "/w/p", Name: "p"}}, []string{"shared"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(found))
	}
	if found[0].ID != "new" || found[1].ID != "old" {
		t.Errorf("expected newest first, got %s then %s", found[0].ID, found[1].ID)
	}
}

func TestPreview_StringContent(t *testing.T) {
	dir := t.TempDir()
	path := writeTranscript(t, dir, "s1",
		`{"type":"summary","summary":"irrelevant"}`,
		`{"type":"message","role":"assistant","content":"not a user turn"}`,
		`{"type":"message","role":"user","content":"fix the   flaky\ntest in ci"}`)

	if got := Preview(path); got != "fix the flaky test in ci" {
		t.Errorf("Preview = %q", got)
	}
}

func TestPreview_BlockContent(t *testing.T) {
	dir := t.TempDir()
	path := writeTranscript(t, dir, "s1",
		`{"type":"message","role":"user","content":[{"type":"text","text":"structured message"}]}`)

	if got := Preview(path); got != "structured message" {
		t.Errorf("Preview = %q", got)
	}
}

func TestPreview_Truncates(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("x", 100)
	path := writeTranscript(t, dir, "s1",
		`{"type":"message","role":"user","content":"`+long+`"}`)

	got := Preview(path)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncation marker, got %q", got)
	}
	if len([]rune(got)) != previewLen+3 {
		t.Errorf("expected %d runes, got %d", previewLen+3, len([]rune(got)))
	}
}

func TestPreview_NoUserMessage(t *testing.T) {
	dir := t.TempDir()
	path := writeTranscript(t, dir, "s1", `{"type":"summary"}`)

	if got := Preview(path); got != "No preview available" {
		t.Errorf("Preview = %q", got)
	}
}

func TestIndex_RecordAndRecent(t *testing.T) {
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenIndex failed: %v", err)
	}
	defer ix.Close()

	now := time.Now().UTC().Truncate(time.Second)
	sessions := []Session{
		{ID: "a", Path: "/p/a.jsonl", ProjectName: "p", ProjectPath: "/w/p", ModTime: now.Add(-time.Hour), Lines: 5, Preview: "old"},
		{ID: "b", Path: "/p/b.jsonl", ProjectName: "p", ProjectPath: "/w/p", ModTime: now, Lines: 9, Preview: "new"},
	}
	if err := ix.RecordAll(sessions); err != nil {
		t.Fatalf("RecordAll failed: %v", err)
	}

	recent, err := ix.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recent))
	}
	if recent[0].ID != "b" {
		t.Errorf("expected newest first, got %s", recent[0].ID)
	}
	if recent[0].Lines != 9 || recent[0].Preview != "new" {
		t.Errorf("unexpected row: %+v", recent[0])
	}
}

func TestIndex_RecordUpserts(t *testing.T) {
	ix, err := OpenIndex(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenIndex failed: %v", err)
	}
	defer ix.Close()

	s := Session{ID: "a", Path: "/p/a.jsonl", ProjectName: "p", ProjectPath: "/w/p", ModTime: time.Now(), Lines: 1, Preview: "v1"}
	if err := ix.Record(s); err != nil {
		t.Fatal(err)
	}
	s.Lines = 7
	s.Preview = "v2"
	if err := ix.Record(s); err != nil {
		t.Fatal(err)
	}

	recent, err := ix.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 row after upsert, got %d", len(recent))
	}
	if recent[0].Lines != 7 || recent[0].Preview != "v2" {
		t.Errorf("expected updated row, got %+v", recent[0])
	}
}
