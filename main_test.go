package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/kylesnowschwartz/tail-agent/termtext"
)

const sampleTranscript = `{"text":"**hello** there"}
{"text":"[●] Read {\"path\":\"main.go\"}"}
{"text":"[●] Bash ls","toolError":"exit status 1"}
[✓] build ok
`

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out strings.Builder
	root.SetOut(&out)
	root.SetIn(strings.NewReader(stdin))
	cfg := filepath.Join(t.TempDir(), "none.yaml")
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.ExecuteContext(t.Context())
	return termtext.Strip(out.String()), err
}

func TestDumpCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	writeFile(t, path, sampleTranscript)

	t.Run("renders every block", func(t *testing.T) {
		out, err := runRoot(t, "", "--dump", "--width", "60", path)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{
			"hello there",
			"▾ Tools · 2 calls · 1 error",
			`[●] Read {"path":"main.go"}`,
			"↳ error: exit status 1",
			"build ok",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("dump missing %q:\n%s", want, out)
			}
		}
		for i, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
			if w := termtext.VisualWidth(line); w > 60 {
				t.Errorf("line %d width %d > 60: %q", i, w, line)
			}
		}
	})

	t.Run("collapse tools folds groups", func(t *testing.T) {
		out, err := runRoot(t, "", "--dump", "--collapse-tools", path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "▸ Tools") || strings.Contains(out, "Bash ls") {
			t.Errorf("tool group not folded:\n%s", out)
		}
	})

	t.Run("expand wins over collapse tools", func(t *testing.T) {
		out, err := runRoot(t, "", "--dump", "--collapse-tools", "--expand", path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "Bash ls") {
			t.Errorf("--expand should show tool lines:\n%s", out)
		}
	})

	t.Run("glamour engine", func(t *testing.T) {
		out, err := runRoot(t, "", "--dump", "--markdown", "glamour", path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "hello") {
			t.Errorf("glamour dump missing prose:\n%s", out)
		}
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := runRoot(t, "from stdin\nno newline", "--dump")
		if err != nil {
			t.Fatal(err)
		}
		if strings.TrimSpace(out) != "from stdin\nno newline" {
			t.Errorf("out = %q", out)
		}
	})
}

func TestRootCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no path without dump", nil, "transcript path is required"},
		{"missing file", []string{filepath.Join(t.TempDir(), "gone.jsonl")}, "load"},
		{"bad engine", []string{"--markdown", "html", "--dump"}, "markdown.engine"},
		{"too many args", []string{"a", "b"}, "accepts at most 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runRoot(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
