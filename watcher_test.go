package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kylesnowschwartz/tail-agent/parser"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func appendFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
}

func texts(ls []parser.OutputLine) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Text
	}
	return out
}

func TestWatcherReadAndSend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	writeFile(t, path, "first\n")
	w := newTranscriptWatcher(path, 0, time.Millisecond, testLogger())

	w.readAndSend()
	u := <-w.sub
	if got := texts(u.lines); len(got) != 1 || got[0] != "first" {
		t.Fatalf("lines = %v, want [first]", got)
	}
	if u.reset {
		t.Error("first read should not reset")
	}

	t.Run("nothing new sends nothing", func(t *testing.T) {
		w.readAndSend()
		select {
		case u := <-w.sub:
			t.Fatalf("unexpected update %+v", u)
		default:
		}
	})

	t.Run("partial line waits for its newline", func(t *testing.T) {
		appendFile(t, path, `{"text":"sec`)
		w.readAndSend()
		select {
		case u := <-w.sub:
			t.Fatalf("unexpected update %+v", u)
		default:
		}
		appendFile(t, path, "ond\"}\n")
		w.readAndSend()
		u := <-w.sub
		if got := texts(u.lines); len(got) != 1 || got[0] != "second" {
			t.Fatalf("lines = %v, want [second]", got)
		}
	})

	t.Run("pending updates are merged", func(t *testing.T) {
		appendFile(t, path, "a\n")
		w.readAndSend()
		appendFile(t, path, "b\n")
		w.readAndSend()
		u := <-w.sub
		if got := texts(u.lines); len(got) != 2 || got[0] != "a" || got[1] != "b" {
			t.Fatalf("lines = %v, want [a b]", got)
		}
	})

	t.Run("truncation resets", func(t *testing.T) {
		writeFile(t, path, "new\n")
		w.readAndSend()
		u := <-w.sub
		if !u.reset {
			t.Error("shrunk file should reset")
		}
		if got := texts(u.lines); len(got) != 1 || got[0] != "new" {
			t.Fatalf("lines = %v, want [new]", got)
		}
	})

	t.Run("stats records travel separately", func(t *testing.T) {
		appendFile(t, path, `{"stats":{"subagentId":"a1","inputTokens":10}}`+"\n")
		w.readAndSend()
		u := <-w.sub
		if len(u.lines) != 0 || len(u.stats) != 1 || u.stats[0].SubagentID != "a1" {
			t.Fatalf("update = %+v", u)
		}
	})
}

func TestWatcherMissingFile(t *testing.T) {
	w := newTranscriptWatcher(filepath.Join(t.TempDir(), "gone.jsonl"), 0, 0, testLogger())
	if w.debounce != defaultDebounce {
		t.Errorf("debounce = %v, want default", w.debounce)
	}
	w.readAndSend()
	select {
	case err := <-w.errc:
		if err == nil {
			t.Error("want an error")
		}
	default:
		t.Fatal("missing file should report an error")
	}
}

func TestTailUpdateMerge(t *testing.T) {
	a := tailUpdateMsg{lines: lines("a")}
	b := tailUpdateMsg{lines: lines("b")}
	if got := texts(a.merge(b).lines); len(got) != 2 {
		t.Errorf("merge = %v, want [a b]", got)
	}

	reset := tailUpdateMsg{lines: lines("r"), reset: true}
	got := a.merge(reset)
	if !got.reset || len(got.lines) != 1 {
		t.Errorf("merge with reset = %+v, want the reset alone", got)
	}

	got = reset.merge(b)
	if !got.reset || len(got.lines) != 2 {
		t.Errorf("reset then append = %+v, want reset with both lines", got)
	}
}

func TestWatcherRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	writeFile(t, path, "")
	w := newTranscriptWatcher(path, 0, 10*time.Millisecond, testLogger())
	go w.run()
	defer w.stop()

	appendFile(t, path, "hello\n")

	deadline := time.After(5 * time.Second)
	var got []string
	for len(got) == 0 {
		select {
		case u, ok := <-w.sub:
			if !ok {
				t.Fatal("watcher stopped")
			}
			got = append(got, texts(u.lines)...)
		case err := <-w.errc:
			t.Fatalf("watcher error: %v", err)
		case <-deadline:
			t.Fatal("timed out waiting for update")
		}
	}
	if got[0] != "hello" {
		t.Errorf("lines = %v, want [hello]", got)
	}

	w.stop()
	w.stop() // idempotent
}
