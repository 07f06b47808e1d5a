package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, DefaultConfig())
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `max_lines: 250
markdown:
  engine: glamour
  highlight_json: false
view:
  collapse_tools: true
  width: 100
watch:
  debounce_ms: 50
log:
  level: debug
`)
	cfg, err := LoadConfig(path, nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := Config{
		MaxLines: 250,
		Markdown: MarkdownConfig{Engine: engineGlamour, HighlightJSON: false},
		View:     ViewConfig{CollapseTools: true, Width: 100},
		Watch:    WatchConfig{DebounceMS: 50},
		Log:      LogConfig{Level: "debug"},
	}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "max_lines: 250\nview:\n  width: 100\n")

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("TAIL_AGENT_MAX_LINES", "42")
		cfg, err := LoadConfig(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.MaxLines != 42 {
			t.Errorf("max_lines = %d, want 42", cfg.MaxLines)
		}
	})

	t.Run("changed flags override file", func(t *testing.T) {
		cmd := newRootCmd()
		if err := cmd.Flags().Set("width", "60"); err != nil {
			t.Fatal(err)
		}
		if err := cmd.Flags().Set("markdown", "glamour"); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadConfig(path, cmd)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.View.Width != 60 || cfg.Markdown.Engine != engineGlamour {
			t.Errorf("cfg = %+v, want width 60 and glamour", cfg)
		}
		if cfg.MaxLines != 250 {
			t.Errorf("unchanged flag overrode file: max_lines = %d", cfg.MaxLines)
		}
	})
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"engine", "markdown:\n  engine: html\n", "markdown.engine"},
		{"max lines", "max_lines: -1\n", "max_lines"},
		{"width", "view:\n  width: -5\n", "view.width"},
		{"debounce", "watch:\n  debounce_ms: -1\n", "watch.debounce_ms"},
		{"log level", "log:\n  level: loud\n", "log.level"},
		{"bad yaml", "max_lines: [\n", "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeFile(t, path, tt.content)
			_, err := LoadConfig(path, nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	written, err := WriteDefaultConfig(path, false)
	if err != nil {
		t.Fatalf("WriteDefaultConfig: %v", err)
	}
	if written != path {
		t.Errorf("written = %q, want %q", written, path)
	}
	if _, err := WriteDefaultConfig(path, false); err == nil {
		t.Error("second write without overwrite should fail")
	}
	if _, err := WriteDefaultConfig(path, true); err != nil {
		t.Errorf("overwrite: %v", err)
	}

	cfg, err := LoadConfig(path, nil)
	if err != nil {
		t.Fatalf("LoadConfig on written default: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("round trip = %+v, want %+v", cfg, DefaultConfig())
	}
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	root := newRootCmd()
	var out strings.Builder
	root.SetOut(&out)
	root.SetArgs([]string{"--config", path, "config", "init"})
	if err := root.ExecuteContext(t.Context()); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if strings.TrimSpace(out.String()) != path {
		t.Errorf("output = %q, want %q", out.String(), path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config not written: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tail.log")
	logger, closeLog, err := newLogger(LogConfig{File: path, Level: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hello", "n", 1)
	if err := closeLog(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log = %q, want the debug message", data)
	}

	if _, _, err := newLogger(LogConfig{File: filepath.Join(t.TempDir(), "no", "such", "dir", "x.log")}); err == nil {
		t.Error("unwritable log path should fail")
	}
}
