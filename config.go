package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the viewer configuration. Values come from defaults, then the
// YAML file, then TAIL_AGENT_* environment variables, then flags.
type Config struct {
	MaxLines int            `mapstructure:"max_lines" yaml:"max_lines"`
	Markdown MarkdownConfig `mapstructure:"markdown" yaml:"markdown"`
	View     ViewConfig     `mapstructure:"view" yaml:"view"`
	Watch    WatchConfig    `mapstructure:"watch" yaml:"watch"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// MarkdownConfig selects how assistant prose is rendered.
type MarkdownConfig struct {
	Engine        string `mapstructure:"engine" yaml:"engine"`
	HighlightJSON bool   `mapstructure:"highlight_json" yaml:"highlight_json"`
}

// ViewConfig controls layout. Width 0 means the terminal width.
type ViewConfig struct {
	CollapseTools bool `mapstructure:"collapse_tools" yaml:"collapse_tools"`
	Width         int  `mapstructure:"width" yaml:"width"`
}

// WatchConfig controls live tailing.
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// LogConfig controls the structured log. An empty File discards it; the
// alt screen owns the terminal, so logs never go to stderr while the TUI runs.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

const (
	engineNative  = "native"
	engineGlamour = "glamour"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		MaxLines: 10000,
		Markdown: MarkdownConfig{Engine: engineNative, HighlightJSON: true},
		Watch:    WatchConfig{DebounceMS: 500},
		Log:      LogConfig{Level: "info"},
	}
}

// DefaultConfigPath is $XDG_CONFIG_HOME/tail-agent/config.yaml or the
// platform equivalent.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "tail-agent", "config.yaml"), nil
}

// flagKeys maps command-line flags to the config keys they override.
var flagKeys = map[string]string{
	"max-lines":      "max_lines",
	"markdown":       "markdown.engine",
	"highlight-json": "markdown.highlight_json",
	"width":          "view.width",
	"collapse-tools": "view.collapse_tools",
	"log-file":       "log.file",
	"log-level":      "log.level",
}

// LoadConfig reads the config at path, or the default path when empty.
// A missing file is not an error. When cmd is non-nil its changed flags
// take precedence over the file.
func LoadConfig(path string, cmd *cobra.Command) (Config, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	cfg := DefaultConfig()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TAIL_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("max_lines", cfg.MaxLines)
	v.SetDefault("markdown.engine", cfg.Markdown.Engine)
	v.SetDefault("markdown.highlight_json", cfg.Markdown.HighlightJSON)
	v.SetDefault("view.collapse_tools", cfg.View.CollapseTools)
	v.SetDefault("view.width", cfg.View.Width)
	v.SetDefault("watch.debounce_ms", cfg.Watch.DebounceMS)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.level", cfg.Log.Level)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if cmd != nil {
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Markdown.Engine {
	case engineNative, engineGlamour:
	default:
		return fmt.Errorf("markdown.engine must be %q or %q, got %q", engineNative, engineGlamour, c.Markdown.Engine)
	}
	if c.MaxLines < 0 {
		return fmt.Errorf("max_lines must not be negative")
	}
	if c.View.Width < 0 {
		return fmt.Errorf("view.width must not be negative")
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative")
	}
	if _, ok := logLevels[strings.ToLower(c.Log.Level)]; !ok {
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	return nil
}

// WriteDefaultConfig writes the default config to path, or the default path
// when empty, and returns where it went.
func WriteDefaultConfig(path string, overwrite bool) (string, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = p
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
