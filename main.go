package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/kylesnowschwartz/tail-agent/parser"
)

// dumpWidth is the fallback width for --dump when stdout is not a terminal.
const dumpWidth = 120

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("tail-agent failed")
		return 1
	}
	return 0
}

// rootFlags holds flags that are not config keys. Config-backed flags are
// read through viper in LoadConfig.
type rootFlags struct {
	configPath string
	dump       bool
	expand     bool
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	def := DefaultConfig()

	root := &cobra.Command{
		Use:           "tail-agent [transcript.jsonl]",
		Short:         "Live terminal viewer for agent transcripts",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runViewer(cmd, args, f)
		},
	}

	root.PersistentFlags().StringVar(&f.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tail-agent/config.yaml)")
	fl := root.Flags()
	fl.BoolVar(&f.dump, "dump", false, "print the rendered transcript to stdout and exit")
	fl.BoolVar(&f.expand, "expand", false, "start with every block expanded")
	fl.Int("width", def.View.Width, "render width (0 = terminal width)")
	fl.String("markdown", def.Markdown.Engine, "markdown engine: native or glamour")
	fl.Bool("highlight-json", def.Markdown.HighlightJSON, "syntax-highlight JSON tool arguments")
	fl.Int("max-lines", def.MaxLines, "transcript lines kept in memory (0 = unlimited)")
	fl.Bool("collapse-tools", def.View.CollapseTools, "fold tool groups when they appear")
	fl.String("log-file", def.Log.File, "structured log destination")
	fl.String("log-level", def.Log.Level, "log level: trace, debug, info, warn, error")

	root.AddCommand(newConfigCmd(&f))
	return root
}

func newConfigCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := WriteDefaultConfig(f.configPath, force)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	cmd.AddCommand(initCmd)
	return cmd
}

func runViewer(cmd *cobra.Command, args []string, f rootFlags) error {
	cfg, err := LoadConfig(f.configPath, cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()
	ctx := pslog.ContextWithLogger(cmd.Context(), logger)

	hasDarkBg := detectDarkBackground()
	md, err := markdownEngine(cfg.Markdown.Engine, hasDarkBg, logger)
	if err != nil {
		return err
	}
	var styler func(string) string
	if cfg.Markdown.HighlightJSON {
		styler = newJSONHL(hasDarkBg).styleToolLine
	}

	t := parser.NewTranscript(cfg.MaxLines)
	var path string
	var offset int64
	switch {
	case len(args) == 1:
		path = args[0]
		lines, stats, off, err := parser.ReadLinesIncremental(path, 0)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		loadTranscript(t, lines, stats)
		offset = off
	case f.dump:
		lines, stats, err := parser.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		loadTranscript(t, lines, stats)
	default:
		return errors.New("a transcript path is required unless --dump reads stdin")
	}
	logger.Info("transcript loaded", "path", path, "lines", t.Len(), "evicted", t.Evicted(), "engine", cfg.Markdown.Engine)

	m := initialModel(t, modelOptions{
		maxLines:      cfg.MaxLines,
		maxWidth:      cfg.View.Width,
		collapseTools: cfg.View.CollapseTools && !f.expand,
		markdown:      md,
		toolStyler:    styler,
		log:           logger,
	})

	if f.dump {
		width := cfg.View.Width
		if width == 0 {
			width = terminalWidth(cmd.OutOrStdout())
		}
		m.renderer.Width = width
		return m.dump(cmd.OutOrStdout())
	}

	watcher := newTranscriptWatcher(path, offset, time.Duration(cfg.Watch.DebounceMS)*time.Millisecond, logger)
	go watcher.run()
	defer watcher.stop()

	m.path = path
	m.watching = true
	m.watcher = watcher
	m.tailSub = watcher.sub
	m.tailErrc = watcher.errc

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}

// loadTranscript applies an initial read. Stats go first so subagent blocks
// pick them up on the first grouping.
func loadTranscript(t *parser.Transcript, lines []parser.OutputLine, stats []parser.StatsRecord) {
	for _, st := range stats {
		t.SetStats(st.SubagentID, st.Stats)
	}
	t.Append(lines...)
}

// terminalWidth returns the width of w when it is a terminal.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return dumpWidth
}
