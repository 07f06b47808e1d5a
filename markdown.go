package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"pkt.systems/pslog"

	"github.com/kylesnowschwartz/tail-agent/markdown"
	"github.com/kylesnowschwartz/tail-agent/viewport"
)

// mdRenderer caches a glamour terminal renderer at a specific width.
// Recreates the renderer when the width changes.
type mdRenderer struct {
	renderer  *glamour.TermRenderer
	width     int
	hasDarkBg bool
	log       pslog.Logger
}

// autoStyle returns the appropriate glamour style config with Document.Margin
// zeroed out so the viewport owns indentation.
func autoStyle(hasDarkBg bool) ansi.StyleConfig {
	var style ansi.StyleConfig
	switch {
	case !term.IsTerminal(int(os.Stdout.Fd())):
		style = styles.NoTTYStyleConfig
	case hasDarkBg:
		style = styles.DarkStyleConfig
	default:
		style = styles.LightStyleConfig
	}
	style.Document.Margin = uintPtr(0)
	return style
}

func uintPtr(v uint) *uint { return &v }

// render renders markdown content for terminal display.
// Returns the original content on error.
func (r *mdRenderer) render(content string, width int) string {
	if width <= 0 {
		return content
	}
	if r.renderer == nil || r.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStyles(autoStyle(r.hasDarkBg)),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			r.log.Debug("glamour renderer init failed", "err", err, "width", width)
			return content
		}
		r.renderer = renderer
		r.width = width
	}
	out, err := r.renderer.Render(content)
	if err != nil {
		r.log.Debug("glamour render failed", "err", err)
		return content
	}
	return strings.Trim(out, "\n")
}

// nativeMarkdown wraps the built-in renderer, logging documents it had to
// pass through unrendered.
func nativeMarkdown(log pslog.Logger) viewport.MarkdownFunc {
	return func(src string, width int) string {
		out, err := markdown.TryRender(src, width)
		if err != nil {
			log.Debug("markdown render failed", "err", err)
		}
		return out
	}
}

// markdownEngine returns the MarkdownFunc for a configured engine name.
func markdownEngine(name string, hasDarkBg bool, log pslog.Logger) (viewport.MarkdownFunc, error) {
	switch name {
	case engineNative, "":
		return nativeMarkdown(log), nil
	case engineGlamour:
		r := &mdRenderer{hasDarkBg: hasDarkBg, log: log}
		return r.render, nil
	default:
		return nil, fmt.Errorf("unknown markdown engine %q", name)
	}
}

// detectDarkBackground queries the terminal only when stdout is one.
func detectDarkBackground() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return true
	}
	return termenv.HasDarkBackground()
}
