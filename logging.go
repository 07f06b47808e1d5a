package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"pkt.systems/pslog"
)

var logLevels = map[string]struct{}{
	"trace": {},
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// newLogger opens the structured log described by cfg. The returned close
// func releases the log file, if any.
func newLogger(cfg LogConfig) (pslog.Logger, func() error, error) {
	var w io.Writer = io.Discard
	closeFn := func() error { return nil }
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = f.Close
	}

	opts := pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.InfoLevel,
	}
	switch strings.ToLower(cfg.Level) {
	case "trace":
		opts.MinLevel = pslog.TraceLevel
	case "debug":
		opts.MinLevel = pslog.DebugLevel
	case "warn":
		opts.MinLevel = pslog.WarnLevel
	case "error":
		opts.MinLevel = pslog.ErrorLevel
	}
	return pslog.NewWithOptions(w, opts), closeFn, nil
}
