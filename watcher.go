package main

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"pkt.systems/pslog"

	"github.com/kylesnowschwartz/tail-agent/parser"
)

// defaultDebounce is the delay after the last write event before the file
// is re-read. It coalesces bursts of appended lines into one update.
const defaultDebounce = 500 * time.Millisecond

// tailUpdateMsg carries lines appended to the transcript since the last
// update. reset means the file was truncated or replaced: the receiver must
// drop what it holds before applying lines.
type tailUpdateMsg struct {
	lines []parser.OutputLine
	stats []parser.StatsRecord
	reset bool
}

// merge folds next into a pending update that was never consumed.
func (u tailUpdateMsg) merge(next tailUpdateMsg) tailUpdateMsg {
	if next.reset {
		return next
	}
	return tailUpdateMsg{
		lines: append(u.lines, next.lines...),
		stats: append(u.stats, next.stats...),
		reset: u.reset,
	}
}

// watcherErrMsg reports errors from the file watcher goroutine.
type watcherErrMsg struct {
	err error
}

// transcriptWatcher monitors a transcript file for appended lines and
// pushes them through a channel.
//
// All data processing (offset, reads) happens on the single run()
// goroutine. Timer callbacks send signals instead of calling methods
// directly, avoiding data races.
type transcriptWatcher struct {
	path     string
	offset   int64
	debounce time.Duration
	log      pslog.Logger

	sub     chan tailUpdateMsg
	errc    chan error
	done    chan struct{}
	signals chan struct{} // debounced read trigger; capacity 1

	// Guards the debounce timer so stop() can cancel it safely.
	// Does NOT guard offset, which only run() touches.
	mu    sync.Mutex
	timer *time.Timer
	once  sync.Once
}

func newTranscriptWatcher(path string, offset int64, debounce time.Duration, log pslog.Logger) *transcriptWatcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &transcriptWatcher{
		path:     path,
		offset:   offset,
		debounce: debounce,
		log:      log,
		sub:      make(chan tailUpdateMsg, 1),
		errc:     make(chan error, 1),
		done:     make(chan struct{}),
		signals:  make(chan struct{}, 1),
	}
}

// stop signals the watcher goroutine to exit and cancels any pending debounce.
func (w *transcriptWatcher) stop() {
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
}

// sendSignal does a non-blocking send on the signals channel.
// If a signal is already pending this is a no-op.
func (w *transcriptWatcher) sendSignal() {
	select {
	case w.signals <- struct{}{}:
	default:
	}
}

func (w *transcriptWatcher) schedule() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.sendSignal)
	w.mu.Unlock()
}

// run starts the fsnotify loop. Intended to be called as a goroutine.
// It watches the transcript's directory rather than the file so that a
// rotated or recreated transcript is picked up.
//
// Closes sub and errc on exit so blocked waitForTailUpdate/waitForWatcherErr
// Cmds unblock and return nil instead of leaking goroutines.
func (w *transcriptWatcher) run() {
	defer close(w.sub)
	defer close(w.errc)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.errc <- err
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		w.errc <- err
		return
	}
	w.log.Debug("watching transcript", "path", w.path, "offset", w.offset)

	// Catch anything written between the initial read and the watch.
	w.sendSignal()

	for {
		select {
		case <-w.done:
			return

		case <-w.signals:
			w.readAndSend()

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.schedule()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

// report forwards a non-fatal error to the TUI without blocking.
func (w *transcriptWatcher) report(err error) {
	w.log.Warn("transcript watcher error", "err", err)
	select {
	case w.errc <- err:
	default:
	}
}

// readAndSend reads lines appended since the last offset and sends them.
// Only called from run().
func (w *transcriptWatcher) readAndSend() {
	update, ok := w.read()
	if !ok {
		return
	}

	// Updates are deltas, so a pending one is merged rather than dropped.
	select {
	case w.sub <- update:
	default:
		select {
		case pending := <-w.sub:
			update = pending.merge(update)
		default:
		}
		w.sub <- update
	}
}

// read performs one incremental read. ok is false when there is nothing to
// send.
func (w *transcriptWatcher) read() (tailUpdateMsg, bool) {
	lines, stats, offset, err := parser.ReadLinesIncremental(w.path, w.offset)
	reset := false
	if errors.Is(err, parser.ErrTruncated) {
		w.log.Info("transcript truncated, reloading", "path", w.path, "offset", w.offset)
		reset = true
		lines, stats, offset, err = parser.ReadLinesIncremental(w.path, 0)
	}
	if err != nil {
		w.report(err)
		return tailUpdateMsg{}, false
	}
	w.offset = offset
	if !reset && len(lines) == 0 && len(stats) == 0 {
		return tailUpdateMsg{}, false
	}
	w.log.Debug("transcript read", "lines", len(lines), "stats", len(stats), "offset", offset)
	return tailUpdateMsg{lines: lines, stats: stats, reset: reset}, true
}

// waitForTailUpdate blocks on the subscription channel and hands the update
// to the Bubble Tea runtime. Returns nil when the channel is closed
// (watcher stopped), unblocking the goroutine.
func waitForTailUpdate(sub chan tailUpdateMsg) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-sub
		if !ok {
			return nil
		}
		return u
	}
}

// waitForWatcherErr blocks on the error channel and wraps the result
// in a watcherErrMsg for the Bubble Tea runtime. Returns nil when the
// channel is closed (watcher stopped), unblocking the goroutine.
func waitForWatcherErr(errc chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-errc
		if !ok {
			return nil
		}
		return watcherErrMsg{err: err}
	}
}
