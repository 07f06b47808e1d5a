package parser

// Transcript is an append-only line store with a retention cap. Once the cap
// is exceeded the oldest lines are evicted; Evicted counts them so block ids,
// which are absolute positions, stay stable.
//
// A Transcript is not safe for concurrent use.
type Transcript struct {
	lines    []OutputLine
	evicted  int
	maxLines int
	stats    map[string]SubagentStats
}

// NewTranscript returns an empty transcript keeping at most maxLines lines.
// maxLines <= 0 disables eviction.
func NewTranscript(maxLines int) *Transcript {
	return &Transcript{
		maxLines: maxLines,
		stats:    make(map[string]SubagentStats),
	}
}

// Append adds lines and returns how many old lines were evicted to make room.
func (t *Transcript) Append(lines ...OutputLine) int {
	t.lines = append(t.lines, lines...)
	if t.maxLines <= 0 || len(t.lines) <= t.maxLines {
		return 0
	}
	drop := len(t.lines) - t.maxLines
	clear(t.lines[:drop])
	t.lines = t.lines[drop:]
	t.evicted += drop
	return drop
}

// SetStats records usage for a subagent, keyed by subagent id.
func (t *Transcript) SetStats(subagentID string, s SubagentStats) {
	t.stats[subagentID] = s
}

// Stats returns the recorded usage for a subagent.
func (t *Transcript) Stats(subagentID string) (SubagentStats, bool) {
	s, ok := t.stats[subagentID]
	return s, ok
}

// Len is the number of retained lines.
func (t *Transcript) Len() int { return len(t.lines) }

// Evicted is the number of lines dropped from the front so far.
func (t *Transcript) Evicted() int { return t.evicted }

// Lines returns the retained lines. The slice must not be modified.
func (t *Transcript) Lines() []OutputLine { return t.lines }

// Blocks groups the retained lines.
func (t *Transcript) Blocks() []Block {
	return BuildBlocksFrom(t.evicted, t.lines, t.stats)
}
