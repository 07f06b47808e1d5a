package viewport

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/kylesnowschwartz/tail-agent/parser"
	"github.com/kylesnowschwartz/tail-agent/termtext"
)

// content is the prepared source of one block at one width: its display
// lines and the wrapped-line count before each of them.
type content struct {
	hash      uint64
	width     int
	wrapWidth int
	lines     []string
	// counts[i] is the number of wrapped lines before lines[i];
	// counts[len(lines)] is the total.
	counts []int
}

func newContent(hash uint64, width, wrapWidth int, lines []string) *content {
	c := &content{hash: hash, width: width, wrapWidth: wrapWidth, lines: lines}
	c.counts = make([]int, len(lines)+1)
	for i, l := range lines {
		c.counts[i+1] = c.counts[i] + termtext.WrapCount(l, wrapWidth)
	}
	return c
}

func (c *content) total() int {
	return c.counts[len(c.lines)]
}

// window maps "skip wrapped lines, then take" onto the inclusive range of
// source lines that produce them. ok is false when skip is past the end.
func (c *content) window(skip, take int) (first, last int, ok bool) {
	n := len(c.lines)
	if skip < 0 {
		skip = 0
	}
	if take <= 0 || skip >= c.total() {
		return 0, 0, false
	}
	first = sort.Search(n, func(i int) bool { return c.counts[i+1] > skip })
	last = sort.Search(n, func(i int) bool { return c.counts[i+1] > skip+take-1 })
	if last >= n {
		last = n - 1
	}
	return first, last, true
}

// renderCache memoizes block content by block id, content hash and width.
// It is safe for concurrent use.
type renderCache struct {
	mu      sync.Mutex
	entries map[string]*content
}

func newRenderCache() *renderCache {
	return &renderCache{entries: make(map[string]*content)}
}

// get returns the cached content for id when hash and width match, building
// and storing it otherwise.
func (rc *renderCache) get(id string, hash uint64, width int, build func() *content) *content {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if c, ok := rc.entries[id]; ok && c.hash == hash && c.width == width {
		return c
	}
	c := build()
	rc.entries[id] = c
	return c
}

// retain drops entries for blocks no longer present.
func (rc *renderCache) retain(blocks []parser.Block) {
	keep := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		keep[b.ID()] = struct{}{}
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for id := range rc.entries {
		if _, ok := keep[id]; !ok {
			delete(rc.entries, id)
		}
	}
}

func (rc *renderCache) reset() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	clear(rc.entries)
}

func (rc *renderCache) len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.entries)
}

// hashLines is the content hash of a block's source lines.
func hashLines(lines []string) uint64 {
	d := xxhash.New()
	for _, l := range lines {
		_, _ = d.WriteString(l)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

func hashOutput(lines []parser.OutputLine) uint64 {
	d := xxhash.New()
	for _, l := range lines {
		_, _ = d.WriteString(l.Text)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}
