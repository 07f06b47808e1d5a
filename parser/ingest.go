package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// StatsRecord carries usage for one subagent, delivered in the transcript
// as {"stats": {...}}.
type StatsRecord struct {
	SubagentID string
	Stats      SubagentStats
}

type statsWire struct {
	SubagentID    string          `json:"subagentId"`
	StartTime     json.RawMessage `json:"startTime"`
	EndTime       json.RawMessage `json:"endTime"`
	InputTokens   int             `json:"inputTokens"`
	OutputTokens  int             `json:"outputTokens"`
	ToolCallCount int             `json:"toolCallCount"`
}

type record struct {
	Text         *string    `json:"text"`
	IsSubagent   bool       `json:"isSubagent"`
	SubagentID   string     `json:"subagentId"`
	SubagentType string     `json:"subagentType"`
	ToolError    string     `json:"toolError"`
	Stats        *statsWire `json:"stats"`
}

// ParseRecord decodes one transcript line. JSON objects with a "stats" key
// yield a StatsRecord; objects with a "text" key yield an OutputLine.
// Anything else, JSON or not, is kept as a plain text line.
func ParseRecord(raw string) (OutputLine, *StatsRecord) {
	b := bytes.TrimSpace([]byte(raw))
	if len(b) == 0 || b[0] != '{' {
		return OutputLine{Text: raw}, nil
	}
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return OutputLine{Text: raw}, nil
	}
	if rec.Stats != nil {
		return OutputLine{}, &StatsRecord{
			SubagentID: rec.Stats.SubagentID,
			Stats: SubagentStats{
				StartTime:     parseTime(rec.Stats.StartTime),
				EndTime:       parseTime(rec.Stats.EndTime),
				InputTokens:   rec.Stats.InputTokens,
				OutputTokens:  rec.Stats.OutputTokens,
				ToolCallCount: rec.Stats.ToolCallCount,
			},
		}
	}
	if rec.Text == nil {
		return OutputLine{Text: raw}, nil
	}
	return OutputLine{
		Text:         *rec.Text,
		IsSubagent:   rec.IsSubagent,
		SubagentID:   rec.SubagentID,
		SubagentType: rec.SubagentType,
		ToolError:    rec.ToolError,
	}, nil
}

// parseTime accepts epoch milliseconds or an RFC 3339 string. Anything else
// is the zero time.
func parseTime(raw json.RawMessage) time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseTimestamp(s)
	}
	if ms, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		return time.UnixMilli(ms)
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
		return time.UnixMilli(int64(f))
	}
	return time.Time{}
}

func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", s); err == nil {
		return t
	}
	return time.Time{}
}

// ReadLines reads every record from r. It returns the lines, the stats
// records and the byte offset just past the last complete line.
func ReadLines(r io.Reader) ([]OutputLine, []StatsRecord, int64, error) {
	return readRecords(newLineReader(r))
}

// ReadAll is ReadLines for a finished stream: a last line without a newline
// is returned too.
func ReadAll(r io.Reader) ([]OutputLine, []StatsRecord, error) {
	lr := newLineReader(r)
	lr.final = true
	lines, stats, _, err := readRecords(lr)
	return lines, stats, err
}

func readRecords(lr *lineReader) ([]OutputLine, []StatsRecord, int64, error) {
	var lines []OutputLine
	var stats []StatsRecord
	for {
		raw, ok := lr.next()
		if !ok {
			break
		}
		line, st := ParseRecord(raw)
		if st != nil {
			stats = append(stats, *st)
			continue
		}
		lines = append(lines, line)
	}
	return lines, stats, lr.Offset(), lr.Err()
}

// ErrTruncated reports that a transcript is now shorter than the offset a
// caller had already read to. The caller should discard what it holds and
// read again from offset 0.
var ErrTruncated = errors.New("transcript truncated")

// ReadLinesIncremental reads records appended to path since offset and
// returns the new offset. A trailing partial line is left for the next call.
func ReadLinesIncremental(path string, offset int64) ([]OutputLine, []StatsRecord, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, offset, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, offset, fmt.Errorf("stat transcript: %w", err)
	}
	if info.Size() < offset {
		return nil, nil, offset, ErrTruncated
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, nil, offset, fmt.Errorf("seek transcript: %w", err)
	}

	lines, stats, n, err := ReadLines(f)
	if err != nil {
		return lines, stats, offset + n, fmt.Errorf("read transcript: %w", err)
	}
	return lines, stats, offset + n, nil
}
