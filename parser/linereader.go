package parser

import (
	"bufio"
	"errors"
	"io"
)

const (
	// initialBufSize is the read buffer size and the starting capacity of
	// the line buffer.
	initialBufSize = 64 * 1024

	// maxLineSize bounds a single transcript record. Longer lines are
	// consumed and skipped so one runaway record cannot stall tailing.
	maxLineSize = 16 * 1024 * 1024
)

// lineReader yields newline-terminated lines. Oversized and blank lines are
// skipped. A final line with no newline is left unconsumed: the writer may
// still be appending to it, and the next incremental read starts there.
//
// After iteration, Err reports any I/O error other than EOF and Offset the
// number of bytes fully consumed.
type lineReader struct {
	r      *bufio.Reader
	maxLen int // 0 means maxLineSize
	final  bool // yield an unterminated last line instead of holding it
	buf    []byte
	err    error
	offset int64
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		r:   bufio.NewReaderSize(r, initialBufSize),
		buf: make([]byte, 0, initialBufSize),
	}
}

func newLineReaderWithMax(r io.Reader, maxLen int) *lineReader {
	lr := newLineReader(r)
	lr.maxLen = maxLen
	return lr
}

// next returns the next non-empty complete line without its line ending.
func (lr *lineReader) next() (string, bool) {
	for {
		line, ok := lr.readLine()
		if !ok {
			return "", false
		}
		if line != "" {
			return line, true
		}
	}
}

// Err returns the first non-EOF read error.
func (lr *lineReader) Err() error {
	return lr.err
}

// Offset is the byte count of every complete line consumed so far,
// delimiters and skipped lines included.
func (lr *lineReader) Offset() int64 {
	return lr.offset
}

func (lr *lineReader) limit() int {
	if lr.maxLen > 0 {
		return lr.maxLen
	}
	return maxLineSize
}

// readLine reads up to and including the next '\n'. It returns "" for
// oversized lines and false at EOF or on error.
func (lr *lineReader) readLine() (string, bool) {
	lr.buf = lr.buf[:0]
	var n int64
	oversized := false

	for {
		chunk, err := lr.r.ReadSlice('\n')
		n += int64(len(chunk))
		if !oversized {
			lr.buf = append(lr.buf, chunk...)
		}

		switch {
		case err == nil:
			lr.offset += n
			line := trimEOL(lr.buf)
			if oversized || len(line) > lr.limit() {
				return "", true
			}
			return string(line), true
		case errors.Is(err, bufio.ErrBufferFull):
			if !oversized && len(lr.buf) > lr.limit() {
				oversized = true
				lr.buf = lr.buf[:0]
			}
		case errors.Is(err, io.EOF):
			if lr.final && len(lr.buf) > 0 && !oversized {
				lr.offset += n
				return string(trimEOL(lr.buf)), true
			}
			// Unterminated tail; leave it for the next read.
			return "", false
		default:
			lr.err = err
			return "", false
		}
	}
}

func trimEOL(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\n' {
		b = b[:len(b)-1]
	}
	if len(b) > 0 && b[len(b)-1] == '\r' {
		b = b[:len(b)-1]
	}
	return b
}
