package handler

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// LineReader splits keyboard input into lines. Fill performs exactly one
// read so it never blocks once the poller has reported the source readable.
type LineReader struct {
	r     io.Reader
	chunk []byte
	buf   []byte
	eof   bool
}

func NewLineReader(r io.Reader, size int) *LineReader {
	return &LineReader{
		r:     r,
		chunk: make([]byte, size),
	}
}

// Fill reads once from the source. End of input is recorded, not returned.
func (l *LineReader) Fill() error {
	if l.eof {
		return nil
	}
	n, err := l.r.Read(l.chunk)
	l.buf = append(l.buf, l.chunk[:n]...)
	if err == io.EOF || (n == 0 && err == nil) {
		l.eof = true
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read input")
	}
	return nil
}

// Next returns the next complete line without its terminator. After end of
// input a trailing unterminated line is returned as well.
func (l *LineReader) Next() ([]byte, bool) {
	if i := bytes.IndexByte(l.buf, '\n'); i >= 0 {
		line := bytes.TrimSuffix(l.buf[:i], []byte{'\r'})
		out := make([]byte, len(line))
		copy(out, line)
		l.buf = l.buf[i+1:]
		return out, true
	}
	if l.eof && len(l.buf) > 0 {
		out := l.buf
		l.buf = nil
		return out, true
	}
	return nil, false
}

// Drained reports end of input with no line left to hand out.
func (l *LineReader) Drained() bool {
	return l.eof && len(l.buf) == 0
}

// IsExitCommand reports whether line asks to end the session.
func IsExitCommand(line []byte) bool {
	s := string(line)
	return strings.EqualFold(s, "exit") || strings.EqualFold(s, "quit")
}
