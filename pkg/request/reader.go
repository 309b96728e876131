package request

import (
	"bufio"
	"errors"
	"io"
)

// MaxLine bounds a single request, header or status line, terminator included.
const MaxLine = 8192

var ErrLineTooLong = errors.New("line exceeds maximum length")

// Reader reads CRLF (or bare LF) terminated lines from a connection and
// hands out the remaining bytes unchanged once line parsing is over.
type Reader struct {
	br *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok && br.Size() >= MaxLine {
		return &Reader{br: br}
	}
	return &Reader{br: bufio.NewReaderSize(r, MaxLine)}
}

// ReadLine returns the next line with its terminator. A trailing line that
// ends at end of stream is returned with a nil error; io.EOF is only
// reported when nothing at all was left to read. A line longer than MaxLine
// yields ErrLineTooLong together with the bytes already consumed.
func (r *Reader) ReadLine() (string, error) {
	b, err := r.br.ReadSlice('\n')
	switch {
	case err == nil:
		return string(b), nil
	case errors.Is(err, bufio.ErrBufferFull):
		return string(b), ErrLineTooLong
	case errors.Is(err, io.EOF) && len(b) > 0:
		return string(b), nil
	default:
		return "", err
	}
}

// Read drains buffered bytes first, then the underlying stream.
func (r *Reader) Read(p []byte) (int, error) {
	return r.br.Read(p)
}

// isBlank reports whether line is the empty line ending a header block.
func isBlank(line string) bool {
	return line == "\r\n" || line == "\n"
}
