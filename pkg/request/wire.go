package request

import (
	"io"
	"strings"
)

// WriteLine sends "METHOD PATH VERSION\r\n".
func WriteLine(w io.Writer, l Line) error {
	_, err := io.WriteString(w, l.Method+" "+l.Path+" "+l.Version+"\r\n")
	return err
}

// WriteHeaders sends every pair followed by the blank line, in one write.
func WriteHeaders(w io.Writer, h HeaderSet) error {
	var b strings.Builder
	for _, hdr := range h.Headers {
		b.WriteString(hdr.Name)
		b.WriteString(": ")
		b.WriteString(hdr.Value)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteEntity sends the request body, if there is one.
func WriteEntity(w io.Writer, e Entity) error {
	if len(e.Data) == 0 {
		return nil
	}
	_, err := w.Write(e.Data)
	return err
}
