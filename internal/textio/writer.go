// Package textio holds small line oriented writing and argument scanning
// helpers shared by the commands and reports.
package textio

import (
	"bytes"
	"io"
)

// LineBuffer accumulates output, passing it on to To only in whole lines.
type LineBuffer struct {
	To io.Writer
	bytes.Buffer
}

// Flush writes everything buffered, partial final line included.
func (lb *LineBuffer) Flush() error {
	_, err := lb.WriteTo(lb.To)
	return err
}

// FlushLines writes the buffer through its last newline.
func (lb *LineBuffer) FlushLines() error {
	b := lb.Bytes()
	i := bytes.LastIndexByte(b, '\n')
	if i < 0 {
		return nil
	}
	n, err := lb.To.Write(b[:i+1])
	lb.Next(n)
	return err
}

// ErrWriter remembers the first write error from Writer, refusing further
// writes once one occurs.
type ErrWriter struct {
	io.Writer
	Err error
}

func (ew *ErrWriter) Write(p []byte) (n int, err error) {
	if ew.Err == nil {
		n, ew.Err = ew.Writer.Write(p)
	}
	return n, ew.Err
}

// WriteString implements io.StringWriter.
func (ew *ErrWriter) WriteString(s string) (int, error) {
	return ew.Write([]byte(s))
}

// Indent returns a writer prefixing every line written through it. Close
// it to flush a partial final line.
func Indent(prefix string, w io.Writer) io.WriteCloser {
	return &indenter{buf: LineBuffer{To: w}, prefix: prefix}
}

type indenter struct {
	buf    LineBuffer
	prefix string
	mid    bool // within a line
}

func (in *indenter) Close() error { return in.buf.Flush() }

func (in *indenter) Write(b []byte) (n int, err error) {
	for len(b) > 0 {
		if !in.mid {
			in.buf.WriteString(in.prefix)
			in.mid = true
		}
		line := b
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			line = b[:i+1]
			in.mid = false
		}
		b = b[len(line):]
		m, _ := in.buf.Write(line)
		n += m
	}
	return n, in.buf.FlushLines()
}
