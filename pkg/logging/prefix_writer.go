package logging

import (
	"bytes"
	"io"
)

// PrefixWriter writes every complete line to the underlying writer with a
// fixed prefix. Partial lines wait in a buffer until their newline arrives
// or Flush is called.
type PrefixWriter struct {
	prefix []byte
	writer io.Writer
	buffer bytes.Buffer
}

// NewPrefixWriter wraps w.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		writer: w,
	}
}

// Write implements io.Writer. It always reports len(p) on success, even when
// part of p is still buffered.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.buffer.Write(p)

	for {
		data := pw.buffer.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		if err := pw.emit(data[:idx+1]); err != nil {
			return 0, err
		}
		pw.buffer.Next(idx + 1)
	}

	return len(p), nil
}

// Flush writes any buffered partial line, prefixed, without adding a newline.
func (pw *PrefixWriter) Flush() error {
	if pw.buffer.Len() == 0 {
		return nil
	}
	err := pw.emit(pw.buffer.Bytes())
	pw.buffer.Reset()
	return err
}

func (pw *PrefixWriter) emit(line []byte) error {
	if _, err := pw.writer.Write(pw.prefix); err != nil {
		return err
	}
	_, err := pw.writer.Write(line)
	return err
}
