package logging

import (
	"bytes"
	"io"
	"sync"
)

// PrefixWriter prepends a marker to every complete line written through it.
// Partial lines are held until their newline arrives or Flush is called.
type PrefixWriter struct {
	mu      sync.Mutex
	prefix  []byte
	writer  io.Writer
	pending []byte
}

// NewPrefixWriter returns a PrefixWriter writing to w.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		writer: w,
	}
}

// Write implements io.Writer. It always reports len(p) on success.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pw.pending = append(pw.pending, p...)
	for {
		i := bytes.IndexByte(pw.pending, '\n')
		if i < 0 {
			break
		}
		if err := pw.emit(pw.pending[:i+1]); err != nil {
			return 0, err
		}
		pw.pending = pw.pending[i+1:]
	}

	// reclaim the consumed prefix of the slice
	if len(pw.pending) == 0 {
		pw.pending = pw.pending[:0:0]
	}
	return len(p), nil
}

// Flush writes any held partial line, terminated with a newline.
func (pw *PrefixWriter) Flush() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if len(pw.pending) == 0 {
		return nil
	}
	line := append(pw.pending, '\n')
	pw.pending = nil
	return pw.emit(line)
}

func (pw *PrefixWriter) emit(line []byte) error {
	if _, err := pw.writer.Write(pw.prefix); err != nil {
		return err
	}
	_, err := pw.writer.Write(line)
	return err
}
