// Package compress registers the compression operations. Import it for its
// side effects:
//
//	import _ "github.com/provide-io/stegobmp/pkg/stego/operations/compress"
package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/provide-io/stegobmp/pkg/stego/operations"
)

// MaxDecodedSize caps the output of any Reverse call. A cover image never
// holds more than a few hundred megabytes, so anything larger is corrupt.
const MaxDecodedSize = 1 << 30

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDecodedSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDecodedSize {
		return nil, fmt.Errorf("decoded data exceeds %d bytes", MaxDecodedSize)
	}
	return data, nil
}

// streamOperation adapts a streaming codec to the whole-buffer Operation
// interface.
type streamOperation struct {
	operations.BaseOperation

	newWriter func(io.Writer) (io.WriteCloser, error)
	newReader func(io.Reader) (io.ReadCloser, error)
	overhead  func(int64) int64
}

func (o *streamOperation) Apply(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := o.newWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("creating %s writer: %w", o.OpName, err)
	}
	if _, err := w.Write(input); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing %s data: %w", o.OpName, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing %s writer: %w", o.OpName, err)
	}
	return buf.Bytes(), nil
}

func (o *streamOperation) Reverse(input []byte) ([]byte, error) {
	r, err := o.newReader(bytes.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("creating %s reader: %w", o.OpName, err)
	}
	defer r.Close()

	data, err := readLimited(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s data: %w", o.OpName, err)
	}
	return data, nil
}

// EstimateSize bounds the output for incompressible input.
func (o *streamOperation) EstimateSize(inputSize int64) int64 {
	return inputSize + o.overhead(inputSize)
}
