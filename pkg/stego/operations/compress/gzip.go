package compress

import (
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/provide-io/stegobmp/pkg/stego/operations"
)

func init() {
	operations.Register(NewGzipOperation())
}

// NewGzipOperation returns the gzip transform, compressing at
// gzip.BestCompression since cover capacity is the scarce resource.
func NewGzipOperation() operations.Operation {
	return &streamOperation{
		BaseOperation: operations.BaseOperation{OpID: operations.OP_GZIP, OpName: "GZIP"},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriterLevel(w, gzip.BestCompression)
		},
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
		// header, trailer and stored-block framing
		overhead: func(n int64) int64 { return n/1000 + 32 },
	}
}
