package compress

import (
	"io"

	"github.com/dsnet/compress/bzip2"

	"github.com/provide-io/stegobmp/pkg/stego/operations"
)

func init() {
	operations.Register(NewBzip2Operation())
}

// NewBzip2Operation returns the bzip2 transform at level 9.
func NewBzip2Operation() operations.Operation {
	return &streamOperation{
		BaseOperation: operations.BaseOperation{OpID: operations.OP_BZIP2, OpName: "BZIP2"},
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
		},
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return bzip2.NewReader(r, nil)
		},
		overhead: func(n int64) int64 { return n/100 + 600 },
	}
}
