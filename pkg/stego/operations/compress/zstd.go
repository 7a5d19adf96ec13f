package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/provide-io/stegobmp/pkg/stego/operations"
)

func init() {
	operations.Register(NewZstdOperation())
}

// ZstdOperation implements Zstandard compression. Encoder and decoder are
// created once and shared; EncodeAll and DecodeAll are safe for concurrent use.
type ZstdOperation struct {
	operations.BaseOperation

	once sync.Once
	enc  *zstd.Encoder
	dec  *zstd.Decoder
	err  error
}

// NewZstdOperation creates a new ZSTD operation
func NewZstdOperation() *ZstdOperation {
	return &ZstdOperation{
		BaseOperation: operations.BaseOperation{
			OpID:   operations.OP_ZSTD,
			OpName: "ZSTD",
		},
	}
}

func (o *ZstdOperation) setup() error {
	o.once.Do(func() {
		o.enc, o.err = zstd.NewWriter(
			nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		)
		if o.err != nil {
			return
		}
		o.dec, o.err = zstd.NewReader(
			nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
			zstd.WithDecoderMaxMemory(MaxDecodedSize),
		)
	})
	return o.err
}

// Apply compresses data using ZSTD
func (o *ZstdOperation) Apply(input []byte) ([]byte, error) {
	if err := o.setup(); err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	return o.enc.EncodeAll(input, nil), nil
}

// Reverse decompresses ZSTD data
func (o *ZstdOperation) Reverse(input []byte) ([]byte, error) {
	if err := o.setup(); err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	data, err := o.dec.DecodeAll(input, nil)
	if err != nil {
		return nil, fmt.Errorf("reading zstd data: %w", err)
	}
	return data, nil
}

// EstimateSize estimates compressed size
func (o *ZstdOperation) EstimateSize(inputSize int64) int64 {
	return inputSize + inputSize/128 + 64
}
