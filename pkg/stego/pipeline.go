// Package stego composes message framing, the optional encryption envelope,
// optional compression and one codec into the embed/extract pipeline.
package stego

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/stegobmp/pkg/stego/bitmap"
	"github.com/provide-io/stegobmp/pkg/stego/checksums"
	"github.com/provide-io/stegobmp/pkg/stego/codec"
	"github.com/provide-io/stegobmp/pkg/stego/envelope"
	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
	"github.com/provide-io/stegobmp/pkg/stego/framing"
	"github.com/provide-io/stegobmp/pkg/stego/operations"

	// registers gzip, bzip2 and zstd
	_ "github.com/provide-io/stegobmp/pkg/stego/operations/compress"
)

// Options configures a Pipeline.
type Options struct {
	Variant codec.Variant

	// Envelope enables encryption when non-nil. Password is then mandatory.
	Envelope *envelope.Envelope
	Password string

	// Compression is an operation chain applied to the content before
	// framing. Extraction must use the same chain.
	Compression []uint8

	Logger hclog.Logger
}

// Pipeline embeds files into cover images and extracts them again. It holds
// no per-call state and may be shared between goroutines.
type Pipeline struct {
	variant     codec.Variant
	envelope    *envelope.Envelope
	password    string
	compression []uint8
	logger      hclog.Logger
}

// NewPipeline validates opts. A missing codec, or an envelope without a
// password, is ErrConfiguration.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Variant.Kind() == codec.KindUnset {
		return nil, fmt.Errorf("%w: steganography algorithm is required", stegoerrors.ErrConfiguration)
	}
	if opts.Envelope != nil && opts.Password == "" {
		return nil, fmt.Errorf("%w: password is required when encryption is enabled", stegoerrors.ErrConfiguration)
	}
	for _, op := range opts.Compression {
		if _, err := operations.Get(op); err != nil {
			return nil, fmt.Errorf("%w: %v", stegoerrors.ErrConfiguration, err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Pipeline{
		variant:     opts.Variant,
		envelope:    opts.Envelope,
		password:    opts.Password,
		compression: opts.Compression,
		logger:      logger,
	}, nil
}

// Variant returns the configured codec.
func (p *Pipeline) Variant() codec.Variant { return p.variant }

// Compressed reports whether content passes through a compression chain.
func (p *Pipeline) Compressed() bool { return len(p.compression) > 0 }

// Encrypted reports whether payloads are wrapped in an encryption envelope.
func (p *Pipeline) Encrypted() bool { return p.envelope != nil }

// Encode hides content, tagged with extension, in a copy of cover.
func (p *Pipeline) Encode(content []byte, extension string, cover *bitmap.Image) (*bitmap.Image, error) {
	p.logger.Debug("🔍 Embedding payload",
		"codec", p.variant,
		"content", humanize.Bytes(uint64(len(content))),
		"extension", extension,
		"capacity", humanize.Bytes(uint64(p.Capacity(cover))))

	packed, err := operations.ApplyChain(content, p.compression)
	if err != nil {
		return nil, err
	}
	if len(p.compression) > 0 {
		p.logger.Debug("🗜️ Compressed content",
			"chain", operations.ChainString(p.compression),
			"before", len(content), "after", len(packed))
	}

	payload, err := framing.Frame(packed, extension)
	if err != nil {
		return nil, err
	}
	p.logger.Trace("framed message", "bytes", len(payload))

	if p.envelope != nil {
		sealed, err := p.envelope.Encrypt(payload, p.password)
		if err != nil {
			return nil, fmt.Errorf("encrypting payload: %w", err)
		}
		p.logger.Debug("🔐 Encrypted payload",
			"algorithm", p.envelope.Algorithm(),
			"mode", p.envelope.Mode(),
			"envelope", len(sealed))
		payload = framing.PrefixLength(sealed)
	}

	if p.variant.Kind() == codec.KindAdaptive && p.logger.IsTrace() {
		for pattern, class := range codec.PatternClasses(payload, cover) {
			p.logger.Trace("pattern class",
				"pattern", fmt.Sprintf("%02b", pattern),
				"total", class.Total,
				"inversions", class.Inversions,
				"swap", class.Swap())
		}
	}

	stego, err := p.variant.Encode(payload, cover)
	if err != nil {
		return nil, err
	}

	p.logger.Info("✅ Payload embedded",
		"codec", p.variant,
		"payload", humanize.Bytes(uint64(len(payload))),
		"checksum", checksums.CalculateChecksum(content, checksums.Default))
	return stego, nil
}

// Decode recovers the content and extension hidden in stego.
func (p *Pipeline) Decode(stego *bitmap.Image) ([]byte, string, error) {
	stream, err := p.variant.Decode(stego)
	if err != nil {
		return nil, "", err
	}

	outer, err := framing.ReadLength(stream)
	if err != nil {
		return nil, "", err
	}
	p.logger.Trace("decoded stream", "bytes", len(stream), "outer_length", outer)

	inner := stream
	if p.envelope != nil {
		if outer > len(stream)-framing.LengthSize {
			return nil, "", fmt.Errorf("%w: envelope length %d exceeds the %d embedded bytes",
				stegoerrors.ErrInvalidFormat, outer, len(stream)-framing.LengthSize)
		}
		inner, err = p.envelope.Decrypt(stream[framing.LengthSize:framing.LengthSize+outer], p.password)
		if err != nil {
			return nil, "", err
		}
	}

	packed, extension, err := framing.Unframe(inner)
	if err != nil {
		return nil, "", err
	}

	content, err := operations.ReverseChain(packed, p.compression)
	if err != nil {
		return nil, "", err
	}

	p.logger.Info("✅ Payload extracted",
		"codec", p.variant,
		"content", humanize.Bytes(uint64(len(content))),
		"extension", extension,
		"checksum", checksums.CalculateChecksum(content, checksums.Default))
	return content, extension, nil
}

// Capacity returns the number of payload bytes the codec can embed in cover,
// framing and envelope included.
func (p *Pipeline) Capacity(cover *bitmap.Image) int {
	return p.variant.Capacity(cover)
}

// PayloadSize returns the number of bytes embedded for content of n bytes
// after compression.
func (p *Pipeline) PayloadSize(n int, extension string) int {
	size := framing.Size(n, extension)
	if p.envelope != nil {
		size = framing.LengthSize + size + p.envelope.Overhead(size)
	}
	return size
}

// MaxContentSize returns the largest content, measured after compression,
// that fits in cover with the given extension. It is -1 when not even an
// empty file fits.
func (p *Pipeline) MaxContentSize(cover *bitmap.Image, extension string) int {
	return p.largestFitting(cover, func(n int) int { return p.PayloadSize(n, extension) })
}

// MaxFileSize returns the largest file that fits in cover whatever its
// content: compression is assumed to gain nothing and its worst-case growth
// is accounted for. Without compression it equals MaxContentSize.
func (p *Pipeline) MaxFileSize(cover *bitmap.Image, extension string) int {
	return p.largestFitting(cover, func(n int) int {
		packed := operations.EstimateChain(int64(n), p.compression)
		return p.PayloadSize(int(packed), extension)
	})
}

// largestFitting searches for the largest n whose embedded size, as given by
// the non-decreasing payloadSize, fits in cover.
func (p *Pipeline) largestFitting(cover *bitmap.Image, payloadSize func(n int) int) int {
	capacity := p.Capacity(cover)
	if payloadSize(0) > capacity {
		return -1
	}

	lo, hi := 0, capacity
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if payloadSize(mid) <= capacity {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
