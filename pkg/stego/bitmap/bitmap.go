// Package bitmap holds a BMP file as an opaque header and pixel-data body.
// Pixels are never decoded; codecs operate on the raw body bytes.
package bitmap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

const (
	HeaderSize = 54 // file header (14) + BITMAPINFOHEADER (40)

	dataSizeOffset    = 2
	dataOffsetOffset  = 10
	widthOffset       = 18
	heightOffset      = 22
	bitCountOffset    = 28
	compressionOffset = 30
)

// Compression values of uncompressed images whose pixels are whole bytes.
const (
	biRGB            = 0
	biBitfields      = 3
	biAlphaBitfields = 6
)

// Image is a BMP split into its fixed header, the bytes between the header
// and the pixel data (palette or extended DIB fields), and the pixel data.
type Image struct {
	header [HeaderSize]byte
	gap    []byte
	body   []byte
}

// Read parses a BMP from r. The size field at offset 2 bounds the body: real
// files store the total file size there, so the body runs to end of stream.
func Read(r io.Reader) (*Image, error) {
	img := &Image{}
	if _, err := io.ReadFull(r, img.header[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", stegoerrors.ErrCorruptHeader, err)
	}

	dataSize := img.DataSize()
	dataOffset := img.DataOffset()
	if dataOffset < HeaderSize {
		return nil, fmt.Errorf("%w: pixel data offset %d inside header", stegoerrors.ErrCorruptHeader, dataOffset)
	}

	if gapSize := dataOffset - HeaderSize; gapSize > 0 {
		img.gap = make([]byte, gapSize)
		if _, err := io.ReadFull(r, img.gap); err != nil {
			return nil, fmt.Errorf("%w: skipping to pixel data: %v", stegoerrors.ErrCorruptHeader, err)
		}
	}

	body, err := io.ReadAll(io.LimitReader(r, int64(dataSize)))
	if err != nil {
		return nil, fmt.Errorf("%w: reading pixel data: %v", stegoerrors.ErrCorruptHeader, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty pixel data", stegoerrors.ErrCorruptHeader)
	}
	img.body = body

	return img, nil
}

// Load reads a BMP file from disk.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// New assembles an Image from raw parts. The header must be exactly
// HeaderSize bytes and the body must not be empty.
func New(header, gap, body []byte) (*Image, error) {
	if len(header) != HeaderSize {
		return nil, fmt.Errorf("%w: header is %d bytes, want %d", stegoerrors.ErrCorruptHeader, len(header), HeaderSize)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty pixel data", stegoerrors.ErrCorruptHeader)
	}
	img := &Image{
		gap:  bytes.Clone(gap),
		body: bytes.Clone(body),
	}
	copy(img.header[:], header)
	return img, nil
}

// Header returns a copy of the 54 header bytes.
func (img *Image) Header() []byte {
	return bytes.Clone(img.header[:])
}

// Body returns the pixel data. Callers must not modify it; use WithBody to
// produce a changed image.
func (img *Image) Body() []byte {
	return img.body
}

// DataSize is the little-endian size field at header offset 2.
func (img *Image) DataSize() int {
	return int(binary.LittleEndian.Uint32(img.header[dataSizeOffset:]))
}

// DataOffset is the little-endian pixel data offset at header offset 10.
func (img *Image) DataOffset() int {
	return int(binary.LittleEndian.Uint32(img.header[dataOffsetOffset:]))
}

// Size is the number of bytes WriteTo produces.
func (img *Image) Size() int64 {
	return int64(HeaderSize + len(img.gap) + len(img.body))
}

// WithBody returns a new Image sharing this image's header and gap with the
// given body. The receiver is left untouched.
func (img *Image) WithBody(body []byte) *Image {
	return &Image{
		header: img.header,
		gap:    img.gap,
		body:   body,
	}
}

// WriteTo writes header, gap and body in order.
func (img *Image) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, part := range [][]byte{img.header[:], img.gap, img.body} {
		n, err := w.Write(part)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Save writes the image to path, replacing any existing file.
func (img *Image) Save(path string, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	if _, err := img.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write image: %w", err)
	}
	return f.Close()
}
