package bitmap

import (
	"bytes"
	"encoding/binary"
	"io"

	"golang.org/x/image/bmp"
)

const flatBytesPerPixel = 3

// Layout describes where pixels live inside the body. Pixel i is found at
// Offset(i); channel c of that pixel at Offset(i)+c.
type Layout struct {
	Width         int
	Height        int
	BytesPerPixel int
	Stride        int // row length in bytes including padding
}

// Pixels returns the number of addressable pixels.
func (l Layout) Pixels() int {
	return l.Width * l.Height
}

// Offset returns the body offset of pixel i in storage order.
func (l Layout) Offset(i int) int {
	return (i/l.Width)*l.Stride + (i%l.Width)*l.BytesPerPixel
}

// FlatLayout treats body as an unpadded run of 3-byte pixels.
func FlatLayout(bodyLen int) Layout {
	width := bodyLen / flatBytesPerPixel
	return Layout{
		Width:         width,
		Height:        1,
		BytesPerPixel: flatBytesPerPixel,
		Stride:        width * flatBytesPerPixel,
	}
}

// Layout derives the pixel layout from the header. Uncompressed 24 and 32 bit
// images (BI_RGB or bitfields) use the width and height stored in the header;
// anything else falls back to FlatLayout. When x/image/bmp can parse the
// header its dimensions must agree.
func (img *Image) Layout() Layout {
	flat := FlatLayout(len(img.body))

	var bpp int
	switch binary.LittleEndian.Uint16(img.header[bitCountOffset:]) {
	case 24:
		bpp = 3
	case 32:
		bpp = 4
	default:
		return flat
	}

	switch binary.LittleEndian.Uint32(img.header[compressionOffset:]) {
	case biRGB, biBitfields, biAlphaBitfields:
	default:
		return flat
	}

	width, height := img.Dimensions()
	if height < 0 {
		height = -height
	}
	if width <= 0 || height == 0 {
		return flat
	}

	// x/image/bmp rejects 32 bit bitfield files whose masks sit after a
	// 40-byte info header, so a parse failure is not fatal
	cfg, err := bmp.DecodeConfig(io.MultiReader(bytes.NewReader(img.header[:]), bytes.NewReader(img.gap)))
	if err == nil && (cfg.Width != width || cfg.Height != height) {
		return flat
	}

	stride := (width*bpp + 3) &^ 3
	rows := min(height, len(img.body)/stride)
	if rows == 0 {
		return flat
	}

	return Layout{
		Width:         width,
		Height:        rows,
		BytesPerPixel: bpp,
		Stride:        stride,
	}
}

// Dimensions returns the width and signed height fields as stored in the
// header. A negative height marks a top-down bitmap.
func (img *Image) Dimensions() (int, int) {
	w := int(int32(binary.LittleEndian.Uint32(img.header[widthOffset:])))
	h := int(int32(binary.LittleEndian.Uint32(img.header[heightOffset:])))
	return w, h
}
