package codec

import (
	"bytes"

	"github.com/provide-io/stegobmp/pkg/stego/bitmap"
	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

// Adaptive codec wire contract:
//
//   - pixels are visited in body storage order (bottom row first for a
//     bottom-up BMP), left to right
//   - channel A is byte 0 of a pixel (blue), channel B is byte 1 (green);
//     remaining channel bytes are never written
//   - the four swap flags sit in the low bits of pixel 0 A, pixel 0 B,
//     pixel 1 A and pixel 1 B, for patterns 00, 01, 10 and 11
//   - payload bits start at pixel 2 channel A, bytes most significant bit first
const (
	reservedPixels = 2
	sitesPerPixel  = 2
	patternCount   = 4
)

// Pattern returns the two bits above the embedding bit. Embedding only
// rewrites bit 0, so a byte's pattern is the same in cover and stego image.
func Pattern(b byte) int {
	return int(b>>1) & 0b11
}

// PatternClass tallies the dry-run pass for one pattern value.
type PatternClass struct {
	Total      int
	Inversions int
}

// Swap reports whether the class is inverted: most of its sites would
// otherwise flip.
func (p PatternClass) Swap() bool {
	return p.Inversions > p.Total/2
}

// PatternClasses runs the dry-run pass for secret over cover without writing.
func PatternClasses(secret []byte, cover *bitmap.Image) [patternCount]PatternClass {
	return tallyPatterns(secret, cover.Body(), cover.Layout())
}

func adaptiveCapacity(layout bitmap.Layout) int {
	return payloadSites(layout) / 8
}

func payloadSites(layout bitmap.Layout) int {
	pixels := layout.Pixels() - reservedPixels
	if pixels <= 0 {
		return 0
	}
	return pixels * sitesPerPixel
}

// siteOffset returns the body offset of payload site k.
func siteOffset(layout bitmap.Layout, k int) int {
	return layout.Offset(reservedPixels+k/sitesPerPixel) + k%sitesPerPixel
}

// flagOffset returns the body offset holding the swap flag of pattern p.
func flagOffset(layout bitmap.Layout, p int) int {
	return layout.Offset(p/sitesPerPixel) + p%sitesPerPixel
}

func secretBit(secret []byte, k int) byte {
	return (secret[k/8] >> (7 - k%8)) & 1
}

func tallyPatterns(secret, cover []byte, layout bitmap.Layout) [patternCount]PatternClass {
	var classes [patternCount]PatternClass
	bits := len(secret) * 8
	if bits > payloadSites(layout) {
		return classes
	}
	for k := 0; k < bits; k++ {
		c := cover[siteOffset(layout, k)]
		class := &classes[Pattern(c)]
		class.Total++
		if c&1 != secretBit(secret, k) {
			class.Inversions++
		}
	}
	return classes
}

func encodeAdaptive(secret, cover []byte, layout bitmap.Layout) ([]byte, error) {
	sites := payloadSites(layout)
	if layout.Pixels() < reservedPixels || len(secret)*8 > sites {
		return nil, stegoerrors.NewSecretTooLarge(sites/8, len(secret))
	}

	classes := tallyPatterns(secret, cover, layout)
	var swap [patternCount]byte
	for p, class := range classes {
		if class.Swap() {
			swap[p] = 1
		}
	}

	out := bytes.Clone(cover)
	for p := range swap {
		off := flagOffset(layout, p)
		out[off] = out[off]&^1 | swap[p]
	}

	for k := 0; k < len(secret)*8; k++ {
		off := siteOffset(layout, k)
		c := cover[off]
		out[off] = c&^1 | (secretBit(secret, k) ^ swap[Pattern(c)])
	}
	return out, nil
}

func decodeAdaptive(stego []byte, layout bitmap.Layout) []byte {
	if layout.Pixels() < reservedPixels {
		return nil
	}

	var swap [patternCount]byte
	for p := range swap {
		swap[p] = stego[flagOffset(layout, p)] & 1
	}

	sites := payloadSites(layout)
	out := make([]byte, sites/8)
	for k := 0; k < len(out)*8; k++ {
		s := stego[siteOffset(layout, k)]
		out[k/8] |= ((s & 1) ^ swap[Pattern(s)]) << (7 - k%8)
	}
	return out
}
