// Package bitmaptest builds in-memory BMP files for tests.
package bitmaptest

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/provide-io/stegobmp/pkg/stego/bitmap"
)

// Encode returns a complete uncompressed bottom-up BMP file. bitCount must be
// 24 or 32. fill supplies the value of every body byte, padding included.
func Encode(width, height, bitCount int, fill func(i int) byte) []byte {
	bpp := bitCount / 8
	stride := (width*bpp + 3) &^ 3
	bodyLen := stride * height

	header := make([]byte, bitmap.HeaderSize)
	header[0], header[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(header[2:], uint32(bitmap.HeaderSize+bodyLen))
	binary.LittleEndian.PutUint32(header[10:], bitmap.HeaderSize)
	binary.LittleEndian.PutUint32(header[14:], 40)
	binary.LittleEndian.PutUint32(header[18:], uint32(width))
	binary.LittleEndian.PutUint32(header[22:], uint32(height))
	binary.LittleEndian.PutUint16(header[26:], 1)
	binary.LittleEndian.PutUint16(header[28:], uint16(bitCount))
	binary.LittleEndian.PutUint32(header[34:], uint32(bodyLen))
	binary.LittleEndian.PutUint32(header[38:], 2835)
	binary.LittleEndian.PutUint32(header[42:], 2835)

	body := make([]byte, bodyLen)
	if fill != nil {
		for i := range body {
			body[i] = fill(i)
		}
	}

	return append(header, body...)
}

// EncodeBitfields returns a 32 bit BI_BITFIELDS BMP with a 40-byte info
// header followed by the red, green and blue masks, as Windows writes them.
// The pixel data therefore starts at offset 66.
func EncodeBitfields(width, height int, fill func(i int) byte) []byte {
	raw := Encode(width, height, 32, fill)
	header, body := raw[:bitmap.HeaderSize], raw[bitmap.HeaderSize:]

	const masksLen = 12
	binary.LittleEndian.PutUint32(header[2:], uint32(len(raw)+masksLen))
	binary.LittleEndian.PutUint32(header[10:], bitmap.HeaderSize+masksLen)
	binary.LittleEndian.PutUint32(header[30:], 3)

	masks := make([]byte, masksLen)
	binary.LittleEndian.PutUint32(masks[0:], 0x00FF0000)
	binary.LittleEndian.PutUint32(masks[4:], 0x0000FF00)
	binary.LittleEndian.PutUint32(masks[8:], 0x000000FF)

	out := append(bytes.Clone(header), masks...)
	return append(out, body...)
}

// New parses the output of Encode into an Image, failing the test on error.
func New(t testing.TB, width, height, bitCount int, fill func(i int) byte) *bitmap.Image {
	t.Helper()
	img, err := bitmap.Read(bytes.NewReader(Encode(width, height, bitCount, fill)))
	if err != nil {
		t.Fatalf("building test bitmap: %v", err)
	}
	return img
}

// Noise is a deterministic fill with varied low bits.
func Noise(i int) byte {
	return byte((i*131 + 17) ^ (i >> 3))
}
