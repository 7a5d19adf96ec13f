// Package framing implements the self-describing message layout embedded in
// cover images:
//
//	[u32 BE length][length bytes of content][extension incl. leading '.'][0x00]
package framing

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

const (
	LengthSize   = 4
	ExtensionDot = '.'
	Terminator   = 0x00
)

// Size returns the framed length of content with the given extension.
func Size(contentLen int, extension string) int {
	return LengthSize + contentLen + len(extension) + 1
}

// Frame serializes content and its extension into a new buffer.
func Frame(content []byte, extension string) ([]byte, error) {
	buf := make([]byte, Size(len(content), extension))
	if _, err := FrameInto(buf, content, extension); err != nil {
		return nil, err
	}
	return buf, nil
}

// FrameInto writes the framed message into dst and returns the number of
// bytes written.
func FrameInto(dst, content []byte, extension string) (int, error) {
	if err := validateExtension(extension); err != nil {
		return 0, err
	}
	size := Size(len(content), extension)
	if len(dst) < size {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", stegoerrors.ErrBufferTooSmall, size, len(dst))
	}

	binary.BigEndian.PutUint32(dst, uint32(len(content)))
	n := LengthSize
	n += copy(dst[n:], content)
	n += copy(dst[n:], extension)
	dst[n] = Terminator
	return n + 1, nil
}

// PrefixLength prepends a 4-byte big-endian length to payload.
func PrefixLength(payload []byte) []byte {
	out := make([]byte, LengthSize+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	copy(out[LengthSize:], payload)
	return out
}

// ReadLength returns the 4-byte big-endian length at the front of buf.
func ReadLength(buf []byte) (int, error) {
	if len(buf) < LengthSize {
		return 0, fmt.Errorf("%w: %d bytes is too short for a length prefix", stegoerrors.ErrInvalidFormat, len(buf))
	}
	return int(binary.BigEndian.Uint32(buf)), nil
}

// Unframe parses a framed message. The byte after the content must be '.',
// which is the main signal that the wrong image, codec or password was used.
// Bytes after the terminator are ignored.
func Unframe(buf []byte) ([]byte, string, error) {
	length, err := ReadLength(buf)
	if err != nil {
		return nil, "", err
	}

	extStart := LengthSize + length
	if extStart < LengthSize || extStart >= len(buf) {
		return nil, "", fmt.Errorf("%w: declared length %d exceeds %d available bytes",
			stegoerrors.ErrInvalidFormat, length, len(buf)-LengthSize)
	}
	if buf[extStart] != ExtensionDot {
		return nil, "", fmt.Errorf("%w: expected '.' at offset %d, found 0x%02x",
			stegoerrors.ErrInvalidFormat, extStart, buf[extStart])
	}

	end := bytes.IndexByte(buf[extStart:], Terminator)
	if end < 0 {
		return nil, "", fmt.Errorf("%w: extension is not terminated", stegoerrors.ErrInvalidFormat)
	}

	extension := string(buf[extStart : extStart+end])
	if err := validateExtension(extension); err != nil {
		return nil, "", err
	}
	content := bytes.Clone(buf[LengthSize:extStart])
	return content, extension, nil
}

func validateExtension(extension string) error {
	if len(extension) == 0 || extension[0] != ExtensionDot {
		return fmt.Errorf("%w: extension %q must start with '.'", stegoerrors.ErrInvalidFormat, extension)
	}
	if bytes.IndexByte([]byte(extension), Terminator) >= 0 {
		return fmt.Errorf("%w: extension %q contains a NUL byte", stegoerrors.ErrInvalidFormat, extension)
	}
	// the extension is joined onto an output path
	if strings.ContainsAny(extension, `/\`) {
		return fmt.Errorf("%w: extension %q contains a path separator", stegoerrors.ErrInvalidFormat, extension)
	}
	return nil
}
