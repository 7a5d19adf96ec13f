// Package codec embeds payload bytes into the pixel data of a cover bitmap.
//
// A Variant is a tagged value: Uniform(n) writes n payload bits into the low
// bits of every body byte, Adaptive writes one bit into each of two channels
// per pixel and inverts whole pattern classes to reduce the number of flipped
// bits. Neither variant carries a length; framing supplies it.
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/provide-io/stegobmp/pkg/stego/bitmap"
	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

// Kind tags a Variant.
type Kind int

const (
	KindUnset Kind = iota
	KindUniform
	KindAdaptive
)

func (k Kind) String() string {
	switch k {
	case KindUniform:
		return "uniform"
	case KindAdaptive:
		return "adaptive"
	default:
		return "unset"
	}
}

// Variant selects a codec. The zero value is invalid.
type Variant struct {
	kind     Kind
	bitWidth int
}

var (
	LSB1 = Variant{kind: KindUniform, bitWidth: 1}
	LSB4 = Variant{kind: KindUniform, bitWidth: 4}
	LSBI = Variant{kind: KindAdaptive, bitWidth: 1}
)

// Uniform returns the uniform codec for n bits per cover byte. n must divide 8.
func Uniform(n int) (Variant, error) {
	if n < 1 || n > 8 || 8%n != 0 {
		return Variant{}, fmt.Errorf("%w: bit width must be a divisor of 8, got %d", stegoerrors.ErrConfiguration, n)
	}
	return Variant{kind: KindUniform, bitWidth: n}, nil
}

// Adaptive returns the pattern-inverting codec.
func Adaptive() Variant {
	return LSBI
}

// Parse accepts LSB1, LSB4, LSBI and LSBN:<n>, ignoring case.
func Parse(name string) (Variant, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	switch upper {
	case "LSB1":
		return LSB1, nil
	case "LSB4":
		return LSB4, nil
	case "LSBI":
		return LSBI, nil
	}

	if width, ok := strings.CutPrefix(upper, "LSBN:"); ok {
		n, err := strconv.Atoi(width)
		if err != nil {
			return Variant{}, fmt.Errorf("%w: bad bit width %q", stegoerrors.ErrConfiguration, width)
		}
		return Uniform(n)
	}

	return Variant{}, fmt.Errorf("%w: steganography algorithm %q not recognized (LSB1, LSB4, LSBI, LSBN:<n>)",
		stegoerrors.ErrConfiguration, name)
}

// Kind returns the variant tag.
func (v Variant) Kind() Kind { return v.kind }

// BitWidth returns payload bits per embedding site.
func (v Variant) BitWidth() int { return v.bitWidth }

// Name returns the canonical name accepted by Parse.
func (v Variant) Name() string {
	switch v.kind {
	case KindUniform:
		if v.bitWidth == 1 || v.bitWidth == 4 {
			return fmt.Sprintf("LSB%d", v.bitWidth)
		}
		return fmt.Sprintf("LSBN:%d", v.bitWidth)
	case KindAdaptive:
		return "LSBI"
	default:
		return "UNSET"
	}
}

func (v Variant) String() string { return v.Name() }

// Capacity returns the largest payload, in bytes, that Encode accepts for cover.
func (v Variant) Capacity(cover *bitmap.Image) int {
	switch v.kind {
	case KindUniform:
		return uniformCapacity(v.bitWidth, len(cover.Body()))
	case KindAdaptive:
		return adaptiveCapacity(cover.Layout())
	default:
		return 0
	}
}

// Encode embeds secret into a copy of cover's body and returns the stego
// image. Nothing is written when the secret does not fit.
func (v Variant) Encode(secret []byte, cover *bitmap.Image) (*bitmap.Image, error) {
	var (
		body []byte
		err  error
	)
	switch v.kind {
	case KindUniform:
		body, err = encodeUniform(v.bitWidth, secret, cover.Body())
	case KindAdaptive:
		body, err = encodeAdaptive(secret, cover.Body(), cover.Layout())
	default:
		return nil, fmt.Errorf("%w: codec not selected", stegoerrors.ErrConfiguration)
	}
	if err != nil {
		return nil, err
	}
	return cover.WithBody(body), nil
}

// Decode extracts every embedded byte the image can hold. Trailing bytes past
// the real payload are returned as well; the caller trims them.
func (v Variant) Decode(stego *bitmap.Image) ([]byte, error) {
	switch v.kind {
	case KindUniform:
		return decodeUniform(v.bitWidth, stego.Body()), nil
	case KindAdaptive:
		return decodeAdaptive(stego.Body(), stego.Layout()), nil
	default:
		return nil, fmt.Errorf("%w: codec not selected", stegoerrors.ErrConfiguration)
	}
}

// Variants lists the named variants.
func Variants() []Variant {
	return []Variant{LSB1, LSB4, LSBI}
}
