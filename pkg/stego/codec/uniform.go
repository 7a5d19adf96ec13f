package codec

import (
	"bytes"

	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

// uniformCapacity is the largest s with s*ratio < bodyLen.
func uniformCapacity(n, bodyLen int) int {
	if bodyLen == 0 {
		return 0
	}
	return (bodyLen - 1) / (8 / n)
}

// encodeUniform writes each payload byte as 8/n groups of n bits, most
// significant group first, into the low n bits of consecutive cover bytes.
func encodeUniform(n int, secret, cover []byte) ([]byte, error) {
	ratio := 8 / n
	if len(secret)*ratio >= len(cover) {
		return nil, stegoerrors.NewSecretTooLarge(len(cover)/ratio, len(secret))
	}

	highMask := byte(0xFF << n)
	dataMask := byte(0xFF >> (8 - n))

	out := bytes.Clone(cover)
	b := 0
	for _, s := range secret {
		for i := ratio - 1; i >= 0; i-- {
			out[b] = out[b]&highMask | (s>>(n*i))&dataMask
			b++
		}
	}
	return out, nil
}

func decodeUniform(n int, stego []byte) []byte {
	ratio := 8 / n
	dataMask := byte(0xFF >> (8 - n))

	out := make([]byte, len(stego)/ratio)
	for i := range out {
		var v byte
		for _, c := range stego[i*ratio : (i+1)*ratio] {
			v = v<<n | c&dataMask
		}
		out[i] = v
	}
	return out
}
