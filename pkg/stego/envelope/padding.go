package envelope

import (
	"bytes"
	"fmt"

	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

// pad applies PKCS#7 padding. A full block is added when data is already aligned.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data), len(data)+n)
	copy(out, data)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: padded length %d is not a multiple of %d", stegoerrors.ErrDecryptionFailed, len(data), blockSize)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: bad padding", stegoerrors.ErrDecryptionFailed)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", stegoerrors.ErrDecryptionFailed)
		}
	}
	return data[:len(data)-n], nil
}
