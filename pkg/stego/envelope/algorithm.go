package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"fmt"
	"strings"

	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

// Algorithm identifies a block cipher and its key and IV sizes.
type Algorithm int

const (
	AES128 Algorithm = iota
	AES192
	AES256
	TripleDES
)

// Mode is the block cipher mode of operation.
type Mode int

const (
	ECB Mode = iota
	CBC
	CFB
	OFB
)

// Defaults used when only one of algorithm / mode is configured.
const (
	DefaultAlgorithm = AES128
	DefaultMode      = CBC
)

func (a Algorithm) String() string {
	switch a {
	case AES128:
		return "AES128"
	case AES192:
		return "AES192"
	case AES256:
		return "AES256"
	case TripleDES:
		return "3DES"
	default:
		return fmt.Sprintf("UNKNOWN_%d", int(a))
	}
}

// Primitive is the name of the underlying block cipher.
func (a Algorithm) Primitive() string {
	if a == TripleDES {
		return "DESede"
	}
	return "AES"
}

// KeySize returns the key length in bits.
func (a Algorithm) KeySize() int {
	switch a {
	case AES128:
		return 128
	case AES192:
		return 192
	case AES256:
		return 256
	case TripleDES:
		return 192
	default:
		return 0
	}
}

// IVSize returns the IV length in bytes, equal to the cipher block size.
func (a Algorithm) IVSize() int {
	if a == TripleDES {
		return des.BlockSize
	}
	return aes.BlockSize
}

func (a Algorithm) newCipher(key []byte) (cipher.Block, error) {
	switch a {
	case AES128, AES192, AES256:
		return aes.NewCipher(key)
	case TripleDES:
		return des.NewTripleDESCipher(key)
	default:
		return nil, fmt.Errorf("%w: unsupported algorithm %s", stegoerrors.ErrConfiguration, a)
	}
}

func (m Mode) String() string {
	switch m {
	case ECB:
		return "ECB"
	case CBC:
		return "CBC"
	case CFB:
		return "CFB"
	case OFB:
		return "OFB"
	default:
		return fmt.Sprintf("UNKNOWN_%d", int(m))
	}
}

// UsesIV reports whether the mode needs an initialization vector.
func (m Mode) UsesIV() bool {
	return m != ECB
}

// ParseAlgorithm parses names such as "aes128", "AES256" or "3des".
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "aes128":
		return AES128, nil
	case "aes192":
		return AES192, nil
	case "aes256":
		return AES256, nil
	case "3des", "des3", "desede", "tripledes":
		return TripleDES, nil
	default:
		return 0, fmt.Errorf("%w: encryption algorithm %q not recognized", stegoerrors.ErrConfiguration, name)
	}
}

// ParseMode parses "ecb", "cbc", "cfb" or "ofb" in any case.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ecb":
		return ECB, nil
	case "cbc":
		return CBC, nil
	case "cfb":
		return CFB, nil
	case "ofb":
		return OFB, nil
	default:
		return 0, fmt.Errorf("%w: encryption mode %q not recognized", stegoerrors.ErrConfiguration, name)
	}
}

// Algorithms lists every supported algorithm.
func Algorithms() []Algorithm {
	return []Algorithm{AES128, AES192, AES256, TripleDES}
}

// Modes lists every supported mode.
func Modes() []Mode {
	return []Mode{ECB, CBC, CFB, OFB}
}
