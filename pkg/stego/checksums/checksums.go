// Package checksums computes prefixed digests used to verify that an
// extracted payload matches what was embedded.
//
// Format: "algorithm:hexvalue" (e.g., "sha256:c0ffee123...", "adler32:babe1337")
package checksums

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/adler32"
	"strings"

	"golang.org/x/crypto/blake2b"

	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

// Algorithm represents supported checksum algorithms
type Algorithm int

const (
	SHA256 Algorithm = iota
	SHA512
	Adler32
	Blake2b
)

// Default is used when no algorithm is named.
const Default = SHA256

func (c Algorithm) String() string {
	switch c {
	case SHA256:
		return "sha256"
	case SHA512:
		return "sha512"
	case Adler32:
		return "adler32"
	case Blake2b:
		return "blake2b"
	default:
		return "unknown"
	}
}

func (c Algorithm) newHash() hash.Hash {
	switch c {
	case SHA512:
		return sha512.New()
	case Adler32:
		return adler32.New()
	case Blake2b:
		h, _ := blake2b.New256(nil) // only fails for oversized keys
		return h
	default:
		return sha256.New()
	}
}

// ParseAlgorithm maps a name such as "sha256" to its Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sha256":
		return SHA256, nil
	case "sha512":
		return SHA512, nil
	case "adler32":
		return Adler32, nil
	case "blake2b", "blake2b-256":
		return Blake2b, nil
	default:
		return SHA256, fmt.Errorf("%w: unknown checksum algorithm: %s", stegoerrors.ErrConfiguration, name)
	}
}

// ParseChecksum parses a checksum string that may or may not have a prefix
func ParseChecksum(checksumStr string) (Algorithm, string, error) {
	if prefix, value, ok := strings.Cut(checksumStr, ":"); ok {
		algo, err := ParseAlgorithm(prefix)
		if err != nil || prefix == "" {
			return SHA256, "", fmt.Errorf("invalid checksum format: %s", checksumStr)
		}
		return algo, value, nil
	}

	// Unprefixed - guess based on length
	var algo Algorithm
	switch len(checksumStr) {
	case 128:
		algo = SHA512
	case 8:
		algo = Adler32
	default:
		algo = SHA256
	}

	return algo, checksumStr, nil
}

// CalculateChecksum calculates checksum with prefix
func CalculateChecksum(data []byte, algorithm Algorithm) string {
	h := algorithm.newHash()
	h.Write(data)
	return algorithm.String() + ":" + hex.EncodeToString(h.Sum(nil))
}

// VerifyChecksum verifies data against a checksum string
func VerifyChecksum(data []byte, checksumStr string) (bool, error) {
	algo, expected, err := ParseChecksum(checksumStr)
	if err != nil {
		return false, err
	}

	_, actual, _ := strings.Cut(CalculateChecksum(data, algo), ":")
	return strings.EqualFold(actual, expected), nil
}

// Verify is VerifyChecksum returning ErrChecksumMismatch on a mismatch.
func Verify(data []byte, checksumStr string) error {
	ok, err := VerifyChecksum(data, checksumStr)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: expected %s, got %s", stegoerrors.ErrChecksumMismatch,
			checksumStr, CalculateChecksum(data, mustAlgorithm(checksumStr)))
	}
	return nil
}

func mustAlgorithm(checksumStr string) Algorithm {
	algo, _, _ := ParseChecksum(checksumStr)
	return algo
}
