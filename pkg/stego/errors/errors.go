package errors

import (
	"errors"
	"fmt"
)

var (
	// Capacity errors 📏
	ErrSecretTooLarge = errors.New("❌ secret too large for cover image")
	ErrBufferTooSmall = errors.New("❌ destination buffer too small")

	// Format errors 📦
	ErrInvalidFormat = errors.New("❌ invalid message format")
	ErrCorruptHeader = errors.New("❌ corrupt bitmap header")

	// Security errors 🔒
	ErrDecryptionFailed = errors.New("❌ decryption failed")
	ErrChecksumMismatch = errors.New("❌ checksum mismatch")

	// Setup errors ⚙️
	ErrConfiguration = errors.New("❌ invalid configuration")
)

// SecretTooLargeError reports how many payload bytes a cover can carry and how
// many were requested. It matches ErrSecretTooLarge under errors.Is.
type SecretTooLargeError struct {
	MaxBytes    int
	ActualBytes int
}

func (e *SecretTooLargeError) Error() string {
	return fmt.Sprintf(
		"%v: the maximum allowed size for the selected cover image is %d bytes, but the secret is %d bytes",
		ErrSecretTooLarge, e.MaxBytes, e.ActualBytes,
	)
}

func (e *SecretTooLargeError) Is(target error) bool {
	return target == ErrSecretTooLarge
}

// NewSecretTooLarge builds a SecretTooLargeError.
func NewSecretTooLarge(maxBytes, actualBytes int) error {
	return &SecretTooLargeError{MaxBytes: maxBytes, ActualBytes: actualBytes}
}
