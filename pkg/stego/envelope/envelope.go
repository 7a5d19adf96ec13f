// Package envelope encrypts a payload with a password-derived key.
//
// Envelope layout: salt || iv || ciphertext. The IV is absent in ECB mode.
// Key and IV are both derived from the same password and salt with
// PBKDF2-HMAC-SHA256, using the algorithm's key and IV lengths.
package envelope

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

// SaltPolicy selects where the salt comes from.
type SaltPolicy string

const (
	SaltRandom SaltPolicy = "random" // fresh salt from crypto/rand on every call
	SaltFixed  SaltPolicy = "fixed"  // configured salt reused on every call
)

const (
	DefaultIterations = 65536
	DefaultSaltSize   = 16
	DefaultFixedSalt  = "0000000000000000" // hex, 8 zero bytes
	MinSaltSize       = 8
)

// Config carries the key derivation parameters. It is passed explicitly so no
// package reads cryptographic settings from the process environment.
type Config struct {
	Iterations int
	SaltPolicy SaltPolicy
	SaltSize   int    // random policy only
	Salt       []byte // fixed policy only
}

// DefaultConfig uses a random 16-byte salt and 65536 iterations.
func DefaultConfig() Config {
	return Config{
		Iterations: DefaultIterations,
		SaltPolicy: SaltRandom,
		SaltSize:   DefaultSaltSize,
	}
}

// ParseSaltPolicy parses "random" or "fixed".
func ParseSaltPolicy(name string) (SaltPolicy, error) {
	switch SaltPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case SaltRandom:
		return SaltRandom, nil
	case SaltFixed:
		return SaltFixed, nil
	default:
		return "", fmt.Errorf("%w: salt policy %q not recognized", stegoerrors.ErrConfiguration, name)
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("%w: key iterations must be positive, got %d", stegoerrors.ErrConfiguration, c.Iterations)
	}
	switch c.SaltPolicy {
	case SaltRandom:
		if c.SaltSize < MinSaltSize {
			return fmt.Errorf("%w: salt size must be at least %d bytes, got %d", stegoerrors.ErrConfiguration, MinSaltSize, c.SaltSize)
		}
	case SaltFixed:
		if len(c.Salt) < MinSaltSize {
			return fmt.Errorf("%w: fixed salt must be at least %d bytes, got %d", stegoerrors.ErrConfiguration, MinSaltSize, len(c.Salt))
		}
	default:
		return fmt.Errorf("%w: salt policy %q not recognized", stegoerrors.ErrConfiguration, c.SaltPolicy)
	}
	return nil
}

// saltSize is the number of salt bytes at the front of every envelope.
func (c Config) saltSize() int {
	if c.SaltPolicy == SaltFixed {
		return len(c.Salt)
	}
	return c.SaltSize
}

// Envelope encrypts and decrypts payloads for one algorithm and mode.
type Envelope struct {
	algorithm Algorithm
	mode      Mode
	config    Config
	random    io.Reader
}

// New validates the algorithm, mode and configuration.
func New(algorithm Algorithm, mode Mode, config Config) (*Envelope, error) {
	if algorithm.KeySize() == 0 {
		return nil, fmt.Errorf("%w: unsupported algorithm %s", stegoerrors.ErrConfiguration, algorithm)
	}
	if mode < ECB || mode > OFB {
		return nil, fmt.Errorf("%w: unsupported mode %s", stegoerrors.ErrConfiguration, mode)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Envelope{
		algorithm: algorithm,
		mode:      mode,
		config:    config,
		random:    rand.Reader,
	}, nil
}

// Algorithm returns the configured algorithm.
func (e *Envelope) Algorithm() Algorithm { return e.algorithm }

// Mode returns the configured mode.
func (e *Envelope) Mode() Mode { return e.mode }

// ivSize is 0 for ECB.
func (e *Envelope) ivSize() int {
	if !e.mode.UsesIV() {
		return 0
	}
	return e.algorithm.IVSize()
}

// Overhead returns the envelope size minus the plaintext size for a
// plaintext of n bytes.
func (e *Envelope) Overhead(n int) int {
	bs := e.algorithm.IVSize()
	return e.config.saltSize() + e.ivSize() + (bs - n%bs)
}

// Encrypt pads plaintext and returns salt || iv || ciphertext.
func (e *Envelope) Encrypt(plaintext []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required for encryption", stegoerrors.ErrConfiguration)
	}

	salt, err := e.newSalt()
	if err != nil {
		return nil, err
	}

	block, iv, err := e.derive(password, salt)
	if err != nil {
		return nil, err
	}

	padded := pad(plaintext, block.BlockSize())
	ciphertext := make([]byte, len(padded))
	switch e.mode {
	case ECB:
		newECBEncrypter(block).CryptBlocks(ciphertext, padded)
	case CBC:
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	case CFB:
		cipher.NewCFBEncrypter(block, iv).XORKeyStream(ciphertext, padded)
	case OFB:
		cipher.NewOFB(block, iv).XORKeyStream(ciphertext, padded)
	}

	out := make([]byte, 0, len(salt)+len(iv)+len(ciphertext))
	out = append(out, salt...)
	out = append(out, iv...)
	out = append(out, ciphertext...)
	return out, nil
}

// Decrypt reverses Encrypt. A wrong password, algorithm or mode shows up as
// ErrDecryptionFailed.
func (e *Envelope) Decrypt(envelope []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required for decryption", stegoerrors.ErrConfiguration)
	}

	saltSize := e.config.saltSize()
	ivSize := e.ivSize()
	bs := e.algorithm.IVSize()
	if len(envelope) < saltSize+ivSize+bs || (len(envelope)-saltSize-ivSize)%bs != 0 {
		return nil, fmt.Errorf("%w: envelope of %d bytes does not fit %s/%s",
			stegoerrors.ErrDecryptionFailed, len(envelope), e.algorithm, e.mode)
	}

	salt := envelope[:saltSize]
	storedIV := envelope[saltSize : saltSize+ivSize]
	ciphertext := envelope[saltSize+ivSize:]

	block, iv, err := e.derive(password, salt)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(iv, storedIV) != 1 {
		return nil, fmt.Errorf("%w: derived IV does not match", stegoerrors.ErrDecryptionFailed)
	}

	padded := make([]byte, len(ciphertext))
	switch e.mode {
	case ECB:
		newECBDecrypter(block).CryptBlocks(padded, ciphertext)
	case CBC:
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)
	case CFB:
		cipher.NewCFBDecrypter(block, iv).XORKeyStream(padded, ciphertext)
	case OFB:
		cipher.NewOFB(block, iv).XORKeyStream(padded, ciphertext)
	}

	return unpad(padded, bs)
}

func (e *Envelope) newSalt() ([]byte, error) {
	if e.config.SaltPolicy == SaltFixed {
		return bytes.Clone(e.config.Salt), nil
	}
	salt := make([]byte, e.config.SaltSize)
	if _, err := io.ReadFull(e.random, salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}

// derive builds the cipher from the derived key and, for modes that need one,
// derives the IV from the same password and salt.
func (e *Envelope) derive(password string, salt []byte) (cipher.Block, []byte, error) {
	key := deriveKey(password, salt, e.config.Iterations, e.algorithm.KeySize()/8)
	block, err := e.algorithm.newCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing %s: %w", e.algorithm, err)
	}

	var iv []byte
	if e.mode.UsesIV() {
		iv = deriveKey(password, salt, e.config.Iterations, e.algorithm.IVSize())
	}
	return block, iv, nil
}

func deriveKey(password string, salt []byte, iterations, size int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, size, sha256.New)
}
