// Package config resolves CLI settings from defaults, a YAML file and the
// process environment.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/provide-io/stegobmp/pkg/stego/envelope"
	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvLogLevel      = "STEGOBMP_LOG_LEVEL"
	EnvKeyIterations = "STEGOBMP_KEY_ITERATIONS"
	EnvSaltPolicy    = "STEGOBMP_SALT_POLICY"
	EnvSalt          = "STEGOBMP_SALT"
)

// KDFConfig holds the key derivation settings.
type KDFConfig struct {
	Iterations int    `yaml:"iterations"`
	SaltPolicy string `yaml:"salt_policy"` // random | fixed
	Salt       string `yaml:"salt"`        // hex, fixed policy only
	SaltSize   int    `yaml:"salt_size"`   // random policy only
}

// Config is the resolved tool configuration. Empty strings mean "not set";
// the CLI decides what that implies.
type Config struct {
	LogLevel    string    `yaml:"log_level"`
	Steg        string    `yaml:"steg"`
	Algorithm   string    `yaml:"algorithm"`
	Mode        string    `yaml:"mode"`
	Compression string    `yaml:"compression"`
	KDF         KDFConfig `yaml:"kdf"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:    "warn",
		Compression: "raw",
		KDF: KDFConfig{
			Iterations: envelope.DefaultIterations,
			SaltPolicy: string(envelope.SaltRandom),
			SaltSize:   envelope.DefaultSaltSize,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path. Keys missing
// from the file keep their default value.
func Load(path string) (*Config, error) {
	conf := Default()
	if path == "" {
		return conf, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", stegoerrors.ErrConfiguration, path, err)
	}
	return conf, nil
}

// Save writes the configuration as YAML, creating the parent directory.
func Save(path string, conf *Config) error {
	data, err := yaml.Marshal(conf)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ApplyEnv overlays STEGOBMP_* variables found through lookup, normally
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvKeyIterations); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", stegoerrors.ErrConfiguration, EnvKeyIterations, v)
		}
		c.KDF.Iterations = n
	}
	if v, ok := lookup(EnvSaltPolicy); ok && v != "" {
		c.KDF.SaltPolicy = v
	}
	if v, ok := lookup(EnvSalt); ok && v != "" {
		c.KDF.Salt = v
	}
	return nil
}

// EnvelopeConfig converts the KDF settings for envelope.New. A fixed policy
// without a salt uses envelope.DefaultFixedSalt.
func (c *Config) EnvelopeConfig() (envelope.Config, error) {
	policy, err := envelope.ParseSaltPolicy(c.KDF.SaltPolicy)
	if err != nil {
		return envelope.Config{}, err
	}

	out := envelope.Config{
		Iterations: c.KDF.Iterations,
		SaltPolicy: policy,
		SaltSize:   c.KDF.SaltSize,
	}
	if policy == envelope.SaltFixed {
		saltHex := c.KDF.Salt
		if saltHex == "" {
			saltHex = envelope.DefaultFixedSalt
		}
		out.Salt, err = hex.DecodeString(saltHex)
		if err != nil {
			return envelope.Config{}, fmt.Errorf("%w: salt must be hex: %v", stegoerrors.ErrConfiguration, err)
		}
	}

	if err := out.Validate(); err != nil {
		return envelope.Config{}, err
	}
	return out, nil
}
