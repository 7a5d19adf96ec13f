package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/stegobmp/pkg/stego/envelope"
	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefaultEnvelopeConfig(t *testing.T) {
	cfg, err := Default().EnvelopeConfig()
	require.NoError(t, err)
	assert.Equal(t, envelope.DefaultConfig(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stegobmp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
steg: LSBI
algorithm: aes256
kdf:
  iterations: 1000
`), 0600))

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "LSBI", conf.Steg)
	assert.Equal(t, "aes256", conf.Algorithm)
	assert.Equal(t, "", conf.Mode)
	assert.Equal(t, "warn", conf.LogLevel)
	assert.Equal(t, "raw", conf.Compression)
	assert.Equal(t, 1000, conf.KDF.Iterations)
	assert.Equal(t, "random", conf.KDF.SaltPolicy)
	assert.Equal(t, envelope.DefaultSaltSize, conf.KDF.SaltSize)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kdf: [not, a, map]"), 0600))
	_, err = Load(path)
	assert.ErrorIs(t, err, stegoerrors.ErrConfiguration)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	conf := Default()
	conf.Steg = "LSB4"
	conf.Compression = "zstd"
	conf.KDF.SaltPolicy = "fixed"
	conf.KDF.Salt = "0102030405060708"

	require.NoError(t, Save(path, conf))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, conf, loaded)
}

func TestApplyEnv(t *testing.T) {
	conf := Default()
	err := conf.ApplyEnv(envMap(map[string]string{
		EnvLogLevel:      "debug",
		EnvKeyIterations: " 2048 ",
		EnvSaltPolicy:    "fixed",
		EnvSalt:          "a0a1a2a3a4a5a6a7a8",
	}))
	require.NoError(t, err)

	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, 2048, conf.KDF.Iterations)

	cfg, err := conf.EnvelopeConfig()
	require.NoError(t, err)
	assert.Equal(t, envelope.SaltFixed, cfg.SaltPolicy)
	assert.Equal(t, []byte{0xa0, 0xa1, 0xa2, 0xa3, 0xa4, 0xa5, 0xa6, 0xa7, 0xa8}, cfg.Salt)
	assert.Equal(t, 2048, cfg.Iterations)
}

func TestApplyEnvIgnoresEmpty(t *testing.T) {
	conf := Default()
	require.NoError(t, conf.ApplyEnv(envMap(map[string]string{EnvLogLevel: "", EnvKeyIterations: ""})))
	assert.Equal(t, Default(), conf)
}

func TestApplyEnvBadIterations(t *testing.T) {
	err := Default().ApplyEnv(envMap(map[string]string{EnvKeyIterations: "many"}))
	assert.ErrorIs(t, err, stegoerrors.ErrConfiguration)
}

func TestEnvelopeConfigFixedDefaultSalt(t *testing.T) {
	conf := Default()
	conf.KDF.SaltPolicy = "FIXED"

	cfg, err := conf.EnvelopeConfig()
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), cfg.Salt)
}

func TestEnvelopeConfigErrors(t *testing.T) {
	testCases := map[string]func(*Config){
		"policy":     func(c *Config) { c.KDF.SaltPolicy = "sometimes" },
		"hex":        func(c *Config) { c.KDF.SaltPolicy = "fixed"; c.KDF.Salt = "zz" },
		"short_salt": func(c *Config) { c.KDF.SaltPolicy = "fixed"; c.KDF.Salt = "0102" },
		"iterations": func(c *Config) { c.KDF.Iterations = 0 },
		"salt_size":  func(c *Config) { c.KDF.SaltSize = 4 },
	}

	for name, mutate := range testCases {
		t.Run(name, func(t *testing.T) {
			conf := Default()
			mutate(conf)
			_, err := conf.EnvelopeConfig()
			assert.ErrorIs(t, err, stegoerrors.ErrConfiguration)
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	assert.Equal(t, dir, ConfigDir())
	assert.Equal(t, "", DefaultPath())

	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("steg: LSB1\n"), 0600))
	assert.Equal(t, path, DefaultPath())
}
