package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/stegobmp/pkg/stego/bitmap/bitmaptest"
	"github.com/provide-io/stegobmp/pkg/stego/checksums"
	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

type cliFixture struct {
	dir    string
	cover  string
	secret string
	data   []byte
}

func newCLIFixture(t *testing.T) cliFixture {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	t.Setenv("STEGOBMP_CONFIG_DIR", filepath.Join(dir, "no-config"))
	t.Setenv("STEGOBMP_KEY_ITERATIONS", "1000")
	t.Setenv("STEGOBMP_LOG_LEVEL", "")
	t.Setenv("STEGOBMP_SALT_POLICY", "")
	t.Setenv("STEGOBMP_SALT", "")

	cover := filepath.Join(dir, "cover.bmp")
	require.NoError(t, os.WriteFile(cover, bitmaptest.Encode(80, 60, 24, bitmaptest.Noise), 0600))

	data := []byte("the cake is a lie")
	secret := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(secret, data, 0600))

	return cliFixture{dir: dir, cover: cover, secret: secret, data: data}
}

func run(t *testing.T, o *options, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	o.stdout, o.stderr = &stdout, &stderr

	cmd := newRootCmdWith(o)
	cmd.SetArgs(normalizeArgs(args))
	err := cmd.Execute()
	t.Logf("stderr: %s", stderr.String())
	return stdout.String(), err
}

func TestNormalizeArgs(t *testing.T) {
	in := []string{"-embed", "-in", "a.txt", "-p", "c.bmp", "-out=o.bmp", "-steg", "LSBI", "-a", "aes256", "--pass", "x", "--", "-in"}
	want := []string{"--embed", "--in", "a.txt", "-p", "c.bmp", "--out=o.bmp", "--steg", "LSBI", "-a", "aes256", "--pass", "x", "--", "-in"}
	assert.Equal(t, want, normalizeArgs(in))
	assert.Equal(t, "-embed", in[0], "input must not be modified")
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		extra []string
	}{
		{name: "plain_lsb1", extra: []string{"-steg", "LSB1"}},
		{name: "lsb4_aes256_cbc", extra: []string{"-steg", "LSB4", "-a", "aes256", "-m", "cbc", "-pass", "secret"}},
		{name: "lsbi_3des_ofb", extra: []string{"--steg", "LSBI", "-a", "3des", "-m", "ofb", "--pass", "secret"}},
		{name: "lsbi_mode_only", extra: []string{"--steg", "lsbi", "-m", "ecb", "--pass", "secret"}},
		{name: "lsbn2_zstd", extra: []string{"--steg", "LSBN:2", "--compress", "zstd"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newCLIFixture(t)

			args := append([]string{"-embed", "-in", fx.secret, "-p", fx.cover, "-out", filepath.Join(fx.dir, "stego.png")}, tc.extra...)
			out, err := run(t, &options{}, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "encoded successfully as "+filepath.Join(fx.dir, "stego.bmp"))

			args = append([]string{"-extract", "-p", filepath.Join(fx.dir, "stego.bmp"), "-out", filepath.Join(fx.dir, "recovered"),
				"--verify", checksums.CalculateChecksum(fx.data, checksums.SHA256)}, tc.extra...)
			out, err = run(t, &options{}, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "decoded successfully as "+filepath.Join(fx.dir, "recovered.txt"))

			data, err := os.ReadFile(filepath.Join(fx.dir, "recovered.txt"))
			require.NoError(t, err)
			assert.Equal(t, fx.data, data)
		})
	}
}

func TestAskPass(t *testing.T) {
	fx := newCLIFixture(t)

	var confirmations []bool
	o := &options{readPassword: func(confirm bool) (string, error) {
		confirmations = append(confirmations, confirm)
		return "typed", nil
	}}
	_, err := run(t, o, "--embed", "--in", fx.secret, "-p", fx.cover, "--out", filepath.Join(fx.dir, "stego"),
		"--steg", "LSB1", "-a", "aes128", "--ask-pass")
	require.NoError(t, err)

	o = &options{readPassword: func(confirm bool) (string, error) {
		confirmations = append(confirmations, confirm)
		return "typed", nil
	}}
	_, err = run(t, o, "--extract", "-p", filepath.Join(fx.dir, "stego.bmp"), "--out", filepath.Join(fx.dir, "out"),
		"--steg", "LSB1", "-a", "aes128", "--ask-pass")
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false}, confirmations)
}

func TestWrongPassword(t *testing.T) {
	fx := newCLIFixture(t)

	_, err := run(t, &options{}, "--embed", "--in", fx.secret, "-p", fx.cover, "--out", filepath.Join(fx.dir, "stego"),
		"--steg", "LSBI", "-a", "aes192", "--pass", "right")
	require.NoError(t, err)

	_, err = run(t, &options{}, "--extract", "-p", filepath.Join(fx.dir, "stego.bmp"), "--out", filepath.Join(fx.dir, "out"),
		"--steg", "LSBI", "-a", "aes192", "--pass", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, stegoerrors.ErrDecryptionFailed) || errors.Is(err, stegoerrors.ErrInvalidFormat), err)

	_, err = os.Stat(filepath.Join(fx.dir, "out.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUsageErrors(t *testing.T) {
	fx := newCLIFixture(t)
	out := filepath.Join(fx.dir, "out")

	testCases := map[string][]string{
		"neither":          {"-p", fx.cover, "--out", out, "--steg", "LSB1"},
		"both":             {"--embed", "--extract", "--in", fx.secret, "-p", fx.cover, "--out", out, "--steg", "LSB1"},
		"missing_cover":    {"--embed", "--in", fx.secret, "--out", out, "--steg", "LSB1"},
		"missing_out":      {"--embed", "--in", fx.secret, "-p", fx.cover, "--steg", "LSB1"},
		"missing_in":       {"--embed", "-p", fx.cover, "--out", out, "--steg", "LSB1"},
		"missing_steg":     {"--embed", "--in", fx.secret, "-p", fx.cover, "--out", out},
		"bad_steg":         {"--embed", "--in", fx.secret, "-p", fx.cover, "--out", out, "--steg", "LSB3"},
		"missing_password": {"--embed", "--in", fx.secret, "-p", fx.cover, "--out", out, "--steg", "LSB1", "-a", "aes128"},
		"bad_algorithm":    {"--embed", "--in", fx.secret, "-p", fx.cover, "--out", out, "--steg", "LSB1", "-a", "rot13", "--pass", "x"},
		"bad_mode":         {"--embed", "--in", fx.secret, "-p", fx.cover, "--out", out, "--steg", "LSB1", "-m", "ctr", "--pass", "x"},
		"bad_compress":     {"--embed", "--in", fx.secret, "-p", fx.cover, "--out", out, "--steg", "LSB1", "--compress", "lz4"},
		"bad_out_mode":     {"--embed", "--in", fx.secret, "-p", fx.cover, "--out", out, "--steg", "LSB1", "--out-mode", "9"},
		"verify_on_embed":  {"--embed", "--in", fx.secret, "-p", fx.cover, "--out", out, "--steg", "LSB1", "--verify", "sha256:00"},
	}

	for name, args := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, &options{}, args...)
			assert.ErrorIs(t, err, stegoerrors.ErrConfiguration)
		})
	}
}

func TestConfigFileSuppliesDefaults(t *testing.T) {
	fx := newCLIFixture(t)
	conf := filepath.Join(fx.dir, "stegobmp.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("steg: LSB4\nalgorithm: aes256\nmode: cfb\ncompression: gzip\n"), 0600))

	_, err := run(t, &options{}, "--embed", "--in", fx.secret, "-p", fx.cover, "--out", filepath.Join(fx.dir, "stego"),
		"--config", conf, "--pass", "pw")
	require.NoError(t, err)

	// flags override the file: the image was written with LSB4, not LSB1
	_, err = run(t, &options{}, "--extract", "-p", filepath.Join(fx.dir, "stego.bmp"), "--out", filepath.Join(fx.dir, "r"),
		"--config", conf, "--pass", "pw", "--steg", "LSB1")
	require.Error(t, err)

	_, err = run(t, &options{}, "--extract", "-p", filepath.Join(fx.dir, "stego.bmp"), "--out", filepath.Join(fx.dir, "r"),
		"--config", conf, "--pass", "pw")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(fx.dir, "r.txt"))
	require.NoError(t, err)
	assert.Equal(t, fx.data, data)
}

func TestConfigInit(t *testing.T) {
	fx := newCLIFixture(t)
	conf := filepath.Join(fx.dir, "nested", "stegobmp.yaml")

	out, err := run(t, &options{}, "config", "init", "--config", conf,
		"--steg", "LSBI", "-a", "aes256", "-m", "ofb", "--compress", "zstd", "--pass", "not-saved")
	require.NoError(t, err)
	assert.Contains(t, out, "Config written to "+conf)

	data, err := os.ReadFile(conf)
	require.NoError(t, err)
	assert.Contains(t, string(data), "steg: LSBI")
	assert.Contains(t, string(data), "iterations: 1000")
	assert.NotContains(t, string(data), "not-saved")

	_, err = run(t, &options{}, "config", "init", "--config", conf)
	assert.ErrorIs(t, err, stegoerrors.ErrConfiguration, "existing file needs --force")

	_, err = run(t, &options{}, "config", "init", "--config", conf, "--steg", "LSB7", "--force")
	assert.ErrorIs(t, err, stegoerrors.ErrConfiguration)

	// the written file drives a round trip with only the password on the command line
	_, err = run(t, &options{}, "--embed", "--in", fx.secret, "-p", fx.cover, "--out", filepath.Join(fx.dir, "stego"),
		"--config", conf, "--pass", "pw")
	require.NoError(t, err)
	_, err = run(t, &options{}, "--extract", "-p", filepath.Join(fx.dir, "stego.bmp"), "--out", filepath.Join(fx.dir, "r"),
		"--config", conf, "--pass", "pw")
	require.NoError(t, err)

	data, err = os.ReadFile(filepath.Join(fx.dir, "r.txt"))
	require.NoError(t, err)
	assert.Equal(t, fx.data, data)

	// without --config the file lands in the config directory
	_, err = run(t, &options{}, "config", "init", "--steg", "LSB4")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(fx.dir, "no-config", "config.yaml"))
}

func TestCapacityCommand(t *testing.T) {
	fx := newCLIFixture(t)

	out, err := run(t, &options{}, "capacity", "-p", fx.cover, "--steg", "LSB1")
	require.NoError(t, err)
	// 80x60 24-bit: 14400 body bytes, (14400-1)/8 = 1799
	assert.Contains(t, out, "may hold 1,799 bytes")
	assert.Contains(t, out, "with LSB1")
	assert.Contains(t, out, "Largest .txt file: 1,790 bytes")
	assert.NotContains(t, out, "Compressible")

	// gzip may grow incompressible input by n/1000+32 bytes
	out, err = run(t, &options{}, "capacity", "-p", fx.cover, "--steg", "LSB1", "--compress", "gzip")
	require.NoError(t, err)
	assert.Contains(t, out, "Largest .txt file: 1,757 bytes")
	assert.Contains(t, out, "Compressible files fit while they shrink to 1,790 bytes")
}

func TestVerifyCommand(t *testing.T) {
	fx := newCLIFixture(t)

	_, err := run(t, &options{}, "--embed", "--in", fx.secret, "-p", fx.cover, "--out", filepath.Join(fx.dir, "stego"),
		"--steg", "LSBI", "-a", "aes128", "-m", "cfb", "--pass", "pw")
	require.NoError(t, err)

	sum := checksums.CalculateChecksum(fx.data, checksums.Blake2b)
	out, err := run(t, &options{}, "verify", "-p", filepath.Join(fx.dir, "stego.bmp"),
		"--steg", "LSBI", "-a", "aes128", "-m", "cfb", "--pass", "pw", "--checksum", sum)
	require.NoError(t, err)
	assert.Contains(t, out, "carries a .txt file")
	assert.Contains(t, out, sum)

	_, err = run(t, &options{}, "verify", "-p", fx.cover, "--steg", "LSBI")
	assert.ErrorIs(t, err, stegoerrors.ErrInvalidFormat)
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, &options{}, "-V")
	require.NoError(t, err)
	assert.Contains(t, out, "stegobmp "+version)
}
