package checksums

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

func TestCalculateChecksum(t *testing.T) {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "checksums_test",
		Level: hclog.Debug,
	})

	data := []byte("abc")
	testCases := []struct {
		algo     Algorithm
		expected string
	}{
		{SHA256, "sha256:ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{SHA512, "sha512:ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"},
		{Adler32, "adler32:024d0127"},
		{Blake2b, "blake2b:bddd813c634239723171ef3fee98579b94964e3bb1cb3e427262c8c068d52319"},
	}

	for _, tc := range testCases {
		t.Run(tc.algo.String(), func(t *testing.T) {
			sum := CalculateChecksum(data, tc.algo)
			logger.Debug("🔢 Checksum", "algo", tc.algo, "sum", sum)
			assert.Equal(t, tc.expected, sum)

			ok, err := VerifyChecksum(data, sum)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestParseChecksum(t *testing.T) {
	algo, value, err := ParseChecksum("adler32:024d0127")
	require.NoError(t, err)
	assert.Equal(t, Adler32, algo)
	assert.Equal(t, "024d0127", value)

	algo, _, err = ParseChecksum("024d0127")
	require.NoError(t, err)
	assert.Equal(t, Adler32, algo)

	algo, _, err = ParseChecksum(string(make([]byte, 128)))
	require.NoError(t, err)
	assert.Equal(t, SHA512, algo)

	_, _, err = ParseChecksum("md5:abcd")
	assert.Error(t, err)
	_, _, err = ParseChecksum(":abcd")
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	data := []byte("payload")
	sum := CalculateChecksum(data, SHA256)

	assert.NoError(t, Verify(data, sum))
	assert.ErrorIs(t, Verify([]byte("tampered"), sum), stegoerrors.ErrChecksumMismatch)

	ok, err := VerifyChecksum(data, "sha256:"+"00")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseAlgorithm(t *testing.T) {
	for name, want := range map[string]Algorithm{
		"":        SHA256,
		"SHA256":  SHA256,
		"sha512":  SHA512,
		"adler32": Adler32,
		"blake2b": Blake2b,
	} {
		got, err := ParseAlgorithm(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseAlgorithm("crc32")
	assert.ErrorIs(t, err, stegoerrors.ErrConfiguration)
}
