package pkg

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/stegobmp/pkg/logging"
	"github.com/provide-io/stegobmp/pkg/stego"
	"github.com/provide-io/stegobmp/pkg/stego/bitmap"
)

// VerifyStegoWithLogger checks that stegoPath carries a payload the pipeline
// can recover, without writing it. Each check is logged; the first failure
// is returned.
func VerifyStegoWithLogger(stegoPath string, p *stego.Pipeline, expected string, logger hclog.Logger) (*ExtractResult, error) {
	logger.Info("Verifying stego image", "path", stegoPath, "codec", p.Variant())

	img, err := bitmap.Load(stegoPath)
	if err != nil {
		logger.Error("Bitmap verification failed", "error", err)
		return nil, err
	}
	w, h := img.Dimensions()
	logger.Info("✓ Bitmap header valid", "width", w, "height", h,
		"body", humanize.Bytes(uint64(len(img.Body()))))

	content, extension, err := p.Decode(img)
	if err != nil {
		logger.Error("Payload verification failed", "error", err)
		return nil, err
	}
	if p.Encrypted() {
		logger.Info("✓ Envelope decrypted")
	}
	logger.Info("✓ Message framing valid", "extension", extension,
		"content", humanize.Bytes(uint64(len(content))))

	sum, err := checksumFor(content, expected)
	if err != nil {
		logger.Error("✗ Checksum verification failed", "error", err)
		return nil, err
	}
	if expected != "" {
		logger.Info("✓ Checksum matches", "checksum", sum)
	}

	logger.Info("✓ Stego verification passed")
	return &ExtractResult{
		Extension: extension,
		Checksum:  sum,
		Bytes:     len(content),
	}, nil
}

// VerifyStego verifies a stego image using default logger settings
func VerifyStego(stegoPath string, p *stego.Pipeline, expected string) (*ExtractResult, error) {
	logger := logging.NewLogger("stegobmp-verify", logging.GetLogLevel(), nil)
	res, err := VerifyStegoWithLogger(stegoPath, p, expected, logger)
	if err != nil {
		return nil, fmt.Errorf("verification of %s failed: %w", stegoPath, err)
	}
	return res, nil
}
