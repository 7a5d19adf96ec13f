package outfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

// DefaultFileMode keeps recovered secrets and stego images private.
const DefaultFileMode os.FileMode = 0o600

// ParseMode parses an octal permission string into a file mode
// Handles formats like "644", "0644", "0o644"
func ParseMode(s string) (os.FileMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultFileMode, nil
	}

	// Remove common prefixes
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0")
	if digits == "" {
		digits = "0"
	}

	val, err := strconv.ParseUint(digits, 8, 16)
	if err != nil || val > 0o777 {
		return DefaultFileMode, fmt.Errorf("%w: invalid permission string %q", stegoerrors.ErrConfiguration, s)
	}
	if val&0o600 != 0o600 {
		return DefaultFileMode, fmt.Errorf("%w: permission %s must leave the owner read and write access",
			stegoerrors.ErrConfiguration, FormatMode(os.FileMode(val)))
	}

	return os.FileMode(val), nil
}

// FormatMode formats a permission value as an octal string
func FormatMode(mode os.FileMode) string {
	return fmt.Sprintf("0%o", mode.Perm())
}
