package outfile

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// ErrInsufficientSpace is returned when the output volume cannot hold a file.
var ErrInsufficientSpace = errors.New("❌ insufficient disk space")

// CheckSpace fails when dir is known to have less than needed bytes free.
// When free space cannot be determined the check passes.
func CheckSpace(dir string, needed int64) error {
	available, err := availableSpace(dir)
	if err != nil || available < 0 {
		return nil
	}
	if available < needed {
		return fmt.Errorf("%w: need %s, %s available in %s", ErrInsufficientSpace,
			humanize.Bytes(uint64(needed)), humanize.Bytes(uint64(available)), dir)
	}
	return nil
}
