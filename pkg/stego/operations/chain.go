package operations

import (
	"fmt"
	"strings"

	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
)

// MaxChainLength bounds the number of operations in one chain.
const MaxChainLength = 8

// aliases are accepted by ParseChain in addition to the canonical names.
var aliases = map[string]uint8{
	"GZ":  OP_GZIP,
	"BZ2": OP_BZIP2,
	"ZST": OP_ZSTD,
}

func lookupName(name string) (uint8, bool) {
	if id, ok := aliases[name]; ok {
		return id, true
	}
	for id, canonical := range opNames {
		if id != OP_NONE && canonical == name {
			return id, true
		}
	}
	return 0, false
}

// ParseChain parses "raw", a single operation name or a pipe-separated list
// such as "gzip|zstd". An empty string and "raw" yield an empty chain.
func ParseChain(opString string) ([]uint8, error) {
	opString = strings.TrimSpace(opString)
	if opString == "" || strings.EqualFold(opString, "raw") || strings.EqualFold(opString, "none") {
		return nil, nil
	}

	var chain []uint8
	for _, part := range strings.Split(opString, "|") {
		part = strings.TrimSpace(strings.ToUpper(part))
		if part == "" {
			continue
		}

		op, ok := lookupName(part)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported compression %q (raw, gzip, bzip2, zstd)",
				stegoerrors.ErrConfiguration, strings.ToLower(part))
		}
		chain = append(chain, op)
	}

	if len(chain) > MaxChainLength {
		return nil, fmt.Errorf("%w: maximum %d operations allowed, got %d",
			stegoerrors.ErrConfiguration, MaxChainLength, len(chain))
	}
	return chain, nil
}

// ChainString renders a chain in the form ParseChain accepts.
func ChainString(chain []uint8) string {
	if len(chain) == 0 {
		return "raw"
	}
	names := make([]string, len(chain))
	for i, op := range chain {
		names[i] = strings.ToLower(GetName(op))
	}
	return strings.Join(names, "|")
}

// ApplyChain runs each operation of chain over data in order.
func ApplyChain(data []byte, chain []uint8) ([]byte, error) {
	current := data

	for _, opID := range chain {
		op, err := Get(opID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", stegoerrors.ErrConfiguration, err)
		}

		result, err := op.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", op.Name(), err)
		}

		current = result
	}

	return current, nil
}

// ReverseChain undoes a chain, last operation first. Data that does not
// decode is reported as ErrInvalidFormat.
func ReverseChain(data []byte, chain []uint8) ([]byte, error) {
	current := data

	for i := len(chain) - 1; i >= 0; i-- {
		op, err := Get(chain[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", stegoerrors.ErrConfiguration, err)
		}

		result, err := op.Reverse(current)
		if err != nil {
			return nil, fmt.Errorf("%w: reversing %s: %v", stegoerrors.ErrInvalidFormat, op.Name(), err)
		}

		current = result
	}

	return current, nil
}

// EstimateChain estimates the output size of applying chain to n bytes.
func EstimateChain(n int64, chain []uint8) int64 {
	for _, opID := range chain {
		if op, err := Get(opID); err == nil {
			n = op.EstimateSize(n)
		}
	}
	return n
}
