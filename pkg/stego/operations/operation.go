// Package operations holds reversible byte transformations applied to a
// payload before it is framed, and undone after extraction.
package operations

import (
	"fmt"
	"sort"
	"sync"
)

// Operation identifiers. Compression lives in the 0x10-0x1F range.
const (
	OP_NONE = 0x00

	OP_GZIP  = 0x10 // GZIP compression
	OP_BZIP2 = 0x13 // BZIP2 compression
	OP_ZSTD  = 0x1B // Zstandard compression
)

// opNames are the canonical names, as rendered by ChainString.
var opNames = map[uint8]string{
	OP_NONE:  "NONE",
	OP_GZIP:  "GZIP",
	OP_BZIP2: "BZIP2",
	OP_ZSTD:  "ZSTD",
}

// Operation is a whole-buffer reversible transform. Implementations must be
// safe for concurrent use; one instance serves every pipeline.
type Operation interface {
	ID() uint8
	Name() string

	Apply(input []byte) ([]byte, error)
	// Reverse undoes Apply. Input that Apply could not have produced is an error.
	Reverse(input []byte) ([]byte, error)

	// EstimateSize bounds the Apply output for an input of inputSize bytes.
	EstimateSize(inputSize int64) int64
}

// BaseOperation carries the identity of an Operation. Embed it and
// implement Apply and Reverse; the default EstimateSize is the identity.
type BaseOperation struct {
	OpID   uint8
	OpName string
}

func (o *BaseOperation) ID() uint8                          { return o.OpID }
func (o *BaseOperation) Name() string                       { return o.OpName }
func (o *BaseOperation) EstimateSize(inputSize int64) int64 { return inputSize }

var (
	registryMu sync.RWMutex
	registry   = make(map[uint8]Operation)
)

// Register makes op available to chains. A later registration with the same
// ID replaces the earlier one.
func Register(op Operation) {
	registryMu.Lock()
	registry[op.ID()] = op
	registryMu.Unlock()
}

// Get returns the registered operation for id.
func Get(id uint8) (Operation, error) {
	registryMu.RLock()
	op, ok := registry[id]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("operation %s (0x%02x) is not registered", GetName(id), id)
	}
	return op, nil
}

// Registered lists the registered IDs in ascending order.
func Registered() []uint8 {
	registryMu.RLock()
	ids := make([]uint8, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	registryMu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GetName returns the canonical name for id, registered or not.
func GetName(id uint8) string {
	if name, ok := opNames[id]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_%02x", id)
}
