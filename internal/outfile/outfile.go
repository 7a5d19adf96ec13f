// Package outfile names and writes the files produced by embed and extract.
package outfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ImageExtension is forced onto every stego image written.
const ImageExtension = ".bmp"

// SecretExtension returns the extension recorded for a secret file: the text
// from the last '.' of its base name, or "." when the name has none.
func SecretExtension(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return "."
}

// trimExtension drops the extension of the base name, keeping the directory.
func trimExtension(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// EmbedPath replaces the extension of out with .bmp.
func EmbedPath(out string) string {
	return trimExtension(out) + ImageExtension
}

// ExtractPath replaces the extension of out with the recovered one. A bare
// "." extension leaves the name without an extension.
func ExtractPath(out, extension string) string {
	if extension == "." {
		extension = ""
	}
	return trimExtension(out) + extension
}

// Write stores size bytes produced by write at path. The data goes through
// a temporary file in the same directory, so a failed write never leaves a
// partial file behind.
func Write(path string, mode os.FileMode, size int64, write func(io.Writer) error) error {
	if err := CheckSpace(filepath.Dir(path), size); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// WriteBytes is Write for an in-memory buffer.
func WriteBytes(path string, mode os.FileMode, data []byte) error {
	return Write(path, mode, int64(len(data)), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
