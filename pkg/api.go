package pkg

import (
	"fmt"
	"io"
	"os"

	"github.com/provide-io/stegobmp/internal/outfile"
	"github.com/provide-io/stegobmp/pkg/stego"
	"github.com/provide-io/stegobmp/pkg/stego/bitmap"
	"github.com/provide-io/stegobmp/pkg/stego/checksums"
)

// FileOptions controls how results are written.
type FileOptions struct {
	// Mode is the permission of files written. Zero means 0600.
	Mode os.FileMode

	// Verify, when set, is an "algo:hex" checksum the extracted content
	// must match. Nothing is written on a mismatch.
	Verify string
}

func (o FileOptions) mode() os.FileMode {
	if o.Mode == 0 {
		return outfile.DefaultFileMode
	}
	return o.Mode
}

// EmbedResult describes a written stego image.
type EmbedResult struct {
	Path     string
	Checksum string // of the secret file content
	Bytes    int    // secret file size
	Capacity int    // codec capacity of the cover in bytes
}

// ExtractResult describes a recovered secret file.
type ExtractResult struct {
	Path      string
	Extension string
	Checksum  string
	Bytes     int
}

// EmbedFile hides secretPath in coverPath and writes the stego image next to
// outputPath with its extension replaced by .bmp.
func EmbedFile(secretPath, coverPath, outputPath string, p *stego.Pipeline, opts FileOptions) (*EmbedResult, error) {
	content, err := os.ReadFile(secretPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret file: %w", err)
	}

	cover, err := bitmap.Load(coverPath)
	if err != nil {
		return nil, err
	}

	img, err := p.Encode(content, outfile.SecretExtension(secretPath), cover)
	if err != nil {
		return nil, err
	}

	path := outfile.EmbedPath(outputPath)
	if err := outfile.Write(path, opts.mode(), img.Size(), func(w io.Writer) error {
		_, err := img.WriteTo(w)
		return err
	}); err != nil {
		return nil, err
	}

	return &EmbedResult{
		Path:     path,
		Checksum: checksums.CalculateChecksum(content, checksums.Default),
		Bytes:    len(content),
		Capacity: p.Capacity(cover),
	}, nil
}

// ExtractFile recovers the file hidden in stegoPath. The output name is
// outputPath with its extension replaced by the recovered one.
func ExtractFile(stegoPath, outputPath string, p *stego.Pipeline, opts FileOptions) (*ExtractResult, error) {
	img, err := bitmap.Load(stegoPath)
	if err != nil {
		return nil, err
	}

	content, extension, err := p.Decode(img)
	if err != nil {
		return nil, err
	}

	sum, err := checksumFor(content, opts.Verify)
	if err != nil {
		return nil, err
	}

	path := outfile.ExtractPath(outputPath, extension)
	if err := outfile.WriteBytes(path, opts.mode(), content); err != nil {
		return nil, err
	}

	return &ExtractResult{
		Path:      path,
		Extension: extension,
		Checksum:  sum,
		Bytes:     len(content),
	}, nil
}

// checksumFor verifies content against expected when given, and returns
// the content checksum in the same algorithm (sha256 otherwise).
func checksumFor(content []byte, expected string) (string, error) {
	if expected == "" {
		return checksums.CalculateChecksum(content, checksums.Default), nil
	}
	algo, _, err := checksums.ParseChecksum(expected)
	if err != nil {
		return "", err
	}
	if err := checksums.Verify(content, expected); err != nil {
		return "", err
	}
	return checksums.CalculateChecksum(content, algo), nil
}

// CapacityReport summarizes how much a cover can carry.
type CapacityReport struct {
	Width, Height int
	BodyBytes     int
	Capacity      int // payload bytes, framing and envelope included
	MaxContent    int // largest secret, measured after compression, -1 if none fits
	MaxFile       int // largest secret that fits even if compression gains nothing
}

// CoverCapacity reports the capacity of coverPath for a secret file with the
// given extension.
func CoverCapacity(coverPath, extension string, p *stego.Pipeline) (*CapacityReport, error) {
	cover, err := bitmap.Load(coverPath)
	if err != nil {
		return nil, err
	}
	w, h := cover.Dimensions()
	return &CapacityReport{
		Width:      w,
		Height:     h,
		BodyBytes:  len(cover.Body()),
		Capacity:   p.Capacity(cover),
		MaxContent: p.MaxContentSize(cover, extension),
		MaxFile:    p.MaxFileSize(cover, extension),
	}, nil
}
