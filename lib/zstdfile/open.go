// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package zstdfile

import (
	"errors"
	"io/fs"
	"os"
)

// Open returns a read-only descriptor over the uncompressed content of
// basePath. If basePath exists it is opened directly. Otherwise
// basePath+Suffix is decompressed. When neither exists the error
// satisfies errors.Is(err, fs.ErrNotExist).
//
// The raw file always wins when both variants are present.
func (d *Decompressor) Open(basePath string) (*os.File, error) {
	_, err := os.Stat(basePath)
	if err == nil {
		return os.Open(basePath)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	compressedPath := basePath + Suffix
	if _, err := os.Stat(compressedPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &fs.PathError{Op: "open", Path: basePath, Err: fs.ErrNotExist}
		}
		return nil, err
	}

	return d.DecompressFile(compressedPath)
}
