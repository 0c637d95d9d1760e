// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package translate

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/bureau-foundation/fwtranslate/lib/zstdfile"
)

var (
	// ErrInvalidPath is returned for virtual paths under neither root,
	// and for relative names that would leave their root. It also
	// matches fs.ErrNotExist so protocol layers report "file not
	// found".
	ErrInvalidPath = fmt.Errorf("invalid virtual path: %w", fs.ErrNotExist)

	// ErrSystemUnavailable is returned when the remoteproc class
	// cannot be enumerated.
	ErrSystemUnavailable = errors.New("remoteproc registry unavailable")

	// ErrNotFound is returned when no candidate directory holds the
	// requested file. It matches fs.ErrNotExist.
	ErrNotFound = fmt.Errorf("firmware file not found: %w", fs.ErrNotExist)

	// ErrPathTooLong marks a candidate whose assembled path exceeds
	// PATH_MAX. Such candidates are skipped, never truncated.
	ErrPathTooLong = errors.New("candidate path too long")

	// ErrCorruptInput is returned when a compressed file cannot be
	// decoded.
	ErrCorruptInput = zstdfile.ErrCorruptInput

	// ErrResourceExhausted is returned when a compressed file
	// declares a decompressed size beyond the configured limit.
	ErrResourceExhausted = zstdfile.ErrResourceExhausted
)
