// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package translate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/fwtranslate/lib/remoteproc"
)

// openReadOnly searches the directories of every declared remoteproc
// firmware image for file. The search path parameter and the sysfs
// class are re-read on every call.
func (t *Translator) openReadOnly(file string) (*os.File, error) {
	if !filepath.IsLocal(file) {
		t.logger.Warn("rejecting read-only path outside firmware directories", "file", file)
		return nil, fmt.Errorf("%q: %w", file, ErrInvalidPath)
	}

	var searchPath string
	if t.config.Firmware.SearchPathParam != "" {
		searchPath = remoteproc.ReadSearchPath(t.config.Firmware.SearchPathParam)
	}

	declarations, err := remoteproc.Declarations(t.config.Firmware.RemoteprocClass)
	if err != nil {
		t.logger.Warn("failed to open remoteproc class", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrSystemUnavailable, err)
	}

	// The last failure other than not-found is carried into the final
	// error so a corrupt or unreadable image is not reported as simply
	// missing.
	var lastFailure error

	for declaration := range declarations {
		for _, root := range t.searchRoots(searchPath) {
			path, err := candidatePath(root, declaration.Dir(), file)
			if err != nil {
				t.logger.Debug("skipping firmware candidate",
					"device", declaration.Device,
					"root", root,
					"error", err)
				continue
			}

			opened, err := t.decompressor.Open(path)
			if err == nil {
				t.logger.Debug("resolved firmware file",
					"file", file,
					"device", declaration.Device,
					"path", path)
				return opened, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				t.logger.Warn("failed to open firmware candidate",
					"path", path,
					"error", err)
				lastFailure = err
			}
		}
	}

	if lastFailure != nil {
		return nil, fmt.Errorf("%q: %w (last failure: %w)", file, ErrNotFound, lastFailure)
	}
	return nil, fmt.Errorf("%q: %w", file, ErrNotFound)
}

// searchRoots returns the directories tried for each declaration, in
// priority order: the firmware_class search path when set, the updates
// overlay when configured, then the firmware base.
func (t *Translator) searchRoots(searchPath string) []string {
	roots := make([]string, 0, 3)
	if searchPath != "" {
		roots = append(roots, searchPath)
	}
	if t.config.Firmware.UpdatesDir != "" {
		roots = append(roots, filepath.Join(t.config.Firmware.Base, t.config.Firmware.UpdatesDir))
	}
	return append(roots, t.config.Firmware.Base)
}

// candidatePath assembles root/dir/file. The result, with its
// terminating NUL, must fit in PATH_MAX.
func candidatePath(root, dir, file string) (string, error) {
	path := filepath.Join(root, dir, file)
	if len(path)+1 > unix.PathMax {
		return "", fmt.Errorf("%s/%s/%s: %w", root, dir, file, ErrPathTooLong)
	}
	return path, nil
}
