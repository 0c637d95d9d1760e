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
)

// scratchFileMode is applied to files created in the scratch directory.
const scratchFileMode = 0600

// openReadWrite opens file inside the scratch directory with flags,
// creating the directory first if needed.
func (t *Translator) openReadWrite(file string, flags int) (*os.File, error) {
	scratchDir := t.config.Scratch.Dir

	if !filepath.IsLocal(file) {
		t.logger.Warn("rejecting read-write path outside scratch directory", "file", file)
		return nil, fmt.Errorf("%q: %w", file, ErrInvalidPath)
	}

	// Several servers may race to create the directory; losing the
	// race is fine.
	if err := os.Mkdir(scratchDir, 0700); err != nil && !errors.Is(err, fs.ErrExist) {
		t.logger.Warn("failed to create scratch directory", "dir", scratchDir, "error", err)
		return nil, err
	}

	dirfd, err := unix.Open(scratchDir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		t.logger.Warn("failed to open scratch directory", "dir", scratchDir, "error", err)
		return nil, &fs.PathError{Op: "open", Path: scratchDir, Err: err}
	}
	defer unix.Close(dirfd)

	path := filepath.Join(scratchDir, file)
	fd, err := openBeneath(dirfd, file, flags|unix.O_CLOEXEC, scratchFileMode)
	if err != nil {
		t.logger.Warn("failed to open scratch file", "path", path, "error", err)
		return nil, &fs.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(fd), path), nil
}

// openBeneath opens path relative to dirfd without letting ".." or
// symlinks resolve outside it. Kernels before 5.6 lack openat2 (and
// some seccomp profiles refuse it); there the lexical check done by
// the caller is all that remains and a plain openat is used.
func openBeneath(dirfd int, path string, flags int, mode uint32) (int, error) {
	how := unix.OpenHow{
		Flags:   uint64(flags),
		Resolve: unix.RESOLVE_BENEATH,
	}
	// openat2 rejects a mode unless a file may be created.
	if flags&unix.O_CREAT != 0 || flags&unix.O_TMPFILE == unix.O_TMPFILE {
		how.Mode = uint64(mode)
	}

	fd, err := unix.Openat2(dirfd, path, &how)
	if errors.Is(err, unix.ENOSYS) || errors.Is(err, unix.EPERM) {
		return unix.Openat(dirfd, path, flags, mode)
	}
	return fd, err
}
