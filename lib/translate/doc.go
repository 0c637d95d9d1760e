// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package translate maps the virtual paths a remote processor requests
// over QRTR TFTP onto local files.
//
// Two virtual roots exist. Paths under the read-only root
// (/readonly/firmware/image/ by default) name files that ship alongside
// the remote processor's firmware image: the translator enumerates the
// remoteproc class in sysfs, takes the directory of each declared
// firmware image, and looks for the file there. For each declaration
// the candidates are tried in order:
//
//  1. <firmware_class search path>/<image dir>/<file>
//  2. <firmware base>/updates/<image dir>/<file>
//  3. <firmware base>/<image dir>/<file>
//
// and the first that opens wins. Paths under the read-write root
// (/readwrite/ by default) resolve inside a private scratch directory
// created on demand; the caller's open flags apply there.
//
// Every read-only candidate goes through [zstdfile.Decompressor.Open],
// so a file stored only as "<file>.zst" is served decompressed from
// an anonymous memory file. The caller always receives an *os.File
// positioned at offset zero over the uncompressed bytes.
//
// Errors are classified by sentinel: [ErrInvalidPath],
// [ErrSystemUnavailable], [ErrNotFound], [ErrCorruptInput], and
// [ErrResourceExhausted]; permission and other I/O failures arrive as
// *fs.PathError. Individual candidate failures never abort a read-only
// search; they are logged and the search continues.
package translate
