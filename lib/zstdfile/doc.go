// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package zstdfile opens files that may be stored on disk either raw or
// zstd-compressed, always handing back a descriptor over the
// uncompressed bytes.
//
// linux-firmware installs images as "name.zst" when the distribution
// compresses firmware. Callers ask for "name"; [Decompressor.Open]
// returns the raw file when it exists and otherwise decompresses
// "name"+[Suffix] into an anonymous memory-backed file (memfd). The
// memfd has no filesystem path and disappears when the last descriptor
// referencing it is closed. It is positioned at offset zero, so the
// caller can read it exactly like a regular file.
//
// Decompression maps the compressed file read-only, reads the frame
// content size from the zstd frame header, and decodes the whole input
// in a single call into a buffer of exactly that size. Frames written
// without a content size (streaming encoders) are rejected with
// [ErrCorruptInput]: firmware files are always produced by one-shot
// encoders that record it.
//
// A [Decompressor] owns the decoding context. It is created once by the
// component that serves files and closed at shutdown; there is no
// package-level state.
package zstdfile
