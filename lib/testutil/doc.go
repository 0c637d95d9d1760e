// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for the translator
// packages.
//
// [WriteFile] builds synthetic sysfs and firmware trees under a test's
// temporary directory, creating parent directories as needed.
// [Compress] produces one-shot zstd frames that record their content
// size, matching how linux-firmware ships .zst images, and
// [UnsizedFrame] produces a valid frame that omits it. [ReadAll] drains
// a returned descriptor from its current offset.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
