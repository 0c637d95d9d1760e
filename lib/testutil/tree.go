// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates a file at path within root, creating parent
// directories as needed, and returns the full path.
func WriteFile(t *testing.T, root, path string, content []byte) string {
	t.Helper()
	fullPath := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		t.Fatalf("write %s: %v", fullPath, err)
	}
	return fullPath
}

// ReadAll reads the remainder of file from its current offset.
func ReadAll(t *testing.T, file *os.File) []byte {
	t.Helper()
	content, err := io.ReadAll(file)
	if err != nil {
		t.Fatalf("reading %s: %v", file.Name(), err)
	}
	return content
}
