// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"os"
)

// Usage is the exit code for invalid invocations.
const Usage = 2

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run() where the structured logger may not be
// initialized.
func Fatal(err error) {
	os.Exit(report(os.Stderr, err, 1))
}

// FatalUsage is Fatal for command-line errors; it exits with Usage.
func FatalUsage(err error) {
	os.Exit(report(os.Stderr, err, Usage))
}

func report(w io.Writer, err error, code int) int {
	fmt.Fprintf(w, "error: %v\n", err)
	return code
}
