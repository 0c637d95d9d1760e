// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remoteproc

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ClassDir is the sysfs directory listing remote processors.
	ClassDir = "/sys/class/remoteproc"

	// SearchPathParam holds the firmware_class custom search path.
	SearchPathParam = "/sys/module/firmware_class/parameters/path"

	// firmwareAttribute is the per-device attribute naming its image.
	firmwareAttribute = "firmware"
)

// errNotDirectory is returned when the class path exists but is not a
// directory.
var errNotDirectory = errors.New("not a directory")

// Declaration is one remote processor's firmware image as read from
// sysfs.
type Declaration struct {
	// Device is the class entry name, e.g. "remoteproc0".
	Device string

	// Firmware is the image path relative to a firmware search
	// directory, e.g. "qcom/sm8250/adsp.mbn".
	Firmware string
}

// Dir returns the directory component of the firmware path, or "."
// when the image sits directly in the search directory.
func (d Declaration) Dir() string {
	return filepath.Dir(d.Firmware)
}

// Declarations returns the firmware declarations under classDir. The
// directory is checked up front so that an unavailable registry is
// reported as an error; each iteration of the returned sequence then
// re-enumerates classDir and reads every firmware attribute afresh.
// Entries without a readable firmware attribute are skipped.
func Declarations(classDir string) (iter.Seq[Declaration], error) {
	info, err := os.Stat(classDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", classDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reading %s: %w", classDir, errNotDirectory)
	}

	return func(yield func(Declaration) bool) {
		entries, err := os.ReadDir(classDir)
		if err != nil {
			return
		}
		for _, entry := range entries {
			firmware, ok := readFirmware(filepath.Join(classDir, entry.Name(), firmwareAttribute))
			if !ok {
				continue
			}
			if !yield(Declaration{Device: entry.Name(), Firmware: firmware}) {
				return
			}
		}
	}, nil
}

// readFirmware reads a firmware attribute, dropping the newline the
// kernel terminates it with and any trailing blanks. An empty attribute is still a declaration: the
// image lives in the search directory itself.
func readFirmware(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimRight(string(data), " \t\n"), true
}

// ReadSearchPath returns the custom firmware search path, or "" when
// the parameter file is missing, unreadable, or empty. The trailing
// newline is removed.
func ReadSearchPath(paramFile string) string {
	data, err := os.ReadFile(paramFile)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(string(data), "\n")
}
