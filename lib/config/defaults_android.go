// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

// Android images carry no updates/ overlay.
const (
	defaultFirmwareBase = "/vendor/firmware"
	defaultUpdatesDir   = ""
	defaultScratchDir   = "/data/vendor/tmp/tqftpserv"
)
