// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !android

package config

const (
	defaultFirmwareBase = "/lib/firmware"
	defaultUpdatesDir   = "updates"
	defaultScratchDir   = "/tmp/tqftpserv"
)
