// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration for the firmware path
// translator.
//
// [Default] returns the locations compiled in for the target platform:
// a Linux build searches /lib/firmware (including its updates/
// subdirectory) and keeps scratch files in /tmp/tqftpserv; an Android
// build searches /vendor/firmware and uses /data/vendor/tmp/tqftpserv.
// The virtual roots the client sees are the same on both.
//
// A YAML file can override any field. It is loaded from the
// FWTRANSLATE_CONFIG environment variable (via [Load]) or an explicit
// path (via [LoadFile]); there is no discovery. Path fields support
// ${VAR} and ${VAR:-default} expansion after loading.
//
// This package depends on no other packages in this module.
package config
