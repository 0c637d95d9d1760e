// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// fwtranslate resolves one virtual path the way the QRTR TFTP server
// does and emits the result, so firmware search problems can be
// diagnosed from a shell without a remote processor asking for files.
//
//	fwtranslate /readonly/firmware/image/modem.b00 > modem.b00
//	fwtranslate --digest /readonly/firmware/image/adsp_config.bin
//	fwtranslate --mode write /readwrite/server_check.txt < check.txt
//
// Read-only paths are searched under every remoteproc's firmware
// directory and decompressed when only a .zst variant exists. --digest
// prints the BLAKE3 digest and length of the served bytes instead of
// the bytes themselves. Read-write paths land in the scratch
// directory; --mode write and --mode append copy stdin into them.
//
// Configuration comes from --config or FWTRANSLATE_CONFIG, falling back
// to the compiled-in platform defaults. Structured logs (JSON) go to
// stderr; --log-level debug shows each candidate tried.
package main
