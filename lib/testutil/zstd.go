// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"

	"github.com/klauspost/compress/zstd"
)

// Compress returns data as a single zstd frame whose header records
// the content size. Single-segment mode forces the size field into the
// header for small payloads, and zero frames make an empty payload
// produce a frame at all.
func Compress(t *testing.T, data []byte) []byte {
	t.Helper()
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithSingleSegment(true),
		zstd.WithZeroFrames(true))
	if err != nil {
		t.Fatalf("creating zstd encoder: %v", err)
	}
	defer encoder.Close()
	return encoder.EncodeAll(data, nil)
}

// UnsizedFrame returns a valid zstd frame carrying data in one raw
// block, with no content size in the frame header. data must be
// shorter than 128 KiB.
func UnsizedFrame(t *testing.T, data []byte) []byte {
	t.Helper()
	if len(data) >= 128<<10 {
		t.Fatalf("UnsizedFrame: %d bytes does not fit in one block", len(data))
	}

	frame := []byte{
		0x28, 0xb5, 0x2f, 0xfd, // magic
		0x00, // descriptor: no content size, not single segment
		0x38, // window descriptor: 128 KiB
	}
	// Block header: last block, raw, size in the upper 21 bits.
	blockHeader := uint32(1) | uint32(len(data))<<3
	frame = append(frame, byte(blockHeader), byte(blockHeader>>8), byte(blockHeader>>16))
	return append(frame, data...)
}
