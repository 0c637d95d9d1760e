// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package zstdfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sys/unix"
)

// Suffix marks a file stored zstd-compressed. linux-firmware uses .zst.
const Suffix = ".zst"

// DefaultMaxDecompressedSize bounds the buffer allocated for one
// decompressed file. Firmware images are a few tens of megabytes at
// most; a header claiming more than this is treated as hostile.
const DefaultMaxDecompressedSize = 1 << 30

// memfdNameMax is the longest name memfd_create accepts, excluding the
// "memfd:" prefix the kernel adds and the terminating NUL.
const memfdNameMax = 249

var (
	// ErrCorruptInput is returned when the frame header cannot be read,
	// does not record the content size, or the payload fails to decode
	// to exactly that size.
	ErrCorruptInput = errors.New("corrupt zstd input")

	// ErrResourceExhausted is returned when the decompressed size
	// exceeds the configured limit.
	ErrResourceExhausted = errors.New("decompressed size exceeds limit")

	// ErrClosed is returned by operations on a closed Decompressor.
	ErrClosed = errors.New("decompressor is closed")
)

// Options configures a Decompressor.
type Options struct {
	// MaxDecompressedSize is the largest frame content size that will
	// be decoded. Zero selects DefaultMaxDecompressedSize.
	MaxDecompressedSize uint64
}

// Decompressor owns a zstd decoding context. Decompressions through
// one Decompressor are serialized; create it once and share it.
type Decompressor struct {
	mu      sync.Mutex
	decoder *zstd.Decoder
	maxSize uint64
}

// New creates a Decompressor. Call Close to release the decoder.
func New(options Options) (*Decompressor, error) {
	maxSize := options.MaxDecompressedSize
	if maxSize == 0 {
		maxSize = DefaultMaxDecompressedSize
	}

	// DecodeAllCapLimit keeps DecodeAll from growing the destination
	// past the capacity we size from the frame header.
	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxSize),
		zstd.WithDecodeAllCapLimit(true),
	)
	if err != nil {
		return nil, fmt.Errorf("zstdfile: creating decoder: %w", err)
	}

	return &Decompressor{decoder: decoder, maxSize: maxSize}, nil
}

// Close releases the decoding context. Subsequent calls return
// ErrClosed. Close is idempotent.
func (d *Decompressor) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.decoder != nil {
		d.decoder.Close()
		d.decoder = nil
	}
	return nil
}

// DecompressFile decompresses the zstd file at path into an anonymous
// memory-backed file and returns it positioned at offset zero. The
// returned file has no filesystem path; its name is "memfd:" followed
// by the base name of path.
func (d *Decompressor) DecompressFile(path string) (*os.File, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.decoder == nil {
		return nil, ErrClosed
	}

	compressed, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	defer unix.Munmap(compressed)

	var header zstd.Header
	if err := header.Decode(compressed); err != nil {
		return nil, fmt.Errorf("%s: reading frame header: %w: %v", path, ErrCorruptInput, err)
	}
	if header.Skippable || !header.HasFCS {
		return nil, fmt.Errorf("%s: content size unknown: %w", path, ErrCorruptInput)
	}
	if header.FrameContentSize > d.maxSize {
		return nil, fmt.Errorf("%s: content size %d exceeds %d: %w",
			path, header.FrameContentSize, d.maxSize, ErrResourceExhausted)
	}

	size := int(header.FrameContentSize)
	decompressed, err := d.decoder.DecodeAll(compressed, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrCorruptInput, err)
	}
	if len(decompressed) != size {
		return nil, fmt.Errorf("%s: decoded %d bytes, header declares %d: %w",
			path, len(decompressed), size, ErrCorruptInput)
	}

	return memoryFile(filepath.Base(path), decompressed)
}

// mapFile maps the whole file at path read-only. The caller must
// Munmap the result. Empty files cannot be mapped and cannot hold a
// zstd frame, so they are reported as corrupt.
func mapFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%s: empty file: %w", path, ErrCorruptInput)
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(info.Size()),
		unix.PROT_READ, unix.MAP_PRIVATE|unix.MAP_POPULATE)
	if err != nil {
		return nil, fmt.Errorf("%s: mmap: %w", path, err)
	}
	return data, nil
}

// memoryFile writes content into a new memfd tagged with name and
// rewinds it.
func memoryFile(name string, content []byte) (*os.File, error) {
	if len(name) > memfdNameMax {
		name = name[:memfdNameMax]
	}

	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("memfd_create %s: %w", name, err)
	}
	file := os.NewFile(uintptr(fd), "memfd:"+name)

	if _, err := file.Write(content); err != nil {
		file.Close()
		return nil, fmt.Errorf("writing %s: %w", file.Name(), err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("rewinding %s: %w", file.Name(), err)
	}
	return file, nil
}
