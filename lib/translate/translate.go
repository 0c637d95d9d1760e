// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package translate

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bureau-foundation/fwtranslate/lib/config"
	"github.com/bureau-foundation/fwtranslate/lib/zstdfile"
)

// Translator resolves virtual paths to open files. It owns the
// decompression context; create one per server and Close it at
// shutdown. Open may be called from multiple goroutines.
type Translator struct {
	config       config.Config
	decompressor *zstdfile.Decompressor
	logger       *slog.Logger
}

// New creates a Translator for cfg. The configuration is copied.
func New(cfg *config.Config, logger *slog.Logger) (*Translator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}

	decompressor, err := zstdfile.New(zstdfile.Options{
		MaxDecompressedSize: cfg.Decompression.MaxSize,
	})
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}

	return &Translator{
		config:       *cfg,
		decompressor: decompressor,
		logger:       logger,
	}, nil
}

// Close releases the decompression context.
func (t *Translator) Close() error {
	return t.decompressor.Close()
}

// Open resolves virtualPath and opens it. Read-only paths are always
// opened read-only and flags is ignored; read-write paths are opened
// with flags (os.O_* values) and mode 0600 when created.
func (t *Translator) Open(virtualPath string, flags int) (*os.File, error) {
	if relative, ok := strings.CutPrefix(virtualPath, t.config.Roots.ReadOnly); ok {
		return t.openReadOnly(relative)
	}
	if relative, ok := strings.CutPrefix(virtualPath, t.config.Roots.ReadWrite); ok {
		return t.openReadWrite(relative, flags)
	}

	t.logger.Warn("rejecting invalid path", "path", virtualPath)
	return nil, fmt.Errorf("%q: %w", virtualPath, ErrInvalidPath)
}
