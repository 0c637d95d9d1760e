// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/fwtranslate/lib/remoteproc"
)

// EnvironmentVariable names the config file read by Load.
const EnvironmentVariable = "FWTRANSLATE_CONFIG"

// Config is the translator configuration.
type Config struct {
	// Roots configures the virtual path prefixes clients request.
	Roots RootsConfig `yaml:"roots"`

	// Firmware configures where read-only files are searched for.
	Firmware FirmwareConfig `yaml:"firmware"`

	// Scratch configures the read-write backing directory.
	Scratch ScratchConfig `yaml:"scratch"`

	// Decompression bounds transparent decompression.
	Decompression DecompressionConfig `yaml:"decompression"`
}

// RootsConfig holds the two virtual roots. Both must end in "/".
type RootsConfig struct {
	// ReadOnly prefixes files served from the firmware search.
	// Default: /readonly/firmware/image/
	ReadOnly string `yaml:"read_only"`

	// ReadWrite prefixes files kept in the scratch directory.
	// Default: /readwrite/
	ReadWrite string `yaml:"read_write"`
}

// FirmwareConfig configures the firmware search.
type FirmwareConfig struct {
	// Base is the built-in firmware directory.
	// Default: /lib/firmware (Linux), /vendor/firmware (Android)
	Base string `yaml:"base"`

	// UpdatesDir is a subdirectory of Base searched before Base
	// itself. Empty disables it.
	// Default: updates (Linux), empty (Android)
	UpdatesDir string `yaml:"updates_dir"`

	// RemoteprocClass is the sysfs directory enumerating remote
	// processors.
	// Default: /sys/class/remoteproc
	RemoteprocClass string `yaml:"remoteproc_class"`

	// SearchPathParam is the file holding the kernel's custom firmware
	// search path, searched before Base.
	// Default: /sys/module/firmware_class/parameters/path
	SearchPathParam string `yaml:"search_path_param"`
}

// ScratchConfig configures read-write storage.
type ScratchConfig struct {
	// Dir is created with mode 0700 on first use.
	// Default: /tmp/tqftpserv (Linux), /data/vendor/tmp/tqftpserv (Android)
	Dir string `yaml:"dir"`
}

// DecompressionConfig bounds transparent decompression.
type DecompressionConfig struct {
	// MaxSize is the largest decompressed file, in bytes.
	// Default: 1 GiB
	MaxSize uint64 `yaml:"max_size"`
}

// Default returns the configuration compiled in for this platform.
func Default() *Config {
	return &Config{
		Roots: RootsConfig{
			ReadOnly:  "/readonly/firmware/image/",
			ReadWrite: "/readwrite/",
		},
		Firmware: FirmwareConfig{
			Base:            defaultFirmwareBase,
			UpdatesDir:      defaultUpdatesDir,
			RemoteprocClass: remoteproc.ClassDir,
			SearchPathParam: remoteproc.SearchPathParam,
		},
		Scratch: ScratchConfig{
			Dir: defaultScratchDir,
		},
		Decompression: DecompressionConfig{
			MaxSize: 1 << 30,
		},
	}
}

// Load loads configuration from the file named by FWTRANSLATE_CONFIG.
// If the variable is unset the platform defaults are returned.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile overlays the YAML file at path onto the platform defaults,
// expands variables in path fields, and validates the result. Keys
// absent from the file keep their defaults; a key present with an
// empty value clears the field.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	c.Firmware.Base = expandVars(c.Firmware.Base)
	c.Firmware.RemoteprocClass = expandVars(c.Firmware.RemoteprocClass)
	c.Firmware.SearchPathParam = expandVars(c.Firmware.SearchPathParam)
	c.Scratch.Dir = expandVars(c.Scratch.Dir)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	for _, root := range []struct{ key, value string }{
		{"roots.read_only", c.Roots.ReadOnly},
		{"roots.read_write", c.Roots.ReadWrite},
	} {
		if !strings.HasPrefix(root.value, "/") || !strings.HasSuffix(root.value, "/") {
			errs = append(errs, fmt.Errorf("%s must start and end with /, got %q", root.key, root.value))
		}
	}
	if c.Roots.ReadOnly != "" && c.Roots.ReadWrite != "" &&
		(strings.HasPrefix(c.Roots.ReadOnly, c.Roots.ReadWrite) || strings.HasPrefix(c.Roots.ReadWrite, c.Roots.ReadOnly)) {
		errs = append(errs, fmt.Errorf("roots.read_only %q and roots.read_write %q overlap",
			c.Roots.ReadOnly, c.Roots.ReadWrite))
	}

	for _, directory := range []struct{ key, value string }{
		{"firmware.base", c.Firmware.Base},
		{"firmware.remoteproc_class", c.Firmware.RemoteprocClass},
		{"scratch.dir", c.Scratch.Dir},
	} {
		if !filepath.IsAbs(directory.value) {
			errs = append(errs, fmt.Errorf("%s must be an absolute path, got %q", directory.key, directory.value))
		}
	}

	if c.Firmware.UpdatesDir != "" && !filepath.IsLocal(c.Firmware.UpdatesDir) {
		errs = append(errs, fmt.Errorf("firmware.updates_dir must be relative to firmware.base, got %q",
			c.Firmware.UpdatesDir))
	}

	if c.Decompression.MaxSize == 0 {
		errs = append(errs, errors.New("decompression.max_size must be positive"))
	}

	return errors.Join(errs...)
}
