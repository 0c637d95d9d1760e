// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/fwtranslate/lib/config"
	"github.com/bureau-foundation/fwtranslate/lib/process"
	"github.com/bureau-foundation/fwtranslate/lib/translate"
	"github.com/bureau-foundation/fwtranslate/lib/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			process.FatalUsage(err)
		}
		process.Fatal(err)
	}
}

// usageError marks command-line mistakes, which exit with
// process.Usage rather than 1.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// openModes maps --mode values to open flags. Flags only matter for
// read-write paths.
var openModes = map[string]int{
	"read":   os.O_RDONLY,
	"write":  os.O_WRONLY | os.O_CREATE | os.O_TRUNC,
	"append": os.O_WRONLY | os.O_CREATE | os.O_APPEND,
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		configPath string
		mode       string
		digest     bool
		outputPath string
		logLevel   string
	)

	// Handle --version before flag parsing.
	for _, argument := range args {
		if argument == "--version" {
			fmt.Fprintf(stdout, "fwtranslate %s\n", version.Full())
			return nil
		}
	}

	flagSet := pflag.NewFlagSet("fwtranslate", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config (default: $"+config.EnvironmentVariable+" or built-in defaults)")
	flagSet.StringVar(&mode, "mode", "read", "open mode for read-write paths: read, write, append")
	flagSet.BoolVar(&digest, "digest", false, "print the BLAKE3 digest and length instead of the content")
	flagSet.StringVarP(&outputPath, "output", "o", "", "write content to this file instead of stdout")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "usage: fwtranslate [flags] VIRTUAL_PATH\n\nflags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return &usageError{err: err}
	}
	if flagSet.NArg() != 1 {
		return usagef("expected exactly one virtual path, got %d arguments", flagSet.NArg())
	}
	virtualPath := flagSet.Arg(0)

	flags, ok := openModes[mode]
	if !ok {
		return usagef("--mode must be read, write, or append, got %q", mode)
	}
	writing := flags != os.O_RDONLY
	if writing && (digest || outputPath != "") {
		return usagef("--digest and --output only apply to --mode read")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return usagef("--log-level: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	translator, err := translate.New(cfg, logger)
	if err != nil {
		return err
	}
	defer translator.Close()

	file, err := translator.Open(virtualPath, flags)
	if err != nil {
		return fmt.Errorf("opening %s: %w", virtualPath, err)
	}
	defer file.Close()

	switch {
	case writing:
		written, err := io.Copy(file, stdin)
		if err != nil {
			return fmt.Errorf("writing %s: %w", virtualPath, err)
		}
		logger.Info("wrote scratch file", "path", file.Name(), "bytes", written)
		return file.Close()

	case digest:
		hasher := blake3.New()
		length, err := io.Copy(hasher, file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", virtualPath, err)
		}
		fmt.Fprintf(stdout, "%x  %d\n", hasher.Sum(nil), length)
		return nil

	case outputPath != "":
		return copyToFile(outputPath, file)

	default:
		if _, err := io.Copy(stdout, file); err != nil {
			return fmt.Errorf("reading %s: %w", virtualPath, err)
		}
		return nil
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func copyToFile(path string, source io.Reader) error {
	destination, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return destination.Close()
}
