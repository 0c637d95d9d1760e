// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package translate

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bureau-foundation/fwtranslate/lib/config"
	"github.com/bureau-foundation/fwtranslate/lib/testutil"
)

// fixture is a synthetic system: a sysfs tree, a firmware base, and a
// scratch directory location, all under one temporary root.
type fixture struct {
	root   string
	config *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.Firmware.Base = filepath.Join(root, "lib/firmware")
	cfg.Firmware.UpdatesDir = "updates"
	cfg.Firmware.RemoteprocClass = filepath.Join(root, "sys/class/remoteproc")
	cfg.Firmware.SearchPathParam = filepath.Join(root, "sys/module/firmware_class/parameters/path")
	cfg.Scratch.Dir = filepath.Join(root, "tmp/tqftpserv")

	if err := os.MkdirAll(cfg.Firmware.RemoteprocClass, 0755); err != nil {
		t.Fatalf("mkdir class: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Scratch.Dir), 0755); err != nil {
		t.Fatalf("mkdir tmp: %v", err)
	}

	return &fixture{root: root, config: cfg}
}

// declare registers a remote processor whose firmware attribute names
// image.
func (f *fixture) declare(t *testing.T, device, image string) {
	t.Helper()
	testutil.WriteFile(t, f.config.Firmware.RemoteprocClass, filepath.Join(device, "firmware"), []byte(image+"\n"))
}

// setSearchPath writes the firmware_class path parameter the way the
// kernel exposes it, newline-terminated.
func (f *fixture) setSearchPath(t *testing.T, directory string) {
	t.Helper()
	testutil.WriteFile(t, filepath.Dir(f.config.Firmware.SearchPathParam),
		filepath.Base(f.config.Firmware.SearchPathParam), []byte(directory+"\n"))
}

func (f *fixture) translator(t *testing.T) *Translator {
	t.Helper()
	translator, err := New(f.config, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { translator.Close() })
	return translator
}

func readFile(t *testing.T, file *os.File) []byte {
	t.Helper()
	defer file.Close()
	return testutil.ReadAll(t, file)
}

func TestOpenInvalidPath(t *testing.T) {
	f := newFixture(t)
	translator := f.translator(t)

	for _, virtualPath := range []string{
		"/other/file.bin",
		"readonly/firmware/image/foo.bin",
		"/readonly/firmware/foo.bin",
		"/readwrite",
		"",
	} {
		_, err := translator.Open(virtualPath, os.O_RDONLY)
		if !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Open(%q) error = %v, want ErrInvalidPath", virtualPath, err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Open(%q) error = %v, want it to match fs.ErrNotExist", virtualPath, err)
		}
	}

	if _, err := os.Stat(f.config.Scratch.Dir); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("invalid paths touched the scratch directory: %v", err)
	}
}

func TestOpenReadOnlyCompressedInUpdates(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "remoteproc0", "vendor/foo.elf")
	payload := []byte("modem configuration blob")
	testutil.WriteFile(t, f.config.Firmware.Base, "updates/vendor/foo.bin.zst", testutil.Compress(t, payload))

	file, err := f.translator(t).Open("/readonly/firmware/image/foo.bin", os.O_RDONLY)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := readFile(t, file); !bytes.Equal(got, payload) {
		t.Errorf("content = %q, want %q", got, payload)
	}
}

func TestOpenReadOnlyCandidateOrder(t *testing.T) {
	const (
		override = "override"
		updates  = "updates"
		base     = "base"
	)

	tests := []struct {
		name    string
		present []string
		want    string
	}{
		{name: "all present", present: []string{override, updates, base}, want: override},
		{name: "override missing", present: []string{updates, base}, want: updates},
		{name: "only base", present: []string{base}, want: base},
		{name: "override and base", present: []string{override, base}, want: override},
		{name: "only override", present: []string{override}, want: override},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t)
			f.declare(t, "remoteproc0", "qcom/sm8250/adsp.mbn")
			overrideRoot := filepath.Join(f.root, "opt/firmware")
			f.setSearchPath(t, overrideRoot)

			locations := map[string]string{
				override: overrideRoot,
				updates:  filepath.Join(f.config.Firmware.Base, "updates"),
				base:     f.config.Firmware.Base,
			}
			for _, name := range test.present {
				testutil.WriteFile(t, locations[name], "qcom/sm8250/adsp_config.bin", []byte(name))
			}

			file, err := f.translator(t).Open("/readonly/firmware/image/adsp_config.bin", 0)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if got := string(readFile(t, file)); got != test.want {
				t.Errorf("served %q copy, want %q", got, test.want)
			}
		})
	}
}

func TestOpenReadOnlyRawPreferredOverCompressed(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "remoteproc0", "qcom/wpss.mdt")
	testutil.WriteFile(t, f.config.Firmware.Base, "qcom/wpss.b01", []byte("raw"))
	testutil.WriteFile(t, f.config.Firmware.Base, "qcom/wpss.b01.zst", testutil.Compress(t, []byte("compressed")))

	file, err := f.translator(t).Open("/readonly/firmware/image/wpss.b01", 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := string(readFile(t, file)); got != "raw" {
		t.Errorf("content = %q, want raw", got)
	}
}

func TestOpenReadOnlySearchesAllDeclarations(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "remoteproc0", "qcom/adsp.mbn")
	f.declare(t, "remoteproc1", "qcom/cdsp/cdsp.mbn")
	// Entry without a firmware attribute is skipped.
	testutil.WriteFile(t, f.config.Firmware.RemoteprocClass, "remoteproc2/name", []byte("gpu\n"))
	testutil.WriteFile(t, f.config.Firmware.Base, "qcom/cdsp/cdsp_cfg.bin", []byte("cdsp"))

	file, err := f.translator(t).Open("/readonly/firmware/image/cdsp_cfg.bin", 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := string(readFile(t, file)); got != "cdsp" {
		t.Errorf("content = %q, want cdsp", got)
	}
}

func TestOpenReadOnlyImageWithoutDirectory(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "remoteproc0", "wcnss.mdt")
	testutil.WriteFile(t, f.config.Firmware.Base, "wcnss_cfg.bin", []byte("top level"))

	file, err := f.translator(t).Open("/readonly/firmware/image/wcnss_cfg.bin", 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := string(readFile(t, file)); got != "top level" {
		t.Errorf("content = %q, want top level", got)
	}
}

func TestOpenReadOnlyIgnoresFlags(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "remoteproc0", "qcom/adsp.mbn")
	path := testutil.WriteFile(t, f.config.Firmware.Base, "qcom/adsp.b02", []byte("original"))

	file, err := f.translator(t).Open("/readonly/firmware/image/adsp.b02", os.O_RDWR|os.O_TRUNC)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte("overwritten")); err == nil {
		t.Error("write to a read-only resolution succeeded")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != "original" {
		t.Errorf("firmware file modified: %q", content)
	}
}

func TestOpenReadOnlyUpdatesDisabled(t *testing.T) {
	f := newFixture(t)
	f.config.Firmware.UpdatesDir = ""
	f.declare(t, "remoteproc0", "qcom/adsp.mbn")
	testutil.WriteFile(t, f.config.Firmware.Base, "updates/qcom/cfg.bin", []byte("updates"))
	testutil.WriteFile(t, f.config.Firmware.Base, "qcom/cfg.bin", []byte("base"))

	file, err := f.translator(t).Open("/readonly/firmware/image/cfg.bin", 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := string(readFile(t, file)); got != "base" {
		t.Errorf("content = %q, want base", got)
	}
}

func TestOpenReadOnlyNotFound(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "remoteproc0", "qcom/adsp.mbn")
	testutil.WriteFile(t, f.config.Firmware.Base, "other/cfg.bin", []byte("elsewhere"))

	_, err := f.translator(t).Open("/readonly/firmware/image/cfg.bin", 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want it to match fs.ErrNotExist", err)
	}
}

func TestOpenReadOnlyNoDeclarations(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.config.Firmware.Base, "cfg.bin", []byte("unreachable"))

	_, err := f.translator(t).Open("/readonly/firmware/image/cfg.bin", 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestOpenReadOnlySystemUnavailable(t *testing.T) {
	f := newFixture(t)
	if err := os.RemoveAll(f.config.Firmware.RemoteprocClass); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}

	_, err := f.translator(t).Open("/readonly/firmware/image/cfg.bin", 0)
	if !errors.Is(err, ErrSystemUnavailable) {
		t.Fatalf("error = %v, want ErrSystemUnavailable", err)
	}
}

func TestOpenReadOnlyCorruptCandidate(t *testing.T) {
	t.Run("later candidate wins", func(t *testing.T) {
		f := newFixture(t)
		f.declare(t, "remoteproc0", "qcom/adsp.mbn")
		testutil.WriteFile(t, f.config.Firmware.Base, "updates/qcom/cfg.bin.zst", []byte("not zstd"))
		testutil.WriteFile(t, f.config.Firmware.Base, "qcom/cfg.bin", []byte("base"))

		file, err := f.translator(t).Open("/readonly/firmware/image/cfg.bin", 0)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if got := string(readFile(t, file)); got != "base" {
			t.Errorf("content = %q, want base", got)
		}
	})

	t.Run("only candidate corrupt", func(t *testing.T) {
		f := newFixture(t)
		f.declare(t, "remoteproc0", "qcom/adsp.mbn")
		testutil.WriteFile(t, f.config.Firmware.Base, "qcom/cfg.bin.zst",
			testutil.UnsizedFrame(t, []byte("payload")))

		_, err := f.translator(t).Open("/readonly/firmware/image/cfg.bin", 0)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
		if !errors.Is(err, ErrCorruptInput) {
			t.Errorf("error = %v, want it to carry ErrCorruptInput", err)
		}
	})
}

func TestOpenReadOnlyOversizedCandidateSkipped(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "remoteproc0", "qcom/adsp.mbn")
	f.setSearchPath(t, "/"+strings.Repeat("x", 4096))
	testutil.WriteFile(t, f.config.Firmware.Base, "updates/qcom/cfg.bin", []byte("updates"))

	file, err := f.translator(t).Open("/readonly/firmware/image/cfg.bin", 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := string(readFile(t, file)); got != "updates" {
		t.Errorf("content = %q, want updates", got)
	}
}

func TestOpenReadOnlyRejectsEscape(t *testing.T) {
	f := newFixture(t)
	f.declare(t, "remoteproc0", "qcom/adsp.mbn")
	testutil.WriteFile(t, f.root, "lib/secret", []byte("secret"))

	for _, virtualPath := range []string{
		"/readonly/firmware/image/../../secret",
		"/readonly/firmware/image//etc/passwd",
		"/readonly/firmware/image/",
	} {
		if _, err := f.translator(t).Open(virtualPath, 0); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Open(%q) error = %v, want ErrInvalidPath", virtualPath, err)
		}
	}
}

func TestCandidatePath(t *testing.T) {
	path, err := candidatePath("/lib/firmware", "qcom/sm8250", "adsp_cfg.bin")
	if err != nil {
		t.Fatalf("candidatePath: %v", err)
	}
	if path != "/lib/firmware/qcom/sm8250/adsp_cfg.bin" {
		t.Errorf("path = %q", path)
	}

	if path, err := candidatePath("/lib/firmware", ".", "cfg.bin"); err != nil || path != "/lib/firmware/cfg.bin" {
		t.Errorf("candidatePath with bare image = %q, %v", path, err)
	}

	// 4095 bytes plus the terminating NUL fills PATH_MAX exactly.
	fits := "/" + strings.Repeat("a", 4094)
	if _, err := candidatePath(fits, ".", ""); err != nil {
		t.Errorf("candidatePath at the limit: %v", err)
	}
	if _, err := candidatePath(fits, ".", "b"); !errors.Is(err, ErrPathTooLong) {
		t.Errorf("candidatePath over the limit error = %v, want ErrPathTooLong", err)
	}
}

func TestOpenReadWriteCreates(t *testing.T) {
	f := newFixture(t)
	translator := f.translator(t)

	file, err := translator.Open("/readwrite/state.dat", os.O_CREATE|os.O_RDWR)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := file.Write([]byte("modem state")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	file.Close()

	directoryInfo, err := os.Stat(f.config.Scratch.Dir)
	if err != nil {
		t.Fatalf("Stat scratch: %v", err)
	}
	if perm := directoryInfo.Mode().Perm(); perm != 0700 {
		t.Errorf("scratch directory mode = %o, want 0700", perm)
	}

	path := filepath.Join(f.config.Scratch.Dir, "state.dat")
	fileInfo, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat file: %v", err)
	}
	if perm := fileInfo.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}

	reopened, err := translator.Open("/readwrite/state.dat", os.O_RDONLY)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Name() != path {
		t.Errorf("Name() = %q, want %q", reopened.Name(), path)
	}
	if got := string(readFile(t, reopened)); got != "modem state" {
		t.Errorf("content = %q, want modem state", got)
	}
}

func TestOpenReadWriteMissingWithoutCreate(t *testing.T) {
	f := newFixture(t)

	_, err := f.translator(t).Open("/readwrite/absent.dat", os.O_RDONLY)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("error = %v, want fs.ErrNotExist", err)
	}
	// The directory is still created.
	if _, err := os.Stat(f.config.Scratch.Dir); err != nil {
		t.Errorf("scratch directory not created: %v", err)
	}
}

func TestOpenReadWriteScratchCreationIdempotent(t *testing.T) {
	f := newFixture(t)
	translator := f.translator(t)

	var group sync.WaitGroup
	errs := make([]error, 8)
	for index := range errs {
		group.Add(1)
		go func() {
			defer group.Done()
			file, err := translator.Open("/readwrite/shared.dat", os.O_CREATE|os.O_WRONLY)
			if err == nil {
				file.Close()
			}
			errs[index] = err
		}()
	}
	group.Wait()

	for index, err := range errs {
		if err != nil {
			t.Errorf("concurrent open #%d: %v", index, err)
		}
	}

	// Sequential reuse of an existing directory.
	file, err := translator.Open("/readwrite/shared.dat", os.O_RDONLY)
	if err != nil {
		t.Fatalf("sequential open: %v", err)
	}
	file.Close()
}

func TestOpenReadWriteExclusiveCreate(t *testing.T) {
	f := newFixture(t)
	translator := f.translator(t)

	file, err := translator.Open("/readwrite/once.dat", os.O_CREATE|os.O_EXCL|os.O_WRONLY)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	file.Close()

	_, err = translator.Open("/readwrite/once.dat", os.O_CREATE|os.O_EXCL|os.O_WRONLY)
	if !errors.Is(err, fs.ErrExist) {
		t.Errorf("second exclusive open error = %v, want fs.ErrExist", err)
	}
}

func TestOpenReadWriteRejectsEscape(t *testing.T) {
	f := newFixture(t)

	_, err := f.translator(t).Open("/readwrite/../escape.dat", os.O_CREATE|os.O_RDWR)
	if !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("error = %v, want ErrInvalidPath", err)
	}
	if _, err := os.Stat(filepath.Join(f.root, "tmp/escape.dat")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("file created outside the scratch directory: %v", err)
	}
}

func TestOpenReadWriteScratchUnavailable(t *testing.T) {
	f := newFixture(t)
	// A regular file where the scratch directory should be.
	testutil.WriteFile(t, f.root, "tmp/tqftpserv", []byte("in the way"))

	_, err := f.translator(t).Open("/readwrite/state.dat", os.O_CREATE|os.O_RDWR)
	if err == nil {
		t.Fatal("Open succeeded with a file in place of the scratch directory")
	}
	var pathError *fs.PathError
	if !errors.As(err, &pathError) {
		t.Errorf("error = %T %v, want *fs.PathError", err, err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Roots.ReadOnly = "relative/"
	if _, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Fatal("New accepted an invalid configuration")
	}
}
