// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package remoteproc reads firmware declarations from the kernel's
// remoteproc class in sysfs.
//
// Each remote processor appears as /sys/class/remoteproc/remoteprocN
// with a "firmware" attribute naming the image the kernel loads for it,
// relative to the firmware search path (for example
// "qcom/sm8250/adsp.mbn"). Files requested by the remote processor at
// runtime live next to that image, so the directory component of each
// declaration is where the translator looks for them.
//
// [Declarations] yields the declarations lazily and re-reads sysfs on
// every iteration; nothing is cached. [ReadSearchPath] returns the
// custom search path configured through the firmware_class module
// parameter, which the kernel tries before its built-in locations.
package remoteproc
