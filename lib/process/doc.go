// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. They cover the
// raw stderr output needed before the structured logger exists or
// after main has given up on it: reporting a fatal error and exiting.
package process
