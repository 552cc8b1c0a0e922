// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRunReturnsConfigError(t *testing.T) {
	err := run(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatalf("run succeeded without a config file")
	}
}
