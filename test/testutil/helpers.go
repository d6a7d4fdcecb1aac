// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// WriteDimmer writes DimmerYAML to a fresh temporary directory.
func WriteDimmer(t *testing.T) string {
	t.Helper()
	return WriteFile(t, t.TempDir(), "dimmer.yaml", DimmerYAML)
}
