// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package texbuild

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	var r ExecRunner

	t.Run("captures output and runs in dir", func(t *testing.T) {
		res := r.Run(context.Background(), dir, "sh", "-c", "pwd; echo oops >&2")
		require.NoError(t, res.StartErr)
		assert.Equal(t, 0, res.ExitCode)
		want, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		got, err := filepath.EvalSymlinks(strings.TrimSpace(res.Stdout))
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, "oops\n", res.Stderr)
	})

	t.Run("non-zero exit is not a start error", func(t *testing.T) {
		res := r.Run(context.Background(), dir, "sh", "-c", "exit 3")
		assert.NoError(t, res.StartErr)
		assert.Equal(t, 3, res.ExitCode)
	})

	t.Run("stdin is closed", func(t *testing.T) {
		res := r.Run(context.Background(), dir, "sh", "-c", "read line; echo done")
		assert.Equal(t, "done\n", res.Stdout)
	})

	t.Run("missing binary", func(t *testing.T) {
		res := r.Run(context.Background(), dir, filepath.Join(dir, "no-such-tool"))
		assert.Error(t, res.StartErr)
		assert.Equal(t, -1, res.ExitCode)
	})
}
