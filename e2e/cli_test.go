//go:build e2e && unix

package main

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpCommand(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)

	out, err := tf.Run("--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage")
	assert.Contains(t, out, "--mode")
	assert.Contains(t, out, "--report")
}

func TestReportMode(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	target := tf.WriteTarget("fw.bin", 4096, "MZ", 16, 1000, 4000)

	out, err := tf.Run("--report", "--log-file", "-", "--log-level", "error", target, "MZ")
	require.NoError(t, err, out)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5, out)
	assert.Equal(t, `# Search for text "MZ" in `+target, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0x00000010\t4d 5a"), lines[1])
	assert.True(t, strings.HasPrefix(lines[4], "# 3 results, search finished"), lines[4])
}

func TestReportModeHexRange(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	target := tf.WriteTarget("fw.bin", 4096, "\xde\xad\x00\xef", 16, 1000, 4000)

	out, err := tf.Run("--report", "--log-file", "-", "--log-level", "error",
		"-m", "hex", "--start", "0x100", "--end", "0xf00", target, "de ad ?? ef")
	require.NoError(t, err, out)
	assert.Contains(t, out, "0x000003e8\tde ad 00 ef")
	assert.NotContains(t, out, "0x00000010")
	assert.Contains(t, out, "# 1 results")
}

func TestInvalidPatternFails(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	target := tf.WriteTarget("fw.bin", 16, "")

	out, err := tf.Run("--report", "-m", "hex", target, "4d5")
	require.Error(t, err)
	assert.Contains(t, out, "invalid search parameters")
}

func TestConfigInitAndShow(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)

	_, err := tf.Run("config", "init")
	require.NoError(t, err)
	_, err = os.Stat(tf.ConfigPath())
	require.NoError(t, err)

	out, err := tf.Run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[search]")
	assert.Contains(t, out, "merge_interval_ms")
}
