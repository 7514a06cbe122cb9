package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memtools.yaml")
	content := "swapout:\n" +
		"  limit_mb: 16\n" +
		"  target_rss_kb: 8192\n" +
		"  interval: 0.5\n" +
		"  max_iter: 120\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Cleanup(func() { defaults = defaultsConfig{} })
	require.NoError(t, loadDefaults(path))

	require.Equal(t, int64(16), defaults.Swapout.LimitMB)
	require.Equal(t, int64(8192), defaults.Swapout.TargetRSSKB)
	require.Equal(t, 0.5, defaults.Swapout.Interval)
	require.Equal(t, 120, defaults.Swapout.MaxIter)
}

func TestLoadDefaultsMissingExplicitFile(t *testing.T) {
	err := loadDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadDefaultsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memtools.yaml")
	require.NoError(t, os.WriteFile(path, []byte("swapout: ["), 0644))

	require.Error(t, loadDefaults(path))
}

func TestLoadDefaultsBadLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memtools.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: chatty\n"), 0644))

	t.Cleanup(func() { defaults = defaultsConfig{} })
	require.Error(t, loadDefaults(path))
}
