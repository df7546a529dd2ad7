package pathselect

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xgrep/xgrep/internal/config"
)

func TestAcceptExtensionInclude(t *testing.T) {
	cfg := config.Default()
	cfg.Extensions = []string{"go"}
	s, err := New(cfg)
	require.NoError(t, err)

	require.True(t, s.Accept("internal/foo.go", nil))
	require.False(t, s.Accept("internal/foo.txt", nil))
}

func TestAcceptExcludeTakesPriority(t *testing.T) {
	cfg := config.Default()
	cfg.IncludeGlobs = []string{"*.go"}
	cfg.ExcludeGlobs = []string{"*_test.go"}
	s, err := New(cfg)
	require.NoError(t, err)

	require.True(t, s.Accept("foo.go", nil))
	require.False(t, s.Accept("foo_test.go", nil))
}

func TestHiddenFilesSkippedByDefault(t *testing.T) {
	cfg := config.Default()
	s, err := New(cfg)
	require.NoError(t, err)

	require.False(t, s.Accept(".env", nil))

	cfg.Hidden = true
	s2, err := New(cfg)
	require.NoError(t, err)
	require.True(t, s2.Accept(".env", nil))
}

func TestTypeBundleExpandsExtensions(t *testing.T) {
	cfg := config.Default()
	cfg.Types = []string{"go"}
	s, err := New(cfg)
	require.NoError(t, err)

	require.True(t, s.Accept("main.go", nil))
	require.False(t, s.Accept("main.py", nil))
}

func TestFSFiltering(t *testing.T) {
	cfg := config.Default()
	s, err := New(cfg)
	require.NoError(t, err)

	s.RegisterFSRoot(42, true)
	require.True(t, s.AllowDev(42))
	require.False(t, s.AllowDev(7))
}
