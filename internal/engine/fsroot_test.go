package engine

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatDevResolvesExistingPath(t *testing.T) {
	dev, ok := statDev(t.TempDir())
	require.True(t, ok)
	require.NotZero(t, dev)
}

func TestStatDevMissingPath(t *testing.T) {
	_, ok := statDev("/no/such/path/xgrep-test")
	require.False(t, ok)
}

func TestMultiSourceNoRootsIsStdin(t *testing.T) {
	require.False(t, multiSource(nil))
}

func TestMultiSourceMultipleRootsIsTrue(t *testing.T) {
	require.True(t, multiSource([]string{"a", "b"}))
}

func TestMultiSourceSingleFileIsFalse(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "xgrep")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.False(t, multiSource([]string{f.Name()}))
}

func TestMultiSourceSingleDirIsTrue(t *testing.T) {
	require.True(t, multiSource([]string{t.TempDir()}))
}
