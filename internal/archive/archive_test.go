package archive

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectFormatGzipMagic(t *testing.T) {
	require.Equal(t, FormatGzip, DetectFormat([]byte{0x1f, 0x8b, 0x08}, "data.bin"))
}

func TestDetectFormatBySuffix(t *testing.T) {
	require.Equal(t, FormatXZ, DetectFormat(nil, "archive.xz"))
	require.Equal(t, FormatBzip2, DetectFormat(nil, "archive.tbz2"))
}

func TestDetectFormatNone(t *testing.T) {
	require.Equal(t, FormatNone, DetectFormat([]byte("plain text"), "notes.txt"))
}

func TestNewDecompressingReaderGzipRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte("hello decompressed world"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	rc, err := NewDecompressingReader(&buf, FormatGzip)
	require.NoError(t, err)
	defer rc.Close()

	out, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "hello decompressed world", string(out))
}
