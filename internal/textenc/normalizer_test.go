package textenc

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSniffUTF8BOM(t *testing.T) {
	d := Sniff([]byte{0xEF, 0xBB, 0xBF, 'h'}, "")
	require.Equal(t, KindUTF8BOM, d.Kind)
	require.Equal(t, 3, d.BOMLength)
}

func TestSniffRawNoBOM(t *testing.T) {
	d := Sniff([]byte("hello"), "")
	require.Equal(t, KindRaw, d.Kind)
	require.Equal(t, 0, d.BOMLength)
}

func TestSniffNamedEncodingNoBOM(t *testing.T) {
	d := Sniff([]byte("hello"), "LATIN1")
	require.Equal(t, KindNamed, d.Kind)
}

func TestNewReaderRawIdentity(t *testing.T) {
	r, err := NewReader(strings.NewReader("abc"), Detection{Kind: KindRaw}, "")
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "abc", string(b))
}

func TestNewReaderUnknownNamedEncoding(t *testing.T) {
	_, err := NewReader(strings.NewReader("abc"), Detection{Kind: KindNamed}, "BOGUS")
	require.Error(t, err)
}

func TestUTF32LEDecode(t *testing.T) {
	// "AB" as little-endian UTF-32
	raw := []byte{'A', 0, 0, 0, 'B', 0, 0, 0}
	r, err := NewReader(strings.NewReader(string(raw)), Detection{Kind: KindUTF32LE}, "")
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "AB", string(b))
}
