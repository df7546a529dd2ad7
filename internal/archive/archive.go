// Package archive implements the decompressor and archive reader: format detection, decompression (pipelined for gzip), and iteration of
// archive members into InputSources.
package archive

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"

	"github.com/xgrep/xgrep/internal/model"
)

// Format identifies a decompression/archive codec.
type Format int

const (
	FormatNone Format = iota
	FormatGzip
	FormatBzip2
	FormatXZ
	FormatLZ4
	FormatZstd
	FormatZip
	FormatTar
	FormatCPIO
)

func (f Format) String() string {
	switch f {
	case FormatGzip:
		return "gzip"
	case FormatBzip2:
		return "bzip2"
	case FormatXZ:
		return "xz"
	case FormatLZ4:
		return "lz4"
	case FormatZstd:
		return "zstd"
	case FormatZip:
		return "zip"
	case FormatTar:
		return "tar"
	case FormatCPIO:
		return "cpio"
	default:
		return "none"
	}
}

var magicDetectors = []struct {
	magic  []byte
	format Format
}{
	{[]byte{0x1f, 0x8b}, FormatGzip},
	{[]byte{0x50, 0x4b, 0x03, 0x04}, FormatZip},
	{[]byte{0x50, 0x4b, 0x05, 0x06}, FormatZip}, // empty zip
	{[]byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, FormatXZ},
	{[]byte{0x28, 0xb5, 0x2f, 0xfd}, FormatZstd},
	{[]byte{0xc7, 0x71}, FormatCPIO},     // cpio binary (old) magic
	{[]byte{'0', '7', '0', '7'}, FormatCPIO}, // cpio ASCII "070701"/"070707"
}

var suffixDetectors = map[string]Format{
	".gz":   FormatGzip,
	".tgz":  FormatGzip,
	".bz2":  FormatBzip2,
	".tbz2": FormatBzip2,
	".xz":   FormatXZ,
	".lzma": FormatXZ,
	".lz4":  FormatLZ4,
	".zst":  FormatZstd,
	".zip":  FormatZip,
	".tar":  FormatTar,
	".cpio": FormatCPIO,
}

// DetectFormat classifies head (the first bytes of a candidate stream) and
// falls back to name's suffix when magic bytes are ambiguous. BZh is bzip2's one unambiguous magic, so it is checked directly.
func DetectFormat(head []byte, name string) Format {
	if bytes.HasPrefix(head, []byte("BZh")) {
		return FormatBzip2
	}
	for _, d := range magicDetectors {
		if bytes.HasPrefix(head, d.magic) {
			return d.format
		}
	}
	ext := strings.ToLower(filepath.Ext(name))
	if f, ok := suffixDetectors[ext]; ok {
		return f
	}
	return FormatNone
}

// NewDecompressingReader wraps r with the codec for format. The gzip codec
// (pgzip) decompresses ahead of the reader on its own goroutines; the other
// codecs decompress synchronously inside Read, with no pipe between them and
// the downstream matcher.
func NewDecompressingReader(r io.Reader, format Format) (io.ReadCloser, error) {
	switch format {
	case FormatGzip:
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		return gz, nil
	case FormatBzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case FormatXZ:
		xr, err := xz.NewReader(bufio.NewReader(r))
		if err != nil {
			return nil, errors.Wrap(err, "xz")
		}
		return io.NopCloser(xr), nil
	case FormatLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case FormatZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		return pipeToReadCloser(zr), nil
	default:
		return io.NopCloser(r), nil
	}
}

// pipeToReadCloser adapts a *zstd.Decoder (whose Close has no error return
// compatible with io.Closer in older releases) to io.ReadCloser.
func pipeToReadCloser(zr *zstd.Decoder) io.ReadCloser {
	return &zstdCloser{Decoder: zr}
}

type zstdCloser struct{ *zstd.Decoder }

func (z *zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// Member describes one entry yielded while iterating an archive.
type Member struct {
	Name    string
	Size    int64
	IsDir   bool
	Open    func() (io.ReadCloser, error)
}

// ToInputSource builds the virtual InputSource for an archive member, one
// nesting level below parent; Expand stops descending once Depth reaches zmax.
func ToInputSource(parent *model.InputSource, m Member, format Format) *model.InputSource {
	return &model.InputSource{
		Kind:      model.SourceArchiveMember,
		Path:      parent.Path,
		Parent:    parent,
		InnerPath: m.Name,
		Format:    format.String(),
		Depth:     parent.Depth + 1,
		Size:      m.Size,
	}
}

// ToDecompressedSource builds the virtual InputSource for a decompressed
// (non-archive) stream, e.g. foo.txt.gz -> foo.txt.
func ToDecompressedSource(parent *model.InputSource, format Format) *model.InputSource {
	return &model.InputSource{
		Kind:   model.SourceDecompressed,
		Path:   parent.Path,
		Parent: parent,
		Format: format.String(),
		Depth:  parent.Depth + 1,
	}
}
