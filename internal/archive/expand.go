package archive

import (
	"bufio"
	"io"

	"github.com/xgrep/xgrep/internal/model"
)

// peekLen bounds how many leading bytes Expand inspects to detect a
// format by magic (the longest magic used here is 6 bytes).
const peekLen = 16

// Expand classifies src's content and, for a concatenated-compressed or
// archive stream, calls visit once per logical InputSource it produces
// (a single decompressed stream, or one InputSource per archive member).
// Plain (unrecognized) content is passed back to visit unchanged so the
// caller always gets at least one source.
//
// Nesting stops at zmax.
func Expand(source *model.InputSource, r io.Reader, zmax int, visit func(*model.InputSource, io.Reader) (bool, error)) error {
	br := bufio.NewReaderSize(r, 64*1024)
	head, _ := br.Peek(peekLen)
	format := DetectFormat(head, source.DisplayPath())

	if format == FormatNone {
		cont, err := visit(source, br)
		_ = cont
		return err
	}

	if source.Depth >= zmax {
		// Treated as opaque binary: don't decode further, hand back the
		// raw (still-compressed) bytes as-is.
		_, err := visit(source, br)
		return err
	}

	switch format {
	case FormatZip, FormatTar, FormatCPIO:
		return expandContainer(source, br, format, zmax, visit)
	default:
		return expandStream(source, br, format, zmax, visit)
	}
}

// expandStream handles a non-container codec (gzip/bzip2/xz/lz4/zstd),
// decompressing it and recursing in case the decompressed content is
// itself an archive or another compressed stream. Concatenated compressed
// members are searched as one logical stream: simply treating the
// decompressor's output as one continuous byte stream handles
// concatenation for free (pgzip/bzip2/xz/lz4/zstd readers all transparently
// continue past a member boundary).
func expandStream(source *model.InputSource, r io.Reader, format Format, zmax int, visit func(*model.InputSource, io.Reader) (bool, error)) error {
	dr, err := NewDecompressingReader(r, format)
	if err != nil {
		return err
	}
	defer dr.Close()

	child := ToDecompressedSource(source, format)
	return Expand(child, dr, zmax, visit)
}

func expandContainer(source *model.InputSource, r io.Reader, format Format, zmax int, visit func(*model.InputSource, io.Reader) (bool, error)) error {
	return IterateContainer(r, format, source.Size, func(m Member) (bool, error) {
		rc, err := m.Open()
		if err != nil {
			return true, err // member can't be opened: iteration stops and the caller reports the error as a warning
		}
		defer rc.Close()

		child := ToInputSource(source, m, format)
		if err := Expand(child, rc, zmax, visit); err != nil {
			return true, err
		}
		return true, nil
	})
}
