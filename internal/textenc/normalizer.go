// Package textenc implements the encoding normalizer: BOM
// sniffing and transcoding to UTF-8, using golang.org/x/text the way
// inovacc/omni depends on it elsewhere in the pack.
package textenc

import (
	"bytes"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Kind identifies the detected or requested encoding.
type Kind int

const (
	KindRaw Kind = iota // ASCII/UTF-8 superset, identity mapping
	KindUTF8BOM
	KindUTF16LE
	KindUTF16BE
	KindUTF32LE
	KindUTF32BE
	KindNamed // --encoding=ENCODING, resolved via charmap
)

// Detection is the result of sniffing a source's first bytes.
type Detection struct {
	Kind      Kind
	BOMLength int // bytes to skip/strip
}

// Sniff inspects up to the first 4 bytes of head for a BOM. Absent a BOM,
// the caller's --encoding flag (named) takes over, else raw bytes.
func Sniff(head []byte, namedEncoding string) Detection {
	switch {
	case bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}):
		return Detection{Kind: KindUTF8BOM, BOMLength: 3}
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return Detection{Kind: KindUTF32LE, BOMLength: 4}
	case bytes.HasPrefix(head, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return Detection{Kind: KindUTF32BE, BOMLength: 4}
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE}):
		return Detection{Kind: KindUTF16LE, BOMLength: 2}
	case bytes.HasPrefix(head, []byte{0xFE, 0xFF}):
		return Detection{Kind: KindUTF16BE, BOMLength: 2}
	}
	if namedEncoding != "" {
		return Detection{Kind: KindNamed}
	}
	return Detection{Kind: KindRaw}
}

// NewReader wraps r to produce a stream of UTF-8 bytes. For KindRaw the
// mapping is identity and r is returned unwrapped; otherwise bytes are
// transcoded through golang.org/x/text/transform, and reported byte
// offsets downstream refer to this normalized stream.
func NewReader(r io.Reader, d Detection, namedEncoding string) (io.Reader, error) {
	switch d.Kind {
	case KindRaw:
		return r, nil
	case KindUTF8BOM:
		return r, nil // BOM already stripped by the caller via BOMLength
	case KindUTF16LE:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()), nil
	case KindUTF16BE:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()), nil
	case KindUTF32LE:
		return transform.NewReader(r, utf32Decoder(false)), nil
	case KindUTF32BE:
		return transform.NewReader(r, utf32Decoder(true)), nil
	case KindNamed:
		enc, err := lookupEncoding(namedEncoding)
		if err != nil {
			return nil, err
		}
		return transform.NewReader(r, enc.NewDecoder()), nil
	}
	return r, nil
}

// lookupEncoding resolves --encoding=ENCODING to a golang.org/x/text codec,
// covering the common single-byte charmap families; names outside that set
// return an error, which the engine reports as a per-source warning.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch name {
	case "LATIN1", "ISO-8859-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "LATIN2", "ISO-8859-2", "iso-8859-2":
		return charmap.ISO8859_2, nil
	case "CP1252", "windows-1252":
		return charmap.Windows1252, nil
	case "ASCII", "US-ASCII":
		return encoding.Nop, nil
	default:
		return nil, &unknownEncodingError{name}
	}
}

type unknownEncodingError struct{ name string }

func (e *unknownEncodingError) Error() string { return "unknown --encoding: " + e.name }

// utf32Decoder builds a UTF-32 transformer. golang.org/x/text does not
// ship a dedicated UTF-32 codec; we implement the (small, fixed-width)
// decode ourselves rather than reaching for a second library for four
// lines of logic.
func utf32Decoder(bigEndian bool) transform.Transformer {
	return &utf32Transformer{bigEndian: bigEndian}
}
