package emit

import (
	"fmt"
	"strings"

	"github.com/xgrep/xgrep/internal/model"
)

// hexColumns is the number of 8-byte groups per hexdump line; 2 matches the common
// 16-bytes-per-line convention.
const hexColumns = 2

func (e *Writer) emitHex(r *model.FileResult) error {
	for _, m := range r.Matches {
		if err := e.writeLine(fmt.Sprintf("%s:%d:", r.Source.DisplayPath(), m.Line)); err != nil {
			return err
		}
		if err := writeHexLines(e.w, m.FullLineBytes, m.ByteOffset-m.MatchStart); err != nil {
			return err
		}
	}
	return nil
}

func writeHexLines(w interface{ Write([]byte) (int, error) }, data []byte, baseOffset int) error {
	perLine := hexColumns * 8
	for off := 0; off < len(data); off += perLine {
		end := off + perLine
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]

		var hexParts []string
		for g := 0; g < hexColumns; g++ {
			gs := g * 8
			ge := gs + 8
			if gs >= len(chunk) {
				hexParts = append(hexParts, strings.Repeat("   ", 8))
				continue
			}
			if ge > len(chunk) {
				ge = len(chunk)
			}
			var b strings.Builder
			for _, c := range chunk[gs:ge] {
				fmt.Fprintf(&b, "%02x ", c)
			}
			b.WriteString(strings.Repeat("   ", 8-(ge-gs)))
			hexParts = append(hexParts, b.String())
		}

		var ascii strings.Builder
		for _, c := range chunk {
			if c >= 0x20 && c < 0x7f {
				ascii.WriteByte(c)
			} else {
				ascii.WriteByte('.')
			}
		}

		line := fmt.Sprintf("%08x  %s %s |%s|\n", baseOffset+off, hexParts[0], strings.Join(hexParts[1:], " "), ascii.String())
		if _, err := w.Write([]byte(line)); err != nil {
			return err
		}
	}
	return nil
}
