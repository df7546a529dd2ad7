package textenc

import (
	"golang.org/x/text/transform"
)

// utf32Transformer decodes fixed-width UTF-32 into UTF-8. There is no
// third-party UTF-32 codec in the stack this repo draws on, so this
// implements the fixed 4-byte-per-rune decode directly.
type utf32Transformer struct {
	bigEndian bool
}

func (t *utf32Transformer) Reset() {}

func (t *utf32Transformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc+4 <= len(src) {
		var r rune
		if t.bigEndian {
			r = rune(src[nSrc])<<24 | rune(src[nSrc+1])<<16 | rune(src[nSrc+2])<<8 | rune(src[nSrc+3])
		} else {
			r = rune(src[nSrc+3])<<24 | rune(src[nSrc+2])<<16 | rune(src[nSrc+1])<<8 | rune(src[nSrc])
		}
		if r > 0x10FFFF || (r >= 0xD800 && r <= 0xDFFF) {
			r = 0xFFFD
		}
		size := encodeRuneLen(r)
		if nDst+size > len(dst) {
			err = transform.ErrShortDst
			return
		}
		n := encodeRune(dst[nDst:], r)
		nDst += n
		nSrc += 4
	}
	if !atEOF && nSrc == len(src) {
		err = transform.ErrShortSrc
	} else if len(src)-nSrc > 0 && len(src)-nSrc < 4 && atEOF {
		// Trailing partial code unit at EOF: drop silently, matching the
		// BOM-aware decoders' tolerance of truncated tails.
		nSrc = len(src)
	}
	return
}

func encodeRuneLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}

func encodeRune(dst []byte, r rune) int {
	switch {
	case r < 0x80:
		dst[0] = byte(r)
		return 1
	case r < 0x800:
		dst[0] = 0xC0 | byte(r>>6)
		dst[1] = 0x80 | byte(r&0x3F)
		return 2
	case r < 0x10000:
		dst[0] = 0xE0 | byte(r>>12)
		dst[1] = 0x80 | byte((r>>6)&0x3F)
		dst[2] = 0x80 | byte(r&0x3F)
		return 3
	default:
		dst[0] = 0xF0 | byte(r>>18)
		dst[1] = 0x80 | byte((r>>12)&0x3F)
		dst[2] = 0x80 | byte((r>>6)&0x3F)
		dst[3] = 0x80 | byte(r&0x3F)
		return 4
	}
}
