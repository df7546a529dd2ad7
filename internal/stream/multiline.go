package stream

import (
	"bufio"
	"bytes"
	"io"

	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/model"
	"github.com/xgrep/xgrep/internal/pattern"
)

// maxMultilineBuffer bounds how much of a stream is read into memory for
// multiline matching. Sources larger than this are still matched, but only
// within this leading window — a pragmatic ceiling so one pathological
// input can't exhaust memory.
const maxMultilineBuffer = 256 << 20

// scanMultiline handles patterns that can match across line boundaries.
// It reads the source in full, then finds matches over the whole buffer
// and maps each match's start back to a line number by counting '\n'
// between the previous match and this one — the same incremental
// technique as the line-oriented path's predecessor, generalized to whole
// content instead of a whole zip entry.
func scanMultiline(source *model.InputSource, br *bufio.Reader, pat *pattern.Pattern, opts Options, sink Sink, binary bool, result *model.FileResult) (*model.FileResult, error) {
	buf, err := io.ReadAll(io.LimitReader(br, maxMultilineBuffer))
	if err != nil {
		result.Err = err
		return result, err
	}

	lineStarts := computeLineStarts(buf)
	showContent := !binary || opts.Binary == config.BinaryText || opts.Binary == config.BinaryHex

	var buffered []model.MatchRecord
	minMaxMode := opts.MinCount > 0

	lastLine := 0
	at := 0
	for at <= len(buf) {
		if opts.Cancel != nil && opts.Cancel() {
			break
		}
		spans, ok := pat.Matcher.FindAt(buf, at)
		if !ok {
			break
		}
		start, end := spans[0].Start, spans[0].End

		lineNum, lineIdx := lineForOffset(lineStarts, lastLine, start)
		lastLine = lineIdx

		lineStart := lineStarts[lineIdx]
		lineEnd := len(buf)
		if lineIdx+1 < len(lineStarts) {
			lineEnd = lineStarts[lineIdx+1]
		}
		lineText := bytes.TrimRight(buf[lineStart:lineEnd], "\r\n")

		if pat.Negative != nil && pat.Suppressed(buf, 0, start, end) {
			at = advance(end, start)
			continue
		}

		col := displayColumn(buf[lineStart:], start-lineStart, opts.TabWidth)
		rec := model.MatchRecord{
			Source:        source,
			Line:          lineNum,
			Column:        col,
			ByteOffset:    start,
			MatchStart:    start - lineStart,
			MatchEnd:      end - lineStart,
			MatchedBytes:  sliceOrEmpty(buf, start, end, showContent),
			FullLineBytes: trimmedOrEmpty(lineText, showContent),
			Captures:      rebase(spans, lineStart),
			CaptureNames:  pat.Matcher.SubexpNames(),
			Binary:        binary,
			FuzzyCost:     -1,
		}

		if minMaxMode {
			buffered = append(buffered, rec)
		} else {
			if !sink.OnMatch(&rec) {
				return finish(result, buffered, minMaxMode, minMaxMode, false, opts, sink)
			}
			result.MatchCount++
			if opts.ListFilesWithMatch || opts.QuietExit {
				break
			}
			if opts.MaxCount > 0 && result.MatchCount >= opts.MaxCount {
				break
			}
		}
		result.MatchedLineCount++

		at = advance(end, start)
	}

	return finish(result, buffered, minMaxMode, minMaxMode, false, opts, sink)
}

func advance(end, start int) int {
	if end > start {
		return end
	}
	return end + 1
}

func rebase(spans []model.CaptureSpan, lineStart int) []model.CaptureSpan {
	out := make([]model.CaptureSpan, len(spans))
	for i, s := range spans {
		if s.Start < 0 {
			out[i] = s
			continue
		}
		out[i] = model.CaptureSpan{Start: s.Start - lineStart, End: s.End - lineStart}
	}
	return out
}

// computeLineStarts returns the byte offset of the start of each line in
// buf (line 0 always starts at offset 0).
func computeLineStarts(buf []byte) []int {
	starts := []int{0}
	for i, b := range buf {
		if b == '\n' && i+1 < len(buf) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineForOffset returns the 1-based line number and 0-based index into
// lineStarts containing byte offset, scanning forward from fromIdx (the
// previous match's line index) since matches arrive in increasing offset
// order.
func lineForOffset(lineStarts []int, fromIdx, offset int) (lineNum, idx int) {
	idx = fromIdx
	for idx+1 < len(lineStarts) && lineStarts[idx+1] <= offset {
		idx++
	}
	return idx + 1, idx
}
