package stream

import (
	"bufio"
	"bytes"
	"io"

	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/model"
	"github.com/xgrep/xgrep/internal/pattern"
)

// scanLines is the default path: the pattern cannot match across a line
// boundary, so lines are matched one at a time as they're read, with a
// ring buffer of the last Before lines and a pending-After countdown.
func scanLines(source *model.InputSource, br *bufio.Reader, pat *pattern.Pattern, opts Options, sink Sink, binary bool, result *model.FileResult) (*model.FileResult, error) {
	before := newRingBuffer(opts.Before)
	pendingAfter := 0
	lastEmittedLine := -1 // group-contiguity tracking
	lineNum := 0
	var byteOffset int

	var buffered []model.MatchRecord // held back for -m MIN,MAX post-filtering, or -Z best cost filtering
	minMaxMode := opts.MinCount > 0
	fuzzy := pat.Fuzzy()
	fuzzyBestMode := fuzzy != nil && fuzzy.Best()
	buffer := minMaxMode || fuzzyBestMode

	showContent := !binary || opts.Binary == config.BinaryText || opts.Binary == config.BinaryHex

	for {
		if opts.Cancel != nil && opts.Cancel() {
			break
		}
		line, err := readLine(br)
		if len(line) == 0 && err != nil {
			if err == io.EOF {
				break
			}
			result.Err = err
			break
		}
		lineNum++
		lineStartOffset := byteOffset
		byteOffset += len(line)

		if opts.StopAfterLine > 0 && lineNum > opts.StopAfterLine {
			break
		}
		if opts.SkipBeforeLine > 0 && lineNum < opts.SkipBeforeLine {
			if err == io.EOF {
				break
			}
			continue
		}

		trimmed := bytes.TrimRight(line, "\r\n")

		var spans [][]model.CaptureSpan
		var fuzzyCosts []int
		if fuzzy != nil {
			spans, fuzzyCosts = findFuzzyMatches(fuzzy, trimmed, opts.Unique)
		} else {
			spans = findLineMatches(pat, trimmed, opts.Unique)
		}
		matched := len(spans) > 0
		if opts.InvertMatch {
			matched = !matched
		}

		if !matched {
			if opts.AnyLine || pendingAfter > 0 {
				sink.OnContextLine(source, lineNum, trimmed)
				lastEmittedLine = lineNum
				if pendingAfter > 0 {
					pendingAfter--
				}
			} else {
				before.push(lineNum, trimmed)
			}
			if err == io.EOF {
				break
			}
			continue
		}

		// A new, non-contiguous match group: flush before-context and, if
		// context lines are on and this isn't the very first group, tell the
		// sink to separate.
		bLines, bNums := before.drain()
		groupStart := lineNum
		if len(bNums) > 0 {
			groupStart = bNums[0]
		}
		if lastEmittedLine >= 0 && (opts.Before > 0 || opts.After > 0) && groupStart > lastEmittedLine+1 {
			sink.OnGroupSeparator()
		}
		for i, bl := range bLines {
			sink.OnContextLine(source, bNums[i], bl)
		}

		if opts.InvertMatch {
			rec := model.MatchRecord{
				Source:        source,
				Line:          lineNum,
				Column:        1,
				ByteOffset:    lineStartOffset,
				MatchStart:    0,
				MatchEnd:      0,
				FullLineBytes: trimmed,
				Binary:        binary,
				FuzzyCost:     -1,
			}
			if buffer {
				buffered = append(buffered, rec)
			} else if !sink.OnMatch(&rec) {
				return finish(result, buffered, buffer, minMaxMode, fuzzyBestMode, opts, sink)
			}
			result.MatchCount++
			result.MatchedLineCount++
		} else {
			for i, sp := range spans {
				col := displayColumn(trimmed, sp[0].Start, opts.TabWidth)
				cost := -1
				if fuzzyCosts != nil {
					cost = fuzzyCosts[i]
				}
				rec := model.MatchRecord{
					Source:        source,
					Line:          lineNum,
					Column:        col,
					ByteOffset:    lineStartOffset + sp[0].Start,
					MatchStart:    sp[0].Start,
					MatchEnd:      sp[0].End,
					MatchedBytes:  sliceOrEmpty(trimmed, sp[0].Start, sp[0].End, showContent),
					FullLineBytes: trimmedOrEmpty(trimmed, showContent),
					Captures:      sp,
					CaptureNames:  pat.Matcher.SubexpNames(),
					Binary:        binary,
					FuzzyCost:     cost,
				}
				if buffer {
					buffered = append(buffered, rec)
				} else if !sink.OnMatch(&rec) {
					return finish(result, buffered, buffer, minMaxMode, fuzzyBestMode, opts, sink)
				}
				result.MatchCount++
			}
			result.MatchedLineCount++
		}
		lastEmittedLine = lineNum
		pendingAfter = opts.After

		if !buffer {
			if opts.ListFilesWithMatch || opts.QuietExit {
				break
			}
			if opts.MaxCount > 0 && result.MatchCount >= opts.MaxCount {
				break
			}
		}

		if err == io.EOF {
			break
		}
	}

	return finish(result, buffered, buffer, minMaxMode, fuzzyBestMode, opts, sink)
}

// finish applies -m MIN,MAX post-filtering and/or -Z best cost filtering to
// records held back during the scan, then forwards survivors to sink.
func finish(result *model.FileResult, buffered []model.MatchRecord, buffer, minMaxMode, fuzzyBestMode bool, opts Options, sink Sink) (*model.FileResult, error) {
	if !buffer {
		return result, result.Err
	}
	if minMaxMode {
		count := len(buffered)
		if count < opts.MinCount || (opts.MaxCount > 0 && count > opts.MaxCount) {
			result.MatchCount = 0
			result.MatchedLineCount = 0
			return result, result.Err
		}
	}
	if fuzzyBestMode {
		buffered = keepMinCost(buffered)
	}
	for i := range buffered {
		if !sink.OnMatch(&buffered[i]) {
			break
		}
		result.MatchCount++
	}
	result.MatchedLineCount = result.MatchCount
	return result, result.Err
}

// keepMinCost filters recs down to those sharing the lowest FuzzyCost.
func keepMinCost(recs []model.MatchRecord) []model.MatchRecord {
	if len(recs) == 0 {
		return recs
	}
	minCost := recs[0].FuzzyCost
	for _, r := range recs[1:] {
		if r.FuzzyCost < minCost {
			minCost = r.FuzzyCost
		}
	}
	out := recs[:0]
	for _, r := range recs {
		if r.FuzzyCost == minCost {
			out = append(out, r)
		}
	}
	return out
}

// findFuzzyMatches finds non-overlapping fuzzy windows on line, mirroring findLineMatches' scan-forward shape.
func findFuzzyMatches(fz *pattern.FuzzyMatcher, line []byte, unique bool) ([][]model.CaptureSpan, []int) {
	var spans [][]model.CaptureSpan
	var costs []int
	at := 0
	for at <= len(line) {
		m, ok := fz.FindAt(line, at)
		if !ok {
			break
		}
		spans = append(spans, []model.CaptureSpan{{Start: m.Start, End: m.End}})
		costs = append(costs, m.Cost)
		if unique {
			break
		}
		if m.End > m.Start {
			at = m.End
		} else {
			at = m.End + 1
		}
	}
	return spans, costs
}

// findLineMatches finds match spans on line. When unique is true, only the
// first match is returned; otherwise every
// non-overlapping match on the line is returned.
func findLineMatches(pat *pattern.Pattern, line []byte, unique bool) [][]model.CaptureSpan {
	var out [][]model.CaptureSpan
	at := 0
	for at <= len(line) {
		spans, ok := pat.Matcher.FindAt(line, at)
		if !ok {
			break
		}
		if pat.Negative != nil && pat.Suppressed(line, 0, spans[0].Start, spans[0].End) {
			at = spans[0].End + 1
			continue
		}
		out = append(out, spans)
		if unique {
			break
		}
		if spans[0].End > spans[0].Start {
			at = spans[0].End
		} else {
			at = spans[0].End + 1
		}
	}
	return out
}

// readLine reads one '\n'-terminated line, keeping any CR in the line
// bytes, and returns the final partial line with a non-nil line and io.EOF
// together when the stream ends without a trailing newline.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadBytes('\n')
	if len(line) == 0 && err != nil {
		return nil, err
	}
	if err == io.EOF {
		return line, io.EOF
	}
	return line, nil
}

func sliceOrEmpty(b []byte, start, end int, show bool) []byte {
	if !show {
		return nil
	}
	return append([]byte(nil), b[start:end]...)
}

func trimmedOrEmpty(b []byte, show bool) []byte {
	if !show {
		return nil
	}
	return append([]byte(nil), b...)
}
