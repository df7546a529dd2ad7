package stream

import (
	"bufio"
	"bytes"
	"io"

	"github.com/xgrep/xgrep/internal/boolquery"
	"github.com/xgrep/xgrep/internal/model"
	"github.com/xgrep/xgrep/internal/pattern"
)

// maxFileScopeBuffer bounds how much of a source ScanBool buffers to
// evaluate a --files ("-%%") scoped expression, which needs the whole
// source available twice.
const maxFileScopeBuffer = 64 << 20

// ScanBool drives a Boolean query's leaf patterns over a stream. Context windows and -m
// MIN,MAX buffering, which are orthogonal to the Boolean
// planner, are not applied in bool mode.
func ScanBool(source *model.InputSource, r io.Reader, leaves []*pattern.Pattern, query *boolquery.Query, opts Options, sink Sink) (*model.FileResult, error) {
	result := &model.FileResult{Source: source}
	br := bufio.NewReaderSize(r, 64*1024)

	if query.Scope == boolquery.ScopeFiles {
		return scanBoolFileScope(source, br, leaves, query, opts, sink, result)
	}
	return scanBoolLineScope(source, br, leaves, query, opts, sink, result)
}

func scanBoolLineScope(source *model.InputSource, br *bufio.Reader, leaves []*pattern.Pattern, query *boolquery.Query, opts Options, sink Sink, result *model.FileResult) (*model.FileResult, error) {
	lineNum := 0
	var byteOffset int
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
		lineStart := byteOffset
		byteOffset += len(line)
		trimmed := bytes.TrimRight(line, "\r\n")

		leafResults, spans := evalLeaves(leaves, trimmed)
		ok, contributing := boolquery.Eval(query.CNF, leafResults)
		if opts.InvertMatch {
			ok = !ok
		}

		if ok {
			idx := firstContributing(contributing, len(leaves))
			rec := model.MatchRecord{
				Source:        source,
				Line:          lineNum,
				Column:        1,
				ByteOffset:    lineStart,
				FullLineBytes: append([]byte(nil), trimmed...),
				PatternIndex:  idx,
				FuzzyCost:     -1,
			}
			if idx >= 0 && spans[idx] != nil {
				sp := spans[idx][0]
				rec.Column = displayColumn(trimmed, sp.Start, opts.TabWidth)
				rec.MatchStart, rec.MatchEnd = sp.Start, sp.End
				rec.MatchedBytes = append([]byte(nil), trimmed[sp.Start:sp.End]...)
				rec.Captures = sp2Slice(sp)
			}
			if !sink.OnMatch(&rec) {
				break
			}
			result.MatchCount++
			result.MatchedLineCount++
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
	return result, result.Err
}

// scanBoolFileScope buffers the source once, determines which leaves match
// anywhere in it, evaluates the tree once over that whole-file truth
// assignment, and — if satisfied — makes a second pass emitting the lines
// where a contributing leaf matched.
func scanBoolFileScope(source *model.InputSource, br *bufio.Reader, leaves []*pattern.Pattern, query *boolquery.Query, opts Options, sink Sink, result *model.FileResult) (*model.FileResult, error) {
	data, err := io.ReadAll(io.LimitReader(br, maxFileScopeBuffer))
	if err != nil {
		result.Err = err
		return result, err
	}
	lines := splitLines(data)

	anyMatched := make([]bool, len(leaves))
	for _, line := range lines {
		trimmed := bytes.TrimRight(line, "\r\n")
		for i, lp := range leaves {
			if anyMatched[i] {
				continue
			}
			if _, ok := lp.Matcher.FindAt(trimmed, 0); ok {
				anyMatched[i] = true
			}
		}
	}

	leafResults := make([]boolquery.LeafResult, len(leaves))
	for i, m := range anyMatched {
		leafResults[i] = boolquery.LeafResult{Matched: m}
	}
	ok, contributing := boolquery.Eval(query.CNF, leafResults)
	if opts.InvertMatch {
		ok = !ok
	}
	if !ok {
		return result, nil
	}

	var byteOffset int
	for i, line := range lines {
		lineStart := byteOffset
		byteOffset += len(line)
		trimmed := bytes.TrimRight(line, "\r\n")

		matchedLeaf := -1
		var matchedSpans []model.CaptureSpan
		for leafIdx, lp := range leaves {
			if !contributing[leafIdx] {
				continue
			}
			if sp, ok := lp.Matcher.FindAt(trimmed, 0); ok {
				matchedLeaf, matchedSpans = leafIdx, sp
				break
			}
		}
		if matchedLeaf < 0 {
			continue
		}

		rec := model.MatchRecord{
			Source:        source,
			Line:          i + 1,
			Column:        displayColumn(trimmed, matchedSpans[0].Start, opts.TabWidth),
			ByteOffset:    lineStart + matchedSpans[0].Start,
			MatchStart:    matchedSpans[0].Start,
			MatchEnd:      matchedSpans[0].End,
			MatchedBytes:  append([]byte(nil), trimmed[matchedSpans[0].Start:matchedSpans[0].End]...),
			FullLineBytes: append([]byte(nil), trimmed...),
			Captures:      matchedSpans,
			PatternIndex:  matchedLeaf,
			FuzzyCost:     -1,
		}
		if !sink.OnMatch(&rec) {
			break
		}
		result.MatchCount++
		result.MatchedLineCount++
		if opts.ListFilesWithMatch || opts.QuietExit {
			break
		}
		if opts.MaxCount > 0 && result.MatchCount >= opts.MaxCount {
			break
		}
	}
	return result, nil
}

// evalLeaves tests every leaf pattern against line, returning each leaf's
// truth value and (for matched leaves) its match spans.
func evalLeaves(leaves []*pattern.Pattern, line []byte) ([]boolquery.LeafResult, [][]model.CaptureSpan) {
	results := make([]boolquery.LeafResult, len(leaves))
	spans := make([][]model.CaptureSpan, len(leaves))
	for i, lp := range leaves {
		sp, ok := lp.Matcher.FindAt(line, 0)
		results[i] = boolquery.LeafResult{Matched: ok}
		if ok {
			spans[i] = sp
		}
	}
	return results, spans
}

func firstContributing(contributing map[int]bool, n int) int {
	for i := 0; i < n; i++ {
		if contributing[i] {
			return i
		}
	}
	return -1
}

func sp2Slice(sp model.CaptureSpan) []model.CaptureSpan { return []model.CaptureSpan{sp} }

// splitLines splits data into '\n'-inclusive lines, with a final partial
// line (no trailing '\n') included as-is.
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			lines = append(lines, data[start:i+1])
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
