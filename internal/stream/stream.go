// Package stream implements the line/stream matcher: it
// drives a compiled pattern over a normalized byte stream, tracking line
// numbers, columns, byte offsets, context windows, and binary detection.
//
// The core offset-tracking technique — bracket a match span out to its
// enclosing line, then advance the running line counter by counting '\n'
// between the previous match and this one rather than rescanning from the
// start — is grounded on cmd/searcher/search/matcher.go's Find/
// hydrateLineNumbers; this package generalizes it from "whole buffer, one
// shot" to a streaming reader with a context ring buffer, any-line mode,
// binary classification, and early exit.
package stream

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/model"
	"github.com/xgrep/xgrep/internal/pattern"
)

// Sink receives MatchRecords and context lines as Scan produces them. It
// returns false to request early termination (e.g. -q "found a match,
// stop looking").
type Sink interface {
	// OnMatch is called for each MatchRecord in stream order.
	OnMatch(rec *model.MatchRecord) (cont bool)
	// OnContextLine is called for a non-matching line being emitted as
	// context (-A/-B/-C, or every line under -y).
	OnContextLine(source *model.InputSource, line int, text []byte)
	// OnGroupSeparator is called between non-contiguous context groups.
	OnGroupSeparator()
}

// Options is the subset of config.Config the scanner consumes, lifted out so
// stream does not need the whole Config (and so tests can build one
// directly).
type Options struct {
	Before, After             int
	AnyLine                   bool
	MinCount, MaxCount        int
	SkipBeforeLine, StopAfterLine int
	Unique                    bool
	InvertMatch               bool
	Binary                    config.BinaryPolicy
	TabWidth                  int
	GroupSeparator            string
	ListFilesWithMatch        bool
	ListFilesWithoutMatch     bool
	QuietExit                 bool
	OnlyMatching              bool
	ByteOffset                bool
	ByteMode                  bool // -U: skip UTF-8 validation for binary classification

	// Cancel, if non-nil, is checked at line boundaries; when it reports
	// true, Scan stops as if end-of-stream was reached.
	Cancel func() bool
}

// FromConfig builds Options from the subset of fields in cfg the scanner uses.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Before:                cfg.Before,
		After:                 cfg.After,
		AnyLine:               cfg.AnyLine,
		MinCount:              cfg.MinCount,
		MaxCount:              cfg.MaxCount,
		SkipBeforeLine:        cfg.SkipBeforeLine,
		StopAfterLine:         cfg.StopAfterLine,
		Unique:                cfg.Unique,
		InvertMatch:           cfg.InvertMatch,
		Binary:                cfg.Binary,
		TabWidth:              cfg.TabWidth,
		GroupSeparator:        cfg.GroupSeparator,
		ListFilesWithMatch:    cfg.ListFilesWithMatch,
		ListFilesWithoutMatch: cfg.ListFilesWithoutMatch,
		QuietExit:             cfg.QuietExit,
		OnlyMatching:          cfg.OnlyMatching,
		ByteOffset:            cfg.ShowByteOffset,
		ByteMode:              cfg.Flags.ByteMode,
	}
}

// sniffLen is how much of the stream's head we inspect to classify binary
// before any matching starts.
const sniffLen = 8192

// Scan drives pat over r, producing MatchRecords to sink and returning the
// per-source aggregate. It never returns an error for
// ordinary no-match streams; err is reserved for I/O failures reading r.
func Scan(source *model.InputSource, r io.Reader, pat *pattern.Pattern, opts Options, sink Sink) (*model.FileResult, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	head, _ := br.Peek(sniffLen)
	binary := classifyBinary(head, opts.ByteMode)

	result := &model.FileResult{Source: source, BinaryDetected: binary}

	if binary && opts.Binary == config.BinarySkip {
		return result, nil
	}

	if pat.MultilineCapable {
		return scanMultiline(source, br, pat, opts, sink, binary, result)
	}
	return scanLines(source, br, pat, opts, sink, binary, result)
}

// classifyBinary reports whether head looks like binary content: a NUL
// byte, or (absent -U byte mode) a byte sequence that isn't valid UTF-8.
func classifyBinary(head []byte, byteMode bool) bool {
	if bytes.IndexByte(head, 0) >= 0 {
		return true
	}
	if byteMode {
		return false
	}
	return !utf8.Valid(head)
}

// displayColumn computes the 1-based, tab-expanded display column of byte
// offset col within line.
func displayColumn(line []byte, byteCol, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = 8
	}
	col := 1
	for i := 0; i < byteCol && i < len(line); {
		r, size := utf8.DecodeRune(line[i:])
		if r == '\t' {
			col += tabWidth - ((col - 1) % tabWidth)
		} else {
			col++
		}
		i += size
	}
	return col
}

// ringBuffer holds the last n lines seen, for -B/-C before-context.
type ringBuffer struct {
	lines    [][]byte
	lineNums []int
	cap      int
	start    int
	size     int
}

func newRingBuffer(n int) *ringBuffer {
	if n <= 0 {
		return &ringBuffer{}
	}
	return &ringBuffer{lines: make([][]byte, n), lineNums: make([]int, n), cap: n}
}

func (rb *ringBuffer) push(lineNum int, line []byte) {
	if rb.cap == 0 {
		return
	}
	idx := (rb.start + rb.size) % rb.cap
	if rb.size < rb.cap {
		rb.size++
	} else {
		rb.start = (rb.start + 1) % rb.cap
		idx = (rb.start + rb.size - 1) % rb.cap
	}
	cp := append([]byte(nil), line...)
	rb.lines[idx] = cp
	rb.lineNums[idx] = lineNum
}

// drain returns the buffered lines oldest-first and empties the buffer.
func (rb *ringBuffer) drain() ([][]byte, []int) {
	if rb.size == 0 {
		return nil, nil
	}
	outLines := make([][]byte, rb.size)
	outNums := make([]int, rb.size)
	for i := 0; i < rb.size; i++ {
		idx := (rb.start + i) % rb.cap
		outLines[i] = rb.lines[idx]
		outNums[i] = rb.lineNums[idx]
	}
	rb.start, rb.size = 0, 0
	return outLines, outNums
}
