// Package model holds the data types shared across the search pipeline:
// the types every component from the walker down to the emitter passes
// around. None of them carry behavior beyond small invariant-preserving
// helpers; the components in sibling packages own the logic.
package model

import "time"

// SourceKind distinguishes the variants of InputSource.
type SourceKind int

const (
	SourceFile SourceKind = iota
	SourceStdin
	SourceArchiveMember
	SourceDecompressed
)

// InputSource is a logical stream to search.
//
// Archive members and decompressed streams carry a Parent so their display
// path can be built without the parent holding a back-reference to every
// child.
type InputSource struct {
	Kind SourceKind

	// Path is the real filesystem path for SourceFile, or the label for
	// SourceStdin ("(standard input)" unless overridden by --label).
	Path string

	Dev  uint64
	Ino  uint64
	Mtime time.Time
	Size  int64

	// Parent is non-nil for SourceArchiveMember/SourceDecompressed.
	Parent *InputSource
	// InnerPath is the member name within Parent (archive members only).
	InnerPath string
	// Format names the codec that produced this source: the decompression
	// codec for SourceDecompressed ("gzip", "bzip2", "xz", "lz4", "zstd") or
	// the container format for SourceArchiveMember ("zip", "tar", "cpio").
	// Unix compress (.Z) streams are not recognised.
	Format string
	// Depth is the archive/decompression nesting depth; depth 0 is a real
	// file or stdin. Bounded by --zmax.
	Depth int
}

// DisplayPath renders the synthetic "outer{inner}" path for an archive
// member or decompressed stream, nesting additional braces for each level.
func (s *InputSource) DisplayPath() string {
	if s.Parent == nil {
		return s.Path
	}
	inner := s.InnerPath
	if inner == "" {
		inner = s.Format
	}
	return s.Parent.DisplayPath() + "{" + inner + "}"
}

// Root walks Parent links back to the real file or stdin.
func (s *InputSource) Root() *InputSource {
	cur := s
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// CaptureSpan is a (start,end) byte range within a matched line, used for
// capture groups and highlighting spans. Start == -1 means the group did not
// participate in the match.
type CaptureSpan struct {
	Start, End int
}

// MatchRecord is one reported match.
type MatchRecord struct {
	Source *InputSource

	Line   int // 1-based, reset per source
	Column int // 1-based, tab-expanded display column

	ByteOffset int // 0-based, in normalized bytes
	MatchStart int
	MatchEnd   int

	MatchedBytes  []byte
	FullLineBytes []byte

	// Captures[0] is the whole match; Captures[i] for i>0 are capture
	// groups by index. Names are resolved via CaptureNames.
	Captures     []CaptureSpan
	CaptureNames []string

	// FuzzyCost is the edit-distance cost for -Z matches, or -1 if unset.
	FuzzyCost int

	// PatternIndex is the Boolean-query leaf that produced this match (set
	// by ScanBool). The line and multiline scans leave it 0, so for a fused
	// pattern set it does not say which alternative matched. %g prints it.
	PatternIndex int

	Binary bool

	BeforeContext [][]byte
	AfterContext  [][]byte

	// GroupSeparatorBefore requests a "--"-like separator be emitted ahead
	// of this record because it starts a new, non-contiguous context group.
	GroupSeparatorBefore bool
}

// SortKey is the set of attributes the output coordinator can sort
// FileResults by.
type SortKey struct {
	Name          string
	Size          int64
	Mtime, Atime, Ctime time.Time
	BestFuzzyCost int
}

// FileResult is the per-source aggregate a worker produces and the output
// coordinator consumes.
type FileResult struct {
	Source *InputSource

	Matches []MatchRecord

	MatchCount      int
	MatchedLineCount int

	BinaryDetected bool

	Keys SortKey

	// Err is set when the source could not be (fully) searched; the run
	// continues, this is reported as a warning unless -s is set.
	Err error
}

// DirEntry is produced by the traversal and consumed by the path selector.
type DirEntry struct {
	Path     string
	IsDir    bool
	IsSymlink bool
	Dev, Ino uint64
}
