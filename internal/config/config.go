// Package config holds the engine's immutable run configuration.
//
// A Config is built once by cmd/xgrep (flags, config file, environment) and
// then shared read-only by every worker goroutine.
package config

import "time"

// BinaryPolicy is the --binary-files mode.
type BinaryPolicy int

const (
	BinaryReport BinaryPolicy = iota // default: report match, don't show content
	BinarySkip                       // -I / without-match
	BinaryText                       // -a
	BinaryHex                        // -X / -W / hex
)

// SortKey selects the --sort=KEY ordering.
type SortKey int

const (
	SortNone SortKey = iota
	SortName
	SortBest
	SortSize
	SortUsed
	SortChanged
	SortCreated
)

// EmitFormat selects the output encoding.
type EmitFormat int

const (
	EmitPlain EmitFormat = iota
	EmitCPP
	EmitCSV
	EmitJSON
	EmitXML
	EmitHex
	EmitFormatString // --format
	EmitReplace      // --replace
)

// FuzzySpec is the -Z fuzzy matching specification.
type FuzzySpec struct {
	Enabled   bool
	Best      bool
	MaxCost   int
	AllowIns  bool
	AllowDel  bool
	AllowSub  bool
}

// PatternFlags controls how patterns are compiled.
type PatternFlags struct {
	IgnoreCase    bool // -i
	WordBoundary  bool // -w
	LineWhole     bool // -x
	FixedStrings  bool // -F
	BasicRE       bool // -G
	Perl          bool // -P
	ByteMode      bool // -U
	EmptyMatch    bool // -Y
}

// Config is the full immutable run configuration threaded through every
// component. Fields are grouped by the component that primarily consumes
// them; many are read by more than one.
type Config struct {
	// Pattern compilation
	Patterns         []string
	NegativePatterns []string
	PatternFiles     []string
	Flags            PatternFlags
	Fuzzy            FuzzySpec
	BoolExpr         string // --bool/-%/-%% expression text, empty if unused
	BoolFileScope    bool   // -%% : evaluate over whole file, not per line

	// Traversal
	Roots          []string
	Recursive      bool
	FollowSymlinks SymlinkPolicy
	DepthMin       int
	DepthMax       int // 0 == unbounded
	Hidden         bool // -. : don't skip dotfiles
	IncludeFS      []string
	ExcludeFS      []string

	// Path selection
	IncludeGlobs  []string
	ExcludeGlobs  []string
	IncludeDirGlobs []string
	ExcludeDirGlobs []string
	Extensions    []string // -O
	Types         []string // -t
	Magic         string   // -M
	IgnoreFiles   string   // --ignore-files[=FILE], empty disables

	// Decompression
	Decompress bool // -z
	ZMax       int  // --zmax, default 1

	// Matching limits
	Before, After int // -B, -A (-C sets both)
	AnyLine       bool // -y
	MinCount, MaxCount int // -m [MIN,]MAX ; 0 == unbounded
	SkipBeforeLine, StopAfterLine int // -K MIN,MAX
	MaxFiles      int // --max-files

	// Output selection
	ListFilesWithMatch   bool // -l
	ListFilesWithoutMatch bool // -L
	CountOnly            bool // -c
	OnlyMatching         bool // -o
	Unique               bool // default on; -u disables grouping
	QuietExit            bool // -q
	SuppressWarnings     bool // -s
	InvertMatch          bool // -v
	Binary               BinaryPolicy
	TabWidth             int // --tabs, default 8
	GroupSeparator       string // default "--"

	// Output format
	Format       EmitFormat
	FormatString string // --format
	ReplaceString string // --replace
	Color        ColorMode
	Colors       string // GREP_COLORS / --colors
	ShowFilename ShowFilenamePolicy // -H/-h
	ShowLineNo   bool // -n
	ShowColumn   bool // -k
	ShowByteOffset bool // -b
	Heading      bool // --heading/--break
	NullSep      bool // --null
	Label        string // --label

	// Concurrency
	Workers int // -J, 0 == auto

	// Sort
	Sort        SortKey
	SortReverse bool

	// Encoding
	Encoding string // --encoding=ENCODING, empty == auto/raw

	// Environment-derived
	GrepPath   string // GREP_PATH
	Stats      bool   // --stats

	StartedAt time.Time
}

// SymlinkPolicy is the -r/-R/-S/-p family.
type SymlinkPolicy int

const (
	SymlinkNone          SymlinkPolicy = iota // -p: never follow
	SymlinkCommandLine                        // -r: only command-line symlinks
	SymlinkAll                                // -R: follow all
	SymlinkFilesOnly                          // -S: files yes, directories no
)

// ColorMode is --color[=WHEN].
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ShowFilenamePolicy is -H (always) / -h (never) / auto (multiple sources).
type ShowFilenamePolicy int

const (
	ShowFilenameAuto ShowFilenamePolicy = iota
	ShowFilenameAlways
	ShowFilenameNever
)

// Default returns a Config with the documented defaults applied.
func Default() *Config {
	return &Config{
		Recursive:      true,
		FollowSymlinks: SymlinkCommandLine,
		ZMax:           1,
		TabWidth:       8,
		GroupSeparator: "--",
		Unique:         true,
		Workers:        0,
		StartedAt:      time.Now(),
	}
}

// ResolvedWorkers returns the worker count to run with, applying the "auto"
// default.
func (c *Config) ResolvedWorkers(numCPU int) int {
	if c.Workers > 0 {
		return c.Workers
	}
	if numCPU < 1 {
		return 1
	}
	if numCPU > 8 {
		return 8
	}
	return numCPU
}
