// Command xgrep is the CLI surface for the search engine: flag parsing,
// config-file loading, and environment variables are deliberately out of
// the engine's core, so this is where they live, as a single cobra.Command
// with a pflag.FlagSet whose values are read back into a Config after
// Execute.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/engine"
	"github.com/xgrep/xgrep/internal/engineerr"
)

func main() {
	os.Exit(run())
}

func run() int {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Default()
	var exitCode int

	cmd := &cobra.Command{
		Use:           "xgrep [OPTION]... PATTERN [FILE]...",
		Short:         "recursive file-content search",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	fs := cmd.Flags()
	bindFlags(fs)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := applyConfigFile(fs, cfg); err != nil {
			return err
		}
		applyEnv(cfg)
		if err := applyFlags(fs, cfg); err != nil {
			return err
		}

		if len(cfg.Patterns) == 0 && len(cfg.PatternFiles) == 0 && cfg.BoolExpr == "" {
			if len(args) == 0 {
				return cmd.Usage()
			}
			cfg.Patterns = []string{args[0]}
			args = args[1:]
		}
		cfg.Roots = args

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		code, err := engine.Run(ctx, cfg, os.Stdout, log)
		exitCode = code
		if err != nil {
			if e := asEngineErr(err); e != nil {
				log.Error(e.Kind.String(), zap.Error(e))
			}
			return err
		}
		return nil
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "xgrep:", err)
		if exitCode < 2 {
			exitCode = 2
		}
	}
	return exitCode
}

func asEngineErr(err error) *engineerr.Error {
	var e *engineerr.Error
	errors.As(err, &e)
	return e
}

// bindFlags declares the flag surface the engine understands. It does not
// reproduce every exotic short-flag combination of the full dialect
// one-for-one — the behavior lives in the engine, not the flag parser.
func bindFlags(fs *pflag.FlagSet) {
	// Pattern dialect & sources
	fs.StringArrayP("regexp", "e", nil, "use PATTERN for matching")
	fs.StringArrayP("file", "f", nil, "obtain patterns from FILE")
	fs.StringArrayP("neg-regexp", "N", nil, "negative PATTERN")
	fs.BoolP("ignore-case", "i", false, "ignore case distinctions")
	fs.BoolP("word-regexp", "w", false, "match only whole words")
	fs.BoolP("line-regexp", "x", false, "match only whole lines")
	fs.BoolP("fixed-strings", "F", false, "PATTERN is literal strings")
	fs.BoolP("basic-regexp", "G", false, "PATTERN is a basic regular expression")
	fs.BoolP("perl-regexp", "P", false, "PATTERN is a Perl regular expression")
	fs.BoolP("byte-regexp", "U", false, "disable Unicode, byte mode")
	fs.Bool("empty", false, "allow empty matches")
	fs.String("bool", "", "Boolean query expression (-%)")
	fs.Bool("files-expr", false, "evaluate --bool over whole files (-%%)")
	fs.String("fuzzy", "", "fuzzy match spec, e.g. \"best1\" or \"2\" (-Z)")

	// Traversal
	fs.BoolP("recursive", "r", true, "recurse into directories")
	fs.BoolP("dereference-recursive", "R", false, "recurse, following all symlinks")
	fs.BoolP("dereference-files", "S", false, "follow file symlinks, not directory symlinks")
	fs.BoolP("no-dereference", "p", false, "never follow symlinks")
	fs.String("depth", "", "MIN,MAX directory depth bound")
	fs.BoolP("hidden", ".", false, "search hidden files and directories")
	fs.StringArray("include-fs", nil, "only cross into these filesystems (by path)")
	fs.StringArray("exclude-fs", nil, "never cross into these filesystems (by path)")

	// Selection
	fs.StringP("file-extension", "O", "", "comma-separated extensions")
	fs.StringP("file-magic", "M", "", "magic-byte regex")
	fs.StringP("file-type", "t", "", "comma-separated predefined type bundles")
	fs.StringArrayP("glob", "g", nil, "include/exclude glob (leading ! excludes, ! then ! re-includes)")
	fs.StringArray("include", nil, "only search files matching glob")
	fs.StringArray("exclude", nil, "skip files matching glob")
	fs.StringArray("include-dir", nil, "only recurse into directories matching glob")
	fs.StringArray("exclude-dir", nil, "skip directories matching glob")
	fs.String("ignore-files", "", "maintain a per-directory ignore-file stack (default name .gitignore)")

	// Decompression
	fs.BoolP("decompress", "z", false, "search inside compressed files and archives")
	fs.Int("zmax", 1, "maximum nested archive/decompression depth")

	// Matching limits
	fs.IntP("before-context", "B", 0, "print NUM lines of leading context")
	fs.IntP("after-context", "A", 0, "print NUM lines of trailing context")
	fs.IntP("context", "C", 0, "print NUM lines of output context")
	fs.BoolP("any-line", "y", false, "emit every non-matching line as context")
	fs.StringP("max-count", "m", "", "[MIN,]MAX matches")
	fs.String("skip-stop", "", "MIN,MAX line bounds (-K)")
	fs.Int("max-files", 0, "stop after N sources have matched")

	// Output selection
	fs.BoolP("files-with-matches", "l", false, "print only names of files with matches")
	fs.BoolP("files-without-match", "L", false, "print only names of files without matches")
	fs.BoolP("count", "c", false, "print only a count of matches per file")
	fs.BoolP("only-matching", "o", false, "show only the matched part of each line")
	fs.BoolP("ungroup", "u", false, "don't suppress duplicate matches on one line")
	fs.BoolP("quiet", "q", false, "suppress all normal output, exit on first match")
	fs.BoolP("no-messages", "s", false, "suppress per-source warnings")
	fs.BoolP("invert-match", "v", false, "select non-matching lines")
	fs.BoolP("text", "a", false, "treat binary files as text")
	fs.Bool("binary-without-match", false, "skip binary files entirely (-I)")
	fs.BoolP("hex", "X", false, "render matches as hex")
	fs.Int("tabs", 8, "tab stop width")

	// Output format
	fs.String("color", "auto", "always|never|auto")
	fs.String("colors", "", "GREP_COLORS-style palette override")
	fs.Bool("json", false, "JSON output")
	fs.Bool("xml", false, "XML output")
	fs.Bool("csv", false, "CSV output")
	fs.String("format", "", "printf-like %-field output template")
	fs.String("replace", "", "replacement template for matched text")
	fs.BoolP("with-filename", "H", false, "always print the filename")
	fs.BoolP("no-filename", "h", false, "never print the filename")
	fs.BoolP("line-number", "n", false, "print the line number")
	fs.BoolP("column-number", "k", false, "print the column number")
	fs.BoolP("byte-offset", "b", false, "print the byte offset")
	fs.Bool("heading", false, "group matches under a filename heading")
	fs.Bool("null", false, "use NUL instead of ':' as the field separator")
	fs.String("label", "", "label used for stdin's display path")

	// Concurrency / ordering
	fs.IntP("jobs", "J", 0, "worker count (0 = auto)")
	fs.String("sort", "", "name|best|size|used|changed|created, prefix r to reverse")

	// Encoding / misc
	fs.String("encoding", "", "force an input encoding")
	fs.Bool("stats", false, "print the Boolean query's CNF clauses to stderr after the search")
	fs.String("config", "", "load this config file instead of the default search")
}

func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	strs, _ := fs.GetStringArray("regexp")
	cfg.Patterns = append(cfg.Patterns, strs...)
	files, _ := fs.GetStringArray("file")
	cfg.PatternFiles = append(cfg.PatternFiles, files...)
	neg, _ := fs.GetStringArray("neg-regexp")
	cfg.NegativePatterns = append(cfg.NegativePatterns, neg...)

	cfg.Flags.IgnoreCase, _ = fs.GetBool("ignore-case")
	cfg.Flags.WordBoundary, _ = fs.GetBool("word-regexp")
	cfg.Flags.LineWhole, _ = fs.GetBool("line-regexp")
	cfg.Flags.FixedStrings, _ = fs.GetBool("fixed-strings")
	cfg.Flags.BasicRE, _ = fs.GetBool("basic-regexp")
	cfg.Flags.Perl, _ = fs.GetBool("perl-regexp")
	cfg.Flags.ByteMode, _ = fs.GetBool("byte-regexp")
	cfg.Flags.EmptyMatch, _ = fs.GetBool("empty")

	cfg.BoolExpr, _ = fs.GetString("bool")
	cfg.BoolFileScope, _ = fs.GetBool("files-expr")
	if fz, _ := fs.GetString("fuzzy"); fz != "" {
		if err := parseFuzzy(fz, &cfg.Fuzzy); err != nil {
			return engineerr.Usage(err)
		}
	}

	if v, _ := fs.GetBool("recursive"); fs.Changed("recursive") {
		cfg.Recursive = v
	}
	derefAll, _ := fs.GetBool("dereference-recursive")
	derefFiles, _ := fs.GetBool("dereference-files")
	noDeref, _ := fs.GetBool("no-dereference")
	switch {
	case derefAll:
		cfg.FollowSymlinks = config.SymlinkAll
	case derefFiles:
		cfg.FollowSymlinks = config.SymlinkFilesOnly
	case noDeref:
		cfg.FollowSymlinks = config.SymlinkNone
	}
	if depth, _ := fs.GetString("depth"); depth != "" {
		lo, hi, err := parseIntPair(depth)
		if err != nil {
			return engineerr.Usage(fmt.Errorf("--depth: %w", err))
		}
		cfg.DepthMin, cfg.DepthMax = lo, hi
	}
	cfg.Hidden, _ = fs.GetBool("hidden")
	cfg.IncludeFS, _ = fs.GetStringArray("include-fs")
	cfg.ExcludeFS, _ = fs.GetStringArray("exclude-fs")

	if ext, _ := fs.GetString("file-extension"); ext != "" {
		cfg.Extensions = splitComma(ext)
	}
	cfg.Magic, _ = fs.GetString("file-magic")
	if t, _ := fs.GetString("file-type"); t != "" {
		cfg.Types = splitComma(t)
	}
	globs, _ := fs.GetStringArray("glob")
	for _, g := range globs {
		if strings.HasPrefix(g, "!") {
			cfg.ExcludeGlobs = append(cfg.ExcludeGlobs, strings.TrimPrefix(g, "!"))
		} else {
			cfg.IncludeGlobs = append(cfg.IncludeGlobs, g)
		}
	}
	inc, _ := fs.GetStringArray("include")
	cfg.IncludeGlobs = append(cfg.IncludeGlobs, inc...)
	exc, _ := fs.GetStringArray("exclude")
	cfg.ExcludeGlobs = append(cfg.ExcludeGlobs, exc...)
	cfg.IncludeDirGlobs, _ = fs.GetStringArray("include-dir")
	cfg.ExcludeDirGlobs, _ = fs.GetStringArray("exclude-dir")
	if fs.Changed("ignore-files") {
		cfg.IgnoreFiles, _ = fs.GetString("ignore-files")
		if cfg.IgnoreFiles == "" {
			cfg.IgnoreFiles = ".gitignore"
		}
	}

	cfg.Decompress, _ = fs.GetBool("decompress")
	cfg.ZMax, _ = fs.GetInt("zmax")

	cfg.Before, _ = fs.GetInt("before-context")
	cfg.After, _ = fs.GetInt("after-context")
	if c, _ := fs.GetInt("context"); c > 0 {
		cfg.Before, cfg.After = c, c
	}
	cfg.AnyLine, _ = fs.GetBool("any-line")
	if mc, _ := fs.GetString("max-count"); mc != "" {
		lo, hi, err := parseIntPair(mc)
		if err != nil {
			return engineerr.Usage(fmt.Errorf("-m: %w", err))
		}
		cfg.MinCount, cfg.MaxCount = lo, hi
	}
	if ks, _ := fs.GetString("skip-stop"); ks != "" {
		lo, hi, err := parseIntPair(ks)
		if err != nil {
			return engineerr.Usage(fmt.Errorf("-K: %w", err))
		}
		cfg.SkipBeforeLine, cfg.StopAfterLine = lo, hi
	}
	cfg.MaxFiles, _ = fs.GetInt("max-files")

	cfg.ListFilesWithMatch, _ = fs.GetBool("files-with-matches")
	cfg.ListFilesWithoutMatch, _ = fs.GetBool("files-without-match")
	cfg.CountOnly, _ = fs.GetBool("count")
	cfg.OnlyMatching, _ = fs.GetBool("only-matching")
	if u, _ := fs.GetBool("ungroup"); u {
		cfg.Unique = false
	}
	cfg.QuietExit, _ = fs.GetBool("quiet")
	cfg.SuppressWarnings, _ = fs.GetBool("no-messages")
	cfg.InvertMatch, _ = fs.GetBool("invert-match")
	asText, _ := fs.GetBool("text")
	binarySkip, _ := fs.GetBool("binary-without-match")
	asHex, _ := fs.GetBool("hex")
	switch {
	case asText:
		cfg.Binary = config.BinaryText
	case binarySkip:
		cfg.Binary = config.BinarySkip
	case asHex:
		cfg.Binary = config.BinaryHex
		cfg.Format = config.EmitHex
	}
	cfg.TabWidth, _ = fs.GetInt("tabs")

	switch c, _ := fs.GetString("color"); c {
	case "always":
		cfg.Color = config.ColorAlways
	case "never":
		cfg.Color = config.ColorNever
	default:
		cfg.Color = config.ColorAuto
	}
	cfg.Colors, _ = fs.GetString("colors")
	asJSON, _ := fs.GetBool("json")
	asXML, _ := fs.GetBool("xml")
	asCSV, _ := fs.GetBool("csv")
	switch {
	case asJSON:
		cfg.Format = config.EmitJSON
	case asXML:
		cfg.Format = config.EmitXML
	case asCSV:
		cfg.Format = config.EmitCSV
	}
	if f, _ := fs.GetString("format"); f != "" {
		cfg.Format = config.EmitFormatString
		cfg.FormatString = f
	}
	if r, _ := fs.GetString("replace"); r != "" {
		cfg.Format = config.EmitReplace
		cfg.ReplaceString = r
	}
	withFilename, _ := fs.GetBool("with-filename")
	noFilename, _ := fs.GetBool("no-filename")
	switch {
	case withFilename:
		cfg.ShowFilename = config.ShowFilenameAlways
	case noFilename:
		cfg.ShowFilename = config.ShowFilenameNever
	}
	cfg.ShowLineNo, _ = fs.GetBool("line-number")
	cfg.ShowColumn, _ = fs.GetBool("column-number")
	cfg.ShowByteOffset, _ = fs.GetBool("byte-offset")
	cfg.Heading, _ = fs.GetBool("heading")
	cfg.NullSep, _ = fs.GetBool("null")
	cfg.Label, _ = fs.GetString("label")

	cfg.Workers, _ = fs.GetInt("jobs")
	if s, _ := fs.GetString("sort"); s != "" {
		key, rev := parseSortKey(s)
		cfg.Sort, cfg.SortReverse = key, rev
	}

	cfg.Encoding, _ = fs.GetString("encoding")
	cfg.Stats, _ = fs.GetBool("stats")
	return nil
}

func parseFuzzy(text string, out *config.FuzzySpec) error {
	out.Enabled = true
	out.AllowIns, out.AllowDel, out.AllowSub = true, true, true
	rest := text
	if strings.HasPrefix(rest, "best") {
		out.Best = true
		rest = strings.TrimPrefix(rest, "best")
	}
	if rest == "" {
		out.MaxCost = 1
		return nil
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return fmt.Errorf("invalid fuzzy spec %q", text)
	}
	out.MaxCost = n
	return nil
}

func parseIntPair(s string) (lo, hi int, err error) {
	before, after, ok := strings.Cut(s, ",")
	if !ok {
		hi, err = strconv.Atoi(strings.TrimSpace(s))
		return 0, hi, err
	}
	if strings.TrimSpace(before) != "" {
		lo, err = strconv.Atoi(strings.TrimSpace(before))
		if err != nil {
			return 0, 0, err
		}
	}
	if strings.TrimSpace(after) != "" {
		hi, err = strconv.Atoi(strings.TrimSpace(after))
		if err != nil {
			return 0, 0, err
		}
	}
	return lo, hi, nil
}

func parseSortKey(s string) (config.SortKey, bool) {
	reverse := strings.HasPrefix(s, "r") && s != "r"
	name := strings.TrimPrefix(s, "r")
	switch name {
	case "best":
		return config.SortBest, reverse
	case "size":
		return config.SortSize, reverse
	case "used":
		return config.SortUsed, reverse
	case "changed":
		return config.SortChanged, reverse
	case "created":
		return config.SortCreated, reverse
	default:
		return config.SortName, reverse
	}
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// applyEnv applies GREP_PATH/GREP_COLORS/GREP_COLOR.
func applyEnv(cfg *config.Config) {
	cfg.GrepPath = os.Getenv("GREP_PATH")
	if c := os.Getenv("GREP_COLORS"); c != "" {
		cfg.Colors = c
	} else if c := os.Getenv("GREP_COLOR"); c != "" {
		cfg.Colors = "mt=" + c
	}
}

// applyConfigFile loads ".xgrep"/"--config=FILE" before flags are read, so
// command-line flags always take precedence.
func applyConfigFile(fs *pflag.FlagSet, cfg *config.Config) error {
	path, _ := fs.GetString("config")
	found := path != ""
	if !found {
		path, found = config.Locate()
	}
	if !found {
		return nil
	}
	settings, err := config.LoadFile(path)
	if err != nil {
		return engineerr.Usage(fmt.Errorf("config %s: %w", path, err))
	}
	for _, p := range settings.Pairs {
		target := fs.Lookup(p.Name)
		if target == nil || fs.Changed(p.Name) {
			continue
		}
		if err := fs.Set(p.Name, valueOrTrue(target, p.Value)); err != nil {
			return engineerr.Usage(fmt.Errorf("config %s: %s: %w", path, p.Name, err))
		}
	}
	return nil
}

// valueOrTrue lets a bare "NAME" line in a config file enable a bool flag
// without requiring "NAME=true".
func valueOrTrue(f *pflag.Flag, value string) string {
	if value == "" && f.Value.Type() == "bool" {
		return "true"
	}
	return value
}
