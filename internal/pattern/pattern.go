// Package pattern compiles user-supplied patterns into an executable
// Matcher.
//
// The regex engine itself is treated as an external collaborator:
// this package only adapts two concrete engines — github.com/coregx/coregex
// for the default POSIX-ERE-extended/Unicode dialect, and
// github.com/dlclark/regexp2 for -P Perl mode — behind a common Matcher
// interface whose FindAt returns the whole-match span together with the
// capture-group spans of that match.
package pattern

import (
	"fmt"
	"os"
	"regexp/syntax"
	"sort"
	"strings"

	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/engineerr"
	"github.com/xgrep/xgrep/internal/model"
)

// Matcher is the engine-agnostic interface every compiled pattern backend
// satisfies (coregex for the default dialect, regexp2 for -P).
type Matcher interface {
	// FindAt returns the spans of the leftmost match at or after byte
	// offset `at` in b. spans[0] is the whole match; spans[i] for i>0 are
	// capture groups (Start==-1 when a group did not participate).
	FindAt(b []byte, at int) (spans []model.CaptureSpan, ok bool)
	NumSubexp() int
	SubexpNames() []string
	String() string
}

// Pattern is the compiled, immutable form of one or more user patterns.
// It is safe to share across worker goroutines.
type Pattern struct {
	Matcher Matcher
	Negative Matcher // compiled reject matcher, nil if no -N patterns given

	Flags config.PatternFlags

	AnchoredLine  bool
	AnchoredFile  bool
	EmptyMatchOK  bool
	MultilineCapable bool

	// subCounts[i] is the number of capture groups in the i-th positive
	// pattern, in source order (fuse reorders the alternatives by length).
	// It is recorded at compile time; nothing reads it back.
	subCounts []int

	fuzzy *FuzzyMatcher
}

// Compile builds a Pattern from the given positive/negative pattern sets,
// pattern files, and flags.
func Compile(cfg *config.Config) (*Pattern, error) {
	positives := append([]string{}, cfg.Patterns...)

	for _, pf := range cfg.PatternFiles {
		lines, err := readPatternFile(pf, cfg.GrepPath)
		if err != nil {
			return nil, engineerr.Usage(err)
		}
		positives = append(positives, lines...)
	}
	if len(positives) == 0 {
		positives = []string{""}
	}

	expr, subCounts, err := fuse(positives, cfg.Flags)
	if err != nil {
		return nil, engineerr.Usage(err)
	}

	m, err := compileOne(expr, cfg.Flags)
	if err != nil {
		return nil, engineerr.Usage(err)
	}

	p := &Pattern{
		Matcher:   m,
		Flags:     cfg.Flags,
		subCounts: subCounts,
	}
	p.AnchoredLine = strings.HasPrefix(expr, "^") || strings.HasSuffix(expr, "$")
	p.EmptyMatchOK = cfg.Flags.EmptyMatch || p.AnchoredLine
	p.MultilineCapable = strings.Contains(expr, `\n`) || strings.Contains(expr, "(?s)")

	if len(cfg.NegativePatterns) > 0 {
		negExpr, _, err := fuse(cfg.NegativePatterns, config.PatternFlags{})
		if err != nil {
			return nil, engineerr.Usage(err)
		}
		neg, err := compileOne(negExpr, config.PatternFlags{})
		if err != nil {
			return nil, engineerr.Usage(err)
		}
		p.Negative = neg
	}

	if cfg.Fuzzy.Enabled {
		fm, err := NewFuzzyMatcher(positives[0], cfg.Fuzzy)
		if err != nil {
			return nil, engineerr.Usage(err)
		}
		p.fuzzy = fm
	}

	return p, nil
}

// Fuzzy returns the fuzzy matcher for this Pattern, or nil if -Z was not set.
func (p *Pattern) Fuzzy() *FuzzyMatcher { return p.fuzzy }

// fuse combines positive alternatives into a single expression. Longer
// literal alternatives are ordered before shorter ones. The capture-group
// count of each pattern, in source order, is returned as subCounts.
func fuse(patterns []string, flags config.PatternFlags) (string, []int, error) {
	exprs := make([]string, len(patterns))
	subCounts := make([]int, len(patterns))

	for i, p := range patterns {
		e := p
		if flags.FixedStrings {
			e = quoteLiteralLines(p)
		} else if flags.BasicRE {
			var err error
			e, err = bre2ere(p)
			if err != nil {
				return "", nil, err
			}
		}
		if flags.WordBoundary {
			e = `\b(?:` + e + `)\b`
		}
		if flags.LineWhole {
			e = `^(?:` + e + `)$`
		}
		exprs[i] = e

		ast, err := syntax.Parse(e, syntax.Perl)
		if err == nil {
			subCounts[i] = ast.MaxCap()
		}
	}

	sort.SliceStable(exprs, func(i, j int) bool { return len(exprs[i]) > len(exprs[j]) })

	expr := strings.Join(exprs, "|")
	if len(exprs) > 1 {
		expr = "(?:" + expr + ")"
	}
	if flags.IgnoreCase {
		expr = "(?i:" + expr + ")"
	}
	return expr, subCounts, nil
}

func compileOne(expr string, flags config.PatternFlags) (Matcher, error) {
	if flags.Perl {
		return newPerlMatcher(expr)
	}
	return newCoregexMatcher(expr)
}

// quoteLiteralLines treats a pattern file's content as newline-separated
// literal strings (-F), joined as an alternation of quoted literals.
func quoteLiteralLines(s string) string {
	lines := strings.Split(s, "\n")
	quoted := make([]string, len(lines))
	for i, l := range lines {
		quoted[i] = syntaxQuoteMeta(l)
	}
	return strings.Join(quoted, "|")
}

func syntaxQuoteMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// bre2ere performs a minimal BRE->ERE rewrite: in BRE, \(, \), \{, \}, \| are the grouping/brace metacharacters
// and bare (, ), {, } are literal; this is the inverse of ERE, so the
// translation is a straight swap.
func bre2ere(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			next := s[i+1]
			switch next {
			case '(', ')', '{', '}', '|', '+', '?':
				b.WriteByte(next)
				i++
				continue
			}
			b.WriteByte(c)
			continue
		}
		switch c {
		case '(', ')', '{', '}', '|', '+', '?':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// readPatternFile reads newline-separated patterns from a -f FILE,
// falling back to GREP_PATH then the compiled-in default directory.
func readPatternFile(name, grepPath string) ([]string, error) {
	candidates := []string{name}
	if grepPath != "" {
		candidates = append(candidates, grepPath+"/"+name)
	}
	candidates = append(candidates, "/usr/local/share/ugrep/patterns/"+name)

	var lastErr error
	for _, c := range candidates {
		data, err := os.ReadFile(c)
		if err != nil {
			lastErr = err
			continue
		}
		var lines []string
		for _, l := range strings.Split(string(data), "\n") {
			l = strings.TrimRight(l, "\r")
			if l == "" {
				continue
			}
			lines = append(lines, l)
		}
		return lines, nil
	}
	return nil, fmt.Errorf("pattern file %q not found (tried %v): %w", name, candidates, lastErr)
}
