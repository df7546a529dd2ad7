// Package pathselect implements the path selector: glob
// compilation, extension/type bundles, magic-byte matching, the
// --ignore-files stack, and filesystem-boundary filtering.
package pathselect

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/pattern"
)

// globRule is one compiled include/exclude glob, negatable.
type globRule struct {
	negate    bool
	dirOnly   bool
	base      bool // pattern has no '/': matched against the last path element
	raw       string
	compiled  glob.Glob
}

// Selector applies -O/-M/-t/-g/--include*/--exclude*/--ignore-files/
// filesystem filters to candidate paths.
type Selector struct {
	includeGlobs []globRule
	excludeGlobs []globRule
	includeDirGlobs []globRule
	excludeDirGlobs []globRule

	magic pattern.Matcher

	ignoreFileName string
	ignoreStack    []ignoreFrame

	includeFS map[uint64]bool
	excludeFS map[uint64]bool

	hidden bool
}

type ignoreFrame struct {
	dir     string
	matcher gitignore.IgnoreMatcher
}

// typeBundles maps -t TYPES names to file-extension bundles. Capitalized
// variants additionally carry a magic-byte signature, handled by
// typeMagic.
var typeBundles = map[string][]string{
	"go":     {".go"},
	"python": {".py", ".pyw"},
	"js":     {".js", ".mjs", ".cjs"},
	"ts":     {".ts", ".tsx"},
	"java":   {".java"},
	"c":      {".c", ".h"},
	"cpp":    {".cpp", ".cc", ".cxx", ".hpp", ".hh"},
	"rust":   {".rs"},
	"html":   {".html", ".htm"},
	"css":    {".css"},
	"json":   {".json"},
	"yaml":   {".yaml", ".yml"},
	"md":     {".md", ".markdown"},
	"sh":     {".sh", ".bash"},
	"ruby":   {".rb"},
	"php":    {".php"},
}

var typeMagic = map[string]string{
	"Python": `^#!.*python`,
	"Ruby":   `^#!.*ruby`,
	"Sh":     `^#!.*/(ba)?sh`,
	"Php":    `^<\?php`,
}

// New compiles a Selector from cfg's path-selection fields.
func New(cfg *config.Config) (*Selector, error) {
	s := &Selector{
		ignoreFileName: cfg.IgnoreFiles,
		hidden:         cfg.Hidden,
		includeFS:      map[uint64]bool{},
		excludeFS:      map[uint64]bool{},
	}

	extGlobs := make([]string, 0, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extGlobs = append(extGlobs, "*."+strings.TrimPrefix(ext, "."))
	}

	var typeGlobs []string
	var magicAlternatives []string
	for _, t := range cfg.Types {
		if bundle, ok := typeBundles[strings.ToLower(t)]; ok {
			for _, ext := range bundle {
				typeGlobs = append(typeGlobs, "*"+ext)
			}
		}
		if rx, ok := typeMagic[t]; ok {
			magicAlternatives = append(magicAlternatives, rx)
		}
	}

	includeGlobSrc := append([]string{}, cfg.IncludeGlobs...)
	includeGlobSrc = append(includeGlobSrc, extGlobs...)
	includeGlobSrc = append(includeGlobSrc, typeGlobs...)

	var err error
	if s.includeGlobs, err = compileGlobs(includeGlobSrc); err != nil {
		return nil, err
	}
	if s.excludeGlobs, err = compileGlobs(cfg.ExcludeGlobs); err != nil {
		return nil, err
	}
	if s.includeDirGlobs, err = compileGlobs(cfg.IncludeDirGlobs); err != nil {
		return nil, err
	}
	if s.excludeDirGlobs, err = compileGlobs(cfg.ExcludeDirGlobs); err != nil {
		return nil, err
	}

	magicExpr := cfg.Magic
	if len(magicAlternatives) > 0 {
		joined := strings.Join(magicAlternatives, "|")
		if magicExpr != "" {
			magicExpr = "(?:" + magicExpr + ")|(?:" + joined + ")"
		} else {
			magicExpr = joined
		}
	}
	if magicExpr != "" {
		magicCfg := &config.Config{Patterns: []string{magicExpr}}
		p, err := pattern.Compile(magicCfg)
		if err != nil {
			return nil, err
		}
		s.magic = p.Matcher
	}

	return s, nil
}

func compileGlobs(patterns []string) ([]globRule, error) {
	rules := make([]globRule, 0, len(patterns))
	for _, p := range patterns {
		negate := strings.HasPrefix(p, "!")
		raw := strings.TrimPrefix(p, "!")
		dirOnly := strings.HasSuffix(raw, "/")
		trimmed := strings.TrimSuffix(raw, "/")
		base := !strings.Contains(trimmed, "/")
		g, err := glob.Compile(normalizeGlob(trimmed), '/')
		if err != nil {
			return nil, err
		}
		rules = append(rules, globRule{negate: negate, dirOnly: dirOnly, base: base, raw: raw, compiled: g})
	}
	return rules, nil
}

// normalizeGlob turns a leading "/"-anchored, gitignore-style pattern into
// one gobwas/glob can apply against a traversal-root-relative path. A bare
// pattern like "*.go" is left as is; matchesAny applies it to the last path
// element, so it matches at the root and within subdirectories alike.
func normalizeGlob(p string) string {
	if strings.HasPrefix(p, "/") {
		return strings.TrimPrefix(p, "/")
	}
	return p
}

// matchesAny reports whether rel matches any rule, applying negation: the
// last matching rule (in source order) wins, matching gitignore semantics.
func matchesAny(rules []globRule, rel string) bool {
	matched := false
	for _, r := range rules {
		name := rel
		if r.base {
			name = filepath.Base(rel)
		}
		if r.compiled.Match(name) {
			matched = !r.negate
		}
	}
	return matched
}

// Accept reports whether the file at rel (root-relative, '/'-separated)
// should be selected for searching. head is the leading bytes of the file
// for -M magic matching (nil/empty is fine if unused).
func (s *Selector) Accept(rel string, head []byte) bool {
	base := filepath.Base(rel)
	if !s.hidden && strings.HasPrefix(base, ".") {
		return false
	}
	// Exclusion takes priority over inclusion.
	if matchesAny(s.excludeGlobs, rel) {
		return false
	}
	if s.ignoreMatch(rel, false) {
		return false
	}
	hasIncludeFilter := len(s.includeGlobs) > 0 || s.magic != nil
	if !hasIncludeFilter {
		return true
	}
	if len(s.includeGlobs) > 0 && matchesAny(s.includeGlobs, rel) {
		return true
	}
	if s.magic != nil {
		if _, ok := s.magic.FindAt(head, 0); ok {
			return true
		}
	}
	return false
}

// AcceptDir reports whether a directory should be descended into.
func (s *Selector) AcceptDir(rel string) bool {
	base := filepath.Base(rel)
	if !s.hidden && strings.HasPrefix(base, ".") {
		return false
	}
	if matchesAny(s.excludeDirGlobs, rel) {
		return false
	}
	if s.ignoreMatch(rel, true) {
		return false
	}
	if len(s.includeDirGlobs) > 0 {
		return matchesAny(s.includeDirGlobs, rel)
	}
	return true
}

// AllowDev reports whether dev passes --include-fs/--exclude-fs.
func (s *Selector) AllowDev(dev uint64) bool {
	if len(s.excludeFS) > 0 && s.excludeFS[dev] {
		return false
	}
	if len(s.includeFS) > 0 && !s.includeFS[dev] {
		return false
	}
	return true
}

// RegisterFSRoot records dev as belonging to a --include-fs / --exclude-fs
// root (resolved by the traversal at startup, since the flags name paths
// whose st_dev must be looked up).
func (s *Selector) RegisterFSRoot(dev uint64, include bool) {
	if include {
		s.includeFS[dev] = true
	} else {
		s.excludeFS[dev] = true
	}
}

// EnterDir pushes an ignore-file frame if dir contains s.ignoreFileName.
func (s *Selector) EnterDir(dir string) error {
	if s.ignoreFileName == "" {
		return nil
	}
	ignorePath := filepath.Join(dir, s.ignoreFileName)
	if _, err := os.Stat(ignorePath); err != nil {
		return nil
	}
	m, err := gitignore.NewGitIgnore(ignorePath)
	if err != nil {
		return err
	}
	s.ignoreStack = append(s.ignoreStack, ignoreFrame{dir: dir, matcher: m})
	return nil
}

// LeaveDir pops the ignore-file frame pushed by the matching EnterDir.
func (s *Selector) LeaveDir(dir string) {
	n := len(s.ignoreStack)
	if n > 0 && s.ignoreStack[n-1].dir == dir {
		s.ignoreStack = s.ignoreStack[:n-1]
	}
}

func (s *Selector) ignoreMatch(rel string, isDir bool) bool {
	for i := len(s.ignoreStack) - 1; i >= 0; i-- {
		frame := s.ignoreStack[i]
		sub, err := filepath.Rel(frame.dir, rel)
		if err != nil {
			continue
		}
		if frame.matcher.Match(sub, isDir) {
			return true
		}
	}
	return false
}

// MatchDoublestar reports whether name matches pat under doublestar's "**"
// semantics. The Selector does not call it: -g, -O, -t and the
// --include*/--exclude* globs all go through the gobwas/glob rules above.
func MatchDoublestar(pat, name string) (bool, error) {
	return doublestar.Match(pat, name)
}
