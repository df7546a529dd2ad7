package engine

import (
	"github.com/xgrep/xgrep/internal/boolquery"
	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/engineerr"
	"github.com/xgrep/xgrep/internal/pattern"
)

// compilePatterns builds either a single fused Pattern (the common case) or,
// when --bool/-%/-%% is in play, the Boolean query tree plus one compiled
// Pattern per interned leaf. Exactly one of pat or (leaves, query) is set.
func compilePatterns(cfg *config.Config) (pat *pattern.Pattern, leaves []*pattern.Pattern, query *boolquery.Query, err error) {
	if cfg.BoolExpr == "" {
		pat, err = pattern.Compile(cfg)
		return pat, nil, nil, err
	}

	scope := boolquery.ScopeLines
	if cfg.BoolFileScope {
		scope = boolquery.ScopeFiles
	}
	query, err = boolquery.Parse(cfg.BoolExpr, scope)
	if err != nil {
		return nil, nil, nil, engineerr.Usage(err)
	}

	leaves = make([]*pattern.Pattern, len(query.Leaves))
	for i, lit := range query.Leaves {
		leafCfg := &config.Config{Patterns: []string{lit}, Flags: cfg.Flags}
		lp, err := pattern.Compile(leafCfg)
		if err != nil {
			return nil, nil, nil, engineerr.Usage(err)
		}
		leaves[i] = lp
	}
	return nil, leaves, query, nil
}
