package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xgrep/xgrep/internal/config"
)

func TestCompilePatternsPlainPattern(t *testing.T) {
	cfg := config.Default()
	cfg.Patterns = []string{"foo"}

	pat, leaves, query, err := compilePatterns(cfg)
	require.NoError(t, err)
	require.NotNil(t, pat)
	require.Nil(t, leaves)
	require.Nil(t, query)
}

func TestCompilePatternsBoolExpression(t *testing.T) {
	cfg := config.Default()
	cfg.BoolExpr = `"foo" and "bar"`

	pat, leaves, query, err := compilePatterns(cfg)
	require.NoError(t, err)
	require.Nil(t, pat)
	require.NotNil(t, query)
	require.Len(t, leaves, 2)
}

func TestCompilePatternsInvalidBoolExpression(t *testing.T) {
	cfg := config.Default()
	cfg.BoolExpr = `(foo`

	_, _, _, err := compilePatterns(cfg)
	require.Error(t, err)
}
