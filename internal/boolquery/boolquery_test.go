package boolquery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAndPrecedence(t *testing.T) {
	q, err := Parse(`foo bar | baz`, ScopeLines)
	require.NoError(t, err)
	// OR binds tighter than AND: foo AND (bar OR baz)
	require.Equal(t, OpAnd, q.Tree.Op)
	require.Len(t, q.Tree.Children, 2)
	require.Equal(t, OpOr, q.Tree.Children[1].Op)
}

func TestParseNotAndParens(t *testing.T) {
	q, err := Parse(`-(foo OR bar)`, ScopeLines)
	require.NoError(t, err)
	require.Equal(t, OpNot, q.Tree.Op)
	require.Equal(t, OpOr, q.Tree.Children[0].Op)
}

func TestEvalSatisfiesAndHighlights(t *testing.T) {
	q, err := Parse(`foo bar`, ScopeLines)
	require.NoError(t, err)

	ok, contributing := Eval(q.CNF, []LeafResult{{Matched: true}, {Matched: true}})
	require.True(t, ok)
	require.True(t, contributing[0])
	require.True(t, contributing[1])

	ok, _ = Eval(q.CNF, []LeafResult{{Matched: true}, {Matched: false}})
	require.False(t, ok)
}

func TestEvalNotNeverHighlights(t *testing.T) {
	q, err := Parse(`foo -bar`, ScopeLines)
	require.NoError(t, err)

	ok, contributing := Eval(q.CNF, []LeafResult{{Matched: true}, {Matched: false}})
	require.True(t, ok)
	require.True(t, contributing[0])
	require.False(t, contributing[1])
}

func TestCNFIsAndOfOr(t *testing.T) {
	q, err := Parse(`(a OR b) AND (c OR d)`, ScopeLines)
	require.NoError(t, err)
	require.Equal(t, OpAnd, q.CNF.Op)
	for _, c := range q.CNF.Children {
		require.Equal(t, OpOr, c.Op)
	}
}
