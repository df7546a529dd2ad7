package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xgrep/xgrep/internal/model"
	"github.com/xgrep/xgrep/internal/stream"
)

func TestCollectingSinkAttachesBeforeContext(t *testing.T) {
	s := newCollectingSink(stream.Options{Before: 2, After: 2})

	s.OnContextLine(nil, 1, []byte("line1"))
	s.OnContextLine(nil, 2, []byte("line2"))
	s.OnMatch(&model.MatchRecord{Line: 3})

	require.Len(t, s.records, 1)
	require.Equal(t, [][]byte{[]byte("line1"), []byte("line2")}, s.records[0].BeforeContext)
}

func TestCollectingSinkAttachesAfterContext(t *testing.T) {
	s := newCollectingSink(stream.Options{Before: 2, After: 2})

	s.OnMatch(&model.MatchRecord{Line: 1})
	s.OnContextLine(nil, 2, []byte("after1"))
	s.OnContextLine(nil, 3, []byte("after2"))

	require.Len(t, s.records, 1)
	require.Equal(t, [][]byte{[]byte("after1"), []byte("after2")}, s.records[0].AfterContext)
}

func TestCollectingSinkRoutesSecondMatchBeforeContext(t *testing.T) {
	s := newCollectingSink(stream.Options{Before: 1, After: 1})

	s.OnMatch(&model.MatchRecord{Line: 1})
	s.OnContextLine(nil, 2, []byte("after-of-first"))
	s.OnContextLine(nil, 3, []byte("before-of-second"))
	s.OnMatch(&model.MatchRecord{Line: 4})

	require.Len(t, s.records, 2)
	require.Equal(t, [][]byte{[]byte("after-of-first")}, s.records[0].AfterContext)
	require.Equal(t, [][]byte{[]byte("before-of-second")}, s.records[1].BeforeContext)
}

func TestCollectingSinkGroupSeparatorAttachesToNextMatch(t *testing.T) {
	s := newCollectingSink(stream.Options{})

	s.OnGroupSeparator()
	s.OnMatch(&model.MatchRecord{Line: 1})

	require.Len(t, s.records, 1)
	require.True(t, s.records[0].GroupSeparatorBefore)
}
