package engine

import (
	"github.com/xgrep/xgrep/internal/model"
	"github.com/xgrep/xgrep/internal/stream"
)

// collectingSink assembles the MatchRecords a scan produces into one
// ordered slice, attaching before/after context to the record they belong
// to the way the emitter expects to find it.
//
// It mirrors scanLines' own pendingAfter countdown so context lines that
// arrive between two matches are routed to the right side: while
// afterRemaining > 0 they are the previous match's after-context, otherwise
// they are held as pending before-context for whichever match comes next.
type collectingSink struct {
	opts    stream.Options
	records []model.MatchRecord

	pendingBefore   [][]byte
	afterRemaining  int
	pendingGroupSep bool
}

func newCollectingSink(opts stream.Options) *collectingSink {
	return &collectingSink{opts: opts}
}

func (s *collectingSink) OnMatch(rec *model.MatchRecord) bool {
	if len(s.pendingBefore) > 0 {
		rec.BeforeContext = s.pendingBefore
		s.pendingBefore = nil
	}
	if s.pendingGroupSep {
		rec.GroupSeparatorBefore = true
		s.pendingGroupSep = false
	}
	s.records = append(s.records, *rec)
	s.afterRemaining = s.opts.After
	return true
}

func (s *collectingSink) OnContextLine(source *model.InputSource, line int, text []byte) {
	cp := append([]byte(nil), text...)
	if s.afterRemaining > 0 && len(s.records) > 0 {
		last := &s.records[len(s.records)-1]
		last.AfterContext = append(last.AfterContext, cp)
		s.afterRemaining--
		return
	}
	s.pendingBefore = append(s.pendingBefore, cp)
}

func (s *collectingSink) OnGroupSeparator() {
	s.pendingGroupSep = true
}
