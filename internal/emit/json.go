package emit

import (
	"github.com/segmentio/encoding/json"

	"github.com/xgrep/xgrep/internal/model"
)

// jsonMatch is the wire shape for --json, a flatter projection of
// MatchRecord that omits internal bookkeeping fields (subCounts, etc).
type jsonMatch struct {
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	ByteOffset int    `json:"offset"`
	Match      string `json:"match,omitempty"`
	Text       string `json:"text,omitempty"`
}

type jsonFile struct {
	File    string      `json:"file"`
	Matches []jsonMatch `json:"matches"`
}

func (e *Writer) emitJSON(r *model.FileResult) error {
	jf := jsonFile{File: r.Source.DisplayPath()}
	for _, m := range r.Matches {
		jf.Matches = append(jf.Matches, jsonMatch{
			Line:       m.Line,
			Column:     m.Column,
			ByteOffset: m.ByteOffset,
			Match:      string(m.MatchedBytes),
			Text:       string(m.FullLineBytes),
		})
	}
	enc := json.NewEncoder(e.w)
	return enc.Encode(jf)
}
