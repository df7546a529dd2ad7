package emit

import (
	"strconv"
	"strings"

	"github.com/xgrep/xgrep/internal/model"
)

// expandFormat substitutes %-fields in
// tmpl for one MatchRecord: %f file, %n line, %k column, %b byte offset,
// %m matched text, %o full line, %% literal percent.
func expandFormat(tmpl string, source *model.InputSource, m *model.MatchRecord) string {
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '%' || i+1 >= len(tmpl) {
			b.WriteByte(c)
			continue
		}
		i++
		switch tmpl[i] {
		case 'f':
			b.WriteString(source.DisplayPath())
		case 'n':
			b.WriteString(strconv.Itoa(m.Line))
		case 'k':
			b.WriteString(strconv.Itoa(m.Column))
		case 'b':
			b.WriteString(strconv.Itoa(m.ByteOffset))
		case 'm':
			b.Write(m.MatchedBytes)
		case 'o':
			b.Write(m.FullLineBytes)
		case 'g':
			b.WriteString(strconv.Itoa(m.PatternIndex))
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(tmpl[i])
		}
	}
	return b.String()
}

func (e *Writer) emitFormatString(r *model.FileResult, tmpl string) error {
	for i := range r.Matches {
		if _, err := e.w.Write([]byte(expandFormat(tmpl, r.Source, &r.Matches[i]))); err != nil {
			return err
		}
	}
	return nil
}

// emitReplace substitutes the matched span in each line with
// cfg.ReplaceString (itself %-field expanded), then prints the line whole.
func (e *Writer) emitReplace(r *model.FileResult) error {
	for i := range r.Matches {
		m := &r.Matches[i]
		replacement := expandFormat(e.cfg.ReplaceString, r.Source, m)
		line := string(m.FullLineBytes)
		if m.MatchStart >= 0 && m.MatchEnd <= len(line) && m.MatchStart <= m.MatchEnd {
			line = line[:m.MatchStart] + replacement + line[m.MatchEnd:]
		}
		if err := e.writeLine(line); err != nil {
			return err
		}
	}
	return nil
}
