// Package emit implements the output emitter: plain,
// --format/--replace templated, JSON/XML/CSV, and hexdump rendering, with
// GREP_COLORS-driven ANSI highlighting.
package emit

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/xgrep/xgrep/internal/config"
	"github.com/xgrep/xgrep/internal/model"
)

// Writer implements output.Emitter, rendering FileResults to w according
// to cfg's output-format fields.
type Writer struct {
	cfg     *config.Config
	w       io.Writer
	palette *Palette
	color   bool

	multiSource bool // more than one root source; controls default filename display
}

// New builds a Writer. multiSource should be true when the run covers more
// than one file/source.
func New(cfg *config.Config, w io.Writer, multiSource bool) *Writer {
	useColor := cfg.Color == config.ColorAlways
	return &Writer{
		cfg:         cfg,
		w:           w,
		palette:     ParsePalette(cfg.Colors),
		color:       useColor,
		multiSource: multiSource,
	}
}

// Emit renders one FileResult.
func (e *Writer) Emit(r *model.FileResult) error {
	if e.cfg.QuietExit {
		return nil
	}
	switch e.cfg.Format {
	case config.EmitJSON:
		return e.emitJSON(r)
	case config.EmitXML:
		return e.emitXML(r)
	case config.EmitCSV:
		return e.emitCSV(r)
	case config.EmitHex:
		return e.emitHex(r)
	case config.EmitFormatString:
		return e.emitFormatString(r, e.cfg.FormatString)
	case config.EmitReplace:
		return e.emitReplace(r)
	default:
		return e.emitPlain(r)
	}
}

func (e *Writer) showFilename() bool {
	switch e.cfg.ShowFilename {
	case config.ShowFilenameAlways:
		return true
	case config.ShowFilenameNever:
		return false
	default:
		return e.multiSource
	}
}

func (e *Writer) emitPlain(r *model.FileResult) error {
	if r.Err != nil && r.MatchCount == 0 {
		if !e.cfg.SuppressWarnings {
			fmt.Fprintf(e.w, "%s: %s\n", r.Source.DisplayPath(), r.Err)
		}
		return nil
	}
	if e.cfg.ListFilesWithMatch {
		if r.MatchCount > 0 {
			return e.writeLine(r.Source.DisplayPath())
		}
		return nil
	}
	if e.cfg.ListFilesWithoutMatch {
		if r.MatchCount == 0 {
			return e.writeLine(r.Source.DisplayPath())
		}
		return nil
	}
	if e.cfg.CountOnly {
		n := r.MatchCount
		if e.cfg.Unique {
			n = r.MatchedLineCount
		}
		prefix := ""
		if e.showFilename() {
			prefix = e.colorize(r.Source.DisplayPath(), e.palette.Filename) + e.sep()
		}
		return e.writeLine(prefix + strconv.Itoa(n))
	}

	for i := range r.Matches {
		if err := e.emitRecordPlain(r.Source, &r.Matches[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Writer) emitRecordPlain(source *model.InputSource, m *model.MatchRecord) error {
	if m.GroupSeparatorBefore {
		if err := e.writeLine(e.cfg.GroupSeparator); err != nil {
			return err
		}
	}
	var b strings.Builder
	if e.showFilename() {
		b.WriteString(e.colorize(source.DisplayPath(), e.palette.Filename))
		b.WriteString(e.sep())
	}
	if e.cfg.ShowLineNo {
		b.WriteString(e.colorize(strconv.Itoa(m.Line), e.palette.LineNo))
		b.WriteString(e.sep())
	}
	if e.cfg.ShowColumn {
		b.WriteString(e.colorize(strconv.Itoa(m.Column), e.palette.ColumnNo))
		b.WriteString(e.sep())
	}
	if e.cfg.ShowByteOffset {
		b.WriteString(e.colorize(strconv.Itoa(m.ByteOffset), e.palette.LineNo))
		b.WriteString(e.sep())
	}

	if m.Binary && e.cfg.Binary == config.BinaryReport {
		b.WriteString("binary file matches")
		return e.writeLine(b.String())
	}

	if e.cfg.OnlyMatching {
		b.WriteString(e.colorize(string(m.MatchedBytes), e.palette.Match))
	} else {
		b.WriteString(e.highlightLine(m))
	}
	return e.writeLine(b.String())
}

// highlightLine renders the full line, wrapping the matched span in the
// match color when colorizing is on.
func (e *Writer) highlightLine(m *model.MatchRecord) string {
	line := m.FullLineBytes
	if !e.color || m.MatchStart < 0 || m.MatchEnd > len(line) || m.MatchStart > m.MatchEnd {
		return string(line)
	}
	before := string(line[:m.MatchStart])
	matched := string(line[m.MatchStart:m.MatchEnd])
	after := string(line[m.MatchEnd:])
	return before + e.colorize(matched, e.palette.Match) + after
}

func (e *Writer) colorize(s string, c *color.Color) string {
	if !e.color || c == nil {
		return s
	}
	return c.Sprint(s)
}

func (e *Writer) sep() string {
	if e.cfg.NullSep {
		return "\x00"
	}
	return ":"
}

func (e *Writer) writeLine(s string) error {
	_, err := fmt.Fprintln(e.w, s)
	return err
}
