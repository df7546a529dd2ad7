package emit

import (
	"encoding/csv"
	"encoding/xml"
	"strconv"

	"github.com/xgrep/xgrep/internal/model"
)

// xmlFile/xmlMatch mirror jsonFile/jsonMatch for --xml. The spec demands
// bit-exact standard-grammar escaping (control chars, &/</>), which is
// exactly what encoding/xml already guarantees; reaching for a third-party
// templating library here would just reimplement that escaping worse.
type xmlMatch struct {
	Line   int    `xml:"line,attr"`
	Column int    `xml:"column,attr"`
	Offset int    `xml:"offset,attr"`
	Text   string `xml:",chardata"`
}

type xmlFile struct {
	XMLName xml.Name   `xml:"file"`
	Path    string     `xml:"path,attr"`
	Matches []xmlMatch `xml:"match"`
}

func (e *Writer) emitXML(r *model.FileResult) error {
	xf := xmlFile{Path: r.Source.DisplayPath()}
	for _, m := range r.Matches {
		xf.Matches = append(xf.Matches, xmlMatch{
			Line:   m.Line,
			Column: m.Column,
			Offset: m.ByteOffset,
			Text:   string(m.FullLineBytes),
		})
	}
	enc := xml.NewEncoder(e.w)
	enc.Indent("", "  ")
	if err := enc.Encode(xf); err != nil {
		return err
	}
	_, err := e.w.Write([]byte("\n"))
	return err
}

func (e *Writer) emitCSV(r *model.FileResult) error {
	cw := csv.NewWriter(e.w)
	for _, m := range r.Matches {
		row := []string{
			r.Source.DisplayPath(),
			strconv.Itoa(m.Line),
			strconv.Itoa(m.Column),
			strconv.Itoa(m.ByteOffset),
			string(m.FullLineBytes),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
