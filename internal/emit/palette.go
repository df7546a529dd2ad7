package emit

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Palette is the set of ANSI SGR attribute sequences consulted for
// colored output, in the same field-name scheme GNU/ugrep's GREP_COLORS uses.
type Palette struct {
	Match     *color.Color // mt/ms/mc: matching text
	Filename  *color.Color // fn
	LineNo    *color.Color // ln
	ColumnNo  *color.Color // cn (uncommon, defaults to ln)
	Separator *color.Color // se
}

// defaultGrepColors mirrors GNU grep's documented default
// (ms=01;31:mc=01;31:sl=:cx=:fn=35:ln=32:se=36).
const defaultGrepColors = "ms=01;31:mc=01;31:fn=35:ln=32:se=36"

// ParsePalette parses a GREP_COLORS/--colors value ("fn=35:ln=32:...")
// into a Palette, falling back to the documented default for fields the
// caller leaves empty.
func ParsePalette(spec string) *Palette {
	fields := map[string]string{}
	for _, part := range strings.Split(defaultGrepColors+":"+spec, ":") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 || kv[1] == "" {
			continue
		}
		fields[kv[0]] = kv[1]
	}
	return &Palette{
		Match:     colorFromSGR(fields["mt"], fields["ms"]),
		Filename:  colorFromSGR(fields["fn"]),
		LineNo:    colorFromSGR(fields["ln"]),
		ColumnNo:  colorFromSGR(fields["cn"], fields["ln"]),
		Separator: colorFromSGR(fields["se"]),
	}
}

// colorFromSGR builds a *color.Color from the first non-empty semicolon
// separated SGR attribute list among candidates (e.g. "01;31").
func colorFromSGR(candidates ...string) *color.Color {
	for _, s := range candidates {
		if s == "" {
			continue
		}
		var attrs []color.Attribute
		for _, part := range strings.Split(s, ";") {
			n, err := strconv.Atoi(part)
			if err != nil {
				continue
			}
			attrs = append(attrs, color.Attribute(n))
		}
		if len(attrs) > 0 {
			return color.New(attrs...)
		}
	}
	return color.New()
}
