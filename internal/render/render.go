// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package render turns classified lines into terminal text. Styles are
// plain values; only Renderer knows about escape sequences.
package render

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/cardinalhq/logrank/internal/classify"
	"github.com/cardinalhq/logrank/internal/rank"
)

// Color is a foreground colour.
type Color int

const (
	None Color = iota
	Yellow
	Green
	Cyan
	Magenta
	Red
)

// Style describes how a span should look.
type Style struct {
	Color Color
	Bold  bool
}

// WithBold returns s with bold set to bold.
func (s Style) WithBold(bold bool) Style {
	s.Bold = bold
	return s
}

// IsPlain reports whether the style changes nothing.
func (s Style) IsPlain() bool {
	return s.Color == None && !s.Bold
}

// HighlightStyle is used for every match when highlighting is selected.
var HighlightStyle = Style{Color: Yellow}

// BucketStyle maps a rank bucket to its style.
func BucketStyle(b rank.Bucket) Style {
	switch b {
	case rank.Top1:
		return Style{Color: Red}
	case rank.Top10:
		return Style{Color: Magenta}
	case rank.Top50:
		return Style{Color: Yellow}
	default:
		return Style{}
	}
}

// ColorMode chooses whether escape sequences are written.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Enabled resolves the mode against the writer output goes to. Auto enables
// colour only for terminals and honours NO_COLOR.
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Options configure a Renderer.
type Options struct {
	// Colors forces escape sequences on or off for this renderer only.
	Colors bool
}

// Renderer applies styles. It keeps one color.Color per distinct style,
// each with colour explicitly enabled or disabled, so the process-wide
// color.NoColor setting is never consulted.
type Renderer struct {
	colors bool
	cache  map[Style]*color.Color
}

// New returns a Renderer. Renderer is not safe for concurrent use.
func New(opts Options) *Renderer {
	return &Renderer{
		colors: opts.Colors,
		cache:  map[Style]*color.Color{},
	}
}

// Span styles one piece of text.
func (r *Renderer) Span(text string, s Style) string {
	if !r.colors || s.IsPlain() || text == "" {
		return text
	}
	return r.colorFor(s).Sprint(text)
}

// Line renders a classified line, styling only the matched span. Unmatched
// lines are returned verbatim.
func (r *Renderer) Line(l classify.Line, s Style) string {
	if !l.Matched {
		return l.Text
	}
	before, during, after := l.Parts()
	return before + r.Span(during, s) + after
}

func (r *Renderer) colorFor(s Style) *color.Color {
	if c, ok := r.cache[s]; ok {
		return c
	}
	var attrs []color.Attribute
	switch s.Color {
	case Yellow:
		attrs = append(attrs, color.FgYellow)
	case Green:
		attrs = append(attrs, color.FgGreen)
	case Cyan:
		attrs = append(attrs, color.FgCyan)
	case Magenta:
		attrs = append(attrs, color.FgMagenta)
	case Red:
		attrs = append(attrs, color.FgRed)
	}
	if s.Bold {
		attrs = append(attrs, color.Bold)
	}
	c := color.New(attrs...)
	c.EnableColor()
	r.cache[s] = c
	return c
}
