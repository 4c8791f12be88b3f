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

package classify

import "fmt"

// Span is a half-open byte range [Start, End) into a line.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Line is the result of matching one input line. It is either unmatched,
// carrying only the original text, or matched, carrying the byte span of
// the captured number and its parsed value.
//
// Lines are values and compare with ==. Span and Value are zero on an
// unmatched line.
type Line struct {
	Text    string
	Span    Span
	Value   uint64
	Matched bool
}

// Unmatched builds a line that carries no value.
func Unmatched(text string) Line {
	return Line{Text: text}
}

// Matched builds a line whose span bounds the parsed value.
func Matched(text string, span Span, value uint64) Line {
	return Line{Text: text, Span: span, Value: value, Matched: true}
}

// Parts splits a matched line into the text before the span, the span
// itself and the text after it. An unmatched line returns all of its text
// as the first part.
func (l Line) Parts() (before, during, after string) {
	if !l.Matched {
		return l.Text, "", ""
	}
	return l.Text[:l.Span.Start], l.Text[l.Span.Start:l.Span.End], l.Text[l.Span.End:]
}

func (l Line) String() string {
	if !l.Matched {
		return fmt.Sprintf("Unmatched(%q)", l.Text)
	}
	return fmt.Sprintf("Matched(%q, [%d,%d), %d)", l.Text, l.Span.Start, l.Span.End, l.Value)
}

// CompareValues orders two matched lines by value. Ordering is not defined
// for unmatched lines; callers must filter them out first.
func CompareValues(a, b Line) int {
	if !a.Matched || !b.Matched {
		panic("classify: CompareValues called on an unmatched line")
	}
	switch {
	case a.Value < b.Value:
		return -1
	case a.Value > b.Value:
		return 1
	default:
		return 0
	}
}
