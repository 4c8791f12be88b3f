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

import (
	"fmt"
	"regexp"
	"strconv"
)

// Matcher extracts the first capture group of a pattern from a line and
// parses it as a base-10 unsigned integer. A Matcher holds no mutable
// state and may be shared by any number of goroutines.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles expr. A pattern without capture groups is accepted;
// every line it sees classifies as unmatched.
func NewMatcher(expr string) (*Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", expr, err)
	}
	return &Matcher{re: re}, nil
}

// MustMatcher is NewMatcher for patterns known to be valid, such as in tests.
func MustMatcher(expr string) *Matcher {
	m, err := NewMatcher(expr)
	if err != nil {
		panic(err)
	}
	return m
}

// Groups returns the number of capture groups in the pattern.
func (m *Matcher) Groups() int {
	return m.re.NumSubexp()
}

func (m *Matcher) String() string {
	return m.re.String()
}

// Classify matches one line. No match, a first group that did not take
// part in the match, and a captured value that does not parse as a uint64
// all produce an unmatched line.
func (m *Matcher) Classify(text string) Line {
	loc := m.re.FindStringSubmatchIndex(text)
	if len(loc) < 4 || loc[2] < 0 {
		return Unmatched(text)
	}
	span := Span{Start: loc[2], End: loc[3]}
	v, err := strconv.ParseUint(text[span.Start:span.End], 10, 64)
	if err != nil {
		return Unmatched(text)
	}
	return Matched(text, span, v)
}

// ClassifyAll classifies lines in order into dst, which must be at least as
// long as lines.
func (m *Matcher) ClassifyAll(dst []Line, lines []string) {
	for i, text := range lines {
		dst[i] = m.Classify(text)
	}
}
