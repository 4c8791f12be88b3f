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

package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/cardinalhq/logrank/internal/classify"
	"github.com/cardinalhq/logrank/internal/rank"
)

func TestBucketStyle(t *testing.T) {
	assert.Equal(t, Style{Color: Red}, BucketStyle(rank.Top1))
	assert.Equal(t, Style{Color: Magenta}, BucketStyle(rank.Top10))
	assert.Equal(t, Style{Color: Yellow}, BucketStyle(rank.Top50))
	assert.True(t, BucketStyle(rank.Other).IsPlain())
}

func TestStyle_WithBold(t *testing.T) {
	s := HighlightStyle.WithBold(true)
	assert.Equal(t, Style{Color: Yellow, Bold: true}, s)
	assert.False(t, s.IsPlain())
	assert.False(t, Style{}.WithBold(true).IsPlain())
	assert.Equal(t, Style{Color: Yellow}, HighlightStyle)
}

func TestRenderer_UnmatchedIsVerbatim(t *testing.T) {
	for _, colors := range []bool{false, true} {
		r := New(Options{Colors: colors})
		l := classify.Unmatched("nothing to see \x1b here")
		assert.Equal(t, l.Text, r.Line(l, Style{Color: Red, Bold: true}))
		assert.Equal(t, l.Text, r.Line(l, Style{}))
	}
}

func TestRenderer_NoColors(t *testing.T) {
	r := New(Options{Colors: false})
	l := classify.Matched("took 125ms", classify.Span{Start: 5, End: 8}, 125)
	assert.Equal(t, "took 125ms", r.Line(l, Style{Color: Red, Bold: true}))
}

func TestRenderer_PlainStyle(t *testing.T) {
	r := New(Options{Colors: true})
	l := classify.Matched("took 125ms", classify.Span{Start: 5, End: 8}, 125)
	assert.Equal(t, "took 125ms", r.Line(l, Style{}))
}

func TestRenderer_Colors(t *testing.T) {
	// The global switch must not affect a renderer with colours enabled.
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()

	r := New(Options{Colors: true})
	l := classify.Matched("took 125ms", classify.Span{Start: 5, End: 8}, 125)

	got := r.Line(l, Style{Color: Yellow})
	assert.True(t, strings.HasPrefix(got, "took \x1b[33m125\x1b["), got)
	assert.True(t, strings.HasSuffix(got, "mms"), got)

	got = r.Line(l, Style{Color: Red, Bold: true})
	assert.True(t, strings.HasPrefix(got, "took \x1b[31;1m125\x1b["), got)
	assert.True(t, strings.HasSuffix(got, "mms"), got)

	got = r.Line(l, Style{Bold: true})
	assert.True(t, strings.HasPrefix(got, "took \x1b[1m125\x1b["), got)
}

func TestRenderer_EmptySpan(t *testing.T) {
	r := New(Options{Colors: true})
	assert.Equal(t, "", r.Span("", Style{Color: Red}))
}

func TestColorMode_Enabled(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, ColorAlways.Enabled(&buf))
	assert.False(t, ColorNever.Enabled(&buf))
	// Not a terminal.
	assert.False(t, ColorAuto.Enabled(&buf))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorAuto.Enabled(&buf))
	assert.True(t, ColorAlways.Enabled(&buf))
}
