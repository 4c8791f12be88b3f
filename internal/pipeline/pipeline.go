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

// Package pipeline runs one batch: classify every line, build the digest,
// freeze it, derive rank thresholds, filter and sort, then render.
//
// The digest is complete before any threshold is read. Nothing is rendered
// until classification of the whole input has finished.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cardinalhq/logrank/internal/classify"
	"github.com/cardinalhq/logrank/internal/filtersort"
	"github.com/cardinalhq/logrank/internal/lineio"
	"github.com/cardinalhq/logrank/internal/logctx"
	"github.com/cardinalhq/logrank/internal/rank"
	"github.com/cardinalhq/logrank/internal/render"
)

// Options control one run.
type Options struct {
	Matcher *classify.Matcher

	// Highlight styles every match the same way instead of by rank.
	Highlight bool
	// Bold is added on top of whichever style is chosen.
	Bold bool

	MatchingOnly bool
	Order        filtersort.Order

	// Summary appends the sample count and percentiles to the output.
	Summary bool

	// Workers bounds classification parallelism; 0 means GOMAXPROCS.
	Workers int

	// Colors enables escape sequences in rendered output.
	Colors bool
}

// Summary describes the values seen during a run. Thresholds, Min and Max
// are only meaningful when HasValues is true.
type Summary struct {
	Total      int
	Matched    uint64
	HasValues  bool
	Thresholds rank.Thresholds
	Min        uint64
	Max        uint64
}

// Result is the rendered output of a run.
type Result struct {
	Lines   []string
	Summary Summary
}

// Run processes input and returns the rendered lines in output order.
func Run(ctx context.Context, input []string, opts Options) (*Result, error) {
	if opts.Matcher == nil {
		return nil, errors.New("pipeline: no matcher configured")
	}
	ll := logctx.FromContext(ctx)

	start := time.Now()
	classified, d, err := classifyAll(ctx, opts.Matcher, input, opts.Workers)
	if err != nil {
		return nil, err
	}
	frozen := d.Freeze()
	ll.Debug("Classified input",
		slog.Int("lines", len(input)),
		slog.Uint64("matched", frozen.Count()),
		slog.Duration("elapsed", time.Since(start)))

	summary := Summary{Total: len(input), Matched: frozen.Count()}

	// Without any matched value there is nothing to rank, and every line
	// takes the unmatched rendering path.
	var bucketer *rank.Bucketer
	if !frozen.IsEmpty() {
		bucketer, err = rank.NewBucketer(frozen)
		if err != nil {
			return nil, err
		}
		summary.HasValues = true
		summary.Thresholds = bucketer.Thresholds()
		summary.Min, _ = frozen.Min()
		summary.Max, _ = frozen.Max()
		ll.Debug("Computed rank thresholds",
			slog.Uint64("p50", summary.Thresholds.P50),
			slog.Uint64("p90", summary.Thresholds.P90),
			slog.Uint64("p99", summary.Thresholds.P99),
			slog.Uint64("min", summary.Min),
			slog.Uint64("max", summary.Max))
	}

	selected := filtersort.Apply(classified, opts.MatchingOnly, opts.Order)
	ll.Debug("Filtered lines",
		slog.Int("kept", len(selected)),
		slog.Bool("matchingOnly", opts.MatchingOnly),
		slog.String("order", opts.Order.String()))

	r := render.New(render.Options{Colors: opts.Colors})
	lines := make([]string, len(selected))
	for i, l := range selected {
		lines[i] = r.Line(l, styleFor(l, bucketer, opts))
	}

	return &Result{Lines: lines, Summary: summary}, nil
}

func styleFor(l classify.Line, b *rank.Bucketer, opts Options) render.Style {
	if !l.Matched || b == nil {
		return render.Style{}
	}
	if opts.Highlight {
		return render.HighlightStyle.WithBold(opts.Bold)
	}
	s := render.BucketStyle(b.BucketOf(l.Value))
	return s.WithBold(s.Bold || opts.Bold)
}

// Execute runs the pipeline and writes its output, and the summary when
// requested, to w.
func Execute(ctx context.Context, input []string, w io.Writer, opts Options) (*Result, error) {
	res, err := Run(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	if err := lineio.WriteLines(w, res.Lines); err != nil {
		return nil, err
	}
	if opts.Summary {
		if err := WriteSummary(w, res.Summary); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// WriteSummary writes the sample count and, when there were samples, the
// p99, p90 and p50 values.
func WriteSummary(w io.Writer, s Summary) error {
	lines := []string{fmt.Sprintf("Found %d samples", s.Matched)}
	if s.HasValues {
		lines = append(lines,
			fmt.Sprintf("99'th percentile: %d", s.Thresholds.P99),
			fmt.Sprintf("90'th percentile: %d", s.Thresholds.P90),
			fmt.Sprintf("50'th percentile: %d", s.Thresholds.P50),
		)
	}
	return lineio.WriteLines(w, lines)
}
