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

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cardinalhq/logrank/internal/classify"
	"github.com/cardinalhq/logrank/internal/digest"
	"github.com/cardinalhq/logrank/internal/logctx"
)

// minPartitionSize keeps small inputs from being split across goroutines
// that would each do almost no work.
const minPartitionSize = 1024

type partition struct {
	start int
	end   int
}

// partitions splits n items into at most workers contiguous ranges, using
// fewer ranges when there would be less than minSize items per range.
// Ranges cover [0, n) in order.
func partitions(n, workers, minSize int) []partition {
	if n == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if minSize < 1 {
		minSize = 1
	}
	count := min(workers, (n+minSize-1)/minSize)
	size := (n + count - 1) / count

	out := make([]partition, 0, count)
	for start := 0; start < n; start += size {
		out = append(out, partition{start: start, end: min(start+size, n)})
	}
	return out
}

// classifyAll classifies input in parallel. Each partition writes into its
// own region of the result, so position in the result is position in the
// input. Every partition fills a private digest; the digests are merged
// once all partitions are done.
func classifyAll(ctx context.Context, m *classify.Matcher, input []string, workers int) ([]classify.Line, *digest.Digest, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]classify.Line, len(input))
	parts := partitions(len(input), workers, minPartitionSize)
	partials := make([]*digest.Digest, len(parts))

	logctx.FromContext(ctx).Debug("Classifying lines",
		"lines", len(input),
		"workers", workers,
		"partitions", len(parts))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range parts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, ll := logctx.With(gctx, slog.Int("partition", i))
			dst := out[p.start:p.end]
			m.ClassifyAll(dst, input[p.start:p.end])
			partials[i] = digestOf(dst)
			ll.Debug("Classified partition",
				slog.Int("start", p.start),
				slog.Int("lines", len(dst)),
				slog.Uint64("matched", partials[i].Count()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("classifying lines: %w", err)
	}

	merged := digest.New()
	for _, d := range partials {
		if err := merged.Merge(d); err != nil {
			return nil, nil, err
		}
	}
	return out, merged, nil
}

func digestOf(lines []classify.Line) *digest.Digest {
	d := digest.New()
	for _, l := range lines {
		if l.Matched {
			d.Absorb(l.Value)
		}
	}
	return d
}
