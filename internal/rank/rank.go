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

package rank

import (
	"fmt"

	"github.com/cardinalhq/logrank/internal/digest"
)

// Bucket is the qualitative rank of a value. Larger buckets are more extreme.
type Bucket int

const (
	Other Bucket = iota
	Top50
	Top10
	Top1
)

func (b Bucket) String() string {
	switch b {
	case Other:
		return "other"
	case Top50:
		return "top50"
	case Top10:
		return "top10"
	case Top1:
		return "top1"
	default:
		return fmt.Sprintf("Bucket(%d)", int(b))
	}
}

// Thresholds are the cut points between buckets.
type Thresholds struct {
	P50 uint64
	P90 uint64
	P99 uint64
}

// Bucketer assigns buckets against thresholds fixed at construction.
type Bucketer struct {
	t Thresholds
}

// NewBucketer reads p50, p90 and p99 from a frozen digest. It returns
// digest.ErrEmptyDigest if nothing was absorbed.
func NewBucketer(d *digest.Frozen) (*Bucketer, error) {
	var t Thresholds
	for _, p := range []struct {
		q   float64
		dst *uint64
	}{
		{0.50, &t.P50},
		{0.90, &t.P90},
		{0.99, &t.P99},
	} {
		v, err := d.Quantile(p.q)
		if err != nil {
			return nil, fmt.Errorf("computing rank thresholds: %w", err)
		}
		*p.dst = v
	}
	return NewBucketerFromThresholds(t), nil
}

// NewBucketerFromThresholds builds a bucketer from known cut points.
func NewBucketerFromThresholds(t Thresholds) *Bucketer {
	return &Bucketer{t: t}
}

// Thresholds returns the cut points in use.
func (b *Bucketer) Thresholds() Thresholds {
	return b.t
}

// BucketOf classifies v. Checks run from the most extreme bucket down, so a
// value equal to a threshold lands in the higher bucket. Every uint64 maps
// to exactly one bucket.
func (b *Bucketer) BucketOf(v uint64) Bucket {
	switch {
	case v >= b.t.P99:
		return Top1
	case v >= b.t.P90:
		return Top10
	case v >= b.t.P50:
		return Top50
	default:
		return Other
	}
}
