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

// Package digest accumulates extracted values into a DDSketch so that
// percentiles can be answered with bounded memory and bounded relative
// error, no matter how many lines were read.
package digest

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/DataDog/sketches-go/ddsketch/mapping"
	"github.com/DataDog/sketches-go/ddsketch/store"
)

// RelativeAccuracy is the relative error bound of every quantile answer.
const RelativeAccuracy = 0.01

// sketchAccuracy leaves half of RelativeAccuracy for rounding the sketch's
// estimate to an integer: below 100 the estimate is within 0.5 of the true
// value and rounds back to it, from 100 up rounding adds at most 0.5%.
const sketchAccuracy = RelativeAccuracy / 2

// ErrEmptyDigest is returned when a quantile is requested before any value
// was absorbed.
var ErrEmptyDigest = errors.New("digest: no values absorbed")

var (
	mappingOnce    sync.Once
	sharedMapping  mapping.IndexMapping
	mappingInitErr error
)

// All digests share one mapping so that any two of them can be merged.
func getSharedMapping() mapping.IndexMapping {
	mappingOnce.Do(func() {
		sharedMapping, mappingInitErr = mapping.NewLogarithmicMapping(sketchAccuracy)
	})
	if mappingInitErr != nil {
		panic(fmt.Errorf("digest: creating logarithmic mapping: %w", mappingInitErr))
	}
	return sharedMapping
}

// Digest is a mutable percentile accumulator. It is not safe for
// concurrent use; build one per worker and Merge them afterwards.
type Digest struct {
	sk    *ddsketch.DDSketch
	count uint64
	min   uint64
	max   uint64
}

// New returns an empty digest.
func New() *Digest {
	m := getSharedMapping()
	return &Digest{
		sk: ddsketch.NewDDSketch(m, store.NewDenseStore(), store.NewDenseStore()),
	}
}

// Absorb records one observation.
func (d *Digest) Absorb(v uint64) {
	// Non-negative finite values are always within the mapping's range.
	_ = d.sk.Add(float64(v))
	if d.count == 0 || v < d.min {
		d.min = v
	}
	if d.count == 0 || v > d.max {
		d.max = v
	}
	d.count++
}

// Merge folds other into d. other is left unchanged. Merging is
// commutative and associative.
func (d *Digest) Merge(other *Digest) error {
	if other == nil || other.count == 0 {
		return nil
	}
	if err := d.sk.MergeWith(other.sk); err != nil {
		return fmt.Errorf("merging digests: %w", err)
	}
	if d.count == 0 || other.min < d.min {
		d.min = other.min
	}
	if d.count == 0 || other.max > d.max {
		d.max = other.max
	}
	d.count += other.count
	return nil
}

// Count returns the number of absorbed values.
func (d *Digest) Count() uint64 {
	return d.count
}

// Min returns the smallest absorbed value.
func (d *Digest) Min() (uint64, error) {
	if d.count == 0 {
		return 0, ErrEmptyDigest
	}
	return d.min, nil
}

// Max returns the largest absorbed value.
func (d *Digest) Max() (uint64, error) {
	if d.count == 0 {
		return 0, ErrEmptyDigest
	}
	return d.max, nil
}

// Quantile returns the approximate value at quantile q, q in [0, 1].
// Results are rounded to an integer and never fall outside the observed
// minimum and maximum.
func (d *Digest) Quantile(q float64) (uint64, error) {
	if d.count == 0 {
		return 0, ErrEmptyDigest
	}
	if math.IsNaN(q) || q < 0 || q > 1 {
		return 0, fmt.Errorf("digest: quantile %v outside [0, 1]", q)
	}
	v, err := d.sk.GetValueAtQuantile(q)
	if err != nil {
		return 0, fmt.Errorf("digest: quantile %v: %w", q, err)
	}
	return clamp(toUint(v), d.min, d.max), nil
}

// Freeze returns a read-only snapshot. Later Absorb or Merge calls on d do
// not affect the snapshot.
func (d *Digest) Freeze() *Frozen {
	return &Frozen{d: Digest{
		sk:    d.sk.Copy(),
		count: d.count,
		min:   d.min,
		max:   d.max,
	}}
}

// Frozen is a digest that can only be queried.
type Frozen struct {
	d Digest
}

// Count returns the number of absorbed values.
func (f *Frozen) Count() uint64 { return f.d.Count() }

// IsEmpty reports whether no value was absorbed before freezing.
func (f *Frozen) IsEmpty() bool { return f.d.count == 0 }

// Min returns the smallest value absorbed before freezing.
func (f *Frozen) Min() (uint64, error) { return f.d.Min() }

// Max returns the largest value absorbed before freezing.
func (f *Frozen) Max() (uint64, error) { return f.d.Max() }

// Quantile is Digest.Quantile on the snapshot.
func (f *Frozen) Quantile(q float64) (uint64, error) { return f.d.Quantile(q) }

func toUint(v float64) uint64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	if r >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(r)
}

func clamp(v, lo, hi uint64) uint64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
