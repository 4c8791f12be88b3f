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

package filtersort

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cardinalhq/logrank/internal/classify"
)

// Order selects how surviving lines are sequenced.
type Order int

const (
	Original Order = iota
	Ascending
	Descending
)

func (o Order) String() string {
	switch o {
	case Original:
		return "original"
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// ParseOrder accepts the names used on the command line and in config files.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "original", "none":
		return Original, nil
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Original, fmt.Errorf("unknown sort order %q (want original, asc or desc)", s)
	}
}

// Apply filters and orders lines. The input slice is never modified.
//
// Sorting needs a value, so Ascending and Descending drop unmatched lines
// even when matchingOnly is false. Sorting is stable, and Descending is the
// exact reverse of Ascending: lines with equal values come out in reverse
// input order.
func Apply(lines []classify.Line, matchingOnly bool, order Order) []classify.Line {
	if !matchingOnly && order == Original {
		return lines
	}

	out := make([]classify.Line, 0, len(lines))
	for _, l := range lines {
		if l.Matched {
			out = append(out, l)
		}
	}

	switch order {
	case Ascending:
		slices.SortStableFunc(out, classify.CompareValues)
	case Descending:
		slices.SortStableFunc(out, classify.CompareValues)
		slices.Reverse(out)
	}
	return out
}
