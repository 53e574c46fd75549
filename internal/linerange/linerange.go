// Copyright 2025 Florian Zenker (flo@znkr.io)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package linerange provides a half-open interval over line indices.
package linerange

import "fmt"

// Range is the half-open interval [Start, End) of 0-based line indices.
type Range struct {
	Start, End int
}

// New returns the range [start, end). It panics if end < start.
func New(start, end int) Range {
	if end < start {
		panic(fmt.Sprintf("invalid line range [%d, %d)", start, end))
	}
	return Range{start, end}
}

// Of returns the range starting at start with the given length.
func Of(start, length int) Range {
	return New(start, start+length)
}

// Len returns the number of lines in r.
func (r Range) Len() int { return r.End - r.Start }

// Empty reports whether r contains no lines.
func (r Range) Empty() bool { return r.Start == r.End }

// Contains reports whether line i is in r.
func (r Range) Contains(i int) bool { return r.Start <= i && i < r.End }

// Intersects reports whether r and o share at least one line. Empty ranges never intersect.
func (r Range) Intersects(o Range) bool {
	return !r.Empty() && !o.Empty() && r.Start < o.End && o.Start < r.End
}

// Intersection returns the overlap of r and o. The result is empty (positioned at the larger
// start) when they don't overlap.
func (r Range) Intersection(o Range) Range {
	start := max(r.Start, o.Start)
	end := min(r.End, o.End)
	return Range{start, max(start, end)}
}

// Union returns the smallest range covering both r and o.
func (r Range) Union(o Range) Range {
	return Range{min(r.Start, o.Start), max(r.End, o.End)}
}

// Add shifts r by n lines.
func (r Range) Add(n int) Range { return Range{r.Start + n, r.End + n} }

// Except returns the parts of r not covered by any of the given ranges, in ascending order.
// The excluded ranges may be given in any order and may overlap.
func (r Range) Except(excluded []Range) []Range {
	out := []Range{r}
	for _, ex := range excluded {
		if ex.Empty() {
			continue
		}
		next := out[:0:0]
		for _, o := range out {
			if !o.Intersects(ex) {
				next = append(next, o)
				continue
			}
			if o.Start < ex.Start {
				next = append(next, Range{o.Start, ex.Start})
			}
			if ex.End < o.End {
				next = append(next, Range{ex.End, o.End})
			}
		}
		out = next
	}
	return out
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
