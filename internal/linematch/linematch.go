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

// Package linematch converts between line correspondence arrays, diff lists and unmatched
// ranges.
//
// A correspondence array m for texts x and y has len(m) == len(x); m[i] is the index of the line
// in y that x[i] corresponds to, or -1.
package linematch

import (
	"fmt"

	"znkr.io/diffpatch/internal/hunk"
	"znkr.io/diffpatch/internal/linerange"
)

// Gap is a pair of corresponding unmatched ranges in x and y.
type Gap struct {
	X, Y linerange.Range
}

// MakeDiffList turns a correspondence array into a list of line diffs. Corresponding lines that
// are not identical become a deletion followed by an insertion.
func MakeDiffList(matches []int, x, y []string) []hunk.Diff {
	out := make([]hunk.Diff, 0, max(len(x), len(y)))
	s, t := 0, 0
	for i, j := range matches {
		if j < 0 {
			continue
		}
		for ; s < i; s++ {
			out = append(out, hunk.Diff{Op: hunk.Delete, Text: x[s]})
		}
		for ; t < j; t++ {
			out = append(out, hunk.Diff{Op: hunk.Insert, Text: y[t]})
		}
		if x[s] == y[t] {
			out = append(out, hunk.Diff{Op: hunk.Equal, Text: x[s]})
		} else {
			out = append(out,
				hunk.Diff{Op: hunk.Delete, Text: x[s]},
				hunk.Diff{Op: hunk.Insert, Text: y[t]},
			)
		}
		s++
		t++
	}
	for ; s < len(x); s++ {
		out = append(out, hunk.Diff{Op: hunk.Delete, Text: x[s]})
	}
	for ; t < len(y); t++ {
		out = append(out, hunk.Diff{Op: hunk.Insert, Text: y[t]})
	}
	return out
}

// UnmatchedRanges returns the gaps between matched lines in order. One of the ranges of a gap may
// be empty, but never both.
func UnmatchedRanges(matches []int, ylen int) []Gap {
	var out []Gap
	xlen := len(matches)
	s, t := 0, 0
	for s < xlen || t < ylen {
		// Find the next matched line.
		e := s
		for e < xlen && matches[e] < 0 {
			e++
		}
		f := ylen
		if e < xlen {
			f = matches[e]
		}
		if e == s && f == t {
			s++
			t++
			continue
		}
		out = append(out, Gap{X: linerange.New(s, e), Y: linerange.New(t, f)})
		s, t = e, f
	}
	return out
}

// FromUnmatchedRanges is the inverse of [UnmatchedRanges]: lines outside of the gaps are matched
// one to one in order, lines inside the gaps are unmatched.
func FromUnmatchedRanges(gaps []Gap, xlen int) ([]int, error) {
	out := make([]int, xlen)
	s, t := 0, 0
	for _, g := range gaps {
		for ; s < g.X.Start; s++ {
			out[s] = t
			t++
		}
		if t != g.Y.Start {
			return nil, fmt.Errorf("gap %v/%v: unequal number of matched lines before the gap", g.X, g.Y)
		}
		for ; s < g.X.End; s++ {
			out[s] = -1
		}
		t = g.Y.End
	}
	for ; s < xlen; s++ {
		out[s] = t
		t++
	}
	return out, nil
}
