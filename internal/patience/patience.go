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

// Package patience implements patience diff matching over line codes.
//
// Lines that are unique on both sides of a window are aligned using a longest increasing
// subsequence; the gaps between those anchors are then matched recursively. Identical leading and
// trailing lines are matched greedily before anchors are searched.
package patience

import (
	"math"
	"sort"

	"znkr.io/diffpatch/internal/charrep"
)

const (
	unseen   = -1
	repeated = -2
)

type pair struct{ s, t int }

type matcher struct {
	x, y             []charrep.Code
	unique1, unique2 []int // indexed by code
	matches          []int
}

// Match returns a slice m with len(m) == len(x) where m[i] is the index in y that x[i] is matched
// to, or -1 if x[i] is unmatched. All codes must be smaller than codeCount.
//
// Matches are strictly increasing and only ever pair identical codes.
func Match(x, y []charrep.Code, codeCount int) []int {
	m := matcher{
		x:       x,
		y:       y,
		unique1: make([]int, codeCount),
		unique2: make([]int, codeCount),
		matches: make([]int, len(x)),
	}
	for i := range m.unique1 {
		m.unique1[i] = unseen
		m.unique2[i] = unseen
	}
	for i := range m.matches {
		m.matches[i] = -1
	}
	m.match(0, len(x), 0, len(y))
	return m.matches
}

func (m *matcher) match(smin, smax, tmin, tmax int) {
	// Match identical leading lines.
	for smin < smax && tmin < tmax && m.x[smin] == m.y[tmin] {
		m.matches[smin] = tmin
		smin++
		tmin++
	}

	// Match identical trailing lines.
	for smin < smax && tmin < tmax && m.x[smax-1] == m.y[tmax-1] {
		smax--
		tmax--
		m.matches[smax] = tmax
	}

	// With at most 3 lines left, one side has at most one line and that line would already have
	// been matched above if it appears on the other side.
	if smin == smax || tmin == tmax || (smax-smin)+(tmax-tmin) <= 3 {
		return
	}

	anchors := m.anchors(smin, smax, tmin, tmax)
	if len(anchors) == 0 {
		return
	}
	for _, a := range anchors {
		m.matches[a.s] = a.t
	}

	s, t := smin, tmin
	for _, a := range anchors {
		m.match(s, a.s, t, a.t)
		s, t = a.s+1, a.t+1
	}
	m.match(s, smax, t, tmax)
}

// anchors returns the longest increasing subsequence of lines that appear exactly once in
// x[smin:smax] and exactly once in y[tmin:tmax].
//
// The subsequence is found with patience sorting as described in Thomas G. Szymanski, “A Special
// Case of the Maximal Common Subsequence Problem,” Princeton TR #170 (January 1975), available at
// https://research.swtch.com/tgs170.pdf.
func (m *matcher) anchors(smin, smax, tmin, tmax int) []pair {
	for s := smin; s < smax; s++ {
		c := m.x[s]
		if m.unique1[c] == unseen {
			m.unique1[c] = s
		} else {
			m.unique1[c] = repeated
		}
	}
	for t := tmin; t < tmax; t++ {
		c := m.y[t]
		if m.unique1[c] < 0 {
			continue
		}
		if m.unique2[c] == unseen {
			m.unique2[c] = t
		} else {
			m.unique2[c] = repeated
		}
	}

	// Gather the unique pairs in the order of x.
	var common []pair
	for s := smin; s < smax; s++ {
		c := m.x[s]
		if m.unique1[c] >= 0 && m.unique2[c] >= 0 {
			common = append(common, pair{s, m.unique2[c]})
		}
	}

	for s := smin; s < smax; s++ {
		m.unique1[m.x[s]] = unseen
	}
	for t := tmin; t < tmax; t++ {
		m.unique2[m.y[t]] = unseen
	}

	n := len(common)
	if n == 0 {
		return nil
	}

	// Apply Algorithm A from Szymanski's paper: T[k] is the smallest top of a pile holding
	// subsequences of length k+1 and L[i] is the length of the longest subsequence ending in
	// common[i].
	T := make([]int, n)
	L := make([]int, n)
	for i := range T {
		T[i] = math.MaxInt
	}
	for i, p := range common {
		k := sort.Search(n, func(k int) bool {
			return T[k] >= p.t
		})
		T[k] = p.t
		L[i] = k + 1
	}
	k := 0
	for _, v := range L {
		k = max(k, v)
	}

	// Walk backwards, picking the most recent top of every pile below the previous pick.
	out := make([]pair, k)
	lastt := math.MaxInt
	for i := n - 1; i >= 0 && k > 0; i-- {
		if L[i] == k && common[i].t < lastt {
			k--
			out[k] = common[i]
			lastt = common[i].t
		}
	}
	return out
}
