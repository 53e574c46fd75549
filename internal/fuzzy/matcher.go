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

package fuzzy

import (
	"znkr.io/diffpatch/internal/charrep"
	"znkr.io/diffpatch/internal/linematch"
	"znkr.io/diffpatch/internal/linerange"
)

// Matcher finds fuzzy alignments between word encoded lines.
type Matcher struct {
	MinMatchScore float64
	MaxOffset     int
}

// NewMatcher returns a Matcher with default settings.
func NewMatcher() Matcher {
	return Matcher{MinMatchScore: DefaultMinMatchScore, MaxOffset: DefaultMaxOffset}
}

// MatchLinesByWords refines a correspondence array between x and y by fuzzy matching every pair
// of unmatched ranges.
func (m Matcher) MatchLinesByWords(matches []int, x, y [][]charrep.Code) {
	for _, g := range linematch.UnmatchedRanges(matches, len(y)) {
		if g.X.Empty() || g.Y.Empty() {
			continue
		}
		match := m.Match(x[g.X.Start:g.X.End], y[g.Y.Start:g.Y.End])
		for i, j := range match {
			if j >= 0 {
				matches[g.X.Start+i] = g.Y.Start + j
			}
		}
	}
}

// Match returns the best alignment of pattern in search, as a correspondence array, or all -1 if
// no alignment reaches MinMatchScore.
func (m Matcher) Match(pattern, search [][]charrep.Code) []int {
	if len(search) < len(pattern) {
		inv := m.Match(search, pattern)
		out := make([]int, len(pattern))
		for i := range out {
			out[i] = -1
		}
		for i, j := range inv {
			if j >= 0 {
				out[j] = i
			}
		}
		return out
	}

	out := make([]int, len(pattern))
	for i := range out {
		out[i] = -1
	}
	if len(pattern) == 0 {
		return out
	}

	mm := NewMatchMatrix(pattern, search, linerange.Range{Start: 0, End: len(search)}, m.MaxOffset)
	first, last := mm.WorkingRange()
	bestScore := -1.0
	var best []int
	for pos := first; pos <= last; pos++ {
		if score := mm.Match(pos); score > bestScore {
			bestScore = score
			best = mm.Path()
		}
	}
	if best == nil || bestScore < m.MinMatchScore {
		return out
	}
	return best
}

// FindMatch searches for the best alignment of pattern in search, starting at loc and sweeping
// outward in both directions. Only search lines inside the allowed ranges are aligned, and an
// alignment never spans more than one allowed range.
//
// Candidates further away from loc are penalized by 1/(10*warnDistance) per line, except for the
// first warnDistance/10 lines. The sweep stops once no remaining candidate can beat the best one.
// FindMatch returns the alignment and its penalized score, or nil if no candidate reaches
// MinMatchScore.
func (m Matcher) FindMatch(pattern, search [][]charrep.Code, loc int, allowed []linerange.Range, warnDistance int) ([]int, float64) {
	if len(pattern) == 0 {
		return nil, 0
	}
	warnDistance = max(1, warnDistance)
	penalty := func(d int) float64 {
		return float64(max(0, d-warnDistance/10)) / float64(10*warnDistance)
	}

	var segs []segment
	for _, r := range allowed {
		if r.Empty() {
			continue
		}
		first, last := r.Start-m.MaxOffset, r.End-len(pattern)
		if last < first {
			continue
		}
		segs = append(segs, segment{rng: r, first: first, last: last})
	}

	fwd := newRunner(m, pattern, search, segs, loc, +1)
	bwd := newRunner(m, pattern, search, segs, loc, -1)

	bestScore := -1.0
	var best []int
	for {
		fpos, fok := fwd.peek()
		bpos, bok := bwd.peek()
		if fok && 1-penalty(fpos-loc) <= bestScore {
			fok = false
			fwd.stop()
		}
		if bok && 1-penalty(loc-bpos) <= bestScore {
			bok = false
			bwd.stop()
		}
		if !fok && !bok {
			break
		}

		// Advance whichever runner is closer to loc, preferring the forward runner.
		r, d := fwd, fpos-loc
		if !fok || (bok && loc-bpos < fpos-loc) {
			r, d = bwd, loc-bpos
		}
		score := r.match() - penalty(d)
		if score > bestScore {
			bestScore = score
			best = r.path()
		}
		r.advance()
	}

	if best == nil || bestScore < m.MinMatchScore {
		return nil, 0
	}
	return best, bestScore
}

type segment struct {
	rng         linerange.Range
	first, last int // anchor positions
}

// runner sweeps anchor positions across segments in one direction.
type runner struct {
	m       Matcher
	pattern [][]charrep.Code
	search  [][]charrep.Code
	segs    []segment
	dir     int
	loc     int
	seg     int // index into segs
	pos     int
	mm      *MatchMatrix
	done    bool
}

func newRunner(m Matcher, pattern, search [][]charrep.Code, segs []segment, loc, dir int) *runner {
	r := &runner{m: m, pattern: pattern, search: search, segs: segs, dir: dir, loc: loc}
	if dir > 0 {
		r.seg = 0
		for r.seg < len(segs) && segs[r.seg].last < loc {
			r.seg++
		}
		if r.seg < len(segs) {
			r.pos = max(loc, segs[r.seg].first)
		}
	} else {
		r.seg = len(segs) - 1
		for r.seg >= 0 && segs[r.seg].first > loc-1 {
			r.seg--
		}
		if r.seg >= 0 {
			r.pos = min(loc-1, segs[r.seg].last)
		}
	}
	r.done = r.seg < 0 || r.seg >= len(segs)
	return r
}

func (r *runner) peek() (int, bool) {
	return r.pos, !r.done
}

func (r *runner) stop() { r.done = true }

func (r *runner) match() float64 {
	if r.mm == nil {
		r.mm = NewMatchMatrix(r.pattern, r.search, r.segs[r.seg].rng, r.m.MaxOffset)
	}
	return r.mm.Match(r.pos)
}

func (r *runner) path() []int { return r.mm.Path() }

func (r *runner) advance() {
	s := r.segs[r.seg]
	r.pos += r.dir
	if s.first <= r.pos && r.pos <= s.last {
		return
	}
	r.mm = nil
	r.seg += r.dir
	switch {
	case r.seg < 0 || r.seg >= len(r.segs):
		r.done = true
	case r.dir > 0:
		r.pos = max(r.loc, r.segs[r.seg].first)
	default:
		r.pos = min(r.loc-1, r.segs[r.seg].last)
	}
}
