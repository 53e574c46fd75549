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
	"math"

	"znkr.io/diffpatch/internal/charrep"
	"znkr.io/diffpatch/internal/linerange"
)

// skipPenalty is subtracted from a path for every search line it skips.
const skipPenalty = 0.5

// MatchMatrix scores alignments of a pattern against a range of search lines.
//
// An alignment is anchored at a position pos: pattern line i at offset o is aligned to search
// line pos+i+o. Offsets range over [0, maxOffset] and may only grow from one pattern line to the
// next, so aligned search lines are strictly increasing. Every increase costs skipPenalty per
// line.
//
// For every diagonal d in [pos, pos+maxOffset] the matrix keeps a track with the score of aligning
// pattern line i with search line d+i. Moving pos by one in either direction only computes one new
// track; any other move recomputes all of them.
type MatchMatrix struct {
	pattern   [][]charrep.Code
	search    [][]charrep.Code
	rng       linerange.Range
	maxOffset int

	pos    int
	valid  bool
	tracks [][]float64 // ring buffer indexed by diagonal mod maxOffset+1

	best  [][]float64 // best[i][o]: best score of a path from pattern line i at offset o
	links [][]int     // links[i][o]: offset of pattern line i+1 on that path
	start int         // offset of pattern line 0 on the best path
	score float64
}

// NewMatchMatrix returns a matrix aligning pattern against the lines of search in rng.
func NewMatchMatrix(pattern, search [][]charrep.Code, rng linerange.Range, maxOffset int) *MatchMatrix {
	n, w := len(pattern), maxOffset+1
	mm := &MatchMatrix{
		pattern:   pattern,
		search:    search,
		rng:       rng,
		maxOffset: maxOffset,
		tracks:    make([][]float64, w),
		best:      make([][]float64, n),
		links:     make([][]int, n),
	}
	for o := range mm.tracks {
		mm.tracks[o] = make([]float64, n)
	}
	for i := range n {
		mm.best[i] = make([]float64, w)
		mm.links[i] = make([]int, w)
	}
	return mm
}

// WorkingRange returns the first and last anchor position that can align at least one pattern
// line inside the search range. last < first if there is no such position.
func (mm *MatchMatrix) WorkingRange() (first, last int) {
	return mm.rng.Start - mm.maxOffset, mm.rng.End - len(mm.pattern)
}

// Pos returns the current anchor position.
func (mm *MatchMatrix) Pos() int { return mm.pos }

// Match moves the anchor to pos and returns the average line score of the best path.
func (mm *MatchMatrix) Match(pos int) float64 {
	switch {
	case mm.valid && pos == mm.pos:
		return mm.score
	case mm.valid && pos == mm.pos+1:
		mm.StepForward()
	case mm.valid && pos == mm.pos-1:
		mm.StepBackward()
	default:
		mm.Init(pos)
	}
	return mm.recalculate()
}

// Init computes all tracks for anchor position pos.
func (mm *MatchMatrix) Init(pos int) {
	mm.pos = pos
	mm.valid = true
	for o := 0; o <= mm.maxOffset; o++ {
		mm.fill(pos + o)
	}
}

// StepForward moves the anchor one line forward.
func (mm *MatchMatrix) StepForward() {
	mm.pos++
	mm.fill(mm.pos + mm.maxOffset)
}

// StepBackward moves the anchor one line backward.
func (mm *MatchMatrix) StepBackward() {
	mm.pos--
	mm.fill(mm.pos)
}

func (mm *MatchMatrix) track(d int) []float64 {
	w := mm.maxOffset + 1
	return mm.tracks[((d%w)+w)%w]
}

// fill computes the track for diagonal d.
func (mm *MatchMatrix) fill(d int) {
	tr := mm.track(d)
	for i, p := range mm.pattern {
		line := d + i
		if !mm.rng.Contains(line) {
			tr[i] = 0
			continue
		}
		tr[i] = MatchLines(p, mm.search[line])
	}
}

func (mm *MatchMatrix) recalculate() float64 {
	n := len(mm.pattern)
	if n == 0 {
		mm.score = 0
		return 0
	}
	for i := n - 1; i >= 0; i-- {
		for o := 0; o <= mm.maxOffset; o++ {
			s := mm.track(mm.pos + o)[i]
			if i == n-1 {
				mm.best[i][o] = s
				mm.links[i][o] = -1
				continue
			}
			next, link := mm.best[i+1][o], o
			for o2 := o + 1; o2 <= mm.maxOffset; o2++ {
				if v := mm.best[i+1][o2] - skipPenalty*float64(o2-o); v > next {
					next, link = v, o2
				}
			}
			mm.best[i][o] = s + next
			mm.links[i][o] = link
		}
	}
	best := math.Inf(-1)
	for o := 0; o <= mm.maxOffset; o++ {
		if mm.best[0][o] > best {
			best, mm.start = mm.best[0][o], o
		}
	}
	mm.score = best / float64(n)
	return mm.score
}

// Path returns the search line aligned with every pattern line on the best path for the current
// anchor. Pattern lines aligned outside of the search range, and unmatched lines at the start
// and end of the pattern, are reported as -1.
func (mm *MatchMatrix) Path() []int {
	n := len(mm.pattern)
	path := make([]int, n)
	scores := make([]float64, n)
	o := mm.start
	for i := range n {
		line := mm.pos + i + o
		scores[i] = mm.track(mm.pos + o)[i]
		if mm.rng.Contains(line) {
			path[i] = line
		} else {
			path[i] = -1
		}
		o = mm.links[i][o]
	}
	for i := 0; i < n && scores[i] == 0; i++ {
		path[i] = -1
	}
	for i := n - 1; i >= 0 && scores[i] == 0; i-- {
		path[i] = -1
	}
	return path
}
