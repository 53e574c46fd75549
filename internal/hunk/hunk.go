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

// Package hunk contains the line diff and hunk model shared by the differ, the patch file format
// and the patcher.
//
// All combinators operate on the list of diffs and recompute the hunk lengths from it, lengths are
// never updated by hand.
package hunk

import (
	"errors"
	"fmt"
	"slices"

	"znkr.io/diffpatch/internal/linerange"
)

// Op describes a line operation.
//
//go:generate go tool golang.org/x/tools/cmd/stringer -type=Op
type Op int

const (
	Equal  Op = iota // The line is present in both texts
	Insert           // The line is only present in the target text
	Delete           // The line is only present in the base text
)

// Prefix returns the patch file prefix for op.
func (op Op) Prefix() byte {
	switch op {
	case Equal:
		return ' '
	case Insert:
		return '+'
	case Delete:
		return '-'
	default:
		panic(fmt.Sprintf("unknown op: %v", op))
	}
}

// Diff is a single line operation.
type Diff struct {
	Op   Op
	Text string
}

// String returns the patch file representation of d.
func (d Diff) String() string {
	return string(d.Op.Prefix()) + d.Text
}

// Patch is a hunk: a list of line operations together with its location in the base text (Start1,
// Length1) and in the target text (Start2, Length2).
type Patch struct {
	Start1, Length1 int
	Start2, Length2 int
	Diffs           []Diff
}

// New returns a patch for diffs starting at start1 and start2 with lengths computed from diffs.
func New(start1, start2 int, diffs []Diff) *Patch {
	p := &Patch{Start1: start1, Start2: start2, Diffs: diffs}
	p.RecalculateLength()
	return p
}

// Clone returns a deep copy of p.
func (p *Patch) Clone() *Patch {
	c := *p
	c.Diffs = slices.Clone(p.Diffs)
	return &c
}

// Header returns the hunk header "@@ -start1,length1 +start2,length2 @@" with 1-based starts.
func (p *Patch) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", p.Start1+1, p.Length1, p.Start2+1, p.Length2)
}

// AutoHeader returns the hunk header with the target start replaced by "_".
func (p *Patch) AutoHeader() string {
	return fmt.Sprintf("@@ -%d,%d +_,%d @@", p.Start1+1, p.Length1, p.Length2)
}

// ContextLines returns the lines the patch expects in the base text.
func (p *Patch) ContextLines() []string {
	out := make([]string, 0, len(p.Diffs))
	for _, d := range p.Diffs {
		if d.Op != Insert {
			out = append(out, d.Text)
		}
	}
	return out
}

// PatchedLines returns the lines the patch produces in the target text.
func (p *Patch) PatchedLines() []string {
	out := make([]string, 0, len(p.Diffs))
	for _, d := range p.Diffs {
		if d.Op != Delete {
			out = append(out, d.Text)
		}
	}
	return out
}

// Range1 returns the range of the patch in the base text.
func (p *Patch) Range1() linerange.Range { return linerange.Of(p.Start1, p.Length1) }

// Range2 returns the range of the patch in the target text.
func (p *Patch) Range2() linerange.Range { return linerange.Of(p.Start2, p.Length2) }

// TrimmedRange1 returns Range1 without leading and trailing context lines.
func (p *Patch) TrimmedRange1() linerange.Range { return p.trimRange(p.Range1()) }

// TrimmedRange2 returns Range2 without leading and trailing context lines.
func (p *Patch) TrimmedRange2() linerange.Range { return p.trimRange(p.Range2()) }

// LeadingContext returns the number of context lines before the first change.
func (p *Patch) LeadingContext() int {
	n := 0
	for n < len(p.Diffs) && p.Diffs[n].Op == Equal {
		n++
	}
	return n
}

// TrailingContext returns the number of context lines after the last change. A patch without
// changes has no trailing context, all of its lines are leading context.
func (p *Patch) TrailingContext() int {
	start := p.LeadingContext()
	end := len(p.Diffs)
	for end > start && p.Diffs[end-1].Op == Equal {
		end--
	}
	return len(p.Diffs) - end
}

func (p *Patch) trimRange(r linerange.Range) linerange.Range {
	lead := p.LeadingContext()
	if lead == len(p.Diffs) {
		return linerange.Range{Start: r.Start, End: r.Start}
	}
	return linerange.Range{Start: r.Start + lead, End: r.End - p.TrailingContext()}
}

// RecalculateLength sets Length1 and Length2 from the diffs.
func (p *Patch) RecalculateLength() {
	p.Length1, p.Length2 = 0, 0
	for _, d := range p.Diffs {
		if d.Op != Insert {
			p.Length1++
		}
		if d.Op != Delete {
			p.Length2++
		}
	}
}

// Trim reduces the leading and trailing context to at most context lines. A patch without changes
// is trimmed to nothing.
func (p *Patch) Trim(context int) {
	lead := p.LeadingContext()
	if lead == len(p.Diffs) {
		p.Diffs = p.Diffs[:0]
		p.RecalculateLength()
		return
	}
	if n := lead - context; n > 0 {
		p.Diffs = p.Diffs[n:]
		p.Start1 += n
		p.Start2 += n
	}
	if n := p.TrailingContext() - context; n > 0 {
		p.Diffs = p.Diffs[:len(p.Diffs)-n]
	}
	p.RecalculateLength()
}

// Uncollate reorders every block of changes so that all deletions come before all insertions. The
// relative order of deletions and of insertions is preserved.
func (p *Patch) Uncollate() {
	out := make([]Diff, 0, len(p.Diffs))
	var inserts []Diff
	for _, d := range p.Diffs {
		switch d.Op {
		case Delete:
			out = append(out, d)
		case Insert:
			inserts = append(inserts, d)
		default:
			out = append(out, inserts...)
			inserts = inserts[:0]
			out = append(out, d)
		}
	}
	p.Diffs = append(out, inserts...)
}

// Split breaks p into multiple patches wherever a run of more than 2*context equal lines separates
// two changes. The run is cut down to context lines on each side.
func (p *Patch) Split(context int) []*Patch {
	if len(p.Diffs) == 0 {
		return nil
	}

	var ranges []linerange.Range
	start, run := 0, 0
	changed := false
	for i, d := range p.Diffs {
		if d.Op == Equal {
			run++
			continue
		}
		if changed && run > 2*context {
			ranges = append(ranges, linerange.Range{Start: start, End: i - run + context})
			start = i - context
		}
		changed = true
		run = 0
	}
	ranges = append(ranges, linerange.Range{Start: start, End: len(p.Diffs)})

	out := make([]*Patch, 0, len(ranges))
	end1, end2, endDiff := p.Start1, p.Start2, 0
	for _, r := range ranges {
		skip := r.Start - endDiff
		q := New(end1+skip, end2+skip, slices.Clone(p.Diffs[r.Start:r.End]))
		out = append(out, q)
		end1 = q.Start1 + q.Length1
		end2 = q.Start2 + q.Length2
		endDiff = r.End
	}
	return out
}

var (
	// ErrOverlap is returned by Combine for overlapping patches.
	ErrOverlap = errors.New("patches overlap")
	// ErrMisaligned is returned by Combine if the gap between two patches differs between the base
	// and the target text.
	ErrMisaligned = errors.New("unequal distance between patches in base and target")
)

// Combine appends other to p. The gap between the two patches in the base text is filled with
// equal lines taken from lines1. other must start after p in both texts, with gaps of equal size.
func (p *Patch) Combine(other *Patch, lines1 []string) error {
	if p.Range1().Intersects(other.Range1()) || p.Range2().Intersects(other.Range2()) {
		return fmt.Errorf("combining %s and %s: %w", p.Header(), other.Header(), ErrOverlap)
	}
	end1 := p.Start1 + p.Length1
	gap := other.Start1 - end1
	if gap < 0 || p.Start2+p.Length2+gap != other.Start2 {
		return fmt.Errorf("combining %s and %s: %w", p.Header(), other.Header(), ErrMisaligned)
	}
	if other.Start1 > len(lines1) {
		return fmt.Errorf("combining %s and %s: base text has only %d lines", p.Header(), other.Header(), len(lines1))
	}
	for i := end1; i < other.Start1; i++ {
		p.Diffs = append(p.Diffs, Diff{Equal, lines1[i]})
	}
	p.Diffs = append(p.Diffs, other.Diffs...)
	p.RecalculateLength()
	return nil
}
