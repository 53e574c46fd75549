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

// Package patcher applies hunks to a text.
//
// Every hunk is tried with increasingly permissive strategies until one succeeds:
//
//   - exact: the context matches at the expected location
//   - access: the context matches at the expected location when ignoring access modifiers and
//     whitespace
//   - offset: the context matches exactly somewhere else
//   - fuzzy: the context is similar to text near the expected location
//
// The expected location of a hunk is corrected by the drift of the hunks applied before it.
package patcher

import (
	"fmt"
	"slices"
	"sync/atomic"

	"znkr.io/diffpatch/internal/charrep"
	"znkr.io/diffpatch/internal/config"
	"znkr.io/diffpatch/internal/fuzzy"
	"znkr.io/diffpatch/internal/hunk"
	"znkr.io/diffpatch/internal/linerange"
)

// Words ignored by the access strategy, in addition to space and tab.
var accessModifiers = []string{"public", "protected", "private", "final"}

// Patcher applies a list of hunks to a text. A Patcher can only be used once.
type Patcher struct {
	name      string
	mode      config.Mode
	matcher   fuzzy.Matcher
	lines     []string
	patches   []*workingPatch
	rep       *charrep.Representer
	lineCodes []charrep.Code   // line codes of lines, built on first use
	wordLines [][]charrep.Code // word codes of lines, built on first use

	searchOffset int
	lastApplied  *workingPatch

	used atomic.Bool
}

type workingPatch struct {
	patch    *hunk.Patch
	context  []string
	lineMode []charrep.Code
	wordMode [][]charrep.Code
	result   Result
}

// New returns a Patcher for patches on lines. lines is not modified.
func New(lines []string, patches []*hunk.Patch, cfg config.Config) *Patcher {
	p := &Patcher{
		name:    cfg.Name,
		mode:    cfg.Mode,
		matcher: fuzzy.Matcher{MinMatchScore: cfg.MinFuzz, MaxOffset: cfg.MaxOffset},
		lines:   slices.Clone(lines),
		rep:     charrep.New(),
	}
	for _, patch := range patches {
		p.patches = append(p.patches, &workingPatch{
			patch:   patch,
			context: patch.ContextLines(),
			result:  Result{Patch: patch},
		})
	}
	return p
}

// Lines returns the patched text.
func (p *Patcher) Lines() []string { return p.lines }

// Results returns one result per hunk, in the order the hunks were given.
func (p *Patcher) Results() []Result {
	out := make([]Result, len(p.patches))
	for i, wp := range p.patches {
		out[i] = wp.result
	}
	return out
}

// Apply applies all hunks. Hunks that can't be applied are marked as failed in their result. An
// error is returned for inconsistent hunks and if the text has too many distinct lines or words.
func (p *Patcher) Apply() error {
	if !p.used.CompareAndSwap(false, true) {
		return ErrAlreadyApplied
	}
	for _, wp := range p.patches {
		if err := p.apply(wp); err != nil {
			return err
		}
	}
	return nil
}

func (p *Patcher) apply(wp *workingPatch) error {
	wp.result.SearchOffset = p.searchOffset
	strategies := []struct {
		mode config.Mode
		try  func(*workingPatch) (bool, error)
	}{
		{config.ModeExact, p.tryExact},
		{config.ModeAccess, p.tryAccess},
		{config.ModeOffset, p.tryOffset},
		{config.ModeFuzzy, p.tryFuzzy},
	}
	for _, s := range strategies {
		if s.mode > p.mode {
			break
		}
		ok, err := s.try(wp)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	// Later hunks expect this hunk's change in length.
	p.searchOffset -= wp.patch.Length2 - wp.patch.Length1
	return nil
}

func (p *Patcher) expected(wp *workingPatch) int {
	return wp.patch.Start2 + p.searchOffset
}

func (p *Patcher) tryExact(wp *workingPatch) (bool, error) {
	loc := p.expected(wp)
	if !p.contextMatchesAt(wp.context, loc) {
		return false, nil
	}
	return true, p.applyAt(wp, wp.patch, loc, config.ModeExact, 0)
}

func (p *Patcher) contextMatchesAt(context []string, loc int) bool {
	if loc < 0 || loc+len(context) > len(p.lines) {
		return false
	}
	return slices.Equal(p.lines[loc:loc+len(context)], context)
}

func (p *Patcher) tryAccess(wp *workingPatch) (bool, error) {
	loc := p.expected(wp)
	if loc < 0 || loc+len(wp.context) > len(p.lines) {
		return false, nil
	}
	if err := p.buildWordModes(wp); err != nil {
		return false, err
	}
	ignored := map[charrep.Code]bool{' ': true, '\t': true}
	for _, w := range accessModifiers {
		c, err := p.rep.AddWord(w)
		if err != nil {
			return false, err
		}
		ignored[c] = true
	}
	for i, want := range wp.wordMode {
		if !sameWordCounts(want, p.wordLines[loc+i], ignored) {
			return false, nil
		}
	}

	match := make([]int, len(wp.context))
	for i := range match {
		match[i] = loc + i
	}
	return true, p.applyAt(wp, adjustToMatch(wp.patch, match, p.lines), loc, config.ModeAccess, 0)
}

func sameWordCounts(a, b []charrep.Code, ignored map[charrep.Code]bool) bool {
	counts := make(map[charrep.Code]int)
	for _, c := range a {
		if !ignored[c] {
			counts[c]++
		}
	}
	for _, c := range b {
		if !ignored[c] {
			counts[c]--
		}
	}
	for _, n := range counts {
		if n != 0 {
			return false
		}
	}
	return true
}

func (p *Patcher) tryOffset(wp *workingPatch) (bool, error) {
	if err := p.buildLineModes(wp); err != nil {
		return false, err
	}
	loc := p.expected(wp)
	n := len(wp.lineMode)

	found := -1
	for i := max(0, loc); i+n <= len(p.lineCodes); i++ {
		if slices.Equal(p.lineCodes[i:i+n], wp.lineMode) && p.safeAt(wp.patch, i) {
			found = i
			break
		}
	}
	for i := min(loc-1, len(p.lineCodes)-n); i >= 0; i-- {
		if found >= 0 && loc-i >= found-loc {
			break
		}
		if slices.Equal(p.lineCodes[i:i+n], wp.lineMode) && p.safeAt(wp.patch, i) {
			found = i
			break
		}
	}
	if found < 0 {
		return false, nil
	}
	return true, p.applyAt(wp, wp.patch, found, config.ModeOffset, found-loc)
}

func (p *Patcher) tryFuzzy(wp *workingPatch) (bool, error) {
	if len(wp.context) == 0 {
		return false, nil
	}
	if err := p.buildWordModes(wp); err != nil {
		return false, err
	}
	var keepouts []linerange.Range
	for _, other := range p.patches {
		if other.result.Success {
			keepouts = append(keepouts, other.result.Applied.TrimmedRange2())
		}
	}
	allowed := linerange.New(0, len(p.lines)).Except(keepouts)

	loc := p.expected(wp)
	match, score := p.matcher.FindMatch(wp.wordMode, p.wordLines, loc, allowed, warnDistance(wp.patch, len(p.lines)))
	first := slices.IndexFunc(match, func(m int) bool { return m >= 0 })
	if first < 0 {
		return false, nil
	}
	adjusted := adjustToMatch(wp.patch, match, p.lines)
	wp.result.Fuzz = score
	return true, p.applyAt(wp, adjusted, match[first], config.ModeFuzzy, match[first]-loc-first)
}

// adjustToMatch rewrites patch so that its context is exactly the matched lines of text. Context
// lines without a match are dropped, text lines between two matches become context.
func adjustToMatch(patch *hunk.Patch, match []int, text []string) *hunk.Patch {
	diffs := make([]hunk.Diff, 0, len(patch.Diffs))
	i, last, start := 0, -1, -1
	for _, d := range patch.Diffs {
		if d.Op == hunk.Insert {
			diffs = append(diffs, d)
			continue
		}
		m := match[i]
		i++
		if m < 0 {
			continue
		}
		if last >= 0 {
			for l := last + 1; l < m; l++ {
				diffs = append(diffs, hunk.Diff{Op: hunk.Equal, Text: text[l]})
			}
		} else {
			start = m
		}
		diffs = append(diffs, hunk.Diff{Op: d.Op, Text: text[m]})
		last = m
	}
	return hunk.New(patch.Start1, start, diffs)
}

func warnDistance(patch *hunk.Patch, lines int) int {
	return max(10*patch.Length1, lines/10)
}

// safeAt reports whether patch can be applied at loc without touching the changed lines of an
// already applied hunk.
func (p *Patcher) safeAt(patch *hunk.Patch, loc int) bool {
	r := patch.TrimmedRange1().Add(loc - patch.Start1)
	for _, other := range p.patches {
		if !other.result.Success {
			continue
		}
		keepout := other.result.Applied.TrimmedRange2()
		if r.Intersects(keepout) {
			return false
		}
		// An insertion must not split the changed lines of another hunk.
		if r.Empty() && keepout.Start < r.Start && r.Start < keepout.End {
			return false
		}
		// Nor may changed lines span the point where another hunk only deleted lines.
		if keepout.Empty() && r.Start < keepout.Start && keepout.Start < r.End {
			return false
		}
	}
	return true
}

// applyAt splices patch into the text at loc and records the result for wp.
func (p *Patcher) applyAt(wp *workingPatch, patch *hunk.Patch, loc int, mode config.Mode, offset int) error {
	context := patch.ContextLines()
	if !p.contextMatchesAt(context, loc) {
		return &ConsistencyError{Name: p.name, Header: wp.patch.Header(), Msg: fmt.Sprintf("context does not match at line %d", loc+1)}
	}
	if !p.safeAt(patch, loc) {
		return &ConsistencyError{Name: p.name, Header: wp.patch.Header(), Msg: "patch affects another patch"}
	}

	patched := patch.PatchedLines()
	end := loc + len(context)
	if p.lineCodes != nil {
		codes, err := p.rep.LinesToChars(patched)
		if err != nil {
			return err
		}
		p.lineCodes = slices.Replace(p.lineCodes, loc, end, codes...)
	}
	if p.wordLines != nil {
		words, err := p.rep.LinesToWords(patched)
		if err != nil {
			return err
		}
		p.wordLines = slices.Replace(p.wordLines, loc, end, words...)
	}
	p.lines = slices.Replace(p.lines, loc, end, patched...)

	// Hunks applied earlier but located after this one move by this hunk's change in length.
	// Those located before it account for the difference between base and patched lines.
	delta := len(patched) - len(context)
	reordered := p.lastApplied != nil && loc < p.lastApplied.result.Applied.Start2
	patchedDelta := 0
	for _, other := range p.patches {
		if other == wp || !other.result.Success {
			continue
		}
		a := other.result.Applied
		if reordered && a.Start2 > loc {
			a.Start2 += delta
		} else {
			patchedDelta += a.Length2 - a.Length1
		}
	}

	applied := patch.Clone()
	applied.Start1 = loc - patchedDelta
	applied.Start2 = loc

	r := &wp.result
	r.Success = true
	r.Mode = mode
	r.Applied = applied
	r.Offset = offset
	r.OffsetWarning = (mode == config.ModeOffset || mode == config.ModeFuzzy) && abs(r.Offset) > warnDistance(wp.patch, len(p.lines))

	if !reordered {
		p.lastApplied = wp
	}
	p.searchOffset = loc - wp.patch.Start2
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (p *Patcher) buildLineModes(wp *workingPatch) error {
	if p.lineCodes == nil {
		codes, err := p.rep.LinesToChars(p.lines)
		if err != nil {
			return err
		}
		p.lineCodes = codes
	}
	if wp.lineMode == nil {
		codes, err := p.rep.LinesToChars(wp.context)
		if err != nil {
			return err
		}
		wp.lineMode = codes
	}
	return nil
}

func (p *Patcher) buildWordModes(wp *workingPatch) error {
	if p.wordLines == nil {
		words, err := p.rep.LinesToWords(p.lines)
		if err != nil {
			return err
		}
		p.wordLines = words
	}
	if wp.wordMode == nil {
		words, err := p.rep.LinesToWords(wp.context)
		if err != nil {
			return err
		}
		wp.wordMode = words
	}
	return nil
}
