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

// Package differ computes line diffs and groups them into hunks.
package differ

import (
	"znkr.io/diffpatch/internal/charrep"
	"znkr.io/diffpatch/internal/config"
	"znkr.io/diffpatch/internal/fuzzy"
	"znkr.io/diffpatch/internal/hunk"
	"znkr.io/diffpatch/internal/linematch"
	"znkr.io/diffpatch/internal/patchfile"
	"znkr.io/diffpatch/internal/patience"
)

// A LineMatcher computes a correspondence array between two texts: m[i] is the index of the line
// in y that x[i] corresponds to, or -1. Matches must be strictly increasing.
type LineMatcher interface {
	Match(x, y []string) ([]int, error)
}

// Patience matches lines with patience diff.
type Patience struct {
	// Limit caps the number of distinct lines; zero means [charrep.DefaultLimit].
	Limit int
}

func (m Patience) Match(x, y []string) ([]int, error) {
	r := newRepresenter(m.Limit)
	cx, err := r.LinesToChars(x)
	if err != nil {
		return nil, err
	}
	cy, err := r.LinesToChars(y)
	if err != nil {
		return nil, err
	}
	return patience.Match(cx, cy, r.LineCount()), nil
}

// Refined narrows the gaps left by Base by matching the unmatched lines by similarity.
type Refined struct {
	Base    LineMatcher
	Matcher fuzzy.Matcher

	// Limit caps the number of distinct words; zero means [charrep.DefaultLimit].
	Limit int
}

func (m Refined) Match(x, y []string) ([]int, error) {
	matches, err := m.Base.Match(x, y)
	if err != nil {
		return nil, err
	}
	r := newRepresenter(m.Limit)
	wx, err := r.LinesToWords(x)
	if err != nil {
		return nil, err
	}
	wy, err := r.LinesToWords(y)
	if err != nil {
		return nil, err
	}
	m.Matcher.MatchLinesByWords(matches, wx, wy)
	return matches, nil
}

func newRepresenter(limit int) *charrep.Representer {
	if limit == 0 {
		return charrep.New()
	}
	return charrep.NewWithLimit(limit)
}

// New returns the line matcher selected by cfg.
func New(cfg config.Config) LineMatcher {
	if cfg.LineMatched {
		return Refined{Base: Patience{}, Matcher: fuzzy.NewMatcher()}
	}
	return Patience{}
}

// Diff returns the line diffs that turn x into y.
func Diff(m LineMatcher, x, y []string) ([]hunk.Diff, error) {
	matches, err := m.Match(x, y)
	if err != nil {
		return nil, err
	}
	return linematch.MakeDiffList(matches, x, y), nil
}

// MakePatches groups diffs into hunks with context lines of context. It returns nil if diffs
// contain no changes. Unless collate is set, every block of changes lists its deletions first.
func MakePatches(diffs []hunk.Diff, context int, collate bool) []*hunk.Patch {
	p := hunk.New(0, 0, diffs)
	p.Trim(context)
	if p.Length1 == 0 && p.Length2 == 0 {
		return nil
	}
	if !collate {
		p.Uncollate()
	}
	return p.Split(context)
}

// File returns the patch file that turns base into target. If one of the header paths in cfg is
// [patchfile.DevNull], the file is added or removed as a whole.
func File(base, target []string, cfg config.Config) (*patchfile.File, error) {
	f := &patchfile.File{Name: cfg.Name, BasePath: cfg.BasePath, PatchedPath: cfg.PatchedPath}
	switch {
	case f.Added():
		if len(target) > 0 {
			f.Patches = []*hunk.Patch{MakeFileAdded(target)}
		}
	case f.Removed():
		if len(base) > 0 {
			f.Patches = []*hunk.Patch{MakeFileRemoved(base)}
		}
	default:
		diffs, err := Diff(New(cfg), base, target)
		if err != nil {
			return nil, err
		}
		f.Patches = MakePatches(diffs, cfg.Context, cfg.Collate)
	}
	return f, nil
}

// MakeFileAdded returns a single hunk inserting all lines into an empty text.
func MakeFileAdded(lines []string) *hunk.Patch {
	return hunk.New(0, 0, ops(hunk.Insert, lines))
}

// MakeFileRemoved returns a single hunk deleting all lines.
func MakeFileRemoved(lines []string) *hunk.Patch {
	return hunk.New(0, 0, ops(hunk.Delete, lines))
}

func ops(op hunk.Op, lines []string) []hunk.Diff {
	out := make([]hunk.Diff, len(lines))
	for i, line := range lines {
		out[i] = hunk.Diff{Op: op, Text: line}
	}
	return out
}
