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

// Package fuzzy aligns lines that are similar but not necessarily identical.
//
// Lines are compared in word mode (see [charrep.Representer.WordsToChars]) using a normalized
// Levenshtein distance. A [MatchMatrix] aligns a short pattern against a search window while
// allowing every pattern line to drift by a small number of lines.
package fuzzy

import (
	"slices"

	"znkr.io/diffpatch/internal/charrep"
)

const (
	// DefaultMinMatchScore is the default minimum score for an alignment to be accepted.
	DefaultMinMatchScore = 0.5

	// DefaultMaxOffset is the default maximum drift of a single line.
	DefaultMaxOffset = 5
)

// Levenshtein returns the edit distance between s and t.
func Levenshtein(s, t []charrep.Code) int {
	if slices.Equal(s, t) {
		return 0
	}
	if len(s) == 0 {
		return len(t)
	}
	if len(t) == 0 {
		return len(s)
	}

	v0 := make([]int, len(t)+1)
	v1 := make([]int, len(t)+1)
	for j := range v0 {
		v0[j] = j
	}
	for i := range s {
		v1[0] = i + 1
		for j := range t {
			cost := 1
			if s[i] == t[j] {
				cost = 0
			}
			v1[j+1] = min(v0[j+1]+1, v1[j]+1, v0[j]+cost)
		}
		v0, v1 = v1, v0
	}
	return v0[len(t)]
}

// MatchLines returns the similarity of two word encoded lines in [0, 1]. Only identical lines
// score 1.
func MatchLines(s, t []charrep.Code) float64 {
	d := Levenshtein(s, t)
	if d == 0 {
		return 1
	}
	half := float64(max(len(s), len(t))) / 2
	return max(0, 1-float64(d)/half)
}
