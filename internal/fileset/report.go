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

package fileset

import (
	"fmt"
	"strings"

	"znkr.io/diffpatch"
)

// Report aggregates the outcome of patching a tree.
type Report struct {
	// Files holds one entry per file patch, sorted by path.
	Files []FileReport
}

// Patched returns the number of files with all hunks applied.
func (r *Report) Patched() int {
	n := 0
	for i := range r.Files {
		if r.Files[i].Success() {
			n++
		}
	}
	return n
}

// Failed returns the number of files with errors or rejected hunks.
func (r *Report) Failed() int { return len(r.Files) - r.Patched() }

// Hunks returns the number of hunks applied per mode. Rejected hunks are counted as
// [diffpatch.None].
func (r *Report) Hunks() map[diffpatch.Mode]int {
	out := make(map[diffpatch.Mode]int)
	for i := range r.Files {
		if r.Files[i].Result == nil {
			continue
		}
		for _, h := range r.Files[i].Result.Hunks {
			out[h.Mode]++
		}
	}
	return out
}

// Quality returns the average quality over all hunks, see [diffpatch.HunkResult].
func (r *Report) Quality() float64 {
	var sum float64
	n := 0
	for i := range r.Files {
		if r.Files[i].Result == nil {
			continue
		}
		for _, h := range r.Files[i].Result.Hunks {
			sum += h.Quality
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return sum / float64(n)
}

// String returns a summary of the report, e.g.
//
//	files: 2 patched, 1 failed
//	hunks: 3 exact, 0 access, 1 offset, 1 fuzzy, 1 failed
//	quality: 87%
func (r *Report) String() string {
	hunks := r.Hunks()
	var sb strings.Builder
	fmt.Fprintf(&sb, "files: %d patched, %d failed\n", r.Patched(), r.Failed())
	fmt.Fprintf(&sb, "hunks: %d exact, %d access, %d offset, %d fuzzy, %d failed\n",
		hunks[diffpatch.Exact], hunks[diffpatch.Access], hunks[diffpatch.Offset], hunks[diffpatch.Fuzzy], hunks[diffpatch.None])
	fmt.Fprintf(&sb, "quality: %.0f%%\n", 100*r.Quality())
	return sb.String()
}
