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

package patcher

import (
	"errors"
	"fmt"
	"strings"

	"znkr.io/diffpatch/internal/config"
	"znkr.io/diffpatch/internal/hunk"
)

// ErrAlreadyApplied is returned if Apply is called more than once on the same Patcher.
var ErrAlreadyApplied = errors.New("patcher already applied")

// ConsistencyError reports a hunk that would overwrite the changes of another hunk. It indicates a
// bug, not bad input.
type ConsistencyError struct {
	Name   string
	Header string
	Msg    string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Name, e.Header, e.Msg)
}

// Result describes how a single hunk was applied.
type Result struct {
	// Patch is the hunk as read from the patch file.
	Patch *hunk.Patch

	Success bool
	Mode    config.Mode

	// Applied is the hunk as it was spliced into the text, with Start2 pointing to its location
	// in the patched text. Nil if the hunk failed.
	Applied *hunk.Patch

	// Offset is the distance between the expected and the actual location.
	Offset int

	// OffsetWarning is set if Offset is suspiciously large.
	OffsetWarning bool

	// Fuzz is the match score of a fuzzy match.
	Fuzz float64

	// SearchOffset is the accumulated drift when the hunk was applied.
	SearchOffset int
}

// Quality returns 1 for exact, access and offset matches, the match score for fuzzy matches and 0
// for failures.
func (r *Result) Quality() float64 {
	switch {
	case !r.Success:
		return 0
	case r.Mode == config.ModeFuzzy:
		return r.Fuzz
	default:
		return 1
	}
}

// Summary returns a human readable one line description of the result.
func (r *Result) Summary() string {
	hdr := r.Patch.Header()
	if !r.Success {
		return "FAILURE: " + hdr
	}
	label := strings.ToUpper(r.Mode.String())
	if r.OffsetWarning {
		label = "WARNING"
	}
	switch r.Mode {
	case config.ModeOffset:
		return fmt.Sprintf("%s: %s offset %d", label, hdr, r.Offset)
	case config.ModeFuzzy:
		s := fmt.Sprintf("%s: %s quality %d%%", label, hdr, int(r.Fuzz*100))
		if r.Offset != 0 {
			s += fmt.Sprintf(" offset %d", r.Offset)
		}
		return s
	default:
		return label + ": " + hdr
	}
}

// Reject returns the reject text for all failed hunks, or "" if all hunks were applied.
func Reject(results []Result) string {
	var sb strings.Builder
	for i := range results {
		r := &results[i]
		if r.Success {
			continue
		}
		fmt.Fprintf(&sb, "++++ REJECTED HUNK: %d\n", i+1)
		sb.WriteString(r.Patch.Header())
		sb.WriteByte('\n')
		for _, d := range r.Patch.Diffs {
			sb.WriteString(d.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
