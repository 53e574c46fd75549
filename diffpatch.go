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

package diffpatch

import (
	"znkr.io/diffpatch/internal/charrep"
	"znkr.io/diffpatch/internal/config"
	"znkr.io/diffpatch/internal/differ"
	"znkr.io/diffpatch/internal/patchfile"
	"znkr.io/diffpatch/internal/patcher"
)

// Error types returned by [Diff] and [Patch], for use with [errors.As].
type (
	// FormatError reports a malformed patch file.
	FormatError = patchfile.FormatError

	// ConsistencyError reports a hunk that would overwrite the changes of another hunk.
	ConsistencyError = patcher.ConsistencyError

	// CapacityError reports a text with too many distinct lines or words.
	CapacityError = charrep.CapacityError
)

// Diff compares base and target line by line and returns the patch file text that turns base into
// target, or "" if they are identical.
//
// The following options are supported: [Context], [AutoHeader], [Uncollated], [LineMatched],
// [Paths], [Name]
//
// Diff returns a [CapacityError] if the texts have too many distinct lines or words.
func Diff(base, target []string, opts ...Option) (string, error) {
	cfg := config.FromOptions(opts, config.DiffFlags)
	f, err := differ.File(base, target, cfg)
	if err != nil {
		return "", err
	}
	return f.String(cfg.AutoHeader), nil
}

// Result is the outcome of [Patch].
type Result struct {
	// Lines is the patched text.
	Lines []string

	// Reject holds all hunks that could not be applied, in patch file format with a
	// "++++ REJECTED HUNK: n" line before each hunk.
	Reject string

	// Hunks has one entry per hunk in the patch file.
	Hunks []HunkResult

	// Removed is set if the patch removes the file.
	Removed bool

	// EndChanged is set if a hunk changed the end of the text.
	EndChanged bool

	// MissingNewline is set if the patch marks the end of the text as lacking a trailing
	// newline.
	MissingNewline bool
}

// HunkResult describes how a single hunk was applied.
type HunkResult struct {
	Header        string  // Hunk header as in the patch file
	Success       bool    // Whether the hunk was applied
	Mode          Mode    // Mode used to apply the hunk
	Offset        int     // Distance in lines between the expected and the actual location
	OffsetWarning bool    // Whether the offset is suspiciously large
	Quality       float64 // 1 for non fuzzy matches, the match score for fuzzy matches, 0 for failures
	Summary       string  // Human readable summary, e.g. "OFFSET: @@ -1,3 +1,3 @@ offset 2"
}

// Success reports whether all hunks were applied.
func (r *Result) Success() bool {
	for _, h := range r.Hunks {
		if !h.Success {
			return false
		}
	}
	return true
}

// Quality returns the average quality of all hunks between 0 and 1, see [HunkResult].
func (r *Result) Quality() float64 {
	if len(r.Hunks) == 0 {
		return 1
	}
	var sum float64
	for _, h := range r.Hunks {
		sum += h.Quality
	}
	return sum / float64(len(r.Hunks))
}

// Summaries returns the summary of every hunk.
func (r *Result) Summaries() []string {
	out := make([]string, len(r.Hunks))
	for i, h := range r.Hunks {
		out[i] = h.Summary
	}
	return out
}

// Patch applies the patch file text to base.
//
// Hunks that can't be applied with the tolerance selected by [Tolerance] are reported in the
// result, they are not an error. Patch returns a [FormatError] for malformed patch files, a
// [ConsistencyError] if a hunk would overwrite another hunk's changes, and a [CapacityError] if the
// texts have too many distinct lines or words.
//
// The following options are supported: [Tolerance], [MinFuzz], [MaxOffset], [LenientHeaders],
// [Name]
func Patch(base []string, patch string, opts ...Option) (*Result, error) {
	cfg := config.FromOptions(opts, config.PatchFlags)
	f, err := patchfile.Parse(cfg.Name, patch, cfg.VerifyHeaders)
	if err != nil {
		return nil, err
	}
	fr, err := patcher.ApplyFile(base, f, cfg)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Lines:          fr.Lines,
		Reject:         patcher.Reject(fr.Results),
		Hunks:          make([]HunkResult, len(fr.Results)),
		Removed:        fr.Removed,
		EndChanged:     fr.EndChanged,
		MissingNewline: fr.MissingNewline,
	}
	for i := range fr.Results {
		r := &fr.Results[i]
		res.Hunks[i] = HunkResult{
			Header:        r.Patch.Header(),
			Success:       r.Success,
			Mode:          r.Mode,
			Offset:        r.Offset,
			OffsetWarning: r.OffsetWarning,
			Quality:       r.Quality(),
			Summary:       r.Summary(),
		}
	}
	return res, nil
}
