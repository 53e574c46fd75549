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
	"znkr.io/diffpatch/internal/config"
	"znkr.io/diffpatch/internal/patchfile"
)

// FileResult is the outcome of applying a patch file.
type FileResult struct {
	Lines   []string
	Results []Result

	// Removed is set if the patch file removes the file.
	Removed bool

	// EndChanged is set if a hunk touched the last line of the patched text. Fuzzy matched hunks
	// are not considered.
	EndChanged bool

	// MissingNewline is set if the patch file marks the patched text as lacking a trailing
	// newline.
	MissingNewline bool
}

// ApplyFile applies all hunks of f to lines.
func ApplyFile(lines []string, f *patchfile.File, cfg config.Config) (*FileResult, error) {
	if cfg.Name == "" {
		cfg.Name = f.Name
	}
	p := New(lines, f.Patches, cfg)
	if err := p.Apply(); err != nil {
		return nil, err
	}
	res := &FileResult{
		Lines:          p.Lines(),
		Results:        p.Results(),
		Removed:        f.Removed(),
		MissingNewline: f.NoNewline,
	}
	for i := range res.Results {
		r := &res.Results[i]
		// TODO: carry the end of text through fuzzy matches once adjusted hunks keep track of
		// the no newline marker.
		if r.Success && r.Mode != config.ModeFuzzy && r.Applied.Range2().End == len(res.Lines) {
			res.EndChanged = true
		}
	}
	return res, nil
}
