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

package patchfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"znkr.io/diffpatch/internal/hunk"
)

// FromGit splits a multi-file git patch into one patch file per changed file. Added and removed
// files use [DevNull] for the missing side. Binary patches are rejected.
func FromGit(r io.Reader) ([]*File, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing git patch: %w", err)
	}
	out := make([]*File, 0, len(files))
	for _, gf := range files {
		f, err := fromGitFile(gf)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func fromGitFile(gf *gitdiff.File) (*File, error) {
	f := &File{
		Name:        gf.NewName,
		BasePath:    "a/" + gf.OldName,
		PatchedPath: "b/" + gf.NewName,
	}
	if gf.IsNew {
		f.BasePath = DevNull
	}
	if gf.IsDelete {
		f.Name = gf.OldName
		f.PatchedPath = DevNull
	}
	if gf.IsBinary {
		return nil, fmt.Errorf("%s: binary patches are not supported", f.Name)
	}

	for _, frag := range gf.TextFragments {
		// Unified diffs name the line before an empty range.
		start1, start2 := int(frag.OldPosition), int(frag.NewPosition)
		if frag.OldLines > 0 {
			start1--
		}
		if frag.NewLines > 0 {
			start2--
		}
		diffs := make([]hunk.Diff, 0, len(frag.Lines))
		for _, l := range frag.Lines {
			var op hunk.Op
			switch l.Op {
			case gitdiff.OpContext:
				op = hunk.Equal
			case gitdiff.OpAdd:
				op = hunk.Insert
			case gitdiff.OpDelete:
				op = hunk.Delete
			}
			text, ok := strings.CutSuffix(l.Line, "\n")
			if !ok && op != hunk.Delete {
				f.NoNewline = true
			}
			diffs = append(diffs, hunk.Diff{Op: op, Text: text})
		}
		f.Patches = append(f.Patches, hunk.New(start1, start2, diffs))
	}
	return f, nil
}
