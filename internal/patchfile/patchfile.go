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

// Package patchfile reads and writes patch files.
//
// A patch file holds the hunks for a single file:
//
//	--- a/file.txt
//	+++ b/file.txt
//	@@ -1,3 +1,3 @@
//	 a
//	-b
//	+x
//	 c
//	\ No newline at end of file
//
// The header pair is optional. A hunk header may use "_" for the target start, in which case it is
// computed from the preceding hunks.
package patchfile

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"znkr.io/diffpatch/internal/hunk"
)

// DevNull is the path used for the missing side of an added or removed file.
const DevNull = "/dev/null"

// NoNewlineMarker follows the last line of a patch whose target text lacks a trailing newline.
const NoNewlineMarker = `\ No newline at end of file`

// File is a parsed patch file.
type File struct {
	// Name identifies the file in errors and summaries.
	Name string

	// Header paths, empty if the patch file has no header.
	BasePath, PatchedPath string

	// NoNewline is set if the patched text lacks a trailing newline.
	NoNewline bool

	Patches []*hunk.Patch
}

// Added reports whether the patch creates a new file.
func (f *File) Added() bool { return f.BasePath == DevNull }

// Removed reports whether the patch removes a file.
func (f *File) Removed() bool { return f.PatchedPath == DevNull }

// String returns the patch file text. If autoHeader is set, hunk headers use "_" as target start.
func (f *File) String(autoHeader bool) string {
	var sb strings.Builder
	f.Format(&sb, autoHeader)
	return sb.String()
}

// Format writes the patch file text to w, see [File.String]. Nothing is written if the file has
// no hunks.
func (f *File) Format(w io.Writer, autoHeader bool) error {
	if len(f.Patches) == 0 {
		return nil
	}
	bw := bufio.NewWriter(w)
	if f.BasePath != "" && f.PatchedPath != "" {
		fmt.Fprintf(bw, "--- %s\n+++ %s\n", f.BasePath, f.PatchedPath)
	}
	for _, p := range f.Patches {
		if autoHeader {
			bw.WriteString(p.AutoHeader())
		} else {
			bw.WriteString(p.Header())
		}
		bw.WriteByte('\n')
		for _, d := range p.Diffs {
			bw.WriteByte(d.Op.Prefix())
			bw.WriteString(d.Text)
			bw.WriteByte('\n')
		}
	}
	if f.NoNewline {
		bw.WriteString(NoNewlineMarker)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// FormatError is returned for malformed patch files.
type FormatError struct {
	Name string // File name
	Line int    // 1-based line number
	Text string // Offending line
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.Name, e.Line, e.Msg, e.Text)
}

var headerRE = regexp.MustCompile(`^@@ -(\d+),(\d+) \+(_|\d+),(\d+) @@`)

// Parse parses the patch file text. If verify is set, the target start of every hunk header must
// agree with the base start and the length changes of all preceding hunks.
func Parse(name, text string, verify bool) (*File, error) {
	f := &File{Name: name}
	lines := strings.Split(text, "\n")

	var (
		cur    *hunk.Patch
		curLen [2]int // lengths declared in the header of cur
		curNo  int    // line number of the header of cur
		delta  int
	)
	finish := func() error {
		if cur == nil {
			return nil
		}
		cur.RecalculateLength()
		if verify && (cur.Length1 != curLen[0] || cur.Length2 != curLen[1]) {
			return &FormatError{
				Name: name,
				Line: curNo,
				Text: lines[curNo-1],
				Msg:  fmt.Sprintf("hunk has %d base and %d target lines", cur.Length1, cur.Length2),
			}
		}
		delta += cur.Length2 - cur.Length1
		f.Patches = append(f.Patches, cur)
		cur = nil
		return nil
	}
	fail := func(i int, msg string) error {
		return &FormatError{Name: name, Line: i + 1, Text: lines[i], Msg: msg}
	}

	for i, line := range lines {
		if line == "" {
			continue
		}
		switch {
		case i == 0 && strings.HasPrefix(line, "--- "):
			f.BasePath = line[len("--- "):]
			continue
		case i == 1 && f.BasePath != "" && strings.HasPrefix(line, "+++ "):
			f.PatchedPath = line[len("+++ "):]
			continue
		}

		switch line[0] {
		case '@':
			if err := finish(); err != nil {
				return nil, err
			}
			m := headerRE.FindStringSubmatch(line)
			if m == nil {
				return nil, fail(i, "invalid hunk header")
			}
			nums, ok := atois(m[1], m[2], m[4])
			if !ok {
				return nil, fail(i, "invalid hunk header")
			}
			start1, length1, length2 := nums[0]-1, nums[1], nums[2]
			start2 := start1 + delta
			if m[3] != "_" {
				s, err := strconv.Atoi(m[3])
				if err != nil {
					return nil, fail(i, "invalid hunk header")
				}
				if verify && s-1 != start2 {
					return nil, fail(i, fmt.Sprintf("target start %d does not match preceding hunks, want %d", s, start2+1))
				}
				start2 = s - 1
			}
			if start1 < 0 || start2 < 0 {
				return nil, fail(i, "hunk starts before line 1")
			}
			cur = &hunk.Patch{Start1: start1, Start2: start2}
			curLen = [2]int{length1, length2}
			curNo = i + 1

		case ' ', '+', '-':
			if cur == nil {
				return nil, fail(i, "diff line outside of hunk")
			}
			op := hunk.Equal
			switch line[0] {
			case '+':
				op = hunk.Insert
			case '-':
				op = hunk.Delete
			}
			cur.Diffs = append(cur.Diffs, hunk.Diff{Op: op, Text: line[1:]})

		case '\\':
			if cur == nil {
				return nil, fail(i, "no newline marker outside of hunk")
			}
			f.NoNewline = true

		default:
			return nil, fail(i, "unexpected line")
		}
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return f, nil
}

func atois(strs ...string) ([]int, bool) {
	out := make([]int, len(strs))
	for i, s := range strs {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}
