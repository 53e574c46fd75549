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

// Package textdiff compares and patches text line by line.
//
// Unlike the line based functions in [znkr.io/diffpatch], the functions in this package keep
// track of a missing newline at the end of a text: Diff emits a "\ No newline at end of file"
// marker and Patch restores the trailing newline state.
package textdiff

import (
	"strings"

	"znkr.io/diffpatch"
	"znkr.io/diffpatch/internal/byteview"
	"znkr.io/diffpatch/internal/config"
	"znkr.io/diffpatch/internal/differ"
)

// Diff compares the lines in x and y and returns the patch file text that turns x into y, or ""
// if they are identical.
//
// The following options are supported: [diffpatch.Context], [diffpatch.AutoHeader],
// [diffpatch.Uncollated], [diffpatch.LineMatched], [diffpatch.Paths], [diffpatch.Name]
func Diff(x, y string, opts ...diffpatch.Option) (string, error) {
	return diff[string](byteview.From(x), byteview.From(y), opts)
}

// DiffBytes is like [Diff] but for byte slices.
func DiffBytes(x, y []byte, opts ...diffpatch.Option) ([]byte, error) {
	return diff[[]byte](byteview.From(x), byteview.From(y), opts)
}

func diff[T string | []byte](x, y byteview.ByteView, opts []diffpatch.Option) (T, error) {
	cfg := config.FromOptions(opts, config.DiffFlags)

	// Lines keep their newline while diffing. That way, a last line without a newline never
	// matches a line with one and ends up in a hunk.
	xlines, _ := byteview.SplitLines(x)
	ylines, missingNewline := byteview.SplitLines(y)
	f, err := differ.File(byteview.Strings(xlines, false), byteview.Strings(ylines, false), cfg)
	if err != nil {
		var zero T
		return zero, err
	}
	for _, p := range f.Patches {
		for i := range p.Diffs {
			p.Diffs[i].Text = strings.TrimSuffix(p.Diffs[i].Text, "\n")
		}
	}
	if n := len(f.Patches); n > 0 && missingNewline >= 0 {
		last := f.Patches[n-1]
		f.NoNewline = last.Range2().End == len(ylines)
	}

	var b byteview.Builder[T]
	b.Grow(x.Len() + y.Len())
	if err := f.Format(&b, cfg.AutoHeader); err != nil {
		var zero T
		return zero, err
	}
	return b.Build(), nil
}

// Patch applies the patch file text to x and returns the patched text together with a report of
// how every hunk was applied.
//
// The patched text lacks a trailing newline if a hunk changed the end of the text and the patch
// is marked with "\ No newline at end of file", or if no hunk changed the end and x lacks a
// trailing newline.
//
// The following options are supported: [diffpatch.Tolerance], [diffpatch.MinFuzz],
// [diffpatch.MaxOffset], [diffpatch.LenientHeaders], [diffpatch.Name]
func Patch(x, patch string, opts ...diffpatch.Option) (string, *diffpatch.Result, error) {
	return apply[string](x, patch, opts)
}

// PatchBytes is like [Patch] but for byte slices.
func PatchBytes(x, patch []byte, opts ...diffpatch.Option) ([]byte, *diffpatch.Result, error) {
	// The result keeps the lines, they must not share memory with x.
	return apply[[]byte](string(x), string(patch), opts)
}

func apply[T string | []byte](x, patch string, opts []diffpatch.Option) (T, *diffpatch.Result, error) {
	lines, missingNewline := byteview.SplitLines(byteview.From(x))
	res, err := diffpatch.Patch(byteview.Strings(lines, true), patch, opts...)
	if err != nil {
		var zero T
		return zero, nil, err
	}
	return Join[T](res.Lines, NoNewline(res, missingNewline >= 0)), res, nil
}

// NoNewline reports whether the text patched to res lacks a trailing newline, given whether the
// original text lacked one.
func NoNewline(res *diffpatch.Result, baseNoNewline bool) bool {
	if res.EndChanged {
		return res.MissingNewline
	}
	return baseNoNewline
}

// Join joins lines with newlines. Unless noNewline is set, the last line ends with a newline as
// well.
func Join[T string | []byte](lines []string, noNewline bool) T {
	var b byteview.Builder[T]
	n := len(lines)
	for _, l := range lines {
		n += len(l)
	}
	b.Grow(n)
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l)
	}
	if len(lines) > 0 && !noNewline {
		b.WriteByte('\n')
	}
	return b.Build()
}

