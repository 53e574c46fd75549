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

// Package diffpatch computes line diffs between two texts, writes them as patch files, and applies
// patch files to texts that may have changed since the diff was taken.
//
// [Diff] compares two texts line by line with patience diff and returns the patch file text. [Patch]
// applies a patch file. Every hunk is tried with increasingly permissive strategies, up to the
// tolerance selected with [Tolerance]:
//
//   - [Exact]: the context lines match at the expected location
//   - [Access]: the context lines match at the expected location if access modifiers
//     (public, protected, private, final) and whitespace are ignored
//   - [Offset]: the context lines match exactly somewhere else in the text
//   - [Fuzzy]: the context lines are similar to lines near the expected location
//
// Hunks that can't be applied are collected in [Result.Reject]. They are not an error.
//
// Note: For diffs of text with trailing newline handling, please see [znkr.io/diffpatch/textdiff].
//
// [znkr.io/diffpatch/textdiff]: https://pkg.go.dev/znkr.io/diffpatch/textdiff
package diffpatch
