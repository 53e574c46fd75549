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
	"errors"
	"strings"
	"testing"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/google/go-cmp/cmp"
	"znkr.io/diffpatch/internal/hunk"
)

func diffs(lines ...string) []hunk.Diff {
	out := make([]hunk.Diff, len(lines))
	for i, l := range lines {
		op := hunk.Equal
		switch l[0] {
		case '-':
			op = hunk.Delete
		case '+':
			op = hunk.Insert
		}
		out[i] = hunk.Diff{Op: op, Text: l[1:]}
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		verify bool
		want   *File
	}{
		{
			name:   "empty",
			text:   "",
			verify: true,
			want:   &File{Name: "f"},
		},
		{
			name: "header-and-hunks",
			text: `--- a/f
+++ b/f
@@ -1,3 +1,3 @@
 a
-b
+x
 c
@@ -10,2 +10,3 @@
 j
+k
 l
`,
			verify: true,
			want: &File{
				Name:        "f",
				BasePath:    "a/f",
				PatchedPath: "b/f",
				Patches: []*hunk.Patch{
					hunk.New(0, 0, diffs(" a", "-b", "+x", " c")),
					hunk.New(9, 9, diffs(" j", "+k", " l")),
				},
			},
		},
		{
			name: "auto-header",
			text: `@@ -1,2 +_,3 @@
 a
+b
 c
@@ -5,2 +_,1 @@
-e
 f
`,
			verify: true,
			want: &File{
				Name: "f",
				Patches: []*hunk.Patch{
					hunk.New(0, 0, diffs(" a", "+b", " c")),
					hunk.New(4, 5, diffs("-e", " f")),
				},
			},
		},
		{
			name: "no-newline",
			text: "@@ -1,1 +1,1 @@\n-a\n+b\n\\ No newline at end of file\n",
			want: &File{
				Name:      "f",
				NoNewline: true,
				Patches:   []*hunk.Patch{hunk.New(0, 0, diffs("-a", "+b"))},
			},
		},
		{
			name: "blank-lines-ignored",
			text: "\n@@ -1,1 +1,1 @@\n\n-a\n+b\n\n",
			want: &File{
				Name:    "f",
				Patches: []*hunk.Patch{hunk.New(0, 0, diffs("-a", "+b"))},
			},
		},
		{
			name: "lenient-target-start",
			text: "@@ -1,1 +1,1 @@\n-a\n+b\n@@ -5,1 +9,2 @@\n c\n+d\n",
			want: &File{
				Name: "f",
				Patches: []*hunk.Patch{
					hunk.New(0, 0, diffs("-a", "+b")),
					hunk.New(4, 8, diffs(" c", "+d")),
				},
			},
		},
		{
			name: "delete-line-looking-like-header",
			text: "--- a/f\n+++ b/f\n@@ -1,1 +1,0 @@\n--- x\n",
			want: &File{
				Name:        "f",
				BasePath:    "a/f",
				PatchedPath: "b/f",
				Patches:     []*hunk.Patch{hunk.New(0, 0, diffs("--- x"))},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse("f", tt.text, tt.verify)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(...) result is different [-want,+got]:\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "bad-header",
			text:     "@@ -1 +1 @@\n-a\n",
			wantLine: 1,
			wantMsg:  "invalid hunk header",
		},
		{
			name:     "underscore-in-number",
			text:     "@@ -1,1 +1_2,1 @@\n-a\n+b\n",
			wantLine: 1,
			wantMsg:  "invalid hunk header",
		},
		{
			name:     "number-overflow",
			text:     "@@ -99999999999999999999,1 +1,1 @@\n-a\n+b\n",
			wantLine: 1,
			wantMsg:  "invalid hunk header",
		},
		{
			name:     "diff-outside-hunk",
			text:     "-a\n",
			wantLine: 1,
			wantMsg:  "diff line outside of hunk",
		},
		{
			name:     "late-file-header",
			text:     "@@ -1,1 +1,1 @@\n-a\n+b\n+++ b/f\n@@ -3,1 +3,1 @@\n",
			wantLine: 1,
			wantMsg:  "hunk has 1 base and 2 target lines",
		},
		{
			name:     "unexpected-line",
			text:     "@@ -1,1 +1,1 @@\n-a\n+b\ngarbage\n",
			wantLine: 4,
			wantMsg:  "unexpected line",
		},
		{
			name:     "target-start-mismatch",
			text:     "@@ -1,1 +1,2 @@\n-a\n+b\n+c\n@@ -5,1 +5,1 @@\n-e\n+f\n",
			wantLine: 5,
			wantMsg:  "target start 5 does not match preceding hunks, want 6",
		},
		{
			name:     "length-mismatch",
			text:     "@@ -1,2 +1,1 @@\n-a\n+b\n",
			wantLine: 1,
			wantMsg:  "hunk has 1 base and 1 target lines",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse("f", tt.text, true)
			var ferr *FormatError
			if !errors.As(err, &ferr) {
				t.Fatalf("Parse error = %v, want FormatError", err)
			}
			if ferr.Name != "f" || ferr.Line != tt.wantLine || ferr.Msg != tt.wantMsg {
				t.Errorf("Parse error = %v, want f:%d: %s", err, tt.wantLine, tt.wantMsg)
			}
		})
	}
}

func TestString(t *testing.T) {
	f := &File{
		BasePath:    "a/f",
		PatchedPath: "b/f",
		NoNewline:   true,
		Patches: []*hunk.Patch{
			hunk.New(0, 0, diffs(" a", "+b", " c")),
			hunk.New(4, 5, diffs("-e", " f")),
		},
	}

	want := "--- a/f\n+++ b/f\n@@ -1,2 +1,3 @@\n a\n+b\n c\n@@ -5,2 +6,1 @@\n-e\n f\n\\ No newline at end of file\n"
	if got := f.String(false); got != want {
		t.Errorf("String(false) = %q, want %q", got, want)
	}
	want = strings.ReplaceAll(strings.ReplaceAll(want, "+1,3", "+_,3"), "+6,1", "+_,1")
	if got := f.String(true); got != want {
		t.Errorf("String(true) = %q, want %q", got, want)
	}

	for _, autoHeader := range []bool{false, true} {
		got, err := Parse("", f.String(autoHeader), true)
		if err != nil {
			t.Fatalf("Parse(String(%v)) failed: %v", autoHeader, err)
		}
		if diff := cmp.Diff(f, got); diff != "" {
			t.Errorf("Parse(String(%v)) is different [-want,+got]:\n%s", autoHeader, diff)
		}
	}

	if got := (&File{BasePath: "a/f", PatchedPath: "b/f"}).String(false); got != "" {
		t.Errorf("String() without patches = %q, want empty", got)
	}
}

// Patch files are standard unified diffs as long as no hunk has an empty base range.
func TestStringIsUnifiedDiff(t *testing.T) {
	f := &File{
		BasePath:    "a/f",
		PatchedPath: "b/f",
		Patches: []*hunk.Patch{
			hunk.New(0, 0, diffs(" a", "-b", "+x", "+y", " c")),
			hunk.New(9, 10, diffs(" j", "-k", " l")),
		},
	}
	files, _, err := gitdiff.Parse(strings.NewReader(f.String(false)))
	if err != nil {
		t.Fatalf("gitdiff.Parse failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("gitdiff.Parse returned %d files, want 1", len(files))
	}
	frags := files[0].TextFragments
	if len(frags) != len(f.Patches) {
		t.Fatalf("gitdiff.Parse returned %d fragments, want %d", len(frags), len(f.Patches))
	}
	for i, p := range f.Patches {
		got := [4]int64{frags[i].OldPosition, frags[i].OldLines, frags[i].NewPosition, frags[i].NewLines}
		want := [4]int64{int64(p.Start1 + 1), int64(p.Length1), int64(p.Start2 + 1), int64(p.Length2)}
		if got != want {
			t.Errorf("fragment %d = %v, want %v", i, got, want)
		}
	}
}

func TestFromGit(t *testing.T) {
	const patch = `diff --git a/changed.txt b/changed.txt
index 1111111..2222222 100644
--- a/changed.txt
+++ b/changed.txt
@@ -1,3 +1,3 @@
 a
-b
+x
 c
diff --git a/added.txt b/added.txt
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/added.txt
@@ -0,0 +1,2 @@
+one
+two
\ No newline at end of file
diff --git a/removed.txt b/removed.txt
deleted file mode 100644
index 4444444..0000000
--- a/removed.txt
+++ /dev/null
@@ -1 +0,0 @@
-gone
`
	got, err := FromGit(strings.NewReader(patch))
	if err != nil {
		t.Fatalf("FromGit failed: %v", err)
	}
	want := []*File{
		{
			Name:        "changed.txt",
			BasePath:    "a/changed.txt",
			PatchedPath: "b/changed.txt",
			Patches:     []*hunk.Patch{hunk.New(0, 0, diffs(" a", "-b", "+x", " c"))},
		},
		{
			Name:        "added.txt",
			BasePath:    DevNull,
			PatchedPath: "b/added.txt",
			NoNewline:   true,
			Patches:     []*hunk.Patch{hunk.New(0, 0, diffs("+one", "+two"))},
		},
		{
			Name:        "removed.txt",
			BasePath:    "a/removed.txt",
			PatchedPath: DevNull,
			Patches:     []*hunk.Patch{hunk.New(0, 0, diffs("-gone"))},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromGit(...) result is different [-want,+got]:\n%s", diff)
	}
	if !got[1].Added() || got[1].Removed() || !got[2].Removed() {
		t.Errorf("Added/Removed flags are wrong: added=%v/%v removed=%v", got[1].Added(), got[1].Removed(), got[2].Removed())
	}
}
