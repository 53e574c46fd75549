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
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"znkr.io/diffpatch/internal/charrep"
	"znkr.io/diffpatch/internal/config"
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

func numbered(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("line %d", i)
	}
	return out
}

func withMode(mode config.Mode) config.Config {
	cfg := config.Default
	cfg.Name = "test.txt"
	cfg.Mode = mode
	return cfg
}

func apply(t *testing.T, lines []string, patches []*hunk.Patch, cfg config.Config) *Patcher {
	t.Helper()
	p := New(lines, patches, cfg)
	if err := p.Apply(); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	return p
}

type outcome struct {
	Success bool
	Mode    config.Mode
	Offset  int
	Summary string
}

func outcomes(results []Result) []outcome {
	out := make([]outcome, len(results))
	for i := range results {
		r := &results[i]
		out[i] = outcome{r.Success, r.Mode, r.Offset, r.Summary()}
	}
	return out
}

func TestApply(t *testing.T) {
	fuzzyBase := []string{
		"// header",
		"func main() {",
		`	fmt.Println("hello, world")`,
		"	x := compute(1, 2)",
		"	return x",
		"}",
	}
	fuzzyPatch := hunk.New(0, 0, diffs(
		" func main() {",
		` 	fmt.Println("hello")`,
		"-	x := compute(1, 2)",
		"+	x := compute(1, 3)",
		" 	return x",
		" }",
	))

	accessBase := []string{"public class Foo {", "  private final int x;", "}"}
	accessPatch := hunk.New(0, 0, diffs(" class Foo {", "-  int x;", "+  int y;", " }"))

	far := numbered(30)
	far[25] = "x"

	tests := []struct {
		name    string
		lines   []string
		patches []*hunk.Patch
		mode    config.Mode
		want    []string
		wantRes []outcome
	}{
		{
			name:    "file-added",
			lines:   nil,
			patches: []*hunk.Patch{hunk.New(0, 0, diffs("+a", "+b"))},
			mode:    config.ModeExact,
			want:    []string{"a", "b"},
			wantRes: []outcome{{true, config.ModeExact, 0, "EXACT: @@ -1,0 +1,2 @@"}},
		},
		{
			name:    "file-removed",
			lines:   []string{"a", "b"},
			patches: []*hunk.Patch{hunk.New(0, 0, diffs("-a", "-b"))},
			mode:    config.ModeExact,
			want:    []string{},
			wantRes: []outcome{{true, config.ModeExact, 0, "EXACT: @@ -1,2 +1,0 @@"}},
		},
		{
			name:  "exact-two-hunks",
			lines: numbered(20),
			patches: []*hunk.Patch{
				hunk.New(1, 1, diffs(" line 1", "+new", " line 2")),
				hunk.New(10, 11, diffs(" line 10", "-line 11", " line 12")),
			},
			mode: config.ModeExact,
			want: slices.Concat(numbered(2), []string{"new"}, numbered(20)[2:11], numbered(20)[12:]),
			wantRes: []outcome{
				{true, config.ModeExact, 0, "EXACT: @@ -2,2 +2,3 @@"},
				{true, config.ModeExact, 0, "EXACT: @@ -11,3 +12,2 @@"},
			},
		},
		{
			name:    "offset-needs-offset-mode",
			lines:   append([]string{"prepended"}, numbered(10)...),
			patches: []*hunk.Patch{hunk.New(2, 2, diffs(" line 2", " line 3", " line 4", "-line 5", "+changed", " line 6", " line 7", " line 8"))},
			mode:    config.ModeAccess,
			want:    append([]string{"prepended"}, numbered(10)...),
			wantRes: []outcome{{false, config.ModeNone, 0, "FAILURE: @@ -3,7 +3,7 @@"}},
		},
		{
			name:    "offset",
			lines:   append([]string{"prepended"}, numbered(10)...),
			patches: []*hunk.Patch{hunk.New(2, 2, diffs(" line 2", " line 3", " line 4", "-line 5", "+changed", " line 6", " line 7", " line 8"))},
			mode:    config.ModeOffset,
			want:    []string{"prepended", "line 0", "line 1", "line 2", "line 3", "line 4", "changed", "line 6", "line 7", "line 8", "line 9"},
			wantRes: []outcome{{true, config.ModeOffset, 1, "OFFSET: @@ -3,7 +3,7 @@ offset 1"}},
		},
		{
			name:  "offset-carries-to-later-hunks",
			lines: append([]string{"prepended"}, numbered(20)...),
			patches: []*hunk.Patch{
				hunk.New(2, 2, diffs(" line 2", "-line 3", " line 4")),
				hunk.New(12, 11, diffs(" line 12", "-line 13", " line 14")),
			},
			mode: config.ModeOffset,
			want: slices.Concat([]string{"prepended"}, numbered(20)[:3], numbered(20)[4:13], numbered(20)[14:]),
			wantRes: []outcome{
				{true, config.ModeOffset, 1, "OFFSET: @@ -3,3 +3,2 @@ offset 1"},
				{true, config.ModeExact, 0, "EXACT: @@ -13,3 +12,2 @@"},
			},
		},
		{
			name:    "offset-warning",
			lines:   far,
			patches: []*hunk.Patch{hunk.New(0, 0, diffs("-x", "+y"))},
			mode:    config.ModeOffset,
			want:    slices.Concat(far[:25], []string{"y"}, far[26:]),
			wantRes: []outcome{{true, config.ModeOffset, 25, "WARNING: @@ -1,1 +1,1 @@ offset 25"}},
		},
		{
			name:    "access",
			lines:   accessBase,
			patches: []*hunk.Patch{accessPatch},
			mode:    config.ModeAccess,
			want:    []string{"public class Foo {", "  int y;", "}"},
			wantRes: []outcome{{true, config.ModeAccess, 0, "ACCESS: @@ -1,3 +1,3 @@"}},
		},
		{
			name:    "access-needs-access-mode",
			lines:   accessBase,
			patches: []*hunk.Patch{accessPatch},
			mode:    config.ModeExact,
			want:    accessBase,
			wantRes: []outcome{{false, config.ModeNone, 0, "FAILURE: @@ -1,3 +1,3 @@"}},
		},
		{
			name:    "fuzzy",
			lines:   fuzzyBase,
			patches: []*hunk.Patch{fuzzyPatch},
			mode:    config.ModeFuzzy,
			want: []string{
				"// header",
				"func main() {",
				`	fmt.Println("hello, world")`,
				"	x := compute(1, 3)",
				"	return x",
				"}",
			},
			wantRes: []outcome{{true, config.ModeFuzzy, 1, "FUZZY: @@ -1,5 +1,5 @@ quality 90% offset 1"}},
		},
		{
			name:    "fuzzy-needs-fuzzy-mode",
			lines:   fuzzyBase,
			patches: []*hunk.Patch{fuzzyPatch},
			mode:    config.ModeOffset,
			want:    fuzzyBase,
			wantRes: []outcome{{false, config.ModeNone, 0, "FAILURE: @@ -1,5 +1,5 @@"}},
		},
		{
			name:  "failure-corrects-search-offset",
			lines: numbered(20),
			patches: []*hunk.Patch{
				hunk.New(1, 1, diffs(" missing", "+a", "+b", " line 2")),
				hunk.New(10, 12, diffs(" line 10", "-line 11", " line 12")),
			},
			mode: config.ModeExact,
			want: slices.Concat(numbered(20)[:11], numbered(20)[12:]),
			wantRes: []outcome{
				{false, config.ModeNone, 0, "FAILURE: @@ -2,2 +2,4 @@"},
				{true, config.ModeExact, 0, "EXACT: @@ -11,3 +13,2 @@"},
			},
		},
		{
			name:  "reordered",
			lines: numbered(30),
			patches: []*hunk.Patch{
				hunk.New(20, 20, diffs(" line 20", "+inserted A", " line 21")),
				hunk.New(5, 5, diffs(" line 5", "+inserted B", " line 6")),
			},
			mode: config.ModeExact,
			want: slices.Concat(numbered(30)[:6], []string{"inserted B"}, numbered(30)[6:21], []string{"inserted A"}, numbered(30)[21:]),
			wantRes: []outcome{
				{true, config.ModeExact, 0, "EXACT: @@ -21,2 +21,3 @@"},
				{true, config.ModeExact, 0, "EXACT: @@ -6,2 +6,3 @@"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := apply(t, tt.lines, tt.patches, withMode(tt.mode))
			if diff := cmp.Diff(tt.want, p.Lines()); diff != "" {
				t.Errorf("patched lines are different [-want,+got]:\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantRes, outcomes(p.Results())); diff != "" {
				t.Errorf("results are different [-want,+got]:\n%s", diff)
			}
		})
	}
}

func TestApplyReorderedBookkeeping(t *testing.T) {
	p := apply(t, numbered(30), []*hunk.Patch{
		hunk.New(20, 20, diffs(" line 20", "+inserted A", " line 21")),
		hunk.New(5, 5, diffs(" line 5", "+inserted B", " line 6")),
	}, withMode(config.ModeExact))

	res := p.Results()
	a, b := res[0].Applied, res[1].Applied
	if a.Start2 != 21 {
		t.Errorf("first hunk applied at %d, want 21", a.Start2)
	}
	if got := p.Lines()[a.Start2 : a.Start2+a.Length2]; !slices.Equal(got, a.PatchedLines()) {
		t.Errorf("first hunk points at %q, want %q", got, a.PatchedLines())
	}
	if b.Start1 != 5 || b.Start2 != 5 {
		t.Errorf("second hunk applied at -%d +%d, want -5 +5", b.Start1, b.Start2)
	}
	if p.lastApplied != p.patches[0] {
		t.Error("reordered hunk became the last applied hunk")
	}
}

func TestReject(t *testing.T) {
	cfg := withMode(config.ModeFuzzy)
	cfg.MinFuzz = 0.9
	lines := []string{"alpha", "beta", "gamma", "delta"}
	p := apply(t, lines, []*hunk.Patch{hunk.New(0, 0, diffs(" one", " two", "-three", "+3", " four"))}, cfg)

	if diff := cmp.Diff(lines, p.Lines()); diff != "" {
		t.Errorf("patched lines are different [-want,+got]:\n%s", diff)
	}
	res := p.Results()
	if res[0].Success {
		t.Fatal("hunk was applied, want failure")
	}
	want := "++++ REJECTED HUNK: 1\n@@ -1,4 +1,4 @@\n one\n two\n-three\n+3\n four\n"
	if got := Reject(res); got != want {
		t.Errorf("Reject() = %q, want %q", got, want)
	}
	if got := res[0].Quality(); got != 0 {
		t.Errorf("Quality() = %v, want 0", got)
	}
}

func TestQuality(t *testing.T) {
	p := apply(t, []string{
		"// header",
		"func main() {",
		`	fmt.Println("hello, world")`,
		"	x := compute(1, 2)",
		"	return x",
		"}",
		"a",
		"b",
		"c",
	}, []*hunk.Patch{
		hunk.New(0, 0, diffs(
			" func main() {",
			` 	fmt.Println("hello")`,
			"-	x := compute(1, 2)",
			"+	x := compute(1, 3)",
			" 	return x",
			" }",
		)),
		hunk.New(7, 7, diffs(" b", "-c", "+C")),
		hunk.New(20, 20, diffs(" nowhere", "+x")),
	}, withMode(config.ModeFuzzy))

	res := p.Results()
	got := []float64{res[0].Quality(), res[1].Quality(), res[2].Quality()}
	if diff := cmp.Diff([]float64{0.9, 1, 0}, got); diff != "" {
		t.Errorf("qualities are different [-want,+got]:\n%s", diff)
	}
	if got := Reject(res); !strings.HasPrefix(got, "++++ REJECTED HUNK: 3\n") {
		t.Errorf("Reject() = %q, want rejected hunk 3", got)
	}
}

func TestConsistencyError(t *testing.T) {
	p := New([]string{"a", "b", "c"}, []*hunk.Patch{
		hunk.New(0, 0, diffs(" a", "-b", "+x", " c")),
		hunk.New(1, 1, diffs("-x", "+y")),
	}, withMode(config.ModeExact))
	err := p.Apply()
	var cerr *ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("Apply error = %v, want ConsistencyError", err)
	}
	want := &ConsistencyError{Name: "test.txt", Header: "@@ -2,1 +2,1 @@", Msg: "patch affects another patch"}
	if diff := cmp.Diff(want, cerr); diff != "" {
		t.Errorf("ConsistencyError is different [-want,+got]:\n%s", diff)
	}
}

func TestConsistencyErrorAcrossDeletion(t *testing.T) {
	// The second hunk deletes lines on both sides of the line removed by the first one.
	p := New([]string{"a", "b", "c", "d", "e"}, []*hunk.Patch{
		hunk.New(0, 0, diffs(" a", " b", "-c", " d", " e")),
		hunk.New(0, 0, diffs(" a", "-b", "-d", " e")),
	}, withMode(config.ModeExact))
	err := p.Apply()
	var cerr *ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("Apply error = %v, want ConsistencyError", err)
	}
	want := &ConsistencyError{Name: "test.txt", Header: "@@ -1,4 +1,2 @@", Msg: "patch affects another patch"}
	if diff := cmp.Diff(want, cerr); diff != "" {
		t.Errorf("ConsistencyError is different [-want,+got]:\n%s", diff)
	}
}

func TestApplyOnce(t *testing.T) {
	p := New([]string{"a"}, nil, withMode(config.ModeExact))
	if err := p.Apply(); err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}
	if err := p.Apply(); !errors.Is(err, ErrAlreadyApplied) {
		t.Errorf("second Apply error = %v, want ErrAlreadyApplied", err)
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	lines := []string{"a", "b", "c"}
	apply(t, lines, []*hunk.Patch{hunk.New(0, 0, diffs(" a", "-b", "+x", " c"))}, withMode(config.ModeExact))
	if diff := cmp.Diff([]string{"a", "b", "c"}, lines); diff != "" {
		t.Errorf("input lines were modified [-want,+got]:\n%s", diff)
	}
}

func TestCapacity(t *testing.T) {
	lines := make([]string, charrep.DefaultLimit)
	for i := range lines {
		lines[i] = fmt.Sprint(i)
	}
	p := New(lines, []*hunk.Patch{hunk.New(0, 0, diffs(" missing", "+x"))}, withMode(config.ModeOffset))
	var cerr *charrep.CapacityError
	if err := p.Apply(); !errors.As(err, &cerr) {
		t.Errorf("Apply error = %v, want CapacityError", err)
	}
}
