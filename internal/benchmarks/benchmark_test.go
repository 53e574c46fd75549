package benchmarks

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

type testdata struct {
	name string
	x, y []byte
}

func loadTestdata(t testing.TB) []testdata {
	t.Helper()
	testFiles, err := filepath.Glob("../../textdiff/testdata/*.test")
	if err != nil {
		t.Fatalf("Failed to read testdata: %v", err)
	}
	var tests []testdata
	for _, filename := range testFiles {
		ar, err := txtar.ParseFile(filename)
		if err != nil {
			t.Fatalf("failed to parse test case: %v", err)
		}
		test := testdata{
			name: strings.TrimSuffix(filepath.Base(filename), ".test"),
		}

		for _, f := range ar.Files {
			switch f.Name {
			case "x":
				test.x = f.Data
			case "y":
				test.y = f.Data
			}
		}
		tests = append(tests, test)
	}
	return tests
}

// drift inserts a line every n lines of x.
func drift(x []byte, n int) []byte {
	var out []byte
	for i, line := range bytes.SplitAfter(x, []byte("\n")) {
		if i > 0 && i%n == 0 {
			out = append(out, "drift\n"...)
		}
		out = append(out, line...)
	}
	return out
}

func BenchmarkDiffs(b *testing.B) {
	for _, impl := range Impls {
		b.Run("impl="+impl.Name, func(b *testing.B) {
			for _, td := range loadTestdata(b) {
				b.Run("name="+td.name, func(b *testing.B) {
					for b.Loop() {
						_ = impl.Diff(td.x, td.y)
					}
					b.StopTimer()

					out := impl.Diff(td.x, td.y)
					edits := 0
					for _, line := range bytes.Split(out, []byte("\n")) {
						if bytes.HasPrefix(line, []byte{'+'}) || bytes.HasPrefix(line, []byte{'-'}) {
							edits++
						}
					}
					b.ReportMetric(float64(edits), "edits")
				})
			}
		})
	}
}

func BenchmarkPatches(b *testing.B) {
	for _, impl := range PatchImpls {
		b.Run("impl="+impl.Name, func(b *testing.B) {
			for _, td := range loadTestdata(b) {
				drifted := drift(td.x, 4)
				b.Run("name="+td.name, func(b *testing.B) {
					for b.Loop() {
						_, _ = impl.Patch(td.x, td.y, drifted)
					}
					b.StopTimer()

					_, ok := impl.Patch(td.x, td.y, drifted)
					applied := 0.0
					if ok {
						applied = 1
					}
					b.ReportMetric(applied, "applied")
				})
			}
		})
	}
}
