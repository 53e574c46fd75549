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

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"znkr.io/diffpatch"
	"znkr.io/diffpatch/internal/config"
)

func TestFromOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    []config.Option
		allowed config.Flag
		want    func(cfg *config.Config)
	}{
		{
			name:    "default",
			allowed: config.DiffFlags,
		},
		{
			name:    "context",
			opts:    []config.Option{diffpatch.Context(5)},
			allowed: config.DiffFlags,
			want:    func(cfg *config.Config) { cfg.Context = 5 },
		},
		{
			name:    "negative-context",
			opts:    []config.Option{diffpatch.Context(-1)},
			allowed: config.DiffFlags,
			want:    func(cfg *config.Config) { cfg.Context = 0 },
		},
		{
			name:    "diff-flags",
			opts:    []config.Option{diffpatch.AutoHeader(), diffpatch.Uncollated(), diffpatch.LineMatched(), diffpatch.Paths("a/x", "b/x")},
			allowed: config.DiffFlags,
			want: func(cfg *config.Config) {
				cfg.AutoHeader = true
				cfg.Collate = false
				cfg.LineMatched = true
				cfg.BasePath = "a/x"
				cfg.PatchedPath = "b/x"
			},
		},
		{
			name:    "patch-flags",
			opts:    []config.Option{diffpatch.Tolerance(diffpatch.Fuzzy), diffpatch.MinFuzz(0.8), diffpatch.MaxOffset(2), diffpatch.LenientHeaders(), diffpatch.Name("x.go")},
			allowed: config.PatchFlags,
			want: func(cfg *config.Config) {
				cfg.Mode = config.ModeFuzzy
				cfg.MinFuzz = 0.8
				cfg.MaxOffset = 2
				cfg.VerifyHeaders = false
				cfg.Name = "x.go"
			},
		},
		{
			name:    "last-wins",
			opts:    []config.Option{diffpatch.Context(5), diffpatch.Context(1)},
			allowed: config.DiffFlags,
			want:    func(cfg *config.Config) { cfg.Context = 1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := config.Default
			if tt.want != nil {
				tt.want(&want)
			}
			got := config.FromOptions(tt.opts, tt.allowed)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("FromOptions(...) result are different [-want,+got]:\n%s", diff)
			}
		})
	}
}

func TestFromOptionsNotAllowed(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("FromOptions did not panic")
		}
		if got, want := r, "Option diffpatch.Tolerance not allowed here"; got != want {
			t.Errorf("FromOptions panicked with %q, want %q", got, want)
		}
	}()
	config.FromOptions([]config.Option{diffpatch.Tolerance(diffpatch.Offset)}, config.DiffFlags)
}

func TestParseMode(t *testing.T) {
	for _, m := range []config.Mode{config.ModeExact, config.ModeAccess, config.ModeOffset, config.ModeFuzzy} {
		for _, s := range []string{m.String(), strings.ToLower(m.String()), strings.ToUpper(m.String())} {
			got, err := config.ParseMode(s)
			if err != nil {
				t.Errorf("ParseMode(%q) failed: %v", s, err)
				continue
			}
			if got != m {
				t.Errorf("ParseMode(%q) = %v, want %v", s, got, m)
			}
		}
	}
	for _, s := range []string{"", "none", "fuzz", "exact "} {
		if _, err := config.ParseMode(s); err == nil {
			t.Errorf("ParseMode(%q) succeeded, want error", s)
		}
	}
}

func TestParseFile(t *testing.T) {
	f, err := config.Parse(`
jobs = 4

[diff]
context = 1
collate = false

[patch]
mode = "Offset"
max_offset = 7
verify_headers = false
`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f.Jobs != 4 {
		t.Errorf("Jobs = %d, want 4", f.Jobs)
	}

	got := config.FromOptions(append(f.DiffOptions(), f.PatchOptions()...), config.DiffFlags|config.PatchFlags)
	want := config.Default
	want.Context = 1
	want.Collate = false
	want.Mode = config.ModeOffset
	want.MaxOffset = 7
	want.VerifyHeaders = false
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("options from file are different [-want,+got]:\n%s", diff)
	}
}

func TestParseFileErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unknown-key", "[diff]\ncontex = 1\n", "unknown keys: diff.contex"},
		{"unknown-mode", "[patch]\nmode = \"wild\"\n", "patch.mode"},
		{"negative-context", "[diff]\ncontext = -2\n", "diff.context"},
		{"fuzz-range", "[patch]\nmin_fuzz = 1.5\n", "patch.min_fuzz"},
		{"syntax", "[diff\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse(tt.in)
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diffpatch.toml")
	if err := os.WriteFile(path, []byte("[patch]\nmode = \"fuzzy\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if f.Patch.Mode != "fuzzy" {
		t.Errorf("Patch.Mode = %q, want %q", f.Patch.Mode, "fuzzy")
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load of missing file succeeded, want error")
	}
}
