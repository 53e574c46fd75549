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

// Package fileset diffs and patches whole directory trees.
//
// Files are identified by their slash separated path relative to the tree root. Per file work runs
// concurrently, results are always returned in path order.
package fileset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
	"znkr.io/diffpatch"
	"znkr.io/diffpatch/internal/patchfile"
	"znkr.io/diffpatch/textdiff"
)

// Index returns the sorted relative paths of all regular files below root. A missing root is
// treated as an empty tree.
func Index(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", root, err)
	}
	slices.Sort(out)
	return out, nil
}

func limit(jobs int) int {
	if jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return jobs
}

// readFile reads the file at rel below root. A missing file reads as empty.
func readFile(root, rel string) (string, bool, error) {
	if rel == "" {
		return "", false, nil
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", false, fmt.Errorf("path %q is outside of the tree", rel)
	}
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func writeFile(root, rel string, data string, perm fs.FileMode) error {
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return fmt.Errorf("path %q is outside of the tree", rel)
	}
	name := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	return os.WriteFile(name, []byte(data), perm)
}

func removeFile(root, rel string) error {
	err := os.Remove(filepath.Join(root, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func fileMode(root, rel string) fs.FileMode {
	if rel == "" {
		return 0o644
	}
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return 0o644
	}
	return info.Mode().Perm()
}

// FileDiff is the patch file for a single changed file.
type FileDiff struct {
	Path  string
	Patch string
}

// Diff compares all files in the base and target trees and returns a patch file for every file
// that differs. Files only in target are diffed against /dev/null as added, files only in base as
// removed. At most jobs files are diffed concurrently; jobs <= 0 uses GOMAXPROCS.
//
// opts must only contain diff options, see [diffpatch.Diff].
func Diff(ctx context.Context, base, target string, jobs int, opts ...diffpatch.Option) ([]FileDiff, error) {
	bfiles, err := Index(base)
	if err != nil {
		return nil, err
	}
	tfiles, err := Index(target)
	if err != nil {
		return nil, err
	}
	paths := slices.Compact(slices.Sorted(slices.Values(append(slices.Clone(bfiles), tfiles...))))

	out := make([]FileDiff, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit(jobs))
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			x, inBase, err := readFile(base, p)
			if err != nil {
				return err
			}
			y, inTarget, err := readFile(target, p)
			if err != nil {
				return err
			}
			basePath, patchedPath := "a/"+p, "b/"+p
			if !inBase {
				basePath = patchfile.DevNull
			}
			if !inTarget {
				patchedPath = patchfile.DevNull
			}
			patch, err := textdiff.Diff(x, y, append(slices.Clip(opts), diffpatch.Paths(basePath, patchedPath), diffpatch.Name(p))...)
			if err != nil {
				return fmt.Errorf("diffing %s: %w", p, err)
			}
			if patch != "" {
				glog.V(1).Infof("%s: changed", p)
			}
			out[i] = FileDiff{Path: p, Patch: patch}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.DeleteFunc(out, func(d FileDiff) bool { return d.Patch == "" }), nil
}

// Concat joins the patch files into a single multi-file patch.
func Concat(diffs []FileDiff) string {
	var sb strings.Builder
	for _, d := range diffs {
		sb.WriteString(d.Patch)
	}
	return sb.String()
}

// WriteDiffs writes every patch file to <dir>/<path>.patch.
func WriteDiffs(dir string, diffs []FileDiff) error {
	for _, d := range diffs {
		if err := writeFile(dir, d.Path+PatchSuffix, d.Patch, 0o644); err != nil {
			return fmt.Errorf("writing patch for %s: %w", d.Path, err)
		}
	}
	return nil
}

const (
	PatchSuffix  = ".patch"
	RejectSuffix = ".patch.rej"
)

// FilePatch is the patch for a single file of a tree.
type FilePatch struct {
	// Path is the path of the patched file.
	Path string

	// Source is the path of the base file. It differs from Path for renamed files and is empty
	// for added files.
	Source string

	// Patch is the patch file text.
	Patch string
}

// PatchesFromDir reads the patch files written by [WriteDiffs].
func PatchesFromDir(dir string) ([]FilePatch, error) {
	files, err := Index(dir)
	if err != nil {
		return nil, err
	}
	var out []FilePatch
	for _, f := range files {
		p, ok := strings.CutSuffix(f, PatchSuffix)
		if !ok {
			continue
		}
		text, _, err := readFile(dir, f)
		if err != nil {
			return nil, fmt.Errorf("reading patch %s: %w", f, err)
		}
		out = append(out, FilePatch{Path: p, Source: p, Patch: text})
	}
	return out, nil
}

// PatchesFromGit splits the multi-file git patch text into file patches.
func PatchesFromGit(text string) ([]FilePatch, error) {
	files, err := patchfile.FromGit(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	out := make([]FilePatch, len(files))
	for i, f := range files {
		fp := FilePatch{Path: f.Name, Patch: f.String(false)}
		if !f.Added() {
			fp.Source = strings.TrimPrefix(f.BasePath, "a/")
		}
		out[i] = fp
	}
	return out, nil
}

// FileReport is the outcome of patching a single file.
type FileReport struct {
	Path string

	// Result is nil if Err is set.
	Result *diffpatch.Result

	// Err is set if the patch file is malformed or its hunks are inconsistent.
	Err error
}

// Success reports whether all hunks of the file were applied.
func (r *FileReport) Success() bool {
	return r.Err == nil && r.Result.Success()
}

// Patch applies the file patches to the base tree and writes the patched tree to out. Files
// without a patch are copied, removed files are deleted from out, and hunks that can't be applied
// are written to <out>/<path>.patch.rej. out may be the same as base.
//
// Malformed or inconsistent patches are reported per file; Patch only fails if files can't be
// read or written. At most jobs files are patched concurrently; jobs <= 0 uses GOMAXPROCS.
//
// opts must only contain patch options, see [diffpatch.Patch].
func Patch(ctx context.Context, base, out string, patches []FilePatch, jobs int, opts ...diffpatch.Option) (*Report, error) {
	patches = slices.SortedFunc(slices.Values(patches), func(a, b FilePatch) int {
		return strings.Compare(a.Path, b.Path)
	})
	inPlace, err := sameDir(base, out)
	if err != nil {
		return nil, err
	}

	touched := make(map[string]bool)
	for _, fp := range patches {
		touched[fp.Path] = true
		if fp.Source != "" {
			touched[fp.Source] = true
		}
	}
	bfiles, err := Index(base)
	if err != nil {
		return nil, err
	}

	report := &Report{Files: make([]FileReport, len(patches))}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit(jobs))
	if !inPlace {
		for _, p := range bfiles {
			if touched[p] {
				continue
			}
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return copyFile(base, out, p)
			})
		}
	}
	for i, fp := range patches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fr, err := patchFile(base, out, inPlace, fp, opts)
			report.Files[i] = fr
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func sameDir(a, b string) (bool, error) {
	aa, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	bb, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return aa == bb, nil
}

func copyFile(base, out, rel string) error {
	data, _, err := readFile(base, rel)
	if err != nil {
		return fmt.Errorf("copying %s: %w", rel, err)
	}
	if err := writeFile(out, rel, data, fileMode(base, rel)); err != nil {
		return fmt.Errorf("copying %s: %w", rel, err)
	}
	return nil
}

func patchFile(base, out string, inPlace bool, fp FilePatch, opts []diffpatch.Option) (FileReport, error) {
	fr := FileReport{Path: fp.Path}
	x, _, err := readFile(base, fp.Source)
	if err != nil {
		return fr, fmt.Errorf("reading %s: %w", fp.Source, err)
	}
	patched, res, err := textdiff.Patch(x, fp.Patch, append(slices.Clip(opts), diffpatch.Name(fp.Path))...)
	if err != nil {
		glog.Errorf("%s: %v", fp.Path, err)
		fr.Err = err
		if !inPlace && fp.Source != "" {
			// Leave the file untouched.
			return fr, copyFile(base, out, fp.Source)
		}
		return fr, nil
	}
	fr.Result = res

	for _, h := range res.Hunks {
		switch {
		case !h.Success, h.OffsetWarning:
			glog.Warningf("%s: %s", fp.Path, h.Summary)
		default:
			glog.V(1).Infof("%s: %s", fp.Path, h.Summary)
		}
	}

	switch {
	case res.Removed && res.Success():
		glog.Infof("%s: removed", fp.Path)
		if inPlace {
			if err := removeFile(out, fp.Path); err != nil {
				return fr, fmt.Errorf("removing %s: %w", fp.Path, err)
			}
		}
	default:
		glog.Infof("%s: patched %d of %d hunks, quality %.0f%%", fp.Path, countSuccess(res), len(res.Hunks), 100*res.Quality())
		if err := writeFile(out, fp.Path, patched, fileMode(base, fp.Source)); err != nil {
			return fr, fmt.Errorf("writing %s: %w", fp.Path, err)
		}
		if inPlace && fp.Source != "" && fp.Source != fp.Path {
			if err := removeFile(out, fp.Source); err != nil {
				return fr, fmt.Errorf("removing %s: %w", fp.Source, err)
			}
		}
	}
	if res.Reject != "" {
		if err := writeFile(out, fp.Path+RejectSuffix, res.Reject, 0o644); err != nil {
			return fr, fmt.Errorf("writing rejects for %s: %w", fp.Path, err)
		}
	}
	return fr, nil
}

func countSuccess(res *diffpatch.Result) int {
	n := 0
	for _, h := range res.Hunks {
		if h.Success {
			n++
		}
	}
	return n
}
