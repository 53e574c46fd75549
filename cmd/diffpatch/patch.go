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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/golang/glog"
	"znkr.io/diffpatch"
	"znkr.io/diffpatch/internal/config"
	"znkr.io/diffpatch/internal/fileset"
	"znkr.io/diffpatch/textdiff"
)

type patchCmd struct {
	Base   string `arg:"" help:"Base file or directory."`
	Patch  string `arg:"" optional:"" help:"Patch file, or a directory of <path>.patch files if base is a directory. Reads the patch from stdin if omitted or \"-\"."`
	Output string `short:"o" help:"Output file or directory (default: stdout for files, base for directories)." placeholder:"PATH"`
	Reject string `short:"r" help:"Write rejected hunks of a file to this file (default: stderr)." placeholder:"FILE"`
	Git    bool   `help:"Read the patch as a multi-file git patch and apply it to the base directory."`

	Mode           string   `help:"Most permissive mode used to apply hunks: exact, access, offset, or fuzzy (default: fuzzy)."`
	MinFuzz        *float64 `help:"Minimum score of fuzzy matches (default: 0.5)."`
	MaxOffset      *int     `help:"Maximum drift per line for fuzzy matches (default: 5)."`
	LenientHeaders bool     `help:"Don't verify the target start of hunk headers."`
}

func (c *patchCmd) options(file *config.File) ([]diffpatch.Option, error) {
	opts := append([]diffpatch.Option{diffpatch.Tolerance(diffpatch.Fuzzy)}, file.PatchOptions()...)
	if c.Mode != "" {
		mode, err := config.ParseMode(c.Mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, diffpatch.Tolerance(mode))
	}
	if c.MinFuzz != nil {
		if *c.MinFuzz < 0 || *c.MinFuzz > 1 {
			return nil, fmt.Errorf("--min-fuzz must be in [0, 1], got %v", *c.MinFuzz)
		}
		opts = append(opts, diffpatch.MinFuzz(*c.MinFuzz))
	}
	if c.MaxOffset != nil {
		opts = append(opts, diffpatch.MaxOffset(*c.MaxOffset))
	}
	if c.LenientHeaders {
		opts = append(opts, diffpatch.LenientHeaders())
	}
	return opts, nil
}

func (c *patchCmd) Run(ctx context.Context, g *Globals, e *env) error {
	file, err := g.load()
	if err != nil {
		return err
	}
	opts, err := c.options(file)
	if err != nil {
		return err
	}
	dir, err := isDir(c.Base)
	if err != nil {
		return err
	}
	if dir {
		return c.patchTree(ctx, g.jobs(file), g.Color, e, opts)
	}
	if c.Git {
		return errors.New("--git requires a base directory")
	}
	return c.patchFile(g.Color, e, opts)
}

func (c *patchCmd) readPatch(e *env) (string, error) {
	if c.Patch == "" || c.Patch == "-" {
		b, err := io.ReadAll(e.stdin)
		return string(b), err
	}
	b, err := os.ReadFile(c.Patch)
	return string(b), err
}

func (c *patchCmd) patchFile(colored bool, e *env, opts []diffpatch.Option) error {
	x, _, err := readOptional(c.Base)
	if err != nil {
		return err
	}
	text, err := c.readPatch(e)
	if err != nil {
		return err
	}
	patched, res, err := textdiff.Patch(x, text, append(opts, diffpatch.Name(c.Base))...)
	if err != nil {
		return err
	}
	logHunks(c.Base, res)

	switch {
	case c.Output == "":
		if _, err := io.WriteString(e.stdout, patched); err != nil {
			return err
		}
	case res.Removed && res.Success():
		if err := os.Remove(c.Output); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	default:
		if err := writeFile(c.Output, patched); err != nil {
			return err
		}
	}

	if res.Success() {
		return nil
	}
	if c.Reject != "" {
		if err := writeFile(c.Reject, res.Reject); err != nil {
			return err
		}
	} else if err := writeText(e.stderr, res.Reject, colored); err != nil {
		return err
	}
	return exitCode(1)
}

func (c *patchCmd) patchTree(ctx context.Context, jobs int, colored bool, e *env, opts []diffpatch.Option) error {
	var (
		patches []fileset.FilePatch
		err     error
	)
	if c.Git {
		var text string
		text, err = c.readPatch(e)
		if err != nil {
			return err
		}
		patches, err = fileset.PatchesFromGit(text)
	} else {
		if c.Patch == "" || c.Patch == "-" {
			return errors.New("patching a directory requires a directory of patches or --git")
		}
		patches, err = fileset.PatchesFromDir(c.Patch)
	}
	if err != nil {
		return err
	}

	out := c.Output
	if out == "" {
		out = c.Base
	}
	report, err := fileset.Patch(ctx, c.Base, out, patches, jobs, opts...)
	if err != nil {
		return err
	}
	for _, f := range report.Files {
		switch {
		case f.Err != nil:
			fmt.Fprintf(e.stderr, "%s: %v\n", f.Path, f.Err)
		case !f.Result.Success():
			fmt.Fprintf(e.stderr, "%s: rejected hunks written to %s%s\n", f.Path, f.Path, fileset.RejectSuffix)
			writeText(e.stderr, f.Result.Reject, colored)
		}
	}
	fmt.Fprint(e.stderr, report)
	if report.Failed() > 0 {
		return exitCode(1)
	}
	return nil
}

func logHunks(name string, res *diffpatch.Result) {
	for _, h := range res.Hunks {
		switch {
		case !h.Success, h.OffsetWarning:
			glog.Warningf("%s: %s", name, h.Summary)
		default:
			glog.V(1).Infof("%s: %s", name, h.Summary)
		}
	}
	glog.Infof("%s: quality %.0f%%", name, 100*res.Quality())
}
