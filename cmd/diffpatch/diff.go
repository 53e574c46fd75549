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
	"path/filepath"

	"znkr.io/diffpatch"
	"znkr.io/diffpatch/internal/config"
	"znkr.io/diffpatch/internal/fileset"
	"znkr.io/diffpatch/internal/patchfile"
	"znkr.io/diffpatch/textdiff"
	"znkr.io/diffpatch/textdiff/color"
)

type diffCmd struct {
	Base   string `arg:"" help:"Base file or directory."`
	Target string `arg:"" help:"Target file or directory."`
	Output string `short:"o" help:"Write the patch to this file. For directories, write one <path>.patch file per changed file below this directory." placeholder:"PATH"`

	Context     *int `short:"U" help:"Number of context lines (default: 3)."`
	AutoHeader  bool `help:"Write \"_\" as target start in hunk headers."`
	Uncollated  bool `help:"List the deletions of every change before its insertions."`
	LineMatched bool `help:"Pair changed lines by similarity."`
}

func (c *diffCmd) options(file *config.File) []diffpatch.Option {
	opts := file.DiffOptions()
	if c.Context != nil {
		opts = append(opts, diffpatch.Context(*c.Context))
	}
	if c.AutoHeader {
		opts = append(opts, diffpatch.AutoHeader())
	}
	if c.Uncollated {
		opts = append(opts, diffpatch.Uncollated())
	}
	if c.LineMatched {
		opts = append(opts, diffpatch.LineMatched())
	}
	return opts
}

func (c *diffCmd) Run(ctx context.Context, g *Globals, e *env) error {
	file, err := g.load()
	if err != nil {
		return err
	}
	opts := c.options(file)

	bdir, err := isDir(c.Base)
	if err != nil {
		return err
	}
	tdir, err := isDir(c.Target)
	if err != nil {
		return err
	}

	var patch string
	if bdir || tdir {
		diffs, err := fileset.Diff(ctx, c.Base, c.Target, g.jobs(file), opts...)
		if err != nil {
			return err
		}
		if c.Output != "" {
			if err := fileset.WriteDiffs(c.Output, diffs); err != nil {
				return err
			}
		} else {
			patch = fileset.Concat(diffs)
		}
		if len(diffs) == 0 {
			return nil
		}
	} else {
		x, xok, err := readOptional(c.Base)
		if err != nil {
			return err
		}
		y, yok, err := readOptional(c.Target)
		if err != nil {
			return err
		}
		basePath, targetPath := c.Base, c.Target
		if !xok {
			basePath = patchfile.DevNull
		}
		if !yok {
			targetPath = patchfile.DevNull
		}
		patch, err = textdiff.Diff(x, y, append(opts, diffpatch.Paths(basePath, targetPath), diffpatch.Name(c.Target))...)
		if err != nil {
			return err
		}
		if patch == "" {
			return nil
		}
		if c.Output != "" {
			if err := writeFile(c.Output, patch); err != nil {
				return err
			}
			patch = ""
		}
	}
	if err := writeText(e.stdout, patch, g.Color); err != nil {
		return err
	}
	return exitCode(1)
}

// isDir reports whether path is a directory. A missing path is not a directory.
func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// readOptional reads the file at path, a missing file reads as empty.
func readOptional(path string) (string, bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func writeText(w io.Writer, text string, colored bool) error {
	if text == "" {
		return nil
	}
	if colored {
		text = color.Colorize(text)
	}
	_, err := io.WriteString(w, text)
	return err
}

func writeFile(path, data string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
