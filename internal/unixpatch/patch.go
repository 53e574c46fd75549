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
// Package unixpatch runs the unix patch tool to cross-check generated patches.
//
// This package is only for testing.
package unixpatch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotInstalled is returned when no patch binary is found in PATH.
var ErrNotInstalled = errors.New("patch tool not installed")

type config struct {
	reverse bool
}

// Option configures the invocation of the patch tool.
type Option func(*config)

// Reverse applies the patch in reverse, turning the patched text back into the original.
func Reverse() Option {
	return func(cfg *config) { cfg.reverse = true }
}

// Patch applies the unified diff to orig using the patch tool without fuzz and returns the result.
// Rejected hunks are reported as an error that includes the tool's output.
func Patch(orig, diff string, opts ...Option) (string, error) {
	// Using patch with an empty diff will not create an output file.
	if len(diff) == 0 {
		return orig, nil
	}
	if _, err := exec.LookPath("patch"); err != nil {
		return "", ErrNotInstalled
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	dir, err := os.MkdirTemp("", "diffpatch-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}
	defer os.RemoveAll(dir)

	var (
		patchfile = filepath.Join(dir, "patch")
		origfile  = filepath.Join(dir, "orig")
		outfile   = filepath.Join(dir, "out")
		rejfile   = filepath.Join(dir, "rej")
	)
	if err := os.WriteFile(patchfile, []byte(diff), 0o644); err != nil {
		return "", fmt.Errorf("failed to write patch file: %w", err)
	}
	if err := os.WriteFile(origfile, []byte(orig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write orig file: %w", err)
	}

	args := []string{"-u", "-F", "0", "-r", rejfile, "-i", patchfile, "-o", outfile}
	if cfg.reverse {
		args = append(args, "-R")
	}
	args = append(args, origfile)
	cmd := exec.Command("patch", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		rej, _ := os.ReadFile(rejfile)
		return "", fmt.Errorf("patch %s: %w\n%s%s", strings.Join(cmd.Args[1:], " "), err, out, rej)
	}

	out, err := os.ReadFile(outfile)
	if err != nil {
		return "", fmt.Errorf("failed to read outfile: %w", err)
	}
	return string(out), nil
}
