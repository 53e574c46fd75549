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

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// File is the contents of a TOML configuration file. Unset values keep their defaults.
//
//	jobs = 8
//
//	[diff]
//	context = 3
//	auto_header = false
//	collate = true
//	line_matched = false
//
//	[patch]
//	mode = "fuzzy"
//	min_fuzz = 0.5
//	max_offset = 5
//	verify_headers = true
type File struct {
	// Jobs is the number of files processed in parallel. Zero means one per CPU.
	Jobs  int        `toml:"jobs"`
	Diff  DiffTable  `toml:"diff"`
	Patch PatchTable `toml:"patch"`
}

// DiffTable holds the [diff] table.
type DiffTable struct {
	Context     *int  `toml:"context"`
	AutoHeader  *bool `toml:"auto_header"`
	Collate     *bool `toml:"collate"`
	LineMatched *bool `toml:"line_matched"`
}

// PatchTable holds the [patch] table.
type PatchTable struct {
	Mode          string   `toml:"mode"`
	MinFuzz       *float64 `toml:"min_fuzz"`
	MaxOffset     *int     `toml:"max_offset"`
	VerifyHeaders *bool    `toml:"verify_headers"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	if err := check(md, &f); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return &f, nil
}

// Parse parses and validates configuration file contents.
func Parse(data string) (*File, error) {
	var f File
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, err
	}
	if err := check(md, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func check(md toml.MetaData, f *File) error {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return f.Validate()
}

// Validate checks that all values are in range.
func (f *File) Validate() error {
	var errs []error
	if f.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs must not be negative, got %d", f.Jobs))
	}
	if c := f.Diff.Context; c != nil && *c < 0 {
		errs = append(errs, fmt.Errorf("diff.context must not be negative, got %d", *c))
	}
	if f.Patch.Mode != "" {
		if _, err := ParseMode(f.Patch.Mode); err != nil {
			errs = append(errs, fmt.Errorf("patch.mode: %w", err))
		}
	}
	if m := f.Patch.MinFuzz; m != nil && (*m < 0 || *m > 1) {
		errs = append(errs, fmt.Errorf("patch.min_fuzz must be in [0, 1], got %v", *m))
	}
	if o := f.Patch.MaxOffset; o != nil && *o < 0 {
		errs = append(errs, fmt.Errorf("patch.max_offset must not be negative, got %d", *o))
	}
	return errors.Join(errs...)
}

// DiffOptions returns options for the values set in the [diff] table.
func (f *File) DiffOptions() []Option {
	var opts []Option
	if v := f.Diff.Context; v != nil {
		opts = append(opts, func(cfg *Config) Flag {
			cfg.Context = *v
			return Context
		})
	}
	if v := f.Diff.AutoHeader; v != nil {
		opts = append(opts, func(cfg *Config) Flag {
			cfg.AutoHeader = *v
			return AutoHeader
		})
	}
	if v := f.Diff.Collate; v != nil {
		opts = append(opts, func(cfg *Config) Flag {
			cfg.Collate = *v
			return Uncollated
		})
	}
	if v := f.Diff.LineMatched; v != nil {
		opts = append(opts, func(cfg *Config) Flag {
			cfg.LineMatched = *v
			return LineMatched
		})
	}
	return opts
}

// PatchOptions returns options for the values set in the [patch] table. The file must have been
// validated.
func (f *File) PatchOptions() []Option {
	var opts []Option
	if f.Patch.Mode != "" {
		mode, _ := ParseMode(f.Patch.Mode)
		opts = append(opts, func(cfg *Config) Flag {
			cfg.Mode = mode
			return Tolerance
		})
	}
	if v := f.Patch.MinFuzz; v != nil {
		opts = append(opts, func(cfg *Config) Flag {
			cfg.MinFuzz = *v
			return MinFuzz
		})
	}
	if v := f.Patch.MaxOffset; v != nil {
		opts = append(opts, func(cfg *Config) Flag {
			cfg.MaxOffset = *v
			return MaxOffset
		})
	}
	if v := f.Patch.VerifyHeaders; v != nil {
		opts = append(opts, func(cfg *Config) Flag {
			cfg.VerifyHeaders = *v
			return LenientHeaders
		})
	}
	return opts
}
