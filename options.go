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

package diffpatch

import "znkr.io/diffpatch/internal/config"

// Option configures the behavior of [Diff] and [Patch].
type Option = config.Option

// Mode is the tolerance used to apply a hunk.
type Mode = config.Mode

const (
	None   = config.ModeNone // The hunk was not applied.
	Exact  = config.ModeExact
	Access = config.ModeAccess
	Offset = config.ModeOffset
	Fuzzy  = config.ModeFuzzy
)

// Context sets the number of unchanged lines to include before and after every change in [Diff].
// The default is 3.
func Context(n int) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.Context = max(0, n)
		return config.Context
	}
}

// AutoHeader writes hunk headers without target start, e.g. "@@ -3,4 +_,5 @@". The target start
// is computed from the preceding hunks when the patch is applied.
func AutoHeader() Option {
	return func(cfg *config.Config) config.Flag {
		cfg.AutoHeader = true
		return config.AutoHeader
	}
}

// Uncollated lists all deleted lines of a block of changes before all inserted lines.
func Uncollated() Option {
	return func(cfg *config.Config) config.Flag {
		cfg.Collate = false
		return config.Uncollated
	}
}

// LineMatched pairs lines that patience diff left unmatched by similarity. This results in
// changed lines being shown next to each other.
func LineMatched() Option {
	return func(cfg *config.Config) config.Flag {
		cfg.LineMatched = true
		return config.LineMatched
	}
}

// Paths sets the paths written in the patch file header. Without paths, no header is written. If
// base is "/dev/null", the patch adds the file, if patched is "/dev/null" the patch removes the
// file.
func Paths(base, patched string) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.BasePath = base
		cfg.PatchedPath = patched
		return config.Paths
	}
}

// Name sets the name used for the file in errors and summaries.
func Name(name string) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.Name = name
		return config.Name
	}
}

// Tolerance sets the most permissive mode used to apply hunks in [Patch]. The default is [Exact].
func Tolerance(mode Mode) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.Mode = mode
		return config.Tolerance
	}
}

// MinFuzz sets the minimum score of a fuzzy match, between 0 and 1. The default is 0.5.
func MinFuzz(score float64) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.MinFuzz = min(1, max(0, score))
		return config.MinFuzz
	}
}

// MaxOffset sets how far every line of a fuzzy match may drift from its neighbors. The default is
// 5.
func MaxOffset(n int) Option {
	return func(cfg *config.Config) config.Flag {
		cfg.MaxOffset = max(0, n)
		return config.MaxOffset
	}
}

// LenientHeaders accepts hunk headers whose target start doesn't agree with the preceding hunks.
func LenientHeaders() Option {
	return func(cfg *config.Config) config.Flag {
		cfg.VerifyHeaders = false
		return config.LenientHeaders
	}
}
