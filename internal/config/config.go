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
	"fmt"
	"strings"
)

// Mode is the permissiveness of patch application. Every mode enables itself and all stricter
// modes.
//
//go:generate go tool golang.org/x/tools/cmd/stringer -type=Mode -trimprefix=Mode
type Mode int

const (
	// No mode, used for hunks that failed to apply.
	ModeNone Mode = iota

	// Context lines must match exactly at the expected location.
	ModeExact

	// Context lines may differ in access modifiers and whitespace at the expected location.
	ModeAccess

	// Context lines must match exactly, but may be found anywhere in the text.
	ModeOffset

	// Context lines are matched by similarity near the expected location.
	ModeFuzzy
)

// ParseMode parses a mode name as written by [Mode.String], ignoring case.
func ParseMode(s string) (Mode, error) {
	for m := ModeExact; m <= ModeFuzzy; m++ {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("unknown patch mode %q, want one of exact, access, offset, fuzzy", s)
}

type Config struct {
	// Context is the number of matches to include as a prefix and postfix for hunks returned.
	Context int

	// If set, hunk headers use "_" instead of the target start.
	AutoHeader bool

	// If set, deletions and insertions keep the order in which the differ produced them. If
	// unset, every block of changes lists all deletions before all insertions.
	Collate bool

	// If set, lines left unmatched by patience diff are matched by similarity.
	LineMatched bool

	// Header paths of a patch file. Both must be set for a header to be written. "/dev/null"
	// marks a file that is added or removed.
	BasePath, PatchedPath string

	// Name identifies the file in errors and summaries.
	Name string

	// Most permissive patch mode.
	Mode Mode

	// Minimum score for a fuzzy match.
	MinFuzz float64

	// Maximum per line drift for fuzzy matches.
	MaxOffset int

	// If set, target offsets in hunk headers must agree with the preceding hunks.
	VerifyHeaders bool
}

var Default = Config{
	Context:       3,
	AutoHeader:    false,
	Collate:       true,
	LineMatched:   false,
	Mode:          ModeExact,
	MinFuzz:       0.5,
	MaxOffset:     5,
	VerifyHeaders: true,
}

type Flag int

const (
	Context Flag = 1 << iota
	AutoHeader
	Uncollated
	LineMatched
	Paths
	Name
	Tolerance
	MinFuzz
	MaxOffset
	LenientHeaders
)

// Flags accepted by diff and patch entry points.
const (
	DiffFlags  = Context | AutoHeader | Uncollated | LineMatched | Paths | Name
	PatchFlags = Tolerance | MinFuzz | MaxOffset | LenientHeaders | Name
)

type Option func(*Config) Flag

func FromOptions(opts []Option, allowed Flag) Config {
	cfg := Default
	for _, opt := range opts {
		flag := opt(&cfg)
		if flag & ^allowed != 0 {
			panic("Option " + printFlag(flag) + " not allowed here")
		}
	}
	return cfg
}

func printFlag(flag Flag) string {
	switch flag {
	case Context:
		return "diffpatch.Context"
	case AutoHeader:
		return "diffpatch.AutoHeader"
	case Uncollated:
		return "diffpatch.Uncollated"
	case LineMatched:
		return "diffpatch.LineMatched"
	case Paths:
		return "diffpatch.Paths"
	case Name:
		return "diffpatch.Name"
	case Tolerance:
		return "diffpatch.Tolerance"
	case MinFuzz:
		return "diffpatch.MinFuzz"
	case MaxOffset:
		return "diffpatch.MaxOffset"
	case LenientHeaders:
		return "diffpatch.LenientHeaders"
	default:
		panic("never reached")
	}
}
