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

// Package color colors patch files and rejects using ANSI escape sequences.
//
// Specifying colors uses [Select Graphic Rendition parameters]. For example the code below,
// presents the header in bold yellow:
//
//	HunkHeaders(1, 33)
//
// This is equivalent to the following raw ANSI sequence: \033[1;33m.
//
// It's the responsibility of the caller to ensure that the parameters are correct and supported
// by the underlying terminal.
//
// [Select Graphic Rendition parameters]: https://en.wikipedia.org/wiki/ANSI_escape_code#SGR
package color

import (
	"fmt"
	"slices"
	"strings"

	"znkr.io/diffpatch/internal/config"
)

const reset = "\033[0m"

// A Option makes it possible to configure custom colors in [Colorize].
type Option func(*config.ColorConfig)

// Meta colors file headers, reject markers, and "\ No newline at end of file" markers.
func Meta(params ...int) Option {
	code := format(params)
	return func(cc *config.ColorConfig) {
		cc.Meta = code
	}
}

// HunkHeaders colors hunk headers, the "@@ ... @@" part of the unified diff.
func HunkHeaders(params ...int) Option {
	code := format(params)
	return func(cc *config.ColorConfig) {
		cc.HunkHeader = code
	}
}

// Matches colors matching lines.
func Matches(params ...int) Option {
	code := format(params)
	return func(cc *config.ColorConfig) {
		cc.Match = code
	}
}

// Deletes colors deleted lines.
func Deletes(params ...int) Option {
	code := format(params)
	return func(cc *config.ColorConfig) {
		cc.Delete = code
	}
}

// Inserts colors inserted lines.
func Inserts(params ...int) Option {
	code := format(params)
	return func(cc *config.ColorConfig) {
		cc.Insert = code
	}
}

func format(params []int) string {
	if len(params) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\033[")
	for i, v := range params {
		if i > 0 {
			sb.WriteRune(';')
		}
		fmt.Fprint(&sb, v)
	}
	sb.WriteRune('m')
	return sb.String()
}

// isFileHeader reports whether lines[i] starts a "--- "/"+++ " header pair.
func isFileHeader(lines []string, i int) bool {
	return strings.HasPrefix(lines[i], "--- ") && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+++ ")
}

const rejectMarker = "++++ REJECTED HUNK:"

// Colorize returns the patch file or reject text with every line wrapped in the escape sequence
// for its kind. Options without parameters turn the color for that kind of line off.
func Colorize(text string, opts ...Option) string {
	cc := config.DefaultColors
	for _, opt := range opts {
		opt(&cc)
	}

	var sb strings.Builder
	sb.Grow(len(text) + len(text)/4)
	lines := slices.Collect(strings.Lines(text))
	inHunk := false
	for i, line := range lines {
		content, nl := strings.CutSuffix(line, "\n")
		var code string
		switch {
		case strings.HasPrefix(content, rejectMarker):
			code, inHunk = cc.Meta, false
		case strings.HasPrefix(content, "@@"):
			code, inHunk = cc.HunkHeader, true
		case isFileHeader(lines, i):
			code, inHunk = cc.Meta, false
		case strings.HasPrefix(content, "+++ ") && i > 0 && isFileHeader(lines, i-1):
			code = cc.Meta
		case !inHunk || content == "":
		default:
			switch content[0] {
			case ' ':
				code = cc.Match
			case '-':
				code = cc.Delete
			case '+':
				code = cc.Insert
			case '\\':
				code = cc.Meta
			}
		}
		if code == "" {
			sb.WriteString(line)
			continue
		}
		sb.WriteString(code)
		sb.WriteString(content)
		sb.WriteString(reset)
		if nl {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
