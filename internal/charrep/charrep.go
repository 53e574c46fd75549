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

// Package charrep interns lines and words as compact integer codes.
//
// Once interned, a sequence of lines (or the words of a single line) becomes a sequence of codes
// that can be compared, searched and aligned with simple integer algorithms. Codes are only
// meaningful within one [Representer].
package charrep

import (
	"fmt"
	"math"
	"unicode"
	"unicode/utf8"
)

// Code identifies an interned line or word.
type Code int32

// selfCoded is the number of code points that are words of themselves without interning.
const selfCoded = 0x81

// DefaultLimit is the default number of distinct codes per table.
const DefaultLimit = math.MaxUint16 + 1

// CapacityError is returned when a table runs out of codes.
type CapacityError struct {
	Kind  string // "line" or "word"
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("too many distinct %ss: code space is limited to %d", e.Kind, e.Limit)
}

// Representer maps lines and words to codes and back.
type Representer struct {
	lines   []string
	lineIDs map[string]Code
	words   []string
	wordIDs map[string]Code
	limit   int
}

// New returns a Representer with [DefaultLimit] codes per table.
func New() *Representer {
	return NewWithLimit(DefaultLimit)
}

// NewWithLimit returns a Representer whose line and word tables each hold at most limit codes,
// including the reserved ones.
func NewWithLimit(limit int) *Representer {
	r := &Representer{
		lineIDs: make(map[string]Code),
		wordIDs: make(map[string]Code),
		limit:   limit,
	}
	// Line code 0 is never handed out.
	r.lines = append(r.lines, "")
	r.words = make([]string, selfCoded)
	for c := range selfCoded {
		r.words[c] = string(rune(c))
	}
	return r
}

// AddLine returns the code for line, interning it on first use.
func (r *Representer) AddLine(line string) (Code, error) {
	if c, ok := r.lineIDs[line]; ok {
		return c, nil
	}
	if len(r.lines) >= r.limit {
		return 0, &CapacityError{Kind: "line", Limit: r.limit}
	}
	c := Code(len(r.lines))
	r.lineIDs[line] = c
	r.lines = append(r.lines, line)
	return c, nil
}

// AddWord returns the code for word, interning it on first use. A word consisting of a single
// code point <= 0x80 is its own code.
func (r *Representer) AddWord(word string) (Code, error) {
	if ch, n := utf8.DecodeRuneInString(word); n == len(word) && n > 0 && ch < selfCoded {
		return Code(ch), nil
	}
	if c, ok := r.wordIDs[word]; ok {
		return c, nil
	}
	if len(r.words) >= r.limit {
		return 0, &CapacityError{Kind: "word", Limit: r.limit}
	}
	c := Code(len(r.words))
	r.wordIDs[word] = c
	r.words = append(r.words, word)
	return c, nil
}

// Line returns the line for code c.
func (r *Representer) Line(c Code) string { return r.lines[c] }

// Word returns the word for code c.
func (r *Representer) Word(c Code) string { return r.words[c] }

// LineCount returns the size of the line table. All line codes are smaller than this value.
func (r *Representer) LineCount() int { return len(r.lines) }

// WordCount returns the size of the word table. All word codes are smaller than this value.
func (r *Representer) WordCount() int { return len(r.words) }

// LinesToChars returns the line codes for lines.
func (r *Representer) LinesToChars(lines []string) ([]Code, error) {
	out := make([]Code, len(lines))
	for i, line := range lines {
		c, err := r.AddLine(line)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// WordsToChars splits line into words and returns their codes.
//
// A word is a letter followed by letters or digits, a run of digits, or a run of the same space or
// tab character. Every other code point is a word by itself.
func (r *Representer) WordsToChars(line string) ([]Code, error) {
	out := make([]Code, 0, len(line)/2+1)
	for i := 0; i < len(line); {
		c, size := utf8.DecodeRuneInString(line[i:])
		j := i + size
		switch {
		case unicode.IsLetter(c):
			for j < len(line) {
				d, n := utf8.DecodeRuneInString(line[j:])
				if !unicode.IsLetter(d) && !unicode.IsDigit(d) {
					break
				}
				j += n
			}
		case unicode.IsDigit(c):
			for j < len(line) {
				d, n := utf8.DecodeRuneInString(line[j:])
				if !unicode.IsDigit(d) {
					break
				}
				j += n
			}
		case c == ' ' || c == '\t':
			for j < len(line) && line[j] == byte(c) {
				j++
			}
		}
		code, err := r.AddWord(line[i:j])
		if err != nil {
			return nil, err
		}
		out = append(out, code)
		i = j
	}
	return out, nil
}

// LinesToWords returns the word codes for every line in lines.
func (r *Representer) LinesToWords(lines []string) ([][]Code, error) {
	out := make([][]Code, len(lines))
	for i, line := range lines {
		w, err := r.WordsToChars(line)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}
