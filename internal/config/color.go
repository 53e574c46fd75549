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

// ColorConfig holds the ANSI escape sequences used to color patch text. An empty sequence leaves
// the corresponding lines uncolored.
type ColorConfig struct {
	// File headers, reject markers, and no newline markers.
	Meta string

	HunkHeader string
	Match      string
	Delete     string
	Insert     string
}

var DefaultColors = ColorConfig{
	Meta:       "\033[1m",
	HunkHeader: "\033[36m",
	Match:      "",
	Delete:     "\033[31m",
	Insert:     "\033[32m",
}
