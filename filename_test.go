// Copyright 2025 Agentic World, LLC (Sherin Thomas)
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

package scrapbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Spaces percent and hash encoded",
			input: "path 100% with space? and #frag",
			want:  "path%20100%25%20with%20space?%20and%20%23frag",
		},
		{
			name:  "Backslash becomes forward slash",
			input: `dir\sub\file.html`,
			want:  "dir/sub/file.html",
		},
		{
			name:  "Non-ASCII passes through",
			input: "中文.html",
			want:  "中文.html",
		},
		{
			name:  "Nothing to escape",
			input: "plain.html",
			want:  "plain.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeFilename(tt.input))
		})
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		forceASCII bool
		want       string
	}{
		{
			name:  "Empty collapses to underscore",
			input: "",
			want:  "_",
		},
		{
			name:  "Reserved device name",
			input: "con",
			want:  "con_",
		},
		{
			name:  "Reserved device name with extension",
			input: "prn.txt",
			want:  "prn_.txt",
		},
		{
			name:  "Reserved device name case-insensitive",
			input: "LPT9.log",
			want:  "LPT9_.log",
		},
		{
			name:  "Leading whitespace and dots",
			input: "  ..wsb",
			want:  "_..wsb",
		},
		{
			name:  "Trailing dots stripped",
			input: "name...",
			want:  "name",
		},
		{
			name:  "Illegal characters replaced",
			input: `a"b*c/d:e<f>g?h\i|j~k`,
			want:  "a_b_c_d_e_f_g_h_i_j_k",
		},
		{
			name:  "Control characters replaced",
			input: "a\x01b\x1fc",
			want:  "a_b_c",
		},
		{
			name:  "Non-ASCII space-like replaced",
			input: "a\u00a0b\u3000c",
			want:  "a_b_c",
		},
		{
			name:  "Zero-width and BOM code points replaced",
			input: "a\u200bb\ufeffc",
			want:  "a_b_c",
		},
		{
			name:  "Non-ASCII preserved by default",
			input: "中文.html",
			want:  "中文.html",
		},
		{
			name:       "Force ASCII percent-encodes",
			input:      "中.html",
			forceASCII: true,
			want:       "%E4%B8%AD.html",
		},
		{
			name:  "Only dots collapses to underscore",
			input: "...",
			want:  "_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateFilename(tt.input, tt.forceASCII))
		})
	}
}

func TestSuggestFilename(t *testing.T) {
	tests := []struct {
		name        string
		sourceURL   string
		disposition string
		contentType string
		want        string
	}{
		{
			name:        "Disposition filename wins",
			sourceURL:   "http://example.com/ignored.bin",
			disposition: `attachment; filename="report.pdf"`,
			want:        "report.pdf",
		},
		{
			name:      "URL basename fallback",
			sourceURL: "http://example.com/dir/page.html?q=1",
			want:      "page.html",
		},
		{
			name:        "Extension from content type",
			sourceURL:   "http://example.com/download",
			contentType: "image/png",
			want:        "download.png",
		},
		{
			name:        "Index fallback",
			sourceURL:   "http://example.com/",
			contentType: "text/html",
			want:        "index.html",
		},
		{
			name:        "Unsafe disposition name validated",
			disposition: `attachment; filename="a/b.txt"`,
			want:        "a_b.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestFilename(tt.sourceURL, tt.disposition, tt.contentType))
		})
	}
}
