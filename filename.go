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
	"path"
	"regexp"
	"strings"

	"github.com/kennygrant/sanitize"
)

// filenameEscaper runs a single pass, so the % of an inserted escape is
// never re-escaped.
var filenameEscaper = strings.NewReplacer(
	"\\", "/",
	" ", "%20",
	"%", "%25",
	"#", "%23",
)

// EscapeFilename converts every backslash to a forward slash and
// percent-encodes space, % and # so the name survives use inside a URL
// path. Everything else, including non-ASCII, passes through unchanged.
func EscapeFilename(filename string) string {
	return filenameEscaper.Replace(filename)
}

// badFilenameChars are illegal on at least one common filesystem. The
// tilde is included because download APIs reject it.
const badFilenameChars = "\"*/:<>?\\|~"

// spaceLikeRunes are non-ASCII code points rendered as blanks; they make
// confusing, occasionally invalid filenames.
var spaceLikeRunes = map[rune]bool{
	'\u00A0': true, // no-break space
	'\u2000': true, '\u2001': true, '\u2002': true, '\u2003': true,
	'\u2004': true, '\u2005': true, '\u2006': true, '\u2007': true,
	'\u2008': true, '\u2009': true, '\u200A': true,
	'\u200B': true,                 // zero width space
	'\u2028': true, '\u2029': true, // line and paragraph separators
	'\u202F': true, '\u205F': true,
	'\u3000': true, // ideographic space
	'\uFEFF': true, // zero width no-break space (BOM)
}

var reservedDeviceStem = regexp.MustCompile(`(?i)^(con|prn|aux|com[0-9]|lpt[0-9])(\..*)?$`)

// ValidateFilename degrades name into something every common filesystem
// accepts. Illegal characters and space-like non-ASCII code points become
// underscores, leading/trailing whitespace and trailing dots are stripped
// (Windows rule), a leading dot is guarded with an underscore, reserved
// device stems get a trailing underscore, and an empty result collapses to
// "_". With forceASCII, every remaining non-ASCII code point is
// percent-encoded as uppercase UTF-8 hex.
func ValidateFilename(name string, forceASCII bool) string {
	const asciiWS = " \t\n\r\f"

	fn := strings.TrimLeft(name, asciiWS)
	fn = strings.TrimRight(fn, asciiWS+".")
	if strings.HasPrefix(fn, ".") {
		fn = "_" + fn
	}

	var b strings.Builder
	b.Grow(len(fn))
	for _, r := range fn {
		switch {
		case r < 0x20 || r == 0x7F:
			b.WriteByte('_')
		case r < 0x80 && strings.ContainsRune(badFilenameChars, r):
			b.WriteByte('_')
		case spaceLikeRunes[r]:
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	fn = b.String()

	if fn == "" {
		return "_"
	}
	if m := reservedDeviceStem.FindStringSubmatch(fn); m != nil {
		fn = m[1] + "_" + m[2]
	}
	if forceASCII {
		fn = percentEncodeNonASCII(fn)
	}
	return fn
}

func percentEncodeNonASCII(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x80 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

// SuggestFilename derives a safe filename for a captured resource from its
// Content-Disposition header, falling back to the source URL path and
// finally to the MIME subtype for the extension.
func SuggestFilename(sourceURL, contentDisposition, contentType string) string {
	var name string
	if contentDisposition != "" {
		cd := ParseHeaderContentDisposition(contentDisposition)
		name = cd.Parameters.Get("filename")
	}
	if name == "" {
		name = urlBasename(sourceURL)
	}
	if name == "" {
		name = "index"
	}

	if path.Ext(name) == "" && contentType != "" {
		ct := ParseHeaderContentType(contentType)
		if _, sub, ok := strings.Cut(ct.Type, "/"); ok {
			if ext := sanitize.BaseName(sub); ext != "" {
				name += "." + ext
			}
		}
	}
	return ValidateFilename(name, false)
}

// urlBasename extracts the last path segment of a URL-like string,
// lexically, without requiring a parseable absolute URL.
func urlBasename(rawURL string) string {
	s := rawURL
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	if strings.ContainsRune(s, ':') {
		// A scheme remnant such as "http:" is not a usable name.
		return ""
	}
	return s
}
