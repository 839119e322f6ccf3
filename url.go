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
	"errors"
	"fmt"
	"regexp"
	"strings"

	whatwgURL "github.com/nlnwa/whatwg-url/url"
)

// ErrMalformedURL is returned by NormalizeURL when the input cannot be
// parsed as a URL-like structure at all. Callers handling batches catch it
// per item and convert it into a per-task failure.
var ErrMalformedURL = errors.New("malformed URL")

var urlParser = whatwgURL.NewParser(whatwgURL.WithPercentEncodeSinglePercentSign())

var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*:`)

// NormalizeURL returns the canonical percent-encoding form of u.
//
// Absolute URLs are validated and serialized through the WHATWG parser
// first; an unparseable absolute URL is the only failure. Scheme-less
// references are normalized lexically and never fail. In the canonical
// form every stray % is encoded as %25, existing triplets use uppercase
// hex, non-ASCII characters are UTF-8 percent-encoded, octets that decode
// to safe characters for their component are decoded back to literal form,
// and an empty query or fragment is removed entirely.
//
// NormalizeURL is idempotent.
func NormalizeURL(u string) (string, error) {
	target := u
	if schemePattern.MatchString(u) {
		parsed, err := urlParser.Parse(u)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrMalformedURL, u, err)
		}
		target = parsed.Href(false)
	}
	return normalizeEscapes(target), nil
}

// normalizeEscapes applies the percent-encoding rules per component. The
// path (everything before the query) and the query/fragment have different
// sets of octets that may be decoded back to literal characters.
func normalizeEscapes(u string) string {
	rest := u
	fragment := ""
	hasFragment := false
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest, fragment = rest[:i], rest[i+1:]
		hasFragment = true
	}
	query := ""
	hasQuery := false
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest, query = rest[:i], rest[i+1:]
		hasQuery = true
	}

	var b strings.Builder
	b.Grow(len(u))
	normalizeComponent(&b, rest, pathSafeOctet)
	if hasQuery && query != "" {
		b.WriteByte('?')
		normalizeComponent(&b, query, querySafeOctet)
	}
	if hasFragment && fragment != "" {
		b.WriteByte('#')
		normalizeComponent(&b, fragment, querySafeOctet)
	}
	return b.String()
}

func normalizeComponent(b *strings.Builder, s string, safe func(byte) bool) {
	const hex = "0123456789ABCDEF"
	writeEscaped := func(c byte) {
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '%':
			hi, lo, ok := hexPair(s, i+1)
			if !ok {
				b.WriteString("%25")
				i++
				continue
			}
			octet := hi<<4 | lo
			if safe(octet) {
				b.WriteByte(octet)
			} else {
				writeEscaped(octet)
			}
			i += 3
		case c >= 0x80:
			writeEscaped(c)
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
}

func hexPair(s string, i int) (hi, lo byte, ok bool) {
	if i+1 >= len(s) {
		return 0, 0, false
	}
	hi, ok = hexDigit(s[i])
	if !ok {
		return 0, 0, false
	}
	lo, ok = hexDigit(s[i+1])
	return hi, lo, ok
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// pathSafeOctet reports whether a percent-encoded octet in the path may be
// decoded back to its literal character.
func pathSafeOctet(c byte) bool {
	switch {
	case c >= '0' && c <= '9', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		return true
	}
	switch c {
	case ':', '!', '(', ')', '+', ',', ';', '=':
		return true
	}
	return false
}

// querySafeOctet reports whether a percent-encoded octet in the query or
// fragment may be decoded back to its literal character.
func querySafeOctet(c byte) bool {
	switch {
	case c >= '0' && c <= '9', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		return true
	}
	switch c {
	case '-', '_', '.', '~':
		return true
	}
	return false
}
