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

// headers.go parses raw HTTP response header values the way browsers do:
// permissively. Malformed input degrades to the documented safe default,
// never to an error.

package scrapbook

import (
	"math"
	"strings"
)

// HeaderParams is an insertion-ordered parameter map with lowercased keys.
// The first occurrence of a name wins on duplicates.
type HeaderParams struct {
	keys   []string
	values map[string]string
}

// NewHeaderParams returns an empty parameter map.
func NewHeaderParams() *HeaderParams {
	return &HeaderParams{values: make(map[string]string)}
}

// Get returns the value for name ("" when absent). Lookup is by the
// stored, lowercased key.
func (p *HeaderParams) Get(name string) string {
	return p.values[name]
}

// Has reports whether name is present.
func (p *HeaderParams) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Keys returns the parameter names in insertion order.
func (p *HeaderParams) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Len returns the number of parameters.
func (p *HeaderParams) Len() int {
	return len(p.keys)
}

// add stores name=value unless name is already present (first wins).
func (p *HeaderParams) add(name, value string) {
	if _, ok := p.values[name]; ok {
		return
	}
	p.keys = append(p.keys, name)
	p.values[name] = value
}

// put stores name=value, replacing an existing value while keeping the
// original position.
func (p *HeaderParams) put(name, value string) {
	if _, ok := p.values[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.values[name] = value
}

// HeaderContentType is a parsed Content-Type header value. Type is "" when
// the header is malformed, in which case Parameters is empty.
type HeaderContentType struct {
	Type       string
	Parameters *HeaderParams
}

// HeaderContentDisposition is a parsed Content-Disposition header value,
// with RFC 5987 ext-values already decoded into their base parameter.
type HeaderContentDisposition struct {
	Type       string
	Parameters *HeaderParams
}

// HeaderRefresh is a parsed Refresh header value.
type HeaderRefresh struct {
	Time int
	URL  string
}

// tokenChar reports whether b is valid inside a MIME token.
func tokenChar(b byte) bool {
	switch {
	case b >= '0' && b <= '9', b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z':
		return true
	}
	switch b {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// ParseHeaderContentType parses a raw Content-Type header value. The type
// must contain exactly one slash; otherwise the type is "" and no
// parameters are parsed. The type token stops at the first character that
// is invalid in a MIME token, discarding the remainder of the token.
func ParseHeaderContentType(value string) HeaderContentType {
	result := HeaderContentType{Parameters: NewHeaderParams()}

	typePart, rest, hasParams := strings.Cut(value, ";")
	result.Type = parseMIMEType(typePart)
	if result.Type == "" {
		return result
	}
	if hasParams {
		for _, p := range scanHeaderParams(rest) {
			result.Parameters.add(p.name, p.value)
		}
	}
	return result
}

func parseMIMEType(raw string) string {
	raw = trimASCIISpace(raw)

	i := 0
	for i < len(raw) && tokenChar(raw[i]) {
		i++
	}
	main := raw[:i]
	if main == "" || i >= len(raw) || raw[i] != '/' {
		return ""
	}
	i++
	j := i
	for j < len(raw) && tokenChar(raw[j]) {
		j++
	}
	sub := raw[i:j]
	if sub == "" {
		return ""
	}
	// A second slash right after the subtype means the type did not
	// contain exactly one slash.
	if j < len(raw) && raw[j] == '/' {
		return ""
	}
	return strings.ToLower(main + "/" + sub)
}

func trimASCIISpace(s string) string {
	return strings.Trim(s, " \t\n\r\f")
}

type headerParam struct {
	name  string
	value string
}

// scanHeaderParams walks the text after the first semicolon and extracts
// name=value pairs. A space immediately before = drops the parameter; a
// space immediately after = with an unquoted value yields "" and discards
// the remainder of that parameter. Quoted values honor \" and \\.
func scanHeaderParams(s string) []headerParam {
	var params []headerParam

	i := 0
	skipToSemicolon := func() {
		for i < len(s) && s[i] != ';' {
			i++
		}
	}

	for i < len(s) {
		for i < len(s) && asciiSpace(s[i]) {
			i++
		}
		nameStart := i
		for i < len(s) && s[i] != '=' && s[i] != ';' {
			i++
		}
		if i >= len(s) || s[i] == ';' {
			// No = in this segment; nothing to keep.
			if i < len(s) {
				i++
			}
			continue
		}
		name := s[nameStart:i]
		i++ // past =

		valid := name != ""
		for k := 0; k < len(name); k++ {
			if asciiSpace(name[k]) {
				valid = false
				break
			}
		}

		var value string
		switch {
		case i < len(s) && s[i] == '"':
			value = unquoteParamValue(s, &i)
			skipToSemicolon()
		case i < len(s) && s[i] == ' ':
			value = ""
			skipToSemicolon()
		default:
			valueStart := i
			for i < len(s) && s[i] != ';' && !asciiSpace(s[i]) {
				i++
			}
			value = s[valueStart:i]
			skipToSemicolon()
		}

		if valid {
			params = append(params, headerParam{name: strings.ToLower(name), value: value})
		}
		if i < len(s) && s[i] == ';' {
			i++
		}
	}
	return params
}

// unquoteParamValue consumes a quoted parameter value starting at the
// opening quote, returning the unescaped content. Unterminated values run
// to end of input.
func unquoteParamValue(s string, i *int) string {
	var b strings.Builder
	*i++ // opening quote
	for *i < len(s) {
		c := s[*i]
		if c == '\\' && *i+1 < len(s) && (s[*i+1] == '"' || s[*i+1] == '\\') {
			b.WriteByte(s[*i+1])
			*i += 2
			continue
		}
		if c == '"' {
			*i++
			break
		}
		b.WriteByte(c)
		*i++
	}
	return b.String()
}

// ParseHeaderContentDisposition parses a raw Content-Disposition header
// value. Parameter names ending in * carry RFC 5987 ext-values
// (charset'lang'pct-encoded-bytes); a decodable ext-value wins over the
// plain form of the same base name regardless of declaration order, while
// an undecodable ext-value is dropped silently, leaving any plain
// counterpart intact.
func ParseHeaderContentDisposition(value string) HeaderContentDisposition {
	result := HeaderContentDisposition{Parameters: NewHeaderParams()}

	typePart, rest, hasParams := strings.Cut(value, ";")
	result.Type = parseMIMEType(typePart)
	if result.Type == "" {
		// Content-Disposition types carry no slash; accept a bare token.
		result.Type = parseBareToken(typePart)
	}
	if result.Type == "" {
		return result
	}
	if !hasParams {
		return result
	}

	extValues := make(map[string]string)
	var extOrder []string
	for _, p := range scanHeaderParams(rest) {
		if base, ok := strings.CutSuffix(p.name, "*"); ok && base != "" {
			if _, seen := extValues[base]; seen {
				continue
			}
			decoded, ok := decodeExtValue(p.value)
			if !ok {
				continue
			}
			extValues[base] = decoded
			extOrder = append(extOrder, base)
			continue
		}
		result.Parameters.add(p.name, p.value)
	}
	for _, base := range extOrder {
		result.Parameters.put(base, extValues[base])
	}
	return result
}

func parseBareToken(raw string) string {
	raw = trimASCIISpace(raw)
	i := 0
	for i < len(raw) && tokenChar(raw[i]) {
		i++
	}
	return strings.ToLower(raw[:i])
}

// decodeExtValue decodes an RFC 5987 charset'lang'pct-encoded-bytes value.
func decodeExtValue(v string) (string, bool) {
	charset, rest, ok := strings.Cut(v, "'")
	if !ok {
		return "", false
	}
	_, data, ok := strings.Cut(rest, "'")
	if !ok {
		return "", false
	}

	raw := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if data[i] == '%' {
			hi, lo, ok := hexPair(data, i+1)
			if !ok {
				return "", false
			}
			raw = append(raw, hi<<4|lo)
			i += 3
			continue
		}
		raw = append(raw, data[i])
		i++
	}

	decoded, err := DecodeBytes(charset, raw, RejectInvalid)
	if err != nil {
		return "", false
	}
	return decoded, true
}

// ParseHeaderRefresh parses a raw Refresh header value into its delay and
// target URL. The second return value is false when the header has no
// parseable time at all (no digits, or a leading sign).
func ParseHeaderRefresh(value string) (HeaderRefresh, bool) {
	s := value
	i := 0
	for i < len(s) && asciiSpace(s[i]) {
		i++
	}
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		return HeaderRefresh{}, false
	}

	digitStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	digits := s[digitStart:i]
	fraction := ""
	if i < len(s) && s[i] == '.' {
		i++
		fracStart := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		fraction = s[fracStart:i]
	}
	if digits == "" && fraction == "" {
		return HeaderRefresh{}, false
	}

	// Fractional seconds are truncated toward zero. Delays beyond the int
	// range saturate instead of wrapping negative.
	t := 0
	for k := 0; k < len(digits); k++ {
		if t > (math.MaxInt-9)/10 {
			t = math.MaxInt
			break
		}
		t = t*10 + int(digits[k]-'0')
	}
	result := HeaderRefresh{Time: t}

	// Optional separator, then the URL with an optional url= prefix.
	for i < len(s) && asciiSpace(s[i]) {
		i++
	}
	if i < len(s) && (s[i] == ';' || s[i] == ',') {
		i++
	}
	for i < len(s) && asciiSpace(s[i]) {
		i++
	}
	if i+3 <= len(s) && strings.EqualFold(s[i:i+3], "url") {
		j := i + 3
		for j < len(s) && asciiSpace(s[j]) {
			j++
		}
		if j < len(s) && s[j] == '=' {
			j++
			for j < len(s) && asciiSpace(s[j]) {
				j++
			}
			i = j
		}
	}

	rest := s[i:]
	if rest != "" && (rest[0] == '"' || rest[0] == '\'') {
		quote := rest[0]
		rest = rest[1:]
		if end := strings.IndexByte(rest, quote); end >= 0 {
			rest = rest[:end]
		}
		// An unterminated quote consumes to the end of the string.
		result.URL = rest
	} else {
		result.URL = strings.TrimRight(rest, " \t\n\r\f")
	}
	return result, true
}
