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
	"context"
	"strings"
)

// asciiSpace reports whether b is one of the five ASCII whitespace
// characters (space, tab, LF, CR, FF). Non-ASCII whitespace is content to
// every grammar in this package, never a separator.
func asciiSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// srcsetPart is one slice of a srcset attribute value. Only URL parts are
// rewritten; everything else (whitespace runs, commas, descriptors) is
// re-emitted byte-identical.
type srcsetPart struct {
	text  string
	isURL bool
}

// RewriteSrcset rewrites every image-candidate URL in a srcset attribute
// value. Candidates are URL [whitespace descriptor] pairs separated by
// commas. Only ASCII whitespace separates; non-ASCII whitespace characters
// are literal URL content. Commas embedded inside a URL are kept as URL
// content, while commas at the edges of a URL token act as separators — a
// candidate without a descriptor therefore needs whitespace before its
// terminating comma to be unambiguous.
//
// The callback receives the URL only, never the descriptor. Layout round-
// trips exactly except for the URL text itself. A callback error aborts
// the whole rewrite.
func RewriteSrcset(ctx context.Context, srcset string, fn RewriteFunc, opts *RewriteOptions) (string, error) {
	parts := parseSrcset(srcset)

	var tasks []rewriteTask
	for _, p := range parts {
		if p.isURL {
			tasks = append(tasks, rewriteTask{url: p.text, fn: fn})
		}
	}
	if len(tasks) == 0 {
		return srcset, nil
	}
	results, err := runTasks(ctx, tasks, opts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(srcset))
	next := 0
	for _, p := range parts {
		if p.isURL {
			b.WriteString(results[next].URL)
			next++
		} else {
			b.WriteString(p.text)
		}
	}
	return b.String(), nil
}

// parseSrcset slices a srcset value into verbatim and URL parts.
func parseSrcset(s string) []srcsetPart {
	var parts []srcsetPart
	verbatim := func(text string) {
		if text != "" {
			parts = append(parts, srcsetPart{text: text})
		}
	}

	i := 0
	for i < len(s) {
		// Separating whitespace and bare commas.
		start := i
		for i < len(s) && (asciiSpace(s[i]) || s[i] == ',') {
			i++
		}
		verbatim(s[start:i])
		if i >= len(s) {
			break
		}

		// URL token: the ASCII-non-whitespace run, minus trailing commas
		// (those are separators, not URL content).
		start = i
		for i < len(s) && !asciiSpace(s[i]) {
			i++
		}
		run := s[start:i]
		urlEnd := len(run)
		for urlEnd > 0 && run[urlEnd-1] == ',' {
			urlEnd--
		}
		parts = append(parts, srcsetPart{text: run[:urlEnd], isURL: true})
		if urlEnd < len(run) {
			// Trailing commas terminated the candidate.
			verbatim(run[urlEnd:])
			continue
		}

		// Whitespace after the URL, then an optional descriptor running to
		// the next comma (or end). The candidate splits at the first run
		// of ASCII whitespace after the URL; the descriptor is emitted
		// verbatim and never rewritten.
		start = i
		for i < len(s) && asciiSpace(s[i]) {
			i++
		}
		verbatim(s[start:i])
		if i < len(s) && s[i] != ',' {
			start = i
			for i < len(s) && s[i] != ',' {
				i++
			}
			verbatim(s[start:i])
		}
	}
	return parts
}

// RewriteURLList rewrites a whitespace-delimited URL list (as found in
// attributes like ping or archive). Tokens are split on runs of ASCII
// whitespace only — non-ASCII whitespace stays inside its token — and the
// result is re-joined with single spaces, dropping leading and trailing
// empty segments. A callback error aborts the whole rewrite.
func RewriteURLList(ctx context.Context, list string, fn RewriteFunc, opts *RewriteOptions) (string, error) {
	var tokens []string
	i := 0
	for i < len(list) {
		for i < len(list) && asciiSpace(list[i]) {
			i++
		}
		start := i
		for i < len(list) && !asciiSpace(list[i]) {
			i++
		}
		if start < i {
			tokens = append(tokens, list[start:i])
		}
	}
	if len(tokens) == 0 {
		return "", nil
	}

	tasks := make([]rewriteTask, len(tokens))
	for i, tok := range tokens {
		tasks[i] = rewriteTask{url: tok, fn: fn}
	}
	results, err := runTasks(ctx, tasks, opts)
	if err != nil {
		return "", err
	}

	out := make([]string, len(results))
	for i, res := range results {
		out[i] = res.URL
	}
	return strings.Join(out, " "), nil
}
