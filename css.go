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

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// CSSRewriters carries one callback per CSS reference context. A nil
// callback leaves references in its context untouched.
type CSSRewriters struct {
	// Import handles @import targets (quoted string or url() form),
	// terminated at the semicolon.
	Import RewriteFunc
	// FontFace handles url() references inside a @font-face block.
	FontFace RewriteFunc
	// Background handles every other url() reference.
	Background RewriteFunc
}

// cssContext identifies which structural position a reference was found in.
// Contexts are mutually exclusive and decided by position, not by pattern
// matching: an @font-face block wins over background for everything inside
// its braces, and an @import target wins until its terminating semicolon.
type cssContext int

const (
	contextBackground cssContext = iota
	contextImport
	contextFontFace
)

// cssRef is one rewrite target located in the source text.
type cssRef struct {
	start, end int    // byte span to replace
	url        string // extracted literal URL text
	context    cssContext
	urlToken   string // original "url(" spelling, "" for a bare quoted string
	lead       string // whitespace between "url(" and the URL, preserved
	trail      string // whitespace between the URL and ")", preserved
}

// RewriteCSSText locates @import targets, url() references inside
// @font-face blocks and all other url() references in src, resolves each
// through the matching callback and splices the results back in source
// order. Everything that is not a located reference is emitted
// byte-identical, including malformed regions, strings and comments.
//
// Any callback error aborts the rewrite; callers fall back to the original
// text.
func RewriteCSSText(ctx context.Context, src string, rw CSSRewriters, opts *RewriteOptions) (string, error) {
	refs := parseCSSRefs(src)
	if len(refs) == 0 {
		return src, nil
	}

	tasks := make([]rewriteTask, len(refs))
	for i, ref := range refs {
		tasks[i] = rewriteTask{url: ref.url, fn: rw.callbackFor(ref.context)}
	}
	results, err := runTasks(ctx, tasks, opts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for i, ref := range refs {
		if tasks[i].fn == nil {
			continue
		}
		b.WriteString(src[last:ref.start])
		b.WriteString(ref.replacement(results[i], opts))
		last = ref.end
	}
	b.WriteString(src[last:])
	return b.String(), nil
}

func (rw CSSRewriters) callbackFor(c cssContext) RewriteFunc {
	switch c {
	case contextImport:
		return rw.Import
	case contextFontFace:
		return rw.FontFace
	}
	return rw.Background
}

// replacement renders the text substituted for the reference span.
func (ref cssRef) replacement(res RewriteResult, opts *RewriteOptions) string {
	if ref.context == contextBackground && opts != nil && opts.ResourceMap != nil {
		return "var(" + opts.ResourceMap.Placeholder(res.URL) + ")"
	}

	var b strings.Builder
	quoted := quoteCSSString(res.URL)
	if ref.urlToken != "" {
		b.WriteString(ref.urlToken)
		b.WriteString(ref.lead)
		if res.RecordURL != "" {
			b.WriteString(annotationComment(res.RecordURL))
		}
		b.WriteString(quoted)
		b.WriteString(ref.trail)
		b.WriteByte(')')
		return b.String()
	}
	if res.RecordURL != "" {
		b.WriteString(annotationComment(res.RecordURL))
	}
	b.WriteString(quoted)
	return b.String()
}

// importState tracks progress through one @import rule.
type importState int

const (
	importNone     importState = iota
	importAwaiting             // keyword seen, target not yet found
	importCaptured             // target found, ignore until the semicolon
)

// parseCSSRefs tokenizes the source once and collects every rewrite target
// with its structural context. The token stream keeps string literals and
// comments whole, so nothing inside them is ever collected, and every
// token not part of a collected reference round-trips byte-identical.
func parseCSSRefs(src string) []cssRef {
	var refs []cssRef
	lexer := css.NewLexer(parse.NewInputString(src))

	offset := 0
	depth := 0
	fontFaceDepth := -1 // brace depth of the innermost open @font-face block
	pendingFontFace := false
	imp := importNone

	// resolve decides the context of a reference found at the current
	// position and advances the @import state machine.
	resolve := func() cssContext {
		if imp == importAwaiting {
			imp = importCaptured
			return contextImport
		}
		if fontFaceDepth != -1 && depth >= fontFaceDepth {
			return contextFontFace
		}
		return contextBackground
	}

	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			return refs
		}
		raw := string(data)
		start := offset
		offset += len(raw)

		switch tt {
		case css.SemicolonToken:
			imp = importNone
			pendingFontFace = false

		case css.LeftBraceToken:
			depth++
			if pendingFontFace {
				fontFaceDepth = depth
				pendingFontFace = false
			}
			imp = importNone

		case css.RightBraceToken:
			if depth == fontFaceDepth {
				fontFaceDepth = -1
			}
			if depth > 0 {
				depth--
			}

		case css.AtKeywordToken:
			switch {
			case strings.EqualFold(raw, "@font-face"):
				pendingFontFace = true
			case strings.EqualFold(raw, "@import"):
				imp = importAwaiting
			}

		case css.StringToken:
			if imp == importAwaiting {
				refs = append(refs, cssRef{
					start:   start,
					end:     offset,
					url:     stringTokenText(raw),
					context: contextImport,
				})
				imp = importCaptured
			}

		case css.URLToken:
			if ref, ok := parseURLToken(raw, start); ok {
				ref.context = resolve()
				refs = append(refs, ref)
			}
		}
	}
}

// parseURLToken splits the raw bytes of a url(...) token into the original
// spelling, the preserved inner whitespace and the URL text, unquoting a
// quoted target. Tokens cut short by end of input keep no closing
// parenthesis; those are left byte-identical in the output.
func parseURLToken(raw string, start int) (cssRef, bool) {
	if !strings.HasSuffix(raw, ")") {
		return cssRef{}, false
	}
	open := strings.IndexByte(raw, '(') + 1
	inner := raw[open : len(raw)-1]
	content := strings.TrimLeft(inner, " \t\n\r\f")
	url := strings.TrimRight(content, " \t\n\r\f")
	trail := content[len(url):]
	if len(url) > 0 && (url[0] == '"' || url[0] == '\'') {
		url = stringTokenText(url)
	}
	return cssRef{
		start:    start,
		end:      start + len(raw),
		url:      url,
		urlToken: raw[:open],
		lead:     inner[:len(inner)-len(content)],
		trail:    trail,
	}, true
}

// stringTokenText returns the literal text between the quotes of a string
// token, escape sequences kept verbatim. A token cut short by end of input
// has no closing quote to strip; a final quote preceded by an odd number of
// backslashes is escaped content, not a terminator.
func stringTokenText(raw string) string {
	if len(raw) < 2 || raw[len(raw)-1] != raw[0] {
		return raw[1:]
	}
	backslashes := 0
	for i := len(raw) - 2; i > 0 && raw[i] == '\\'; i-- {
		backslashes++
	}
	if backslashes%2 == 1 {
		return raw[1:]
	}
	return raw[1 : len(raw)-1]
}
