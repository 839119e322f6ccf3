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
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DocumentRewriters carries the callbacks applied while rewriting an HTML
// document. Nil callbacks leave the corresponding references untouched.
type DocumentRewriters struct {
	// CSS rewrites url() tokens inside style elements and style attributes.
	CSS CSSRewriters
	// Image rewrites the URLs of img/source srcset attributes.
	Image RewriteFunc
	// Anchor rewrites the URL lists of ping and archive attributes.
	Anchor RewriteFunc
}

// RewriteDocument parses an HTML document from r, rewrites its embedded
// resource references in place, and writes the serialized result to w.
//
// It covers the reference carriers that hold CSS text or URL lists rather
// than plain single-URL attributes: style elements, style attributes,
// srcset attributes on img and source elements, and the ping and archive
// URL-list attributes.
func RewriteDocument(ctx context.Context, w io.Writer, r io.Reader, rw DocumentRewriters) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return err
	}

	if err := rewriteStyleElements(ctx, doc, rw.CSS); err != nil {
		return err
	}
	if err := rewriteStyleAttrs(ctx, doc, rw.CSS); err != nil {
		return err
	}
	if err := rewriteSrcsetAttrs(ctx, doc, rw.Image); err != nil {
		return err
	}
	if err := rewriteURLListAttrs(ctx, doc, "ping", rw.Anchor); err != nil {
		return err
	}
	if err := rewriteURLListAttrs(ctx, doc, "archive", rw.Anchor); err != nil {
		return err
	}

	html, err := doc.Html()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, html)
	return err
}

func rewriteStyleElements(ctx context.Context, doc *goquery.Document, rw CSSRewriters) error {
	var rewriteErr error
	doc.Find("style").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		out, err := RewriteCSSText(ctx, s.Text(), rw, NewDefaultRewriteOptions())
		if err != nil {
			rewriteErr = err
			return false
		}
		s.SetText(out)
		return true
	})
	return rewriteErr
}

func rewriteStyleAttrs(ctx context.Context, doc *goquery.Document, rw CSSRewriters) error {
	// An inline style attribute holds declarations only, so only the
	// background callback can fire here.
	var rewriteErr error
	doc.Find("[style]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		style, _ := s.Attr("style")
		if !strings.Contains(strings.ToLower(style), "url(") {
			return true
		}
		out, err := RewriteCSSText(ctx, style, rw, NewDefaultRewriteOptions())
		if err != nil {
			rewriteErr = err
			return false
		}
		s.SetAttr("style", out)
		return true
	})
	return rewriteErr
}

func rewriteSrcsetAttrs(ctx context.Context, doc *goquery.Document, fn RewriteFunc) error {
	if fn == nil {
		return nil
	}
	var rewriteErr error
	doc.Find("img[srcset], source[srcset]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		srcset, _ := s.Attr("srcset")
		out, err := RewriteSrcset(ctx, srcset, fn, NewDefaultRewriteOptions())
		if err != nil {
			rewriteErr = err
			return false
		}
		s.SetAttr("srcset", out)
		return true
	})
	return rewriteErr
}

func rewriteURLListAttrs(ctx context.Context, doc *goquery.Document, attr string, fn RewriteFunc) error {
	if fn == nil {
		return nil
	}
	var rewriteErr error
	doc.Find("[" + attr + "]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		list, _ := s.Attr(attr)
		out, err := RewriteURLList(ctx, list, fn, NewDefaultRewriteOptions())
		if err != nil {
			rewriteErr = err
			return false
		}
		s.SetAttr(attr, out)
		return true
	})
	return rewriteErr
}
