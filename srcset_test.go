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
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRewriteSrcsetBasic(t *testing.T) {
	got, err := RewriteSrcset(context.Background(), "a.png 1x, b.png 2x", prefixRewriter("s/"), nil)
	if err != nil {
		t.Fatalf("RewriteSrcset failed: %v", err)
	}
	want := "s/a.png 1x, s/b.png 2x"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteSrcsetPreservesSeparators(t *testing.T) {
	// Separator whitespace and comma placement round-trip byte for byte.
	in := "  a.png   480w ,\tb.png\n2x  "
	got, err := RewriteSrcset(context.Background(), in, prefixRewriter(""), nil)
	if err != nil {
		t.Fatalf("RewriteSrcset failed: %v", err)
	}
	if got != in {
		t.Errorf("got %q, want %q", got, in)
	}
}

func TestRewriteSrcsetEmbeddedCommas(t *testing.T) {
	// Commas inside a URL are content; only edge commas separate.
	var seen []string
	fn := func(_ context.Context, url string) (RewriteResult, error) {
		seen = append(seen, url)
		return RewriteResult{URL: url}, nil
	}
	in := "data:image/png;base64,iVBOR 1x, plain.png 2x"
	got, err := RewriteSrcset(context.Background(), in, fn, nil)
	if err != nil {
		t.Fatalf("RewriteSrcset failed: %v", err)
	}
	if got != in {
		t.Errorf("got %q, want %q", got, in)
	}
	if len(seen) != 2 || seen[0] != "data:image/png;base64,iVBOR" || seen[1] != "plain.png" {
		t.Errorf("unexpected URLs extracted: %v", seen)
	}
}

func TestRewriteSrcsetNoDescriptor(t *testing.T) {
	got, err := RewriteSrcset(context.Background(), "a.png, b.png", prefixRewriter("s/"), nil)
	if err != nil {
		t.Fatalf("RewriteSrcset failed: %v", err)
	}
	want := "s/a.png, s/b.png"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteSrcsetNonASCIIWhitespaceIsContent(t *testing.T) {
	// U+00A0 does not separate; it stays inside the URL token.
	var seen []string
	fn := func(_ context.Context, url string) (RewriteResult, error) {
		seen = append(seen, url)
		return RewriteResult{URL: url}, nil
	}
	if _, err := RewriteSrcset(context.Background(), "a\u00a0b.png 1x", fn, nil); err != nil {
		t.Fatalf("RewriteSrcset failed: %v", err)
	}
	if len(seen) != 1 || seen[0] != "a\u00a0b.png" {
		t.Errorf("unexpected URLs extracted: %v", seen)
	}
}

func TestRewriteSrcsetCallbackErrorAborts(t *testing.T) {
	wantErr := errors.New("lookup failed")
	fn := func(_ context.Context, url string) (RewriteResult, error) {
		return RewriteResult{}, wantErr
	}
	got, err := RewriteSrcset(context.Background(), "a.png 1x", fn, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if got != "" {
		t.Errorf("expected no partial output, got %q", got)
	}
}

func TestRewriteSrcsetConcurrentOrdering(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "img%d.png %dx", i, i+1)
	}
	srcset := b.String()

	// Later candidates complete first; re-emission must still follow
	// source order.
	var started atomic.Int32
	fn := func(_ context.Context, url string) (RewriteResult, error) {
		n := started.Add(1)
		time.Sleep(time.Duration(21-n) * time.Millisecond)
		return RewriteResult{URL: "saved/" + url}, nil
	}
	opts := &RewriteOptions{MaxConcurrency: 8}

	got, err := RewriteSrcset(context.Background(), srcset, fn, opts)
	if err != nil {
		t.Fatalf("RewriteSrcset failed: %v", err)
	}
	var want strings.Builder
	for i := 0; i < 20; i++ {
		if i > 0 {
			want.WriteString(", ")
		}
		fmt.Fprintf(&want, "saved/img%d.png %dx", i, i+1)
	}
	if got != want.String() {
		t.Errorf("got %q, want %q", got, want.String())
	}
}

func TestRewriteSrcsetEmpty(t *testing.T) {
	got, err := RewriteSrcset(context.Background(), "", prefixRewriter("s/"), nil)
	if err != nil {
		t.Fatalf("RewriteSrcset failed: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestRewriteURLList(t *testing.T) {
	got, err := RewriteURLList(context.Background(), "  /a \t /b\n/c  ", prefixRewriter("h"), nil)
	if err != nil {
		t.Fatalf("RewriteURLList failed: %v", err)
	}
	want := "h/a h/b h/c"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteURLListNonASCIIWhitespace(t *testing.T) {
	// The ideographic space is not a delimiter, so this is one token.
	var seen []string
	fn := func(_ context.Context, url string) (RewriteResult, error) {
		seen = append(seen, url)
		return RewriteResult{URL: url}, nil
	}
	got, err := RewriteURLList(context.Background(), "a\u3000b", fn, nil)
	if err != nil {
		t.Fatalf("RewriteURLList failed: %v", err)
	}
	if got != "a\u3000b" || len(seen) != 1 {
		t.Errorf("got %q with URLs %v", got, seen)
	}
}

func TestRewriteURLListEmpty(t *testing.T) {
	got, err := RewriteURLList(context.Background(), "   ", prefixRewriter("h"), nil)
	if err != nil {
		t.Fatalf("RewriteURLList failed: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
