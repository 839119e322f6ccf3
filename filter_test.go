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
	"testing"
)

func TestScopeFilterMatch(t *testing.T) {
	f, err := NewScopeFilter([]string{"*example.com*"}, []string{"*example.com/private*"})
	if err != nil {
		t.Fatalf("NewScopeFilter failed: %v", err)
	}

	if !f.Match("http://example.com/public/a.png") {
		t.Error("expected allowed URL to match")
	}
	if f.Match("http://example.com/private/a.png") {
		t.Error("expected denied URL not to match")
	}
	if f.Match("http://other.com/a.png") {
		t.Error("expected unlisted URL not to match")
	}
}

func TestScopeFilterDenyOnly(t *testing.T) {
	f, err := NewScopeFilter(nil, []string{"*tracker*"})
	if err != nil {
		t.Fatalf("NewScopeFilter failed: %v", err)
	}
	if !f.Match("http://example.com/a.png") {
		t.Error("expected non-denied URL to match with empty allow list")
	}
	if f.Match("http://tracker.example.com/pixel.gif") {
		t.Error("expected denied URL not to match")
	}
}

func TestScopeFilterNoPattern(t *testing.T) {
	if _, err := NewScopeFilter(nil, nil); err != ErrNoPattern {
		t.Errorf("got %v, want ErrNoPattern", err)
	}
}

func TestScopeFilterBadPattern(t *testing.T) {
	if _, err := NewScopeFilter([]string{"[invalid"}, nil); err == nil {
		t.Error("expected compile error for invalid pattern")
	}
}

func TestScopeFilterWrap(t *testing.T) {
	f, err := NewScopeFilter([]string{"*example.com*"}, nil)
	if err != nil {
		t.Fatalf("NewScopeFilter failed: %v", err)
	}
	fn := f.Wrap(prefixRewriter("saved/"))

	in, err := fn(context.Background(), "http://example.com/a.png")
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	if in.URL != "saved/http://example.com/a.png" {
		t.Errorf("got %q, want rewritten URL", in.URL)
	}

	out, err := fn(context.Background(), "http://other.com/a.png")
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	if out.URL != "http://other.com/a.png" || out.RecordURL != "" {
		t.Errorf("expected out-of-scope URL untouched, got %+v", out)
	}
}
