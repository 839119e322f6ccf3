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

	"github.com/gobwas/glob"
)

// ErrNoPattern is returned by NewScopeFilter when neither allow nor deny
// patterns are given.
var ErrNoPattern = errors.New("no pattern defined in filter")

// ScopeFilter decides which resource URLs a capture may touch.
// A URL is in scope when it matches at least one allow pattern (an empty
// allow list admits everything) and matches no deny pattern. Deny wins
// over allow.
type ScopeFilter struct {
	allowed []glob.Glob
	denied  []glob.Glob
}

// NewScopeFilter compiles the allow and deny glob patterns into a filter.
// At least one pattern is required.
func NewScopeFilter(allow, deny []string) (*ScopeFilter, error) {
	if len(allow) == 0 && len(deny) == 0 {
		return nil, ErrNoPattern
	}
	f := &ScopeFilter{}
	for _, p := range allow {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		f.allowed = append(f.allowed, g)
	}
	for _, p := range deny {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		f.denied = append(f.denied, g)
	}
	return f, nil
}

// Match reports whether url is in scope.
func (f *ScopeFilter) Match(url string) bool {
	for _, g := range f.denied {
		if g.Match(url) {
			return false
		}
	}
	if len(f.allowed) == 0 {
		return true
	}
	for _, g := range f.allowed {
		if g.Match(url) {
			return true
		}
	}
	return false
}

// Wrap returns a rewrite callback that applies fn only to in-scope URLs.
// Out-of-scope URLs pass through unchanged with no record annotation.
func (f *ScopeFilter) Wrap(fn RewriteFunc) RewriteFunc {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, url string) (RewriteResult, error) {
		if !f.Match(url) {
			return RewriteResult{URL: url}, nil
		}
		return fn(ctx, url)
	}
}
