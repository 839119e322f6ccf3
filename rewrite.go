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

	"golang.org/x/sync/errgroup"
)

// RewriteResult is the outcome of resolving a single discovered URL.
type RewriteResult struct {
	// URL replaces the original reference. In CSS output it is re-quoted
	// with double quotes and escaped.
	URL string
	// RecordURL, when non-empty, causes an annotation comment
	// /*scrapbook-orig-url="..."*/ to be inserted immediately before the
	// replacement so the pre-rewrite URL stays recoverable.
	RecordURL string
}

// RewriteFunc maps a discovered URL to its replacement. It is supplied by
// the capture pipeline and may block (network lookups, cache probes). An
// error aborts the entire rewrite it participates in; no partial text is
// ever returned.
type RewriteFunc func(ctx context.Context, url string) (RewriteResult, error)

// RewriteOptions controls how a rewrite entry point dispatches its
// callbacks.
type RewriteOptions struct {
	// MaxConcurrency is the maximum number of callback invocations in
	// flight at once. Values <= 1 run callbacks sequentially in source
	// order. Regardless of concurrency, replacements are always committed
	// in original left-to-right document order.
	MaxConcurrency int
	// ResourceMap, when set, switches CSS background-image replacements to
	// var(--sb<instance>-<n>) placeholders recorded in the map. Import and
	// font-face contexts, srcset and URL lists ignore it.
	ResourceMap *ResourceMap
}

// NewDefaultRewriteOptions returns the options used when nil is passed to a
// rewrite entry point: sequential dispatch, no resource map.
func NewDefaultRewriteOptions() *RewriteOptions {
	return &RewriteOptions{MaxConcurrency: 1}
}

// rewriteTask pairs a discovered URL with the callback responsible for it.
type rewriteTask struct {
	url string
	fn  RewriteFunc
}

// runTasks invokes every task callback and returns the results indexed by
// occurrence. With MaxConcurrency > 1 the callbacks run under a bounded
// errgroup; completion order is irrelevant because each result lands in its
// own slot and the caller splices by index. The first callback error
// cancels the group and fails the whole batch.
func runTasks(ctx context.Context, tasks []rewriteTask, opts *RewriteOptions) ([]RewriteResult, error) {
	if opts == nil {
		opts = NewDefaultRewriteOptions()
	}
	results := make([]RewriteResult, len(tasks))

	if opts.MaxConcurrency <= 1 {
		for i, task := range tasks {
			if task.fn == nil {
				results[i] = RewriteResult{URL: task.url}
				continue
			}
			res, err := task.fn(ctx, task.url)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxConcurrency)
	for i, task := range tasks {
		i, task := i, task
		if task.fn == nil {
			results[i] = RewriteResult{URL: task.url}
			continue
		}
		g.Go(func() error {
			res, err := task.fn(gctx, task.url)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// quoteCSSString renders s as a double-quoted CSS string with internal
// double quotes and backslashes escaped.
func quoteCSSString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// annotationComment renders the marker comment preserving the pre-rewrite
// URL for later reference.
func annotationComment(recordURL string) string {
	return "/*scrapbook-orig-url=" + quoteCSSString(recordURL) + "*/"
}
