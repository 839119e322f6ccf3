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

// scraprewrite rewrites resource references in captured web content.
//
// It reads one document from stdin, rewrites every resource URL it finds
// through the scope filter and normalizer, and writes the result to stdout:
//
//	scraprewrite -mode css < page.css > rewritten.css
//	scraprewrite -mode html -allow '*example.com*' < page.html
//	scraprewrite -mode normalize < urls.txt
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	scrapbook "github.com/lavague-ai/webscrapbook"
)

func main() {
	mode := flag.String("mode", "css", "Input kind to rewrite: css, srcset, list, html or normalize")
	allow := flag.String("allow", "", "Comma-separated glob patterns of URLs to rewrite")
	deny := flag.String("deny", "", "Comma-separated glob patterns of URLs to leave untouched")
	record := flag.Bool("record", false, "Annotate rewritten CSS references with their original URL")
	concurrency := flag.Int("concurrency", 1, "Maximum concurrent rewrite callbacks")
	flag.Parse()

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	fn := scrapbook.RewriteFunc(func(_ context.Context, url string) (scrapbook.RewriteResult, error) {
		normalized, err := scrapbook.NormalizeURL(url)
		if err != nil {
			// Leave URLs we cannot parse as they are.
			return scrapbook.RewriteResult{URL: url}, nil
		}
		res := scrapbook.RewriteResult{URL: normalized}
		if *record && normalized != url {
			res.RecordURL = url
		}
		return res, nil
	})
	fn, err = applyScope(fn, *allow, *deny)
	if err != nil {
		log.Fatalf("Invalid scope pattern: %v", err)
	}

	opts := scrapbook.NewDefaultRewriteOptions()
	opts.MaxConcurrency = *concurrency

	ctx := context.Background()
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	switch *mode {
	case "css":
		rw := scrapbook.CSSRewriters{Import: fn, FontFace: fn, Background: fn}
		result, err := scrapbook.RewriteCSSText(ctx, string(input), rw, opts)
		if err != nil {
			log.Fatalf("Failed to rewrite CSS: %v", err)
		}
		fmt.Fprint(out, result)
	case "srcset":
		result, err := scrapbook.RewriteSrcset(ctx, strings.TrimRight(string(input), "\n"), fn, opts)
		if err != nil {
			log.Fatalf("Failed to rewrite srcset: %v", err)
		}
		fmt.Fprintln(out, result)
	case "list":
		result, err := scrapbook.RewriteURLList(ctx, strings.TrimRight(string(input), "\n"), fn, opts)
		if err != nil {
			log.Fatalf("Failed to rewrite URL list: %v", err)
		}
		fmt.Fprintln(out, result)
	case "html":
		rw := scrapbook.DocumentRewriters{
			CSS:    scrapbook.CSSRewriters{Import: fn, FontFace: fn, Background: fn},
			Image:  fn,
			Anchor: fn,
		}
		doc, err := scrapbook.DecodeDocumentBytes(input, "")
		if err != nil {
			log.Fatalf("Failed to decode document: %v", err)
		}
		if err := scrapbook.RewriteDocument(ctx, out, strings.NewReader(doc), rw); err != nil {
			log.Fatalf("Failed to rewrite document: %v", err)
		}
	case "normalize":
		var urls []string
		for _, line := range strings.Split(strings.TrimRight(string(input), "\n"), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				urls = append(urls, line)
			}
		}
		results, errs := make([]string, len(urls)), make([]error, len(urls))
		pool := scrapbook.NewWorkerPool(ctx, *concurrency, len(urls))
		for i, u := range urls {
			if err := pool.Submit(func() {
				results[i], errs[i] = scrapbook.NormalizeURL(u)
			}); err != nil {
				log.Fatalf("Failed to queue %q: %v", u, err)
			}
		}
		pool.Close()
		for i, u := range urls {
			if errs[i] != nil {
				log.Fatalf("Failed to normalize %q: %v", u, errs[i])
			}
			fmt.Fprintln(out, results[i])
		}
	default:
		log.Fatalf("Unknown mode %q", *mode)
	}
}

func applyScope(fn scrapbook.RewriteFunc, allow, deny string) (scrapbook.RewriteFunc, error) {
	allowed := splitPatterns(allow)
	denied := splitPatterns(deny)
	if len(allowed) == 0 && len(denied) == 0 {
		return fn, nil
	}
	filter, err := scrapbook.NewScopeFilter(allowed, denied)
	if err != nil {
		return nil, err
	}
	return filter.Wrap(fn), nil
}

func splitPatterns(s string) []string {
	var patterns []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
