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
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ResourceMap assigns CSS custom-property placeholder names to resolved
// resource URLs. When a ResourceMap is attached to RewriteOptions,
// background url() tokens in stylesheets are rewritten to var() references
// against these placeholders instead of inline URLs, letting one captured
// stylesheet be shared across shadow roots.
//
// The same URL always maps to the same placeholder within a map instance.
// ResourceMap is not safe for concurrent use without external locking; the
// rewriters serialize their commits, so a single map may be shared by the
// callbacks of one rewrite invocation.
type ResourceMap struct {
	instance string
	next     int
	entries  map[string]string
	order    []string
}

// NewResourceMap creates a ResourceMap whose placeholder names embed the
// given instance token, e.g. "--sb20200102030405067-1".
func NewResourceMap(instance string) *ResourceMap {
	return &ResourceMap{
		instance: instance,
		next:     1,
		entries:  make(map[string]string),
	}
}

// Placeholder returns the custom-property name for url, allocating the next
// sequential name on first sight.
func (m *ResourceMap) Placeholder(url string) string {
	if name, ok := m.entries[url]; ok {
		return name
	}
	name := fmt.Sprintf("--sb%s-%d", m.instance, m.next)
	m.next++
	m.entries[url] = name
	m.order = append(m.order, url)
	return name
}

// URLs returns the mapped URLs in first-seen order.
func (m *ResourceMap) URLs() []string {
	urls := make([]string, len(m.order))
	copy(urls, m.order)
	return urls
}

// Len returns the number of mapped URLs.
func (m *ResourceMap) Len() int {
	return len(m.entries)
}

// ResourceStore tracks the payloads captured during one scrapbook session
// and assigns each a unique filename. Identical payloads registered under
// different URLs share a single filename, keyed by content hash.
//
// The zero value is not usable; call Init first.
type ResourceStore struct {
	lock          sync.RWMutex
	sessionID     string
	byFingerprint map[uint64]string
	taken         map[string]bool
}

// Init initializes the store and stamps it with a fresh session ID.
func (s *ResourceStore) Init() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.sessionID == "" {
		s.sessionID = DateToID(time.Now())
	}
	if s.byFingerprint == nil {
		s.byFingerprint = make(map[uint64]string)
	}
	if s.taken == nil {
		s.taken = make(map[string]bool)
	}
	return nil
}

// SessionID returns the timestamp ID assigned at Init.
func (s *ResourceStore) SessionID() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.sessionID
}

// Register records a captured payload and returns the filename it is stored
// under. The second return value is true when an identical payload was
// already registered, in which case the existing filename is reused.
//
// The filename is derived from the response headers and source URL via
// SuggestFilename, validated for cross-platform safety, and uniquified with
// a numeric suffix on collision.
func (s *ResourceStore) Register(data []byte, sourceURL, contentType, contentDisposition string) (string, bool) {
	fingerprint := xxhash.Sum64(data)

	s.lock.Lock()
	defer s.lock.Unlock()

	if name, ok := s.byFingerprint[fingerprint]; ok {
		return name, true
	}

	name := SuggestFilename(sourceURL, contentDisposition, contentType)
	name = ValidateFilename(name, false)
	name = uniquifyFilename(name, s.taken)

	s.byFingerprint[fingerprint] = name
	s.taken[name] = true
	return name, false
}

// Len returns the number of distinct payloads registered.
func (s *ResourceStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.byFingerprint)
}

// uniquifyFilename appends "-1", "-2", ... to the stem until the name is
// free in taken. The stem is cropped so suffixed names stay within common
// filesystem limits.
func uniquifyFilename(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	stem, ext := splitExtension(name)
	stem = CropEllipsis(stem, 0, 240, "")
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if !taken[candidate] {
			return candidate
		}
	}
}

func splitExtension(name string) (stem, ext string) {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i], name[i:]
	}
	return name, ""
}
