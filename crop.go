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

import "unicode/utf8"

// Crop truncates text with the default "..." ellipsis. See CropEllipsis.
func Crop(text string, charLimit, byteLimit int) string {
	return CropEllipsis(text, charLimit, byteLimit, "...")
}

// CropEllipsis truncates text at a code-point boundary so that the result
// plus the ellipsis satisfies both charLimit (code points) and byteLimit
// (UTF-8 bytes); whichever is smaller binds. A zero limit disables that
// constraint. Text already within the limits is returned unchanged.
// Degenerate limits that cannot even hold the ellipsis reduce the output
// to the longest fitting prefix of the ellipsis itself.
func CropEllipsis(text string, charLimit, byteLimit int, ellipsis string) string {
	overChars := charLimit > 0 && utf8.RuneCountInString(text) > charLimit
	overBytes := byteLimit > 0 && len(text) > byteLimit
	if !overChars && !overBytes {
		return text
	}

	charBudget, byteBudget := -1, -1
	if charLimit > 0 {
		charBudget = charLimit - utf8.RuneCountInString(ellipsis)
	}
	if byteLimit > 0 {
		byteBudget = byteLimit - len(ellipsis)
	}
	if (charLimit > 0 && charBudget < 0) || (byteLimit > 0 && byteBudget < 0) {
		cl, bl := charLimit, byteLimit
		if cl == 0 {
			cl = -1
		}
		if bl == 0 {
			bl = -1
		}
		return prefixWithin(ellipsis, cl, bl)
	}
	return prefixWithin(text, charBudget, byteBudget) + ellipsis
}

// prefixWithin returns the longest prefix of s holding at most charLimit
// code points and byteLimit bytes, never splitting a multi-byte character.
// Negative limits mean unconstrained.
func prefixWithin(s string, charLimit, byteLimit int) string {
	chars := 0
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		if charLimit >= 0 && chars+1 > charLimit {
			return s[:i]
		}
		if byteLimit >= 0 && i+size > byteLimit {
			return s[:i]
		}
		chars++
		i += size
	}
	return s
}
