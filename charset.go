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
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/ianaindex"
)

// ReplacementPolicy selects what DecodeBytes does with byte sequences that
// are not valid in the requested charset.
type ReplacementPolicy int

const (
	// ReplaceInvalid substitutes U+FFFD for undecodable sequences.
	ReplaceInvalid ReplacementPolicy = iota
	// RejectInvalid fails with ErrInvalidBytes instead. The RFC 5987
	// ext-value path uses this so a bad parameter is dropped whole.
	RejectInvalid
)

var (
	// ErrUnsupportedCharset is returned for charset labels the codec table
	// does not know.
	ErrUnsupportedCharset = errors.New("unsupported charset")
	// ErrInvalidBytes is returned under RejectInvalid for input that is
	// not valid in the requested charset.
	ErrInvalidBytes = errors.New("byte sequence invalid for charset")
)

// DecodeBytes decodes b according to the IANA charset label. The codec
// table is linked directly via x/text; there is no host-delegated
// decoding.
func DecodeBytes(charset string, b []byte, policy ReplacementPolicy) (string, error) {
	label := strings.TrimSpace(strings.ToLower(charset))
	switch label {
	case "", "utf-8", "utf8":
		if utf8.Valid(b) {
			return string(b), nil
		}
		if policy == RejectInvalid {
			return "", fmt.Errorf("%w: %q", ErrInvalidBytes, charset)
		}
		return strings.ToValidUTF8(string(b), "�"), nil
	case "us-ascii", "ascii":
		for _, c := range b {
			if c >= 0x80 {
				if policy == RejectInvalid {
					return "", fmt.Errorf("%w: %q", ErrInvalidBytes, charset)
				}
				return asciiWithReplacement(b), nil
			}
		}
		return string(b), nil
	}

	enc, err := ianaindex.MIME.Encoding(label)
	if err != nil || enc == nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCharset, charset)
	}
	decoded, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		if policy == RejectInvalid {
			return "", fmt.Errorf("%w: %q", ErrInvalidBytes, charset)
		}
		return strings.ToValidUTF8(string(decoded), "�"), nil
	}
	s := string(decoded)
	// x/text decoders substitute U+FFFD instead of failing; its presence
	// marks undecodable input.
	if policy == RejectInvalid && strings.ContainsRune(s, utf8.RuneError) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBytes, charset)
	}
	return s, nil
}

func asciiWithReplacement(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c >= 0x80 {
			sb.WriteRune(utf8.RuneError)
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// DetectCharset guesses the charset of undeclared legacy bytes. This
// feature uses https://github.com/saintfish/chardet.
func DetectCharset(b []byte) (string, error) {
	result, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil {
		return "", err
	}
	return result.Charset, nil
}

// DecodeLegacyText decodes header or filename bytes of unknown origin:
// valid UTF-8 passes through, anything else goes through charset
// detection, falling back to U+FFFD replacement when detection fails.
func DecodeLegacyText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	if label, err := DetectCharset(b); err == nil {
		if s, err := DecodeBytes(label, b, ReplaceInvalid); err == nil {
			return s
		}
	}
	return strings.ToValidUTF8(string(b), "�")
}

// DecodeDocumentBytes decodes a captured HTML document to UTF-8, honoring
// its BOM, the Content-Type header and in-document meta declarations via
// the WHATWG sniffing rules. When sniffing is uncertain and the bytes are
// already valid UTF-8 they pass through unchanged.
func DecodeDocumentBytes(b []byte, contentType string) (string, error) {
	enc, _, certain := charset.DetermineEncoding(b, contentType)
	if !certain && utf8.Valid(b) {
		return string(b), nil
	}
	decoded, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
