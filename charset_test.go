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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBytesUTF8(t *testing.T) {
	got, err := DecodeBytes("utf-8", []byte("中文 text"), RejectInvalid)
	require.NoError(t, err)
	assert.Equal(t, "中文 text", got)

	// Empty label defaults to UTF-8.
	got, err = DecodeBytes("", []byte("plain"), RejectInvalid)
	require.NoError(t, err)
	assert.Equal(t, "plain", got)
}

func TestDecodeBytesInvalidUTF8(t *testing.T) {
	bad := []byte{'a', 0xff, 'b'}

	_, err := DecodeBytes("utf-8", bad, RejectInvalid)
	assert.ErrorIs(t, err, ErrInvalidBytes)

	got, err := DecodeBytes("utf-8", bad, ReplaceInvalid)
	require.NoError(t, err)
	assert.True(t, strings.ContainsRune(got, '�'))
}

func TestDecodeBytesASCII(t *testing.T) {
	got, err := DecodeBytes("us-ascii", []byte("hello"), RejectInvalid)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = DecodeBytes("us-ascii", []byte{0xe4}, RejectInvalid)
	assert.ErrorIs(t, err, ErrInvalidBytes)

	got, err = DecodeBytes("ascii", []byte{'a', 0xe4}, ReplaceInvalid)
	require.NoError(t, err)
	assert.Equal(t, "a�", got)
}

func TestDecodeBytesLatin1(t *testing.T) {
	got, err := DecodeBytes("iso-8859-1", []byte{0x63, 0x61, 0x66, 0xe9}, ReplaceInvalid)
	require.NoError(t, err)
	assert.Equal(t, "café", got)
}

func TestDecodeBytesUnsupportedCharset(t *testing.T) {
	_, err := DecodeBytes("no-such-charset", []byte("x"), ReplaceInvalid)
	assert.ErrorIs(t, err, ErrUnsupportedCharset)
}

func TestDetectCharset(t *testing.T) {
	charset, err := DetectCharset([]byte("これは日本語のテキストです。文字コードを判定します。"))
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", charset)
}

func TestDecodeLegacyText(t *testing.T) {
	assert.Equal(t, "already utf-8 中", DecodeLegacyText([]byte("already utf-8 中")))
}

func TestDecodeDocumentBytes(t *testing.T) {
	// Meta declaration drives the decode.
	doc := []byte(`<html><head><meta charset="iso-8859-1"></head><body>caf` + "\xe9" + `</body></html>`)
	got, err := DecodeDocumentBytes(doc, "")
	require.NoError(t, err)
	assert.Contains(t, got, "café")

	// Content-Type header wins when present.
	got, err = DecodeDocumentBytes([]byte("caf\xe9"), "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "café", got)

	// Plain UTF-8 with no declaration passes through.
	got, err = DecodeDocumentBytes([]byte("<p>中文</p>"), "")
	require.NoError(t, err)
	assert.Equal(t, "<p>中文</p>", got)
}
