// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package source provides an immutable, borrowed view over the document
// being parsed, with O(1) slicing and absolute-offset positions (spec §4.1).
// It plays the role google-gapid's core/text/parse.Reader plays for that
// codebase's scanner, but as an immutable value rather than a cursor the
// parser mutates in place: packrat memoization needs to re-enter the same
// offset from many call sites without any shared mutable cursor state.
package source

import (
	"regexp"
	"strings"

	"github.com/google/dhparse/cst"
)

// View is a read-only window onto a document, anchored at an absolute byte
// offset. Moving a View (Advance, At) never copies the underlying text;
// it only adjusts the offset.
type View struct {
	text string // the full, original document; shared by every View over it
	at   int    // absolute byte offset this View starts at
}

// New returns a View over the whole of text, anchored at offset 0.
func New(text string) View {
	return View{text: text, at: 0}
}

// Base returns this View's absolute offset into the original document.
func (v View) Base() cst.Position { return cst.Position(v.at) }

// Text returns the unconsumed remainder of the document from this View's
// offset to the end. This is a substring (no copy).
func (v View) Text() string { return v.text[v.at:] }

// Len returns the number of remaining bytes.
func (v View) Len() int { return len(v.text) - v.at }

// IsEOF reports whether this View has no remaining text.
func (v View) IsEOF() bool { return v.at >= len(v.text) }

// Advance returns a View n bytes further into the document. It panics if n
// would move past the end of the document or before this View's own start;
// combinators are expected to only ever advance by lengths they themselves
// measured against Text().
func (v View) Advance(n int) View {
	if n < 0 || v.at+n > len(v.text) {
		panic("source: Advance out of range")
	}
	return View{text: v.text, at: v.at + n}
}

// At returns a View anchored at the given absolute offset into the same
// document. It is used to jump back to a location recorded earlier (e.g. on
// backtrack or recursion-limit reset).
func (v View) At(pos cst.Position) View {
	return View{text: v.text, at: int(pos)}
}

// Prefix returns the first n bytes of the remaining text without advancing.
func (v View) Prefix(n int) string {
	if n > v.Len() {
		n = v.Len()
	}
	return v.text[v.at : v.at+n]
}

// HasPrefix reports whether the remaining text starts with s.
func (v View) HasPrefix(s string) bool {
	return strings.HasPrefix(v.Text(), s)
}

// Find returns the byte offset (relative to this View) of the first
// occurrence of substr within the window [start, end) of the remaining
// text, or (-1, false) if not found. end < 0 means "to the end of the view".
func (v View) Find(substr string, start, end int) (int, bool) {
	text := v.window(start, end)
	idx := strings.Index(text, substr)
	if idx < 0 {
		return -1, false
	}
	return start + idx, true
}

// Search returns the byte-offset span (relative to this View) of the first
// match of re within the window [start, end) of the remaining text.
func (v View) Search(re *regexp.Regexp, start, end int) (loc []int, ok bool) {
	text := v.window(start, end)
	m := re.FindStringIndex(text)
	if m == nil {
		return nil, false
	}
	return []int{m[0] + start, m[1] + start}, true
}

// Match runs re against the remaining text, returning the matched substring.
// re is expected to be anchored (e.g. compiled with a leading `\A`) by the
// caller if an at-this-exact-position match is required; Match itself makes
// no anchoring assumption beyond "the match starts no further in than
// offset 0 of the window" once the caller's pattern enforces it.
func (v View) Match(re *regexp.Regexp) (matched string, ok bool) {
	loc := re.FindStringIndex(v.Text())
	if loc == nil || loc[0] != 0 {
		return "", false
	}
	return v.text[v.at : v.at+loc[1]], true
}

// Reversed returns the document text preceding this View's offset, reversed
// rune-by-rune. It is used by Lookbehind/NegativeLookbehind (spec §4.4),
// which match against text to the left of the current position.
func (v View) Reversed() string {
	prefix := v.text[:v.at]
	runes := []rune(prefix)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func (v View) window(start, end int) string {
	text := v.Text()
	if start < 0 {
		start = 0
	}
	if end < 0 || end > len(text) {
		end = len(text)
	}
	if start > end {
		start = end
	}
	return text[start:end]
}
