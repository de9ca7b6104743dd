// Copyright 2025 The Rivaas Authors
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

package conneg

import (
	"fmt"
	"sort"
	"strings"
)

// Specificity levels for media range matching. Higher is more specific.
const (
	specificityNone            = 0 // no match
	specificityFullWildcard    = 1 // */*
	specificitySubtypeWildcard = 2 // type/*
	specificityExact           = 3 // type/subtype
)

// MediaType is an immutable structured media type value: a primary type, a
// subtype, and optional parameters such as charset. The wildcard forms "*/*"
// and "type/*" are valid as Accept media ranges; offered representations
// must use concrete type/subtype pairs.
//
// Type and Subtype are always lowercase. Construct values with
// [ParseMediaType], [MustMediaType], or [NewMediaType]; the zero value is
// not a valid media type.
type MediaType struct {
	// Type is the primary type, e.g. "text" in "text/html".
	Type string

	// Subtype is the subtype, e.g. "html" in "text/html".
	Subtype string

	params map[string]string
}

// NewMediaType builds a MediaType from a primary type and subtype.
// Both are lowercased; no validation beyond that is performed, so prefer
// [ParseMediaType] for untrusted input.
func NewMediaType(primary, subtype string) MediaType {
	return MediaType{
		Type:    strings.ToLower(primary),
		Subtype: strings.ToLower(subtype),
	}
}

// ParseMediaType parses a media type string like "text/html" or
// "application/json; charset=utf-8" into a MediaType. The "q" parameter is
// not meaningful on a concrete media type and is rejected here; it belongs
// to Accept entries.
//
// Returns [ErrInvalidMediaType] if the input has no type/subtype structure.
func ParseMediaType(s string) (MediaType, error) {
	value, params := splitParams(s)

	start, end := trimWhitespace(value)
	value = value[start:end]
	if value == "" {
		return MediaType{}, fmt.Errorf("%w: empty input", ErrInvalidMediaType)
	}

	slash := strings.IndexByte(value, '/')
	if slash <= 0 || slash == len(value)-1 {
		return MediaType{}, fmt.Errorf("%w: %q", ErrInvalidMediaType, s)
	}

	primary := strings.ToLower(value[:slash])
	subtype := strings.ToLower(value[slash+1:])
	if !validToken(primary) || !validToken(subtype) {
		return MediaType{}, fmt.Errorf("%w: %q", ErrInvalidMediaType, s)
	}
	if primary == "*" && subtype != "*" {
		// "*/json" is not a meaningful range
		return MediaType{}, fmt.Errorf("%w: %q", ErrInvalidMediaType, s)
	}

	mt := MediaType{Type: primary, Subtype: subtype}
	for _, p := range params {
		key, val, ok := splitParam(p)
		if !ok {
			return MediaType{}, fmt.Errorf("%w: bad parameter %q", ErrInvalidMediaType, p)
		}
		if key == "q" {
			return MediaType{}, fmt.Errorf("%w: q is not a media type parameter", ErrInvalidMediaType)
		}
		if mt.params == nil {
			mt.params = make(map[string]string, 2)
		}
		mt.params[key] = val
	}

	return mt, nil
}

// MustMediaType is like [ParseMediaType] but panics on invalid input.
// Intended for package-level declarations of well-known types.
//
// Example:
//
//	var textCSV = conneg.MustMediaType("text/csv")
func MustMediaType(s string) MediaType {
	mt, err := ParseMediaType(s)
	if err != nil {
		panic(err.Error())
	}
	return mt
}

// Param returns the value of the named parameter (e.g. "charset") and
// whether it was present.
func (m MediaType) Param(key string) (string, bool) {
	v, ok := m.params[strings.ToLower(key)]
	return v, ok
}

// String renders the media type, including parameters in sorted key order
// for deterministic output.
func (m MediaType) String() string {
	if len(m.params) == 0 {
		return m.Type + "/" + m.Subtype
	}

	keys := make([]string, 0, len(m.params))
	for k := range m.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(m.Type)
	b.WriteByte('/')
	b.WriteString(m.Subtype)
	for _, k := range keys {
		b.WriteString("; ")
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(m.params[k])
	}
	return b.String()
}

// IsWildcard reports whether the media type is the full wildcard "*/*".
func (m MediaType) IsWildcard() bool {
	return m.Type == "*" && m.Subtype == "*"
}

// IsSubtypeWildcard reports whether the media type is a subtype wildcard
// such as "text/*".
func (m MediaType) IsSubtypeWildcard() bool {
	return m.Type != "*" && m.Subtype == "*"
}

// Match reports whether m, treated as an accepted media range, is
// compatible with the concrete offered media type. Parameters other than q
// are ignored for matching, so "application/json;version=1" in an Accept
// header still matches a plain "application/json" offer.
func (m MediaType) Match(offer MediaType) bool {
	return m.matchSpecificity(offer) > specificityNone
}

// matchSpecificity returns how specifically m matches the offer:
// exact > subtype wildcard > full wildcard > no match.
func (m MediaType) matchSpecificity(offer MediaType) int {
	switch {
	case m.Type == "*" && m.Subtype == "*":
		return specificityFullWildcard
	case m.Type == offer.Type && m.Subtype == "*":
		return specificitySubtypeWildcard
	case m.Type == offer.Type && m.Subtype == offer.Subtype:
		return specificityExact
	default:
		return specificityNone
	}
}

// specificity returns the intrinsic specificity of the media range itself,
// used for ordering Accept entries with equal quality.
func (m MediaType) specificity() int {
	switch {
	case m.Type == "*" && m.Subtype == "*":
		return specificityFullWildcard
	case m.Subtype == "*":
		return specificitySubtypeWildcard
	default:
		return specificityExact
	}
}

// sameRange reports whether two media types name the same type/subtype pair,
// ignoring parameters. Used for duplicate detection in offer sets.
func (m MediaType) sameRange(other MediaType) bool {
	return m.Type == other.Type && m.Subtype == other.Subtype
}

// validToken reports whether s is a valid RFC 9110 token (or "*").
// Token characters are restricted; separators and control bytes are not
// allowed.
func validToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenByte(s[i]) {
			return false
		}
	}
	return true
}

// isTokenByte reports whether c may appear in an HTTP token.
func isTokenByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// splitParams splits "value; k1=v1; k2=v2" into the value and raw parameter
// segments. Segments are not trimmed.
func splitParams(s string) (string, []string) {
	semicolon := strings.IndexByte(s, ';')
	if semicolon == -1 {
		return s, nil
	}

	value := s[:semicolon]
	var params []string
	rest := s[semicolon+1:]
	start := 0
	for i := 0; i <= len(rest); i++ {
		if i == len(rest) || rest[i] == ';' {
			if i > start {
				params = append(params, rest[start:i])
			}
			start = i + 1
		}
	}
	return value, params
}

// splitParam parses a single "key=value" parameter segment. The key is
// lowercased and surrounding quotes on the value are removed.
func splitParam(p string) (key, value string, ok bool) {
	start, end := trimWhitespace(p)
	p = p[start:end]

	equals := strings.IndexByte(p, '=')
	if equals <= 0 || equals == len(p)-1 {
		return "", "", false
	}

	ks, ke := trimWhitespace(p[:equals])
	key = strings.ToLower(p[ks:ke])
	if !validToken(key) {
		return "", "", false
	}

	vs, ve := trimWhitespace(p[equals+1:])
	value = p[equals+1:][vs:ve]
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	if value == "" {
		return "", "", false
	}

	return key, value, true
}

// trimWhitespace returns start and end indices of non-whitespace content.
// Returns indices relative to the input string slice.
func trimWhitespace(s string) (start, end int) {
	start = 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\t') {
		start++
	}

	end = len(s)
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}

	return start, end
}
