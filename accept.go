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
	"strconv"
	"strings"
)

// AcceptEntry is one parsed media range from an Accept header: a media type
// (possibly a wildcard range) paired with a quality weight in [0, 1].
//
// Entries produced by [ParseAccept] remember their position in the header,
// which serves as the final tie-break when quality and specificity are
// equal. Hand-built entries all carry position zero, so the order of the
// slice passed to [Negotiate] is preserved among equals.
type AcceptEntry struct {
	// MediaType is the accepted media range.
	MediaType MediaType

	// Quality is the q-value weight, defaulting to 1.0. Values outside
	// [0, 1] are clamped during parsing.
	Quality float64

	order int
}

// Accept builds a single AcceptEntry with the given quality, clamped into
// [0, 1]. Convenient for constructing preference lists in code:
//
//	entries := []conneg.AcceptEntry{
//	    conneg.Accept(conneg.MustMediaType("application/json"), 1.0),
//	    conneg.Accept(conneg.MustMediaType("text/html"), 0.5),
//	}
func Accept(mt MediaType, quality float64) AcceptEntry {
	return AcceptEntry{MediaType: mt, Quality: clampQuality(quality)}
}

// ParseAccept parses an Accept header into its entries. An empty or absent
// header yields a nil slice and nil error; negotiation then falls back to
// the handler's first declared offer.
//
// Parsing is permissive, matching HTTP convention: a media range that
// cannot be parsed (bad token, missing subtype, broken parameter) is
// skipped and the rest of the header is still used. Only a structurally
// unparseable header, one containing control bytes that no HTTP client
// produces, fails with [ErrMalformedHeader].
//
// Entries are returned in header order, unsorted. [Negotiate] applies
// quality and specificity ordering itself.
func ParseAccept(header string) ([]AcceptEntry, error) {
	if header == "" {
		return nil, nil
	}

	// Control bytes mean the value is not an HTTP header at all; surface
	// that as a client error rather than silently matching nothing.
	for i := 0; i < len(header); i++ {
		if header[i] < 0x20 && header[i] != '\t' {
			return nil, fmt.Errorf("%w: control byte at offset %d", ErrMalformedHeader, i)
		}
		if header[i] == 0x7f {
			return nil, fmt.Errorf("%w: control byte at offset %d", ErrMalformedHeader, i)
		}
	}

	var entries []AcceptEntry

	start := 0
	for i := 0; i <= len(header); i++ {
		if i == len(header) || header[i] == ',' {
			if i > start {
				if entry, ok := parseAcceptPart(header[start:i]); ok {
					entry.order = len(entries)
					entries = append(entries, entry)
				}
			}
			start = i + 1
		}
	}

	return entries, nil
}

// parseAcceptPart parses a single media range (between commas).
// Reports ok=false for ranges that should be skipped.
func parseAcceptPart(part string) (AcceptEntry, bool) {
	value, params := splitParams(part)

	start, end := trimWhitespace(value)
	value = value[start:end]
	if value == "" {
		return AcceptEntry{}, false
	}

	var mt MediaType
	slash := strings.IndexByte(value, '/')
	if slash == -1 {
		// A bare token like "text" is accepted as "text/*", matching the
		// permissive reading most servers apply.
		primary := strings.ToLower(value)
		if !validToken(primary) {
			return AcceptEntry{}, false
		}
		mt = MediaType{Type: primary, Subtype: "*"}
	} else {
		if slash == 0 || slash == len(value)-1 {
			return AcceptEntry{}, false
		}
		primary := strings.ToLower(value[:slash])
		subtype := strings.ToLower(value[slash+1:])
		if !validToken(primary) || !validToken(subtype) {
			return AcceptEntry{}, false
		}
		if primary == "*" && subtype != "*" {
			return AcceptEntry{}, false
		}
		mt = MediaType{Type: primary, Subtype: subtype}
	}

	entry := AcceptEntry{MediaType: mt, Quality: 1.0}
	for _, p := range params {
		key, val, ok := splitParam(p)
		if !ok {
			return AcceptEntry{}, false
		}
		if key == "q" {
			q, ok := parseQualityValue(val)
			if !ok {
				return AcceptEntry{}, false
			}
			entry.Quality = q
			continue
		}
		if entry.MediaType.params == nil {
			entry.MediaType.params = make(map[string]string, 2)
		}
		entry.MediaType.params[key] = val
	}

	return entry, true
}

// parseQualityValue parses a q parameter into a clamped quality.
// Reports ok=false when the value is not numeric at all.
func parseQualityValue(s string) (float64, bool) {
	if q := parseQuality(s); q >= 0 {
		return float64(q) / 1000.0, true
	}

	// Out-of-range but numeric values ("2", "-1", "1.5") are clamped rather
	// than rejected, so a sloppy client still negotiates deterministically.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return clampQuality(f), true
	}

	return 0, false
}

// parseQuality parses a q-value in the constrained HTTP grammar into
// integer thousandths ("1" -> 1000, "0.85" -> 850). Returns -1 when the
// string is not a valid in-range q-value.
//
// Quality values in HTTP are defined as:
//
//	qvalue = ( "0" [ "." 0*3DIGIT ] ) / ( "1" [ "." 0*3("0") ] )
func parseQuality(s string) int {
	if len(s) == 0 || len(s) > 5 { // Max valid: "1.000" or "0.999"
		return -1
	}

	// Common case: "1" or "1.0" or "1.00" or "1.000"
	if s[0] == '1' {
		if len(s) == 1 {
			return 1000
		}
		if len(s) < 3 || s[1] != '.' {
			return -1 // Invalid like "10" or "1x"
		}
		for i := 2; i < len(s); i++ {
			if s[i] != '0' {
				return -1 // Out of range like "1.5"
			}
		}
		return 1000
	}

	if s[0] == '0' {
		if len(s) == 1 {
			return 0
		}
		if len(s) < 3 || s[1] != '.' {
			return -1 // Invalid like "01" or "0."
		}

		// Parse "0.9", "0.85", "0.001", etc.
		result := 0
		multiplier := 100
		for i := 2; i < len(s) && i < 5; i++ { // Max 3 decimal digits
			if s[i] < '0' || s[i] > '9' {
				return -1
			}
			result += int(s[i]-'0') * multiplier
			multiplier /= 10
		}
		return result
	}

	return -1 // Doesn't start with 0 or 1
}

// clampQuality forces a quality weight into [0, 1].
func clampQuality(q float64) float64 {
	switch {
	case q < 0:
		return 0
	case q > 1:
		return 1
	default:
		return q
	}
}

// sortAccept orders entries by quality descending, then specificity
// descending (exact beats type/* beats */*), then original header position
// ascending. The sort is stable, so hand-built entries with equal rank keep
// their slice order.
func sortAccept(entries []AcceptEntry) []AcceptEntry {
	sorted := make([]AcceptEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Quality != sorted[j].Quality {
			return sorted[i].Quality > sorted[j].Quality
		}
		si, sj := sorted[i].MediaType.specificity(), sorted[j].MediaType.specificity()
		if si != sj {
			return si > sj
		}
		return sorted[i].order < sorted[j].order
	})

	return sorted
}
