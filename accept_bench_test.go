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

// Benchmarks for Accept header parsing and negotiation.
//
// # Running Benchmarks
//
//	# Run all negotiation benchmarks
//	go test -bench=. -benchmem
//
//	# Compare before/after optimization
//	go test -bench=. -benchmem > old.txt
//	# ... make changes ...
//	go test -bench=. -benchmem > new.txt
//	benchstat old.txt new.txt
//
// # Key Metrics to Watch
//
//   - Allocs/op for ParseAccept on typical browser headers
//   - ns/op for Negotiate against small and large offer sets
package conneg

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newBenchRequest(b *testing.B, target, accept string) *http.Request {
	b.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return req
}

// BenchmarkParseAccept benchmarks the header parser across header shapes.
func BenchmarkParseAccept(b *testing.B) {
	tests := []struct {
		name   string
		header string
	}{
		{"simple", "application/json"},
		{"with_quality", "text/html, application/json;q=0.9"},
		{"complex_browser", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"},
		{"with_params", "application/json;version=1;charset=utf-8, text/html;q=0.9, text/plain;q=0.8"},
	}

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			b.ReportAllocs()

			for b.Loop() {
				_, _ = ParseAccept(tt.header)
			}
		})
	}
}

// BenchmarkNegotiate benchmarks winner selection over parsed headers.
func BenchmarkNegotiate(b *testing.B) {
	offers := MustOffers(
		HTML("<p>report</p>"),
		JSON(map[string]int{"rows": 3}),
		Text("report"),
		Static(MustMediaType("text/csv"), []byte("a,b\n1,2\n")),
	)

	tests := []struct {
		name   string
		header string
	}{
		{"empty_header", ""},
		{"exact_match", "application/json"},
		{"weighted", "text/html;q=0.4, application/json;q=0.9, */*;q=0.1"},
		{"wildcard_only", "*/*"},
		{"complex_browser", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"},
	}

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			entries, err := ParseAccept(tt.header)
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			b.ReportAllocs()

			for b.Loop() {
				_, _ = Negotiate(entries, offers)
			}
		})
	}
}

// BenchmarkAcceptFrom benchmarks the full request path including the query
// override check.
func BenchmarkAcceptFrom(b *testing.B) {
	responder := NewResponder()

	b.Run("header_only", func(b *testing.B) {
		req := newBenchRequest(b, "/reports/1", "application/json, text/html;q=0.5")

		b.ResetTimer()
		b.ReportAllocs()

		for b.Loop() {
			_, _ = responder.AcceptFrom(req)
		}
	})

	b.Run("format_override", func(b *testing.B) {
		req := newBenchRequest(b, "/reports/1?format=json", "text/html")

		b.ResetTimer()
		b.ReportAllocs()

		for b.Loop() {
			_, _ = responder.AcceptFrom(req)
		}
	})
}
