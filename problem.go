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
	"encoding/json"
	"net/http"
)

// problemContentType is the RFC 9457 media type for problem detail bodies.
const problemContentType = "application/problem+json"

// Problem is an RFC 9457 problem detail. Negotiation failures (406) and
// malformed headers (400) are rendered in this shape so transport-layer
// failures stay machine-readable regardless of what the handler offers.
//
// Example:
//
//	conneg.WriteProblem(w, r, conneg.Problem{
//	    Title:  "Forbidden",
//	    Status: http.StatusForbidden,
//	    Detail: "route requires the admin attribute",
//	})
type Problem struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"-"`
}

// MarshalJSON merges extension members inline while protecting the reserved
// RFC 9457 field names.
func (p Problem) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}
	for k, v := range p.Extensions {
		if k != "type" && k != "title" && k != "status" && k != "detail" && k != "instance" {
			m[k] = v
		}
	}

	return json.Marshal(m)
}

// WriteProblem writes p as an application/problem+json response.
// A missing Type defaults to "about:blank" and a missing Title to the
// standard status text, per RFC 9457. Instance defaults to the request
// path.
func WriteProblem(w http.ResponseWriter, r *http.Request, p Problem) error {
	if p.Type == "" {
		p.Type = "about:blank"
	}
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	if p.Instance == "" && r != nil && r.URL != nil {
		p.Instance = r.URL.Path
	}

	w.Header().Set("Content-Type", problemContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(p.Status)

	return json.NewEncoder(w).Encode(p)
}
