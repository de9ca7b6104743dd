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

package route

import (
	"net/http"
	"strings"
)

// Params holds path parameters captured during lookup, keyed by the
// parameter name from the pattern ("/users/:id" captures "id").
type Params map[string]string

// Get returns the named parameter or an empty string.
func (p Params) Get(name string) string {
	return p[name]
}

// Handler handles a dispatched request. A returned error is rendered by the
// dispatcher as a problem-details response; handlers that write their own
// response return nil.
type Handler func(w http.ResponseWriter, r *http.Request, p Params) error

// segment is one element of a compiled path pattern.
type segment struct {
	static bool   // true if static text, false if parameter
	value  string // static text or parameter name
}

// Route is one table entry: a method, a path pattern, a handler, and a set
// of opaque attribute tags. Routes are created through [Table.Add] and
// configured fluently before [Table.Freeze]; afterwards they are immutable
// and shared by all request goroutines.
type Route struct {
	table      *Table
	method     string
	path       string
	name       string
	attributes []string
	handler    Handler
	segments   []segment
	paramCount int
}

// SetName assigns a name for lookup via [Table.Named] and introspection.
// Names must be unique across the table; Freeze enforces this.
// Panics if the table is already frozen.
func (r *Route) SetName(name string) *Route {
	r.table.checkMutable("name route")
	r.name = name
	return r
}

// Tag attaches attribute tags to the route. Tags are opaque to this
// package; their meaning belongs to the authorization layer reading them.
// Repeated tags collapse to one. Panics if the table is already frozen.
//
// Tag syntax is validated by Freeze: a tag must be non-empty printable
// ASCII without spaces or commas, so tag lists stay unambiguous in logs
// and config.
func (r *Route) Tag(tags ...string) *Route {
	r.table.checkMutable("tag route")
	for _, tag := range tags {
		if !r.hasAttributeRaw(tag) {
			r.attributes = append(r.attributes, tag)
		}
	}
	return r
}

// Method returns the HTTP method for this route.
func (r *Route) Method() string {
	return r.method
}

// Path returns the route path pattern.
func (r *Route) Path() string {
	return r.path
}

// Name returns the route name (empty if not named).
func (r *Route) Name() string {
	return r.name
}

// Attributes returns a copy of the route's attribute tags in declaration
// order. Untagged routes return an empty, non-nil slice; the call never
// fails. Callers may keep or mutate the returned slice freely.
func (r *Route) Attributes() []string {
	out := make([]string, len(r.attributes))
	copy(out, r.attributes)
	return out
}

// HasAttribute reports whether the route carries the given tag.
func (r *Route) HasAttribute(tag string) bool {
	return r.hasAttributeRaw(tag)
}

func (r *Route) hasAttributeRaw(tag string) bool {
	for _, a := range r.attributes {
		if a == tag {
			return true
		}
	}
	return false
}

// compile parses the path pattern into segments. Called by Freeze.
// Idempotent across a failed Freeze retry.
func (r *Route) compile() error {
	r.segments = nil
	r.paramCount = 0

	if !strings.HasPrefix(r.path, "/") {
		return errInvalidPattern(r.path, "must start with /")
	}

	trimmed := strings.Trim(r.path, "/")
	if trimmed == "" {
		r.segments = nil // root pattern "/"
		return nil
	}

	seen := map[string]bool{}
	for _, part := range strings.Split(trimmed, "/") {
		if part == "" {
			return errInvalidPattern(r.path, "empty segment")
		}
		if strings.HasPrefix(part, ":") {
			name := part[1:]
			if name == "" {
				return errInvalidPattern(r.path, "empty parameter name")
			}
			if seen[name] {
				return errInvalidPattern(r.path, "duplicate parameter "+name)
			}
			seen[name] = true
			r.segments = append(r.segments, segment{static: false, value: name})
			r.paramCount++
		} else {
			r.segments = append(r.segments, segment{static: true, value: part})
		}
	}

	return nil
}

// match tests a concrete request path against the compiled pattern and
// captures parameters. The path must already be trimmed of leading and
// trailing slashes and split into segments.
func (r *Route) match(parts []string) (Params, bool) {
	if len(parts) != len(r.segments) {
		return nil, false
	}

	var params Params
	for i, seg := range r.segments {
		if seg.static {
			if parts[i] != seg.value {
				return nil, false
			}
			continue
		}
		if parts[i] == "" {
			return nil, false
		}
		if params == nil {
			params = make(Params, r.paramCount)
		}
		params[seg.value] = parts[i]
	}

	return params, true
}

// validTag reports whether a tag satisfies the attribute syntax: non-empty
// printable ASCII, no spaces, no commas.
func validTag(tag string) bool {
	if tag == "" {
		return false
	}
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		if c <= 0x20 || c >= 0x7f || c == ',' {
			return false
		}
	}
	return true
}
