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
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Table is the route registry. It has two phases with a hard boundary:
//
//   - Build: single-threaded. Add declares routes; the fluent Route methods
//     attach names and attribute tags.
//   - Frozen: after a successful Freeze the table is immutable. Lookup,
//     Named, Routes, and all Route getters are lock-free and safe for any
//     number of concurrent callers.
//
// Mutating a frozen table panics; this is a programmer error caught at
// startup, not a runtime condition to handle.
type Table struct {
	mu     sync.Mutex
	frozen atomic.Bool

	routes []*Route

	// Built by Freeze.
	static        map[string]*Route   // "METHOD /exact/path" fast path
	staticMethods map[string][]string // canonical path -> methods, for 405s
	dynamic       map[string][]*Route // method -> parameterized routes, declaration order
	byName        map[string]*Route
}

// NewTable creates an empty route table in the build phase.
func NewTable() *Table {
	return &Table{}
}

// Add declares a route. The method is uppercased; the path pattern may
// contain :param segments. Pattern and handler validity are checked by
// Freeze, so a bad declaration aborts table construction rather than
// surfacing per-request. Panics if the table is frozen.
func (t *Table) Add(method, path string, handler Handler) *Route {
	t.checkMutable("add route")

	r := &Route{
		table:      t,
		method:     strings.ToUpper(method),
		path:       path,
		handler:    handler,
		attributes: []string{},
	}

	t.mu.Lock()
	t.routes = append(t.routes, r)
	t.mu.Unlock()

	return r
}

// Freeze validates every declared route and publishes the table as an
// immutable snapshot. It fails, and leaves the table unfrozen, on:
//
//   - an unparseable path pattern ([ErrInvalidPattern])
//   - a nil handler ([ErrNilHandler])
//   - invalid attribute tag syntax ([ErrInvalidAttribute])
//   - two routes with the same method and path ([ErrDuplicateRoute])
//   - two routes with the same name ([ErrDuplicateName])
//
// Freeze must complete before the first Lookup. Calling it twice is an
// error.
func (t *Table) Freeze() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen.Load() {
		return fmt.Errorf("route: table already frozen")
	}

	static := make(map[string]*Route)
	staticMethods := make(map[string][]string)
	dynamic := make(map[string][]*Route)
	byName := make(map[string]*Route)
	keys := make(map[string]bool)

	for _, r := range t.routes {
		if r.handler == nil {
			return fmt.Errorf("%w: %s %s", ErrNilHandler, r.method, r.path)
		}
		if err := r.compile(); err != nil {
			return err
		}
		for _, tag := range r.attributes {
			if !validTag(tag) {
				return fmt.Errorf("%w: %q on %s %s", ErrInvalidAttribute, tag, r.method, r.path)
			}
		}

		// Duplicates are detected on the canonical form Lookup uses, so
		// "/users" and "/users/" collide instead of shadowing each other.
		canonical := canonicalPath(r.path)
		key := r.method + " " + canonical
		if keys[key] {
			return fmt.Errorf("%w: %s %s", ErrDuplicateRoute, r.method, r.path)
		}
		keys[key] = true

		if r.name != "" {
			if _, taken := byName[r.name]; taken {
				return fmt.Errorf("%w: %q", ErrDuplicateName, r.name)
			}
			byName[r.name] = r
		}

		if r.paramCount == 0 {
			static[key] = r
			staticMethods[canonical] = append(staticMethods[canonical], r.method)
		} else {
			dynamic[r.method] = append(dynamic[r.method], r)
		}
	}

	t.static = static
	t.staticMethods = staticMethods
	t.dynamic = dynamic
	t.byName = byName
	t.frozen.Store(true)

	return nil
}

// Frozen reports whether the table has been frozen.
func (t *Table) Frozen() bool {
	return t.frozen.Load()
}

// Lookup finds the route matching a method and concrete request path,
// capturing any path parameters. Static patterns are matched via a map;
// parameterized patterns are tried in declaration order.
//
// Lookup is only valid on a frozen table and panics otherwise: the read
// path must never race with table construction.
func (t *Table) Lookup(method, path string) (*Route, Params, bool) {
	if !t.frozen.Load() {
		panic("route: lookup on unfrozen table")
	}

	method = strings.ToUpper(method)
	canonical := canonicalPath(path)

	if r, ok := t.static[method+" "+canonical]; ok {
		return r, nil, true
	}

	parts := splitPath(canonical)
	for _, r := range t.dynamic[method] {
		if params, ok := r.match(parts); ok {
			return r, params, true
		}
	}

	return nil, nil, false
}

// Named returns the route registered under the given name.
// Only valid on a frozen table; panics otherwise.
func (t *Table) Named(name string) (*Route, bool) {
	if !t.frozen.Load() {
		panic("route: named lookup on unfrozen table")
	}
	r, ok := t.byName[name]
	return r, ok
}

// allowedMethods returns the sorted methods for which the concrete path
// matches some route. Used for 405 responses. Static paths are answered
// from the index built by Freeze; parameterized patterns still need a
// match scan, as they cannot be indexed by concrete path.
func (t *Table) allowedMethods(path string) []string {
	canonical := canonicalPath(path)
	parts := splitPath(canonical)

	seen := map[string]bool{}
	for _, method := range t.staticMethods[canonical] {
		seen[method] = true
	}
	for method, routes := range t.dynamic {
		for _, r := range routes {
			if _, ok := r.match(parts); ok {
				seen[method] = true
				break
			}
		}
	}

	methods := make([]string, 0, len(seen))
	for m := range seen {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Info is an introspection snapshot of one route.
type Info struct {
	Method     string
	Path       string
	Name       string
	Attributes []string
}

// Routes returns introspection snapshots for every declared route in
// declaration order. On a frozen table this enumerates the full, final
// route set, which is what makes attribute-driven policy auditable.
func (t *Table) Routes() []Info {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Info, len(t.routes))
	for i, r := range t.routes {
		out[i] = Info{
			Method:     r.method,
			Path:       r.path,
			Name:       r.name,
			Attributes: r.Attributes(),
		}
	}
	return out
}

// checkMutable panics when a build-phase operation runs on a frozen table.
func (t *Table) checkMutable(op string) {
	if t.frozen.Load() {
		panic("route: cannot " + op + " after table is frozen")
	}
}

// canonicalPath trims a trailing slash so "/users/" and "/users" match the
// same route. The root path stays "/".
func canonicalPath(path string) string {
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return strings.TrimRight(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}

// splitPath splits a canonical path into segments. Root yields nil.
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// errInvalidPattern wraps ErrInvalidPattern with pattern context.
func errInvalidPattern(path, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrInvalidPattern, path, reason)
}
