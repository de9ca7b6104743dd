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
	"net/http"
	"strings"

	"rivaas.dev/conneg"
)

// Authorizer gates a matched route before its handler runs. It receives the
// route, whose attribute tags carry the declarative policy, and the
// request. A non-nil error denies the request with a 403; the error text
// becomes the problem detail.
//
// The mapping from attributes to an allow/deny decision belongs entirely to
// the Authorizer; the route table only stores and reports tags.
type Authorizer func(rt *Route, r *http.Request) error

// Dispatcher is an http.Handler over a frozen [Table]: lookup, then
// authorization, then the route handler. Failure paths (404, 405, 403,
// handler errors) are rendered as RFC 9457 problem details.
type Dispatcher struct {
	table     *Table
	authorize Authorizer
}

// DispatcherOption defines functional options for Dispatcher configuration.
type DispatcherOption func(*Dispatcher)

// WithAuthorizer installs the authorization gate consulted for every
// matched route. Without one, all matched routes are dispatched directly.
func WithAuthorizer(fn Authorizer) DispatcherOption {
	return func(d *Dispatcher) {
		d.authorize = fn
	}
}

// NewDispatcher builds a Dispatcher over a frozen table. Returns
// [ErrNotFrozen] if Freeze has not run: dispatch must never observe a
// table under construction.
func NewDispatcher(table *Table, opts ...DispatcherOption) (*Dispatcher, error) {
	if table == nil || !table.Frozen() {
		return nil, ErrNotFrozen
	}

	d := &Dispatcher{table: table}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt, params, ok := d.table.Lookup(r.Method, r.URL.Path)
	if !ok {
		if allowed := d.table.allowedMethods(r.URL.Path); len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
			conneg.WriteProblem(w, r, conneg.Problem{
				Status: http.StatusMethodNotAllowed,
				Detail: fmt.Sprintf("method %s not allowed", r.Method),
			})
			return
		}
		conneg.WriteProblem(w, r, conneg.Problem{
			Status: http.StatusNotFound,
		})
		return
	}

	if d.authorize != nil {
		if err := d.authorize(rt, r); err != nil {
			conneg.WriteProblem(w, r, conneg.Problem{
				Status: http.StatusForbidden,
				Detail: err.Error(),
			})
			return
		}
	}

	if err := rt.handler(w, r, params); err != nil {
		// Handlers that partially wrote a response cannot be rescued; the
		// problem body below only renders cleanly when nothing was written.
		conneg.WriteProblem(w, r, conneg.Problem{
			Status: http.StatusInternalServerError,
		})
	}
}
