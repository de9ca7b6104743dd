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

// Package route provides an immutable route table with declarative
// attribute tags.
//
// Routes are declared once at startup, tagged with opaque string
// attributes, and frozen before the first request:
//
//	table := route.NewTable()
//	table.Add(http.MethodGet, "/reports/:id", reportHandler).
//	    SetName("reports.get").
//	    Tag("admin", "audited")
//	table.Add(http.MethodGet, "/health", healthHandler)
//
//	if err := table.Freeze(); err != nil {
//	    log.Fatal(err)
//	}
//
// After Freeze the table is a read-only snapshot shared by all request
// goroutines without locking. Attribute tags exist so cross-cutting policy
// lives on the route definition instead of inside handler bodies: the set
// of protected routes becomes enumerable and auditable by reading the
// table. The policy decision itself (mapping a tag to allow or deny) stays
// with the caller, typically via [Dispatcher] and an [Authorizer]:
//
//	d, err := route.NewDispatcher(table, route.WithAuthorizer(
//	    func(rt *route.Route, r *http.Request) error {
//	        if rt.HasAttribute("admin") && !isAdmin(r) {
//	            return errors.New("admin access required")
//	        }
//	        return nil
//	    },
//	))
//
// Malformed attribute tags, duplicate routes, and duplicate route names are
// build-time failures: Freeze rejects the whole table, and nothing can fail
// at lookup time.
package route
