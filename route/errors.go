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

import "errors"

var (
	// ErrNotFrozen indicates that the table has not been frozen yet.
	ErrNotFrozen = errors.New("route table not frozen")

	// ErrDuplicateRoute indicates that two routes declare the same method
	// and path pattern.
	ErrDuplicateRoute = errors.New("duplicate route")

	// ErrDuplicateName indicates that two routes declare the same name.
	ErrDuplicateName = errors.New("duplicate route name")

	// ErrInvalidAttribute indicates an attribute tag with invalid syntax.
	ErrInvalidAttribute = errors.New("invalid attribute tag")

	// ErrInvalidPattern indicates an unparseable route path pattern.
	ErrInvalidPattern = errors.New("invalid route pattern")

	// ErrNilHandler indicates a route registered without a handler.
	ErrNilHandler = errors.New("route handler is nil")
)
