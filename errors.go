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

import "errors"

var (
	// ErrNotAcceptable indicates that the client's Accept preferences match
	// none of the offered representations. Maps to HTTP 406. It is distinct
	// from the absent-header case, which always succeeds with the first offer.
	ErrNotAcceptable = errors.New("no acceptable representation")

	// ErrMalformedHeader indicates a structurally unparseable Accept header.
	// Individually malformed media ranges within an otherwise parseable
	// header are skipped and do not produce this error.
	ErrMalformedHeader = errors.New("malformed accept header")

	// ErrInvalidMediaType indicates a media type string that could not be
	// parsed into a type/subtype pair.
	ErrInvalidMediaType = errors.New("invalid media type")

	// ErrDuplicateMediaType indicates that an offer set declares two
	// representations with the same media type.
	ErrDuplicateMediaType = errors.New("duplicate media type in offers")

	// ErrNoOffers indicates an attempt to build an offer set with no
	// representations.
	ErrNoOffers = errors.New("offer set must contain at least one representation")

	// ErrNotRealized indicates that a representation's payload production
	// failed.
	ErrNotRealized = errors.New("representation payload could not be realized")
)
