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

import "context"

// Negotiate selects the best representation from offers for the given
// accept entries. It is a pure function: no payload is produced and no
// state is shared, so it may run concurrently for any number of requests.
//
// Selection rules:
//
//  1. An empty accept list means the client stated no preference; the first
//     declared offer wins. Declaration order is the author's stated default.
//  2. Otherwise entries are ordered by quality descending, specificity
//     descending, and header position ascending. For each entry in that
//     order, offers are scanned in declaration order; the first compatible
//     offer wins.
//  3. If no entry is compatible with any offer, [ErrNotAcceptable] is
//     returned. This outcome is distinct from case 1, which always
//     succeeds.
//
// Example:
//
//	entries, _ := conneg.ParseAccept(r.Header.Get("Accept"))
//	rep, err := conneg.Negotiate(entries, offers)
func Negotiate(accept []AcceptEntry, offers Offers) (Representation, error) {
	if len(offers.reps) == 0 {
		return nil, ErrNoOffers
	}

	if len(accept) == 0 {
		return offers.reps[0], nil
	}

	for _, entry := range sortAccept(accept) {
		if entry.Quality == 0 {
			// q=0 means "explicitly refused", never a match.
			continue
		}
		for _, rep := range offers.reps {
			if entry.MediaType.Match(rep.ContentType()) {
				return rep, nil
			}
		}
	}

	return nil, ErrNotAcceptable
}

// Resolve negotiates and then realizes the winning representation,
// returning terminal [TypedContent]. Only the selected representation's
// producer runs; losing offers are never realized. The context governs the
// realization step, which may block on I/O.
func Resolve(ctx context.Context, accept []AcceptEntry, offers Offers) (TypedContent, error) {
	rep, err := Negotiate(accept, offers)
	if err != nil {
		return TypedContent{}, err
	}
	return Single(ctx, rep)
}
