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
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultFormatParam is the query parameter consulted for a format
// override when no other name is configured.
const DefaultFormatParam = "format"

// formatNames maps short format names accepted in the query-parameter
// override to full media types. Full "type/subtype" values are also
// accepted verbatim.
var formatNames = map[string]MediaType{
	"html": {Type: "text", Subtype: "html"},
	"json": {Type: "application", Subtype: "json"},
	"xml":  {Type: "application", Subtype: "xml"},
	"text": {Type: "text", Subtype: "plain"},
	"txt":  {Type: "text", Subtype: "plain"},
	"csv":  {Type: "text", Subtype: "csv"},
	"yaml": {Type: "application", Subtype: "yaml"},
}

// Responder negotiates and writes typed responses for net/http handlers.
// Construct one per service at startup with [NewResponder] and share it;
// it is immutable and safe for concurrent use.
type Responder struct {
	formatParam string
	recorder    *Recorder
}

// ResponderOption defines functional options for Responder configuration.
type ResponderOption func(*Responder)

// WithFormatParam sets the query parameter whose value overrides the Accept
// header, e.g. "?format=json" for manual browser testing. Pass an empty
// name to disable the override entirely.
func WithFormatParam(name string) ResponderOption {
	return func(rs *Responder) {
		rs.formatParam = name
	}
}

// WithRecorder attaches a metrics recorder. Negotiation outcomes are then
// counted per media type. A nil recorder leaves instrumentation off.
func WithRecorder(rec *Recorder) ResponderOption {
	return func(rs *Responder) {
		rs.recorder = rec
	}
}

// NewResponder builds a Responder. The zero configuration consults the
// "format" query parameter and records no metrics.
func NewResponder(opts ...ResponderOption) *Responder {
	rs := &Responder{formatParam: DefaultFormatParam}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// AcceptFrom derives the accept entries for a request. A non-empty format
// query parameter takes precedence over the Accept header; otherwise the
// header is parsed. An unrecognized override value fails with
// [ErrMalformedHeader], the same class as an unparseable header.
func (rs *Responder) AcceptFrom(r *http.Request) ([]AcceptEntry, error) {
	if rs.formatParam != "" {
		if v := r.URL.Query().Get(rs.formatParam); v != "" {
			mt, err := parseFormatOverride(v)
			if err != nil {
				return nil, err
			}
			return []AcceptEntry{{MediaType: mt, Quality: 1.0}}, nil
		}
	}

	return ParseAccept(r.Header.Get("Accept"))
}

// Negotiate selects the best offered representation for the request without
// realizing it.
func (rs *Responder) Negotiate(r *http.Request, offers Offers) (Representation, error) {
	accept, err := rs.AcceptFrom(r)
	if err != nil {
		return nil, err
	}
	return Negotiate(accept, offers)
}

// Respond negotiates, realizes the winning representation with the request
// context, and writes it with the given status code.
//
// Failure outcomes are written for the caller and then returned so it can
// log or count them:
//
//   - [ErrMalformedHeader]: 400 problem details
//   - [ErrNotAcceptable]: 406 problem details listing the offered types
//   - realization failure: 500 problem details
//
// A Vary: Accept header is always set, since the response body depends on
// request headers.
func (rs *Responder) Respond(w http.ResponseWriter, r *http.Request, status int, offers Offers) error {
	ctx := r.Context()
	w.Header().Add("Vary", "Accept")

	accept, err := rs.AcceptFrom(r)
	if err != nil {
		rs.recorder.RecordNegotiation(ctx, OutcomeMalformed, "")
		writeErr := WriteProblem(w, r, Problem{
			Status: http.StatusBadRequest,
			Title:  "Malformed Accept Header",
			Detail: err.Error(),
		})
		if writeErr != nil {
			return writeErr
		}
		return err
	}

	rep, err := Negotiate(accept, offers)
	if err != nil {
		// An empty offer set is a programmer error, not a client preference
		// the server cannot satisfy.
		if errors.Is(err, ErrNoOffers) {
			writeErr := WriteProblem(w, r, Problem{
				Status: http.StatusInternalServerError,
			})
			if writeErr != nil {
				return writeErr
			}
			return err
		}

		rs.recorder.RecordNegotiation(ctx, OutcomeNotAcceptable, "")
		writeErr := WriteProblem(w, r, Problem{
			Status: http.StatusNotAcceptable,
			Title:  "Not Acceptable",
			Detail: fmt.Sprintf("available representations: %s", strings.Join(offeredStrings(offers), ", ")),
			Extensions: map[string]any{
				"available": offeredStrings(offers),
			},
		})
		if writeErr != nil {
			return writeErr
		}
		return err
	}

	outcome := OutcomeMatch
	if len(accept) == 0 {
		outcome = OutcomeDefault
	}
	rs.recorder.RecordNegotiation(ctx, outcome, rep.ContentType().String())

	payload, err := rep.Realize(ctx)
	if err != nil {
		writeErr := WriteProblem(w, r, Problem{
			Status: http.StatusInternalServerError,
			Title:  "Representation Failed",
		})
		if writeErr != nil {
			return writeErr
		}
		return fmt.Errorf("%w: %s: %w", ErrNotRealized, rep.ContentType().String(), err)
	}

	w.Header().Set("Content-Type", rep.ContentType().String())
	w.WriteHeader(status)
	_, err = w.Write(payload)
	return err
}

// parseFormatOverride resolves a format override value: a short name from
// the override table, or a full media type.
func parseFormatOverride(v string) (MediaType, error) {
	name := strings.ToLower(strings.TrimSpace(v))
	if mt, ok := formatNames[name]; ok {
		return mt, nil
	}

	if strings.ContainsRune(name, '/') {
		mt, err := ParseMediaType(name)
		if err != nil {
			return MediaType{}, fmt.Errorf("%w: format override %q", ErrMalformedHeader, v)
		}
		return mt, nil
	}

	return MediaType{}, fmt.Errorf("%w: unknown format override %q", ErrMalformedHeader, v)
}

// offeredStrings renders the offered media types for diagnostics.
func offeredStrings(offers Offers) []string {
	out := make([]string, 0, offers.Len())
	for _, mt := range offers.ContentTypes() {
		out = append(out, mt.String())
	}
	return out
}
