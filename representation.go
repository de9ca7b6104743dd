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
	"context"
	"encoding/json"
	"fmt"
)

// Representation is one possible encoded form of a resource. It separates
// the two capabilities negotiation needs into two phases:
//
//   - ContentType reports the media type without producing any payload, so
//     compatibility can be tested against every offer at zero cost.
//   - Realize produces the payload bytes. It runs only for the selected
//     representation, may perform blocking I/O (a database read, a template
//     render), and must honor ctx cancellation if it does.
//
// Implementations must return the same ContentType for the lifetime of the
// value.
type Representation interface {
	// ContentType reports the concrete media type this representation
	// produces. Called before, and independently of, Realize.
	ContentType() MediaType

	// Realize produces the payload. Called at most once per negotiation,
	// and only when this representation was selected.
	Realize(ctx context.Context) ([]byte, error)
}

// ProducerFunc is the deferred to-bytes capability backing an offer.
type ProducerFunc func(ctx context.Context) ([]byte, error)

// offer is the standard Representation: a media type plus a deferred
// producer.
type offer struct {
	mediaType MediaType
	produce   ProducerFunc
}

func (o offer) ContentType() MediaType { return o.mediaType }

func (o offer) Realize(ctx context.Context) ([]byte, error) {
	return o.produce(ctx)
}

// Offer builds a Representation from a media type and a deferred producer.
// The producer is not invoked until the representation wins negotiation.
//
// Example:
//
//	conneg.Offer(conneg.MustMediaType("text/csv"), func(ctx context.Context) ([]byte, error) {
//	    return exportCSV(ctx, reportID)
//	})
func Offer(mt MediaType, produce ProducerFunc) Representation {
	return offer{mediaType: mt, produce: produce}
}

// Static builds a Representation whose payload is already in hand.
func Static(mt MediaType, payload []byte) Representation {
	return offer{
		mediaType: mt,
		produce: func(context.Context) ([]byte, error) {
			return payload, nil
		},
	}
}

// JSON builds an "application/json" representation of v. Marshaling is
// deferred until the representation is selected.
func JSON(v any) Representation {
	return offer{
		mediaType: MediaType{Type: "application", Subtype: "json"},
		produce: func(context.Context) ([]byte, error) {
			return json.Marshal(v)
		},
	}
}

// HTML builds a "text/html" representation from already-rendered markup.
func HTML(markup string) Representation {
	return Static(MediaType{Type: "text", Subtype: "html"}, []byte(markup))
}

// Text builds a "text/plain" representation.
func Text(s string) Representation {
	return Static(MediaType{Type: "text", Subtype: "plain"}, []byte(s))
}

// TypedContent is the terminal artifact of negotiation: a concrete media
// type and the realized payload, ready to hand to the transport layer.
type TypedContent struct {
	MediaType MediaType
	Payload   []byte
}

// Offers is a validated, ordered set of representations a handler is
// willing to produce. Order matters: the first entry is the default served
// when the client states no preference.
//
// Build an Offers once per handler at startup and reuse it across requests;
// it is immutable and safe for concurrent use.
type Offers struct {
	reps []Representation
}

// NewOffers validates and freezes an ordered representation set.
// It fails fast, at handler construction rather than request time, on an
// empty set ([ErrNoOffers]) or on two representations declaring the same
// media type ([ErrDuplicateMediaType]).
func NewOffers(reps ...Representation) (Offers, error) {
	if len(reps) == 0 {
		return Offers{}, ErrNoOffers
	}

	for i, rep := range reps {
		ct := rep.ContentType()
		if ct.Type == "" || ct.Subtype == "" || ct.Type == "*" || ct.Subtype == "*" {
			return Offers{}, fmt.Errorf("%w: offer %d declares %q", ErrInvalidMediaType, i, ct.String())
		}
		for _, prev := range reps[:i] {
			if prev.ContentType().sameRange(ct) {
				return Offers{}, fmt.Errorf("%w: %s", ErrDuplicateMediaType, ct.String())
			}
		}
	}

	frozen := make([]Representation, len(reps))
	copy(frozen, reps)
	return Offers{reps: frozen}, nil
}

// MustOffers is like [NewOffers] but panics on invalid input. Intended for
// handler construction at startup, where a bad offer set is a programmer
// error.
func MustOffers(reps ...Representation) Offers {
	offers, err := NewOffers(reps...)
	if err != nil {
		panic("conneg: " + err.Error())
	}
	return offers
}

// Len returns the number of representations in the set.
func (o Offers) Len() int { return len(o.reps) }

// Representations returns a copy of the ordered representation set.
func (o Offers) Representations() []Representation {
	out := make([]Representation, len(o.reps))
	copy(out, o.reps)
	return out
}

// ContentTypes returns the declared media types in offer order.
func (o Offers) ContentTypes() []MediaType {
	out := make([]MediaType, len(o.reps))
	for i, rep := range o.reps {
		out[i] = rep.ContentType()
	}
	return out
}

// Single realizes one representation directly, bypassing multi-offer
// selection. This is the convenience path for handlers that only ever
// produce a single format.
//
// Example:
//
//	content, err := conneg.Single(ctx, conneg.JSON(user))
//	if err != nil {
//	    return err
//	}
//	w.Header().Set("Content-Type", content.MediaType.String())
//	w.Write(content.Payload)
func Single(ctx context.Context, rep Representation) (TypedContent, error) {
	payload, err := rep.Realize(ctx)
	if err != nil {
		return TypedContent{}, fmt.Errorf("%w: %s: %w", ErrNotRealized, rep.ContentType().String(), err)
	}
	return TypedContent{MediaType: rep.ContentType(), Payload: payload}, nil
}
