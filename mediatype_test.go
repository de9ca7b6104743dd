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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMediaType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		wantType    string
		wantSubtype string
		wantErr     bool
	}{
		{
			name:        "simple type",
			input:       "text/html",
			wantType:    "text",
			wantSubtype: "html",
		},
		{
			name:        "uppercase normalized",
			input:       "Application/JSON",
			wantType:    "application",
			wantSubtype: "json",
		},
		{
			name:        "with charset parameter",
			input:       "text/html; charset=utf-8",
			wantType:    "text",
			wantSubtype: "html",
		},
		{
			name:        "structured suffix",
			input:       "application/problem+json",
			wantType:    "application",
			wantSubtype: "problem+json",
		},
		{
			name:        "full wildcard",
			input:       "*/*",
			wantType:    "*",
			wantSubtype: "*",
		},
		{
			name:        "subtype wildcard",
			input:       "text/*",
			wantType:    "text",
			wantSubtype: "*",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "missing subtype",
			input:   "text/",
			wantErr: true,
		},
		{
			name:    "missing type",
			input:   "/json",
			wantErr: true,
		},
		{
			name:    "no slash",
			input:   "texthtml",
			wantErr: true,
		},
		{
			name:    "wildcard type with concrete subtype",
			input:   "*/json",
			wantErr: true,
		},
		{
			name:    "q is not a media type parameter",
			input:   "text/html;q=0.5",
			wantErr: true,
		},
		{
			name:    "space inside token",
			input:   "te xt/html",
			wantErr: true,
		},
		{
			name:    "broken parameter",
			input:   "text/html;charset",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mt, err := ParseMediaType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidMediaType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, mt.Type)
			assert.Equal(t, tt.wantSubtype, mt.Subtype)
		})
	}
}

func TestMediaTypeParams(t *testing.T) {
	t.Parallel()

	mt, err := ParseMediaType(`text/html; charset="utf-8"; level=1`)
	require.NoError(t, err)

	charset, ok := mt.Param("charset")
	assert.True(t, ok)
	assert.Equal(t, "utf-8", charset, "quotes should be stripped")

	level, ok := mt.Param("level")
	assert.True(t, ok)
	assert.Equal(t, "1", level)

	_, ok = mt.Param("missing")
	assert.False(t, ok)
}

func TestMediaTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "text/html", NewMediaType("TEXT", "HTML").String())

	mt, err := ParseMediaType("text/html; level=1; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8; level=1", mt.String(),
		"parameters should render in sorted key order")
}

func TestMediaTypeMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		accepted string
		offered  string
		want     bool
	}{
		{name: "exact", accepted: "application/json", offered: "application/json", want: true},
		{name: "exact mismatch", accepted: "application/json", offered: "text/html", want: false},
		{name: "subtype wildcard hit", accepted: "text/*", offered: "text/html", want: true},
		{name: "subtype wildcard miss", accepted: "text/*", offered: "application/json", want: false},
		{name: "full wildcard", accepted: "*/*", offered: "image/png", want: true},
		{name: "params ignored for matching", accepted: "application/json; version=1", offered: "application/json", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			accepted := MustMediaType(tt.accepted)
			offered := MustMediaType(tt.offered)
			assert.Equal(t, tt.want, accepted.Match(offered))
		})
	}
}

func TestMediaTypeSpecificityOrder(t *testing.T) {
	t.Parallel()

	exact := MustMediaType("text/html")
	sub := MustMediaType("text/*")
	full := MustMediaType("*/*")

	assert.Greater(t, exact.specificity(), sub.specificity())
	assert.Greater(t, sub.specificity(), full.specificity())

	assert.False(t, exact.IsWildcard())
	assert.False(t, exact.IsSubtypeWildcard())
	assert.True(t, sub.IsSubtypeWildcard())
	assert.True(t, full.IsWildcard())
}

func TestMustMediaTypePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustMediaType("not a media type")
	})
}
