// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/pkg/pagination"
)

/*
TestFromRequest verifies query parsing and clamping of page/limit values.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/watchHistory", 1, 20},
		{"explicit", "/watchHistory?page=3&limit=50", 3, 50},
		{"zero_page", "/watchHistory?page=0", 1, 20},
		{"negative_page", "/watchHistory?page=-2", 1, 20},
		{"limit_over_max", "/watchHistory?limit=500", 1, 20},
		{"non_numeric", "/watchHistory?page=abc&limit=xyz", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", tt.url, nil)
			params := pagination.FromRequest(request)

			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
		})
	}
}

/*
TestParams_Offset verifies the SQL offset derivation.
*/
func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 20, pagination.Params{Page: 2, Limit: 20}.Offset())
	assert.Equal(t, 90, pagination.Params{Page: 10, Limit: 10}.Offset())
	assert.Equal(t, 0, pagination.Params{Page: 0, Limit: 20}.Offset())
}

/*
TestNewMeta verifies total page calculation, including partial last pages.
*/
func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(2, 20, 45)

	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 20, meta.Limit)
	assert.Equal(t, 45, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	empty := pagination.NewMeta(1, 20, 0)
	assert.Equal(t, 0, empty.TotalPages)
}
