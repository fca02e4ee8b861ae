// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

package channel

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/ctxutil"
	"github.com/rishabhbhardwaj-rb/MyTube-Backend/internal/platform/sec"
)

func newTestRouter() *chi.Mux {
	service, _, _ := newTestChannelService()
	router := chi.NewRouter()
	NewHandler(service).Register(router)
	return router
}

func asViewer(request *http.Request, userID string) *http.Request {
	ctx := ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: userID, Username: "viewer"})
	return request.WithContext(ctx)
}

/*
TestRoutes_RequireAuthentication verifies that every channel route rejects
requests that carry no authenticated identity.
*/
func TestRoutes_RequireAuthentication(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/channel/alice", "/watchHistory"} {
		t.Run(path, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}
}

/*
TestChannelProfile_AuthenticatedViewer verifies that an authenticated request
reaches the service and receives the assembled profile.
*/
func TestChannelProfile_AuthenticatedViewer(t *testing.T) {
	router := newTestRouter()

	recorder := httptest.NewRecorder()
	request := asViewer(httptest.NewRequest(http.MethodGet, "/channel/alice", nil), "viewer-1")
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))

	assert.Equal(t, "alice", envelope.Data.Username)
	assert.Equal(t, 42, envelope.Data.SubscribersCount)
	assert.True(t, envelope.Data.IsSubscribed, "viewer-1 is subscribed in the fixture")
}
