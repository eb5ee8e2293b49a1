package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agilebooks/agilebooks/internal/auth"
	"github.com/agilebooks/agilebooks/internal/http/middleware"
)

type stubVerifier struct {
	identity *auth.Identity
}

func (v *stubVerifier) Verify(token string) (*auth.Identity, error) {
	if token != "good-token" {
		return nil, auth.ErrInvalidToken
	}

	return v.identity, nil
}

func TestAuthenticate(t *testing.T) {
	identity := &auth.Identity{UserID: uuid.New(), Username: "alice", Role: auth.RoleViewer}
	verifier := &stubVerifier{identity: identity}

	var got *auth.Identity

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.IdentityFrom(r.Context())
		require.True(t, ok)
		got = id
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.Authenticate(verifier)(next)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "ValidToken", authHeader: "Bearer good-token", wantStatus: http.StatusOK},
		{name: "MissingHeader", wantStatus: http.StatusUnauthorized},
		{name: "NotBearer", authHeader: "Basic Zm9vOmJhcg==", wantStatus: http.StatusUnauthorized},
		{name: "EmptyToken", authHeader: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "BadToken", authHeader: "Bearer forged", wantStatus: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got = nil

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)

			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, identity, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	protected := middleware.RequireRoles(auth.RoleAdmin, auth.RoleAccountant)(next)

	serve := func(role auth.Role) int {
		verifier := &stubVerifier{identity: &auth.Identity{UserID: uuid.New(), Role: role}}

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer good-token")

		rec := httptest.NewRecorder()
		middleware.Authenticate(verifier)(protected).ServeHTTP(rec, req)

		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve(auth.RoleAdmin))
	assert.Equal(t, http.StatusOK, serve(auth.RoleAccountant))
	assert.Equal(t, http.StatusForbidden, serve(auth.RoleViewer))

	t.Run("WithoutAuthenticate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
