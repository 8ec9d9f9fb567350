package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gams-bknd/internal/auth"
	"gams-bknd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChecker struct {
	valid bool
	err   error
}

func (f *fakeChecker) CheckTokenVersion(ctx context.Context, userID string, tokenVersion int) (bool, error) {
	return f.valid, f.err
}

func newTestMiddleware(t *testing.T, checker TokenVersionChecker) (*AuthMiddleware, *auth.JWTManager) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	mgr := auth.NewJWTManagerFromKeys(key, "gams-test")
	return NewAuthMiddleware(mgr, checker, zap.NewNop()), mgr
}

func tokenWithRoles(t *testing.T, mgr *auth.JWTManager, roles []string) string {
	t.Helper()
	pair, err := mgr.GenerateTokenPair("user-1", time.Minute, time.Hour, 1, "local", roles)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestRequireAdmin(t *testing.T) {
	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	})

	t.Run("admin session passes", func(t *testing.T) {
		nextCalled = false
		mw, mgr := newTestMiddleware(t, &fakeChecker{valid: true})

		req := httptest.NewRequest("POST", "/grid-assets", nil)
		req.Header.Set("Authorization", "Bearer "+tokenWithRoles(t, mgr, []string{models.RoleAdmin}))
		rec := httptest.NewRecorder()
		mw.RequireAdmin(next).ServeHTTP(rec, req)

		assert.True(t, nextCalled)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-admin role is rejected before the handler runs", func(t *testing.T) {
		nextCalled = false
		mw, mgr := newTestMiddleware(t, &fakeChecker{valid: true})

		req := httptest.NewRequest("POST", "/grid-assets", nil)
		req.Header.Set("Authorization", "Bearer "+tokenWithRoles(t, mgr, []string{"user"}))
		rec := httptest.NewRecorder()
		mw.RequireAdmin(next).ServeHTTP(rec, req)

		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	})

	t.Run("missing session is rejected the same way", func(t *testing.T) {
		nextCalled = false
		mw, _ := newTestMiddleware(t, &fakeChecker{valid: true})

		rec := httptest.NewRecorder()
		mw.RequireAdmin(next).ServeHTTP(rec, httptest.NewRequest("POST", "/grid-assets", nil))

		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	})

	t.Run("revoked token version is rejected", func(t *testing.T) {
		nextCalled = false
		mw, mgr := newTestMiddleware(t, &fakeChecker{valid: false})

		req := httptest.NewRequest("POST", "/grid-assets", nil)
		req.Header.Set("Authorization", "Bearer "+tokenWithRoles(t, mgr, []string{models.RoleAdmin}))
		rec := httptest.NewRecorder()
		mw.RequireAdmin(next).ServeHTTP(rec, req)

		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		nextCalled = false
		mw, _ := newTestMiddleware(t, &fakeChecker{valid: true})

		req := httptest.NewRequest("POST", "/grid-assets", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := httptest.NewRecorder()
		mw.RequireAdmin(next).ServeHTTP(rec, req)

		assert.False(t, nextCalled)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestJWTAuth(t *testing.T) {
	t.Run("valid token attaches user context", func(t *testing.T) {
		mw, mgr := newTestMiddleware(t, &fakeChecker{valid: true})

		var gotUser any
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = r.Context().Value(ContextUserIDKey)
		})

		req := httptest.NewRequest("POST", "/auth/refresh", nil)
		req.Header.Set("Authorization", "Bearer "+tokenWithRoles(t, mgr, nil))
		mw.JWTAuth(next).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "user-1", gotUser)
	})

	t.Run("missing header is a 401", func(t *testing.T) {
		mw, _ := newTestMiddleware(t, &fakeChecker{valid: true})

		rec := httptest.NewRecorder()
		mw.JWTAuth(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest("POST", "/auth/refresh", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
