package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ownerEcho writes the owner key it finds in the context, or "anonymous".
func ownerEcho(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		key, ok := OwnerKeyFromContext(r.Context())
		if !ok {
			key = "anonymous"
		}
		_, _ = w.Write([]byte(key))
	})
}

func TestRequireAuth_NoSession(t *testing.T) {
	ts := newTestTokenService(t)
	called := false

	rec := httptest.NewRecorder()
	RequireAuth(ts)(ownerEcho(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, called, "handler must not run without a session")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Unauthorized"}`, rec.Body.String())
}

func TestRequireAuth_Cookie(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate(sakif)
	require.NoError(t, err)
	called := false

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	RequireAuth(ts)(ownerEcho(&called)).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, "sakif", rec.Body.String())
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate(Identity{Subject: "s-1", Email: "e@x.io"})
	require.NoError(t, err)
	called := false

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	RequireAuth(ts)(ownerEcho(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "e@x.io", rec.Body.String())
}

func TestRequireAuth_StaleCookieDoesNotHideBearer(t *testing.T) {
	ts := newTestTokenService(t)
	stale, err := ts.GenerateWithDuration(sakif, -time.Minute)
	require.NoError(t, err)
	fresh, err := ts.Generate(Identity{Subject: "s-2", Username: "bearer-user"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie string
		bearer string
		want   string
	}{
		{"stale cookie, valid bearer", stale, fresh, "bearer-user"},
		{"garbage cookie, valid bearer", "garbage", fresh, "bearer-user"},
		{"valid cookie, garbage bearer", fresh, "garbage", "bearer-user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			req.Header.Set("Authorization", "Bearer "+tt.bearer)
			rec := httptest.NewRecorder()

			RequireAuth(ts)(ownerEcho(&called)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}

	t.Run("both stale is 401", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: stale})
		req.Header.Set("Authorization", "Bearer "+stale)
		rec := httptest.NewRecorder()

		RequireAuth(ts)(ownerEcho(&called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	ts := newTestTokenService(t)
	called := false

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	RequireAuth(ts)(ownerEcho(&called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate(sakif)
	require.NoError(t, err)

	t.Run("anonymous passes through", func(t *testing.T) {
		called := false
		rec := httptest.NewRecorder()
		OptionalAuth(ts)(ownerEcho(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.True(t, called)
		assert.Equal(t, "anonymous", rec.Body.String())
	})

	t.Run("invalid token is ignored", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		OptionalAuth(ts)(ownerEcho(&called)).ServeHTTP(rec, req)

		assert.Equal(t, "anonymous", rec.Body.String())
	})

	t.Run("valid session is attached", func(t *testing.T) {
		called := false
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		rec := httptest.NewRecorder()
		OptionalAuth(ts)(ownerEcho(&called)).ServeHTTP(rec, req)

		assert.Equal(t, "sakif", rec.Body.String())
	})
}

func TestNilTokenService_NeverAuthenticates(t *testing.T) {
	called := false
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	RequireAuth(nil)(ownerEcho(&called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
