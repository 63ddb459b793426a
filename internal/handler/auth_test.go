package handler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/savebox/internal/auth"
	"github.com/sakif/savebox/internal/handler"
	"github.com/sakif/savebox/internal/service"
)

type fakeGitHub struct {
	user *auth.GitHubUser
	err  error
}

func (f *fakeGitHub) AuthURL(state string) string {
	return "https://github.example/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeGitHub) Exchange(context.Context, string) (*auth.GitHubUser, error) {
	return f.user, f.err
}

func newAuthHandler(t *testing.T, gh handler.GitHubExchanger) (*handler.AuthHandler, *auth.TokenService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("handler-test-secret-32-chars!!!!")
	require.NoError(t, err)
	return handler.NewAuthHandler(gh, service.NewSessionService(tokens, logger), false, logger), tokens
}

func cookieNamed(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_LoginSetsState(t *testing.T) {
	h, _ := newAuthHandler(t, &fakeGitHub{})
	rr := httptest.NewRecorder()

	h.HandleGitHubLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/github/login", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	state := cookieNamed(rr, "oauth_state")
	require.NotNil(t, state)
	assert.Contains(t, rr.Header().Get("Location"), "state="+state.Value)
}

func TestAuthHandler_Callback(t *testing.T) {
	callback := func(h *handler.AuthHandler, query, cookieState string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?"+query, nil)
		if cookieState != "" {
			req.AddCookie(&http.Cookie{Name: "oauth_state", Value: cookieState})
		}
		rr := httptest.NewRecorder()
		h.HandleGitHubCallback(rr, req)
		return rr
	}

	t.Run("issues a session for the GitHub login", func(t *testing.T) {
		h, tokens := newAuthHandler(t, &fakeGitHub{user: &auth.GitHubUser{ID: 9, Login: "octo"}})

		rr := callback(h, "code=abc&state=s1", "s1")

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		session := cookieNamed(rr, auth.CookieName)
		require.NotNil(t, session)
		assert.True(t, session.HttpOnly)

		id, err := tokens.Validate(session.Value)
		require.NoError(t, err)
		assert.Equal(t, "octo", id.Key())
		assert.Equal(t, "github|9", id.Subject)
	})

	t.Run("state mismatch", func(t *testing.T) {
		h, _ := newAuthHandler(t, &fakeGitHub{user: &auth.GitHubUser{ID: 9, Login: "octo"}})

		assert.Equal(t, http.StatusBadRequest, callback(h, "code=abc&state=evil", "s1").Code)
		assert.Equal(t, http.StatusBadRequest, callback(h, "code=abc&state=s1", "").Code)
	})

	t.Run("user denied", func(t *testing.T) {
		h, _ := newAuthHandler(t, &fakeGitHub{})

		rr := callback(h, "error=access_denied&state=s1", "s1")

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/?auth=denied", rr.Header().Get("Location"))
	})

	t.Run("exchange failure", func(t *testing.T) {
		h, _ := newAuthHandler(t, &fakeGitHub{err: errors.New("bad code")})

		rr := callback(h, "code=abc&state=s1", "s1")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Nil(t, cookieNamed(rr, auth.CookieName))
	})
}

func TestAuthHandler_NotConfigured(t *testing.T) {
	h, _ := newAuthHandler(t, nil)
	rr := httptest.NewRecorder()

	h.HandleGitHubLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/github/login", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	h, _ := newAuthHandler(t, nil)

	rr := httptest.NewRecorder()
	h.HandleMe(rr, request(http.MethodGet, "/api/me", "", auth.Identity{Subject: "s-1", Email: "e@x.io"}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":{"key":"e@x.io","subject":"s-1","username":"","email":"e@x.io"}}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.HandleMe(rr, request(http.MethodGet, "/api/me", "", anonymous))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	h.HandleLogout(rr, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	cleared := cookieNamed(rr, auth.CookieName)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rr := httptest.NewRecorder()
	handler.NewHealthHandler(fakePinger{}, logger).HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.JSONEq(t, `{"success":true,"data":{"status":"ok"}}`, rr.Body.String())

	rr = httptest.NewRecorder()
	handler.NewHealthHandler(fakePinger{err: errors.New("down")}, logger).HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
