package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"bizdir/internal/session"
	"bizdir/pkg/types"

	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frozenNow = time.Now()

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

type testEnv struct {
	svc           *Service
	users         *fakeUserStore
	categories    *fakeCategoryStore
	locations     *fakeLocationStore
	listings      *fakeListingStore
	suggestions   *fakeSuggestionStore
	subscriptions *fakeSubscriptionStore
	sessionStore  *session.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config := &types.Config{
		Environment:      "development",
		ServerPort:       8080,
		CookieName:       "session_id",
		SessionMaxAgeSec: 3600,
		CookieHashKey:    base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
		CookieBlockKey:   base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sessionStore := session.NewMemoryStore()
	sessions, err := session.NewManager(config, sessionStore)
	require.NoError(t, err)

	roles := map[int64]*types.Role{
		1: {ID: 1, Slug: types.RoleAdmin, Name: "Administrator"},
		2: {ID: 2, Slug: types.RoleUser, Name: "User"},
	}

	env := &testEnv{
		users:         newFakeUserStore(roles),
		categories:    newFakeCategoryStore(),
		locations:     newFakeLocationStore(),
		listings:      newFakeListingStore(),
		suggestions:   newFakeSuggestionStore(),
		subscriptions: &fakeSubscriptionStore{active: map[int64]bool{}},
		sessionStore:  sessionStore,
	}

	svc, err := New(config, logger, sessions, Stores{
		Users:         env.users,
		Roles:         &fakeRoleStore{byID: roles},
		Categories:    env.categories,
		Locations:     env.locations,
		Listings:      env.listings,
		Suggestions:   env.suggestions,
		Subscriptions: env.subscriptions,
	})
	require.NoError(t, err)
	env.svc = svc

	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.svc.router.ServeHTTP(rec, req)
	return rec
}

// login seeds a user and an established session. The returned cookie and
// session authenticate follow-up requests.
func (e *testEnv) login(t *testing.T, name string, roleSlugs ...string) (*http.Cookie, *types.Session) {
	t.Helper()

	user := &types.User{
		Name:     name,
		Email:    name + "@example.com",
		Slug:     name,
		IsActive: true,
	}
	require.NoError(t, e.users.Create(context.Background(), user))

	rec := httptest.NewRecorder()
	sess, err := e.svc.sessions.Create(context.Background(), rec, user, roleSlugs)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0], sess
}

// guest establishes an anonymous session carrying only an anti-forgery
// token, as the login and register pages do for new visitors.
func (e *testEnv) guest(t *testing.T) (*http.Cookie, *types.Session) {
	t.Helper()

	rec := httptest.NewRecorder()
	sess, err := e.svc.sessions.CreateGuest(context.Background(), rec)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0], sess
}

// freshToken re-reads the session's current anti-forgery token, which
// rotates after every successful mutation.
func (e *testEnv) freshToken(t *testing.T, sessID string) string {
	t.Helper()
	sess, err := e.sessionStore.Get(context.Background(), sessID)
	require.NoError(t, err)
	return sess.CSRFToken
}

func jsonRequest(method, path string, body any, cookie *http.Cookie, token string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-CSRF-Token", token)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestAuthRequiredForDashboard(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(jsonRequest(http.MethodGet, "/dashboard", nil, nil, ""))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required.", decodeEnvelope(t, rec).Message)
}

func TestAuthRedirectsBrowsersToLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGuestOnlyRedirectsAuthenticated(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.login(t, "casey", types.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookie)

	rec := env.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	env := newTestEnv(t)
	cookie, sess := env.login(t, "casey", types.RoleUser)

	rec := env.do(jsonRequest(http.MethodPost, "/admin/listings/approve/1", nil, cookie, sess.CSRFToken))
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. Insufficient permissions.", decodeEnvelope(t, rec).Message)
}

func TestTrailingSlashRedirects(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/listings/", nil))
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/listings", rec.Header().Get("Location"))
}

func TestNotFoundJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(jsonRequest(http.MethodGet, "/nope", nil, nil, ""))
	require.Equal(t, http.StatusNotFound, rec.Code)
	env2 := decodeEnvelope(t, rec)
	assert.False(t, env2.Success)
}
