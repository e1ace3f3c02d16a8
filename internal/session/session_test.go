package session

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bizdir/pkg/types"

	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *types.Config {
	return &types.Config{
		Environment:      "development",
		CookieName:       "session_id",
		SessionMaxAgeSec: 3600,
		CookieHashKey:    base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
		CookieBlockKey:   base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
	}
}

func testUser() *types.User {
	return &types.User{ID: 7, Name: "Jo Smith", Email: "jo@example.com"}
}

func requestWith(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestCreateAndLoad(t *testing.T) {
	m, err := NewManager(testConfig(), NewMemoryStore())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	sess, err := m.Create(context.Background(), rec, testUser(), []string{"user"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.NotEmpty(t, sess.CSRFToken)

	loaded, err := m.Load(requestWith(rec))
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.EqualValues(t, 7, loaded.UserID)
	assert.Equal(t, []string{"user"}, loaded.Roles)
	assert.Equal(t, sess.CSRFToken, loaded.CSRFToken)
}

func TestLoadWithoutCookieIsAnonymous(t *testing.T) {
	m, err := NewManager(testConfig(), NewMemoryStore())
	require.NoError(t, err)

	sess, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestLoadWithGarbageCookieIsAnonymous(t *testing.T) {
	m, err := NewManager(testConfig(), NewMemoryStore())
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session_id", Value: "garbage"})

	sess, err := m.Load(r)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestCreateGuestCarriesTokenWithoutIdentity(t *testing.T) {
	m, err := NewManager(testConfig(), NewMemoryStore())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	sess, err := m.CreateGuest(context.Background(), rec)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.NotEmpty(t, sess.CSRFToken)
	assert.Zero(t, sess.UserID)
	assert.True(t, m.ValidateCSRF(sess, sess.CSRFToken))

	loaded, err := m.Load(requestWith(rec))
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, sess.CSRFToken, loaded.CSRFToken)
}

func TestCreateRotatesID(t *testing.T) {
	m, err := NewManager(testConfig(), NewMemoryStore())
	require.NoError(t, err)

	first, err := m.Create(context.Background(), httptest.NewRecorder(), testUser(), nil)
	require.NoError(t, err)
	second, err := m.Create(context.Background(), httptest.NewRecorder(), testUser(), nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestDestroy(t *testing.T) {
	store := NewMemoryStore()
	m, err := NewManager(testConfig(), store)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	sess, err := m.Create(context.Background(), rec, testUser(), nil)
	require.NoError(t, err)

	destroyRec := httptest.NewRecorder()
	require.NoError(t, m.Destroy(context.Background(), destroyRec, sess))

	_, err = store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, types.ErrSessionNotFound)

	cookies := destroyRec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestExpiredSessionIsAnonymous(t *testing.T) {
	store := NewMemoryStore()
	cfg := testConfig()
	m, err := NewManager(cfg, store)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	sess, err := m.Create(context.Background(), rec, testUser(), nil)
	require.NoError(t, err)

	sess.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.Save(context.Background(), sess))

	loaded, err := m.Load(requestWith(rec))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestCSRFValidateAndRotate(t *testing.T) {
	m, err := NewManager(testConfig(), NewMemoryStore())
	require.NoError(t, err)

	sess, err := m.Create(context.Background(), httptest.NewRecorder(), testUser(), nil)
	require.NoError(t, err)

	assert.True(t, m.ValidateCSRF(sess, sess.CSRFToken))
	assert.False(t, m.ValidateCSRF(sess, "wrong"))
	assert.False(t, m.ValidateCSRF(sess, ""))
	assert.False(t, m.ValidateCSRF(nil, sess.CSRFToken))

	old := sess.CSRFToken
	require.NoError(t, m.RotateCSRF(context.Background(), sess))
	assert.NotEqual(t, old, sess.CSRFToken)
	assert.False(t, m.ValidateCSRF(sess, old))
	assert.True(t, m.ValidateCSRF(sess, sess.CSRFToken))
}
