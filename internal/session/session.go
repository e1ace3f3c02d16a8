// Package session manages server-side sessions keyed by an opaque ID
// travelling in a securecookie-encoded cookie. The backing Store is
// pluggable; role slugs and the CSRF token live on the session record.
package session

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"bizdir/internal/utils"
	"bizdir/pkg/types"

	"github.com/gorilla/securecookie"
)

// Store persists session records. Get returns types.ErrSessionNotFound for
// unknown or expired IDs.
type Store interface {
	Get(ctx context.Context, id string) (*types.Session, error)
	Save(ctx context.Context, session *types.Session) error
	Delete(ctx context.Context, id string) error
}

type Manager struct {
	cookie     *securecookie.SecureCookie
	store      Store
	cookieName string
	maxAge     time.Duration
	secure     bool
}

func NewManager(config *types.Config, store Store) (*Manager, error) {
	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie block key: %w", err)
	}

	return &Manager{
		cookie:     securecookie.New(hashKey, blockKey),
		store:      store,
		cookieName: config.CookieName,
		maxAge:     time.Duration(config.SessionMaxAgeSec) * time.Second,
		secure:     config.Environment != "development",
	}, nil
}

// Load resolves the request's session, or (nil, nil) for anonymous callers.
// A cookie that fails to decode is treated as absent, not as an error.
func (m *Manager) Load(r *http.Request) (*types.Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, nil
	}

	var id string
	if err := m.cookie.Decode(m.cookieName, cookie.Value, &id); err != nil {
		return nil, nil
	}

	sess, err := m.store.Get(r.Context(), id)
	if err == types.ErrSessionNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = m.store.Delete(r.Context(), id)
		return nil, nil
	}

	return sess, nil
}

// Create establishes a fresh session for user. The ID is always newly
// generated, so calling Create at login rotates the identifier and defeats
// session fixation; any prior session should be destroyed first.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, user *types.User, roles []string) (*types.Session, error) {
	now := time.Now()
	sess := &types.Session{
		ID:        utils.NanoID(),
		UserID:    user.ID,
		UserName:  user.Name,
		UserEmail: user.Email,
		Roles:     roles,
		CSRFToken: utils.NanoID(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.maxAge),
	}

	if err := m.issue(ctx, w, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// CreateGuest establishes an anonymous session whose only job is to carry
// the anti-forgery token for the login and register forms. Login destroys
// it and mints an authenticated session in its place.
func (m *Manager) CreateGuest(ctx context.Context, w http.ResponseWriter) (*types.Session, error) {
	now := time.Now()
	sess := &types.Session{
		ID:        utils.NanoID(),
		CSRFToken: utils.NanoID(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.maxAge),
	}

	if err := m.issue(ctx, w, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *Manager) issue(ctx context.Context, w http.ResponseWriter, sess *types.Session) error {
	if err := m.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	encoded, err := m.cookie.Encode(m.cookieName, sess.ID)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Destroy deletes the record and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, sess *types.Session) error {
	if sess != nil {
		if err := m.store.Delete(ctx, sess.ID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// ValidateCSRF compares a submitted token against the session's in constant
// time.
func (m *Manager) ValidateCSRF(sess *types.Session, token string) bool {
	if sess == nil || token == "" || sess.CSRFToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sess.CSRFToken), []byte(token)) == 1
}

// RotateCSRF replaces the session's token after a successful state change.
func (m *Manager) RotateCSRF(ctx context.Context, sess *types.Session) error {
	sess.CSRFToken = utils.NanoID()
	if err := m.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("rotate csrf token: %w", err)
	}
	return nil
}
