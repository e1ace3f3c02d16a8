package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bizdir/internal/auth"
	"bizdir/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeySession contextKey = "session"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SessionMiddleware resolves the request's session once and stashes it in the
// context. Anonymous requests carry a nil session.
func (s *Service) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Load(r)
		if err != nil {
			s.logger.WithError(err).Error("failed to load session")
		}
		if sess != nil {
			ctx := context.WithValue(r.Context(), contextKeySession, sess)
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) sessionFromContext(ctx context.Context) *types.Session {
	sess, _ := ctx.Value(contextKeySession).(*types.Session)
	return sess
}

// requireAuth gates a route on an authenticated session. Browsers are
// redirected to the login page; API callers get a 401 envelope.
func (s *Service) requireAuth(w http.ResponseWriter, r *http.Request) bool {
	if auth.Check(s.sessionFromContext(r.Context())) {
		return true
	}

	if wantsJSON(r) {
		s.respondMessage(w, http.StatusUnauthorized, "Authentication required.")
		return false
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return false
}

// requireGuest keeps login and register away from signed-in users.
func (s *Service) requireGuest(w http.ResponseWriter, r *http.Request) bool {
	if !auth.Check(s.sessionFromContext(r.Context())) {
		return true
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	return false
}

func (s *Service) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !s.requireAuth(w, r) {
		return false
	}

	if auth.HasRole(s.sessionFromContext(r.Context()), types.RoleAdmin) {
		return true
	}

	s.respondMessage(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
	return false
}
