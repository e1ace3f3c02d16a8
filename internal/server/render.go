package server

import (
	"net/http"

	"bizdir/internal/auth"
	"bizdir/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess := s.sessionFromContext(r.Context())

	if setter, ok := data.(types.NavbarDataSetter); ok {
		nav := types.NavbarData{}
		if sess != nil {
			nav.IsAuthenticated = true
			nav.IsAdmin = auth.HasRole(sess, types.RoleAdmin)
			nav.UserName = sess.UserName
			nav.UserEmail = sess.UserEmail
		}
		setter.SetNavbarData(nav)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, templateName, data); err != nil {
		s.logger.WithError(err).WithField("template", templateName).Error("failed to render template")
		s.internalServerError(w)
	}
}

// csrfFor returns the token to embed in a rendered form, empty for guests.
func (s *Service) csrfFor(r *http.Request) string {
	sess := s.sessionFromContext(r.Context())
	if sess == nil {
		return ""
	}
	return sess.CSRFToken
}
