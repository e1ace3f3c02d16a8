package server

import (
	"errors"
	"net/http"
	"strings"

	"bizdir/internal/auth"
	"bizdir/internal/sanitize"
	"bizdir/internal/taxonomy"
	"bizdir/pkg/types"
)

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "page.login", &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Login"},
		CSRFToken:    s.guestToken(w, r),
	})
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	var form LoginForm
	token, err := decodeRequest(r, &form)
	if err != nil {
		s.respondValidation(w, []string{"Invalid request body."})
		return
	}
	if !s.checkCSRF(w, r, token) {
		return
	}

	email := sanitize.Email(form.Email)
	if email == "" || form.Password == "" {
		s.loginFailure(w, r, http.StatusBadRequest, "Email and password are required.", email)
		return
	}

	user, err := s.stores.Users.UserByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, types.ErrUserNotFound) {
		s.respondStoreError(w, err)
		return
	}
	if user == nil || !user.IsActive || !auth.CheckPassword(user.PasswordHash, form.Password) {
		s.loginFailure(w, r, http.StatusUnauthorized, "Invalid email or password.", email)
		return
	}

	roles, err := s.stores.Users.Roles(r.Context(), user.ID)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	// Rotate any session the caller already holds before minting a new ID.
	if sess := s.sessionFromContext(r.Context()); sess != nil {
		_ = s.sessions.Destroy(r.Context(), w, sess)
	}
	if _, err := s.sessions.Create(r.Context(), w, user, roles); err != nil {
		s.respondStoreError(w, err)
		return
	}

	if wantsJSON(r) {
		s.respondSuccess(w, "Login successful.", map[string]any{
			"name":  user.Name,
			"email": user.Email,
			"roles": roles,
		})
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Service) loginFailure(w http.ResponseWriter, r *http.Request, status int, message, email string) {
	if wantsJSON(r) {
		s.respondMessage(w, status, message)
		return
	}
	s.renderTemplate(w, r, "page.login", &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Login"},
		Error:        message,
		Email:        email,
		CSRFToken:    s.csrfFor(r),
	})
}

// guestToken returns the session's anti-forgery token, establishing an
// anonymous session first when the visitor does not carry one yet.
func (s *Service) guestToken(w http.ResponseWriter, r *http.Request) string {
	if sess := s.sessionFromContext(r.Context()); sess != nil {
		return sess.CSRFToken
	}

	sess, err := s.sessions.CreateGuest(r.Context(), w)
	if err != nil {
		s.logger.WithError(err).Error("failed to create guest session")
		return ""
	}
	return sess.CSRFToken
}

func (s *Service) handleGetRegister(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "page.register", &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Register"},
		CSRFToken:    s.guestToken(w, r),
	})
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	var form RegisterForm
	token, err := decodeRequest(r, &form)
	if err != nil {
		s.respondValidation(w, []string{"Invalid request body."})
		return
	}
	if !s.checkCSRF(w, r, token) {
		return
	}

	name := sanitize.String(form.Name)
	email := sanitize.Email(form.Email)
	phone := sanitize.String(form.Phone)

	var errs []string
	if name == "" {
		errs = append(errs, "Name is required.")
	}
	if email == "" {
		errs = append(errs, "A valid email is required.")
	}
	if len(form.Password) < 8 {
		errs = append(errs, "Password must be at least 8 characters.")
	}
	if form.PasswordConfirm != "" && form.Password != form.PasswordConfirm {
		errs = append(errs, "Passwords do not match.")
	}

	if len(errs) == 0 {
		exists, err := s.stores.Users.EmailExists(r.Context(), email)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		if exists {
			errs = append(errs, "Email already registered.")
		}
	}

	if len(errs) > 0 {
		s.registerFailure(w, r, errs, name, email, phone)
		return
	}

	slug, err := taxonomy.MakeSlugUnique(r.Context(), taxonomy.GenerateSlug(name), nil, s.stores.Users.SlugExists)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	user := &types.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Slug:         slug,
		IsActive:     true,
	}
	if trimmed := strings.TrimSpace(phone); trimmed != "" {
		user.Phone = &trimmed
	}
	if err := s.stores.Users.Create(r.Context(), user); err != nil {
		s.respondStoreError(w, err)
		return
	}

	role, err := s.stores.Roles.RoleBySlug(r.Context(), types.RoleUser)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	roles := []string{}
	if role != nil {
		if err := s.stores.Users.AssignRole(r.Context(), user.ID, role.ID); err != nil {
			s.respondStoreError(w, err)
			return
		}
		roles = append(roles, role.Slug)
	}

	if sess := s.sessionFromContext(r.Context()); sess != nil {
		_ = s.sessions.Destroy(r.Context(), w, sess)
	}
	if _, err := s.sessions.Create(r.Context(), w, user, roles); err != nil {
		s.respondStoreError(w, err)
		return
	}

	if wantsJSON(r) {
		s.respondSuccess(w, "Registration successful.", map[string]any{
			"name":  user.Name,
			"email": user.Email,
			"roles": roles,
		})
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Service) registerFailure(w http.ResponseWriter, r *http.Request, errs []string, name, email, phone string) {
	if wantsJSON(r) {
		s.respondValidation(w, errs)
		return
	}
	s.renderTemplate(w, r, "page.register", &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Register"},
		Errors:       errs,
		Name:         name,
		Email:        email,
		Phone:        phone,
		CSRFToken:    s.csrfFor(r),
	})
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromContext(r.Context())
	if err := s.sessions.Destroy(r.Context(), w, sess); err != nil {
		s.logger.WithError(err).Error("failed to destroy session")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
