package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"bizdir/internal/router"
)

const maxBodyBytes = 1 << 20

type LoginForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type RegisterForm struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone" json:"phone"`
	Password        string `form:"password" json:"password"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm"`
}

type ListingForm struct {
	Title             string  `form:"title" json:"title"`
	Description       string  `form:"description" json:"description"`
	ShortDescription  *string `form:"short_description" json:"short_description"`
	CategoryID        int64   `form:"category_id" json:"category_id"`
	LocationID        *int64  `form:"location_id" json:"location_id"`
	Address           *string `form:"address" json:"address"`
	Phone             *string `form:"phone" json:"phone"`
	Whatsapp          *string `form:"whatsapp" json:"whatsapp"`
	Email             *string `form:"email" json:"email"`
	Website           *string `form:"website" json:"website"`
	SubmitForApproval bool    `form:"submit_for_approval" json:"submit_for_approval"`
}

type CategoryForm struct {
	Name        string  `form:"name" json:"name"`
	Description *string `form:"description" json:"description"`
	ParentID    *int64  `form:"parent_id" json:"parent_id"`
	SortOrder   int     `form:"sort_order" json:"sort_order"`
	IsActive    bool    `form:"is_active" json:"is_active"`
}

type LocationForm struct {
	Name      string   `form:"name" json:"name"`
	Type      string   `form:"type" json:"type"`
	ParentID  *int64   `form:"parent_id" json:"parent_id"`
	Code      *string  `form:"code" json:"code"`
	Latitude  *float64 `form:"latitude" json:"latitude"`
	Longitude *float64 `form:"longitude" json:"longitude"`
	IsActive  bool     `form:"is_active" json:"is_active"`
}

type SuggestionForm struct {
	Name        string  `form:"name" json:"name"`
	Description *string `form:"description" json:"description"`
	ParentID    *int64  `form:"parent_id" json:"parent_id"`
}

// decodeRequest fills dst from a JSON or form-encoded body and returns the
// anti-forgery token that travelled with it. The header wins over the body.
func decodeRequest(r *http.Request, dst any) (string, error) {
	token := r.Header.Get("X-CSRF-Token")

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return token, fmt.Errorf("read request body: %w", err)
		}
		if err := json.Unmarshal(body, dst); err != nil {
			return token, fmt.Errorf("decode request body: %w", err)
		}
		if token == "" {
			var carrier struct {
				Token string `json:"_token"`
			}
			_ = json.Unmarshal(body, &carrier)
			token = carrier.Token
		}
		return token, nil
	}

	if err := r.ParseForm(); err != nil {
		return token, fmt.Errorf("parse form: %w", err)
	}
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		return token, fmt.Errorf("decode form: %w", err)
	}
	if token == "" {
		token = r.PostForm.Get("_token")
	}

	return token, nil
}

// csrfToken extracts the token from bodyless mutating requests (delete,
// approve, toggle).
func csrfToken(r *http.Request) string {
	var empty struct{}
	token, _ := decodeRequest(r, &empty)
	return token
}

// checkCSRF validates the submitted token against the session and writes the
// 400 rejection itself on mismatch.
func (s *Service) checkCSRF(w http.ResponseWriter, r *http.Request, token string) bool {
	sess := s.sessionFromContext(r.Context())
	if s.sessions.ValidateCSRF(sess, token) {
		return true
	}

	s.respondMessage(w, http.StatusBadRequest, "Invalid security token.")
	return false
}

// rotateCSRF refreshes the session token after a successful state change.
// Failure to rotate is logged, never surfaced; the mutation already landed.
func (s *Service) rotateCSRF(r *http.Request) {
	sess := s.sessionFromContext(r.Context())
	if sess == nil {
		return
	}
	if err := s.sessions.RotateCSRF(r.Context(), sess); err != nil {
		s.logger.WithError(err).Error("failed to rotate csrf token")
	}
}

// pathID parses a numeric {name} path parameter. ok is false for missing or
// non-numeric values.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(router.Param(r.Context(), name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
