package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

const genericErrorMessage = "An error occurred. Please try again later."

// envelope is the JSON response shape shared by every mutating endpoint and
// the read-only API.
type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Data    any      `json:"data,omitempty"`
}

// wantsJSON reports whether the caller expects the JSON envelope rather than
// a rendered page or redirect.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) respondSuccess(w http.ResponseWriter, message string, data any) {
	s.respondJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func (s *Service) respondMessage(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, envelope{Success: status < http.StatusBadRequest, Message: message})
}

// respondValidation reports user-correctable input failures. These are never
// logged as faults.
func (s *Service) respondValidation(w http.ResponseWriter, errs []string) {
	s.respondJSON(w, http.StatusBadRequest, envelope{Success: false, Errors: errs})
}

func (s *Service) respondNotFound(w http.ResponseWriter, message string) {
	s.respondJSON(w, http.StatusNotFound, envelope{Success: false, Message: message})
}

// respondStoreError is the 500 boundary: the cause is logged, the caller sees
// a generic message unless debug output is enabled.
func (s *Service) respondStoreError(w http.ResponseWriter, err error) {
	s.logger.WithError(err).Error("store operation failed")

	message := genericErrorMessage
	if s.config.Debug {
		message = err.Error()
	}
	s.respondJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: message})
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, genericErrorMessage, http.StatusInternalServerError)
}
