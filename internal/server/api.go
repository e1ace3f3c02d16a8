package server

import (
	"net/http"

	"bizdir/internal/taxonomy"
)

// Read-only taxonomy endpoints consumed by the listing form's cascading
// selects. Only active, non-deleted rows are exposed.

func (s *Service) handleAPICategoryTree(w http.ResponseWriter, r *http.Request) {
	categories, err := s.stores.Categories.All(r.Context(), true)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondSuccess(w, "", taxonomy.BuildTree(categories))
}

func (s *Service) handleAPILocationTree(w http.ResponseWriter, r *http.Request) {
	locations, err := s.stores.Locations.All(r.Context(), true)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondSuccess(w, "", taxonomy.BuildTree(locations))
}

func (s *Service) handleAPILocationChildren(w http.ResponseWriter, r *http.Request) {
	s.locationChildren(w, r, true)
}
