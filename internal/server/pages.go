package server

import (
	"net/http"

	"bizdir/pkg/types"
)

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	listings, err := s.stores.Listings.Approved(r.Context(), 6, 0)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch featured listings")
		listings = nil
	}

	s.renderTemplate(w, r, "page.home", &types.HomePageData{
		BasePageData: types.BasePageData{Title: "Business Directory"},
		Listings:     listings,
	})
}

func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromContext(r.Context())

	hasSubscription, err := s.stores.Subscriptions.UserHasActive(r.Context(), sess.UserID)
	if err != nil {
		s.logger.WithError(err).Error("failed to check subscription")
	}

	listings, err := s.stores.Listings.ByUserID(r.Context(), sess.UserID)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch user listings")
	}

	s.renderTemplate(w, r, "page.dashboard", &types.DashboardPageData{
		BasePageData:          types.BasePageData{Title: "Dashboard"},
		Roles:                 sess.Roles,
		HasActiveSubscription: hasSubscription,
		ListingCount:          len(listings),
	})
}

func (s *Service) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		s.respondNotFound(w, "Not found.")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	data := &types.NotFoundPageData{BasePageData: types.BasePageData{Title: "Page Not Found"}}
	if err := s.templates.ExecuteTemplate(w, "page.404", data); err != nil {
		s.logger.WithError(err).Error("failed to render 404 page")
	}
}
