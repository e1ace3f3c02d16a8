package server

import (
	"errors"
	"net/http"

	"bizdir/pkg/types"
)

func (s *Service) handlePendingListings(w http.ResponseWriter, r *http.Request) {
	s.expireLapsedListings(r)

	listings, err := s.stores.Listings.PendingApprovals(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	if wantsJSON(r) {
		s.respondSuccess(w, "", listings)
		return
	}
	s.renderTemplate(w, r, "page.admin-pending-listings", &types.PendingListingsPageData{
		BasePageData: types.BasePageData{Title: "Pending Listings"},
		Listings:     listings,
		CSRFToken:    s.csrfFor(r),
	})
}

func (s *Service) handleApproveListing(w http.ResponseWriter, r *http.Request) {
	s.decidePendingListing(w, r, types.ListingApproved, "Listing approved.")
}

func (s *Service) handleRejectListing(w http.ResponseWriter, r *http.Request) {
	s.decidePendingListing(w, r, types.ListingRejected, "Listing rejected.")
}

// decidePendingListing applies an admin decision. Both transitions are legal
// only from pending_approval; anything else is an error, not a no-op.
func (s *Service) decidePendingListing(w http.ResponseWriter, r *http.Request, status types.ListingStatus, message string) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondNotFound(w, "Listing not found.")
		return
	}
	if !s.checkCSRF(w, r, csrfToken(r)) {
		return
	}

	listing, err := s.stores.Listings.ByID(r.Context(), id)
	if errors.Is(err, types.ErrListingNotFound) {
		s.respondNotFound(w, "Listing not found.")
		return
	}
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	if listing.Status != types.ListingPending {
		s.respondMessage(w, http.StatusBadRequest, "Listing is not pending.")
		return
	}

	if err := s.stores.Listings.UpdateStatus(r.Context(), id, status); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, message, map[string]any{"id": id, "status": status})
}
