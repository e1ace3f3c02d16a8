package server

import (
	"errors"
	"net/http"

	"bizdir/internal/auth"
	"bizdir/internal/router"
	"bizdir/internal/sanitize"
	"bizdir/internal/taxonomy"
	"bizdir/pkg/types"
)

// expireLapsedListings applies the subscription sweep before any listing-list
// read. Sweep failures are logged and the read proceeds with stale statuses.
func (s *Service) expireLapsedListings(r *http.Request) {
	expired, err := s.stores.Listings.ExpireForLapsedSubscriptions(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to expire lapsed listings")
		return
	}
	if expired > 0 {
		s.logger.WithField("count", expired).Info("expired listings for lapsed subscriptions")
	}
}

func (s *Service) handleListings(w http.ResponseWriter, r *http.Request) {
	s.expireLapsedListings(r)

	listings, err := s.stores.Listings.Approved(r.Context(), 50, 0)
	if err != nil {
		if wantsJSON(r) {
			s.respondStoreError(w, err)
			return
		}
		s.logger.WithError(err).Error("failed to fetch listings")
		s.internalServerError(w)
		return
	}

	if wantsJSON(r) {
		s.respondSuccess(w, "", listings)
		return
	}
	s.renderTemplate(w, r, "page.listings", &types.ListingsPageData{
		BasePageData: types.BasePageData{Title: "Listings"},
		Listings:     listings,
	})
}

func (s *Service) handleListingShow(w http.ResponseWriter, r *http.Request) {
	slug := sanitize.String(router.Param(r.Context(), "slug"))

	listing, err := s.stores.Listings.BySlugPublic(r.Context(), slug)
	if errors.Is(err, types.ErrListingNotFound) {
		s.handleNotFound(w, r)
		return
	}
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	if err := s.stores.Listings.IncrementViewCount(r.Context(), listing.ID); err != nil {
		s.logger.WithError(err).Error("failed to increment view count")
	}

	if wantsJSON(r) {
		s.respondSuccess(w, "", listing)
		return
	}
	s.renderTemplate(w, r, "page.listing-detail", &types.ListingDetailPageData{
		BasePageData: types.BasePageData{Title: listing.Title},
		Listing:      listing,
	})
}

func (s *Service) handleMyListings(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromContext(r.Context())

	listings, err := s.stores.Listings.ByUserID(r.Context(), sess.UserID)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	if wantsJSON(r) {
		s.respondSuccess(w, "", listings)
		return
	}
	s.renderTemplate(w, r, "page.my-listings", &types.ListingsPageData{
		BasePageData: types.BasePageData{Title: "My Listings"},
		Listings:     listings,
	})
}

func (s *Service) handleGetListingCreate(w http.ResponseWriter, r *http.Request) {
	data, err := s.listingFormData(r, nil)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	data.Title = "Create Listing"
	s.renderTemplate(w, r, "page.listing-form", data)
}

func (s *Service) listingFormData(r *http.Request, listing *types.ListingDetail) (*types.ListingFormPageData, error) {
	categories, err := s.stores.Categories.All(r.Context(), true)
	if err != nil {
		return nil, err
	}
	roots, err := s.stores.Locations.Roots(r.Context(), true)
	if err != nil {
		return nil, err
	}

	return &types.ListingFormPageData{
		Listing:       listing,
		Categories:    taxonomy.BuildTree(categories),
		LocationRoots: roots,
		CSRFToken:     s.csrfFor(r),
	}, nil
}

// validateListingForm sanitizes in place and returns field errors.
func (s *Service) validateListingForm(r *http.Request, form *ListingForm) ([]string, error) {
	form.Title = sanitize.String(form.Title)
	form.Description = sanitize.Text(form.Description, false)
	if form.ShortDescription != nil {
		short := sanitize.String(*form.ShortDescription)
		form.ShortDescription = &short
	}
	if form.Email != nil {
		email := sanitize.Email(*form.Email)
		form.Email = &email
	}
	if form.Website != nil {
		website := sanitize.URL(*form.Website)
		form.Website = &website
	}

	var errs []string
	if form.Title == "" {
		errs = append(errs, "Title is required.")
	}
	if form.Description == "" {
		errs = append(errs, "Description is required.")
	}

	if form.CategoryID <= 0 {
		errs = append(errs, "Category is required.")
	} else {
		category, err := s.stores.Categories.CategoryByID(r.Context(), form.CategoryID)
		switch {
		case errors.Is(err, types.ErrCategoryNotFound):
			errs = append(errs, "Selected category does not exist.")
		case err != nil:
			return nil, err
		case !category.IsActive:
			errs = append(errs, "Selected category does not exist.")
		}
	}

	if form.LocationID != nil {
		location, err := s.stores.Locations.LocationByID(r.Context(), *form.LocationID)
		switch {
		case errors.Is(err, types.ErrLocationNotFound):
			errs = append(errs, "Selected location does not exist.")
		case err != nil:
			return nil, err
		case !location.IsActive:
			errs = append(errs, "Selected location does not exist.")
		}
	}

	return errs, nil
}

func (s *Service) handlePostListingStore(w http.ResponseWriter, r *http.Request) {
	var form ListingForm
	token, err := decodeRequest(r, &form)
	if err != nil {
		s.respondValidation(w, []string{"Invalid request body."})
		return
	}
	if !s.checkCSRF(w, r, token) {
		return
	}

	errs, err := s.validateListingForm(r, &form)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if len(errs) > 0 {
		s.respondValidation(w, errs)
		return
	}

	slug, err := taxonomy.MakeSlugUnique(r.Context(), taxonomy.GenerateSlug(form.Title), nil, s.stores.Listings.SlugExists)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	status := types.ListingDraft
	if form.SubmitForApproval {
		status = types.ListingPending
	}

	sess := s.sessionFromContext(r.Context())
	listing := &types.Listing{
		UserID:           sess.UserID,
		CategoryID:       form.CategoryID,
		LocationID:       form.LocationID,
		Title:            form.Title,
		Slug:             slug,
		Description:      &form.Description,
		ShortDescription: form.ShortDescription,
		Address:          form.Address,
		Phone:            form.Phone,
		Whatsapp:         form.Whatsapp,
		Email:            form.Email,
		Website:          form.Website,
		Status:           status,
	}
	if err := s.stores.Listings.Create(r.Context(), listing); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Listing created.", map[string]any{
		"id":     listing.ID,
		"slug":   listing.Slug,
		"status": listing.Status,
	})
}

func (s *Service) handleGetListingEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.handleNotFound(w, r)
		return
	}

	listing, err := s.stores.Listings.ByID(r.Context(), id)
	if errors.Is(err, types.ErrListingNotFound) {
		s.handleNotFound(w, r)
		return
	}
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if !s.canManageListing(r, &listing.Listing) {
		s.respondMessage(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
		return
	}

	data, err := s.listingFormData(r, listing)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	data.Title = "Edit Listing"
	s.renderTemplate(w, r, "page.listing-form", data)
}

func (s *Service) handlePostListingUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondNotFound(w, "Listing not found.")
		return
	}

	var form ListingForm
	token, err := decodeRequest(r, &form)
	if err != nil {
		s.respondValidation(w, []string{"Invalid request body."})
		return
	}
	if !s.checkCSRF(w, r, token) {
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
	if !s.canManageListing(r, &listing.Listing) {
		s.respondMessage(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
		return
	}

	errs, err := s.validateListingForm(r, &form)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if len(errs) > 0 {
		s.respondValidation(w, errs)
		return
	}

	updated := listing.Listing
	if form.Title != updated.Title {
		slug, err := taxonomy.MakeSlugUnique(r.Context(), taxonomy.GenerateSlug(form.Title), &updated.ID, s.stores.Listings.SlugExists)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		updated.Slug = slug
	}
	updated.Title = form.Title
	updated.CategoryID = form.CategoryID
	updated.LocationID = form.LocationID
	updated.Description = &form.Description
	updated.ShortDescription = form.ShortDescription
	updated.Address = form.Address
	updated.Phone = form.Phone
	updated.Whatsapp = form.Whatsapp
	updated.Email = form.Email
	updated.Website = form.Website

	// Editing never changes status except an explicit resubmission from
	// draft or rejected.
	if form.SubmitForApproval &&
		(updated.Status == types.ListingDraft || updated.Status == types.ListingRejected) {
		updated.Status = types.ListingPending
	}

	if err := s.stores.Listings.Update(r.Context(), &updated); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Listing updated.", map[string]any{
		"id":     updated.ID,
		"slug":   updated.Slug,
		"status": updated.Status,
	})
}

func (s *Service) handlePostListingDelete(w http.ResponseWriter, r *http.Request) {
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
	if !s.canManageListing(r, &listing.Listing) {
		s.respondMessage(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
		return
	}

	if err := s.stores.Listings.SoftDelete(r.Context(), id); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Listing deleted.", nil)
}

func (s *Service) canManageListing(r *http.Request, listing *types.Listing) bool {
	sess := s.sessionFromContext(r.Context())
	if sess == nil {
		return false
	}
	return listing.UserID == sess.UserID || auth.HasRole(sess, types.RoleAdmin)
}
