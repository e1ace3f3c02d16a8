package server

import (
	"errors"
	"net/http"

	"bizdir/internal/sanitize"
	"bizdir/internal/taxonomy"
	"bizdir/pkg/types"
)

func (s *Service) handleAdminLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.stores.Locations.All(r.Context(), false)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	tree := taxonomy.BuildTree(locations)
	if wantsJSON(r) {
		s.respondSuccess(w, "", tree)
		return
	}
	s.renderTemplate(w, r, "page.admin-locations", &types.AdminLocationsPageData{
		BasePageData: types.BasePageData{Title: "Manage Locations"},
		Locations:    tree,
		CSRFToken:    s.csrfFor(r),
	})
}

func (s *Service) handleGetLocationCreate(w http.ResponseWriter, r *http.Request) {
	roots, err := s.stores.Locations.Roots(r.Context(), false)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.renderTemplate(w, r, "page.admin-location-form", &types.AdminLocationFormPageData{
		BasePageData: types.BasePageData{Title: "Create Location"},
		Roots:        roots,
		Types:        taxonomy.LocationTypeLadder,
		CSRFToken:    s.csrfFor(r),
	})
}

// validateLocationForm sanitizes in place and checks the type against the
// ladder position the proposed parent implies.
func (s *Service) validateLocationForm(r *http.Request, form *LocationForm) ([]string, error) {
	form.Name = sanitize.String(form.Name)
	if form.Code != nil {
		code := sanitize.String(*form.Code)
		form.Code = &code
	}

	var errs []string
	if form.Name == "" {
		errs = append(errs, "Name is required.")
	}

	var parentType *types.LocationType
	if form.ParentID != nil {
		parent, err := s.stores.Locations.LocationByID(r.Context(), *form.ParentID)
		if errors.Is(err, types.ErrLocationNotFound) {
			errs = append(errs, "Parent location does not exist.")
			return errs, nil
		}
		if err != nil {
			return nil, err
		}
		parentType = &parent.Type
	}

	errs = append(errs, taxonomy.ValidatePlacement(types.LocationType(form.Type), parentType)...)

	return errs, nil
}

func (s *Service) handlePostLocationStore(w http.ResponseWriter, r *http.Request) {
	var form LocationForm
	token, err := decodeRequest(r, &form)
	if err != nil {
		s.respondValidation(w, []string{"Invalid request body."})
		return
	}
	if !s.checkCSRF(w, r, token) {
		return
	}

	errs, err := s.validateLocationForm(r, &form)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if len(errs) > 0 {
		s.respondValidation(w, errs)
		return
	}

	slug, err := taxonomy.MakeSlugUnique(r.Context(), taxonomy.GenerateSlug(form.Name), nil, s.stores.Locations.SlugExists)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	location := &types.Location{
		ParentID:  form.ParentID,
		Name:      form.Name,
		Slug:      slug,
		Type:      types.LocationType(form.Type),
		Code:      form.Code,
		Latitude:  form.Latitude,
		Longitude: form.Longitude,
		IsActive:  form.IsActive,
	}
	if err := s.stores.Locations.Create(r.Context(), location); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Location created.", map[string]any{"id": location.ID, "slug": location.Slug})
}

func (s *Service) handleGetLocationEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.handleNotFound(w, r)
		return
	}

	location, err := s.stores.Locations.LocationByID(r.Context(), id)
	if errors.Is(err, types.ErrLocationNotFound) {
		s.handleNotFound(w, r)
		return
	}
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	all, err := s.stores.Locations.All(r.Context(), false)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	path, err := taxonomy.PathTo(taxonomy.IndexByID(all), id, taxonomy.MaxLocationDepth)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	roots, err := s.stores.Locations.Roots(r.Context(), false)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.renderTemplate(w, r, "page.admin-location-form", &types.AdminLocationFormPageData{
		BasePageData: types.BasePageData{Title: "Edit Location"},
		Location:     location,
		Roots:        roots,
		Path:         path,
		Types:        taxonomy.LocationTypeLadder,
		CSRFToken:    s.csrfFor(r),
	})
}

func (s *Service) handlePostLocationUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondNotFound(w, "Location not found.")
		return
	}

	var form LocationForm
	token, err := decodeRequest(r, &form)
	if err != nil {
		s.respondValidation(w, []string{"Invalid request body."})
		return
	}
	if !s.checkCSRF(w, r, token) {
		return
	}

	location, err := s.stores.Locations.LocationByID(r.Context(), id)
	if errors.Is(err, types.ErrLocationNotFound) {
		s.respondNotFound(w, "Location not found.")
		return
	}
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	errs, err := s.validateLocationForm(r, &form)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if len(errs) > 0 {
		s.respondValidation(w, errs)
		return
	}

	if form.ParentID != nil {
		all, err := s.stores.Locations.All(r.Context(), false)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		cycle, err := taxonomy.WouldCreateCycle(taxonomy.IndexByID(all), id, *form.ParentID, taxonomy.MaxLocationDepth)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		if cycle {
			s.respondMessage(w, http.StatusBadRequest, "Cannot set parent: would create circular reference.")
			return
		}
	}

	if form.Name != location.Name {
		slug, err := taxonomy.MakeSlugUnique(r.Context(), taxonomy.GenerateSlug(form.Name), &id, s.stores.Locations.SlugExists)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		location.Slug = slug
	}
	location.Name = form.Name
	location.ParentID = form.ParentID
	location.Type = types.LocationType(form.Type)
	location.Code = form.Code
	location.Latitude = form.Latitude
	location.Longitude = form.Longitude
	location.IsActive = form.IsActive

	if err := s.stores.Locations.Update(r.Context(), location); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Location updated.", map[string]any{"id": location.ID, "slug": location.Slug})
}

func (s *Service) handlePostLocationDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondNotFound(w, "Location not found.")
		return
	}
	if !s.checkCSRF(w, r, csrfToken(r)) {
		return
	}

	if _, err := s.stores.Locations.LocationByID(r.Context(), id); err != nil {
		if errors.Is(err, types.ErrLocationNotFound) {
			s.respondNotFound(w, "Location not found.")
			return
		}
		s.respondStoreError(w, err)
		return
	}

	hasChildren, err := s.stores.Locations.HasChildren(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if hasChildren {
		s.respondMessage(w, http.StatusBadRequest, "Cannot delete location with children. Please delete or move children first.")
		return
	}

	if err := s.stores.Locations.SoftDelete(r.Context(), id); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Location deleted.", nil)
}

func (s *Service) handlePostLocationToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondNotFound(w, "Location not found.")
		return
	}
	if !s.checkCSRF(w, r, csrfToken(r)) {
		return
	}

	location, err := s.stores.Locations.LocationByID(r.Context(), id)
	if errors.Is(err, types.ErrLocationNotFound) {
		s.respondNotFound(w, "Location not found.")
		return
	}
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	if err := s.stores.Locations.SetActive(r.Context(), id, !location.IsActive); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Location status updated.", map[string]any{"id": id, "is_active": !location.IsActive})
}

// handleAdminLocationChildren feeds the admin form's cascading selects,
// including inactive rows the public endpoint hides.
func (s *Service) handleAdminLocationChildren(w http.ResponseWriter, r *http.Request) {
	s.locationChildren(w, r, false)
}

func (s *Service) locationChildren(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	parentID, ok := pathID(r, "parentId")
	if !ok {
		s.respondNotFound(w, "Location not found.")
		return
	}

	children, err := s.stores.Locations.Children(r.Context(), parentID, activeOnly)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	options := make([]types.LocationOption, 0, len(children))
	for _, child := range children {
		options = append(options, types.LocationOption{
			ID:   child.ID,
			Name: child.Name,
			Slug: child.Slug,
			Type: child.Type,
		})
	}

	s.respondSuccess(w, "", options)
}
