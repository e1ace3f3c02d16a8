package server

import (
	"errors"
	"net/http"

	"bizdir/internal/sanitize"
	"bizdir/internal/taxonomy"
	"bizdir/pkg/types"
)

func (s *Service) handleAdminCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.stores.Categories.All(r.Context(), false)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	suggestions, err := s.stores.Suggestions.AllByStatus(r.Context(), types.SuggestionPending)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	tree := taxonomy.BuildTree(categories)
	if wantsJSON(r) {
		s.respondSuccess(w, "", map[string]any{"tree": tree, "suggestions": suggestions})
		return
	}
	s.renderTemplate(w, r, "page.admin-categories", &types.AdminCategoriesPageData{
		BasePageData:       types.BasePageData{Title: "Manage Categories"},
		Categories:         tree,
		PendingSuggestions: suggestions,
		CSRFToken:          s.csrfFor(r),
	})
}

func (s *Service) handleGetCategoryCreate(w http.ResponseWriter, r *http.Request) {
	categories, err := s.stores.Categories.All(r.Context(), false)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.renderTemplate(w, r, "page.admin-category-form", &types.AdminCategoryFormPageData{
		BasePageData: types.BasePageData{Title: "Create Category"},
		Categories:   taxonomy.BuildTree(categories),
		CSRFToken:    s.csrfFor(r),
	})
}

// validateCategoryForm sanitizes in place and checks the proposed parent.
func (s *Service) validateCategoryForm(r *http.Request, form *CategoryForm) ([]string, error) {
	form.Name = sanitize.String(form.Name)
	if form.Description != nil {
		description := sanitize.Text(*form.Description, false)
		form.Description = &description
	}

	var errs []string
	if form.Name == "" {
		errs = append(errs, "Name is required.")
	}

	if form.ParentID != nil {
		_, err := s.stores.Categories.CategoryByID(r.Context(), *form.ParentID)
		if errors.Is(err, types.ErrCategoryNotFound) {
			errs = append(errs, "Parent category does not exist.")
		} else if err != nil {
			return nil, err
		}
	}

	return errs, nil
}

func (s *Service) handlePostCategoryStore(w http.ResponseWriter, r *http.Request) {
	var form CategoryForm
	token, err := decodeRequest(r, &form)
	if err != nil {
		s.respondValidation(w, []string{"Invalid request body."})
		return
	}
	if !s.checkCSRF(w, r, token) {
		return
	}

	errs, err := s.validateCategoryForm(r, &form)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if len(errs) > 0 {
		s.respondValidation(w, errs)
		return
	}

	slug, err := taxonomy.MakeSlugUnique(r.Context(), taxonomy.GenerateSlug(form.Name), nil, s.stores.Categories.SlugExists)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	category := &types.Category{
		ParentID:    form.ParentID,
		Name:        form.Name,
		Slug:        slug,
		Description: form.Description,
		SortOrder:   form.SortOrder,
		IsActive:    form.IsActive,
	}
	if err := s.stores.Categories.Create(r.Context(), category); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Category created.", map[string]any{"id": category.ID, "slug": category.Slug})
}

func (s *Service) handleGetCategoryEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.handleNotFound(w, r)
		return
	}

	category, err := s.stores.Categories.CategoryByID(r.Context(), id)
	if errors.Is(err, types.ErrCategoryNotFound) {
		s.handleNotFound(w, r)
		return
	}
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	categories, err := s.stores.Categories.All(r.Context(), false)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.renderTemplate(w, r, "page.admin-category-form", &types.AdminCategoryFormPageData{
		BasePageData: types.BasePageData{Title: "Edit Category"},
		Category:     category,
		Categories:   taxonomy.BuildTree(categories),
		CSRFToken:    s.csrfFor(r),
	})
}

func (s *Service) handlePostCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondNotFound(w, "Category not found.")
		return
	}

	var form CategoryForm
	token, err := decodeRequest(r, &form)
	if err != nil {
		s.respondValidation(w, []string{"Invalid request body."})
		return
	}
	if !s.checkCSRF(w, r, token) {
		return
	}

	category, err := s.stores.Categories.CategoryByID(r.Context(), id)
	if errors.Is(err, types.ErrCategoryNotFound) {
		s.respondNotFound(w, "Category not found.")
		return
	}
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	errs, err := s.validateCategoryForm(r, &form)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if len(errs) > 0 {
		s.respondValidation(w, errs)
		return
	}

	if form.ParentID != nil {
		all, err := s.stores.Categories.All(r.Context(), false)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		cycle, err := taxonomy.WouldCreateCycle(taxonomy.IndexByID(all), id, *form.ParentID, taxonomy.MaxCategoryDepth)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		if cycle {
			s.respondMessage(w, http.StatusBadRequest, "Cannot set parent: would create circular reference.")
			return
		}
	}

	if form.Name != category.Name {
		slug, err := taxonomy.MakeSlugUnique(r.Context(), taxonomy.GenerateSlug(form.Name), &id, s.stores.Categories.SlugExists)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		category.Slug = slug
	}
	category.Name = form.Name
	category.ParentID = form.ParentID
	category.Description = form.Description
	category.SortOrder = form.SortOrder
	category.IsActive = form.IsActive

	if err := s.stores.Categories.Update(r.Context(), category); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Category updated.", map[string]any{"id": category.ID, "slug": category.Slug})
}

func (s *Service) handlePostCategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondNotFound(w, "Category not found.")
		return
	}
	if !s.checkCSRF(w, r, csrfToken(r)) {
		return
	}

	if _, err := s.stores.Categories.CategoryByID(r.Context(), id); err != nil {
		if errors.Is(err, types.ErrCategoryNotFound) {
			s.respondNotFound(w, "Category not found.")
			return
		}
		s.respondStoreError(w, err)
		return
	}

	hasChildren, err := s.stores.Categories.HasChildren(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if hasChildren {
		s.respondMessage(w, http.StatusBadRequest, "Cannot delete category with children. Please delete or move children first.")
		return
	}

	if err := s.stores.Categories.SoftDelete(r.Context(), id); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Category deleted.", nil)
}

func (s *Service) handlePostCategoryToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondNotFound(w, "Category not found.")
		return
	}
	if !s.checkCSRF(w, r, csrfToken(r)) {
		return
	}

	category, err := s.stores.Categories.CategoryByID(r.Context(), id)
	if errors.Is(err, types.ErrCategoryNotFound) {
		s.respondNotFound(w, "Category not found.")
		return
	}
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	if err := s.stores.Categories.SetActive(r.Context(), id, !category.IsActive); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Category status updated.", map[string]any{"id": id, "is_active": !category.IsActive})
}

func (s *Service) handlePostCategorySuggest(w http.ResponseWriter, r *http.Request) {
	var form SuggestionForm
	token, err := decodeRequest(r, &form)
	if err != nil {
		s.respondValidation(w, []string{"Invalid request body."})
		return
	}
	if !s.checkCSRF(w, r, token) {
		return
	}

	form.Name = sanitize.String(form.Name)
	if form.Description != nil {
		description := sanitize.Text(*form.Description, false)
		form.Description = &description
	}
	if form.Name == "" {
		s.respondValidation(w, []string{"Name is required."})
		return
	}
	if form.ParentID != nil {
		_, err := s.stores.Categories.CategoryByID(r.Context(), *form.ParentID)
		if errors.Is(err, types.ErrCategoryNotFound) {
			s.respondValidation(w, []string{"Parent category does not exist."})
			return
		}
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
	}

	sess := s.sessionFromContext(r.Context())
	suggestion := &types.CategorySuggestion{
		UserID:      sess.UserID,
		Name:        form.Name,
		Description: form.Description,
		ParentID:    form.ParentID,
		Status:      types.SuggestionPending,
	}
	if err := s.stores.Suggestions.Create(r.Context(), suggestion); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Suggestion submitted for review.", map[string]any{"id": suggestion.ID})
}

// handleApproveSuggestion promotes the suggestion into a live category and
// records the deciding admin.
func (s *Service) handleApproveSuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondNotFound(w, "Suggestion not found.")
		return
	}
	if !s.checkCSRF(w, r, csrfToken(r)) {
		return
	}

	suggestion, err := s.stores.Suggestions.SuggestionByID(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if suggestion == nil {
		s.respondNotFound(w, "Suggestion not found.")
		return
	}
	if suggestion.Status != types.SuggestionPending {
		s.respondMessage(w, http.StatusBadRequest, "Suggestion is not pending.")
		return
	}

	slug, err := taxonomy.MakeSlugUnique(r.Context(), taxonomy.GenerateSlug(suggestion.Name), nil, s.stores.Categories.SlugExists)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	category := &types.Category{
		ParentID:    suggestion.ParentID,
		Name:        suggestion.Name,
		Slug:        slug,
		Description: suggestion.Description,
		IsActive:    true,
	}
	if err := s.stores.Categories.Create(r.Context(), category); err != nil {
		s.respondStoreError(w, err)
		return
	}

	sess := s.sessionFromContext(r.Context())
	if err := s.stores.Suggestions.UpdateStatus(r.Context(), id, types.SuggestionApproved, sess.UserID); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Suggestion approved.", map[string]any{"category_id": category.ID, "slug": category.Slug})
}

func (s *Service) handleRejectSuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.respondNotFound(w, "Suggestion not found.")
		return
	}
	if !s.checkCSRF(w, r, csrfToken(r)) {
		return
	}

	suggestion, err := s.stores.Suggestions.SuggestionByID(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	if suggestion == nil {
		s.respondNotFound(w, "Suggestion not found.")
		return
	}
	if suggestion.Status != types.SuggestionPending {
		s.respondMessage(w, http.StatusBadRequest, "Suggestion is not pending.")
		return
	}

	sess := s.sessionFromContext(r.Context())
	if err := s.stores.Suggestions.UpdateStatus(r.Context(), id, types.SuggestionRejected, sess.UserID); err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.rotateCSRF(r)
	s.respondSuccess(w, "Suggestion rejected.", nil)
}
