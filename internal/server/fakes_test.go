package server

import (
	"context"
	"sort"

	"bizdir/pkg/types"
)

// In-memory stores backing the handler tests. Methods mirror the repository
// contracts, including the sentinel errors and soft-delete visibility rules.

type fakeUserStore struct {
	users     map[int64]*types.User
	userRoles map[int64][]int64
	rolesByID map[int64]*types.Role
	nextID    int64
}

func newFakeUserStore(roles map[int64]*types.Role) *fakeUserStore {
	return &fakeUserStore{
		users:     map[int64]*types.User{},
		userRoles: map[int64][]int64{},
		rolesByID: roles,
	}
}

func (f *fakeUserStore) UserByID(_ context.Context, id int64) (*types.User, error) {
	user, ok := f.users[id]
	if !ok || user.DeletedAt != nil {
		return nil, types.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) UserByEmail(_ context.Context, email string) (*types.User, error) {
	for _, user := range f.users {
		if user.Email == email && user.DeletedAt == nil {
			copied := *user
			return &copied, nil
		}
	}
	return nil, types.ErrUserNotFound
}

func (f *fakeUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	for _, user := range f.users {
		if user.Email == email && user.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) SlugExists(_ context.Context, slug string, excludeID *int64) (bool, error) {
	for _, user := range f.users {
		if excludeID != nil && user.ID == *excludeID {
			continue
		}
		if user.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) Create(_ context.Context, user *types.User) error {
	f.nextID++
	user.ID = f.nextID
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) Roles(_ context.Context, userID int64) ([]string, error) {
	var slugs []string
	for _, roleID := range f.userRoles[userID] {
		if role, ok := f.rolesByID[roleID]; ok {
			slugs = append(slugs, role.Slug)
		}
	}
	return slugs, nil
}

func (f *fakeUserStore) AssignRole(_ context.Context, userID, roleID int64) error {
	f.userRoles[userID] = append(f.userRoles[userID], roleID)
	return nil
}

type fakeRoleStore struct {
	byID map[int64]*types.Role
}

func (f *fakeRoleStore) RoleBySlug(_ context.Context, slug string) (*types.Role, error) {
	for _, role := range f.byID {
		if role.Slug == slug {
			copied := *role
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeCategoryStore struct {
	categories map[int64]*types.Category
	nextID     int64
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{categories: map[int64]*types.Category{}}
}

func (f *fakeCategoryStore) All(_ context.Context, activeOnly bool) ([]*types.Category, error) {
	var out []*types.Category
	for _, c := range f.categories {
		if c.DeletedAt != nil {
			continue
		}
		if activeOnly && !c.IsActive {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCategoryStore) CategoryByID(_ context.Context, id int64) (*types.Category, error) {
	c, ok := f.categories[id]
	if !ok || c.DeletedAt != nil {
		return nil, types.ErrCategoryNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCategoryStore) SlugExists(_ context.Context, slug string, excludeID *int64) (bool, error) {
	for _, c := range f.categories {
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		if c.Slug == slug && c.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategoryStore) HasChildren(_ context.Context, id int64) (bool, error) {
	for _, c := range f.categories {
		if c.ParentID != nil && *c.ParentID == id && c.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategoryStore) Create(_ context.Context, category *types.Category) error {
	f.nextID++
	category.ID = f.nextID
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCategoryStore) Update(_ context.Context, category *types.Category) error {
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCategoryStore) SoftDelete(_ context.Context, id int64) error {
	if c, ok := f.categories[id]; ok {
		now := frozenNow
		c.DeletedAt = &now
	}
	return nil
}

func (f *fakeCategoryStore) SetActive(_ context.Context, id int64, active bool) error {
	if c, ok := f.categories[id]; ok {
		c.IsActive = active
	}
	return nil
}

type fakeLocationStore struct {
	locations map[int64]*types.Location
	nextID    int64
}

func newFakeLocationStore() *fakeLocationStore {
	return &fakeLocationStore{locations: map[int64]*types.Location{}}
}

func (f *fakeLocationStore) visible(activeOnly bool, keep func(*types.Location) bool) []*types.Location {
	var out []*types.Location
	for _, l := range f.locations {
		if l.DeletedAt != nil {
			continue
		}
		if activeOnly && !l.IsActive {
			continue
		}
		if keep != nil && !keep(l) {
			continue
		}
		copied := *l
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeLocationStore) All(_ context.Context, activeOnly bool) ([]*types.Location, error) {
	return f.visible(activeOnly, nil), nil
}

func (f *fakeLocationStore) Roots(_ context.Context, activeOnly bool) ([]*types.Location, error) {
	return f.visible(activeOnly, func(l *types.Location) bool { return l.ParentID == nil }), nil
}

func (f *fakeLocationStore) Children(_ context.Context, parentID int64, activeOnly bool) ([]*types.Location, error) {
	return f.visible(activeOnly, func(l *types.Location) bool {
		return l.ParentID != nil && *l.ParentID == parentID
	}), nil
}

func (f *fakeLocationStore) LocationByID(_ context.Context, id int64) (*types.Location, error) {
	l, ok := f.locations[id]
	if !ok || l.DeletedAt != nil {
		return nil, types.ErrLocationNotFound
	}
	copied := *l
	return &copied, nil
}

func (f *fakeLocationStore) SlugExists(_ context.Context, slug string, excludeID *int64) (bool, error) {
	for _, l := range f.locations {
		if excludeID != nil && l.ID == *excludeID {
			continue
		}
		if l.Slug == slug && l.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLocationStore) HasChildren(_ context.Context, id int64) (bool, error) {
	for _, l := range f.locations {
		if l.ParentID != nil && *l.ParentID == id && l.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLocationStore) Create(_ context.Context, location *types.Location) error {
	f.nextID++
	location.ID = f.nextID
	copied := *location
	f.locations[location.ID] = &copied
	return nil
}

func (f *fakeLocationStore) Update(_ context.Context, location *types.Location) error {
	copied := *location
	f.locations[location.ID] = &copied
	return nil
}

func (f *fakeLocationStore) SoftDelete(_ context.Context, id int64) error {
	if l, ok := f.locations[id]; ok {
		now := frozenNow
		l.DeletedAt = &now
	}
	return nil
}

func (f *fakeLocationStore) SetActive(_ context.Context, id int64, active bool) error {
	if l, ok := f.locations[id]; ok {
		l.IsActive = active
	}
	return nil
}

type fakeListingStore struct {
	listings map[int64]*types.Listing
	// user IDs whose subscriptions have lapsed; the expiry sweep moves
	// their approved listings to expired.
	lapsedUsers map[int64]bool
	nextID      int64
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{
		listings:    map[int64]*types.Listing{},
		lapsedUsers: map[int64]bool{},
	}
}

func listingDetail(l *types.Listing) *types.ListingDetail {
	copied := *l
	return &types.ListingDetail{Listing: copied}
}

func (f *fakeListingStore) collect(keep func(*types.Listing) bool) []*types.ListingDetail {
	var out []*types.ListingDetail
	for _, l := range f.listings {
		if l.DeletedAt != nil || !keep(l) {
			continue
		}
		out = append(out, listingDetail(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeListingStore) Approved(_ context.Context, limit, offset uint64) ([]*types.ListingDetail, error) {
	out := f.collect(func(l *types.Listing) bool { return l.Status == types.ListingApproved })
	if offset >= uint64(len(out)) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeListingStore) BySlugPublic(_ context.Context, slug string) (*types.ListingDetail, error) {
	for _, l := range f.listings {
		if l.Slug == slug && l.Status == types.ListingApproved && l.DeletedAt == nil {
			return listingDetail(l), nil
		}
	}
	return nil, types.ErrListingNotFound
}

func (f *fakeListingStore) ByID(_ context.Context, id int64) (*types.ListingDetail, error) {
	l, ok := f.listings[id]
	if !ok || l.DeletedAt != nil {
		return nil, types.ErrListingNotFound
	}
	return listingDetail(l), nil
}

func (f *fakeListingStore) ByUserID(_ context.Context, userID int64) ([]*types.ListingDetail, error) {
	return f.collect(func(l *types.Listing) bool { return l.UserID == userID }), nil
}

func (f *fakeListingStore) PendingApprovals(_ context.Context) ([]*types.ListingDetail, error) {
	return f.collect(func(l *types.Listing) bool { return l.Status == types.ListingPending }), nil
}

func (f *fakeListingStore) SlugExists(_ context.Context, slug string, excludeID *int64) (bool, error) {
	for _, l := range f.listings {
		if excludeID != nil && l.ID == *excludeID {
			continue
		}
		if l.Slug == slug && l.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeListingStore) Create(_ context.Context, listing *types.Listing) error {
	f.nextID++
	listing.ID = f.nextID
	copied := *listing
	f.listings[listing.ID] = &copied
	return nil
}

func (f *fakeListingStore) Update(_ context.Context, listing *types.Listing) error {
	copied := *listing
	f.listings[listing.ID] = &copied
	return nil
}

func (f *fakeListingStore) UpdateStatus(_ context.Context, id int64, status types.ListingStatus) error {
	if l, ok := f.listings[id]; ok {
		l.Status = status
	}
	return nil
}

func (f *fakeListingStore) IncrementViewCount(_ context.Context, id int64) error {
	if l, ok := f.listings[id]; ok {
		l.ViewCount++
	}
	return nil
}

func (f *fakeListingStore) SoftDelete(_ context.Context, id int64) error {
	if l, ok := f.listings[id]; ok {
		now := frozenNow
		l.DeletedAt = &now
	}
	return nil
}

func (f *fakeListingStore) ExpireForLapsedSubscriptions(_ context.Context) (int64, error) {
	var count int64
	for _, l := range f.listings {
		if f.lapsedUsers[l.UserID] && l.Status == types.ListingApproved && l.DeletedAt == nil {
			l.Status = types.ListingExpired
			count++
		}
	}
	return count, nil
}

type fakeSuggestionStore struct {
	suggestions map[int64]*types.CategorySuggestion
	nextID      int64
}

func newFakeSuggestionStore() *fakeSuggestionStore {
	return &fakeSuggestionStore{suggestions: map[int64]*types.CategorySuggestion{}}
}

func suggestionDetail(s *types.CategorySuggestion) *types.CategorySuggestionDetail {
	copied := *s
	return &types.CategorySuggestionDetail{CategorySuggestion: copied}
}

func (f *fakeSuggestionStore) AllByStatus(_ context.Context, status types.SuggestionStatus) ([]*types.CategorySuggestionDetail, error) {
	var out []*types.CategorySuggestionDetail
	for _, s := range f.suggestions {
		if s.Status == status {
			out = append(out, suggestionDetail(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSuggestionStore) SuggestionByID(_ context.Context, id int64) (*types.CategorySuggestionDetail, error) {
	s, ok := f.suggestions[id]
	if !ok {
		return nil, nil
	}
	return suggestionDetail(s), nil
}

func (f *fakeSuggestionStore) Create(_ context.Context, suggestion *types.CategorySuggestion) error {
	f.nextID++
	suggestion.ID = f.nextID
	if suggestion.Status == "" {
		suggestion.Status = types.SuggestionPending
	}
	copied := *suggestion
	f.suggestions[suggestion.ID] = &copied
	return nil
}

func (f *fakeSuggestionStore) UpdateStatus(_ context.Context, id int64, status types.SuggestionStatus, approvedBy int64) error {
	if s, ok := f.suggestions[id]; ok {
		s.Status = status
		s.ApprovedBy = &approvedBy
	}
	return nil
}

type fakeSubscriptionStore struct {
	active map[int64]bool
}

func (f *fakeSubscriptionStore) UserHasActive(_ context.Context, userID int64) (bool, error) {
	return f.active[userID], nil
}
