package types

import "bizdir/internal/taxonomy"

type NavbarData struct {
	IsAuthenticated bool
	IsAdmin         bool
	UserName        string
	UserEmail       string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type HomePageData struct {
	BasePageData
	Listings []*ListingDetail
}

type LoginPageData struct {
	BasePageData
	Error     string
	Errors    []string
	Email     string
	CSRFToken string
}

type RegisterPageData struct {
	BasePageData
	Error     string
	Errors    []string
	Name      string
	Email     string
	Phone     string
	CSRFToken string
}

type DashboardPageData struct {
	BasePageData
	Roles                 []string
	HasActiveSubscription bool
	ListingCount          int
}

type ListingsPageData struct {
	BasePageData
	Listings []*ListingDetail
}

type ListingDetailPageData struct {
	BasePageData
	Listing *ListingDetail
}

type ListingFormPageData struct {
	BasePageData
	Listing       *ListingDetail
	Categories    []*taxonomy.Node[*Category]
	LocationRoots []*Location
	CSRFToken     string
}

type AdminCategoriesPageData struct {
	BasePageData
	Categories         []*taxonomy.Node[*Category]
	PendingSuggestions []*CategorySuggestionDetail
	CSRFToken          string
}

type AdminCategoryFormPageData struct {
	BasePageData
	Category   *Category
	Categories []*taxonomy.Node[*Category]
	CSRFToken  string
}

type AdminLocationsPageData struct {
	BasePageData
	Locations []*taxonomy.Node[*Location]
	CSRFToken string
}

type AdminLocationFormPageData struct {
	BasePageData
	Location  *Location
	Roots     []*Location
	Path      []*Location
	Types     []LocationType
	CSRFToken string
}

type PendingListingsPageData struct {
	BasePageData
	Listings  []*ListingDetail
	CSRFToken string
}

type NotFoundPageData struct {
	BasePageData
}
