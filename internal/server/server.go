package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"bizdir/internal/router"
	"bizdir/internal/session"
	"bizdir/pkg/types"

	"github.com/go-playground/form/v4"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

// UserStore is the slice of the user repository the handlers consume.
type UserStore interface {
	UserByID(ctx context.Context, id int64) (*types.User, error)
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error)
	Create(ctx context.Context, user *types.User) error
	Roles(ctx context.Context, userID int64) ([]string, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
}

type RoleStore interface {
	RoleBySlug(ctx context.Context, slug string) (*types.Role, error)
}

type CategoryStore interface {
	All(ctx context.Context, activeOnly bool) ([]*types.Category, error)
	CategoryByID(ctx context.Context, id int64) (*types.Category, error)
	SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error)
	HasChildren(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, category *types.Category) error
	Update(ctx context.Context, category *types.Category) error
	SoftDelete(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type LocationStore interface {
	All(ctx context.Context, activeOnly bool) ([]*types.Location, error)
	Roots(ctx context.Context, activeOnly bool) ([]*types.Location, error)
	Children(ctx context.Context, parentID int64, activeOnly bool) ([]*types.Location, error)
	LocationByID(ctx context.Context, id int64) (*types.Location, error)
	SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error)
	HasChildren(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, location *types.Location) error
	Update(ctx context.Context, location *types.Location) error
	SoftDelete(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type ListingStore interface {
	Approved(ctx context.Context, limit, offset uint64) ([]*types.ListingDetail, error)
	BySlugPublic(ctx context.Context, slug string) (*types.ListingDetail, error)
	ByID(ctx context.Context, id int64) (*types.ListingDetail, error)
	ByUserID(ctx context.Context, userID int64) ([]*types.ListingDetail, error)
	PendingApprovals(ctx context.Context) ([]*types.ListingDetail, error)
	SlugExists(ctx context.Context, slug string, excludeID *int64) (bool, error)
	Create(ctx context.Context, listing *types.Listing) error
	Update(ctx context.Context, listing *types.Listing) error
	UpdateStatus(ctx context.Context, id int64, status types.ListingStatus) error
	IncrementViewCount(ctx context.Context, id int64) error
	SoftDelete(ctx context.Context, id int64) error
	ExpireForLapsedSubscriptions(ctx context.Context) (int64, error)
}

type SuggestionStore interface {
	AllByStatus(ctx context.Context, status types.SuggestionStatus) ([]*types.CategorySuggestionDetail, error)
	SuggestionByID(ctx context.Context, id int64) (*types.CategorySuggestionDetail, error)
	Create(ctx context.Context, suggestion *types.CategorySuggestion) error
	UpdateStatus(ctx context.Context, id int64, status types.SuggestionStatus, approvedBy int64) error
}

type SubscriptionStore interface {
	UserHasActive(ctx context.Context, userID int64) (bool, error)
}

// Stores bundles the repositories the service depends on.
type Stores struct {
	Users         UserStore
	Roles         RoleStore
	Categories    CategoryStore
	Locations     LocationStore
	Listings      ListingStore
	Suggestions   SuggestionStore
	Subscriptions SubscriptionStore
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	sessions  *session.Manager
	stores    Stores
	templates *template.Template

	router *router.Router
	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	sessions *session.Manager,
	stores Stores,
) (*Service, error) {
	s := &Service{
		logger:   logger,
		config:   config,
		sessions: sessions,
		stores:   stores,
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.router = s.buildRouter()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.router,
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter() *router.Router {
	rt := router.New()

	rt.Use(s.StripTrailingSlash)
	rt.Use(s.LoggingMiddleware)
	rt.Use(s.SessionMiddleware)

	rt.RegisterMiddleware("auth", s.requireAuth)
	rt.RegisterMiddleware("guest", s.requireGuest)
	rt.RegisterMiddleware("admin", s.requireAdmin)

	rt.NotFound(s.handleNotFound)

	rt.HandleFunc(http.MethodGet, "/", s.handleHome)

	rt.HandleFunc(http.MethodGet, "/login", s.handleGetLogin, "guest")
	rt.HandleFunc(http.MethodPost, "/login", s.handlePostLogin, "guest")
	rt.HandleFunc(http.MethodGet, "/register", s.handleGetRegister, "guest")
	rt.HandleFunc(http.MethodPost, "/register", s.handlePostRegister, "guest")
	rt.HandleFunc(http.MethodGet, "/logout", s.handleLogout, "auth")

	rt.HandleFunc(http.MethodGet, "/dashboard", s.handleDashboard, "auth")

	rt.HandleFunc(http.MethodGet, "/listings", s.handleListings)
	rt.HandleFunc(http.MethodGet, "/listings/my", s.handleMyListings, "auth")
	rt.HandleFunc(http.MethodGet, "/listings/create", s.handleGetListingCreate, "auth")
	rt.HandleFunc(http.MethodPost, "/listings/store", s.handlePostListingStore, "auth")
	rt.HandleFunc(http.MethodGet, "/listings/edit/{id}", s.handleGetListingEdit, "auth")
	rt.HandleFunc(http.MethodPost, "/listings/update/{id}", s.handlePostListingUpdate, "auth")
	rt.HandleFunc(http.MethodPost, "/listings/delete/{id}", s.handlePostListingDelete, "auth")
	rt.HandleFunc(http.MethodGet, "/listings/show/{slug}", s.handleListingShow)

	rt.HandleFunc(http.MethodPost, "/categories/suggest", s.handlePostCategorySuggest, "auth")

	rt.HandleFunc(http.MethodGet, "/admin/listings/pending", s.handlePendingListings, "admin")
	rt.HandleFunc(http.MethodPost, "/admin/listings/approve/{id}", s.handleApproveListing, "admin")
	rt.HandleFunc(http.MethodPost, "/admin/listings/reject/{id}", s.handleRejectListing, "admin")

	rt.HandleFunc(http.MethodGet, "/admin/categories", s.handleAdminCategories, "admin")
	rt.HandleFunc(http.MethodGet, "/admin/categories/create", s.handleGetCategoryCreate, "admin")
	rt.HandleFunc(http.MethodPost, "/admin/categories/store", s.handlePostCategoryStore, "admin")
	rt.HandleFunc(http.MethodGet, "/admin/categories/edit/{id}", s.handleGetCategoryEdit, "admin")
	rt.HandleFunc(http.MethodPost, "/admin/categories/update/{id}", s.handlePostCategoryUpdate, "admin")
	rt.HandleFunc(http.MethodPost, "/admin/categories/delete/{id}", s.handlePostCategoryDelete, "admin")
	rt.HandleFunc(http.MethodPost, "/admin/categories/toggle/{id}", s.handlePostCategoryToggle, "admin")
	rt.HandleFunc(http.MethodPost, "/admin/categories/suggestions/approve/{id}", s.handleApproveSuggestion, "admin")
	rt.HandleFunc(http.MethodPost, "/admin/categories/suggestions/reject/{id}", s.handleRejectSuggestion, "admin")

	rt.HandleFunc(http.MethodGet, "/admin/locations", s.handleAdminLocations, "admin")
	rt.HandleFunc(http.MethodGet, "/admin/locations/create", s.handleGetLocationCreate, "admin")
	rt.HandleFunc(http.MethodPost, "/admin/locations/store", s.handlePostLocationStore, "admin")
	rt.HandleFunc(http.MethodGet, "/admin/locations/edit/{id}", s.handleGetLocationEdit, "admin")
	rt.HandleFunc(http.MethodPost, "/admin/locations/update/{id}", s.handlePostLocationUpdate, "admin")
	rt.HandleFunc(http.MethodPost, "/admin/locations/delete/{id}", s.handlePostLocationDelete, "admin")
	rt.HandleFunc(http.MethodPost, "/admin/locations/toggle/{id}", s.handlePostLocationToggle, "admin")
	rt.HandleFunc(http.MethodGet, "/admin/locations/children/{parentId}", s.handleAdminLocationChildren, "admin")

	rt.HandleFunc(http.MethodGet, "/api/categories/tree", s.handleAPICategoryTree)
	rt.HandleFunc(http.MethodGet, "/api/locations/tree", s.handleAPILocationTree)
	rt.HandleFunc(http.MethodGet, "/api/locations/children/{parentId}", s.handleAPILocationChildren)

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot)))
	rt.HandleFunc(http.MethodGet, "/static/...", fileServer.ServeHTTP)

	return rt
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"derefOr": func(s *string, defaultVal string) string {
			if s == nil {
				return defaultVal
			}
			return *s
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}
