package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(rt *Router, path string) *httptest.ResponseRecorder {
	return do(rt, http.MethodGet, path)
}

func do(rt *Router, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRootMatchesExactly(t *testing.T) {
	rt := New()
	rt.HandleFunc(http.MethodGet, "/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "home")
	})

	assert.Equal(t, "home", get(rt, "/").Body.String())
	assert.Equal(t, http.StatusNotFound, get(rt, "/anything").Code)
}

func TestPlaceholderCapture(t *testing.T) {
	rt := New()
	rt.HandleFunc(http.MethodGet, "/listings/show/{slug}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, Param(r.Context(), "slug"))
	})

	assert.Equal(t, "corner-cafe", get(rt, "/listings/show/corner-cafe").Body.String())
	// placeholders never span segments
	assert.Equal(t, http.StatusNotFound, get(rt, "/listings/show/a/b").Code)
	// and must capture at least one character
	assert.Equal(t, http.StatusNotFound, get(rt, "/listings/show/").Code)
}

func TestTrailingWildcardMatchesPrefix(t *testing.T) {
	rt := New()
	rt.HandleFunc(http.MethodGet, "/static/...", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, r.URL.Path)
	})

	assert.Equal(t, "/static/css/app.css", get(rt, "/static/css/app.css").Body.String())
	// the prefix alone is not a match
	assert.Equal(t, http.StatusNotFound, get(rt, "/static").Code)
}

func TestMultiplePlaceholdersZipInPathOrder(t *testing.T) {
	rt := New()
	rt.HandleFunc(http.MethodGet, "/t/{a}/x/{b}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%s|%s", Param(r.Context(), "a"), Param(r.Context(), "b"))
	})

	assert.Equal(t, "one|two", get(rt, "/t/one/x/two").Body.String())
}

func TestMethodMismatchSkipsRoute(t *testing.T) {
	rt := New()
	rt.HandleFunc(http.MethodPost, "/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "posted")
	})

	assert.Equal(t, http.StatusNotFound, get(rt, "/login").Code)
	assert.Equal(t, "posted", do(rt, http.MethodPost, "/login").Body.String())
}

func TestFirstMatchWins(t *testing.T) {
	rt := New()
	rt.HandleFunc(http.MethodGet, "/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "wildcard")
	})
	rt.HandleFunc(http.MethodGet, "/items/special", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "special")
	})

	// no specificity resolution: registration order decides
	assert.Equal(t, "wildcard", get(rt, "/items/special").Body.String())
}

func TestLiteralDotsAreNotWildcards(t *testing.T) {
	rt := New()
	rt.HandleFunc(http.MethodGet, "/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})

	assert.Equal(t, "ok", get(rt, "/robots.txt").Body.String())
	assert.Equal(t, http.StatusNotFound, get(rt, "/robotsxtxt").Code)
}

func TestCustomNotFound(t *testing.T) {
	rt := New()
	rt.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "custom 404")
	})

	rec := get(rt, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "custom 404", rec.Body.String())
}

func TestMiddlewareRunsInOrderAndAborts(t *testing.T) {
	rt := New()
	var order []string

	rt.RegisterMiddleware("first", func(w http.ResponseWriter, r *http.Request) bool {
		order = append(order, "first")
		return true
	})
	rt.RegisterMiddleware("deny", func(w http.ResponseWriter, r *http.Request) bool {
		order = append(order, "deny")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return false
	})
	rt.RegisterMiddleware("after", func(w http.ResponseWriter, r *http.Request) bool {
		order = append(order, "after")
		return true
	})

	rt.HandleFunc(http.MethodGet, "/secret", func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}, "first", "deny", "after")

	rec := get(rt, "/secret")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	// abort stops everything after the denying middleware
	assert.Equal(t, []string{"first", "deny"}, order)
}

func TestUnknownMiddlewarePanicsAtRegistration(t *testing.T) {
	rt := New()
	require.Panics(t, func() {
		rt.HandleFunc(http.MethodGet, "/x", func(w http.ResponseWriter, r *http.Request) {}, "nope")
	})
}

func TestDuplicateMiddlewareNamePanics(t *testing.T) {
	rt := New()
	rt.RegisterMiddleware("auth", func(w http.ResponseWriter, r *http.Request) bool { return true })
	require.Panics(t, func() {
		rt.RegisterMiddleware("auth", func(w http.ResponseWriter, r *http.Request) bool { return true })
	})
}

func TestUseWrappersRunOutsideRoutes(t *testing.T) {
	rt := New()
	var order []string

	rt.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "outer")
			next.ServeHTTP(w, r)
		})
	})
	rt.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "inner")
			next.ServeHTTP(w, r)
		})
	})
	rt.HandleFunc(http.MethodGet, "/", func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})

	get(rt, "/")
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestParamMissingReturnsEmpty(t *testing.T) {
	rt := New()
	rt.HandleFunc(http.MethodGet, "/plain", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "[%s]", Param(r.Context(), "id"))
	})

	assert.Equal(t, "[]", get(rt, "/plain").Body.String())
}
