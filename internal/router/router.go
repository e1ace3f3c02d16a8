// Package router maps (method, path) pairs to handlers through anchored
// pattern matching. Patterns mix literal segments with {name} placeholders;
// routes are tried in registration order and the first match wins. Per-route
// middleware is referenced by name and resolved when the route is registered,
// so a misspelled middleware identifier fails at startup instead of surfacing
// as a request-time 404.
package router

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Middleware runs before a route's handler. Returning false aborts the
// request: the middleware is expected to have written a redirect or denial,
// and neither later middleware nor the handler run.
type Middleware func(w http.ResponseWriter, r *http.Request) bool

type route struct {
	method     string
	pattern    *regexp.Regexp
	paramNames []string
	handler    http.HandlerFunc
	middleware []Middleware
}

type Router struct {
	routes   []route
	named    map[string]Middleware
	wrappers []func(http.Handler) http.Handler
	notFound http.HandlerFunc
}

func New() *Router {
	return &Router{
		named:    map[string]Middleware{},
		notFound: defaultNotFound,
	}
}

// RegisterMiddleware adds a named middleware to the static registry routes
// resolve against. Must be called before any route referencing the name.
func (rt *Router) RegisterMiddleware(name string, mw Middleware) {
	if _, exists := rt.named[name]; exists {
		panic(fmt.Sprintf("router: middleware %q registered twice", name))
	}
	rt.named[name] = mw
}

// HandleFunc registers a route. Middleware names are resolved now; an
// unknown name is a configuration error and panics.
func (rt *Router) HandleFunc(method, pattern string, handler http.HandlerFunc, middleware ...string) {
	resolved := make([]Middleware, 0, len(middleware))
	for _, name := range middleware {
		mw, ok := rt.named[name]
		if !ok {
			panic(fmt.Sprintf("router: unknown middleware %q on %s %s", name, method, pattern))
		}
		resolved = append(resolved, mw)
	}

	rt.routes = append(rt.routes, route{
		method:     method,
		pattern:    compilePattern(pattern),
		paramNames: paramNames(pattern),
		handler:    handler,
		middleware: resolved,
	})
}

// Use adds a wrapper around the whole dispatch (logging, slash stripping).
// Wrappers run in the order added, before route middleware.
func (rt *Router) Use(wrapper func(http.Handler) http.Handler) {
	rt.wrappers = append(rt.wrappers, wrapper)
}

// NotFound replaces the default 404 handler.
func (rt *Router) NotFound(handler http.HandlerFunc) {
	rt.notFound = handler
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var h http.Handler = http.HandlerFunc(rt.dispatch)
	for i := len(rt.wrappers) - 1; i >= 0; i-- {
		h = rt.wrappers[i](h)
	}
	h.ServeHTTP(w, r)
}

func (rt *Router) dispatch(w http.ResponseWriter, r *http.Request) {
	for _, route := range rt.routes {
		if route.method != r.Method {
			continue
		}

		matches := route.pattern.FindStringSubmatch(r.URL.Path)
		if matches == nil {
			continue
		}

		params := make(map[string]string, len(route.paramNames))
		for i, name := range route.paramNames {
			params[name] = matches[i+1]
		}
		if len(params) > 0 {
			r = r.WithContext(context.WithValue(r.Context(), paramsKey, params))
		}

		for _, mw := range route.middleware {
			if !mw(w, r) {
				return
			}
		}

		route.handler(w, r)
		return
	}

	rt.notFound(w, r)
}

func defaultNotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "404 Not Found", http.StatusNotFound)
}

var (
	placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)
	// placeholder shape after the literal parts have been QuoteMeta-escaped
	quotedPlaceholder = regexp.MustCompile(`\\\{[a-zA-Z_]+\\\}`)
)

// compilePattern turns a path pattern into an anchored regex. The root path
// matches exactly; elsewhere each {name} placeholder matches one or more
// non-slash characters. A trailing "/..." makes the pattern a prefix match,
// used for mounting file servers.
func compilePattern(pattern string) *regexp.Regexp {
	if pattern == "/" {
		return regexp.MustCompile(`^/$`)
	}

	if strings.HasSuffix(pattern, "/...") {
		prefix := strings.Trim(strings.TrimSuffix(pattern, "/..."), "/")
		return regexp.MustCompile(`^/` + regexp.QuoteMeta(prefix) + `/.+$`)
	}

	trimmed := strings.Trim(pattern, "/")
	expr := quotedPlaceholder.ReplaceAllString(regexp.QuoteMeta(trimmed), `([^/]+)`)
	return regexp.MustCompile(`^/` + expr + `$`)
}

func paramNames(pattern string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(pattern, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

type contextKey string

const paramsKey contextKey = "router_params"

// Param returns the captured value for a {name} placeholder, or "" when the
// route defined no such placeholder.
func Param(ctx context.Context, name string) string {
	params, _ := ctx.Value(paramsKey).(map[string]string)
	return params[name]
}
