package server

import (
	"net/http"
	"strings"
)

// RouteHandler is a function type for HTTP handlers
type RouteHandler func(http.ResponseWriter, *http.Request)

// MethodRouter maps HTTP methods to handlers
type MethodRouter map[string]RouteHandler

// RouteByMethod dispatches on the request method; unmapped methods get a 405
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	handler := routes[r.Method]
	if handler == nil {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	handler(w, r)
}

// RouteResourceCollection handles a collection endpoint: GET lists, POST creates
func RouteResourceCollection(w http.ResponseWriter, r *http.Request, list, create RouteHandler) {
	RouteByMethod(w, r, MethodRouter{"GET": list, "POST": create})
}

// RouteResourceItem handles an item endpoint: GET fetches, DELETE removes
func RouteResourceItem(w http.ResponseWriter, r *http.Request, get, delete RouteHandler) {
	RouteByMethod(w, r, MethodRouter{"GET": get, "DELETE": delete})
}

// PathSuffixRouter pairs a trailing path segment (like "/report") with its handler
type PathSuffixRouter struct {
	Suffix  string
	Handler RouteHandler
}

// RouteByPathSuffix matches the path portion after prefix against each suffix
// in order. Returns true if a route was matched and handled.
func RouteByPathSuffix(w http.ResponseWriter, r *http.Request, prefix string, routes []PathSuffixRouter) bool {
	path := r.URL.Path
	if len(path) <= len(prefix) {
		return false
	}

	rest := path[len(prefix):]
	for _, route := range routes {
		if strings.HasSuffix(rest, route.Suffix) {
			route.Handler(w, r)
			return true
		}
	}
	return false
}
