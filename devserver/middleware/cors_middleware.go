package middleware

import (
	"net/http"
	"strings"
)

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Content-Type, Authorization, X-Request-ID"
)

// originSet holds the browser origins allowed to call the API with the session cookie. "*" admits any origin
// that sends one; the response still echoes the exact origin because credentialed requests reject a wildcard.
type originSet struct {
	any   bool
	exact map[string]bool
}

func newOriginSet(origins []string) originSet {
	set := originSet{exact: make(map[string]bool, len(origins))}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			set.any = true
		default:
			set.exact[o] = true
		}
	}
	return set
}

func (s originSet) admits(origin string) bool {
	if origin == "" {
		return false
	}
	return s.any || s.exact[origin]
}

// CrossOrigin lets the listed browser origins call the API with credentials and answers their preflight
// requests itself. Requests from other origins pass through without CORS headers.
func CrossOrigin(origins []string) func(http.Handler) http.Handler {
	set := newOriginSet(origins)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if !set.admits(origin) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
