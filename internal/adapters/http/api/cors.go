package api

import (
	"net/http"
	"strconv"
	"strings"
)

// corsAllowedMethods lists what the /members routes answer to.
const corsAllowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"

// CORSConfig is the cross-origin policy applied to /members routes.
// An empty AllowedOrigins disables CORS headers entirely; "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int // seconds
	PathPrefix     string
}

func (c CORSConfig) allows(origin string) bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func (c CORSConfig) prefix() string {
	if c.PathPrefix == "" {
		return "/members"
	}
	return c.PathPrefix
}

// CORSMiddleware adds cross-origin headers for allowed origins on the
// configured path prefix and answers preflight requests itself. Credentials
// are never allowed. Every response under the prefix carries Vary: Origin,
// since whether the allow header is present depends on the request origin.
func CORSMiddleware(cfg CORSConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(cfg.AllowedOrigins) == 0 || !strings.HasPrefix(r.URL.Path, cfg.prefix()) {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Add("Vary", "Origin")
		origin := r.Header.Get("Origin")
		if origin == "" || !cfg.allows(origin) {
			next.ServeHTTP(w, r)
			return
		}
		h.Set("Access-Control-Allow-Origin", origin)

		preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
		if !preflight {
			next.ServeHTTP(w, r)
			return
		}

		h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
		if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			h.Set("Access-Control-Allow-Headers", reqHeaders)
		}
		if cfg.MaxAge > 0 {
			h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
