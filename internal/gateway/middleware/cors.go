package middleware

import (
	"net/http"
	"strings"
)

// OriginPolicy is a parsed ALLOWED_ORIGINS list
type OriginPolicy struct {
	allowAll bool
	origins  map[string]struct{}
}

// NewOriginPolicy parses a comma separated origin list. "*" allows all.
func NewOriginPolicy(allowedOrigins string) OriginPolicy {
	p := OriginPolicy{
		allowAll: strings.TrimSpace(allowedOrigins) == "*",
		origins:  map[string]struct{}{},
	}
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			p.origins[o] = struct{}{}
		}
	}
	return p
}

// Allows reports whether origin may call the API.
func (p OriginPolicy) Allows(origin string) bool {
	if p.allowAll {
		return true
	}
	_, ok := p.origins[origin]
	return ok && origin != ""
}

// CheckRequest allows requests without an Origin header and those whose
// origin is allowed. Used by the websocket upgrader.
func (p OriginPolicy) CheckRequest(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || p.Allows(origin)
}

// CORSMiddleware answers preflight requests and reflects the request origin
// when it appears in the comma separated allowedOrigins list ("*" allows all).
func CORSMiddleware(next http.Handler, allowedOrigins string) http.Handler {
	policy := NewOriginPolicy(allowedOrigins)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		validOrigin := false
		if policy.allowAll {
			validOrigin = true
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else if policy.Allows(origin) {
			validOrigin = true
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}

		if validOrigin {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
