package middleware

import (
	"net/http"
	"strings"
)

// NewCORS allows the listed origins; "*" allows any origin.
func NewCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	anyOrigin := false
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		switch origin {
		case "":
			continue
		case "*":
			anyOrigin = true
		default:
			allowed[origin] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				_, ok := allowed[origin]
				if ok || anyOrigin {
					headers := w.Header()
					headers.Add("Vary", "Origin")
					headers.Set("Access-Control-Allow-Origin", origin)
					headers.Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
					headers.Set("Access-Control-Allow-Headers", "Authorization,Content-Type,X-Request-Id")
					headers.Set("Access-Control-Expose-Headers", "Retry-After,X-Request-Id")
					headers.Set("Access-Control-Max-Age", "86400")
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
