package middleware

import (
	"net/http"

	"club-app-go/pkg/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// LogFields tags the request context with the chi request id so that
// loggers derived with WithContext carry it.
func LogFields(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			r = r.WithContext(logger.ContextWith(r.Context(), "request_id", id))
		}
		next.ServeHTTP(w, r)
	})
}
