package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS opens a route group to any origin for the given methods. OPTIONS is
// always allowed and passed through so the group can answer it itself.
// Every response carries an Allow header listing the group's methods and a
// wildcard Access-Control-Allow-Origin, with or without an Origin header.
func CORS(methods ...string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(methods)+1)
	allowed = append(allowed, methods...)
	allowed = append(allowed, http.MethodOptions)
	allow := strings.Join(allowed, ", ")

	c := cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     allowed,
		AllowedHeaders:     []string{"*"},
		OptionsPassthrough: true,
	})
	return func(next http.Handler) http.Handler {
		return c(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Allow", allow)
			w.Header().Set("Access-Control-Allow-Origin", "*")
			next.ServeHTTP(w, r)
		}))
	}
}
