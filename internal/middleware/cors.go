package middleware

import (
	"net/http"
	"strings"
)

// CORSAllowedMethods are the methods advertised to browsers.
var CORSAllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}

// CORSAllowedHeaders are the request headers browsers may send.
var CORSAllowedHeaders = []string{"Content-Type"}

// CORS sets permissive cross-origin headers on every response and answers
// OPTIONS preflight requests for any path with 200 and an empty body.
func CORS(next http.Handler) http.Handler {
	methods := strings.Join(CORSAllowedMethods, ", ")
	headers := strings.Join(CORSAllowedHeaders, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Allow-Headers", headers)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
