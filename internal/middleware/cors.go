package middleware

import "net/http"

// The form is served from arbitrary origins, so the API answers with a
// wildcard and the headers browsers send alongside form submissions.
const (
	corsAllowOrigin  = "*"
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
)

// CORS stamps permissive cross-origin headers on every response and
// short-circuits OPTIONS preflights with an empty 200 before any body
// handling happens downstream.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", corsAllowOrigin)
		w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
