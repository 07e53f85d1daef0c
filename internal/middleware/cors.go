package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// Cors lets the browser client call the API. An empty origins list allows
// every origin.
func Cors(origins []string) Middleware {
	options := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
	}
	if len(origins) == 0 {
		options.AllowOriginFunc = func(origin string) bool { return true }
	}
	return cors.New(options).Handler
}
