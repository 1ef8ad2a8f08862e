package utils

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter builds the application router: CORS for local-network browser
// clients and the health probe every route table starts from.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"service": "watchlog",
		})
	}).Methods(http.MethodGet)

	return r
}
