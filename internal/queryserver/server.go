// Package queryserver exposes query.Lookup over HTTP: GET /?fen=<FEN>
// returns the position's aggregate stats as JSON.
package queryserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/chessql/pgnstats/internal/query"
	"github.com/chessql/pgnstats/internal/store"
)

// New builds the router for the query endpoint, wrapped in gorilla's
// combined access-log middleware the way the teacher's own HTTP examples
// in the pack do it.
func New(st *store.Store) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/", handleQuery(st)).Methods(http.MethodGet)
	return handlers.CombinedLoggingHandler(log.Writer(), router)
}

func handleQuery(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fen := r.URL.Query().Get("fen")
		if fen == "" {
			http.Error(w, `missing "fen" query parameter`, http.StatusBadRequest)
			return
		}

		result, err := query.Lookup(st, fen)
		switch {
		case errors.Is(err, query.ErrNotFound):
			http.Error(w, "position not found", http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.Printf("queryserver: encode response: %v", err)
		}
	}
}
