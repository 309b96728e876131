package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ashpect/fwdproxy/pkg/accesslog"
	"github.com/ashpect/fwdproxy/pkg/cache"
)

// RecentLog is the access log view served on /logs.
type RecentLog interface {
	Recent() []accesslog.Record
}

// NewRouter exposes read-only views of the store and the access log.
// logs may be nil, in which case /logs is not mounted.
func NewRouter(store *cache.Store, logs RecentLog, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, store.Stats(), log)
	})

	r.Get("/cache", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, store.Snapshot(), log)
	})

	if logs != nil {
		r.Get("/logs", func(w http.ResponseWriter, r *http.Request) {
			records := logs.Recent()
			if s := r.URL.Query().Get("limit"); s != "" {
				n, err := strconv.Atoi(s)
				if err != nil || n < 0 {
					http.Error(w, "invalid limit", http.StatusBadRequest)
					return
				}
				if n < len(records) {
					records = records[:n]
				}
			}
			writeJSON(w, records, log)
		})
	}

	return r
}

func writeJSON(w http.ResponseWriter, v interface{}, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode admin response")
	}
}
