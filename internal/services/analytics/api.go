package analytics

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/evaratech/aquanode/internal/services/persistence"
)

// Register mounts the analytics endpoints on the mux.
func Register(mux *http.ServeMux, svc *Service) {
	mux.HandleFunc("GET /nodes/{id}/live", func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.Live(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, "live", err)
			return
		}
		writeJSON(w, snap)
	})
	mux.HandleFunc("GET /nodes/{id}/forecast", func(w http.ResponseWriter, r *http.Request) {
		fc, err := svc.NodeForecast(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, "forecast", err)
			return
		}
		writeJSON(w, fc)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, persistence.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status != http.StatusNotFound {
		log.Printf("analytics: %s: %v", op, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status)})
}
