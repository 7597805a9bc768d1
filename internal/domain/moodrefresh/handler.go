package moodrefresh

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// RegisterAdminRoutes expone el trigger manual; sólo fuera de producción.
func RegisterAdminRoutes(r chi.Router, s *Scheduler) {
	r.Post("/admin/moods/refresh", triggerHandler(s))
	r.Get("/admin/moods/scheduler", statusHandler(s))
}

type statusResponse struct {
	State   State      `json:"state"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// triggerHandler godoc
// @Summary Refrescar moods ahora (admin, no-prod)
// @Description Corre sincrónicamente la misma pasada que el disparo diario. Sólo escribe mascotas cuyo mood cambió.
// @Tags admin
// @Produce json
// @Success 200 {object} Result
// @Failure 500 {string} string "refresh failed"
// @Router /admin/moods/refresh [post]
func triggerHandler(s *Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.TriggerManualUpdate(r.Context())
		if err != nil {
			http.Error(w, "refresh failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// statusHandler godoc
// @Summary Estado del scheduler de moods (admin, no-prod)
// @Tags admin
// @Produce json
// @Success 200 {object} statusResponse
// @Router /admin/moods/scheduler [get]
func statusHandler(s *Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{State: s.State()}
		if next := s.Next(); !next.IsZero() {
			resp.NextRun = &next
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
