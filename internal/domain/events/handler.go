package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-adoption-catalog/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PetLookup evita importar el paquete pets (rompe ciclos).
type PetLookup interface {
	Exists(ctx context.Context, petID string) (bool, error)
}

func RegisterRoutes(r chi.Router, svc *Service, pets PetLookup) {
	r.Get("/pets/{petID}/events", listEventsHandler(svc, pets))
}

// eventResponse representa una entrada del historial de actividad.
type eventResponse struct {
	ID         string    `json:"id"`
	PetID      string    `json:"pet_id"`
	Type       EventType `json:"type"`
	Source     Source    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
	RecordedAt time.Time `json:"recorded_at"`
	Title      string    `json:"title"`
	Notes      string    `json:"notes"`
}

// listEventsHandler godoc
// @Summary Historial de actividad de una mascota
// @Description Lista los eventos (alta, adopción, cambios de mood, reasignaciones) de una mascota, más recientes primero. Permite filtrar por tipos, rango de fechas y texto.
// @Tags events
// @Produce json
// @Param petID path string true "ID de la mascota (uuid)"
// @Param limit query int false "Máximo de eventos a devolver (1-200). Por defecto 50"
// @Param types query string false "Lista CSV de tipos (ej: PET_ADOPTED,MOOD_CHANGED)"
// @Param from query string false "occurred_at mínimo (RFC3339)"
// @Param to query string false "occurred_at máximo (RFC3339)"
// @Param q query string false "Texto libre en título/notas"
// @Success 200 {array} eventResponse
// @Failure 400 {string} string "invalid pet id / filtros inválidos"
// @Failure 404 {string} string "pet not found"
// @Failure 500 {string} string "internal error"
// @Router /pets/{petID}/events [get]
func listEventsHandler(svc *Service, pets PetLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID := chi.URLParam(r, "petID")
		if _, err := uuid.Parse(petID); err != nil {
			http.Error(w, "invalid pet id", http.StatusBadRequest)
			return
		}

		ok, err := pets.Exists(r.Context(), petID)
		if err != nil {
			logger.FromContext(r.Context()).Error("pet lookup failed", map[string]any{"pet_id": petID, "error": err})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByPet(r.Context(), petID, filter)
		if err != nil {
			logger.FromContext(r.Context()).Error("list events failed", map[string]any{"pet_id": petID, "error": err})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]eventResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEventResponse(e))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= MaxLimit {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	// types=PET_ADOPTED,MOOD_CHANGED
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		parts := strings.Split(v, ",")
		out := make([]EventType, 0, len(parts))
		for _, p := range parts {
			t := EventType(strings.ToUpper(strings.TrimSpace(p)))
			if t == "" {
				continue
			}
			if !KnownType(t) {
				return ListFilter{}, errors.New("unknown event type: " + string(t))
			}
			out = append(out, t)
		}
		if len(out) > 0 {
			filter.Types = out
		}
	}

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	if v := strings.TrimSpace(r.URL.Query().Get("q")); v != "" {
		filter.Query = v
	}

	return filter, nil
}

func toEventResponse(e PetEvent) eventResponse {
	return eventResponse{
		ID:         e.ID,
		PetID:      e.PetID,
		Type:       e.Type,
		Source:     e.Source,
		OccurredAt: e.OccurredAt,
		RecordedAt: e.RecordedAt,
		Title:      e.Title,
		Notes:      e.Notes,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
