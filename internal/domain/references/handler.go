package references

import (
	"encoding/json"
	"errors"
	"net/http"

	"pet-adoption-catalog/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /species y /personalities con el mismo set de handlers.
func RegisterRoutes(r chi.Router, svc *Service) {
	mount := func(path string, kind Kind) {
		r.Route(path, func(kr chi.Router) {
			kr.Get("/", listReferencesHandler(svc, kind))
			kr.Post("/", createReferenceHandler(svc, kind))
			kr.Get("/{id}", getReferenceHandler(svc, kind))
			kr.Put("/{id}", renameReferenceHandler(svc, kind))
			kr.Delete("/{id}", deleteReferenceHandler(svc, kind))
		})
	}

	mount("/species", KindSpecies)
	mount("/personalities", KindPersonality)
}

// ReferenceResponse es la forma JSON de Species / Personality.
type ReferenceResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type referenceRequest struct {
	Name string `json:"name"`
}

type deleteReferenceResponse struct {
	Message    string   `json:"message"`
	Reassigned []string `json:"reassigned_pet_ids"`
}

// listReferencesHandler godoc
// @Summary Listar species / personalities
// @Tags references
// @Produce json
// @Success 200 {array} ReferenceResponse
// @Failure 500 {string} string "internal error"
// @Router /species [get]
// @Router /personalities [get]
func listReferencesHandler(svc *Service, kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), kind)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]ReferenceResponse, 0, len(items))
		for _, ref := range items {
			out = append(out, ToResponse(ref))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getReferenceHandler godoc
// @Summary Obtener species / personality
// @Tags references
// @Produce json
// @Param id path string true "ID"
// @Success 200 {object} ReferenceResponse
// @Failure 404 {string} string "not found"
// @Router /species/{id} [get]
// @Router /personalities/{id} [get]
func getReferenceHandler(svc *Service, kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := svc.GetByID(r.Context(), kind, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, kind, err)
			return
		}
		writeJSON(w, http.StatusOK, ToResponse(ref))
	}
}

// createReferenceHandler godoc
// @Summary Crear species / personality
// @Description El nombre es único por kind.
// @Tags references
// @Accept json
// @Produce json
// @Param payload body referenceRequest true "Nombre"
// @Success 201 {object} ReferenceResponse
// @Failure 400 {string} string "invalid json / name required"
// @Failure 409 {string} string "name already exists"
// @Failure 413 {string} string "payload too large"
// @Router /species [post]
// @Router /personalities [post]
func createReferenceHandler(svc *Service, kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req referenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDecodeError(w, err)
			return
		}

		ref, err := svc.Create(r.Context(), kind, req.Name)
		if err != nil {
			writeError(w, r, kind, err)
			return
		}
		writeJSON(w, http.StatusCreated, ToResponse(ref))
	}
}

// renameReferenceHandler godoc
// @Summary Renombrar species / personality
// @Description El centinela "Unknown" no se puede renombrar.
// @Tags references
// @Accept json
// @Produce json
// @Param id path string true "ID"
// @Param payload body referenceRequest true "Nuevo nombre"
// @Success 200 {object} ReferenceResponse
// @Failure 400 {string} string "invalid json / name required"
// @Failure 403 {string} string "protected record"
// @Failure 404 {string} string "not found"
// @Failure 409 {string} string "name already exists"
// @Failure 413 {string} string "payload too large"
// @Router /species/{id} [put]
// @Router /personalities/{id} [put]
func renameReferenceHandler(svc *Service, kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req referenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDecodeError(w, err)
			return
		}

		ref, err := svc.Rename(r.Context(), kind, chi.URLParam(r, "id"), req.Name)
		if err != nil {
			writeError(w, r, kind, err)
			return
		}
		writeJSON(w, http.StatusOK, ToResponse(ref))
	}
}

// deleteReferenceHandler godoc
// @Summary Borrar species / personality
// @Description Reasigna al centinela "Unknown" todas las mascotas que la referencian y luego la borra. El centinela no se puede borrar.
// @Tags references
// @Produce json
// @Param id path string true "ID"
// @Success 200 {object} deleteReferenceResponse
// @Failure 403 {string} string "protected record"
// @Failure 404 {string} string "not found"
// @Failure 500 {string} string "internal error"
// @Router /species/{id} [delete]
// @Router /personalities/{id} [delete]
func deleteReferenceHandler(svc *Service, kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petIDs, err := svc.Delete(r.Context(), kind, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, kind, err)
			return
		}
		if petIDs == nil {
			petIDs = []string{}
		}
		writeJSON(w, http.StatusOK, deleteReferenceResponse{
			Message:    kind.String() + " deleted successfully",
			Reassigned: petIDs,
		})
	}
}

func ToResponse(ref Reference) ReferenceResponse {
	return ReferenceResponse{ID: ref.ID, Name: ref.Name}
}

// writeDecodeError distingue un body cortado por RequestSize (413) de un JSON inválido (400).
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, "invalid json", http.StatusBadRequest)
}

func writeError(w http.ResponseWriter, r *http.Request, kind Kind, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, "invalid input: name required", http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, kind.String()+" not found", http.StatusNotFound)
	case errors.Is(err, ErrProtected):
		http.Error(w, "cannot modify default '"+UnknownName+"' "+kind.String(), http.StatusForbidden)
	case errors.Is(err, ErrDuplicateName):
		http.Error(w, "name already exists", http.StatusConflict)
	default:
		logger.FromContext(r.Context()).Error("request failed", map[string]any{"error": err})
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
