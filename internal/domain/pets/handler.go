package pets

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-adoption-catalog/internal/domain/mood"
	"pet-adoption-catalog/internal/domain/references"
	"pet-adoption-catalog/internal/platform/logger"
	"pet-adoption-catalog/internal/platform/richtext"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))

		// Antes que /{petID} para que "filter" no se tome como id.
		pr.Get("/filter", filterPetsHandler(svc))

		pr.Get("/{petID}", getPetHandler(svc))
		pr.Put("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
		pr.Patch("/{petID}/adopt", adoptPetHandler(svc))
	})
}

// RegisterAdminRoutes: utilidades de operación, sólo fuera de producción.
func RegisterAdminRoutes(r chi.Router, svc *Service) {
	r.Post("/admin/pets/unadopt-all", unadoptAllHandler(svc))
}

// refField acepta "species": "<id>" o "species": {"id": "...", "name": "..."}.
type refField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (f *refField) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		f.ID = id
		return nil
	}

	type plain refField
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return errors.New("reference must be an id or an object with id/name")
	}
	*f = refField(p)
	return nil
}

func (f *refField) input() references.RefInput {
	return references.RefInput{ID: f.ID, Name: f.Name}
}

type createPetRequest struct {
	Name        string    `json:"name"`
	Species     *refField `json:"species"`
	Personality *refField `json:"personality"`
	Age         *float64  `json:"age"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
}

// updatePetRequest: nil = no tocar. mood y created_at se ignoran si vienen.
type updatePetRequest struct {
	Name        *string   `json:"name"`
	Species     *refField `json:"species"`
	Personality *refField `json:"personality"`
	Age         *float64  `json:"age"`
	Description *string   `json:"description"`
	Image       *string   `json:"image"`
	Adopted     *bool     `json:"adopted"`
}

type petResponse struct {
	ID              string                       `json:"id"`
	Name            string                       `json:"name"`
	Species         references.ReferenceResponse `json:"species"`
	Personality     references.ReferenceResponse `json:"personality"`
	Age             float64                      `json:"age"`
	Description     string                       `json:"description"`
	DescriptionHTML string                       `json:"description_html"`
	Image           string                       `json:"image,omitempty"`
	Mood            mood.Mood                    `json:"mood"`
	Adopted         bool                         `json:"adopted"`
	AdoptionDate    *time.Time                   `json:"adoption_date,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// createPetHandler godoc
// @Summary Crear mascota
// @Description Requiere name, species, personality y age. species/personality aceptan un id o un objeto {id,name}. La mascota nueva siempre está Happy.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "Datos de la mascota"
// @Success 201 {object} petResponse
// @Failure 400 {string} string "invalid json / invalid input"
// @Failure 413 {string} string "payload too large"
// @Failure 500 {string} string "internal error"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDecodeError(w, err)
			return
		}

		in := CreateInput{
			Name:        req.Name,
			Age:         req.Age,
			Description: req.Description,
			Image:       req.Image,
		}
		if req.Species != nil {
			in.Species = req.Species.input()
		}
		if req.Personality != nil {
			in.Personality = req.Personality.input()
		}

		v, err := svc.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(v))
	}
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Mood calculado en el momento de la lectura. Todos los filtros son opcionales.
// @Tags pets
// @Produce json
// @Param mood query string false "Happy | Excited | Sad (case-insensitive)"
// @Param adopted query bool false "Filtrar por adopción"
// @Param species query string false "ID de species"
// @Param personality query string false "ID de personality"
// @Param q query string false "Texto contenido en el nombre"
// @Param sort query string false "newest | oldest | name-asc | name-desc | adopted-first | unadopted-first | species-asc | personality-asc"
// @Success 200 {array} petResponse
// @Failure 400 {string} string "filtros inválidos"
// @Failure 500 {string} string "internal error"
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := parseListOptions(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.List(r.Context(), opts)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponses(items))
	}
}

// filterPetsHandler godoc
// @Summary Filtrar mascotas por mood
// @Tags pets
// @Produce json
// @Param mood query string true "Happy | Excited | Sad (case-insensitive)"
// @Success 200 {array} petResponse
// @Failure 400 {string} string "mood required / unknown mood"
// @Failure 500 {string} string "internal error"
// @Router /pets/filter [get]
func filterPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		label := strings.TrimSpace(r.URL.Query().Get("mood"))
		if label == "" {
			http.Error(w, "mood required", http.StatusBadRequest)
			return
		}

		items, err := svc.FilterByMood(r.Context(), label)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponses(items))
	}
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota (uuid)"
// @Success 200 {object} petResponse
// @Failure 400 {string} string "invalid pet id"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, ok := petIDParam(w, r)
		if !ok {
			return
		}

		v, err := svc.GetByID(r.Context(), petID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(v))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description Reemplaza los campos enviados. "image": null la limpia. adopted=true fija adoption_date, adopted=false la limpia. mood y created_at se ignoran.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota (uuid)"
// @Param payload body updatePetRequest true "Campos a actualizar"
// @Success 200 {object} petResponse
// @Failure 400 {string} string "invalid pet id / invalid json / invalid input"
// @Failure 404 {string} string "pet not found"
// @Failure 413 {string} string "payload too large"
// @Failure 500 {string} string "internal error"
// @Router /pets/{petID} [put]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, ok := petIDParam(w, r)
		if !ok {
			return
		}

		// Decodificar primero a map para detectar "image": null (limpiar).
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeDecodeError(w, err)
			return
		}

		var req updatePetRequest
		{
			b, _ := json.Marshal(raw)
			if err := json.Unmarshal(b, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}
		if v, exists := raw["image"]; exists && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			empty := ""
			req.Image = &empty
		}

		in := UpdateInput{
			Name:        req.Name,
			Age:         req.Age,
			Description: req.Description,
			Image:       req.Image,
			Adopted:     req.Adopted,
		}
		if req.Species != nil {
			ref := req.Species.input()
			in.Species = &ref
		}
		if req.Personality != nil {
			ref := req.Personality.input()
			in.Personality = &ref
		}

		v, err := svc.Update(r.Context(), petID, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(v))
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota (uuid)"
// @Success 200 {object} messageResponse
// @Failure 400 {string} string "invalid pet id"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, ok := petIDParam(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), petID); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Pet deleted successfully"})
	}
}

// adoptPetHandler godoc
// @Summary Adoptar mascota
// @Description Marca adopted=true y fija adoption_date=now. Re-adoptar refresca la fecha.
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota (uuid)"
// @Success 200 {object} petResponse
// @Failure 400 {string} string "invalid pet id"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/adopt [patch]
func adoptPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, ok := petIDParam(w, r)
		if !ok {
			return
		}

		v, err := svc.Adopt(r.Context(), petID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(v))
	}
}

// unadoptAllHandler godoc
// @Summary Des-adoptar todas las mascotas (admin, no-prod)
// @Tags admin
// @Produce json
// @Success 200 {array} petResponse
// @Failure 500 {string} string "internal error"
// @Router /admin/pets/unadopt-all [post]
func unadoptAllHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.UnadoptAll(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponses(items))
	}
}

func parseListOptions(r *http.Request) (ListOptions, error) {
	q := r.URL.Query()
	var opts ListOptions

	if v := strings.TrimSpace(q.Get("mood")); v != "" {
		m, err := mood.Parse(v)
		if err != nil {
			return ListOptions{}, errors.New("unknown mood: " + v)
		}
		opts.Mood = m
	}
	if v := strings.TrimSpace(q.Get("adopted")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return ListOptions{}, errors.New("adopted must be true or false")
		}
		opts.Adopted = &b
	}
	opts.SpeciesID = strings.TrimSpace(q.Get("species"))
	opts.PersonalityID = strings.TrimSpace(q.Get("personality"))
	opts.Query = strings.TrimSpace(q.Get("q"))

	if v := strings.TrimSpace(q.Get("sort")); v != "" {
		opts.Sort = SortOption(strings.ToLower(v))
		if !opts.Sort.Valid() {
			return ListOptions{}, errors.New("unknown sort: " + v)
		}
	}
	return opts, nil
}

func petIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	petID := chi.URLParam(r, "petID")
	if _, err := uuid.Parse(petID); err != nil {
		http.Error(w, "invalid pet id", http.StatusBadRequest)
		return "", false
	}
	return petID, true
}

func toPetResponse(v View) petResponse {
	// Si el markdown falla se devuelve vacío; description sigue disponible.
	descHTML, _ := richtext.Render(v.Pet.Description)

	return petResponse{
		ID:              v.Pet.ID,
		Name:            v.Pet.Name,
		Species:         references.ToResponse(v.Species),
		Personality:     references.ToResponse(v.Personality),
		Age:             v.Pet.Age,
		Description:     v.Pet.Description,
		DescriptionHTML: descHTML,
		Image:           v.Pet.Image,
		Mood:            v.Mood,
		Adopted:         v.Pet.Adopted,
		AdoptionDate:    v.Pet.AdoptionDate,
		CreatedAt:       v.Pet.CreatedAt,
		UpdatedAt:       v.Pet.UpdatedAt,
	}
}

func toPetResponses(items []View) []petResponse {
	out := make([]petResponse, 0, len(items))
	for _, v := range items {
		out = append(out, toPetResponse(v))
	}
	return out
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

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
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
