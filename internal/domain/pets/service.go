package pets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"pet-adoption-catalog/internal/domain/events"
	"pet-adoption-catalog/internal/domain/mood"
	"pet-adoption-catalog/internal/domain/references"
	"pet-adoption-catalog/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Activity es lo que la fachada necesita del historial de eventos.
type Activity interface {
	Record(ctx context.Context, petID string, typ events.EventType, src events.Source, title, notes string)
}

// Service es la fachada sobre el store de mascotas: resuelve referencias
// y calcula el mood en cada lectura.
type Service struct {
	repo     Repository
	refs     *references.Service
	policy   mood.Policy
	activity Activity
	log      logger.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithMoodPolicy(p mood.Policy) Option {
	return func(s *Service) { s.policy = p }
}

func WithActivity(a Activity) Option {
	return func(s *Service) { s.activity = a }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(repo Repository, refs *references.Service, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		refs:   refs,
		policy: mood.DefaultPolicy,
		log:    logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateInput struct {
	Name        string
	Species     references.RefInput
	Personality references.RefInput
	Age         *float64
	Description string
	Image       string
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	Name        *string
	Species     *references.RefInput
	Personality *references.RefInput
	Age         *float64
	Description *string
	Image       *string
	Adopted     *bool
}

func (s *Service) Create(ctx context.Context, in CreateInput) (View, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return View{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if in.Age == nil {
		return View{}, fmt.Errorf("%w: age required", ErrInvalidInput)
	}
	if err := validateAge(*in.Age); err != nil {
		return View{}, err
	}

	species, err := s.resolveInput(ctx, references.KindSpecies, in.Species)
	if err != nil {
		return View{}, err
	}
	personality, err := s.resolveInput(ctx, references.KindPersonality, in.Personality)
	if err != nil {
		return View{}, err
	}

	now := s.now()
	p := Pet{
		ID:            uuid.NewString(),
		Name:          name,
		SpeciesID:     species.ID,
		PersonalityID: personality.ID,
		Age:           *in.Age,
		Description:   strings.TrimSpace(in.Description),
		Image:         strings.TrimSpace(in.Image),
		Mood:          s.policy.Derive(now, false, now),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrInvalidReference) {
			return View{}, fmt.Errorf("%w: referenced species or personality no longer exists", ErrInvalidInput)
		}
		return View{}, err
	}

	s.record(ctx, p.ID, events.EventTypePetCreated, "Pet created", fmt.Sprintf("%s the %s", p.Name, species.Name))

	return View{
		Pet:         p,
		Species:     species,
		Personality: personality,
		Mood:        s.policy.Derive(p.CreatedAt, p.Adopted, now),
	}, nil
}

// List devuelve las mascotas con referencias resueltas y mood en vivo.
// Con opciones vacías equivale a "getAll".
func (s *Service) List(ctx context.Context, opts ListOptions) ([]View, error) {
	if opts.Mood != "" && !opts.Mood.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, mood.ErrUnknownMood)
	}
	if !opts.Sort.Valid() {
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidInput, opts.Sort)
	}

	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	idx, err := s.loadRefs(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	query := strings.ToLower(strings.TrimSpace(opts.Query))

	out := make([]View, 0, len(items))
	for _, p := range items {
		if opts.Adopted != nil && p.Adopted != *opts.Adopted {
			continue
		}
		if opts.SpeciesID != "" && p.SpeciesID != opts.SpeciesID {
			continue
		}
		if opts.PersonalityID != "" && p.PersonalityID != opts.PersonalityID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}

		v, err := s.view(ctx, p, now, idx)
		if err != nil {
			return nil, err
		}
		if opts.Mood != "" && v.Mood != opts.Mood {
			continue
		}
		out = append(out, v)
	}

	sortViews(out, opts.Sort)
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (View, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, p, s.now(), nil)
}

// Exists cumple events.PetLookup.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// updateAttempts: un reintento alcanza para absorber un ReassignAndDelete
// que corrió entre la lectura y la escritura.
const updateAttempts = 2

// Update mergea los campos presentes. adoption_date sigue a adopted:
// false -> true la fija a now, true -> false la limpia.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (View, error) {
	var err error
	for attempt := 0; attempt < updateAttempts; attempt++ {
		var v View
		v, err = s.updateOnce(ctx, id, in)
		if !errors.Is(err, ErrInvalidReference) {
			return v, err
		}
		s.log.Warn("pet update hit a removed reference, retrying", map[string]any{"pet_id": id, "attempt": attempt + 1})
	}
	return View{}, fmt.Errorf("%w: referenced species or personality no longer exists", ErrInvalidInput)
}

func (s *Service) updateOnce(ctx context.Context, id string, in UpdateInput) (View, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}

	var (
		species     references.Reference
		personality references.Reference
		changed     []string
	)

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return View{}, fmt.Errorf("%w: name required", ErrInvalidInput)
		}
		p.Name = name
		changed = append(changed, "name")
	}
	if in.Age != nil {
		if err := validateAge(*in.Age); err != nil {
			return View{}, err
		}
		p.Age = *in.Age
		changed = append(changed, "age")
	}
	if in.Species != nil {
		species, err = s.resolveInput(ctx, references.KindSpecies, *in.Species)
		if err != nil {
			return View{}, err
		}
		p.SpeciesID = species.ID
		changed = append(changed, "species")
	}
	if in.Personality != nil {
		personality, err = s.resolveInput(ctx, references.KindPersonality, *in.Personality)
		if err != nil {
			return View{}, err
		}
		p.PersonalityID = personality.ID
		changed = append(changed, "personality")
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
		changed = append(changed, "description")
	}
	if in.Image != nil {
		p.Image = strings.TrimSpace(*in.Image)
		changed = append(changed, "image")
	}

	now := s.now()
	adoptionEvent := events.EventType("")
	if in.Adopted != nil && *in.Adopted != p.Adopted {
		p.Adopted = *in.Adopted
		if p.Adopted {
			at := now
			p.AdoptionDate = &at
			adoptionEvent = events.EventTypePetAdopted
		} else {
			p.AdoptionDate = nil
			adoptionEvent = events.EventTypePetUnadopted
		}
	}

	p.UpdatedAt = now
	if err := s.repo.Update(ctx, p); err != nil {
		return View{}, err
	}

	if len(changed) > 0 {
		s.record(ctx, p.ID, events.EventTypePetUpdated, "Pet updated", strings.Join(changed, ", "))
	}
	if adoptionEvent != "" {
		s.record(ctx, p.ID, adoptionEvent, adoptionTitle(p.Adopted), "")
	}

	return s.view(ctx, p, now, nil)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("pet deleted", map[string]any{"pet_id": id})
	return nil
}

// Adopt marca la mascota como adoptada. Re-adoptar no es error:
// refresca adoption_date.
func (s *Service) Adopt(ctx context.Context, id string) (View, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}

	now := s.now()
	if err := s.repo.SetAdoption(ctx, id, true, &now); err != nil {
		return View{}, err
	}

	notes := ""
	if p.Adopted {
		notes = "adoption date refreshed"
	}
	s.record(ctx, id, events.EventTypePetAdopted, adoptionTitle(true), notes)

	// Releer: el scheduler puede haber escrito mood entre medio.
	p, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, p, now, nil)
}

// FilterByMood compara el mood en vivo contra label (case-insensitive).
func (s *Service) FilterByMood(ctx context.Context, label string) ([]View, error) {
	m, err := mood.Parse(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.List(ctx, ListOptions{Mood: m})
}

// UnadoptAll limpia la adopción de todas las mascotas (utilidad de admin).
func (s *Service) UnadoptAll(ctx context.Context) ([]View, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	n := 0
	for _, p := range items {
		if !p.Adopted {
			continue
		}
		if err := s.repo.SetAdoption(ctx, p.ID, false, nil); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		n++
		s.record(ctx, p.ID, events.EventTypePetUnadopted, adoptionTitle(false), "bulk reset")
	}
	s.log.Info("pets unadopted", map[string]any{"count": n})

	return s.List(ctx, ListOptions{})
}

type refIndex map[references.Kind]map[string]references.Reference

func (s *Service) loadRefs(ctx context.Context) (refIndex, error) {
	idx := refIndex{}
	for _, kind := range references.Kinds() {
		items, err := s.refs.List(ctx, kind)
		if err != nil {
			return nil, err
		}
		m := make(map[string]references.Reference, len(items))
		for _, ref := range items {
			m[ref.ID] = ref
		}
		idx[kind] = m
	}
	return idx, nil
}

func (s *Service) view(ctx context.Context, p Pet, now time.Time, idx refIndex) (View, error) {
	species, err := s.lookupRef(ctx, references.KindSpecies, p.SpeciesID, p.ID, idx)
	if err != nil {
		return View{}, err
	}
	personality, err := s.lookupRef(ctx, references.KindPersonality, p.PersonalityID, p.ID, idx)
	if err != nil {
		return View{}, err
	}
	return View{
		Pet:         p,
		Species:     species,
		Personality: personality,
		Mood:        s.policy.Derive(p.CreatedAt, p.Adopted, now),
	}, nil
}

// lookupRef resuelve una FK. Una FK colgada no debería existir (el borrado
// reasigna); si aparece se muestra el centinela y se loguea.
func (s *Service) lookupRef(ctx context.Context, kind references.Kind, id, petID string, idx refIndex) (references.Reference, error) {
	if idx != nil {
		if ref, ok := idx[kind][id]; ok {
			return ref, nil
		}
	} else {
		ref, err := s.refs.GetByID(ctx, kind, id)
		if err == nil {
			return ref, nil
		}
		if !errors.Is(err, references.ErrNotFound) && !errors.Is(err, references.ErrInvalidInput) {
			return references.Reference{}, err
		}
	}

	s.log.Warn("dangling reference, showing Unknown", map[string]any{
		"pet_id": petID,
		"kind":   kind.String(),
		"ref_id": id,
	})
	unknown, err := s.refs.GetOrCreateUnknown(ctx, kind)
	if err != nil {
		return references.Reference{}, err
	}
	if idx != nil {
		idx[kind][id] = unknown
	}
	return unknown, nil
}

func (s *Service) resolveInput(ctx context.Context, kind references.Kind, in references.RefInput) (references.Reference, error) {
	if in.Empty() {
		return references.Reference{}, fmt.Errorf("%w: %s required", ErrInvalidInput, kind)
	}
	ref, err := s.refs.Resolve(ctx, kind, in)
	switch {
	case err == nil:
		return ref, nil
	case errors.Is(err, references.ErrNotFound), errors.Is(err, references.ErrInvalidInput):
		return references.Reference{}, fmt.Errorf("%w: %s not found", ErrInvalidInput, kind)
	default:
		return references.Reference{}, err
	}
}

func (s *Service) record(ctx context.Context, petID string, typ events.EventType, title, notes string) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, petID, typ, events.SourceAPI, title, notes)
}

func validateAge(age float64) error {
	if math.IsNaN(age) || math.IsInf(age, 0) || age < 0 {
		return fmt.Errorf("%w: age must be a non-negative number", ErrInvalidInput)
	}
	return nil
}

func adoptionTitle(adopted bool) string {
	if adopted {
		return "Pet adopted"
	}
	return "Adoption cleared"
}

func sortViews(items []View, by SortOption) {
	name := func(v View) string { return strings.ToLower(v.Pet.Name) }
	older := func(i, j int) bool { return items[i].Pet.CreatedAt.Before(items[j].Pet.CreatedAt) }

	var less func(i, j int) bool
	switch by {
	case SortNewest:
		less = func(i, j int) bool { return items[i].Pet.CreatedAt.After(items[j].Pet.CreatedAt) }
	case SortNameAsc:
		less = func(i, j int) bool { return name(items[i]) < name(items[j]) }
	case SortNameDesc:
		less = func(i, j int) bool { return name(items[i]) > name(items[j]) }
	case SortAdoptedFirst:
		less = func(i, j int) bool {
			if items[i].Pet.Adopted != items[j].Pet.Adopted {
				return items[i].Pet.Adopted
			}
			return older(i, j)
		}
	case SortUnadoptedFirst:
		less = func(i, j int) bool {
			if items[i].Pet.Adopted != items[j].Pet.Adopted {
				return !items[i].Pet.Adopted
			}
			return older(i, j)
		}
	case SortSpeciesAsc:
		less = func(i, j int) bool {
			return strings.ToLower(items[i].Species.Name) < strings.ToLower(items[j].Species.Name)
		}
	case SortPersonalityAsc:
		less = func(i, j int) bool {
			return strings.ToLower(items[i].Personality.Name) < strings.ToLower(items[j].Personality.Name)
		}
	default:
		less = older
	}

	sort.SliceStable(items, less)
}
