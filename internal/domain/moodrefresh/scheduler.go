// Package moodrefresh mantiene al día el mood persistido de las mascotas:
// un disparo diario a hora fija más un trigger manual.
package moodrefresh

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"pet-adoption-catalog/internal/domain/events"
	"pet-adoption-catalog/internal/domain/mood"
	"pet-adoption-catalog/internal/domain/pets"
	"pet-adoption-catalog/internal/platform/logger"
	"pet-adoption-catalog/internal/platform/metrics"

	"github.com/robfig/cron/v3"
)

var ErrInvalidRunAt = errors.New("run_at must be HH:MM")

type State string

const (
	StateStopped   State = "stopped"
	StateScheduled State = "scheduled"
)

const (
	triggerCron   = "cron"
	triggerManual = "manual"
)

// Store es el subconjunto de pets.Repository que usa el refresco.
type Store interface {
	ListAll(ctx context.Context) ([]pets.Pet, error)
	UpdateMood(ctx context.Context, id string, m mood.Mood) error
}

type Activity interface {
	Record(ctx context.Context, petID string, typ events.EventType, src events.Source, title, notes string)
}

// Result resume una pasada.
type Result struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Scheduler no es global: lo crea y lo dueña el composition root.
type Scheduler struct {
	store    Store
	policy   mood.Policy
	activity Activity
	metrics  *metrics.Metrics
	log      logger.Logger
	now      func() time.Time

	hour, minute int
	loc          *time.Location

	schedule cron.Schedule
	cron     *cron.Cron

	mu      sync.Mutex
	state   State
	entryID cron.EntryID

	// una pasada a la vez (cron y manual no se pisan)
	runMu sync.Mutex
}

type Option func(*Scheduler) error

// WithRunAt fija la hora diaria ("HH:MM", 24h).
func WithRunAt(hhmm string) Option {
	return func(s *Scheduler) error {
		h, m, err := ParseRunAt(hhmm)
		if err != nil {
			return err
		}
		s.hour, s.minute = h, m
		return nil
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) error {
		if loc != nil {
			s.loc = loc
		}
		return nil
	}
}

func WithPolicy(p mood.Policy) Option {
	return func(s *Scheduler) error {
		s.policy = p
		return nil
	}
}

func WithActivity(a Activity) Option {
	return func(s *Scheduler) error {
		s.activity = a
		return nil
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) error {
		s.metrics = m
		return nil
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) error {
		if l != nil {
			s.log = l
		}
		return nil
	}
}

// WithClock sólo afecta la derivación del mood; el disparo usa el reloj de cron.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

func New(store Store, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		store:  store,
		policy: mood.DefaultPolicy,
		log:    logger.Nop(),
		now:    time.Now,
		loc:    time.UTC,
		state:  StateStopped,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	sched, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", s.minute, s.hour))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRunAt, err)
	}
	s.schedule = sched

	cl := cronLogger{log: s.log}
	s.cron = cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)
	return s, nil
}

// ParseRunAt valida "HH:MM".
func ParseRunAt(hhmm string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(hhmm), ":")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidRunAt
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, ErrInvalidRunAt
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidRunAt
	}
	return hour, minute, nil
}

// Start registra la entrada diaria. Llamarlo con el scheduler ya
// programado no registra una segunda entrada.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateScheduled {
		return
	}

	// cron corriendo antes de agregar: así Entry.Next queda calculado al volver
	s.cron.Start()
	s.entryID = s.cron.Schedule(s.schedule, cron.FuncJob(func() {
		_, _ = s.run(context.Background(), triggerCron)
	}))
	s.state = StateScheduled

	s.log.Info("mood refresh scheduled", map[string]any{
		"next_run": s.cron.Entry(s.entryID).Next.Format(time.RFC3339),
	})
}

// Stop quita la entrada y detiene cron. Una pasada en curso termina igual.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return
	}
	s.cron.Remove(s.entryID)
	s.cron.Stop()
	s.entryID = 0
	s.state = StateStopped

	s.log.Info("mood refresh stopped", nil)
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Next devuelve el disparo pendiente (zero si está detenido).
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateScheduled {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// NextRun calcula el primer disparo estrictamente posterior a now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	return s.schedule.Next(now.In(s.loc))
}

// TriggerManualUpdate corre la misma pasada que cron, sincrónicamente.
func (s *Scheduler) TriggerManualUpdate(ctx context.Context) (Result, error) {
	return s.run(ctx, triggerManual)
}

// run recalcula el mood de cada mascota y escribe sólo las que cambiaron.
// Un error por mascota se cuenta y se sigue; un error de listado corta la pasada.
func (s *Scheduler) run(ctx context.Context, trigger string) (Result, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	log := s.log.With(map[string]any{"trigger": trigger})
	started := time.Now()
	var res Result

	items, err := s.store.ListAll(ctx)
	if err != nil {
		log.Error("mood refresh: list pets failed", map[string]any{"error": err.Error()})
		s.metrics.ObserveRefresh(trigger, false, time.Since(started), 0, 0)
		return res, fmt.Errorf("list pets: %w", err)
	}

	now := s.now()
	for _, p := range items {
		res.Scanned++

		next := s.policy.Derive(p.CreatedAt, p.Adopted, now)
		if next == p.Mood {
			continue
		}

		if err := s.store.UpdateMood(ctx, p.ID, next); err != nil {
			if errors.Is(err, pets.ErrNotFound) {
				// borrada durante la pasada
				continue
			}
			res.Failed++
			log.Warn("mood refresh: update failed", map[string]any{
				"pet_id": p.ID,
				"error":  err.Error(),
			})
			continue
		}
		res.Updated++

		if s.activity != nil {
			s.activity.Record(ctx, p.ID, events.EventTypeMoodChanged, events.SourceScheduler,
				"Mood changed to "+string(next), fmt.Sprintf("%s -> %s", moodLabel(p.Mood), next))
		}
	}

	s.metrics.ObserveRefresh(trigger, true, time.Since(started), res.Updated, res.Failed)
	log.Info("mood refresh done", map[string]any{
		"scanned": res.Scanned,
		"updated": res.Updated,
		"failed":  res.Failed,
	})
	return res, nil
}

func moodLabel(m mood.Mood) string {
	if m == "" {
		return "none"
	}
	return string(m)
}

// cronLogger adapta logger.Logger a cron.Logger. Los Info de cron
// (wake/run/schedule) van a Debug.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	f := kvFields(keysAndValues)
	f["error"] = fmt.Sprint(err)
	l.log.Error("cron: "+msg, f)
}

func kvFields(kv []interface{}) map[string]any {
	f := make(map[string]any, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
