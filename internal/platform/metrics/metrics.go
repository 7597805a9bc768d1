package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "petcatalog"

// Metrics agrupa los collectors del servicio sobre un registry propio
// (no el global) para poder instanciarlo varias veces en tests.
// Todos los métodos aceptan receiver nil (no-op).
type Metrics struct {
	registry *prometheus.Registry

	refreshRuns        *prometheus.CounterVec
	refreshUpdates     prometheus.Counter
	refreshFailures    prometheus.Counter
	refreshDuration    prometheus.Histogram
	refreshLastSuccess prometheus.Gauge

	referenceDeletes *prometheus.CounterVec
	petsReassigned   *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		refreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mood_refresh",
			Name:      "runs_total",
			Help:      "Ejecuciones del refresco de moods por resultado y disparador.",
		}, []string{"trigger", "result"}),
		refreshUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mood_refresh",
			Name:      "pets_updated_total",
			Help:      "Mascotas cuyo mood persistido cambió.",
		}),
		refreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mood_refresh",
			Name:      "pet_failures_total",
			Help:      "Escrituras de mood fallidas durante un refresco.",
		}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mood_refresh",
			Name:      "duration_seconds",
			Help:      "Duración de cada refresco completo.",
			Buckets:   prometheus.DefBuckets,
		}),
		refreshLastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mood_refresh",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time del último refresco sin error de listado.",
		}),
		referenceDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "references",
			Name:      "deleted_total",
			Help:      "Referencias borradas por kind.",
		}, []string{"kind"}),
		petsReassigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "references",
			Name:      "pets_reassigned_total",
			Help:      "Mascotas reasignadas al centinela Unknown por kind.",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests HTTP por método, ruta y status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latencia HTTP por método y ruta.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.refreshRuns,
		m.refreshUpdates,
		m.refreshFailures,
		m.refreshDuration,
		m.refreshLastSuccess,
		m.referenceDeletes,
		m.petsReassigned,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

// Registry expone el registry (tests / collectors extra).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler sirve /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRefresh registra una ejecución del scheduler.
// trigger: "cron" | "manual". ok=false cuando falló el listado completo.
func (m *Metrics) ObserveRefresh(trigger string, ok bool, d time.Duration, updated, failed int) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.refreshRuns.WithLabelValues(trigger, result).Inc()
	m.refreshDuration.Observe(d.Seconds())
	m.refreshUpdates.Add(float64(updated))
	m.refreshFailures.Add(float64(failed))
	if ok {
		m.refreshLastSuccess.SetToCurrentTime()
	}
}

func (m *Metrics) ReferenceDeleted(kind string, reassigned int) {
	if m == nil {
		return
	}
	m.referenceDeletes.WithLabelValues(kind).Inc()
	m.petsReassigned.WithLabelValues(kind).Add(float64(reassigned))
}

// Middleware instrumenta requests usando el route pattern de chi
// (evita cardinalidad por ids en el path).
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
