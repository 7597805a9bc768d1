package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	m.ObserveRefresh("cron", true, time.Second, 1, 0)
	m.ReferenceDeleted("species", 3)
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestObserveRefresh(t *testing.T) {
	m := New()

	m.ObserveRefresh("cron", true, 20*time.Millisecond, 3, 1)
	m.ObserveRefresh("manual", false, time.Millisecond, 0, 0)

	out := scrape(t, m)
	assert.Contains(t, out, `petcatalog_mood_refresh_runs_total{result="ok",trigger="cron"} 1`)
	assert.Contains(t, out, `petcatalog_mood_refresh_runs_total{result="error",trigger="manual"} 1`)
	assert.Contains(t, out, "petcatalog_mood_refresh_pets_updated_total 3")
	assert.Contains(t, out, "petcatalog_mood_refresh_pet_failures_total 1")
	assert.Contains(t, out, "petcatalog_mood_refresh_duration_seconds_count 2")
}

func TestReferenceDeleted(t *testing.T) {
	m := New()

	m.ReferenceDeleted("species", 2)
	m.ReferenceDeleted("species", 0)

	out := scrape(t, m)
	assert.Contains(t, out, `petcatalog_references_deleted_total{kind="species"} 2`)
	assert.Contains(t, out, `petcatalog_references_pets_reassigned_total{kind="species"} 2`)
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/pets/{petID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pets/"+id, nil))
	}

	out := scrape(t, m)
	assert.Contains(t, out, `petcatalog_http_requests_total{method="GET",route="/pets/{petID}",status="204"} 2`)
	assert.NotContains(t, out, `route="/pets/a"`)
}
