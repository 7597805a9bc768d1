package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"pet-adoption-catalog/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	level  string
	msg    string
	fields map[string]any
}

type captureSink struct {
	mu      sync.Mutex
	entries []entry
}

// captureLogger guarda las entradas con los campos de With ya mezclados.
type captureLogger struct {
	*captureSink
	base map[string]any
}

func newCaptureLogger() *captureLogger {
	return &captureLogger{captureSink: &captureSink{}}
}

func (c *captureLogger) add(level, msg string, fields map[string]any) {
	all := map[string]any{}
	for k, v := range c.base {
		all[k] = v
	}
	for k, v := range fields {
		all[k] = v
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry{level: level, msg: msg, fields: all})
}

func (c *captureLogger) With(f map[string]any) logger.Logger {
	base := map[string]any{}
	for k, v := range c.base {
		base[k] = v
	}
	for k, v := range f {
		base[k] = v
	}
	return &captureLogger{captureSink: c.captureSink, base: base}
}

func (c *captureLogger) Debug(msg string, f map[string]any) { c.add("debug", msg, f) }
func (c *captureLogger) Info(msg string, f map[string]any)  { c.add("info", msg, f) }
func (c *captureLogger) Warn(msg string, f map[string]any)  { c.add("warn", msg, f) }
func (c *captureLogger) Error(msg string, f map[string]any) { c.add("error", msg, f) }

func TestRecover_LogsAndReturns500(t *testing.T) {
	log := newCaptureLogger()
	h := chimw.RequestID(Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pets", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, log.entries, 1)
	assert.Equal(t, "error", log.entries[0].level)
	assert.Equal(t, "boom", log.entries[0].fields["panic"])
	assert.NotEmpty(t, log.entries[0].fields["request_id"])
}

func TestAccessLog_LevelByStatus(t *testing.T) {
	log := newCaptureLogger()
	h := AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Len(t, log.entries, 2)
	assert.Equal(t, "debug", log.entries[0].level)
	assert.Equal(t, http.StatusOK, log.entries[0].fields["status"])
	assert.Equal(t, "warn", log.entries[1].level)
	assert.Equal(t, http.StatusNotFound, log.entries[1].fields["status"])
}

func TestAccessLog_PutsRequestLoggerInContext(t *testing.T) {
	log := newCaptureLogger()
	h := chimw.RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside handler", nil)
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodDelete, "/api/pets/1", nil)
	req.Header.Set(chimw.RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, log.entries, 2)
	assert.Equal(t, "inside handler", log.entries[0].msg)
	assert.Equal(t, "req-42", log.entries[0].fields["request_id"])
	assert.Equal(t, "req-42", log.entries[1].fields["request_id"])
	assert.Equal(t, http.StatusNoContent, log.entries[1].fields["status"])
}
