package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"pet-adoption-catalog/internal/app"
	"pet-adoption-catalog/internal/config"
	"pet-adoption-catalog/internal/platform/logger"
	"pet-adoption-catalog/internal/router"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type refJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type petJSON struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Species         refJSON    `json:"species"`
	Personality     refJSON    `json:"personality"`
	Age             float64    `json:"age"`
	DescriptionHTML string     `json:"description_html"`
	Mood            string     `json:"mood"`
	Adopted         bool       `json:"adopted"`
	AdoptionDate    *time.Time `json:"adoption_date"`
}

func newServer(t *testing.T, env string) (*httptest.Server, *testClock) {
	t.Helper()

	clock := &testClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	cfg := config.Default()
	cfg.Env = env

	a, err := app.New(context.Background(), cfg, app.WithLogger(logger.Nop()), app.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	ts := httptest.NewServer(router.NewRouter(a))
	t.Cleanup(func() {
		ts.Close()
		_ = a.Close()
	})
	return ts, clock
}

func TestHTTP_EndToEnd_MoodAdoptionAndReassignment(t *testing.T) {
	ts, clock := newServer(t, config.EnvTest)

	// 1) Referencias
	dogID := createRef(t, ts.URL, "/api/species", "Dog")
	friendlyID := createRef(t, ts.URL, "/api/personalities", "Friendly")

	// 2) Alta de Max: Happy recién creado
	var max petJSON
	{
		st, body := doReq(t, ts.URL, "POST", "/api/pets", map[string]any{
			"name":        "Max",
			"species":     dogID,
			"personality": map[string]any{"id": friendlyID},
			"age":         2,
			"description": "Loves **walks**",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
		}
		decode(t, body, &max)
		if max.Mood != "Happy" || max.Species.Name != "Dog" || max.Personality.Name != "Friendly" {
			t.Fatalf("unexpected created pet: %+v", max)
		}
		if !strings.Contains(max.DescriptionHTML, "<strong>walks</strong>") {
			t.Fatalf("expected rendered description, got %q", max.DescriptionHTML)
		}
	}

	// 3) Dos días después: Excited
	clock.Advance(48 * time.Hour)
	if got := getPet(t, ts.URL, max.ID); got.Mood != "Excited" {
		t.Fatalf("expected Excited after 2 days, got %s", got.Mood)
	}

	// 4) filter por mood (case-insensitive)
	{
		st, body := doReq(t, ts.URL, "GET", "/api/pets/filter?mood=excited", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 filter, got %d body=%s", st, string(body))
		}
		var items []petJSON
		decode(t, body, &items)
		if len(items) != 1 || items[0].ID != max.ID {
			t.Fatalf("expected Max in excited filter, got %+v", items)
		}
	}

	// 5) Adopción: Happy + adoption_date
	{
		st, body := doReq(t, ts.URL, "PATCH", "/api/pets/"+max.ID+"/adopt", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 adopt, got %d body=%s", st, string(body))
		}
		var adopted petJSON
		decode(t, body, &adopted)
		if !adopted.Adopted || adopted.AdoptionDate == nil || adopted.Mood != "Happy" {
			t.Fatalf("unexpected adopted pet: %+v", adopted)
		}
	}

	// 6) Borrar la species: la mascota queda en "Unknown"
	{
		st, body := doReq(t, ts.URL, "DELETE", "/api/species/"+dogID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete species, got %d body=%s", st, string(body))
		}
		var res struct {
			Reassigned []string `json:"reassigned_pet_ids"`
		}
		decode(t, body, &res)
		if len(res.Reassigned) != 1 || res.Reassigned[0] != max.ID {
			t.Fatalf("expected Max reassigned, got %v", res.Reassigned)
		}
	}
	got := getPet(t, ts.URL, max.ID)
	if got.Species.Name != "Unknown" {
		t.Fatalf("expected species Unknown, got %q", got.Species.Name)
	}
	if got.Personality.Name != "Friendly" {
		t.Fatalf("personality must be untouched, got %q", got.Personality.Name)
	}

	// 7) El centinela no se borra
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/api/species/"+got.Species.ID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 deleting Unknown, got %d", st)
		}
	}

	// 8) Historial
	{
		st, body := doReq(t, ts.URL, "GET", "/api/pets/"+max.ID+"/events", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 events, got %d body=%s", st, string(body))
		}
		var evs []struct {
			Type string `json:"type"`
		}
		decode(t, body, &evs)
		seen := map[string]bool{}
		for _, e := range evs {
			seen[e.Type] = true
		}
		for _, want := range []string{"PET_CREATED", "PET_ADOPTED", "REFERENCE_REASSIGNED"} {
			if !seen[want] {
				t.Fatalf("expected %s in history, got %v", want, evs)
			}
		}
	}
}

func TestHTTP_PetValidation(t *testing.T) {
	ts, _ := newServer(t, config.EnvTest)
	dogID := createRef(t, ts.URL, "/api/species", "Dog")
	shyID := createRef(t, ts.URL, "/api/personalities", "Shy")

	cases := []struct {
		name    string
		method  string
		path    string
		payload any
		want    int
	}{
		{"missing name", "POST", "/api/pets", map[string]any{"species": dogID, "personality": shyID, "age": 1}, http.StatusBadRequest},
		{"negative age", "POST", "/api/pets", map[string]any{"name": "Rex", "species": dogID, "personality": shyID, "age": -1}, http.StatusBadRequest},
		{"unknown species", "POST", "/api/pets", map[string]any{"name": "Rex", "species": "00000000-0000-0000-0000-000000000000", "personality": shyID, "age": 1}, http.StatusBadRequest},
		{"invalid id", "GET", "/api/pets/not-a-uuid", nil, http.StatusBadRequest},
		{"missing pet", "GET", "/api/pets/00000000-0000-0000-0000-000000000000", nil, http.StatusNotFound},
		{"filter without mood", "GET", "/api/pets/filter", nil, http.StatusBadRequest},
		{"filter with bad mood", "GET", "/api/pets/filter?mood=grumpy", nil, http.StatusBadRequest},
		{"duplicate species", "POST", "/api/species", map[string]any{"name": "Dog"}, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, tc.method, tc.path, tc.payload)
			if st != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, st, string(body))
			}
		})
	}
}

func TestHTTP_AdminRefresh(t *testing.T) {
	ts, clock := newServer(t, config.EnvDevelopment)
	dogID := createRef(t, ts.URL, "/api/species", "Dog")
	shyID := createRef(t, ts.URL, "/api/personalities", "Shy")

	st, body := doReq(t, ts.URL, "POST", "/api/pets", map[string]any{"name": "Rex", "species": dogID, "personality": shyID, "age": 4})
	if st != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", st, string(body))
	}

	clock.Advance(5 * 24 * time.Hour)

	st, body = doReq(t, ts.URL, "POST", "/api/admin/moods/refresh", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 refresh, got %d body=%s", st, string(body))
	}
	var res struct {
		Scanned int `json:"scanned"`
		Updated int `json:"updated"`
	}
	decode(t, body, &res)
	if res.Scanned != 1 || res.Updated != 1 {
		t.Fatalf("expected 1 scanned / 1 updated, got %+v", res)
	}
}

func TestHTTP_AdminRoutesHiddenInProduction(t *testing.T) {
	ts, _ := newServer(t, config.EnvProduction)

	for _, path := range []string{"/api/admin/moods/refresh", "/api/admin/pets/unadopt-all"} {
		st, _ := doReq(t, ts.URL, "POST", path, nil)
		if st != http.StatusNotFound {
			t.Fatalf("%s: expected 404 in production, got %d", path, st)
		}
	}
}

func TestHTTP_Platform(t *testing.T) {
	ts, _ := newServer(t, config.EnvTest)

	if st, body := doReq(t, ts.URL, "GET", "/health", nil); st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("health: %d %q", st, string(body))
	}
	if st, body := doReq(t, ts.URL, "GET", "/metrics", nil); st != http.StatusOK || !strings.Contains(string(body), "petcatalog_http_requests_total") {
		t.Fatalf("metrics: %d", st)
	}
	if st, body := doReq(t, ts.URL, "GET", "/swagger/doc.json", nil); st != http.StatusOK || !strings.Contains(string(body), "/pets/{petID}/adopt") {
		t.Fatalf("swagger doc: %d", st)
	}
}

func TestHTTP_CORSPreflight(t *testing.T) {
	ts, _ := newServer(t, config.EnvTest)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/pets", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	_ = res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("preflight: expected 200, got %d", res.StatusCode)
	}
	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("preflight allow-origin: %q", got)
	}
	if got := res.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPatch) {
		t.Fatalf("preflight allow-methods: %q", got)
	}
	if got := res.Header.Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("preflight max-age: %q", got)
	}

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/api/species", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusOK || res.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("simple request: %d allow-origin=%q", res.StatusCode, res.Header.Get("Access-Control-Allow-Origin"))
	}
}

func TestHTTP_BodyTooLarge(t *testing.T) {
	ts, _ := newServer(t, config.EnvTest)
	dogID := createRef(t, ts.URL, "/api/species", "Dog")
	shyID := createRef(t, ts.URL, "/api/personalities", "Shy")

	st, body := doReq(t, ts.URL, "POST", "/api/pets", map[string]any{"name": "Rex", "species": dogID, "personality": shyID, "age": 2})
	if st != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", st, string(body))
	}
	var rex petJSON
	decode(t, body, &rex)

	big := strings.Repeat("a", 11<<10)
	cases := []struct {
		name    string
		method  string
		path    string
		payload any
	}{
		{"create pet", "POST", "/api/pets", map[string]any{"name": "Max", "species": dogID, "personality": shyID, "age": 1, "description": big}},
		{"update pet", "PUT", "/api/pets/" + rex.ID, map[string]any{"description": big}},
		{"create species", "POST", "/api/species", map[string]any{"name": big}},
		{"rename species", "PUT", "/api/species/" + dogID, map[string]any{"name": big}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, tc.method, tc.path, tc.payload)
			if st != http.StatusRequestEntityTooLarge {
				t.Fatalf("expected 413, got %d body=%s", st, string(body))
			}
		})
	}
}

func createRef(t *testing.T, baseURL, path, name string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", path, map[string]any{"name": name})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create %s, got %d body=%s", path, st, string(body))
	}
	var out refJSON
	decode(t, body, &out)
	if out.ID == "" {
		t.Fatalf("expected id in response")
	}
	return out.ID
}

func getPet(t *testing.T, baseURL, id string) petJSON {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/api/pets/"+id, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get pet, got %d body=%s", st, string(body))
	}
	var out petJSON
	decode(t, body, &out)
	return out
}

func decode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode: %v body=%s", err, string(body))
	}
}

func doReq(t *testing.T, baseURL, method, path string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
