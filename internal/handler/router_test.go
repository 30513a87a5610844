package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxtrail/planner/internal/clock"
	"github.com/foxtrail/planner/internal/model"
	"github.com/foxtrail/planner/internal/optimizer"
	"github.com/foxtrail/planner/internal/service"
	"github.com/foxtrail/planner/internal/store"
	"github.com/foxtrail/planner/internal/synthesizer"
	"github.com/foxtrail/planner/pkg/logger"
)

const testSecret = "test-secret"

var baseTime = time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	store   *store.Store
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "itineraries.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	clk := clock.NewFake(baseTime)
	log := logger.NewNop()
	st := store.New(path, store.WithClock(clk), store.WithLogger(log))
	require.NoError(t, st.Init())

	svc := service.NewItineraryService(st, optimizer.Default(), synthesizer.New(clk, time.UTC), nil, clk, log)
	router := NewRouter(RouterConfig{
		Logger:             log,
		Itineraries:        NewItineraryHandler(svc, log),
		Health:             NewHealthHandler(func() (bool, string) { return st.Loaded(), "store not loaded" }),
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		JWTSecret:          secret,
		RateLimitRequests:  1000,
		RateLimitWindow:    time.Minute,
	})
	return &testServer{handler: router, store: st}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["message"]
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, "")

	rec := srv.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	rec = srv.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode[map[string]string](t, rec)["status"])
}

func TestReady_FailingCheck(t *testing.T) {
	h := NewHealthHandler(func() (bool, string) { return false, "NATS not connected" })
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "NATS not connected", decode[map[string]string](t, rec)["reason"])
}

func TestItineraryLifecycle(t *testing.T) {
	srv := newTestServer(t, "")

	rec := srv.do(t, http.MethodPost, "/api/itineraries", `{"title":"Kyoto","type":"trip","destination":"Kyoto, Japan"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Itinerary](t, rec)
	assert.Equal(t, "Kyoto", created.Title)
	assert.Equal(t, model.ItineraryTypeTrip, created.Type)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	rec = srv.do(t, http.MethodGet, "/api/itineraries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]model.Itinerary](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rec = srv.do(t, http.MethodPut, "/api/itineraries/"+created.ID, `{"destination":"Osaka"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.Itinerary](t, rec)
	assert.Equal(t, "Osaka", updated.Destination)
	assert.Equal(t, "Kyoto", updated.Title)

	rec = srv.do(t, http.MethodGet, "/api/itineraries/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Osaka", decode[model.Itinerary](t, rec).Destination)

	rec = srv.do(t, http.MethodDelete, "/api/itineraries/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/itineraries/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "itinerary not found", errorMessage(t, rec))

	rec = srv.do(t, http.MethodDelete, "/api/itineraries/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreate_EmptyBodyUsesDefaults(t *testing.T) {
	srv := newTestServer(t, "")

	rec := srv.do(t, http.MethodPost, "/api/itineraries", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Itinerary](t, rec)
	assert.Equal(t, model.DefaultItineraryTitle, created.Title)
	assert.Equal(t, model.ItineraryTypeCustom, created.Type)
}

func TestCreate_BadRequests(t *testing.T) {
	srv := newTestServer(t, "")

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"title":`},
		{"wrong field type", `{"title": 42}`},
		{"bad timestamp", `{"startDate":"next tuesday"}`},
		{"title too long", `{"title":"` + strings.Repeat("x", 300) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/api/itineraries", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, errorMessage(t, rec))
		})
	}

	assert.Empty(t, srv.store.List(), "rejected requests must not create records")
}

func TestUpdate_NotFound(t *testing.T) {
	srv := newTestServer(t, "")

	rec := srv.do(t, http.MethodPut, "/api/itineraries/missing", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "itinerary not found", errorMessage(t, rec))
}

func TestItemEndpoints(t *testing.T) {
	srv := newTestServer(t, "")
	rec := srv.do(t, http.MethodPost, "/api/itineraries", `{"title":"Day out"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	it := decode[model.Itinerary](t, rec)
	base := "/api/itineraries/" + it.ID + "/items"

	rec = srv.do(t, http.MethodPost, base, `{"name":"Museum","category":"culture","startTime":"2024-05-11T10:00:00Z","day":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[model.Activity](t, rec)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, model.CategoryCulture, item.Category)
	assert.Equal(t, model.TravelModeWalk, item.TravelMode)

	rec = srv.do(t, http.MethodPut, base+"/"+item.ID, `{"travelMode":"bike"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.Activity](t, rec)
	assert.Equal(t, model.TravelModeBike, updated.TravelMode)
	assert.Equal(t, "Museum", updated.Name)

	rec = srv.do(t, http.MethodPut, base+"/missing", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "item not found", errorMessage(t, rec))

	rec = srv.do(t, http.MethodDelete, base+"/"+item.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodDelete, base+"/"+item.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "item not found", errorMessage(t, rec))

	rec = srv.do(t, http.MethodPost, "/api/itineraries/missing/items", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "itinerary not found", errorMessage(t, rec))
}

func TestOptimizeEndpoint(t *testing.T) {
	srv := newTestServer(t, "")
	rec := srv.do(t, http.MethodPost, "/api/itineraries", `{}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	it := decode[model.Itinerary](t, rec)
	base := "/api/itineraries/" + it.ID

	for _, body := range []string{
		`{"name":"A","startTime":"2024-05-11T10:00:00Z"}`,
		`{"name":"B","startTime":"2024-05-11T08:00:00Z"}`,
		`{"name":"C"}`,
	} {
		rec := srv.do(t, http.MethodPost, base+"/items", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = srv.do(t, http.MethodPost, base+"/optimize", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[model.OptimizeResult](t, rec)
	assert.Equal(t, "Itinerary order optimised by chronological sequence.", result.Message)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "B", result.Items[0].Name)
	assert.Equal(t, "A", result.Items[1].Name)
	assert.Equal(t, "C", result.Items[2].Name)
	assert.Equal(t, 3, *result.Items[2].Sequence)

	rec = srv.do(t, http.MethodPost, "/api/itineraries/missing/optimize", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	rec := srv.do(t, http.MethodPost, "/api/itineraries/generate",
		`{"destination":"Kyoto","startDate":"2024-05-11T00:00:00Z","days":2,"focus":["culture","food"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	it := decode[model.Itinerary](t, rec)
	assert.Equal(t, "Kyoto plan", it.Title)
	assert.True(t, it.AIGenerated)
	assert.Len(t, it.Items, 4)
	assert.Equal(t, "AI generated 4 activities for Kyoto focusing on culture, food.", it.Preferences.AISummary())

	rec = srv.do(t, http.MethodGet, "/api/itineraries/"+it.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[model.Itinerary](t, rec).Items, 4)
}

func TestGenerateEndpoint_RejectsTooManyDays(t *testing.T) {
	srv := newTestServer(t, "")

	rec := srv.do(t, http.MethodPost, "/api/itineraries/generate", `{"days":400}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncEndpoint(t *testing.T) {
	srv := newTestServer(t, "")
	rec := srv.do(t, http.MethodPost, "/api/itineraries", `{}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	it := decode[model.Itinerary](t, rec)

	rec = srv.do(t, http.MethodPost, "/api/itineraries/"+it.ID+"/sync", "")
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[model.SyncResult](t, rec)
	assert.Equal(t, "Calendar sync simulated successfully.", result.Message)
	assert.True(t, baseTime.Equal(result.SyncedAt), "synced at %s", result.SyncedAt)

	rec = srv.do(t, http.MethodPost, "/api/itineraries/missing/sync", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, "")

	rec := srv.do(t, http.MethodGet, "/api/itineraries", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestAuth(t *testing.T) {
	srv := newTestServer(t, testSecret)

	rec := srv.do(t, http.MethodGet, "/api/itineraries", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing authorization header", errorMessage(t, rec))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "traveller-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/itineraries", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health stays public")
}
