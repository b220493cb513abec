package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/basket-splitter/internal/splitter"
	"github.com/eugenenazirov/basket-splitter/internal/storage"
)

type controllableClock struct {
	mu  sync.RWMutex
	now time.Time
}

func newControllableClock(initial time.Time) *controllableClock {
	return &controllableClock{now: initial}
}

func (c *controllableClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *controllableClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var testEligibility = map[string][]string{
	"Cookies":  {"Courier", "Parcel locker"},
	"Steak":    {"Express Collection"},
	"Beer":     {"Express Collection", "Courier"},
	"Tomatoes": {},
}

func setupTestRouter(t *testing.T) (http.Handler, *controllableClock) {
	t.Helper()

	store := storage.NewMemoryStorage()
	if err := store.SetEligibility(testEligibility); err != nil {
		t.Fatalf("seed eligibility: %v", err)
	}
	clock := newControllableClock(time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC))

	logger := zaptest.NewLogger(t)
	handler := NewHandler(splitter.New(), store, WithClock(clock.Now), WithHandlerLogger(logger))
	router := NewRouter(handler, logger, WithLogging(false))

	return router, clock
}

func doJSON(t *testing.T, router http.Handler, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	switch p := payload.(type) {
	case nil:
		body = bytes.NewReader(nil)
	case string:
		body = bytes.NewReader([]byte(p))
	default:
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}
	if got := requestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %s", got)
	}
	resp := httptest.NewRecorder()
	writeInternalError(resp, assertError("boom"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %d", resp.Code)
	}
}

type assertError string

func (a assertError) Error() string { return string(a) }

func TestHealthEndpoint(t *testing.T) {
	router, clock := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %s", body.Status)
	}
	if !body.Timestamp.Equal(clock.Now()) {
		t.Fatalf("expected timestamp %s, got %s", clock.Now(), body.Timestamp)
	}
}

func TestGetEligibilityReturnsStoredIndex(t *testing.T) {
	router, clock := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/eligibility", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Eligibility map[string][]string `json:"eligibility"`
		Items       int                 `json:"items"`
		UpdatedAt   time.Time           `json:"updatedAt"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Items != len(testEligibility) {
		t.Fatalf("expected %d items, got %d", len(testEligibility), body.Items)
	}
	if got := body.Eligibility["Cookies"]; len(got) != 2 || got[0] != "Courier" {
		t.Fatalf("unexpected companies for Cookies: %v", got)
	}
	if !body.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("expected updatedAt %s, got %s", clock.Now(), body.UpdatedAt)
	}
}

func TestPutEligibilityUpdatesStorage(t *testing.T) {
	router, clock := setupTestRouter(t)

	clock.Advance(time.Hour)

	payload := map[string]any{
		"eligibility": map[string][]string{
			"Garden Chair": {"Courier"},
		},
	}
	rec := doJSON(t, router, http.MethodPut, "/api/eligibility", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Eligibility map[string][]string `json:"eligibility"`
		Items       int                 `json:"items"`
		UpdatedAt   time.Time           `json:"updatedAt"`
		Message     string              `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Message == "" {
		t.Fatalf("expected success message, got empty string")
	}
	if body.Items != 1 || len(body.Eligibility["Garden Chair"]) != 1 {
		t.Fatalf("unexpected eligibility %v", body.Eligibility)
	}
	if !body.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("expected updatedAt %s, got %s", clock.Now(), body.UpdatedAt)
	}
}

func TestPutEligibilityValidatesInput(t *testing.T) {
	router, _ := setupTestRouter(t)

	tests := []struct {
		name    string
		payload any
	}{
		{name: "malformed", payload: `{"eligibility":`},
		{name: "missing mapping", payload: map[string]any{}},
		{name: "blank item", payload: map[string]any{"eligibility": map[string][]string{"": {"Courier"}}}},
		{name: "blank company", payload: map[string]any{"eligibility": map[string][]string{"Cookies": {" "}}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPut, "/api/eligibility", tc.payload)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestSplitEndpointSuccess(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]any{
		"items": []string{"Steak", "Beer", "Cookies", "Tomatoes"},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/split", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Deliveries       map[string][]string `json:"deliveries"`
		Unassigned       []string            `json:"unassigned"`
		TotalItems       int                 `json:"totalItems"`
		GroupCount       int                 `json:"groupCount"`
		LargestGroup     string              `json:"largestGroup"`
		LargestGroupSize int                 `json:"largestGroupSize"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// Courier and Express Collection both rank 2; Courier wins by name and keeps
	// Beer and Cookies, Steak can only travel with Express Collection.
	if body.GroupCount != 2 {
		t.Fatalf("expected 2 groups, got %d (%v)", body.GroupCount, body.Deliveries)
	}
	if got := body.Deliveries["Courier"]; len(got) != 2 || got[0] != "Beer" || got[1] != "Cookies" {
		t.Fatalf("unexpected Courier group %v", got)
	}
	if got := body.Deliveries["Express Collection"]; len(got) != 1 || got[0] != "Steak" {
		t.Fatalf("unexpected Express Collection group %v", got)
	}
	if len(body.Unassigned) != 1 || body.Unassigned[0] != "Tomatoes" {
		t.Fatalf("expected Tomatoes to be unassigned, got %v", body.Unassigned)
	}
	if body.TotalItems != 4 {
		t.Fatalf("expected total items 4, got %d", body.TotalItems)
	}
	if body.LargestGroup != "Courier" || body.LargestGroupSize != 2 {
		t.Fatalf("unexpected largest group %s (%d)", body.LargestGroup, body.LargestGroupSize)
	}
}

func TestSplitEndpointEmptyBasket(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/split", map[string]any{"items": []string{}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for empty basket, got %d", rec.Code)
	}

	var body struct {
		Deliveries map[string][]string `json:"deliveries"`
		GroupCount int                 `json:"groupCount"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Deliveries == nil || len(body.Deliveries) != 0 || body.GroupCount != 0 {
		t.Fatalf("expected empty deliveries, got %v", body.Deliveries)
	}
}

func TestSplitEndpointRejectsInvalidPayload(t *testing.T) {
	router, _ := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/split", `{"items": 3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSplitEndpointRejectsOversizedBasket(t *testing.T) {
	router, _ := setupTestRouter(t)

	items := make([]string, maxBasketItems+1)
	for i := range items {
		items[i] = "Cookies"
	}
	rec := doJSON(t, router, http.MethodPost, "/api/split", map[string]any{"items": items})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body struct {
		Suggestion string `json:"suggestion"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Suggestion == "" {
		t.Fatalf("expected suggestion to be populated")
	}
}

type failingSplitter struct{}

func (failingSplitter) Split([]string, *splitter.EligibilityIndex) (splitter.Result, error) {
	return splitter.Result{}, splitter.ErrInconsistentPool
}

type illegalSplitter struct{}

func (illegalSplitter) Split([]string, *splitter.EligibilityIndex) (splitter.Result, error) {
	return splitter.Result{Deliveries: splitter.Pool{"Drone": {"Steak"}}}, nil
}

func TestSplitEndpointReportsInternalFailures(t *testing.T) {
	for name, split := range map[string]splitter.Splitter{
		"invariant violation": failingSplitter{},
		"illegal assignment":  illegalSplitter{},
	} {
		t.Run(name, func(t *testing.T) {
			store := storage.NewMemoryStorage()
			if err := store.SetEligibility(testEligibility); err != nil {
				t.Fatalf("seed eligibility: %v", err)
			}
			logger := zaptest.NewLogger(t)
			router := NewRouter(NewHandler(split, store, WithHandlerLogger(logger)), logger, WithLogging(false))

			rec := doJSON(t, router, http.MethodPost, "/api/split", map[string]any{"items": []string{"Steak"}})
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("expected status 500, got %d", rec.Code)
			}
		})
	}
}

func TestCorsPreflight(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/split", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected Access-Control-Allow-Origin header to be set")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "test-request-id")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "test-request-id" {
		t.Fatalf("expected X-Request-ID header to be echoed, got %s", got)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Fatalf("expected generated UUID request id, got %q", got)
	}
}
