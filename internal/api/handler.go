package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/basket-splitter/internal/report"
	"github.com/eugenenazirov/basket-splitter/internal/splitter"
	"github.com/eugenenazirov/basket-splitter/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const maxBasketItems = 10_000

// Handler wires splitter and storage dependencies into HTTP handlers.
type Handler struct {
	splitter splitter.Splitter
	storage  storage.Storage
	logger   *zap.Logger

	clock func() time.Time

	mu                   sync.RWMutex
	eligibilityUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithHandlerLogger sets the logger used to report failed splits.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(split splitter.Splitter, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		splitter: split,
		storage:  store,
		logger:   zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.eligibilityUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetEligibility(w http.ResponseWriter, r *http.Request) {
	_ = r
	index, err := h.storage.GetEligibility()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := eligibilityResponse{
		Eligibility: index.Map(),
		Items:       index.Len(),
		UpdatedAt:   h.currentEligibilityUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutEligibility(w http.ResponseWriter, r *http.Request) {
	var req eligibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if req.Eligibility == nil {
		writeError(w, http.StatusBadRequest, "Invalid eligibility", "eligibility must be a JSON object")
		return
	}

	if err := h.storage.SetEligibility(req.Eligibility); err != nil {
		if errors.Is(err, storage.ErrInvalidEligibility) {
			writeError(w, http.StatusBadRequest, "Invalid eligibility", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markEligibilityUpdated()

	index, err := h.storage.GetEligibility()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := eligibilityResponse{
		Eligibility: index.Map(),
		Items:       index.Len(),
		UpdatedAt:   h.currentEligibilityUpdatedAt(),
		Message:     "Eligibility updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Items) > maxBasketItems {
		writeError(w, http.StatusBadRequest, "Invalid request",
			fmt.Sprintf("items must contain at most %d entries", maxBasketItems),
			"Split the basket into several smaller requests")
		return
	}

	index, err := h.storage.GetEligibility()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	start := time.Now()
	result, splitErr := h.splitter.Split(req.Items, index)
	elapsed := time.Since(start)

	if splitErr == nil {
		splitErr = result.Deliveries.Validate(index)
	}
	if splitErr != nil {
		h.logger.Error("split failed",
			zap.Error(splitErr),
			zap.Int("basket_size", len(req.Items)),
			zap.String("request_id", requestIDFromContext(r.Context())))
		writeError(w, http.StatusInternalServerError, "Internal error", splitErr.Error())
		return
	}

	summary := report.Summarize(result)
	resp := splitResponse{
		Deliveries:        make(map[string][]string, result.Deliveries.Size()),
		Unassigned:        result.Unassigned,
		TotalItems:        len(req.Items),
		GroupCount:        summary.GroupCount,
		LargestGroup:      summary.LargestGroup,
		LargestGroupSize:  summary.LargestSize,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	for company, items := range result.Deliveries {
		resp.Deliveries[company] = items
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) currentEligibilityUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.eligibilityUpdatedAt
}

func (h *Handler) markEligibilityUpdated() {
	h.mu.Lock()
	h.eligibilityUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type eligibilityRequest struct {
	Eligibility map[string][]string `json:"eligibility"`
}

type splitRequest struct {
	Items []string `json:"items"`
}

type splitResponse struct {
	Deliveries        map[string][]string `json:"deliveries"`
	Unassigned        []string            `json:"unassigned"`
	TotalItems        int                 `json:"totalItems"`
	GroupCount        int                 `json:"groupCount"`
	LargestGroup      string              `json:"largestGroup,omitempty"`
	LargestGroupSize  int                 `json:"largestGroupSize"`
	CalculationTimeMs int64               `json:"calculationTimeMs"`
}

type eligibilityResponse struct {
	Eligibility map[string][]string `json:"eligibility"`
	Items       int                 `json:"items"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Message     string              `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
