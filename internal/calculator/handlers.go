package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"keypad-calculator/internal/evaluator"
	"keypad-calculator/internal/handlers"
	"keypad-calculator/internal/observability"
	"keypad-calculator/internal/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// maxKeysPerRequest bounds the work a single request can queue.
const maxKeysPerRequest = 1000

// Handler serves the session-backed calculator endpoints.
type Handler struct {
	sessions *session.Store
}

// NewHandler returns a Handler backed by sessions.
func NewHandler(sessions *session.Store) *Handler {
	return &Handler{sessions: sessions}
}

// ---------------------------------------------------------------------------
// Handlers — sessions
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session.create",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	s, err := h.sessions.Create()
	if err != nil {
		recordSessionError(ctx, span, logger, "create", err, w)
		return
	}

	activeSessions.Add(ctx, 1)
	span.SetAttributes(attribute.String("session.id", s.ID))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created",
		zap.String("session_id", s.ID),
		zap.String("request_id", requestID),
	)

	var resp SessionResponse
	s.Do(func(e *evaluator.Evaluator) { resp = snapshot(s.ID, e) })
	handlers.WriteJSON(w, http.StatusCreated, resp)
}

// GetSession handles GET /calculator/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.get",
		trace.WithAttributes(attribute.String("session.id", id)),
	)
	defer span.End()

	s, err := h.sessions.Get(id)
	if err != nil {
		recordSessionError(ctx, span, logger, "get", err, w)
		return
	}

	var resp SessionResponse
	s.Do(func(e *evaluator.Evaluator) { resp = snapshot(s.ID, e) })
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.delete",
		trace.WithAttributes(attribute.String("session.id", id)),
	)
	defer span.End()

	if err := h.sessions.Delete(id); err != nil {
		recordSessionError(ctx, span, logger, "delete", err, w)
		return
	}

	activeSessions.Add(ctx, -1)
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session deleted",
		zap.String("session_id", id),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	w.WriteHeader(http.StatusNoContent)
}

// PressKeys handles POST /calculator/sessions/{id}/keys — applies each key to
// the session's evaluator in order and reports the display after every one.
func (h *Handler) PressKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.keys",
		trace.WithAttributes(
			attribute.String("session.id", id),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	keys, ok := decodeKeys(ctx, span, logger, "press", w, r)
	if !ok {
		return
	}

	s, err := h.sessions.Get(id)
	if err != nil {
		recordSessionError(ctx, span, logger, "press", err, w)
		return
	}

	var resp KeysResponse
	s.Do(func(e *evaluator.Evaluator) { resp = runKeys(ctx, logger, e, keys) })
	resp.SessionID = s.ID

	finishKeys(ctx, span, logger, resp)
	handlers.WriteJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------------
// Handler — stateless evaluation
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate — runs the keys on a throwaway
// evaluator, creating a child span for every key.
func Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	keys, ok := decodeKeys(ctx, span, logger, "evaluate", w, r)
	if !ok {
		return
	}

	resp := runKeys(ctx, logger, evaluator.New(), keys)

	finishKeys(ctx, span, logger, resp)
	handlers.WriteJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// decodeKeys reads a KeysRequest and parses every key before any is applied,
// so a bad key leaves the evaluator untouched.
func decodeKeys(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, w http.ResponseWriter, r *http.Request) ([]evaluator.Key, bool) {
	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		return nil, false
	}

	var keys []evaluator.Key
	for _, text := range req.Keys {
		parsed, err := evaluator.ParseKeys(text)
		if err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusBadRequest, w)
			return nil, false
		}
		keys = append(keys, parsed...)
	}

	switch {
	case len(keys) == 0:
		observability.RecordError(ctx, span, logger, errorCounter, opName, "no keys provided", fmt.Errorf("keys array is empty"), http.StatusBadRequest, w)
		return nil, false
	case len(keys) > maxKeysPerRequest:
		observability.RecordError(ctx, span, logger, errorCounter, opName, "too many keys", fmt.Errorf("%d keys exceeds limit of %d", len(keys), maxKeysPerRequest), http.StatusBadRequest, w)
		return nil, false
	}

	span.SetAttributes(attribute.Int("calculator.keys_count", len(keys)))
	return keys, true
}

// runKeys presses every key on e, one child span per key, and records the
// display after each press.
func runKeys(ctx context.Context, logger *zap.Logger, e *evaluator.Evaluator, keys []evaluator.Key) KeysResponse {
	start := time.Now()
	steps := make([]KeyStep, 0, len(keys))

	for i, k := range keys {
		_, keySpan := tracer.Start(ctx, fmt.Sprintf("calculator.key.%d", i),
			trace.WithAttributes(
				attribute.Int("calculator.key.index", i),
				attribute.String("calculator.key", k.String()),
				attribute.String("calculator.state.before", e.StateName()),
			),
		)

		wasFailed := e.Failed()
		e.Press(k)

		step := KeyStep{Key: k.String(), Display: e.Display(), State: e.StateName()}
		steps = append(steps, step)

		keyCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("key_class", k.Class())))

		if !wasFailed && e.Failed() {
			divByZeroCounter.Add(ctx, 1)
			keySpan.AddEvent("division_by_zero")

			logger.Warn("calculator entered error state",
				zap.Int("step", i),
				zap.String("key", k.String()),
			)
		}

		keySpan.SetAttributes(
			attribute.String("calculator.state.after", step.State),
			attribute.String("calculator.display", step.Display),
		)
		keySpan.SetStatus(codes.Ok, "")
		keySpan.End()
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms
	batchHistogram.Record(ctx, elapsed)

	return KeysResponse{
		Steps:   steps,
		Display: e.Display(),
		State:   e.StateName(),
		Error:   e.Failed(),
	}
}

// finishKeys annotates the parent span and writes the completion log.
func finishKeys(ctx context.Context, span trace.Span, logger *zap.Logger, resp KeysResponse) {
	span.AddEvent("keys.complete", trace.WithAttributes(
		attribute.String("display", resp.Display),
		attribute.Int("total_keys", len(resp.Steps)),
	))
	span.SetAttributes(
		attribute.String("calculator.display", resp.Display),
		attribute.String("calculator.state", resp.State),
		attribute.Bool("calculator.error", resp.Error),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator keys applied",
		zap.String("session_id", resp.SessionID),
		zap.Int("keys", len(resp.Steps)),
		zap.String("display", resp.Display),
		zap.String("state", resp.State),
		zap.Bool("error", resp.Error),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)
}

// recordSessionError maps store errors to HTTP statuses.
func recordSessionError(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, err error, w http.ResponseWriter) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrLimitReached):
		status = http.StatusServiceUnavailable
	}
	observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, status, w)
}

func snapshot(id string, e *evaluator.Evaluator) SessionResponse {
	return SessionResponse{
		SessionID: id,
		Display:   e.Display(),
		State:     e.StateName(),
		Error:     e.Failed(),
	}
}
