package calculator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"keypad-calculator/internal/observability"
	"keypad-calculator/internal/session"
	"keypad-calculator/internal/testutil"
)

func newTestRouter(t *testing.T, store *session.Store) (http.Handler, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zap.InfoLevel)
	oldLogger := observability.Logger
	observability.Logger = zap.New(core)
	t.Cleanup(func() { observability.Logger = oldLogger })

	if err := InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(store))
	return r, logs
}

func createSession(t *testing.T, router http.Handler) SessionResponse {
	t.Helper()

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	return resp
}

func pressKeys(t *testing.T, router http.Handler, id string, keys ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.JSONRequest(t, http.MethodPost, "/calculator/sessions/"+id+"/keys", KeysRequest{Keys: keys})
	return testutil.ExecuteRequest(req, router)
}

func TestEvaluate(t *testing.T) {
	router, _ := newTestRouter(t, session.NewStore(0, 0))

	tests := []struct {
		name      string
		keys      []string
		want      string
		wantError bool
	}{
		{name: "addition", keys: []string{"2", "+", "3", "="}, want: "5"},
		{name: "precedence", keys: []string{"2", "+", "3", "×", "4", "="}, want: "14"},
		{name: "compact line", keys: []string{"1+2-3="}, want: "0"},
		{name: "square root", keys: []string{"9", "√"}, want: "3"},
		{name: "empty second operand", keys: []string{"5", "*", "="}, want: "0"},
		{name: "division by zero", keys: []string{"8", "÷", "0", "="}, want: "ERR", wantError: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.JSONRequest(t, http.MethodPost, "/calculator/evaluate", KeysRequest{Keys: tc.keys})
			w := testutil.ExecuteRequest(req, router)

			testutil.CheckResponseCode(t, http.StatusOK, w.Code)

			var resp KeysResponse
			testutil.DecodeJSONBody(t, w.Body, &resp)

			if resp.Display != tc.want {
				t.Fatalf("expected display %q, got %q", tc.want, resp.Display)
			}
			if resp.Error != tc.wantError {
				t.Fatalf("expected error=%t, got %t", tc.wantError, resp.Error)
			}
			if resp.SessionID != "" {
				t.Fatalf("expected no session id, got %q", resp.SessionID)
			}
		})
	}
}

func TestEvaluateReportsEveryStep(t *testing.T) {
	router, _ := newTestRouter(t, session.NewStore(0, 0))

	req := testutil.JSONRequest(t, http.MethodPost, "/calculator/evaluate", KeysRequest{Keys: []string{"12", "+", "3", "="}})
	w := testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp KeysResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	want := []KeyStep{
		{Key: "1", Display: "1", State: "first_operand"},
		{Key: "2", Display: "12", State: "first_operand"},
		{Key: "+", Display: "12", State: "second_operand"},
		{Key: "3", Display: "3", State: "second_operand"},
		{Key: "=", Display: "15", State: "first_operand"},
	}
	if len(resp.Steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(resp.Steps))
	}
	for i := range want {
		if resp.Steps[i] != want[i] {
			t.Fatalf("step %d: expected %+v, got %+v", i, want[i], resp.Steps[i])
		}
	}
}

func TestEvaluateRejectsBadRequests(t *testing.T) {
	router, _ := newTestRouter(t, session.NewStore(0, 0))

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "malformed json", body: `{"keys":`, wantMsg: "invalid request body"},
		{name: "no keys", body: `{"keys":[]}`, wantMsg: "no keys provided"},
		{name: "unknown key", body: `{"keys":["2","%"]}`, wantMsg: "unknown key"},
		{name: "too many keys", body: `{"keys":["` + strings.Repeat("1", maxKeysPerRequest+1) + `"]}`, wantMsg: "too many keys"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/calculator/evaluate", strings.NewReader(tc.body))
			w := testutil.ExecuteRequest(req, router)

			testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			testutil.DecodeJSONBody(t, w.Body, &body)
			if !strings.Contains(body["error"], tc.wantMsg) {
				t.Fatalf("expected error containing %q, got %q", tc.wantMsg, body["error"])
			}
		})
	}
}

func TestSessionKeepsStateAcrossRequests(t *testing.T) {
	router, _ := newTestRouter(t, session.NewStore(0, 0))
	created := createSession(t, router)

	if created.Display != "0" || created.State != "first_operand" {
		t.Fatalf("expected fresh session, got %+v", created)
	}

	for _, key := range []string{"2", "+", "3", "*", "4"} {
		w := pressKeys(t, router, created.SessionID, key)
		testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	}

	w := pressKeys(t, router, created.SessionID, "=")
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp KeysResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if resp.SessionID != created.SessionID {
		t.Fatalf("expected session id %q, got %q", created.SessionID, resp.SessionID)
	}
	if resp.Display != "14" {
		t.Fatalf("expected display %q, got %q", "14", resp.Display)
	}
}

func TestSessionErrorStateUntilClear(t *testing.T) {
	router, logs := newTestRouter(t, session.NewStore(0, 0))
	created := createSession(t, router)

	w := pressKeys(t, router, created.SessionID, "8", "/", "0", "=", "5")
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp KeysResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if !resp.Error || resp.Display != "ERR" || resp.State != "error" {
		t.Fatalf("expected error state, got %+v", resp)
	}

	if n := logs.FilterMessage("calculator entered error state").Len(); n != 1 {
		t.Fatalf("expected 1 error state log, got %d", n)
	}

	w = pressKeys(t, router, created.SessionID, "C")
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Error || resp.Display != "0" {
		t.Fatalf("expected clear to recover, got %+v", resp)
	}
}

func TestSessionUnknownKeyLeavesStateUntouched(t *testing.T) {
	router, _ := newTestRouter(t, session.NewStore(0, 0))
	created := createSession(t, router)

	w := pressKeys(t, router, created.SessionID, "7", "?")
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/sessions/"+created.SessionID, nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Display != "0" {
		t.Fatalf("expected display %q, got %q", "0", resp.Display)
	}
}

func TestSessionNotFound(t *testing.T) {
	router, _ := newTestRouter(t, session.NewStore(0, 0))

	tests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/calculator/sessions/missing", nil),
		httptest.NewRequest(http.MethodDelete, "/calculator/sessions/missing", nil),
		testutil.JSONRequest(t, http.MethodPost, "/calculator/sessions/missing/keys", KeysRequest{Keys: []string{"1"}}),
	}

	for _, req := range tests {
		t.Run(req.Method, func(t *testing.T) {
			w := testutil.ExecuteRequest(req, router)
			testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestCreateSessionLimit(t *testing.T) {
	router, _ := newTestRouter(t, session.NewStore(1, 0))
	createSession(t, router)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)
	testutil.CheckResponseCode(t, http.StatusServiceUnavailable, w.Code)
}

func TestDeleteSession(t *testing.T) {
	store := session.NewStore(0, 0)
	router, _ := newTestRouter(t, store)
	created := createSession(t, router)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/sessions/"+created.SessionID, nil), router)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d sessions", store.Len())
	}
}
