package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smc-signal-engine/internal/auth"
	"smc-signal-engine/internal/database"
	"smc-signal-engine/internal/events"
	"smc-signal-engine/internal/quality"
	"smc-signal-engine/internal/risk"
	"smc-signal-engine/internal/signal"
	"smc-signal-engine/internal/validator"

	"github.com/rs/zerolog"
)

// ============================================================================
// FAKE STORE
// ============================================================================

type fakeStore struct {
	evaluations []*database.SignalEvaluation
	snapshots   []*database.AccountSnapshot
}

func (f *fakeStore) HealthCheck(ctx context.Context) error { return nil }

func (f *fakeStore) CreateEvaluation(ctx context.Context, eval *database.SignalEvaluation) error {
	eval.CreatedAt = time.Now()
	f.evaluations = append(f.evaluations, eval)
	return nil
}

func (f *fakeStore) GetEvaluationByID(ctx context.Context, id string) (*database.SignalEvaluation, error) {
	for _, e := range f.evaluations {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListEvaluations(ctx context.Context, symbol string, limit int) ([]*database.SignalEvaluation, error) {
	var out []*database.SignalEvaluation
	for _, e := range f.evaluations {
		if symbol == "" || e.Symbol == symbol {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateAccountSnapshot(ctx context.Context, snap *database.AccountSnapshot) error {
	snap.ID = int64(len(f.snapshots) + 1)
	snap.RecordedAt = time.Now()
	f.snapshots = append(f.snapshots, snap)
	return nil
}

// ============================================================================
// HELPERS
// ============================================================================

func testServer(store Store, jwtManager *auth.JWTManager) (*Server, *risk.Manager) {
	clock := func() time.Time {
		return time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC) // London session
	}
	v := validator.NewWithClock(clock)
	classifier := quality.NewWithValidator(v, quality.DefaultThresholds())
	riskManager := risk.NewManager(signal.DefaultStrategyConfig(), zerolog.Nop())

	srv := NewServer(
		ServerConfig{ProductionMode: true, ShutdownTimeout: time.Second},
		store, v, classifier, riskManager, nil, nil, jwtManager,
		signal.DefaultStrategyConfig(),
	)
	return srv, riskManager
}

func postJSON(t *testing.T, srv *Server, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func validSignal() signal.CandidateSignal {
	return signal.CandidateSignal{
		Symbol:          "EURUSD",
		Direction:       "long",
		EntryPrice:      1.1050,
		StopLoss:        1.1030,
		TakeProfit1:     1.1130,
		ConfidenceScore: 90,
		ConfluenceFactors: []string{
			"choch_confirmation",
			"daily_structure_confirmation",
			"optimal_session_timing",
			"order_block_alignment",
			"momentum_divergence",
		},
	}
}

// ============================================================================
// TESTS
// ============================================================================

func TestHandleValidateSignal(t *testing.T) {
	store := &fakeStore{}
	srv, _ := testServer(store, nil)

	w := postJSON(t, srv, "/api/signals/validate", map[string]interface{}{"signal": validSignal()}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		EvaluationID string                     `json:"evaluation_id"`
		Result       validator.ValidationResult `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Result.IsValid {
		t.Errorf("result invalid, reasons: %v", resp.Result.Reasons)
	}
	if resp.Result.Score != 7 {
		t.Errorf("score = %d, want 7", resp.Result.Score)
	}
	if len(store.evaluations) != 1 {
		t.Fatalf("persisted %d evaluations, want 1", len(store.evaluations))
	}
	if store.evaluations[0].ID != resp.EvaluationID {
		t.Error("persisted id does not match response id")
	}
}

func TestMissingSignalRejected(t *testing.T) {
	srv, _ := testServer(&fakeStore{}, nil)
	for _, path := range []string{
		"/api/signals/validate",
		"/api/signals/assess",
		"/api/risk/position-size",
		"/api/risk/adjust-stop",
	} {
		w := postJSON(t, srv, path, map[string]interface{}{"nope": 1}, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}

func TestHandleAssessSignal(t *testing.T) {
	srv, _ := testServer(&fakeStore{}, nil)
	w := postJSON(t, srv, "/api/signals/assess", map[string]interface{}{"signal": validSignal()}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Assessment quality.Assessment `json:"assessment"`
		Cached     bool               `json:"cached"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Cached {
		t.Error("first assessment reported as cached with no cache wired")
	}
	if resp.Assessment.Quality == "" {
		t.Error("assessment has empty quality tier")
	}
}

func TestHandleAssessSignalPublishesEvent(t *testing.T) {
	clock := func() time.Time {
		return time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	}
	v := validator.NewWithClock(clock)
	bus := events.NewEventBus()
	srv := NewServer(
		ServerConfig{ProductionMode: true, ShutdownTimeout: time.Second},
		&fakeStore{}, v, quality.NewWithValidator(v, quality.DefaultThresholds()),
		risk.NewManager(signal.DefaultStrategyConfig(), zerolog.Nop()),
		nil, bus, nil, signal.DefaultStrategyConfig(),
	)

	got := make(chan events.Event, 1)
	bus.Subscribe(events.EventAssessmentUpdated, func(e events.Event) { got <- e })

	w := postJSON(t, srv, "/api/signals/assess", map[string]interface{}{"signal": validSignal()}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	select {
	case e := <-got:
		if e.Data["symbol"] != "EURUSD" {
			t.Errorf("event symbol = %v, want EURUSD", e.Data["symbol"])
		}
		if e.Data["quality"] == "" {
			t.Error("event carries empty quality tier")
		}
	case <-time.After(time.Second):
		t.Fatal("no assessment event published")
	}
}

func TestHandlePositionSizeExplicitBalance(t *testing.T) {
	srv, _ := testServer(&fakeStore{}, nil)
	body := map[string]interface{}{
		"signal": signal.CandidateSignal{
			Symbol:     "USDJPY",
			EntryPrice: 150.00,
			StopLoss:   149.50,
		},
		"account_balance": 10000,
		"risk_percentage": 1,
	}
	w := postJSON(t, srv, "/api/risk/position-size", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Size      float64 `json:"size"`
		Tradeable bool    `json:"tradeable"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Size != 2.00 {
		t.Errorf("size = %v, want 2.00", resp.Size)
	}
	if !resp.Tradeable {
		t.Error("tradeable = false for a sizable trade")
	}
}

func TestHandlePositionSizeZeroDistanceNotTradeable(t *testing.T) {
	srv, _ := testServer(&fakeStore{}, nil)
	body := map[string]interface{}{
		"signal": signal.CandidateSignal{
			Symbol:     "EURUSD",
			EntryPrice: 1.1000,
			StopLoss:   1.1000,
		},
		"account_balance": 10000,
	}
	w := postJSON(t, srv, "/api/risk/position-size", body, nil)

	var resp struct {
		Size      float64 `json:"size"`
		Tradeable bool    `json:"tradeable"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Size != 0 || resp.Tradeable {
		t.Errorf("zero stop distance: size=%v tradeable=%v, want 0/false", resp.Size, resp.Tradeable)
	}
}

func TestHandleAdjustStop(t *testing.T) {
	srv, _ := testServer(&fakeStore{}, nil)
	sig := signal.CandidateSignal{Symbol: "GBPJPY", Direction: "long", StopLoss: 185.000}
	w := postJSON(t, srv, "/api/risk/adjust-stop", map[string]interface{}{"signal": sig}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		AdjustedStop float64 `json:"adjusted_stop"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AdjustedStop >= 185.000 {
		t.Errorf("long stop not widened downward: %v", resp.AdjustedStop)
	}
}

func TestHandleUpdateBalanceFeedsRiskManager(t *testing.T) {
	store := &fakeStore{}
	srv, riskManager := testServer(store, nil)

	w := postJSON(t, srv, "/api/account/balance", map[string]interface{}{"balance": 25000.0}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := riskManager.Balance(); got != 25000 {
		t.Errorf("risk manager balance = %v, want 25000", got)
	}
	if len(store.snapshots) != 1 {
		t.Errorf("persisted %d snapshots, want 1", len(store.snapshots))
	}
}

func TestAuthGateOnEngineEndpoints(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	srv, _ := testServer(&fakeStore{}, jwtManager)

	// No token: 401.
	w := postJSON(t, srv, "/api/signals/validate", map[string]interface{}{"signal": validSignal()}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	// Token without a subscription tier: 403.
	freeToken, err := jwtManager.GenerateAccessToken(auth.UserClaims{UserID: "u1", Email: "u1@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	w = postJSON(t, srv, "/api/signals/validate", map[string]interface{}{"signal": validSignal()},
		map[string]string{"Authorization": "Bearer " + freeToken})
	if w.Code != http.StatusForbidden {
		t.Errorf("free tier: status = %d, want 403", w.Code)
	}

	// Subscribed user: 200.
	proToken, err := jwtManager.GenerateAccessToken(auth.UserClaims{UserID: "u2", Email: "u2@example.com", SubscriptionTier: auth.TierPro})
	if err != nil {
		t.Fatal(err)
	}
	w = postJSON(t, srv, "/api/signals/validate", map[string]interface{}{"signal": validSignal()},
		map[string]string{"Authorization": "Bearer " + proToken})
	if w.Code != http.StatusOK {
		t.Errorf("pro tier: status = %d, body = %s", w.Code, w.Body.String())
	}

	// Health stays public.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health: status = %d, want 200", rec.Code)
	}
}
