// Package api_test runs HTTP-level smoke tests using net/http/httptest.
// These tests do NOT require a PostgreSQL database. They verify:
//   - Gin router routing and middleware wiring
//   - Path and query validation responses (400)
//   - Response format consistency (success/error envelope)
//   - Balances served end to end from an in-memory snapshot
//   - CORS preflight handling and the metrics endpoint
package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EvertonDSS/corrida-app11/internal/api"
	"github.com/EvertonDSS/corrida-app11/internal/config"
	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/metrics"
	"github.com/EvertonDSS/corrida-app11/internal/service"
	"github.com/EvertonDSS/corrida-app11/internal/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

var championshipID = uuid.MustParse("5b0c3a5e-7d1f-4a8e-9c2b-1f0e3d4c5b6a")

type memLoader map[uuid.UUID]*settlement.Snapshot

func (m memLoader) LoadSnapshots(_ context.Context, ids []uuid.UUID) ([]*settlement.Snapshot, error) {
	out := make([]*settlement.Snapshot, 0, len(ids))
	for _, id := range ids {
		s, ok := m[id]
		if !ok {
			return nil, fmt.Errorf("load %s: %w", id, domain.ErrChampionshipNotFound)
		}
		out = append(out, s)
	}
	return out, nil
}

// scenario: X / Bracket / 01 [Red, Blue]; "01- 1000.00 Ana 60% / Bruno" in
// R01, pool 1000, withdrawal 10%; Red wins.
func scenario() *settlement.Snapshot {
	rt := domain.RoundType{ID: uuid.New(), Name: "Bracket"}
	pair := domain.Pair{ID: uuid.New(), ChampionshipID: championshipID, RoundTypeID: rt.ID, Number: "01"}
	red := domain.Contestant{ID: uuid.New(), PairID: pair.ID, Name: "Red"}
	pair.Contestants = []domain.Contestant{red, {ID: uuid.New(), PairID: pair.ID, Name: "Blue", Position: 1}}
	ana := domain.Bettor{ID: uuid.New(), Name: "Ana"}
	bruno := domain.Bettor{ID: uuid.New(), Name: "Bruno"}

	w := func(b domain.Bettor, pct, share int64) domain.Wager {
		return domain.Wager{
			ID: uuid.New(), ChampionshipID: championshipID, RoundTypeID: rt.ID, RoundName: "R01",
			PairID: pair.ID, BettorID: b.ID,
			StakeShare: decimal.NewFromInt(share), StakeTotalOriginal: decimal.NewFromInt(1000),
			BetSharePercent: decimal.NewFromInt(pct), PrizeSharePercent: decimal.NewFromInt(pct),
			PrizeAfterWithdrawal: decimal.NewFromInt(900), PrizePoolOriginal: decimal.NewFromInt(1000),
			WithdrawalPercent: decimal.NewFromInt(10),
		}
	}
	return &settlement.Snapshot{
		Championship: domain.Championship{ID: championshipID, Name: "X"},
		RoundTypes:   []domain.RoundType{rt},
		Pairs:        []domain.Pair{pair},
		Bettors:      []domain.Bettor{ana, bruno},
		Wagers:       []domain.Wager{w(ana, 60, 600), w(bruno, 40, 400)},
		Winners:      []domain.Winner{{ID: uuid.New(), ChampionshipID: championshipID, ContestantID: red.ID, ContestantName: "Red"}},
	}
}

func testCfg() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Env:                "development",
			Port:               "8080",
			RateLimitPerMinute: 600,
		},
		Settlement: config.SettlementConfig{RoundingPolicy: "floor-difference", MaxParallel: 2},
		Metrics:    config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// buildTestRouter wires a real SettlementService over an in-memory snapshot
// and nil for everything that requires a DB.
func buildTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := testCfg()
	settleSvc, err := service.NewSettlementService(memLoader{championshipID: scenario()}, nil, nil, cfg)
	if err != nil {
		t.Fatalf("NewSettlementService: %v", err)
	}
	return api.SetupRouter(api.RouterDeps{
		ChampionshipSvc: nil,
		SettlementSvc:   settleSvc,
		Metrics:         metrics.New("corrida"),
		Cfg:             cfg,
	})
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&m); err != nil {
		t.Fatalf("response is not valid JSON: %v (body: %s)", err, rr.Body.String())
	}
	return m
}

func bettorByName(t *testing.T, data map[string]interface{}, name string) map[string]interface{} {
	t.Helper()
	list, _ := data["bettors"].([]interface{})
	for _, raw := range list {
		b, _ := raw.(map[string]interface{})
		if b["nome"] == name {
			return b
		}
	}
	t.Fatalf("bettor %q missing from %v", name, data)
	return nil
}

// ── /health ───────────────────────────────────────────────────────────────────

func TestHealthEndpoint(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/health")
	if rr.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rr.Code)
	}
}

// ── Balances ──────────────────────────────────────────────────────────────────

func TestChampionshipBalances(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/championships/"+championshipID.String()+"/balances")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET balances = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	data, _ := body["data"].(map[string]interface{})

	ana := bettorByName(t, data, "Ana")
	if ana["totalApostado"] != 600.0 || ana["totalPremiosVencidos"] != 540.0 || ana["saldoFinal"] != -60.0 {
		t.Errorf("Ana = %v, want 600 / 540 / -60", ana)
	}
	bruno := bettorByName(t, data, "Bruno")
	if bruno["saldoFinal"] != -40.0 {
		t.Errorf("Bruno saldoFinal = %v, want -40", bruno["saldoFinal"])
	}
	if _, ok := data["casa"]; ok {
		t.Errorf("casa must be absent without house stakes, got %v", data["casa"])
	}
}

func TestChampionshipBalances_PositiveFilter(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/championships/"+championshipID.String()+"/balances?filter=positivos")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET balances?filter=positivos = %d, want 200", rr.Code)
	}
	data, _ := decodeBody(t, rr)["data"].(map[string]interface{})
	if list, _ := data["bettors"].([]interface{}); len(list) != 0 {
		t.Errorf("positive filter kept %d bettors, want 0", len(list))
	}
}

func TestChampionshipBalances_UnknownFilter(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/championships/"+championshipID.String()+"/balances?filter=zero")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown filter = %d, want 400", rr.Code)
	}
	if code := decodeBody(t, rr)["code"]; code != "ERR_VALIDATION" {
		t.Errorf("code = %v, want ERR_VALIDATION", code)
	}
}

func TestChampionshipBalances_InvalidID(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/championships/not-a-uuid/balances")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid id = %d, want 400", rr.Code)
	}
	if code := decodeBody(t, rr)["code"]; code != "ERR_INVALID_ID" {
		t.Errorf("code = %v, want ERR_INVALID_ID", code)
	}
}

func TestChampionshipBalances_NotFound(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/championships/"+uuid.NewString()+"/balances")
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown championship = %d, want 404", rr.Code)
	}
}

func TestMultipleBalances(t *testing.T) {
	h := buildTestRouter(t)
	id := championshipID.String()
	rr := do(t, h, http.MethodGet, "/api/balances?ids="+id+","+id)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /api/balances = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	data, _ := decodeBody(t, rr)["data"].(map[string]interface{})
	if champs, _ := data["campeonatos"].([]interface{}); len(champs) != 1 {
		t.Errorf("duplicate ids should settle once, got %d championships", len(champs))
	}
	if ana := bettorByName(t, data, "Ana"); ana["saldoFinal"] != -60.0 {
		t.Errorf("Ana saldoFinal = %v, want -60", ana["saldoFinal"])
	}
}

func TestMultipleBalances_Validation(t *testing.T) {
	h := buildTestRouter(t)

	if rr := do(t, h, http.MethodGet, "/api/balances"); rr.Code != http.StatusBadRequest {
		t.Errorf("no ids = %d, want 400", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/balances?ids=abc"); rr.Code != http.StatusBadRequest {
		t.Errorf("malformed id = %d, want 400", rr.Code)
	}
}

// ── Reports ───────────────────────────────────────────────────────────────────

func TestWinnerReport(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/championships/"+championshipID.String()+"/winners")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET winners = %d, want 200", rr.Code)
	}
	body := decodeBody(t, rr)
	list, _ := body["data"].([]interface{})
	if len(list) != 1 {
		t.Fatalf("winners = %d entries, want 1", len(list))
	}
	entry, _ := list[0].(map[string]interface{})
	if entry["cavaloVencedor"] != "Red" {
		t.Errorf("winner = %v, want Red", entry["cavaloVencedor"])
	}
}

func TestPossibleWinners_BadGroupedFlag(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/championships/"+championshipID.String()+"/possible-winners?grouped=maybe")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("grouped=maybe = %d, want 400", rr.Code)
	}
}

func TestReportRoutesArePublic(t *testing.T) {
	h := buildTestRouter(t)
	for _, suffix := range []string{"/possible-winners?grouped=true", "/exclusions/details", "/groups", "/parties"} {
		rr := do(t, h, http.MethodGet, "/api/championships/"+championshipID.String()+suffix)
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", suffix, rr.Code)
		}
	}
}

// ── Error envelope format ─────────────────────────────────────────────────────

func TestErrorEnvelope_HasRequiredFields(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/championships/bad-id")
	body := decodeBody(t, rr)

	for _, field := range []string{"success", "error", "code"} {
		if _, ok := body[field]; !ok {
			t.Errorf("error envelope missing field %q, got: %v", field, body)
		}
	}
	if body["success"] != false {
		t.Errorf("error envelope.success = %v, want false", body["success"])
	}
}

// ── CORS / metrics ────────────────────────────────────────────────────────────

func TestCORSOptionsRequest(t *testing.T) {
	h := buildTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/balances", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("OPTIONS /api/balances = %d, want 204", rr.Code)
	}
	if origin := rr.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Dev CORS origin = %q, want *", origin)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := buildTestRouter(t)
	do(t, h, http.MethodGet, "/health")

	rr := do(t, h, http.MethodGet, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `corrida_http_requests_total{method="GET",route="/health",status="200"} 1`) {
		t.Errorf("metrics missing /health request counter")
	}
}
