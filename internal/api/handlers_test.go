package api

import (
    "bytes"
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "golang.org/x/time/rate"

    "fleetnav/internal/model"
    "fleetnav/internal/store"
)

func newTestServer(t *testing.T) *Server {
    t.Helper()
    s, err := NewServer()
    if err != nil { t.Fatalf("NewServer: %v", err) }
    return s
}

const vesselJSON = `{
    "name": "Coral Trader", "openPort": "Santos", "dwt": 180000,
    "eco": {"ballastKnots": 14, "ladenKnots": 13.5, "ballastIfo": 38, "ballastMdo": 0.4, "ladenIfo": 42, "ladenMdo": 0.4},
    "warranted": {"ballastKnots": 12, "ladenKnots": 12, "ballastIfo": 33, "ballastMdo": 0.3, "ladenIfo": 35, "ladenMdo": 0.3},
    "portWorkIfo": 5, "portWorkMdo": 0.5, "portIdleIfo": 3, "portIdleMdo": 0.3,
    "dailyHire": 18000, "addressCommission": 0.0375
}`

const cargoJSON = `{
    "name": "SOY Santos/Qingdao", "quantity": 150000, "minQty": 142500, "maxQty": 157500,
    "loadPort": "Santos", "dischargePort": "Qingdao",
    "freightRate": 22, "commissions": [0.0375, 0.0125],
    "loadRate": 30000, "dischargeRate": 25000, "loadTurnDays": 1, "dischargeTurnDays": 1, "portIdleDays": 2,
    "laycanStart": "2026-03-01", "laycanEnd": "2026-03-07",
    "loadPortCost": 150000, "dischargePortCost": 120000
}`

func optimizeBody(t *testing.T) []byte {
    t.Helper()
    return []byte(`{"tenantId":"t_test","referenceDate":"2026-03-02","vessels":[` + vesselJSON + `],"cargos":[` + cargoJSON + `]}`)
}

func runOptimize(t *testing.T, s *Server) model.PlanOut {
    t.Helper()
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, "/v1/optimize", bytes.NewReader(optimizeBody(t)))
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("X-Tenant-Id", "t_test")
    req.Header.Set("X-Role", "dispatcher")
    s.OptimizeHandler(rr, req)
    if rr.Code != 200 { t.Fatalf("optimize: %d body=%s", rr.Code, rr.Body.String()) }
    var plan model.PlanOut
    if err := json.Unmarshal(rr.Body.Bytes(), &plan); err != nil { t.Fatalf("decode plan: %v", err) }
    return plan
}

func TestHealthReady(t *testing.T) {
    s := newTestServer(t)
    rr := httptest.NewRecorder()
    s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
    if rr.Code != 200 { t.Fatalf("health: got %d", rr.Code) }
    rr = httptest.NewRecorder()
    s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
    if rr.Code != 200 { t.Fatalf("ready: got %d", rr.Code) }
}

func TestVesselsUploadAndList(t *testing.T) {
    s := newTestServer(t)
    body := []byte(`{"tenantId":"t_test","vessels":[` + vesselJSON + `]}`)
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, "/v1/vessels", bytes.NewReader(body))
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("X-Tenant-Id", "t_test")
    s.VesselsHandler(rr, req)
    if rr.Code != 200 { t.Fatalf("vessels upload: %d body=%s", rr.Code, rr.Body.String()) }

    rr = httptest.NewRecorder()
    req = httptest.NewRequest(http.MethodGet, "/v1/vessels", nil)
    req.Header.Set("X-Tenant-Id", "t_test")
    s.VesselsHandler(rr, req)
    if rr.Code != 200 { t.Fatalf("vessels list: %d", rr.Code) }
    var res struct{ Items []model.VesselIn `json:"items"` }
    if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil { t.Fatalf("decode: %v", err) }
    if len(res.Items) != 1 || res.Items[0].Name != "Coral Trader" { t.Fatalf("unexpected items: %+v", res.Items) }
}

func TestVesselsUploadRejectsInvalid(t *testing.T) {
    s := newTestServer(t)
    body := []byte(`{"tenantId":"t_test","vessels":[{"name":"Bad","openPort":"Santos","dwt":0}]}`)
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, "/v1/vessels", bytes.NewReader(body))
    req.Header.Set("Content-Type", "application/json")
    s.VesselsHandler(rr, req)
    if rr.Code != 400 { t.Fatalf("expected 400, got %d", rr.Code) }
}

func TestCargosUploadRejectsHalfLaycan(t *testing.T) {
    s := newTestServer(t)
    body := []byte(`{"tenantId":"t_test","cargos":[{"name":"C","loadPort":"Santos","dischargePort":"Qingdao","quantity":1000,"freightRate":10,"laycanStart":"2026-03-01"}]}`)
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, "/v1/cargos", bytes.NewReader(body))
    req.Header.Set("Content-Type", "application/json")
    s.CargosHandler(rr, req)
    if rr.Code != 400 { t.Fatalf("expected 400, got %d", rr.Code) }
}

func TestOptimizeEndToEnd(t *testing.T) {
    s := newTestServer(t)
    plan := runOptimize(t, s)
    if plan.ID == "" { t.Fatal("plan id missing") }
    if len(plan.Matches) != 1 { t.Fatalf("expected 1 match, got %+v", plan.Matches) }
    m := plan.Matches[0]
    if m.Vessel != "Coral Trader" || m.Cargo != "SOY Santos/Qingdao" {
        t.Fatalf("unexpected match: %+v", m)
    }
    if m.AdjustedProfit <= 0 || plan.TotalProfit <= 0 {
        t.Fatalf("expected profitable plan: %+v", m)
    }
    if m.BallastLeg.Source != "table" || m.LadenLeg.Source != "table" {
        t.Fatalf("expected table distances: %+v", m)
    }
    if plan.Stats.Pairs != 1 || plan.Stats.Evaluated != 1 {
        t.Fatalf("unexpected stats: %+v", plan.Stats)
    }
    if !strings.Contains(plan.Report, "Total adjusted profit") {
        t.Fatalf("report missing summary: %q", plan.Report)
    }

    // plan is persisted and retrievable
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodGet, "/v1/plans/"+plan.ID, nil)
    req.Header.Set("X-Tenant-Id", "t_test")
    s.PlanByIDHandler(rr, req)
    if rr.Code != 200 { t.Fatalf("get plan: %d", rr.Code) }

    // text report endpoint
    rr = httptest.NewRecorder()
    req = httptest.NewRequest(http.MethodGet, "/v1/plans/"+plan.ID+"/report", nil)
    req.Header.Set("X-Tenant-Id", "t_test")
    s.PlanByIDHandler(rr, req)
    if rr.Code != 200 { t.Fatalf("get report: %d", rr.Code) }
    if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
        t.Fatalf("report content type: %q", ct)
    }
    if !strings.Contains(rr.Body.String(), "Total adjusted profit") {
        t.Fatalf("report body: %q", rr.Body.String())
    }

    // list drops report bodies
    rr = httptest.NewRecorder()
    req = httptest.NewRequest(http.MethodGet, "/v1/plans", nil)
    req.Header.Set("X-Tenant-Id", "t_test")
    s.PlansHandler(rr, req)
    if rr.Code != 200 { t.Fatalf("list plans: %d", rr.Code) }
    var lres struct{ Items []model.PlanOut `json:"items"` }
    if err := json.Unmarshal(rr.Body.Bytes(), &lres); err != nil { t.Fatalf("decode list: %v", err) }
    if len(lres.Items) != 1 || lres.Items[0].Report != "" { t.Fatalf("unexpected list: %+v", lres.Items) }
}

func TestOptimizeForbiddenForAnalyst(t *testing.T) {
    s := newTestServer(t)
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, "/v1/optimize", bytes.NewReader(optimizeBody(t)))
    req.Header.Set("X-Role", "analyst")
    s.OptimizeHandler(rr, req)
    if rr.Code != 403 { t.Fatalf("expected 403, got %d", rr.Code) }
}

func TestOptimizeRateLimited(t *testing.T) {
    s := newTestServer(t)
    s.Limiter = rate.NewLimiter(0, 0)
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, "/v1/optimize", bytes.NewReader(optimizeBody(t)))
    req.Header.Set("X-Role", "admin")
    s.OptimizeHandler(rr, req)
    if rr.Code != http.StatusTooManyRequests { t.Fatalf("expected 429, got %d", rr.Code) }
}

func TestOptimizeEmptyDataset(t *testing.T) {
    s := newTestServer(t)
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, "/v1/optimize", bytes.NewReader([]byte(`{"tenantId":"t_empty"}`)))
    req.Header.Set("X-Role", "admin")
    s.OptimizeHandler(rr, req)
    if rr.Code != 400 { t.Fatalf("expected 400, got %d", rr.Code) }
}

func TestPairHandler(t *testing.T) {
    s := newTestServer(t)
    body := []byte(`{"referenceDate":"2026-03-02","vessel":` + vesselJSON + `,"cargo":` + cargoJSON + `}`)
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, "/v1/pair", bytes.NewReader(body))
    req.Header.Set("Content-Type", "application/json")
    s.PairHandler(rr, req)
    if rr.Code != 200 { t.Fatalf("pair: %d body=%s", rr.Code, rr.Body.String()) }
    var res struct {
        Feasible bool          `json:"feasible"`
        Pair     model.PairOut `json:"pair"`
    }
    if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil { t.Fatalf("decode: %v", err) }
    if !res.Feasible || res.Pair.AdjustedProfit <= 0 { t.Fatalf("expected feasible pair: %+v", res) }

    // zero freight short-circuits
    body = []byte(`{"referenceDate":"2026-03-02","vessel":` + vesselJSON + `,"cargo":` +
        strings.Replace(cargoJSON, `"freightRate": 22`, `"freightRate": 0`, 1) + `}`)
    rr = httptest.NewRecorder()
    req = httptest.NewRequest(http.MethodPost, "/v1/pair", bytes.NewReader(body))
    s.PairHandler(rr, req)
    if rr.Code != 200 { t.Fatalf("pair skip: %d", rr.Code) }
    var skip struct {
        Feasible   bool   `json:"feasible"`
        SkipReason string `json:"skipReason"`
    }
    if err := json.Unmarshal(rr.Body.Bytes(), &skip); err != nil { t.Fatalf("decode: %v", err) }
    if skip.Feasible || skip.SkipReason != "freight_not_positive" { t.Fatalf("unexpected skip: %+v", skip) }
}

func TestOptimizeEnqueuesWebhook(t *testing.T) {
    s := newTestServer(t)
    subBody := []byte(`{"tenantId":"t_test","url":"https://example.invalid/webhook","events":["plan.completed"],"secret":"shh"}`)
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions", bytes.NewReader(subBody))
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("X-Tenant-Id", "t_test")
    req.Header.Set("X-Role", "admin")
    s.SubscriptionsHandler(rr, req)
    if rr.Code != http.StatusCreated { t.Fatalf("create sub: %d", rr.Code) }

    runOptimize(t, s)

    mem, ok := s.Store.(*store.Memory)
    if !ok { t.Fatal("expected memory store in tests") }
    due, err := mem.FetchDueWebhookDeliveries(context.Background(), 10)
    if err != nil { t.Fatalf("fetch due: %v", err) }
    if len(due) != 1 || due[0].EventType != "plan.completed" {
        t.Fatalf("expected one plan.completed delivery, got %+v", due)
    }
}

// sseRecorder is a minimal ResponseWriter that implements http.Flusher
// and captures writes for SSE tests.
type sseRecorder struct {
    hdr  http.Header
    buf  bytes.Buffer
    code int
}

func (r *sseRecorder) Header() http.Header { if r.hdr == nil { r.hdr = http.Header{} }; return r.hdr }
func (r *sseRecorder) WriteHeader(c int) { r.code = c }
func (r *sseRecorder) Write(p []byte) (int, error) { return r.buf.Write(p) }
func (r *sseRecorder) Flush() {}

func TestPlanEventsSSE(t *testing.T) {
    s := newTestServer(t)
    plan := runOptimize(t, s)

    sseReq := httptest.NewRequest(http.MethodGet, "/v1/plans/"+plan.ID+"/events/stream", nil)
    ctx, cancel := context.WithTimeout(context.Background(), time.Second)
    defer cancel()
    sseReq = sseReq.WithContext(ctx)
    sseReq.Header.Set("X-Tenant-Id", "t_test")

    rec := &sseRecorder{}
    done := make(chan struct{})
    go func() {
        s.PlanByIDHandler(rec, sseReq)
        close(done)
    }()

    // Give handler time to subscribe and send the heartbeat
    time.Sleep(50 * time.Millisecond)
    s.Broker.Publish(plan.ID, SSEEvent{Type: "plan.completed", Data: map[string]any{"planId": plan.ID}})

    deadline := time.Now().Add(500 * time.Millisecond)
    for time.Now().Before(deadline) {
        if bytes.Contains(rec.buf.Bytes(), []byte("event: plan.completed")) {
            break
        }
        time.Sleep(10 * time.Millisecond)
    }
    if !bytes.Contains(rec.buf.Bytes(), []byte("event: plan.completed")) {
        t.Fatalf("SSE did not contain expected event. Body: %s", rec.buf.String())
    }
    cancel()
    select {
    case <-done:
    case <-time.After(200 * time.Millisecond):
        t.Fatal("handler did not exit after cancel")
    }
}

func TestVesselsCSVImport(t *testing.T) {
    s := newTestServer(t)
    csv := strings.Join([]string{
        "name,openPort,dwt,dailyHire,ecoBallastKnots,ecoLadenKnots,warrantedBallastKnots,warrantedLadenKnots",
        "Coral Trader,Santos,180000,18000,14,13.5,12,12",
    }, "\n")
    rr := httptest.NewRecorder()
    req := httptest.NewRequest(http.MethodPost, "/v1/vessels/import", strings.NewReader(csv))
    req.Header.Set("Content-Type", "text/csv")
    req.Header.Set("X-Tenant-Id", "t_test")
    s.VesselsImportHandler(rr, req)
    if rr.Code != 200 { t.Fatalf("import: %d body=%s", rr.Code, rr.Body.String()) }
    var res struct{ Count int `json:"count"` }
    if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil { t.Fatalf("decode: %v", err) }
    if res.Count != 1 { t.Fatalf("expected count 1, got %d", res.Count) }
}
