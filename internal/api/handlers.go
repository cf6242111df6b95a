package api

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "fleetnav/internal/ingest"
    "fleetnav/internal/metrics"
    "fleetnav/internal/model"
    "fleetnav/internal/opt"
)

// VesselsHandler handles POST/GET /v1/vessels. POST replaces the tenant's
// whole fleet; datasets are small enough that partial updates buy nothing.
func (s *Server) VesselsHandler(w http.ResponseWriter, r *http.Request) {
    p := s.getPrincipal(r)
    switch r.Method {
    case http.MethodPost:
        if !p.CanPlan() { writeProblem(w, 403, "Forbidden", "dispatcher or admin required", r.URL.Path); return }
        var req struct {
            TenantID string           `json:"tenantId"`
            Vessels  []model.VesselIn `json:"vessels"`
        }
        if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if req.TenantID == "" { req.TenantID = p.Tenant }
        if _, err := toVessels(req.Vessels); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid vessels", err.Error(), r.URL.Path)
            return
        }
        n, err := s.Store.ReplaceVessels(r.Context(), req.TenantID, req.Vessels)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "Replace vessels failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]int{"count": n})
    case http.MethodGet:
        items, err := s.Store.ListVessels(r.Context(), p.Tenant)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List vessels failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]any{"items": items})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// CargosHandler handles POST/GET /v1/cargos.
func (s *Server) CargosHandler(w http.ResponseWriter, r *http.Request) {
    p := s.getPrincipal(r)
    switch r.Method {
    case http.MethodPost:
        if !p.CanPlan() { writeProblem(w, 403, "Forbidden", "dispatcher or admin required", r.URL.Path); return }
        var req struct {
            TenantID string          `json:"tenantId"`
            Cargos   []model.CargoIn `json:"cargos"`
        }
        if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if req.TenantID == "" { req.TenantID = p.Tenant }
        if _, err := toCargos(req.Cargos); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid cargos", err.Error(), r.URL.Path)
            return
        }
        n, err := s.Store.ReplaceCargos(r.Context(), req.TenantID, req.Cargos)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "Replace cargos failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]int{"count": n})
    case http.MethodGet:
        items, err := s.Store.ListCargos(r.Context(), p.Tenant)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List cargos failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]any{"items": items})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// VesselsImportHandler handles POST /v1/vessels/import with a text/csv body.
func (s *Server) VesselsImportHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { w.WriteHeader(http.StatusMethodNotAllowed); return }
    p := s.getPrincipal(r)
    if !p.CanPlan() { writeProblem(w, 403, "Forbidden", "dispatcher or admin required", r.URL.Path); return }
    vessels, err := ingest.Vessels(r.Body)
    if err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid CSV", err.Error(), r.URL.Path)
        return
    }
    if _, err := toVessels(vessels); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid vessels", err.Error(), r.URL.Path)
        return
    }
    n, err := s.Store.ReplaceVessels(r.Context(), p.Tenant, vessels)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "Replace vessels failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// CargosImportHandler handles POST /v1/cargos/import with a text/csv body.
func (s *Server) CargosImportHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { w.WriteHeader(http.StatusMethodNotAllowed); return }
    p := s.getPrincipal(r)
    if !p.CanPlan() { writeProblem(w, 403, "Forbidden", "dispatcher or admin required", r.URL.Path); return }
    cargos, err := ingest.Cargos(r.Body)
    if err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid CSV", err.Error(), r.URL.Path)
        return
    }
    if _, err := toCargos(cargos); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid cargos", err.Error(), r.URL.Path)
        return
    }
    n, err := s.Store.ReplaceCargos(r.Context(), p.Tenant, cargos)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "Replace cargos failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// OptimizeHandler handles POST /v1/optimize: run the pair search and the
// assignment solver over the request's (or stored) datasets and persist the
// resulting plan.
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    p := s.getPrincipal(r)
    if !p.CanPlan() { writeProblem(w, 403, "Forbidden", "dispatcher or admin required", r.URL.Path); return }
    if s.Limiter != nil && !s.Limiter.Allow() {
        writeProblem(w, http.StatusTooManyRequests, "Rate limited", "optimization runs throttled", r.URL.Path)
        return
    }
    var req model.OptimizeRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    if req.TenantID == "" { req.TenantID = p.Tenant }

    vesselIns := req.Vessels
    if len(vesselIns) == 0 {
        var err error
        vesselIns, err = s.Store.ListVessels(r.Context(), req.TenantID)
        if err != nil { writeProblem(w, 500, "Load vessels failed", err.Error(), r.URL.Path); return }
    }
    cargoIns := req.Cargos
    if len(cargoIns) == 0 {
        var err error
        cargoIns, err = s.Store.ListCargos(r.Context(), req.TenantID)
        if err != nil { writeProblem(w, 500, "Load cargos failed", err.Error(), r.URL.Path); return }
    }
    if len(vesselIns) == 0 || len(cargoIns) == 0 {
        writeProblem(w, http.StatusBadRequest, "Empty dataset", "vessels and cargos required, inline or stored", r.URL.Path)
        return
    }
    vessels, err := toVessels(vesselIns)
    if err != nil { writeProblem(w, http.StatusBadRequest, "Invalid vessels", err.Error(), r.URL.Path); return }
    cargos, err := toCargos(cargoIns)
    if err != nil { writeProblem(w, http.StatusBadRequest, "Invalid cargos", err.Error(), r.URL.Path); return }

    refDate := time.Now().UTC()
    if req.ReferenceDate != "" {
        refDate, err = parseDate(req.ReferenceDate)
        if err != nil { writeProblem(w, http.StatusBadRequest, "Invalid referenceDate", err.Error(), r.URL.Path); return }
    }
    costsIn := req.Costs
    if costsIn == nil {
        costsIn, _ = s.Store.GetCostsConfig(r.Context(), req.TenantID)
    }
    costs := toCosts(costsIn)

    start := time.Now()
    pairs, stats := opt.BuildPairMatrix(vessels, cargos, s.Distance.Distance, costs, refDate)
    assignment := opt.SolveAssignment(vessels, cargos, pairs)
    report := opt.RenderReport(vessels, cargos, assignment, stats)
    elapsed := time.Since(start)

    metrics.PlanRuns.WithLabelValues("ok").Inc()
    metrics.PlanDuration.Observe(elapsed.Seconds())
    metrics.PairsEvaluated.Add(float64(stats.Evaluated))
    metrics.PairsExcluded.WithLabelValues(opt.SkipFreight.String()).Add(float64(stats.SkippedFreight))
    metrics.PairsExcluded.WithLabelValues(opt.SkipLaycanMissing.String()).Add(float64(stats.SkippedLaycanMissing))
    metrics.PairsExcluded.WithLabelValues(opt.SkipLaycanMissed.String()).Add(float64(stats.SkippedLaycanMissed))
    metrics.PairsExcluded.WithLabelValues(opt.SkipNoQuantity.String()).Add(float64(stats.SkippedNoQuantity))

    plan := model.PlanOut{
        TenantID:    req.TenantID,
        Matches:     make([]model.PairOut, 0, len(assignment.Matches)),
        TotalProfit: assignment.TotalProfit,
        Stats:       statsOut(stats),
        Report:      report,
        DurationMs:  elapsed.Milliseconds(),
    }
    for _, m := range assignment.Matches {
        plan.Matches = append(plan.Matches, pairOut(m.Pair))
    }
    for _, i := range assignment.UnassignedVessels {
        plan.UnassignedVessels = append(plan.UnassignedVessels, vessels[i].Name)
    }
    for _, j := range assignment.UnusedCargos {
        plan.UnusedCargos = append(plan.UnusedCargos, cargos[j].Name)
    }
    plan, err = s.Store.CreatePlan(r.Context(), plan)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "Persist plan failed", err.Error(), r.URL.Path)
        return
    }

    evtData := map[string]any{
        "planId":      plan.ID,
        "totalProfit": plan.TotalProfit,
        "matches":     len(plan.Matches),
        "unassigned":  len(plan.UnassignedVessels),
    }
    s.Pub.Emit(r.Context(), req.TenantID, "plan.completed", evtData)
    evt := SSEEvent{Type: "plan.completed", Data: evtData}
    s.Broker.Publish(req.TenantID, evt)
    s.Broker.Publish(plan.ID, evt)

    writeJSON(w, http.StatusOK, plan)
}

// PairHandler handles POST /v1/pair: the single-pair what-if evaluation,
// without the fleet solver or persistence.
func (s *Server) PairHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    var req model.PairRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    v, err := toVessel(req.Vessel)
    if err != nil { writeProblem(w, http.StatusBadRequest, "Invalid vessel", err.Error(), r.URL.Path); return }
    c, err := toCargo(req.Cargo)
    if err != nil { writeProblem(w, http.StatusBadRequest, "Invalid cargo", err.Error(), r.URL.Path); return }
    refDate := time.Now().UTC()
    if req.ReferenceDate != "" {
        refDate, err = parseDate(req.ReferenceDate)
        if err != nil { writeProblem(w, http.StatusBadRequest, "Invalid referenceDate", err.Error(), r.URL.Path); return }
    }
    costs := toCosts(req.Costs)
    d := opt.PairDistances(v, c, s.Distance.Distance)
    pr, skip := opt.SearchBestPair(v, c, d, costs, refDate)
    if pr == nil {
        writeJSON(w, http.StatusOK, map[string]any{"feasible": false, "skipReason": skip.String()})
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"feasible": true, "pair": pairOut(pr)})
}

// PlansHandler handles GET /v1/plans.
func (s *Server) PlansHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    p := s.getPrincipal(r)
    cursor := r.URL.Query().Get("cursor")
    limit := 100
    if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
    items, next, err := s.Store.ListPlans(r.Context(), p.Tenant, cursor, limit)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List plans failed", err.Error(), r.URL.Path)
        return
    }
    // list view drops the report body
    for i := range items { items[i].Report = "" }
    writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// PlanByIDHandler handles GET /v1/plans/{id}, /v1/plans/{id}/report and the
// SSE stream /v1/plans/{id}/events/stream.
func (s *Server) PlanByIDHandler(w http.ResponseWriter, r *http.Request) {
    path := r.URL.Path
    rest := strings.TrimPrefix(path, "/v1/plans/")
    if rest == path || rest == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", path)
        return
    }
    parts := strings.Split(rest, "/")
    id := parts[0]
    p := s.getPrincipal(r)
    if len(parts) > 2 && parts[1] == "events" && parts[2] == "stream" {
        if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
        s.streamPlanEvents(w, r, id)
        return
    }
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    plan, err := s.Store.GetPlan(r.Context(), p.Tenant, id)
    if err != nil {
        writeStoreErr(w, err, "Get plan failed", r.URL.Path)
        return
    }
    if len(parts) > 1 && parts[1] == "report" {
        w.Header().Set("Content-Type", "text/plain; charset=utf-8")
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte(plan.Report))
        return
    }
    writeJSON(w, http.StatusOK, plan)
}

func (s *Server) streamPlanEvents(w http.ResponseWriter, r *http.Request, topic string) {
    flusher, ok := w.(http.Flusher)
    if !ok { writeProblem(w, 500, "Streaming unsupported", "", r.URL.Path); return }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("Connection", "keep-alive")
    ch := s.Broker.Subscribe(topic)
    defer s.Broker.Unsubscribe(topic, ch)
    heartbeat := func() {
        fmt.Fprintf(w, "event: heartbeat\n")
        fmt.Fprintf(w, "data: {\"topic\":%q,\"ts\":%q}\n\n", topic, time.Now().Format(time.RFC3339))
        flusher.Flush()
    }
    heartbeat()
    notify := r.Context().Done()
    for {
        select {
        case <-notify:
            return
        case evt := <-ch:
            b, _ := json.Marshal(evt.Data)
            fmt.Fprintf(w, "event: %s\n", evt.Type)
            fmt.Fprintf(w, "data: %s\n\n", string(b))
            flusher.Flush()
        case <-time.After(15 * time.Second):
            heartbeat()
        }
    }
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
    p := s.getPrincipal(r)
    switch r.Method {
    case http.MethodPost:
        if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
        var req model.SubscriptionRequest
        if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if req.TenantID == "" { req.TenantID = p.Tenant }
        if req.URL == "" || len(req.Events) == 0 {
            writeProblem(w, http.StatusBadRequest, "Invalid subscription", "url and events required", r.URL.Path)
            return
        }
        sub, err := s.Store.CreateSubscription(r.Context(), req)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusCreated, sub)
    case http.MethodGet:
        if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
        cursor := r.URL.Query().Get("cursor")
        limit := 100
        if v := r.URL.Query().Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
        items, next, err := s.Store.ListSubscriptions(r.Context(), p.Tenant, cursor, limit)
        if err != nil { writeProblem(w, 500, "List subscriptions failed", err.Error(), r.URL.Path); return }
        writeJSON(w, 200, map[string]any{"items": items, "nextCursor": next})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// Subscription delete (admin)
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
    if !strings.HasPrefix(r.URL.Path, "/v1/subscriptions/") { writeProblem(w, 404, "Not Found", "", r.URL.Path); return }
    if r.Method != http.MethodDelete { w.WriteHeader(405); return }
    p := s.getPrincipal(r)
    if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
    id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
    if err := s.Store.DeleteSubscription(r.Context(), p.Tenant, id); err != nil {
        writeStoreErr(w, err, "Delete subscription failed", r.URL.Path)
        return
    }
    w.WriteHeader(204)
}

// CostsConfigHandler handles GET/PUT /v1/admin/costs: the tenant's standing
// bunker price and overhead overrides.
func (s *Server) CostsConfigHandler(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/v1/admin/costs" { writeProblem(w, 404, "Not Found", "", r.URL.Path); return }
    p := s.getPrincipal(r)
    if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
    switch r.Method {
    case http.MethodGet:
        cfg, err := s.Store.GetCostsConfig(r.Context(), p.Tenant)
        if err != nil { writeProblem(w, 500, "Get costs failed", err.Error(), r.URL.Path); return }
        if cfg == nil { cfg = &model.CostsIn{} }
        writeJSON(w, 200, map[string]any{"config": cfg, "effective": toCosts(cfg)})
    case http.MethodPut:
        var body struct{ Config *model.CostsIn `json:"config"` }
        if err := json.NewDecoder(r.Body).Decode(&body); err != nil { writeProblem(w, 400, "Invalid JSON", err.Error(), r.URL.Path); return }
        if body.Config == nil { writeProblem(w, 400, "Missing config", "", r.URL.Path); return }
        if err := s.Store.SaveCostsConfig(r.Context(), p.Tenant, *body.Config); err != nil { writeProblem(w, 500, "Save failed", err.Error(), r.URL.Path); return }
        writeJSON(w, 200, map[string]bool{"ok": true})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// Health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
    // Check DB connectivity when using Postgres store
    type pinger interface{ Ping(ctx context.Context) error }
    if pg, ok := s.Store.(pinger); ok {
        ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
        defer cancel()
        if err := pg.Ping(ctx); err != nil { writeProblem(w, 503, "Not Ready", err.Error(), r.URL.Path); return }
    }
    writeJSON(w, 200, map[string]string{"status": "ready"})
}

func pairOut(pr *opt.PairResult) model.PairOut {
    return model.PairOut{
        Vessel:       pr.Vessel,
        Cargo:        pr.Cargo,
        Quantity:     pr.Quantity,
        BallastBlend: pr.Blend.Ballast,
        LadenBlend:   pr.Blend.Laden,
        BallastLeg:   model.LegOut{Nm: pr.Distances.BallastNm, Source: opt.Provenance(pr.Distances.BallastExact)},
        LadenLeg:     model.LegOut{Nm: pr.Distances.LadenNm, Source: opt.Provenance(pr.Distances.LadenExact)},
        ETA:          pr.Laycan.ETA.UTC().Format(time.RFC3339),
        LaycanStatus: pr.Laycan.Status.String(),
        WaitingDays:  pr.Laycan.WaitingDays,
        WaitingCost:  pr.WaitingCost,
        TotalDays:    pr.Voyage.TotalDays,
        Profit:       pr.Voyage.Profit,
        AdjustedProfit: pr.AdjustedProfit,
        TCE:          pr.Voyage.TCE,
        Combinations: pr.Combinations,
    }
}

func statsOut(st opt.SearchStats) model.StatsOut {
    return model.StatsOut{
        Pairs:                st.Pairs,
        Evaluated:            st.Evaluated,
        Combinations:         st.Combinations,
        SkippedFreight:       st.SkippedFreight,
        SkippedLaycanMissing: st.SkippedLaycanMissing,
        SkippedLaycanMissed:  st.SkippedLaycanMissed,
        SkippedNoQuantity:    st.SkippedNoQuantity,
    }
}
