package store

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/google/uuid"
    "fleetnav/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
    mu      sync.Mutex
    vessels map[string][]model.VesselIn     // tenant -> fleet
    cargos  map[string][]model.CargoIn      // tenant -> cargo book
    plans   map[string]model.PlanOut        // id -> plan
    planTen map[string][]string             // tenant -> plan ids, insertion order
    subs    map[string][]model.Subscription // tenant -> subscriptions
    // Webhooks queue state
    deliveries         map[string]*memDelivery
    deliveriesByTenant map[string][]string
    costs              map[string]model.CostsIn // tenant -> cost overrides
}

func NewMemory() *Memory {
    return &Memory{
        vessels: map[string][]model.VesselIn{},
        cargos: map[string][]model.CargoIn{},
        plans: map[string]model.PlanOut{},
        planTen: map[string][]string{},
        subs: map[string][]model.Subscription{},
        deliveries: map[string]*memDelivery{},
        deliveriesByTenant: map[string][]string{},
        costs: map[string]model.CostsIn{},
    }
}

// memDelivery augments WebhookDelivery with outcome metrics
type memDelivery struct {
    WebhookDelivery
    ResponseCode int
    LatencyMs    int
    DeliveredAt  *time.Time
}

func (m *Memory) ReplaceVessels(ctx context.Context, tenantID string, vessels []model.VesselIn) (int, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    m.vessels[tenantID] = append([]model.VesselIn(nil), vessels...)
    return len(vessels), nil
}

func (m *Memory) ListVessels(ctx context.Context, tenantID string) ([]model.VesselIn, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    return append([]model.VesselIn(nil), m.vessels[tenantID]...), nil
}

func (m *Memory) ReplaceCargos(ctx context.Context, tenantID string, cargos []model.CargoIn) (int, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    m.cargos[tenantID] = append([]model.CargoIn(nil), cargos...)
    return len(cargos), nil
}

func (m *Memory) ListCargos(ctx context.Context, tenantID string) ([]model.CargoIn, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    return append([]model.CargoIn(nil), m.cargos[tenantID]...), nil
}

func (m *Memory) CreatePlan(ctx context.Context, plan model.PlanOut) (model.PlanOut, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    if plan.ID == "" { plan.ID = uuid.New().String() }
    if plan.CreatedAt.IsZero() { plan.CreatedAt = time.Now().UTC() }
    m.plans[plan.ID] = plan
    m.planTen[plan.TenantID] = append(m.planTen[plan.TenantID], plan.ID)
    return plan, nil
}

func (m *Memory) GetPlan(ctx context.Context, tenantID, planID string) (model.PlanOut, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    p, ok := m.plans[planID]
    if !ok || p.TenantID != tenantID { return model.PlanOut{}, ErrNotFound }
    return p, nil
}

func (m *Memory) ListPlans(ctx context.Context, tenantID, cursor string, limit int) ([]model.PlanOut, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    ids := m.planTen[tenantID]
    // newest first
    rev := make([]string, len(ids))
    for i, id := range ids { rev[len(ids)-1-i] = id }
    start := 0
    if cursor != "" {
        for i, id := range rev {
            if id == cursor { start = i + 1; break }
        }
    }
    if limit <= 0 { limit = 100 }
    out := []model.PlanOut{}
    var next string
    for i := start; i < len(rev) && len(out) < limit; i++ {
        out = append(out, m.plans[rev[i]])
        next = rev[i]
    }
    if start+len(out) >= len(rev) { next = "" }
    return out, next, nil
}

func (m *Memory) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    s := model.Subscription{ID: uuid.New().String(), TenantID: req.TenantID, URL: req.URL, Events: req.Events, Secret: req.Secret}
    m.subs[req.TenantID] = append(m.subs[req.TenantID], s)
    return s, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    var out []model.Subscription
    for _, s := range m.subs[tenantID] {
        for _, e := range s.Events { if e == eventType { out = append(out, s); break } }
    }
    return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    list := m.subs[tenantID]
    start := 0
    if cursor != "" {
        for i := range list { if list[i].ID == cursor { start = i+1; break } }
    }
    if limit <= 0 { limit = 100 }
    end := start + limit
    if end > len(list) { end = len(list) }
    items := append([]model.Subscription(nil), list[start:end]...)
    next := ""
    if end < len(list) { next = list[end-1].ID }
    return items, next, nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, tenantID, id string) error {
    m.mu.Lock(); defer m.mu.Unlock()
    arr := m.subs[tenantID]
    out := make([]model.Subscription, 0, len(arr))
    for _, s := range arr { if s.ID != id { out = append(out, s) } }
    m.subs[tenantID] = out
    return nil
}

// Webhook deliveries
func (m *Memory) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    id := uuid.New().String()
    d := &memDelivery{WebhookDelivery: WebhookDelivery{ID: id, TenantID: tenantID, SubscriptionID: subscriptionID, EventType: eventType, URL: url, Secret: secret, Payload: payload, Status: "pending", Attempts: 0, NextAttemptAt: time.Now()}}
    m.deliveries[id] = d
    m.deliveriesByTenant[tenantID] = append(m.deliveriesByTenant[tenantID], id)
    return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    now := time.Now()
    out := []WebhookDelivery{}
    for _, id := range m.iterDeliveryIDs() {
        d := m.deliveries[id]
        if d == nil { continue }
        if (d.Status == "pending" || d.Status == "retry") && !d.NextAttemptAt.After(now) {
            out = append(out, d.WebhookDelivery)
            if limit > 0 && len(out) >= limit { break }
        }
    }
    return out, nil
}

func (m *Memory) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
    m.mu.Lock(); defer m.mu.Unlock()
    d := m.deliveries[id]
    if d == nil { return nil }
    d.Attempts++
    d.ResponseCode = responseCode
    d.LatencyMs = latencyMs
    if success {
        d.Status = "delivered"
        now := time.Now()
        d.DeliveredAt = &now
    } else {
        d.Status = "retry"
        d.LastError = lastError
        if nextAttemptAt != nil { d.NextAttemptAt = *nextAttemptAt } else { d.NextAttemptAt = time.Now().Add(1 * time.Minute) }
    }
    return nil
}

func (m *Memory) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
    m.mu.Lock(); defer m.mu.Unlock()
    d := m.deliveries[id]
    if d != nil {
        d.Status = "failed"
        d.LastError = lastError
        d.ResponseCode = responseCode
        d.LatencyMs = latencyMs
    }
    return nil
}

func (m *Memory) GetCostsConfig(ctx context.Context, tenantID string) (*model.CostsIn, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    if cfg, ok := m.costs[tenantID]; ok {
        c := cfg
        return &c, nil
    }
    return nil, nil
}

func (m *Memory) SaveCostsConfig(ctx context.Context, tenantID string, cfg model.CostsIn) error {
    m.mu.Lock(); defer m.mu.Unlock()
    m.costs[tenantID] = cfg
    return nil
}

// helper: iterate delivery IDs in a stable tenant order
func (m *Memory) iterDeliveryIDs() []string {
    tenants := make([]string, 0, len(m.deliveriesByTenant))
    for t := range m.deliveriesByTenant { tenants = append(tenants, t) }
    sort.Strings(tenants)
    ids := []string{}
    for _, t := range tenants {
        ids = append(ids, m.deliveriesByTenant[t]...)
    }
    return ids
}
