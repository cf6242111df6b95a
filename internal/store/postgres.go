package store

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "time"

    "github.com/google/uuid"
    _ "github.com/jackc/pgx/v5/stdlib"

    "fleetnav/internal/model"
)

type Postgres struct {
    db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
    db, err := sql.Open("pgx", dsn)
    if err != nil {
        return nil, err
    }
    if err := db.Ping(); err != nil {
        return nil, err
    }
    p := &Postgres{db: db}
    if err := p.ensureSchema(context.Background()); err != nil {
        return nil, err
    }
    return p, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) ensureSchema(ctx context.Context) error {
    stmts := []string{
        `CREATE TABLE IF NOT EXISTS fleets (
            tenant_id TEXT PRIMARY KEY,
            vessels   JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
        `CREATE TABLE IF NOT EXISTS cargo_books (
            tenant_id TEXT PRIMARY KEY,
            cargos    JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
        `CREATE TABLE IF NOT EXISTS plans (
            id         UUID PRIMARY KEY,
            tenant_id  TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            payload    JSONB NOT NULL
        )`,
        `CREATE INDEX IF NOT EXISTS plans_tenant_created_idx ON plans (tenant_id, created_at DESC)`,
        `CREATE TABLE IF NOT EXISTS subscriptions (
            id        UUID PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            url       TEXT NOT NULL,
            events    JSONB NOT NULL,
            secret    TEXT NOT NULL DEFAULT ''
        )`,
        `CREATE TABLE IF NOT EXISTS webhook_deliveries (
            id              UUID PRIMARY KEY,
            tenant_id       TEXT NOT NULL,
            subscription_id UUID NOT NULL,
            event_type      TEXT NOT NULL,
            url             TEXT NOT NULL,
            secret          TEXT NOT NULL DEFAULT '',
            payload         BYTEA NOT NULL,
            status          TEXT NOT NULL DEFAULT 'pending',
            attempts        INT NOT NULL DEFAULT 0,
            next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            last_error      TEXT NOT NULL DEFAULT '',
            response_code   INT NOT NULL DEFAULT 0,
            latency_ms      INT NOT NULL DEFAULT 0
        )`,
        `CREATE INDEX IF NOT EXISTS webhook_deliveries_due_idx ON webhook_deliveries (status, next_attempt_at)`,
        `CREATE TABLE IF NOT EXISTS costs_config (
            tenant_id TEXT PRIMARY KEY,
            cfg       JSONB NOT NULL
        )`,
    }
    for _, s := range stmts {
        if _, err := p.db.ExecContext(ctx, s); err != nil {
            return err
        }
    }
    return nil
}

func (p *Postgres) ReplaceVessels(ctx context.Context, tenantID string, vessels []model.VesselIn) (int, error) {
    b, err := json.Marshal(vessels)
    if err != nil { return 0, err }
    _, err = p.db.ExecContext(ctx, `INSERT INTO fleets (tenant_id, vessels, updated_at) VALUES ($1,$2,now())
        ON CONFLICT (tenant_id) DO UPDATE SET vessels=EXCLUDED.vessels, updated_at=now()`, tenantID, b)
    if err != nil { return 0, err }
    return len(vessels), nil
}

func (p *Postgres) ListVessels(ctx context.Context, tenantID string) ([]model.VesselIn, error) {
    var b []byte
    err := p.db.QueryRowContext(ctx, `SELECT vessels FROM fleets WHERE tenant_id=$1`, tenantID).Scan(&b)
    if errors.Is(err, sql.ErrNoRows) { return []model.VesselIn{}, nil }
    if err != nil { return nil, err }
    var out []model.VesselIn
    if err := json.Unmarshal(b, &out); err != nil { return nil, err }
    return out, nil
}

func (p *Postgres) ReplaceCargos(ctx context.Context, tenantID string, cargos []model.CargoIn) (int, error) {
    b, err := json.Marshal(cargos)
    if err != nil { return 0, err }
    _, err = p.db.ExecContext(ctx, `INSERT INTO cargo_books (tenant_id, cargos, updated_at) VALUES ($1,$2,now())
        ON CONFLICT (tenant_id) DO UPDATE SET cargos=EXCLUDED.cargos, updated_at=now()`, tenantID, b)
    if err != nil { return 0, err }
    return len(cargos), nil
}

func (p *Postgres) ListCargos(ctx context.Context, tenantID string) ([]model.CargoIn, error) {
    var b []byte
    err := p.db.QueryRowContext(ctx, `SELECT cargos FROM cargo_books WHERE tenant_id=$1`, tenantID).Scan(&b)
    if errors.Is(err, sql.ErrNoRows) { return []model.CargoIn{}, nil }
    if err != nil { return nil, err }
    var out []model.CargoIn
    if err := json.Unmarshal(b, &out); err != nil { return nil, err }
    return out, nil
}

func (p *Postgres) CreatePlan(ctx context.Context, plan model.PlanOut) (model.PlanOut, error) {
    if plan.ID == "" { plan.ID = uuid.New().String() }
    if plan.CreatedAt.IsZero() { plan.CreatedAt = time.Now().UTC() }
    b, err := json.Marshal(plan)
    if err != nil { return model.PlanOut{}, err }
    _, err = p.db.ExecContext(ctx, `INSERT INTO plans (id, tenant_id, created_at, payload) VALUES ($1,$2,$3,$4)`,
        plan.ID, plan.TenantID, plan.CreatedAt, b)
    if err != nil { return model.PlanOut{}, err }
    return plan, nil
}

func (p *Postgres) GetPlan(ctx context.Context, tenantID, planID string) (model.PlanOut, error) {
    var b []byte
    err := p.db.QueryRowContext(ctx, `SELECT payload FROM plans WHERE tenant_id=$1 AND id=$2`, tenantID, planID).Scan(&b)
    if errors.Is(err, sql.ErrNoRows) { return model.PlanOut{}, ErrNotFound }
    if err != nil { return model.PlanOut{}, err }
    var plan model.PlanOut
    if err := json.Unmarshal(b, &plan); err != nil { return model.PlanOut{}, err }
    return plan, nil
}

func (p *Postgres) ListPlans(ctx context.Context, tenantID, cursor string, limit int) ([]model.PlanOut, string, error) {
    if limit <= 0 || limit > 500 { limit = 100 }
    var rows *sql.Rows
    var err error
    if cursor != "" {
        rows, err = p.db.QueryContext(ctx, `SELECT payload FROM plans WHERE tenant_id=$1
            AND created_at < (SELECT created_at FROM plans WHERE id=$2)
            ORDER BY created_at DESC LIMIT $3`, tenantID, cursor, limit)
    } else {
        rows, err = p.db.QueryContext(ctx, `SELECT payload FROM plans WHERE tenant_id=$1 ORDER BY created_at DESC LIMIT $2`, tenantID, limit)
    }
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []model.PlanOut{}
    var last string
    for rows.Next() {
        var b []byte
        if err := rows.Scan(&b); err != nil { return nil, "", err }
        var plan model.PlanOut
        if err := json.Unmarshal(b, &plan); err != nil { return nil, "", err }
        out = append(out, plan)
        last = plan.ID
    }
    var next string
    if len(out) == limit { next = last }
    return out, next, nil
}

func (p *Postgres) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
    id := uuid.New().String()
    ev, err := json.Marshal(req.Events)
    if err != nil { return model.Subscription{}, err }
    _, err = p.db.ExecContext(ctx, `INSERT INTO subscriptions (id, tenant_id, url, events, secret) VALUES ($1,$2,$3,$4,$5)`,
        id, req.TenantID, req.URL, ev, req.Secret)
    if err != nil { return model.Subscription{}, err }
    return model.Subscription{ID: id, TenantID: req.TenantID, URL: req.URL, Events: req.Events, Secret: req.Secret}, nil
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
    rows, err := p.db.QueryContext(ctx, `SELECT id::text, url, events, secret FROM subscriptions WHERE tenant_id=$1 AND events ? $2`, tenantID, eventType)
    if err != nil { return nil, err }
    defer rows.Close()
    var out []model.Subscription
    for rows.Next() {
        s := model.Subscription{TenantID: tenantID}
        var ev []byte
        if err := rows.Scan(&s.ID, &s.URL, &ev, &s.Secret); err != nil { return nil, err }
        if err := json.Unmarshal(ev, &s.Events); err != nil { return nil, err }
        out = append(out, s)
    }
    return out, nil
}

func (p *Postgres) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
    if limit <= 0 || limit > 500 { limit = 100 }
    var rows *sql.Rows
    var err error
    if cursor != "" {
        rows, err = p.db.QueryContext(ctx, `SELECT id::text, url, events, secret FROM subscriptions WHERE tenant_id=$1 AND id::text > $2 ORDER BY id LIMIT $3`, tenantID, cursor, limit)
    } else {
        rows, err = p.db.QueryContext(ctx, `SELECT id::text, url, events, secret FROM subscriptions WHERE tenant_id=$1 ORDER BY id LIMIT $2`, tenantID, limit)
    }
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []model.Subscription{}
    var last string
    for rows.Next() {
        s := model.Subscription{TenantID: tenantID}
        var ev []byte
        if err := rows.Scan(&s.ID, &s.URL, &ev, &s.Secret); err != nil { return nil, "", err }
        if err := json.Unmarshal(ev, &s.Events); err != nil { return nil, "", err }
        out = append(out, s)
        last = s.ID
    }
    var next string
    if len(out) == limit { next = last }
    return out, next, nil
}

func (p *Postgres) DeleteSubscription(ctx context.Context, tenantID, id string) error {
    res, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE tenant_id=$1 AND id=$2`, tenantID, id)
    if err != nil { return err }
    if n, _ := res.RowsAffected(); n == 0 { return ErrNotFound }
    return nil
}

func (p *Postgres) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
    id := uuid.New().String()
    _, err := p.db.ExecContext(ctx, `INSERT INTO webhook_deliveries (id, tenant_id, subscription_id, event_type, url, secret, payload) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
        id, tenantID, subscriptionID, eventType, url, secret, payload)
    if err != nil { return "", err }
    return id, nil
}

func (p *Postgres) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
    if limit <= 0 { limit = 50 }
    rows, err := p.db.QueryContext(ctx, `SELECT id::text, tenant_id, subscription_id::text, event_type, url, secret, payload, status, attempts, next_attempt_at, last_error
        FROM webhook_deliveries WHERE status IN ('pending','retry') AND next_attempt_at <= now() ORDER BY next_attempt_at LIMIT $1`, limit)
    if err != nil { return nil, err }
    defer rows.Close()
    out := []WebhookDelivery{}
    for rows.Next() {
        var d WebhookDelivery
        if err := rows.Scan(&d.ID, &d.TenantID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status, &d.Attempts, &d.NextAttemptAt, &d.LastError); err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, nil
}

func (p *Postgres) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
    if success {
        _, err := p.db.ExecContext(ctx, `UPDATE webhook_deliveries SET status='delivered', attempts=attempts+1, response_code=$1, latency_ms=$2 WHERE id=$3`,
            responseCode, latencyMs, id)
        return err
    }
    next := time.Now().Add(1 * time.Minute)
    if nextAttemptAt != nil { next = *nextAttemptAt }
    _, err := p.db.ExecContext(ctx, `UPDATE webhook_deliveries SET status='retry', attempts=attempts+1, next_attempt_at=$1, last_error=$2, response_code=$3, latency_ms=$4 WHERE id=$5`,
        next, lastError, responseCode, latencyMs, id)
    return err
}

func (p *Postgres) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
    _, err := p.db.ExecContext(ctx, `UPDATE webhook_deliveries SET status='failed', last_error=$1, response_code=$2, latency_ms=$3 WHERE id=$4`,
        lastError, responseCode, latencyMs, id)
    return err
}

func (p *Postgres) GetCostsConfig(ctx context.Context, tenantID string) (*model.CostsIn, error) {
    var b []byte
    err := p.db.QueryRowContext(ctx, `SELECT cfg FROM costs_config WHERE tenant_id=$1`, tenantID).Scan(&b)
    if errors.Is(err, sql.ErrNoRows) { return nil, nil }
    if err != nil { return nil, err }
    var cfg model.CostsIn
    if err := json.Unmarshal(b, &cfg); err != nil { return nil, err }
    return &cfg, nil
}

func (p *Postgres) SaveCostsConfig(ctx context.Context, tenantID string, cfg model.CostsIn) error {
    b, err := json.Marshal(cfg)
    if err != nil { return err }
    _, err = p.db.ExecContext(ctx, `INSERT INTO costs_config (tenant_id, cfg) VALUES ($1,$2)
        ON CONFLICT (tenant_id) DO UPDATE SET cfg=EXCLUDED.cfg`, tenantID, b)
    return err
}
