package store

import (
    "context"
    "errors"
    "time"

    "fleetnav/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
    // Fleet datasets
    ReplaceVessels(ctx context.Context, tenantID string, vessels []model.VesselIn) (count int, err error)
    ListVessels(ctx context.Context, tenantID string) ([]model.VesselIn, error)
    ReplaceCargos(ctx context.Context, tenantID string, cargos []model.CargoIn) (count int, err error)
    ListCargos(ctx context.Context, tenantID string) ([]model.CargoIn, error)

    // Plans
    CreatePlan(ctx context.Context, plan model.PlanOut) (model.PlanOut, error)
    GetPlan(ctx context.Context, tenantID, planID string) (model.PlanOut, error)
    ListPlans(ctx context.Context, tenantID, cursor string, limit int) ([]model.PlanOut, string, error)

    // Subscriptions
    CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
    GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error)
    ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error)
    DeleteSubscription(ctx context.Context, tenantID, id string) error

    // Webhook deliveries
    EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
    FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
    MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
    FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error

    // Voyage cost config per tenant
    GetCostsConfig(ctx context.Context, tenantID string) (*model.CostsIn, error)
    SaveCostsConfig(ctx context.Context, tenantID string, cfg model.CostsIn) error
}

var ErrNotFound = errors.New("not found")
