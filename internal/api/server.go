package api

import (
    "os"
    "strconv"
    "strings"

    "golang.org/x/time/rate"

    "fleetnav/internal/auth"
    "fleetnav/internal/distance"
    "fleetnav/internal/store"
    "fleetnav/internal/webhooks"
)

type Server struct {
    Store    store.Store
    Pub      *webhooks.Publisher
    Auth     *auth.Verifier
    Broker   EventBroker
    Distance distance.Provider
    // Limiter throttles optimization runs across all tenants.
    Limiter *rate.Limiter
}

// NewServer creates a Server. If DATABASE_URL is unset, uses in-memory store.
// DISTANCE_TABLE points at a YAML port-distance table; unset uses the
// built-in table.
func NewServer() (*Server, error) {
    dsn := os.Getenv("DATABASE_URL")
    var s store.Store
    if strings.TrimSpace(dsn) == "" {
        s = store.NewMemory()
    } else {
        sp, err := store.NewPostgres(dsn)
        if err != nil {
            return nil, err
        }
        s = sp
    }
    var dist distance.Provider
    if path := os.Getenv("DISTANCE_TABLE"); path != "" {
        t, err := distance.Load(path)
        if err != nil {
            return nil, err
        }
        dist = t
    } else {
        dist = distance.Default()
    }
    // Broker selection
    var broker EventBroker
    if os.Getenv("REDIS_URL") != "" {
        if rb, err := NewRedisBroker(); err == nil { broker = rb } else { broker = NewBroker() }
    } else {
        broker = NewBroker()
    }
    return &Server{
        Store:    s,
        Pub:      webhooks.NewPublisher(s),
        Auth:     auth.NewVerifierFromEnv(),
        Broker:   broker,
        Distance: dist,
        Limiter:  newOptimizeLimiter(),
    }, nil
}

// newOptimizeLimiter builds the run throttle from RATE_RPS/RATE_BURST.
func newOptimizeLimiter() *rate.Limiter {
    rps := 2.0
    burst := 5
    if v := os.Getenv("RATE_RPS"); v != "" {
        if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 { rps = f }
    }
    if v := os.Getenv("RATE_BURST"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 { burst = n }
    }
    return rate.NewLimiter(rate.Limit(rps), burst)
}

// NewWebhookWorker creates a background worker for webhook deliveries.
func (s *Server) NewWebhookWorker() *webhooks.Worker {
    return webhooks.NewWorker(s.Store)
}
