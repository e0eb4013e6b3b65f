package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/leadflowhq/leadflow-backend/pkg/errors"
)

// Policy is one fixed window: at most Max requests per Window.
type Policy struct {
	Window time.Duration
	Max    int
}

func (p Policy) enabled() bool {
	return p.Window > 0 && p.Max > 0
}

// Result advises the boundary layer; the limiter never blocks.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// CounterStore increments the counter for a key, starting a fresh window on
// the first hit. Implementations must be safe for concurrent use.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Limiter applies per-class fixed-window policies keyed by client identity.
type Limiter struct {
	store    CounterStore
	policies map[string]Policy
}

// New builds a limiter over the injected counter store.
func New(store CounterStore) (*Limiter, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "counter store is required")
	}
	return &Limiter{
		store:    store,
		policies: map[string]Policy{},
	}, nil
}

// SetPolicy registers the window for an operation class.
func (l *Limiter) SetPolicy(class string, policy Policy) {
	l.policies[normalizeClass(class)] = policy
}

// Check consumes one request from the (class, client) window. Classes with
// no registered or disabled policy are always allowed.
func (l *Limiter) Check(ctx context.Context, class, client string) (Result, error) {
	policy, ok := l.policies[normalizeClass(class)]
	if !ok || !policy.enabled() {
		return Result{Allowed: true, Limit: policy.Max, Remaining: policy.Max}, nil
	}

	key := fmt.Sprintf("%s:%s", normalizeClass(class), client)
	count, resetAt, err := l.store.Incr(ctx, key, policy.Window)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit counter")
	}

	remaining := policy.Max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= int64(policy.Max),
		Limit:     policy.Max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

func normalizeClass(class string) string {
	return strings.ToLower(strings.TrimSpace(class))
}
