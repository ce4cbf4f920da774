package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"
)

// KeyState is the credential the access layer is currently using.
type KeyState int

const (
	// StateUnavailable means no key is configured; every call fails fast.
	StateUnavailable KeyState = iota
	// StatePrimary uses the primary key.
	StatePrimary
	// StateSecondary uses the secondary key. It is terminal for the process.
	StateSecondary
)

func (s KeyState) String() string {
	switch s {
	case StatePrimary:
		return "primary"
	case StateSecondary:
		return "secondary"
	default:
		return "unavailable"
	}
}

// Credentials are the API keys available to the process.
type Credentials struct {
	Primary   string
	Secondary string
}

// BackendFactory builds a Backend for one API key.
type BackendFactory func(ctx context.Context, apiKey string) (Backend, error)

// Invoker runs a unit of work against the current Backend.
type Invoker interface {
	Do(ctx context.Context, call func(ctx context.Context, b Backend) error) error
}

// AccessLayer wraps every backend call with quota failover: a 403 on the
// primary key switches the whole process to the secondary key and the failed
// call is retried once. The switch never reverts.
type AccessLayer struct {
	creds   Credentials
	factory BackendFactory
	limiter *rate.Limiter
	logger  *slog.Logger

	mu      sync.Mutex
	state   KeyState
	backend Backend
}

var _ Invoker = (*AccessLayer)(nil)

// AccessOption configures an AccessLayer.
type AccessOption func(*AccessLayer)

// WithRateLimit paces calls to rps requests per second. rps <= 0 disables
// pacing.
func WithRateLimit(rps float64, burst int) AccessOption {
	return func(a *AccessLayer) {
		if rps <= 0 {
			a.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used for failover events.
func WithLogger(logger *slog.Logger) AccessOption {
	return func(a *AccessLayer) { a.logger = logger }
}

// NewAccessLayer picks the initial key and builds its client. With no keys the
// layer is returned in StateUnavailable and every Do fails with
// ErrNoCredentials.
func NewAccessLayer(ctx context.Context, creds Credentials, factory BackendFactory, opts ...AccessOption) (*AccessLayer, error) {
	if factory == nil {
		factory = DataAPIFactory()
	}
	a := &AccessLayer{
		creds:   creds,
		factory: factory,
		limiter: rate.NewLimiter(rate.Inf, 0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	var key string
	switch {
	case creds.Primary != "":
		a.state, key = StatePrimary, creds.Primary
	case creds.Secondary != "":
		a.state, key = StateSecondary, creds.Secondary
	default:
		a.state = StateUnavailable
		return a, nil
	}

	backend, err := factory(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("build %s client: %w", a.state, err)
	}
	a.backend = backend
	return a, nil
}

// State returns the credential currently in use.
func (a *AccessLayer) State() KeyState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Available reports whether any credential is configured.
func (a *AccessLayer) Available() bool {
	return a.State() != StateUnavailable
}

// Do runs call against the current backend, failing over to the secondary
// key once on a 403 from the primary.
func (a *AccessLayer) Do(ctx context.Context, call func(ctx context.Context, b Backend) error) error {
	a.mu.Lock()
	state, backend := a.state, a.backend
	a.mu.Unlock()

	if state == StateUnavailable {
		return ErrNoCredentials
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	err := call(ctx, backend)
	if err == nil || state != StatePrimary || a.creds.Secondary == "" || !IsQuotaExceeded(err) {
		return err
	}

	secondary, ferr := a.failover(ctx)
	if ferr != nil {
		return fmt.Errorf("%w (failover: %v)", err, ferr)
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	return call(ctx, secondary)
}

// failover switches to the secondary key. Concurrent callers that observed
// the primary all end up with the one secondary client built by the first.
func (a *AccessLayer) failover(ctx context.Context) (Backend, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateSecondary {
		return a.backend, nil
	}

	backend, err := a.factory(ctx, a.creds.Secondary)
	if err != nil {
		return nil, err
	}
	a.state = StateSecondary
	a.backend = backend
	a.logger.Warn("youtube: primary API key rejected, switched to secondary key")
	return backend, nil
}
