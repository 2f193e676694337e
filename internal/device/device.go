// Package device is the wearable-connection capability used by the
// onboarding wearable scene.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

var (
	ErrUnknownProvider = errors.New("unknown device provider")
	// ErrUnavailable is returned while the breaker is open after repeated
	// connection failures.
	ErrUnavailable = errors.New("device provider temporarily unavailable")
)

type ConnectionResult struct {
	Provider    string    `json:"provider"`
	DeviceName  string    `json:"deviceName"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// Connector links a wearable provider account. A nil result with a nil error
// means the user abandoned the connection.
type Connector interface {
	Connect(ctx context.Context, provider string) (*ConnectionResult, error)
}

// Availability is implemented by connectors that can refuse work up front,
// before a connection attempt is started.
type Availability interface {
	Available() error
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, provider string) (*ConnectionResult, error)

func (f ConnectorFunc) Connect(ctx context.Context, provider string) (*ConnectionResult, error) {
	return f(ctx, provider)
}

// SimulatedConnector accepts a fixed set of providers after a short latency.
// It stands in for the provider OAuth round trip in development.
type SimulatedConnector struct {
	providers []string
	latency   time.Duration
}

func NewSimulatedConnector(providers []string, latency time.Duration) *SimulatedConnector {
	return &SimulatedConnector{providers: providers, latency: latency}
}

func (c *SimulatedConnector) Providers() []string { return slices.Clone(c.providers) }

func (c *SimulatedConnector) Connect(ctx context.Context, provider string) (*ConnectionResult, error) {
	if !slices.Contains(c.providers, provider) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if c.latency > 0 {
		t := time.NewTimer(c.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return &ConnectionResult{
		Provider:    provider,
		DeviceName:  displayName(provider),
		ConnectedAt: time.Now().UTC(),
	}, nil
}

func displayName(provider string) string {
	switch provider {
	case "apple_health":
		return "Apple Health"
	case "garmin":
		return "Garmin"
	case "strava":
		return "Strava"
	case "coros":
		return "COROS"
	}
	return strings.ReplaceAll(provider, "_", " ")
}

type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// Timeout is how long the breaker stays open before allowing a trial call.
	Timeout time.Duration
}

// BreakerConnector guards a Connector with a circuit breaker. There is no
// automatic retry: the user retries from the wearable scene, and the breaker
// stops those retries from hammering a provider that keeps failing.
type BreakerConnector struct {
	next Connector
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerConnector(next Connector, s BreakerSettings, logger *slog.Logger) *BreakerConnector {
	if s.MaxFailures == 0 {
		s.MaxFailures = 3
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "device-connect",
		Timeout: s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// An unknown provider or a cancelled request says nothing about
			// the provider's health.
			return err == nil || errors.Is(err, ErrUnknownProvider) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerConnector{next: next, cb: cb}
}

func (b *BreakerConnector) Connect(ctx context.Context, provider string) (*ConnectionResult, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.Connect(ctx, provider)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, provider)
	}
	if err != nil {
		return nil, err
	}
	out, _ := res.(*ConnectionResult)
	return out, nil
}

func (b *BreakerConnector) State() string { return b.cb.State().String() }

// Available returns ErrUnavailable while the breaker is open.
func (b *BreakerConnector) Available() error {
	if b.cb.State() == gobreaker.StateOpen {
		return ErrUnavailable
	}
	return nil
}
