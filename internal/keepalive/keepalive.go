// Package keepalive periodically calls a cheap authenticated endpoint so that the session is
// refreshed while nobody is using it instead of expiring unnoticed.
package keepalive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/coursehub/coursehub-gateway/internal/config"
	"github.com/coursehub/coursehub-gateway/internal/gateway"
)

type Gateway interface {
	Do(ctx context.Context, req gateway.Request) (*gateway.Response, error)
	HasCredential() bool
}

type Keepalive struct {
	interval time.Duration
	path     string
	gateway  Gateway
}

func (k *Keepalive) GetScheduler() (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)

	pingTask := func(job gocron.Job) {
		err := k.ping(job.Context())
		if err != nil {
			slog.Error("KEEPALIVE", "message", "ping failed", "path", k.path, "error", err)
		}
	}

	_, err := s.Every(k.interval).
		WaitForSchedule().
		DoWithJobDetails(pingTask)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ping does nothing without a credential, there is no session to keep alive
func (k *Keepalive) ping(ctx context.Context) error {
	if !k.gateway.HasCredential() {
		slog.Debug("KEEPALIVE", "message", "no credential held, skipping")
		return nil
	}
	res, err := k.gateway.Do(ctx, gateway.Request{Method: http.MethodGet, Path: k.path})
	if err != nil {
		return err
	}
	slog.Debug("KEEPALIVE", "message", "session is alive", "status", res.StatusCode)
	return nil
}

type KeepaliveOption func(*Keepalive) error

func WithConfig(keepaliveConfig config.KeepaliveConfig) KeepaliveOption {
	return func(k *Keepalive) error {
		err := keepaliveConfig.Validate()
		if err != nil {
			return err
		}
		k.interval = keepaliveConfig.Interval()
		k.path = keepaliveConfig.Path
		return nil
	}
}

// WithInterval overrides the interval from the configuration
func WithInterval(interval time.Duration) KeepaliveOption {
	return func(k *Keepalive) error {
		if interval <= 0 {
			return fmt.Errorf("the keepalive interval has to be positive")
		}
		k.interval = interval
		return nil
	}
}

func WithGateway(gw Gateway) KeepaliveOption {
	return func(k *Keepalive) error {
		k.gateway = gw
		return nil
	}
}

// NewKeepalive creates a Keepalive that pings the backend through the gateway on a fixed schedule.
func NewKeepalive(options ...KeepaliveOption) (Keepalive, error) {
	k := Keepalive{}
	for _, opt := range options {
		err := opt(&k)
		if err != nil {
			return Keepalive{}, err
		}
	}
	if k.gateway == nil {
		return Keepalive{}, fmt.Errorf("keepalive gateway not initialized")
	}
	if k.interval <= 0 {
		return Keepalive{}, fmt.Errorf("keepalive interval not initialized")
	}
	if k.path == "" {
		return Keepalive{}, fmt.Errorf("keepalive path not initialized")
	}
	return k, nil
}
