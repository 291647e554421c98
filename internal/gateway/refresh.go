package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
	"github.com/coursehub/coursehub-gateway/internal/models"
)

// waiter is a request suspended until the ongoing refresh settles
type waiter struct {
	result  chan error
	started chan struct{}
	once    sync.Once
}

func newWaiter() *waiter {
	return &waiter{result: make(chan error, 1), started: make(chan struct{})}
}

// markStarted signals that the waiter has handed its replay to the transport or gave up
func (w *waiter) markStarted() {
	w.once.Do(func() { close(w.started) })
}

// recoverUnauthorized handles an unauthorized response to a request that may be retried. It either waits
// for the refresh that is already in flight or performs the refresh itself.
func (g *Gateway) recoverUnauthorized(ctx context.Context, req Request, attached string) (*Response, error) {
	g.lock.Lock()
	current := g.credential.Value
	if current != "" && current != attached {
		// the credential was replaced while this request was in flight
		g.lock.Unlock()
		g.countReplay(replayReasonStale)
		return g.replay(ctx, req, nil)
	}
	if g.refreshing {
		w := newWaiter()
		g.waiters = append(g.waiters, w)
		queueLength := len(g.waiters)
		g.lock.Unlock()
		if g.metrics != nil {
			g.metrics.QueuedRequestsTotal.Inc()
		}
		slog.Debug(
			"GATEWAY",
			"message",
			"waiting for the ongoing refresh",
			"path",
			req.Path,
			"queueLength",
			queueLength,
			"requestID",
			req.RequestID,
		)
		return g.await(ctx, req, w)
	}
	g.refreshing = true
	generation := g.generation
	g.lock.Unlock()

	credential, refreshErr := g.refresh(ctx, req)
	started := make(chan struct{})
	var once sync.Once
	markStarted := func() { once.Do(func() { close(started) }) }
	err := g.settle(ctx, req, generation, credential, refreshErr, started)
	if err != nil {
		return nil, err
	}
	g.countReplay(replayReasonRefreshed)
	return g.replay(ctx, req, markStarted)
}

func (g *Gateway) await(ctx context.Context, req Request, w *waiter) (*Response, error) {
	select {
	case err := <-w.result:
		if err != nil {
			w.markStarted()
			return nil, err
		}
		g.countReplay(replayReasonRefreshed)
		return g.replay(ctx, req, w.markStarted)
	case <-ctx.Done():
		w.markStarted()
		return nil, ctx.Err()
	}
}

// replay sends the request a second time, an unauthorized answer is now final
func (g *Gateway) replay(ctx context.Context, req Request, onStart func()) (*Response, error) {
	res, _, err := g.send(ctx, req, onStart)
	if err != nil {
		return nil, err
	}
	return g.result(req, res)
}

// refresh calls the refresh endpoint, it is never recovered itself. The call is detached from
// the cancellation of the triggering request since every queued request depends on it.
func (g *Gateway) refresh(ctx context.Context, trigger Request) (models.Credential, error) {
	refreshCtx := context.WithoutCancel(ctx)
	if g.refreshTimeout > 0 {
		var cancel context.CancelFunc
		refreshCtx, cancel = context.WithTimeout(refreshCtx, g.refreshTimeout)
		defer cancel()
	}
	slog.Info("GATEWAY", "message", "refreshing the credential", "trigger", trigger.Path, "requestID", trigger.RequestID)
	startedAt := time.Now()
	req := Request{
		Method:          http.MethodPost,
		Path:            g.endpoints.Refresh,
		RequestID:       trigger.RequestID,
		SkipAuthRefresh: true,
	}
	res, _, err := g.send(refreshCtx, req, nil)
	if g.metrics != nil {
		g.metrics.RefreshDuration.Observe(time.Since(startedAt).Seconds())
	}
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %w", gwerrors.ErrRefreshFailed, err)
	}
	if !res.OK() {
		return models.Credential{}, fmt.Errorf("%w: %w", gwerrors.ErrRefreshFailed, newAPIError(req, res))
	}
	var envelope models.Envelope[models.AccessTokenData]
	err = json.Unmarshal(res.Body, &envelope)
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %w: %w", gwerrors.ErrRefreshFailed, gwerrors.ErrInvalidResponse, err)
	}
	if envelope.Data.AccessToken == "" {
		return models.Credential{}, fmt.Errorf(
			"%w: %w: the response has no access token",
			gwerrors.ErrRefreshFailed,
			gwerrors.ErrInvalidResponse,
		)
	}
	return models.NewCredential(envelope.Data.AccessToken, g.jar.snapshot()...), nil
}

// settle ends the refresh cycle: the flag and the queue are cleared together with the credential
// being replaced. The outcome only applies to the session the refresh was started for, a sign in
// or sign out in the meantime takes precedence over it.
func (g *Gateway) settle(
	ctx context.Context,
	trigger Request,
	generation uint64,
	credential models.Credential,
	refreshErr error,
	triggerStarted <-chan struct{},
) error {
	lost, err := g.settleSession(ctx, trigger, generation, credential, refreshErr, triggerStarted)
	if lost && g.sessionLost != nil && cleanPath(trigger.Path) != cleanPath(g.endpoints.Logout) {
		g.sessionLost(ctx, err)
	}
	return err
}

func (g *Gateway) settleSession(
	ctx context.Context,
	trigger Request,
	generation uint64,
	credential models.Credential,
	refreshErr error,
	triggerStarted <-chan struct{},
) (bool, error) {
	g.storeLock.Lock()
	defer g.storeLock.Unlock()
	g.lock.Lock()
	current := g.credential
	superseded := g.generation != generation
	if !superseded {
		g.credential = credential
	}
	waiters := g.waiters
	g.waiters = []*waiter{}
	g.refreshing = false
	g.lock.Unlock()

	switch {
	case superseded:
		return false, g.supersede(current, waiters, triggerStarted)
	case refreshErr != nil:
		return true, g.reject(ctx, trigger, waiters, refreshErr)
	}
	if g.metrics != nil {
		g.metrics.RefreshesTotal.WithLabelValues(refreshOutcomeSuccess).Inc()
	}
	slog.Info("GATEWAY", "message", "the credential was refreshed", "queued", len(waiters))
	_ = g.persist(context.WithoutCancel(ctx), credential)
	release(waiters, nil, triggerStarted)
	return false, nil
}

// supersede drops the outcome of a refresh whose session was replaced or cleared while it was in
// flight. After a sign out every waiter fails, after a new sign in they replay with the new credential.
func (g *Gateway) supersede(current models.Credential, waiters []*waiter, triggerStarted <-chan struct{}) error {
	if g.metrics != nil {
		g.metrics.RefreshesTotal.WithLabelValues(refreshOutcomeSuperseded).Inc()
	}
	// the refresh response may have rotated the cookies of the previous session
	if err := g.jar.reset(); err != nil {
		slog.Error("GATEWAY", "message", "could not reset the session cookies", "error", err)
	}
	if current.Empty() {
		err := fmt.Errorf("%w: the session was cleared while refreshing", gwerrors.ErrSessionLost)
		slog.Info("GATEWAY", "message", "dropped the refreshed credential of a cleared session", "queued", len(waiters))
		release(waiters, err, nil)
		return err
	}
	g.jar.restore(g.resolve(g.endpoints.Refresh), current.Cookies)
	slog.Info("GATEWAY", "message", "dropped the refreshed credential of a replaced session", "queued", len(waiters))
	release(waiters, nil, triggerStarted)
	return nil
}

// release hands the outcome of the refresh to the waiters. On success they are released in arrival
// order, each one only after the previous one started its replay. The first one to go is the request
// that triggered the refresh, signalled through triggerStarted.
func release(waiters []*waiter, err error, triggerStarted <-chan struct{}) {
	if err != nil {
		for _, w := range waiters {
			w.result <- err
		}
		return
	}
	go func() {
		<-triggerStarted
		for _, w := range waiters {
			w.result <- nil
			<-w.started
		}
	}()
}

// reject clears the session and fails every queued request with the same error
func (g *Gateway) reject(ctx context.Context, trigger Request, waiters []*waiter, cause error) error {
	err := fmt.Errorf("%w: %w", gwerrors.ErrSessionLost, cause)
	if g.metrics != nil {
		g.metrics.RefreshesTotal.WithLabelValues(refreshOutcomeFailure).Inc()
		g.metrics.SessionsLostTotal.Inc()
	}
	slog.Error(
		"GATEWAY",
		"message",
		"refreshing the credential failed, the session is lost",
		"error",
		cause,
		"queued",
		len(waiters),
		"requestID",
		trigger.RequestID,
	)
	if clearErr := g.clear(context.WithoutCancel(ctx)); clearErr != nil {
		slog.Error("GATEWAY", "message", "could not clear the stored session", "error", clearErr)
	}
	release(waiters, err, nil)
	return err
}

func (g *Gateway) countReplay(reason string) {
	if g.metrics != nil {
		g.metrics.ReplaysTotal.WithLabelValues(reason).Inc()
	}
}

// Refresh forces a refresh of the credential. A refresh that is already in flight is joined
// instead of starting a second one.
func (g *Gateway) Refresh(ctx context.Context) error {
	requestID, err := g.requestIDs.ID()
	if err != nil {
		return err
	}
	trigger := Request{Method: http.MethodPost, Path: g.endpoints.Refresh, RequestID: requestID}
	g.lock.Lock()
	if g.refreshing {
		w := newWaiter()
		g.waiters = append(g.waiters, w)
		g.lock.Unlock()
		defer w.markStarted()
		select {
		case err := <-w.result:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	g.refreshing = true
	generation := g.generation
	g.lock.Unlock()

	credential, refreshErr := g.refresh(ctx, trigger)
	started := make(chan struct{})
	close(started)
	return g.settle(ctx, trigger, generation, credential, refreshErr, started)
}
