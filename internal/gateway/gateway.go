// Package gateway contains the single channel through which every call to the backend is made.
// It attaches the session credential to outgoing requests and transparently recovers from
// expired credentials: the first unauthorized response triggers exactly one refresh call while
// every other request rejected in the meantime waits for it and is replayed once it settles.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coursehub/coursehub-gateway/internal/config"
	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
	"github.com/coursehub/coursehub-gateway/internal/models"
)

const (
	headerAuthorization string = "Authorization"
	headerRequestID     string = "X-Request-ID"
)

// SessionLostHandler is called once when a refresh fails and the session cannot be recovered
type SessionLostHandler func(ctx context.Context, cause error)

type Gateway struct {
	client         *http.Client
	jar            *sessionJar
	baseURL        *url.URL
	endpoints      config.EndpointsConfig
	exemptPaths    []string
	refreshTimeout time.Duration
	store          models.CredentialRepository
	requestIDs     models.IDGenerator
	sessionLost    SessionLostHandler
	metrics        *Metrics

	// serializes session changes so the store is written in the same order as the credential
	// is replaced in memory, always taken before lock
	storeLock sync.Mutex

	lock       sync.Mutex
	credential models.Credential
	// bumped on every sign in and sign out, a refresh only applies to the generation it started in
	generation uint64
	refreshing bool
	waiters    []*waiter
}

// Do sends the request to the backend with the current credential attached. An unauthorized
// response to a request that is not exempt from recovery is answered by refreshing the credential
// and replaying the request once. Responses with a non-2xx status code are returned as *APIError.
func (g *Gateway) Do(ctx context.Context, req Request) (*Response, error) {
	requestID, err := g.requestID(req)
	if err != nil {
		return nil, err
	}
	req.RequestID = requestID
	res, attached, err := g.send(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusUnauthorized || g.Exempt(req) {
		return g.result(req, res)
	}
	slog.Debug(
		"GATEWAY",
		"message",
		"request was rejected as unauthorized",
		"method",
		req.method(),
		"path",
		req.Path,
		"requestID",
		requestID,
	)
	return g.recoverUnauthorized(ctx, req, attached)
}

// Exempt reports whether an unauthorized response to the request is returned to the caller as is
func (g *Gateway) Exempt(req Request) bool {
	if req.SkipAuthRefresh {
		return true
	}
	path := cleanPath(req.Path)
	switch path {
	case cleanPath(g.endpoints.Login), cleanPath(g.endpoints.Refresh), cleanPath(g.endpoints.Logout):
		return true
	}
	for _, prefix := range g.exemptPaths {
		if strings.HasPrefix(path, cleanPath(prefix)) {
			return true
		}
	}
	return false
}

// HasCredential reports whether a session credential is currently held
func (g *Gateway) HasCredential() bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	return !g.credential.Empty()
}

// Credential returns a copy of the current session credential
func (g *Gateway) Credential() models.Credential {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.credential
}

// Refreshing reports whether a refresh call is currently in flight
func (g *Gateway) Refreshing() bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.refreshing
}

// SetCredential replaces the session credential, i.e. after a successful login
func (g *Gateway) SetCredential(ctx context.Context, value string) error {
	if value == "" {
		return fmt.Errorf("%w: the credential cannot be empty", gwerrors.ErrInvalidInput)
	}
	g.storeLock.Lock()
	defer g.storeLock.Unlock()
	credential := models.NewCredential(value, g.jar.snapshot()...)
	g.lock.Lock()
	g.credential = credential
	g.generation++
	g.lock.Unlock()
	return g.persist(ctx, credential)
}

// ClearSession drops the credential and the session cookies immediately. A refresh in flight
// at that moment is discarded once it settles.
func (g *Gateway) ClearSession(ctx context.Context) error {
	g.storeLock.Lock()
	defer g.storeLock.Unlock()
	g.lock.Lock()
	g.credential = models.Credential{}
	g.generation++
	g.lock.Unlock()
	return g.clear(ctx)
}

// Restore loads a credential persisted by a previous process, it is a no-op if none is stored
func (g *Gateway) Restore(ctx context.Context) error {
	credential, err := g.store.GetCredential(ctx)
	if err != nil {
		if errors.Is(err, gwerrors.ErrCredentialNotFound) {
			return nil
		}
		return err
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	if !g.credential.Empty() {
		slog.Debug("GATEWAY", "message", "a credential is already held, ignoring the stored one")
		return nil
	}
	g.credential = credential
	g.jar.restore(g.resolve(g.endpoints.Refresh), credential.Cookies)
	slog.Info("GATEWAY", "message", "restored the session credential", "credential", credential)
	return nil
}

func (g *Gateway) clear(ctx context.Context) error {
	jarErr := g.jar.reset()
	storeErr := g.store.RemoveCredential(ctx)
	return errors.Join(jarErr, storeErr)
}

func (g *Gateway) persist(ctx context.Context, credential models.Credential) error {
	err := g.store.SetCredential(ctx, credential)
	if err != nil {
		slog.Error("GATEWAY", "message", "could not persist the credential", "error", err)
	}
	return err
}

func (g *Gateway) requestID(req Request) (string, error) {
	if req.RequestID != "" {
		return req.RequestID, nil
	}
	return g.requestIDs.ID()
}

// send issues one attempt of the request and reads the whole response. The credential value that
// was attached is returned so that a rejection can be matched against the current credential.
// onStart is called once the request has reached the transport or has failed before that, it
// has to be safe to call more than once.
func (g *Gateway) send(ctx context.Context, req Request, onStart func()) (*Response, string, error) {
	if onStart != nil {
		defer onStart()
	}
	httpReq, err := g.newHTTPRequest(withOnStart(ctx, onStart), req, req.RequestID)
	if err != nil {
		return nil, "", err
	}
	g.lock.Lock()
	credential := g.credential
	g.lock.Unlock()
	credential.SetAuthHeader(httpReq)
	httpRes, err := g.client.Do(httpReq)
	if err != nil {
		return nil, credential.Value, fmt.Errorf("%s %s: %w", req.method(), req.Path, err)
	}
	defer httpRes.Body.Close()
	body, err := io.ReadAll(httpRes.Body)
	if err != nil {
		return nil, credential.Value, fmt.Errorf("%s %s: reading the response failed: %w", req.method(), req.Path, err)
	}
	res := &Response{StatusCode: httpRes.StatusCode, Header: httpRes.Header, Body: body}
	return res, credential.Value, nil
}

func (g *Gateway) result(req Request, res *Response) (*Response, error) {
	if res.OK() {
		return res, nil
	}
	return res, newAPIError(req, res)
}

func cleanPath(path string) string {
	path = "/" + strings.Trim(path, "/")
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	return path
}

type GatewayOption func(*Gateway) error

// WithConfig sets the backend location, the endpoints and the timeouts
func WithConfig(backendConfig config.BackendConfig) GatewayOption {
	return func(g *Gateway) error {
		if backendConfig.BaseURL == nil {
			return fmt.Errorf("the backend base url is not set")
		}
		baseURL := *backendConfig.BaseURL
		g.baseURL = &baseURL
		g.endpoints = backendConfig.Endpoints
		g.exemptPaths = backendConfig.ExemptPaths
		g.refreshTimeout = backendConfig.RefreshTimeout()
		g.client.Timeout = backendConfig.Timeout()
		return nil
	}
}

func WithCredentialStore(store models.CredentialRepository) GatewayOption {
	return func(g *Gateway) error {
		g.store = store
		return nil
	}
}

// WithTransport replaces the round tripper used for all calls to the backend
func WithTransport(transport http.RoundTripper) GatewayOption {
	return func(g *Gateway) error {
		g.client.Transport = startNotifier{next: transport}
		return nil
	}
}

func WithSessionLostHandler(handler SessionLostHandler) GatewayOption {
	return func(g *Gateway) error {
		g.sessionLost = handler
		return nil
	}
}

func WithMetrics(metrics *Metrics) GatewayOption {
	return func(g *Gateway) error {
		g.metrics = metrics
		return nil
	}
}

func WithRequestIDGenerator(generator models.IDGenerator) GatewayOption {
	return func(g *Gateway) error {
		g.requestIDs = generator
		return nil
	}
}

func NewGateway(options ...GatewayOption) (*Gateway, error) {
	jar, err := newSessionJar()
	if err != nil {
		return &Gateway{}, err
	}
	g := Gateway{
		client:     &http.Client{Jar: jar, Transport: startNotifier{}},
		jar:        jar,
		requestIDs: models.RequestIDGenerator{Prefix: "gw"},
		waiters:    []*waiter{},
	}
	for _, opt := range options {
		err := opt(&g)
		if err != nil {
			return &Gateway{}, err
		}
	}
	if g.baseURL == nil {
		return &Gateway{}, fmt.Errorf("backend config not initialized")
	}
	if g.endpoints.Refresh == "" {
		return &Gateway{}, fmt.Errorf("refresh endpoint not initialized")
	}
	if g.store == nil {
		return &Gateway{}, fmt.Errorf("credential store not initialized")
	}
	return &g, nil
}
