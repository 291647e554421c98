// Package proxy serves a local HTTP endpoint that forwards browser or script traffic to the
// backend through the gateway, so the callers never hold the credential themselves.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/coursehub/coursehub-gateway/internal/api"
	"github.com/coursehub/coursehub-gateway/internal/config"
	"github.com/coursehub/coursehub-gateway/internal/gateway"
	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
)

const apiPrefix string = "/api"

// headers from the caller that are passed on to the backend
var forwardedRequestHeaders = []string{
	echo.HeaderAccept,
	"Accept-Language",
	"Idempotency-Key",
}

// headers from the backend that are passed back to the caller
var forwardedResponseHeaders = []string{
	echo.HeaderContentType,
	echo.HeaderContentDisposition,
	"Cache-Control",
	"ETag",
	"Last-Modified",
}

// Gateway is the part of the gateway the proxy needs
type Gateway interface {
	Do(ctx context.Context, req gateway.Request) (*gateway.Response, error)
	HasCredential() bool
}

type Proxy struct {
	gateway      Gateway
	client       *api.Client
	endpoints    config.EndpointsConfig
	loginPageURL string
	bodyLimit    string
}

func (p *Proxy) RegisterHandlers(e *echo.Echo, commonMiddlewares ...echo.MiddlewareFunc) {
	e.GET("/health", p.health)
	e.GET("/version", p.version)

	auth := e.Group("/auth", commonMiddlewares...)
	auth.POST("/login", p.login)
	auth.POST("/logout", p.logout)
	auth.GET("/session", p.session)

	backend := e.Group(apiPrefix, commonMiddlewares...)
	backend.Use(middleware.BodyLimit(p.bodyLimit), noCookies, noAuthorization, stripPrefix(apiPrefix))
	backend.Any("", p.forward)
	backend.Any("/*", p.forward)
}

func (p *Proxy) health(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (p *Proxy) version(c echo.Context) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return c.JSON(http.StatusOK, map[string]string{"version": "unknown"})
	}
	return c.JSON(http.StatusOK, map[string]string{"version": info.Main.Version, "go": info.GoVersion})
}

type loginResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (p *Proxy) login(c echo.Context) error {
	var input api.LoginInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, messageBody("the request body is not valid json"))
	}
	result, err := p.client.Auth.Login(c.Request().Context(), input)
	if err != nil {
		return p.failure(c, err)
	}
	slog.Info("PROXY", "message", "signed in", "userID", result.User.ID, "requestID", requestID(c))
	// the access token stays with the gateway
	return c.JSON(http.StatusOK, loginResponse{Message: "Login successful", Data: map[string]any{"user": result.User}})
}

func (p *Proxy) logout(c echo.Context) error {
	_, err := p.client.Auth.Logout(c.Request().Context())
	if err != nil {
		slog.Info("PROXY", "message", "logout was not accepted by the backend", "error", err, "requestID", requestID(c))
	}
	return c.JSON(http.StatusOK, messageBody("Logged out"))
}

func (p *Proxy) session(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"authenticated": p.gateway.HasCredential()})
}

// sessionEndpoint keeps the backend's sign in, sign out and refresh calls behind the gateway, a
// caller reaching them directly would see the access token or leave the held session behind
func (p *Proxy) sessionEndpoint(c echo.Context) (handled bool, err error) {
	path := cleanPath(c.Request().URL.Path)
	switch path {
	case cleanPath(p.endpoints.Login), cleanPath(p.endpoints.Logout):
		if c.Request().Method != http.MethodPost {
			return true, c.JSON(http.StatusMethodNotAllowed, messageBody("method not allowed"))
		}
		if path == cleanPath(p.endpoints.Login) {
			return true, p.login(c)
		}
		return true, p.logout(c)
	case cleanPath(p.endpoints.Refresh):
		return true, c.JSON(http.StatusForbidden, messageBody("the credential is refreshed by the gateway"))
	}
	return false, nil
}

func (p *Proxy) forward(c echo.Context) error {
	if handled, err := p.sessionEndpoint(c); handled {
		return err
	}
	httpReq := c.Request()
	body, err := io.ReadAll(httpReq.Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageBody("the request body could not be read"))
	}
	path := httpReq.URL.EscapedPath()
	if path == "" {
		path = "/"
	}
	req := gateway.Request{
		Method:      httpReq.Method,
		Path:        path,
		Query:       httpReq.URL.Query(),
		Header:      http.Header{},
		Body:        body,
		ContentType: httpReq.Header.Get(echo.HeaderContentType),
		RequestID:   requestID(c),
	}
	for _, name := range forwardedRequestHeaders {
		if value := httpReq.Header.Get(name); value != "" {
			req.Header.Set(name, value)
		}
	}
	res, err := p.gateway.Do(httpReq.Context(), req)
	var apiErr *gateway.APIError
	if err != nil && !errors.As(err, &apiErr) {
		return p.failure(c, err)
	}
	return p.copyResponse(c, res, apiErr)
}

func (p *Proxy) copyResponse(c echo.Context, res *gateway.Response, apiErr *gateway.APIError) error {
	if res == nil {
		// an APIError always comes with the response, this only guards against a misbehaving Gateway
		return c.Blob(apiErr.StatusCode, echo.MIMEApplicationJSONCharsetUTF8, apiErr.Body)
	}
	for _, name := range forwardedResponseHeaders {
		if value := res.Header.Get(name); value != "" {
			c.Response().Header().Set(name, value)
		}
	}
	if len(res.Body) == 0 {
		return c.NoContent(res.StatusCode)
	}
	c.Response().WriteHeader(res.StatusCode)
	_, err := c.Response().Write(res.Body)
	return err
}

// failure turns errors that did not come with a backend response into a response for the caller
func (p *Proxy) failure(c echo.Context, err error) error {
	var apiErr *gateway.APIError
	var validationErr *api.ValidationError
	switch {
	case errors.Is(err, gwerrors.ErrSessionLost):
		slog.Info("PROXY", "message", "the session was lost", "error", err, "requestID", requestID(c))
		return c.JSON(http.StatusUnauthorized, sessionLostBody{
			Message:  "your session has expired, please sign in again",
			Redirect: p.loginPageURL,
		})
	case errors.As(err, &apiErr):
		return c.Blob(apiErr.StatusCode, echo.MIMEApplicationJSONCharsetUTF8, apiErr.Body)
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "validation failed", "errors": validationErr.Fields})
	case errors.Is(err, context.Canceled):
		// the caller went away, nobody reads the response
		return c.NoContent(499)
	}
	slog.Error("PROXY", "message", "the backend could not be reached", "error", err, "requestID", requestID(c), "traceID", traceID(c))
	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("requestID", requestID(c))
			hub.CaptureException(err)
		})
	}
	return c.JSON(http.StatusBadGateway, messageBody("the backend could not be reached"))
}

func cleanPath(path string) string {
	return "/" + strings.Trim(path, "/")
}

type sessionLostBody struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

func messageBody(message string) map[string]string {
	return map[string]string{"message": message}
}

type ProxyOption func(*Proxy)

func WithGateway(gw Gateway) ProxyOption {
	return func(p *Proxy) {
		p.gateway = gw
	}
}

func WithAPIClient(client *api.Client) ProxyOption {
	return func(p *Proxy) {
		p.client = client
	}
}

// WithEndpoints sets the backend session endpoints that are answered by the proxy itself
func WithEndpoints(endpoints config.EndpointsConfig) ProxyOption {
	return func(p *Proxy) {
		p.endpoints = endpoints
	}
}

// WithLoginPageURL sets where callers are sent once their session cannot be recovered
func WithLoginPageURL(loginPageURL string) ProxyOption {
	return func(p *Proxy) {
		p.loginPageURL = loginPageURL
	}
}

// WithBodyLimit limits the size of forwarded request bodies, i.e. "50M"
func WithBodyLimit(limit string) ProxyOption {
	return func(p *Proxy) {
		p.bodyLimit = limit
	}
}

func NewProxy(options ...ProxyOption) (*Proxy, error) {
	proxy := Proxy{bodyLimit: "100M"}
	for _, opt := range options {
		opt(&proxy)
	}
	if proxy.gateway == nil {
		return &Proxy{}, fmt.Errorf("proxy gateway not initialized")
	}
	if proxy.client == nil {
		return &Proxy{}, fmt.Errorf("proxy api client not initialized")
	}
	if proxy.endpoints.Login == "" || proxy.endpoints.Logout == "" || proxy.endpoints.Refresh == "" {
		return &Proxy{}, fmt.Errorf("proxy session endpoints not initialized")
	}
	if proxy.loginPageURL == "" {
		return &Proxy{}, fmt.Errorf("proxy login page url not initialized")
	}
	return &proxy, nil
}
