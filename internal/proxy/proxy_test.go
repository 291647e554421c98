package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursehub/coursehub-gateway/internal/api"
	"github.com/coursehub/coursehub-gateway/internal/config"
	"github.com/coursehub/coursehub-gateway/internal/credentials"
	"github.com/coursehub/coursehub-gateway/internal/gateway"
)

const loginPage string = "https://coursehub.example/auth/login"

type seenRequest struct {
	Path          string `json:"path"`
	Query         string `json:"query"`
	Authorization string `json:"authorization"`
	Cookie        string `json:"cookie"`
	ContentType   string `json:"contentType"`
	Body          string `json:"body"`
}

type testBackend struct {
	lock        sync.Mutex
	token       string
	refreshes   int
	refreshFail bool
}

func (b *testBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var input api.LoginInput
		_ = json.NewDecoder(r.Body).Decode(&input)
		if input.Password != "secret1" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		b.lock.Lock()
		token := b.token
		b.lock.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":200,"message":"ok","data":{"access_token":"` + token + `","user":{"_id":"u1","email":"ada@example.com"}}}`))
	})
	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":200,"message":"ok","data":{"message":"bye"}}`))
	})
	mux.HandleFunc("/api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.lock.Lock()
		defer b.lock.Unlock()
		b.refreshes++
		w.Header().Set("Content-Type", "application/json")
		if b.refreshFail {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Refresh token expired"}`))
			return
		}
		b.token = "rotated"
		_, _ = w.Write([]byte(`{"status":200,"message":"ok","data":{"access_token":"rotated"}}`))
	})
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		b.lock.Lock()
		token := b.token
		b.lock.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
			return
		}
		if strings.HasSuffix(r.URL.Path, "/missing") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Course not found"}`))
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("ETag", `"v1"`)
		_ = json.NewEncoder(w).Encode(seenRequest{
			Path:          r.URL.EscapedPath(),
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			Cookie:        r.Header.Get("Cookie"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          string(body),
		})
	})
	return mux
}

type testEnv struct {
	backend *testBackend
	gateway *gateway.Gateway
	server  *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	backend := &testBackend{token: "initial"}
	backendSrv := httptest.NewServer(backend.handler())
	t.Cleanup(backendSrv.Close)
	baseURL, err := url.Parse(backendSrv.URL + "/api/v1")
	require.NoError(t, err)
	backendConfig := config.BackendConfig{
		BaseURL:               baseURL,
		TimeoutSeconds:        10,
		RefreshTimeoutSeconds: 5,
		Endpoints: config.EndpointsConfig{
			Login:   "/auth/login",
			Refresh: "/auth/refresh",
			Logout:  "/auth/logout",
		},
		LoginPageURL: loginPage,
	}
	gw, err := gateway.NewGateway(
		gateway.WithConfig(backendConfig),
		gateway.WithCredentialStore(credentials.NewMemoryStore()),
	)
	require.NoError(t, err)
	client, err := api.NewClient(api.WithGateway(gw), api.WithBaseURL(baseURL), api.WithEndpoints(backendConfig.Endpoints))
	require.NoError(t, err)
	proxy, err := NewProxy(
		WithGateway(gw),
		WithAPIClient(client),
		WithEndpoints(backendConfig.Endpoints),
		WithLoginPageURL(backendConfig.LoginPageURL),
	)
	require.NoError(t, err)

	e := echo.New()
	e.Pre(middleware.RequestID(), middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	proxy.RegisterHandlers(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &testEnv{backend: backend, gateway: gw, server: srv}
}

func (e *testEnv) login(t *testing.T) {
	res, err := http.Post(e.server.URL+"/auth/login", "application/json", strings.NewReader(`{"email":"ada@example.com","password":"secret1"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func decode[T any](t *testing.T, res *http.Response) T {
	var output T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&output))
	return output
}

func TestLoginKeepsTokenInGateway(t *testing.T) {
	env := newTestEnv(t)
	res, err := http.Post(env.server.URL+"/auth/login", "application/json", strings.NewReader(`{"email":"ada@example.com","password":"secret1"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "initial")
	assert.Contains(t, string(body), "ada@example.com")
	assert.True(t, env.gateway.HasCredential())
}

func TestLoginRejected(t *testing.T) {
	env := newTestEnv(t)
	res, err := http.Post(env.server.URL+"/auth/login", "application/json", strings.NewReader(`{"email":"ada@example.com","password":"wrong-one"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "Invalid credentials", decode[map[string]any](t, res)["message"])
	assert.False(t, env.gateway.HasCredential())
}

func TestLoginValidation(t *testing.T) {
	env := newTestEnv(t)
	res, err := http.Post(env.server.URL+"/auth/login", "application/json", strings.NewReader(`{"email":"not-an-email"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	output := decode[struct {
		Errors map[string]string `json:"errors"`
	}](t, res)
	assert.Contains(t, output.Errors, "email")
	assert.Equal(t, "password is required", output.Errors["password"])
}

func TestSessionAndLogout(t *testing.T) {
	env := newTestEnv(t)
	session := func() bool {
		res, err := http.Get(env.server.URL + "/auth/session")
		require.NoError(t, err)
		defer res.Body.Close()
		return decode[map[string]bool](t, res)["authenticated"]
	}
	assert.False(t, session())
	env.login(t)
	assert.True(t, session())

	res, err := http.Post(env.server.URL+"/auth/logout", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.False(t, session())
}

func TestForwardAttachesCredentialAndDropsCallerCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/course/a%2Fb/lessons?page=2&limit=5", strings.NewReader(`{"title":"Go"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer stolen")
	req.Header.Set("Cookie", "refresh_token=stolen")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, `"v1"`, res.Header.Get("ETag"))

	seen := decode[seenRequest](t, res)
	assert.Equal(t, "/api/v1/course/a%2Fb/lessons", seen.Path)
	assert.Equal(t, "limit=5&page=2", seen.Query)
	assert.Equal(t, "Bearer initial", seen.Authorization)
	assert.NotContains(t, seen.Cookie, "stolen")
	assert.Equal(t, "application/json", seen.ContentType)
	assert.Equal(t, `{"title":"Go"}`, seen.Body)
}

func TestForwardRefreshesExpiredCredential(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	// the backend rotated the token, the one held by the gateway is rejected until a refresh
	env.backend.lock.Lock()
	env.backend.token = "rotated"
	env.backend.lock.Unlock()

	res, err := http.Get(env.server.URL + "/api/course/featured")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Bearer rotated", decode[seenRequest](t, res).Authorization)
	env.backend.lock.Lock()
	defer env.backend.lock.Unlock()
	assert.Equal(t, 1, env.backend.refreshes)
}

func TestForwardPassesBackendErrors(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	res, err := http.Get(env.server.URL + "/api/course/missing")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "Course not found", decode[map[string]any](t, res)["message"])
}

func TestForwardSessionLost(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.backend.lock.Lock()
	env.backend.token = "revoked"
	env.backend.refreshFail = true
	env.backend.lock.Unlock()

	res, err := http.Get(env.server.URL + "/api/course/featured")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	body := decode[sessionLostBody](t, res)
	assert.Equal(t, loginPage, body.Redirect)
	assert.NotEmpty(t, body.Message)
	assert.False(t, env.gateway.HasCredential())
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	res, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestNewProxyValidation(t *testing.T) {
	_, err := NewProxy()
	assert.ErrorContains(t, err, "gateway not initialized")
}

func TestSessionEndpointsStayBehindTheGateway(t *testing.T) {
	env := newTestEnv(t)
	res, err := http.Post(env.server.URL+"/api/auth/login", "application/json", strings.NewReader(`{"email":"ada@example.com","password":"secret1"}`))
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotContains(t, string(body), "initial")
	assert.NotContains(t, string(body), "access_token")
	assert.True(t, env.gateway.HasCredential())

	res, err = http.Post(env.server.URL+"/api/auth/refresh", "application/json", nil)
	require.NoError(t, err)
	body, err = io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.NotContains(t, string(body), "rotated")
	env.backend.lock.Lock()
	assert.Equal(t, 0, env.backend.refreshes)
	env.backend.lock.Unlock()

	res, err = http.Get(env.server.URL + "/api/auth/logout")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.True(t, env.gateway.HasCredential())

	res, err = http.Post(env.server.URL+"/api/auth/logout/", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.False(t, env.gateway.HasCredential())
}
