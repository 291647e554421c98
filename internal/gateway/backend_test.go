package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

const refreshCookieName string = "refresh_token"

type recordedRequest struct {
	Path          string
	Authorization string
	RequestID     string
}

// fakeBackend imitates the authentication behaviour of the backend: protected paths only
// accept the current token and every successful refresh rotates it.
type fakeBackend struct {
	lock          sync.Mutex
	validToken    string
	refreshCalls  int
	refreshStatus int
	requireCookie bool
	// when set the refresh handler blocks until the channel is closed
	refreshGate    chan struct{}
	refreshEntered chan struct{}
	requests       []recordedRequest
}

func newFakeBackend(validToken string) *fakeBackend {
	return &fakeBackend{
		validToken:     validToken,
		refreshStatus:  http.StatusOK,
		refreshEntered: make(chan struct{}, 100),
	}
}

func (b *fakeBackend) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/refresh", b.refresh)
	mux.HandleFunc("/api/v1/auth/login", b.login)
	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
	})
	mux.HandleFunc("/", b.protected)
	return httptest.NewServer(mux)
}

func (b *fakeBackend) RefreshCalls() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.refreshCalls
}

func (b *fakeBackend) SetValidToken(token string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.validToken = token
}

func (b *fakeBackend) SetRefreshStatus(status int) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.refreshStatus = status
}

func (b *fakeBackend) Requests() []recordedRequest {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]recordedRequest{}, b.requests...)
}

func (b *fakeBackend) refresh(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	b.refreshCalls++
	gate := b.refreshGate
	b.lock.Unlock()
	b.refreshEntered <- struct{}{}
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.requireCookie {
		cookie, err := r.Cookie(refreshCookieName)
		if err != nil || cookie.Value == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Refresh token missing"})
			return
		}
	}
	if b.refreshStatus != http.StatusOK {
		writeJSON(w, b.refreshStatus, map[string]any{"message": "Invalid refresh token", "code": "TOKEN_EXPIRED"})
		return
	}
	b.validToken = fmt.Sprintf("fresh-%d", b.refreshCalls)
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    fmt.Sprintf("rotated-%d", b.refreshCalls),
		Path:     "/api/v1/auth",
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  http.StatusOK,
		"message": "Token refreshed",
		"data":    map[string]any{"access_token": b.validToken},
	})
}

func (b *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	if payload.Password != "secret" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid credentials", "field": "password"})
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	http.SetCookie(w, &http.Cookie{Name: refreshCookieName, Value: "initial", Path: "/api/v1/auth", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  http.StatusOK,
		"message": "Login successful",
		"data":    map[string]any{"access_token": b.validToken},
	})
}

func (b *fakeBackend) protected(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	defer b.lock.Unlock()
	auth := r.Header.Get("Authorization")
	b.requests = append(b.requests, recordedRequest{
		Path:          r.URL.Path,
		Authorization: auth,
		RequestID:     r.Header.Get("X-Request-ID"),
	})
	if strings.HasPrefix(r.URL.Path, "/api/v1/always-unauthorized") || auth != "Bearer "+b.validToken {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  http.StatusOK,
		"message": "ok",
		"data":    map[string]any{"path": r.URL.Path, "query": r.URL.RawQuery},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// recordingTransport records the requests that carry the watched token in the order in
// which they reach the transport
type recordingTransport struct {
	lock   sync.Mutex
	next   http.RoundTripper
	token  string
	paths  []string
	before func(*http.Request)
}

func (r *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r.lock.Lock()
	if req.Header.Get("Authorization") == "Bearer "+r.token {
		r.paths = append(r.paths, req.URL.Path)
	}
	before := r.before
	r.lock.Unlock()
	if before != nil {
		before(req)
	}
	return r.next.RoundTrip(req)
}

func (r *recordingTransport) Paths() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string{}, r.paths...)
}
