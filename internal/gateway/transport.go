package gateway

import (
	"context"
	"net/http"
)

type onStartKey struct{}

// startNotifier signals the replay ordering in the gateway once a request has reached the transport
type startNotifier struct {
	next http.RoundTripper
}

func (s startNotifier) RoundTrip(req *http.Request) (*http.Response, error) {
	if onStart, ok := req.Context().Value(onStartKey{}).(func()); ok && onStart != nil {
		onStart()
	}
	next := s.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(req)
}

func withOnStart(ctx context.Context, onStart func()) context.Context {
	if onStart == nil {
		return ctx
	}
	return context.WithValue(ctx, onStartKey{}, onStart)
}
