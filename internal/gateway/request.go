package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request describes one call to the backend. The payload is kept in memory so the
// request can be replayed after the credential has been refreshed.
type Request struct {
	Method string
	// Escaped path relative to the backend base URL, i.e. "/course/featured"
	Path        string
	Query       url.Values
	Header      http.Header
	Body        []byte
	ContentType string
	// RequestID is sent as the X-Request-ID header, one is generated when empty
	RequestID string
	// SkipAuthRefresh disables the recovery from unauthorized responses for this request
	SkipAuthRefresh bool
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// Response is the fully read answer from the backend
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is in the 2xx range
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// resolve joins the escaped request path onto the base URL
func (g *Gateway) resolve(path string) *url.URL {
	output := *g.baseURL
	escaped := strings.TrimSuffix(g.baseURL.EscapedPath(), "/") + "/" + strings.TrimPrefix(path, "/")
	output.Path = escaped
	output.RawPath = ""
	if unescaped, err := url.PathUnescape(escaped); err == nil {
		output.Path = unescaped
		output.RawPath = escaped
	}
	output.RawQuery = ""
	output.Fragment = ""
	return &output
}

func (g *Gateway) newHTTPRequest(ctx context.Context, req Request, requestID string) (*http.Request, error) {
	target := g.resolve(req.Path)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method(), target.String(), body)
	if err != nil {
		return nil, err
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	// the gateway owns the credential, callers cannot smuggle their own
	httpReq.Header.Del(headerAuthorization)
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	httpReq.Header.Set(headerRequestID, requestID)
	return httpReq, nil
}
