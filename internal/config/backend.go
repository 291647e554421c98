package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type EndpointsConfig struct {
	Login   string
	Refresh string
	Logout  string
}

type BackendConfig struct {
	BaseURL               *url.URL
	TimeoutSeconds        int
	RefreshTimeoutSeconds int
	Endpoints             EndpointsConfig
	// Requests to paths starting with any of these prefixes never trigger a refresh
	ExemptPaths []string
	// Where a browser should be sent when the session cannot be recovered
	LoginPageURL string
}

func (c *BackendConfig) Validate() error {
	if c.BaseURL == nil {
		return fmt.Errorf("the backend config is missing the base url")
	}
	if c.BaseURL.Scheme != "http" && c.BaseURL.Scheme != "https" {
		return fmt.Errorf("the backend base url has an unsupported scheme %q", c.BaseURL.Scheme)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("backend timeout seconds (%d) cannot be negative", c.TimeoutSeconds)
	}
	if c.RefreshTimeoutSeconds < 0 {
		return fmt.Errorf("backend refresh timeout seconds (%d) cannot be negative", c.RefreshTimeoutSeconds)
	}
	endpoints := map[string]string{
		"login":   c.Endpoints.Login,
		"refresh": c.Endpoints.Refresh,
		"logout":  c.Endpoints.Logout,
	}
	seen := map[string]string{}
	for name, path := range endpoints {
		if path == "" {
			return fmt.Errorf("the backend config is missing the %s endpoint", name)
		}
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("the %s endpoint %q has to start with a slash", name, path)
		}
		if other, found := seen[path]; found {
			return fmt.Errorf("the %s and %s endpoints cannot share the path %q", other, name, path)
		}
		seen[path] = name
	}
	return nil
}

func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c BackendConfig) RefreshTimeout() time.Duration {
	return time.Duration(c.RefreshTimeoutSeconds) * time.Second
}
