package gateway

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/coursehub/coursehub-gateway/internal/models"
	"golang.org/x/net/publicsuffix"
)

// sessionJar is the cookie jar of the gateway http client. It remembers the full cookies
// set by the backend so they can be persisted with the credential and it can be reset
// when the session is dropped.
type sessionJar struct {
	lock     sync.Mutex
	jar      *cookiejar.Jar
	received map[string]*http.Cookie
}

func newSessionJar() (*sessionJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &sessionJar{jar: jar, received: map[string]*http.Cookie{}}, nil
}

func (s *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.jar.SetCookies(u, cookies)
	for _, cookie := range cookies {
		if cookie.MaxAge < 0 || (!cookie.Expires.IsZero() && cookie.Expires.Before(time.Now())) {
			delete(s.received, cookie.Name)
			continue
		}
		stored := *cookie
		if stored.MaxAge > 0 {
			stored.Expires = time.Now().Add(time.Duration(stored.MaxAge) * time.Second)
			stored.MaxAge = 0
		}
		stored.Raw = ""
		stored.RawExpires = ""
		stored.Unparsed = nil
		s.received[cookie.Name] = &stored
	}
}

func (s *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.jar.Cookies(u)
}

// snapshot returns the cookies received from the backend that are still valid
func (s *sessionJar) snapshot() models.SerializableCookies {
	s.lock.Lock()
	defer s.lock.Unlock()
	now := time.Now()
	output := models.SerializableCookies{}
	for _, cookie := range s.received {
		if !cookie.Expires.IsZero() && cookie.Expires.Before(now) {
			continue
		}
		copied := *cookie
		output = append(output, &copied)
	}
	return output
}

// restore loads previously persisted cookies, u is used for cookies without explicit attributes
func (s *sessionJar) restore(u *url.URL, cookies models.SerializableCookies) {
	valid := []*http.Cookie{}
	for _, cookie := range cookies {
		if cookie != nil {
			valid = append(valid, cookie)
		}
	}
	s.SetCookies(u, valid)
}

func (s *sessionJar) reset() error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.jar = jar
	s.received = map[string]*http.Cookie{}
	return nil
}
