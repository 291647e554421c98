package models

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Credential is the session credential held by the gateway. The access token value is
// opaque, its expiry is only ever discovered when the backend rejects it.
type Credential struct {
	Value string
	// Cookies set by the backend next to the access token (i.e. the long-lived refresh cookie)
	Cookies SerializableCookies
	// UTC timestamp of the last time the credential was replaced
	UpdatedAt time.Time
}

func NewCredential(value string, cookies ...*http.Cookie) Credential {
	return Credential{
		Value:     value,
		Cookies:   SerializableCookies(cookies),
		UpdatedAt: time.Now().UTC(),
	}
}

func (c Credential) Empty() bool {
	return c.Value == ""
}

// SetAuthHeader attaches the credential as a bearer token, nothing is done for an empty credential
func (c Credential) SetAuthHeader(req *http.Request) {
	if c.Empty() {
		return
	}
	token := oauth2.Token{AccessToken: c.Value, TokenType: "Bearer"}
	token.SetAuthHeader(req)
}

// Encrypt encrypts the token value and the cookie values if an encryptor is provided
func (c Credential) Encrypt(encryptor Encryptor) (Credential, error) {
	if encryptor == nil {
		return c, nil
	}
	return c.transform(encryptor.Encrypt)
}

// Decrypt decrypts the token value and the cookie values if an encryptor is provided
func (c Credential) Decrypt(encryptor Encryptor) (Credential, error) {
	if encryptor == nil {
		return c, nil
	}
	return c.transform(encryptor.Decrypt)
}

func (c Credential) transform(fn func(string) (string, error)) (Credential, error) {
	output := c
	value, err := fn(c.Value)
	if err != nil {
		return Credential{}, err
	}
	output.Value = value
	output.Cookies = make(SerializableCookies, 0, len(c.Cookies))
	for _, cookie := range c.Cookies {
		if cookie == nil {
			continue
		}
		cookieValue, err := fn(cookie.Value)
		if err != nil {
			return Credential{}, err
		}
		newCookie := *cookie
		newCookie.Value = cookieValue
		output.Cookies = append(output.Cookies, &newCookie)
	}
	return output, nil
}

// String implements the Stringer interface for printing the credential in logs
func (c Credential) String() string {
	return fmt.Sprintf(
		"Credential<Value: redacted-%d-chars, Cookies: %d, UpdatedAt: %s>",
		len(c.Value),
		len(c.Cookies),
		c.UpdatedAt,
	)
}
