package models

import (
	"encoding/json"
	"net/http"
	"time"
)

type serializedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
}

// SerializableCookies is a list of cookies that can be marshalled to a json representation
// and also unmarshalled back into a list of cookies from a json string.
type SerializableCookies []*http.Cookie

func (s SerializableCookies) MarshalBinary() (data []byte, err error) {
	return s.MarshalJSON()
}

func (s *SerializableCookies) UnmarshalBinary(data []byte) error {
	return s.UnmarshalJSON(data)
}

func (s SerializableCookies) MarshalText() (data []byte, err error) {
	return s.MarshalJSON()
}

func (s *SerializableCookies) UnmarshalText(data []byte) error {
	return s.UnmarshalJSON(data)
}

func (s SerializableCookies) MarshalJSON() (data []byte, err error) {
	output := make([]serializedCookie, 0, len(s))
	for _, cookie := range s {
		if cookie == nil {
			continue
		}
		output = append(output, serializedCookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     cookie.Path,
			Domain:   cookie.Domain,
			Expires:  cookie.Expires,
			Secure:   cookie.Secure,
			HttpOnly: cookie.HttpOnly,
		})
	}
	return json.Marshal(output)
}

func (s *SerializableCookies) UnmarshalJSON(data []byte) error {
	var res []serializedCookie
	err := json.Unmarshal(data, &res)
	if err != nil {
		return err
	}
	output := make(SerializableCookies, 0, len(res))
	for _, cookie := range res {
		output = append(output, &http.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     cookie.Path,
			Domain:   cookie.Domain,
			Expires:  cookie.Expires,
			Secure:   cookie.Secure,
			HttpOnly: cookie.HttpOnly,
		})
	}
	*s = output
	return nil
}
