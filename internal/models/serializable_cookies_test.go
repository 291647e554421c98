package models

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCookies() SerializableCookies {
	return SerializableCookies{
		{Name: "refresh_token", Value: "r1", Path: "/auth", HttpOnly: true, Secure: true, Expires: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "lang", Value: "en"},
	}
}

func TestSerializableCookiesText(t *testing.T) {
	a := testCookies()
	data, err := a.MarshalText()
	require.NoError(t, err)
	var b SerializableCookies
	err = b.UnmarshalText(data)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSerializableCookiesJSONInStruct(t *testing.T) {
	type holder struct {
		Cookies SerializableCookies `json:"cookies"`
	}
	a := holder{Cookies: testCookies()}
	data, err := json.Marshal(a)
	require.NoError(t, err)
	var b holder
	err = json.Unmarshal(data, &b)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSerializableCookiesSkipsNil(t *testing.T) {
	a := SerializableCookies{nil, &http.Cookie{Name: "a", Value: "b"}}
	data, err := a.MarshalText()
	require.NoError(t, err)
	var b SerializableCookies
	err = b.UnmarshalText(data)
	require.NoError(t, err)
	assert.Len(t, b, 1)
	assert.Equal(t, "a", b[0].Name)
}
