package models

// Envelope is the success envelope wrapping every payload returned by the backend.
// Some endpoints report the status as "status" while others use "statusCode".
type Envelope[T any] struct {
	Status     int    `json:"status,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	Message    string `json:"message"`
	Data       T      `json:"data"`
}

// Code returns whichever status field was populated by the backend
func (e Envelope[T]) Code() int {
	if e.Status != 0 {
		return e.Status
	}
	return e.StatusCode
}

// ErrorEnvelope is the body returned by the backend for rejected requests
type ErrorEnvelope struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// AccessTokenData is the payload returned by the refresh endpoint
type AccessTokenData struct {
	AccessToken string `json:"access_token"`
}
