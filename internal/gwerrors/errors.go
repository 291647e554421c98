// Package gwerrors contains all common errors used by the gateway.
package gwerrors

import "fmt"

var ErrUnauthorized = fmt.Errorf("the request was rejected as unauthorized")
var ErrSessionLost = fmt.Errorf("the session could not be recovered, a new login is required")
var ErrRefreshFailed = fmt.Errorf("refreshing the access credential failed")
var ErrCredentialNotFound = fmt.Errorf("the credential cannot be found")
var ErrCredentialParse = fmt.Errorf("cannot parse the stored credential")
var ErrMissingDBResource = fmt.Errorf("the requested resource cannot be found in the DB")
var ErrInvalidInput = fmt.Errorf("the provided input is invalid")
var ErrInvalidResponse = fmt.Errorf("the backend returned an unexpected response")
var ErrNotFound = fmt.Errorf("the requested resource cannot be found")
