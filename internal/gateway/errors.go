package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
	"github.com/coursehub/coursehub-gateway/internal/models"
)

// APIError is returned for every response from the backend with a non-2xx status code
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Envelope   models.ErrorEnvelope
	Body       []byte
}

func (e *APIError) Error() string {
	msg := e.Envelope.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is makes errors.Is(err, gwerrors.ErrUnauthorized) hold for 401 responses
// and errors.Is(err, gwerrors.ErrNotFound) hold for 404 responses
func (e *APIError) Is(target error) bool {
	switch target {
	case gwerrors.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case gwerrors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case gwerrors.ErrInvalidInput:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

func newAPIError(req Request, res *Response) *APIError {
	apiErr := &APIError{
		StatusCode: res.StatusCode,
		Method:     req.method(),
		Path:       req.Path,
		Body:       res.Body,
	}
	if len(res.Body) == 0 {
		return apiErr
	}
	if err := json.Unmarshal(res.Body, &apiErr.Envelope); err != nil {
		// not every error from the backend (or a proxy in front of it) is a json envelope
		apiErr.Envelope = models.ErrorEnvelope{Message: strings.TrimSpace(string(res.Body))}
	}
	return apiErr
}
