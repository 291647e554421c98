package models

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// RequestIDGenerator produces the X-Request-ID values of outgoing calls. The prefix tells the
// gateway's calls apart from those of other clients in the backend logs.
type RequestIDGenerator struct {
	Prefix string
}

func (g RequestIDGenerator) ID() (string, error) {
	// ulid.Make is monotonic within the same millisecond so ids sort in sending order
	id := ulid.Make().String()
	if g.Prefix == "" {
		return id, nil
	}
	return strings.TrimSuffix(g.Prefix, "-") + "-" + id, nil
}

// StaticGenerator always returns the same ID, only suitable for testing
type StaticGenerator struct {
	Value string
}

func (s StaticGenerator) ID() (string, error) {
	return s.Value, nil
}
