package cli

import "github.com/google/uuid"

// RequestIDGenerator produces request correlation ids.
type RequestIDGenerator interface {
	Generate() string
}

// UUIDv7Generator produces time-ordered UUIDv7 request ids.
type UUIDv7Generator struct{}

func (UUIDv7Generator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		return uuid.NewString()
	}
	return id.String()
}
