package app

import "github.com/google/uuid"

// NewID returns a random UUID string. Every stored record is keyed by one.
func NewID() string {
	return uuid.NewString()
}
