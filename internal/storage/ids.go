package storage

import "github.com/gofrs/uuid/v5"

// NewID returns a time-ordered UUIDv7 string for entity primary keys,
// falling back to v4 if the clock source misbehaves.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Must(uuid.NewV4()).String()
	}
	return id.String()
}
