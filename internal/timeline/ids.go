package timeline

import "github.com/google/uuid"

// IDGenerator mints ids for new tracks and clips.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator produces UUIDv7 ids (RFC 9562), which sort by creation time.
type UUIDGenerator struct{}

// NewID returns a new UUIDv7 string.
func (UUIDGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
