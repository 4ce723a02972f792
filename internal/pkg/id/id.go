package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID for internal record keys (users, notifications).
// These keys are storage details and never address a booking.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a ULID whose timestamp component is t, so ids created for
// one broadcast sort together.
func NewAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
