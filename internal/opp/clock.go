package opp

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// ShortIDGenerator produces the 8-character opaque ids used as stable
// record identities across rank reassignment.
type ShortIDGenerator struct{}

func (ShortIDGenerator) New() string { return uuid.New().String()[:8] }
