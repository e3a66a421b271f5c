package generator

import "time"

// Config drives the synthetic transaction generator.
type Config struct {
	Customers int
	Seed      int64
	Today     time.Time
}

// DefaultConfig returns baseline settings that produce a small population
// with purchase behavior spread across every segment.
func DefaultConfig() Config {
	return Config{
		Customers: 100,
		Seed:      42,
		Today:     time.Date(2025, time.November, 6, 0, 0, 0, 0, time.UTC),
	}
}
