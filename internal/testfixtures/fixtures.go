// Package testfixtures provides deterministic building blocks for tests:
// a controllable clock, a sequential ID generator, and a SQLite harness
// backed by a migrated temporary database.
package testfixtures

import "time"

// ReferenceTime is the shared instant tests start from: a Monday morning.
func ReferenceTime() time.Time {
	return time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
}

// ReferenceDate is ReferenceTime truncated to its civil date.
func ReferenceDate() time.Time {
	return time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
}
