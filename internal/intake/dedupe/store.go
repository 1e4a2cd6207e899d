// Package dedupe remembers which lead a submission fingerprint resolved to,
// for a rolling window. A hit short-circuits the agent intake path with the
// original lead identifier instead of writing a duplicate.
package dedupe

import "context"

// Store maps submission fingerprints to lead IDs for a bounded window.
type Store interface {
	// Lookup returns the lead ID recorded for key, if one exists and has
	// not aged out of the window.
	Lookup(ctx context.Context, key string) (leadID string, found bool, err error)
	// Record stores the fingerprint after a successful write.
	Record(ctx context.Context, key, leadID string) error
}
