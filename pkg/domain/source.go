package domain

import "context"

// RecordSource retrieves the full canonical record collection. Implementations
// live under internal/source; the core invokes Fetch exactly once at startup
// and keeps an empty store when it fails.
type RecordSource interface {
	Fetch(ctx context.Context) ([]Feature, error)
}
