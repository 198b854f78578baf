package ports

import "context"

// AnalyticsCache stores computed read models under a version that Invalidate
// advances after any project or reaction write.
type AnalyticsCache interface {
	// Get loads the value stored under key into dst and reports whether it was
	// found. The returned version is the one current at lookup time; a value
	// computed after a miss must be stored with it so that an Invalidate racing
	// the computation retires the entry.
	Get(ctx context.Context, key string, dst any) (version int64, found bool, err error)
	Set(ctx context.Context, version int64, key string, value any) error
	Invalidate(ctx context.Context) error
}
