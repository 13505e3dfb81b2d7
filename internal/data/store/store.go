package store

import "context"

// RecordStore is the sole durability boundary for per-user data records,
// keyed (ownerKey, dataType). Each call runs in one logical session: an
// Upsert immediately followed by a Get inside the same call observes the
// just-written value. No cross-call transactional isolation is assumed, and
// no call retries internally; timeouts come in through ctx.
type RecordStore interface {
	// Get returns the record for (ownerKey, dataType), or a result set with
	// zero rows when absent.
	Get(ctx context.Context, ownerKey string, dataType string) (*ResultSet, error)
	// Scan returns every record in the owner's partition.
	Scan(ctx context.Context, ownerKey string) (*ResultSet, error)
	// Upsert fully replaces the record payload for (ownerKey, dataType).
	Upsert(ctx context.Context, ownerKey string, dataType string, payload string) error
}
