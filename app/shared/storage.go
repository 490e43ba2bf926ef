package shared

import "context"

// RecordStore is the narrow persistence contract the bot depends on: a
// remote document store partitioned per guild, with whole-record reads and
// writes only. There is no partial update and no atomic increment; callers
// that need read-modify-write consistency serialize themselves.
//
// The partition is an explicit argument on every call and must be applied
// atomically with the operation: implementations may not hold "current
// partition" state shared between concurrent callers.
type RecordStore interface {
	// GetRecord returns the raw record value, or models.ErrNotFound.
	GetRecord(ctx context.Context, partition, collection, key string) ([]byte, error)

	// ListRecords returns every record value in a collection. An empty
	// collection yields an empty slice, not an error.
	ListRecords(ctx context.Context, partition, collection string) ([][]byte, error)

	// CreateRecord inserts a new record, failing with models.ErrAlreadyExists
	// when the key is taken.
	CreateRecord(ctx context.Context, partition, collection, key string, value []byte) error

	// UpdateRecord replaces an existing record's value in full, failing with
	// models.ErrNotFound when absent.
	UpdateRecord(ctx context.Context, partition, collection, key string, value []byte) error

	// DeleteRecord removes a record and returns the removed value, or
	// models.ErrNotFound.
	DeleteRecord(ctx context.Context, partition, collection, key string) ([]byte, error)

	// DeleteAll removes every record in a collection and returns the removed
	// values.
	DeleteAll(ctx context.Context, partition, collection string) ([][]byte, error)
}
