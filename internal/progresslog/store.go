// Package progresslog keeps the append-only history of day confirmations and
// outcomes. Unlike the journal, entries are never overwritten.
package progresslog

import (
	"context"
	"time"
)

// Entry is one progress log line.
type Entry struct {
	ID        int64
	Timestamp time.Time
	Day       int
	Status    string
}

// Store defines the interface for persisting and retrieving progress entries.
type Store interface {
	// Append adds a new entry to the log.
	Append(ctx context.Context, e Entry) error

	// Range retrieves entries with start <= timestamp <= end, oldest first.
	Range(ctx context.Context, start, end time.Time) ([]Entry, error)

	// Recent retrieves the last limit entries, oldest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// Close closes the store and releases resources.
	Close() error
}
