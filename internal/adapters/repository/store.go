// Package repository persists processed feedback events in an append-only log.
package repository

import (
	"context"

	"github.com/okian/triage/internal/domain/model"
)

// Store provides append and read access to the feedback log.
type Store interface {
	// Append writes one record after any existing ones. The backing store is
	// created with its header on first use.
	Append(ctx context.Context, ev model.FeedbackEvent) error

	// ReadAll returns every record in append order.
	// Returns ErrLogNotFound if the log has never been written.
	ReadAll(ctx context.Context) ([]model.FeedbackEvent, error)

	// Count returns the number of records without decoding them.
	// Returns ErrLogNotFound if the log has never been written.
	Count(ctx context.Context) (int, error)

	// Exists reports whether the backing store has been created.
	Exists() bool
}
