// Package repository persists processed feedback events in an append-only log.
package repository

import "os"

// Option applies a configuration option to the CSVStore.
type Option func(*CSVStore)

// WithSync controls whether every append is fsynced before returning.
func WithSync(enabled bool) Option {
	return func(s *CSVStore) {
		s.sync = enabled
	}
}

// WithFileMode sets the permissions used when the log file is created.
func WithFileMode(mode os.FileMode) Option {
	return func(s *CSVStore) {
		if mode != 0 {
			s.mode = mode
		}
	}
}
