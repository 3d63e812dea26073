// Package history defines the append-only command history log.
package history

import (
	"context"

	"github.com/netguru/dotty-dns/internal/model"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Store is the append-only audit log of orchestrated commands.
// Entries are never updated or deleted through this interface.
type Store interface {
	// Append persists entry, assigning ID and Timestamp when they are empty.
	Append(ctx context.Context, entry *model.HistoryEntry) error

	// List returns the newest entries for userID and domain, newest first.
	List(ctx context.Context, userID, domain string, limit int) ([]*model.HistoryEntry, error)
}

// ClampLimit bounds a requested list size to (0, MaxListLimit].
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
