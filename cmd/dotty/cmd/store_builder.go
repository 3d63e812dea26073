package cmd

import (
	"fmt"
	"strings"

	"github.com/netguru/dotty-dns/internal/history"
	"github.com/netguru/dotty-dns/internal/history/inmem"
	"github.com/netguru/dotty-dns/internal/history/rdb"
)

// buildHistoryStore creates the command history store based on db-url.
// "memory:" keeps history in process; "sqlite:"/"sqlite3:" persist it.
func buildHistoryStore(dbURL string) (history.Store, error) {
	switch {
	case dbURL == "" || strings.HasPrefix(dbURL, "memory:"):
		return inmem.NewStore(), nil

	case strings.HasPrefix(dbURL, "sqlite:") || strings.HasPrefix(dbURL, "sqlite3:"):
		db, err := rdb.OpenFromURL(dbURL)
		if err != nil {
			return nil, err
		}
		if err := rdb.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate history schema: %w", err)
		}
		return rdb.NewHistoryRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported db-url: %s", dbURL)
	}
}
