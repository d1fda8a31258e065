package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence increments and returns the counter in {table}_sequence.
//
// Sequence numbers give builds a stable, human-readable ordering (build #42)
// without exposing the UUID primary key in listings.
func NextSequence(db *sql.DB, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", table, err)
	}
	return sequence, nil
}

// scanner abstracts over [sql.Row] and [sql.Rows] so a single scan helper
// serves both lookup and list queries.
type scanner interface {
	Scan(dest ...any) error
}
